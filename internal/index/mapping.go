// Package index provides the Bleve-backed gateway to the listing search index.
package index

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/standard"
	"github.com/blevesearch/bleve/v2/mapping"
)

// Index field names. Text fields carry a parallel "_kw" keyword field for
// exact matching (city filters use cityKeywordField, not the analyzed field).
const (
	fieldID            = "id"
	fieldOwnerID       = "owner_id"
	fieldTitle         = "title"
	fieldDescription   = "description"
	fieldCity          = "city"
	fieldAddress       = "address"
	fieldPrice         = "price"
	fieldPriceUSD      = "price_usd"
	fieldCurrency      = "currency"
	fieldPropertyType  = "property_type"
	fieldListingType   = "listing_type"
	fieldStatus        = "status"
	fieldBuildingClass = "building_class"
	fieldRenovation    = "renovation"
	fieldFloor         = "floor"
	fieldTotalFloors   = "total_floors"
	fieldYearBuilt     = "year_built"
	fieldBedrooms      = "bedrooms"
	fieldBathrooms     = "bathrooms"
	fieldArea          = "area"
	fieldGeo           = "geo"
	fieldAmenities     = "amenities"
	fieldFeatured      = "featured"
	fieldVerified      = "verified"
	fieldViews         = "views"
	fieldCreatedAt     = "created_at"
	fieldUpdatedAt     = "updated_at"

	titleKeywordField       = "title_kw"
	descriptionKeywordField = "description_kw"
	cityKeywordField        = "city_kw"
	addressKeywordField     = "address_kw"
)

// BuildListingMapping returns the fixed schema for the listing index.
// Standard analyzer on text fields (lowercase + tokenize, no stemming) so
// queries match words as typed; keyword analyzer on categorical fields so
// term filters compare whole values.
func BuildListingMapping() mapping.IndexMapping {
	im := bleve.NewIndexMapping()
	doc := bleve.NewDocumentMapping()

	text := func() *mapping.FieldMapping {
		fm := bleve.NewTextFieldMapping()
		fm.Analyzer = standard.Name
		return fm
	}
	exact := func(name string) *mapping.FieldMapping {
		fm := bleve.NewKeywordFieldMapping()
		fm.Name = name
		fm.Store = false
		fm.IncludeInAll = false
		return fm
	}
	keywordField := func() *mapping.FieldMapping {
		fm := bleve.NewKeywordFieldMapping()
		fm.Analyzer = keyword.Name
		return fm
	}

	doc.AddFieldMappingsAt(fieldID, keywordField())
	doc.AddFieldMappingsAt(fieldOwnerID, keywordField())

	doc.AddFieldMappingsAt(fieldTitle, text(), exact(titleKeywordField))
	doc.AddFieldMappingsAt(fieldDescription, text(), exact(descriptionKeywordField))
	doc.AddFieldMappingsAt(fieldCity, text(), exact(cityKeywordField))
	doc.AddFieldMappingsAt(fieldAddress, text(), exact(addressKeywordField))

	for _, name := range []string{fieldPrice, fieldPriceUSD, fieldArea, fieldBedrooms, fieldBathrooms, fieldFloor, fieldTotalFloors, fieldYearBuilt, fieldViews} {
		doc.AddFieldMappingsAt(name, bleve.NewNumericFieldMapping())
	}
	for _, name := range []string{fieldCurrency, fieldPropertyType, fieldListingType, fieldStatus, fieldBuildingClass, fieldRenovation, fieldAmenities} {
		doc.AddFieldMappingsAt(name, keywordField())
	}
	for _, name := range []string{fieldFeatured, fieldVerified} {
		doc.AddFieldMappingsAt(name, bleve.NewBooleanFieldMapping())
	}
	for _, name := range []string{fieldCreatedAt, fieldUpdatedAt} {
		doc.AddFieldMappingsAt(name, bleve.NewDateTimeFieldMapping())
	}
	doc.AddFieldMappingsAt(fieldGeo, bleve.NewGeoPointFieldMapping())

	im.AddDocumentMapping("listing", doc)
	im.DefaultType = "listing"
	im.DefaultMapping = doc
	return im
}
