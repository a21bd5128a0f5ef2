package index

import (
	"time"

	"github.com/homescout/homescout/internal/models"
)

// DocumentFromFields reconstructs a ListingDocument from the stored fields of
// a search hit. Bleve hands stored values back loosely typed (all numbers as
// float64, datetimes as RFC3339 strings, single-element arrays unwrapped), so
// every conversion here is best-effort: a missing or oddly shaped field
// decodes to its zero value rather than failing the search.
func DocumentFromFields(id string, fields map[string]interface{}) *models.ListingDocument {
	doc := &models.ListingDocument{
		ID:            id,
		OwnerID:       str(fields[fieldOwnerID]),
		Title:         str(fields[fieldTitle]),
		Description:   str(fields[fieldDescription]),
		City:          str(fields[fieldCity]),
		Address:       str(fields[fieldAddress]),
		Price:         f64(fields[fieldPrice]),
		PriceUSD:      f64(fields[fieldPriceUSD]),
		Currency:      str(fields[fieldCurrency]),
		PropertyType:  str(fields[fieldPropertyType]),
		ListingType:   str(fields[fieldListingType]),
		Status:        str(fields[fieldStatus]),
		BuildingClass: str(fields[fieldBuildingClass]),
		Renovation:    str(fields[fieldRenovation]),
		Floor:         int(f64(fields[fieldFloor])),
		TotalFloors:   int(f64(fields[fieldTotalFloors])),
		YearBuilt:     int(f64(fields[fieldYearBuilt])),
		Bedrooms:      int(f64(fields[fieldBedrooms])),
		Bathrooms:     int(f64(fields[fieldBathrooms])),
		Area:          f64(fields[fieldArea]),
		Geo:           geoPoint(fields[fieldGeo]),
		Amenities:     strs(fields[fieldAmenities]),
		Featured:      boolean(fields[fieldFeatured]),
		Verified:      boolean(fields[fieldVerified]),
		Views:         int64(f64(fields[fieldViews])),
		CreatedAt:     timestamp(fields[fieldCreatedAt]),
		UpdatedAt:     timestamp(fields[fieldUpdatedAt]),
	}
	return doc
}

func str(v interface{}) string {
	s, _ := v.(string)
	return s
}

func f64(v interface{}) float64 {
	f, _ := v.(float64)
	return f
}

func boolean(v interface{}) bool {
	b, _ := v.(bool)
	return b
}

func timestamp(v interface{}) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// strs handles both the unwrapped single-value case and the slice case.
func strs(v interface{}) []string {
	switch val := v.(type) {
	case string:
		return []string{val}
	case []interface{}:
		out := make([]string, 0, len(val))
		for _, item := range val {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		if len(out) == 0 {
			return nil
		}
		return out
	default:
		return nil
	}
}

// geoPoint handles the two shapes Bleve returns stored geo values in:
// a {"lon","lat"} map or a [lon, lat] slice.
func geoPoint(v interface{}) *models.GeoPoint {
	switch val := v.(type) {
	case map[string]interface{}:
		lat, latOK := val["lat"].(float64)
		lon, lonOK := val["lon"].(float64)
		if latOK && lonOK {
			return &models.GeoPoint{Latitude: lat, Longitude: lon}
		}
	case []interface{}:
		if len(val) == 2 {
			lon, lonOK := val[0].(float64)
			lat, latOK := val[1].(float64)
			if latOK && lonOK {
				return &models.GeoPoint{Latitude: lat, Longitude: lon}
			}
		}
	}
	return nil
}
