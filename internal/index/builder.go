package index

import (
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
	"github.com/homescout/homescout/internal/models"
)

// Text clause boosts for term search and suggestions.
const (
	titleBoost       = 3.0
	cityBoost        = 2.0
	descriptionBoost = 1.0
	addressBoost     = 1.0

	termFuzziness = 1
)

// BuildSearchRequest translates a normalized SearchQuery into the index's
// native query: a boolean query with a mandatory ACTIVE-status clause,
// weighted should clauses for the free-text term, exact/range filter clauses
// in a fixed order, a sort specification, and from/size pagination.
func BuildSearchRequest(q *models.SearchQuery) *bleve.SearchRequest {
	bq := bleve.NewBooleanQuery()

	// The status constraint cannot be overridden by caller input; inactive
	// listings never surface through the index path.
	status := bleve.NewTermQuery(models.StatusActive)
	status.SetField(fieldStatus)
	bq.AddMust(status)

	if term := strings.TrimSpace(q.Term); term != "" {
		title := bleve.NewMatchQuery(term)
		title.SetField(fieldTitle)
		title.SetBoost(titleBoost)
		title.SetFuzziness(termFuzziness)

		description := bleve.NewMatchQuery(term)
		description.SetField(fieldDescription)
		description.SetBoost(descriptionBoost)
		description.SetFuzziness(termFuzziness)

		city := bleve.NewMatchQuery(term)
		city.SetField(fieldCity)
		city.SetBoost(cityBoost)

		address := bleve.NewMatchPhraseQuery(term)
		address.SetField(fieldAddress)
		address.SetBoost(addressBoost)

		bq.AddShould(title, description, city, address)
		bq.SetMinShould(1)
	}

	// Filter clauses in fixed order. City matches the keyword field, not the
	// analyzed text field.
	if q.OwnerID != nil {
		bq.AddMust(termFilter(fieldOwnerID, *q.OwnerID))
	}
	if q.City != nil {
		bq.AddMust(termFilter(cityKeywordField, *q.City))
	}
	if q.PropertyType != nil {
		bq.AddMust(termFilter(fieldPropertyType, *q.PropertyType))
	}
	if q.ListingType != nil {
		bq.AddMust(termFilter(fieldListingType, *q.ListingType))
	}
	if q.BuildingClass != nil {
		bq.AddMust(termFilter(fieldBuildingClass, *q.BuildingClass))
	}
	if q.MinPrice != nil || q.MaxPrice != nil {
		bq.AddMust(rangeFilter(fieldPrice, q.MinPrice, q.MaxPrice))
	}
	if q.MinArea != nil || q.MaxArea != nil {
		bq.AddMust(rangeFilter(fieldArea, q.MinArea, q.MaxArea))
	}
	if q.Bedrooms != nil {
		bq.AddMust(exactNumberFilter(fieldBedrooms, *q.Bedrooms))
	}
	if q.Bathrooms != nil {
		bq.AddMust(exactNumberFilter(fieldBathrooms, *q.Bathrooms))
	}

	req := bleve.NewSearchRequest(bq)
	req.From = q.Offset()
	req.Size = q.Size
	req.Fields = []string{"*"}
	req.SortBy(sortOrder(q.SortBy))
	return req
}

// sortOrder maps a sort mode to the index's sort specification. Relevance
// carries a created-date tiebreak so equally scored results stay stably
// ordered across pages.
func sortOrder(mode models.SortMode) []string {
	switch mode {
	case models.SortPriceAsc:
		return []string{fieldPrice}
	case models.SortPriceDesc:
		return []string{"-" + fieldPrice}
	case models.SortDateAsc:
		return []string{fieldCreatedAt}
	case models.SortDateDesc:
		return []string{"-" + fieldCreatedAt}
	default:
		return []string{"-_score", "-" + fieldCreatedAt}
	}
}

// BuildSuggestRequest builds a prefix/fuzzy autocomplete query over title,
// city, and address, restricted to ACTIVE listings, projecting only title
// and city.
func BuildSuggestRequest(term string, limit int) *bleve.SearchRequest {
	bq := bleve.NewBooleanQuery()

	status := bleve.NewTermQuery(models.StatusActive)
	status.SetField(fieldStatus)
	bq.AddMust(status)

	lowered := strings.ToLower(strings.TrimSpace(term))
	for _, f := range []struct {
		field string
		boost float64
	}{
		{fieldTitle, titleBoost},
		{fieldCity, cityBoost},
		{fieldAddress, addressBoost},
	} {
		prefix := bleve.NewPrefixQuery(lowered)
		prefix.SetField(f.field)
		prefix.SetBoost(f.boost)
		bq.AddShould(prefix)

		fuzzy := bleve.NewMatchQuery(term)
		fuzzy.SetField(f.field)
		fuzzy.SetBoost(f.boost)
		fuzzy.SetFuzziness(termFuzziness)
		bq.AddShould(fuzzy)
	}
	bq.SetMinShould(1)

	req := bleve.NewSearchRequest(bq)
	req.Size = limit
	req.Fields = []string{fieldTitle, fieldCity}
	return req
}

func termFilter(field, value string) *query.TermQuery {
	tq := bleve.NewTermQuery(value)
	tq.SetField(field)
	return tq
}

func rangeFilter(field string, min, max *float64) *query.NumericRangeQuery {
	inclusive := true
	rq := bleve.NewNumericRangeInclusiveQuery(min, max, &inclusive, &inclusive)
	rq.SetField(field)
	return rq
}

func exactNumberFilter(field string, value int) *query.NumericRangeQuery {
	v := float64(value)
	return rangeFilter(field, &v, &v)
}
