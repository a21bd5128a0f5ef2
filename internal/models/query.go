package models

// SortMode selects result ordering for a search request.
type SortMode string

// Supported sort modes.
const (
	SortRelevance SortMode = "relevance"
	SortPriceAsc  SortMode = "price_asc"
	SortPriceDesc SortMode = "price_desc"
	SortDateDesc  SortMode = "date_desc"
	SortDateAsc   SortMode = "date_asc"
)

// Pagination bounds applied by Normalize.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// SearchQuery is the uniform filter/sort/paginate request shared by the
// index query path and the relational fallback path. Optional filters are
// pointers; nil means "not supplied".
type SearchQuery struct {
	Term          string   `json:"term,omitempty"`
	OwnerID       *string  `json:"owner_id,omitempty"`
	City          *string  `json:"city,omitempty"`
	PropertyType  *string  `json:"property_type,omitempty"`
	ListingType   *string  `json:"listing_type,omitempty"`
	BuildingClass *string  `json:"building_class,omitempty"`
	MinPrice      *float64 `json:"min_price,omitempty"`
	MaxPrice      *float64 `json:"max_price,omitempty"`
	MinArea       *float64 `json:"min_area,omitempty"`
	MaxArea       *float64 `json:"max_area,omitempty"`
	Bedrooms      *int     `json:"bedrooms,omitempty"`
	Bathrooms     *int     `json:"bathrooms,omitempty"`
	Page          int      `json:"page,omitempty"`
	Size          int      `json:"size,omitempty"`
	SortBy        SortMode `json:"sort_by,omitempty"`
}

// Normalize coerces page and size to positive integers with defaults and
// caps, and maps an unknown sort mode to relevance. It must run before
// either query builder sees the request.
func (q *SearchQuery) Normalize() {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Size < 1 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	switch q.SortBy {
	case SortRelevance, SortPriceAsc, SortPriceDesc, SortDateDesc, SortDateAsc:
	default:
		q.SortBy = SortRelevance
	}
}

// Offset returns the zero-based record offset for the current page.
func (q *SearchQuery) Offset() int {
	return (q.Page - 1) * q.Size
}
