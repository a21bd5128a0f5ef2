// Package models defines core data structures for listings, search queries, and search results.
package models

import "time"

// Listing statuses as stored in the canonical store and the index.
const (
	StatusActive   = "ACTIVE"
	StatusPending  = "PENDING"
	StatusSold     = "SOLD"
	StatusArchived = "ARCHIVED"
)

// Listing is a canonical property record owned by the relational store.
// It is the source of truth for ownership, status, and all business fields.
type Listing struct {
	ID            string    `json:"id" db:"id"`
	OwnerID       string    `json:"owner_id" db:"owner_id"`
	Title         string    `json:"title" db:"title"`
	Description   string    `json:"description" db:"description"`
	City          string    `json:"city" db:"city"`
	Address       string    `json:"address" db:"address"`
	Price         float64   `json:"price" db:"price"`
	PriceUSD      float64   `json:"price_usd" db:"price_usd"`
	Currency      string    `json:"currency" db:"currency"`
	PropertyType  string    `json:"property_type" db:"property_type"`
	ListingType   string    `json:"listing_type" db:"listing_type"`
	Status        string    `json:"status" db:"status"`
	BuildingClass string    `json:"building_class,omitempty" db:"building_class"`
	Renovation    string    `json:"renovation,omitempty" db:"renovation"`
	Floor         int       `json:"floor,omitempty" db:"floor"`
	TotalFloors   int       `json:"total_floors,omitempty" db:"total_floors"`
	YearBuilt     int       `json:"year_built,omitempty" db:"year_built"`
	Bedrooms      int       `json:"bedrooms" db:"bedrooms"`
	Bathrooms     int       `json:"bathrooms" db:"bathrooms"`
	Area          float64   `json:"area" db:"area"`
	Latitude      *float64  `json:"latitude,omitempty" db:"latitude"`
	Longitude     *float64  `json:"longitude,omitempty" db:"longitude"`
	Amenities     []string  `json:"amenities,omitempty" db:"-"`
	Featured      bool      `json:"featured" db:"featured"`
	Verified      bool      `json:"verified" db:"verified"`
	Views         int64     `json:"views" db:"views"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// GeoPoint is a latitude/longitude pair on a listing document.
type GeoPoint struct {
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// Lat implements the accessor the index's geo field extraction looks for.
func (p GeoPoint) Lat() float64 { return p.Latitude }

// Lon implements the accessor the index's geo field extraction looks for.
func (p GeoPoint) Lon() float64 { return p.Longitude }

// ListingDocument is the denormalized, index-resident projection of a Listing.
// Its ID matches the canonical listing id; that id is the join key for
// enrichment and the idempotency key for re-indexing.
type ListingDocument struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner_id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	City          string    `json:"city"`
	Address       string    `json:"address"`
	Price         float64   `json:"price"`
	PriceUSD      float64   `json:"price_usd"`
	Currency      string    `json:"currency"`
	PropertyType  string    `json:"property_type"`
	ListingType   string    `json:"listing_type"`
	Status        string    `json:"status"`
	BuildingClass string    `json:"building_class,omitempty"`
	Renovation    string    `json:"renovation,omitempty"`
	Floor         int       `json:"floor,omitempty"`
	TotalFloors   int       `json:"total_floors,omitempty"`
	YearBuilt     int       `json:"year_built,omitempty"`
	Bedrooms      int       `json:"bedrooms"`
	Bathrooms     int       `json:"bathrooms"`
	Area          float64   `json:"area"`
	Geo           *GeoPoint `json:"geo,omitempty"`
	Amenities     []string  `json:"amenities,omitempty"`
	Featured      bool      `json:"featured"`
	Verified      bool      `json:"verified"`
	Views         int64     `json:"views"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// NewListingDocument projects a canonical listing into its index document.
// The geo point is present only when both coordinates exist on the listing.
func NewListingDocument(l *Listing) *ListingDocument {
	doc := &ListingDocument{
		ID:            l.ID,
		OwnerID:       l.OwnerID,
		Title:         l.Title,
		Description:   l.Description,
		City:          l.City,
		Address:       l.Address,
		Price:         l.Price,
		PriceUSD:      l.PriceUSD,
		Currency:      l.Currency,
		PropertyType:  l.PropertyType,
		ListingType:   l.ListingType,
		Status:        l.Status,
		BuildingClass: l.BuildingClass,
		Renovation:    l.Renovation,
		Floor:         l.Floor,
		TotalFloors:   l.TotalFloors,
		YearBuilt:     l.YearBuilt,
		Bedrooms:      l.Bedrooms,
		Bathrooms:     l.Bathrooms,
		Area:          l.Area,
		Amenities:     append([]string(nil), l.Amenities...),
		Featured:      l.Featured,
		Verified:      l.Verified,
		Views:         l.Views,
		CreatedAt:     l.CreatedAt,
		UpdatedAt:     l.UpdatedAt,
	}
	if l.Latitude != nil && l.Longitude != nil {
		doc.Geo = &GeoPoint{Latitude: *l.Latitude, Longitude: *l.Longitude}
	}
	return doc
}
