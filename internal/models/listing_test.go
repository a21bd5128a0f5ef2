package models

import (
	"testing"
	"time"
)

func TestNewListingDocument_ProjectsFields(t *testing.T) {
	lat, lon := 44.8125, 20.4612
	now := time.Now()
	l := &Listing{
		ID:           "lst-1",
		OwnerID:      "usr-1",
		Title:        "Bright two-bedroom near the river",
		Description:  "Renovated apartment with a balcony.",
		City:         "Belgrade",
		Address:      "Bulevar Despota Stefana 12",
		Price:        185000,
		PriceUSD:     198000,
		Currency:     "EUR",
		PropertyType: "APARTMENT",
		ListingType:  "SALE",
		Status:       StatusActive,
		Bedrooms:     2,
		Bathrooms:    1,
		Area:         64.5,
		Latitude:     &lat,
		Longitude:    &lon,
		Amenities:    []string{"parking", "elevator"},
		Featured:     true,
		Views:        42,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	doc := NewListingDocument(l)
	if doc.ID != l.ID {
		t.Errorf("ID = %q, want %q", doc.ID, l.ID)
	}
	if doc.OwnerID != l.OwnerID {
		t.Errorf("OwnerID = %q, want %q", doc.OwnerID, l.OwnerID)
	}
	if doc.Geo == nil {
		t.Fatal("expected geo point when both coordinates are set")
	}
	if doc.Geo.Lat() != lat || doc.Geo.Lon() != lon {
		t.Errorf("geo = (%v, %v), want (%v, %v)", doc.Geo.Lat(), doc.Geo.Lon(), lat, lon)
	}
	if len(doc.Amenities) != 2 {
		t.Errorf("amenities = %v, want 2 entries", doc.Amenities)
	}
	// Projection must not alias the listing's amenities slice.
	doc.Amenities[0] = "pool"
	if l.Amenities[0] != "parking" {
		t.Error("projection mutated the canonical listing's amenities")
	}
}

func TestNewListingDocument_OmitsGeoWhenCoordinateMissing(t *testing.T) {
	lat := 44.8125
	tests := []struct {
		name string
		lat  *float64
		lon  *float64
	}{
		{"both nil", nil, nil},
		{"latitude only", &lat, nil},
		{"longitude only", nil, &lat},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Listing{ID: "lst-2", Status: StatusActive, Latitude: tt.lat, Longitude: tt.lon}
			if doc := NewListingDocument(l); doc.Geo != nil {
				t.Errorf("Geo = %+v, want nil", doc.Geo)
			}
		})
	}
}
