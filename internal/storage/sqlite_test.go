package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/homescout/homescout/internal/models"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "listings.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func seedOwner(t *testing.T, store *SQLiteStorage, id string) {
	t.Helper()
	err := store.CreateUser(context.Background(), &models.UserProjection{
		ID:        id,
		FirstName: "Mina",
		LastName:  "Petrov",
		Email:     id + "@example.com",
		Phone:     "+381641112233",
		Role:      "AGENT",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func testListing(id, ownerID, title, city string, price float64, createdAt time.Time) *models.Listing {
	return &models.Listing{
		ID:           id,
		OwnerID:      ownerID,
		Title:        title,
		Description:  "well maintained, close to transit",
		City:         city,
		Address:      "Kneza Milosa 4",
		Price:        price,
		PriceUSD:     price * 1.07,
		Currency:     "EUR",
		PropertyType: "APARTMENT",
		ListingType:  "SALE",
		Status:       models.StatusActive,
		Bedrooms:     2,
		Bathrooms:    1,
		Area:         60,
		Amenities:    []string{"elevator", "parking"},
		CreatedAt:    createdAt,
	}
}

func TestSQLiteStorage_ListingRoundtrip(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	seedOwner(t, store, "usr-1")

	lat, lon := 44.81, 20.46
	l := testListing("lst-1", "usr-1", "Bright flat near park", "Belgrade", 150000, time.Now())
	l.Latitude = &lat
	l.Longitude = &lon
	if err := store.CreateListing(ctx, l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}

	got, err := store.GetListing(ctx, "lst-1", true)
	if err != nil {
		t.Fatalf("GetListing: %v", err)
	}
	if got.Title != l.Title || got.City != l.City {
		t.Errorf("got %q in %q, want %q in %q", got.Title, got.City, l.Title, l.City)
	}
	if got.Latitude == nil || *got.Latitude != lat {
		t.Errorf("latitude = %v, want %v", got.Latitude, lat)
	}
	if len(got.Amenities) != 2 {
		t.Errorf("amenities = %v, want 2 entries", got.Amenities)
	}

	got.Status = models.StatusSold
	got.Price = 145000
	got.Amenities = []string{"elevator"}
	if err := store.UpdateListing(ctx, got); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	updated, err := store.GetListing(ctx, "lst-1", true)
	if err != nil {
		t.Fatalf("GetListing after update: %v", err)
	}
	if updated.Status != models.StatusSold || updated.Price != 145000 {
		t.Errorf("update not applied: status=%q price=%v", updated.Status, updated.Price)
	}
	if len(updated.Amenities) != 1 {
		t.Errorf("amenities after update = %v, want 1 entry", updated.Amenities)
	}

	if err := store.DeleteListing(ctx, "lst-1"); err != nil {
		t.Fatalf("DeleteListing: %v", err)
	}
	if _, err := store.GetListing(ctx, "lst-1", false); err == nil {
		t.Fatal("expected error for deleted listing")
	}
}

func TestSQLiteStorage_ListActiveListings(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	seedOwner(t, store, "usr-1")

	now := time.Now()
	active := testListing("lst-a", "usr-1", "Active one", "Belgrade", 100000, now)
	sold := testListing("lst-b", "usr-1", "Sold one", "Belgrade", 100000, now)
	sold.Status = models.StatusSold
	for _, l := range []*models.Listing{active, sold} {
		if err := store.CreateListing(ctx, l); err != nil {
			t.Fatalf("CreateListing: %v", err)
		}
	}

	listings, err := store.ListActiveListings(ctx)
	if err != nil {
		t.Fatalf("ListActiveListings: %v", err)
	}
	if len(listings) != 1 {
		t.Fatalf("active count = %d, want 1", len(listings))
	}
	if listings[0].ID != "lst-a" {
		t.Errorf("active listing = %q, want lst-a", listings[0].ID)
	}
	if len(listings[0].Amenities) != 2 {
		t.Errorf("amenities not loaded: %v", listings[0].Amenities)
	}
}

func TestSQLiteStorage_OwnerProjections(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	seedOwner(t, store, "usr-1")
	seedOwner(t, store, "usr-2")

	now := time.Now()
	for i, owner := range []string{"usr-1", "usr-2"} {
		l := testListing("lst-"+owner, owner, "Listing", "Belgrade", 100000, now.Add(time.Duration(i)*time.Minute))
		if err := store.CreateListing(ctx, l); err != nil {
			t.Fatalf("CreateListing: %v", err)
		}
	}

	projections, err := store.OwnerProjections(ctx, []string{"lst-usr-1", "lst-usr-2", "lst-ghost"})
	if err != nil {
		t.Fatalf("OwnerProjections: %v", err)
	}
	if len(projections) != 2 {
		t.Fatalf("projection count = %d, want 2", len(projections))
	}
	if _, ok := projections["lst-ghost"]; ok {
		t.Error("unknown listing id must be absent from the map, not present with a zero value")
	}
	if projections["lst-usr-1"].ID != "usr-1" || projections["lst-usr-1"].Role != "AGENT" {
		t.Errorf("projection for lst-usr-1 = %+v, want usr-1/AGENT", projections["lst-usr-1"])
	}

	empty, err := store.OwnerProjections(ctx, nil)
	if err != nil {
		t.Fatalf("OwnerProjections(nil): %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("empty id set returned %d rows", len(empty))
	}
}

func TestSQLiteStorage_SearchListings(t *testing.T) {
	store := newTestStorage(t)
	ctx := context.Background()
	seedOwner(t, store, "usr-1")

	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	seed := []*models.Listing{
		testListing("lst-1", "usr-1", "Riverside penthouse", "Belgrade", 300000, base),
		testListing("lst-2", "usr-1", "Quiet garden flat", "Novi Sad", 120000, base.Add(time.Hour)),
		testListing("lst-3", "usr-1", "Downtown studio", "Belgrade", 90000, base.Add(2*time.Hour)),
	}
	seed[2].Status = models.StatusPending
	for _, l := range seed {
		if err := store.CreateListing(ctx, l); err != nil {
			t.Fatalf("CreateListing: %v", err)
		}
	}

	t.Run("text search matches substring case-insensitively", func(t *testing.T) {
		q := &models.SearchQuery{Term: "RIVERSIDE"}
		q.Normalize()
		res, err := store.SearchListings(ctx, q)
		if err != nil {
			t.Fatalf("SearchListings: %v", err)
		}
		if res.Total != 1 || len(res.Data) != 1 {
			t.Fatalf("total=%d len=%d, want 1/1", res.Total, len(res.Data))
		}
		hit := res.Data[0]
		if hit.ID != "lst-1" {
			t.Errorf("hit = %q, want lst-1", hit.ID)
		}
		if hit.User == nil || hit.User.ID != "usr-1" {
			t.Error("fallback hit should come back with owner joined")
		}
		if len(hit.Amenities) != 2 {
			t.Errorf("amenities = %v, want 2 entries", hit.Amenities)
		}
	})

	t.Run("pending listings never surface", func(t *testing.T) {
		q := &models.SearchQuery{Term: "studio"}
		q.Normalize()
		res, err := store.SearchListings(ctx, q)
		if err != nil {
			t.Fatalf("SearchListings: %v", err)
		}
		if res.Total != 0 {
			t.Errorf("total = %d, want 0", res.Total)
		}
	})

	t.Run("newest first with pagination", func(t *testing.T) {
		q := &models.SearchQuery{Page: 1, Size: 1}
		q.Normalize()
		res, err := store.SearchListings(ctx, q)
		if err != nil {
			t.Fatalf("SearchListings: %v", err)
		}
		if res.Total != 2 {
			t.Fatalf("total = %d, want 2", res.Total)
		}
		if res.PageCount != 2 {
			t.Errorf("page count = %d, want 2", res.PageCount)
		}
		if res.Data[0].ID != "lst-2" {
			t.Errorf("first hit = %q, want lst-2 (newest active)", res.Data[0].ID)
		}
	})

	t.Run("price filter", func(t *testing.T) {
		maxPrice := 150000.0
		q := &models.SearchQuery{MaxPrice: &maxPrice}
		q.Normalize()
		res, err := store.SearchListings(ctx, q)
		if err != nil {
			t.Fatalf("SearchListings: %v", err)
		}
		if res.Total != 1 || res.Data[0].ID != "lst-2" {
			t.Errorf("total=%d first=%v, want the one affordable active listing", res.Total, res.Data)
		}
	})
}
