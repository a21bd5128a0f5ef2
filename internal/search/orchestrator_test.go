package search

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/homescout/homescout/internal/index"
	"github.com/homescout/homescout/internal/models"
	"github.com/homescout/homescout/internal/storage"
)

const testIndexName = "listings"

// newTestOrchestrator wires a real SQLite store and, when indexPath is
// non-empty, a real Bleve gateway under a temp dir.
func newTestOrchestrator(t *testing.T, withIndex bool) (*Orchestrator, *storage.SQLiteStorage) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewSQLiteStorage(filepath.Join(dir, "listings.db"))
	if err != nil {
		t.Fatalf("NewSQLiteStorage: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	indexPath := ""
	if withIndex {
		indexPath = filepath.Join(dir, "index")
	}
	gateway := index.NewGateway(indexPath, testIndexName, zap.NewNop())
	t.Cleanup(func() { _ = gateway.Close() })

	return NewOrchestrator(store, gateway, testIndexName, zap.NewNop()), store
}

func seedOwner(t *testing.T, store *storage.SQLiteStorage, id string) {
	t.Helper()
	err := store.CreateUser(context.Background(), &models.UserProjection{
		ID:        id,
		FirstName: "Jovana",
		LastName:  "Ilic",
		Email:     id + "@example.com",
		Phone:     "+381651234567",
		Role:      "AGENT",
	})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
}

func seedListing(t *testing.T, store *storage.SQLiteStorage, id, ownerID, title, city string, price float64) *models.Listing {
	t.Helper()
	l := &models.Listing{
		ID:           id,
		OwnerID:      ownerID,
		Title:        title,
		Description:  "freshly renovated, great light",
		City:         city,
		Address:      "Svetogorska 9",
		Price:        price,
		Currency:     "EUR",
		PropertyType: "APARTMENT",
		ListingType:  "SALE",
		Status:       models.StatusActive,
		Bedrooms:     2,
		Bathrooms:    1,
		Area:         55,
		Amenities:    []string{"balcony"},
		CreatedAt:    time.Now(),
	}
	if err := store.CreateListing(context.Background(), l); err != nil {
		t.Fatalf("CreateListing: %v", err)
	}
	return l
}

func TestOrchestrator_IndexPathSearchEnriched(t *testing.T) {
	o, store := newTestOrchestrator(t, true)
	ctx := context.Background()
	seedOwner(t, store, "usr-1")
	seedListing(t, store, "lst-1", "usr-1", "Riverside penthouse with terrace", "Belgrade", 320000)

	if !o.InitializeIndex() {
		t.Fatal("InitializeIndex failed")
	}
	if !o.IndexListing(ctx, "lst-1") {
		t.Fatal("IndexListing failed")
	}

	res := o.Search(ctx, &models.SearchQuery{Term: "riverside"})
	if res.Total != 1 || len(res.Data) != 1 {
		t.Fatalf("total=%d len=%d, want 1/1", res.Total, len(res.Data))
	}
	hit := res.Data[0]
	if hit.ID != "lst-1" {
		t.Errorf("hit id = %q, want lst-1", hit.ID)
	}
	if hit.Score <= 0 {
		t.Errorf("score = %v, want > 0 on the index path", hit.Score)
	}
	if hit.User == nil || hit.User.ID != "usr-1" {
		t.Fatalf("hit user = %+v, want enriched usr-1 projection", hit.User)
	}
	if hit.User.FirstName != "Jovana" {
		t.Errorf("user first name = %q, want Jovana", hit.User.FirstName)
	}
	if res.Page != 1 || res.Size != 20 || res.PageCount != 1 {
		t.Errorf("page/size/pageCount = %d/%d/%d, want 1/20/1", res.Page, res.Size, res.PageCount)
	}
}

func TestOrchestrator_IndexListingAbsent(t *testing.T) {
	o, _ := newTestOrchestrator(t, true)
	if !o.InitializeIndex() {
		t.Fatal("InitializeIndex failed")
	}
	if o.IndexListing(context.Background(), "lst-missing") {
		t.Error("IndexListing must return false for an absent listing")
	}
}

func TestOrchestrator_UpdateReprojectsDocument(t *testing.T) {
	o, store := newTestOrchestrator(t, true)
	ctx := context.Background()
	seedOwner(t, store, "usr-1")
	l := seedListing(t, store, "lst-1", "usr-1", "Old title", "Belgrade", 100000)

	if !o.InitializeIndex() || !o.IndexListing(ctx, "lst-1") {
		t.Fatal("setup failed")
	}

	l.Title = "Sunlit corner apartment"
	if err := store.UpdateListing(ctx, l); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}
	if !o.UpdateListingIndex(ctx, "lst-1") {
		t.Fatal("UpdateListingIndex failed")
	}

	if res := o.Search(ctx, &models.SearchQuery{Term: "sunlit"}); res.Total != 1 {
		t.Errorf("total for new title = %d, want 1", res.Total)
	}
	if res := o.Search(ctx, &models.SearchQuery{Term: "old"}); res.Total != 0 {
		t.Errorf("total for old title = %d, want 0", res.Total)
	}
}

func TestOrchestrator_DeleteListingIndex(t *testing.T) {
	o, store := newTestOrchestrator(t, true)
	ctx := context.Background()
	seedOwner(t, store, "usr-1")
	seedListing(t, store, "lst-1", "usr-1", "Courtyard duplex", "Belgrade", 210000)

	if !o.InitializeIndex() || !o.IndexListing(ctx, "lst-1") {
		t.Fatal("setup failed")
	}
	if !o.DeleteListingIndex(ctx, "lst-1") {
		t.Fatal("DeleteListingIndex failed")
	}
	if res := o.Search(ctx, &models.SearchQuery{Term: "courtyard"}); res.Total != 0 {
		t.Errorf("total after delete = %d, want 0", res.Total)
	}
}

func TestOrchestrator_ReindexAll(t *testing.T) {
	o, store := newTestOrchestrator(t, true)
	ctx := context.Background()
	seedOwner(t, store, "usr-1")
	seedListing(t, store, "lst-1", "usr-1", "First active", "Belgrade", 100000)
	seedListing(t, store, "lst-2", "usr-1", "Second active", "Belgrade", 200000)
	sold := seedListing(t, store, "lst-3", "usr-1", "Already sold", "Belgrade", 300000)
	sold.Status = models.StatusSold
	if err := store.UpdateListing(ctx, sold); err != nil {
		t.Fatalf("UpdateListing: %v", err)
	}

	if !o.InitializeIndex() {
		t.Fatal("InitializeIndex failed")
	}
	result := o.ReindexAll(ctx)
	if !result.Success || result.Count != 2 {
		t.Fatalf("reindex = %+v, want success with count 2", result)
	}
	if count := o.IndexDocCount(); count != 2 {
		t.Errorf("doc count = %d, want 2", count)
	}
}

func TestOrchestrator_ReindexAllEmptySet(t *testing.T) {
	o, _ := newTestOrchestrator(t, true)
	if !o.InitializeIndex() {
		t.Fatal("InitializeIndex failed")
	}
	result := o.ReindexAll(context.Background())
	if !result.Success || result.Count != 0 {
		t.Errorf("reindex of empty set = %+v, want {true, 0}", result)
	}
}

func TestOrchestrator_EnrichmentGapYieldsNullUser(t *testing.T) {
	o, store := newTestOrchestrator(t, true)
	ctx := context.Background()
	seedOwner(t, store, "usr-1")
	seedListing(t, store, "lst-1", "usr-1", "Phantom loft", "Belgrade", 180000)

	if !o.InitializeIndex() || !o.IndexListing(ctx, "lst-1") {
		t.Fatal("setup failed")
	}
	// Remove the canonical row; the index document lingers until the next
	// reindex.
	if err := store.DeleteListing(ctx, "lst-1"); err != nil {
		t.Fatalf("DeleteListing: %v", err)
	}

	res := o.Search(ctx, &models.SearchQuery{Term: "phantom"})
	if res.Total != 1 || len(res.Data) != 1 {
		t.Fatalf("total=%d len=%d, want the lingering hit", res.Total, len(res.Data))
	}
	if res.Data[0].User != nil {
		t.Errorf("user = %+v, want nil for a hit whose canonical row is gone", res.Data[0].User)
	}
}

func TestOrchestrator_UnusableIndexDegrades(t *testing.T) {
	o, store := newTestOrchestrator(t, false)
	ctx := context.Background()
	seedOwner(t, store, "usr-1")
	seedListing(t, store, "lst-1", "usr-1", "Garden bungalow", "Zemun", 95000)

	if o.IndexUsable() {
		t.Fatal("expected unusable index")
	}
	if o.InitializeIndex() {
		t.Error("InitializeIndex should report false when unusable")
	}
	if result := o.ReindexAll(ctx); result.Success || result.Count != 0 {
		t.Errorf("reindex = %+v, want {false, 0}", result)
	}
	if o.DeleteListingIndex(ctx, "lst-1") {
		t.Error("DeleteListingIndex should report false when unusable")
	}
	if suggestions := o.Suggestions(ctx, "gar", 5); len(suggestions) != 0 {
		t.Errorf("suggestions = %v, want empty when unusable", suggestions)
	}

	// Search falls back to the relational path, already enriched.
	res := o.Search(ctx, &models.SearchQuery{Term: "bungalow"})
	if res.Total != 1 || len(res.Data) != 1 {
		t.Fatalf("fallback total=%d len=%d, want 1/1", res.Total, len(res.Data))
	}
	if res.Data[0].User == nil || res.Data[0].User.ID != "usr-1" {
		t.Error("fallback hit should carry the joined owner projection")
	}
}

func TestOrchestrator_Suggestions(t *testing.T) {
	o, store := newTestOrchestrator(t, true)
	ctx := context.Background()
	seedOwner(t, store, "usr-1")
	seedListing(t, store, "lst-1", "usr-1", "Riverside penthouse", "Belgrade", 300000)
	seedListing(t, store, "lst-2", "usr-1", "River view studio", "Belgrade", 120000)
	seedListing(t, store, "lst-3", "usr-1", "Hillside cottage", "Avala", 80000)

	if !o.InitializeIndex() {
		t.Fatal("InitializeIndex failed")
	}
	if result := o.ReindexAll(ctx); !result.Success {
		t.Fatal("ReindexAll failed")
	}

	suggestions := o.Suggestions(ctx, "river", 5)
	if len(suggestions) != 2 {
		t.Fatalf("suggestions = %v, want the two river listings", suggestions)
	}

	if got := o.Suggestions(ctx, "", 5); len(got) != 0 {
		t.Errorf("suggestions for empty term = %v, want empty", got)
	}

	// Limit truncates.
	if got := o.Suggestions(ctx, "river", 1); len(got) != 1 {
		t.Errorf("limited suggestions = %v, want exactly one", got)
	}
}
