// Package storage defines the persistence interface for the canonical
// listing store and implements it over SQLite. The store is the source of
// truth for listings, amenities, and users; it also executes the relational
// fallback search used when the search index is unusable.
package storage

import (
	"context"

	"github.com/homescout/homescout/internal/models"
)

// Storage defines listing and user persistence operations.
type Storage interface {
	// Listing operations
	CreateListing(ctx context.Context, l *models.Listing) error
	GetListing(ctx context.Context, id string, withAmenities bool) (*models.Listing, error)
	UpdateListing(ctx context.Context, l *models.Listing) error
	DeleteListing(ctx context.Context, id string) error
	ListActiveListings(ctx context.Context) ([]*models.Listing, error)

	// User operations
	CreateUser(ctx context.Context, u *models.UserProjection) error
	// OwnerProjections batch-fetches the owner/agent projection for each of
	// the given listing ids in one query, keyed by listing id. Listing ids
	// with no canonical row are simply absent from the map; that is how a
	// lingering index document surfaces as a null user.
	OwnerProjections(ctx context.Context, listingIDs []string) (map[string]*models.UserProjection, error)

	// SearchListings executes the relational fallback search: the same
	// uniform query translated to predicates, with owner data joined natively.
	SearchListings(ctx context.Context, q *models.SearchQuery) (*models.SearchResult, error)

	// Stats
	CountListings(ctx context.Context) (int64, error)

	Close() error
}
