// Package search provides the search and indexing orchestrator: the single
// entry point that routes a uniform search request to either the index path
// or the relational fallback path, and that owns index maintenance.
package search

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/homescout/homescout/internal/index"
	"github.com/homescout/homescout/internal/models"
	"github.com/homescout/homescout/internal/storage"
	"github.com/homescout/homescout/pkg/utils"
)

// DefaultSuggestionLimit applies when a caller passes a non-positive limit.
const DefaultSuggestionLimit = 5

// Orchestrator routes search calls between the index gateway and the
// canonical store, and keeps the index in sync with listing mutations.
// No method lets a backend error escape: failures are logged and reported
// as false/empty outcomes.
type Orchestrator struct {
	store     storage.Storage
	gateway   *index.Gateway
	indexName string
	logger    *zap.Logger
}

// NewOrchestrator creates an orchestrator over the given store and gateway.
// The gateway carries the availability capability decided at startup; the
// orchestrator consults it per call and never re-probes.
func NewOrchestrator(store storage.Storage, gateway *index.Gateway, indexName string, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		store:     store,
		gateway:   gateway,
		indexName: indexName,
		logger:    logger,
	}
}

// InitializeIndex creates the listing index with its fixed schema.
// Idempotent; a no-op returning false when the index is unusable.
func (o *Orchestrator) InitializeIndex() bool {
	if !o.gateway.IsUsable() {
		o.logger.Warn("initialize index skipped: index unusable")
		return false
	}
	return o.gateway.CreateIndex(o.indexName, index.BuildListingMapping())
}

// IndexListing loads the canonical listing and (re)indexes its document.
// Returns false when the listing is absent or the index write fails.
func (o *Orchestrator) IndexListing(ctx context.Context, id string) bool {
	l, err := o.store.GetListing(ctx, id, true)
	if err != nil {
		o.logger.Error("index listing: load failed", zap.String("id", id), zap.Error(err))
		return false
	}
	doc := models.NewListingDocument(l)
	return o.gateway.IndexDocument(o.indexName, id, doc)
}

// UpdateListingIndex re-projects the full listing on every update; there is
// no partial-patch path.
func (o *Orchestrator) UpdateListingIndex(ctx context.Context, id string) bool {
	return o.IndexListing(ctx, id)
}

// DeleteListingIndex removes the listing's document from the index.
func (o *Orchestrator) DeleteListingIndex(ctx context.Context, id string) bool {
	if !o.gateway.IsUsable() {
		return false
	}
	return o.gateway.DeleteDocument(o.indexName, id)
}

// ReindexAll rebuilds the index from every ACTIVE listing in one bulk call.
// Count is the number of listings attempted; a false result means the whole
// reindex should be re-run, since per-item failures are not itemized.
// Returns {false, 0} without touching the store when the index is unusable.
func (o *Orchestrator) ReindexAll(ctx context.Context) models.ReindexResult {
	if !o.gateway.IsUsable() {
		o.logger.Warn("reindex skipped: index unusable")
		return models.ReindexResult{Success: false, Count: 0}
	}
	listings, err := o.store.ListActiveListings(ctx)
	if err != nil {
		o.logger.Error("reindex: loading active listings failed", zap.Error(err))
		return models.ReindexResult{Success: false, Count: 0}
	}
	items := make([]index.BulkItem, len(listings))
	for i, l := range listings {
		items[i] = index.BulkItem{ID: l.ID, Doc: models.NewListingDocument(l)}
	}
	ok := o.gateway.BulkIndex(o.indexName, items)
	if ok {
		o.logger.Info("reindex complete", zap.Int("count", len(items)))
	}
	return models.ReindexResult{Success: ok, Count: len(items)}
}

// Search executes the uniform search request against whichever backend is
// available. The result is always well-formed; failures degrade to an empty
// page rather than an error.
func (o *Orchestrator) Search(ctx context.Context, q *models.SearchQuery) *models.SearchResult {
	q.Normalize()

	if !o.gateway.IsUsable() {
		return o.searchFallback(ctx, q)
	}

	res := o.gateway.Search(o.indexName, index.BuildSearchRequest(q))

	hits := make([]*models.Hit, 0, len(res.Hits))
	ids := make([]string, 0, len(res.Hits))
	for _, match := range res.Hits {
		doc := index.DocumentFromFields(match.ID, match.Fields)
		hits = append(hits, &models.Hit{ListingDocument: *doc, Score: match.Score})
		ids = append(ids, match.ID)
	}

	o.enrich(ctx, hits, ids)

	total := int(res.Total)
	return &models.SearchResult{
		Data:      hits,
		Total:     total,
		Page:      q.Page,
		Size:      q.Size,
		PageCount: utils.PageCount(total, q.Size),
	}
}

func (o *Orchestrator) searchFallback(ctx context.Context, q *models.SearchQuery) *models.SearchResult {
	res, err := o.store.SearchListings(ctx, q)
	if err != nil {
		o.logger.Error("fallback search failed", zap.Error(err))
		return &models.SearchResult{
			Data: []*models.Hit{},
			Page: q.Page,
			Size: q.Size,
		}
	}
	if res.Data == nil {
		res.Data = []*models.Hit{}
	}
	return res
}

// enrich merges owner projections into index hits with one batched fetch and
// an in-memory left join keyed by listing id, preserving the index's
// relevance order. A hit whose canonical listing row is gone keeps a nil
// user; that inconsistency is tolerated until the next reindex.
func (o *Orchestrator) enrich(ctx context.Context, hits []*models.Hit, ids []string) {
	if len(hits) == 0 {
		return
	}
	projections, err := o.store.OwnerProjections(ctx, ids)
	if err != nil {
		o.logger.Error("enrichment fetch failed", zap.Int("hits", len(ids)), zap.Error(err))
		return
	}
	for _, hit := range hits {
		hit.User = projections[hit.ID]
	}
}

// Suggestions returns up to limit autocomplete titles for the given term.
// Index-only: returns an empty list when the index is unusable or the term
// is empty.
func (o *Orchestrator) Suggestions(ctx context.Context, term string, limit int) []string {
	if limit <= 0 {
		limit = DefaultSuggestionLimit
	}
	trimmed := strings.TrimSpace(term)
	if trimmed == "" || !o.gateway.IsUsable() {
		return []string{}
	}
	res := o.gateway.Search(o.indexName, index.BuildSuggestRequest(trimmed, limit))
	suggestions := make([]string, 0, limit)
	for _, match := range res.Hits {
		title, ok := match.Fields["title"].(string)
		if !ok || title == "" {
			continue
		}
		suggestions = append(suggestions, title)
		if len(suggestions) == limit {
			break
		}
	}
	return suggestions
}

// IndexUsable reports the availability decided at startup.
func (o *Orchestrator) IndexUsable() bool {
	return o.gateway.IsUsable()
}

// IndexDocCount returns the number of documents currently in the index.
func (o *Orchestrator) IndexDocCount() uint64 {
	return o.gateway.DocCount(o.indexName)
}
