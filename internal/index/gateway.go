package index

import (
	"os"
	"path/filepath"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/mapping"
	"github.com/blevesearch/bleve/v2/search"
	"go.uber.org/zap"
)

// Availability reports whether the search index can be used by this process.
// It is computed once at gateway construction (configuration presence plus an
// open probe of the existing index) and never re-probed: a failed probe stays
// failed until the process restarts, so traffic does not flap between the
// index path and the fallback path.
type Availability struct {
	Usable bool
	Reason string
}

// BulkItem pairs a document id with its body for bulk indexing.
type BulkItem struct {
	ID  string
	Doc interface{}
}

// Gateway is a fault-tolerant client to the listing search index. Every
// operation converts backend errors into a false/empty outcome and logs them;
// nothing propagates to callers. Indexes are Bleve directories under basePath,
// addressed by name.
type Gateway struct {
	basePath string
	avail    Availability
	logger   *zap.Logger

	mu      sync.Mutex
	indexes map[string]bleve.Index
}

// NewGateway creates a gateway rooted at basePath. An empty basePath means
// the index is not configured and the gateway is permanently unusable for
// this process. When the index named probeName already exists on disk it is
// opened as the connectivity probe; an open failure also makes the gateway
// permanently unusable.
func NewGateway(basePath, probeName string, logger *zap.Logger) *Gateway {
	g := &Gateway{
		basePath: basePath,
		logger:   logger,
		indexes:  make(map[string]bleve.Index),
	}
	if basePath == "" {
		g.avail = Availability{Usable: false, Reason: "index path not configured"}
		logger.Warn("search index disabled: no index path configured, falling back to relational search")
		return g
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		g.avail = Availability{Usable: false, Reason: "index path not writable"}
		logger.Error("search index disabled: index path not writable", zap.String("path", basePath), zap.Error(err))
		return g
	}
	path := g.indexPath(probeName)
	if _, err := os.Stat(path); err == nil {
		idx, openErr := bleve.Open(path)
		if openErr != nil {
			g.avail = Availability{Usable: false, Reason: "index probe failed"}
			logger.Error("search index disabled: probe failed", zap.String("path", path), zap.Error(openErr))
			return g
		}
		g.indexes[probeName] = idx
	}
	g.avail = Availability{Usable: true}
	return g
}

// IsUsable reports whether the index was configured and the startup probe succeeded.
func (g *Gateway) IsUsable() bool {
	return g.avail.Usable
}

// Availability returns the availability capability computed at construction.
func (g *Gateway) Availability() Availability {
	return g.avail
}

func (g *Gateway) indexPath(name string) string {
	return filepath.Join(g.basePath, name)
}

// open returns the cached handle for name, lazily opening an existing index
// directory. Returns nil when the gateway is unusable or the index is absent.
func (g *Gateway) open(name string) bleve.Index {
	if !g.avail.Usable {
		return nil
	}
	g.mu.Lock()
	defer g.mu.Unlock()
	if idx, ok := g.indexes[name]; ok {
		return idx
	}
	path := g.indexPath(name)
	if _, err := os.Stat(path); err != nil {
		return nil
	}
	idx, err := bleve.Open(path)
	if err != nil {
		g.logger.Error("failed to open index", zap.String("index", name), zap.Error(err))
		return nil
	}
	g.indexes[name] = idx
	return idx
}

// IndexExists reports whether the named index exists on disk.
func (g *Gateway) IndexExists(name string) bool {
	if !g.avail.Usable {
		return false
	}
	g.mu.Lock()
	_, cached := g.indexes[name]
	g.mu.Unlock()
	if cached {
		return true
	}
	_, err := os.Stat(g.indexPath(name))
	return err == nil
}

// CreateIndex creates the named index with the given schema. Idempotent: if
// the index already exists it is left unmodified and true is returned.
func (g *Gateway) CreateIndex(name string, im mapping.IndexMapping) bool {
	if !g.avail.Usable {
		g.logger.Warn("create index skipped: index unusable", zap.String("index", name))
		return false
	}
	if g.IndexExists(name) {
		return g.open(name) != nil
	}
	idx, err := bleve.New(g.indexPath(name), im)
	if err != nil {
		g.logger.Error("failed to create index", zap.String("index", name), zap.Error(err))
		return false
	}
	g.mu.Lock()
	g.indexes[name] = idx
	g.mu.Unlock()
	g.logger.Info("search index created", zap.String("index", name))
	return true
}

// DeleteIndex removes the named index. Idempotent: returns true if already absent.
func (g *Gateway) DeleteIndex(name string) bool {
	if !g.avail.Usable {
		g.logger.Warn("delete index skipped: index unusable", zap.String("index", name))
		return false
	}
	g.mu.Lock()
	if idx, ok := g.indexes[name]; ok {
		if err := idx.Close(); err != nil {
			g.logger.Error("failed to close index before delete", zap.String("index", name), zap.Error(err))
		}
		delete(g.indexes, name)
	}
	g.mu.Unlock()
	if err := os.RemoveAll(g.indexPath(name)); err != nil {
		g.logger.Error("failed to delete index", zap.String("index", name), zap.Error(err))
		return false
	}
	return true
}

// IndexDocument indexes one document under id, replacing any previous version.
func (g *Gateway) IndexDocument(name, id string, doc interface{}) bool {
	idx := g.open(name)
	if idx == nil {
		g.logger.Warn("index document skipped: index unusable", zap.String("index", name), zap.String("id", id))
		return false
	}
	if err := idx.Index(id, doc); err != nil {
		g.logger.Error("failed to index document", zap.String("index", name), zap.String("id", id), zap.Error(err))
		return false
	}
	return true
}

// UpdateDocument re-indexes the full document under id. Bleve has no partial
// document patch, so an update is a full replace.
func (g *Gateway) UpdateDocument(name, id string, doc interface{}) bool {
	return g.IndexDocument(name, id, doc)
}

// DeleteDocument removes the document with the given id.
func (g *Gateway) DeleteDocument(name, id string) bool {
	idx := g.open(name)
	if idx == nil {
		g.logger.Warn("delete document skipped: index unusable", zap.String("index", name), zap.String("id", id))
		return false
	}
	if err := idx.Delete(id); err != nil {
		g.logger.Error("failed to delete document", zap.String("index", name), zap.String("id", id), zap.Error(err))
		return false
	}
	return true
}

// BulkIndex indexes all items in one batch. The boolean is coarse: false
// means the backend reported an error for the batch, and callers must treat
// that as "re-run a full reindex", not as "retry only the failures" -- partial
// failures are not itemized back.
func (g *Gateway) BulkIndex(name string, items []BulkItem) bool {
	idx := g.open(name)
	if idx == nil {
		g.logger.Warn("bulk index skipped: index unusable", zap.String("index", name))
		return false
	}
	batch := idx.NewBatch()
	for _, item := range items {
		if err := batch.Index(item.ID, item.Doc); err != nil {
			g.logger.Error("failed to add document to batch", zap.String("index", name), zap.String("id", item.ID), zap.Error(err))
			return false
		}
	}
	if err := idx.Batch(batch); err != nil {
		g.logger.Error("bulk index failed", zap.String("index", name), zap.Int("count", len(items)), zap.Error(err))
		return false
	}
	return true
}

// Search executes a native query against the named index. When the index is
// unusable or the query fails, an empty well-formed result is returned so
// callers never need a nil check on the happy path.
func (g *Gateway) Search(name string, req *bleve.SearchRequest) *bleve.SearchResult {
	idx := g.open(name)
	if idx == nil {
		return emptySearchResult()
	}
	res, err := idx.Search(req)
	if err != nil {
		g.logger.Error("index search failed", zap.String("index", name), zap.Error(err))
		return emptySearchResult()
	}
	return res
}

// DocCount returns the number of documents in the named index, or 0 when unusable.
func (g *Gateway) DocCount(name string) uint64 {
	idx := g.open(name)
	if idx == nil {
		return 0
	}
	count, err := idx.DocCount()
	if err != nil {
		g.logger.Error("failed to count documents", zap.String("index", name), zap.Error(err))
		return 0
	}
	return count
}

// Close closes all open index handles.
func (g *Gateway) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	var firstErr error
	for name, idx := range g.indexes {
		if err := idx.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(g.indexes, name)
	}
	return firstErr
}

func emptySearchResult() *bleve.SearchResult {
	return &bleve.SearchResult{
		Status: &bleve.SearchStatus{},
		Hits:   search.DocumentMatchCollection{},
		Total:  0,
	}
}
