package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/candidhq/candid/pkg/ports"
)

// Index is an in-memory vector index over the knowledge corpus. It embeds
// documents on Add and scans all vectors on Query, which is the right shape
// for corpora of curated notes rather than web-scale collections.
type Index struct {
	engine ports.EmbeddingEngine
	logger *slog.Logger

	mu   sync.RWMutex
	docs []indexedDoc
	ids  map[string]int
}

type indexedDoc struct {
	id      string
	content string
	vector  []float32
}

// IndexOption configures an Index.
type IndexOption func(*Index)

// WithIndexLogger sets the logger used for index operations.
func WithIndexLogger(logger *slog.Logger) IndexOption {
	return func(ix *Index) {
		if logger != nil {
			ix.logger = logger
		}
	}
}

// NewIndex builds an empty index backed by the given embedding engine.
func NewIndex(engine ports.EmbeddingEngine, opts ...IndexOption) *Index {
	ix := &Index{
		engine: engine,
		logger: slog.Default(),
		ids:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(ix)
	}
	return ix
}

// Add embeds and indexes a document. Re-adding an existing id replaces its
// content and vector.
func (ix *Index) Add(ctx context.Context, id, content string) error {
	if id == "" {
		return fmt.Errorf("document id is required")
	}
	if content == "" {
		return fmt.Errorf("document %q has no content", id)
	}

	vec, err := ix.engine.Embed(ctx, content)
	if err != nil {
		return fmt.Errorf("embed document %q: %w", id, err)
	}

	ix.mu.Lock()
	defer ix.mu.Unlock()

	if pos, ok := ix.ids[id]; ok {
		ix.docs[pos] = indexedDoc{id: id, content: content, vector: vec}
		return nil
	}
	ix.ids[id] = len(ix.docs)
	ix.docs = append(ix.docs, indexedDoc{id: id, content: content, vector: vec})
	ix.logger.Debug("indexed document", "id", id, "size", len(ix.docs))
	return nil
}

// Query returns up to k hits ordered by ascending distance.
func (ix *Index) Query(ctx context.Context, text string, k int) ([]ports.Hit, error) {
	if k <= 0 {
		k = 2
	}

	qvec, err := ix.engine.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	ix.mu.RLock()
	defer ix.mu.RUnlock()

	hits := make([]ports.Hit, 0, len(ix.docs))
	for _, doc := range ix.docs {
		dist, err := CosineDistance(qvec, doc.vector)
		if err != nil {
			ix.logger.Warn("skipping document with mismatched vector", "id", doc.id, "err", err)
			continue
		}
		hits = append(hits, ports.Hit{Content: doc.content, Distance: dist})
	}

	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	if len(hits) > k {
		hits = hits[:k]
	}
	return hits, nil
}

// IDs returns the indexed document ids in insertion order.
func (ix *Index) IDs() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	ids := make([]string, len(ix.docs))
	for i, doc := range ix.docs {
		ids[i] = doc.id
	}
	return ids
}

// Len reports the number of indexed documents.
func (ix *Index) Len(_ context.Context) (int, error) {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return len(ix.docs), nil
}
