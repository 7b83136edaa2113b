package ports

import "context"

// Hit is one retrieval result from a KnowledgeIndex query.
type Hit struct {
	// Content is the stored document text.
	Content string

	// Distance is 1 minus the cosine similarity between the query and the
	// document, so 0 is identical and larger is less similar.
	Distance float64
}

// KnowledgeIndex answers nearest-neighbour queries over the curated
// knowledge base.
type KnowledgeIndex interface {
	// Query returns up to k hits ordered by ascending distance.
	Query(ctx context.Context, text string, k int) ([]Hit, error)

	// Add indexes a document.
	Add(ctx context.Context, id, content string) error

	// Len reports the number of indexed documents.
	Len(ctx context.Context) (int, error)
}

// SearchProvider is the network search fallback used when the knowledge base
// has no sufficiently close answer.
type SearchProvider interface {
	// Search returns raw result snippets for the query.
	Search(ctx context.Context, query string) ([]string, error)
}
