package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/candidhq/candid/pkg/ports"
)

const (
	// DefaultTopK is the number of nearest entries the gate inspects.
	DefaultTopK = 2

	// DefaultThreshold is the distance cutoff above which an entry is
	// treated as not relevant. 0.6 keeps loosely related filler out of
	// answers; raise it only if the corpus is sparse.
	DefaultThreshold = 0.6
)

// Decision is the outcome of one gate evaluation.
type Decision struct {
	// Escalate is true when the index had no sufficiently close entry and
	// the caller should fall back to network search.
	Escalate bool

	// Content is the concatenation of all relevant entries in ascending
	// distance order. Empty when Escalate is true.
	Content string

	// Hits are the raw entries the gate inspected, for logging and tests.
	Hits []ports.Hit
}

// Gate decides whether the private index answers a query well enough. It is
// a pure function of the query, the index snapshot, and the threshold.
type Gate struct {
	index     ports.KnowledgeIndex
	topK      int
	threshold float64
	logger    *slog.Logger
}

// GateOption configures a Gate.
type GateOption func(*Gate)

// WithTopK sets how many nearest entries the gate retrieves.
func WithTopK(k int) GateOption {
	return func(g *Gate) {
		if k > 0 {
			g.topK = k
		}
	}
}

// WithThreshold sets the relevance distance cutoff. An entry whose distance
// equals the threshold counts as not relevant.
func WithThreshold(t float64) GateOption {
	return func(g *Gate) {
		if t > 0 {
			g.threshold = t
		}
	}
}

// WithGateLogger sets the logger used for gate decisions.
func WithGateLogger(logger *slog.Logger) GateOption {
	return func(g *Gate) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// NewGate builds a gate over the given index.
func NewGate(index ports.KnowledgeIndex, opts ...GateOption) *Gate {
	g := &Gate{
		index:     index,
		topK:      DefaultTopK,
		threshold: DefaultThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Decide evaluates the query against the index. Entries at distance >=
// threshold are discarded; if none survive, the decision is to escalate.
func (g *Gate) Decide(ctx context.Context, query string) (*Decision, error) {
	hits, err := g.index.Query(ctx, query, g.topK)
	if err != nil {
		return nil, fmt.Errorf("query knowledge index: %w", err)
	}

	relevant := make([]string, 0, len(hits))
	for _, hit := range hits {
		if hit.Distance < g.threshold {
			relevant = append(relevant, hit.Content)
		}
	}

	if len(relevant) == 0 {
		best := -1.0
		if len(hits) > 0 {
			best = hits[0].Distance
		}
		g.logger.Debug("knowledge gate escalating", "best_distance", best, "threshold", g.threshold)
		return &Decision{Escalate: true, Hits: hits}, nil
	}

	g.logger.Debug("knowledge gate answering from index",
		"relevant", len(relevant), "best_distance", hits[0].Distance, "threshold", g.threshold)
	return &Decision{
		Content: strings.Join(relevant, "\n\n"),
		Hits:    hits,
	}, nil
}
