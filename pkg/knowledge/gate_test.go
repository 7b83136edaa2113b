package knowledge

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/candidhq/candid/pkg/ports"
)

// stubIndex returns canned hits so gate decisions can be tested without any
// embedding engine.
type stubIndex struct {
	hits []ports.Hit
	err  error
}

func (s *stubIndex) Query(_ context.Context, _ string, k int) ([]ports.Hit, error) {
	if s.err != nil {
		return nil, s.err
	}
	if len(s.hits) > k {
		return s.hits[:k], nil
	}
	return s.hits, nil
}

func (s *stubIndex) Add(_ context.Context, _, _ string) error { return nil }

func (s *stubIndex) Len(_ context.Context) (int, error) { return len(s.hits), nil }

func TestGateReturnsContentBelowThreshold(t *testing.T) {
	gate := NewGate(&stubIndex{hits: []ports.Hit{
		{Content: "how to answer behavioral questions", Distance: 0.59},
	}}, WithThreshold(0.6))

	d, err := gate.Decide(context.Background(), "behavioral questions")
	require.NoError(t, err)
	assert.False(t, d.Escalate)
	assert.Equal(t, "how to answer behavioral questions", d.Content)
}

func TestGateEscalatesAboveThreshold(t *testing.T) {
	gate := NewGate(&stubIndex{hits: []ports.Hit{
		{Content: "unrelated note", Distance: 0.61},
	}}, WithThreshold(0.6))

	d, err := gate.Decide(context.Background(), "system design")
	require.NoError(t, err)
	assert.True(t, d.Escalate)
	assert.Empty(t, d.Content)
}

func TestGateEscalatesAtExactThreshold(t *testing.T) {
	// Distance equal to the threshold counts as not relevant.
	gate := NewGate(&stubIndex{hits: []ports.Hit{
		{Content: "borderline note", Distance: 0.6},
	}}, WithThreshold(0.6))

	d, err := gate.Decide(context.Background(), "borderline")
	require.NoError(t, err)
	assert.True(t, d.Escalate)
}

func TestGateEscalatesOnEmptyIndex(t *testing.T) {
	gate := NewGate(&stubIndex{})

	d, err := gate.Decide(context.Background(), "anything")
	require.NoError(t, err)
	assert.True(t, d.Escalate)
	assert.Empty(t, d.Hits)
}

func TestGateConcatenatesRelevantHitsInOrder(t *testing.T) {
	gate := NewGate(&stubIndex{hits: []ports.Hit{
		{Content: "closest", Distance: 0.1},
		{Content: "second", Distance: 0.3},
	}})

	d, err := gate.Decide(context.Background(), "query")
	require.NoError(t, err)
	assert.False(t, d.Escalate)
	assert.Equal(t, "closest\n\nsecond", d.Content)
}

func TestGateDropsOnlyIrrelevantHits(t *testing.T) {
	gate := NewGate(&stubIndex{hits: []ports.Hit{
		{Content: "good", Distance: 0.2},
		{Content: "filler", Distance: 0.9},
	}})

	d, err := gate.Decide(context.Background(), "query")
	require.NoError(t, err)
	assert.False(t, d.Escalate)
	assert.Equal(t, "good", d.Content)
}

func TestGatePropagatesIndexError(t *testing.T) {
	gate := NewGate(&stubIndex{err: assert.AnError})

	_, err := gate.Decide(context.Background(), "query")
	assert.ErrorIs(t, err, assert.AnError)
}
