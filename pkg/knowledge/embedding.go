package knowledge

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"

	"google.golang.org/genai"
)

// CosineDistance returns 1 minus the cosine similarity of a and b, so 0 is
// identical and values grow as the vectors diverge. Vectors of mismatched
// length are an error; a zero-magnitude vector yields the maximum distance.
func CosineDistance(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector dimension mismatch: %d != %d", len(a), len(b))
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}

	if magA == 0 || magB == 0 {
		return 1, nil
	}

	return 1 - dot/(math.Sqrt(magA)*math.Sqrt(magB)), nil
}

// GenAIEngine produces embeddings through Google's Gemini API.
type GenAIEngine struct {
	client *genai.Client
	model  string
}

// NewGenAIEngine builds a GenAI embedding engine. An empty model selects
// gemini-embedding-001.
func NewGenAIEngine(ctx context.Context, apiKey, model string) (*GenAIEngine, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai api key is required")
	}
	if model == "" {
		model = "gemini-embedding-001"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GenAIEngine{client: client, model: model}, nil
}

// Embed returns the embedding for a single text.
func (e *GenAIEngine) Embed(ctx context.Context, text string) ([]float32, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(text, genai.RoleUser),
	}

	result, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{
		TaskType: "SEMANTIC_SIMILARITY",
	})
	if err != nil {
		return nil, fmt.Errorf("genai embed: %w", err)
	}
	if len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("genai embed: no embeddings returned")
	}

	return result.Embeddings[0].Values, nil
}

// Dimension reports the vector size for gemini-embedding-001.
func (e *GenAIEngine) Dimension() int {
	return 768
}

// HashEngine is a deterministic, offline embedding engine. It hashes word
// trigrams into a fixed-size vector, which preserves enough lexical overlap
// for tests and air-gapped deployments without any network dependency.
type HashEngine struct {
	dim int
}

// NewHashEngine builds a hash engine with the given dimension. Dimensions
// below 8 are raised to 64.
func NewHashEngine(dim int) *HashEngine {
	if dim < 8 {
		dim = 64
	}
	return &HashEngine{dim: dim}
}

// Embed maps text to a vector by bucketing character trigrams.
func (e *HashEngine) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, e.dim)
	runes := []rune(text)
	if len(runes) < 3 {
		runes = append(runes, ' ', ' ', ' ')
	}
	for i := 0; i+3 <= len(runes); i++ {
		h := fnv.New32a()
		h.Write([]byte(string(runes[i : i+3])))
		vec[h.Sum32()%uint32(e.dim)]++
	}
	return vec, nil
}

// Dimension reports the configured vector size.
func (e *HashEngine) Dimension() int {
	return e.dim
}
