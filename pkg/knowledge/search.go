package knowledge

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// TavilyClient is the network search fallback, backed by the Tavily search
// API.
type TavilyClient struct {
	apiKey     string
	baseURL    string
	maxResults int
	httpClient *http.Client
}

// TavilyOption configures a TavilyClient.
type TavilyOption func(*TavilyClient)

// WithTavilyBaseURL overrides the API endpoint, mainly for tests.
func WithTavilyBaseURL(url string) TavilyOption {
	return func(c *TavilyClient) {
		if url != "" {
			c.baseURL = url
		}
	}
}

// WithTavilyMaxResults caps the number of returned snippets.
func WithTavilyMaxResults(n int) TavilyOption {
	return func(c *TavilyClient) {
		if n > 0 {
			c.maxResults = n
		}
	}
}

// NewTavilyClient builds a search client.
func NewTavilyClient(apiKey string, opts ...TavilyOption) (*TavilyClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("tavily api key is required")
	}
	c := &TavilyClient{
		apiKey:     apiKey,
		baseURL:    "https://api.tavily.com",
		maxResults: 3,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

type tavilyRequest struct {
	APIKey     string `json:"api_key"`
	Query      string `json:"query"`
	MaxResults int    `json:"max_results"`
}

type tavilyResponse struct {
	Results []struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	} `json:"results"`
}

// Search returns result snippets for the query.
func (c *TavilyClient) Search(ctx context.Context, query string) ([]string, error) {
	body, err := json.Marshal(tavilyRequest{
		APIKey:     c.apiKey,
		Query:      query,
		MaxResults: c.maxResults,
	})
	if err != nil {
		return nil, fmt.Errorf("encode search request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/search", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("search request: status %d: %s", resp.StatusCode, data)
	}

	var parsed tavilyResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	snippets := make([]string, 0, len(parsed.Results))
	for _, r := range parsed.Results {
		if r.Content == "" {
			continue
		}
		if r.Title != "" {
			snippets = append(snippets, r.Title+": "+r.Content)
			continue
		}
		snippets = append(snippets, r.Content)
	}
	return snippets, nil
}
