package search

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/opensearch-project/opensearch-go/v2"
	"github.com/opensearch-project/opensearch-go/v2/opensearchapi"
)

// minQueryLength mirrors the production search endpoint: queries shorter than
// this return no hits instead of flooding the index with one-letter matches.
const minQueryLength = 3

const defaultSearchLimit = 20

// OpenSearchConfig holds connection settings for the tariff search index.
type OpenSearchConfig struct {
	Addresses []string
	Username  string
	Password  string
	Index     string
}

// OpenSearchSearcher queries the tariff index with the same weighted
// multi-match the production search endpoint uses: code^3, description^2,
// search_keywords, fuzziness AUTO, restricted to courier-allowed items.
type OpenSearchSearcher struct {
	client *opensearch.Client
	index  string
}

func NewOpenSearchSearcher(cfg OpenSearchConfig) (*OpenSearchSearcher, error) {
	if len(cfg.Addresses) == 0 {
		return nil, fmt.Errorf("opensearch addresses cannot be empty")
	}
	if cfg.Index == "" {
		return nil, fmt.Errorf("opensearch index cannot be empty")
	}

	client, err := opensearch.NewClient(opensearch.Config{
		Addresses:     cfg.Addresses,
		Username:      cfg.Username,
		Password:      cfg.Password,
		MaxRetries:    3,
		RetryBackoff:  func(i int) time.Duration { return time.Duration(i) * 100 * time.Millisecond },
		RetryOnStatus: []int{502, 503, 504, 429},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	return &OpenSearchSearcher{client: client, index: cfg.Index}, nil
}

func (s *OpenSearchSearcher) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if len(query) < minQueryLength {
		return nil, nil
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}

	dsl := map[string]interface{}{
		"size": limit,
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must": map[string]interface{}{
					"multi_match": map[string]interface{}{
						"query":     query,
						"fields":    []string{"code^3", "description^2", "search_keywords"},
						"fuzziness": "AUTO",
					},
				},
				"filter": map[string]interface{}{
					"term": map[string]interface{}{"courier_category": "ALLOWED"},
				},
			},
		},
	}

	body, err := json.Marshal(dsl)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}

	req := opensearchapi.SearchRequest{
		Index: []string{s.index},
		Body:  bytes.NewReader(body),
	}
	resp, err := req.Do(ctx, s.client)
	if err != nil {
		return nil, fmt.Errorf("search request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.IsError() {
		return nil, fmt.Errorf("search request returned %s", resp.Status())
	}

	return parseHits(resp)
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Score  float64 `json:"_score"`
			Source struct {
				Code        string `json:"code"`
				Description string `json:"description"`
			} `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func parseHits(resp *opensearchapi.Response) ([]Hit, error) {
	var parsed searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode search response: %w", err)
	}

	hits := make([]Hit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, Hit{
			Code:        h.Source.Code,
			Description: h.Source.Description,
			Score:       h.Score,
		})
	}
	return hits, nil
}
