// Package search defines the retrieval collaborator contract and its
// OpenSearch implementation. The core only depends on ranked hits carrying a
// tariff code usable for prefix matching.
package search

import "context"

// Hit is one ranked result from the search collaborator.
type Hit struct {
	Code        string  `json:"code"`
	Description string  `json:"description"`
	Score       float64 `json:"score"`
}

// Searcher is the retrieval collaborator. Implementations may fail or time
// out; callers degrade a failed call to an empty result list rather than
// aborting their run.
type Searcher interface {
	Search(ctx context.Context, query string, limit int) ([]Hit, error)
}
