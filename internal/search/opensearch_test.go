package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewOpenSearchSearcher_Validation(t *testing.T) {
	_, err := NewOpenSearchSearcher(OpenSearchConfig{Index: "tariff_items"})
	assert.Error(t, err)

	_, err = NewOpenSearchSearcher(OpenSearchConfig{Addresses: []string{"http://localhost:9200"}})
	assert.Error(t, err)

	searcher, err := NewOpenSearchSearcher(OpenSearchConfig{
		Addresses: []string{"http://localhost:9200"},
		Index:     "tariff_items",
	})
	assert.NoError(t, err)
	assert.NotNil(t, searcher)
}

func TestOpenSearchSearcher_ShortQueriesReturnNoHits(t *testing.T) {
	searcher, err := NewOpenSearchSearcher(OpenSearchConfig{
		Addresses: []string{"http://localhost:9200"},
		Index:     "tariff_items",
	})
	assert.NoError(t, err)

	// Below the minimum length no request is made at all.
	for _, q := range []string{"", "a", "ab"} {
		hits, err := searcher.Search(context.Background(), q, 10)
		assert.NoError(t, err)
		assert.Nil(t, hits)
	}
}
