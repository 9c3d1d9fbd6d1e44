package evaluator

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/micasillero/courier/internal/search"
)

// scriptedSearcher returns a fixed hit list per query.
type scriptedSearcher struct {
	hits map[string][]search.Hit
	err  error
}

func (s *scriptedSearcher) Search(ctx context.Context, query string, limit int) ([]search.Hit, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.hits[query], nil
}

func hit(code string) search.Hit {
	return search.Hit{Code: code, Description: "desc", Score: 1}
}

func TestEvaluate_OverallMetrics(t *testing.T) {
	hits := make(map[string][]search.Hit)
	var cases []QueryCase

	// Eight queries with one relevant result at rank 1, two with no results.
	for i := 0; i < 8; i++ {
		q := fmt.Sprintf("query-%d", i)
		hits[q] = []search.Hit{hit("6402.99.90.00")}
		cases = append(cases, QueryCase{
			Query:                q,
			Category:             "calzado",
			CategoryName:         "Calzado",
			ExpectedCodePrefixes: []string{"6402"},
		})
	}
	for i := 8; i < 10; i++ {
		cases = append(cases, QueryCase{
			Query:                fmt.Sprintf("query-%d", i),
			Category:             "calzado",
			ExpectedCodePrefixes: []string{"6402"},
		})
	}

	report := Evaluate(context.Background(), &scriptedSearcher{hits: hits}, cases, Options{})

	assert.Equal(t, 10, report.Overall.NumQueries)
	assert.InDelta(t, 0.16, report.Overall.PrecisionAtK, 1e-9)
	assert.InDelta(t, 0.8, report.Overall.MRR, 1e-9)
	assert.InDelta(t, 0.2, report.Overall.ZeroResultRate, 1e-9)
	assert.Equal(t, "needs improvement", report.QualityBand)
	assert.Equal(t, DefaultK, report.K)
}

func TestEvaluate_PrecisionCountsOnlyTopK(t *testing.T) {
	// Five irrelevant hits followed by one relevant: P@5 is zero but MRR is 1/6.
	hits := map[string][]search.Hit{
		"botas": {
			hit("0101.21.00.00"), hit("0102.21.00.00"), hit("0103.91.00.00"),
			hit("0104.10.00.00"), hit("0105.11.00.00"), hit("6402.99.90.00"),
		},
	}
	cases := []QueryCase{{Query: "botas", Category: "calzado", ExpectedCodePrefixes: []string{"6402"}}}

	report := Evaluate(context.Background(), &scriptedSearcher{hits: hits}, cases, Options{})

	assert.InDelta(t, 0.0, report.Overall.PrecisionAtK, 1e-9)
	assert.InDelta(t, 1.0/6.0, report.Overall.MRR, 1e-9)
	assert.Equal(t, 0, report.Queries[0].RelevantInTopK)
	assert.Equal(t, 6, report.Queries[0].FirstRelevantPosition)
}

func TestEvaluate_MetricBounds(t *testing.T) {
	hits := map[string][]search.Hit{
		"zapatos": {hit("6402.11.00.00"), hit("6402.12.00.00"), hit("6402.19.00.00"), hit("6402.20.00.00"), hit("6402.91.00.00")},
	}
	cases := []QueryCase{{Query: "zapatos", Category: "calzado", ExpectedCodePrefixes: []string{"6402"}}}

	report := Evaluate(context.Background(), &scriptedSearcher{hits: hits}, cases, Options{})

	assert.InDelta(t, 1.0, report.Overall.PrecisionAtK, 1e-9)
	assert.InDelta(t, 1.0, report.Overall.MRR, 1e-9)
	assert.InDelta(t, 0.0, report.Overall.ZeroResultRate, 1e-9)
	assert.Equal(t, "excellent", report.QualityBand)
}

func TestEvaluate_SearchErrorsCountAsZeroResults(t *testing.T) {
	cases := []QueryCase{
		{Query: "zapatos", Category: "calzado", ExpectedCodePrefixes: []string{"6402"}},
		{Query: "botas", Category: "calzado", ExpectedCodePrefixes: []string{"6402"}},
	}

	report := Evaluate(context.Background(), &scriptedSearcher{err: errors.New("cluster unreachable")}, cases, Options{})

	assert.Equal(t, 2, report.Overall.NumQueries)
	assert.InDelta(t, 1.0, report.Overall.ZeroResultRate, 1e-9)
	assert.InDelta(t, 0.0, report.Overall.MRR, 1e-9)
	for _, q := range report.Queries {
		assert.True(t, q.ZeroResults)
	}
}

func TestEvaluate_CategoryBreakdown(t *testing.T) {
	hits := map[string][]search.Hit{
		"zapatos":  {hit("6402.99.90.00")},
		"caballos": nil,
	}
	cases := []QueryCase{
		{Query: "zapatos", Category: "calzado", CategoryName: "Calzado", ExpectedCodePrefixes: []string{"6402"}},
		{Query: "caballos", Category: "animales", CategoryName: "Animales vivos", ExpectedCodePrefixes: []string{"0101"}},
	}

	report := Evaluate(context.Background(), &scriptedSearcher{hits: hits}, cases, Options{})

	assert.Len(t, report.Categories, 2)
	// Categories are sorted by key.
	assert.Equal(t, "animales", report.Categories[0].Category)
	assert.InDelta(t, 1.0, report.Categories[0].ZeroResultRate, 1e-9)
	assert.Equal(t, "calzado", report.Categories[1].Category)
	assert.InDelta(t, 1.0, report.Categories[1].MRR, 1e-9)
}

func TestQualityBand(t *testing.T) {
	assert.Equal(t, "excellent", QualityBand(0.95))
	assert.Equal(t, "excellent", QualityBand(0.9))
	assert.Equal(t, "good", QualityBand(0.85))
	assert.Equal(t, "good", QualityBand(0.8))
	assert.Equal(t, "needs improvement", QualityBand(0.79))
	assert.Equal(t, "needs improvement", QualityBand(0))
}
