package evaluator

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/micasillero/courier/internal/search"
)

const (
	// DefaultK is the cutoff for precision: only the first K hits count.
	DefaultK = 5

	defaultWorkers = 4
	defaultTimeout = 10 * time.Second
)

// Quality bands reported for an evaluation run.
const (
	BandExcellent        = "excellent"
	BandGood             = "good"
	BandNeedsImprovement = "needs improvement"
)

// Options controls how an evaluation run executes.
type Options struct {
	K       int
	Workers int
	Timeout time.Duration
}

func (o Options) withDefaults() Options {
	if o.K <= 0 {
		o.K = DefaultK
	}
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	return o
}

// QueryResult records how one query performed against its expectations.
type QueryResult struct {
	Query                 string   `json:"query"`
	Category              string   `json:"category"`
	ReturnedCodes         []string `json:"returned_codes"`
	RelevantInTopK        int      `json:"relevant_in_top_k"`
	FirstRelevantPosition int      `json:"first_relevant_position"`
	ZeroResults           bool     `json:"zero_results"`
}

// Metrics aggregates search quality over a set of queries.
type Metrics struct {
	NumQueries     int     `json:"num_queries"`
	PrecisionAtK   float64 `json:"precision_at_k"`
	MRR            float64 `json:"mrr"`
	ZeroResultRate float64 `json:"zero_result_rate"`
}

// CategoryMetrics is the per-category breakdown of an evaluation run.
type CategoryMetrics struct {
	Category string `json:"category"`
	Name     string `json:"name"`
	Metrics
}

// Report is the full outcome of an evaluation run.
type Report struct {
	GeneratedAt time.Time         `json:"generated_at"`
	K           int               `json:"k"`
	Overall     Metrics           `json:"overall"`
	QualityBand string            `json:"quality_band"`
	Categories  []CategoryMetrics `json:"categories"`
	Queries     []QueryResult     `json:"queries"`
}

// Evaluate runs every query case against the searcher and scores the results.
// Individual search failures are logged and treated as zero-result queries so
// one flaky call cannot abort a run.
func Evaluate(ctx context.Context, searcher search.Searcher, cases []QueryCase, opts Options) *Report {
	opts = opts.withDefaults()

	results := make([]QueryResult, len(cases))
	sem := make(chan struct{}, opts.Workers)
	var wg sync.WaitGroup

	for i, qc := range cases {
		wg.Add(1)
		go func(i int, qc QueryCase) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			callCtx, cancel := context.WithTimeout(ctx, opts.Timeout)
			defer cancel()

			hits, err := searcher.Search(callCtx, qc.Query, 0)
			if err != nil {
				slog.Warn("search failed during evaluation", "query", qc.Query, "error", err)
				hits = nil
			}
			results[i] = scoreQuery(qc, hits, opts.K)
		}(i, qc)
	}
	wg.Wait()

	report := &Report{
		GeneratedAt: time.Now().UTC(),
		K:           opts.K,
		Queries:     results,
	}
	report.Overall = aggregate(results, opts.K)
	report.QualityBand = QualityBand(report.Overall.PrecisionAtK)
	report.Categories = aggregateCategories(cases, results, opts.K)
	return report
}

func scoreQuery(qc QueryCase, hits []search.Hit, k int) QueryResult {
	r := QueryResult{
		Query:       qc.Query,
		Category:    qc.Category,
		ZeroResults: len(hits) == 0,
	}
	for _, h := range hits {
		r.ReturnedCodes = append(r.ReturnedCodes, h.Code)
	}

	for i, h := range hits {
		relevant := isRelevant(h.Code, qc.ExpectedCodePrefixes)
		if relevant && i < k {
			r.RelevantInTopK++
		}
		if relevant && r.FirstRelevantPosition == 0 {
			r.FirstRelevantPosition = i + 1
		}
	}
	return r
}

func isRelevant(code string, prefixes []string) bool {
	for _, p := range prefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

func aggregate(results []QueryResult, k int) Metrics {
	m := Metrics{NumQueries: len(results)}
	if m.NumQueries == 0 {
		return m
	}

	var relevant int
	var rrSum float64
	var zero int
	for _, r := range results {
		relevant += r.RelevantInTopK
		if r.FirstRelevantPosition > 0 {
			rrSum += 1.0 / float64(r.FirstRelevantPosition)
		}
		if r.ZeroResults {
			zero++
		}
	}

	n := float64(m.NumQueries)
	m.PrecisionAtK = float64(relevant) / (n * float64(k))
	m.MRR = rrSum / n
	m.ZeroResultRate = float64(zero) / n
	return m
}

func aggregateCategories(cases []QueryCase, results []QueryResult, k int) []CategoryMetrics {
	byCategory := make(map[string][]QueryResult)
	names := make(map[string]string)
	for i, qc := range cases {
		byCategory[qc.Category] = append(byCategory[qc.Category], results[i])
		names[qc.Category] = qc.CategoryName
	}

	keys := make([]string, 0, len(byCategory))
	for key := range byCategory {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := make([]CategoryMetrics, 0, len(keys))
	for _, key := range keys {
		out = append(out, CategoryMetrics{
			Category: key,
			Name:     names[key],
			Metrics:  aggregate(byCategory[key], k),
		})
	}
	return out
}

// QualityBand maps a precision score to the operational verdict used in
// evaluation reports.
func QualityBand(precisionAtK float64) string {
	switch {
	case precisionAtK >= 0.9:
		return BandExcellent
	case precisionAtK >= 0.8:
		return BandGood
	default:
		return BandNeedsImprovement
	}
}
