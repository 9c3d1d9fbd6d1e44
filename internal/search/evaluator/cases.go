package evaluator

import (
	"encoding/json"
	"fmt"
	"os"
)

// QueryCase is one evaluation query with the tariff code prefixes that count
// as relevant results for it.
type QueryCase struct {
	Query                string
	Category             string
	CategoryName         string
	ExpectedCodePrefixes []string
}

type caseFile struct {
	Metadata struct {
		Description string `json:"description"`
		Version     string `json:"version"`
	} `json:"metadata"`
	Categories map[string]struct {
		Description      string   `json:"description"`
		ExpectedPrefixes []string `json:"expected_code_prefixes"`
		Queries          []string `json:"queries"`
	} `json:"categories"`
}

// LoadCases reads an evaluation dataset from a JSON file. Each category
// carries a set of expected code prefixes shared by all of its queries.
func LoadCases(path string) ([]QueryCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read evaluation dataset: %w", err)
	}

	var parsed caseFile
	if err := json.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse evaluation dataset: %w", err)
	}
	if len(parsed.Categories) == 0 {
		return nil, fmt.Errorf("evaluation dataset has no categories")
	}

	var cases []QueryCase
	for key, cat := range parsed.Categories {
		for _, q := range cat.Queries {
			cases = append(cases, QueryCase{
				Query:                q,
				Category:             key,
				CategoryName:         cat.Description,
				ExpectedCodePrefixes: cat.ExpectedPrefixes,
			})
		}
	}
	return cases, nil
}
