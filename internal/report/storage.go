package report

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"
)

// StorageDriver defines how generated artifacts (evaluation reports, keyword
// run summaries) are persisted and served back.
type StorageDriver interface {
	// Save writes the content under the given key
	Save(ctx context.Context, key string, body io.Reader, contentType string) error

	// Get returns a ReadCloser to stream the artifact back and its content type
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)

	// Delete removes the artifact
	Delete(ctx context.Context, key string) error

	// GenerateURL returns a public-facing URL
	GenerateURL(ctx context.Context, key string, expires time.Duration) (string, error)
}

// SaveJSON marshals v with indentation and stores it under key.
func SaveJSON(ctx context.Context, driver StorageDriver, key string, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	if err := driver.Save(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		return fmt.Errorf("failed to store report %s: %w", key, err)
	}
	return nil
}
