package drivers

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLocalFSDriver_RoundTrip(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "localfs-test")
	if err != nil {
		t.Fatalf("failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tempDir)

	driver, err := NewLocalFSDriver(tempDir, "/reports")
	if err != nil {
		t.Fatalf("failed to create driver: %v", err)
	}

	ctx := context.Background()
	key := "evaluations/2026-08-28/report.json"
	content := []byte(`{"precision_at_k": 0.82}`)

	// Test Save
	err = driver.Save(ctx, key, bytes.NewReader(content), "application/json")
	if err != nil {
		t.Errorf("Save failed: %v", err)
	}

	// The slash-separated key maps to a nested directory.
	fullPath := filepath.Join(tempDir, "evaluations", "2026-08-28", "report.json")
	if _, err := os.Stat(fullPath); os.IsNotExist(err) {
		t.Errorf("file not found at: %s", fullPath)
	}

	// Test Get
	reader, contentType, err := driver.Get(ctx, key)
	if err != nil {
		t.Errorf("Get failed: %v", err)
	}
	defer reader.Close()

	if contentType != "application/json" {
		t.Errorf("expected content type application/json, got %s", contentType)
	}

	got, err := io.ReadAll(reader)
	if err != nil {
		t.Errorf("failed to read content: %v", err)
	}
	if !bytes.Equal(got, content) {
		t.Errorf("content mismatch: %s", got)
	}

	// Verify URL
	url, err := driver.GenerateURL(ctx, key, 0)
	if err != nil {
		t.Errorf("GenerateURL failed: %v", err)
	}
	if !strings.HasSuffix(url, key) || !strings.Contains(url, "/reports") {
		t.Errorf("unexpected URL: %s", url)
	}

	// Test Delete
	err = driver.Delete(ctx, key)
	if err != nil {
		t.Errorf("Delete failed: %v", err)
	}

	if _, err := os.Stat(fullPath); !os.IsNotExist(err) {
		t.Error("file still exists after deletion")
	}

	// Deleting a missing key is not an error
	if err := driver.Delete(ctx, key); err != nil {
		t.Errorf("second Delete failed: %v", err)
	}
}
