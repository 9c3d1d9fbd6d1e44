package drivers

import (
	"bytes"
	"context"
	"testing"
)

func TestValidateReportKey(t *testing.T) {
	valid := []string{
		"evaluations/2026-08-28/report.json",
		"report.json",
	}
	for _, key := range valid {
		if err := validateReportKey(key); err != nil {
			t.Errorf("key %q should be valid: %v", key, err)
		}
	}

	invalid := []string{
		"",
		"   ",
		"/evaluations/report.json",
		"evaluations/../../etc/passwd",
	}
	for _, key := range invalid {
		if err := validateReportKey(key); err == nil {
			t.Errorf("key %q should be rejected", key)
		}
	}
}

func TestContentTypeForKey(t *testing.T) {
	cases := map[string]string{
		"evaluations/2026-08-28/report.json": "application/json",
		"evaluations/2026-08-28/report.html": "text/html; charset=utf-8",
		"evaluations/2026-08-28/report.bin":  "application/octet-stream",
	}
	for key, want := range cases {
		if got := contentTypeForKey(key); got != want {
			t.Errorf("contentTypeForKey(%q) = %q, want %q", key, got, want)
		}
	}
}

func TestS3Driver_RejectsInvalidKeysBeforeAnyCall(t *testing.T) {
	// A driver without a client still rejects bad keys up front.
	driver := &S3Driver{Bucket: "reports"}
	ctx := context.Background()

	if err := driver.Save(ctx, "../escape.json", bytes.NewReader(nil), ""); err == nil {
		t.Error("Save should reject a traversing key")
	}
	if _, _, err := driver.Get(ctx, ""); err == nil {
		t.Error("Get should reject an empty key")
	}
	if err := driver.Delete(ctx, "/absolute.json"); err == nil {
		t.Error("Delete should reject an absolute key")
	}
	if _, err := driver.GenerateURL(ctx, "..", 0); err == nil {
		t.Error("GenerateURL should reject a traversing key")
	}
}
