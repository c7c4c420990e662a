package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"testing"

	"google.golang.org/api/googleapi"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"server error", &googleapi.Error{Code: http.StatusInternalServerError}, true},
		{"rate limit 403", &googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "userRateLimitExceeded"}}}, true},
		{"permission 403", &googleapi.Error{Code: http.StatusForbidden, Errors: []googleapi.ErrorItem{{Reason: "insufficientFilePermissions"}}}, false},
		{"wrapped not found", fmt.Errorf("copy: %w", &googleapi.Error{Code: http.StatusNotFound}), false},
		{"plain", errors.New("boom"), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ClassifyError(tc.err).Retryable; got != tc.retryable {
				t.Fatalf("ClassifyError(%v).Retryable = %v", tc.err, got)
			}
		})
	}
	if !IsNotFound(fmt.Errorf("x: %w", &googleapi.Error{Code: http.StatusNotFound})) {
		t.Fatalf("expected IsNotFound")
	}
}

func TestServiceAccountClientRejectsBadKey(t *testing.T) {
	if _, err := ServiceAccountClient(context.Background(), filepath.Join(t.TempDir(), "missing.json"), ""); err == nil {
		t.Fatalf("expected error for missing key file")
	}

	path := filepath.Join(t.TempDir(), "key.json")
	if err := os.WriteFile(path, []byte(`{"type":"authorized_user"}`), 0o600); err != nil {
		t.Fatalf("write key: %v", err)
	}
	if _, err := ServiceAccountClient(context.Background(), path, "", ScopeDrive); err == nil {
		t.Fatalf("expected error for non service-account key")
	}
}
