package google

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	googleoauth "golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"

	"github.com/kirillkom/archetype-mailer/internal/infrastructure/resilience"
)

const (
	ScopeDrive     = "https://www.googleapis.com/auth/drive"
	ScopeDocuments = "https://www.googleapis.com/auth/documents"
	ScopeGmailSend = "https://www.googleapis.com/auth/gmail.send"
)

// ServiceAccountClient returns an HTTP client authorized with the service
// account key at keyFile. A non-empty subject impersonates that user through
// domain-wide delegation.
func ServiceAccountClient(ctx context.Context, keyFile, subject string, scopes ...string) (*http.Client, error) {
	raw, err := os.ReadFile(keyFile)
	if err != nil {
		return nil, fmt.Errorf("read service account key: %w", err)
	}
	cfg, err := googleoauth.JWTConfigFromJSON(raw, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse service account key: %w", err)
	}
	cfg.Subject = strings.TrimSpace(subject)
	return cfg.Client(ctx), nil
}

func statusOf(err error) int {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		// Drive reports per-user rate limits as 403.
		if apiErr.Code == http.StatusForbidden && rateLimited(apiErr) {
			return http.StatusTooManyRequests
		}
		return apiErr.Code
	}
	return 0
}

func rateLimited(apiErr *googleapi.Error) bool {
	for _, item := range apiErr.Errors {
		switch item.Reason {
		case "rateLimitExceeded", "userRateLimitExceeded":
			return true
		}
	}
	return false
}

// ClassifyError handles errors returned by Google API clients.
var ClassifyError = resilience.StatusClassifier(statusOf)

// IsNotFound reports a 404 from a Google API.
func IsNotFound(err error) bool {
	var apiErr *googleapi.Error
	return errors.As(err, &apiErr) && apiErr.Code == http.StatusNotFound
}
