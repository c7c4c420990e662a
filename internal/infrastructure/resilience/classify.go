package resilience

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

// HTTPStatusError is returned by REST adapters for non-2xx responses.
type HTTPStatusError struct {
	Service    string
	Operation  string
	StatusCode int
	Status     string
	Body       string
}

func (e *HTTPStatusError) Error() string {
	if e == nil {
		return "http status error"
	}
	if strings.TrimSpace(e.Body) == "" {
		return fmt.Sprintf("%s %s status: %s", e.Service, e.Operation, e.Status)
	}
	return fmt.Sprintf("%s %s status: %s: %s", e.Service, e.Operation, e.Status, strings.TrimSpace(e.Body))
}

func IsRetryableHTTPStatus(statusCode int) bool {
	switch statusCode {
	case http.StatusRequestTimeout, http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}

// StatusClassifier builds an ErrorClassifier around a status extractor.
// statusOf returns the HTTP status carried by err, or 0 when there is none.
func StatusClassifier(statusOf func(error) int) ErrorClassifier {
	return func(err error) ErrorClassification {
		if err == nil {
			return ErrorClassification{}
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return ErrorClassification{Retryable: false, RecordFailure: false}
		}
		if IsCircuitOpen(err) {
			return ErrorClassification{Retryable: true, RecordFailure: true}
		}
		if code := statusOf(err); code > 0 {
			if IsRetryableHTTPStatus(code) {
				return ErrorClassification{Retryable: true, RecordFailure: true}
			}
			return ErrorClassification{Retryable: false, RecordFailure: false}
		}

		var netErr net.Error
		if errors.As(err, &netErr) {
			return ErrorClassification{Retryable: true, RecordFailure: true}
		}
		return ErrorClassification{Retryable: false, RecordFailure: true}
	}
}

// ClassifyHTTP handles errors produced by REST adapters in this module.
var ClassifyHTTP = StatusClassifier(func(err error) int {
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
})

// SingleAttempt keeps the breaker accounting of classifier but never retries.
// Non-idempotent calls use it so a lost response cannot repeat a side effect.
func SingleAttempt(classifier ErrorClassifier) ErrorClassifier {
	if classifier == nil {
		classifier = defaultClassifier
	}
	return func(err error) ErrorClassification {
		c := classifier(err)
		c.Retryable = false
		return c
	}
}

// WrapTemporary marks errors the classifier considers retryable.
func WrapTemporary(operation string, err error, classifier ErrorClassifier) error {
	if err == nil {
		return nil
	}
	if domain.IsKind(err, domain.ErrTemporary) {
		return err
	}
	if classifier == nil {
		classifier = defaultClassifier
	}
	if classifier(err).Retryable || IsCircuitOpen(err) {
		return domain.WrapError(domain.ErrTemporary, operation, err)
	}
	return err
}
