package docs

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	docsv1 "google.golang.org/api/docs/v1"
	"google.golang.org/api/option"
)

func TestReplaceTextSendsExactCaseReplaceAll(t *testing.T) {
	var path string
	var body struct {
		Requests []struct {
			ReplaceAllText struct {
				ContainsText struct {
					Text      string `json:"text"`
					MatchCase *bool  `json:"matchCase"`
				} `json:"containsText"`
				ReplaceText string `json:"replaceText"`
			} `json:"replaceAllText"`
		} `json:"requests"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"documentId":"doc-1","replies":[{"replaceAllText":{"occurrencesChanged":2}}]}`))
	}))
	defer server.Close()

	service, err := docsv1.NewService(context.Background(), option.WithEndpoint(server.URL+"/"), option.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	editor := New(service, nil)

	if err := editor.ReplaceText(context.Background(), "doc-1", "[NAME]", "Mia", true); err != nil {
		t.Fatalf("ReplaceText() error = %v", err)
	}
	if path != "/v1/documents/doc-1:batchUpdate" {
		t.Fatalf("unexpected path %q", path)
	}
	if len(body.Requests) != 1 {
		t.Fatalf("expected exactly one request, got %d", len(body.Requests))
	}
	got := body.Requests[0].ReplaceAllText
	if got.ContainsText.Text != "[NAME]" || got.ReplaceText != "Mia" || got.ContainsText.MatchCase == nil || !*got.ContainsText.MatchCase {
		t.Fatalf("unexpected replace request %+v", got)
	}
}

func TestReplaceTextReportsFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":{"code":403,"message":"The caller does not have permission"}}`))
	}))
	defer server.Close()

	service, err := docsv1.NewService(context.Background(), option.WithEndpoint(server.URL+"/"), option.WithHTTPClient(server.Client()))
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	if err := New(service, nil).ReplaceText(context.Background(), "doc-1", "[NAME]", "Mia", true); err == nil {
		t.Fatalf("expected error")
	}
}
