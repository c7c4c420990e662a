package drive

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	drivev3 "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/resilience"
)

type driveRequest struct {
	method string
	path   string
	query  string
	body   string
}

type driveServer struct {
	mu       sync.Mutex
	requests []driveRequest
	status   int
}

func (d *driveServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	d.mu.Lock()
	d.requests = append(d.requests, driveRequest{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, body: string(body)})
	status := d.status
	d.mu.Unlock()

	if status != 0 {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = fmt.Fprintf(w, `{"error":{"code":%d,"message":%q}}`, status, http.StatusText(status))
		return
	}

	w.Header().Set("Content-Type", "application/json")
	switch {
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/copy"):
		_, _ = w.Write([]byte(`{"id":"copy-1"}`))
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/export"):
		w.Header().Set("Content-Type", "application/pdf")
		_, _ = w.Write([]byte("%PDF-1.7 exported"))
	case r.Method == http.MethodDelete:
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/permissions"):
		_, _ = w.Write([]byte(`{"id":"perm-1"}`))
	case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, "/files"):
		_, _ = w.Write([]byte(`{"id":"up-1","webViewLink":"https://drive.google.com/file/d/up-1/view"}`))
	default:
		http.NotFound(w, r)
	}
}

func (d *driveServer) last() driveRequest {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.requests[len(d.requests)-1]
}

func newTestStore(t *testing.T, handler http.Handler) *Store {
	t.Helper()
	return newTestStoreWithExecutor(t, handler, nil)
}

func newTestStoreWithExecutor(t *testing.T, handler http.Handler, executor *resilience.Executor) *Store {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	service, err := drivev3.NewService(context.Background(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}
	return New(service, "folder-9", executor)
}

func TestCopyTemplateNamesCopy(t *testing.T) {
	srv := &driveServer{}
	store := newTestStore(t, srv)

	id, err := store.CopyTemplate(context.Background(), "tmpl-1", "Mia - gelber Schöpfer")
	if err != nil {
		t.Fatalf("CopyTemplate() error = %v", err)
	}
	if id != "copy-1" {
		t.Fatalf("unexpected id %q", id)
	}
	req := srv.last()
	if !strings.HasSuffix(req.path, "/files/tmpl-1/copy") || !strings.Contains(req.query, "supportsAllDrives=true") {
		t.Fatalf("unexpected request %+v", req)
	}
	var meta map[string]any
	_ = json.Unmarshal([]byte(req.body), &meta)
	if meta["name"] != "Mia - gelber Schöpfer" {
		t.Fatalf("unexpected copy metadata %v", meta)
	}
}

func TestExportReturnsBytes(t *testing.T) {
	srv := &driveServer{}
	store := newTestStore(t, srv)

	data, err := store.Export(context.Background(), "copy-1", "application/pdf")
	if err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if string(data) != "%PDF-1.7 exported" {
		t.Fatalf("unexpected export %q", data)
	}
	if !strings.Contains(srv.last().query, "mimeType=application%2Fpdf") {
		t.Fatalf("unexpected query %q", srv.last().query)
	}
}

func TestUploadPlacesFileInFolder(t *testing.T) {
	srv := &driveServer{}
	store := newTestStore(t, srv)

	file, err := store.Upload(context.Background(), "Mia - Ergebnis - gelber Schöpfer.pdf", "application/pdf", []byte("%PDF"))
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if file.ID != "up-1" || file.WebViewLink == "" {
		t.Fatalf("unexpected file %+v", file)
	}
	req := srv.last()
	if !strings.Contains(req.body, `"folder-9"`) || !strings.Contains(req.body, "%PDF") {
		t.Fatalf("upload body lacks parent or content: %q", req.body)
	}
}

func TestGrantReadNotifiesReader(t *testing.T) {
	srv := &driveServer{}
	store := newTestStore(t, srv)

	if err := store.GrantRead(context.Background(), "up-1", "mia@example.com", "Hallo Mia"); err != nil {
		t.Fatalf("GrantRead() error = %v", err)
	}
	req := srv.last()
	if !strings.Contains(req.query, "sendNotificationEmail=true") || !strings.Contains(req.query, "emailMessage=Hallo+Mia") {
		t.Fatalf("unexpected query %q", req.query)
	}
	var perm map[string]any
	_ = json.Unmarshal([]byte(req.body), &perm)
	if perm["role"] != "reader" || perm["type"] != "user" || perm["emailAddress"] != "mia@example.com" {
		t.Fatalf("unexpected permission %v", perm)
	}
}

func TestDeleteNotFoundMapsToDomain(t *testing.T) {
	srv := &driveServer{status: http.StatusNotFound}
	store := newTestStore(t, srv)

	err := store.Delete(context.Background(), "gone")
	if !errors.Is(err, domain.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func retryingExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    3,
		RetryInitialBackoff: time.Millisecond,
		RetryMaxBackoff:     2 * time.Millisecond,
	}, slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestUploadIsNotRetriedOnServerError(t *testing.T) {
	srv := &driveServer{status: http.StatusServiceUnavailable}
	store := newTestStoreWithExecutor(t, srv, retryingExecutor())

	_, err := store.Upload(context.Background(), "Mia.pdf", "application/pdf", []byte("%PDF"))
	if !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if len(srv.requests) != 1 {
		t.Fatalf("expected one upload request, got %d", len(srv.requests))
	}
}

func TestGrantReadRetriesServerError(t *testing.T) {
	srv := &driveServer{status: http.StatusServiceUnavailable}
	store := newTestStoreWithExecutor(t, srv, retryingExecutor())

	if err := store.GrantRead(context.Background(), "up-1", "mia@example.com", "Hallo"); !errors.Is(err, domain.ErrTemporary) {
		t.Fatalf("expected ErrTemporary, got %v", err)
	}
	srv.mu.Lock()
	defer srv.mu.Unlock()
	if len(srv.requests) != 3 {
		t.Fatalf("expected three share attempts, got %d", len(srv.requests))
	}
}
