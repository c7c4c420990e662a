package airtable

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/resilience"
)

const (
	DefaultBaseURL = "https://api.airtable.com"

	fieldName  = "Name"
	fieldEmail = "E-Mail"
	fieldSent  = "Gesendet"
	fieldLabel = "Dominante Tag - Label"

	unprocessedFormula = "AND({Gesendet} = FALSE(), OR({Dominante Tag - Label} = BLANK(), {Dominante Tag - Label} = ''))"
)

type Config struct {
	BaseURL string
	APIKey  string
	BaseID  string
	Table   string
}

// Store reads and updates survey records in an Airtable table.
type Store struct {
	baseURL    string
	apiKey     string
	tablePath  string
	httpClient *http.Client
	executor   *resilience.Executor
}

func New(cfg Config, httpClient *http.Client, executor *resilience.Executor) *Store {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		base = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &Store{
		baseURL:    base,
		apiKey:     cfg.APIKey,
		tablePath:  "/v0/" + url.PathEscape(cfg.BaseID) + "/" + url.PathEscape(cfg.Table),
		httpClient: httpClient,
		executor:   executor,
	}
}

type record struct {
	ID     string                     `json:"id"`
	Fields map[string]json.RawMessage `json:"fields"`
}

type listResponse struct {
	Records []record `json:"records"`
	Offset  string   `json:"offset"`
}

func (s *Store) FetchUnprocessed(ctx context.Context) ([]domain.Submission, error) {
	var out []domain.Submission
	offset := ""
	for {
		page, err := s.listPage(ctx, offset)
		if err != nil {
			return nil, resilience.WrapTemporary("airtable.list", err, resilience.ClassifyHTTP)
		}
		for _, rec := range page.Records {
			out = append(out, toSubmission(rec))
		}
		if page.Offset == "" {
			return out, nil
		}
		offset = page.Offset
	}
}

func (s *Store) listPage(ctx context.Context, offset string) (listResponse, error) {
	query := url.Values{}
	query.Set("filterByFormula", unprocessedFormula)
	if offset != "" {
		query.Set("offset", offset)
	}

	return resilience.Do(ctx, s.executor, "airtable.list", func(callCtx context.Context) (listResponse, error) {
		var page listResponse
		err := s.doJSON(callCtx, http.MethodGet, s.tablePath+"?"+query.Encode(), nil, &page, "list")
		return page, err
	}, resilience.ClassifyHTTP)
}

func (s *Store) MarkProcessed(ctx context.Context, id string, archetype domain.Archetype) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.WrapError(domain.ErrInvalidInput, "airtable.mark", fmt.Errorf("record id is empty"))
	}
	payload := map[string]any{
		"fields": map[string]any{
			fieldSent:  true,
			fieldLabel: archetype.String(),
		},
	}

	err := s.execute(ctx, "airtable.mark", func(callCtx context.Context) error {
		return s.doJSON(callCtx, http.MethodPatch, s.tablePath+"/"+url.PathEscape(id), payload, nil, "mark")
	})
	if statusOf(err) == http.StatusNotFound {
		return domain.WrapError(domain.ErrRecordNotFound, "airtable.mark", err)
	}
	return resilience.WrapTemporary("airtable.mark", err, resilience.ClassifyHTTP)
}

func (s *Store) execute(ctx context.Context, operation string, fn func(context.Context) error) error {
	if s.executor == nil {
		return fn(ctx)
	}
	return s.executor.Execute(ctx, operation, fn, resilience.ClassifyHTTP)
}

func (s *Store) doJSON(ctx context.Context, method, path string, payload any, out any, operation string) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("marshal %s request: %w", operation, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create %s request: %w", operation, err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("airtable %s request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return &resilience.HTTPStatusError{
			Service:    "airtable",
			Operation:  operation,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(msg),
		}
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", operation, err)
	}
	return nil
}

func statusOf(err error) int {
	var statusErr *resilience.HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	return 0
}
