package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"

	"github.com/kirillkom/archetype-mailer/internal/infrastructure/resilience"
)

const (
	DefaultModel = "gemini-2.0-flash"

	jsonMimeType = "application/json"
)

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Generator asks a Gemini model for a JSON document.
type Generator struct {
	client   *genai.Client
	model    string
	executor *resilience.Executor
}

func New(ctx context.Context, cfg Config, httpClient *http.Client, executor *resilience.Executor) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	clientCfg := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if httpClient != nil {
		clientCfg.HTTPClient = httpClient
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		clientCfg.HTTPOptions = genai.HTTPOptions{BaseURL: base}
	}

	client, err := genai.NewClient(ctx, clientCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return &Generator{client: client, model: model, executor: executor}, nil
}

func (g *Generator) Model() string { return g.model }

func (g *Generator) GenerateJSON(ctx context.Context, systemInstruction, prompt string) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		ResponseMIMEType:  jsonMimeType,
	}

	text, err := resilience.Do(ctx, g.executor, "gemini.generate", func(callCtx context.Context) (string, error) {
		result, err := g.client.Models.GenerateContent(callCtx, g.model, contents, config)
		if err != nil {
			return "", fmt.Errorf("gemini generate: %w", err)
		}
		out := strings.TrimSpace(responseText(result))
		if out == "" {
			return "", fmt.Errorf("gemini generate: empty response")
		}
		return out, nil
	}, classifyGeminiError)
	if err != nil {
		return "", resilience.WrapTemporary("gemini.generate", err, classifyGeminiError)
	}
	return text, nil
}

// responseText joins the text parts of the first candidate.
func responseText(result *genai.GenerateContentResponse) string {
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			b.WriteString(part.Text)
		}
	}
	return b.String()
}

func statusFromError(err error) int {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Code
	}
	var apiErrPtr *genai.APIError
	if errors.As(err, &apiErrPtr) && apiErrPtr != nil {
		return apiErrPtr.Code
	}
	return 0
}

var classifyGeminiError = resilience.StatusClassifier(statusFromError)
