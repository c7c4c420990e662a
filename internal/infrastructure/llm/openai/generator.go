package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"
	"strconv"
	"strings"

	"github.com/tmc/langchaingo/llms"
	lcopenai "github.com/tmc/langchaingo/llms/openai"

	"github.com/kirillkom/archetype-mailer/internal/infrastructure/resilience"
)

const DefaultModel = "gpt-4o-mini"

type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Generator asks an OpenAI chat model for a JSON document.
type Generator struct {
	llm      llms.Model
	model    string
	executor *resilience.Executor
}

func New(cfg Config, httpClient *http.Client, executor *resilience.Executor) (*Generator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("OpenAI API key required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultModel
	}

	opts := []lcopenai.Option{
		lcopenai.WithToken(cfg.APIKey),
		lcopenai.WithModel(model),
	}
	if base := strings.TrimSpace(cfg.BaseURL); base != "" {
		opts = append(opts, lcopenai.WithBaseURL(strings.TrimRight(base, "/")))
	}
	if httpClient != nil {
		opts = append(opts, lcopenai.WithHTTPClient(httpClient))
	}

	llm, err := lcopenai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("create openai model: %w", err)
	}
	return &Generator{llm: llm, model: model, executor: executor}, nil
}

func (g *Generator) Model() string { return g.model }

func (g *Generator) GenerateJSON(ctx context.Context, systemInstruction, prompt string) (string, error) {
	messages := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, systemInstruction),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	text, err := resilience.Do(ctx, g.executor, "openai.generate", func(callCtx context.Context) (string, error) {
		response, err := g.llm.GenerateContent(callCtx, messages, llms.WithJSONMode())
		if err != nil {
			return "", fmt.Errorf("openai generate: %w", err)
		}
		if len(response.Choices) == 0 {
			return "", fmt.Errorf("openai generate: no response choices")
		}
		return strings.TrimSpace(response.Choices[0].Content), nil
	}, classifyOpenAIError)
	if err != nil {
		return "", resilience.WrapTemporary("openai.generate", err, classifyOpenAIError)
	}
	return text, nil
}

var statusPattern = regexp.MustCompile(`status code:? (\d{3})`)

// statusFromError recovers the HTTP status the client embeds in its error text.
func statusFromError(err error) int {
	var statusErr *resilience.HTTPStatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode
	}
	m := statusPattern.FindStringSubmatch(err.Error())
	if len(m) != 2 {
		return 0
	}
	code, convErr := strconv.Atoi(m[1])
	if convErr != nil {
		return 0
	}
	return code
}

var classifyOpenAIError = resilience.StatusClassifier(statusFromError)
