package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
	"github.com/kirillkom/archetype-mailer/internal/core/ports"
	"github.com/kirillkom/archetype-mailer/internal/core/scoring"
)

// Classifier asks the text generator for the dominant archetype and falls
// back to rule-based scoring whenever the answer cannot be used.
type Classifier struct {
	generator ports.TextGenerator
	logger    *slog.Logger
}

// NewClassifier accepts a nil generator, in which case only scoring runs.
func NewClassifier(generator ports.TextGenerator, logger *slog.Logger) *Classifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Classifier{generator: generator, logger: logger}
}

func (c *Classifier) Classify(ctx context.Context, name string, answers domain.Answers) (domain.Archetype, domain.ClassificationSource, error) {
	if err := answers.Validate(); err != nil {
		return "", "", fmt.Errorf("classify %s: %w", name, err)
	}
	if c.generator == nil {
		a, err := c.score(name, answers)
		return a, domain.SourceRules, err
	}

	archetype, err := c.ask(ctx, name, answers)
	if err == nil {
		c.logger.Info("archetype from language model", "name", name, "archetype", archetype)
		return archetype, domain.SourceLLM, nil
	}

	c.logger.Warn("language model classification failed, using scoring fallback", "name", name, "error", err)
	a, err := c.score(name, answers)
	return a, domain.SourceFallback, err
}

func (c *Classifier) ask(ctx context.Context, name string, answers domain.Answers) (domain.Archetype, error) {
	raw, err := c.generator.GenerateJSON(ctx, classificationSystemInstruction, buildClassificationPrompt(name, answers))
	if err != nil {
		return "", fmt.Errorf("generate classification: %w", err)
	}
	return parseClassificationResult(raw)
}

func (c *Classifier) score(name string, answers domain.Answers) (domain.Archetype, error) {
	results, err := scoring.Breakdown(answers)
	if err != nil {
		return "", fmt.Errorf("score answers: %w", err)
	}
	archetype, err := scoring.Score(answers)
	if err != nil {
		return "", fmt.Errorf("score answers: %w", err)
	}

	attrs := []any{"name", name, "archetype", archetype}
	for _, res := range results {
		attrs = append(attrs, string(res.Archetype), fmt.Sprintf("%d (5er: %d)", res.Sum, res.Fives))
	}
	c.logger.Info("archetype from scoring", attrs...)
	return archetype, nil
}
