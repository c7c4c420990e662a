package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
	"github.com/kirillkom/archetype-mailer/internal/core/ports"
)

const pdfMimeType = "application/pdf"

const (
	StepCopy       = "generate.copy"
	StepSubstitute = "generate.substitute"
	StepExport     = "generate.export"
	StepInspect    = "generate.inspect"
)

// DocumentGenerator renders the personal result document for one submitter.
type DocumentGenerator struct {
	catalog   domain.Catalog
	store     ports.DocumentStore
	editor    ports.DocumentEditor
	inspector ports.DocumentInspector
	logger    *slog.Logger

	cleanupTimeout time.Duration
}

// NewDocumentGenerator accepts a nil inspector to skip export validation.
func NewDocumentGenerator(
	catalog domain.Catalog,
	store ports.DocumentStore,
	editor ports.DocumentEditor,
	inspector ports.DocumentInspector,
	logger *slog.Logger,
) *DocumentGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	return &DocumentGenerator{
		catalog:        catalog,
		store:          store,
		editor:         editor,
		inspector:      inspector,
		logger:         logger,
		cleanupTimeout: 30 * time.Second,
	}
}

func (g *DocumentGenerator) Generate(ctx context.Context, name string, archetype domain.Archetype) ([]byte, error) {
	spec, err := g.catalog.Spec(archetype)
	if err != nil {
		return nil, err
	}

	title := domain.CopyTitle(name, archetype)
	docID, err := g.store.CopyTemplate(ctx, spec.TemplateID, title)
	if err != nil {
		return nil, stepError(StepCopy, fmt.Errorf("copy template %s: %w", spec.TemplateID, err))
	}
	g.logger.Info("document created", "title", title, "document_id", docID)
	defer g.release(ctx, docID)

	if err := g.editor.ReplaceText(ctx, docID, domain.NamePlaceholder, name, true); err != nil {
		return nil, stepError(StepSubstitute, fmt.Errorf("replace %s: %w", domain.NamePlaceholder, err))
	}
	g.logger.Info("placeholder replaced", "document_id", docID, "placeholder", domain.NamePlaceholder, "name", name)

	content, err := g.store.Export(ctx, docID, pdfMimeType)
	if err != nil {
		return nil, stepError(StepExport, fmt.Errorf("export pdf: %w", err))
	}
	if len(content) == 0 {
		return nil, stepError(StepExport, domain.WrapError(domain.ErrInvalidInput, "export pdf", errors.New("empty document")))
	}
	if g.inspector != nil {
		if err := g.inspector.Inspect(content); err != nil {
			return nil, stepError(StepInspect, err)
		}
	}
	g.logger.Info("pdf generated", "document_id", docID, "bytes", len(content))
	return content, nil
}

// release deletes the temporary copy. It must run even when the caller's
// context is already done.
func (g *DocumentGenerator) release(ctx context.Context, docID string) {
	cleanupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), g.cleanupTimeout)
	defer cancel()

	if err := g.store.Delete(cleanupCtx, docID); err != nil {
		g.logger.Error("delete temporary document failed", "document_id", docID, "error", err)
		return
	}
	g.logger.Debug("temporary document deleted", "document_id", docID)
}
