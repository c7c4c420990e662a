package docs

import (
	"context"

	docsv1 "google.golang.org/api/docs/v1"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/google"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/resilience"
)

// Editor applies text replacements to Google Docs.
type Editor struct {
	documents *docsv1.DocumentsService
	executor  *resilience.Executor
}

func New(service *docsv1.Service, executor *resilience.Executor) *Editor {
	return &Editor{documents: service.Documents, executor: executor}
}

func (e *Editor) ReplaceText(ctx context.Context, documentID, find, replace string, matchCase bool) error {
	req := &docsv1.BatchUpdateDocumentRequest{
		Requests: []*docsv1.Request{{
			ReplaceAllText: &docsv1.ReplaceAllTextRequest{
				ContainsText: &docsv1.SubstringMatchCriteria{
					Text:            find,
					MatchCase:       matchCase,
					ForceSendFields: []string{"MatchCase"},
				},
				ReplaceText:     replace,
				ForceSendFields: []string{"ReplaceText"},
			},
		}},
	}

	call := func(callCtx context.Context) error {
		_, err := e.documents.BatchUpdate(documentID, req).Context(callCtx).Do()
		return err
	}
	var err error
	if e.executor == nil {
		err = call(ctx)
	} else {
		err = e.executor.Execute(ctx, "docs.replace", call, google.ClassifyError)
	}
	if err == nil {
		return nil
	}
	if google.IsNotFound(err) {
		return domain.WrapError(domain.ErrRecordNotFound, "docs.replace", err)
	}
	return resilience.WrapTemporary("docs.replace", err, google.ClassifyError)
}
