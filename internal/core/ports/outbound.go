package ports

import (
	"context"
	"time"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

// SubmissionStore reads pending survey submissions and records results.
type SubmissionStore interface {
	FetchUnprocessed(ctx context.Context) ([]domain.Submission, error)
	MarkProcessed(ctx context.Context, id string, archetype domain.Archetype) error
}

// TextGenerator completes a prompt and returns a JSON document as text.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, systemInstruction, prompt string) (string, error)
}

// DocumentStore copies, exports and shares documents in remote storage.
type DocumentStore interface {
	CopyTemplate(ctx context.Context, templateID, name string) (string, error)
	Export(ctx context.Context, documentID, mimeType string) ([]byte, error)
	Delete(ctx context.Context, documentID string) error
	Upload(ctx context.Context, name, mimeType string, content []byte) (domain.StoredFile, error)
	GrantRead(ctx context.Context, fileID, email, message string) error
}

// DocumentEditor rewrites text inside a remote document.
type DocumentEditor interface {
	ReplaceText(ctx context.Context, documentID, find, replace string, matchCase bool) error
}

// MailSender delivers a fully composed message.
type MailSender interface {
	Send(ctx context.Context, mail domain.Mail) error
}

// DocumentInspector validates exported document bytes.
type DocumentInspector interface {
	Inspect(content []byte) error
}

// ResultPublisher announces processed submissions.
type ResultPublisher interface {
	PublishAssigned(ctx context.Context, event domain.AssignedEvent) error
}

// ProcessMetrics observes per-record processing.
type ProcessMetrics interface {
	StartRecord()
	FinishRecord(duration time.Duration, err error)
	ObserveClassification(source domain.ClassificationSource)
}
