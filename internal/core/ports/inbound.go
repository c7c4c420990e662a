package ports

import (
	"context"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

// SubmissionClassifier assigns an archetype to a submitter's answers.
type SubmissionClassifier interface {
	Classify(ctx context.Context, name string, answers domain.Answers) (domain.Archetype, domain.ClassificationSource, error)
}

// SubmissionProcessor runs the full pipeline for one submission.
type SubmissionProcessor interface {
	Process(ctx context.Context, sub domain.Submission) error
}
