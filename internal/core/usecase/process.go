package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
	"github.com/kirillkom/archetype-mailer/internal/core/ports"
)

const (
	StepClassify = "classify"
	StepGenerate = "generate"
	StepMark     = "mark"
)

type documentGenerator interface {
	Generate(ctx context.Context, name string, archetype domain.Archetype) ([]byte, error)
}

type documentDistributor interface {
	Distribute(ctx context.Context, name string, archetype domain.Archetype, content []byte, email string) (string, error)
	Notify(ctx context.Context, email, name string, content []byte) error
}

// ProcessSubmissionUseCase drives one submission from classification to
// the processed flag.
type ProcessSubmissionUseCase struct {
	store       ports.SubmissionStore
	classifier  ports.SubmissionClassifier
	generator   documentGenerator
	distributor documentDistributor
	publisher   ports.ResultPublisher
	metrics     ports.ProcessMetrics
	logger      *slog.Logger

	now func() time.Time
}

func NewProcessSubmissionUseCase(
	store ports.SubmissionStore,
	classifier ports.SubmissionClassifier,
	generator *DocumentGenerator,
	distributor *Distributor,
	publisher ports.ResultPublisher,
	metrics ports.ProcessMetrics,
	logger *slog.Logger,
) *ProcessSubmissionUseCase {
	return newProcessSubmissionUseCase(store, classifier, generator, distributor, publisher, metrics, logger)
}

func newProcessSubmissionUseCase(
	store ports.SubmissionStore,
	classifier ports.SubmissionClassifier,
	generator documentGenerator,
	distributor documentDistributor,
	publisher ports.ResultPublisher,
	metrics ports.ProcessMetrics,
	logger *slog.Logger,
) *ProcessSubmissionUseCase {
	if logger == nil {
		logger = slog.Default()
	}
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &ProcessSubmissionUseCase{
		store:       store,
		classifier:  classifier,
		generator:   generator,
		distributor: distributor,
		publisher:   publisher,
		metrics:     metrics,
		logger:      logger,
		now:         time.Now,
	}
}

func (uc *ProcessSubmissionUseCase) Process(ctx context.Context, sub domain.Submission) error {
	started := uc.now()
	uc.metrics.StartRecord()

	err := uc.process(ctx, sub)
	uc.metrics.FinishRecord(uc.now().Sub(started), err)
	return err
}

func (uc *ProcessSubmissionUseCase) process(ctx context.Context, sub domain.Submission) error {
	name := sub.DisplayName()
	logger := uc.logger.With("record_id", sub.ID, "name", name)
	logger.Info("processing submission", "email", sub.Email)

	archetype, source, err := uc.classify(ctx, name, sub.Answers)
	if err != nil {
		return err
	}
	uc.metrics.ObserveClassification(source)
	logger.Info("submission classified", "archetype", archetype, "source", source)

	content, err := uc.generator.Generate(ctx, name, archetype)
	if err != nil {
		return stepError(StepGenerate, err)
	}

	link, err := uc.distribute(ctx, logger, sub.Email, name, archetype, content)
	if err != nil {
		return err
	}

	if err := uc.store.MarkProcessed(ctx, sub.ID, archetype); err != nil {
		return stepError(StepMark, fmt.Errorf("mark record %s processed: %w", sub.ID, err))
	}
	logger.Info("submission processed", "archetype", archetype)

	uc.publish(ctx, logger, domain.AssignedEvent{
		EventID:     uuid.NewString(),
		RecordID:    sub.ID,
		Name:        name,
		Archetype:   archetype,
		Source:      source,
		Link:        link,
		ProcessedAt: uc.now().UTC(),
	})
	return nil
}

func (uc *ProcessSubmissionUseCase) classify(ctx context.Context, name string, answers domain.Answers) (domain.Archetype, domain.ClassificationSource, error) {
	archetype, source, err := uc.classifier.Classify(ctx, name, answers)
	if err != nil {
		return "", "", stepError(StepClassify, err)
	}
	// Labels outside the catalog never reach template lookup or the store.
	if _, err := domain.ParseArchetype(string(archetype)); err != nil {
		return "", "", stepError(StepClassify, err)
	}
	return archetype, source, nil
}

// distribute runs sharing and mailing independently so one failure cannot
// suppress the other delivery channel.
func (uc *ProcessSubmissionUseCase) distribute(
	ctx context.Context,
	logger *slog.Logger,
	email, name string,
	archetype domain.Archetype,
	content []byte,
) (string, error) {
	link, shareErr := uc.distributor.Distribute(ctx, name, archetype, content, email)
	if shareErr != nil {
		logger.Error("drive distribution failed", "step", stepName(shareErr), "error", shareErr)
	}

	mailErr := uc.distributor.Notify(ctx, email, name, content)
	if mailErr != nil {
		logger.Error("email delivery failed", "step", stepName(mailErr), "error", mailErr)
	}

	return link, errors.Join(shareErr, mailErr)
}

func (uc *ProcessSubmissionUseCase) publish(ctx context.Context, logger *slog.Logger, event domain.AssignedEvent) {
	if uc.publisher == nil {
		return
	}
	if err := uc.publisher.PublishAssigned(ctx, event); err != nil {
		logger.Warn("publish assigned event failed", "event_id", event.EventID, "error", err)
	}
}

func stepName(err error) string {
	var se *StepError
	if errors.As(err, &se) {
		return se.Step
	}
	return "unknown"
}

type noopMetrics struct{}

func (noopMetrics) StartRecord() {}
func (noopMetrics) FinishRecord(time.Duration, error) {}
func (noopMetrics) ObserveClassification(domain.ClassificationSource) {}
