package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	docsv1 "google.golang.org/api/docs/v1"
	drivev3 "google.golang.org/api/drive/v3"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/kirillkom/archetype-mailer/internal/config"
	"github.com/kirillkom/archetype-mailer/internal/core/ports"
	"github.com/kirillkom/archetype-mailer/internal/core/usecase"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/google"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/google/docs"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/google/drive"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/google/gmail"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/llm/gemini"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/llm/openai"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/pdfcheck"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/queue/nats"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/repository/airtable"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/repository/xlsx"
	"github.com/kirillkom/archetype-mailer/internal/infrastructure/resilience"
	"github.com/kirillkom/archetype-mailer/internal/observability/metrics"
)

const serviceName = "archetype-mailer"

type App struct {
	Config  config.Config
	Poller  *usecase.Poller
	Metrics *metrics.WorkerMetrics

	closers []func()
}

// New wires adapters for the configured backend and provider. cfg must
// already be validated.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	app := &App{Config: cfg}

	catalog, err := config.LoadCatalog(cfg.ArchetypesFile)
	if err != nil {
		return nil, fmt.Errorf("load archetype catalog: %w", err)
	}

	policy := resilience.DefaultConfig()
	policy.RetryMaxAttempts = cfg.RetryMaxAttempts
	policy.CallTimeout = cfg.CallTimeout()
	policy.RatePerSecond = cfg.APIRatePerSecond
	executor := resilience.NewExecutor(policy, logger)

	store, err := app.submissionStore(ctx, cfg, executor)
	if err != nil {
		app.Close()
		return nil, err
	}

	generator, err := textGenerator(ctx, cfg, executor)
	if err != nil {
		app.Close()
		return nil, err
	}

	documents, editor, mailer, err := googleAdapters(ctx, cfg, executor)
	if err != nil {
		app.Close()
		return nil, err
	}

	var publisher ports.ResultPublisher
	if cfg.NATSURL != "" {
		pub, err := nats.New(cfg.NATSURL, cfg.NATSSubject, nats.Options{ResilienceExecutor: executor, Logger: logger})
		if err != nil {
			app.Close()
			return nil, fmt.Errorf("init result publisher: %w", err)
		}
		app.closers = append(app.closers, pub.Close)
		publisher = pub
	}

	app.Metrics = metrics.NewWorkerMetrics(serviceName)

	classifier := usecase.NewClassifier(generator, logger)
	docGenerator := usecase.NewDocumentGenerator(catalog, documents, editor, pdfcheck.New(), logger)
	distributor := usecase.NewDistributor(documents, mailer, cfg.BCCEmail, logger)
	processor := usecase.NewProcessSubmissionUseCase(store, classifier, docGenerator, distributor, publisher, app.Metrics, logger)
	app.Poller = usecase.NewPoller(store, processor, logger)

	logger.Info("worker wired",
		"record_store", cfg.RecordStoreBackend,
		"classifier", cfg.ClassifierProvider,
		"templates", len(catalog.Specs()),
		"events", publisher != nil,
	)
	return app, nil
}

func (a *App) submissionStore(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.SubmissionStore, error) {
	switch cfg.RecordStoreBackend {
	case config.BackendPostgres:
		db, err := postgres.OpenDB(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("open postgres: %w", err)
		}
		a.closers = append(a.closers, func() { _ = db.Close() })
		repo := postgres.NewSubmissionRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			return nil, fmt.Errorf("ensure schema: %w", err)
		}
		return repo, nil
	case config.BackendXLSX:
		return xlsx.New(cfg.XLSXPath, cfg.XLSXSheet), nil
	default:
		return airtable.New(airtable.Config{
			BaseURL: cfg.AirtableURL,
			APIKey:  cfg.AirtableAPIKey,
			BaseID:  cfg.AirtableBaseID,
			Table:   cfg.AirtableTableName,
		}, &http.Client{Timeout: 2 * time.Minute}, executor), nil
	}
}

// textGenerator returns a nil interface for the rules provider so the
// classifier scores locally.
func textGenerator(ctx context.Context, cfg config.Config, executor *resilience.Executor) (ports.TextGenerator, error) {
	switch cfg.ClassifierProvider {
	case config.ProviderRules:
		return nil, nil
	case config.ProviderGemini:
		gen, err := gemini.New(ctx, gemini.Config{APIKey: cfg.GeminiAPIKey, Model: cfg.GeminiModel}, nil, executor)
		if err != nil {
			return nil, fmt.Errorf("init gemini generator: %w", err)
		}
		return gen, nil
	default:
		gen, err := openai.New(openai.Config{APIKey: cfg.OpenAIAPIKey, Model: cfg.OpenAIModel, BaseURL: cfg.OpenAIBaseURL}, nil, executor)
		if err != nil {
			return nil, fmt.Errorf("init openai generator: %w", err)
		}
		return gen, nil
	}
}

// googleAdapters authorizes Drive and Docs as the service account and Gmail
// as the delegated user when one is configured.
func googleAdapters(ctx context.Context, cfg config.Config, executor *resilience.Executor) (*drive.Store, *docs.Editor, *gmail.Sender, error) {
	workspaceClient, err := google.ServiceAccountClient(ctx, cfg.GoogleServiceAccountFile, "", google.ScopeDrive, google.ScopeDocuments)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("google credentials: %w", err)
	}
	mailClient, err := google.ServiceAccountClient(ctx, cfg.GoogleServiceAccountFile, cfg.GoogleDelegatedUser, google.ScopeGmailSend)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("google mail credentials: %w", err)
	}

	driveService, err := drivev3.NewService(ctx, option.WithHTTPClient(workspaceClient))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init drive service: %w", err)
	}
	docsService, err := docsv1.NewService(ctx, option.WithHTTPClient(workspaceClient))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init docs service: %w", err)
	}
	gmailService, err := gmailv1.NewService(ctx, option.WithHTTPClient(mailClient))
	if err != nil {
		return nil, nil, nil, fmt.Errorf("init gmail service: %w", err)
	}

	return drive.New(driveService, cfg.GoogleDrivePDFFolderID, executor),
		docs.New(docsService, executor),
		gmail.New(gmailService, executor),
		nil
}

func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
