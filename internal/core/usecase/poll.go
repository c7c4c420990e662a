package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
	"github.com/kirillkom/archetype-mailer/internal/core/ports"
)

const DefaultPollInterval = 60 * time.Second

type RunOptions struct {
	Continuous bool
	Interval   time.Duration
	// RecordTimeout bounds one submission's pipeline. Zero means no bound.
	RecordTimeout time.Duration
}

// Poller fetches pending submissions and hands them to the processor one
// after another.
type Poller struct {
	store     ports.SubmissionStore
	processor ports.SubmissionProcessor
	logger    *slog.Logger
}

func NewPoller(store ports.SubmissionStore, processor ports.SubmissionProcessor, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{store: store, processor: processor, logger: logger}
}

// Run returns nil when ctx is cancelled. In single-shot mode it returns the
// fetch error of the only cycle; record failures never end the loop.
func (p *Poller) Run(ctx context.Context, opts RunOptions) error {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	p.logger.Info("automation started", "continuous", opts.Continuous, "interval", interval.String())

	for {
		if ctx.Err() != nil {
			p.logger.Info("automation stopped")
			return nil
		}

		err := p.RunOnce(ctx, opts.RecordTimeout)
		if err != nil {
			p.logger.Error("poll cycle failed", "error", err)
			if !opts.Continuous {
				return err
			}
		}
		if !opts.Continuous {
			return nil
		}

		p.logger.Info("waiting for next cycle", "interval", interval.String())
		if !sleep(ctx, interval) {
			p.logger.Info("automation stopped")
			return nil
		}
	}
}

// RunOnce processes one batch. A cancelled ctx stops the batch between
// records; the record in flight finishes on a detached context.
func (p *Poller) RunOnce(ctx context.Context, recordTimeout time.Duration) error {
	logger := p.logger.With("cycle_id", uuid.NewString())

	subs, err := p.store.FetchUnprocessed(ctx)
	if err != nil {
		return fmt.Errorf("fetch unprocessed submissions: %w", err)
	}
	logger.Info("unprocessed submissions found", "count", len(subs))

	var processed, failed, skipped int
	for _, sub := range subs {
		if ctx.Err() != nil {
			logger.Info("cycle interrupted", "remaining", len(subs)-processed-failed-skipped)
			break
		}
		if !sub.Pending() {
			logger.Warn("skipping submission that is already processed", "record_id", sub.ID, "archetype", sub.Archetype)
			skipped++
			continue
		}

		if err := p.processOne(ctx, sub, recordTimeout); err != nil {
			failed++
			logger.Error("submission failed", "record_id", sub.ID, "name", sub.DisplayName(), "step", stepName(err), "error", err)
			continue
		}
		processed++
	}

	logger.Info("cycle finished", "processed", processed, "failed", failed, "skipped", skipped)
	return nil
}

func (p *Poller) processOne(ctx context.Context, sub domain.Submission, timeout time.Duration) error {
	recordCtx := context.WithoutCancel(ctx)
	if timeout > 0 {
		var cancel context.CancelFunc
		recordCtx, cancel = context.WithTimeout(recordCtx, timeout)
		defer cancel()
	}
	return p.processor.Process(recordCtx, sub)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
