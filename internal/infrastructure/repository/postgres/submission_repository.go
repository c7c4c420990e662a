package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/kirillkom/archetype-mailer/internal/core/domain"
)

type SubmissionRepository struct {
	db *sql.DB
}

func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

func OpenDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("sql open: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	db.SetConnMaxLifetime(30 * time.Minute)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	return db, nil
}

func (r *SubmissionRepository) EnsureSchema(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	// Serialize bootstrap DDL across concurrently starting workers.
	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, int64(2026101401)); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS submissions (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL DEFAULT '',
	email TEXT NOT NULL DEFAULT '',
	answers JSONB NOT NULL DEFAULT '[]'::jsonb,
	sent BOOLEAN NOT NULL DEFAULT FALSE,
	label TEXT,
	created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_submissions_pending ON submissions(created_at) WHERE sent = FALSE;
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (r *SubmissionRepository) FetchUnprocessed(ctx context.Context) ([]domain.Submission, error) {
	rows, err := r.db.QueryContext(ctx, `
SELECT id, name, email, answers, sent, COALESCE(label, '')
FROM submissions
WHERE sent = FALSE AND COALESCE(label, '') = ''
ORDER BY created_at ASC, id ASC
`)
	if err != nil {
		return nil, domain.WrapError(domain.ErrTemporary, "postgres.fetch", err)
	}
	defer rows.Close()

	var out []domain.Submission
	for rows.Next() {
		var sub domain.Submission
		var answersRaw []byte
		var label string
		if err := rows.Scan(&sub.ID, &sub.Name, &sub.Email, &answersRaw, &sub.Processed, &label); err != nil {
			return nil, fmt.Errorf("scan submission: %w", err)
		}
		sub.Archetype = domain.Archetype(strings.TrimSpace(label))
		sub.Answers = decodeAnswers(answersRaw)
		out = append(out, sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate submissions: %w", err)
	}
	return out, nil
}

func (r *SubmissionRepository) MarkProcessed(ctx context.Context, id string, archetype domain.Archetype) error {
	res, err := r.db.ExecContext(ctx, `
UPDATE submissions
SET sent = TRUE, label = $2, updated_at = $3
WHERE id = $1
`, id, archetype.String(), time.Now().UTC())
	if err != nil {
		return domain.WrapError(domain.ErrTemporary, "postgres.mark", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark submission rows affected: %w", err)
	}
	if affected == 0 {
		return domain.WrapError(domain.ErrRecordNotFound, "postgres.mark", fmt.Errorf("submission %s", id))
	}
	return nil
}

// decodeAnswers reads a JSON array of exactly QuestionCount answers. Anything
// else leaves every answer at 0 so validation rejects the record.
func decodeAnswers(raw []byte) domain.Answers {
	var values []int
	if err := json.Unmarshal(raw, &values); err != nil {
		return domain.Answers{}
	}
	a, err := domain.AnswersFromSlice(values)
	if err != nil {
		return domain.Answers{}
	}
	return a
}
