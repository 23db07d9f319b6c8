// Package outcomeport journals finished jobs in PostgreSQL
package outcomeport

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"gitlab.com/fcv-2025.net/faktory-client/internal/config"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/primary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/core/ports/secondary"
	"gitlab.com/fcv-2025.net/faktory-client/internal/domain"
	querybuilder "gitlab.com/fcv-2025.net/faktory-client/internal/utils"
)

const DefaultListLimit = 100

var _ secondary.JobOutcomeRepository = &OutcomeRepository{}

type OutcomeRepository struct {
	db     *sqlx.DB
	logger primary.Logger
	schema string
}

// NewPostgresDB opens and pings the database named by cfg
func NewPostgresDB(ctx context.Context, cfg *config.PostgresConfig) (*sqlx.DB, error) {
	db, err := sqlx.Open("postgres", cfg.Url)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

func New(db *sqlx.DB, logger primary.Logger, schema string) *OutcomeRepository {
	return &OutcomeRepository{
		db:     db,
		logger: logger,
		schema: schema,
	}
}

func (r *OutcomeRepository) table() string {
	name := domain.GetJobOutcomeTable().TableName()
	if r.schema == "" {
		return name
	}
	return r.schema + "." + name
}

// EnsureSchema creates the journal table when it does not exist yet
func (r *OutcomeRepository) EnsureSchema(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			job_id      TEXT        NOT NULL,
			job_type    TEXT        NOT NULL,
			queue       TEXT        NOT NULL,
			worker_id   TEXT        NOT NULL,
			status      TEXT        NOT NULL,
			err_type    TEXT        NOT NULL DEFAULT '',
			message     TEXT        NOT NULL DEFAULT '',
			finished_at TIMESTAMPTZ NOT NULL,
			PRIMARY KEY (job_id, finished_at)
		)
	`, r.table())

	if _, err := r.db.ExecContext(ctx, query); err != nil {
		r.logger.Error("Failed to create outcome table", "error", err)
		return fmt.Errorf("failed to create outcome table: %w", err)
	}
	return nil
}

func (r *OutcomeRepository) SaveOutcome(ctx context.Context, outcome *domain.JobOutcome) error {
	tbl := domain.GetJobOutcomeTable()
	query, args := querybuilder.NewQueryBuilder(r.schema).
		Insert(tbl.Columns()...).
		Into(tbl.TableName()).
		Values(
			outcome.JobID, outcome.JobType, outcome.Queue, outcome.WorkerID,
			outcome.Status, outcome.ErrType, outcome.Message, outcome.FinishedAt,
		).
		OnConflict(tbl.JobID, tbl.FinishedAt).
		DoNothing().
		Build()

	query = sqlx.Rebind(sqlx.DOLLAR, query)
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.Error("Failed to save job outcome", "jobId", outcome.JobID, "error", err)
		return fmt.Errorf("failed to save job outcome: %w", err)
	}
	return nil
}

func (r *OutcomeRepository) ListOutcomes(ctx context.Context, filter domain.OutcomeFilter) ([]*domain.JobOutcome, error) {
	query, args := listQuery(r.schema, filter)

	outcomes := make([]*domain.JobOutcome, 0)
	if err := r.db.SelectContext(ctx, &outcomes, sqlx.Rebind(sqlx.DOLLAR, query), args...); err != nil {
		r.logger.Error("Failed to list job outcomes", "error", err)
		return nil, fmt.Errorf("failed to list job outcomes: %w", err)
	}
	return outcomes, nil
}

func listQuery(schema string, filter domain.OutcomeFilter) (string, []interface{}) {
	tbl := domain.GetJobOutcomeTable()
	qb := querybuilder.NewQueryBuilder(schema).
		Select(tbl.Columns()...).
		From(tbl.TableName())
	if filter.Status != "" {
		qb = qb.Where(tbl.Status+" = ?", filter.Status)
	}
	if filter.JobType != "" {
		qb = qb.And(tbl.JobType+" = ?", filter.JobType)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = DefaultListLimit
	}
	return qb.OrderBy(tbl.FinishedAt, false).Limit(limit).Build()
}
