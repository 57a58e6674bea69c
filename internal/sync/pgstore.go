package sync

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jonathan/lead-search/internal/types"
)

// PostgresStore persists sync jobs in PostgreSQL so job state survives
// process restarts and supports multiple instances.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to the database and ensures the jobs table
// exists.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &PostgresStore{pool: pool}
	if err := store.ensureSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the connection pool.
func (s *PostgresStore) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

func (s *PostgresStore) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS sync_jobs (
			job_id          TEXT PRIMARY KEY,
			folder_id       TEXT NOT NULL,
			status          TEXT NOT NULL,
			files_found     INT NOT NULL DEFAULT 0,
			files_processed INT NOT NULL DEFAULT 0,
			files_failed    INT NOT NULL DEFAULT 0,
			progress        DOUBLE PRECISION NOT NULL DEFAULT 0,
			started_at      TIMESTAMPTZ NOT NULL,
			completed_at    TIMESTAMPTZ,
			error           TEXT NOT NULL DEFAULT ''
		)`)
	if err != nil {
		return fmt.Errorf("failed to create sync_jobs table: %w", err)
	}
	return nil
}

// Create registers a new job record.
func (s *PostgresStore) Create(ctx context.Context, job types.SyncJob) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sync_jobs (job_id, folder_id, status, files_found, files_processed, files_failed, progress, started_at, completed_at, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		job.JobID, job.FolderID, string(job.Status), job.FilesFound, job.FilesProcessed,
		job.FilesFailed, job.Progress, job.StartedAt, job.CompletedAt, job.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to create sync job: %w", err)
	}
	return nil
}

// Get returns a snapshot of one job.
func (s *PostgresStore) Get(ctx context.Context, jobID string) (*types.SyncJob, error) {
	job, err := scanJob(s.pool.QueryRow(ctx,
		`SELECT job_id, folder_id, status, files_found, files_processed, files_failed, progress, started_at, completed_at, error
		 FROM sync_jobs WHERE job_id = $1`, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("failed to get sync job: %w", err)
	}
	return job, nil
}

// Update applies fn to the full record inside a transaction, locking the row
// so the read-modify-write is atomic.
func (s *PostgresStore) Update(ctx context.Context, jobID string, fn func(*types.SyncJob)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	job, err := scanJob(tx.QueryRow(ctx,
		`SELECT job_id, folder_id, status, files_found, files_processed, files_failed, progress, started_at, completed_at, error
		 FROM sync_jobs WHERE job_id = $1 FOR UPDATE`, jobID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrJobNotFound
		}
		return fmt.Errorf("failed to read sync job: %w", err)
	}

	fn(job)

	_, err = tx.Exec(ctx,
		`UPDATE sync_jobs
		 SET status = $2, files_found = $3, files_processed = $4, files_failed = $5,
		     progress = $6, completed_at = $7, error = $8
		 WHERE job_id = $1`,
		job.JobID, string(job.Status), job.FilesFound, job.FilesProcessed,
		job.FilesFailed, job.Progress, job.CompletedAt, job.Error,
	)
	if err != nil {
		return fmt.Errorf("failed to update sync job: %w", err)
	}
	return tx.Commit(ctx)
}

// List returns all jobs, most recent first.
func (s *PostgresStore) List(ctx context.Context) ([]types.SyncJob, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT job_id, folder_id, status, files_found, files_processed, files_failed, progress, started_at, completed_at, error
		 FROM sync_jobs ORDER BY started_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync jobs: %w", err)
	}
	defer rows.Close()

	var jobs []types.SyncJob
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync job: %w", err)
		}
		jobs = append(jobs, *job)
	}
	return jobs, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (*types.SyncJob, error) {
	var job types.SyncJob
	var status string
	err := row.Scan(&job.JobID, &job.FolderID, &status, &job.FilesFound, &job.FilesProcessed,
		&job.FilesFailed, &job.Progress, &job.StartedAt, &job.CompletedAt, &job.Error)
	if err != nil {
		return nil, err
	}
	job.Status = types.SyncStatus(status)
	return &job, nil
}
