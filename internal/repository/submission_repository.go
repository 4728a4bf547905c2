package repository

import (
	"context"
	"strings"
	"time"

	"job-scout/internal/database"
	"job-scout/internal/domain/job"
)

type SubmissionRepository interface {
	Record(ctx context.Context, userID string, s job.Submission) error
}

type PostgresSubmissionRepository struct {
	db database.Querier
}

func NewPostgresSubmissionRepository(db database.Querier) *PostgresSubmissionRepository {
	return &PostgresSubmissionRepository{db: db}
}

// Record keeps an audit row for a job created on behalf of userID.
func (r *PostgresSubmissionRepository) Record(ctx context.Context, userID string, s job.Submission) error {
	if r == nil || r.db == nil {
		return ErrNilDB
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO job_submissions (job_id, user_id, job_link, job_title, priority, status, submitted_at)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)
		 ON CONFLICT (job_id) DO NOTHING`,
		s.JobID,
		strings.TrimSpace(userID),
		s.JobLink,
		s.JobTitle,
		s.Priority,
		s.Status,
		time.Now().UTC(),
	)
	return err
}
