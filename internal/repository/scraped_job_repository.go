package repository

import (
	"context"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"job-scout/internal/database"
	"job-scout/internal/domain/job"

	"github.com/google/uuid"
	"golang.org/x/crypto/blake2b"
)

var ErrNilDB = errors.New("nil db")

type ScrapedJob struct {
	ID          uuid.UUID        `json:"id"`
	SourceType  string           `json:"sourceType"`
	ContentHash string           `json:"contentHash"`
	ScrapedAt   time.Time        `json:"scrapedAt"`
	Record      job.RawJobRecord `json:"record"`
}

type ScrapedJobRepository interface {
	Upsert(ctx context.Context, rec job.RawJobRecord, sourceType string) (ScrapedJob, error)
	ListRecent(ctx context.Context, limit int) ([]ScrapedJob, error)
}

type PostgresScrapedJobRepository struct {
	db database.Querier
}

func NewPostgresScrapedJobRepository(db database.Querier) *PostgresScrapedJobRepository {
	return &PostgresScrapedJobRepository{db: db}
}

// ContentHash fingerprints the title and description so re-scrapes of an
// unchanged posting can be recognised.
func ContentHash(rec job.RawJobRecord) string {
	sum := blake2b.Sum256([]byte(rec.JobTitle + "\x00" + rec.JobDescription))
	return hex.EncodeToString(sum[:])
}

// Upsert stores rec keyed by its job link. Non-empty fields of a later scrape
// overwrite earlier values; empty ones keep what was stored.
func (r *PostgresScrapedJobRepository) Upsert(ctx context.Context, rec job.RawJobRecord, sourceType string) (ScrapedJob, error) {
	if r == nil || r.db == nil {
		return ScrapedJob{}, ErrNilDB
	}
	link := strings.TrimSpace(rec.JobLink)
	if link == "" {
		return ScrapedJob{}, job.ErrMissingRequiredFields
	}
	sourceType = strings.TrimSpace(sourceType)
	if sourceType == "" {
		sourceType = job.SourceTypeUnknown
	}

	out := ScrapedJob{SourceType: sourceType, ContentHash: ContentHash(rec), Record: rec}
	row := r.db.QueryRow(ctx,
		`INSERT INTO scraped_jobs (
			id, job_link, job_title, job_description, company_name, company_logo,
			company_url, location, source_type, content_hash, scraped_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		ON CONFLICT (job_link) DO UPDATE SET
			job_title = COALESCE(NULLIF(EXCLUDED.job_title, ''), scraped_jobs.job_title),
			job_description = COALESCE(NULLIF(EXCLUDED.job_description, ''), scraped_jobs.job_description),
			company_name = COALESCE(EXCLUDED.company_name, scraped_jobs.company_name),
			company_logo = COALESCE(EXCLUDED.company_logo, scraped_jobs.company_logo),
			company_url = COALESCE(EXCLUDED.company_url, scraped_jobs.company_url),
			location = COALESCE(EXCLUDED.location, scraped_jobs.location),
			source_type = EXCLUDED.source_type,
			content_hash = EXCLUDED.content_hash,
			scraped_at = EXCLUDED.scraped_at
		RETURNING id, scraped_at`,
		uuid.New(),
		link,
		rec.JobTitle,
		rec.JobDescription,
		nullableText(job.StringOrEmpty(rec.CompanyName)),
		nullableText(job.StringOrEmpty(rec.CompanyLogo)),
		nullableText(job.StringOrEmpty(rec.CompanyURL)),
		nullableText(job.StringOrEmpty(rec.Location)),
		sourceType,
		out.ContentHash,
		time.Now().UTC(),
	)
	if err := row.Scan(&out.ID, &out.ScrapedAt); err != nil {
		return ScrapedJob{}, err
	}
	return out, nil
}

func (r *PostgresScrapedJobRepository) ListRecent(ctx context.Context, limit int) ([]ScrapedJob, error) {
	if r == nil || r.db == nil {
		return nil, ErrNilDB
	}
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	rows, err := r.db.Query(ctx,
		`SELECT id, job_link, job_title, job_description, company_name, company_logo,
			company_url, location, source_type, content_hash, scraped_at
		 FROM scraped_jobs
		 ORDER BY scraped_at DESC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ScrapedJob, 0)
	for rows.Next() {
		var j ScrapedJob
		if err := rows.Scan(
			&j.ID,
			&j.Record.JobLink,
			&j.Record.JobTitle,
			&j.Record.JobDescription,
			&j.Record.CompanyName,
			&j.Record.CompanyLogo,
			&j.Record.CompanyURL,
			&j.Record.Location,
			&j.SourceType,
			&j.ContentHash,
			&j.ScrapedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, j)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func nullableText(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
