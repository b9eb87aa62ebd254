package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"records-backend/internal/blocks"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const pageColumns = `id, analysis_id, page, kind, provider_job_id, raw_blocks, file_bucket, file_key, failed_at, failure_reason, created_at`

// CreateAnalysis inserts a new analysis job.
func (r *PGRepo) CreateAnalysis(ctx context.Context, kind Kind, note string) (AnalysisJob, error) {
	const query = `
INSERT INTO analysis_jobs (kind, note)
VALUES ($1, NULLIF($2, ''))
RETURNING id, created_at`

	job := AnalysisJob{Kind: kind, Note: note}
	err := r.DB.QueryRowContext(ctx, query, string(kind), note).Scan(&job.ID, &job.CreatedAt)
	if err != nil {
		return AnalysisJob{}, fmt.Errorf("insert analysis job: %w", err)
	}
	return job, nil
}

// GetAnalysis returns an analysis job by id.
func (r *PGRepo) GetAnalysis(ctx context.Context, id int64) (AnalysisJob, error) {
	const query = `
SELECT id, kind, COALESCE(note, ''), created_at
FROM analysis_jobs
WHERE id = $1`

	var job AnalysisJob
	err := r.DB.QueryRowContext(ctx, query, id).Scan(&job.ID, &job.Kind, &job.Note, &job.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return AnalysisJob{}, ErrNotFound
		}
		return AnalysisJob{}, err
	}
	return job, nil
}

// CreatePage inserts a new page job.
func (r *PGRepo) CreatePage(ctx context.Context, page PageJob) (PageJob, error) {
	const query = `
INSERT INTO page_jobs (analysis_id, page, kind, file_bucket, file_key)
VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''))
RETURNING id, created_at`

	err := r.DB.QueryRowContext(ctx, query,
		page.AnalysisID,
		page.Page,
		string(page.Kind),
		page.FileBucket,
		page.FileKey,
	).Scan(&page.ID, &page.CreatedAt)
	if err != nil {
		return PageJob{}, fmt.Errorf("insert page job: %w", err)
	}
	return page, nil
}

// ListPages returns all page jobs for an analysis, page ascending.
func (r *PGRepo) ListPages(ctx context.Context, analysisID int64) ([]PageJob, error) {
	query := `
SELECT ` + pageColumns + `
FROM page_jobs
WHERE analysis_id = $1
ORDER BY page ASC`

	rows, err := r.DB.QueryContext(ctx, query, analysisID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []PageJob
	for rows.Next() {
		page, err := scanPage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, page)
	}
	return out, rows.Err()
}

// NextPending returns one claimable pending page of the given kind.
func (r *PGRepo) NextPending(ctx context.Context, kind Kind) (PageJob, error) {
	query := `
SELECT ` + pageColumns + `
FROM page_jobs
WHERE kind = $1
  AND provider_job_id IS NULL
  AND file_bucket IS NOT NULL
  AND file_key IS NOT NULL
LIMIT 1`

	return r.onePage(ctx, query, string(kind))
}

// NextSubmitted returns the oldest submitted page of the given kind, id
// ascending, to bound result staleness.
func (r *PGRepo) NextSubmitted(ctx context.Context, kind Kind) (PageJob, error) {
	query := `
SELECT ` + pageColumns + `
FROM page_jobs
WHERE kind = $1
  AND provider_job_id IS NOT NULL
  AND raw_blocks IS NULL
  AND failed_at IS NULL
ORDER BY id ASC
LIMIT 1`

	return r.onePage(ctx, query, string(kind))
}

// ClaimSubmitted sets the provider job id iff it is still unset.
func (r *PGRepo) ClaimSubmitted(ctx context.Context, pageID int64, providerJobID string) (bool, error) {
	const query = `
UPDATE page_jobs
SET provider_job_id = $1
WHERE id = $2 AND provider_job_id IS NULL`

	res, err := r.DB.ExecContext(ctx, query, providerJobID, pageID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// StoreBlocks sets the raw block graph iff it is still unset.
func (r *PGRepo) StoreBlocks(ctx context.Context, pageID int64, list []blocks.Block) (bool, error) {
	const query = `
UPDATE page_jobs
SET raw_blocks = $1::jsonb
WHERE id = $2 AND raw_blocks IS NULL`

	payload, err := json.Marshal(list)
	if err != nil {
		return false, err
	}
	res, err := r.DB.ExecContext(ctx, query, payload, pageID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkFailed records a terminal provider failure iff the page is neither
// fetched nor already failed.
func (r *PGRepo) MarkFailed(ctx context.Context, pageID int64, reason string) (bool, error) {
	const query = `
UPDATE page_jobs
SET failed_at = now(),
    failure_reason = NULLIF($1, '')
WHERE id = $2 AND raw_blocks IS NULL AND failed_at IS NULL`

	res, err := r.DB.ExecContext(ctx, query, reason, pageID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (r *PGRepo) onePage(ctx context.Context, query string, args ...any) (PageJob, error) {
	row := r.DB.QueryRowContext(ctx, query, args...)
	page, err := scanPage(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return PageJob{}, ErrNotFound
		}
		return PageJob{}, err
	}
	return page, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPage(row rowScanner) (PageJob, error) {
	var (
		p             PageJob
		providerJobID sql.NullString
		raw           []byte
		fileBucket    sql.NullString
		fileKey       sql.NullString
		failedAt      sql.NullTime
		failureReason sql.NullString
	)
	err := row.Scan(
		&p.ID,
		&p.AnalysisID,
		&p.Page,
		&p.Kind,
		&providerJobID,
		&raw,
		&fileBucket,
		&fileKey,
		&failedAt,
		&failureReason,
		&p.CreatedAt,
	)
	if err != nil {
		return PageJob{}, err
	}
	if providerJobID.Valid {
		p.ProviderJobID = &providerJobID.String
	}
	if raw != nil {
		if err := json.Unmarshal(raw, &p.Blocks); err != nil {
			return PageJob{}, fmt.Errorf("decode raw blocks for page job %d: %w", p.ID, err)
		}
		if p.Blocks == nil {
			p.Blocks = []blocks.Block{}
		}
	}
	if fileBucket.Valid {
		p.FileBucket = fileBucket.String
	}
	if fileKey.Valid {
		p.FileKey = fileKey.String
	}
	if failedAt.Valid {
		p.FailedAt = &failedAt.Time
	}
	if failureReason.Valid {
		p.FailureReason = failureReason.String
	}
	return p, nil
}

var _ Repo = (*PGRepo)(nil)
