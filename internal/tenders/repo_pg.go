package tenders

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements TendersRepo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Upsert inserts a tender or refreshes its scraped fields.
func (r *PGRepo) Upsert(ctx context.Context, tender Tender) error {
	const query = `
INSERT INTO tenders (id, name, reference_number, agency, activity, submission_date, created_at)
VALUES ($1, $2, $3, $4, $5, $6, COALESCE($7, now()))
ON CONFLICT (id) DO UPDATE SET
    name = EXCLUDED.name,
    reference_number = EXCLUDED.reference_number,
    agency = EXCLUDED.agency,
    activity = EXCLUDED.activity,
    submission_date = EXCLUDED.submission_date,
    deleted_at = NULL`

	var createdAt any
	if !tender.CreatedAt.IsZero() {
		createdAt = tender.CreatedAt
	}
	var submission sql.NullTime
	if tender.SubmissionDate != nil {
		submission = sql.NullTime{Time: *tender.SubmissionDate, Valid: true}
	}

	_, err := r.DB.ExecContext(ctx, query,
		tender.ID,
		tender.Name,
		tender.ReferenceNumber,
		tender.Agency,
		tender.Activity,
		submission,
		createdAt,
	)
	return err
}

// GetByID returns a tender by id.
func (r *PGRepo) GetByID(ctx context.Context, id string) (Tender, error) {
	const query = `
SELECT id, name, reference_number, agency, activity, submission_date, downloaded_at, created_at
FROM tenders
WHERE id = $1 AND deleted_at IS NULL`

	var tender Tender
	var submission, downloaded sql.NullTime
	err := r.DB.QueryRowContext(ctx, query, id).Scan(
		&tender.ID,
		&tender.Name,
		&tender.ReferenceNumber,
		&tender.Agency,
		&tender.Activity,
		&submission,
		&downloaded,
		&tender.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Tender{}, ErrNotFound
		}
		return Tender{}, err
	}
	if submission.Valid {
		tender.SubmissionDate = &submission.Time
	}
	if downloaded.Valid {
		tender.DownloadedAt = &downloaded.Time
	}
	return tender, nil
}

// List returns tenders newest-first.
func (r *PGRepo) List(ctx context.Context, limit, offset int) ([]Tender, error) {
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT id, name, reference_number, agency, activity, submission_date, downloaded_at, created_at
FROM tenders
WHERE deleted_at IS NULL
ORDER BY created_at DESC, id
LIMIT $1 OFFSET $2`

	rows, err := r.DB.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []Tender{}
	for rows.Next() {
		var tender Tender
		var submission, downloaded sql.NullTime
		if err := rows.Scan(
			&tender.ID,
			&tender.Name,
			&tender.ReferenceNumber,
			&tender.Agency,
			&tender.Activity,
			&submission,
			&downloaded,
			&tender.CreatedAt,
		); err != nil {
			return nil, err
		}
		if submission.Valid {
			tender.SubmissionDate = &submission.Time
		}
		if downloaded.Valid {
			tender.DownloadedAt = &downloaded.Time
		}
		out = append(out, tender)
	}
	return out, rows.Err()
}

// Delete soft-deletes a tender.
func (r *PGRepo) Delete(ctx context.Context, id string) error {
	const query = `
UPDATE tenders
SET deleted_at = now()
WHERE id = $1 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkDownloaded records when the tender's attachments were fetched.
func (r *PGRepo) MarkDownloaded(ctx context.Context, id string, at time.Time) error {
	const query = `
UPDATE tenders
SET downloaded_at = $1
WHERE id = $2 AND deleted_at IS NULL`
	res, err := r.DB.ExecContext(ctx, query, at, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

var _ TendersRepo = (*PGRepo)(nil)
