package repository

import (
	"context"
	"sort"
	"time"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
)

// BlobDeletionRepository is the outbox of attachment keys awaiting removal
// from blob storage.
type BlobDeletionRepository interface {
	// Enqueue inserts pending rows already claimed by the caller for lease.
	// A zero lease leaves them free for the next sweep.
	Enqueue(ctx context.Context, entries []domain.BlobDeletion, lease time.Duration) ([]domain.BlobDeletion, error)
	ListPending(ctx context.Context, limit, maxAttempts int) ([]domain.BlobDeletion, error)
	// Claim takes up to limit pending rows that nobody holds and holds them
	// for lease. Rows locked by a concurrent claim are skipped.
	Claim(ctx context.Context, limit, maxAttempts int, lease time.Duration) ([]domain.BlobDeletion, error)
	// MarkDone and RecordFailure count an attempt and release the claim.
	MarkDone(ctx context.Context, ids []string) error
	RecordFailure(ctx context.Context, id, reason string) error
}

type blobDeletionRepository struct {
	db DBTX
}

// NewBlobDeletionRepository builds repository.
func NewBlobDeletionRepository(db DBTX) BlobDeletionRepository {
	return &blobDeletionRepository{db: db}
}

const blobDeletionColumns = `id, blob_key, job_listing_id, status, attempts, last_error, claimed_until, created_at, updated_at`

func (r *blobDeletionRepository) Enqueue(ctx context.Context, entries []domain.BlobDeletion, lease time.Duration) ([]domain.BlobDeletion, error) {
	const query = `
        INSERT INTO blob_deletions (blob_key, job_listing_id, status, claimed_until)
        VALUES ($1,$2,$3, CASE WHEN $4::bigint > 0 THEN NOW() + $4::bigint * INTERVAL '1 millisecond' END)
        RETURNING id, attempts, claimed_until, created_at, updated_at`
	result := make([]domain.BlobDeletion, 0, len(entries))
	for _, entry := range entries {
		entry.Status = domain.BlobDeletionPending
		if err := r.db.QueryRow(ctx, query, entry.BlobKey, entry.JobListingID, entry.Status, lease.Milliseconds()).
			Scan(&entry.ID, &entry.Attempts, &entry.ClaimedUntil, &entry.CreatedAt, &entry.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, nil
}

func (r *blobDeletionRepository) ListPending(ctx context.Context, limit, maxAttempts int) ([]domain.BlobDeletion, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `SELECT ` + blobDeletionColumns + `
        FROM blob_deletions
        WHERE status=$1 AND ($2 <= 0 OR attempts < $2)
        ORDER BY created_at ASC
        LIMIT $3`
	return r.collect(ctx, query, domain.BlobDeletionPending, maxAttempts, limit)
}

func (r *blobDeletionRepository) Claim(ctx context.Context, limit, maxAttempts int, lease time.Duration) ([]domain.BlobDeletion, error) {
	if limit <= 0 {
		limit = 100
	}
	query := `
        UPDATE blob_deletions SET claimed_until = NOW() + $4::bigint * INTERVAL '1 millisecond'
        WHERE id IN (
            SELECT id FROM blob_deletions
            WHERE status=$1 AND ($2 <= 0 OR attempts < $2)
              AND (claimed_until IS NULL OR claimed_until < NOW())
            ORDER BY created_at ASC
            LIMIT $3
            FOR UPDATE SKIP LOCKED)
        RETURNING ` + blobDeletionColumns
	rows, err := r.collect(ctx, query, domain.BlobDeletionPending, maxAttempts, limit, lease.Milliseconds())
	if err != nil {
		return nil, err
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].CreatedAt.Before(rows[j].CreatedAt) })
	return rows, nil
}

func (r *blobDeletionRepository) collect(ctx context.Context, query string, args ...any) ([]domain.BlobDeletion, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.BlobDeletion
	for rows.Next() {
		var entry domain.BlobDeletion
		if err := rows.Scan(
			&entry.ID,
			&entry.BlobKey,
			&entry.JobListingID,
			&entry.Status,
			&entry.Attempts,
			&entry.LastError,
			&entry.ClaimedUntil,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, entry)
	}
	return result, rows.Err()
}

func (r *blobDeletionRepository) MarkDone(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}
	const query = `
        UPDATE blob_deletions SET status=$1, attempts=attempts+1, last_error=NULL, claimed_until=NULL, updated_at=NOW()
        WHERE id = ANY($2::uuid[])`
	_, err := r.db.Exec(ctx, query, domain.BlobDeletionDone, ids)
	return err
}

func (r *blobDeletionRepository) RecordFailure(ctx context.Context, id, reason string) error {
	const query = `
        UPDATE blob_deletions SET attempts=attempts+1, last_error=$1, claimed_until=NULL, updated_at=NOW()
        WHERE id=$2`
	_, err := r.db.Exec(ctx, query, reason, id)
	return err
}
