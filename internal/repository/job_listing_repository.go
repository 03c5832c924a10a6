package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
)

// JobListingRepository encapsulates listing persistence.
type JobListingRepository interface {
	Create(ctx context.Context, listing *domain.JobListing) error
	GetByID(ctx context.Context, id string) (*domain.JobListing, error)
	// GetByIDForUpdate reads the listing and holds a row lock until the
	// surrounding transaction ends.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.JobListing, error)
	ListByCreator(ctx context.Context, creatorID string) ([]domain.JobListing, error)
	Update(ctx context.Context, listing *domain.JobListing) error
	// Delete removes the listing row and returns pgx.ErrNoRows when it is
	// already gone.
	Delete(ctx context.Context, id string) error
	// DowngradeApprovedByCreator moves every APPROVED listing of creatorID
	// back to PENDING and returns how many rows changed.
	DowngradeApprovedByCreator(ctx context.Context, creatorID, updatedBy string) (int64, error)
}

type jobListingRepository struct {
	db DBTX
}

// NewJobListingRepository instantiates repository.
func NewJobListingRepository(db DBTX) JobListingRepository {
	return &jobListingRepository{db: db}
}

const listingColumns = `id, title, status, created_by, approved_by, updated_by, created_at, updated_at`

func (r *jobListingRepository) Create(ctx context.Context, listing *domain.JobListing) error {
	const query = `
        INSERT INTO job_listings (title, status, created_by, approved_by, updated_by)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at, updated_at`
	return r.db.QueryRow(ctx, query,
		listing.Title,
		listing.Status,
		listing.CreatedBy,
		listing.ApprovedBy,
		listing.UpdatedBy,
	).Scan(&listing.ID, &listing.CreatedAt, &listing.UpdatedAt)
}

func (r *jobListingRepository) GetByID(ctx context.Context, id string) (*domain.JobListing, error) {
	return r.get(ctx, `SELECT `+listingColumns+` FROM job_listings WHERE id=$1`, id)
}

func (r *jobListingRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.JobListing, error) {
	return r.get(ctx, `SELECT `+listingColumns+` FROM job_listings WHERE id=$1 FOR UPDATE`, id)
}

func (r *jobListingRepository) get(ctx context.Context, query, id string) (*domain.JobListing, error) {
	var listing domain.JobListing
	if err := scanListing(r.db.QueryRow(ctx, query, id), &listing); err != nil {
		return nil, err
	}
	return &listing, nil
}

func (r *jobListingRepository) ListByCreator(ctx context.Context, creatorID string) ([]domain.JobListing, error) {
	query := `SELECT ` + listingColumns + ` FROM job_listings WHERE created_by=$1 ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query, creatorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JobListing
	for rows.Next() {
		var listing domain.JobListing
		if err := scanListing(rows, &listing); err != nil {
			return nil, err
		}
		result = append(result, listing)
	}
	return result, rows.Err()
}

func (r *jobListingRepository) Update(ctx context.Context, listing *domain.JobListing) error {
	const query = `
        UPDATE job_listings SET title=$1, status=$2, approved_by=$3, updated_by=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	err := r.db.QueryRow(ctx, query,
		listing.Title,
		listing.Status,
		listing.ApprovedBy,
		listing.UpdatedBy,
		listing.ID,
	).Scan(&listing.UpdatedAt)
	return err
}

func (r *jobListingRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM job_listings WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *jobListingRepository) DowngradeApprovedByCreator(ctx context.Context, creatorID, updatedBy string) (int64, error) {
	const query = `
        UPDATE job_listings SET status=$1, updated_by=$2, updated_at=NOW()
        WHERE created_by=$3 AND status=$4`
	cmd, err := r.db.Exec(ctx, query,
		domain.ListingStatusPending,
		updatedBy,
		creatorID,
		domain.ListingStatusApproved,
	)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}

func scanListing(row pgx.Row, listing *domain.JobListing) error {
	return row.Scan(
		&listing.ID,
		&listing.Title,
		&listing.Status,
		&listing.CreatedBy,
		&listing.ApprovedBy,
		&listing.UpdatedBy,
		&listing.CreatedAt,
		&listing.UpdatedAt,
	)
}
