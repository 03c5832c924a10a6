package repository

import (
	"context"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
)

// ApplicationRepository persists applications against listings.
type ApplicationRepository interface {
	Create(ctx context.Context, app *domain.JobListingApplication) error
	ListByListing(ctx context.Context, listingID string) ([]domain.JobListingApplication, error)
	// DeleteByListing removes every application of the listing and returns
	// the removed rows.
	DeleteByListing(ctx context.Context, listingID string) ([]domain.JobListingApplication, error)
}

const applicationColumns = `id, job_listing_id, user_id, resume, cover_letter, availability, created_at`

type applicationRepository struct {
	db DBTX
}

// NewApplicationRepository constructs repository.
func NewApplicationRepository(db DBTX) ApplicationRepository {
	return &applicationRepository{db: db}
}

func (r *applicationRepository) Create(ctx context.Context, app *domain.JobListingApplication) error {
	const query = `
        INSERT INTO job_listing_applications (job_listing_id, user_id, resume, cover_letter, availability)
        VALUES ($1,$2,$3,$4,$5)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		app.JobListingID,
		app.UserID,
		app.Resume,
		app.CoverLetter,
		app.Availability,
	).Scan(&app.ID, &app.CreatedAt)
}

func (r *applicationRepository) ListByListing(ctx context.Context, listingID string) ([]domain.JobListingApplication, error) {
	query := `SELECT ` + applicationColumns + `
        FROM job_listing_applications WHERE job_listing_id=$1 ORDER BY created_at ASC`
	return r.collect(ctx, query, listingID)
}

func (r *applicationRepository) DeleteByListing(ctx context.Context, listingID string) ([]domain.JobListingApplication, error) {
	query := `DELETE FROM job_listing_applications WHERE job_listing_id=$1 RETURNING ` + applicationColumns
	return r.collect(ctx, query, listingID)
}

func (r *applicationRepository) collect(ctx context.Context, query string, args ...any) ([]domain.JobListingApplication, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.JobListingApplication
	for rows.Next() {
		var app domain.JobListingApplication
		if err := rows.Scan(
			&app.ID,
			&app.JobListingID,
			&app.UserID,
			&app.Resume,
			&app.CoverLetter,
			&app.Availability,
			&app.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, app)
	}
	return result, rows.Err()
}
