package repository

import (
	"context"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
)

// TagRepository stores user mentions on listings.
type TagRepository interface {
	Create(ctx context.Context, tag *domain.Tag) error
	ListByListing(ctx context.Context, listingID string) ([]domain.Tag, error)
	DeleteByListing(ctx context.Context, listingID string) (int64, error)
}

type tagRepository struct {
	db DBTX
}

// NewTagRepository builds repository.
func NewTagRepository(db DBTX) TagRepository {
	return &tagRepository{db: db}
}

func (r *tagRepository) Create(ctx context.Context, tag *domain.Tag) error {
	const query = `
        INSERT INTO tags (job_listing_id, tagged_user_id, tagged_by_user_id)
        VALUES ($1,$2,$3)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query,
		tag.JobListingID,
		tag.TaggedUserID,
		tag.TaggedByUserID,
	).Scan(&tag.ID, &tag.CreatedAt)
}

func (r *tagRepository) ListByListing(ctx context.Context, listingID string) ([]domain.Tag, error) {
	const query = `
        SELECT id, job_listing_id, tagged_user_id, tagged_by_user_id, created_at
        FROM tags WHERE job_listing_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Tag
	for rows.Next() {
		var tag domain.Tag
		if err := rows.Scan(&tag.ID, &tag.JobListingID, &tag.TaggedUserID, &tag.TaggedByUserID, &tag.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, tag)
	}
	return result, rows.Err()
}

func (r *tagRepository) DeleteByListing(ctx context.Context, listingID string) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM tags WHERE job_listing_id=$1`, listingID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
