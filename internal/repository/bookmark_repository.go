package repository

import (
	"context"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
)

// BookmarkRepository stores saved listings.
type BookmarkRepository interface {
	Create(ctx context.Context, bookmark *domain.Bookmark) error
	ListByListing(ctx context.Context, listingID string) ([]domain.Bookmark, error)
	DeleteByListing(ctx context.Context, listingID string) (int64, error)
}

type bookmarkRepository struct {
	db DBTX
}

// NewBookmarkRepository builds repository.
func NewBookmarkRepository(db DBTX) BookmarkRepository {
	return &bookmarkRepository{db: db}
}

func (r *bookmarkRepository) Create(ctx context.Context, bookmark *domain.Bookmark) error {
	const query = `
        INSERT INTO bookmarks (job_listing_id, user_id)
        VALUES ($1,$2)
        RETURNING id, created_at`
	return r.db.QueryRow(ctx, query, bookmark.JobListingID, bookmark.UserID).Scan(&bookmark.ID, &bookmark.CreatedAt)
}

func (r *bookmarkRepository) ListByListing(ctx context.Context, listingID string) ([]domain.Bookmark, error) {
	const query = `
        SELECT id, job_listing_id, user_id, created_at
        FROM bookmarks WHERE job_listing_id=$1 ORDER BY created_at ASC`
	rows, err := r.db.Query(ctx, query, listingID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Bookmark
	for rows.Next() {
		var bookmark domain.Bookmark
		if err := rows.Scan(&bookmark.ID, &bookmark.JobListingID, &bookmark.UserID, &bookmark.CreatedAt); err != nil {
			return nil, err
		}
		result = append(result, bookmark)
	}
	return result, rows.Err()
}

func (r *bookmarkRepository) DeleteByListing(ctx context.Context, listingID string) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM bookmarks WHERE job_listing_id=$1`, listingID)
	if err != nil {
		return 0, err
	}
	return cmd.RowsAffected(), nil
}
