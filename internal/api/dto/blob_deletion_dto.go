package dto

import (
	"time"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
)

// BlobDeletionResponse response.
type BlobDeletionResponse struct {
	ID           string     `json:"id"`
	BlobKey      string     `json:"blob_key"`
	JobListingID string     `json:"job_listing_id"`
	Attempts     int        `json:"attempts"`
	LastError    *string    `json:"last_error"`
	ClaimedUntil *time.Time `json:"claimed_until"`
	CreatedAt    time.Time  `json:"created_at"`
}

// NewBlobDeletionResponses maps outbox rows.
func NewBlobDeletionResponses(rows []domain.BlobDeletion) []BlobDeletionResponse {
	out := make([]BlobDeletionResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, BlobDeletionResponse{
			ID:           row.ID,
			BlobKey:      row.BlobKey,
			JobListingID: row.JobListingID,
			Attempts:     row.Attempts,
			LastError:    row.LastError,
			ClaimedUntil: row.ClaimedUntil,
			CreatedAt:    row.CreatedAt,
		})
	}
	return out
}
