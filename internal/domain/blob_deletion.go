package domain

import "time"

// BlobDeletionStatus tracks an outbox row through cleanup.
type BlobDeletionStatus string

const (
	BlobDeletionPending BlobDeletionStatus = "PENDING"
	BlobDeletionDone    BlobDeletionStatus = "DONE"
)

// BlobDeletion is an outbox entry for an attachment that must be removed from
// blob storage once the owning rows are gone.
type BlobDeletion struct {
	ID           string
	BlobKey      string
	JobListingID string
	Status       BlobDeletionStatus
	Attempts     int
	LastError    *string
	// ClaimedUntil is set while a purge owns the row.
	ClaimedUntil *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
