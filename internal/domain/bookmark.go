package domain

import "time"

// Bookmark is a user's saved reference to a listing.
type Bookmark struct {
	ID           string
	JobListingID string
	UserID       string
	CreatedAt    time.Time
}
