package domain

import "time"

// Tag records a user mentioned on a listing by another user.
type Tag struct {
	ID             string
	JobListingID   string
	TaggedUserID   string
	TaggedByUserID string
	CreatedAt      time.Time
}
