package domain

import "time"

// JobListingApplication is a user's submission against a listing. Resume and
// CoverLetter hold blob storage keys.
type JobListingApplication struct {
	ID           string
	JobListingID string
	UserID       string
	Resume       *string
	CoverLetter  *string
	Availability string
	CreatedAt    time.Time
}

// BlobKeys returns the non-empty attachment keys of the application.
func (a JobListingApplication) BlobKeys() []string {
	keys := make([]string, 0, 2)
	if a.Resume != nil && *a.Resume != "" {
		keys = append(keys, *a.Resume)
	}
	if a.CoverLetter != nil && *a.CoverLetter != "" {
		keys = append(keys, *a.CoverLetter)
	}
	return keys
}
