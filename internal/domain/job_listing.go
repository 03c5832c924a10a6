package domain

import "time"

// ListingStatus enumerates moderation states of a job listing.
type ListingStatus string

const (
	ListingStatusPending  ListingStatus = "PENDING"
	ListingStatusApproved ListingStatus = "APPROVED"
	ListingStatusRejected ListingStatus = "REJECTED"
)

// ListingStatuses lists every known status.
var ListingStatuses = []ListingStatus{ListingStatusPending, ListingStatusApproved, ListingStatusRejected}

// Valid reports whether s is a known status.
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusPending, ListingStatusApproved, ListingStatusRejected:
		return true
	}
	return false
}

// Label returns the user-facing name of the status.
func (s ListingStatus) Label() string {
	switch s {
	case ListingStatusPending:
		return "Pending"
	case ListingStatusApproved:
		return "Approved"
	case ListingStatusRejected:
		return "Rejected"
	default:
		return string(s)
	}
}

// JobListing is a job posting moderated through the approval workflow.
type JobListing struct {
	ID         string
	Title      string
	Status     ListingStatus
	CreatedBy  string
	ApprovedBy *string
	UpdatedBy  *string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// ListingView is a listing with poster and reviewer projected to summaries.
type ListingView struct {
	JobListing
	Poster   UserSummary
	Reviewer *UserSummary
}
