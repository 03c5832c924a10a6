package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventListingStatusChanged EventType = "listing_status_changed"
	EventListingDeleted       EventType = "listing_deleted"
	EventUserSuspended        EventType = "user_suspended"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string    `json:"id"`
	Type      EventType `json:"type"`
	SubjectID string    `json:"subject_id"`
	ActorID   string    `json:"actor_id"`
	Timestamp time.Time `json:"timestamp"`
	Payload   any       `json:"payload"`
}

// New stamps an event with a fresh id and the current time.
func New(eventType EventType, subjectID, actorID string, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		SubjectID: subjectID,
		ActorID:   actorID,
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
}

// ListingStatusChangedPayload payload.
type ListingStatusChangedPayload struct {
	Title       string               `json:"title"`
	PosterID    string               `json:"poster_id"`
	PosterEmail string               `json:"poster_email"`
	OldStatus   domain.ListingStatus `json:"old_status"`
	NewStatus   domain.ListingStatus `json:"new_status"`
}

// ListingDeletedPayload payload.
type ListingDeletedPayload struct {
	Title               string `json:"title"`
	PosterID            string `json:"poster_id"`
	ApplicationsDeleted int64  `json:"applications_deleted"`
	TagsDeleted         int64  `json:"tags_deleted"`
	BookmarksDeleted    int64  `json:"bookmarks_deleted"`
	BlobsQueued         int    `json:"blobs_queued"`
	BlobsFailed         int    `json:"blobs_failed"`
}

// UserSuspendedPayload payload.
type UserSuspendedPayload struct {
	Email              string `json:"email"`
	ListingsDowngraded int64  `json:"listings_downgraded"`
}
