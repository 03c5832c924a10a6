package dto

import (
	"time"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
)

// UpdateListingStatusRequest payload.
type UpdateListingStatusRequest struct {
	Status domain.ListingStatus `json:"status" validate:"required,oneof=PENDING APPROVED REJECTED"`
}

// UserSummary response.
type UserSummary struct {
	ID     string            `json:"id"`
	Email  string            `json:"email"`
	Status domain.UserStatus `json:"status"`
}

// ListingResponse response.
type ListingResponse struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Status      domain.ListingStatus `json:"status"`
	StatusLabel string               `json:"status_label"`
	CreatedBy   string               `json:"created_by"`
	ApprovedBy  *string              `json:"approved_by"`
	UpdatedBy   *string              `json:"updated_by"`
	Poster      UserSummary          `json:"poster"`
	Reviewer    *UserSummary         `json:"reviewer"`
	CreatedAt   time.Time            `json:"created_at"`
	UpdatedAt   time.Time            `json:"updated_at"`
}

// NewUserSummary maps the domain projection.
func NewUserSummary(s domain.UserSummary) UserSummary {
	return UserSummary{ID: s.ID, Email: s.Email, Status: s.Status}
}

// NewListingResponse maps a listing view.
func NewListingResponse(view *domain.ListingView) ListingResponse {
	resp := ListingResponse{
		ID:          view.ID,
		Title:       view.Title,
		Status:      view.Status,
		StatusLabel: view.Status.Label(),
		CreatedBy:   view.CreatedBy,
		ApprovedBy:  view.ApprovedBy,
		UpdatedBy:   view.UpdatedBy,
		Poster:      NewUserSummary(view.Poster),
		CreatedAt:   view.CreatedAt,
		UpdatedAt:   view.UpdatedAt,
	}
	if view.Reviewer != nil {
		reviewer := NewUserSummary(*view.Reviewer)
		resp.Reviewer = &reviewer
	}
	return resp
}
