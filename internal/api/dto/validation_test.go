package dto

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
	apperrors "github.com/enosefelix/job-finder-sub000/pkg/util/errorutil"
)

func TestValidator_Struct(t *testing.T) {
	v := NewValidator()

	assert.NoError(t, v.Struct(UpdateListingStatusRequest{Status: domain.ListingStatusApproved}))

	err := v.Struct(UpdateListingStatusRequest{Status: "ARCHIVED"})
	de := apperrors.ToDomainError(err)
	assert.Equal(t, apperrors.CodeValidationFailed, de.Code)
	assert.Equal(t, "oneof=PENDING APPROVED REJECTED", de.Details["status"])

	err = v.Struct(UpdateListingStatusRequest{})
	assert.Equal(t, "required", apperrors.ToDomainError(err).Details["status"])
}

func TestValidator_ID(t *testing.T) {
	v := NewValidator()
	assert.NoError(t, v.ID("id", uuid.NewString()))
	assert.True(t, apperrors.HasCode(v.ID("id", "not-a-uuid"), apperrors.CodeValidationFailed))
	assert.Error(t, v.ID("id", ""))
}

func TestNewListingResponse(t *testing.T) {
	approver := "admin-1"
	view := &domain.ListingView{
		JobListing: domain.JobListing{ID: "l1", Title: "SRE", Status: domain.ListingStatusApproved, CreatedBy: "u1", ApprovedBy: &approver},
		Poster:     domain.UserSummary{ID: "u1", Email: "poster@example.com", Status: domain.UserStatusActive},
		Reviewer:   &domain.UserSummary{ID: "admin-1", Email: "admin@example.com", Status: domain.UserStatusActive},
	}
	resp := NewListingResponse(view)
	assert.Equal(t, "Approved", resp.StatusLabel)
	assert.Equal(t, "poster@example.com", resp.Poster.Email)
	if assert.NotNil(t, resp.Reviewer) {
		assert.Equal(t, "admin-1", resp.Reviewer.ID)
	}
}
