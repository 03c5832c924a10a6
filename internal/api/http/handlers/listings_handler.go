package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/enosefelix/job-finder-sub000/internal/api/dto"
	"github.com/enosefelix/job-finder-sub000/internal/auth"
	"github.com/enosefelix/job-finder-sub000/internal/service"
	apperrors "github.com/enosefelix/job-finder-sub000/pkg/util/errorutil"
)

// ListingsHandler serves listing reads, moderation and deletion.
type ListingsHandler struct {
	listings  *service.ListingService
	deletions *service.DeletionService
	validate  *dto.Validator
}

// NewListingsHandler constructs handler.
func NewListingsHandler(listings *service.ListingService, deletions *service.DeletionService, validate *dto.Validator) *ListingsHandler {
	return &ListingsHandler{listings: listings, deletions: deletions, validate: validate}
}

// Get GET /job-listings/:id.
func (h *ListingsHandler) Get(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.validate.ID("id", id); err != nil {
		return err
	}
	view, err := h.listings.Get(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(view)})
}

// UpdateStatus PATCH /admin/job-listings/:id/status.
func (h *ListingsHandler) UpdateStatus(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.validate.ID("id", id); err != nil {
		return err
	}

	var req dto.UpdateListingStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	view, err := h.listings.Transition(c.UserContext(), id, req.Status, principal.ID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewListingResponse(view)})
}

// Delete DELETE /job-listings/:id and DELETE /admin/job-listings/:id.
func (h *ListingsHandler) Delete(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.validate.ID("id", id); err != nil {
		return err
	}

	result, err := h.deletions.DeleteListing(c.UserContext(), id, principal.ID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

func requirePrincipal(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return nil, apperrors.NewUnauthorized("authentication required")
	}
	return principal, nil
}
