package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/enosefelix/job-finder-sub000/internal/api/dto"
	"github.com/enosefelix/job-finder-sub000/internal/service"
)

// AdminHandler serves account moderation and maintenance endpoints.
type AdminHandler struct {
	users    *service.UserService
	sweeper  *service.BlobSweeper
	validate *dto.Validator
}

// NewAdminHandler constructs handler.
func NewAdminHandler(users *service.UserService, sweeper *service.BlobSweeper, validate *dto.Validator) *AdminHandler {
	return &AdminHandler{users: users, sweeper: sweeper, validate: validate}
}

// Suspend POST /admin/users/:id/suspend.
func (h *AdminHandler) Suspend(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.validate.ID("id", id); err != nil {
		return err
	}

	result, err := h.users.Suspend(c.UserContext(), id, principal.ID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SuspensionResponse{
		User:               dto.NewUserSummary(result.User),
		ListingsDowngraded: result.ListingsDowngraded,
	}})
}

// Reactivate POST /admin/users/:id/reactivate.
func (h *AdminHandler) Reactivate(c *fiber.Ctx) error {
	principal, err := requirePrincipal(c)
	if err != nil {
		return err
	}
	id := c.Params("id")
	if err := h.validate.ID("id", id); err != nil {
		return err
	}

	summary, err := h.users.Reactivate(c.UserContext(), id, principal.ID())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewUserSummary(*summary)})
}

// SweepBlobs POST /admin/blob-deletions/sweep.
func (h *AdminHandler) SweepBlobs(c *fiber.Ctx) error {
	result, err := h.sweeper.Sweep(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": result})
}

// PendingBlobs GET /admin/blob-deletions.
func (h *AdminHandler) PendingBlobs(c *fiber.Ctx) error {
	rows, err := h.sweeper.Pending(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewBlobDeletionResponses(rows)})
}
