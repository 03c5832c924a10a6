package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
	"github.com/enosefelix/job-finder-sub000/internal/events"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
	apperrors "github.com/enosefelix/job-finder-sub000/pkg/util/errorutil"
)

const (
	resourceUser    = "User"
	resourceListing = "Job Listing"
)

func nopIfNil(logger *zap.Logger) *zap.Logger {
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func publishEvent(ctx context.Context, dispatcher events.Dispatcher, event events.Event) {
	if dispatcher == nil {
		return
	}
	_ = dispatcher.Publish(ctx, event)
}

// lookupError maps a repository read failure to NotFound for the resource or
// an internal error.
func lookupError(err error, resource string) error {
	if errors.Is(err, repository.ErrNotFound) {
		return apperrors.NewNotFound(resource, nil)
	}
	return apperrors.NewInternalError(err)
}

// asDomainError passes domain errors through and wraps anything else, such as
// a failed commit, as internal.
func asDomainError(err error) error {
	var domainErr *apperrors.DomainError
	if errors.As(err, &domainErr) {
		return err
	}
	return apperrors.NewInternalError(err)
}

// loadPrincipal resolves the acting user and requires an account that may act.
func loadPrincipal(ctx context.Context, users repository.UserRepository, actorID string) (*domain.User, error) {
	actor, err := users.GetByID(ctx, actorID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("user not found")
		}
		return nil, apperrors.NewInternalError(err)
	}
	if !actor.CanAct() {
		return nil, apperrors.NewUnauthorized("user is not verified or not active")
	}
	return actor, nil
}

// loadAdmin resolves the acting user and requires the admin role.
func loadAdmin(ctx context.Context, users repository.UserRepository, actorID string) (*domain.User, error) {
	actor, err := loadPrincipal(ctx, users, actorID)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() {
		return nil, apperrors.NewForbidden("admin role required")
	}
	return actor, nil
}
