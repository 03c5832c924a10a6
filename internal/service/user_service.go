package service

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
	"github.com/enosefelix/job-finder-sub000/internal/events"
	"github.com/enosefelix/job-finder-sub000/internal/observability"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
	apperrors "github.com/enosefelix/job-finder-sub000/pkg/util/errorutil"
)

// SuspensionResult describes an applied suspension.
type SuspensionResult struct {
	User               domain.UserSummary
	ListingsDowngraded int64
}

// UserService manages account status on behalf of admins.
type UserService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// UserDependencies bundles collaborators for the user service.
type UserDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewUserService constructs the service.
func NewUserService(deps UserDependencies) *UserService {
	return &UserService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     nopIfNil(deps.Logger),
	}
}

// Suspend suspends userID and moves every one of their approved listings
// back to pending, in one transaction. Pending and rejected listings are
// left alone.
func (s *UserService) Suspend(ctx context.Context, userID, actorID string) (*SuspensionResult, error) {
	ctx, span := observability.StartSpan(ctx, "user.suspend",
		attribute.String("user.id", userID),
		attribute.String("actor.id", actorID))
	result, err := s.suspend(ctx, userID, actorID)
	observability.EndSpan(span, err)
	return result, err
}

func (s *UserService) suspend(ctx context.Context, userID, actorID string) (*SuspensionResult, error) {
	repos := s.store.Repos()

	actor, err := loadAdmin(ctx, repos.Users, actorID)
	if err != nil {
		return nil, err
	}
	if actor.ID == userID {
		return nil, apperrors.NewForbidden("admins cannot suspend themselves")
	}

	var (
		target     *domain.User
		downgraded int64
	)
	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		var err error
		target, err = tx.Users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return lookupError(err, resourceUser)
		}
		if target.Status == domain.UserStatusSuspended {
			return apperrors.NewInvalidTransition("User", domain.UserStatusSuspended.Label())
		}
		if err := tx.Users.UpdateStatus(ctx, target.ID, domain.UserStatusSuspended); err != nil {
			return lookupError(err, resourceUser)
		}
		if downgraded, err = tx.Listings.DowngradeApprovedByCreator(ctx, target.ID, actor.ID); err != nil {
			return apperrors.NewInternalError(err)
		}
		return nil
	})
	if err != nil {
		if apperrors.HasCode(err, apperrors.CodeInternal) {
			s.logger.Error("suspend user failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, asDomainError(err)
	}

	target.Status = domain.UserStatusSuspended
	s.metrics.RecordSuspension()
	s.logger.Info("user suspended",
		zap.String("user_id", target.ID),
		zap.String("actor_id", actor.ID),
		zap.Int64("listings_downgraded", downgraded))

	publishEvent(ctx, s.dispatcher, events.New(events.EventUserSuspended, target.ID, actor.ID,
		events.UserSuspendedPayload{Email: target.Email, ListingsDowngraded: downgraded}))

	return &SuspensionResult{User: target.Summary(), ListingsDowngraded: downgraded}, nil
}

// Reactivate returns a suspended or inactive account to active. Listings
// downgraded by the suspension stay pending.
func (s *UserService) Reactivate(ctx context.Context, userID, actorID string) (*domain.UserSummary, error) {
	repos := s.store.Repos()

	if _, err := loadAdmin(ctx, repos.Users, actorID); err != nil {
		return nil, err
	}

	var target *domain.User
	err := s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		var err error
		target, err = tx.Users.GetByIDForUpdate(ctx, userID)
		if err != nil {
			return lookupError(err, resourceUser)
		}
		if target.Status == domain.UserStatusActive {
			return apperrors.NewInvalidTransition("User", domain.UserStatusActive.Label())
		}
		if err := tx.Users.UpdateStatus(ctx, target.ID, domain.UserStatusActive); err != nil {
			return lookupError(err, resourceUser)
		}
		return nil
	})
	if err != nil {
		return nil, asDomainError(err)
	}
	target.Status = domain.UserStatusActive
	s.logger.Info("user reactivated", zap.String("user_id", target.ID), zap.String("actor_id", actorID))

	summary := target.Summary()
	return &summary, nil
}
