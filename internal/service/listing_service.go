package service

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
	"github.com/enosefelix/job-finder-sub000/internal/events"
	"github.com/enosefelix/job-finder-sub000/internal/observability"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
	apperrors "github.com/enosefelix/job-finder-sub000/pkg/util/errorutil"
)

type transitionKey struct {
	from domain.ListingStatus
	to   domain.ListingStatus
}

type transitionRule struct {
	setsApprover bool
}

// listingTransitions holds every allowed status change. A pair that is not
// listed is rejected.
var listingTransitions = map[transitionKey]transitionRule{
	{domain.ListingStatusPending, domain.ListingStatusApproved}:  {setsApprover: true},
	{domain.ListingStatusRejected, domain.ListingStatusApproved}: {setsApprover: true},
	{domain.ListingStatusPending, domain.ListingStatusRejected}:  {},
	{domain.ListingStatusApproved, domain.ListingStatusRejected}: {},
	{domain.ListingStatusRejected, domain.ListingStatusPending}:  {},
	{domain.ListingStatusApproved, domain.ListingStatusPending}:  {},
}

// ListingService moderates job listings.
type ListingService struct {
	store      repository.Store
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// ListingDependencies bundles collaborators for the listing service.
type ListingDependencies struct {
	Store      repository.Store
	Dispatcher events.Dispatcher
	Metrics    *observability.Metrics
	Logger     *zap.Logger
}

// NewListingService constructs the service.
func NewListingService(deps ListingDependencies) *ListingService {
	return &ListingService{
		store:      deps.Store,
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     nopIfNil(deps.Logger),
	}
}

// Transition moves a listing to the requested status on behalf of actorID.
func (s *ListingService) Transition(ctx context.Context, listingID string, requested domain.ListingStatus, actorID string) (*domain.ListingView, error) {
	ctx, span := observability.StartSpan(ctx, "listing.transition",
		attribute.String("listing.id", listingID),
		attribute.String("listing.requested_status", string(requested)),
		attribute.String("actor.id", actorID))
	view, err := s.transition(ctx, listingID, requested, actorID)
	observability.EndSpan(span, err)
	return view, err
}

func (s *ListingService) transition(ctx context.Context, listingID string, requested domain.ListingStatus, actorID string) (*domain.ListingView, error) {
	repos := s.store.Repos()

	actor, err := loadPrincipal(ctx, repos.Users, actorID)
	if err != nil {
		return nil, err
	}

	var (
		listing  *domain.JobListing
		previous domain.ListingStatus
	)
	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		current, err := tx.Listings.GetByID(ctx, listingID)
		if err != nil {
			return lookupError(err, resourceListing)
		}
		if !requested.Valid() {
			return apperrors.NewValidationError("invalid listing status", map[string]any{
				"status":  string(requested),
				"allowed": domain.ListingStatuses,
			})
		}

		// poster before listing, the same order Suspend takes its locks in
		poster, err := tx.Users.GetByIDForShare(ctx, current.CreatedBy)
		if err != nil && !errors.Is(err, repository.ErrNotFound) {
			return apperrors.NewInternalError(err)
		}

		listing, err = tx.Listings.GetByIDForUpdate(ctx, listingID)
		if err != nil {
			return lookupError(err, resourceListing)
		}
		if requested == listing.Status {
			return apperrors.NewInvalidTransition("Job listing", requested.Label())
		}

		rule, ok := listingTransitions[transitionKey{from: listing.Status, to: requested}]
		if !ok {
			return apperrors.NewValidationError("transition not allowed", map[string]any{
				"from": string(listing.Status),
				"to":   string(requested),
			})
		}
		if requested == domain.ListingStatusApproved && poster != nil && poster.Status == domain.UserStatusSuspended {
			return apperrors.NewConflict("Cannot approve a listing of a suspended user", map[string]any{
				"poster_id": poster.ID,
			})
		}

		previous = listing.Status
		listing.Status = requested
		if rule.setsApprover {
			listing.ApprovedBy = &actor.ID
		}
		listing.UpdatedBy = &actor.ID

		if err := tx.Listings.Update(ctx, listing); err != nil {
			return lookupError(err, resourceListing)
		}
		return nil
	})
	if err != nil {
		return nil, asDomainError(err)
	}

	s.metrics.RecordTransition(string(previous), string(requested))
	s.logger.Info("listing status changed",
		zap.String("listing_id", listing.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(requested)),
		zap.String("actor_id", actor.ID))

	view, err := s.project(ctx, repos.Users, listing)
	if err != nil {
		return nil, err
	}

	publishEvent(ctx, s.dispatcher, events.New(events.EventListingStatusChanged, listing.ID, actor.ID,
		events.ListingStatusChangedPayload{
			Title:       listing.Title,
			PosterID:    view.Poster.ID,
			PosterEmail: view.Poster.Email,
			OldStatus:   previous,
			NewStatus:   requested,
		}))
	return view, nil
}

// Get returns the projected view of a listing.
func (s *ListingService) Get(ctx context.Context, listingID string) (*domain.ListingView, error) {
	repos := s.store.Repos()
	listing, err := repos.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, lookupError(err, resourceListing)
	}
	return s.project(ctx, repos.Users, listing)
}

func (s *ListingService) project(ctx context.Context, users repository.UserRepository, listing *domain.JobListing) (*domain.ListingView, error) {
	view := &domain.ListingView{JobListing: *listing}

	poster, err := s.summary(ctx, users, listing.CreatedBy)
	if err != nil {
		return nil, err
	}
	view.Poster = poster

	if listing.ApprovedBy != nil {
		reviewer, err := s.summary(ctx, users, *listing.ApprovedBy)
		if err != nil {
			return nil, err
		}
		view.Reviewer = &reviewer
	}
	return view, nil
}

// summary degrades to an id-only projection when the referenced user row is gone.
func (s *ListingService) summary(ctx context.Context, users repository.UserRepository, id string) (domain.UserSummary, error) {
	user, err := users.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return domain.UserSummary{ID: id}, nil
	}
	if err != nil {
		return domain.UserSummary{}, apperrors.NewInternalError(err)
	}
	return user.Summary(), nil
}
