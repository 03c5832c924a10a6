package service

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
	"github.com/enosefelix/job-finder-sub000/internal/events"
	"github.com/enosefelix/job-finder-sub000/internal/observability"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
	"github.com/enosefelix/job-finder-sub000/internal/storage"
	apperrors "github.com/enosefelix/job-finder-sub000/pkg/util/errorutil"
)

const deleteFailedMessage = "Failed to delete job listing"

// DeletionResult reports what a listing deletion removed.
type DeletionResult struct {
	ListingID           string `json:"listing_id"`
	ApplicationsDeleted int64  `json:"applications_deleted"`
	TagsDeleted         int64  `json:"tags_deleted"`
	BookmarksDeleted    int64  `json:"bookmarks_deleted"`
	BlobsQueued         int    `json:"blobs_queued"`
	BlobsDeleted        int    `json:"blobs_deleted"`
	BlobsFailed         int    `json:"blobs_failed"`
}

// DeletionService removes a listing together with its applications, tags
// and bookmarks. Attachment blobs are queued in the same transaction and
// deleted once it commits.
type DeletionService struct {
	store      repository.Store
	purger     blobPurger
	lease      time.Duration
	dispatcher events.Dispatcher
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// DeletionDependencies bundles collaborators for the deletion service.
type DeletionDependencies struct {
	Store           repository.Store
	Blobs           storage.BlobStorage
	Dispatcher      events.Dispatcher
	Metrics         *observability.Metrics
	Logger          *zap.Logger
	BlobConcurrency int

	// ClaimLease keeps queued rows away from the sweeper while this
	// request purges them.
	ClaimLease time.Duration
}

// NewDeletionService constructs the service.
func NewDeletionService(deps DeletionDependencies) *DeletionService {
	logger := nopIfNil(deps.Logger)
	concurrency := deps.BlobConcurrency
	if concurrency <= 0 {
		concurrency = defaultBlobConcurrency
	}
	return &DeletionService{
		store:      deps.Store,
		purger:     blobPurger{blobs: deps.Blobs, metrics: deps.Metrics, logger: logger, concurrency: concurrency},
		lease:      leaseOrDefault(deps.ClaimLease),
		dispatcher: deps.Dispatcher,
		metrics:    deps.Metrics,
		logger:     logger,
	}
}

// DeleteListing deletes listingID on behalf of actorID, who must be an admin
// or the listing's creator.
func (s *DeletionService) DeleteListing(ctx context.Context, listingID, actorID string) (*DeletionResult, error) {
	ctx, span := observability.StartSpan(ctx, "listing.delete",
		attribute.String("listing.id", listingID),
		attribute.String("actor.id", actorID))
	result, err := s.deleteListing(ctx, listingID, actorID)
	if result != nil {
		span.SetAttributes(
			attribute.Int64("listing.applications_deleted", result.ApplicationsDeleted),
			attribute.Int("listing.blobs_failed", result.BlobsFailed))
	}
	observability.EndSpan(span, err)
	return result, err
}

func (s *DeletionService) deleteListing(ctx context.Context, listingID, actorID string) (*DeletionResult, error) {
	repos := s.store.Repos()

	actor, err := repos.Users.GetByID(ctx, actorID)
	if err != nil {
		return nil, s.reject(lookupError(err, resourceUser))
	}
	if !actor.CanAct() {
		return nil, s.reject(apperrors.NewUnauthorized("user is not verified or not active"))
	}

	listing, err := repos.Listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, s.reject(lookupError(err, resourceListing))
	}
	if !actor.IsAdmin() && listing.CreatedBy != actor.ID {
		return nil, s.reject(apperrors.NewForbidden("only the listing owner or an admin can delete it"))
	}

	result := &DeletionResult{ListingID: listing.ID}
	var queued []domain.BlobDeletion

	err = s.store.WithinTx(ctx, func(tx repository.Repositories) error {
		// blob keys come from the deleted rows themselves
		apps, err := tx.Applications.DeleteByListing(ctx, listing.ID)
		if err != nil {
			return err
		}
		result.ApplicationsDeleted = int64(len(apps))

		if result.TagsDeleted, err = tx.Tags.DeleteByListing(ctx, listing.ID); err != nil {
			return err
		}
		if result.BookmarksDeleted, err = tx.Bookmarks.DeleteByListing(ctx, listing.ID); err != nil {
			return err
		}
		if err := tx.Listings.Delete(ctx, listing.ID); err != nil {
			return err
		}

		entries := outboxEntries(listing.ID, apps)
		if len(entries) == 0 {
			return nil
		}
		queued, err = tx.BlobDeletions.Enqueue(ctx, entries, s.lease)
		return err
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			// lost a race with another deletion of the same listing
			return nil, s.reject(apperrors.NewNotFound(resourceListing, nil))
		}
		s.metrics.RecordDeletion("failed")
		s.logger.Error("delete listing transaction failed",
			zap.String("listing_id", listing.ID),
			zap.String("actor_id", actor.ID),
			zap.Error(err))
		return nil, apperrors.NewTransactionFailure(deleteFailedMessage, err)
	}

	result.BlobsQueued = len(queued)
	outcome := s.purger.purge(context.WithoutCancel(ctx), repos.BlobDeletions, queued)
	result.BlobsDeleted, result.BlobsFailed = outcome.deleted, outcome.failed

	s.metrics.RecordDeletion("ok")
	s.logger.Info("listing deleted",
		zap.String("listing_id", listing.ID),
		zap.String("actor_id", actor.ID),
		zap.Int64("applications", result.ApplicationsDeleted),
		zap.Int64("tags", result.TagsDeleted),
		zap.Int64("bookmarks", result.BookmarksDeleted),
		zap.Int("blobs_failed", result.BlobsFailed))

	publishEvent(ctx, s.dispatcher, events.New(events.EventListingDeleted, listing.ID, actor.ID,
		events.ListingDeletedPayload{
			Title:               listing.Title,
			PosterID:            listing.CreatedBy,
			ApplicationsDeleted: result.ApplicationsDeleted,
			TagsDeleted:         result.TagsDeleted,
			BookmarksDeleted:    result.BookmarksDeleted,
			BlobsQueued:         result.BlobsQueued,
			BlobsFailed:         result.BlobsFailed,
		}))
	return result, nil
}

func (s *DeletionService) reject(err error) error {
	s.metrics.RecordDeletion("rejected")
	return err
}

// outboxEntries collects the distinct attachment keys of apps.
func outboxEntries(listingID string, apps []domain.JobListingApplication) []domain.BlobDeletion {
	seen := make(map[string]struct{})
	var entries []domain.BlobDeletion
	for _, app := range apps {
		for _, key := range app.BlobKeys() {
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			entries = append(entries, domain.BlobDeletion{BlobKey: key, JobListingID: listingID})
		}
	}
	return entries
}
