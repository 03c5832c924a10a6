package service

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
	"github.com/enosefelix/job-finder-sub000/internal/observability"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
	"github.com/enosefelix/job-finder-sub000/internal/storage"
	apperrors "github.com/enosefelix/job-finder-sub000/pkg/util/errorutil"
)

const (
	defaultBlobConcurrency = 4
	defaultClaimLease      = 5 * time.Minute
)

func leaseOrDefault(lease time.Duration) time.Duration {
	if lease <= 0 {
		return defaultClaimLease
	}
	return lease
}

// blobPurger deletes outbox entries from blob storage and records the outcome
// on each row.
type blobPurger struct {
	blobs       storage.BlobStorage
	metrics     *observability.Metrics
	logger      *zap.Logger
	concurrency int
}

type purgeOutcome struct {
	deleted int
	failed  int
}

// purge splits rows into at most concurrency chunks and deletes them in
// parallel, waiting for every chunk. Storage failures are recorded, never
// returned.
func (p blobPurger) purge(ctx context.Context, outbox repository.BlobDeletionRepository, rows []domain.BlobDeletion) purgeOutcome {
	if len(rows) == 0 || p.blobs == nil {
		return purgeOutcome{}
	}

	chunks := chunkRows(rows, max(p.concurrency, 1))
	results := make([][]storage.DeleteResult, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			keys := make([]string, len(chunk))
			for j, row := range chunk {
				keys[j] = row.BlobKey
			}
			results[i] = p.blobs.DeleteBlobs(gctx, keys)
			return nil
		})
	}
	_ = g.Wait()

	var (
		out     purgeOutcome
		doneIDs []string
	)
	for i, chunk := range chunks {
		for j, row := range chunk {
			var err error
			if j < len(results[i]) {
				err = results[i][j].Err
			} else {
				err = storage.ErrInvalidKey
			}
			if err == nil {
				doneIDs = append(doneIDs, row.ID)
				out.deleted++
				continue
			}
			out.failed++
			p.logger.Warn("blob deletion failed",
				zap.String("blob_key", row.BlobKey),
				zap.String("job_listing_id", row.JobListingID),
				zap.Error(err))
			if recErr := outbox.RecordFailure(ctx, row.ID, err.Error()); recErr != nil {
				p.logger.Error("record blob deletion failure", zap.String("id", row.ID), zap.Error(recErr))
			}
		}
	}

	if err := outbox.MarkDone(ctx, doneIDs); err != nil {
		p.logger.Error("mark blob deletions done", zap.Int("count", len(doneIDs)), zap.Error(err))
	}
	p.metrics.RecordBlobDeletions(out.deleted, out.failed)
	return out
}

func chunkRows(rows []domain.BlobDeletion, n int) [][]domain.BlobDeletion {
	size := (len(rows) + n - 1) / n
	chunks := make([][]domain.BlobDeletion, 0, n)
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		chunks = append(chunks, rows[start:end])
	}
	return chunks
}

// SweepResult summarises one sweep.
type SweepResult struct {
	Scanned int `json:"scanned"`
	Deleted int `json:"deleted"`
	Failed  int `json:"failed"`
}

// BlobSweeper retries outbox entries left pending by earlier deletions.
type BlobSweeper struct {
	store       repository.Store
	purger      blobPurger
	logger      *zap.Logger
	batchSize   int
	maxAttempts int
	lease       time.Duration
}

// BlobSweeperDependencies bundles collaborators for the sweeper.
type BlobSweeperDependencies struct {
	Store       repository.Store
	Blobs       storage.BlobStorage
	Metrics     *observability.Metrics
	Logger      *zap.Logger
	BatchSize   int
	MaxAttempts int
	Concurrency int

	// ClaimLease bounds how long a claimed row stays hidden from other
	// sweeps if this one dies before recording an outcome.
	ClaimLease time.Duration
}

// NewBlobSweeper constructs the sweeper.
func NewBlobSweeper(deps BlobSweeperDependencies) *BlobSweeper {
	logger := nopIfNil(deps.Logger)
	concurrency := deps.Concurrency
	if concurrency <= 0 {
		concurrency = defaultBlobConcurrency
	}
	return &BlobSweeper{
		store:       deps.Store,
		purger:      blobPurger{blobs: deps.Blobs, metrics: deps.Metrics, logger: logger, concurrency: concurrency},
		logger:      logger,
		batchSize:   deps.BatchSize,
		maxAttempts: deps.MaxAttempts,
		lease:       leaseOrDefault(deps.ClaimLease),
	}
}

// Pending lists outbox rows still waiting for removal, oldest first,
// including rows that ran out of attempts.
func (s *BlobSweeper) Pending(ctx context.Context) ([]domain.BlobDeletion, error) {
	rows, err := s.store.Repos().BlobDeletions.ListPending(ctx, s.batchSize, 0)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	return rows, nil
}

// Sweep claims one batch of pending outbox rows and purges it. Rows held by
// an in-flight purge are left to their owner.
func (s *BlobSweeper) Sweep(ctx context.Context) (SweepResult, error) {
	ctx, span := observability.StartSpan(ctx, "blob_deletions.sweep")
	result, err := s.sweep(ctx)
	span.SetAttributes(
		attribute.Int("sweep.scanned", result.Scanned),
		attribute.Int("sweep.failed", result.Failed))
	observability.EndSpan(span, err)
	return result, err
}

func (s *BlobSweeper) sweep(ctx context.Context) (SweepResult, error) {
	outbox := s.store.Repos().BlobDeletions
	rows, err := outbox.Claim(ctx, s.batchSize, s.maxAttempts, s.lease)
	if err != nil {
		return SweepResult{}, err
	}
	if len(rows) == 0 {
		return SweepResult{}, nil
	}

	outcome := s.purger.purge(ctx, outbox, rows)
	result := SweepResult{Scanned: len(rows), Deleted: outcome.deleted, Failed: outcome.failed}
	s.logger.Info("blob sweep finished",
		zap.Int("scanned", result.Scanned),
		zap.Int("deleted", result.Deleted),
		zap.Int("failed", result.Failed))
	return result, nil
}
