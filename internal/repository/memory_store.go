package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
)

// Operation names passed to a MemoryStore fault hook.
const (
	OpUsersUpdateStatus           = "users.update_status"
	OpListingsUpdate              = "listings.update"
	OpListingsDelete              = "listings.delete"
	OpListingsDowngrade           = "listings.downgrade"
	OpApplicationsDeleteByListing = "applications.delete_by_listing"
	OpTagsCreate                  = "tags.create"
	OpTagsDeleteByListing         = "tags.delete_by_listing"
	OpBookmarksDeleteByListing    = "bookmarks.delete_by_listing"
	OpBlobDeletionsEnqueue        = "blob_deletions.enqueue"
)

// MemoryStore is an in-process Store. Transactions run serially against a
// snapshot that replaces the live state only on commit.
type MemoryStore struct {
	mu    sync.Mutex
	state *memoryState

	faultMu sync.RWMutex
	faults  map[string]error
}

type memoryState struct {
	users         map[string]domain.User
	listings      map[string]domain.JobListing
	applications  map[string]domain.JobListingApplication
	tags          map[string]domain.Tag
	bookmarks     map[string]domain.Bookmark
	blobDeletions map[string]domain.BlobDeletion
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{state: newMemoryState(), faults: map[string]error{}}
}

func newMemoryState() *memoryState {
	return &memoryState{
		users:         map[string]domain.User{},
		listings:      map[string]domain.JobListing{},
		applications:  map[string]domain.JobListingApplication{},
		tags:          map[string]domain.Tag{},
		bookmarks:     map[string]domain.Bookmark{},
		blobDeletions: map[string]domain.BlobDeletion{},
	}
}

func (s *memoryState) clone() *memoryState {
	out := newMemoryState()
	for k, v := range s.users {
		out.users[k] = v
	}
	for k, v := range s.listings {
		out.listings[k] = v
	}
	for k, v := range s.applications {
		out.applications[k] = v
	}
	for k, v := range s.tags {
		out.tags[k] = v
	}
	for k, v := range s.bookmarks {
		out.bookmarks[k] = v
	}
	for k, v := range s.blobDeletions {
		out.blobDeletions[k] = v
	}
	return out
}

// InjectFault makes the named operation fail with err until cleared with a
// nil err.
func (s *MemoryStore) InjectFault(op string, err error) {
	s.faultMu.Lock()
	defer s.faultMu.Unlock()
	if err == nil {
		delete(s.faults, op)
		return
	}
	s.faults[op] = err
}

func (s *MemoryStore) fault(op string) error {
	s.faultMu.RLock()
	defer s.faultMu.RUnlock()
	return s.faults[op]
}

// Repos returns repositories operating directly on the live state.
func (s *MemoryStore) Repos() Repositories {
	return s.reposFor(&memoryConn{store: s, lock: true, state: func() *memoryState { return s.state }})
}

// WithinTx runs fn on a private copy of the state and publishes it on success.
func (s *MemoryStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	snapshot := s.state.clone()
	conn := &memoryConn{store: s, state: func() *memoryState { return snapshot }}
	if err := fn(s.reposFor(conn)); err != nil {
		return err
	}
	s.state = snapshot
	return nil
}

func (s *MemoryStore) reposFor(conn *memoryConn) Repositories {
	return Repositories{
		Users:         &memoryUsers{conn},
		Listings:      &memoryListings{conn},
		Applications:  &memoryApplications{conn},
		Tags:          &memoryTags{conn},
		Bookmarks:     &memoryBookmarks{conn},
		BlobDeletions: &memoryBlobDeletions{conn},
	}
}

// memoryConn locks the store for non-transactional access. Inside WithinTx
// the store mutex is already held for the whole unit of work.
type memoryConn struct {
	store *MemoryStore
	lock  bool
	state func() *memoryState
}

func (c *memoryConn) do(op string, fn func(st *memoryState) error) error {
	if c.lock {
		c.store.mu.Lock()
		defer c.store.mu.Unlock()
	}
	if op != "" {
		if err := c.store.fault(op); err != nil {
			return err
		}
	}
	return fn(c.state())
}

func newID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

type memoryUsers struct{ *memoryConn }

func (r *memoryUsers) Create(_ context.Context, user *domain.User) error {
	return r.do("", func(st *memoryState) error {
		now := time.Now().UTC()
		user.ID = newID(user.ID)
		user.CreatedAt, user.UpdatedAt = now, now
		st.users[user.ID] = *user
		return nil
	})
}

func (r *memoryUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	var out domain.User
	err := r.do("", func(st *memoryState) error {
		user, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		out = user
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// Transactions already run one at a time, so the locking reads are plain reads.
func (r *memoryUsers) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryUsers) GetByIDForShare(ctx context.Context, id string) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryUsers) UpdateStatus(_ context.Context, id string, status domain.UserStatus) error {
	return r.do(OpUsersUpdateStatus, func(st *memoryState) error {
		user, ok := st.users[id]
		if !ok {
			return ErrNotFound
		}
		user.Status = status
		user.UpdatedAt = time.Now().UTC()
		st.users[id] = user
		return nil
	})
}

type memoryListings struct{ *memoryConn }

func (r *memoryListings) Create(_ context.Context, listing *domain.JobListing) error {
	return r.do("", func(st *memoryState) error {
		now := time.Now().UTC()
		listing.ID = newID(listing.ID)
		if listing.Status == "" {
			listing.Status = domain.ListingStatusPending
		}
		listing.CreatedAt, listing.UpdatedAt = now, now
		st.listings[listing.ID] = *listing
		return nil
	})
}

func (r *memoryListings) GetByID(_ context.Context, id string) (*domain.JobListing, error) {
	var out domain.JobListing
	err := r.do("", func(st *memoryState) error {
		listing, ok := st.listings[id]
		if !ok {
			return ErrNotFound
		}
		out = listing
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *memoryListings) GetByIDForUpdate(ctx context.Context, id string) (*domain.JobListing, error) {
	return r.GetByID(ctx, id)
}

func (r *memoryListings) ListByCreator(_ context.Context, creatorID string) ([]domain.JobListing, error) {
	var out []domain.JobListing
	err := r.do("", func(st *memoryState) error {
		for _, listing := range st.listings {
			if listing.CreatedBy == creatorID {
				out = append(out, listing)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func (r *memoryListings) Update(_ context.Context, listing *domain.JobListing) error {
	return r.do(OpListingsUpdate, func(st *memoryState) error {
		if _, ok := st.listings[listing.ID]; !ok {
			return ErrNotFound
		}
		listing.UpdatedAt = time.Now().UTC()
		st.listings[listing.ID] = *listing
		return nil
	})
}

func (r *memoryListings) Delete(_ context.Context, id string) error {
	return r.do(OpListingsDelete, func(st *memoryState) error {
		if _, ok := st.listings[id]; !ok {
			return ErrNotFound
		}
		delete(st.listings, id)
		return nil
	})
}

func (r *memoryListings) DowngradeApprovedByCreator(_ context.Context, creatorID, updatedBy string) (int64, error) {
	var count int64
	err := r.do(OpListingsDowngrade, func(st *memoryState) error {
		now := time.Now().UTC()
		for id, listing := range st.listings {
			if listing.CreatedBy != creatorID || listing.Status != domain.ListingStatusApproved {
				continue
			}
			by := updatedBy
			listing.Status = domain.ListingStatusPending
			listing.UpdatedBy = &by
			listing.UpdatedAt = now
			st.listings[id] = listing
			count++
		}
		return nil
	})
	return count, err
}

type memoryApplications struct{ *memoryConn }

func (r *memoryApplications) Create(_ context.Context, app *domain.JobListingApplication) error {
	return r.do("", func(st *memoryState) error {
		app.ID = newID(app.ID)
		app.CreatedAt = time.Now().UTC()
		st.applications[app.ID] = *app
		return nil
	})
}

func (r *memoryApplications) ListByListing(_ context.Context, listingID string) ([]domain.JobListingApplication, error) {
	var out []domain.JobListingApplication
	err := r.do("", func(st *memoryState) error {
		for _, app := range st.applications {
			if app.JobListingID == listingID {
				out = append(out, app)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (r *memoryApplications) DeleteByListing(_ context.Context, listingID string) ([]domain.JobListingApplication, error) {
	var out []domain.JobListingApplication
	err := r.do(OpApplicationsDeleteByListing, func(st *memoryState) error {
		for id, app := range st.applications {
			if app.JobListingID == listingID {
				delete(st.applications, id)
				out = append(out, app)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

type memoryTags struct{ *memoryConn }

func (r *memoryTags) Create(_ context.Context, tag *domain.Tag) error {
	return r.do(OpTagsCreate, func(st *memoryState) error {
		tag.ID = newID(tag.ID)
		tag.CreatedAt = time.Now().UTC()
		st.tags[tag.ID] = *tag
		return nil
	})
}

func (r *memoryTags) ListByListing(_ context.Context, listingID string) ([]domain.Tag, error) {
	var out []domain.Tag
	err := r.do("", func(st *memoryState) error {
		for _, tag := range st.tags {
			if tag.JobListingID == listingID {
				out = append(out, tag)
			}
		}
		return nil
	})
	return out, err
}

func (r *memoryTags) DeleteByListing(_ context.Context, listingID string) (int64, error) {
	var count int64
	err := r.do(OpTagsDeleteByListing, func(st *memoryState) error {
		for id, tag := range st.tags {
			if tag.JobListingID == listingID {
				delete(st.tags, id)
				count++
			}
		}
		return nil
	})
	return count, err
}

type memoryBookmarks struct{ *memoryConn }

func (r *memoryBookmarks) Create(_ context.Context, bookmark *domain.Bookmark) error {
	return r.do("", func(st *memoryState) error {
		bookmark.ID = newID(bookmark.ID)
		bookmark.CreatedAt = time.Now().UTC()
		st.bookmarks[bookmark.ID] = *bookmark
		return nil
	})
}

func (r *memoryBookmarks) ListByListing(_ context.Context, listingID string) ([]domain.Bookmark, error) {
	var out []domain.Bookmark
	err := r.do("", func(st *memoryState) error {
		for _, bookmark := range st.bookmarks {
			if bookmark.JobListingID == listingID {
				out = append(out, bookmark)
			}
		}
		return nil
	})
	return out, err
}

func (r *memoryBookmarks) DeleteByListing(_ context.Context, listingID string) (int64, error) {
	var count int64
	err := r.do(OpBookmarksDeleteByListing, func(st *memoryState) error {
		for id, bookmark := range st.bookmarks {
			if bookmark.JobListingID == listingID {
				delete(st.bookmarks, id)
				count++
			}
		}
		return nil
	})
	return count, err
}

type memoryBlobDeletions struct{ *memoryConn }

func (r *memoryBlobDeletions) Enqueue(_ context.Context, entries []domain.BlobDeletion, lease time.Duration) ([]domain.BlobDeletion, error) {
	result := make([]domain.BlobDeletion, 0, len(entries))
	err := r.do(OpBlobDeletionsEnqueue, func(st *memoryState) error {
		now := time.Now().UTC()
		for _, entry := range entries {
			entry.ID = newID(entry.ID)
			entry.Status = domain.BlobDeletionPending
			entry.Attempts = 0
			entry.ClaimedUntil = nil
			if lease > 0 {
				until := now.Add(lease)
				entry.ClaimedUntil = &until
			}
			entry.CreatedAt, entry.UpdatedAt = now, now
			st.blobDeletions[entry.ID] = entry
			result = append(result, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (r *memoryBlobDeletions) ListPending(_ context.Context, limit, maxAttempts int) ([]domain.BlobDeletion, error) {
	var out []domain.BlobDeletion
	err := r.do("", func(st *memoryState) error {
		out = pendingRows(st, limit, maxAttempts, func(domain.BlobDeletion) bool { return true })
		return nil
	})
	return out, err
}

func (r *memoryBlobDeletions) Claim(_ context.Context, limit, maxAttempts int, lease time.Duration) ([]domain.BlobDeletion, error) {
	var out []domain.BlobDeletion
	err := r.do("", func(st *memoryState) error {
		now := time.Now().UTC()
		free := func(entry domain.BlobDeletion) bool {
			return entry.ClaimedUntil == nil || entry.ClaimedUntil.Before(now)
		}
		out = pendingRows(st, limit, maxAttempts, free)
		until := now.Add(lease)
		for i := range out {
			out[i].ClaimedUntil = &until
			st.blobDeletions[out[i].ID] = out[i]
		}
		return nil
	})
	return out, err
}

func pendingRows(st *memoryState, limit, maxAttempts int, keep func(domain.BlobDeletion) bool) []domain.BlobDeletion {
	if limit <= 0 {
		limit = 100
	}
	var out []domain.BlobDeletion
	for _, entry := range st.blobDeletions {
		if entry.Status != domain.BlobDeletionPending {
			continue
		}
		if maxAttempts > 0 && entry.Attempts >= maxAttempts {
			continue
		}
		if keep(entry) {
			out = append(out, entry)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

func (r *memoryBlobDeletions) MarkDone(_ context.Context, ids []string) error {
	return r.do("", func(st *memoryState) error {
		now := time.Now().UTC()
		for _, id := range ids {
			entry, ok := st.blobDeletions[id]
			if !ok {
				continue
			}
			entry.Status = domain.BlobDeletionDone
			entry.Attempts++
			entry.LastError = nil
			entry.ClaimedUntil = nil
			entry.UpdatedAt = now
			st.blobDeletions[id] = entry
		}
		return nil
	})
}

func (r *memoryBlobDeletions) RecordFailure(_ context.Context, id, reason string) error {
	return r.do("", func(st *memoryState) error {
		entry, ok := st.blobDeletions[id]
		if !ok {
			return ErrNotFound
		}
		msg := reason
		entry.Attempts++
		entry.LastError = &msg
		entry.ClaimedUntil = nil
		entry.UpdatedAt = time.Now().UTC()
		st.blobDeletions[id] = entry
		return nil
	})
}

// AllBlobDeletions returns every outbox row, pending or done.
func (s *MemoryStore) AllBlobDeletions() []domain.BlobDeletion {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]domain.BlobDeletion, 0, len(s.state.blobDeletions))
	for _, entry := range s.state.blobDeletions {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].BlobKey < out[j].BlobKey })
	return out
}
