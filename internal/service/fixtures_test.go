package service

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
	"github.com/enosefelix/job-finder-sub000/internal/events"
	"github.com/enosefelix/job-finder-sub000/internal/repository"
	"github.com/enosefelix/job-finder-sub000/internal/storage"
)

// fakeBlobs records every key it was asked to delete and fails keys with a
// configured prefix.
type fakeBlobs struct {
	mu         sync.Mutex
	calls      int
	deleted    []string
	failPrefix string

	// when release is set, each call signals entered and waits for release
	entered chan struct{}
	release chan struct{}
}

func (f *fakeBlobs) DeleteBlobs(_ context.Context, keys []string) []storage.DeleteResult {
	if f.release != nil {
		f.entered <- struct{}{}
		<-f.release
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	out := make([]storage.DeleteResult, len(keys))
	for i, key := range keys {
		out[i] = storage.DeleteResult{Key: key}
		if f.failPrefix != "" && strings.HasPrefix(key, f.failPrefix) {
			out[i].Err = storage.ErrInvalidKey
			continue
		}
		f.deleted = append(f.deleted, key)
	}
	return out
}

func (f *fakeBlobs) snapshot() (int, []string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls, append([]string(nil), f.deleted...)
}

// recordingDispatcher captures published events.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) ofType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *repository.MemoryStore
	repos repository.Repositories
}

func newFixture(t *testing.T) *fixture {
	store := repository.NewMemoryStore()
	return &fixture{t: t, ctx: context.Background(), store: store, repos: store.Repos()}
}

func (f *fixture) user(email string, role domain.UserRole, mutate ...func(*domain.User)) domain.User {
	f.t.Helper()
	u := domain.User{Email: email, Role: role, Status: domain.UserStatusActive, Verified: true}
	for _, m := range mutate {
		m(&u)
	}
	require.NoError(f.t, f.repos.Users.Create(f.ctx, &u))
	return u
}

func (f *fixture) admin(email string) domain.User {
	return f.user(email, domain.UserRoleAdmin)
}

func (f *fixture) listing(creator domain.User, status domain.ListingStatus) domain.JobListing {
	f.t.Helper()
	l := domain.JobListing{Title: "Platform Engineer", Status: status, CreatedBy: creator.ID}
	require.NoError(f.t, f.repos.Listings.Create(f.ctx, &l))
	return l
}

func (f *fixture) application(listing domain.JobListing, applicant domain.User, resume, coverLetter string) {
	f.t.Helper()
	app := domain.JobListingApplication{JobListingID: listing.ID, UserID: applicant.ID, Availability: "immediate"}
	if resume != "" {
		app.Resume = &resume
	}
	if coverLetter != "" {
		app.CoverLetter = &coverLetter
	}
	require.NoError(f.t, f.repos.Applications.Create(f.ctx, &app))
}

func (f *fixture) tag(listing domain.JobListing, tagged, by domain.User) {
	f.t.Helper()
	require.NoError(f.t, f.repos.Tags.Create(f.ctx, &domain.Tag{JobListingID: listing.ID, TaggedUserID: tagged.ID, TaggedByUserID: by.ID}))
}

func (f *fixture) bookmark(listing domain.JobListing, user domain.User) {
	f.t.Helper()
	require.NoError(f.t, f.repos.Bookmarks.Create(f.ctx, &domain.Bookmark{JobListingID: listing.ID, UserID: user.ID}))
}

// rowCounts returns application, tag and bookmark counts and whether the
// listing row still exists.
func (f *fixture) rowCounts(listingID string) (apps, tags, bookmarks int, exists bool) {
	f.t.Helper()
	a, err := f.repos.Applications.ListByListing(f.ctx, listingID)
	require.NoError(f.t, err)
	tg, err := f.repos.Tags.ListByListing(f.ctx, listingID)
	require.NoError(f.t, err)
	b, err := f.repos.Bookmarks.ListByListing(f.ctx, listingID)
	require.NoError(f.t, err)
	_, err = f.repos.Listings.GetByID(f.ctx, listingID)
	return len(a), len(tg), len(b), err == nil
}

func (f *fixture) status(listingID string) domain.ListingStatus {
	f.t.Helper()
	l, err := f.repos.Listings.GetByID(f.ctx, listingID)
	require.NoError(f.t, err)
	return l.Status
}

// interleavingStore runs hook once, right before the first transaction it is
// asked to open, so a competing request commits between a service's
// prechecks and its unit of work.
type interleavingStore struct {
	repository.Store
	once sync.Once
	hook func()
}

var _ repository.Store = (*interleavingStore)(nil)

func (s *interleavingStore) WithinTx(ctx context.Context, fn func(repository.Repositories) error) error {
	s.once.Do(s.hook)
	return s.Store.WithinTx(ctx, fn)
}

// race starts n calls of fn at once and waits for all of them.
func race(n int, fn func(i int)) {
	var (
		wg    sync.WaitGroup
		start = make(chan struct{})
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			fn(i)
		}()
	}
	close(start)
	wg.Wait()
}
