package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a row does not exist.
var ErrNotFound = pgx.ErrNoRows

// DBTX is the query surface shared by *pgxpool.Pool and pgx.Tx, so the same
// repository code runs inside and outside a transaction.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Repositories bundles every repository bound to one connection or transaction.
type Repositories struct {
	Users         UserRepository
	Listings      JobListingRepository
	Applications  ApplicationRepository
	Tags          TagRepository
	Bookmarks     BookmarkRepository
	BlobDeletions BlobDeletionRepository
}

// Store is the persistence gateway: plain repositories plus atomic
// multi-statement units of work.
type Store interface {
	Repos() Repositories
	// WithinTx runs fn against repositories bound to a single transaction.
	// The transaction commits when fn returns nil and rolls back otherwise.
	WithinTx(ctx context.Context, fn func(Repositories) error) error
}

// PostgresStore implements Store on a pgx pool owned by the caller.
type PostgresStore struct {
	pool  *pgxpool.Pool
	repos Repositories
}

// NewPostgresStore wraps pool. Closing the pool stays with the caller.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool, repos: newRepositories(pool)}
}

// Repos returns pool-bound repositories.
func (s *PostgresStore) Repos() Repositories {
	return s.repos
}

// WithinTx runs fn inside a pgx transaction.
func (s *PostgresStore) WithinTx(ctx context.Context, fn func(Repositories) error) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return fn(newRepositories(tx))
	})
}

func newRepositories(db DBTX) Repositories {
	return Repositories{
		Users:         NewUserRepository(db),
		Listings:      NewJobListingRepository(db),
		Applications:  NewApplicationRepository(db),
		Tags:          NewTagRepository(db),
		Bookmarks:     NewBookmarkRepository(db),
		BlobDeletions: NewBlobDeletionRepository(db),
	}
}
