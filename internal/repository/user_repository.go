package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/enosefelix/job-finder-sub000/internal/domain"
)

// UserRepository defines persistence access for accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	// GetByIDForUpdate reads the user and holds a row lock until the
	// surrounding transaction ends. Outside a transaction it is GetByID.
	GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error)
	// GetByIDForShare blocks status changes of the user until the
	// surrounding transaction ends without blocking other readers.
	GetByIDForShare(ctx context.Context, id string) (*domain.User, error)
	UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error
}

type userRepository struct {
	db DBTX
}

// NewUserRepository returns a Postgres-backed implementation.
func NewUserRepository(db DBTX) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *domain.User) error {
	const query = `
        INSERT INTO users (email, password_hash, role, status, verified)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING id, created_at, updated_at`

	return r.db.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Role,
		user.Status,
		user.Verified,
	).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt)
}

const userByIDQuery = `
        SELECT id, email, password_hash, role, status, verified, deleted_at, created_at, updated_at
        FROM users WHERE id=$1`

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, userByIDQuery, id)
}

func (r *userRepository) GetByIDForUpdate(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, userByIDQuery+` FOR UPDATE`, id)
}

func (r *userRepository) GetByIDForShare(ctx context.Context, id string) (*domain.User, error) {
	return r.get(ctx, userByIDQuery+` FOR SHARE`, id)
}

func (r *userRepository) get(ctx context.Context, query, id string) (*domain.User, error) {
	var user domain.User
	if err := r.db.QueryRow(ctx, query, id).Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Role,
		&user.Status,
		&user.Verified,
		&user.DeletedAt,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) UpdateStatus(ctx context.Context, id string, status domain.UserStatus) error {
	const query = `UPDATE users SET status=$1, updated_at=NOW() WHERE id=$2`

	cmd, err := r.db.Exec(ctx, query, status, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
