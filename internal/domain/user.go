package domain

import "time"

// UserStatus represents lifecycle states for an account.
type UserStatus string

const (
	UserStatusActive    UserStatus = "ACTIVE"
	UserStatusInactive  UserStatus = "INACTIVE"
	UserStatusSuspended UserStatus = "SUSPENDED"
)

// Label returns the user-facing name of the status.
func (s UserStatus) Label() string {
	switch s {
	case UserStatusActive:
		return "Active"
	case UserStatusInactive:
		return "Inactive"
	case UserStatusSuspended:
		return "Suspended"
	default:
		return string(s)
	}
}

// UserRole separates regular members from administrators.
type UserRole string

const (
	UserRoleUser  UserRole = "USER"
	UserRoleAdmin UserRole = "ADMIN"
)

// User is an account on the job board. Listings reference users as poster
// and reviewer.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Role         UserRole
	Status       UserStatus
	Verified     bool
	DeletedAt    *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsAdmin reports whether the user holds the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == UserRoleAdmin
}

// CanAct reports whether the account may perform mutations: it must be
// verified, not soft-deleted and active.
func (u *User) CanAct() bool {
	return u != nil && u.Verified && u.DeletedAt == nil && u.Status == UserStatusActive
}

// UserSummary is the projection of a user exposed alongside listings.
type UserSummary struct {
	ID     string
	Email  string
	Status UserStatus
}

// Summary projects the user down to non-sensitive fields.
func (u *User) Summary() UserSummary {
	return UserSummary{ID: u.ID, Email: u.Email, Status: u.Status}
}
