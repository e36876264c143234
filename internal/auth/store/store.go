package store

import (
	"context"
	"errors"

	"github.com/aussiebroadwan/taskauth/internal/auth/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite,
// postgres) implement this and expose sub-repositories to keep concerns
// tidy and testable.
type Store interface {
	Users() Users

	// ApplyMigrations brings the schema up to date.
	ApplyMigrations() error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Users persists user records. Usernames are unique ignoring case.
type Users interface {
	// CreateUser inserts u and returns it with the store assigned ID. A
	// username that is already taken yields ErrAlreadyExists and nothing is
	// written.
	CreateUser(ctx context.Context, u domain.User) (domain.User, error)

	// GetUserByUsername returns ErrNotFound when no user matches.
	GetUserByUsername(ctx context.Context, username string) (domain.User, error)

	// GetUserByID returns ErrNotFound when no user matches.
	GetUserByID(ctx context.Context, id int64) (domain.User, error)
}
