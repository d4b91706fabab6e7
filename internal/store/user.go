package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/hermesapp/hermes-api/internal/domain"
)

// UserStore defines the interface for user data persistence.
type UserStore interface {
	// Create saves a new user to the store.
	// Returns ErrEmailExists if the email is already taken.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their unique ID.
	// Returns ErrUserNotFound if the user does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)

	// GetByEmail retrieves a user by their email address.
	// Returns ErrUserNotFound if the user does not exist.
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// UpdateCredentials replaces the user's delegated-credential fields.
	// Returns ErrUserNotFound if the user does not exist.
	UpdateCredentials(ctx context.Context, id uuid.UUID, creds domain.Credentials) error

	// TouchLastFetch stamps the user's last_fetch column with the
	// current time. Best effort; a missing user is ErrUserNotFound.
	TouchLastFetch(ctx context.Context, id uuid.UUID) error
}
