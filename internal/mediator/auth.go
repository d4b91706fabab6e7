package mediator

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/hermesapp/hermes-api/internal/domain"
	"github.com/hermesapp/hermes-api/internal/platform/logger"
	"github.com/hermesapp/hermes-api/internal/service/auth"
	"github.com/hermesapp/hermes-api/internal/store"
)

// ErrNoResolvedUser is recorded when a credential operation runs
// before any user has been resolved.
var ErrNoResolvedUser = errors.New("no user resolved on this mediator")

// AuthMediator resolves bearer tokens to users, creating the user
// record on first sight, and persists refreshed delegated-credential
// material for an already-identified user.
type AuthMediator struct {
	*Base
	users    store.UserStore
	verifier auth.TokenVerifier
	user     *domain.User
}

// NewAuthMediator constructs an AuthMediator. userID may be uuid.Nil
// when the acting user is not yet known (the usual login case).
func NewAuthMediator(
	users store.UserStore,
	tasks store.TaskStore,
	verifier auth.TokenVerifier,
	userID uuid.UUID,
	taskType domain.TaskType,
) *AuthMediator {
	return &AuthMediator{
		Base:     NewBase(tasks, userID, taskType),
		users:    users,
		verifier: verifier,
	}
}

// User returns the resolved user, or nil if resolution has not
// happened or failed. Callers must check Successful before trusting a
// non-nil result.
func (m *AuthMediator) User() *domain.User {
	return m.user
}

// ResolveFromToken decodes the token's signed identity claims and
// resolves them to a user. A known email adopts the existing user's
// UUID and records a tracked AUTHENTICATE task; an unknown email
// creates the user with BASE permission, flips the task type to
// NEW_USER, and records the tracked task. Token failures return the
// auth error; storage failures are recorded and leave no user set.
func (m *AuthMediator) ResolveFromToken(ctx context.Context, token string) (*domain.User, error) {
	log := logger.FromContext(ctx)

	claims, err := m.verifier.Verify(ctx, token)
	if err != nil {
		m.RecordError(err)
		return nil, err
	}

	existing, err := m.users.GetByEmail(ctx, claims.Email)
	switch {
	case err == nil:
		m.userID = existing.ID
		m.user = existing
		m.TrackAnonymousAction(ctx)

		// Refresh the login stamp; a failure here does not fail the
		// login itself.
		if touchErr := m.users.TouchLastFetch(ctx, existing.ID); touchErr != nil {
			log.Warn("failed to stamp last_fetch on login",
				"user_id", existing.ID,
				"error", touchErr)
		}

		return existing, nil

	case store.IsNotFoundError(err):
		return m.createNewUser(ctx, claims)

	default:
		m.RecordError(err)
		return nil, err
	}
}

// createNewUser handles first-sight resolution: a fresh user UUID, the
// NEW_USER task type, and a user row built from the token claims.
func (m *AuthMediator) createNewUser(ctx context.Context, claims *auth.IdentityClaims) (*domain.User, error) {
	log := logger.FromContext(ctx)

	user, err := domain.NewUser(claims.Email, claims.Name, claims.Verified, claims.Phone)
	if err != nil {
		m.RecordError(err)
		return nil, err
	}

	m.userID = user.ID
	m.taskType = domain.TaskTypeNewUser

	if err := m.users.Create(ctx, user); err != nil {
		log.Error("failed to create user on first resolution",
			"email_domain", emailDomain(claims.Email),
			"error", err)
		m.RecordError(err)
		m.TrackAnonymousAction(ctx)
		return nil, err
	}

	m.user = user
	m.TrackAnonymousAction(ctx)

	log.Info("created user on first resolution", "user_id", user.ID)
	return user, nil
}

// ResolveByID loads an already-identified user onto the mediator, for
// flows (credential refresh) where the caller knows the UUID and no
// token is in play. Storage failures are recorded.
func (m *AuthMediator) ResolveByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, err := m.users.GetByID(ctx, id)
	if err != nil {
		m.RecordError(err)
		return nil, err
	}

	m.userID = user.ID
	m.user = user
	return user, nil
}

// CurrentCredentials returns the resolved user's delegated-credential
// bundle, or a zero bundle if no user has been resolved.
func (m *AuthMediator) CurrentCredentials() domain.Credentials {
	if m.user == nil {
		return domain.Credentials{}
	}
	return m.user.Credentials
}

// PersistCredentials updates the resolved user's stored credential
// fields, then finalizes this mediator's task regardless of outcome.
func (m *AuthMediator) PersistCredentials(ctx context.Context, creds domain.Credentials) {
	defer m.Finalize(ctx)

	if m.user == nil {
		m.RecordError(ErrNoResolvedUser)
		return
	}

	if err := m.users.UpdateCredentials(ctx, m.user.ID, creds); err != nil {
		logger.FromContext(ctx).Error("failed to persist credentials",
			"user_id", m.user.ID,
			"error", err)
		m.RecordError(err)
		return
	}

	m.user.Credentials = creds
}

// emailDomain strips the local part for logging; full addresses stay
// out of the logs.
func emailDomain(email string) string {
	for i := len(email) - 1; i >= 0; i-- {
		if email[i] == '@' {
			return email[i+1:]
		}
	}
	return ""
}
