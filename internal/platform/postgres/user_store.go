package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hermesapp/hermes-api/internal/domain"
	"github.com/hermesapp/hermes-api/internal/platform/logger"
	"github.com/hermesapp/hermes-api/internal/store"
)

// UserStore implements store.UserStore using PostgreSQL.
type UserStore struct {
	db store.DBTX
}

// Ensure UserStore implements store.UserStore.
var _ store.UserStore = (*UserStore)(nil)

// NewUserStore creates a UserStore backed by db.
func NewUserStore(db store.DBTX) *UserStore {
	return &UserStore{db: db}
}

// userColumns is the scan order shared by the user lookups.
const userColumns = `id, email, name, permission_level, verified, phone_number, last_fetch,
		token, refresh_token, token_uri, client_id, client_secret, scopes`

// joinScopes flattens a scope list to the stored text form. OAuth scope
// names cannot contain spaces, so a space-joined list round-trips.
func joinScopes(scopes []string) string {
	return strings.Join(scopes, " ")
}

func splitScopes(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Fields(s)
}

// Create saves a new user. Returns store.ErrEmailExists when the email
// is already taken.
func (s *UserStore) Create(ctx context.Context, user *domain.User) error {
	log := logger.FromContext(ctx)

	if err := user.Validate(); err != nil {
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO users (id, email, name, permission_level, verified, phone_number, last_fetch,
			token, refresh_token, token_uri, client_id, client_secret, scopes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	creds := user.Credentials
	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.Email,
		user.Name,
		user.Permission,
		user.Verified,
		user.PhoneNumber,
		user.LastFetch.UTC(),
		creds.Token,
		creds.RefreshToken,
		creds.TokenURI,
		creds.ClientID,
		creds.ClientSecret,
		joinScopes(creds.Scopes),
	)
	if err != nil {
		if IsUniqueViolation(err) {
			return fmt.Errorf("%w: %v", store.ErrEmailExists, err)
		}
		log.Error("failed to insert user",
			"user_id", user.ID,
			"error", err)
		return store.NewStorageError("user", "insert", MapError(err))
	}

	return nil
}

// GetByID retrieves a user by their unique ID.
func (s *UserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return s.getOne(ctx, query, id)
}

// GetByEmail retrieves a user by their email address.
func (s *UserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return s.getOne(ctx, query, email)
}

func (s *UserStore) getOne(ctx context.Context, query string, arg any) (*domain.User, error) {
	log := logger.FromContext(ctx)

	var (
		user      domain.User
		name      sql.NullString
		phone     sql.NullString
		lastFetch sql.NullTime
		token     sql.NullString
		refresh   sql.NullString
		tokenURI  sql.NullString
		clientID  sql.NullString
		secret    sql.NullString
		scopes    sql.NullString
	)

	row := s.db.QueryRowContext(ctx, query, arg)
	err := row.Scan(
		&user.ID,
		&user.Email,
		&name,
		&user.Permission,
		&user.Verified,
		&phone,
		&lastFetch,
		&token,
		&refresh,
		&tokenURI,
		&clientID,
		&secret,
		&scopes,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, store.ErrUserNotFound
		}
		log.Error("failed to get user", "error", err)
		return nil, store.NewStorageError("user", "select", MapError(err))
	}

	user.Name = name.String
	user.PhoneNumber = phone.String
	if lastFetch.Valid {
		user.LastFetch = lastFetch.Time
	}
	user.Credentials = domain.Credentials{
		Token:        token.String,
		RefreshToken: refresh.String,
		TokenURI:     tokenURI.String,
		ClientID:     clientID.String,
		ClientSecret: secret.String,
		Scopes:       splitScopes(scopes.String),
	}

	return &user, nil
}

// UpdateCredentials replaces the delegated-credential columns for the
// user identified by id.
func (s *UserStore) UpdateCredentials(ctx context.Context, id uuid.UUID, creds domain.Credentials) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE users
		SET token = $1, refresh_token = $2, token_uri = $3,
			client_id = $4, client_secret = $5, scopes = $6
		WHERE id = $7
	`

	result, err := s.db.ExecContext(ctx, query,
		creds.Token,
		creds.RefreshToken,
		creds.TokenURI,
		creds.ClientID,
		creds.ClientSecret,
		joinScopes(creds.Scopes),
		id,
	)
	if err != nil {
		log.Error("failed to update user credentials",
			"user_id", id,
			"error", err)
		return store.NewStorageError("user", "update", MapError(err))
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		return err
	}

	return nil
}

// TouchLastFetch stamps the user's last_fetch column with the current
// time.
func (s *UserStore) TouchLastFetch(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContext(ctx)

	query := `UPDATE users SET last_fetch = $1 WHERE id = $2`

	result, err := s.db.ExecContext(ctx, query, time.Now().UTC(), id)
	if err != nil {
		log.Error("failed to touch last_fetch",
			"user_id", id,
			"error", err)
		return store.NewStorageError("user", "update", MapError(err))
	}

	if err := CheckRowsAffected(result, "user"); err != nil {
		return err
	}

	return nil
}
