package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/hermesapp/hermes-api/internal/api/shared"
	"github.com/hermesapp/hermes-api/internal/redact"
	"github.com/hermesapp/hermes-api/internal/service/auth"
	"github.com/hermesapp/hermes-api/internal/store"
)

// AuthMiddleware guards routes behind bearer token verification. A
// request is authorized when its token verifies and the identity it
// carries maps to an existing user row; everything else is rejected
// with 401 before the handler runs.
type AuthMiddleware struct {
	verifier auth.TokenVerifier
	users    store.UserStore
}

// NewAuthMiddleware creates an AuthMiddleware backed by verifier and
// users.
func NewAuthMiddleware(verifier auth.TokenVerifier, users store.UserStore) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		users:    users,
	}
}

// RequireToken verifies the Authorization bearer token, resolves the
// user it identifies, and stores the user ID and identity claims in the
// request context. Unknown identities are unauthorized here; only the
// login endpoint creates users.
func (m *AuthMiddleware) RequireToken(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token, ok := BearerToken(r)
		if !ok {
			shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
			return
		}

		claims, err := m.verifier.Verify(r.Context(), token)
		if err != nil {
			respondTokenError(w, r, err)
			return
		}

		user, err := m.users.GetByEmail(r.Context(), claims.Email)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				shared.RespondWithError(w, r, http.StatusUnauthorized, "Unknown user")
				return
			}
			slog.Error("user lookup failed during authorization", "error", redact.Error(err))
			shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
			return
		}

		ctx := context.WithValue(r.Context(), shared.UserIDContextKey, user.ID)
		ctx = context.WithValue(ctx, shared.IdentityContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// respondTokenError maps verification failures onto 401 responses,
// keeping anything unexpected behind a generic 500.
func respondTokenError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrExpiredToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Token expired")
	case errors.Is(err, auth.ErrInvalidToken):
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Invalid token")
	default:
		slog.Error("token verification failed", "error", redact.Error(err))
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Authentication error")
	}
}

// BearerToken extracts the token from the Authorization header.
// Reports false when the header is absent or not in Bearer form.
func BearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// GetUserID extracts the authorized user's ID from the request context.
func GetUserID(r *http.Request) (uuid.UUID, bool) {
	userID, ok := r.Context().Value(shared.UserIDContextKey).(uuid.UUID)
	return userID, ok
}

// GetIdentity extracts the verified identity claims from the request
// context.
func GetIdentity(r *http.Request) (*auth.IdentityClaims, bool) {
	claims, ok := r.Context().Value(shared.IdentityContextKey).(*auth.IdentityClaims)
	return claims, ok
}
