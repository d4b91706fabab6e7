package api

import (
	"errors"
	"net/http"

	"github.com/google/uuid"

	"github.com/hermesapp/hermes-api/internal/api/middleware"
	"github.com/hermesapp/hermes-api/internal/api/shared"
	"github.com/hermesapp/hermes-api/internal/domain"
	"github.com/hermesapp/hermes-api/internal/mediator"
	"github.com/hermesapp/hermes-api/internal/service/auth"
	"github.com/hermesapp/hermes-api/internal/store"
)

// AuthHandler handles login and credential persistence.
type AuthHandler struct {
	userStore store.UserStore
	taskStore store.TaskStore
	verifier  auth.TokenVerifier
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(
	userStore store.UserStore,
	taskStore store.TaskStore,
	verifier auth.TokenVerifier,
) *AuthHandler {
	return &AuthHandler{
		userStore: userStore,
		taskStore: taskStore,
		verifier:  verifier,
	}
}

// Login handles POST /auth/login. The bearer token carries the signed
// identity; a known identity is resolved to its user row and an unknown
// one gets a fresh user created on the spot. Either way the action is
// recorded as a tracked task owned by the resolved user.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	token, ok := middleware.BearerToken(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "Authorization header required")
		return
	}

	med := mediator.NewAuthMediator(
		h.userStore, h.taskStore, h.verifier,
		uuid.Nil, domain.TaskTypeAuthenticate,
	)

	user, err := med.ResolveFromToken(r.Context(), token)
	if err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if user == nil {
		// Token was fine but user creation failed; the failure is
		// already recorded on the tracked task.
		HandleAPIError(w, r, errors.New("user resolution failed"), "Failed to resolve user")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, LoginResponse{
		UserID:     user.ID,
		Email:      user.Email,
		Name:       user.Name,
		Permission: string(user.Permission),
		Verified:   user.Verified,
		NewUser:    med.TaskType() == domain.TaskTypeNewUser,
		TaskID:     med.TaskID(),
	})
}

// UpdateCredentials handles PUT /auth/credentials for an authorized
// user, replacing their stored third-party credential bundle.
func (h *AuthHandler) UpdateCredentials(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r)
	if !ok {
		shared.RespondWithError(w, r, http.StatusUnauthorized, "User ID not found in request context")
		return
	}

	var req CredentialsRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	med := mediator.NewAuthMediator(
		h.userStore, h.taskStore, h.verifier,
		userID, domain.TaskTypeAuthenticate,
	)

	if _, err := med.ResolveByID(r.Context(), userID); err != nil {
		HandleAPIError(w, r, err, "")
		return
	}
	if err := med.Register(r.Context()); err != nil {
		HandleAPIError(w, r, err, "Failed to record credential update")
		return
	}

	med.PersistCredentials(r.Context(), domain.Credentials{
		Token:        req.Token,
		RefreshToken: req.RefreshToken,
		TokenURI:     req.TokenURI,
		ClientID:     req.ClientID,
		ClientSecret: req.ClientSecret,
		Scopes:       req.Scopes,
	})

	if !med.Successful() {
		HandleAPIError(w, r, errors.New("credential persistence failed"), "Failed to update credentials")
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, map[string]any{
		"task_id": med.TaskID(),
	})
}
