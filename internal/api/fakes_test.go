package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"

	"github.com/google/uuid"

	"github.com/hermesapp/hermes-api/internal/api/shared"
	"github.com/hermesapp/hermes-api/internal/domain"
	"github.com/hermesapp/hermes-api/internal/service/auth"
	"github.com/hermesapp/hermes-api/internal/store"
)

// Test doubles shared across the handler tests in this package.

type fakeVerifier struct {
	claims *auth.IdentityClaims
	err    error
}

func (v *fakeVerifier) Verify(context.Context, string) (*auth.IdentityClaims, error) {
	return v.claims, v.err
}

type fakeUserStore struct {
	mu         sync.Mutex
	byID       map[uuid.UUID]*domain.User
	byEmail    map[string]*domain.User
	failUpdate error
}

func newFakeUserStore(users ...*domain.User) *fakeUserStore {
	s := &fakeUserStore{
		byID:    make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
	for _, u := range users {
		s.byID[u.ID] = u
		s.byEmail[u.Email] = u
	}
	return s
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.byEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	s.byID[user.ID] = user
	s.byEmail[user.Email] = user
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	return user, nil
}

func (s *fakeUserStore) UpdateCredentials(_ context.Context, id uuid.UUID, creds domain.Credentials) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failUpdate != nil {
		return s.failUpdate
	}
	user, ok := s.byID[id]
	if !ok {
		return store.ErrUserNotFound
	}
	user.Credentials = creds
	return nil
}

func (s *fakeUserStore) TouchLastFetch(context.Context, uuid.UUID) error { return nil }

type fakeTaskStore struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (s *fakeTaskStore) save(task *domain.Task) {
	clone := *task
	s.tasks[task.ID] = &clone
}

func (s *fakeTaskStore) CreateOpen(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(task)
	return nil
}

func (s *fakeTaskStore) CreateClosed(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.save(task)
	return nil
}

func (s *fakeTaskStore) Close(_ context.Context, task *domain.Task) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing, ok := s.tasks[task.ID]
	if !ok {
		return store.ErrTaskNotFound
	}
	existing.TimeFinished = task.TimeFinished
	existing.Error = task.Error
	existing.Success = task.Success
	return nil
}

func (s *fakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	task, ok := s.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	clone := *task
	return &clone, nil
}

// authedRequest returns req with userID injected the way the auth
// middleware would.
func authedRequest(req *http.Request, userID uuid.UUID) *http.Request {
	ctx := context.WithValue(req.Context(), shared.UserIDContextKey, userID)
	return req.WithContext(ctx)
}

func doRequest(handler http.HandlerFunc, req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}
