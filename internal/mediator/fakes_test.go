package mediator

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/hermesapp/hermes-api/internal/domain"
	"github.com/hermesapp/hermes-api/internal/service/auth"
	"github.com/hermesapp/hermes-api/internal/store"
)

// fakeTaskStore is an in-memory store.TaskStore with per-method error
// injection.
type fakeTaskStore struct {
	mu sync.Mutex

	tasks map[uuid.UUID]*domain.Task

	openCalls   int
	closedCalls int
	closeCalls  int
	getCalls    int

	failCreateOpen   error
	failCreateClosed error
	failClose        error
	failGet          error
}

func newFakeTaskStore() *fakeTaskStore {
	return &fakeTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

func (f *fakeTaskStore) clone(t *domain.Task) *domain.Task {
	c := *t
	if t.TimeFinished != nil {
		ft := *t.TimeFinished
		c.TimeFinished = &ft
	}
	return &c
}

func (f *fakeTaskStore) CreateOpen(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.openCalls++
	if f.failCreateOpen != nil {
		return f.failCreateOpen
	}
	f.tasks[task.ID] = f.clone(task)
	return nil
}

func (f *fakeTaskStore) CreateClosed(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closedCalls++
	if f.failCreateClosed != nil {
		return f.failCreateClosed
	}
	f.tasks[task.ID] = f.clone(task)
	return nil
}

func (f *fakeTaskStore) Close(_ context.Context, task *domain.Task) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closeCalls++
	if f.failClose != nil {
		return f.failClose
	}
	if _, ok := f.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	f.tasks[task.ID] = f.clone(task)
	return nil
}

func (f *fakeTaskStore) GetByID(_ context.Context, id uuid.UUID) (*domain.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.getCalls++
	if f.failGet != nil {
		return nil, f.failGet
	}
	task, ok := f.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	return f.clone(task), nil
}

func (f *fakeTaskStore) get(id uuid.UUID) *domain.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tasks[id]
}

// fakeUserStore is an in-memory store.UserStore keyed by ID and email.
type fakeUserStore struct {
	byID    map[uuid.UUID]*domain.User
	byEmail map[string]*domain.User

	failCreate error
	failUpdate error
	failGet    error
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{
		byID:    make(map[uuid.UUID]*domain.User),
		byEmail: make(map[string]*domain.User),
	}
}

func (f *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	if f.failCreate != nil {
		return f.failCreate
	}
	if _, exists := f.byEmail[user.Email]; exists {
		return store.ErrEmailExists
	}
	c := *user
	f.byID[user.ID] = &c
	f.byEmail[user.Email] = &c
	return nil
}

func (f *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	user, ok := f.byID[id]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	c := *user
	return &c, nil
}

func (f *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	if f.failGet != nil {
		return nil, f.failGet
	}
	user, ok := f.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	c := *user
	return &c, nil
}

func (f *fakeUserStore) UpdateCredentials(_ context.Context, id uuid.UUID, creds domain.Credentials) error {
	if f.failUpdate != nil {
		return f.failUpdate
	}
	user, ok := f.byID[id]
	if !ok {
		return store.ErrUserNotFound
	}
	user.Credentials = creds
	return nil
}

func (f *fakeUserStore) TouchLastFetch(_ context.Context, id uuid.UUID) error {
	if _, ok := f.byID[id]; !ok {
		return store.ErrUserNotFound
	}
	return nil
}

// fakeAccessor records rows per table and fails configured tables. The
// conflict set mimics a unique index on the registered conflict key.
type fakeAccessor struct {
	rows      map[string][]store.Row
	conflicts map[string]map[any]bool // table -> seen conflict keys
	failOn    map[string]error        // table -> injected error
}

func newFakeAccessor() *fakeAccessor {
	return &fakeAccessor{
		rows:      make(map[string][]store.Row),
		conflicts: make(map[string]map[any]bool),
		failOn:    make(map[string]error),
	}
}

func (f *fakeAccessor) InsertRow(_ context.Context, table string, row store.Row) error {
	if err := f.failOn[table]; err != nil {
		return err
	}
	f.rows[table] = append(f.rows[table], row)
	return nil
}

func (f *fakeAccessor) InsertIgnoreConflict(_ context.Context, table string, row store.Row) (bool, error) {
	if err := f.failOn[table]; err != nil {
		return false, err
	}
	seen := f.conflicts[table]
	if seen == nil {
		seen = make(map[any]bool)
		f.conflicts[table] = seen
	}
	key := row["email"]
	if seen[key] {
		return false, nil
	}
	seen[key] = true
	f.rows[table] = append(f.rows[table], row)
	return true, nil
}

func (f *fakeAccessor) InsertMany(_ context.Context, table string, src store.RowSource) error {
	if err := f.failOn[table]; err != nil {
		return err
	}
	for row, ok := src.Next(); ok; row, ok = src.Next() {
		f.rows[table] = append(f.rows[table], row)
	}
	return nil
}

func (f *fakeAccessor) FetchOne(_ context.Context, table, column string, value any) (store.Row, error) {
	for _, row := range f.rows[table] {
		if row[column] == value {
			return row, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", store.ErrNotFound, table)
}

// staticVerifier returns fixed claims or a fixed error; mediator tests
// do not re-test signature checking.
type staticVerifier struct {
	claims *auth.IdentityClaims
	err    error
}

func (v *staticVerifier) Verify(context.Context, string) (*auth.IdentityClaims, error) {
	if v.err != nil {
		return nil, v.err
	}
	return v.claims, nil
}
