package service

import (
	"cmp"
	"context"
	"database/sql"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/store"
	"github.com/stretchr/testify/mock"
)

// MockTaskRepository mocks the TaskRepository interface
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Task), args.Bool(1), args.Error(2)
}

func (m *MockTaskRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Task, bool, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.Task), args.Bool(1), args.Error(2)
}

func (m *MockTaskRepository) FindPage(ctx context.Context, query store.TaskQuery) ([]*domain.Task, error) {
	args := m.Called(ctx, query)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Task), args.Error(1)
}

func (m *MockTaskRepository) Save(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockTaskRepository) WithTx(tx *sql.Tx) TaskRepository {
	return m
}

func (m *MockTaskRepository) DB() *sql.DB {
	return nil
}

// recordingTxRunner runs fn without a database and counts invocations.
type recordingTxRunner struct {
	calls int
}

func (r *recordingTxRunner) run(ctx context.Context, db *sql.DB, fn store.TxFn) error {
	r.calls++
	return fn(ctx, nil)
}

// memoryTaskRepository is an in-memory TaskRepository that mimics the
// PostgreSQL store's stamping rules.
type memoryTaskRepository struct {
	mu     sync.Mutex
	tasks  map[int64]domain.Task
	nextID int64
	now    func() time.Time
}

func newMemoryTaskRepository(now func() time.Time) *memoryTaskRepository {
	return &memoryTaskRepository{
		tasks:  make(map[int64]domain.Task),
		nextID: 1,
		now:    now,
	}
}

func (r *memoryTaskRepository) FindByID(ctx context.Context, id int64) (*domain.Task, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, false, nil
	}
	return &task, true, nil
}

func (r *memoryTaskRepository) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Task, bool, error) {
	return r.FindByID(ctx, id)
}

func (r *memoryTaskRepository) FindPage(ctx context.Context, query store.TaskQuery) ([]*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []*domain.Task
	for id := int64(1); id < r.nextID; id++ {
		task, ok := r.tasks[id]
		if !ok {
			continue
		}
		if query.Status != nil && task.Status != *query.Status {
			continue
		}
		if query.Priority != nil && task.Priority != *query.Priority {
			continue
		}
		matched = append(matched, &task)
	}

	sortTasks(matched, query.Sort)

	start := query.Page * query.Size
	if start >= len(matched) {
		return []*domain.Task{}, nil
	}
	end := start + query.Size
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], nil
}

func (r *memoryTaskRepository) Save(ctx context.Context, task *domain.Task) error {
	if err := task.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now().UTC()
	if task.IsNew() {
		task.ID = r.nextID
		r.nextID++
		task.CreatedAt = now
		task.UpdatedAt = now
	} else {
		existing, ok := r.tasks[task.ID]
		if !ok {
			return store.ErrTaskNotFound
		}
		if now.Before(existing.UpdatedAt) {
			now = existing.UpdatedAt
		}
		task.CreatedAt = existing.CreatedAt
		task.UpdatedAt = now
	}
	r.tasks[task.ID] = *task
	return nil
}

func (r *memoryTaskRepository) Delete(ctx context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.tasks[id]; !ok {
		return false, nil
	}
	delete(r.tasks, id)
	return true, nil
}

func (r *memoryTaskRepository) WithTx(tx *sql.Tx) TaskRepository {
	return r
}

func (r *memoryTaskRepository) DB() *sql.DB {
	return nil
}

// tickingClock returns a clock that advances one second per call.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Second)
		return current
	}
}

// sortTasks orders tasks the way the postgres store does: by the requested
// field, then by id ascending.
func sortTasks(tasks []*domain.Task, by store.TaskSort) {
	if by.Field == "" {
		by = store.DefaultTaskSort
	}

	compare := func(a, b *domain.Task) int {
		switch by.Field {
		case store.TaskSortByTitle:
			return strings.Compare(a.Title, b.Title)
		case store.TaskSortByDescription:
			return strings.Compare(a.Description, b.Description)
		case store.TaskSortByStatus:
			return strings.Compare(string(a.Status), string(b.Status))
		case store.TaskSortByPriority:
			return strings.Compare(string(a.Priority), string(b.Priority))
		case store.TaskSortByCreatedAt:
			return a.CreatedAt.Compare(b.CreatedAt)
		case store.TaskSortByUpdatedAt:
			return a.UpdatedAt.Compare(b.UpdatedAt)
		default:
			return cmp.Compare(a.ID, b.ID)
		}
	}

	slices.SortStableFunc(tasks, func(a, b *domain.Task) int {
		c := compare(a, b)
		if by.Direction == store.SortDescending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return cmp.Compare(a.ID, b.ID)
	})
}
