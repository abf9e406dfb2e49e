package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

// DefaultMaxPageSize caps the page size when no limit is configured.
const DefaultMaxPageSize = 1000

// TaskRepository defines the repository interface for the service layer
type TaskRepository interface {
	// FindByID retrieves a task by its ID; ok is false when it does not exist
	FindByID(ctx context.Context, id int64) (*domain.Task, bool, error)

	// FindByIDForUpdate retrieves and locks a task inside a transaction
	FindByIDForUpdate(ctx context.Context, id int64) (*domain.Task, bool, error)

	// FindPage returns one page of tasks
	FindPage(ctx context.Context, query store.TaskQuery) ([]*domain.Task, error)

	// Save inserts or updates a task, writing server-assigned fields back
	Save(ctx context.Context, task *domain.Task) error

	// Delete removes a task and reports whether it existed
	Delete(ctx context.Context, id int64) (bool, error)

	// WithTx returns a new repository instance that uses the provided transaction
	WithTx(tx *sql.Tx) TaskRepository

	// DB returns the underlying database connection
	DB() *sql.DB
}

// TaskService provides task-related operations
type TaskService interface {
	// CreateTask persists a new task and returns its stored view
	CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error)

	// ListTasks returns one page of tasks, optionally filtered and sorted
	ListTasks(ctx context.Context, params ListTasksParams) ([]TaskResponse, error)

	// GetTask returns a task by ID; ok is false when it does not exist
	GetTask(ctx context.Context, id int64) (task *TaskResponse, ok bool, err error)

	// PatchTask applies a partial update; ok is false when the task does not exist
	PatchTask(ctx context.Context, id int64, req UpdateTaskRequest) (task *TaskResponse, ok bool, err error)

	// DeleteTask removes a task and reports whether it existed
	DeleteTask(ctx context.Context, id int64) (bool, error)
}

// TaskServiceOption configures a task service.
type TaskServiceOption func(*taskServiceImpl)

// WithMaxPageSize sets the largest page size ListTasks accepts.
func WithMaxPageSize(size int) TaskServiceOption {
	return func(s *taskServiceImpl) {
		if size > 0 {
			s.maxPageSize = size
		}
	}
}

// WithTxRunner replaces store.RunInTransaction as the transaction runner.
func WithTxRunner(runner store.TxRunner) TaskServiceOption {
	return func(s *taskServiceImpl) {
		if runner != nil {
			s.runInTx = runner
		}
	}
}

// taskServiceImpl implements the TaskService interface
type taskServiceImpl struct {
	taskRepo    TaskRepository
	logger      *slog.Logger
	runInTx     store.TxRunner
	maxPageSize int
}

// NewTaskService creates a new TaskService
// It returns an error if the repository is nil.
func NewTaskService(
	taskRepo TaskRepository,
	logger *slog.Logger,
	opts ...TaskServiceOption,
) (TaskService, error) {
	if taskRepo == nil {
		return nil, domain.NewValidationError("taskRepo", "cannot be nil", domain.ErrValidation)
	}

	if logger == nil {
		logger = slog.Default()
	}

	s := &taskServiceImpl{
		taskRepo:    taskRepo,
		logger:      logger.With(slog.String("component", "task_service")),
		runInTx:     store.RunInTransaction,
		maxPageSize: DefaultMaxPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// CreateTask implements TaskService.CreateTask
func (s *taskServiceImpl) CreateTask(ctx context.Context, req CreateTaskRequest) (*TaskResponse, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task := ToEntity(req)
	if err := task.Validate(); err != nil {
		return nil, err
	}

	err := s.runInTx(ctx, s.taskRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		if err := s.taskRepo.WithTx(tx).Save(ctx, task); err != nil {
			return s.wrapStoreError("create_task", "failed to save task", err)
		}
		return nil
	})
	if err != nil {
		logServiceError(ctx, log, "failed to create task", err)
		return nil, err
	}

	log.Info("task created", slog.Int64("task_id", task.ID))
	resp := ToResponse(task)
	return &resp, nil
}

// ListTasks implements TaskService.ListTasks
// It runs outside a transaction.
func (s *taskServiceImpl) ListTasks(ctx context.Context, params ListTasksParams) ([]TaskResponse, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, err := s.buildTaskQuery(params)
	if err != nil {
		log.Debug("rejected list parameters", slog.String("error", err.Error()))
		return nil, err
	}

	tasks, err := s.taskRepo.FindPage(ctx, query)
	if err != nil {
		log.Error("failed to list tasks",
			slog.Int("page", query.Page),
			slog.Int("size", query.Size),
			slog.String("error", err.Error()))
		return nil, NewTaskServiceError("list_tasks", "failed to retrieve tasks", err)
	}

	return ToResponses(tasks), nil
}

// GetTask implements TaskService.GetTask
func (s *taskServiceImpl) GetTask(ctx context.Context, id int64) (*TaskResponse, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, ok, err := s.taskRepo.FindByID(ctx, id)
	if err != nil {
		log.Error("failed to retrieve task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return nil, false, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}
	if !ok {
		return nil, false, nil
	}

	resp := ToResponse(task)
	return &resp, true, nil
}

// PatchTask implements TaskService.PatchTask
// The row is locked for the duration of the transaction.
func (s *taskServiceImpl) PatchTask(
	ctx context.Context,
	id int64,
	req UpdateTaskRequest,
) (*TaskResponse, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var resp *TaskResponse
	err := s.runInTx(ctx, s.taskRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.taskRepo.WithTx(tx)

		task, ok, err := txRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return NewTaskServiceError("patch_task", "failed to load task", err)
		}
		if !ok {
			return nil
		}

		ApplyPartialUpdate(req, task)
		if err := task.Validate(); err != nil {
			return err
		}

		if err := txRepo.Save(ctx, task); err != nil {
			if store.IsNotFoundError(err) {
				return nil
			}
			return s.wrapStoreError("patch_task", "failed to save task", err)
		}

		r := ToResponse(task)
		resp = &r
		return nil
	})
	if err != nil {
		logServiceError(ctx, log, "failed to patch task", err, slog.Int64("task_id", id))
		return nil, false, err
	}
	if resp == nil {
		return nil, false, nil
	}

	log.Info("task updated", slog.Int64("task_id", id))
	return resp, true, nil
}

// DeleteTask implements TaskService.DeleteTask
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var deleted bool
	err := s.runInTx(ctx, s.taskRepo.DB(), func(ctx context.Context, tx *sql.Tx) error {
		txRepo := s.taskRepo.WithTx(tx)

		_, ok, err := txRepo.FindByIDForUpdate(ctx, id)
		if err != nil {
			return NewTaskServiceError("delete_task", "failed to load task", err)
		}
		if !ok {
			return nil
		}

		deleted, err = txRepo.Delete(ctx, id)
		if err != nil {
			return NewTaskServiceError("delete_task", "failed to delete task", err)
		}
		return nil
	})
	if err != nil {
		log.Error("failed to delete task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return false, err
	}

	if deleted {
		log.Info("task deleted", slog.Int64("task_id", id))
	}
	return deleted, nil
}

// logServiceError logs client errors at debug and everything else at error.
func logServiceError(ctx context.Context, log *slog.Logger, msg string, err error, attrs ...slog.Attr) {
	level := slog.LevelError
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		level = slog.LevelDebug
	}
	attrs = append(attrs, slog.String("error", err.Error()))
	log.LogAttrs(ctx, level, msg, attrs...)
}

// wrapStoreError passes validation errors through and wraps everything else.
func (s *taskServiceImpl) wrapStoreError(operation, message string, err error) error {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		return vErr
	}
	return NewTaskServiceError(operation, message, err)
}

// buildTaskQuery validates the raw list parameters.
func (s *taskServiceImpl) buildTaskQuery(params ListTasksParams) (store.TaskQuery, error) {
	if params.Page < 0 {
		return store.TaskQuery{}, domain.NewValidationError(
			"", "Page index must not be less than zero", ErrInvalidPagination)
	}
	if params.Size < 1 || params.Size > s.maxPageSize {
		return store.TaskQuery{}, domain.NewValidationError(
			"", fmt.Sprintf("Page size must be between 1 and %d", s.maxPageSize), ErrInvalidPagination)
	}

	sort, err := ParseTaskSort(params.Sort)
	if err != nil {
		return store.TaskQuery{}, err
	}

	query := store.TaskQuery{
		Page: params.Page,
		Size: params.Size,
		Sort: sort,
	}

	if strings.TrimSpace(params.Status) != "" {
		status, ok := domain.ParseTaskStatus(params.Status)
		if !ok {
			return store.TaskQuery{}, domain.NewValidationError(
				"", "Invalid status: "+params.Status, domain.ErrInvalidTaskStatus)
		}
		query.Status = &status
	}

	if strings.TrimSpace(params.Priority) != "" {
		priority, ok := domain.ParseTaskPriority(params.Priority)
		if !ok {
			return store.TaskQuery{}, domain.NewValidationError(
				"", "Invalid priority: "+params.Priority, domain.ErrInvalidTaskPriority)
		}
		query.Priority = &priority
	}

	return query, nil
}

// ParseTaskSort parses a "field[,direction]" sort expression.
// A blank expression yields store.DefaultTaskSort; the direction defaults to ascending.
func ParseTaskSort(expr string) (store.TaskSort, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return store.DefaultTaskSort, nil
	}

	parts := strings.Split(expr, ",")
	if len(parts) > 2 {
		return store.TaskSort{}, domain.NewValidationError(
			"", "Invalid sort: "+expr, ErrInvalidSort)
	}

	field, ok := store.ParseTaskSortField(parts[0])
	if !ok {
		return store.TaskSort{}, domain.NewValidationError(
			"", "Invalid sort field: "+strings.TrimSpace(parts[0]), ErrInvalidSort)
	}

	direction := store.SortAscending
	if len(parts) == 2 && strings.TrimSpace(parts[1]) != "" {
		direction, ok = store.ParseSortDirection(parts[1])
		if !ok {
			return store.TaskSort{}, domain.NewValidationError(
				"", "Invalid sort direction: "+strings.TrimSpace(parts[1]), ErrInvalidSort)
		}
	}

	return store.TaskSort{Field: field, Direction: direction}, nil
}
