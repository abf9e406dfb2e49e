package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

const tasksTable = "tasks"

var taskColumns = []string{
	"id",
	"title",
	"description",
	"status",
	"priority",
	"created_at",
	"updated_at",
}

// taskSortColumns is the whitelist of columns a page may be ordered by.
var taskSortColumns = map[store.TaskSortField]string{
	store.TaskSortByID:          "id",
	store.TaskSortByTitle:       "title",
	store.TaskSortByDescription: "description",
	store.TaskSortByStatus:      "status",
	store.TaskSortByPriority:    "priority",
	store.TaskSortByCreatedAt:   "created_at",
	store.TaskSortByUpdatedAt:   "updated_at",
}

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db      store.DBTX
	logger  *slog.Logger
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the TaskStore interface.
// It accepts a database connection or transaction that should be initialized and managed by the caller.
// If logger is nil, a default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:      db,
		logger:  logger.With(slog.String("component", "task_store")),
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     time.Now,
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// WithTxTaskStore implements store.TaskStore.WithTxTaskStore.
func (s *PostgresTaskStore) WithTxTaskStore(tx *sql.Tx) store.TaskStore {
	return &PostgresTaskStore{
		db:      tx,
		logger:  s.logger,
		builder: s.builder,
		now:     s.now,
	}
}

// FindByID implements store.TaskStore.FindByID
func (s *PostgresTaskStore) FindByID(ctx context.Context, id int64) (*domain.Task, bool, error) {
	return s.findByID(ctx, id, false)
}

// FindByIDForUpdate implements store.TaskStore.FindByIDForUpdate
func (s *PostgresTaskStore) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Task, bool, error) {
	return s.findByID(ctx, id, true)
}

func (s *PostgresTaskStore) findByID(ctx context.Context, id int64, lock bool) (*domain.Task, bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	builder := s.builder.
		Select(taskColumns...).
		From(tasksTable).
		Where(squirrel.Eq{"id": id})
	if lock {
		builder = builder.Suffix("FOR UPDATE")
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, false, fmt.Errorf("failed to build task query: %w", err)
	}

	task, err := scanTask(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.Int64("task_id", id))
			return nil, false, nil
		}
		log.Error("failed to retrieve task",
			slog.Int64("task_id", id),
			slog.Bool("for_update", lock),
			slog.String("error", err.Error()))
		return nil, false, store.NewStoreError("task", "find_by_id", "failed to get task", MapError(err))
	}

	return task, true, nil
}

// FindPage implements store.TaskStore.FindPage
func (s *PostgresTaskStore) FindPage(ctx context.Context, q store.TaskQuery) ([]*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if q.Page < 0 || q.Size <= 0 {
		return nil, fmt.Errorf("%w: invalid page %d or size %d", store.ErrInvalidEntity, q.Page, q.Size)
	}

	sortField := q.Sort.Field
	if sortField == "" {
		sortField = store.TaskSortByID
	}
	column, ok := taskSortColumns[sortField]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported sort field %q", store.ErrInvalidEntity, sortField)
	}
	direction := q.Sort.Direction
	if direction == "" {
		direction = store.SortAscending
	}

	// An offset past math.MaxInt cannot match any row.
	if q.Page > math.MaxInt/q.Size {
		log.Debug("page offset out of range",
			slog.Int("page", q.Page),
			slog.Int("size", q.Size))
		return []*domain.Task{}, nil
	}

	builder := s.builder.
		Select(taskColumns...).
		From(tasksTable)
	if q.Status != nil {
		builder = builder.Where(squirrel.Eq{"status": string(*q.Status)})
	}
	if q.Priority != nil {
		builder = builder.Where(squirrel.Eq{"priority": string(*q.Priority)})
	}

	builder = builder.OrderBy(column + " " + string(direction))
	if column != "id" {
		builder = builder.OrderBy("id ASC")
	}
	builder = builder.
		Limit(uint64(q.Size)).
		Offset(uint64(q.Page) * uint64(q.Size))

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("failed to build task page query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks",
			slog.Int("page", q.Page),
			slog.Int("size", q.Size),
			slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "find_page", "failed to query tasks", MapError(err))
	}
	defer func() {
		if closeErr := rows.Close(); closeErr != nil {
			log.Warn("failed to close task rows", slog.String("error", closeErr.Error()))
		}
	}()

	tasks := make([]*domain.Task, 0, q.Size)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, store.NewStoreError("task", "find_page", "failed to scan task row", err)
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		log.Error("error iterating task rows", slog.String("error", err.Error()))
		return nil, store.NewStoreError("task", "find_page", "error iterating task rows", MapError(err))
	}

	log.Debug("retrieved task page",
		slog.Int("page", q.Page),
		slog.Int("size", q.Size),
		slog.Int("count", len(tasks)))
	return tasks, nil
}

// Save implements store.TaskStore.Save
// The domain invariants are checked before touching the database.
func (s *PostgresTaskStore) Save(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during save",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return err
	}

	// Postgres keeps microseconds; truncating here keeps the returned values
	// identical to what a later read will produce.
	now := s.now().UTC().Truncate(time.Microsecond)

	if task.IsNew() {
		return s.insert(ctx, log, task, now)
	}
	return s.update(ctx, log, task, now)
}

func (s *PostgresTaskStore) insert(ctx context.Context, log *slog.Logger, task *domain.Task, now time.Time) error {
	query, args, err := s.builder.
		Insert(tasksTable).
		Columns("title", "description", "status", "priority", "created_at", "updated_at").
		Values(task.Title, task.Description, string(task.Status), string(task.Priority), now, now).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task insert: %w", err)
	}

	var createdAt, updatedAt time.Time
	var id int64
	if err := s.db.QueryRowContext(ctx, query, args...).Scan(&id, &createdAt, &updatedAt); err != nil {
		log.Error("failed to create task",
			slog.String("title", task.Title),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "insert", "failed to create task", MapError(err))
	}

	task.ID = id
	task.CreatedAt = createdAt.UTC()
	task.UpdatedAt = updatedAt.UTC()

	log.Info("task created",
		slog.Int64("task_id", task.ID),
		slog.String("status", string(task.Status)),
		slog.String("priority", string(task.Priority)))
	return nil
}

func (s *PostgresTaskStore) update(ctx context.Context, log *slog.Logger, task *domain.Task, now time.Time) error {
	// updated_at never moves backwards, even if the clock does.
	updatedAt := now
	if updatedAt.Before(task.UpdatedAt) {
		updatedAt = task.UpdatedAt
	}

	query, args, err := s.builder.
		Update(tasksTable).
		Set("title", task.Title).
		Set("description", task.Description).
		Set("status", string(task.Status)).
		Set("priority", string(task.Priority)).
		Set("updated_at", updatedAt).
		Where(squirrel.Eq{"id": task.ID}).
		Suffix("RETURNING created_at, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task update: %w", err)
	}

	var createdAt, storedUpdatedAt time.Time
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&createdAt, &storedUpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found for update", slog.Int64("task_id", task.ID))
			return store.ErrTaskNotFound
		}
		log.Error("failed to update task",
			slog.Int64("task_id", task.ID),
			slog.String("error", err.Error()))
		return store.NewStoreError("task", "update", "failed to update task", MapError(err))
	}

	task.CreatedAt = createdAt.UTC()
	task.UpdatedAt = storedUpdatedAt.UTC()

	log.Info("task updated",
		slog.Int64("task_id", task.ID),
		slog.String("status", string(task.Status)),
		slog.String("priority", string(task.Priority)))
	return nil
}

// Delete implements store.TaskStore.Delete
func (s *PostgresTaskStore) Delete(ctx context.Context, id int64) (bool, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query, args, err := s.builder.
		Delete(tasksTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build task delete: %w", err)
	}

	result, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to delete task",
			slog.Int64("task_id", id),
			slog.String("error", err.Error()))
		return false, store.NewStoreError("task", "delete", "failed to delete task", MapError(err))
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, store.NewStoreError("task", "delete", "failed to get rows affected", err)
	}

	if rowsAffected == 0 {
		log.Debug("no task deleted", slog.Int64("task_id", id))
		return false, nil
	}

	log.Info("task deleted", slog.Int64("task_id", id))
	return true, nil
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (*domain.Task, error) {
	var task domain.Task
	var status, priority string

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()
	return &task, nil
}
