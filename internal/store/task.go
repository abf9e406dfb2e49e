package store

import (
	"context"
	"database/sql"
	"strings"

	"github.com/phrazzld/task-tracker-api/internal/domain"
)

// SortDirection is the ordering applied to a sort field.
type SortDirection string

// Supported sort directions
const (
	SortAscending  SortDirection = "ASC"
	SortDescending SortDirection = "DESC"
)

// ParseSortDirection parses "asc"/"desc" case-insensitively.
func ParseSortDirection(s string) (SortDirection, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "ASC":
		return SortAscending, true
	case "DESC":
		return SortDescending, true
	default:
		return "", false
	}
}

// TaskSortField names a sortable task attribute.
type TaskSortField string

// Sortable task fields
const (
	TaskSortByID          TaskSortField = "id"
	TaskSortByTitle       TaskSortField = "title"
	TaskSortByDescription TaskSortField = "description"
	TaskSortByStatus      TaskSortField = "status"
	TaskSortByPriority    TaskSortField = "priority"
	TaskSortByCreatedAt   TaskSortField = "createdAt"
	TaskSortByUpdatedAt   TaskSortField = "updatedAt"
)

var taskSortFieldAliases = map[string]TaskSortField{
	"id":          TaskSortByID,
	"title":       TaskSortByTitle,
	"description": TaskSortByDescription,
	"status":      TaskSortByStatus,
	"priority":    TaskSortByPriority,
	"createdat":   TaskSortByCreatedAt,
	"created_at":  TaskSortByCreatedAt,
	"updatedat":   TaskSortByUpdatedAt,
	"updated_at":  TaskSortByUpdatedAt,
}

// ParseTaskSortField resolves a field name (JSON or snake_case, any case).
func ParseTaskSortField(s string) (TaskSortField, bool) {
	field, ok := taskSortFieldAliases[strings.ToLower(strings.TrimSpace(s))]
	return field, ok
}

// TaskSort orders a page of tasks.
type TaskSort struct {
	Field     TaskSortField
	Direction SortDirection
}

// DefaultTaskSort orders by id ascending.
var DefaultTaskSort = TaskSort{Field: TaskSortByID, Direction: SortAscending}

// TaskQuery selects one page of tasks.
// Page is zero-indexed. A nil Status or Priority means the filter is not applied;
// when both are set a task must match both.
type TaskQuery struct {
	Page     int
	Size     int
	Sort     TaskSort
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority
}

// TaskStore defines the interface for task data persistence.
// Version: 1.0
type TaskStore interface {
	// FindByID retrieves a task by its ID.
	// A missing task is reported with ok=false and a nil error.
	FindByID(ctx context.Context, id int64) (task *domain.Task, ok bool, err error)

	// FindByIDForUpdate behaves like FindByID but locks the row until the
	// surrounding transaction ends. It must be called on a store bound to a
	// transaction via WithTxTaskStore.
	FindByIDForUpdate(ctx context.Context, id int64) (task *domain.Task, ok bool, err error)

	// FindPage returns one page of tasks matching the query filters.
	// Ties in the sort field are broken by id ascending.
	// A page past the end of the result set yields an empty slice.
	FindPage(ctx context.Context, query TaskQuery) ([]*domain.Task, error)

	// Save inserts the task when its ID is zero and updates it otherwise.
	// UpdatedAt is stamped on every call and CreatedAt on insert only; the
	// server-assigned values are written back into task.
	// Returns ErrTaskNotFound when updating a task that no longer exists.
	// Returns validation errors if the task data is invalid.
	Save(ctx context.Context, task *domain.Task) error

	// Delete removes a task by ID and reports whether a row was removed.
	// Deleting a missing task is not an error.
	Delete(ctx context.Context, id int64) (bool, error)

	// WithTxTaskStore returns a new TaskStore instance that uses the provided transaction.
	//
	// Example usage:
	//   err := store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
	//       txTaskStore := taskStore.WithTxTaskStore(tx)
	//       return txTaskStore.Save(ctx, task)
	//   })
	WithTxTaskStore(tx *sql.Tx) TaskStore
}
