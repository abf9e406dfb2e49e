package domain

import (
	"strings"
	"time"
	"unicode/utf8"
)

// MaxTaskDescriptionLength is the maximum number of characters in a task description.
const MaxTaskDescriptionLength = 500

// TaskStatus represents the progress state of a task.
type TaskStatus string

// Possible task status values
const (
	TaskStatusNew        TaskStatus = "NEW"
	TaskStatusInProgress TaskStatus = "IN_PROGRESS"
	TaskStatusDone       TaskStatus = "DONE"
)

// DefaultTaskStatus is assigned to new tasks that do not specify a status.
const DefaultTaskStatus = TaskStatusNew

// TaskPriority represents how urgent a task is.
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow    TaskPriority = "LOW"
	TaskPriorityMedium TaskPriority = "MEDIUM"
	TaskPriorityHigh   TaskPriority = "HIGH"
)

// DefaultTaskPriority is assigned to new tasks that do not specify a priority.
const DefaultTaskPriority = TaskPriorityMedium

// ParseTaskStatus parses s case-insensitively against the known statuses.
// Surrounding whitespace is ignored. ok is false for unknown values.
func ParseTaskStatus(s string) (TaskStatus, bool) {
	candidate := TaskStatus(strings.ToUpper(strings.TrimSpace(s)))
	if !candidate.IsValid() {
		return "", false
	}
	return candidate, true
}

// ParseTaskPriority parses s case-insensitively against the known priorities.
// Surrounding whitespace is ignored. ok is false for unknown values.
func ParseTaskPriority(s string) (TaskPriority, bool) {
	candidate := TaskPriority(strings.ToUpper(strings.TrimSpace(s)))
	if !candidate.IsValid() {
		return "", false
	}
	return candidate, true
}

// IsValid reports whether s is one of the known statuses.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusNew, TaskStatusInProgress, TaskStatusDone:
		return true
	default:
		return false
	}
}

// IsValid reports whether p is one of the known priorities.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh:
		return true
	default:
		return false
	}
}

// UnmarshalText implements encoding.TextUnmarshaler so JSON bodies are
// checked against the closed set while decoding.
func (s *TaskStatus) UnmarshalText(text []byte) error {
	parsed, ok := ParseTaskStatus(string(text))
	if !ok {
		return NewValidationError("status", "Invalid status: "+string(text), ErrInvalidTaskStatus)
	}
	*s = parsed
	return nil
}

// UnmarshalText implements encoding.TextUnmarshaler so JSON bodies are
// checked against the closed set while decoding.
func (p *TaskPriority) UnmarshalText(text []byte) error {
	parsed, ok := ParseTaskPriority(string(text))
	if !ok {
		return NewValidationError("priority", "Invalid priority: "+string(text), ErrInvalidTaskPriority)
	}
	*p = parsed
	return nil
}

// Task is a unit of work tracked by the service.
// ID is zero until the task has been persisted for the first time.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      TaskStatus
	Priority    TaskPriority
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsNew reports whether the task has never been persisted.
func (t *Task) IsNew() bool {
	return t.ID == 0
}

// Validate checks the task invariants that must hold before persistence.
// Returns a *ValidationError for the first violated constraint.
func (t *Task) Validate() error {
	if strings.TrimSpace(t.Title) == "" {
		return NewValidationError("title", "Title cannot be empty", nil)
	}

	if utf8.RuneCountInString(t.Description) > MaxTaskDescriptionLength {
		return NewValidationError("description", "Description cannot exceed 500 characters", nil)
	}

	if !t.Status.IsValid() {
		return NewValidationError("status", "Invalid status: "+string(t.Status), ErrInvalidTaskStatus)
	}

	if !t.Priority.IsValid() {
		return NewValidationError("priority", "Invalid priority: "+string(t.Priority), ErrInvalidTaskPriority)
	}

	if !t.CreatedAt.IsZero() && t.UpdatedAt.Before(t.CreatedAt) {
		return NewValidationError("updatedAt", "must not be before createdAt", nil)
	}

	return nil
}
