package service

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/phrazzld/task-tracker-api/internal/domain"
)

// TimestampLayout is the wire format of task timestamps: UTC, second precision, no offset.
const TimestampLayout = "2006-01-02 15:04:05"

// CreateTaskRequest is the body of a task creation request.
// Status and Priority are parsed against their closed sets while decoding;
// when absent they are left empty and defaulted by ToEntity.
type CreateTaskRequest struct {
	Title       string              `json:"title"       validate:"required,notblank"`
	Description string              `json:"description" validate:"max=500"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
}

// UpdateTaskRequest is the body of a partial update. A nil field is left untouched.
type UpdateTaskRequest struct {
	Title       *string              `json:"title"       validate:"omitempty,notblank"`
	Description *string              `json:"description" validate:"omitempty,max=500"`
	Status      *domain.TaskStatus   `json:"status"`
	Priority    *domain.TaskPriority `json:"priority"`
}

// TaskResponse is the client-facing view of a task.
type TaskResponse struct {
	ID          int64               `json:"id"`
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      domain.TaskStatus   `json:"status"`
	Priority    domain.TaskPriority `json:"priority"`
	CreatedAt   Timestamp           `json:"createdAt"`
	UpdatedAt   Timestamp           `json:"updatedAt"`
}

// Timestamp renders a time in TimestampLayout.
type Timestamp time.Time

// Time returns the underlying time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}

// MarshalJSON implements json.Marshaler.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Time(t).UTC().Format(TimestampLayout))
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	parsed, err := time.ParseInLocation(TimestampLayout, s, time.UTC)
	if err != nil {
		return fmt.Errorf("invalid timestamp %q: %w", s, err)
	}
	*t = Timestamp(parsed)
	return nil
}

// ListTasksParams carries the raw list query parameters.
// Sort has the form "field[,direction]"; Status and Priority are optional
// filters matched case-insensitively. Empty strings mean "not supplied".
type ListTasksParams struct {
	Page     int
	Size     int
	Sort     string
	Status   string
	Priority string
}
