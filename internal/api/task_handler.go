package api

import (
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/phrazzld/task-tracker-api/internal/api/shared"
	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/platform/logger"
	"github.com/phrazzld/task-tracker-api/internal/service"
)

// DefaultPageSize is used when the size query parameter is absent.
const DefaultPageSize = 10

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService     service.TaskService
	logger          *slog.Logger
	defaultPageSize int
}

// NewTaskHandler creates a new TaskHandler.
// A non-positive defaultPageSize falls back to DefaultPageSize.
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger, defaultPageSize int) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	if defaultPageSize <= 0 {
		defaultPageSize = DefaultPageSize
	}

	return &TaskHandler{
		taskService:     taskService,
		logger:          logger.With(slog.String("component", "task_handler")),
		defaultPageSize: defaultPageSize,
	}
}

// Routes mounts the task endpoints on r. The caller chooses the prefix.
func (h *TaskHandler) Routes(r chi.Router) {
	r.Post("/", h.CreateTask)
	r.Get("/", h.ListTasks)
	r.Get("/{id}", h.GetTask)
	r.Patch("/{id}", h.PatchTask)
	r.Delete("/{id}", h.DeleteTask)
}

// CreateTask handles POST /api/tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	requestID := shared.GetRequestID(r.Context())

	var req service.CreateTaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, err := h.taskService.CreateTask(r.Context(), req)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusCreated, requestID, "Task created successfully", task)
}

// ListTasks handles GET /api/tasks requests.
// Query parameters: page (default 0), size, sort ("field[,direction]"), status, priority.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	requestID := shared.GetRequestID(r.Context())
	query := r.URL.Query()

	page, err := intQueryParam(query.Get("page"), "page", 0)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	size, err := intQueryParam(query.Get("size"), "size", h.defaultPageSize)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	tasks, err := h.taskService.ListTasks(r.Context(), service.ListTasksParams{
		Page:     page,
		Size:     size,
		Sort:     query.Get("sort"),
		Status:   query.Get("status"),
		Priority: query.Get("priority"),
	})
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, requestID, "Tasks retrieved successfully", tasks)
}

// GetTask handles GET /api/tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	requestID := shared.GetRequestID(r.Context())

	id, err := taskIDParam(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, ok, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if !ok {
		HandleAPIError(w, r, domain.NewNotFoundError("Task not found with id: %d", id))
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, requestID, "Task retrieved successfully", task)
}

// PatchTask handles PATCH /api/tasks/{id} requests
func (h *TaskHandler) PatchTask(w http.ResponseWriter, r *http.Request) {
	requestID := shared.GetRequestID(r.Context())

	id, err := taskIDParam(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	var req service.UpdateTaskRequest
	if err := shared.DecodeJSON(w, r, &req); err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		HandleAPIError(w, r, err)
		return
	}

	task, ok, err := h.taskService.PatchTask(r.Context(), id, req)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if !ok {
		HandleAPIError(w, r, domain.NewNotFoundError("Task not found for update with id: %d", id))
		return
	}

	shared.RespondWithSuccess(w, r, http.StatusOK, requestID, "Task updated successfully", task)
}

// DeleteTask handles DELETE /api/tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	requestID := shared.GetRequestID(r.Context())
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	id, err := taskIDParam(r)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}

	deleted, err := h.taskService.DeleteTask(r.Context(), id)
	if err != nil {
		HandleAPIError(w, r, err)
		return
	}
	if !deleted {
		HandleAPIError(w, r, domain.NewNotFoundError("Task not found with id: %d", id))
		return
	}

	log.Debug("task removed", slog.Int64("task_id", id))
	shared.RespondWithSuccess(w, r, http.StatusOK, requestID, "Task deleted successfully", nil)
}

// taskIDParam parses the {id} path parameter.
func taskIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, domain.NewValidationError("", "Invalid task id: "+raw, domain.ErrInvalidID)
	}
	return id, nil
}

// intQueryParam parses an optional integer query parameter.
func intQueryParam(raw, name string, fallback int) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.NewValidationError("", "Invalid "+name+": "+raw, nil)
	}
	return value, nil
}
