package service

import (
	"github.com/phrazzld/task-tracker-api/internal/domain"
)

// ToEntity builds an unsaved task from a creation request.
// ID and timestamps are left for the store to assign.
func ToEntity(req CreateTaskRequest) *domain.Task {
	status := req.Status
	if status == "" {
		status = domain.DefaultTaskStatus
	}
	priority := req.Priority
	if priority == "" {
		priority = domain.DefaultTaskPriority
	}

	return &domain.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Priority:    priority,
	}
}

// ToResponse converts a task to its client-facing view.
func ToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      task.Status,
		Priority:    task.Priority,
		CreatedAt:   Timestamp(task.CreatedAt),
		UpdatedAt:   Timestamp(task.UpdatedAt),
	}
}

// ToResponses converts a slice of tasks, never returning nil.
func ToResponses(tasks []*domain.Task) []TaskResponse {
	responses := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		responses = append(responses, ToResponse(task))
	}
	return responses
}

// ApplyPartialUpdate overwrites the fields present in req.
// ID and timestamps are never touched.
func ApplyPartialUpdate(req UpdateTaskRequest, task *domain.Task) {
	if req.Title != nil {
		task.Title = *req.Title
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.Status != nil {
		task.Status = *req.Status
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
}
