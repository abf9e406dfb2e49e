package service

import (
	"context"
	"database/sql"

	"github.com/phrazzld/task-tracker-api/internal/domain"
	"github.com/phrazzld/task-tracker-api/internal/store"
)

// NewTaskRepositoryAdapter creates a new adapter that allows a store.TaskStore
// to be used where a TaskRepository is expected.
func NewTaskRepositoryAdapter(taskStore store.TaskStore, db *sql.DB) TaskRepository {
	return &taskRepositoryAdapter{
		taskStore: taskStore,
		db:        db,
	}
}

// taskRepositoryAdapter adapts a store.TaskStore to the TaskRepository interface
type taskRepositoryAdapter struct {
	taskStore store.TaskStore
	db        *sql.DB
}

// FindByID implements TaskRepository.FindByID
func (a *taskRepositoryAdapter) FindByID(ctx context.Context, id int64) (*domain.Task, bool, error) {
	return a.taskStore.FindByID(ctx, id)
}

// FindByIDForUpdate implements TaskRepository.FindByIDForUpdate
func (a *taskRepositoryAdapter) FindByIDForUpdate(ctx context.Context, id int64) (*domain.Task, bool, error) {
	return a.taskStore.FindByIDForUpdate(ctx, id)
}

// FindPage implements TaskRepository.FindPage
func (a *taskRepositoryAdapter) FindPage(ctx context.Context, query store.TaskQuery) ([]*domain.Task, error) {
	return a.taskStore.FindPage(ctx, query)
}

// Save implements TaskRepository.Save
func (a *taskRepositoryAdapter) Save(ctx context.Context, task *domain.Task) error {
	return a.taskStore.Save(ctx, task)
}

// Delete implements TaskRepository.Delete
func (a *taskRepositoryAdapter) Delete(ctx context.Context, id int64) (bool, error) {
	return a.taskStore.Delete(ctx, id)
}

// WithTx implements TaskRepository.WithTx
func (a *taskRepositoryAdapter) WithTx(tx *sql.Tx) TaskRepository {
	return &taskRepositoryAdapter{
		taskStore: a.taskStore.WithTxTaskStore(tx),
		db:        a.db,
	}
}

// DB implements TaskRepository.DB
func (a *taskRepositoryAdapter) DB() *sql.DB {
	return a.db
}
