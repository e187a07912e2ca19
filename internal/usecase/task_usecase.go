package usecase

import (
	"context"
	"time"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
)

// --- Input DTOs ---

// CreateTaskInput defines the data required to create a task.
type CreateTaskInput struct {
	Title       string
	Description string
	DueAt       *time.Time
}

// UpdateTaskInput carries a partial task update. Nil fields are left
// unchanged; RemoveDueAt clears the due date explicitly, since a nil DueAt
// alone cannot distinguish "unset it" from "not provided".
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Done        *bool
	DueAt       *time.Time
	RemoveDueAt bool
}

// ListTasksInput narrows and pages a task listing. Zero page and perPage
// fall back to configured defaults; perPage is clamped to the configured
// maximum.
type ListTasksInput struct {
	Done    *bool
	Page    int
	PerPage int
}

// TaskUsecase defines the interface for task-related business operations.
// Every operation is scoped to the authenticated user's id.
type TaskUsecase interface {
	CreateTask(ctx context.Context, userID uuid.UUID, input CreateTaskInput) (*entity.Task, error)
	GetTask(ctx context.Context, userID, taskID uuid.UUID) (*entity.Task, error)
	ListTasks(ctx context.Context, userID uuid.UUID, input ListTasksInput) (*entity.TaskPage, error)
	UpdateTask(ctx context.Context, userID, taskID uuid.UUID, input UpdateTaskInput) (*entity.Task, error)
	DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error

	// BulkDeleteTasks deletes the given task ids that belong to the user and
	// reports how many actually went away.
	BulkDeleteTasks(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)

	// BulkSetDone flips the done flag on the given task ids that belong to
	// the user and reports how many were touched.
	BulkSetDone(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, done bool) (int64, error)
}
