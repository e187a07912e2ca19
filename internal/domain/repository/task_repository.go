package repository

import (
	"context"
	"errors"

	"taskboard/internal/domain/entity"

	"github.com/google/uuid"
)

// ErrTaskNotFound is returned when a task does not exist or does not belong
// to the requesting user. The two cases are indistinguishable on purpose.
var ErrTaskNotFound = errors.New("task not found")

// TaskFilter narrows a task listing. Nil fields mean "no constraint".
type TaskFilter struct {
	Done *bool
}

// TaskRepository defines per-user task persistence. Every method takes the
// owning user's id and filters by it in the underlying query; cross-user
// access is impossible at this layer, not merely forbidden above it.
type TaskRepository interface {
	// Create persists a new task for the given user.
	Create(ctx context.Context, task *entity.Task) error

	// FindByID retrieves a single task owned by userID.
	FindByID(ctx context.Context, userID, taskID uuid.UUID) (*entity.Task, error)

	// List returns one page of the user's tasks, newest first, plus the
	// total count matching the filter.
	List(ctx context.Context, userID uuid.UUID, filter TaskFilter, page, perPage int) (*entity.TaskPage, error)

	// Update modifies an existing task owned by userID.
	Update(ctx context.Context, task *entity.Task) error

	// Delete removes a single task owned by userID.
	Delete(ctx context.Context, userID, taskID uuid.UUID) error

	// DeleteByIDs bulk-deletes the user's tasks by id. Ids belonging to
	// other users are silently skipped; returns the number deleted.
	DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error)

	// SetDoneByIDs bulk-updates the done flag on the user's tasks by id;
	// returns the number updated.
	SetDoneByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, done bool) (int64, error)
}
