package impl

import (
	"context"
	"log/slog"

	"taskboard/config"
	deliverycontext "taskboard/internal/delivery/context"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/fx"
)

// taskService implements the TaskUsecase interface.
type taskService struct {
	fx.In

	txManager repository.TransactionManager
	cfg       *config.TasksConfig
	logger    *slog.Logger
}

// NewTaskService is the constructor for taskService.
func NewTaskService(
	txManager repository.TransactionManager,
	cfg *config.TasksConfig,
	logger *slog.Logger,
) usecase.TaskUsecase {
	return &taskService{
		txManager: txManager,
		cfg:       cfg,
		logger:    logger,
	}
}

// log returns a request-scoped logger if available, otherwise falls back to the service's logger.
func (srv *taskService) log(ctx context.Context) *slog.Logger {
	return deliverycontext.GetLoggerOrDefault(ctx, srv.logger)
}

// CreateTask persists a new task owned by the authenticated user.
func (srv *taskService) CreateTask(ctx context.Context, userID uuid.UUID, input usecase.CreateTaskInput) (*entity.Task, error) {
	task := &entity.Task{
		UserID:      userID,
		Title:       input.Title,
		Description: input.Description,
		DueAt:       input.DueAt,
	}

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		return repoFactory.TaskRepo().Create(ctx, task)
	})
	if err != nil {
		srv.log(ctx).Error("Failed to create task", slog.Any("error", err), slog.Any("user_id", userID))

		return nil, err
	}

	srv.log(ctx).Debug("Task created", slog.Any("task_id", task.ID), slog.Any("user_id", userID))

	return task, nil
}

// GetTask retrieves one of the user's tasks.
func (srv *taskService) GetTask(ctx context.Context, userID, taskID uuid.UUID) (*entity.Task, error) {
	var task *entity.Task

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		found, err := repoFactory.TaskRepo().FindByID(ctx, userID, taskID)
		if err != nil {
			if errors.Is(err, repository.ErrTaskNotFound) {
				return domainerrors.ErrTaskNotFound.WrapMessage("task lookup failed")
			}

			return errors.WithStack(err)
		}
		task = found

		return nil
	})
	if err != nil {
		return nil, err
	}

	return task, nil
}

// ListTasks returns one page of the user's tasks. Out-of-range paging knobs
// are clamped rather than rejected.
func (srv *taskService) ListTasks(ctx context.Context, userID uuid.UUID, input usecase.ListTasksInput) (*entity.TaskPage, error) {
	page := input.Page
	if page < 1 {
		page = 1
	}

	perPage := input.PerPage
	if perPage < 1 {
		perPage = srv.cfg.DefaultPerPage
	}
	if perPage > srv.cfg.MaxPerPage {
		perPage = srv.cfg.MaxPerPage
	}

	var result *entity.TaskPage

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		tasksPage, err := repoFactory.TaskRepo().List(ctx, userID, repository.TaskFilter{Done: input.Done}, page, perPage)
		if err != nil {
			return errors.WithStack(err)
		}
		result = tasksPage

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to list tasks", slog.Any("error", err), slog.Any("user_id", userID))

		return nil, err
	}

	return result, nil
}

// UpdateTask applies a partial update to one of the user's tasks and returns
// the updated record.
func (srv *taskService) UpdateTask(ctx context.Context, userID, taskID uuid.UUID, input usecase.UpdateTaskInput) (*entity.Task, error) {
	var updated *entity.Task

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		taskRepo := repoFactory.TaskRepo()

		task, err := taskRepo.FindByID(ctx, userID, taskID)
		if err != nil {
			if errors.Is(err, repository.ErrTaskNotFound) {
				return domainerrors.ErrTaskNotFound.WrapMessage("task update failed")
			}

			return errors.WithStack(err)
		}

		if input.Title != nil {
			task.Title = *input.Title
		}
		if input.Description != nil {
			task.Description = *input.Description
		}
		if input.Done != nil {
			task.Done = *input.Done
		}
		if input.RemoveDueAt {
			task.DueAt = nil
		} else if input.DueAt != nil {
			task.DueAt = input.DueAt
		}

		if err := taskRepo.Update(ctx, task); err != nil {
			if errors.Is(err, repository.ErrTaskNotFound) {
				return domainerrors.ErrTaskNotFound.WrapMessage("task update failed")
			}

			return errors.WithStack(err)
		}
		updated = task

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to update task", slog.Any("error", err), slog.Any("task_id", taskID))

		return nil, err
	}

	return updated, nil
}

// DeleteTask removes one of the user's tasks.
func (srv *taskService) DeleteTask(ctx context.Context, userID, taskID uuid.UUID) error {
	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		if err := repoFactory.TaskRepo().Delete(ctx, userID, taskID); err != nil {
			if errors.Is(err, repository.ErrTaskNotFound) {
				return domainerrors.ErrTaskNotFound.WrapMessage("task deletion failed")
			}

			return errors.WithStack(err)
		}

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to delete task", slog.Any("error", err), slog.Any("task_id", taskID))

		return err
	}

	return nil
}

// BulkDeleteTasks removes a batch of the user's tasks. Ids that do not exist
// or belong to someone else are counted out, not errored on.
func (srv *taskService) BulkDeleteTasks(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	var deleted int64

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		n, err := repoFactory.TaskRepo().DeleteByIDs(ctx, userID, ids)
		if err != nil {
			return errors.WithStack(err)
		}
		deleted = n

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to bulk delete tasks", slog.Any("error", err), slog.Any("user_id", userID))

		return 0, err
	}

	srv.log(ctx).Debug("Tasks bulk deleted", slog.Int64("count", deleted), slog.Any("user_id", userID))

	return deleted, nil
}

// BulkSetDone flips the done flag on a batch of the user's tasks.
func (srv *taskService) BulkSetDone(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, done bool) (int64, error) {
	var updated int64

	err := srv.txManager.Execute(ctx, func(repoFactory repository.RepositoryFactory) error {
		n, err := repoFactory.TaskRepo().SetDoneByIDs(ctx, userID, ids, done)
		if err != nil {
			return errors.WithStack(err)
		}
		updated = n

		return nil
	})
	if err != nil {
		srv.log(ctx).Error("Failed to bulk update tasks", slog.Any("error", err), slog.Any("user_id", userID))

		return 0, err
	}

	srv.log(ctx).Debug("Tasks bulk updated", slog.Int64("count", updated), slog.Bool("done", done), slog.Any("user_id", userID))

	return updated, nil
}
