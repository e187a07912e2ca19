package postgres

import (
	"context"

	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/domain/repository"
	"taskboard/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// taskRepository implements the domain.TaskRepository interface using GORM.
// Every query is scoped by the owning user's id; a task belonging to someone
// else behaves exactly like a task that does not exist.
type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository is the constructor for taskRepository.
func NewTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

// Create persists a new task for the given user.
func (repo *taskRepository) Create(ctx context.Context, task *entity.Task) error {
	taskM := fromTaskDomain(task)

	if err := repo.db.WithContext(ctx).Create(taskM).Error; err != nil {
		if isForeignKeyConstraintViolation(err) {
			return domainerrors.ErrUserNotFound.WrapMessage("invalid user reference")
		}
		if isNotNullConstraintViolation(err) {
			return domainerrors.ErrValidationFailed.WrapMessage("missing required task information")
		}

		return domainerrors.NewDatabaseExecuteError(err, "failed to create task")
	}

	task.ID = taskM.ID
	task.CreatedAt = taskM.CreatedAt
	task.UpdatedAt = taskM.UpdatedAt

	return nil
}

// FindByID retrieves a single task owned by userID.
func (repo *taskRepository) FindByID(ctx context.Context, userID, taskID uuid.UUID) (*entity.Task, error) {
	var taskM model.TaskModel
	if err := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		First(&taskM).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, repository.ErrTaskNotFound
		}

		return nil, errors.Wrap(err, "failed to find task by id")
	}

	return toTaskDomain(&taskM), nil
}

// List returns one page of the user's tasks, newest first, plus the total
// count matching the filter.
func (repo *taskRepository) List(ctx context.Context, userID uuid.UUID, filter repository.TaskFilter, page, perPage int) (*entity.TaskPage, error) {
	query := repo.db.WithContext(ctx).
		Model(&model.TaskModel{}).
		Where("user_id = ?", userID)
	if filter.Done != nil {
		query = query.Where("done = ?", *filter.Done)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, errors.Wrap(err, "failed to count tasks")
	}

	var taskModels []*model.TaskModel
	if err := query.
		Order("created_at DESC").
		Offset((page - 1) * perPage).
		Limit(perPage).
		Find(&taskModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to list tasks")
	}

	tasks := make([]*entity.Task, 0, len(taskModels))
	for _, taskM := range taskModels {
		tasks = append(tasks, toTaskDomain(taskM))
	}

	return &entity.TaskPage{
		Tasks:   tasks,
		Total:   total,
		Page:    page,
		PerPage: perPage,
	}, nil
}

// Update modifies an existing task owned by userID.
func (repo *taskRepository) Update(ctx context.Context, task *entity.Task) error {
	result := repo.db.WithContext(ctx).
		Model(&model.TaskModel{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"done":        task.Done,
			"due_at":      task.DueAt,
		})
	if result.Error != nil {
		return domainerrors.NewDatabaseExecuteError(result.Error, "failed to update task")
	}

	if result.RowsAffected == 0 {
		return repository.ErrTaskNotFound
	}

	return nil
}

// Delete removes a single task owned by userID.
func (repo *taskRepository) Delete(ctx context.Context, userID, taskID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", taskID, userID).
		Delete(&model.TaskModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete task")
	}

	if result.RowsAffected == 0 {
		return repository.ErrTaskNotFound
	}

	return nil
}

// DeleteByIDs bulk-deletes the user's tasks by id. Ids owned by other users
// simply match no rows.
func (repo *taskRepository) DeleteByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := repo.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Delete(&model.TaskModel{})
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to bulk delete tasks")
	}

	return result.RowsAffected, nil
}

// SetDoneByIDs bulk-updates the done flag on the user's tasks by id.
func (repo *taskRepository) SetDoneByIDs(ctx context.Context, userID uuid.UUID, ids []uuid.UUID, done bool) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}

	result := repo.db.WithContext(ctx).
		Model(&model.TaskModel{}).
		Where("user_id = ? AND id IN ?", userID, ids).
		Update("done", done)
	if result.Error != nil {
		return 0, errors.Wrap(result.Error, "failed to bulk update tasks")
	}

	return result.RowsAffected, nil
}

// toTaskDomain maps a persistence model to a domain entity.
func toTaskDomain(data *model.TaskModel) *entity.Task {
	return &entity.Task{
		ID:          data.ID,
		UserID:      data.UserID,
		Title:       data.Title,
		Description: data.Description,
		Done:        data.Done,
		DueAt:       data.DueAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}

// fromTaskDomain maps a domain entity to a persistence model.
func fromTaskDomain(data *entity.Task) *model.TaskModel {
	return &model.TaskModel{
		ID:          data.ID,
		UserID:      data.UserID,
		Title:       data.Title,
		Description: data.Description,
		Done:        data.Done,
		DueAt:       data.DueAt,
		CreatedAt:   data.CreatedAt,
		UpdatedAt:   data.UpdatedAt,
	}
}
