package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"taskboard/internal/delivery/http/middleware"
	"taskboard/internal/delivery/http/response"
	"taskboard/internal/domain/entity"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
)

// TaskHandler holds dependencies for task-related handlers.
type TaskHandler struct {
	tasks  usecase.TaskUsecase
	logger *slog.Logger
}

// NewTaskHandler is the constructor for TaskHandler, injected by Fx.
func NewTaskHandler(tasks usecase.TaskUsecase, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: tasks, logger: logger}
}

type createTaskRequest struct {
	Title       string     `json:"title" validate:"required,min=1,max=255"`
	Description string     `json:"description" validate:"max=4000"`
	DueAt       *time.Time `json:"dueAt"`
}

type updateTaskRequest struct {
	Title       *string    `json:"title" validate:"omitempty,min=1,max=255"`
	Description *string    `json:"description" validate:"omitempty,max=4000"`
	Done        *bool      `json:"done"`
	DueAt       *time.Time `json:"dueAt"`
	RemoveDueAt bool       `json:"removeDueAt"`
}

type bulkIDsRequest struct {
	IDs []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
}

type bulkStatusRequest struct {
	IDs  []uuid.UUID `json:"ids" validate:"required,min=1,max=100"`
	Done bool        `json:"done"`
}

type taskView struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Done        bool       `json:"done"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toTaskView(task *entity.Task) taskView {
	return taskView{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Done:        task.Done,
		DueAt:       task.DueAt,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

type taskPageView struct {
	Tasks   []taskView `json:"tasks"`
	Total   int64      `json:"total"`
	Page    int        `json:"page"`
	PerPage int        `json:"perPage"`
}

// identityOrReject pulls the authenticated user out of the context. The
// routes are behind RequireAuth, so a miss here is a wiring bug, but it
// still answers 401 rather than panicking.
func identityOrReject(c echo.Context) (uuid.UUID, error) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		return uuid.Nil, domainerrors.ErrUnauthorized
	}

	return identity.UserID, nil
}

func taskIDParam(c echo.Context) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return uuid.Nil, domainerrors.ErrValidationFailed.WrapMessage("invalid task id")
	}

	return id, nil
}

// Create handles POST /v1/tasks.
func (h *TaskHandler) Create(c echo.Context) error {
	userID, err := identityOrReject(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid task input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.tasks.CreateTask(c.Request().Context(), userID, usecase.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusCreated, toTaskView(task), "Task created")
}

// List handles GET /v1/tasks with done, page and perPage query parameters.
func (h *TaskHandler) List(c echo.Context) error {
	userID, err := identityOrReject(c)
	if err != nil {
		return err
	}

	input := usecase.ListTasksInput{}
	if raw := c.QueryParam("done"); raw != "" {
		done, err := strconv.ParseBool(raw)
		if err != nil {
			return domainerrors.ErrValidationFailed.WrapMessage("invalid done filter")
		}
		input.Done = &done
	}
	if raw := c.QueryParam("page"); raw != "" {
		input.Page, _ = strconv.Atoi(raw)
	}
	if raw := c.QueryParam("perPage"); raw != "" {
		input.PerPage, _ = strconv.Atoi(raw)
	}

	page, err := h.tasks.ListTasks(c.Request().Context(), userID, input)
	if err != nil {
		return errors.WithStack(err)
	}

	views := make([]taskView, 0, len(page.Tasks))
	for _, task := range page.Tasks {
		views = append(views, toTaskView(task))
	}

	return response.Success(c, http.StatusOK, taskPageView{
		Tasks:   views,
		Total:   page.Total,
		Page:    page.Page,
		PerPage: page.PerPage,
	}, "")
}

// Get handles GET /v1/tasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	userID, err := identityOrReject(c)
	if err != nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return err
	}

	task, err := h.tasks.GetTask(c.Request().Context(), userID, taskID)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toTaskView(task), "")
}

// Update handles PATCH /v1/tasks/:id.
func (h *TaskHandler) Update(c echo.Context) error {
	userID, err := identityOrReject(c)
	if err != nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid task input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	task, err := h.tasks.UpdateTask(c.Request().Context(), userID, taskID, usecase.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Done:        req.Done,
		DueAt:       req.DueAt,
		RemoveDueAt: req.RemoveDueAt,
	})
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, toTaskView(task), "Task updated")
}

// Delete handles DELETE /v1/tasks/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	userID, err := identityOrReject(c)
	if err != nil {
		return err
	}
	taskID, err := taskIDParam(c)
	if err != nil {
		return err
	}

	if err := h.tasks.DeleteTask(c.Request().Context(), userID, taskID); err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, nil, "Task deleted")
}

// BulkDelete handles POST /v1/tasks/bulk/delete.
func (h *TaskHandler) BulkDelete(c echo.Context) error {
	userID, err := identityOrReject(c)
	if err != nil {
		return err
	}

	var req bulkIDsRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid bulk delete input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	deleted, err := h.tasks.BulkDeleteTasks(c.Request().Context(), userID, req.IDs)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"deleted": deleted}, "Tasks deleted")
}

// BulkStatus handles POST /v1/tasks/bulk/status.
func (h *TaskHandler) BulkStatus(c echo.Context) error {
	userID, err := identityOrReject(c)
	if err != nil {
		return err
	}

	var req bulkStatusRequest
	if err := c.Bind(&req); err != nil {
		return response.BindingError(c, "INVALID_INPUT", "Invalid bulk status input")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	updated, err := h.tasks.BulkSetDone(c.Request().Context(), userID, req.IDs, req.Done)
	if err != nil {
		return errors.WithStack(err)
	}

	return response.Success(c, http.StatusOK, map[string]int64{"updated": updated}, "Tasks updated")
}
