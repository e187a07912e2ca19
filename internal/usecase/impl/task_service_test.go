package impl

import (
	"context"
	"testing"
	"time"

	"taskboard/config"
	domainerrors "taskboard/internal/domain/errors"
	"taskboard/internal/usecase"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTaskFixture(store *memStore) usecase.TaskUsecase {
	return NewTaskService(newMemTxManager(store), &config.TasksConfig{
		DefaultPerPage: 20,
		MaxPerPage:     100,
	}, testLogger())
}

func TestTaskService_CreateAndGet(t *testing.T) {
	store := newMemStore()
	svc := newTaskFixture(store)
	ctx := context.Background()
	userID := uuid.New()
	due := time.Now().Add(48 * time.Hour).UTC()

	created, err := svc.CreateTask(ctx, userID, usecase.CreateTaskInput{
		Title:       "write report",
		Description: "quarterly numbers",
		DueAt:       &due,
	})
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, created.ID)

	got, err := svc.GetTask(ctx, userID, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "write report", got.Title)
	assert.False(t, got.Done)
	require.NotNil(t, got.DueAt)
}

func TestTaskService_GetTask_OtherUsersTaskLooksAbsent(t *testing.T) {
	store := newMemStore()
	svc := newTaskFixture(store)
	ctx := context.Background()

	created, err := svc.CreateTask(ctx, uuid.New(), usecase.CreateTaskInput{Title: "mine"})
	require.NoError(t, err)

	_, err = svc.GetTask(ctx, uuid.New(), created.ID)

	require.ErrorIs(t, err, domainerrors.ErrTaskNotFound)
}

func TestTaskService_ListTasks_FilterAndPagination(t *testing.T) {
	store := newMemStore()
	svc := newTaskFixture(store)
	ctx := context.Background()
	userID := uuid.New()

	for range 3 {
		_, err := svc.CreateTask(ctx, userID, usecase.CreateTaskInput{Title: "open"})
		require.NoError(t, err)
	}
	doneTask, err := svc.CreateTask(ctx, userID, usecase.CreateTaskInput{Title: "closed"})
	require.NoError(t, err)
	doneFlag := true
	_, err = svc.UpdateTask(ctx, userID, doneTask.ID, usecase.UpdateTaskInput{Done: &doneFlag})
	require.NoError(t, err)

	// Another user's tasks never leak into the listing.
	_, err = svc.CreateTask(ctx, uuid.New(), usecase.CreateTaskInput{Title: "foreign"})
	require.NoError(t, err)

	all, err := svc.ListTasks(ctx, userID, usecase.ListTasksInput{})
	require.NoError(t, err)
	assert.EqualValues(t, 4, all.Total)
	assert.Len(t, all.Tasks, 4)

	open := false
	pending, err := svc.ListTasks(ctx, userID, usecase.ListTasksInput{Done: &open})
	require.NoError(t, err)
	assert.EqualValues(t, 3, pending.Total)

	paged, err := svc.ListTasks(ctx, userID, usecase.ListTasksInput{Page: 2, PerPage: 3})
	require.NoError(t, err)
	assert.EqualValues(t, 4, paged.Total)
	assert.Len(t, paged.Tasks, 1)
	assert.Equal(t, 2, paged.Page)
}

func TestTaskService_ListTasks_ClampsPagingKnobs(t *testing.T) {
	store := newMemStore()
	svc := newTaskFixture(store)
	ctx := context.Background()
	userID := uuid.New()

	_, err := svc.CreateTask(ctx, userID, usecase.CreateTaskInput{Title: "only one"})
	require.NoError(t, err)

	// Nonsense knobs fall back to page 1 with the default size.
	page, err := svc.ListTasks(ctx, userID, usecase.ListTasksInput{Page: -3, PerPage: 0})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 20, page.PerPage)

	// Oversized requests are clamped to the configured maximum.
	page, err = svc.ListTasks(ctx, userID, usecase.ListTasksInput{PerPage: 10000})
	require.NoError(t, err)
	assert.Equal(t, 100, page.PerPage)
}

func TestTaskService_UpdateTask_PartialAndDueAtRemoval(t *testing.T) {
	store := newMemStore()
	svc := newTaskFixture(store)
	ctx := context.Background()
	userID := uuid.New()
	due := time.Now().Add(time.Hour).UTC()

	created, err := svc.CreateTask(ctx, userID, usecase.CreateTaskInput{Title: "before", DueAt: &due})
	require.NoError(t, err)

	title := "after"
	updated, err := svc.UpdateTask(ctx, userID, created.ID, usecase.UpdateTaskInput{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "after", updated.Title)
	require.NotNil(t, updated.DueAt)

	updated, err = svc.UpdateTask(ctx, userID, created.ID, usecase.UpdateTaskInput{RemoveDueAt: true})
	require.NoError(t, err)
	assert.Nil(t, updated.DueAt)
}

func TestTaskService_DeleteTask(t *testing.T) {
	store := newMemStore()
	svc := newTaskFixture(store)
	ctx := context.Background()
	userID := uuid.New()

	created, err := svc.CreateTask(ctx, userID, usecase.CreateTaskInput{Title: "to delete"})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteTask(ctx, userID, created.ID))
	err = svc.DeleteTask(ctx, userID, created.ID)
	require.ErrorIs(t, err, domainerrors.ErrTaskNotFound)
}

func TestTaskService_BulkOperationsSkipForeignTasks(t *testing.T) {
	store := newMemStore()
	svc := newTaskFixture(store)
	ctx := context.Background()
	userID := uuid.New()
	intruder := uuid.New()

	mine1, err := svc.CreateTask(ctx, userID, usecase.CreateTaskInput{Title: "a"})
	require.NoError(t, err)
	mine2, err := svc.CreateTask(ctx, userID, usecase.CreateTaskInput{Title: "b"})
	require.NoError(t, err)
	foreign, err := svc.CreateTask(ctx, intruder, usecase.CreateTaskInput{Title: "not yours"})
	require.NoError(t, err)

	ids := []uuid.UUID{mine1.ID, mine2.ID, foreign.ID, uuid.New()}

	updated, err := svc.BulkSetDone(ctx, userID, ids, true)
	require.NoError(t, err)
	assert.EqualValues(t, 2, updated)

	deleted, err := svc.BulkDeleteTasks(ctx, userID, ids)
	require.NoError(t, err)
	assert.EqualValues(t, 2, deleted)

	// The other user's task survived both sweeps untouched.
	kept, err := svc.GetTask(ctx, intruder, foreign.ID)
	require.NoError(t, err)
	assert.False(t, kept.Done)
}

func TestTaskService_BulkOperations_EmptyIDList(t *testing.T) {
	store := newMemStore()
	svc := newTaskFixture(store)
	ctx := context.Background()

	deleted, err := svc.BulkDeleteTasks(ctx, uuid.New(), nil)
	require.NoError(t, err)
	assert.Zero(t, deleted)

	updated, err := svc.BulkSetDone(ctx, uuid.New(), nil, true)
	require.NoError(t, err)
	assert.Zero(t, updated)
}
