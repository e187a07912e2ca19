package entity

import (
	"time"

	"github.com/google/uuid"
)

// Task is a single to-do item. A task always belongs to exactly one user;
// every query against tasks is scoped by UserID at the repository layer.
type Task struct {
	ID          uuid.UUID
	UserID      uuid.UUID
	Title       string
	Description string
	Done        bool
	DueAt       *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TaskPage is one page of a user's task list plus the total match count,
// so clients can render pagination without a second query.
type TaskPage struct {
	Tasks   []*Task
	Total   int64
	Page    int
	PerPage int
}
