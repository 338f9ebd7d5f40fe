package task

import (
	"context"
	"time"
)

// DateFilter narrows ListTasks to a calendar range. The zero value means no
// server-side filtering; the view still filters locally by tab.
type DateFilter struct {
	On time.Time
}

// Backend is the persistence collaborator for the task store. The REST
// client and the local sqlite store both satisfy it.
type Backend interface {
	ListTasks(ctx context.Context, filter DateFilter) ([]Task, error)
	CreateTask(ctx context.Context, draft Draft) (*Task, error)
	UpdateTask(ctx context.Context, id string, draft Draft) (*Task, error)
	DeleteTask(ctx context.Context, id string) error
	SetCompleted(ctx context.Context, id string, completed bool) (*Task, error)
	AddFocusMinutes(ctx context.Context, id string, minutes int) (*Task, error)
}
