package domain

import (
	"context"
	"time"
)

// Task statuses.
const (
	StatusToDo       = "To Do"
	StatusInProgress = "In Progress"
	StatusDone       = "Done"
)

// Task priorities.
const (
	PriorityHigh   = "High"
	PriorityMedium = "Medium"
	PriorityLow    = "Low"
)

// ValidStatus reports whether s is one of the board statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusToDo, StatusInProgress, StatusDone:
		return true
	}
	return false
}

// ValidPriority reports whether p is a known priority.
func ValidPriority(p string) bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Task is a single backlog item belonging to a project.
type Task struct {
	ID          string    `json:"id"`
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Priority    string    `json:"priority"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
}

// TaskCounts summarises the tasks of one project.
type TaskCounts struct {
	Total      int
	Done       int
	InProgress int
}

// Progress returns the completed percentage, 0 when there are no tasks.
func (c TaskCounts) Progress() float64 {
	if c.Total == 0 {
		return 0
	}
	return float64(c.Done) / float64(c.Total) * 100
}

// TaskRepository is the port for task persistence. GetTask and
// UpdateTaskStatus return (nil, nil) when the task does not exist.
type TaskRepository interface {
	CreateTasks(ctx context.Context, tasks []Task) error
	CreateTask(ctx context.Context, t Task) error
	ListTasks(ctx context.Context, projectID string) ([]Task, error)
	GetTask(ctx context.Context, id string) (*Task, error)
	UpdateTaskStatus(ctx context.Context, id, status string) (*Task, error)
	CountTasks(ctx context.Context, projectID string) (TaskCounts, error)
}
