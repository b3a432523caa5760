package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"blueprint/internal/domain"

	"github.com/google/uuid"
)

// TaskService manages tasks of projects owned by the caller.
type TaskService struct {
	projects domain.ProjectRepository
	tasks    domain.TaskRepository
}

// NewTaskService creates a TaskService.
func NewTaskService(projects domain.ProjectRepository, tasks domain.TaskRepository) *TaskService {
	return &TaskService{projects: projects, tasks: tasks}
}

// List returns the tasks of an owned project.
func (s *TaskService) List(ctx context.Context, ownerID, projectID string) ([]domain.Task, error) {
	if err := s.checkOwner(ctx, ownerID, projectID); err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListTasks(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return tasks, nil
}

// Create adds a task to an owned project. Priority defaults to Medium and
// the task starts in To Do.
func (s *TaskService) Create(ctx context.Context, ownerID, projectID, title, description, priority string) (*domain.Task, error) {
	if strings.TrimSpace(title) == "" {
		return nil, invalid("title is required")
	}
	if priority == "" {
		priority = domain.PriorityMedium
	}
	if !domain.ValidPriority(priority) {
		return nil, invalid("priority must be one of %q, %q, %q", domain.PriorityHigh, domain.PriorityMedium, domain.PriorityLow)
	}
	if err := s.checkOwner(ctx, ownerID, projectID); err != nil {
		return nil, err
	}

	task := domain.Task{
		ID:          uuid.NewString(),
		ProjectID:   projectID,
		Title:       title,
		Description: description,
		Priority:    priority,
		Status:      domain.StatusToDo,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.tasks.CreateTask(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &task, nil
}

// UpdateStatus moves a task to another board status. The task's project must
// be owned by the caller; ownership is checked before the status value.
func (s *TaskService) UpdateStatus(ctx context.Context, ownerID, taskID, status string) (*domain.Task, error) {
	task, err := s.tasks.GetTask(ctx, taskID)
	if err != nil {
		return nil, fmt.Errorf("get task: %w", err)
	}
	if task == nil {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	if err := s.checkOwner(ctx, ownerID, task.ProjectID); err != nil {
		return nil, err
	}
	if !domain.ValidStatus(status) {
		return nil, invalid("status must be one of %q, %q, %q", domain.StatusToDo, domain.StatusInProgress, domain.StatusDone)
	}

	updated, err := s.tasks.UpdateTaskStatus(ctx, taskID, status)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	if updated == nil {
		return nil, fmt.Errorf("task %s: %w", taskID, ErrNotFound)
	}
	return updated, nil
}

func (s *TaskService) checkOwner(ctx context.Context, ownerID, projectID string) error {
	project, err := s.projects.GetProject(ctx, ownerID, projectID)
	if err != nil {
		return fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return nil
}
