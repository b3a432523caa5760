// Package memory implements an in-memory repository for development and testing.
package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"blueprint/internal/domain"
)

// DB implements an in-memory database storage.
type DB struct {
	mu       sync.Mutex
	users    []*domain.User
	projects []domain.Project
	tasks    []domain.Task
}

// New creates a new in-memory database.
func New() *DB {
	return &DB{}
}

// Ensure interfaces are met.
var _ domain.UserRepository = (*DB)(nil)
var _ domain.ProjectRepository = (*DB)(nil)
var _ domain.TaskRepository = (*DB)(nil)

// --- UserRepository ---

// CreateUser stores a new user. Emails are unique, compared case-insensitively.
func (db *DB) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, existing := range db.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return nil, domain.ErrEmailTaken
		}
	}

	stored := u
	stored.CreatedAt = u.CreatedAt.UTC()
	db.users = append(db.users, &stored)
	ret := stored
	return &ret, nil
}

// GetUserByEmail retrieves a user by email.
func (db *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if strings.EqualFold(u.Email, email) {
			ret := *u
			return &ret, nil
		}
	}
	return nil, nil
}

// GetUserByID retrieves a user by ID.
func (db *DB) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, u := range db.users {
		if u.ID == id {
			ret := *u
			return &ret, nil
		}
	}
	return nil, nil
}

// --- ProjectRepository ---

// CreateProject stores a project.
func (db *DB) CreateProject(ctx context.Context, p domain.Project) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	p.Features = slices.Clone(p.Features)
	p.CreatedAt = p.CreatedAt.UTC()
	db.projects = append(db.projects, p)
	return nil
}

// GetProject retrieves a project owned by ownerID.
func (db *DB) GetProject(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, p := range db.projects {
		if p.ID == id && p.UserID == ownerID {
			ret := cloneProject(p)
			return &ret, nil
		}
	}
	return nil, nil
}

// ListProjects returns the owner's projects in creation order.
func (db *DB) ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Project
	for _, p := range db.projects {
		if p.UserID == ownerID {
			out = append(out, cloneProject(p))
		}
	}
	return out, nil
}

// LatestProject returns the owner's most recently created project.
func (db *DB) LatestProject(ctx context.Context, ownerID string) (*domain.Project, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var latest *domain.Project
	for i := range db.projects {
		p := &db.projects[i]
		if p.UserID != ownerID {
			continue
		}
		// Ties go to the later insert.
		if latest == nil || !p.CreatedAt.Before(latest.CreatedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, nil
	}
	ret := cloneProject(*latest)
	return &ret, nil
}

func cloneProject(p domain.Project) domain.Project {
	p.Features = slices.Clone(p.Features)
	p.ValidationScores.Suggestions = slices.Clone(p.ValidationScores.Suggestions)
	return p
}

// --- TaskRepository ---

// CreateTasks stores a batch of tasks.
func (db *DB) CreateTasks(ctx context.Context, tasks []domain.Task) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, t := range tasks {
		t.CreatedAt = t.CreatedAt.UTC()
		db.tasks = append(db.tasks, t)
	}
	return nil
}

// CreateTask stores a single task.
func (db *DB) CreateTask(ctx context.Context, t domain.Task) error {
	return db.CreateTasks(ctx, []domain.Task{t})
}

// ListTasks returns a project's tasks ordered by creation time.
func (db *DB) ListTasks(ctx context.Context, projectID string) ([]domain.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var out []domain.Task
	for _, t := range db.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// GetTask retrieves a task by ID.
func (db *DB) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for _, t := range db.tasks {
		if t.ID == id {
			ret := t
			return &ret, nil
		}
	}
	return nil, nil
}

// UpdateTaskStatus sets a task's status and returns the updated task.
func (db *DB) UpdateTaskStatus(ctx context.Context, id, status string) (*domain.Task, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	for i := range db.tasks {
		if db.tasks[i].ID == id {
			db.tasks[i].Status = status
			ret := db.tasks[i]
			return &ret, nil
		}
	}
	return nil, nil
}

// CountTasks summarises a project's tasks by status.
func (db *DB) CountTasks(ctx context.Context, projectID string) (domain.TaskCounts, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	var c domain.TaskCounts
	for _, t := range db.tasks {
		if t.ProjectID != projectID {
			continue
		}
		c.Total++
		switch t.Status {
		case domain.StatusDone:
			c.Done++
		case domain.StatusInProgress:
			c.InProgress++
		}
	}
	return c, nil
}
