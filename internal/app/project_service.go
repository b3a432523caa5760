package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"blueprint/internal/domain"

	"github.com/google/uuid"
)

// CreateResult is what creating a project returns: the stored project, the
// analysis it was derived from, and how many tasks were seeded.
type CreateResult struct {
	Project      domain.Project  `json:"project"`
	Analysis     domain.Analysis `json:"analysis"`
	TasksCreated int             `json:"tasks_created"`
}

// ProjectOverview is a project annotated with progress figures computed at
// read time.
type ProjectOverview struct {
	domain.Project
	TaskCount      int     `json:"task_count"`
	CompletedTasks int     `json:"completed_tasks"`
	Progress       float64 `json:"progress"`
}

// ProjectDetail is a project together with its tasks.
type ProjectDetail struct {
	domain.Project
	Tasks []domain.Task `json:"tasks"`
}

// ProjectService runs the idea-to-backlog pipeline and serves project reads.
type ProjectService struct {
	projects domain.ProjectRepository
	tasks    domain.TaskRepository
	analyzer *Analyzer
	logger   *slog.Logger

	created   Counter
	generated Counter
}

// NewProjectService creates a ProjectService.
func NewProjectService(projects domain.ProjectRepository, tasks domain.TaskRepository, analyzer *Analyzer) *ProjectService {
	return &ProjectService{projects: projects, tasks: tasks, analyzer: analyzer, logger: slog.Default()}
}

// WithLogger replaces the default logger.
func (s *ProjectService) WithLogger(l *slog.Logger) *ProjectService {
	if l != nil {
		s.logger = l
	}
	return s
}

// WithCounters records created projects and generated tasks.
func (s *ProjectService) WithCounters(created, generated Counter) *ProjectService {
	s.created = created
	s.generated = generated
	return s
}

// Create analyses the idea, derives features and a backlog, and stores the
// project followed by its tasks.
func (s *ProjectService) Create(ctx context.Context, ownerID, title, description string) (*CreateResult, error) {
	if strings.TrimSpace(title) == "" {
		return nil, invalid("title is required")
	}

	analysis := s.analyzer.Analyze(ctx, description)
	features := domain.ExtractFeatures(description)
	templates := domain.GenerateBacklog(features)

	now := time.Now().UTC()
	project := domain.Project{
		ID:               uuid.NewString(),
		UserID:           ownerID,
		Title:            title,
		Description:      description,
		ValidationScores: analysis.ValidationScores(),
		Features:         features,
		Status:           domain.ProjectStatusActive,
		CreatedAt:        now,
	}
	if err := s.projects.CreateProject(ctx, project); err != nil {
		return nil, fmt.Errorf("create project: %w", err)
	}

	tasks := make([]domain.Task, len(templates))
	for i, tt := range templates {
		tasks[i] = domain.Task{
			ID:          uuid.NewString(),
			ProjectID:   project.ID,
			Title:       tt.Title,
			Description: tt.Description,
			Priority:    tt.Priority,
			Status:      domain.StatusToDo,
			CreatedAt:   now,
		}
	}
	if err := s.tasks.CreateTasks(ctx, tasks); err != nil {
		s.logger.Error("project stored without its backlog",
			slog.String("project_id", project.ID),
			slog.String("user_id", ownerID),
			slog.String("error", err.Error()))
		return nil, fmt.Errorf("create tasks for project %s: %w", project.ID, err)
	}

	if s.created != nil {
		s.created.Inc()
	}
	if s.generated != nil {
		s.generated.Add(float64(len(tasks)))
	}

	return &CreateResult{Project: project, Analysis: analysis, TasksCreated: len(tasks)}, nil
}

// List returns the owner's projects with task counts and progress.
func (s *ProjectService) List(ctx context.Context, ownerID string) ([]ProjectOverview, error) {
	projects, err := s.projects.ListProjects(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}

	out := make([]ProjectOverview, 0, len(projects))
	for _, p := range projects {
		counts, err := s.tasks.CountTasks(ctx, p.ID)
		if err != nil {
			return nil, fmt.Errorf("count tasks for project %s: %w", p.ID, err)
		}
		out = append(out, ProjectOverview{
			Project:        p,
			TaskCount:      counts.Total,
			CompletedTasks: counts.Done,
			Progress:       counts.Progress(),
		})
	}
	return out, nil
}

// Get returns one owned project with its tasks.
func (s *ProjectService) Get(ctx context.Context, ownerID, projectID string) (*ProjectDetail, error) {
	project, err := s.owned(ctx, ownerID, projectID)
	if err != nil {
		return nil, err
	}
	tasks, err := s.tasks.ListTasks(ctx, project.ID)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	if tasks == nil {
		tasks = []domain.Task{}
	}
	return &ProjectDetail{Project: *project, Tasks: tasks}, nil
}

// Flow composes the user journey for an owned project.
func (s *ProjectService) Flow(ctx context.Context, ownerID, projectID string) (domain.Flow, error) {
	project, err := s.owned(ctx, ownerID, projectID)
	if err != nil {
		return domain.Flow{}, err
	}
	return domain.ComposeFlow(project.Features), nil
}

func (s *ProjectService) owned(ctx context.Context, ownerID, projectID string) (*domain.Project, error) {
	project, err := s.projects.GetProject(ctx, ownerID, projectID)
	if err != nil {
		return nil, fmt.Errorf("get project: %w", err)
	}
	if project == nil {
		return nil, fmt.Errorf("project %s: %w", projectID, ErrNotFound)
	}
	return project, nil
}
