package app

import (
	"context"
	"fmt"

	"blueprint/internal/domain"
)

// AssistantService advises the user on their most recent project.
type AssistantService struct {
	projects domain.ProjectRepository
	tasks    domain.TaskRepository
}

// NewAssistantService creates an AssistantService.
func NewAssistantService(projects domain.ProjectRepository, tasks domain.TaskRepository) *AssistantService {
	return &AssistantService{projects: projects, tasks: tasks}
}

// Suggestion returns advice based on the progress of the latest project.
func (s *AssistantService) Suggestion(ctx context.Context, ownerID string) (domain.Suggestion, error) {
	latest, err := s.projects.LatestProject(ctx, ownerID)
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("latest project: %w", err)
	}
	if latest == nil {
		return domain.OnboardingSuggestion(), nil
	}

	counts, err := s.tasks.CountTasks(ctx, latest.ID)
	if err != nil {
		return domain.Suggestion{}, fmt.Errorf("count tasks: %w", err)
	}
	return domain.Suggest(counts), nil
}
