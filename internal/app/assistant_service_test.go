package app_test

import (
	"context"
	"testing"

	"blueprint/internal/adapter/memory"
	"blueprint/internal/app"
	"blueprint/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssistantService_Onboarding(t *testing.T) {
	db := memory.New()
	s, err := app.NewAssistantService(db, db).Suggestion(context.Background(), "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.Onboarding, s.Suggestion)
	assert.Nil(t, s.ProjectProgress)
	assert.Empty(t, s.NextSteps)
}

func TestAssistantService_LatestProject(t *testing.T) {
	ctx := context.Background()
	db := memory.New()
	projectID := seedProject(t, db, "u1")
	assistant := app.NewAssistantService(db, db)

	s, err := assistant.Suggestion(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, s.ProjectProgress)
	assert.Equal(t, 0.0, *s.ProjectProgress)
	assert.Contains(t, s.Suggestion, "Great start!")
	assert.Len(t, s.NextSteps, 4)

	tasks := app.NewTaskService(db, db)
	list, err := tasks.List(ctx, "u1", projectID)
	require.NoError(t, err)
	for _, task := range list[:4] {
		_, err := tasks.UpdateStatus(ctx, "u1", task.ID, domain.StatusDone)
		require.NoError(t, err)
	}

	s, err = assistant.Suggestion(ctx, "u1")
	require.NoError(t, err)
	assert.InDelta(t, 80.0, *s.ProjectProgress, 1e-9)
	assert.Contains(t, s.Suggestion, "Excellent work!")
}
