package mongodb

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"
	"time"

	"blueprint/internal/domain"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// openTestStore connects to BLUEPRINT_TEST_MONGO_URL using a throwaway
// database and skips when the variable is unset.
func openTestStore(t *testing.T) *Store {
	t.Helper()
	uri := os.Getenv("BLUEPRINT_TEST_MONGO_URL")
	if uri == "" {
		t.Skip("BLUEPRINT_TEST_MONGO_URL not set")
	}
	ctx := context.Background()
	name := "blueprint_test_" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	s, err := Open(ctx, uri, name, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.db.Drop(ctx)
		_ = s.Close(ctx)
	})
	return s
}

func TestUsers(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	_, err := s.CreateUser(ctx, domain.User{ID: "u1", Username: "ann", Email: "Ann@Example.com", CreatedAt: time.Now()})
	require.NoError(t, err)

	got, err := s.GetUserByEmail(ctx, "ann@example.com")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "u1", got.ID)
	assert.Equal(t, "Ann@Example.com", got.Email)

	_, err = s.CreateUser(ctx, domain.User{ID: "u2", Username: "ann2", Email: "ANN@example.com", CreatedAt: time.Now()})
	assert.True(t, errors.Is(err, domain.ErrEmailTaken))

	none, err := s.GetUserByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestProjectsAndTasks(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Millisecond)

	p := domain.Project{
		ID: "p1", UserID: "u1", Title: "first",
		ValidationScores: domain.ValidationScores{MarketNeed: 4, TechnicalFeasibility: 6, UserValue: 3, Feedback: "f", Suggestions: []string{"s"}},
		Features:         []string{domain.FeatureDashboard},
		Status:           domain.ProjectStatusActive,
		CreatedAt:        now,
	}
	require.NoError(t, s.CreateProject(ctx, p))
	require.NoError(t, s.CreateProject(ctx, domain.Project{ID: "p2", UserID: "u1", Title: "second", Status: domain.ProjectStatusActive, CreatedAt: now}))

	got, err := s.GetProject(ctx, "u1", "p1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ValidationScores, got.ValidationScores)
	assert.Equal(t, now, got.CreatedAt)

	hidden, err := s.GetProject(ctx, "u2", "p1")
	require.NoError(t, err)
	assert.Nil(t, hidden)

	latest, err := s.LatestProject(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, "p2", latest.ID)

	require.NoError(t, s.CreateTasks(ctx, []domain.Task{
		{ID: "t1", ProjectID: "p1", Title: "a", Priority: domain.PriorityHigh, Status: domain.StatusToDo, CreatedAt: now},
		{ID: "t2", ProjectID: "p1", Title: "b", Priority: domain.PriorityLow, Status: domain.StatusToDo, CreatedAt: now},
	}))
	require.NoError(t, s.CreateTask(ctx, domain.Task{ID: "t3", ProjectID: "p1", Title: "c", Priority: domain.PriorityMedium, Status: domain.StatusToDo, CreatedAt: now}))

	tasks, err := s.ListTasks(ctx, "p1")
	require.NoError(t, err)
	require.Len(t, tasks, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{tasks[0].Title, tasks[1].Title, tasks[2].Title})

	updated, err := s.UpdateTaskStatus(ctx, "t2", domain.StatusInProgress)
	require.NoError(t, err)
	require.NotNil(t, updated)
	assert.Equal(t, domain.StatusInProgress, updated.Status)
	_, err = s.UpdateTaskStatus(ctx, "t3", domain.StatusDone)
	require.NoError(t, err)

	counts, err := s.CountTasks(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCounts{Total: 3, Done: 1, InProgress: 1}, counts)

	empty, err := s.CountTasks(ctx, "p2")
	require.NoError(t, err)
	assert.Equal(t, domain.TaskCounts{}, empty)
}
