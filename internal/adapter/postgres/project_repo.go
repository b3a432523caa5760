package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"blueprint/internal/domain"

	"github.com/lib/pq"
)

type projectRow struct {
	ID          string         `db:"id"`
	UserID      string         `db:"user_id"`
	Title       string         `db:"title"`
	Description string         `db:"description"`
	Scores      []byte         `db:"validation_scores"`
	Features    pq.StringArray `db:"features"`
	Status      string         `db:"status"`
	CreatedAt   time.Time      `db:"created_at"`
}

func (r projectRow) toDomain() (domain.Project, error) {
	p := domain.Project{
		ID:          r.ID,
		UserID:      r.UserID,
		Title:       r.Title,
		Description: r.Description,
		Features:    []string(r.Features),
		Status:      r.Status,
		CreatedAt:   r.CreatedAt.UTC(),
	}
	if len(r.Scores) > 0 {
		if err := json.Unmarshal(r.Scores, &p.ValidationScores); err != nil {
			return domain.Project{}, fmt.Errorf("decode validation scores of project %s: %w", r.ID, err)
		}
	}
	return p, nil
}

const projectColumns = "id, user_id, title, description, validation_scores, features, status, created_at"

// CreateProject stores a project.
func (d *DB) CreateProject(ctx context.Context, p domain.Project) error {
	scores, err := json.Marshal(p.ValidationScores)
	if err != nil {
		return fmt.Errorf("encode validation scores: %w", err)
	}
	features := p.Features
	if features == nil {
		features = []string{}
	}

	_, err = d.sql.ExecContext(ctx,
		"INSERT INTO projects ("+projectColumns+") VALUES ($1, $2, $3, $4, $5, $6, $7, $8)",
		p.ID, p.UserID, p.Title, p.Description, string(scores), pq.StringArray(features), p.Status, p.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("insert project: %w", err)
	}
	return nil
}

// GetProject retrieves a project owned by ownerID.
func (d *DB) GetProject(ctx context.Context, ownerID, id string) (*domain.Project, error) {
	return d.getProject(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE id = $1 AND user_id = $2", id, ownerID)
}

// ListProjects returns the owner's projects in creation order.
func (d *DB) ListProjects(ctx context.Context, ownerID string) ([]domain.Project, error) {
	var rows []projectRow
	if err := d.sql.SelectContext(ctx, &rows,
		"SELECT "+projectColumns+" FROM projects WHERE user_id = $1 ORDER BY created_at, seq", ownerID,
	); err != nil {
		return nil, fmt.Errorf("select projects: %w", err)
	}

	out := make([]domain.Project, 0, len(rows))
	for _, r := range rows {
		p, err := r.toDomain()
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// LatestProject returns the owner's most recently created project.
func (d *DB) LatestProject(ctx context.Context, ownerID string) (*domain.Project, error) {
	return d.getProject(ctx,
		"SELECT "+projectColumns+" FROM projects WHERE user_id = $1 ORDER BY created_at DESC, seq DESC LIMIT 1", ownerID)
}

func (d *DB) getProject(ctx context.Context, query string, args ...any) (*domain.Project, error) {
	var row projectRow
	err := d.sql.GetContext(ctx, &row, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select project: %w", err)
	}
	p, err := row.toDomain()
	if err != nil {
		return nil, err
	}
	return &p, nil
}
