package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"blueprint/internal/domain"
)

type userRow struct {
	ID           string    `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password_hash"`
	CreatedAt    time.Time `db:"created_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Username:     r.Username,
		Email:        r.Email,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt.UTC(),
	}
}

const userColumns = "id, username, email, password_hash, created_at"

// CreateUser stores a new user. A duplicate email yields domain.ErrEmailTaken.
func (d *DB) CreateUser(ctx context.Context, u domain.User) (*domain.User, error) {
	var row userRow
	err := d.sql.GetContext(ctx, &row,
		"INSERT INTO users ("+userColumns+") VALUES ($1, $2, $3, $4, $5) RETURNING "+userColumns,
		u.ID, u.Username, u.Email, u.PasswordHash, u.CreatedAt.UTC(),
	)
	if isUniqueViolation(err) {
		return nil, domain.ErrEmailTaken
	}
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return row.toDomain(), nil
}

// GetUserByEmail retrieves a user by email, ignoring case.
func (d *DB) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return d.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE lower(email) = lower($1)", email)
}

// GetUserByID retrieves a user by ID.
func (d *DB) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	return d.getUser(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
}

func (d *DB) getUser(ctx context.Context, query string, arg any) (*domain.User, error) {
	var row userRow
	err := d.sql.GetContext(ctx, &row, query, arg)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("select user: %w", err)
	}
	return row.toDomain(), nil
}
