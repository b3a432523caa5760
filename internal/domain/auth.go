// Package domain contains the core business entities, ports and the pure
// functions that turn an idea description into a project blueprint.
package domain

import (
	"context"
	"errors"
	"time"
)

// ErrEmailTaken is returned by a UserRepository when the email is already
// registered.
var ErrEmailTaken = errors.New("email already registered")

// User represents a registered user in the system.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

// UserRepository defines the port for user persistence operations.
// Lookups return (nil, nil) when no user matches.
type UserRepository interface {
	CreateUser(ctx context.Context, u User) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}
