// Package store persists users and typing-session records.
package store

import (
	"context"
	"errors"

	"keystroke-lab/backend/internal/models"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrEmailTaken    = errors.New("store: email already registered")
	ErrUsernameTaken = errors.New("store: username already taken")
)

// ListLimit caps how many records a session listing returns.
const ListLimit = 20

type Store interface {
	// CreateUser inserts a new user and fills in its id and creation time.
	// Duplicate email or username yields ErrEmailTaken / ErrUsernameTaken.
	CreateUser(ctx context.Context, u *models.User) error
	UserByEmail(ctx context.Context, email string) (models.User, error)
	UserByID(ctx context.Context, id int) (models.User, error)

	// CreateSession inserts a completed session record, insights included,
	// and fills in its id and creation time. Records are never updated.
	CreateSession(ctx context.Context, s *models.Session) error
	SessionByID(ctx context.Context, id int) (models.Session, error)
	// SessionsByUser returns the user's records, newest first, at most
	// ListLimit of them.
	SessionsByUser(ctx context.Context, userID int) ([]models.Session, error)
}
