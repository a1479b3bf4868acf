// Package users is the credential store behind /api/v1/users: accounts,
// login tokens and per-user meeting history. The signaling core never calls
// into it; it is the surrounding CRUD surface of the app.
package users

import (
	"context"
	"errors"

	"github.com/khushal-Taskar/Zoom/internal/domain"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrUsernameExists = errors.New("username already taken")
	ErrBadCredentials = errors.New("invalid username or password")
	ErrBadToken       = errors.New("invalid token")
)

type Repository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByToken(ctx context.Context, token string) (*domain.User, error)
	SetToken(ctx context.Context, id domain.UserID, token string) error

	AddMeeting(ctx context.Context, meeting *domain.Meeting) error
	MeetingsOf(ctx context.Context, id domain.UserID) ([]*domain.Meeting, error)
}
