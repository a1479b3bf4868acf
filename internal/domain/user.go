package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

const (
	MaxNameLen     = 64
	MaxUsernameLen = 36
)

var (
	ErrUsernameEmpty   = errors.New("username empty")
	ErrUsernameTooLong = errors.New("username too long")
	ErrNameTooLong     = errors.New("name too long")
	ErrPasswordEmpty   = errors.New("password empty")
)

type UserID string

// User is a registered account. PasswordHash is a bcrypt digest, never the
// raw password. Token is the opaque session token handed out on login.
type User struct {
	ID           UserID    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Token        string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// NewUser is a tiny helper to avoid ad-hoc struct literals in adapters.
func NewUser(name, username string) (*User, error) {
	if len(username) == 0 {
		return nil, ErrUsernameEmpty
	}
	if len(username) > MaxUsernameLen {
		return nil, ErrUsernameTooLong
	}
	if len(name) > MaxNameLen {
		return nil, ErrNameTooLong
	}
	return &User{
		ID:        UserID(uuid.NewString()),
		Name:      name,
		Username:  username,
		CreatedAt: time.Now().UTC(),
	}, nil
}

// Meeting is one entry in a user's call history: which meeting code they
// joined and when.
type Meeting struct {
	ID       string    `json:"id"`
	UserID   UserID    `json:"user_id"`
	Code     string    `json:"meeting_code"`
	JoinedAt time.Time `json:"date"`
}

func NewMeeting(userID UserID, code string) *Meeting {
	return &Meeting{
		ID:       uuid.NewString(),
		UserID:   userID,
		Code:     code,
		JoinedAt: time.Now().UTC(),
	}
}
