package users

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/khushal-Taskar/Zoom/internal/domain"
)

// Service implements register/login and meeting history on top of a
// Repository. Passwords are bcrypt-hashed; the login token is an opaque
// uuid the client echoes back on history calls.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Register(ctx context.Context, name, username, password string) (*domain.User, error) {
	if password == "" {
		return nil, domain.ErrPasswordEmpty
	}
	user, err := domain.NewUser(name, username)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}
	user.PasswordHash = string(hash)
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Info().Str("module", "users").Str("username", username).Msg("user registered")
	return user, nil
}

// Login verifies the password and rotates the user's session token.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.repo.GetByUsername(ctx, username)
	if err != nil {
		// Same answer as a wrong password, so usernames cannot be probed.
		return "", ErrBadCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", ErrBadCredentials
	}
	token := uuid.NewString()
	if err := s.repo.SetToken(ctx, user.ID, token); err != nil {
		return "", err
	}
	log.Info().Str("module", "users").Str("username", username).Msg("user logged in")
	return token, nil
}

// AddToHistory records that the token's owner joined the given meeting code.
func (s *Service) AddToHistory(ctx context.Context, token, meetingCode string) error {
	user, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return ErrBadToken
	}
	return s.repo.AddMeeting(ctx, domain.NewMeeting(user.ID, meetingCode))
}

// History lists the token's owner's past meetings, newest first.
func (s *Service) History(ctx context.Context, token string) ([]*domain.Meeting, error) {
	user, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, ErrBadToken
	}
	return s.repo.MeetingsOf(ctx, user.ID)
}
