package users

import (
	"context"
	"sync"

	"github.com/khushal-Taskar/Zoom/internal/domain"
)

// InMemoryRepository backs the user service without a database; the default
// when no dsn is configured, and what the tests run against.
type InMemoryRepository struct {
	mu        sync.RWMutex
	byID      map[domain.UserID]*domain.User
	usernames map[string]domain.UserID
	tokens    map[string]domain.UserID
	meetings  map[domain.UserID][]*domain.Meeting
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		byID:      make(map[domain.UserID]*domain.User),
		usernames: make(map[string]domain.UserID),
		tokens:    make(map[string]domain.UserID),
		meetings:  make(map[domain.UserID][]*domain.Meeting),
	}
}

func (r *InMemoryRepository) Create(ctx context.Context, user *domain.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.usernames[user.Username]; ok {
		return ErrUsernameExists
	}
	cp := *user
	r.byID[user.ID] = &cp
	r.usernames[user.Username] = user.ID
	return nil
}

func (r *InMemoryRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.usernames[username]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *InMemoryRepository) GetByToken(ctx context.Context, token string) (*domain.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.tokens[token]
	if !ok {
		return nil, ErrUserNotFound
	}
	cp := *r.byID[id]
	return &cp, nil
}

func (r *InMemoryRepository) SetToken(ctx context.Context, id domain.UserID, token string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.byID[id]
	if !ok {
		return ErrUserNotFound
	}
	if user.Token != "" {
		delete(r.tokens, user.Token)
	}
	user.Token = token
	r.tokens[token] = id
	return nil
}

func (r *InMemoryRepository) AddMeeting(ctx context.Context, meeting *domain.Meeting) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[meeting.UserID]; !ok {
		return ErrUserNotFound
	}
	cp := *meeting
	r.meetings[meeting.UserID] = append(r.meetings[meeting.UserID], &cp)
	return nil
}

func (r *InMemoryRepository) MeetingsOf(ctx context.Context, id domain.UserID) ([]*domain.Meeting, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := r.meetings[id]
	out := make([]*domain.Meeting, 0, len(list))
	// Newest first, matching the postgres ordering.
	for i := len(list) - 1; i >= 0; i-- {
		cp := *list[i]
		out = append(out, &cp)
	}
	return out, nil
}
