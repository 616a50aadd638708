package inmemory

import (
	"context"
	"time"

	"todoTracker/internal/models/user"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateUser(ctx context.Context, userToCreate *user.User) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	email := user.NormalizeEmail(userToCreate.Email)
	if _, taken := s.byEmail[email]; taken {
		return repo.ErrEmailTaken
	}

	now := time.Now().UTC()
	userToCreate.Email = email
	userToCreate.CreatedAt = now
	userToCreate.UpdatedAt = now

	u := *userToCreate
	s.users[u.ID] = &u
	s.byEmail[email] = u.ID
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := *u
	return &res, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	id, ok := s.byEmail[user.NormalizeEmail(email)]
	if !ok {
		return nil, repo.ErrNotFound
	}
	res := *s.users[id]
	return &res, nil
}
