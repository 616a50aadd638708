package sqlite

import (
	"context"
	"errors"

	"todoTracker/internal/models/user"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

func (s *Storage) CreateUser(ctx context.Context, userToCreate *user.User) error {
	userToCreate.Email = user.NormalizeEmail(userToCreate.Email)

	row := &userRow{
		ID:             userToCreate.ID.String(),
		Email:          userToCreate.Email,
		PasswordDigest: userToCreate.PasswordDigest,
	}
	if err := s.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return repo.ErrEmailTaken
		}
		return mapError("create user", err)
	}

	userToCreate.CreatedAt = row.CreatedAt.UTC()
	userToCreate.UpdatedAt = row.UpdatedAt.UTC()
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	var row userRow
	if err := s.db.WithContext(ctx).Where("id = ?", id.String()).First(&row).Error; err != nil {
		return nil, mapError("get user", err)
	}
	return row.toModel()
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	var row userRow
	err := s.db.WithContext(ctx).Where("email = ?", user.NormalizeEmail(email)).First(&row).Error
	if err != nil {
		return nil, mapError("get user by email", err)
	}
	return row.toModel()
}
