package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/user"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

type UserService struct {
	users  UserRepository
	hasher PasswordHasher
}

func NewUserService(users UserRepository, hasher PasswordHasher) *UserService {
	return &UserService{users: users, hasher: hasher}
}

type UserInput struct {
	Email    Optional[string]
	Password Optional[string]
}

func (s *UserService) SignUp(ctx context.Context, in UserInput) (*user.User, error) {
	var fields []FieldError

	email := user.NormalizeEmail(in.Email.Value)
	if !in.Email.Set || in.Email.Null || email == "" {
		fields = append(fields, Invalid("email", "Email can't be blank"))
	}
	if !in.Password.Set || in.Password.Null || strings.TrimSpace(in.Password.Value) == "" {
		fields = append(fields, Invalid("password", "Password can't be blank"))
	}
	if len(fields) > 0 {
		return nil, NewValidationError(fields...)
	}

	digest, err := s.hasher.Hash(in.Password.Value)
	if err != nil {
		logger.Error("Service: failed to hash password", err)
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{ID: uuid.New(), Email: email, PasswordDigest: digest}
	if err := s.users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			return nil, NewValidationError(Invalid("email", "Email has already been taken"))
		}
		return nil, storeError("create user", err)
	}

	logger.Info("Service: user signed up", zap.String("user_id", u.ID.String()))
	return u, nil
}
