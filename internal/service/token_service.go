package service

import (
	"context"
	"errors"
	"fmt"

	"todoTracker/internal/auth"
	"todoTracker/internal/logger"
	"todoTracker/internal/models/user"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TokenIssuer interface {
	IssueAccessToken(userID uuid.UUID) (*auth.Token, error)
}

type TokenService struct {
	users  UserRepository
	hasher PasswordHasher
	issuer TokenIssuer
}

func NewTokenService(users UserRepository, hasher PasswordHasher, issuer TokenIssuer) *TokenService {
	return &TokenService{users: users, hasher: hasher, issuer: issuer}
}

// IssueToken implements the password grant. Unknown emails and wrong passwords are
// reported the same way.
func (s *TokenService) IssueToken(ctx context.Context, email, password string) (*auth.Token, error) {
	u, err := s.users.GetUserByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			logger.Info("Service: token requested for unknown email")
			return nil, NewUnauthorized("invalid_grant")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if !s.hasher.Verify(password, u.PasswordDigest) {
		logger.Info("Service: wrong password", zap.String("user_id", u.ID.String()))
		return nil, NewUnauthorized("invalid_grant")
	}

	token, err := s.issuer.IssueAccessToken(u.ID)
	if err != nil {
		logger.Error("Service: failed to sign token", err)
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}
