package postgres

import (
	"context"
	"errors"
	"time"

	"todoTracker/internal/logger"
	"todoTracker/internal/models/user"
	repo "todoTracker/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const userColumns = `id, email, password_digest, created_at, updated_at`

func scanUser(row pgx.Row) (*user.User, error) {
	u := &user.User{}
	if err := row.Scan(&u.ID, &u.Email, &u.PasswordDigest, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	u.CreatedAt = u.CreatedAt.UTC()
	u.UpdatedAt = u.UpdatedAt.UTC()
	return u, nil
}

func (s *Storage) CreateUser(ctx context.Context, userToCreate *user.User) error {
	start := time.Now()
	defer warnIfSlow("CreateUser", start)

	userToCreate.Email = user.NormalizeEmail(userToCreate.Email)

	query := `INSERT INTO users (id, email, password_digest)
				VALUES ($1, $2, $3)
				RETURNING created_at, updated_at`

	err := s.pool.QueryRow(ctx, query,
		userToCreate.ID,
		userToCreate.Email,
		userToCreate.PasswordDigest,
	).Scan(&userToCreate.CreatedAt, &userToCreate.UpdatedAt)
	if err != nil {
		err = mapError("insert user", err)
		if !errors.Is(err, repo.ErrEmailTaken) {
			logger.Error("Repository: failed to insert user", err, zap.Duration("ms", time.Since(start)))
		}
		return err
	}

	userToCreate.CreatedAt = userToCreate.CreatedAt.UTC()
	userToCreate.UpdatedAt = userToCreate.UpdatedAt.UTC()
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id))
	if err != nil {
		return nil, mapError("get user", err)
	}
	return u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	u, err := scanUser(s.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE LOWER(email) = $1`, user.NormalizeEmail(email)))
	if err != nil {
		return nil, mapError("get user by email", err)
	}
	return u, nil
}
