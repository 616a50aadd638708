package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"todoTracker/internal/auth"
	"todoTracker/internal/models/user"
	repo "todoTracker/internal/repository"
	"todoTracker/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestUserService_SignUp(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		input      service.UserInput
		setupMock  func(*MockUserRepository, *MockHasher)
		wantFields []service.FieldError
	}{
		{
			name:  "success normalizes email",
			input: service.UserInput{Email: service.Some(" Bob@Example.com "), Password: service.Some("secret")},
			setupMock: func(users *MockUserRepository, hasher *MockHasher) {
				hasher.On("Hash", "secret").Return("digest", nil)
				users.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *user.User) bool {
					return u.Email == "bob@example.com" && u.PasswordDigest == "digest"
				})).Return(nil)
			},
		},
		{
			name:  "missing email and password",
			input: service.UserInput{Email: service.Null[string]()},
			wantFields: []service.FieldError{
				service.Invalid("email", "Email can't be blank"),
				service.Invalid("password", "Password can't be blank"),
			},
		},
		{
			name:  "email taken",
			input: service.UserInput{Email: service.Some("bob@example.com"), Password: service.Some("secret")},
			setupMock: func(users *MockUserRepository, hasher *MockHasher) {
				hasher.On("Hash", "secret").Return("digest", nil)
				users.On("CreateUser", mock.Anything, mock.Anything).Return(repo.ErrEmailTaken)
			},
			wantFields: []service.FieldError{service.Invalid("email", "Email has already been taken")},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			hasher := new(MockHasher)
			if tt.setupMock != nil {
				tt.setupMock(users, hasher)
			}

			svc := service.NewUserService(users, hasher)
			created, err := svc.SignUp(ctx, tt.input)

			if tt.wantFields != nil {
				busErr := requireBusinessError(t, err, service.CodeValidationFailed)
				assert.Equal(t, tt.wantFields, busErr.Fields)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "bob@example.com", created.Email)
			}
			users.AssertExpectations(t)
			hasher.AssertExpectations(t)
		})
	}
}

func TestTokenService_IssueToken(t *testing.T) {
	ctx := context.Background()
	u := &user.User{ID: uuid.New(), Email: "bob@example.com", PasswordDigest: "digest"}

	t.Run("success", func(t *testing.T) {
		users, hasher, issuer := new(MockUserRepository), new(MockHasher), new(MockTokenIssuer)
		users.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(u, nil)
		hasher.On("Verify", "secret", "digest").Return(true)
		issuer.On("IssueAccessToken", u.ID).Return(&auth.Token{AccessToken: "tok", ExpiresIn: 7200, CreatedAt: time.Now()}, nil)

		svc := service.NewTokenService(users, hasher, issuer)
		token, err := svc.IssueToken(ctx, "BOB@example.com", "secret")
		require.NoError(t, err)
		assert.Equal(t, "tok", token.AccessToken)
	})

	t.Run("wrong password", func(t *testing.T) {
		users, hasher, issuer := new(MockUserRepository), new(MockHasher), new(MockTokenIssuer)
		users.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(u, nil)
		hasher.On("Verify", "nope", "digest").Return(false)

		svc := service.NewTokenService(users, hasher, issuer)
		_, err := svc.IssueToken(ctx, "bob@example.com", "nope")
		requireBusinessError(t, err, service.CodeUnauthorized)
		issuer.AssertNotCalled(t, "IssueAccessToken", mock.Anything)
	})

	t.Run("unknown email", func(t *testing.T) {
		users, hasher, issuer := new(MockUserRepository), new(MockHasher), new(MockTokenIssuer)
		users.On("GetUserByEmail", mock.Anything, "ghost@example.com").Return(nil, repo.ErrNotFound)

		svc := service.NewTokenService(users, hasher, issuer)
		_, err := svc.IssueToken(ctx, "ghost@example.com", "x")
		requireBusinessError(t, err, service.CodeUnauthorized)
	})

	t.Run("store failure is not unauthorized", func(t *testing.T) {
		users, hasher, issuer := new(MockUserRepository), new(MockHasher), new(MockTokenIssuer)
		users.On("GetUserByEmail", mock.Anything, "bob@example.com").Return(nil, errors.New("db down"))

		svc := service.NewTokenService(users, hasher, issuer)
		_, err := svc.IssueToken(ctx, "bob@example.com", "x")
		require.Error(t, err)
		_, isBusiness := service.AsBusinessError(err)
		assert.False(t, isBusiness)
	})
}
