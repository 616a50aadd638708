package middleware

import (
	"context"
	"net/http"
	"strings"

	"todoTracker/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type TokenValidator interface {
	ValidateAccessToken(token string) (uuid.UUID, error)
}

// Authenticate resolves the bearer token to a user id. Any failure is a bare 401.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := bearerToken(r)
			if !ok {
				logger.Warn("HTTP: missing bearer token",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("client_ip", r.RemoteAddr))
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			userID, err := validator.ValidateAccessToken(token)
			if err != nil {
				logger.Warn("HTTP: rejected bearer token",
					zap.Error(err),
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("client_ip", r.RemoteAddr))
				w.WriteHeader(http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUserID(r.Context(), userID)))
		})
	}
}

func WithUserID(ctx context.Context, id uuid.UUID) context.Context {
	return context.WithValue(ctx, UserIdKey, id)
}

func UserID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(UserIdKey).(uuid.UUID)
	return id, ok
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
