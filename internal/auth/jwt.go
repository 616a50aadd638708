package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

const accessTokenType = "access"

type TokenConfig struct {
	Secret    string
	Issuer    string
	AccessTTL time.Duration
}

type Claims struct {
	TokenType string `json:"token_type"`
	jwt.RegisteredClaims
}

// Token is what the password grant hands back to the client.
type Token struct {
	AccessToken string
	ExpiresIn   int64
	CreatedAt   time.Time
}

type TokenManager struct {
	config TokenConfig
	now    func() time.Time
}

func NewTokenManager(config TokenConfig) *TokenManager {
	if config.AccessTTL <= 0 {
		config.AccessTTL = 2 * time.Hour
	}
	return &TokenManager{config: config, now: time.Now}
}

func (m *TokenManager) IssueAccessToken(userID uuid.UUID) (*Token, error) {
	now := m.now()
	claims := Claims{
		TokenType: accessTokenType,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    m.config.Issuer,
			Subject:   userID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.config.AccessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.config.Secret))
	if err != nil {
		return nil, err
	}

	return &Token{
		AccessToken: signed,
		ExpiresIn:   int64(m.config.AccessTTL.Seconds()),
		CreatedAt:   now,
	}, nil
}

// ValidateAccessToken resolves a bearer token to the id of the user it was issued for.
func (m *TokenManager) ValidateAccessToken(tokenString string) (uuid.UUID, error) {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	}
	if m.config.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(m.config.Issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(m.config.Secret), nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return uuid.Nil, ErrExpiredToken
		}
		return uuid.Nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.TokenType != accessTokenType {
		return uuid.Nil, ErrInvalidToken
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}
	return userID, nil
}
