package auth

import (
	"context"
	"errors"
	"time"

	"chatwave/internal/domain/chatuser"
	chatwave_errors "chatwave/pkg/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Principal is the authenticated identity carried through request and task
// contexts. It is captured at pool-submission time and reinstalled on the
// worker goroutine, so async work observes the identity of the request that
// submitted it.
type Principal struct {
	UserID   uuid.UUID
	Username string
	Role     chatuser.Role
}

type ctxKey string

var principalKey ctxKey = "principal"

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (Principal, bool) {
	value := ctx.Value(principalKey)
	if value == nil {
		return Principal{}, false
	}
	p, ok := value.(Principal)
	return p, ok
}

type Claims struct {
	UserID   string `json:"uid"`
	Username string `json:"username"`
	Role     string `json:"role"`
	jwt.RegisteredClaims
}

type TokenParser struct {
	secret []byte
}

func NewTokenParser(secret string) *TokenParser {
	return &TokenParser{secret: []byte(secret)}
}

// ParseAccessToken validates the signature and expiry of an access token
// issued by the identity provider and returns the embedded principal.
func (p *TokenParser) ParseAccessToken(token string) (Principal, error) {
	if token == "" {
		return Principal{}, chatwave_errors.ErrUnauthorized
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return p.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Principal{}, chatwave_errors.ErrUnauthorized
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return Principal{}, chatwave_errors.ErrUnauthorized
	}

	userID, err := uuid.Parse(claims.UserID)
	if err != nil {
		return Principal{}, chatwave_errors.ErrUnauthorized
	}

	return Principal{
		UserID:   userID,
		Username: claims.Username,
		Role:     chatuser.Role(claims.Role),
	}, nil
}
