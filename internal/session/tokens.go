package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/terraincognita07/dentclinic/internal/models"
)

const DefaultTokenTTL = 7 * 24 * time.Hour

type sessionClaims struct {
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// Tokens signs identities into HS256 session tokens.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: secret, ttl: ttl, now: time.Now}
}

func (tokens *Tokens) TTL() time.Duration {
	return tokens.ttl
}

func (tokens *Tokens) Issue(identity models.Identity) (string, error) {
	if identity.ID == "" {
		return "", errors.New("identity id is required")
	}
	now := tokens.now()

	claims := sessionClaims{
		UserID: identity.ID,
		Email:  identity.Email,
		Role:   identity.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID,
			ExpiresAt: jwt.NewNumericDate(now.Add(tokens.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(tokens.secret)
	if err != nil {
		return "", fmt.Errorf("sign session token: %w", err)
	}
	return signed, nil
}

func (tokens *Tokens) Parse(raw string) (models.Identity, error) {
	if raw == "" {
		return models.Identity{}, errors.New("missing token")
	}

	claims := &sessionClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return tokens.secret, nil
	}, jwt.WithExpirationRequired(), jwt.WithTimeFunc(tokens.now))
	if err != nil || !token.Valid {
		return models.Identity{}, errors.New("invalid token")
	}
	if claims.UserID == "" {
		return models.Identity{}, errors.New("invalid token")
	}

	return models.Identity{ID: claims.UserID, Email: claims.Email, Role: claims.Role}, nil
}
