package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/example/vibrantflight/internal/models"
)

type jwtCustomClaims struct {
	ID   string      `json:"id"`
	Role models.Role `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken creates a signed JWT carrying the principal's id and role.
func GenerateToken(secret string, principal models.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &jwtCustomClaims{
		ID:   principal.ID.String(),
		Role: principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   principal.ID.String(),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken validates signature and expiry and returns the embedded principal.
func ParseToken(secret, tokenString string) (models.Principal, error) {
	token, err := jwt.ParseWithClaims(tokenString, &jwtCustomClaims{}, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.Principal{}, err
	}

	claims, ok := token.Claims.(*jwtCustomClaims)
	if !ok || !token.Valid {
		return models.Principal{}, jwt.ErrTokenInvalidClaims
	}

	id, err := uuid.Parse(claims.ID)
	if err != nil {
		return models.Principal{}, err
	}

	switch claims.Role {
	case models.RoleUser, models.RoleAdmin:
	default:
		return models.Principal{}, errors.New("token carries an unknown role")
	}

	return models.Principal{ID: id, Role: claims.Role}, nil
}
