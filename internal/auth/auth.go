// Package auth validates bearer tokens issued by the external identity
// provider. The service never registers or stores users; consumer and owner
// IDs are opaque subjects carried in the token.
package auth

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"
)

const (
	audience = "courtslot-api"

	RoleConsumer = "consumer"
	RoleOwner    = "owner"
	RoleAdmin    = "admin"
)

var (
	ErrTokenExpired   = errors.New("token expired")
	ErrInvalidToken   = errors.New("invalid token")
	ErrEmptyJWTSecret = errors.New("jwt secret cannot be empty")
)

type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// SubjectID is the opaque consumer/owner identifier assigned by the
// identity provider.
func (c *Claims) SubjectID() string {
	return c.Subject
}

func ValidateToken(tokenString, secret string) (*Claims, error) {
	if secret == "" {
		return nil, ErrEmptyJWTSecret
	}

	token, err := jwt.ParseWithClaims(
		tokenString,
		&Claims{},
		func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, errors.New("unexpected signing method")
			}
			return []byte(secret), nil
		},
		jwt.WithAudience(audience),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}
