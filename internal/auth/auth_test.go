package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret"

func signTestToken(t *testing.T, subject, role, secret string, expiresIn time.Duration) string {
	t.Helper()

	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			Audience:  []string{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(expiresIn)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	require.NoError(t, err)
	return token
}

func TestValidateToken(t *testing.T) {
	token := signTestToken(t, "consumer-42", RoleConsumer, testSecret, time.Hour)

	claims, err := ValidateToken(token, testSecret)
	require.NoError(t, err)
	assert.Equal(t, "consumer-42", claims.SubjectID())
	assert.Equal(t, RoleConsumer, claims.Role)
}

func TestValidateTokenExpired(t *testing.T) {
	token := signTestToken(t, "consumer-42", RoleConsumer, testSecret, -time.Minute)

	_, err := ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateTokenWrongSecret(t *testing.T) {
	token := signTestToken(t, "consumer-42", RoleConsumer, "other-secret", time.Hour)

	_, err := ValidateToken(token, testSecret)
	assert.Error(t, err)
}

func TestValidateTokenWrongAudience(t *testing.T) {
	claims := &Claims{
		Role: RoleConsumer,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "consumer-42",
			Audience:  []string{"some-other-service"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.Error(t, err)
}

func TestValidateTokenMissingSubject(t *testing.T) {
	claims := &Claims{
		Role: RoleConsumer,
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  []string{audience},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)

	_, err = ValidateToken(token, testSecret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateTokenEmptySecret(t *testing.T) {
	_, err := ValidateToken("whatever", "")
	assert.ErrorIs(t, err, ErrEmptyJWTSecret)
}
