package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"

	auth "github.com/nastiaknik/go-contacts-auth"
)

func TestSessionClaimsAccessors(t *testing.T) {
	issued := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)
	expires := issued.Add(23 * time.Hour)

	claims := &auth.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "8f1c7d8e-8f3a-4a26-a3ef-bd4ad86e5a1a",
			IssuedAt:  jwt.NewNumericDate(issued),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UID: "8f1c7d8e-8f3a-4a26-a3ef-bd4ad86e5a1a",
	}

	assert.Equal(t, "8f1c7d8e-8f3a-4a26-a3ef-bd4ad86e5a1a", claims.Subject())
	assert.Equal(t, "8f1c7d8e-8f3a-4a26-a3ef-bd4ad86e5a1a", claims.UserID())
	assert.Equal(t, issued, claims.IssuedAt())
	assert.Equal(t, expires, claims.Expires())
}

func TestSessionClaimsUserIDFallsBackToSubject(t *testing.T) {
	claims := &auth.SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject: "subject-id",
		},
	}

	assert.Equal(t, "subject-id", claims.UserID())
}

func TestSessionClaimsZeroTimes(t *testing.T) {
	claims := &auth.SessionClaims{}

	assert.True(t, claims.Expires().IsZero())
	assert.True(t, claims.IssuedAt().IsZero())
}
