package auth

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestUserPublic(t *testing.T) {
	hash := "bcrypt-hash"
	token := "session-token"

	user := &User{
		ID:           uuid.New(),
		Name:         "Pepe Rone",
		Email:        "pepe.rone@example.com",
		PasswordHash: hash,
		SessionToken: &token,
	}

	public := user.Public()

	assert.Equal(t, user.ID, public.ID)
	assert.Equal(t, user.Name, public.Name)
	assert.Equal(t, user.Email, public.Email)

	raw, err := json.Marshal(public)
	assert.NoError(t, err)
	assert.NotContains(t, string(raw), hash)
	assert.NotContains(t, string(raw), token)
}

func TestUserJSONNeverLeaksSecrets(t *testing.T) {
	hash := "bcrypt-hash"
	session := "session-token"
	verification := "verification-token"
	reset := "reset-token"

	user := &User{
		ID:                uuid.New(),
		Name:              "Pepe Rone",
		Email:             "pepe.rone@example.com",
		PasswordHash:      hash,
		SessionToken:      &session,
		VerificationToken: &verification,
		ResetToken:        &reset,
	}

	raw, err := json.Marshal(user)
	assert.NoError(t, err)

	for _, secret := range []string{hash, session, verification, reset} {
		assert.NotContains(t, string(raw), secret)
	}
}

func TestUserSessionMatches(t *testing.T) {
	token := "the-live-session"

	tests := []struct {
		name      string
		stored    *string
		presented string
		want      bool
	}{
		{"matching token", &token, token, true},
		{"different token", &token, "some-older-session", false},
		{"no session stored", nil, token, false},
		{"empty stored session", ptr(""), "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{SessionToken: tt.stored}
			assert.Equal(t, tt.want, user.SessionMatches(tt.presented))
		})
	}
}

func TestUserResetTokenExpired(t *testing.T) {
	now := time.Now()
	token := "reset-token"

	tests := []struct {
		name      string
		token     *string
		expiresAt *time.Time
		want      bool
	}{
		{"valid pending token", &token, ptr(now.Add(time.Hour)), false},
		{"past expiry", &token, ptr(now.Add(-time.Second)), true},
		{"exactly at expiry", &token, ptr(now), true},
		{"no token", nil, ptr(now.Add(time.Hour)), true},
		{"no expiry", &token, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			user := &User{ResetToken: tt.token, ResetTokenExpiresAt: tt.expiresAt}
			assert.Equal(t, tt.want, user.ResetTokenExpired(now))
		})
	}
}

func ptr[T any](v T) *T {
	return &v
}
