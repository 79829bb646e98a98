package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the account model. Exactly one account exists per email value;
// uniqueness is enforced by the store at write time.
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`

	ID   uuid.UUID `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Name string    `bun:"name,notnull" json:"name,omitempty"`
	// Email matching is exact-string, per the validation pattern.
	Email string `bun:"email,notnull,unique" json:"email,omitempty"`
	// PasswordHash is empty for federated-only accounts.
	PasswordHash string `bun:"password_hash" json:"-"`
	Verified     bool   `bun:"is_verified" json:"is_verified,omitempty"`
	// VerificationToken is present while the account is unverified and is
	// cleared exactly once verification succeeds.
	VerificationToken *string `bun:"verification_token,nullzero" json:"-"`
	// SessionToken mirrors the most recently issued session credential. A
	// presented token authenticates only while byte-equal to this value.
	SessionToken        *string    `bun:"session_token,nullzero" json:"-"`
	ResetToken          *string    `bun:"reset_token,nullzero" json:"-"`
	ResetTokenExpiresAt *time.Time `bun:"reset_token_expires_at,nullzero" json:"-"`
	CreatedAt           *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt           *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
}

// PublicUser is the projection of an account that is safe to return to
// callers. It never carries the password hash or any token material.
type PublicUser struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
}

// Public returns the caller-facing projection of the user.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:    u.ID,
		Name:  u.Name,
		Email: u.Email,
	}
}

// HasSession reports whether the account currently holds a live session token.
func (u *User) HasSession() bool {
	return u.SessionToken != nil && *u.SessionToken != ""
}

// SessionMatches compares a presented credential against the stored session
// token. Comparison is byte equality only.
func (u *User) SessionMatches(token string) bool {
	return u.HasSession() && *u.SessionToken == token
}

// ResetTokenExpired reports whether the pending reset token, if any, is past
// its expiry at the given instant. A missing pair counts as expired.
func (u *User) ResetTokenExpired(now time.Time) bool {
	if u.ResetToken == nil || u.ResetTokenExpiresAt == nil {
		return true
	}
	return !now.Before(*u.ResetTokenExpiresAt)
}
