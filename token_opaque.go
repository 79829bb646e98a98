package auth

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/google/uuid"
)

// resetTokenBytes yields 160 bits of entropy per reset token.
const resetTokenBytes = 20

// NewVerificationToken mints the single-use opaque token mailed out during
// registration. Opaque tokens are never decoded, only compared byte-equal.
func NewVerificationToken() string {
	return uuid.NewString()
}

// NewResetToken mints the single-use opaque token mailed out during password
// recovery.
func NewResetToken() (string, error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
