package auth

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-errors"
)

// Text codes carried by rich errors so API clients can branch without
// parsing messages.
const (
	TextCodeInvalidCreds      = "INVALID_CREDENTIALS"
	TextCodeEmailNotVerified  = "EMAIL_NOT_VERIFIED"
	TextCodeEmailInUse        = "EMAIL_IN_USE"
	TextCodeUserNotFound      = "USER_NOT_FOUND"
	TextCodeAlreadyVerified   = "ALREADY_VERIFIED"
	TextCodeResetTokenInvalid = "RESET_TOKEN_INVALID"
	TextCodeAssertionMissing  = "GOOGLE_TOKEN_MISSING"
	TextCodeTokenExpired      = "TOKEN_EXPIRED"
	TextCodeSessionNotActive  = "SESSION_NOT_ACTIVE"
	TextCodeTokenMalformed    = "TOKEN_MALFORMED"
	TextCodeEmptyPassword     = "EMPTY_PASSWORD"
	TextCodeMissingSigningKey = "MISSING_SIGNING_KEY"
)

// ErrMismatchedHashAndPassword hides whether the account or the password was
// wrong, to avoid account enumeration.
var ErrMismatchedHashAndPassword = errors.New("Email or password is incorrect", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds)

// ErrEmailNotVerified rejects logins for accounts that never confirmed email
// ownership.
var ErrEmailNotVerified = errors.New("Email is not verified", errors.CategoryAuthz).
	WithTextCode(TextCodeEmailNotVerified)

// ErrUserNotFound is the error we return for unknown emails and unknown
// single-use tokens.
var ErrUserNotFound = errors.New("User not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound)

// ErrAlreadyVerified rejects verification resends for accounts that already
// completed the flow.
var ErrAlreadyVerified = errors.New("Verification has already been passed", errors.CategoryValidation).
	WithTextCode(TextCodeAlreadyVerified)

// ErrResetTokenInvalid covers absent, mismatched, and expired reset tokens.
var ErrResetTokenInvalid = errors.New("Invalid or expired token", errors.CategoryBadInput).
	WithTextCode(TextCodeResetTokenInvalid)

// ErrAssertionMissing is returned when a federated login carries no assertion.
var ErrAssertionMissing = errors.New("Google token is missing", errors.CategoryBadInput).
	WithTextCode(TextCodeAssertionMissing)

// ErrTokenExpired marks session tokens past their embedded expiry.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired)

// ErrTokenMalformed marks session tokens we could not parse or whose
// signature did not verify.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed)

// ErrSessionNotActive rejects tokens that are cryptographically valid but no
// longer stored against the account (post-logout, superseded login, deleted
// account). Externally indistinguishable from any other bad credential.
var ErrSessionNotActive = errors.New("Not authorized", errors.CategoryAuth).
	WithTextCode(TextCodeSessionNotActive)

// ErrNoEmptyString rejects empty passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword)

// ErrMissingSigningKey is a startup misconfiguration surfaced as internal.
var ErrMissingSigningKey = errors.New("SECRET KEY is not defined", errors.CategoryInternal).
	WithTextCode(TextCodeMissingSigningKey)

// NewEmailInUseError builds the conflict error for duplicate registrations.
func NewEmailInUseError(email string) *errors.Error {
	return errors.New(fmt.Sprintf("Email %s already in use", email), errors.CategoryConflict).
		WithTextCode(TextCodeEmailInUse).
		WithMetadata(map[string]any{"email": email})
}

// IsUniqueViolation translates store-level constraint violations at the call
// site, instead of a hook attached to the persistence model. It covers the
// sqlite and postgres message shapes bun surfaces. The repository layer wraps
// driver errors in rich errors whose rendered message hides the driver text,
// so the whole chain is inspected, following Source across rich wrappers.
func IsUniqueViolation(err error) bool {
	for e := err; e != nil; {
		msg := e.Error()
		if strings.Contains(msg, "UNIQUE constraint failed") ||
			strings.Contains(msg, "duplicate key value violates unique constraint") {
			return true
		}

		if rich, ok := e.(*errors.Error); ok && rich.Source != nil {
			e = rich.Source
			continue
		}

		e = stderrors.Unwrap(e)
	}

	return false
}

// IsTokenExpiredError will check for expired tokens
func IsTokenExpiredError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrTokenExpired) {
		return true
	}
	return strings.Contains(err.Error(), "token is expired")
}

// IsMalformedError will check for error message
func IsMalformedError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(err.Error(), "token is malformed") ||
		strings.Contains(err.Error(), "missing or malformed JWT")
}
