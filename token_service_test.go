package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/nastiaknik/go-contacts-auth"
)

type stubIdentity struct {
	id    string
	name  string
	email string
}

func (s stubIdentity) ID() string    { return s.id }
func (s stubIdentity) Name() string  { return s.name }
func (s stubIdentity) Email() string { return s.email }

func TestTokenServiceGenerate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	service := auth.NewTokenService(signingKey, 23, "test-issuer", jwt.ClaimStrings{"test-audience"}, testLogger{})

	t.Run("generates a token carrying the account id", func(t *testing.T) {
		identity := stubIdentity{id: "0d3e41bc-6849-4dbc-a39a-6c6d5fdfde39", email: "pepe@example.com"}

		tokenString, err := service.Generate(identity)
		require.NoError(t, err)
		require.NotEmpty(t, tokenString)

		claims, err := service.Validate(tokenString)
		require.NoError(t, err)

		assert.Equal(t, identity.id, claims.UserID())
		assert.Equal(t, identity.id, claims.Subject())
	})

	t.Run("expiry tracks the configured hours", func(t *testing.T) {
		tokenString, err := service.Generate(stubIdentity{id: "abc"})
		require.NoError(t, err)

		claims, err := service.Validate(tokenString)
		require.NoError(t, err)

		want := time.Now().Add(23 * time.Hour)
		assert.WithinDuration(t, want, claims.Expires(), time.Minute)
	})

	t.Run("nil identity is rejected", func(t *testing.T) {
		_, err := service.Generate(nil)
		assert.Error(t, err)
	})

	t.Run("empty signing key is rejected", func(t *testing.T) {
		svc := auth.NewTokenService(nil, 23, "", nil, testLogger{})
		_, err := svc.Generate(stubIdentity{id: "abc"})
		assert.ErrorIs(t, err, auth.ErrMissingSigningKey)
	})
}

func TestTokenServiceValidate(t *testing.T) {
	signingKey := []byte("test-signing-key")
	service := auth.NewTokenService(signingKey, 23, "test-issuer", jwt.ClaimStrings{"test-audience"}, testLogger{})

	t.Run("rejects garbage tokens as malformed", func(t *testing.T) {
		_, err := service.Validate("not-a-token")
		require.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("rejects tokens signed with a different key", func(t *testing.T) {
		other := auth.NewTokenService([]byte("some-other-key"), 23, "test-issuer", jwt.ClaimStrings{"test-audience"}, testLogger{})
		tokenString, err := other.Generate(stubIdentity{id: "abc"})
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		require.Error(t, err)
		assert.True(t, auth.IsMalformedError(err))
	})

	t.Run("rejects expired tokens", func(t *testing.T) {
		expired := auth.NewTokenService(signingKey, -1, "test-issuer", jwt.ClaimStrings{"test-audience"}, testLogger{})
		tokenString, err := expired.Generate(stubIdentity{id: "abc"})
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.ErrorIs(t, err, auth.ErrTokenExpired)
		assert.True(t, auth.IsTokenExpiredError(err))
	})

	t.Run("rejects issuer mismatch", func(t *testing.T) {
		other := auth.NewTokenService(signingKey, 23, "rogue-issuer", jwt.ClaimStrings{"test-audience"}, testLogger{})
		tokenString, err := other.Generate(stubIdentity{id: "abc"})
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
	})

	t.Run("rejects the none algorithm", func(t *testing.T) {
		token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "abc"})
		tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = service.Validate(tokenString)
		assert.Error(t, err)
	})
}
