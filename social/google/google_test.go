package google_test

import (
	"context"
	"testing"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nastiaknik/go-contacts-auth/social/google"
)

func signedAssertion(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	assertion, err := token.SignedString([]byte("google-side-secret"))
	require.NoError(t, err)
	return assertion
}

func TestDecoderDecode(t *testing.T) {
	ctx := context.Background()

	decoder, err := google.New(google.Config{})
	require.NoError(t, err)

	t.Run("extracts name and email from the payload", func(t *testing.T) {
		assertion := signedAssertion(t, jwt.MapClaims{
			"email": "pepe.rone@example.com",
			"name":  "Pepe Rone",
		})

		profile, err := decoder.Decode(ctx, assertion)
		require.NoError(t, err)

		assert.Equal(t, "pepe.rone@example.com", profile.Email)
		assert.Equal(t, "Pepe Rone", profile.Name)
	})

	t.Run("falls back to given and family name", func(t *testing.T) {
		assertion := signedAssertion(t, jwt.MapClaims{
			"email":       "pepe.rone@example.com",
			"given_name":  "Pepe",
			"family_name": "Rone",
		})

		profile, err := decoder.Decode(ctx, assertion)
		require.NoError(t, err)
		assert.Equal(t, "Pepe Rone", profile.Name)
	})

	t.Run("falls back to the email local part", func(t *testing.T) {
		assertion := signedAssertion(t, jwt.MapClaims{
			"email": "pepe.rone@example.com",
		})

		profile, err := decoder.Decode(ctx, assertion)
		require.NoError(t, err)
		assert.Equal(t, "pepe.rone", profile.Name)
	})

	t.Run("missing email claim is rejected", func(t *testing.T) {
		assertion := signedAssertion(t, jwt.MapClaims{
			"name": "Pepe Rone",
		})

		_, err := decoder.Decode(ctx, assertion)
		require.Error(t, err)

		var rich *goerrors.Error
		require.ErrorAs(t, err, &rich)
		assert.Equal(t, goerrors.CategoryBadInput, rich.Category)
	})

	t.Run("garbage assertion is bad input", func(t *testing.T) {
		_, err := decoder.Decode(ctx, "not-a-jwt")
		require.Error(t, err)

		var rich *goerrors.Error
		require.ErrorAs(t, err, &rich)
		assert.Equal(t, goerrors.CategoryBadInput, rich.Category)
	})
}
