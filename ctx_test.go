package auth

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestWithContextRoundTrip(t *testing.T) {
	user := &User{
		ID:    uuid.New(),
		Email: "pepe@example.com",
	}

	ctx := WithContext(context.Background(), user)

	got, ok := FromContext(ctx)
	assert.True(t, ok)
	assert.Equal(t, user, got)
}

func TestFromContextMissingUser(t *testing.T) {
	got, ok := FromContext(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
}

func TestOwnerScope(t *testing.T) {
	user := &User{ID: uuid.New()}
	ctx := WithContext(context.Background(), user)

	scope, ok := OwnerScope(ctx)
	assert.True(t, ok)
	assert.Equal(t, user.ID.String(), scope)

	_, ok = OwnerScope(context.Background())
	assert.False(t, ok)
}
