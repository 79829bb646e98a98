package auth

import "context"

var userCtxKey = &contextKey{"user"}

type contextKey struct {
	name string
}

// WithContext sets the authenticated User in the given context. Only the
// session guard produces authenticated contexts; downstream handlers treat
// the presence of a user as proof the request cleared authentication.
func WithContext(r context.Context, user *User) context.Context {
	return context.WithValue(r, userCtxKey, user)
}

// FromContext finds the authenticated user from the context.
func FromContext(ctx context.Context) (*User, bool) {
	raw, ok := ctx.Value(userCtxKey).(*User)
	return raw, ok
}

// OwnerScope returns the account id downstream resource layers use to scope
// their queries, or false when the context is unauthenticated.
func OwnerScope(ctx context.Context) (string, bool) {
	user, ok := FromContext(ctx)
	if !ok {
		return "", false
	}
	return user.ID.String(), true
}
