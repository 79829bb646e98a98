package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/nastiaknik/go-contacts-auth/middleware/sessionware"
)

// SessionVerifier resolves a validated token back to its live session owner.
type SessionVerifier interface {
	VerifySession(ctx context.Context, accountID, presented string) (*User, error)
}

// NewSessionGuard builds the middleware protecting authenticated routes. The
// token signature check is only the first gate: the account must still hold
// the presented token as its live session, so logout and superseded logins
// revoke outstanding tokens immediately.
func NewSessionGuard(auther SessionVerifier, tokens TokenValidator, cfg Config, logger Logger) fiber.Handler {
	if logger == nil {
		logger = defLogger{}
	}

	return sessionware.New(sessionware.Config{
		TokenValidator: validatorAdapter{tokens},
		AuthScheme:     cfg.GetAuthScheme(),
		ContextKey:     cfg.GetContextKey(),
		SessionResolver: func(ctx context.Context, accountID, token string) (any, error) {
			return auther.VerifySession(ctx, accountID, token)
		},
		ContextEnricher: func(ctx context.Context, session any) context.Context {
			if user, ok := session.(*User); ok {
				return WithContext(ctx, user)
			}
			return ctx
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			logger.Info("Session guard rejected request", "error", err, "path", c.OriginalURL())
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"status":  fiber.StatusUnauthorized,
				"message": "Not authorized",
			})
		},
	})
}

type validatorAdapter struct {
	tokens TokenValidator
}

func (v validatorAdapter) Validate(tokenString string) (sessionware.AuthClaims, error) {
	claims, err := v.tokens.Validate(tokenString)
	if err != nil {
		return nil, err
	}
	return claims, nil
}
