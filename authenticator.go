package auth

import (
	"context"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Auther orchestrates credential verification and session issuance
type Auther struct {
	provider     IdentityProvider
	store        Users
	tokenService TokenService
	logger       Logger
}

// NewAuthenticator returns a new Authenticator
func NewAuthenticator(provider IdentityProvider, store Users, cfg Config) *Auther {
	tokenService := NewTokenService(
		[]byte(cfg.GetSigningKey()),
		cfg.GetTokenExpiration(),
		cfg.GetIssuer(),
		cfg.GetAudience(),
		defLogger{},
	)

	return &Auther{
		provider:     provider,
		store:        store,
		tokenService: tokenService,
		logger:       defLogger{},
	}
}

func (s *Auther) WithLogger(logger Logger) *Auther {
	if logger != nil {
		s.logger = logger
	}
	return s
}

// WithTokenService overrides the token service, mostly for tests.
func (s *Auther) WithTokenService(ts TokenService) *Auther {
	if ts != nil {
		s.tokenService = ts
	}
	return s
}

// TokenService returns the TokenService instance used by this Authenticator
func (s *Auther) TokenService() TokenService {
	return s.tokenService
}

// Login verifies the credentials, requires a verified account, then mints a
// session token and stores it as the account's only live session. Any prior
// session token is overwritten and stops authenticating immediately.
func (s *Auther) Login(ctx context.Context, email, password string) (string, *User, error) {
	user, err := s.provider.VerifyIdentity(ctx, email, password)
	if err != nil {
		s.logger.Error("Login verify identity error", "error", err)
		return "", nil, err
	}

	if !user.Verified {
		return "", nil, ErrEmailNotVerified
	}

	token, err := s.tokenService.Generate(NewIdentityFromUser(user))
	if err != nil {
		s.logger.Error("Login token generation error", "error", err)
		return "", nil, err
	}

	if err := s.store.SetSessionToken(ctx, user.ID, token); err != nil {
		return "", nil, errors.Wrap(err, errors.CategoryInternal, "failed to store session token")
	}

	user.SessionToken = &token

	return token, user, nil
}

// Logout clears the stored session token unconditionally.
func (s *Auther) Logout(ctx context.Context, accountID string) error {
	id, err := uuid.Parse(accountID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "invalid account id")
	}

	return s.store.ClearSessionToken(ctx, id)
}

// SessionFromToken decodes a session token into claims without touching the
// store.
func (s *Auther) SessionFromToken(token string) (AuthClaims, error) {
	return s.tokenService.Validate(token)
}

// VerifySession resolves the account behind validated claims and checks the
// presented credential against the stored session token. A token that is
// signature-valid but no longer stored (post-logout, superseded login) does
// not authenticate.
func (s *Auther) VerifySession(ctx context.Context, accountID, presented string) (*User, error) {
	user, err := s.provider.FindIdentityByID(ctx, accountID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrSessionNotActive
		}
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to resolve session account")
	}

	if !user.SessionMatches(presented) {
		return nil, ErrSessionNotActive
	}

	return user, nil
}

var _ Authenticator = (*Auther)(nil)
