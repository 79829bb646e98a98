package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

type GoogleLoginMessage struct {
	Assertion  string `json:"googleToken"`
	OnResponse func(resp *GoogleLoginResponse)
}

func (e GoogleLoginMessage) Type() string { return "user.google_login" }

type GoogleLoginResponse struct {
	User    PublicUser
	Token   string
	Created bool
}

// GoogleLoginHandler reconciles a federated identity assertion with local
// accounts. Strictly either-or: an unknown email creates a verified account,
// a known email upgrades the existing one; never both.
type GoogleLoginHandler struct {
	repo    RepositoryManager
	decoder AssertionDecoder
	tokens  TokenService
}

func NewGoogleLoginHandler(repo RepositoryManager, decoder AssertionDecoder, tokens TokenService) *GoogleLoginHandler {
	return &GoogleLoginHandler{
		repo:    repo,
		decoder: decoder,
		tokens:  tokens,
	}
}

func (h *GoogleLoginHandler) Execute(ctx context.Context, event GoogleLoginMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during google login")
	default:
		return h.execute(ctx, event)
	}
}

func (h *GoogleLoginHandler) execute(ctx context.Context, event GoogleLoginMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	if event.Assertion == "" {
		return ErrAssertionMissing
	}

	profile, err := h.decoder.Decode(ctx, event.Assertion)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryBadInput, "failed to decode google token")
	}

	user, err := h.repo.Users().GetByEmail(ctx, profile.Email)
	if err != nil && !repository.IsRecordNotFound(err) {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to look up federated account")
	}

	if user == nil || repository.IsRecordNotFound(err) {
		return h.createAccount(ctx, profile, event)
	}

	return h.loginExisting(ctx, user, event)
}

// createAccount provisions a federated-only account: verified from the
// start, no password hash, session issued immediately.
func (h *GoogleLoginHandler) createAccount(ctx context.Context, profile *ExternalProfile, event GoogleLoginMessage) error {
	user := &User{
		Name:     profile.Name,
		Email:    profile.Email,
		Verified: true,
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		var err error
		if user, err = h.repo.Users().RegisterTx(ctx, tx, user); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to create federated account")
	}

	token, err := h.tokens.Generate(NewIdentityFromUser(user))
	if err != nil {
		return err
	}

	if err := h.repo.Users().SetSessionToken(ctx, user.ID, token); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store session token")
	}

	if event.OnResponse != nil {
		event.OnResponse(&GoogleLoginResponse{
			User:    user.Public(),
			Token:   token,
			Created: true,
		})
	}

	return nil
}

func (h *GoogleLoginHandler) loginExisting(ctx context.Context, user *User, event GoogleLoginMessage) error {
	token, err := h.tokens.Generate(NewIdentityFromUser(user))
	if err != nil {
		return err
	}

	// Marks verified idempotently, clears any stale verification token, and
	// overwrites the stored session in one statement.
	updated, err := h.repo.Users().FederatedVerify(ctx, user.ID, token)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to reconcile federated account")
	}

	if event.OnResponse != nil {
		event.OnResponse(&GoogleLoginResponse{
			User:    updated.Public(),
			Token:   token,
			Created: false,
		})
	}

	return nil
}
