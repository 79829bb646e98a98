package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

type FinalizePasswordResetMessage struct {
	Token      string `json:"resetToken"`
	Password   string `json:"password"`
	OnResponse func(resp *FinalizePasswordResetResponse)
}

func (p FinalizePasswordResetMessage) Type() string { return "user.password_reset_finalize" }

type FinalizePasswordResetResponse struct {
	User PublicUser
}

type FinalizePasswordResetHandler struct {
	repo RepositoryManager
	now  func() time.Time
}

// NewFinalizePasswordResetHandler creates a handler with sane defaults.
func NewFinalizePasswordResetHandler(repo RepositoryManager) *FinalizePasswordResetHandler {
	return &FinalizePasswordResetHandler{
		repo: repo,
		now:  time.Now,
	}
}

// WithClock overrides the time source, mostly for tests.
func (h *FinalizePasswordResetHandler) WithClock(now func() time.Time) *FinalizePasswordResetHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *FinalizePasswordResetHandler) Execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset finalization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *FinalizePasswordResetHandler) execute(ctx context.Context, event FinalizePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByResetToken(ctx, event.Token)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return goerrors.New("User is not found", goerrors.CategoryNotFound).
				WithTextCode(TextCodeUserNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "could not retrieve password reset request")
	}

	now := h.now()

	if user.ResetToken == nil || *user.ResetToken != event.Token || user.ResetTokenExpired(now) {
		return ErrResetTokenInvalid
	}

	passwordHash, err := HashPassword(event.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash new password")
	}

	// The redemption itself is a conditional update keyed on the token value
	// and expiry; a concurrent redemption that lost the race finds no row.
	updated, err := h.repo.Users().ConsumeResetToken(ctx, event.Token, passwordHash, now)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to finalize password reset")
	}

	if event.OnResponse != nil {
		event.OnResponse(&FinalizePasswordResetResponse{User: updated.Public()})
	}

	return nil
}
