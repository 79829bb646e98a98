package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

type InitializePasswordResetMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *InitializePasswordResetResponse)
}

func (p InitializePasswordResetMessage) Type() string { return "user.password_reset" }

type InitializePasswordResetResponse struct {
	User      PublicUser
	Token     string
	ExpiresAt time.Time
}

type InitializePasswordResetHandler struct {
	repo   RepositoryManager
	mailer Mailer
	ttl    time.Duration
	now    func() time.Time
}

func NewInitializePasswordResetHandler(repo RepositoryManager, mailer Mailer, ttl time.Duration) *InitializePasswordResetHandler {
	if mailer == nil {
		mailer = NoopMailer()
	}
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &InitializePasswordResetHandler{
		repo:   repo,
		mailer: mailer,
		ttl:    ttl,
		now:    time.Now,
	}
}

// WithClock overrides the time source, mostly for tests.
func (h *InitializePasswordResetHandler) WithClock(now func() time.Time) *InitializePasswordResetHandler {
	if now != nil {
		h.now = now
	}
	return h
}

func (h *InitializePasswordResetHandler) Execute(ctx context.Context, event InitializePasswordResetMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset initialization",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *InitializePasswordResetHandler) execute(ctx context.Context, event InitializePasswordResetMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return goerrors.New("User is not found", goerrors.CategoryNotFound).
				WithTextCode(TextCodeUserNotFound)
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for password reset")
	}

	token, err := NewResetToken()
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate reset token")
	}

	// A repeat request overwrites the pending pair; only the latest token
	// stays redeemable.
	expiresAt := h.now().Add(h.ttl)
	if err := h.repo.Users().SetResetToken(ctx, user.ID, token, expiresAt); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to store reset token")
	}

	if err := h.mailer.Send(ctx, MailRecovery, user.Email, map[string]any{
		MailVarName:  user.Name,
		MailVarToken: token,
	}); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send recovery email")
	}

	if event.OnResponse != nil {
		event.OnResponse(&InitializePasswordResetResponse{
			User:      user.Public(),
			Token:     token,
			ExpiresAt: expiresAt,
		})
	}

	return nil
}
