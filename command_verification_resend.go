package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
)

type ResendVerificationMessage struct {
	Email      string `json:"email"`
	OnResponse func(resp *ResendVerificationResponse)
}

func (e ResendVerificationMessage) Type() string { return "user.verification_resend" }

type ResendVerificationResponse struct {
	User PublicUser
}

type ResendVerificationHandler struct {
	repo   RepositoryManager
	mailer Mailer
}

func NewResendVerificationHandler(repo RepositoryManager, mailer Mailer) *ResendVerificationHandler {
	if mailer == nil {
		mailer = NoopMailer()
	}
	return &ResendVerificationHandler{repo: repo, mailer: mailer}
}

func (h *ResendVerificationHandler) Execute(ctx context.Context, event ResendVerificationMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during verification resend")
	default:
		return h.execute(ctx, event)
	}
}

func (h *ResendVerificationHandler) execute(ctx context.Context, event ResendVerificationMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrUserNotFound
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for verification resend")
	}

	if user.Verified {
		return ErrAlreadyVerified
	}

	// Resend reuses the stored token; it is not regenerated.
	token := ""
	if user.VerificationToken != nil {
		token = *user.VerificationToken
	}

	if err := h.mailer.Send(ctx, MailVerification, user.Email, map[string]any{
		MailVarName:  user.Name,
		MailVarToken: token,
	}); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send verification email")
	}

	if event.OnResponse != nil {
		event.OnResponse(&ResendVerificationResponse{User: user.Public()})
	}

	return nil
}
