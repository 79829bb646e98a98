package auth

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	UseHashid  bool
	OnResponse func(resp *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

type RegisterUserResponse struct {
	User              PublicUser
	VerificationToken string
}

type RegisterUserHandler struct {
	repo   RepositoryManager
	mailer Mailer
}

func NewRegisterUserHandler(repo RepositoryManager, mailer Mailer) *RegisterUserHandler {
	if mailer == nil {
		mailer = NoopMailer()
	}
	return &RegisterUserHandler{repo: repo, mailer: mailer}
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}

	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	verificationToken := NewVerificationToken()

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// The pre-check narrows the common case; the unique index remains
		// the final arbiter under concurrent registration.
		if _, err := h.repo.Users().GetByEmail(ctx, event.Email); err == nil {
			return NewEmailInUseError(event.Email)
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing email")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.Name = event.Name
		user.Email = event.Email
		user.PasswordHash = hash
		user.Verified = false
		user.VerificationToken = &verificationToken
		if event.UseHashid {
			if id, err := hashid.NewUUID(event.Email); err == nil {
				user.ID = id
			}
		}

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

		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	if err := h.mailer.Send(ctx, MailVerification, user.Email, map[string]any{
		MailVarName:  user.Name,
		MailVarToken: verificationToken,
	}); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to send verification email")
	}

	if event.OnResponse != nil {
		event.OnResponse(&RegisterUserResponse{
			User:              user.Public(),
			VerificationToken: verificationToken,
		})
	}

	return nil
}
