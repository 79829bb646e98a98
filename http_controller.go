package auth

import (
	"regexp"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// emailRegExp is the validation pattern the original API contract uses.
// Matching is exact-string and case-sensitive.
var emailRegExp = regexp.MustCompile(`^\w+([.-]?\w+)*@\w+([.-]?\w+)*(\.\w{2,3})+$`)

// RegisterAuthRoutes mounts the account lifecycle routes. protected guards
// the routes that require a live session.
func RegisterAuthRoutes(router fiber.Router, controller *AuthController, protected fiber.Handler) {
	router.Post("/register", controller.Register)
	router.Post("/login", controller.Login)

	router.Get("/verify/:verificationToken", controller.VerifyEmail)
	router.Post("/verify", controller.ResendVerifyEmail)

	router.Get("/current", protected, controller.GetCurrent)
	router.Post("/logout", protected, controller.Logout)

	router.Post("/recovery", controller.RecoverPassword)
	router.Patch("/recovery/:resetToken", controller.ChangePassword)

	router.Post("/google", controller.GoogleAuth)
}

type AuthController struct {
	Logger   Logger
	Repo     RepositoryManager
	Auther   Authenticator
	Mailer   Mailer
	Tokens   TokenService
	Decoder  AssertionDecoder
	ResetTTL time.Duration
}

type AuthControllerOption func(*AuthController) *AuthController

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger:   defLogger{},
		Mailer:   NoopMailer(),
		ResetTTL: time.Hour,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Repo == nil {
		panic("Missing RepositoryManager in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Tokens == nil {
		panic("Missing TokenService in auth controller...")
	}

	return c
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func WithControllerRepo(repo RepositoryManager) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Repo = repo
		return c
	}
}

func WithControllerAuther(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerMailer(mailer Mailer) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if mailer != nil {
			c.Mailer = mailer
		}
		return c
	}
}

func WithControllerTokens(tokens TokenService) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Tokens = tokens
		return c
	}
}

func WithControllerDecoder(decoder AssertionDecoder) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Decoder = decoder
		return c
	}
}

func WithControllerResetTTL(ttl time.Duration) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if ttl > 0 {
			c.ResetTTL = ttl
		}
		return c
	}
}

// RegisterPayload is the registration body
type RegisterPayload struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r RegisterPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Name, validation.Required),
		validation.Field(&r.Email, validation.Required, validation.Match(emailRegExp)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AuthController) Register(ctx *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := ctx.BodyParser(payload); err != nil {
		a.Logger.Error("register user parse payload: ", "error", err)
		return RenderValidationError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		a.Logger.Error("register user validate payload: ", "error", err)
		return RenderValidationError(ctx, err)
	}

	var res *RegisterUserResponse

	req := RegisterUserMessage{
		Name:     payload.Name,
		Email:    payload.Email,
		Password: payload.Password,
		OnResponse: func(resp *RegisterUserResponse) {
			res = resp
		},
	}

	registerUser := NewRegisterUserHandler(a.Repo, a.Mailer)
	if err := registerUser.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("register user error: ", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.Status(fiber.StatusCreated).JSON(fiber.Map{
		"user":              res.User,
		"verificationToken": res.VerificationToken,
	})
}

// LoginPayload is the login body
type LoginPayload struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate will run validation rules
func (r LoginPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Match(emailRegExp)),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AuthController) Login(ctx *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := ctx.BodyParser(payload); err != nil {
		return RenderValidationError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(ctx, err)
	}

	token, user, err := a.Auther.Login(ctx.Context(), payload.Email, payload.Password)
	if err != nil {
		a.Logger.Error("login error: ", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"token": token,
		"user":  user.Public(),
	})
}

func (a *AuthController) VerifyEmail(ctx *fiber.Ctx) error {
	token := ctx.Params("verificationToken")

	verify := NewVerifyEmailHandler(a.Repo)
	if err := verify.Execute(ctx.Context(), VerifyEmailMessage{Token: token}); err != nil {
		return RenderError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Verification successful",
	})
}

// EmailPayload carries the single email field used by verification resend
// and password recovery.
type EmailPayload struct {
	Email string `json:"email"`
}

// Validate will run validation rules
func (r EmailPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Match(emailRegExp)),
	)
}

func (a *AuthController) ResendVerifyEmail(ctx *fiber.Ctx) error {
	payload := new(EmailPayload)

	if err := ctx.BodyParser(payload); err != nil {
		return RenderValidationError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(ctx, err)
	}

	resend := NewResendVerificationHandler(a.Repo, a.Mailer)
	if err := resend.Execute(ctx.Context(), ResendVerificationMessage{Email: payload.Email}); err != nil {
		return RenderError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Verification email sent",
	})
}

func (a *AuthController) GetCurrent(ctx *fiber.Ctx) error {
	user, ok := FromContext(ctx.UserContext())
	if !ok {
		return RenderError(ctx, ErrSessionNotActive)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"id":    user.ID,
		"name":  user.Name,
		"email": user.Email,
	})
}

func (a *AuthController) Logout(ctx *fiber.Ctx) error {
	user, ok := FromContext(ctx.UserContext())
	if !ok {
		return RenderError(ctx, ErrSessionNotActive)
	}

	if err := a.Auther.Logout(ctx.Context(), user.ID.String()); err != nil {
		a.Logger.Error("logout error: ", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Logout success",
	})
}

func (a *AuthController) RecoverPassword(ctx *fiber.Ctx) error {
	payload := new(EmailPayload)

	if err := ctx.BodyParser(payload); err != nil {
		return RenderValidationError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(ctx, err)
	}

	initReset := NewInitializePasswordResetHandler(a.Repo, a.Mailer, a.ResetTTL)
	if err := initReset.Execute(ctx.Context(), InitializePasswordResetMessage{Email: payload.Email}); err != nil {
		a.Logger.Error("password recovery error: ", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Recovery email is sent",
	})
}

// ChangePasswordPayload is the reset finalization body
type ChangePasswordPayload struct {
	Password string `json:"password"`
}

// Validate will run validation rules
func (r ChangePasswordPayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Password, validation.Required, validation.Length(6, 100)),
	)
}

func (a *AuthController) ChangePassword(ctx *fiber.Ctx) error {
	payload := new(ChangePasswordPayload)

	if err := ctx.BodyParser(payload); err != nil {
		return RenderValidationError(ctx, err)
	}

	if err := payload.Validate(); err != nil {
		return RenderValidationError(ctx, err)
	}

	var res *FinalizePasswordResetResponse

	req := FinalizePasswordResetMessage{
		Token:    ctx.Params("resetToken"),
		Password: payload.Password,
		OnResponse: func(resp *FinalizePasswordResetResponse) {
			res = resp
		},
	}

	finalize := NewFinalizePasswordResetHandler(a.Repo)
	if err := finalize.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("password reset error: ", "error", err)
		return RenderError(ctx, err)
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"message": "Password is successfully changed",
		"user":    res.User,
	})
}

// GooglePayload is the federated login body
type GooglePayload struct {
	GoogleToken string `json:"googleToken"`
}

// Validate will run validation rules
func (r GooglePayload) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.GoogleToken, validation.Required),
	)
}

func (a *AuthController) GoogleAuth(ctx *fiber.Ctx) error {
	payload := new(GooglePayload)

	if err := ctx.BodyParser(payload); err != nil {
		return RenderValidationError(ctx, err)
	}

	// The only field is the assertion, so any validation failure collapses
	// into the missing-token contract error.
	if err := payload.Validate(); err != nil {
		return RenderError(ctx, ErrAssertionMissing)
	}

	if a.Decoder == nil {
		return RenderError(ctx, goerrors.New("google login is not configured", goerrors.CategoryInternal))
	}

	var res *GoogleLoginResponse

	req := GoogleLoginMessage{
		Assertion: payload.GoogleToken,
		OnResponse: func(resp *GoogleLoginResponse) {
			res = resp
		},
	}

	googleLogin := NewGoogleLoginHandler(a.Repo, a.Decoder, a.Tokens)
	if err := googleLogin.Execute(ctx.Context(), req); err != nil {
		a.Logger.Error("google login error: ", "error", err)
		return RenderError(ctx, err)
	}

	status := fiber.StatusOK
	message := "Logged in with Google successfully"
	if res.Created {
		status = fiber.StatusCreated
		message = "Registered with Google successfully"
	}

	return ctx.Status(status).JSON(fiber.Map{
		"user":    res.User,
		"token":   res.Token,
		"message": message,
	})
}
