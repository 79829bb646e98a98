// Package sendgrid delivers lifecycle email through the SendGrid v3 API.
package sendgrid

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/goliatone/go-errors"

	auth "github.com/nastiaknik/go-contacts-auth"
)

const defaultBaseURL = "https://api.sendgrid.com"

// Config holds SendGrid delivery configuration.
type Config struct {
	APIKey string
	// From is the verified sender address.
	From string
	// FrontendBaseURL prefixes the verification and recovery links embedded
	// in the email body.
	FrontendBaseURL string
	// BaseURL overrides the SendGrid API endpoint, mostly for tests.
	BaseURL string
}

// Mailer implements auth.Mailer on top of SendGrid.
type Mailer struct {
	cfg    Config
	client *resty.Client
}

// New creates a SendGrid mailer.
func New(cfg Config) *Mailer {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(10 * time.Second).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json")

	return &Mailer{cfg: cfg, client: client}
}

// Send renders the template for kind and posts it to SendGrid.
func (m *Mailer) Send(ctx context.Context, kind auth.MailKind, recipient string, vars map[string]any) error {
	subject, body, err := m.render(kind, vars)
	if err != nil {
		return err
	}

	payload := mailSendRequest{
		Personalizations: []personalization{
			{To: []address{{Email: recipient}}},
		},
		From:    address{Email: m.cfg.From},
		Subject: subject,
		Content: []content{{Type: "text/html", Value: body}},
	}

	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(payload).
		Post("/v3/mail/send")
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "sendgrid request failed")
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		return errors.New("sendgrid rejected message", errors.CategoryInternal).
			WithMetadata(map[string]any{
				"status": resp.StatusCode(),
				"body":   resp.String(),
				"kind":   kind,
			})
	}

	return nil
}

func (m *Mailer) render(kind auth.MailKind, vars map[string]any) (string, string, error) {
	name, _ := vars[auth.MailVarName].(string)
	token, _ := vars[auth.MailVarToken].(string)

	data := templateData{
		Name: name,
		Link: m.link(kind, token),
	}

	var tmpl *template.Template
	var subject string

	switch kind {
	case auth.MailVerification:
		tmpl, subject = verificationTmpl, "Account Verification for Contact Book App"
	case auth.MailRecovery:
		tmpl, subject = recoveryTmpl, "Password Reset for Contact Book App"
	default:
		return "", "", errors.New(fmt.Sprintf("unknown mail kind: %s", kind), errors.CategoryBadInput)
	}

	var buf strings.Builder
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", "", errors.Wrap(err, errors.CategoryInternal, "failed to render email body")
	}

	return subject, buf.String(), nil
}

func (m *Mailer) link(kind auth.MailKind, token string) string {
	base := strings.TrimRight(m.cfg.FrontendBaseURL, "/")
	if kind == auth.MailRecovery {
		return base + "/auth/recovery/" + token
	}
	return base + "/auth/verify/" + token
}

type templateData struct {
	Name string
	Link string
}

type mailSendRequest struct {
	Personalizations []personalization `json:"personalizations"`
	From             address           `json:"from"`
	Subject          string            `json:"subject"`
	Content          []content         `json:"content"`
}

type personalization struct {
	To []address `json:"to"`
}

type address struct {
	Email string `json:"email"`
}

type content struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

var verificationTmpl = template.Must(template.New("verification").Parse(`
<div style="font-family: Arial, sans-serif; background-color: #f4f4f4; text-align: center; padding: 20px;">
  <div style="background-color: #ffffff; max-width: 600px; margin: 0 auto; border-radius: 5px; box-shadow: 0 0 10px rgba(0, 0, 0, 0.1); padding: 20px;">
    <h2 style="color: #333; margin-bottom: 20px;">Confirm your email</h2>
    <p style="color: #333; font-size: 16px; margin-bottom: 15px;">
      Hi {{.Name}},
    </p>
    <p style="color: #555; font-size: 16px;">
      Thank you for choosing Contact Book. To complete your account setup, please verify your email by clicking the link below:
    </p>
    <a style="display: inline-block; background-color: #007BFF; color: #fff; text-decoration: none; padding: 10px 20px; border-radius: 5px; margin-top: 20px; font-weight: bold;" target="_blank" href="{{.Link}}">
      Verify Your Account
    </a>
  </div>
</div>
`))

var recoveryTmpl = template.Must(template.New("recovery").Parse(`
<div style="font-family: Arial, sans-serif; background-color: #f4f4f4; text-align: center; padding: 20px;">
  <div style="background-color: #ffffff; max-width: 600px; margin: 0 auto; border-radius: 5px; box-shadow: 0 0 10px rgba(0, 0, 0, 0.1); padding: 20px;">
    <h2 style="color: #333;">Password Reset</h2>
    <p style="color: #333; font-size: 16px; margin-bottom: 15px;">
      Hello {{.Name}},
    </p>
    <p style="color: #333; font-size: 16px;">
      You've requested a password reset for your Contact Book App account. To change your password, please click the link below:
    </p>
    <a style="display: inline-block; background-color: #007BFF; color: #fff; text-decoration: none; padding: 10px 20px; border-radius: 5px; margin-top: 20px; font-weight: bold;" target="_blank" href="{{.Link}}">
      Reset Your Password
    </a>
    <p style="color: #555; font-size: 16px; margin-top: 20px;">
      If you didn't request this password reset, please ignore this email.
    </p>
  </div>
</div>
`))

var _ auth.Mailer = (*Mailer)(nil)
