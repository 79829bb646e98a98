package auth

import "context"

// MailKind selects an outbound email template.
type MailKind = string

const (
	// MailVerification is the account-verification email.
	MailVerification MailKind = "verification"
	// MailRecovery is the password-recovery email.
	MailRecovery MailKind = "recovery"
)

// Mail variable keys shared between lifecycle handlers and mailer
// implementations.
const (
	MailVarName  = "name"
	MailVarToken = "token"
)

// Mailer delivers transactional email. Implementations are fire-and-forget
// from the lifecycle's perspective; failures surface as internal errors and
// are never retried here.
type Mailer interface {
	Send(ctx context.Context, kind MailKind, recipient string, vars map[string]any) error
}

type noopMailer struct{}

func (noopMailer) Send(ctx context.Context, kind MailKind, recipient string, vars map[string]any) error {
	return nil
}

// NoopMailer returns a Mailer that drops every message. Useful for tests and
// for running without delivery credentials.
func NoopMailer() Mailer {
	return noopMailer{}
}

// LogMailer logs outgoing mail instead of delivering it.
type LogMailer struct {
	Logger Logger
}

func (m LogMailer) Send(ctx context.Context, kind MailKind, recipient string, vars map[string]any) error {
	logger := m.Logger
	if logger == nil {
		logger = defLogger{}
	}
	logger.Info("mail dispatch", "kind", kind, "to", recipient, "vars", vars)
	return nil
}
