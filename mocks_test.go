package auth_test

import (
	"context"
	"database/sql"
	"time"

	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/uptrace/bun"

	auth "github.com/nastiaknik/go-contacts-auth"
)

func notFoundErr() error {
	return repository.NewRecordNotFound()
}

func userResult(args mock.Arguments, i int) *auth.User {
	if u, ok := args.Get(i).(*auth.User); ok {
		return u
	}
	return nil
}

// MockUsers implements auth.Users. The embedded repository interface covers
// methods no test exercises; calling one of those panics.
type MockUsers struct {
	mock.Mock
	repository.Repository[*auth.User]
}

func (m *MockUsers) Register(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	return userResult(args, 0), args.Error(1)
}

func (m *MockUsers) RegisterTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, tx, user)
	return userResult(args, 0), args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	return userResult(args, 0), args.Error(1)
}

func (m *MockUsers) GetByVerificationToken(ctx context.Context, token string) (*auth.User, error) {
	args := m.Called(ctx, token)
	return userResult(args, 0), args.Error(1)
}

func (m *MockUsers) GetByResetToken(ctx context.Context, token string) (*auth.User, error) {
	args := m.Called(ctx, token)
	return userResult(args, 0), args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id string, criteria ...repository.SelectCriteria) (*auth.User, error) {
	args := m.Called(ctx, id)
	return userResult(args, 0), args.Error(1)
}

func (m *MockUsers) MarkVerified(ctx context.Context, token string) (*auth.User, error) {
	args := m.Called(ctx, token)
	return userResult(args, 0), args.Error(1)
}

func (m *MockUsers) SetSessionToken(ctx context.Context, id uuid.UUID, token string) error {
	args := m.Called(ctx, id, token)
	return args.Error(0)
}

func (m *MockUsers) ClearSessionToken(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUsers) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, id, token, expiresAt)
	return args.Error(0)
}

func (m *MockUsers) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*auth.User, error) {
	args := m.Called(ctx, token, passwordHash, now)
	return userResult(args, 0), args.Error(1)
}

func (m *MockUsers) FederatedVerify(ctx context.Context, id uuid.UUID, sessionToken string) (*auth.User, error) {
	args := m.Called(ctx, id, sessionToken)
	return userResult(args, 0), args.Error(1)
}

// MockRepositoryManager implements auth.RepositoryManager. RunInTx runs the
// callback with a zero transaction after the expectation passes, so tests
// observe the inner calls.
type MockRepositoryManager struct {
	mock.Mock
}

func (m *MockRepositoryManager) Validate() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockRepositoryManager) MustValidate() {
	m.Called()
}

func (m *MockRepositoryManager) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	args := m.Called(ctx, opts, f)
	if err := args.Error(0); err != nil {
		return err
	}
	return f(ctx, bun.Tx{})
}

func (m *MockRepositoryManager) Users() auth.Users {
	args := m.Called()
	return args.Get(0).(auth.Users)
}

// MockMailer implements auth.Mailer
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, kind auth.MailKind, recipient string, vars map[string]any) error {
	args := m.Called(ctx, kind, recipient, vars)
	return args.Error(0)
}

// MockTokenService implements auth.TokenService
type MockTokenService struct {
	mock.Mock
}

func (m *MockTokenService) Generate(identity auth.Identity) (string, error) {
	args := m.Called(identity)
	return args.String(0), args.Error(1)
}

func (m *MockTokenService) Validate(tokenString string) (auth.AuthClaims, error) {
	args := m.Called(tokenString)
	if claims, ok := args.Get(0).(auth.AuthClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAssertionDecoder implements auth.AssertionDecoder
type MockAssertionDecoder struct {
	mock.Mock
}

func (m *MockAssertionDecoder) Decode(ctx context.Context, assertion string) (*auth.ExternalProfile, error) {
	args := m.Called(ctx, assertion)
	if profile, ok := args.Get(0).(*auth.ExternalProfile); ok {
		return profile, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockAuthenticator implements auth.Authenticator
type MockAuthenticator struct {
	mock.Mock
}

func (m *MockAuthenticator) Login(ctx context.Context, email, password string) (string, *auth.User, error) {
	args := m.Called(ctx, email, password)
	return args.String(0), userResult(args, 1), args.Error(2)
}

func (m *MockAuthenticator) Logout(ctx context.Context, accountID string) error {
	args := m.Called(ctx, accountID)
	return args.Error(0)
}

func (m *MockAuthenticator) SessionFromToken(token string) (auth.AuthClaims, error) {
	args := m.Called(token)
	if claims, ok := args.Get(0).(auth.AuthClaims); ok {
		return claims, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockIdentityProvider implements auth.IdentityProvider
type MockIdentityProvider struct {
	mock.Mock
}

func (m *MockIdentityProvider) VerifyIdentity(ctx context.Context, email, password string) (*auth.User, error) {
	args := m.Called(ctx, email, password)
	return userResult(args, 0), args.Error(1)
}

func (m *MockIdentityProvider) FindIdentityByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	return userResult(args, 0), args.Error(1)
}

type testLogger struct{}

func (testLogger) Debug(string, ...any) {}
func (testLogger) Info(string, ...any)  {}
func (testLogger) Warn(string, ...any)  {}
func (testLogger) Error(string, ...any) {}
