package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// MarkVerifiedSQL flips the account to verified and clears the single-use
// verification token in one statement. The WHERE clause keys on the token so
// a second attempt with the same (now cleared) token updates nothing.
var MarkVerifiedSQL = `UPDATE "users" AS "usr"
SET
	"is_verified" = TRUE,
	"verification_token" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."verification_token" = ?
RETURNING *;`

// ConsumeResetTokenSQL redeems a reset token: the expiry check, value match,
// and clearing write happen as one conditional update so two concurrent
// redemptions resolve to exactly one winner.
var ConsumeResetTokenSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"reset_token" = NULL,
	"reset_token_expires_at" = NULL,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."reset_token" = ?
AND "usr"."reset_token_expires_at" > ?
RETURNING *;`

// FederatedVerifySQL reconciles an existing account on federated login:
// marks it verified, clears any stale verification token, and installs the
// fresh session token.
var FederatedVerifySQL = `UPDATE "users" AS "usr"
SET
	"is_verified" = TRUE,
	"verification_token" = NULL,
	"session_token" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?
RETURNING *;`

// Users is the credential store backing every lifecycle operation. Lookups
// signal absence through a not-found error; callers decide whether absence
// is a domain error.
type Users interface {
	repository.Repository[*User]

	Register(ctx context.Context, user *User) (*User, error)
	RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)

	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByVerificationToken(ctx context.Context, token string) (*User, error)
	GetByResetToken(ctx context.Context, token string) (*User, error)

	MarkVerified(ctx context.Context, token string) (*User, error)
	SetSessionToken(ctx context.Context, id uuid.UUID, token string) error
	ClearSessionToken(ctx context.Context, id uuid.UUID) error
	SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error
	ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*User, error)
	FederatedVerify(ctx context.Context, id uuid.UUID, sessionToken string) (*User, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var (
	_ Users                        = (*users)(nil)
	_ repository.Repository[*User] = (*users)(nil)
)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) Register(ctx context.Context, user *User) (*User, error) {
	return a.RegisterTx(ctx, a.db, user)
}

// RegisterTx inserts a new account. The unique index on email is the final
// arbiter for duplicate registration; violations surface as Conflict.
func (a *users) RegisterTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user)

	record, err := a.Repository.CreateTx(ctx, tx, user)
	if err != nil {
		if IsUniqueViolation(err) {
			return nil, NewEmailInUseError(user.Email)
		}
		return nil, err
	}

	return record, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.getByColumn(ctx, a.db, "email", email)
}

func (a *users) GetByVerificationToken(ctx context.Context, token string) (*User, error) {
	return a.getByColumn(ctx, a.db, "verification_token", token)
}

func (a *users) GetByResetToken(ctx context.Context, token string) (*User, error) {
	return a.getByColumn(ctx, a.db, "reset_token", token)
}

func (a *users) getByColumn(ctx context.Context, tx bun.IDB, column, value string) (*User, error) {
	if value == "" {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"column": column})
	}

	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where(fmt.Sprintf("?TableAlias.%s = ?", column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"column": column})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) MarkVerified(ctx context.Context, token string) (*User, error) {
	res, err := a.Repository.RawTx(ctx, a.db, MarkVerifiedSQL, token)
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"verification_token": token})
	}

	return res[0], nil
}

func (a *users) SetSessionToken(ctx context.Context, id uuid.UUID, token string) error {
	return a.writeSessionToken(ctx, id, &token)
}

func (a *users) ClearSessionToken(ctx context.Context, id uuid.UUID) error {
	return a.writeSessionToken(ctx, id, nil)
}

// writeSessionToken is last-write-wins: the most recently completed write
// determines the active session.
func (a *users) writeSessionToken(ctx context.Context, id uuid.UUID, token *string) error {
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"session_token" = ?,
			"updated_at" = CURRENT_TIMESTAMP
		WHERE
			("usr"."id" = ?);
	`, token, id.String()).Exec(ctx)

	return err
}

// SetResetToken installs (or overwrites) the pending reset pair; only the
// latest issued token is redeemable.
func (a *users) SetResetToken(ctx context.Context, id uuid.UUID, token string, expiresAt time.Time) error {
	_, err := a.db.NewRaw(`
		UPDATE "users" AS "usr"
		SET
			"reset_token" = ?,
			"reset_token_expires_at" = ?,
			"updated_at" = CURRENT_TIMESTAMP
		WHERE
			("usr"."id" = ?);
	`, token, expiresAt, id.String()).Exec(ctx)

	return err
}

func (a *users) ConsumeResetToken(ctx context.Context, token, passwordHash string, now time.Time) (*User, error) {
	res, err := a.Repository.RawTx(ctx, a.db, ConsumeResetTokenSQL, passwordHash, token, now)
	if err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to redeem reset token")
	}

	if len(res) == 0 {
		return nil, ErrResetTokenInvalid
	}

	return res[0], nil
}

func (a *users) FederatedVerify(ctx context.Context, id uuid.UUID, sessionToken string) (*User, error) {
	res, err := a.Repository.RawTx(ctx, a.db, FederatedVerifySQL, sessionToken, id.String())
	if err != nil {
		return nil, err
	}

	if len(res) == 0 {
		return nil, repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return res[0], nil
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
