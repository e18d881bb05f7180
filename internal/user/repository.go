package user

import (
	"context"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrEmailExists        = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNotVerified        = errors.New("email not verified")
	ErrAlreadyVerified    = errors.New("email already verified")
	ErrInvalidCode        = errors.New("invalid or expired code")
	ErrAccountDisabled    = errors.New("account disabled")
	ErrInvalidRole        = errors.New("invalid role")
)

const userColumns = `id, name, email, password_hash, role, subscription_start, subscription_end, is_active, is_verified, verification_code, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, name, email, passwordHash string, role Role, verificationCode string) (*User, error) {
	query := `
		INSERT INTO users (name, email, password_hash, role, verification_code)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	var u User
	err := r.db.GetContext(ctx, &u, query, name, email, passwordHash, role, verificationCode)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *repository) FindByEmail(ctx context.Context, email string) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE email = $1
	`

	var u User
	err := r.db.GetContext(ctx, &u, query, email)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *repository) FindByID(ctx context.Context, id int) (*User, error) {
	query := `
		SELECT ` + userColumns + `
		FROM users
		WHERE id = $1
	`

	var u User
	err := r.db.GetContext(ctx, &u, query, id)
	if err != nil {
		return nil, err
	}

	return &u, nil
}

func (r *repository) EmailExists(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS(SELECT 1 FROM users WHERE email = $1)`

	var exists bool
	err := r.db.GetContext(ctx, &exists, query, email)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (r *repository) MarkVerified(ctx context.Context, email string) error {
	query := `
		UPDATE users
		SET is_verified = TRUE, verification_code = NULL
		WHERE email = $1
	`

	result, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// SetVerificationCode overwrites any previously issued code. Codes are
// single-use; reissuing invalidates the old one.
func (r *repository) SetVerificationCode(ctx context.Context, email, code string) error {
	query := `
		UPDATE users
		SET verification_code = $2
		WHERE email = $1
	`

	result, err := r.db.ExecContext(ctx, query, email, code)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *repository) UpdatePassword(ctx context.Context, email, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $2, verification_code = NULL
		WHERE email = $1
	`

	result, err := r.db.ExecContext(ctx, query, email, passwordHash)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

func (r *repository) UpdateRole(ctx context.Context, email string, role Role) error {
	query := `
		UPDATE users
		SET role = $2
		WHERE email = $1
	`

	result, err := r.db.ExecContext(ctx, query, email, role)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}

// MaterializeRole persists the lazy downgrade computed by EffectiveRole.
// The WHERE clause makes it idempotent: an already-basic user, an admin,
// or a user with a live subscription is untouched, and two concurrent
// callers cannot both observe a change. Subscription dates are kept so
// the expiry remains auditable.
func (r *repository) MaterializeRole(ctx context.Context, email string, today time.Time) (bool, error) {
	query := `
		UPDATE users
		SET role = $2
		WHERE email = $1
		  AND role NOT IN ($2, $3)
		  AND (subscription_end IS NULL OR subscription_end < $4)
	`

	result, err := r.db.ExecContext(ctx, query, email, RoleBasic, RoleAdmin, dateOnly(today))
	if err != nil {
		return false, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rowsAffected > 0, nil
}

func (r *repository) CountAdmins(ctx context.Context) (int, error) {
	query := `SELECT COUNT(*) FROM users WHERE role = $1`

	var count int
	err := r.db.GetContext(ctx, &count, query, RoleAdmin)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// Deactivate soft-disables the account. Users are never hard-deleted.
func (r *repository) Deactivate(ctx context.Context, email string) error {
	query := `
		UPDATE users
		SET is_active = FALSE
		WHERE email = $1
	`

	result, err := r.db.ExecContext(ctx, query, email)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrUserNotFound
	}

	return nil
}
