package membership

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"gymplan/internal/gym"
	"gymplan/internal/user"
)

var (
	ErrMembershipNotFound = errors.New("no active membership for this user and gym")
	ErrAlreadyEnrolled    = errors.New("user already has an active membership in this gym")
)

const membershipColumns = `id, gym_id, user_email, start_date, end_date, is_active, is_premium, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

// Enroll couples the capacity increment, the membership insert and the
// member's role promotion in a single transaction. The capacity check
// lives inside the UPDATE's WHERE clause, so two racing enrollments
// against the last slot cannot both pass it.
func (r *repository) Enroll(ctx context.Context, gymID int, userEmail string, start, end time.Time) (*Membership, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `
		UPDATE gyms
		SET current_users = current_users + 1
		WHERE id = $1 AND is_active AND current_users < max_users
	`, gymID)
	if err != nil {
		return nil, err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, r.classifyReserveFailure(ctx, tx, gymID)
	}

	var m Membership
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO memberships (gym_id, user_email, start_date, end_date, is_active, is_premium)
		VALUES ($1, $2, $3, $4, TRUE, TRUE)
		RETURNING `+membershipColumns,
		gymID, userEmail, start, end,
	).StructScan(&m)
	if err != nil {
		return nil, err
	}

	result, err = tx.ExecContext(ctx, `
		UPDATE users
		SET role = $2, subscription_start = $3, subscription_end = $4
		WHERE email = $1
	`, userEmail, user.RolePremium, start, end)
	if err != nil {
		return nil, err
	}

	rowsAffected, err = result.RowsAffected()
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, user.ErrUserNotFound
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &m, nil
}

// classifyReserveFailure turns a zero-row capacity update into the
// precondition that actually failed.
func (r *repository) classifyReserveFailure(ctx context.Context, tx *sqlx.Tx, gymID int) error {
	var g gym.Gym
	err := tx.GetContext(ctx, &g, `
		SELECT id, owner_email, name, location, max_users, current_users, is_active, created_at
		FROM gyms
		WHERE id = $1
	`, gymID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return gym.ErrGymNotFound
		}
		return err
	}

	if !g.IsActive {
		return gym.ErrGymInactive
	}

	return gym.ErrCapacityExceeded
}

// Withdraw deletes the membership, releases the capacity slot and resets
// the member to basic, atomically. The counter decrement floors at zero.
func (r *repository) Withdraw(ctx context.Context, gymID int, userEmail string) (*Membership, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var m Membership
	err = tx.QueryRowxContext(ctx, `
		DELETE FROM memberships
		WHERE gym_id = $1 AND user_email = $2 AND is_active
		RETURNING `+membershipColumns,
		gymID, userEmail,
	).StructScan(&m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE gyms
		SET current_users = GREATEST(current_users - 1, 0)
		WHERE id = $1
	`, gymID)
	if err != nil {
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET role = $2, subscription_end = NULL
		WHERE email = $1
	`, userEmail, user.RoleBasic)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &m, nil
}

// Extend moves the membership end date and keeps the denormalized copy
// on the user row in sync within the same transaction.
func (r *repository) Extend(ctx context.Context, membershipID int, newEnd time.Time) (*Membership, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var m Membership
	err = tx.QueryRowxContext(ctx, `
		UPDATE memberships
		SET end_date = $2
		WHERE id = $1 AND is_active
		RETURNING `+membershipColumns,
		membershipID, newEnd,
	).StructScan(&m)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET subscription_end = $2
		WHERE email = $1
	`, m.UserEmail, newEnd)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &m, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE id = $1
	`

	var m Membership
	err := r.db.GetContext(ctx, &m, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) GetActive(ctx context.Context, gymID int, userEmail string) (*Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE gym_id = $1 AND user_email = $2 AND is_active
	`

	var m Membership
	err := r.db.GetContext(ctx, &m, query, gymID, userEmail)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}

	return &m, nil
}

func (r *repository) ListByGym(ctx context.Context, gymID int) ([]Membership, error) {
	query := `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE gym_id = $1
		ORDER BY created_at DESC
	`

	var memberships []Membership
	err := r.db.SelectContext(ctx, &memberships, query, gymID)
	if err != nil {
		return nil, err
	}

	return memberships, nil
}
