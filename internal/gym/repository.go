package gym

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrGymNotFound      = errors.New("gym not found")
	ErrGymInactive      = errors.New("gym is not active")
	ErrCapacityExceeded = errors.New("gym capacity exceeded")
	ErrInvalidCapacity  = errors.New("new capacity below current member count")
)

const gymColumns = `id, owner_email, name, location, max_users, current_users, is_active, created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ownerEmail, name, location string, maxUsers int) (*Gym, error) {
	if maxUsers <= 0 {
		maxUsers = DefaultMaxUsers
	}

	query := `
		INSERT INTO gyms (owner_email, name, location, max_users)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + gymColumns

	var g Gym
	err := r.db.GetContext(ctx, &g, query, ownerEmail, name, location, maxUsers)
	if err != nil {
		return nil, err
	}

	return &g, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*Gym, error) {
	query := `
		SELECT ` + gymColumns + `
		FROM gyms
		WHERE id = $1
	`

	var g Gym
	err := r.db.GetContext(ctx, &g, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGymNotFound
		}
		return nil, err
	}

	return &g, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Gym, error) {
	query := `
		SELECT ` + gymColumns + `
		FROM gyms
		WHERE is_active
		ORDER BY created_at DESC
	`

	var gyms []Gym
	err := r.db.SelectContext(ctx, &gyms, query)
	if err != nil {
		return nil, err
	}

	return gyms, nil
}

func (r *repository) ListByOwner(ctx context.Context, ownerEmail string) ([]Gym, error) {
	query := `
		SELECT ` + gymColumns + `
		FROM gyms
		WHERE owner_email = $1
		ORDER BY created_at DESC
	`

	var gyms []Gym
	err := r.db.SelectContext(ctx, &gyms, query, ownerEmail)
	if err != nil {
		return nil, err
	}

	return gyms, nil
}

// IncreaseCapacity raises max_users. The WHERE clause enforces
// new max >= current_users atomically, so a racing enrollment cannot
// leave the ledger over capacity.
func (r *repository) IncreaseCapacity(ctx context.Context, id, newMax int) (*Gym, error) {
	query := `
		UPDATE gyms
		SET max_users = $2
		WHERE id = $1 AND current_users <= $2
		RETURNING ` + gymColumns

	var g Gym
	err := r.db.GetContext(ctx, &g, query, id, newMax)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Distinguish a missing gym from a capacity violation.
			if _, lookupErr := r.GetByID(ctx, id); lookupErr != nil {
				return nil, lookupErr
			}
			return nil, ErrInvalidCapacity
		}
		return nil, err
	}

	return &g, nil
}

func (r *repository) Deactivate(ctx context.Context, id int) error {
	query := `
		UPDATE gyms
		SET is_active = FALSE
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrGymNotFound
	}

	return nil
}
