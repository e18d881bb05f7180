package plan

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"
)

var (
	ErrPlanNotFound = errors.New("training plan not found")
	ErrForbidden    = errors.New("not permitted for this training plan")
)

const planColumns = `id, owner_email, name, description, is_visible, is_gym_created, gym_membership_id, created_at, updated_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, ownerEmail, name, description string, isVisible, isGymCreated bool, gymMembershipID *int) (*TrainingPlan, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var p TrainingPlan
	err = tx.QueryRowxContext(ctx, `
		INSERT INTO training_plans (owner_email, name, description, is_visible, is_gym_created, gym_membership_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+planColumns,
		ownerEmail, name, description, isVisible, isGymCreated, gymMembershipID,
	).StructScan(&p)
	if err != nil {
		return nil, err
	}

	// Pre-provision a slot for every weekday so the plan always has a
	// place to hang exercise configuration, even before any is added.
	for weekday := 1; weekday <= 7; weekday++ {
		_, err = tx.ExecContext(ctx, `
			INSERT INTO workout_day_exercises (plan_id, weekday)
			VALUES ($1, $2)
		`, p.ID, weekday)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return &p, nil
}

func (r *repository) GetByID(ctx context.Context, id int) (*TrainingPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM training_plans
		WHERE id = $1
	`

	var p TrainingPlan
	err := r.db.GetContext(ctx, &p, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) ListVisibleOrOwned(ctx context.Context, ownerEmail string) ([]TrainingPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM training_plans
		WHERE is_visible OR owner_email = $1
		ORDER BY created_at DESC
	`

	var plans []TrainingPlan
	err := r.db.SelectContext(ctx, &plans, query, ownerEmail)
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *repository) ListOwned(ctx context.Context, ownerEmail string) ([]TrainingPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM training_plans
		WHERE owner_email = $1
		ORDER BY created_at DESC
	`

	var plans []TrainingPlan
	err := r.db.SelectContext(ctx, &plans, query, ownerEmail)
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *repository) ListAll(ctx context.Context) ([]TrainingPlan, error) {
	query := `
		SELECT ` + planColumns + `
		FROM training_plans
		ORDER BY created_at DESC
	`

	var plans []TrainingPlan
	err := r.db.SelectContext(ctx, &plans, query)
	if err != nil {
		return nil, err
	}

	return plans, nil
}

func (r *repository) Update(ctx context.Context, id int, name, description string) (*TrainingPlan, error) {
	query := `
		UPDATE training_plans
		SET name = $2, description = $3, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + planColumns

	var p TrainingPlan
	err := r.db.GetContext(ctx, &p, query, id, name, description)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *repository) SetVisibility(ctx context.Context, id int, visible bool) (*TrainingPlan, error) {
	query := `
		UPDATE training_plans
		SET is_visible = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + planColumns

	var p TrainingPlan
	err := r.db.GetContext(ctx, &p, query, id, visible)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrPlanNotFound
		}
		return nil, err
	}

	return &p, nil
}

// Delete removes the dependent rows bottom-up before the plan row. The
// schema carries no ON DELETE CASCADE; the ordering here is the contract.
func (r *repository) Delete(ctx context.Context, id int) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		DELETE FROM exercise_configurations
		WHERE workout_day_exercise_id IN (
			SELECT id FROM workout_day_exercises WHERE plan_id = $1
		)
	`, id)
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		DELETE FROM workout_day_exercises
		WHERE plan_id = $1
	`, id)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `
		DELETE FROM training_plans
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return ErrPlanNotFound
	}

	return tx.Commit()
}

func (r *repository) ListDays(ctx context.Context, planID int) ([]WorkoutDayExercise, error) {
	query := `
		SELECT id, plan_id, weekday, created_at
		FROM workout_day_exercises
		WHERE plan_id = $1
		ORDER BY weekday ASC
	`

	var days []WorkoutDayExercise
	err := r.db.SelectContext(ctx, &days, query, planID)
	if err != nil {
		return nil, err
	}

	return days, nil
}
