package plan

import "time"

// TrainingPlan is owned by a user. A gym-created plan additionally points
// at the membership it was authored through, which is the hop the
// permission resolver walks to decide whether a gym owner may manage it.
type TrainingPlan struct {
	ID              int       `db:"id" json:"id"`
	OwnerEmail      string    `db:"owner_email" json:"owner_email"`
	Name            string    `db:"name" json:"name"`
	Description     string    `db:"description" json:"description"`
	IsVisible       bool      `db:"is_visible" json:"is_visible"`
	IsGymCreated    bool      `db:"is_gym_created" json:"is_gym_created"`
	GymMembershipID *int      `db:"gym_membership_id" json:"gym_membership_id,omitempty"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// WorkoutDayExercise is the per-weekday slot seeded at plan creation.
// Weekday runs 1 (Monday) through 7 (Sunday).
type WorkoutDayExercise struct {
	ID        int       `db:"id" json:"id"`
	PlanID    int       `db:"plan_id" json:"plan_id"`
	Weekday   int       `db:"weekday" json:"weekday"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type Permissions struct {
	CanView   bool `json:"can_view"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
}

type CreatePlanRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	IsVisible   bool   `json:"is_visible"`
	// Set by gym owners creating a plan on behalf of an enrolled member.
	GymMembershipID *int `json:"gym_membership_id,omitempty"`
}

type UpdatePlanRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

type SetVisibilityRequest struct {
	IsVisible *bool `json:"is_visible" binding:"required"`
}
