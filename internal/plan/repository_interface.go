package plan

import "context"

type Repository interface {
	// Create inserts the plan and seeds one workout-day slot per calendar
	// weekday in the same transaction.
	Create(ctx context.Context, ownerEmail, name, description string, isVisible, isGymCreated bool, gymMembershipID *int) (*TrainingPlan, error)
	GetByID(ctx context.Context, id int) (*TrainingPlan, error)
	ListVisibleOrOwned(ctx context.Context, ownerEmail string) ([]TrainingPlan, error)
	ListOwned(ctx context.Context, ownerEmail string) ([]TrainingPlan, error)
	ListAll(ctx context.Context) ([]TrainingPlan, error)
	Update(ctx context.Context, id int, name, description string) (*TrainingPlan, error)
	SetVisibility(ctx context.Context, id int, visible bool) (*TrainingPlan, error)
	// Delete removes exercise configurations, then day slots, then the
	// plan itself. Nothing cascades implicitly.
	Delete(ctx context.Context, id int) error
	ListDays(ctx context.Context, planID int) ([]WorkoutDayExercise, error)
}
