package plan

import (
	"context"
	"errors"
	"time"

	"gymplan/internal/gym"
	"gymplan/internal/logger"
	"gymplan/internal/membership"
	"gymplan/internal/metrics"
	"gymplan/internal/user"
)

var ErrMembershipRequired = errors.New("gym-created plans require an active membership in the actor's gym")

type Service interface {
	Create(ctx context.Context, actor *user.User, req CreatePlanRequest) (*TrainingPlan, error)
	Get(ctx context.Context, actor *user.User, id int) (*TrainingPlan, Permissions, error)
	List(ctx context.Context, actor *user.User) ([]TrainingPlan, error)
	Update(ctx context.Context, actor *user.User, id int, req UpdatePlanRequest) (*TrainingPlan, error)
	SetVisibility(ctx context.Context, actor *user.User, id int, visible bool) (*TrainingPlan, error)
	Delete(ctx context.Context, actor *user.User, id int) error
	Days(ctx context.Context, actor *user.User, planID int) ([]WorkoutDayExercise, error)
}

type service struct {
	repo           Repository
	membershipRepo membership.Repository
	gymRepo        gym.Repository
}

func NewService(repo Repository, membershipRepo membership.Repository, gymRepo gym.Repository) Service {
	return &service{
		repo:           repo,
		membershipRepo: membershipRepo,
		gymRepo:        gymRepo,
	}
}

// Create makes a plan either for the actor directly (premium and above)
// or, when a membership id is supplied, on behalf of that membership's
// enrolled member by the gym's owner.
func (s *service) Create(ctx context.Context, actor *user.User, req CreatePlanRequest) (*TrainingPlan, error) {
	effective := user.EffectiveRole(actor, time.Now())

	if req.GymMembershipID == nil {
		if !effective.AtLeast(user.RolePremium) {
			metrics.RecordPermissionDenial("plan_create")
			return nil, ErrForbidden
		}

		p, err := s.repo.Create(ctx, actor.Email, req.Name, req.Description, req.IsVisible, false, nil)
		if err != nil {
			return nil, err
		}
		metrics.RecordPlanCreated("owner")
		return p, nil
	}

	if effective != user.RoleGymOwner && effective != user.RoleAdmin {
		metrics.RecordPermissionDenial("plan_create")
		return nil, ErrForbidden
	}

	mem, err := s.membershipRepo.GetByID(ctx, *req.GymMembershipID)
	if err != nil {
		return nil, ErrMembershipRequired
	}
	if !mem.IsActive {
		return nil, ErrMembershipRequired
	}

	g, err := s.gymRepo.GetByID(ctx, mem.GymID)
	if err != nil {
		return nil, err
	}
	if effective != user.RoleAdmin && g.OwnerEmail != actor.Email {
		metrics.RecordPermissionDenial("plan_create")
		return nil, ErrForbidden
	}

	p, err := s.repo.Create(ctx, mem.UserEmail, req.Name, req.Description, req.IsVisible, true, req.GymMembershipID)
	if err != nil {
		return nil, err
	}

	metrics.RecordPlanCreated("gym")
	logger.Info("gym-created plan", "plan_id", p.ID, "gym_id", g.ID, "member", mem.UserEmail, "author", actor.Email)
	return p, nil
}

// Get returns the plan when the actor may view it; otherwise the access
// is reported as forbidden, even for plans that exist.
func (s *service) Get(ctx context.Context, actor *user.User, id int) (*TrainingPlan, Permissions, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, Permissions{}, err
	}

	perms := s.resolve(ctx, p, actor)
	if !perms.CanView {
		metrics.RecordPermissionDenial("plan_view")
		return nil, Permissions{}, ErrForbidden
	}

	return p, perms, nil
}

// List filters instead of failing: visible plans plus the actor's own.
// Accounts below premium only see their own plans; admins see all.
func (s *service) List(ctx context.Context, actor *user.User) ([]TrainingPlan, error) {
	effective := user.EffectiveRole(actor, time.Now())

	switch {
	case effective == user.RoleAdmin:
		return s.repo.ListAll(ctx)
	case effective.AtLeast(user.RolePremium) && actor.IsActive:
		return s.repo.ListVisibleOrOwned(ctx, actor.Email)
	default:
		return s.repo.ListOwned(ctx, actor.Email)
	}
}

func (s *service) Update(ctx context.Context, actor *user.User, id int, req UpdatePlanRequest) (*TrainingPlan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.resolve(ctx, p, actor).CanEdit {
		metrics.RecordPermissionDenial("plan_edit")
		return nil, ErrForbidden
	}

	return s.repo.Update(ctx, id, req.Name, req.Description)
}

func (s *service) SetVisibility(ctx context.Context, actor *user.User, id int, visible bool) (*TrainingPlan, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if !s.resolve(ctx, p, actor).CanEdit {
		metrics.RecordPermissionDenial("plan_edit")
		return nil, ErrForbidden
	}

	return s.repo.SetVisibility(ctx, id, visible)
}

func (s *service) Delete(ctx context.Context, actor *user.User, id int) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !s.resolve(ctx, p, actor).CanDelete {
		metrics.RecordPermissionDenial("plan_delete")
		return ErrForbidden
	}

	return s.repo.Delete(ctx, id)
}

func (s *service) Days(ctx context.Context, actor *user.User, planID int) ([]WorkoutDayExercise, error) {
	p, err := s.repo.GetByID(ctx, planID)
	if err != nil {
		return nil, err
	}

	if !s.resolve(ctx, p, actor).CanView {
		metrics.RecordPermissionDenial("plan_view")
		return nil, ErrForbidden
	}

	return s.repo.ListDays(ctx, planID)
}

// resolve loads the ownership chain behind a gym-created plan and feeds
// it to the pure resolver. Missing hops simply resolve to nil, which the
// resolver treats as "chain grants nothing".
func (s *service) resolve(ctx context.Context, p *TrainingPlan, actor *user.User) Permissions {
	var mem *membership.Membership
	var g *gym.Gym

	if p.IsGymCreated && p.GymMembershipID != nil {
		if m, err := s.membershipRepo.GetByID(ctx, *p.GymMembershipID); err == nil {
			mem = m
			if gg, err := s.gymRepo.GetByID(ctx, m.GymID); err == nil {
				g = gg
			}
		}
	}

	return ResolvePermissions(p, actor, mem, g, time.Now())
}
