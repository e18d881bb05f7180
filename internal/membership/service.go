package membership

import (
	"context"
	"errors"
	"time"

	"gymplan/internal/gym"
	"gymplan/internal/logger"
	"gymplan/internal/metrics"
	"gymplan/internal/user"
)

var (
	ErrOwnerNotEnrollable = errors.New("gym owners and admins cannot be enrolled as members")
	ErrNotAuthorized      = errors.New("actor may not manage this gym's members")
)

// Notifier sends best-effort membership notices.
type Notifier interface {
	SendEnrollmentNotice(ctx context.Context, email, name, gymName string, endDate time.Time) error
	SendWithdrawalNotice(ctx context.Context, email, name, gymName string) error
}

type Service interface {
	Enroll(ctx context.Context, actor *user.User, gymID int, userEmail string, start, end time.Time) (*Membership, error)
	Withdraw(ctx context.Context, actor *user.User, gymID int, userEmail string) (*Membership, error)
	Extend(ctx context.Context, actor *user.User, membershipID int, newEnd time.Time) (*Membership, error)
	ListByGym(ctx context.Context, actor *user.User, gymID int) ([]Membership, error)
}

type service struct {
	repo     Repository
	gymRepo  gym.Repository
	userRepo user.Repository
	notifier Notifier
}

func NewService(repo Repository, gymRepo gym.Repository, userRepo user.Repository, notifier Notifier) Service {
	return &service{
		repo:     repo,
		gymRepo:  gymRepo,
		userRepo: userRepo,
		notifier: notifier,
	}
}

// Enroll admits a user into a gym. Preconditions are checked up front;
// the capacity invariant itself is enforced inside the repository
// transaction, so a stale precondition read can only cause a clean error,
// never a corrupted counter.
func (s *service) Enroll(ctx context.Context, actor *user.User, gymID int, userEmail string, start, end time.Time) (*Membership, error) {
	g, err := s.gymRepo.GetByID(ctx, gymID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeManager(actor, g); err != nil {
		return nil, err
	}

	target, err := s.userRepo.FindByEmail(ctx, userEmail)
	if err != nil {
		return nil, user.ErrUserNotFound
	}

	// Stored role, not effective: an expired gym owner is still a gym
	// owner and must not be demoted to premium member by enrollment.
	if target.Role >= user.RoleGymOwner {
		return nil, ErrOwnerNotEnrollable
	}

	if _, err := s.repo.GetActive(ctx, gymID, userEmail); err == nil {
		return nil, ErrAlreadyEnrolled
	} else if !errors.Is(err, ErrMembershipNotFound) {
		return nil, err
	}

	m, err := s.repo.Enroll(ctx, gymID, userEmail, start, end)
	if err != nil {
		if errors.Is(err, gym.ErrCapacityExceeded) {
			metrics.RecordCapacityRejection()
		}
		return nil, err
	}

	metrics.RecordEnrollment()
	logger.Info("member enrolled", "gym_id", gymID, "email", userEmail, "end_date", end.Format("2006-01-02"))

	if s.notifier != nil {
		if err := s.notifier.SendEnrollmentNotice(ctx, target.Email, target.Name, g.Name, end); err != nil {
			logger.Error("enrollment notice delivery failed", "email", target.Email, "error", err)
		}
	}

	return m, nil
}

// Withdraw removes a member. The member may remove themselves; otherwise
// the acting user must manage the gym.
func (s *service) Withdraw(ctx context.Context, actor *user.User, gymID int, userEmail string) (*Membership, error) {
	g, err := s.gymRepo.GetByID(ctx, gymID)
	if err != nil {
		return nil, err
	}

	if actor.Email != userEmail {
		if err := s.authorizeManager(actor, g); err != nil {
			return nil, err
		}
	}

	m, err := s.repo.Withdraw(ctx, gymID, userEmail)
	if err != nil {
		return nil, err
	}

	metrics.RecordWithdrawal()
	logger.Info("member withdrawn", "gym_id", gymID, "email", userEmail)

	if s.notifier != nil {
		if target, lookupErr := s.userRepo.FindByEmail(ctx, userEmail); lookupErr == nil {
			if err := s.notifier.SendWithdrawalNotice(ctx, target.Email, target.Name, g.Name); err != nil {
				logger.Error("withdrawal notice delivery failed", "email", target.Email, "error", err)
			}
		}
	}

	return m, nil
}

func (s *service) Extend(ctx context.Context, actor *user.User, membershipID int, newEnd time.Time) (*Membership, error) {
	m, err := s.repo.GetByID(ctx, membershipID)
	if err != nil {
		return nil, err
	}

	g, err := s.gymRepo.GetByID(ctx, m.GymID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeManager(actor, g); err != nil {
		return nil, err
	}

	return s.repo.Extend(ctx, membershipID, newEnd)
}

func (s *service) ListByGym(ctx context.Context, actor *user.User, gymID int) ([]Membership, error) {
	g, err := s.gymRepo.GetByID(ctx, gymID)
	if err != nil {
		return nil, err
	}

	if err := s.authorizeManager(actor, g); err != nil {
		return nil, err
	}

	return s.repo.ListByGym(ctx, gymID)
}

func (s *service) authorizeManager(actor *user.User, g *gym.Gym) error {
	effective := user.EffectiveRole(actor, time.Now())
	if effective == user.RoleAdmin {
		return nil
	}
	if effective == user.RoleGymOwner && g.OwnerEmail == actor.Email {
		return nil
	}
	return ErrNotAuthorized
}
