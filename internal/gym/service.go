package gym

import (
	"context"
	"errors"
	"time"

	"gymplan/internal/user"
)

var ErrNotGymOwner = errors.New("actor does not own this gym")

type Service interface {
	Create(ctx context.Context, actor *user.User, req CreateGymRequest) (*Gym, error)
	Get(ctx context.Context, id int) (*Gym, error)
	ListActive(ctx context.Context) ([]Gym, error)
	ListOwned(ctx context.Context, ownerEmail string) ([]Gym, error)
	IncreaseCapacity(ctx context.Context, actor *user.User, gymID, newMax int) (*Gym, error)
	Deactivate(ctx context.Context, actor *user.User, gymID int) error
}

type service struct {
	repo Repository
}

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

// Create registers a gym for the acting owner. Only accounts whose
// effective role is gym_owner (or admin) may hold gyms.
func (s *service) Create(ctx context.Context, actor *user.User, req CreateGymRequest) (*Gym, error) {
	effective := user.EffectiveRole(actor, time.Now())
	if effective != user.RoleGymOwner && effective != user.RoleAdmin {
		return nil, ErrNotGymOwner
	}

	return s.repo.Create(ctx, actor.Email, req.Name, req.Location, req.MaxUsers)
}

func (s *service) Get(ctx context.Context, id int) (*Gym, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *service) ListActive(ctx context.Context) ([]Gym, error) {
	return s.repo.ListActive(ctx)
}

func (s *service) ListOwned(ctx context.Context, ownerEmail string) ([]Gym, error) {
	return s.repo.ListByOwner(ctx, ownerEmail)
}

func (s *service) IncreaseCapacity(ctx context.Context, actor *user.User, gymID, newMax int) (*Gym, error) {
	if err := s.authorizeOwner(ctx, actor, gymID); err != nil {
		return nil, err
	}

	return s.repo.IncreaseCapacity(ctx, gymID, newMax)
}

func (s *service) Deactivate(ctx context.Context, actor *user.User, gymID int) error {
	if err := s.authorizeOwner(ctx, actor, gymID); err != nil {
		return err
	}

	return s.repo.Deactivate(ctx, gymID)
}

func (s *service) authorizeOwner(ctx context.Context, actor *user.User, gymID int) error {
	if user.EffectiveRole(actor, time.Now()) == user.RoleAdmin {
		return nil
	}

	g, err := s.repo.GetByID(ctx, gymID)
	if err != nil {
		return err
	}

	if g.OwnerEmail != actor.Email {
		return ErrNotGymOwner
	}

	return nil
}
