package gym

import "context"

type Repository interface {
	Create(ctx context.Context, ownerEmail, name, location string, maxUsers int) (*Gym, error)
	GetByID(ctx context.Context, id int) (*Gym, error)
	ListActive(ctx context.Context) ([]Gym, error)
	ListByOwner(ctx context.Context, ownerEmail string) ([]Gym, error)
	IncreaseCapacity(ctx context.Context, id, newMax int) (*Gym, error)
	Deactivate(ctx context.Context, id int) error
}
