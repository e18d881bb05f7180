package membership

import (
	"context"
	"time"
)

type Repository interface {
	// Enroll runs the full enrollment transaction: capacity reservation,
	// membership insert and member role promotion as one atomic unit.
	Enroll(ctx context.Context, gymID int, userEmail string, start, end time.Time) (*Membership, error)
	// Withdraw reverses an enrollment: membership delete, capacity
	// release and role reset, also atomic.
	Withdraw(ctx context.Context, gymID int, userEmail string) (*Membership, error)
	Extend(ctx context.Context, membershipID int, newEnd time.Time) (*Membership, error)

	GetByID(ctx context.Context, id int) (*Membership, error)
	GetActive(ctx context.Context, gymID int, userEmail string) (*Membership, error)
	ListByGym(ctx context.Context, gymID int) ([]Membership, error)
}
