package user

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, name, email, passwordHash string, role Role, verificationCode string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id int) (*User, error)
	EmailExists(ctx context.Context, email string) (bool, error)

	MarkVerified(ctx context.Context, email string) error
	SetVerificationCode(ctx context.Context, email, code string) error
	UpdatePassword(ctx context.Context, email, passwordHash string) error

	UpdateRole(ctx context.Context, email string, role Role) error
	MaterializeRole(ctx context.Context, email string, today time.Time) (bool, error)
	CountAdmins(ctx context.Context) (int, error)
	Deactivate(ctx context.Context, email string) error
}
