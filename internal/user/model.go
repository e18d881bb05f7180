package user

import "time"

// Role is the stored privilege level. Authorization decisions must go
// through EffectiveRole, never compare the stored value directly.
type Role int

const (
	RoleBasic    Role = 1
	RolePremium  Role = 2
	RoleGymOwner Role = 3
	RoleAdmin    Role = 4
)

func (r Role) String() string {
	switch r {
	case RoleBasic:
		return "basic"
	case RolePremium:
		return "premium"
	case RoleGymOwner:
		return "gym_owner"
	case RoleAdmin:
		return "admin"
	default:
		return "unknown"
	}
}

func (r Role) Valid() bool {
	return r >= RoleBasic && r <= RoleAdmin
}

func (r Role) AtLeast(min Role) bool {
	return r >= min
}

type User struct {
	ID                int        `db:"id" json:"id"`
	Name              string     `db:"name" json:"name"`
	Email             string     `db:"email" json:"email"`
	PasswordHash      string     `db:"password_hash" json:"-"`
	Role              Role       `db:"role" json:"role"`
	SubscriptionStart *time.Time `db:"subscription_start" json:"subscription_start,omitempty"`
	SubscriptionEnd   *time.Time `db:"subscription_end" json:"subscription_end,omitempty"`
	IsActive          bool       `db:"is_active" json:"is_active"`
	IsVerified        bool       `db:"is_verified" json:"is_verified"`
	VerificationCode  *string    `db:"verification_code" json:"-"`
	CreatedAt         time.Time  `db:"created_at" json:"created_at"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type VerifyEmailRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type ResetPasswordRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Code        string `json:"code" binding:"required,len=6"`
	NewPassword string `json:"new_password" binding:"required,min=8"`
}

type ChangeRoleRequest struct {
	Role Role `json:"role" binding:"required"`
}

type LoginResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         User   `json:"user"`
}
