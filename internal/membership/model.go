package membership

import "time"

// Membership joins a user to a gym. Its validity window is denormalized
// onto the user's subscription fields so the role resolver never has to
// join through this table; Extend keeps the two in sync.
type Membership struct {
	ID        int       `db:"id" json:"id"`
	GymID     int       `db:"gym_id" json:"gym_id"`
	UserEmail string    `db:"user_email" json:"user_email"`
	StartDate time.Time `db:"start_date" json:"start_date"`
	EndDate   time.Time `db:"end_date" json:"end_date"`
	IsActive  bool      `db:"is_active" json:"is_active"`
	IsPremium bool      `db:"is_premium" json:"is_premium"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type EnrollRequest struct {
	UserEmail string `json:"user_email" binding:"required,email"`
	StartDate string `json:"start_date" binding:"required"`
	EndDate   string `json:"end_date" binding:"required"`
}

type ExtendRequest struct {
	EndDate string `json:"end_date" binding:"required"`
}
