package gym

import "time"

// Gym carries the member-capacity ledger. current_users is authoritative
// only through the membership ledger transactions; nothing else writes it.
type Gym struct {
	ID           int       `db:"id" json:"id"`
	OwnerEmail   string    `db:"owner_email" json:"owner_email"`
	Name         string    `db:"name" json:"name"`
	Location     string    `db:"location" json:"location"`
	MaxUsers     int       `db:"max_users" json:"max_users"`
	CurrentUsers int       `db:"current_users" json:"current_users"`
	IsActive     bool      `db:"is_active" json:"is_active"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

const DefaultMaxUsers = 15

type CreateGymRequest struct {
	Name     string `json:"name" binding:"required"`
	Location string `json:"location" binding:"required"`
	MaxUsers int    `json:"max_users" binding:"omitempty,min=1"`
}

type IncreaseCapacityRequest struct {
	MaxUsers int `json:"max_users" binding:"required,min=1"`
}
