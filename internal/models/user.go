package models

import (
	"time"

	"github.com/google/uuid"
)

// UserDB represents a user record in the database
type UserDB struct {
	UserID       uuid.UUID  `json:"id" db:"user_id"`            // Primary key
	Name         string     `json:"name" db:"name"`             // Display name
	Email        string     `json:"email" db:"email"`           // Unique email, external identity key
	Bio          *string    `json:"bio" db:"bio"`               // Optional bio
	Skills       StringList `json:"skills" db:"skills"`         // Ordered skill list
	Reputation   float64    `json:"reputation" db:"reputation"` // Reputation score
	IsOnline     bool       `json:"is_online" db:"is_online"`   // Online flag
	PasswordHash string     `json:"-" db:"password_hash"`       // Hashed password, empty for OAuth-only accounts
	CreatedAt    time.Time  `json:"created_at" db:"created_at"` // Creation timestamp
	UpdatedAt    time.Time  `json:"updated_at" db:"updated_at"` // Last update timestamp
}

// UserSummary is the public projection of a user embedded in listings.
type UserSummary struct {
	UserID     uuid.UUID  `json:"id" db:"user_id"`
	Name       string     `json:"name" db:"name"`
	Email      string     `json:"email" db:"email"`
	Skills     StringList `json:"skills" db:"skills"`
	Reputation float64    `json:"reputation" db:"reputation"`
}

// ProfileUpdate carries a partial profile update. Nil fields are left
// untouched; Skills, when present, replaces the whole list.
type ProfileUpdate struct {
	Name     *string
	Bio      *string
	Skills   *StringList
	IsOnline *bool
}
