package models

import (
	"time"

	"github.com/google/uuid"
)

// Chat participant roles
const (
	RoleSeeker = "seeker"
	RoleHelper = "helper"
)

// ChatDB represents a chat record in the database
type ChatDB struct {
	ChatID    uuid.UUID `json:"id" db:"chat_id"`                 // Primary key
	RequestID uuid.UUID `json:"help_request_id" db:"request_id"` // Matched help request, unique
	CreatedAt time.Time `json:"created_at" db:"created_at"`      // Creation timestamp
}

// ChatParticipantDB represents a chat participant record in the database
type ChatParticipantDB struct {
	ChatID uuid.UUID `json:"chat_id" db:"chat_id"` // Chat reference
	UserID uuid.UUID `json:"user_id" db:"user_id"` // Participant
	Role   string    `json:"role" db:"role"`       // seeker | helper
}

// Chat is a chat together with its two participants, as returned from a match.
type Chat struct {
	ChatDB
	Participants []ChatParticipantDB `json:"participants"`
}
