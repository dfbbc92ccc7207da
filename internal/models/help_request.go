package models

import (
	"time"

	"github.com/google/uuid"
)

// Help request privacy values
const (
	PrivacyPublic  = "public"
	PrivacyPrivate = "private"
)

// Help request status values
const (
	StatusOpen    = "open"
	StatusMatched = "matched"
)

// HelpRequestDB represents a help request record in the database
type HelpRequestDB struct {
	RequestID   uuid.UUID  `json:"id" db:"request_id"`           // Primary key
	UserID      uuid.UUID  `json:"user_id" db:"user_id"`         // Owner
	Title       string     `json:"title" db:"title"`             // Short title
	Description string     `json:"description" db:"description"` // Free-form description
	Category    string     `json:"category" db:"category"`       // Free-form category
	Tags        StringList `json:"tags" db:"tags"`               // Ordered tag list
	Privacy     string     `json:"privacy" db:"privacy"`         // public | private
	Status      string     `json:"status" db:"status"`           // open | matched
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`   // Creation timestamp
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`   // Last update timestamp
}

// HelpRequestWithOwner is a listing row: the request plus its owner's summary.
// The owner columns are selected with "owner."-prefixed aliases so sqlx maps
// them into the nested struct.
type HelpRequestWithOwner struct {
	HelpRequestDB
	Owner UserSummary `json:"user" db:"owner"`
}
