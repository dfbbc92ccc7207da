package models

// MatchEvent is the message published to Kafka after a successful match.
type MatchEvent struct {
	EventID   string  `json:"event_id"`        // Unique event id
	Timestamp int64   `json:"timestamp"`       // Unix timestamp
	ChatID    string  `json:"chat_id"`         // Created chat
	RequestID string  `json:"help_request_id"` // Matched request
	SeekerID  string  `json:"seeker_id"`       // Request owner
	HelperID  string  `json:"helper_id"`       // Matched candidate
	Score     float64 `json:"match_score"`     // 1.0 tag hit, 0.5 vacuous
}
