package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sbilibin2017/helpmatch/internal/logger"
	"github.com/sbilibin2017/helpmatch/internal/models"
	"github.com/segmentio/kafka-go"
)

// Error variables
var (
	ErrRequestNotFound       = errors.New("help request not found")
	ErrSelfMatch             = errors.New("cannot match with your own request")
	ErrSkillsMismatch        = errors.New("your skills don't match this request")
	ErrRequestAlreadyMatched = errors.New("help request is already matched")
)

// Match scores: a tag/skill hit scores full, an untagged request matches
// vacuously at half.
const (
	ScoreTagHit  = 1.0
	ScoreVacuous = 0.5
)

// HelpRequestReader defines read operations for help requests.
type HelpRequestReader interface {
	GetByID(ctx context.Context, requestID uuid.UUID) (*models.HelpRequestDB, error)
}

// HelpRequestStatusWriter transitions a request from open to matched.
type HelpRequestStatusWriter interface {
	MarkMatched(ctx context.Context, requestID uuid.UUID) (bool, error)
}

// ChatWriter creates a chat with its two participants.
type ChatWriter interface {
	Save(ctx context.Context, requestID, seekerID, helperID uuid.UUID) (*models.Chat, error)
}

// CandidateReader defines read operations for candidate users.
type CandidateReader interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
}

// KafkaWriter defines a Kafka writer abstraction.
type KafkaWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error // Writes messages to Kafka
	Close() error                                                   // Closes the Kafka writer
}

// MatchService decides whether a candidate may help with a request and, if so,
// creates the chat and closes the request to further matching.
type MatchService struct {
	requestReader HelpRequestReader
	statusWriter  HelpRequestStatusWriter
	chatWriter    ChatWriter
	userReader    CandidateReader
	kafkaWriter   KafkaWriter
}

// NewMatchService creates a new MatchService.
func NewMatchService(
	requestReader HelpRequestReader,
	statusWriter HelpRequestStatusWriter,
	chatWriter ChatWriter,
	userReader CandidateReader,
	kafkaWriter KafkaWriter,
) *MatchService {
	return &MatchService{
		requestReader: requestReader,
		statusWriter:  statusWriter,
		chatWriter:    chatWriter,
		userReader:    userReader,
		kafkaWriter:   kafkaWriter,
	}
}

// AttemptMatch matches the candidate to the request. On success it returns the
// created chat and the match score. The status transition and the chat insert
// both run against the per-request transaction, so no reader observes one
// without the other.
func (s *MatchService) AttemptMatch(ctx context.Context, candidateID, requestID uuid.UUID) (*models.Chat, float64, error) {
	request, err := s.requestReader.GetByID(ctx, requestID)
	if err != nil {
		logger.Log.Errorw("failed to get help request", "requestID", requestID, "error", err)
		return nil, 0, err
	}
	if request == nil {
		return nil, 0, ErrRequestNotFound
	}

	if request.UserID == candidateID {
		return nil, 0, ErrSelfMatch
	}
	if request.Status != models.StatusOpen {
		return nil, 0, ErrRequestAlreadyMatched
	}

	candidate, err := s.userReader.GetByID(ctx, candidateID)
	if err != nil {
		logger.Log.Errorw("failed to get candidate", "candidateID", candidateID, "error", err)
		return nil, 0, err
	}
	if candidate == nil {
		return nil, 0, ErrUserDoesNotExist
	}

	score := matchScore(request.Tags, candidate.Skills)
	if score == 0 {
		return nil, 0, ErrSkillsMismatch
	}

	// Conditional transition: under a concurrent double match only one caller
	// flips open->matched, the other gets zero rows.
	matched, err := s.statusWriter.MarkMatched(ctx, requestID)
	if err != nil {
		logger.Log.Errorw("failed to mark request matched", "requestID", requestID, "error", err)
		return nil, 0, err
	}
	if !matched {
		return nil, 0, ErrRequestAlreadyMatched
	}

	chat, err := s.chatWriter.Save(ctx, requestID, request.UserID, candidateID)
	if err != nil {
		logger.Log.Errorw("failed to create chat", "requestID", requestID, "error", err)
		return nil, 0, err
	}

	event := models.MatchEvent{
		EventID:   uuid.NewString(),
		Timestamp: time.Now().Unix(),
		ChatID:    chat.ChatID.String(),
		RequestID: requestID.String(),
		SeekerID:  request.UserID.String(),
		HelperID:  candidateID.String(),
		Score:     score,
	}
	s.publishMatch(ctx, event)

	return chat, score, nil
}

// matchScore computes the tag/skill overlap score: case-folded bidirectional
// substring containment. An empty tag set matches vacuously.
func matchScore(tags, skills models.StringList) float64 {
	if len(tags) == 0 {
		return ScoreVacuous
	}
	for _, tag := range tags {
		t := strings.ToLower(tag)
		for _, skill := range skills {
			s := strings.ToLower(skill)
			if strings.Contains(s, t) || strings.Contains(t, s) {
				return ScoreTagHit
			}
		}
	}
	return 0
}

// publishMatch publishes a match event to Kafka.
func (s *MatchService) publishMatch(ctx context.Context, event models.MatchEvent) {
	if s.kafkaWriter == nil {
		logger.Log.Warnw("Kafka writer not configured, skipping publishing", "event_id", event.EventID)
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		logger.Log.Errorw("Failed to marshal match event for Kafka", "event_id", event.EventID, "error", err)
		return
	}

	msg := kafka.Message{
		Key:   []byte(event.EventID),
		Value: data,
	}

	if err := s.kafkaWriter.WriteMessages(ctx, msg); err != nil {
		logger.Log.Errorw("Failed to publish match event to Kafka", "event_id", event.EventID, "error", err)
	} else {
		logger.Log.Infow("Match event published to Kafka", "event_id", event.EventID, "chat_id", event.ChatID)
	}
}
