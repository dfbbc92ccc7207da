package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/helpmatch/internal/logger"
	"github.com/sbilibin2017/helpmatch/internal/models"
	"github.com/sbilibin2017/helpmatch/internal/services"
)

// Matcher defines the interface that the match service must implement.
type Matcher interface {
	AttemptMatch(ctx context.Context, candidateID, requestID uuid.UUID) (*models.Chat, float64, error)
}

// MatchRequest represents the JSON body for a match attempt
// swagger:model MatchRequest
type MatchRequest struct {
	// Help request to match with
	// required: true
	HelpRequestID uuid.UUID `json:"help_request_id"`
}

// MatchResponse represents a successful match response
// swagger:model MatchResponse
type MatchResponse struct {
	// Created chat with its participants
	Chat *models.Chat `json:"chat"`

	// Match score: 1.0 tag hit, 0.5 untagged request
	// default: 1.0
	MatchScore float64 `json:"match_score"`
}

// MatchErrorResponse represents an error response for a match attempt
// swagger:model MatchErrorResponse
type MatchErrorResponse struct {
	// Error message
	// default: Your skills don't match this request
	Error string `json:"error"`

	// Match score reported with policy rejections
	MatchScore float64 `json:"match_score"`
}

// NewMatchHandler returns an HTTP handler attempting a match. It runs under the
// transaction middleware so the status flip and the chat insert are atomic.
// @Summary Match with a help request
// @Description Matches the caller as helper to an open request, creating a chat and closing the request
// @Tags match
// @Accept json
// @Produce json
// @Param matchRequest body handlers.MatchRequest true "Match request"
// @Success 200 {object} handlers.MatchResponse "Chat and match score"
// @Failure 400 {object} handlers.MatchErrorResponse "Self match / skills mismatch / already matched"
// @Failure 401 {object} handlers.MatchErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.MatchErrorResponse "Help request not found"
// @Failure 500 {object} handlers.MatchErrorResponse "Internal server error"
// @Router /match [post]
// @Security BearerAuth
func NewMatchHandler(svc Matcher, tokener RequestsTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := claimsFromRequest(ctx, w, r, tokener)
		if !ok {
			return
		}

		var req MatchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.HelpRequestID == uuid.Nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(MatchErrorResponse{
				Error: "Invalid request body",
			})
			return
		}

		chat, score, err := svc.AttemptMatch(ctx, claims.UserID, req.HelpRequestID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrRequestNotFound), errors.Is(err, services.ErrUserDoesNotExist):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(MatchErrorResponse{
					Error: err.Error(),
				})
			case errors.Is(err, services.ErrSelfMatch), errors.Is(err, services.ErrRequestAlreadyMatched):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(MatchErrorResponse{
					Error: err.Error(),
				})
			case errors.Is(err, services.ErrSkillsMismatch):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(MatchErrorResponse{
					Error:      err.Error(),
					MatchScore: 0,
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(MatchErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(MatchResponse{
			Chat:       chat,
			MatchScore: score,
		})
	}
}
