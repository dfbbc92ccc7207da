package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/sbilibin2017/helpmatch/internal/jwt"
	"github.com/sbilibin2017/helpmatch/internal/logger"
	"github.com/sbilibin2017/helpmatch/internal/models"
	"github.com/sbilibin2017/helpmatch/internal/services"
)

// RequestsTokener defines only the methods needed by the request handlers.
type RequestsTokener interface {
	GetTokenFromRequest(ctx context.Context, r *http.Request) (string, error)
	GetClaims(ctx context.Context, tokenString string) (*jwt.Claims, error)
}

// RequestLister defines the listing interface that the service must implement.
type RequestLister interface {
	ListOpen(ctx context.Context, viewerID uuid.UUID) ([]models.HelpRequestWithOwner, error)
}

// RequestCreator defines the creation interface that the service must implement.
type RequestCreator interface {
	Create(ctx context.Context, ownerID uuid.UUID, title, description, category string, tags models.StringList, privacy string) (*models.HelpRequestDB, error)
}

// CreateRequestRequest represents the JSON body for creating a help request
// swagger:model CreateRequestRequest
type CreateRequestRequest struct {
	// Title
	// required: true
	// default: Need React help
	Title string `json:"title"`

	// Description
	// required: true
	// default: Stuck on hooks
	Description string `json:"description"`

	// Category
	// required: true
	// default: programming
	Category string `json:"category"`

	// Tags, defaults to empty
	Tags models.StringList `json:"tags"`

	// Privacy, public or private, defaults to public
	// default: public
	Privacy string `json:"privacy"`
}

// RequestsErrorResponse represents an error response for request operations
// swagger:model RequestsErrorResponse
type RequestsErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

// NewListRequestsHandler returns an HTTP handler listing open help requests.
// @Summary List open help requests
// @Description Returns open requests visible to the caller: public ones plus their own, newest first
// @Tags requests
// @Produce json
// @Success 200 {array} models.HelpRequestWithOwner "Open help requests"
// @Failure 401 {object} handlers.RequestsErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.RequestsErrorResponse "Internal server error"
// @Router /requests [get]
// @Security BearerAuth
func NewListRequestsHandler(svc RequestLister, tokener RequestsTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := claimsFromRequest(ctx, w, r, tokener)
		if !ok {
			return
		}

		requests, err := svc.ListOpen(ctx, claims.UserID)
		if err != nil {
			logger.Log.Errorw("failed to list requests", "userID", claims.UserID, "error", err)
			w.WriteHeader(http.StatusInternalServerError)
			json.NewEncoder(w).Encode(RequestsErrorResponse{
				Error: "Internal server error",
			})
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(requests)
	}
}

// NewCreateRequestHandler returns an HTTP handler creating a help request.
// @Summary Create a help request
// @Description Creates a new open help request owned by the caller
// @Tags requests
// @Accept json
// @Produce json
// @Param createRequest body handlers.CreateRequestRequest true "Help request"
// @Success 201 {object} models.HelpRequestDB "Created help request"
// @Failure 400 {object} handlers.RequestsErrorResponse "Missing required fields"
// @Failure 401 {object} handlers.RequestsErrorResponse "Unauthorized"
// @Failure 500 {object} handlers.RequestsErrorResponse "Internal server error"
// @Router /requests [post]
// @Security BearerAuth
func NewCreateRequestHandler(svc RequestCreator, tokener RequestsTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := claimsFromRequest(ctx, w, r, tokener)
		if !ok {
			return
		}

		var req CreateRequestRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(RequestsErrorResponse{
				Error: "Invalid request body",
			})
			return
		}

		request, err := svc.Create(ctx, claims.UserID, req.Title, req.Description, req.Category, req.Tags, req.Privacy)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrMissingFields), errors.Is(err, services.ErrInvalidPrivacy):
				w.WriteHeader(http.StatusBadRequest)
				json.NewEncoder(w).Encode(RequestsErrorResponse{
					Error: err.Error(),
				})
			default:
				logger.Log.Errorw("internal server error", "err", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(RequestsErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(request)
	}
}

// claimsFromRequest resolves the caller's identity; on failure it writes 401
// and reports false.
func claimsFromRequest(ctx context.Context, w http.ResponseWriter, r *http.Request, tokener RequestsTokener) (*jwt.Claims, bool) {
	tokenStr, err := tokener.GetTokenFromRequest(ctx, r)
	if err != nil {
		logger.Log.Error("unauthorized request: missing or invalid token")
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(RequestsErrorResponse{
			Error: "Unauthorized",
		})
		return nil, false
	}

	claims, err := tokener.GetClaims(ctx, tokenStr)
	if err != nil {
		logger.Log.Errorw("failed to parse token claims", "error", err)
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(RequestsErrorResponse{
			Error: "Unauthorized",
		})
		return nil, false
	}

	return claims, true
}
