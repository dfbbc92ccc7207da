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

// ProfileGetter defines the read interface that the profile service must implement.
type ProfileGetter interface {
	Get(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
}

// ProfileUpdater defines the update interface that the profile service must implement.
type ProfileUpdater interface {
	Update(ctx context.Context, userID uuid.UUID, upd models.ProfileUpdate) (*models.UserDB, error)
}

// UpdateProfileRequest represents the JSON body for a partial profile update.
// Absent fields are left untouched; skills replaces the whole list.
// swagger:model UpdateProfileRequest
type UpdateProfileRequest struct {
	// Display name
	Name *string `json:"name,omitempty"`

	// Bio
	Bio *string `json:"bio,omitempty"`

	// Skill list, replaces the stored list
	Skills *models.StringList `json:"skills,omitempty"`

	// Online flag
	IsOnline *bool `json:"is_online,omitempty"`
}

// ProfileResponse represents a user profile
// swagger:model ProfileResponse
type ProfileResponse struct {
	// User id
	ID uuid.UUID `json:"id"`

	// Display name
	// default: John Doe
	Name string `json:"name"`

	// Email
	// default: john@example.com
	Email string `json:"email"`

	// Bio
	Bio *string `json:"bio"`

	// Skill list
	Skills models.StringList `json:"skills"`

	// Reputation score
	Reputation float64 `json:"reputation"`

	// Online flag
	IsOnline bool `json:"is_online"`
}

// ProfileErrorResponse represents an error response for profile operations
// swagger:model ProfileErrorResponse
type ProfileErrorResponse struct {
	// Error message
	// default: Unauthorized
	Error string `json:"error"`
}

func profileResponse(user *models.UserDB) ProfileResponse {
	return ProfileResponse{
		ID:         user.UserID,
		Name:       user.Name,
		Email:      user.Email,
		Bio:        user.Bio,
		Skills:     user.Skills,
		Reputation: user.Reputation,
		IsOnline:   user.IsOnline,
	}
}

// NewGetProfileHandler returns an HTTP handler for fetching the caller's profile.
// @Summary Get profile
// @Description Returns the caller's profile with the skill list decoded
// @Tags profile
// @Produce json
// @Success 200 {object} handlers.ProfileResponse "User profile"
// @Failure 401 {object} handlers.ProfileErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ProfileErrorResponse "User not found"
// @Failure 500 {object} handlers.ProfileErrorResponse "Internal server error"
// @Router /profile [get]
// @Security BearerAuth
func NewGetProfileHandler(svc ProfileGetter, tokener RequestsTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := claimsFromRequest(ctx, w, r, tokener)
		if !ok {
			return
		}

		user, err := svc.Get(ctx, claims.UserID)
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserDoesNotExist):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Error: "User not found",
				})
			default:
				logger.Log.Errorw("failed to get profile", "userID", claims.UserID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(profileResponse(user))
	}
}

// NewUpdateProfileHandler returns an HTTP handler for partial profile updates.
// @Summary Update profile
// @Description Partially updates the caller's profile: only provided fields change
// @Tags profile
// @Accept json
// @Produce json
// @Param updateProfileRequest body handlers.UpdateProfileRequest true "Profile update"
// @Success 200 {object} handlers.ProfileResponse "Updated profile"
// @Failure 400 {object} handlers.ProfileErrorResponse "Invalid request body"
// @Failure 401 {object} handlers.ProfileErrorResponse "Unauthorized"
// @Failure 404 {object} handlers.ProfileErrorResponse "User not found"
// @Failure 500 {object} handlers.ProfileErrorResponse "Internal server error"
// @Router /profile [patch]
// @Security BearerAuth
func NewUpdateProfileHandler(svc ProfileUpdater, tokener RequestsTokener) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		claims, ok := claimsFromRequest(ctx, w, r, tokener)
		if !ok {
			return
		}

		var req UpdateProfileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(ProfileErrorResponse{
				Error: "Invalid request body",
			})
			return
		}

		user, err := svc.Update(ctx, claims.UserID, models.ProfileUpdate{
			Name:     req.Name,
			Bio:      req.Bio,
			Skills:   req.Skills,
			IsOnline: req.IsOnline,
		})
		if err != nil {
			switch {
			case errors.Is(err, services.ErrUserDoesNotExist):
				w.WriteHeader(http.StatusNotFound)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Error: "User not found",
				})
			default:
				logger.Log.Errorw("failed to update profile", "userID", claims.UserID, "error", err)
				w.WriteHeader(http.StatusInternalServerError)
				json.NewEncoder(w).Encode(ProfileErrorResponse{
					Error: "Internal server error",
				})
			}
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		json.NewEncoder(w).Encode(profileResponse(user))
	}
}
