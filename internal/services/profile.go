package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/sbilibin2017/helpmatch/internal/logger"
	"github.com/sbilibin2017/helpmatch/internal/models"
)

// ProfileReader defines read operations for profiles.
type ProfileReader interface {
	GetByID(ctx context.Context, userID uuid.UUID) (*models.UserDB, error)
}

// ProfileWriter applies partial profile updates.
type ProfileWriter interface {
	UpdateProfile(ctx context.Context, userID uuid.UUID, upd models.ProfileUpdate) (*models.UserDB, error)
}

// PresenceCache mirrors the online flag with a TTL.
type PresenceCache interface {
	SetOnline(ctx context.Context, userID uuid.UUID, online bool) error
	GetOnline(ctx context.Context, userID uuid.UUID) (bool, error)
}

// ProfileService handles profile reads and partial updates.
type ProfileService struct {
	reader   ProfileReader
	writer   ProfileWriter
	presence PresenceCache
}

// NewProfileService creates a new ProfileService.
func NewProfileService(reader ProfileReader, writer ProfileWriter, presence PresenceCache) *ProfileService {
	return &ProfileService{
		reader:   reader,
		writer:   writer,
		presence: presence,
	}
}

// Get returns the user's profile. A stored online flag is downgraded to
// offline once the presence key has expired.
func (svc *ProfileService) Get(ctx context.Context, userID uuid.UUID) (*models.UserDB, error) {
	user, err := svc.reader.GetByID(ctx, userID)
	if err != nil {
		logger.Log.Errorw("failed to get user", "userID", userID, "error", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserDoesNotExist
	}

	if user.IsOnline && svc.presence != nil {
		online, err := svc.presence.GetOnline(ctx, userID)
		if err != nil {
			logger.Log.Errorw("failed to read presence", "userID", userID, "error", err)
		} else {
			user.IsOnline = online
		}
	}

	return user, nil
}

// Update applies a partial update: only fields present in upd change, and
// Skills replaces the whole list. The presence cache follows IsOnline.
func (svc *ProfileService) Update(ctx context.Context, userID uuid.UUID, upd models.ProfileUpdate) (*models.UserDB, error) {
	user, err := svc.writer.UpdateProfile(ctx, userID, upd)
	if err != nil {
		logger.Log.Errorw("failed to update profile", "userID", userID, "error", err)
		return nil, err
	}
	if user == nil {
		return nil, ErrUserDoesNotExist
	}

	if upd.IsOnline != nil && svc.presence != nil {
		if err := svc.presence.SetOnline(ctx, userID, *upd.IsOnline); err != nil {
			logger.Log.Errorw("failed to update presence", "userID", userID, "error", err)
		}
	}

	return user, nil
}
