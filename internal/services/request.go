package services

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/sbilibin2017/helpmatch/internal/logger"
	"github.com/sbilibin2017/helpmatch/internal/models"
)

// Error variables
var (
	ErrMissingFields  = errors.New("title, description and category are required")
	ErrInvalidPrivacy = errors.New("privacy must be public or private")
)

// HelpRequestLister lists open help requests visible to a viewer.
type HelpRequestLister interface {
	ListOpen(ctx context.Context, viewerID uuid.UUID) ([]models.HelpRequestWithOwner, error)
}

// HelpRequestSaver creates help requests.
type HelpRequestSaver interface {
	Save(ctx context.Context, ownerID uuid.UUID, title, description, category string, tags models.StringList, privacy string) (*models.HelpRequestDB, error)
}

// RequestService handles help request listing and creation.
type RequestService struct {
	lister HelpRequestLister
	saver  HelpRequestSaver
}

// NewRequestService creates a new RequestService.
func NewRequestService(lister HelpRequestLister, saver HelpRequestSaver) *RequestService {
	return &RequestService{
		lister: lister,
		saver:  saver,
	}
}

// ListOpen returns the open requests visible to the viewer, newest first.
func (svc *RequestService) ListOpen(ctx context.Context, viewerID uuid.UUID) ([]models.HelpRequestWithOwner, error) {
	requests, err := svc.lister.ListOpen(ctx, viewerID)
	if err != nil {
		logger.Log.Errorw("failed to list open requests", "viewerID", viewerID, "error", err)
		return nil, err
	}
	if requests == nil {
		requests = []models.HelpRequestWithOwner{}
	}
	return requests, nil
}

// Create creates a new open help request owned by the caller. Tags default to
// an empty list, privacy to public.
func (svc *RequestService) Create(ctx context.Context, ownerID uuid.UUID, title, description, category string, tags models.StringList, privacy string) (*models.HelpRequestDB, error) {
	if strings.TrimSpace(title) == "" || strings.TrimSpace(description) == "" || strings.TrimSpace(category) == "" {
		return nil, ErrMissingFields
	}

	if privacy == "" {
		privacy = models.PrivacyPublic
	}
	if privacy != models.PrivacyPublic && privacy != models.PrivacyPrivate {
		return nil, ErrInvalidPrivacy
	}

	if tags == nil {
		tags = models.StringList{}
	}

	request, err := svc.saver.Save(ctx, ownerID, title, description, category, tags, privacy)
	if err != nil {
		logger.Log.Errorw("failed to save help request", "ownerID", ownerID, "error", err)
		return nil, err
	}
	return request, nil
}
