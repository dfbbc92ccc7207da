package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/sbilibin2017/helpmatch/internal/models"
	"github.com/sbilibin2017/helpmatch/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestRequestService_Create(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ownerID := uuid.New()

	tests := []struct {
		name        string
		title       string
		description string
		category    string
		tags        models.StringList
		privacy     string
		wantPrivacy string
		wantTags    models.StringList
		saverErr    error
		wantErr     error
		expectSave  bool
	}{
		{
			name:        "required fields with explicit tags and privacy",
			title:       "Need React help",
			description: "Stuck on hooks",
			category:    "programming",
			tags:        models.StringList{"react"},
			privacy:     models.PrivacyPrivate,
			wantPrivacy: models.PrivacyPrivate,
			wantTags:    models.StringList{"react"},
			expectSave:  true,
		},
		{
			name:        "tags default to empty and privacy to public",
			title:       "Need a listener",
			description: "Just need to talk",
			category:    "support",
			wantPrivacy: models.PrivacyPublic,
			wantTags:    models.StringList{},
			expectSave:  true,
		},
		{
			name:        "missing title",
			title:       "  ",
			description: "desc",
			category:    "cat",
			wantErr:     services.ErrMissingFields,
		},
		{
			name:        "missing description",
			title:       "title",
			description: "",
			category:    "cat",
			wantErr:     services.ErrMissingFields,
		},
		{
			name:        "missing category",
			title:       "title",
			description: "desc",
			category:    "",
			wantErr:     services.ErrMissingFields,
		},
		{
			name:        "invalid privacy",
			title:       "title",
			description: "desc",
			category:    "cat",
			privacy:     "secret",
			wantErr:     services.ErrInvalidPrivacy,
		},
		{
			name:        "saver error",
			title:       "title",
			description: "desc",
			category:    "cat",
			wantPrivacy: models.PrivacyPublic,
			wantTags:    models.StringList{},
			saverErr:    errors.New("db error"),
			wantErr:     errors.New("db error"),
			expectSave:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lister := services.NewMockHelpRequestLister(ctrl)
			saver := services.NewMockHelpRequestSaver(ctrl)

			var saved *models.HelpRequestDB
			if tt.expectSave {
				if tt.saverErr == nil {
					saved = &models.HelpRequestDB{
						RequestID: uuid.New(),
						UserID:    ownerID,
						Title:     tt.title,
						Status:    models.StatusOpen,
						Tags:      tt.wantTags,
						Privacy:   tt.wantPrivacy,
					}
				}
				saver.EXPECT().
					Save(gomock.Any(), ownerID, tt.title, tt.description, tt.category, tt.wantTags, tt.wantPrivacy).
					Return(saved, tt.saverErr)
			}

			svc := services.NewRequestService(lister, saver)
			got, err := svc.Create(context.Background(), ownerID, tt.title, tt.description, tt.category, tt.tags, tt.privacy)

			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, got)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, models.StatusOpen, got.Status)
			assert.Equal(t, tt.wantPrivacy, got.Privacy)
		})
	}
}

func TestRequestService_ListOpen(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	viewerID := uuid.New()

	t.Run("returns listing", func(t *testing.T) {
		lister := services.NewMockHelpRequestLister(ctrl)
		saver := services.NewMockHelpRequestSaver(ctrl)

		rows := []models.HelpRequestWithOwner{
			{HelpRequestDB: models.HelpRequestDB{RequestID: uuid.New(), Title: "newer"}},
			{HelpRequestDB: models.HelpRequestDB{RequestID: uuid.New(), Title: "older"}},
		}
		lister.EXPECT().ListOpen(gomock.Any(), viewerID).Return(rows, nil)

		svc := services.NewRequestService(lister, saver)
		got, err := svc.ListOpen(context.Background(), viewerID)
		assert.NoError(t, err)
		assert.Equal(t, rows, got)
	})

	t.Run("nil listing becomes an empty list", func(t *testing.T) {
		lister := services.NewMockHelpRequestLister(ctrl)
		saver := services.NewMockHelpRequestSaver(ctrl)

		lister.EXPECT().ListOpen(gomock.Any(), viewerID).Return(nil, nil)

		svc := services.NewRequestService(lister, saver)
		got, err := svc.ListOpen(context.Background(), viewerID)
		assert.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("lister error is propagated", func(t *testing.T) {
		lister := services.NewMockHelpRequestLister(ctrl)
		saver := services.NewMockHelpRequestSaver(ctrl)

		lister.EXPECT().ListOpen(gomock.Any(), viewerID).Return(nil, errors.New("db error"))

		svc := services.NewRequestService(lister, saver)
		got, err := svc.ListOpen(context.Background(), viewerID)
		assert.EqualError(t, err, "db error")
		assert.Nil(t, got)
	})
}
