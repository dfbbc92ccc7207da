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

func TestMatchService_AttemptMatch(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	candidateID := uuid.New()
	requestID := uuid.New()
	chatID := uuid.New()

	openRequest := func(tags models.StringList) *models.HelpRequestDB {
		return &models.HelpRequestDB{
			RequestID: requestID,
			UserID:    ownerID,
			Title:     "Need React help",
			Status:    models.StatusOpen,
			Tags:      tags,
		}
	}
	candidate := func(skills models.StringList) *models.UserDB {
		return &models.UserDB{UserID: candidateID, Skills: skills}
	}
	chat := &models.Chat{
		ChatDB: models.ChatDB{ChatID: chatID, RequestID: requestID},
		Participants: []models.ChatParticipantDB{
			{ChatID: chatID, UserID: ownerID, Role: models.RoleSeeker},
			{ChatID: chatID, UserID: candidateID, Role: models.RoleHelper},
		},
	}

	tests := []struct {
		name        string
		candidateID uuid.UUID
		mockSetup   func(reqReader *services.MockHelpRequestReader, statusWriter *services.MockHelpRequestStatusWriter, chatWriter *services.MockChatWriter, userReader *services.MockCandidateReader, kafkaWriter *services.MockKafkaWriter)
		wantScore   float64
		wantChat    bool
		wantErr     error
	}{
		{
			name:        "tag skill overlap scores full",
			candidateID: candidateID,
			mockSetup: func(reqReader *services.MockHelpRequestReader, statusWriter *services.MockHelpRequestStatusWriter, chatWriter *services.MockChatWriter, userReader *services.MockCandidateReader, kafkaWriter *services.MockKafkaWriter) {
				reqReader.EXPECT().GetByID(gomock.Any(), requestID).Return(openRequest(models.StringList{"react"}), nil)
				userReader.EXPECT().GetByID(gomock.Any(), candidateID).Return(candidate(models.StringList{"React basics"}), nil)
				statusWriter.EXPECT().MarkMatched(gomock.Any(), requestID).Return(true, nil)
				chatWriter.EXPECT().Save(gomock.Any(), requestID, ownerID, candidateID).Return(chat, nil)
				kafkaWriter.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantScore: 1.0,
			wantChat:  true,
		},
		{
			name:        "empty tags match vacuously at half score",
			candidateID: candidateID,
			mockSetup: func(reqReader *services.MockHelpRequestReader, statusWriter *services.MockHelpRequestStatusWriter, chatWriter *services.MockChatWriter, userReader *services.MockCandidateReader, kafkaWriter *services.MockKafkaWriter) {
				reqReader.EXPECT().GetByID(gomock.Any(), requestID).Return(openRequest(models.StringList{}), nil)
				userReader.EXPECT().GetByID(gomock.Any(), candidateID).Return(candidate(models.StringList{"cooking"}), nil)
				statusWriter.EXPECT().MarkMatched(gomock.Any(), requestID).Return(true, nil)
				chatWriter.EXPECT().Save(gomock.Any(), requestID, ownerID, candidateID).Return(chat, nil)
				kafkaWriter.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(nil)
			},
			wantScore: 0.5,
			wantChat:  true,
		},
		{
			name:        "no skill overlap is rejected",
			candidateID: candidateID,
			mockSetup: func(reqReader *services.MockHelpRequestReader, statusWriter *services.MockHelpRequestStatusWriter, chatWriter *services.MockChatWriter, userReader *services.MockCandidateReader, kafkaWriter *services.MockKafkaWriter) {
				reqReader.EXPECT().GetByID(gomock.Any(), requestID).Return(openRequest(models.StringList{"react"}), nil)
				userReader.EXPECT().GetByID(gomock.Any(), candidateID).Return(candidate(models.StringList{"cooking"}), nil)
			},
			wantErr: services.ErrSkillsMismatch,
		},
		{
			name:        "request not found",
			candidateID: candidateID,
			mockSetup: func(reqReader *services.MockHelpRequestReader, statusWriter *services.MockHelpRequestStatusWriter, chatWriter *services.MockChatWriter, userReader *services.MockCandidateReader, kafkaWriter *services.MockKafkaWriter) {
				reqReader.EXPECT().GetByID(gomock.Any(), requestID).Return(nil, nil)
			},
			wantErr: services.ErrRequestNotFound,
		},
		{
			name:        "owner cannot match own request",
			candidateID: ownerID,
			mockSetup: func(reqReader *services.MockHelpRequestReader, statusWriter *services.MockHelpRequestStatusWriter, chatWriter *services.MockChatWriter, userReader *services.MockCandidateReader, kafkaWriter *services.MockKafkaWriter) {
				reqReader.EXPECT().GetByID(gomock.Any(), requestID).Return(openRequest(models.StringList{"react"}), nil)
			},
			wantErr: services.ErrSelfMatch,
		},
		{
			name:        "already matched request is rejected",
			candidateID: candidateID,
			mockSetup: func(reqReader *services.MockHelpRequestReader, statusWriter *services.MockHelpRequestStatusWriter, chatWriter *services.MockChatWriter, userReader *services.MockCandidateReader, kafkaWriter *services.MockKafkaWriter) {
				matched := openRequest(models.StringList{"react"})
				matched.Status = models.StatusMatched
				reqReader.EXPECT().GetByID(gomock.Any(), requestID).Return(matched, nil)
			},
			wantErr: services.ErrRequestAlreadyMatched,
		},
		{
			name:        "candidate not found",
			candidateID: candidateID,
			mockSetup: func(reqReader *services.MockHelpRequestReader, statusWriter *services.MockHelpRequestStatusWriter, chatWriter *services.MockChatWriter, userReader *services.MockCandidateReader, kafkaWriter *services.MockKafkaWriter) {
				reqReader.EXPECT().GetByID(gomock.Any(), requestID).Return(openRequest(models.StringList{}), nil)
				userReader.EXPECT().GetByID(gomock.Any(), candidateID).Return(nil, nil)
			},
			wantErr: services.ErrUserDoesNotExist,
		},
		{
			name:        "concurrent match loses the status race",
			candidateID: candidateID,
			mockSetup: func(reqReader *services.MockHelpRequestReader, statusWriter *services.MockHelpRequestStatusWriter, chatWriter *services.MockChatWriter, userReader *services.MockCandidateReader, kafkaWriter *services.MockKafkaWriter) {
				reqReader.EXPECT().GetByID(gomock.Any(), requestID).Return(openRequest(models.StringList{"react"}), nil)
				userReader.EXPECT().GetByID(gomock.Any(), candidateID).Return(candidate(models.StringList{"react"}), nil)
				statusWriter.EXPECT().MarkMatched(gomock.Any(), requestID).Return(false, nil)
			},
			wantErr: services.ErrRequestAlreadyMatched,
		},
		{
			name:        "chat creation error is propagated",
			candidateID: candidateID,
			mockSetup: func(reqReader *services.MockHelpRequestReader, statusWriter *services.MockHelpRequestStatusWriter, chatWriter *services.MockChatWriter, userReader *services.MockCandidateReader, kafkaWriter *services.MockKafkaWriter) {
				reqReader.EXPECT().GetByID(gomock.Any(), requestID).Return(openRequest(models.StringList{"react"}), nil)
				userReader.EXPECT().GetByID(gomock.Any(), candidateID).Return(candidate(models.StringList{"react"}), nil)
				statusWriter.EXPECT().MarkMatched(gomock.Any(), requestID).Return(true, nil)
				chatWriter.EXPECT().Save(gomock.Any(), requestID, ownerID, candidateID).Return(nil, errors.New("db error"))
			},
			wantErr: errors.New("db error"),
		},
		{
			name:        "kafka publish failure does not fail the match",
			candidateID: candidateID,
			mockSetup: func(reqReader *services.MockHelpRequestReader, statusWriter *services.MockHelpRequestStatusWriter, chatWriter *services.MockChatWriter, userReader *services.MockCandidateReader, kafkaWriter *services.MockKafkaWriter) {
				reqReader.EXPECT().GetByID(gomock.Any(), requestID).Return(openRequest(models.StringList{"react"}), nil)
				userReader.EXPECT().GetByID(gomock.Any(), candidateID).Return(candidate(models.StringList{"react"}), nil)
				statusWriter.EXPECT().MarkMatched(gomock.Any(), requestID).Return(true, nil)
				chatWriter.EXPECT().Save(gomock.Any(), requestID, ownerID, candidateID).Return(chat, nil)
				kafkaWriter.EXPECT().WriteMessages(gomock.Any(), gomock.Any()).Return(errors.New("broker down"))
			},
			wantScore: 1.0,
			wantChat:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqReader := services.NewMockHelpRequestReader(ctrl)
			statusWriter := services.NewMockHelpRequestStatusWriter(ctrl)
			chatWriter := services.NewMockChatWriter(ctrl)
			userReader := services.NewMockCandidateReader(ctrl)
			kafkaWriter := services.NewMockKafkaWriter(ctrl)

			tt.mockSetup(reqReader, statusWriter, chatWriter, userReader, kafkaWriter)

			svc := services.NewMatchService(reqReader, statusWriter, chatWriter, userReader, kafkaWriter)
			got, score, err := svc.AttemptMatch(context.Background(), tt.candidateID, requestID)

			if tt.wantErr != nil {
				assert.EqualError(t, err, tt.wantErr.Error())
				assert.Nil(t, got)
				assert.Zero(t, score)
				return
			}

			assert.NoError(t, err)
			assert.Equal(t, tt.wantScore, score)
			if tt.wantChat {
				assert.NotNil(t, got)
				assert.Len(t, got.Participants, 2)
				assert.Equal(t, models.RoleSeeker, got.Participants[0].Role)
				assert.Equal(t, ownerID, got.Participants[0].UserID)
				assert.Equal(t, models.RoleHelper, got.Participants[1].Role)
				assert.Equal(t, candidateID, got.Participants[1].UserID)
			}
		})
	}
}

func TestMatchService_AttemptMatch_CaseInsensitiveContainment(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	ownerID := uuid.New()
	candidateID := uuid.New()
	requestID := uuid.New()

	tests := []struct {
		name    string
		tags    models.StringList
		skills  models.StringList
		matches bool
	}{
		{name: "skill contains tag", tags: models.StringList{"react"}, skills: models.StringList{"React basics"}, matches: true},
		{name: "tag contains skill", tags: models.StringList{"JavaScript testing"}, skills: models.StringList{"javascript"}, matches: true},
		{name: "case folded equality", tags: models.StringList{"Anxiety"}, skills: models.StringList{"ANXIETY"}, matches: true},
		{name: "second tag matches", tags: models.StringList{"go", "python"}, skills: models.StringList{"Python 3"}, matches: true},
		{name: "disjoint", tags: models.StringList{"react"}, skills: models.StringList{"cooking"}, matches: false},
		{name: "no skills at all", tags: models.StringList{"react"}, skills: models.StringList{}, matches: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reqReader := services.NewMockHelpRequestReader(ctrl)
			statusWriter := services.NewMockHelpRequestStatusWriter(ctrl)
			chatWriter := services.NewMockChatWriter(ctrl)
			userReader := services.NewMockCandidateReader(ctrl)

			request := &models.HelpRequestDB{
				RequestID: requestID,
				UserID:    ownerID,
				Status:    models.StatusOpen,
				Tags:      tt.tags,
			}
			reqReader.EXPECT().GetByID(gomock.Any(), requestID).Return(request, nil)
			userReader.EXPECT().GetByID(gomock.Any(), candidateID).Return(&models.UserDB{UserID: candidateID, Skills: tt.skills}, nil)

			if tt.matches {
				statusWriter.EXPECT().MarkMatched(gomock.Any(), requestID).Return(true, nil)
				chatWriter.EXPECT().Save(gomock.Any(), requestID, ownerID, candidateID).
					Return(&models.Chat{ChatDB: models.ChatDB{ChatID: uuid.New(), RequestID: requestID}}, nil)
			}

			svc := services.NewMatchService(reqReader, statusWriter, chatWriter, userReader, nil)
			_, score, err := svc.AttemptMatch(context.Background(), candidateID, requestID)

			if tt.matches {
				assert.NoError(t, err)
				assert.Equal(t, services.ScoreTagHit, score)
			} else {
				assert.ErrorIs(t, err, services.ErrSkillsMismatch)
			}
		})
	}
}
