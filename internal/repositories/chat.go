package repositories

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/helpmatch/internal/logger"
	"github.com/sbilibin2017/helpmatch/internal/models"
)

// ChatWriteRepository handles chat write operations
type ChatWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewChatWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *ChatWriteRepository {
	return &ChatWriteRepository{db: db, txGetter: txGetter}
}

func (r *ChatWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a chat for a matched request with its seeker and helper rows.
// The UNIQUE constraint on request_id rejects a second chat for the same
// request at the storage level.
func (r *ChatWriteRepository) Save(ctx context.Context, requestID, seekerID, helperID uuid.UUID) (*models.Chat, error) {
	executor := r.executor(ctx)

	chatQuery := `
		INSERT INTO chats (chat_id, request_id, created_at)
		VALUES ($1, $2, NOW())
		RETURNING chat_id, request_id, created_at
	`
	chatArgs := []any{uuid.New(), requestID}

	var chat models.ChatDB
	err := sqlx.GetContext(ctx, executor, &chat, chatQuery, chatArgs...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(chatQuery), " "),
		"args", chatArgs,
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	participantQuery := `
		INSERT INTO chat_participants (chat_id, user_id, role)
		VALUES ($1, $2, 'seeker'), ($1, $3, 'helper')
	`
	participantArgs := []any{chat.ChatID, seekerID, helperID}

	res, err := executor.ExecContext(ctx, participantQuery, participantArgs...)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(participantQuery), " "),
		"args", participantArgs,
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return nil, err
	}

	return &models.Chat{
		ChatDB: chat,
		Participants: []models.ChatParticipantDB{
			{ChatID: chat.ChatID, UserID: seekerID, Role: models.RoleSeeker},
			{ChatID: chat.ChatID, UserID: helperID, Role: models.RoleHelper},
		},
	}, nil
}
