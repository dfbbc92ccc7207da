package repositories

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/helpmatch/internal/logger"
	"github.com/sbilibin2017/helpmatch/internal/models"
)

const helpRequestColumns = `request_id, user_id, title, description, category, tags, privacy, status, created_at, updated_at`

// HelpRequestReadRepository handles help request read operations
type HelpRequestReadRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewHelpRequestReadRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *HelpRequestReadRepository {
	return &HelpRequestReadRepository{db: db, txGetter: txGetter}
}

func (r *HelpRequestReadRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// GetByID returns the help request with the given id, or nil when absent.
func (r *HelpRequestReadRepository) GetByID(ctx context.Context, requestID uuid.UUID) (*models.HelpRequestDB, error) {
	query := `
		SELECT ` + helpRequestColumns + `
		FROM help_requests
		WHERE request_id = $1
	`

	var req models.HelpRequestDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &req, query, requestID)

	// Log with query in single line
	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{requestID},
		"error", err,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &req, nil
}

// ListOpen returns open requests visible to the viewer: public ones plus the
// viewer's own, newest first, each with its owner's summary.
func (r *HelpRequestReadRepository) ListOpen(ctx context.Context, viewerID uuid.UUID) ([]models.HelpRequestWithOwner, error) {
	query := `
		SELECT hr.request_id, hr.user_id, hr.title, hr.description, hr.category,
		       hr.tags, hr.privacy, hr.status, hr.created_at, hr.updated_at,
		       u.user_id AS "owner.user_id", u.name AS "owner.name", u.email AS "owner.email",
		       u.skills AS "owner.skills", u.reputation AS "owner.reputation"
		FROM help_requests hr
		JOIN users u ON u.user_id = hr.user_id
		WHERE hr.status = 'open'
		  AND (hr.privacy = 'public' OR hr.user_id = $1)
		ORDER BY hr.created_at DESC
	`

	requests := []models.HelpRequestWithOwner{}
	err := sqlx.SelectContext(ctx, r.executor(ctx), &requests, query, viewerID)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{viewerID},
		"result", len(requests),
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return requests, nil
}

// HelpRequestWriteRepository handles help request write operations
type HelpRequestWriteRepository struct {
	db       *sqlx.DB
	txGetter func(ctx context.Context) *sqlx.Tx
}

func NewHelpRequestWriteRepository(db *sqlx.DB, txGetter func(ctx context.Context) *sqlx.Tx) *HelpRequestWriteRepository {
	return &HelpRequestWriteRepository{db: db, txGetter: txGetter}
}

func (r *HelpRequestWriteRepository) executor(ctx context.Context) sqlx.ExtContext {
	if r.txGetter != nil {
		if tx := r.txGetter(ctx); tx != nil {
			return tx
		}
	}
	return r.db
}

// Save inserts a new open help request and returns the stored row.
func (r *HelpRequestWriteRepository) Save(ctx context.Context, ownerID uuid.UUID, title, description, category string, tags models.StringList, privacy string) (*models.HelpRequestDB, error) {
	query := `
		INSERT INTO help_requests (request_id, user_id, title, description, category, tags, privacy, status, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, 'open', NOW(), NOW())
		RETURNING ` + helpRequestColumns + `
	`
	args := []any{uuid.New(), ownerID, title, description, category, tags, privacy}

	var req models.HelpRequestDB
	err := sqlx.GetContext(ctx, r.executor(ctx), &req, query, args...)

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", args,
		"error", err,
	)

	if err != nil {
		return nil, err
	}
	return &req, nil
}

// MarkMatched flips the request status from open to matched. The status guard
// in the WHERE clause makes the transition win-once under concurrent matches:
// the second caller sees zero affected rows and reports false.
func (r *HelpRequestWriteRepository) MarkMatched(ctx context.Context, requestID uuid.UUID) (bool, error) {
	query := `
		UPDATE help_requests
		SET status = 'matched', updated_at = NOW()
		WHERE request_id = $1 AND status = 'open'
	`

	res, err := r.executor(ctx).ExecContext(ctx, query, requestID)
	var rowsAffected int64
	if res != nil {
		rowsAffected, _ = res.RowsAffected()
	}

	logger.Log.Infow(
		"query", strings.Join(strings.Fields(query), " "),
		"args", []any{requestID},
		"result", rowsAffected,
		"error", err,
	)

	if err != nil {
		return false, err
	}
	return rowsAffected > 0, nil
}
