package repositories

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/sbilibin2017/helpmatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const helpRequestsSchema = usersSchema + `
CREATE TABLE IF NOT EXISTS help_requests (
	request_id UUID PRIMARY KEY,
	user_id UUID NOT NULL REFERENCES users(user_id),
	title VARCHAR(255) NOT NULL,
	description TEXT NOT NULL,
	category VARCHAR(100) NOT NULL,
	tags TEXT NOT NULL DEFAULT '[]',
	privacy VARCHAR(10) NOT NULL DEFAULT 'public',
	status VARCHAR(10) NOT NULL DEFAULT 'open',
	created_at TIMESTAMP NOT NULL DEFAULT NOW(),
	updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);
`

func seedUser(t *testing.T, repo *UserWriteRepository, readRepo *UserReadRepository, name, email string) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, repo.Save(ctx, name, email, "secret"))
	user, err := readRepo.GetByEmail(ctx, email)
	require.NoError(t, err)
	require.NotNil(t, user)
	return user.UserID
}

func TestHelpRequestWriteRepository_Save(t *testing.T) {
	db, teardown := setupPostgresContainer(t, helpRequestsSchema)
	defer teardown()

	userWrite := NewUserWriteRepository(db, nil)
	userRead := NewUserReadRepository(db, nil)
	repo := NewHelpRequestWriteRepository(db, nil)
	ctx := context.Background()

	ownerID := seedUser(t, userWrite, userRead, "Alice", "alice@example.com")

	req, err := repo.Save(ctx, ownerID, "Need React help", "Stuck on hooks", "programming",
		models.StringList{"React", "Hooks"}, models.PrivacyPublic)
	assert.NoError(t, err)
	assert.Equal(t, ownerID, req.UserID)
	assert.Equal(t, models.StatusOpen, req.Status)
	assert.Equal(t, models.StringList{"React", "Hooks"}, req.Tags)
	assert.NotEqual(t, uuid.Nil, req.RequestID)
}

func TestHelpRequestReadRepository_GetByID(t *testing.T) {
	db, teardown := setupPostgresContainer(t, helpRequestsSchema)
	defer teardown()

	userWrite := NewUserWriteRepository(db, nil)
	userRead := NewUserReadRepository(db, nil)
	writeRepo := NewHelpRequestWriteRepository(db, nil)
	readRepo := NewHelpRequestReadRepository(db, nil)
	ctx := context.Background()

	ownerID := seedUser(t, userWrite, userRead, "Alice", "alice@example.com")

	saved, err := writeRepo.Save(ctx, ownerID, "Need help", "Details", "general", models.StringList{}, models.PrivacyPublic)
	require.NoError(t, err)

	t.Run("found", func(t *testing.T) {
		req, err := readRepo.GetByID(ctx, saved.RequestID)
		assert.NoError(t, err)
		assert.NotNil(t, req)
		assert.Equal(t, "Need help", req.Title)
		assert.Equal(t, models.StringList{}, req.Tags)
	})

	t.Run("not found", func(t *testing.T) {
		req, err := readRepo.GetByID(ctx, uuid.New())
		assert.NoError(t, err)
		assert.Nil(t, req)
	})
}

func TestHelpRequestReadRepository_ListOpen(t *testing.T) {
	db, teardown := setupPostgresContainer(t, helpRequestsSchema)
	defer teardown()

	userWrite := NewUserWriteRepository(db, nil)
	userRead := NewUserReadRepository(db, nil)
	writeRepo := NewHelpRequestWriteRepository(db, nil)
	readRepo := NewHelpRequestReadRepository(db, nil)
	ctx := context.Background()

	aliceID := seedUser(t, userWrite, userRead, "Alice", "alice@example.com")
	bobID := seedUser(t, userWrite, userRead, "Bob", "bob@example.com")

	publicOld, err := writeRepo.Save(ctx, aliceID, "public old", "d", "general", models.StringList{}, models.PrivacyPublic)
	require.NoError(t, err)
	publicNew, err := writeRepo.Save(ctx, aliceID, "public new", "d", "general", models.StringList{}, models.PrivacyPublic)
	require.NoError(t, err)
	alicePrivate, err := writeRepo.Save(ctx, aliceID, "alice private", "d", "general", models.StringList{}, models.PrivacyPrivate)
	require.NoError(t, err)
	matched, err := writeRepo.Save(ctx, aliceID, "matched", "d", "general", models.StringList{}, models.PrivacyPublic)
	require.NoError(t, err)

	// Fix ordering and close the matched one
	base := time.Now().UTC().Truncate(time.Second)
	for i, id := range []uuid.UUID{publicOld.RequestID, publicNew.RequestID, alicePrivate.RequestID} {
		_, err := db.Exec("UPDATE help_requests SET created_at=$1 WHERE request_id=$2",
			base.Add(time.Duration(i)*time.Minute), id)
		require.NoError(t, err)
	}
	_, err = db.Exec("UPDATE help_requests SET status='matched' WHERE request_id=$1", matched.RequestID)
	require.NoError(t, err)

	t.Run("stranger sees only open public, newest first", func(t *testing.T) {
		rows, err := readRepo.ListOpen(ctx, bobID)
		assert.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "public new", rows[0].Title)
		assert.Equal(t, "public old", rows[1].Title)
		assert.Equal(t, "Alice", rows[0].Owner.Name)
		assert.Equal(t, aliceID, rows[0].Owner.UserID)
	})

	t.Run("owner also sees their private request", func(t *testing.T) {
		rows, err := readRepo.ListOpen(ctx, aliceID)
		assert.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "alice private", rows[0].Title)
		assert.Equal(t, "public new", rows[1].Title)
		assert.Equal(t, "public old", rows[2].Title)
	})
}

// Verifies the listing query's column aliases line up with the struct mapping,
// without a real database: the owner columns must scan into the nested Owner.
func TestHelpRequestReadRepository_ListOpen_OwnerMapping(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	sqlxDB := sqlx.NewDb(db, "sqlmock")
	repo := NewHelpRequestReadRepository(sqlxDB, nil)

	viewerID := uuid.New()
	requestID := uuid.New()
	ownerID := uuid.New()
	now := time.Now()

	mock.ExpectQuery("FROM help_requests").
		WithArgs(viewerID).
		WillReturnRows(sqlmock.NewRows([]string{
			"request_id", "user_id", "title", "description", "category",
			"tags", "privacy", "status", "created_at", "updated_at",
			"owner.user_id", "owner.name", "owner.email",
			"owner.skills", "owner.reputation",
		}).AddRow(
			requestID.String(), ownerID.String(), "Need React help", "Stuck on hooks", "frontend",
			[]byte(`["React"]`), "public", "open", now, now,
			ownerID.String(), "Alice", "alice@example.com",
			[]byte(`["React","GraphQL"]`), 4.5,
		))

	rows, err := repo.ListOpen(context.Background(), viewerID)
	assert.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, requestID, rows[0].RequestID)
	assert.Equal(t, models.StringList{"React"}, rows[0].Tags)
	assert.Equal(t, ownerID, rows[0].Owner.UserID)
	assert.Equal(t, "Alice", rows[0].Owner.Name)
	assert.Equal(t, "alice@example.com", rows[0].Owner.Email)
	assert.Equal(t, models.StringList{"React", "GraphQL"}, rows[0].Owner.Skills)
	assert.Equal(t, 4.5, rows[0].Owner.Reputation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHelpRequestWriteRepository_MarkMatched(t *testing.T) {
	db, teardown := setupPostgresContainer(t, helpRequestsSchema)
	defer teardown()

	userWrite := NewUserWriteRepository(db, nil)
	userRead := NewUserReadRepository(db, nil)
	writeRepo := NewHelpRequestWriteRepository(db, nil)
	readRepo := NewHelpRequestReadRepository(db, nil)
	ctx := context.Background()

	ownerID := seedUser(t, userWrite, userRead, "Alice", "alice@example.com")
	saved, err := writeRepo.Save(ctx, ownerID, "Need help", "Details", "general", models.StringList{}, models.PrivacyPublic)
	require.NoError(t, err)

	// First transition wins
	ok, err := writeRepo.MarkMatched(ctx, saved.RequestID)
	assert.NoError(t, err)
	assert.True(t, ok)

	req, err := readRepo.GetByID(ctx, saved.RequestID)
	assert.NoError(t, err)
	assert.Equal(t, models.StatusMatched, req.Status)

	// Second transition loses
	ok, err = writeRepo.MarkMatched(ctx, saved.RequestID)
	assert.NoError(t, err)
	assert.False(t, ok)

	// Unknown request also reports false
	ok, err = writeRepo.MarkMatched(ctx, uuid.New())
	assert.NoError(t, err)
	assert.False(t, ok)
}
