package repositories

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func TestPresenceCacheRepository(t *testing.T) {
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7.0-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForListeningPort("6379/tcp"),
	}
	redisC, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	assert.NoError(t, err)
	defer redisC.Terminate(ctx)

	host, err := redisC.Host(ctx)
	assert.NoError(t, err)
	port, err := redisC.MappedPort(ctx, "6379")
	assert.NoError(t, err)

	rdb := redis.NewClient(&redis.Options{
		Addr: fmt.Sprintf("%s:%s", host, port.Port()),
	})
	defer rdb.Close()

	err = rdb.Ping(ctx).Err()
	assert.NoError(t, err)

	repo := NewPresenceCacheRepository(rdb, 2*time.Second)

	t.Run("online flag round-trips", func(t *testing.T) {
		userID := uuid.New()

		assert.NoError(t, repo.SetOnline(ctx, userID, true))

		online, err := repo.GetOnline(ctx, userID)
		assert.NoError(t, err)
		assert.True(t, online)
	})

	t.Run("missing key reads offline", func(t *testing.T) {
		online, err := repo.GetOnline(ctx, uuid.New())
		assert.NoError(t, err)
		assert.False(t, online)
	})

	t.Run("going offline deletes the key", func(t *testing.T) {
		userID := uuid.New()

		assert.NoError(t, repo.SetOnline(ctx, userID, true))
		assert.NoError(t, repo.SetOnline(ctx, userID, false))

		online, err := repo.GetOnline(ctx, userID)
		assert.NoError(t, err)
		assert.False(t, online)
	})

	t.Run("stale flag expires", func(t *testing.T) {
		userID := uuid.New()

		assert.NoError(t, repo.SetOnline(ctx, userID, true))

		// Wait past the TTL (2s)
		time.Sleep(3 * time.Second)

		online, err := repo.GetOnline(ctx, userID)
		assert.NoError(t, err)
		assert.False(t, online)
	})
}
