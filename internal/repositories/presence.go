package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/helpmatch/internal/logger"
)

// PresenceCacheRepository mirrors the users' online flag in Redis with a TTL,
// so a stale flag expires even if the user never flips it back.
type PresenceCacheRepository struct {
	client *redis.Client
	exp    time.Duration // expiration duration for presence keys
}

// NewPresenceCacheRepository creates a new repository instance with the given TTL
func NewPresenceCacheRepository(client *redis.Client, expiration time.Duration) *PresenceCacheRepository {
	return &PresenceCacheRepository{
		client: client,
		exp:    expiration,
	}
}

func presenceKey(userID uuid.UUID) string {
	return fmt.Sprintf("presence:%s", userID)
}

// SetOnline records the presence flag for a user.
func (r *PresenceCacheRepository) SetOnline(ctx context.Context, userID uuid.UUID, online bool) error {
	key := presenceKey(userID)

	var err error
	if online {
		err = r.client.Set(ctx, key, "1", r.exp).Err()
	} else {
		err = r.client.Del(ctx, key).Err()
	}

	logger.Log.Infow(
		"key", key,
		"value", online,
		"error", err,
	)

	return err
}

// GetOnline reports whether a presence key exists for the user.
func (r *PresenceCacheRepository) GetOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	key := presenceKey(userID)

	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return false, nil
	}
	if err != nil {
		logger.Log.Infow(
			"key", key,
			"result", val,
			"error", err,
		)
		return false, err
	}

	logger.Log.Infow(
		"key", key,
		"result", val,
		"error", nil,
	)

	return val == "1", nil
}
