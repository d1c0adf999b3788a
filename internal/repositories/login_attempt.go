package repositories

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sbilibin2017/gw-user-service/internal/logger"
)

// LoginAttemptCacheRepository counts failed logins per username in Redis.
// Counters expire after the configured window.
type LoginAttemptCacheRepository struct {
	client *redis.Client
	window time.Duration
}

// NewLoginAttemptCacheRepository creates a new repository with the given counting window
func NewLoginAttemptCacheRepository(client *redis.Client, window time.Duration) *LoginAttemptCacheRepository {
	return &LoginAttemptCacheRepository{
		client: client,
		window: window,
	}
}

func loginAttemptsKey(username string) string {
	return fmt.Sprintf("login_attempts:%s", username)
}

// Get returns the current number of failed attempts, zero when no counter exists.
func (r *LoginAttemptCacheRepository) Get(ctx context.Context, username string) (int64, error) {
	key := loginAttemptsKey(username)

	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		logger.Log.Errorw("failed to read login attempts", "key", key, "error", err)
		return 0, err
	}

	count, err := strconv.ParseInt(val, 10, 64)
	logger.Log.Debugw("login attempts", "key", key, "value", val, "error", err)
	if err != nil {
		return 0, err
	}
	return count, nil
}

// Increment records a failed attempt and returns the new count.
// The window restarts with every failure.
func (r *LoginAttemptCacheRepository) Increment(ctx context.Context, username string) (int64, error) {
	key := loginAttemptsKey(username)

	pipe := r.client.TxPipeline()
	incr := pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, r.window)
	_, err := pipe.Exec(ctx)

	logger.Log.Infow("login attempt recorded",
		"key", key,
		"result", incr.Val(),
		"error", err,
	)
	if err != nil {
		return 0, err
	}
	return incr.Val(), nil
}

// Reset clears the counter after a successful login.
func (r *LoginAttemptCacheRepository) Reset(ctx context.Context, username string) error {
	key := loginAttemptsKey(username)
	err := r.client.Del(ctx, key).Err()
	if err != nil {
		logger.Log.Errorw("failed to reset login attempts", "key", key, "error", err)
	}
	return err
}
