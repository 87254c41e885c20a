package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/zahel-sys/sigc-auth/internal/repository"
)

// RedisAttemptStore implements LoginAttemptStore backed by Redis.
// Failure counters expire after the lockout window so accounts unlock
// on their own.
type RedisAttemptStore struct {
	client      redis.UniversalClient
	maxAttempts int64
	window      time.Duration
}

var _ repository.LoginAttemptStore = (*RedisAttemptStore)(nil)

// NewRedisAttemptStore constructs a Redis-backed attempt store.
func NewRedisAttemptStore(client redis.UniversalClient, maxAttempts int, window time.Duration) *RedisAttemptStore {
	if maxAttempts <= 0 {
		maxAttempts = 5
	}
	if window <= 0 {
		window = 15 * time.Minute
	}
	return &RedisAttemptStore{client: client, maxAttempts: int64(maxAttempts), window: window}
}

func attemptKey(email string) string {
	return "login_attempts:" + email
}

// RecordFailure increments the failure counter and returns the total.
func (s *RedisAttemptStore) RecordFailure(ctx context.Context, email string) (int64, error) {
	key := attemptKey(email)
	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("record failure: %w", err)
	}
	if count == 1 {
		if err := s.client.Expire(ctx, key, s.window).Err(); err != nil {
			return count, fmt.Errorf("set window: %w", err)
		}
	}
	return count, nil
}

// Reset clears the counter after a successful login.
func (s *RedisAttemptStore) Reset(ctx context.Context, email string) error {
	if err := s.client.Del(ctx, attemptKey(email)).Err(); err != nil && err != redis.Nil {
		return fmt.Errorf("reset attempts: %w", err)
	}
	return nil
}

// Locked reports whether the email has exhausted its attempt budget.
func (s *RedisAttemptStore) Locked(ctx context.Context, email string) (bool, error) {
	count, err := s.client.Get(ctx, attemptKey(email)).Int64()
	if err != nil {
		if err == redis.Nil {
			return false, nil
		}
		return false, fmt.Errorf("load attempts: %w", err)
	}
	return count >= s.maxAttempts, nil
}
