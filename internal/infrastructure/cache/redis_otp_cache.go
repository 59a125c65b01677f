package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/you/authwebsvc/domain"
)

const (
	otpKeyPrefix      = "otp:"
	otpAttemptsPrefix = "otp:att:"
	statePrefix       = "oauthstate:"
)

// RedisOtpCache implements domain.OtpCache on Redis. The entry body and
// its failed-attempt counter live under separate keys sharing one TTL, so
// expiry evicts both and INCR keeps the counter free of lost updates under
// concurrent verification attempts.
type RedisOtpCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOtpCache creates a Redis-backed OTP cache with the given entry TTL
func NewRedisOtpCache(client *redis.Client, ttl time.Duration) *RedisOtpCache {
	return &RedisOtpCache{client: client, ttl: ttl}
}

// Save implements domain.OtpCache
func (c *RedisOtpCache) Save(ctx context.Context, token string, entry *domain.OtpEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal otp entry: %w", err)
	}

	if err := c.client.Set(ctx, otpKeyPrefix+token, data, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store otp entry: %w", err)
	}
	if err := c.client.Set(ctx, otpAttemptsPrefix+token, entry.FailedAttempts, c.ttl).Err(); err != nil {
		return fmt.Errorf("failed to initialize attempts counter: %w", err)
	}
	return nil
}

// Get implements domain.OtpCache
func (c *RedisOtpCache) Get(ctx context.Context, token string) (*domain.OtpEntry, error) {
	data, err := c.client.Get(ctx, otpKeyPrefix+token).Result()
	if err == redis.Nil {
		return nil, domain.ErrOTPNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get otp entry: %w", err)
	}

	var entry domain.OtpEntry
	if err := json.Unmarshal([]byte(data), &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal otp entry: %w", err)
	}

	attempts, err := c.client.Get(ctx, otpAttemptsPrefix+token).Int()
	if err != nil && err != redis.Nil {
		return nil, fmt.Errorf("failed to get attempts counter: %w", err)
	}
	entry.FailedAttempts = attempts

	return &entry, nil
}

// IncrementAttempts implements domain.OtpCache
func (c *RedisOtpCache) IncrementAttempts(ctx context.Context, token string) (int, error) {
	attempts, err := c.client.Incr(ctx, otpAttemptsPrefix+token).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment attempts: %w", err)
	}
	// An INCR racing the key's expiry recreates the counter with no TTL;
	// re-arm it so it cannot outlive the entry.
	if attempts == 1 {
		if err := c.client.Expire(ctx, otpAttemptsPrefix+token, c.ttl).Err(); err != nil {
			return 0, fmt.Errorf("failed to expire attempts counter: %w", err)
		}
	}
	return int(attempts), nil
}

// Delete implements domain.OtpCache
func (c *RedisOtpCache) Delete(ctx context.Context, token string) error {
	return c.client.Del(ctx, otpKeyPrefix+token, otpAttemptsPrefix+token).Err()
}

var _ domain.OtpCache = (*RedisOtpCache)(nil)

// RedisStateStore implements domain.StateStore on Redis. Consume relies on
// DEL's removed-key count, so a state survives exactly one use.
type RedisStateStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStateStore creates a Redis-backed OAuth state store
func NewRedisStateStore(client *redis.Client, ttl time.Duration) *RedisStateStore {
	return &RedisStateStore{client: client, ttl: ttl}
}

// Store implements domain.StateStore
func (s *RedisStateStore) Store(ctx context.Context, state string) error {
	return s.client.Set(ctx, statePrefix+state, 1, s.ttl).Err()
}

// Consume implements domain.StateStore
func (s *RedisStateStore) Consume(ctx context.Context, state string) error {
	removed, err := s.client.Del(ctx, statePrefix+state).Result()
	if err != nil {
		return fmt.Errorf("failed to consume oauth state: %w", err)
	}
	if removed == 0 {
		return domain.ErrInvalidState
	}
	return nil
}

var _ domain.StateStore = (*RedisStateStore)(nil)
