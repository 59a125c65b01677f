package cache

import (
	"context"
	"sync"
	"time"

	"github.com/you/authwebsvc/domain"
)

// MemoryOtpCache implements domain.OtpCache as a mutex-guarded in-process
// map. Expiry is evaluated lazily at access time; there is no background
// sweep. Intended for single-process deployments and deterministic tests.
type MemoryOtpCache struct {
	mu      sync.Mutex
	entries map[string]*domain.OtpEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryOtpCache creates an in-process OTP cache with the given entry TTL
func NewMemoryOtpCache(ttl time.Duration) *MemoryOtpCache {
	return &MemoryOtpCache{
		entries: make(map[string]*domain.OtpEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// expired must be called with the lock held
func (c *MemoryOtpCache) expired(entry *domain.OtpEntry) bool {
	return c.now().Sub(entry.CreatedAt) > c.ttl
}

// Save implements domain.OtpCache
func (c *MemoryOtpCache) Save(_ context.Context, token string, entry *domain.OtpEntry) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	stored := *entry
	c.entries[token] = &stored
	return nil
}

// Get implements domain.OtpCache
func (c *MemoryOtpCache) Get(_ context.Context, token string) (*domain.OtpEntry, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[token]
	if !ok {
		return nil, domain.ErrOTPNotFound
	}
	if c.expired(entry) {
		delete(c.entries, token)
		return nil, domain.ErrOTPNotFound
	}

	copied := *entry
	return &copied, nil
}

// IncrementAttempts implements domain.OtpCache
func (c *MemoryOtpCache) IncrementAttempts(_ context.Context, token string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[token]
	if !ok || c.expired(entry) {
		delete(c.entries, token)
		return 0, domain.ErrOTPNotFound
	}

	entry.FailedAttempts++
	return entry.FailedAttempts, nil
}

// Delete implements domain.OtpCache
func (c *MemoryOtpCache) Delete(_ context.Context, token string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, token)
	return nil
}

var _ domain.OtpCache = (*MemoryOtpCache)(nil)

// MemoryStateStore is the in-process twin of RedisStateStore
type MemoryStateStore struct {
	mu     sync.Mutex
	states map[string]time.Time
	ttl    time.Duration
	now    func() time.Time
}

// NewMemoryStateStore creates an in-process OAuth state store
func NewMemoryStateStore(ttl time.Duration) *MemoryStateStore {
	return &MemoryStateStore{
		states: make(map[string]time.Time),
		ttl:    ttl,
		now:    time.Now,
	}
}

// Store implements domain.StateStore
func (s *MemoryStateStore) Store(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.states[state] = s.now().Add(s.ttl)
	return nil
}

// Consume implements domain.StateStore
func (s *MemoryStateStore) Consume(_ context.Context, state string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	expiresAt, ok := s.states[state]
	if !ok {
		return domain.ErrInvalidState
	}
	delete(s.states, state)
	if s.now().After(expiresAt) {
		return domain.ErrInvalidState
	}
	return nil
}

var _ domain.StateStore = (*MemoryStateStore)(nil)
