package auth

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// RevocationStore remembers refresh token ids that may no longer be used.
type RevocationStore interface {
	Revoke(ctx context.Context, jti string, until time.Time) error
	IsRevoked(ctx context.Context, jti string) (bool, error)
	// RevokeIfAbsent revokes jti and reports whether this call did it. A
	// false result means the id was already revoked or has expired.
	RevokeIfAbsent(ctx context.Context, jti string, until time.Time) (bool, error)
}

// RedisRevocationStore keeps revoked ids as keys that expire with the token.
type RedisRevocationStore struct {
	client *redis.Client
	prefix string
}

// NewRedisRevocationStore builds a Redis-backed store.
func NewRedisRevocationStore(client *redis.Client) *RedisRevocationStore {
	return &RedisRevocationStore{client: client, prefix: "auth:revoked:"}
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, until time.Time) error {
	ttl := time.Until(until)
	if ttl <= 0 {
		return nil
	}
	return s.client.Set(ctx, s.prefix+jti, 1, ttl).Err()
}

func (s *RedisRevocationStore) RevokeIfAbsent(ctx context.Context, jti string, until time.Time) (bool, error) {
	ttl := time.Until(until)
	if ttl <= 0 {
		return false, nil
	}
	return s.client.SetNX(ctx, s.prefix+jti, 1, ttl).Result()
}

func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, s.prefix+jti).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MemoryRevocationStore is the single-process fallback. Expired entries are
// dropped by Purge, which the revocation sweeper runs on a schedule.
type MemoryRevocationStore struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryRevocationStore returns an empty store.
func NewMemoryRevocationStore() *MemoryRevocationStore {
	return &MemoryRevocationStore{entries: make(map[string]time.Time), now: time.Now}
}

func (s *MemoryRevocationStore) Revoke(_ context.Context, jti string, until time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if until.After(s.now()) {
		s.entries[jti] = until
	}
	return nil
}

func (s *MemoryRevocationStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	until, ok := s.entries[jti]
	return ok && until.After(s.now()), nil
}

func (s *MemoryRevocationStore) RevokeIfAbsent(_ context.Context, jti string, until time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if !until.After(now) {
		return false, nil
	}
	if current, ok := s.entries[jti]; ok && current.After(now) {
		return false, nil
	}
	s.entries[jti] = until
	return true, nil
}

// Purge removes expired entries and reports how many were dropped.
func (s *MemoryRevocationStore) Purge() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	removed := 0
	for jti, until := range s.entries {
		if !until.After(now) {
			delete(s.entries, jti)
			removed++
		}
	}
	return removed
}

// Len reports the number of tracked ids.
func (s *MemoryRevocationStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
