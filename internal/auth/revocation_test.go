package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryRevocationStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryRevocationStore()
	store.now = func() time.Time { return now }

	require.NoError(t, store.Revoke(ctx, "live", now.Add(time.Hour)))
	require.NoError(t, store.Revoke(ctx, "short", now.Add(time.Minute)))
	require.NoError(t, store.Revoke(ctx, "already-expired", now.Add(-time.Minute)))
	assert.Equal(t, 2, store.Len())

	revoked, err := store.IsRevoked(ctx, "live")
	require.NoError(t, err)
	assert.True(t, revoked)

	revoked, err = store.IsRevoked(ctx, "unknown")
	require.NoError(t, err)
	assert.False(t, revoked)

	now = now.Add(2 * time.Minute)
	revoked, err = store.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)

	assert.Equal(t, 1, store.Purge())
	assert.Equal(t, 1, store.Len())
}

func TestMemoryRevokeIfAbsent(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store := NewMemoryRevocationStore()
	store.now = func() time.Time { return now }

	claimed, err := store.RevokeIfAbsent(ctx, "jti-1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.RevokeIfAbsent(ctx, "jti-1", now.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, claimed)

	claimed, err = store.RevokeIfAbsent(ctx, "expired", now.Add(-time.Second))
	require.NoError(t, err)
	assert.False(t, claimed)

	now = now.Add(2 * time.Minute)
	claimed, err = store.RevokeIfAbsent(ctx, "jti-1", now.Add(time.Minute))
	require.NoError(t, err)
	assert.True(t, claimed)
}

func TestMemoryRevokeIfAbsentConcurrent(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryRevocationStore()
	until := time.Now().Add(time.Hour)

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		wins int
	)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			claimed, err := store.RevokeIfAbsent(ctx, "shared", until)
			if err == nil && claimed {
				mu.Lock()
				wins++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, wins)
}

// scriptedRedis answers SET commands locally so the Redis store can be
// exercised without a server.
type scriptedRedis struct {
	mu   sync.Mutex
	keys map[string]bool
	args [][]any
}

func (s *scriptedRedis) DialHook(next redis.DialHook) redis.DialHook { return next }

func (s *scriptedRedis) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return next
}

func (s *scriptedRedis) ProcessHook(redis.ProcessHook) redis.ProcessHook {
	return func(_ context.Context, cmd redis.Cmder) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		s.args = append(s.args, cmd.Args())
		boolCmd, ok := cmd.(*redis.BoolCmd)
		if !ok || cmd.Name() != "set" {
			return errors.New("unexpected command " + cmd.Name())
		}
		key := cmd.Args()[1].(string)
		boolCmd.SetVal(!s.keys[key])
		s.keys[key] = true
		return nil
	}
}

func TestRedisRevokeIfAbsentUsesSetNX(t *testing.T) {
	ctx := context.Background()
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = client.Close() })
	script := &scriptedRedis{keys: map[string]bool{}}
	client.AddHook(script)

	store := NewRedisRevocationStore(client)
	until := time.Now().Add(time.Hour)

	claimed, err := store.RevokeIfAbsent(ctx, "jti-1", until)
	require.NoError(t, err)
	assert.True(t, claimed)

	claimed, err = store.RevokeIfAbsent(ctx, "jti-1", until)
	require.NoError(t, err)
	assert.False(t, claimed)

	claimed, err = store.RevokeIfAbsent(ctx, "jti-2", time.Now().Add(-time.Minute))
	require.NoError(t, err)
	assert.False(t, claimed)

	require.Len(t, script.args, 2)
	assert.Equal(t, "auth:revoked:jti-1", script.args[0][1])
	assert.Equal(t, "nx", strings.ToLower(fmt.Sprint(script.args[0][len(script.args[0])-1])))
}
