package locker

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testRedis connects to REDIS_TEST_ADDR and skips when no server is there.
func testRedis(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr, DB: 1})
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		t.Skipf("redis at %s unreachable: %v", addr, err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis_HeldPastTTL(t *testing.T) {
	client := testRedis(t)
	ctx := context.Background()
	prefix := "test:" + uuid.NewString()
	l := NewRedis(client, prefix, 300*time.Millisecond)

	unlock, err := l.Lock(ctx, "cart:1")
	require.NoError(t, err)

	time.Sleep(time.Second)

	_, err = l.Lock(ctx, "cart:1")
	assert.ErrorIs(t, err, ErrLockTimeout)
	assert.Greater(t, client.PTTL(ctx, prefix+":cart:1").Val(), time.Duration(0))

	unlock()
	unlock()
	assert.Equal(t, int64(0), client.Exists(ctx, prefix+":cart:1").Val())

	again, err := l.Lock(ctx, "cart:1")
	require.NoError(t, err)
	again()
}
