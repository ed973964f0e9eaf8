package redis

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retaildesk/backend/internal/store"
)

func TestRedisStoreRoundTrip(t *testing.T) {
	addr := os.Getenv("RETAILDESK_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("set RETAILDESK_TEST_REDIS_ADDR to run redis integration test")
	}

	ctx := context.Background()
	prefix := fmt.Sprintf("retaildesk-it-%d", time.Now().UnixNano())
	s := New(addr, "", 0, prefix)
	require.NoError(t, s.Ping(ctx))
	t.Cleanup(func() {
		_ = s.client.Del(ctx, s.redisKey(store.KeyDiscounts)).Err()
		_ = s.Close()
	})

	_, err := s.Load(ctx, store.KeyDiscounts)
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.Save(ctx, store.KeyDiscounts, []byte(`[]`)))
	got, err := s.Load(ctx, store.KeyDiscounts)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(got))
}

func TestRedisKeyUsesPrefix(t *testing.T) {
	s := New("127.0.0.1:0", "", 0, "")
	t.Cleanup(func() { _ = s.Close() })

	assert.Equal(t, "retaildesk:products", s.redisKey(store.KeyProducts))
}
