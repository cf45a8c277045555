package availability

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"courtslot/internal/interval"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCacheMissThenHit(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb, 30*time.Second)
	ctx := context.Background()

	days := []DaySlots{{Date: "2026-09-07", Slots: []interval.Span{{Start: 540, End: 600}}}}
	raw, err := json.Marshal(days)
	require.NoError(t, err)

	// No version yet: the key embeds version 0.
	key := "availability:1:0:2026-09-07:2026-09-07"

	mock.ExpectGet("availability:ver:1").RedisNil()
	mock.ExpectGet(key).RedisNil()
	_, ok := cache.Get(ctx, 1, "2026-09-07", "2026-09-07")
	assert.False(t, ok)

	mock.ExpectGet("availability:ver:1").RedisNil()
	mock.ExpectSet(key, raw, 30*time.Second).SetVal("OK")
	cache.Set(ctx, 1, "2026-09-07", "2026-09-07", days)

	mock.ExpectGet("availability:ver:1").RedisNil()
	mock.ExpectGet(key).SetVal(string(raw))
	got, ok := cache.Get(ctx, 1, "2026-09-07", "2026-09-07")
	require.True(t, ok)
	assert.Equal(t, days, got)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheInvalidateBumpsVersion(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb, 30*time.Second)
	ctx := context.Background()

	mock.ExpectIncr("availability:ver:1").SetVal(1)
	cache.Invalidate(ctx, 1)

	// Reads now address a different key; the old entry is unreachable.
	mock.ExpectGet("availability:ver:1").SetVal("1")
	mock.ExpectGet("availability:1:1:2026-09-07:2026-09-07").RedisNil()
	_, ok := cache.Get(ctx, 1, "2026-09-07", "2026-09-07")
	assert.False(t, ok)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheDegradesOnRedisFailure(t *testing.T) {
	rdb, mock := redismock.NewClientMock()
	cache := NewCache(rdb, 30*time.Second)
	ctx := context.Background()

	mock.ExpectGet("availability:ver:1").SetErr(assert.AnError)
	_, ok := cache.Get(ctx, 1, "2026-09-07", "2026-09-07")
	assert.False(t, ok)
}
