package redis

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/pkg/circuitbreaker"
)

func TestRatingCache_Get(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewRatingCache(client, 10*time.Minute, zap.NewNop())

	t.Run("命中", func(t *testing.T) {
		mock.ExpectMGet("rating:book:1", "rating:book:1:ver").SetVal([]interface{}{"2:3.50", "2"})

		rating, found, version, err := cache.Get(ctx, 1)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, int64(2), version)
		require.NotNil(t, rating)
		assert.Equal(t, "3.50", rating.StringFixed(2))
	})

	t.Run("命中无评论标记", func(t *testing.T) {
		mock.ExpectMGet("rating:book:2", "rating:book:2:ver").SetVal([]interface{}{"0:none", nil})

		rating, found, _, err := cache.Get(ctx, 2)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Nil(t, rating)
	})

	t.Run("未命中", func(t *testing.T) {
		mock.ExpectMGet("rating:book:3", "rating:book:3:ver").SetVal([]interface{}{nil, "5"})

		rating, found, version, err := cache.Get(ctx, 3)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Nil(t, rating)
		assert.Equal(t, int64(5), version, "未命中也返回当前版本号")
	})

	t.Run("旧版本的值按未命中处理", func(t *testing.T) {
		mock.ExpectMGet("rating:book:4", "rating:book:4:ver").SetVal([]interface{}{"0:4.00", "1"})

		_, found, version, err := cache.Get(ctx, 4)
		require.NoError(t, err)
		assert.False(t, found)
		assert.Equal(t, int64(1), version)
	})

	t.Run("脏数据按未命中处理", func(t *testing.T) {
		mock.ExpectMGet("rating:book:5", "rating:book:5:ver").SetVal([]interface{}{"abc", nil})

		_, found, _, err := cache.Get(ctx, 5)
		require.NoError(t, err)
		assert.False(t, found)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingCache_SetAndInvalidate(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewRatingCache(client, 10*time.Minute, zap.NewNop())

	rating := decimal.RequireFromString("6.66")
	mock.ExpectSet("rating:book:1", "3:6.66", 10*time.Minute).SetVal("OK")
	mock.ExpectSet("rating:book:2", "0:none", 10*time.Minute).SetVal("OK")
	mock.ExpectIncr("rating:book:1:ver").SetVal(4)

	require.NoError(t, cache.Set(ctx, 1, 3, &rating))
	require.NoError(t, cache.Set(ctx, 2, 0, nil))
	require.NoError(t, cache.Invalidate(ctx, 1))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// 回源期间发表评论:回源结果带旧版本写回,之后的读取不会命中它
func TestRatingCache_WriteBackAfterInvalidate(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewRatingCache(client, 10*time.Minute, zap.NewNop())

	mock.ExpectMGet("rating:book:7", "rating:book:7:ver").SetVal([]interface{}{nil, nil})
	mock.ExpectIncr("rating:book:7:ver").SetVal(1)
	mock.ExpectSet("rating:book:7", "0:8.00", 10*time.Minute).SetVal("OK")
	mock.ExpectMGet("rating:book:7", "rating:book:7:ver").SetVal([]interface{}{"0:8.00", "1"})

	_, found, version, err := cache.Get(ctx, 7)
	require.NoError(t, err)
	require.False(t, found)

	// 评论写入并作废缓存
	require.NoError(t, cache.Invalidate(ctx, 7))

	old := decimal.RequireFromString("8.00")
	require.NoError(t, cache.Set(ctx, 7, version, &old))

	_, found, version, err = cache.Get(ctx, 7)
	require.NoError(t, err)
	assert.False(t, found, "作废前的回源结果不能命中")
	assert.Equal(t, int64(1), version)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRatingCache_BreakerOpens(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	cache := NewRatingCache(client, time.Minute, zap.NewNop())

	down := errors.New("dial tcp: connection refused")
	for i := 0; i < 5; i++ {
		mock.ExpectMGet("rating:book:1", "rating:book:1:ver").SetErr(down)
		_, _, _, err := cache.Get(ctx, 1)
		assert.ErrorIs(t, err, down)
	}
	assert.Equal(t, circuitbreaker.StateOpen, cache.BreakerState())

	// 熔断后不再访问Redis
	_, found, _, err := cache.Get(ctx, 1)
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
	assert.False(t, found)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	client, mock := redismock.NewClientMock()
	store := NewSessionStore(client)

	t.Run("拉黑与检查", func(t *testing.T) {
		mock.ExpectSet("blacklist:jti-1", "revoked", time.Hour).SetVal("OK")
		mock.ExpectExists("blacklist:jti-1").SetVal(1)
		mock.ExpectExists("blacklist:jti-2").SetVal(0)

		require.NoError(t, store.Revoke(ctx, "jti-1", time.Hour))

		revoked, err := store.IsRevoked(ctx, "jti-1")
		require.NoError(t, err)
		assert.True(t, revoked)

		revoked, err = store.IsRevoked(ctx, "jti-2")
		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("已过期的Token不写黑名单", func(t *testing.T) {
		require.NoError(t, store.Revoke(ctx, "jti-3", 0))
	})

	t.Run("会话", func(t *testing.T) {
		mock.ExpectTxPipeline()
		mock.ExpectHSet("session:7", map[string]interface{}{"ip": "127.0.0.1"}).SetVal(1)
		mock.ExpectExpire("session:7", 24*time.Hour).SetVal(true)
		mock.ExpectTxPipelineExec()
		mock.ExpectHGetAll("session:7").SetVal(map[string]string{"ip": "127.0.0.1"})
		mock.ExpectDel("session:7").SetVal(1)

		require.NoError(t, store.SaveSession(ctx, 7, map[string]interface{}{"ip": "127.0.0.1"}, 24*time.Hour))

		data, err := store.GetSession(ctx, 7)
		require.NoError(t, err)
		assert.Equal(t, "127.0.0.1", data["ip"])

		require.NoError(t, store.DeleteSession(ctx, 7))
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
