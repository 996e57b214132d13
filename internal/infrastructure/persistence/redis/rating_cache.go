package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/pkg/circuitbreaker"
	"github.com/xiebiao/bigbooks/pkg/metrics"
)

// noRating 缓存"没有评论"这一结果,避免无评论的热门图书反复回源
const noRating = "none"

// RatingCache 图书评分缓存(Cache-Aside)
// 设计说明:
// 1. 读:先查缓存,未命中由调用方回源数据库后带着读到的版本号Set
// 2. 写:新增评论后Invalidate把版本号加一
// 3. 缓存值形如"版本:评分",版本不是当前版本的值按未命中处理;
//    回源期间有评论写入时,回源结果带着旧版本写回,不会被当作命中
// 4. 所有Redis调用经过熔断器,Redis故障时快速失败,调用方直接回源
type RatingCache struct {
	client  redis.Cmdable
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
	log     *zap.Logger
}

// NewRatingCache 创建评分缓存
func NewRatingCache(client redis.Cmdable, ttl time.Duration, log *zap.Logger) *RatingCache {
	breaker := circuitbreaker.NewCircuitBreaker("rating-cache", circuitbreaker.Config{
		Timeout: 10 * time.Second,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			log.Warn("熔断器状态变化",
				zap.String("name", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})
	return &RatingCache{client: client, ttl: ttl, breaker: breaker, log: log}
}

func ratingKey(bookID uint) string {
	return fmt.Sprintf("rating:book:%d", bookID)
}

func versionKey(bookID uint) string {
	return fmt.Sprintf("rating:book:%d:ver", bookID)
}

// Get 读取缓存和当前版本号
// found=false表示未命中;rating=nil且found=true表示"没有评论"
func (c *RatingCache) Get(ctx context.Context, bookID uint) (rating *decimal.Decimal, found bool, version int64, err error) {
	var vals []interface{}
	err = c.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		var e error
		vals, e = c.client.MGet(ctx, ratingKey(bookID), versionKey(bookID)).Result()
		return e
	})
	switch {
	case errors.Is(err, circuitbreaker.ErrOpenState):
		metrics.RecordRatingCache("bypass")
		return nil, false, 0, err
	case err != nil:
		metrics.RecordRatingCache("error")
		return nil, false, 0, err
	}

	if v, ok := vals[1].(string); ok {
		if version, err = strconv.ParseInt(v, 10, 64); err != nil {
			c.log.Warn("评分版本号格式错误", zap.Uint("book_id", bookID), zap.String("value", v))
			return nil, false, 0, nil
		}
	}
	raw, ok := vals[0].(string)
	if !ok {
		metrics.RecordRatingCache("miss")
		return nil, false, version, nil
	}

	verPart, val, ok := strings.Cut(raw, ":")
	if !ok || verPart != strconv.FormatInt(version, 10) {
		metrics.RecordRatingCache("stale")
		return nil, false, version, nil
	}

	metrics.RecordRatingCache("hit")
	if val == noRating {
		return nil, true, version, nil
	}
	d, err := decimal.NewFromString(val)
	if err != nil {
		c.log.Warn("评分缓存格式错误", zap.Uint("book_id", bookID), zap.String("value", raw))
		return nil, false, version, nil
	}
	return &d, true, version, nil
}

// Set 写入缓存,version为回源前Get返回的版本号
func (c *RatingCache) Set(ctx context.Context, bookID uint, version int64, rating *decimal.Decimal) error {
	val := noRating
	if rating != nil {
		val = rating.StringFixed(2)
	}
	return c.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		return c.client.Set(ctx, ratingKey(bookID), fmt.Sprintf("%d:%s", version, val), c.ttl).Err()
	})
}

// Invalidate 版本号加一,之前写入的缓存全部作废
func (c *RatingCache) Invalidate(ctx context.Context, bookID uint) error {
	return c.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		return c.client.Incr(ctx, versionKey(bookID)).Err()
	})
}

// BreakerState 熔断器当前状态
func (c *RatingCache) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}
