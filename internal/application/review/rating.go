package review

import (
	"context"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/internal/domain/review"
	"github.com/xiebiao/bigbooks/pkg/metrics"
)

// RatingCache 评分缓存(redis.RatingCache实现)
// 写入带版本号:回源前Get拿到的版本在回源期间被Invalidate过,写回的值不会再命中
type RatingCache interface {
	// Get found=false表示未命中;found=true且rating=nil表示没有评论
	Get(ctx context.Context, bookID uint) (rating *decimal.Decimal, found bool, version int64, err error)
	Set(ctx context.Context, bookID uint, version int64, rating *decimal.Decimal) error
	Invalidate(ctx context.Context, bookID uint) error
}

// NopRatingCache 未启用Redis时使用,每次都回源
type NopRatingCache struct{}

func (NopRatingCache) Get(context.Context, uint) (*decimal.Decimal, bool, int64, error) {
	metrics.RecordRatingCache("bypass")
	return nil, false, 0, nil
}

func (NopRatingCache) Set(context.Context, uint, int64, *decimal.Decimal) error { return nil }
func (NopRatingCache) Invalidate(context.Context, uint) error                   { return nil }

// RatingAggregator 图书评分
// 单本图书走Cache-Aside:缓存故障(含熔断打开)时直接回源数据库,不影响展示
// 列表页批量查询直接读数据库
type RatingAggregator struct {
	reviews review.Repository
	cache   RatingCache
	log     *zap.Logger
}

// NewRatingAggregator 创建评分聚合器
func NewRatingAggregator(reviews review.Repository, cache RatingCache, log *zap.Logger) *RatingAggregator {
	return &RatingAggregator{reviews: reviews, cache: cache, log: log}
}

// Rating 单本图书的评分,没有评论时返回nil
func (a *RatingAggregator) Rating(ctx context.Context, bookID uint) (*decimal.Decimal, error) {
	rating, found, version, err := a.cache.Get(ctx, bookID)
	if err != nil {
		a.log.Debug("评分缓存不可用,回源数据库", zap.Uint("book_id", bookID), zap.Error(err))
	} else if found {
		return rating, nil
	}

	scores, err := a.reviews.ScoresByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}
	rating = review.ComputeRating(scores)

	if err := a.cache.Set(ctx, bookID, version, rating); err != nil {
		a.log.Debug("写入评分缓存失败", zap.Uint("book_id", bookID), zap.Error(err))
	}
	return rating, nil
}

// Ratings 批量计算评分
func (a *RatingAggregator) Ratings(ctx context.Context, bookIDs []uint) (map[uint]*decimal.Decimal, error) {
	scores, err := a.reviews.ScoresByBooks(ctx, bookIDs)
	if err != nil {
		return nil, err
	}
	ratings := make(map[uint]*decimal.Decimal, len(bookIDs))
	for _, id := range bookIDs {
		ratings[id] = review.ComputeRating(scores[id])
	}
	return ratings, nil
}

// Invalidate 评论变化后清除缓存
func (a *RatingAggregator) Invalidate(ctx context.Context, bookID uint) {
	if err := a.cache.Invalidate(ctx, bookID); err != nil {
		a.log.Warn("清除评分缓存失败", zap.Uint("book_id", bookID), zap.Error(err))
	}
}
