package review

import (
	"context"
)

// Repository 评论仓储接口(ReviewStore)
type Repository interface {
	// Create 创建评论,(BookID, ReviewerKey)重复返回ErrDuplicateReview
	Create(ctx context.Context, r *Review) error

	// ExistsByReviewer 提交者是否已评论过该书
	ExistsByReviewer(ctx context.Context, bookID, reviewerKey uint) (bool, error)

	// ListByBook 按评论时间升序、ID升序
	ListByBook(ctx context.Context, bookID uint) ([]*Review, error)

	// ScoresByBook 某本书的全部评分
	ScoresByBook(ctx context.Context, bookID uint) ([]int, error)

	// ScoresByBooks 批量查询评分,列表页避免N+1查询
	ScoresByBooks(ctx context.Context, bookIDs []uint) (map[uint][]int, error)
}
