package review

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/book"
	"github.com/xiebiao/bigbooks/internal/domain/review"
)

// AddReviewUseCase 发表评论用例
// 业务规则:
// 1. 账户必须处于启用状态,图书必须存在
// 2. 每个账户对每本书只能评论一次
// 3. 匿名评论只隐藏作者,仍按提交者账户检查第2条
type AddReviewUseCase struct {
	accounts account.Service
	books    book.Repository
	reviews  review.Repository
	ratings  *RatingAggregator
	log      *zap.Logger
}

// NewAddReviewUseCase 创建发表评论用例
func NewAddReviewUseCase(
	accounts account.Service,
	books book.Repository,
	reviews review.Repository,
	ratings *RatingAggregator,
	log *zap.Logger,
) *AddReviewUseCase {
	return &AddReviewUseCase{accounts: accounts, books: books, reviews: reviews, ratings: ratings, log: log}
}

// AddReviewRequest 发表评论请求
type AddReviewRequest struct {
	Identity    string
	BookID      uint
	Score       int
	Description string
	Anonymous   bool
}

// ReviewInfo 评论展示信息
type ReviewInfo struct {
	ID          uint
	BookID      uint
	Author      string // 邮箱,匿名评论为ANONYMOUS
	Score       int
	Description string
	Date        string
}

// Execute 发表评论
func (uc *AddReviewUseCase) Execute(ctx context.Context, req AddReviewRequest) (*ReviewInfo, error) {
	accountID, err := uc.accounts.ResolveAccountKey(ctx, req.Identity)
	if err != nil {
		return nil, err
	}
	a, err := uc.accounts.GetAccount(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if err := a.EnsureActive(); err != nil {
		return nil, err
	}

	if _, err := uc.books.FindByID(ctx, req.BookID); err != nil {
		return nil, err
	}

	// 先按提交者检查,再决定是否断开账户关联
	exists, err := uc.reviews.ExistsByReviewer(ctx, req.BookID, a.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, review.ErrDuplicateReview
	}

	r, err := review.NewReview(req.BookID, a.ID, req.Score, req.Description, req.Anonymous)
	if err != nil {
		return nil, err
	}
	// 并发提交由(book_id, reviewer_key)唯一索引兜底
	if err := uc.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	uc.ratings.Invalidate(ctx, req.BookID)

	uc.log.Info("评论已发表",
		zap.Uint("book_id", r.BookID),
		zap.Uint("review_id", r.ID),
		zap.Bool("anonymous", r.IsAnonymous()),
	)

	author := a.Email
	if r.IsAnonymous() {
		author = review.AnonymousAuthor
	}
	return toInfo(r, author), nil
}

// ListReviewsUseCase 评论列表
type ListReviewsUseCase struct {
	accounts account.Service
	books    book.Repository
	reviews  review.Repository
}

// NewListReviewsUseCase 创建评论列表用例
func NewListReviewsUseCase(accounts account.Service, books book.Repository, reviews review.Repository) *ListReviewsUseCase {
	return &ListReviewsUseCase{accounts: accounts, books: books, reviews: reviews}
}

// ListReviewsRequest 列表请求
type ListReviewsRequest struct {
	BookID uint
}

// Execute 按评论时间升序返回
func (uc *ListReviewsUseCase) Execute(ctx context.Context, req ListReviewsRequest) ([]ReviewInfo, error) {
	if _, err := uc.books.FindByID(ctx, req.BookID); err != nil {
		return nil, err
	}

	list, err := uc.reviews.ListByBook(ctx, req.BookID)
	if err != nil {
		return nil, err
	}

	emails := make(map[uint]string)
	result := make([]ReviewInfo, 0, len(list))
	for _, r := range list {
		author := review.AnonymousAuthor
		if !r.IsAnonymous() {
			id := *r.AccountID
			email, ok := emails[id]
			if !ok {
				a, err := uc.accounts.GetAccount(ctx, id)
				if err != nil {
					return nil, err
				}
				email = a.Email
				emails[id] = email
			}
			author = email
		}
		result = append(result, *toInfo(r, author))
	}
	return result, nil
}

func toInfo(r *review.Review, author string) *ReviewInfo {
	return &ReviewInfo{
		ID:          r.ID,
		BookID:      r.BookID,
		Author:      author,
		Score:       r.Score,
		Description: r.Description,
		Date:        r.CreatedAt.Format(time.DateTime),
	}
}
