package mysql

import (
	"context"

	"gorm.io/gorm"

	"github.com/xiebiao/bigbooks/internal/domain/review"
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

// reviewRepository 评论仓储实现(MySQL)
type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository 创建评论仓储
func NewReviewRepository(db *gorm.DB) review.Repository {
	return &reviewRepository{db: db}
}

// Create 创建评论
// (book_id, reviewer_key)唯一索引冲突说明并发提交了第二条评论
func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	model := &ReviewModel{
		BookID:      rv.BookID,
		ReviewerKey: rv.ReviewerKey,
		AccountID:   rv.AccountID,
		Score:       rv.Score,
		Description: rv.Description,
		CreatedAt:   rv.CreatedAt,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return review.ErrDuplicateReview
		}
		return apperrors.Wrap(err, "创建评论失败")
	}

	rv.ID = model.ID
	rv.CreatedAt = model.CreatedAt
	return nil
}

// ExistsByReviewer 提交者是否已评论过该书
func (r *reviewRepository) ExistsByReviewer(ctx context.Context, bookID, reviewerKey uint) (bool, error) {
	var count int64
	err := r.getDB(ctx).Model(&ReviewModel{}).
		Where("book_id = ? AND reviewer_key = ?", bookID, reviewerKey).
		Count(&count).Error
	if err != nil {
		return false, apperrors.Wrap(err, "查询评论失败")
	}
	return count > 0, nil
}

// ListByBook 按评论时间、ID升序
func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint) ([]*review.Review, error) {
	var models []ReviewModel
	err := r.getDB(ctx).
		Where("book_id = ?", bookID).
		Order("created_at ASC, id ASC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询评论失败")
	}

	reviews := make([]*review.Review, len(models))
	for i, m := range models {
		reviews[i] = &review.Review{
			ID:          m.ID,
			BookID:      m.BookID,
			AccountID:   m.AccountID,
			ReviewerKey: m.ReviewerKey,
			Score:       m.Score,
			Description: m.Description,
			CreatedAt:   m.CreatedAt,
		}
	}
	return reviews, nil
}

// ScoresByBook 某本书的全部评分
func (r *reviewRepository) ScoresByBook(ctx context.Context, bookID uint) ([]int, error) {
	var scores []int
	err := r.getDB(ctx).Model(&ReviewModel{}).
		Where("book_id = ?", bookID).
		Pluck("score", &scores).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询评分失败")
	}
	return scores, nil
}

// ScoresByBooks 批量查询评分
// 教学要点:一次IN查询代替逐本查询,避免N+1问题
func (r *reviewRepository) ScoresByBooks(ctx context.Context, bookIDs []uint) (map[uint][]int, error) {
	result := make(map[uint][]int, len(bookIDs))
	if len(bookIDs) == 0 {
		return result, nil
	}

	var rows []struct {
		BookID uint
		Score  int
	}
	err := r.getDB(ctx).Model(&ReviewModel{}).
		Select("book_id, score").
		Where("book_id IN ?", bookIDs).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询评分失败")
	}

	for _, row := range rows {
		result[row.BookID] = append(result[row.BookID], row.Score)
	}
	return result, nil
}

func (r *reviewRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}
