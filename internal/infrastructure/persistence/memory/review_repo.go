package memory

import (
	"context"
	"sort"

	"github.com/xiebiao/bigbooks/internal/domain/review"
)

type reviewRepository struct {
	s *Store
}

// NewReviewRepository 创建评论仓储
func NewReviewRepository(s *Store) review.Repository {
	return &reviewRepository{s: s}
}

func (r *reviewRepository) Create(ctx context.Context, rv *review.Review) error {
	return r.s.write(ctx, func() error {
		key := reviewerKey{bookID: rv.BookID, reviewer: rv.ReviewerKey}
		if _, ok := r.s.reviewers[key]; ok {
			return review.ErrDuplicateReview
		}
		r.s.nextReviewID++
		rv.ID = r.s.nextReviewID

		cp := *rv
		r.s.reviews[rv.ID] = &cp
		r.s.reviewers[key] = rv.ID
		r.s.byBook[rv.BookID] = append(r.s.byBook[rv.BookID], rv.ID)
		return nil
	})
}

func (r *reviewRepository) ExistsByReviewer(ctx context.Context, bookID, reviewer uint) (bool, error) {
	var exists bool
	r.s.read(ctx, func() {
		_, exists = r.s.reviewers[reviewerKey{bookID: bookID, reviewer: reviewer}]
	})
	return exists, nil
}

func (r *reviewRepository) ListByBook(ctx context.Context, bookID uint) ([]*review.Review, error) {
	var list []*review.Review
	r.s.read(ctx, func() {
		for _, id := range r.s.byBook[bookID] {
			cp := *r.s.reviews[id]
			list = append(list, &cp)
		}
	})
	sort.SliceStable(list, func(i, j int) bool {
		if !list[i].CreatedAt.Equal(list[j].CreatedAt) {
			return list[i].CreatedAt.Before(list[j].CreatedAt)
		}
		return list[i].ID < list[j].ID
	})
	return list, nil
}

func (r *reviewRepository) ScoresByBook(ctx context.Context, bookID uint) ([]int, error) {
	var scores []int
	r.s.read(ctx, func() {
		for _, id := range r.s.byBook[bookID] {
			scores = append(scores, r.s.reviews[id].Score)
		}
	})
	return scores, nil
}

func (r *reviewRepository) ScoresByBooks(ctx context.Context, bookIDs []uint) (map[uint][]int, error) {
	result := make(map[uint][]int, len(bookIDs))
	r.s.read(ctx, func() {
		for _, bookID := range bookIDs {
			for _, id := range r.s.byBook[bookID] {
				result[bookID] = append(result[bookID], r.s.reviews[id].Score)
			}
		}
	})
	return result, nil
}
