package dto

import (
	appreview "github.com/xiebiao/bigbooks/internal/application/review"
)

// AddReviewRequest 发表评论请求
type AddReviewRequest struct {
	Score       *int   `json:"score" binding:"required,min=0,max=10" example:"8"`
	Description string `json:"description" binding:"max=500" example:"值得一读"`
	Anonymous   bool   `json:"anonymous" example:"false"`
}

// ReviewItem 评论
type ReviewItem struct {
	ID          uint   `json:"id" example:"1"`
	BookID      uint   `json:"book_id" example:"1"`
	Author      string `json:"author" example:"ANONYMOUS"`
	Score       int    `json:"score" example:"8"`
	Description string `json:"description"`
	Date        string `json:"date" example:"2024-01-15 10:30:00"`
}

// NewReviewItem 应用层DTO → HTTP DTO
func NewReviewItem(r appreview.ReviewInfo) ReviewItem {
	return ReviewItem{
		ID:          r.ID,
		BookID:      r.BookID,
		Author:      r.Author,
		Score:       r.Score,
		Description: r.Description,
		Date:        r.Date,
	}
}

// NewReviewList 评论列表
func NewReviewList(list []appreview.ReviewInfo) []ReviewItem {
	items := make([]ReviewItem, 0, len(list))
	for _, r := range list {
		items = append(items, NewReviewItem(r))
	}
	return items
}
