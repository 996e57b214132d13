package review

import (
	"strings"
	"time"
	"unicode/utf8"
)

const (
	MinScore             = 0
	MaxScore             = 10
	MaxDescriptionLength = 500

	// AnonymousAuthor 匿名评论展示的作者名
	AnonymousAuthor = "ANONYMOUS"
)

// Review 图书评论
// 设计说明:
// 1. AccountID为nil表示匿名评论(存储层断开与账户的关联)
// 2. ReviewerKey始终保存提交者的账户ID(指纹),用于"每人每本书只能评论一次"的校验,
//    匿名评论同样受此限制
type Review struct {
	ID          uint
	BookID      uint
	AccountID   *uint
	ReviewerKey uint
	Score       int
	Description string
	CreatedAt   time.Time
}

// NewReview 创建评论,anonymous为true时不保存账户关联
func NewReview(bookID, reviewerID uint, score int, description string, anonymous bool) (*Review, error) {
	r := &Review{
		BookID:      bookID,
		ReviewerKey: reviewerID,
		Score:       score,
		Description: strings.TrimSpace(description),
		CreatedAt:   time.Now(),
	}
	if !anonymous {
		id := reviewerID
		r.AccountID = &id
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// Validate 校验评分和描述
func (r *Review) Validate() error {
	if r.Score < MinScore || r.Score > MaxScore {
		return ErrInvalidScore
	}
	if utf8.RuneCountInString(r.Description) > MaxDescriptionLength {
		return ErrInvalidDescription
	}
	return nil
}

// IsAnonymous 是否匿名评论
func (r *Review) IsAnonymous() bool {
	return r.AccountID == nil
}
