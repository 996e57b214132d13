package review

import (
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

// 评论领域错误定义
var (
	// ErrDuplicateReview 同一账户对同一本书只能评论一次(匿名评论也计入)
	ErrDuplicateReview = apperrors.New(apperrors.ErrCodeDuplicateReview, "您已经评论过这本书")

	ErrInvalidScore       = apperrors.New(apperrors.ErrCodeInvalidParams, "评分应在0-10之间")
	ErrInvalidDescription = apperrors.New(apperrors.ErrCodeInvalidParams, "评论内容不能超过500个字符")
)
