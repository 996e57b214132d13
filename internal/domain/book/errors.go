package book

import (
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

// 图书领域错误定义
var (
	// ErrBookNotFound 图书不存在(购买流程中即"无效图书")
	ErrBookNotFound = apperrors.New(apperrors.ErrCodeBookNotFound, "无效的图书")

	// ErrISBNDuplicate ISBN已存在
	ErrISBNDuplicate = apperrors.New(apperrors.ErrCodeISBNDuplicate, "ISBN号已存在")

	// ErrInsufficientStock 库存不足
	ErrInsufficientStock = apperrors.New(apperrors.ErrCodeInsufficientStock, "图书库存不足")

	ErrInvalidPrice    = apperrors.New(apperrors.ErrCodeInvalidParams, "价格应在0.01-1000之间且最多两位小数")
	ErrInvalidStock    = apperrors.New(apperrors.ErrCodeInvalidParams, "库存应在0-1000之间")
	ErrInvalidQuantity = apperrors.New(apperrors.ErrCodeInvalidParams, "数量必须大于0")
	ErrInvalidISBN     = apperrors.New(apperrors.ErrCodeInvalidParams, "ISBN格式不正确")
	ErrInvalidGenre    = apperrors.New(apperrors.ErrCodeInvalidParams, "未知的图书分类")
	ErrInvalidTitle    = apperrors.New(apperrors.ErrCodeInvalidParams, "书名长度应为1-200个字符")
	ErrInvalidAuthor   = apperrors.New(apperrors.ErrCodeInvalidParams, "作者长度应为1-100个字符")
)
