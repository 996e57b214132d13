package ledger

import (
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

// 账本领域错误定义
var (
	// ErrEntryNotFound 流水不存在
	ErrEntryNotFound = apperrors.New(apperrors.ErrCodeNotFound, "流水记录不存在")

	// ErrConfirmationConflict 确认号已被其他账户或其他类型的操作使用
	ErrConfirmationConflict = apperrors.New(apperrors.ErrCodeConfirmationConflict, "确认号已被使用")

	ErrInvalidConfirmation = apperrors.New(apperrors.ErrCodeInvalidParams, "确认号必须是合法的GUID")
	ErrInvalidQuantity     = apperrors.New(apperrors.ErrCodeInvalidParams, "购买数量必须大于0")
	ErrInvalidAmount       = apperrors.New(apperrors.ErrCodeInvalidParams, "充值金额应在10-10000之间")

	// ErrCommitFailed 事务提交失败(所有修改均已回滚)
	ErrCommitFailed = apperrors.New(apperrors.ErrCodeCommitFailed, "交易提交失败，请使用相同确认号重试")
)
