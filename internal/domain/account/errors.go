package account

import (
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

// 账户领域错误定义
var (
	// ErrAccountNotFound 账户不存在
	ErrAccountNotFound = apperrors.New(apperrors.ErrCodeAccountNotFound, "账户不存在")

	// ErrInvalidUser 无法把调用方身份解析为账户
	ErrInvalidUser = apperrors.New(apperrors.ErrCodeInvalidUser, "无效的用户")

	// ErrAccountDeactivated 账户已停用
	ErrAccountDeactivated = apperrors.New(apperrors.ErrCodeAccountDeactivated, "账户已停用")

	// ErrInsufficientFunds 余额不足
	ErrInsufficientFunds = apperrors.New(apperrors.ErrCodeInsufficientFunds, "钱包余额不足")

	// ErrEmailDuplicate 邮箱已存在
	ErrEmailDuplicate = apperrors.New(apperrors.ErrCodeEmailDuplicate, "邮箱已被注册")

	ErrInvalidEmail    = apperrors.New(apperrors.ErrCodeInvalidParams, "邮箱格式不正确")
	ErrInvalidName     = apperrors.New(apperrors.ErrCodeInvalidParams, "用户名长度应为1-100个字符")
	ErrInvalidRole     = apperrors.New(apperrors.ErrCodeInvalidParams, "角色必须是Admin或Customer")
	ErrInvalidPassword = apperrors.New(apperrors.ErrCodeInvalidParams, "密码长度应为4-20个字符")
	ErrInvalidWallet   = apperrors.New(apperrors.ErrCodeInvalidParams, "初始余额应在1-5000之间")
	ErrInvalidAmount   = apperrors.New(apperrors.ErrCodeInvalidParams, "金额必须大于0")
)
