package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategoryOf(t *testing.T) {
	tests := []struct {
		name string
		code int
		want Category
	}{
		{"参数错误", ErrCodeInvalidParams, CategoryValidation},
		{"绑定错误", ErrCodeBindError, CategoryValidation},
		{"账户不存在", ErrCodeAccountNotFound, CategoryNotFound},
		{"图书不存在", ErrCodeBookNotFound, CategoryNotFound},
		{"余额不足", ErrCodeInsufficientFunds, CategoryBusinessRule},
		{"库存不足", ErrCodeInsufficientStock, CategoryBusinessRule},
		{"账户停用", ErrCodeAccountDeactivated, CategoryBusinessRule},
		{"未登录", ErrCodeUnauthorized, CategoryBusinessRule},
		{"数据库错误", ErrCodeDatabaseError, CategoryInfrastructure},
		{"提交失败", ErrCodeCommitFailed, CategoryInfrastructure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CategoryOf(tt.code))
		})
	}
}

func TestGetAppError(t *testing.T) {
	t.Run("透传AppError", func(t *testing.T) {
		wrapped := fmt.Errorf("外层: %w", ErrForbidden)
		assert.Same(t, ErrForbidden, GetAppError(wrapped))
	})

	t.Run("普通错误包装为内部错误", func(t *testing.T) {
		appErr := GetAppError(errors.New("boom"))
		assert.Equal(t, ErrCodeInternal, appErr.Code)
		assert.Equal(t, CategoryInfrastructure, appErr.Category())
	})

	t.Run("Unwrap可以找到底层错误", func(t *testing.T) {
		root := errors.New("connection refused")
		appErr := Wrap(root, "查询失败")
		assert.True(t, errors.Is(appErr, root))
		assert.Contains(t, appErr.Error(), "connection refused")
	})
}

func TestCategoryOfError(t *testing.T) {
	assert.Equal(t, CategoryValidation, CategoryOfError(ErrInvalidParams))
	assert.Equal(t, CategoryInfrastructure, CategoryOfError(errors.New("x")))
}
