package ledger

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/book"
	"github.com/xiebiao/bigbooks/internal/domain/ledger"
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

// rejectionReason 拒绝原因(用作指标标签,取值有限)
func rejectionReason(err error) string {
	switch {
	case errors.Is(err, account.ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, book.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, account.ErrAccountDeactivated):
		return "account_deactivated"
	case errors.Is(err, account.ErrInvalidUser):
		return "invalid_user"
	case errors.Is(err, book.ErrBookNotFound):
		return "invalid_book"
	case errors.Is(err, ledger.ErrConfirmationConflict):
		return "confirmation_conflict"
	case errors.Is(err, ledger.ErrCommitFailed):
		return "commit_failed"
	}
	if apperrors.CategoryOfError(err) == apperrors.CategoryValidation {
		return "invalid_params"
	}
	return "internal"
}

// commitFailed fn执行成功但提交失败:所有修改已回滚,调用方可用同一确认号重试
func commitFailed(cause error) error {
	return fmt.Errorf("%w: %w", ledger.ErrCommitFailed, cause)
}

// validateConfirmation 确认号必须是非空GUID,统一转小写后作为幂等键
func validateConfirmation(confirmation string) (string, error) {
	id, err := uuid.Parse(confirmation)
	if err != nil || id == uuid.Nil {
		return "", ledger.ErrInvalidConfirmation
	}
	return id.String(), nil
}
