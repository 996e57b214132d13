package ledger

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository 账本仓储接口(LedgerStore)
// 只追加:没有Update/Delete
type Repository interface {
	// Append 追加一条流水,确认号重复返回ErrConfirmationConflict
	Append(ctx context.Context, e *Entry) error

	// FindByConfirmation 按确认号查找,不存在返回ErrEntryNotFound
	FindByConfirmation(ctx context.Context, confirmation string) (*Entry, error)

	// ListByAccount 账户的全部流水(顺序不保证,由SortStatement排序)
	ListByAccount(ctx context.Context, accountID uint) ([]*Entry, error)

	// SumByAccount 账户流水金额合计
	SumByAccount(ctx context.Context, accountID uint) (decimal.Decimal, error)

	// CountDistinctBooks 每个账户购买过的不同图书数量
	CountDistinctBooks(ctx context.Context, accountIDs []uint) (map[uint]int, error)
}
