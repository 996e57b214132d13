package ledger

import (
	"sort"

	"github.com/shopspring/decimal"
)

// SortStatement 对账单排序:时间倒序(最近的在前),时间相同时ID大的在前
// 保证相同数据每次排序结果一致
func SortStatement(entries []*Entry) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.After(b.CreatedAt)
		}
		return a.ID > b.ID
	})
}

// Reconciliation 余额核对结果
// 不变式:Wallet == Seed + Sum
type Reconciliation struct {
	AccountID  uint
	Seed       decimal.Decimal
	Sum        decimal.Decimal
	Wallet     decimal.Decimal
	Consistent bool
}

// Reconcile 核对账户余额与流水
func Reconcile(accountID uint, seed, sum, wallet decimal.Decimal) Reconciliation {
	return Reconciliation{
		AccountID:  accountID,
		Seed:       seed,
		Sum:        sum,
		Wallet:     wallet,
		Consistent: seed.Add(sum).Equal(wallet) && !wallet.IsNegative(),
	}
}
