package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/xiebiao/bigbooks/internal/application"
	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/ledger"
)

// ReconcileUseCase 余额核对
// 检查 Wallet == SeedBalance + Σ流水金额
type ReconcileUseCase struct {
	tx       application.Transactor
	accounts account.Repository
	entries  ledger.Repository
}

// NewReconcileUseCase 创建核对用例
func NewReconcileUseCase(tx application.Transactor, accounts account.Repository, entries ledger.Repository) *ReconcileUseCase {
	return &ReconcileUseCase{tx: tx, accounts: accounts, entries: entries}
}

// ReconcileRequest 核对请求
type ReconcileRequest struct {
	AccountID uint
}

// Execute 执行核对
// 持有账户行锁读取余额和流水合计,两者来自同一时刻
func (uc *ReconcileUseCase) Execute(ctx context.Context, req ReconcileRequest) (*ledger.Reconciliation, error) {
	var r ledger.Reconciliation
	err := uc.tx.Transaction(ctx, func(ctx context.Context) error {
		acc, err := uc.accounts.LockByID(ctx, req.AccountID)
		if err != nil {
			return err
		}
		var sum decimal.Decimal
		if sum, err = uc.entries.SumByAccount(ctx, req.AccountID); err != nil {
			return err
		}
		r = ledger.Reconcile(acc.ID, acc.SeedBalance, sum, acc.Wallet)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &r, nil
}
