package ledger

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/ledger"
)

// AuditUseCase 收到已提交事件后核对对应账户
// 由cmd/auditor消费ledger.#消息调用
type AuditUseCase struct {
	reconcile *ReconcileUseCase
	log       *zap.Logger
}

// NewAuditUseCase 创建审计用例
func NewAuditUseCase(reconcile *ReconcileUseCase, log *zap.Logger) *AuditUseCase {
	return &AuditUseCase{reconcile: reconcile, log: log}
}

// Execute 核对事件涉及的账户,不一致时记录Error日志
// 账户不存在说明事件来自别的环境,跳过
func (uc *AuditUseCase) Execute(ctx context.Context, ev ledger.Event) (*ledger.Reconciliation, error) {
	r, err := uc.reconcile.Execute(ctx, ReconcileRequest{AccountID: ev.AccountID})
	if err != nil {
		if errors.Is(err, account.ErrAccountNotFound) {
			uc.log.Warn("事件中的账户不存在", zap.Uint("account_id", ev.AccountID), zap.String("confirmation", ev.Confirmation))
			return nil, nil
		}
		return nil, err
	}
	fields := []zap.Field{
		zap.Uint("account_id", r.AccountID),
		zap.String("type", string(ev.Type)),
		zap.Uint("entry_id", ev.EntryID),
		zap.String("confirmation", ev.Confirmation),
		zap.String("seed", r.Seed.StringFixed(2)),
		zap.String("sum", r.Sum.StringFixed(2)),
		zap.String("wallet", r.Wallet.StringFixed(2)),
	}
	if !r.Consistent {
		uc.log.Error("账户余额与流水不一致", fields...)
	} else {
		uc.log.Debug("账户核对通过", fields...)
	}
	return r, nil
}
