package mq

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/xiebiao/bigbooks/internal/domain/ledger"
	pkgmq "github.com/xiebiao/bigbooks/pkg/mq"
	"github.com/xiebiao/bigbooks/pkg/tracing"
)

// EventAuditor 处理一条账本事件(ledgerapp.AuditUseCase实现)
type EventAuditor interface {
	Execute(ctx context.Context, ev ledger.Event) (*ledger.Reconciliation, error)
}

// NewAuditHandler 把ledger.#消息解码为事件后交给auditor
// 无法解码的消息返回ErrPoison直接丢弃,其他错误重新入队
func NewAuditHandler(auditor EventAuditor) pkgmq.Handler {
	return func(ctx context.Context, d pkgmq.Delivery) error {
		ctx, span := tracing.StartSpan(ctx, "LedgerAudit.Handle")
		defer span.End()

		var ev ledger.Event
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return fmt.Errorf("%w: %v", pkgmq.ErrPoison, err)
		}
		if ev.AccountID == 0 {
			return fmt.Errorf("%w: 缺少account_id", pkgmq.ErrPoison)
		}

		if _, err := auditor.Execute(ctx, ev); err != nil {
			tracing.RecordError(span, err)
			return err
		}
		return nil
	}
}
