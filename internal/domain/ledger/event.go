package ledger

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// 事件路由键
const (
	RoutingKeyPurchase = "ledger.purchase.committed"
	RoutingKeyDeposit  = "ledger.deposit.committed"
)

// Event 已提交流水的通知事件
// 只在事务提交之后发布,发布失败不影响已提交的数据
type Event struct {
	Type         Type            `json:"type"`
	EntryID      uint            `json:"entry_id"`
	AccountID    uint            `json:"account_id"`
	BookID       *uint           `json:"book_id,omitempty"`
	Quantity     *int            `json:"quantity,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Confirmation string          `json:"confirmation"`
	OccurredAt   time.Time       `json:"occurred_at"`
}

// NewEvent 由流水构造事件
func NewEvent(e *Entry) Event {
	return Event{
		Type:         e.Type(),
		EntryID:      e.ID,
		AccountID:    e.AccountID,
		BookID:       e.BookID,
		Quantity:     e.Quantity,
		Amount:       e.Amount,
		Confirmation: e.Confirmation,
		OccurredAt:   e.CreatedAt,
	}
}

// RoutingKey 按事件类型选择路由键
func (ev Event) RoutingKey() string {
	if ev.Type == TypePurchase {
		return RoutingKeyPurchase
	}
	return RoutingKeyDeposit
}

// EventPublisher 事件发布接口(RabbitMQ或空实现)
type EventPublisher interface {
	Publish(ctx context.Context, ev Event) error
}
