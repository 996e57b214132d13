package mq

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/internal/domain/ledger"
	"github.com/xiebiao/bigbooks/pkg/metrics"
	pkgmq "github.com/xiebiao/bigbooks/pkg/mq"
	"github.com/xiebiao/bigbooks/pkg/tracing"
)

// MessagePublisher 底层消息发布接口(*pkgmq.Publisher实现)
type MessagePublisher interface {
	Publish(ctx context.Context, msg pkgmq.Message) error
}

// LedgerEventPublisher 把账本事件发布到RabbitMQ
// 实现ledger.EventPublisher
type LedgerEventPublisher struct {
	publisher MessagePublisher
	log       *zap.Logger
}

// NewLedgerEventPublisher 创建账本事件发布者
func NewLedgerEventPublisher(publisher MessagePublisher, log *zap.Logger) *LedgerEventPublisher {
	return &LedgerEventPublisher{publisher: publisher, log: log}
}

// Publish 发布事件,MessageID使用确认号,消费者据此去重
func (p *LedgerEventPublisher) Publish(ctx context.Context, ev ledger.Event) error {
	key := ev.RoutingKey()
	ctx, span := tracing.StartSpan(ctx, "LedgerEventPublisher.Publish",
		trace.WithSpanKind(trace.SpanKindProducer),
		trace.WithAttributes(
			attribute.String("messaging.destination", key),
			attribute.String("ledger.confirmation", ev.Confirmation),
		),
	)
	defer span.End()

	err := p.publisher.Publish(ctx, pkgmq.Message{
		RoutingKey: key,
		MessageID:  ev.Confirmation,
		Payload:    ev,
	})
	metrics.RecordMessagePublished(key, err)
	if err != nil {
		tracing.RecordError(span, err)
		return err
	}

	p.log.Debug("账本事件已发布",
		zap.String("routing_key", key),
		zap.Uint("entry_id", ev.EntryID),
		zap.Uint("account_id", ev.AccountID),
	)
	return nil
}

// NoopPublisher 未启用消息队列时使用,丢弃所有事件
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, ledger.Event) error { return nil }

var (
	_ ledger.EventPublisher = (*LedgerEventPublisher)(nil)
	_ ledger.EventPublisher = NoopPublisher{}
)
