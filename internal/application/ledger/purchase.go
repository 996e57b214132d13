package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/internal/application"
	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/book"
	"github.com/xiebiao/bigbooks/internal/domain/ledger"
	"github.com/xiebiao/bigbooks/pkg/metrics"
	"github.com/xiebiao/bigbooks/pkg/tracing"
)

// PurchaseUseCase 购买图书用例
// 核心流程:钱包扣款 + 库存扣减 + 追加流水,三者在同一个事务中提交
//
// 并发控制:
//  1. 账户行 SELECT ... FOR UPDATE:同一账户的购买/充值串行,不会丢失更新
//  2. 库存用条件UPDATE(stock >= ?)扣减:同一本书不会超卖
//  3. 加锁顺序固定为 账户 → 图书,避免死锁
type PurchaseUseCase struct {
	tx        application.Transactor
	accounts  account.Repository
	books     book.Repository
	entries   ledger.Repository
	identity  account.Service
	publisher ledger.EventPublisher
	log       *zap.Logger
}

// NewPurchaseUseCase 创建购买用例
func NewPurchaseUseCase(
	tx application.Transactor,
	accounts account.Repository,
	books book.Repository,
	entries ledger.Repository,
	identity account.Service,
	publisher ledger.EventPublisher,
	log *zap.Logger,
) *PurchaseUseCase {
	return &PurchaseUseCase{
		tx:        tx,
		accounts:  accounts,
		books:     books,
		entries:   entries,
		identity:  identity,
		publisher: publisher,
		log:       log,
	}
}

// PurchaseRequest 购买请求
type PurchaseRequest struct {
	Identity     string // 调用方身份(Token的sub)
	BookID       uint
	Quantity     int
	Confirmation string
}

// PurchaseResponse 购买结果
type PurchaseResponse struct {
	AccountID uint
	EntryID   uint
	Cost      decimal.Decimal
	Wallet    decimal.Decimal
	Replayed  bool // 确认号已处理过,本次没有产生任何修改
}

// Execute 执行购买
// 任何失败都不会留下部分修改:库存、余额、流水要么一起提交,要么一起回滚
func (uc *PurchaseUseCase) Execute(ctx context.Context, req PurchaseRequest) (*PurchaseResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "PurchaseUseCase.Execute")
	defer span.End()
	span.SetAttributes(
		attribute.Int64("book.id", int64(req.BookID)),
		attribute.Int("purchase.quantity", req.Quantity),
	)

	done := metrics.TrackLedgerOperation(metrics.OperationPurchase)
	defer done()

	resp, entry, err := uc.execute(ctx, req)
	if err != nil {
		tracing.RecordError(span, err)
		reason := rejectionReason(err)
		metrics.RecordLedgerRejected(metrics.OperationPurchase, reason)
		uc.log.Warn("购买被拒绝",
			zap.String("reason", reason),
			zap.Uint("book_id", req.BookID),
			zap.Int("quantity", req.Quantity),
			zap.String("confirmation", req.Confirmation),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("account.id", int64(resp.AccountID)))
	if resp.Replayed {
		metrics.RecordLedgerReplay(metrics.OperationPurchase)
		uc.log.Info("购买确认号重放",
			zap.Uint("account_id", resp.AccountID),
			zap.String("confirmation", req.Confirmation),
		)
		return resp, nil
	}

	metrics.RecordLedgerCommitted(metrics.OperationPurchase)
	uc.log.Info("购买已提交",
		zap.Uint("account_id", resp.AccountID),
		zap.Uint("book_id", req.BookID),
		zap.Int("quantity", req.Quantity),
		zap.String("amount", entry.Amount.StringFixed(2)),
		zap.String("confirmation", entry.Confirmation),
	)

	// 事务已提交,事件发布失败只记录日志
	if err := uc.publisher.Publish(ctx, ledger.NewEvent(entry)); err != nil {
		uc.log.Error("购买事件发布失败", zap.Uint("entry_id", entry.ID), zap.Error(err))
	}
	return resp, nil
}

func (uc *PurchaseUseCase) execute(ctx context.Context, req PurchaseRequest) (*PurchaseResponse, *ledger.Entry, error) {
	if req.Quantity <= 0 {
		return nil, nil, ledger.ErrInvalidQuantity
	}
	confirmation, err := validateConfirmation(req.Confirmation)
	if err != nil {
		return nil, nil, err
	}

	// 1. 身份解析
	accountID, err := uc.identity.ResolveAccountKey(ctx, req.Identity)
	if err != nil {
		return nil, nil, err
	}

	var (
		resp   *PurchaseResponse
		entry  *ledger.Entry
		fnDone bool
	)
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		// 2. 锁定账户
		acc, err := uc.accounts.LockByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, account.ErrAccountNotFound) {
				return account.ErrInvalidUser
			}
			return err
		}

		// 确认号去重:持有账户锁之后检查,同一账户的重试不会并发通过
		replayed, err := checkConfirmation(ctx, uc.entries, confirmation, accountID, func(prior *ledger.Entry) bool {
			return prior.MatchesPurchase(req.BookID, req.Quantity)
		})
		if err != nil {
			return err
		}
		if replayed {
			resp = &PurchaseResponse{AccountID: acc.ID, Wallet: acc.Wallet, Replayed: true}
			fnDone = true
			return nil
		}

		if err := acc.EnsureActive(); err != nil {
			return err
		}

		// 3. 图书
		b, err := uc.books.FindByID(ctx, req.BookID)
		if err != nil {
			return err
		}

		// 4-5. 计算总价,余额不足直接拒绝
		cost := b.TotalCost(req.Quantity)
		if err := acc.Debit(cost); err != nil {
			return err
		}

		// 6. 扣减库存,失败原样返回
		if err := uc.books.Reserve(ctx, b.ID, req.Quantity); err != nil {
			return err
		}

		// 7. 扣款 + 追加流水
		if err := uc.accounts.UpdateWallet(ctx, acc.ID, acc.Wallet); err != nil {
			return err
		}
		entry = ledger.NewPurchase(acc.ID, b.ID, req.Quantity, cost, confirmation)
		if err := uc.entries.Append(ctx, entry); err != nil {
			return err
		}

		resp = &PurchaseResponse{AccountID: acc.ID, EntryID: entry.ID, Cost: cost, Wallet: acc.Wallet}
		fnDone = true
		return nil
	})
	if err != nil {
		// 8. fn成功但提交失败
		if fnDone {
			return nil, nil, commitFailed(err)
		}
		return nil, nil, err
	}
	return resp, entry, nil
}

// checkConfirmation 确认号已存在时:同一账户的相同请求视为重放,否则冲突
// same判断已有流水与本次请求的操作类型和内容是否一致
func checkConfirmation(ctx context.Context, entries ledger.Repository, confirmation string, accountID uint, same func(prior *ledger.Entry) bool) (bool, error) {
	prior, err := entries.FindByConfirmation(ctx, confirmation)
	if errors.Is(err, ledger.ErrEntryNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if prior.AccountID == accountID && same(prior) {
		return true, nil
	}
	return false, ledger.ErrConfirmationConflict
}
