package ledger

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/internal/application"
	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/ledger"
	"github.com/xiebiao/bigbooks/pkg/metrics"
	"github.com/xiebiao/bigbooks/pkg/tracing"
)

var (
	minDeposit = decimal.NewFromInt(10)
	maxDeposit = decimal.NewFromInt(10000)
)

// DepositUseCase 充值用例
// 钱包入账 + 追加流水在同一事务中提交,与购买共用账户行锁
type DepositUseCase struct {
	tx        application.Transactor
	accounts  account.Repository
	entries   ledger.Repository
	identity  account.Service
	publisher ledger.EventPublisher
	log       *zap.Logger
}

// NewDepositUseCase 创建充值用例
func NewDepositUseCase(
	tx application.Transactor,
	accounts account.Repository,
	entries ledger.Repository,
	identity account.Service,
	publisher ledger.EventPublisher,
	log *zap.Logger,
) *DepositUseCase {
	return &DepositUseCase{
		tx:        tx,
		accounts:  accounts,
		entries:   entries,
		identity:  identity,
		publisher: publisher,
		log:       log,
	}
}

// DepositRequest 充值请求
type DepositRequest struct {
	Identity     string
	Amount       decimal.Decimal
	Confirmation string
}

// DepositResponse 充值结果
type DepositResponse struct {
	AccountID uint
	EntryID   uint
	Wallet    decimal.Decimal
	Replayed  bool
}

// Execute 执行充值
func (uc *DepositUseCase) Execute(ctx context.Context, req DepositRequest) (*DepositResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "DepositUseCase.Execute")
	defer span.End()
	span.SetAttributes(attribute.String("deposit.amount", req.Amount.StringFixed(2)))

	done := metrics.TrackLedgerOperation(metrics.OperationDeposit)
	defer done()

	resp, entry, err := uc.execute(ctx, req)
	if err != nil {
		tracing.RecordError(span, err)
		reason := rejectionReason(err)
		metrics.RecordLedgerRejected(metrics.OperationDeposit, reason)
		uc.log.Warn("充值被拒绝",
			zap.String("reason", reason),
			zap.String("amount", req.Amount.StringFixed(2)),
			zap.String("confirmation", req.Confirmation),
			zap.Error(err),
		)
		return nil, err
	}

	span.SetAttributes(attribute.Int64("account.id", int64(resp.AccountID)))
	if resp.Replayed {
		metrics.RecordLedgerReplay(metrics.OperationDeposit)
		uc.log.Info("充值确认号重放",
			zap.Uint("account_id", resp.AccountID),
			zap.String("confirmation", req.Confirmation),
		)
		return resp, nil
	}

	metrics.RecordLedgerCommitted(metrics.OperationDeposit)
	uc.log.Info("充值已提交",
		zap.Uint("account_id", resp.AccountID),
		zap.String("amount", entry.Amount.StringFixed(2)),
		zap.String("confirmation", entry.Confirmation),
	)

	if err := uc.publisher.Publish(ctx, ledger.NewEvent(entry)); err != nil {
		uc.log.Error("充值事件发布失败", zap.Uint("entry_id", entry.ID), zap.Error(err))
	}
	return resp, nil
}

func (uc *DepositUseCase) execute(ctx context.Context, req DepositRequest) (*DepositResponse, *ledger.Entry, error) {
	if req.Amount.LessThan(minDeposit) || req.Amount.GreaterThan(maxDeposit) || !req.Amount.Equal(req.Amount.Round(2)) {
		return nil, nil, ledger.ErrInvalidAmount
	}
	confirmation, err := validateConfirmation(req.Confirmation)
	if err != nil {
		return nil, nil, err
	}

	accountID, err := uc.identity.ResolveAccountKey(ctx, req.Identity)
	if err != nil {
		return nil, nil, err
	}

	var (
		resp   *DepositResponse
		entry  *ledger.Entry
		fnDone bool
	)
	err = uc.tx.Transaction(ctx, func(ctx context.Context) error {
		acc, err := uc.accounts.LockByID(ctx, accountID)
		if err != nil {
			if errors.Is(err, account.ErrAccountNotFound) {
				return account.ErrInvalidUser
			}
			return err
		}

		replayed, err := checkConfirmation(ctx, uc.entries, confirmation, accountID, func(prior *ledger.Entry) bool {
			return prior.MatchesDeposit(req.Amount)
		})
		if err != nil {
			return err
		}
		if replayed {
			resp = &DepositResponse{AccountID: acc.ID, Wallet: acc.Wallet, Replayed: true}
			fnDone = true
			return nil
		}

		if err := acc.EnsureActive(); err != nil {
			return err
		}
		if err := acc.Credit(req.Amount); err != nil {
			return err
		}
		if err := uc.accounts.UpdateWallet(ctx, acc.ID, acc.Wallet); err != nil {
			return err
		}
		entry = ledger.NewDeposit(acc.ID, req.Amount, confirmation)
		if err := uc.entries.Append(ctx, entry); err != nil {
			return err
		}

		resp = &DepositResponse{AccountID: acc.ID, EntryID: entry.ID, Wallet: acc.Wallet}
		fnDone = true
		return nil
	})
	if err != nil {
		if fnDone {
			return nil, nil, commitFailed(err)
		}
		return nil, nil, err
	}
	return resp, entry, nil
}
