package ledger

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/ledger"
	"github.com/xiebiao/bigbooks/pkg/tracing"
)

// StatementUseCase 对账单查询
// 纯读操作,不加锁
type StatementUseCase struct {
	accounts account.Repository
	entries  ledger.Repository
}

// NewStatementUseCase 创建对账单用例
func NewStatementUseCase(accounts account.Repository, entries ledger.Repository) *StatementUseCase {
	return &StatementUseCase{accounts: accounts, entries: entries}
}

// StatementRequest 查询请求
type StatementRequest struct {
	AccountID uint
}

// StatementLine 对账单中的一条流水
type StatementLine struct {
	ID           uint
	Type         ledger.Type
	Amount       decimal.Decimal
	Confirmation string
	BookID       *uint
	Quantity     *int
	Date         string
}

// StatementResponse 对账单,按时间倒序
type StatementResponse struct {
	AccountID uint
	Lines     []StatementLine
}

// Execute 查询账户全部流水
func (uc *StatementUseCase) Execute(ctx context.Context, req StatementRequest) (*StatementResponse, error) {
	ctx, span := tracing.StartSpan(ctx, "StatementUseCase.Execute")
	defer span.End()
	span.SetAttributes(attribute.Int64("account.id", int64(req.AccountID)))

	if _, err := uc.accounts.FindByID(ctx, req.AccountID); err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}

	entries, err := uc.entries.ListByAccount(ctx, req.AccountID)
	if err != nil {
		tracing.RecordError(span, err)
		return nil, err
	}
	ledger.SortStatement(entries)

	return &StatementResponse{AccountID: req.AccountID, Lines: ToLines(entries)}, nil
}

// ToLines 流水转换为对账单行,类型由金额符号推导
func ToLines(entries []*ledger.Entry) []StatementLine {
	lines := make([]StatementLine, 0, len(entries))
	for _, e := range entries {
		lines = append(lines, StatementLine{
			ID:           e.ID,
			Type:         e.Type(),
			Amount:       e.Amount,
			Confirmation: e.Confirmation,
			BookID:       e.BookID,
			Quantity:     e.Quantity,
			Date:         e.CreatedAt.Format("2006-01-02 15:04:05"),
		})
	}
	return lines
}
