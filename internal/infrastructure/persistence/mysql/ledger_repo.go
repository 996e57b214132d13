package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/xiebiao/bigbooks/internal/domain/ledger"
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

// ledgerRepository 账本仓储实现(MySQL)
// 教学要点:
// 1. 只追加,没有UPDATE/DELETE
// 2. 确认号唯一索引冲突映射为ErrConfirmationConflict
// 3. 事务通过context传递
type ledgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建账本仓储
func NewLedgerRepository(db *gorm.DB) ledger.Repository {
	return &ledgerRepository{db: db}
}

// Append 追加流水
func (r *ledgerRepository) Append(ctx context.Context, e *ledger.Entry) error {
	model := &LedgerEntryModel{
		AccountID:    e.AccountID,
		Amount:       e.Amount,
		Confirmation: e.Confirmation,
		BookID:       e.BookID,
		Quantity:     e.Quantity,
		CreatedAt:    e.CreatedAt,
	}

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return ledger.ErrConfirmationConflict
		}
		return apperrors.Wrap(err, "写入流水失败")
	}

	e.ID = model.ID
	e.CreatedAt = model.CreatedAt
	return nil
}

// FindByConfirmation 按确认号查找
func (r *ledgerRepository) FindByConfirmation(ctx context.Context, confirmation string) (*ledger.Entry, error) {
	var model LedgerEntryModel
	err := r.getDB(ctx).Where("confirmation = ?", confirmation).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ledger.ErrEntryNotFound
		}
		return nil, apperrors.Wrap(err, "查询流水失败")
	}
	return toEntryEntity(&model), nil
}

// ListByAccount 账户全部流水
func (r *ledgerRepository) ListByAccount(ctx context.Context, accountID uint) ([]*ledger.Entry, error) {
	var models []LedgerEntryModel
	err := r.getDB(ctx).
		Where("account_id = ?", accountID).
		Order("created_at DESC, id DESC").
		Find(&models).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "查询流水失败")
	}

	entries := make([]*ledger.Entry, len(models))
	for i := range models {
		entries[i] = toEntryEntity(&models[i])
	}
	return entries, nil
}

// SumByAccount 流水金额合计
// 教学要点:decimal.Decimal实现了sql.Scanner,通过Row().Scan读取聚合结果
func (r *ledgerRepository) SumByAccount(ctx context.Context, accountID uint) (decimal.Decimal, error) {
	var sum decimal.Decimal
	row := r.getDB(ctx).Model(&LedgerEntryModel{}).
		Select("COALESCE(SUM(amount), 0)").
		Where("account_id = ?", accountID).
		Row()
	if err := row.Scan(&sum); err != nil {
		return decimal.Zero, apperrors.Wrap(err, "统计流水失败")
	}
	return sum, nil
}

// CountDistinctBooks 每个账户购买过的不同图书数量
func (r *ledgerRepository) CountDistinctBooks(ctx context.Context, accountIDs []uint) (map[uint]int, error) {
	counts := make(map[uint]int, len(accountIDs))
	if len(accountIDs) == 0 {
		return counts, nil
	}

	var rows []struct {
		AccountID uint
		Count     int
	}
	err := r.getDB(ctx).Model(&LedgerEntryModel{}).
		Select("account_id, COUNT(DISTINCT book_id) AS count").
		Where("account_id IN ? AND book_id IS NOT NULL", accountIDs).
		Group("account_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.Wrap(err, "统计购买图书数量失败")
	}

	for _, row := range rows {
		counts[row.AccountID] = row.Count
	}
	return counts, nil
}

func (r *ledgerRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

func toEntryEntity(m *LedgerEntryModel) *ledger.Entry {
	return &ledger.Entry{
		ID:           m.ID,
		AccountID:    m.AccountID,
		Amount:       m.Amount,
		Confirmation: m.Confirmation,
		BookID:       m.BookID,
		Quantity:     m.Quantity,
		CreatedAt:    m.CreatedAt,
	}
}
