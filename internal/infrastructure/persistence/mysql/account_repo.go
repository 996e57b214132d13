package mysql

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bigbooks/internal/domain/account"
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
)

// accountRepository 账户仓储实现（MySQL）
// 设计说明：
// 1. 实现domain/account/repository.go定义的接口
// 2. 负责domain实体与GORM模型之间的转换
// 3. 处理数据库特定的错误（如邮箱重复），转换为业务错误
type accountRepository struct {
	db *gorm.DB
}

// NewAccountRepository 创建账户仓储
// 注意：返回的是domain层的接口类型，不是具体类型（依赖倒置）
func NewAccountRepository(db *gorm.DB) account.Repository {
	return &accountRepository{db: db}
}

// Create 创建账户
// 学习要点：
// 1. 邮箱唯一性由数据库UNIQUE索引保证（而非应用层SELECT再INSERT）
// 2. 捕获Duplicate Entry错误，转换为业务错误ErrEmailDuplicate
func (r *accountRepository) Create(ctx context.Context, a *account.Account) error {
	model := toAccountModel(a)

	if err := r.getDB(ctx).Create(model).Error; err != nil {
		if isDuplicateError(err) {
			return account.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "创建账户失败")
	}

	a.ID = model.ID
	a.CreatedAt = model.CreatedAt
	a.UpdatedAt = model.UpdatedAt
	return nil
}

// FindByID 根据ID查找账户
func (r *accountRepository) FindByID(ctx context.Context, id uint) (*account.Account, error) {
	var model AccountModel
	if err := r.getDB(ctx).First(&model, id).Error; err != nil {
		return nil, r.translate(err, "查询账户失败")
	}
	return toAccountEntity(&model), nil
}

// FindByEmail 根据邮箱查找账户（邮箱以小写存储）
func (r *accountRepository) FindByEmail(ctx context.Context, email string) (*account.Account, error) {
	var model AccountModel
	err := r.getDB(ctx).Where("email = ?", account.NormalizeEmail(email)).First(&model).Error
	if err != nil {
		return nil, r.translate(err, "查询账户失败")
	}
	return toAccountEntity(&model), nil
}

// LockByID 悲观锁查询账户
// SELECT ... FOR UPDATE：同一账户上的购买/充值在此处排队
func (r *accountRepository) LockByID(ctx context.Context, id uint) (*account.Account, error) {
	var model AccountModel
	err := r.getDB(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&model, id).Error
	if err != nil {
		return nil, r.translate(err, "锁定账户失败")
	}
	return toAccountEntity(&model), nil
}

// Update 更新资料字段
// 注意：显式列出字段，wallet和seed_balance永远不会被这里覆盖
func (r *accountRepository) Update(ctx context.Context, a *account.Account) error {
	err := r.getDB(ctx).Model(&AccountModel{}).
		Where("id = ?", a.ID).
		Updates(map[string]interface{}{
			"email":    a.Email,
			"name":     a.Name,
			"role":     string(a.Role),
			"password": a.Password,
			"active":   a.Active,
		}).Error
	if err != nil {
		if isDuplicateError(err) {
			return account.ErrEmailDuplicate
		}
		return apperrors.Wrap(err, "更新账户失败")
	}
	return nil
}

// UpdateWallet 写入新余额（只在购买/充值事务内调用）
func (r *accountRepository) UpdateWallet(ctx context.Context, id uint, wallet decimal.Decimal) error {
	result := r.getDB(ctx).Model(&AccountModel{}).
		Where("id = ?", id).
		Update("wallet", wallet)
	if result.Error != nil {
		return apperrors.Wrap(result.Error, "更新余额失败")
	}
	if result.RowsAffected == 0 {
		return account.ErrAccountNotFound
	}
	return nil
}

// List 查询账户列表
func (r *accountRepository) List(ctx context.Context, active *bool) ([]*account.Account, error) {
	query := r.getDB(ctx).Model(&AccountModel{})
	if active != nil {
		query = query.Where("active = ?", *active)
	}

	var models []AccountModel
	if err := query.Order("id ASC").Find(&models).Error; err != nil {
		return nil, apperrors.Wrap(err, "查询账户列表失败")
	}

	accounts := make([]*account.Account, len(models))
	for i := range models {
		accounts[i] = toAccountEntity(&models[i])
	}
	return accounts, nil
}

func (r *accountRepository) translate(err error, msg string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return account.ErrAccountNotFound
	}
	return apperrors.Wrap(err, msg)
}

func (r *accountRepository) getDB(ctx context.Context) *gorm.DB {
	return dbFromContext(ctx, r.db)
}

// =========================================
// 辅助函数：模型转换
// =========================================

func toAccountModel(a *account.Account) *AccountModel {
	return &AccountModel{
		ID:          a.ID,
		Email:       a.Email,
		Name:        a.Name,
		Role:        string(a.Role),
		Password:    a.Password,
		Active:      a.Active,
		Wallet:      a.Wallet,
		SeedBalance: a.SeedBalance,
	}
}

// toAccountEntity GORM模型 → 领域实体
// 说明：这是Repository的重要职责之一，隔离infrastructure层与domain层
func toAccountEntity(m *AccountModel) *account.Account {
	return &account.Account{
		ID:          m.ID,
		Email:       m.Email,
		Name:        m.Name,
		Role:        account.Role(m.Role),
		Password:    m.Password,
		Active:      m.Active,
		Wallet:      m.Wallet,
		SeedBalance: m.SeedBalance,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}
