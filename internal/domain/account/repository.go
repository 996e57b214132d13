package account

import (
	"context"

	"github.com/shopspring/decimal"
)

// Repository 账户仓储接口（AccountStore）
// DDD设计说明：
// 1. 接口定义在domain层（依赖倒置原则）
// 2. 具体实现在infrastructure/persistence/mysql和memory
// 3. 在TxManager.Transaction内调用时，所有方法参与同一个事务
type Repository interface {
	// Create 创建账户，邮箱重复返回ErrEmailDuplicate
	Create(ctx context.Context, a *Account) error

	// FindByID 不存在返回ErrAccountNotFound
	FindByID(ctx context.Context, id uint) (*Account, error)

	// FindByEmail 按归一化邮箱查找，不存在返回ErrAccountNotFound
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// LockByID 悲观锁读取账户（SELECT ... FOR UPDATE）
	// 必须在事务中调用，同一账户上的资金操作因此串行执行
	LockByID(ctx context.Context, id uint) (*Account, error)

	// Update 更新资料字段（邮箱、姓名、角色、密码、启用状态），不修改余额
	Update(ctx context.Context, a *Account) error

	// UpdateWallet 写入新的余额，只能由购买/充值流程在事务内调用
	UpdateWallet(ctx context.Context, id uint, wallet decimal.Decimal) error

	// List 按启用状态过滤，active为nil时返回全部，按ID升序
	List(ctx context.Context, active *bool) ([]*Account, error)
}
