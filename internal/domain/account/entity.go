package account

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Role 账户角色
type Role string

const (
	RoleAdmin    Role = "Admin"
	RoleCustomer Role = "Customer"
)

// ParseRole 解析角色名（忽略大小写）
func ParseRole(s string) (Role, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "admin":
		return RoleAdmin, nil
	case "customer":
		return RoleCustomer, nil
	default:
		return "", ErrInvalidRole
	}
}

// Account 账户实体（聚合根）
// DDD设计说明：
// 1. Wallet只能通过Debit/Credit修改，修改的同时必须在ledger中追加一条记录
// 2. SeedBalance是开户时的初始余额，用于核对 Wallet == SeedBalance + Σ流水金额
// 3. 账户不会被删除，只会被停用（Active=false）
type Account struct {
	ID          uint
	Email       string
	Name        string
	Role        Role
	Password    string // bcrypt哈希值
	Active      bool
	Wallet      decimal.Decimal
	SeedBalance decimal.Decimal
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewAccount 创建新账户（工厂方法）
func NewAccount(email, name string, role Role, hashedPassword string, wallet decimal.Decimal) *Account {
	now := time.Now()
	return &Account{
		Email:       NormalizeEmail(email),
		Name:        strings.TrimSpace(name),
		Role:        role,
		Password:    hashedPassword,
		Active:      true,
		Wallet:      wallet,
		SeedBalance: wallet,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// IsAdmin 是否管理员
func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// EnsureActive 停用账户不能发起任何资金操作或评论
func (a *Account) EnsureActive() error {
	if !a.Active {
		return ErrAccountDeactivated
	}
	return nil
}

// CanAfford 余额是否足以支付
func (a *Account) CanAfford(amount decimal.Decimal) bool {
	return a.Wallet.GreaterThanOrEqual(amount)
}

// Debit 扣款（购买）
// 余额不足时返回ErrInsufficientFunds且不修改余额
func (a *Account) Debit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	if !a.CanAfford(amount) {
		return ErrInsufficientFunds
	}
	a.Wallet = a.Wallet.Sub(amount)
	a.UpdatedAt = time.Now()
	return nil
}

// Credit 入账（充值）
func (a *Account) Credit(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return ErrInvalidAmount
	}
	a.Wallet = a.Wallet.Add(amount)
	a.UpdatedAt = time.Now()
	return nil
}

// NormalizeEmail 邮箱统一转小写，唯一性与身份解析都基于归一化后的值
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
