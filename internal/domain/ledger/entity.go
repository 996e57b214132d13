package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Type 流水类型,完全由金额符号推导
type Type string

const (
	TypePurchase Type = "Purchase" // 金额<0
	TypeDeposit  Type = "Deposit"  // 金额>0
)

// Entry 钱包流水(账本记录)
// 设计说明:
// 1. 只追加、不可修改,账户通过AccountID外键关联,不内嵌在Account里
// 2. 购买流水携带BookID和Quantity,充值流水两者均为nil
// 3. Confirmation是调用方提供的确认号,全局唯一(幂等键)
type Entry struct {
	ID           uint
	AccountID    uint
	Amount       decimal.Decimal
	Confirmation string
	BookID       *uint
	Quantity     *int
	CreatedAt    time.Time
}

// NewPurchase 创建购买流水,金额记为-cost
func NewPurchase(accountID, bookID uint, quantity int, cost decimal.Decimal, confirmation string) *Entry {
	return &Entry{
		AccountID:    accountID,
		Amount:       cost.Neg(),
		Confirmation: confirmation,
		BookID:       &bookID,
		Quantity:     &quantity,
		CreatedAt:    time.Now(),
	}
}

// NewDeposit 创建充值流水,金额记为+amount
func NewDeposit(accountID uint, amount decimal.Decimal, confirmation string) *Entry {
	return &Entry{
		AccountID:    accountID,
		Amount:       amount,
		Confirmation: confirmation,
		CreatedAt:    time.Now(),
	}
}

// Type 负数为购买,正数为充值
func (e *Entry) Type() Type {
	if e.Amount.IsNegative() {
		return TypePurchase
	}
	return TypeDeposit
}

// IsPurchase 是否购买流水
func (e *Entry) IsPurchase() bool {
	return e.Type() == TypePurchase
}

// MatchesPurchase 是否为同一本书同样数量的购买
// 金额不参与比较,重试期间图书可能已调价
func (e *Entry) MatchesPurchase(bookID uint, quantity int) bool {
	return e.IsPurchase() &&
		e.BookID != nil && *e.BookID == bookID &&
		e.Quantity != nil && *e.Quantity == quantity
}

// MatchesDeposit 是否为同样金额的充值
func (e *Entry) MatchesDeposit(amount decimal.Decimal) bool {
	return e.Type() == TypeDeposit && e.Amount.Equal(amount)
}
