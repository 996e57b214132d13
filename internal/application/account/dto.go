package account

import (
	"time"

	"github.com/shopspring/decimal"

	ledgerapp "github.com/xiebiao/bigbooks/internal/application/ledger"
	"github.com/xiebiao/bigbooks/internal/domain/account"
)

// =========================================
// 应用层DTO
// =========================================

// AccountInfo 账户基本信息
type AccountInfo struct {
	ID     uint
	Email  string
	Name   string
	Role   account.Role
	Active bool
	Wallet decimal.Decimal
}

// AccountDetails 账户详情(含对账单)
type AccountDetails struct {
	AccountInfo
	SeedBalance  decimal.Decimal
	CreatedAt    time.Time
	Transactions []ledgerapp.StatementLine
}

// AccountOverview 账户列表项
type AccountOverview struct {
	AccountInfo
	BookCount int // 购买过的不同图书数量
}

func toInfo(a *account.Account) AccountInfo {
	return AccountInfo{
		ID:     a.ID,
		Email:  a.Email,
		Name:   a.Name,
		Role:   a.Role,
		Active: a.Active,
		Wallet: a.Wallet,
	}
}
