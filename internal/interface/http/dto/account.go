package dto

import (
	"github.com/shopspring/decimal"

	appaccount "github.com/xiebiao/bigbooks/internal/application/account"
	appledger "github.com/xiebiao/bigbooks/internal/application/ledger"
)

// LoginRequest HTTP登录请求
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" example:"Clark.Kent@demo.com"`
	Password string `json:"password" binding:"required,min=4,max=20" example:"superman"`
}

// LoginResponse 登录响应
type LoginResponse struct {
	Account      AccountInfo `json:"account"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	ExpiresIn    int64       `json:"expires_in" example:"7200"` // Access Token有效期(秒)
}

// RefreshRequest 刷新Token请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// RefreshResponse 刷新Token响应
type RefreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in" example:"7200"`
}

// CreateAccountRequest 开户请求
// 余额使用decimal,JSON中可以是数字或字符串
type CreateAccountRequest struct {
	Email    string          `json:"email" binding:"required,email,max=100" example:"Bruce.Wayne@demo.com"`
	Name     string          `json:"name" binding:"required,max=100" example:"Bruce Wayne"`
	Role     string          `json:"role" binding:"required,oneof=Admin Customer admin customer" example:"Customer"`
	Password string          `json:"password" binding:"required,min=4,max=20" example:"batman"`
	Wallet   decimal.Decimal `json:"wallet" swaggertype:"number" example:"100.00"` // 1-5000
}

// UpdateAccountRequest 修改账户请求,省略的字段不修改
type UpdateAccountRequest struct {
	Email    *string `json:"email" binding:"omitempty,email,max=100"`
	Name     *string `json:"name" binding:"omitempty,max=100"`
	Role     *string `json:"role" binding:"omitempty,oneof=Admin Customer admin customer"`
	Password *string `json:"password" binding:"omitempty,min=4,max=20"`
	Active   *bool   `json:"active"`
}

// ListAccountsQuery 账户列表查询参数
type ListAccountsQuery struct {
	Active *bool `form:"active"`
}

// AccountInfo 账户基本信息
type AccountInfo struct {
	ID     uint   `json:"id" example:"1"`
	Email  string `json:"email" example:"clark.kent@demo.com"`
	Name   string `json:"name" example:"Clark Kent"`
	Role   string `json:"role" example:"Customer"`
	Active bool   `json:"active" example:"true"`
	Wallet string `json:"wallet" example:"88.81"`
}

// AccountOverview 账户列表项
type AccountOverview struct {
	AccountInfo
	BookCount int `json:"book_count" example:"2"`
}

// AccountDetails 账户详情
type AccountDetails struct {
	AccountInfo
	SeedBalance  string            `json:"seed_balance" example:"100.00"`
	CreatedAt    string            `json:"created_at" example:"2024-01-15 10:30:00"`
	Transactions []TransactionItem `json:"transactions"`
}

// TransactionItem 对账单中的一条流水
type TransactionItem struct {
	ID           uint   `json:"id" example:"1"`
	Type         string `json:"type" example:"Purchase"`
	Amount       string `json:"amount" example:"-11.19"`
	Confirmation string `json:"confirmation" example:"3f2a5b7c-1d2e-4f60-8a9b-0c1d2e3f4a5b"`
	BookID       *uint  `json:"book_id,omitempty" example:"1"`
	Quantity     *int   `json:"quantity,omitempty" example:"1"`
	Date         string `json:"date" example:"2024-01-15 10:30:00"`
}

// StatementResponse 对账单
type StatementResponse struct {
	AccountID    uint              `json:"account_id"`
	Transactions []TransactionItem `json:"transactions"`
}

// ReconcileResponse 余额核对结果
type ReconcileResponse struct {
	AccountID  uint   `json:"account_id"`
	Seed       string `json:"seed" example:"100.00"`
	Sum        string `json:"sum" example:"-11.19"`
	Wallet     string `json:"wallet" example:"88.81"`
	Consistent bool   `json:"consistent" example:"true"`
}

// NewAccountInfo 应用层DTO → HTTP DTO
func NewAccountInfo(a appaccount.AccountInfo) AccountInfo {
	return AccountInfo{
		ID:     a.ID,
		Email:  a.Email,
		Name:   a.Name,
		Role:   string(a.Role),
		Active: a.Active,
		Wallet: a.Wallet.StringFixed(2),
	}
}

// NewAccountDetails 账户详情
func NewAccountDetails(d *appaccount.AccountDetails) *AccountDetails {
	return &AccountDetails{
		AccountInfo:  NewAccountInfo(d.AccountInfo),
		SeedBalance:  d.SeedBalance.StringFixed(2),
		CreatedAt:    d.CreatedAt.Format("2006-01-02 15:04:05"),
		Transactions: NewTransactionItems(d.Transactions),
	}
}

// NewAccountOverviews 账户列表
func NewAccountOverviews(list []appaccount.AccountOverview) []AccountOverview {
	result := make([]AccountOverview, 0, len(list))
	for _, a := range list {
		result = append(result, AccountOverview{AccountInfo: NewAccountInfo(a.AccountInfo), BookCount: a.BookCount})
	}
	return result
}

// NewTransactionItems 对账单行
func NewTransactionItems(lines []appledger.StatementLine) []TransactionItem {
	items := make([]TransactionItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, TransactionItem{
			ID:           l.ID,
			Type:         string(l.Type),
			Amount:       l.Amount.StringFixed(2),
			Confirmation: l.Confirmation,
			BookID:       l.BookID,
			Quantity:     l.Quantity,
			Date:         l.Date,
		})
	}
	return items
}
