package dto

import (
	"github.com/shopspring/decimal"
)

// PurchaseRequest 购买请求
// confirmation由客户端生成(GUID),重试时使用同一个值,服务端据此去重
type PurchaseRequest struct {
	BookID       uint   `json:"book_id" binding:"required" example:"1"`
	Quantity     int    `json:"quantity" binding:"required,min=1,max=1000" example:"1"`
	Confirmation string `json:"confirmation" binding:"required,guid" example:"3f2a5b7c-1d2e-4f60-8a9b-0c1d2e3f4a5b"`
}

// DepositRequest 充值请求,金额10-10000
type DepositRequest struct {
	Amount       decimal.Decimal `json:"amount" swaggertype:"number" example:"75.00"`
	Confirmation string          `json:"confirmation" binding:"required,guid" example:"9e8d7c6b-5a4f-4e3d-8c2b-1a0f9e8d7c6b"`
}

// TransactionResponse 购买/充值结果:最新的账户详情
type TransactionResponse struct {
	Replayed bool            `json:"replayed"` // 确认号已处理过,本次未产生新流水
	Account  *AccountDetails `json:"account"`
}
