package handler

import (
	"github.com/gin-gonic/gin"

	appaccount "github.com/xiebiao/bigbooks/internal/application/account"
	appledger "github.com/xiebiao/bigbooks/internal/application/ledger"
	"github.com/xiebiao/bigbooks/internal/interface/http/dto"
	"github.com/xiebiao/bigbooks/internal/interface/http/middleware"
	"github.com/xiebiao/bigbooks/pkg/response"
)

// TransactionHandler 购买/充值HTTP处理器
// 两个接口成功后都返回最新的账户详情
type TransactionHandler struct {
	purchaseUseCase *appledger.PurchaseUseCase
	depositUseCase  *appledger.DepositUseCase
	detailsUseCase  *appaccount.GetAccountDetailsUseCase
}

// NewTransactionHandler 创建交易处理器
func NewTransactionHandler(
	purchaseUseCase *appledger.PurchaseUseCase,
	depositUseCase *appledger.DepositUseCase,
	detailsUseCase *appaccount.GetAccountDetailsUseCase,
) *TransactionHandler {
	return &TransactionHandler{
		purchaseUseCase: purchaseUseCase,
		depositUseCase:  depositUseCase,
		detailsUseCase:  detailsUseCase,
	}
}

// Purchase 购买图书
// @Summary      购买图书
// @Description  库存、余额、流水在同一事务中修改，任何一步失败都不留下部分修改。
// @Description  confirmation由客户端生成，重试时使用同一个值不会重复扣款
// @Tags         交易
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.PurchaseRequest true "购买信息"
// @Success      200 {object} response.Response{data=dto.TransactionResponse}
// @Failure      400 {object} response.Response "余额不足、库存不足、账户已停用、确认号冲突"
// @Failure      404 {object} response.Response "图书不存在"
// @Failure      500 {object} response.Response "提交失败，可使用同一确认号重试"
// @Router       /api/v1/transactions/purchase [post]
func (h *TransactionHandler) Purchase(c *gin.Context) {
	var req dto.PurchaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.purchaseUseCase.Execute(c.Request.Context(), appledger.PurchaseRequest{
		Identity:     middleware.GetIdentity(c),
		BookID:       req.BookID,
		Quantity:     req.Quantity,
		Confirmation: req.Confirmation,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, result.AccountID, result.Replayed)
}

// Deposit 充值
// @Summary      充值
// @Description  金额10-10000，最多两位小数
// @Tags         交易
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.DepositRequest true "充值信息"
// @Success      200 {object} response.Response{data=dto.TransactionResponse}
// @Failure      400 {object} response.Response "金额超出范围、账户已停用"
// @Router       /api/v1/transactions/deposit [post]
func (h *TransactionHandler) Deposit(c *gin.Context) {
	var req dto.DepositRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.depositUseCase.Execute(c.Request.Context(), appledger.DepositRequest{
		Identity:     middleware.GetIdentity(c),
		Amount:       req.Amount,
		Confirmation: req.Confirmation,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	h.respond(c, result.AccountID, result.Replayed)
}

// respond 交易已提交,查询最新的账户详情返回
func (h *TransactionHandler) respond(c *gin.Context, accountID uint, replayed bool) {
	details, err := h.detailsUseCase.Execute(c.Request.Context(), appaccount.GetAccountDetailsRequest{AccountID: accountID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.TransactionResponse{
		Replayed: replayed,
		Account:  dto.NewAccountDetails(details),
	})
}
