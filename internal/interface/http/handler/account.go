package handler

import (
	"github.com/gin-gonic/gin"

	appaccount "github.com/xiebiao/bigbooks/internal/application/account"
	appledger "github.com/xiebiao/bigbooks/internal/application/ledger"
	"github.com/xiebiao/bigbooks/internal/interface/http/dto"
	"github.com/xiebiao/bigbooks/internal/interface/http/middleware"
	"github.com/xiebiao/bigbooks/pkg/response"
)

// AccountHandler 账户HTTP处理器
// 除/accounts/me外都是管理员接口
type AccountHandler struct {
	detailsUseCase   *appaccount.GetAccountDetailsUseCase
	listUseCase      *appaccount.ListAccountsUseCase
	createUseCase    *appaccount.CreateAccountUseCase
	updateUseCase    *appaccount.UpdateAccountUseCase
	statementUseCase *appledger.StatementUseCase
	reconcileUseCase *appledger.ReconcileUseCase
}

// NewAccountHandler 创建账户处理器
func NewAccountHandler(
	detailsUseCase *appaccount.GetAccountDetailsUseCase,
	listUseCase *appaccount.ListAccountsUseCase,
	createUseCase *appaccount.CreateAccountUseCase,
	updateUseCase *appaccount.UpdateAccountUseCase,
	statementUseCase *appledger.StatementUseCase,
	reconcileUseCase *appledger.ReconcileUseCase,
) *AccountHandler {
	return &AccountHandler{
		detailsUseCase:   detailsUseCase,
		listUseCase:      listUseCase,
		createUseCase:    createUseCase,
		updateUseCase:    updateUseCase,
		statementUseCase: statementUseCase,
		reconcileUseCase: reconcileUseCase,
	}
}

// Me 当前账户详情
// @Summary      我的账户
// @Description  账户信息和全部流水(时间倒序)
// @Tags         账户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.AccountDetails}
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/accounts/me [get]
func (h *AccountHandler) Me(c *gin.Context) {
	result, err := h.detailsUseCase.Execute(c.Request.Context(), appaccount.GetAccountDetailsRequest{
		Identity: middleware.GetIdentity(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewAccountDetails(result))
}

// MyStatement 当前账户的对账单
// @Summary      我的对账单
// @Tags         账户
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.StatementResponse}
// @Router       /api/v1/accounts/me/statement [get]
func (h *AccountHandler) MyStatement(c *gin.Context) {
	h.statement(c, middleware.GetAccountID(c))
}

// List 账户列表
// @Summary      账户列表
// @Description  active=true只返回启用的账户，active=false只返回停用的账户
// @Tags         账户管理
// @Produce      json
// @Security     BearerAuth
// @Param        active query bool false "按启用状态过滤"
// @Success      200 {object} response.Response{data=[]dto.AccountOverview}
// @Failure      403 {object} response.Response "无权限"
// @Router       /api/v1/accounts [get]
func (h *AccountHandler) List(c *gin.Context) {
	var q dto.ListAccountsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.listUseCase.Execute(c.Request.Context(), appaccount.ListAccountsRequest{Active: q.Active})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewAccountOverviews(result))
}

// Get 账户详情
// @Summary      账户详情
// @Tags         账户管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "账户ID"
// @Success      200 {object} response.Response{data=dto.AccountDetails}
// @Failure      404 {object} response.Response "账户不存在"
// @Router       /api/v1/accounts/{id} [get]
func (h *AccountHandler) Get(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: 无效的账户ID")
		return
	}

	result, err := h.detailsUseCase.Execute(c.Request.Context(), appaccount.GetAccountDetailsRequest{AccountID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.NewAccountDetails(result))
}

// Statement 指定账户的对账单
// @Summary      账户对账单
// @Tags         账户管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "账户ID"
// @Success      200 {object} response.Response{data=dto.StatementResponse}
// @Failure      404 {object} response.Response "账户不存在"
// @Router       /api/v1/accounts/{id}/statement [get]
func (h *AccountHandler) Statement(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: 无效的账户ID")
		return
	}
	h.statement(c, id)
}

func (h *AccountHandler) statement(c *gin.Context, accountID uint) {
	result, err := h.statementUseCase.Execute(c.Request.Context(), appledger.StatementRequest{AccountID: accountID})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.StatementResponse{
		AccountID:    result.AccountID,
		Transactions: dto.NewTransactionItems(result.Lines),
	})
}

// Reconcile 核对余额与流水
// @Summary      余额核对
// @Description  检查 余额 = 初始余额 + 流水金额合计
// @Tags         账户管理
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "账户ID"
// @Success      200 {object} response.Response{data=dto.ReconcileResponse}
// @Failure      404 {object} response.Response "账户不存在"
// @Router       /api/v1/accounts/{id}/reconcile [get]
func (h *AccountHandler) Reconcile(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: 无效的账户ID")
		return
	}

	r, err := h.reconcileUseCase.Execute(c.Request.Context(), appledger.ReconcileRequest{AccountID: id})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, &dto.ReconcileResponse{
		AccountID:  r.AccountID,
		Seed:       r.Seed.StringFixed(2),
		Sum:        r.Sum.StringFixed(2),
		Wallet:     r.Wallet.StringFixed(2),
		Consistent: r.Consistent,
	})
}

// Create 开户
// @Summary      开户
// @Description  初始余额1-5000，邮箱唯一(忽略大小写)
// @Tags         账户管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body dto.CreateAccountRequest true "账户信息"
// @Success      200 {object} response.Response{data=dto.AccountInfo}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "邮箱已存在"
// @Router       /api/v1/accounts [post]
func (h *AccountHandler) Create(c *gin.Context) {
	var req dto.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.createUseCase.Execute(c.Request.Context(), appaccount.CreateAccountRequest{
		Email:    req.Email,
		Name:     req.Name,
		Role:     req.Role,
		Password: req.Password,
		Wallet:   req.Wallet,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	info := dto.NewAccountInfo(*result)
	response.Success(c, &info)
}

// Update 修改账户资料
// @Summary      修改账户
// @Description  可修改邮箱、姓名、角色、密码、启用状态；余额不能修改
// @Tags         账户管理
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "账户ID"
// @Param        request body dto.UpdateAccountRequest true "修改内容"
// @Success      200 {object} response.Response{data=dto.AccountInfo}
// @Failure      404 {object} response.Response "账户不存在"
// @Router       /api/v1/accounts/{id} [patch]
func (h *AccountHandler) Update(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: 无效的账户ID")
		return
	}
	var req dto.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.updateUseCase.Execute(c.Request.Context(), appaccount.UpdateAccountRequest{
		AccountID: id,
		Email:     req.Email,
		Name:      req.Name,
		Role:      req.Role,
		Password:  req.Password,
		Active:    req.Active,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	info := dto.NewAccountInfo(*result)
	response.Success(c, &info)
}
