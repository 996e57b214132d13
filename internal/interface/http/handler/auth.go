package handler

import (
	"github.com/gin-gonic/gin"

	appaccount "github.com/xiebiao/bigbooks/internal/application/account"
	"github.com/xiebiao/bigbooks/internal/interface/http/dto"
	"github.com/xiebiao/bigbooks/internal/interface/http/middleware"
	"github.com/xiebiao/bigbooks/pkg/response"
)

// AuthHandler 登录/登出HTTP处理器
type AuthHandler struct {
	loginUseCase   *appaccount.LoginUseCase
	logoutUseCase  *appaccount.LogoutUseCase
	refreshUseCase *appaccount.RefreshUseCase
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(
	loginUseCase *appaccount.LoginUseCase,
	logoutUseCase *appaccount.LogoutUseCase,
	refreshUseCase *appaccount.RefreshUseCase,
) *AuthHandler {
	return &AuthHandler{
		loginUseCase:   loginUseCase,
		logoutUseCase:  logoutUseCase,
		refreshUseCase: refreshUseCase,
	}
}

// Login 登录
// @Summary      登录
// @Description  验证邮箱密码，返回JWT Token。停用的账户也可以登录
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "登录信息"
// @Success      200 {object} response.Response{data=dto.LoginResponse} "登录成功"
// @Failure      400 {object} response.Response "参数错误"
// @Failure      401 {object} response.Response "邮箱或密码错误"
// @Router       /api/v1/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appaccount.LoginRequest{
		Email:    req.Email,
		Password: req.Password,
		ClientIP: c.ClientIP(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.LoginResponse{
		Account:      dto.NewAccountInfo(result.Account),
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
	})
}

// Logout 登出
// @Summary      登出
// @Description  当前Access Token在剩余有效期内失效
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Failure      401 {object} response.Response "未登录"
// @Router       /api/v1/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	err := h.logoutUseCase.Execute(c.Request.Context(), appaccount.LogoutRequest{
		AccountID: middleware.GetAccountID(c),
		TokenID:   middleware.GetTokenID(c),
		ExpiresAt: middleware.GetTokenExpiry(c),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, nil)
}

// Refresh 用Refresh Token换取新的Access Token
// @Summary      刷新Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=dto.RefreshResponse}
// @Failure      401 {object} response.Response "Token无效或已过期"
// @Router       /api/v1/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithCode(c, codeInvalidParams, "参数错误: "+err.Error())
		return
	}

	result, err := h.refreshUseCase.Execute(c.Request.Context(), appaccount.RefreshRequest{
		RefreshToken: req.RefreshToken,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.RefreshResponse{
		AccessToken: result.AccessToken,
		ExpiresIn:   result.ExpiresIn,
	})
}
