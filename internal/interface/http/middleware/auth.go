package middleware

import (
	"context"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/bigbooks/internal/domain/account"
	apperrors "github.com/xiebiao/bigbooks/pkg/errors"
	"github.com/xiebiao/bigbooks/pkg/jwt"
	"github.com/xiebiao/bigbooks/pkg/response"
)

// Context中的键
const (
	ContextAccountID = "account_id"
	ContextIdentity  = "identity"
	ContextRole      = "role"
	ContextTokenID   = "jti"
	ContextTokenExp  = "token_exp"
)

// RevocationChecker 检查Token是否已登出
// 实现:redis.SessionStore、memory.TokenBlacklist
type RevocationChecker interface {
	IsRevoked(ctx context.Context, jti string) (bool, error)
}

// AuthMiddleware JWT认证中间件
// 设计说明：
// 1. 从Header提取Token
// 2. 验证Token有效性
// 3. 检查Token黑名单(按jti)
// 4. 将账户信息注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	revoked    RevocationChecker
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, revoked RevocationChecker) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		revoked:    revoked,
	}
}

// RequireAuth 要求登录
// 使用方式：
//
//	authorized := r.Group("/api/v1")
//	authorized.Use(authMiddleware.RequireAuth())
//	authorized.GET("/accounts/me", handler.Me)
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// 格式：Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			response.Error(c, apperrors.ErrUnauthorized)
			c.Abort()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.ErrorWithCode(c, apperrors.ErrCodeInvalidToken, "Token格式错误")
			c.Abort()
			return
		}

		claims, err := m.jwtManager.ParseToken(parts[1])
		if err != nil {
			response.Error(c, err) // ErrTokenExpired、ErrInvalidToken
			c.Abort()
			return
		}

		// 已登出的Token
		revoked, err := m.revoked.IsRevoked(c.Request.Context(), claims.ID)
		if err != nil {
			response.Error(c, apperrors.Wrap(err, "验证Token失败"))
			c.Abort()
			return
		}
		if revoked {
			response.ErrorWithCode(c, apperrors.ErrCodeTokenExpired, "Token已失效，请重新登录")
			c.Abort()
			return
		}

		c.Set(ContextAccountID, claims.AccountID)
		c.Set(ContextIdentity, claims.Identity())
		c.Set(ContextRole, claims.Role)
		c.Set(ContextTokenID, claims.ID)
		if claims.ExpiresAt != nil {
			c.Set(ContextTokenExp, claims.ExpiresAt.Time)
		}

		c.Next()
	}
}

// RequireRole 要求指定角色,必须放在RequireAuth之后
func RequireRole(role account.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != string(role) {
			response.Error(c, apperrors.ErrForbidden)
			c.Abort()
			return
		}
		c.Next()
	}
}

// =========================================
// Context辅助函数（供Handler使用）
// =========================================

// GetAccountID 从Context获取当前账户ID,未登录返回0
func GetAccountID(c *gin.Context) uint {
	if v, exists := c.Get(ContextAccountID); exists {
		if id, ok := v.(uint); ok {
			return id
		}
	}
	return 0
}

// GetIdentity 调用方身份(Token的sub,即邮箱)
func GetIdentity(c *gin.Context) string {
	return c.GetString(ContextIdentity)
}

// GetRole 当前角色
func GetRole(c *gin.Context) string {
	return c.GetString(ContextRole)
}

// GetTokenID 当前Access Token的jti
func GetTokenID(c *gin.Context) string {
	return c.GetString(ContextTokenID)
}

// GetTokenExpiry 当前Access Token的过期时间
func GetTokenExpiry(c *gin.Context) time.Time {
	return c.GetTime(ContextTokenExp)
}
