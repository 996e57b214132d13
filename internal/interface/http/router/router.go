package router

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/xiebiao/bigbooks/docs" // swagger文档
	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/interface/http/handler"
	"github.com/xiebiao/bigbooks/internal/interface/http/middleware"
	"github.com/xiebiao/bigbooks/pkg/response"
)

// Handlers 所有HTTP处理器
type Handlers struct {
	Auth        *handler.AuthHandler
	Account     *handler.AccountHandler
	Book        *handler.BookHandler
	Review      *handler.ReviewHandler
	Transaction *handler.TransactionHandler
}

// New 创建Gin引擎并注册路由
// limiter为nil时不限流
//
// 中间件顺序:
// RequestID → Recovery → Logger → Metrics → (RequireAuth → RateLimit → RequireRole) → Handler
func New(log *zap.Logger, h Handlers, auth *middleware.AuthMiddleware, limiter *middleware.RateLimiter) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(log),
		middleware.Logger(log),
		middleware.Metrics(),
	)

	r.GET("/ping", func(c *gin.Context) {
		response.Success(c, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	// 访问 http://localhost:8080/swagger/index.html 查看API文档
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	throttle := func(c *gin.Context) { c.Next() }
	if limiter != nil {
		throttle = limiter.Handler()
	}

	v1 := r.Group("/api/v1")
	{
		// 认证(登录、刷新是公开接口,按IP限流)
		authGroup := v1.Group("/auth")
		{
			authGroup.POST("/login", throttle, h.Auth.Login)
			authGroup.POST("/refresh", throttle, h.Auth.Refresh)
			authGroup.POST("/logout", auth.RequireAuth(), h.Auth.Logout)
		}

		authorized := v1.Group("")
		authorized.Use(auth.RequireAuth(), throttle)
		admin := authorized.Group("")
		admin.Use(middleware.RequireRole(account.RoleAdmin))

		// 账户
		authorized.GET("/accounts/me", h.Account.Me)
		authorized.GET("/accounts/me/statement", h.Account.MyStatement)
		admin.GET("/accounts", h.Account.List)
		admin.POST("/accounts", h.Account.Create)
		admin.GET("/accounts/:id", h.Account.Get)
		admin.PATCH("/accounts/:id", h.Account.Update)
		admin.GET("/accounts/:id/statement", h.Account.Statement)
		admin.GET("/accounts/:id/reconcile", h.Account.Reconcile)

		// 图书
		authorized.GET("/books/genre", h.Book.ByGenre)
		authorized.GET("/books/author", h.Book.ByAuthor)
		authorized.GET("/books/authors", h.Book.Authors)
		authorized.GET("/books/:id", h.Book.Get)
		admin.POST("/books", h.Book.Add)
		admin.PATCH("/books/:id", h.Book.Update)

		// 评论
		authorized.GET("/books/:id/reviews", h.Review.List)
		authorized.POST("/books/:id/reviews", h.Review.Add)

		// 交易
		authorized.POST("/transactions/purchase", h.Transaction.Purchase)
		authorized.POST("/transactions/deposit", h.Transaction.Deposit)
	}

	return r
}
