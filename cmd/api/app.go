package main

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	appaccount "github.com/xiebiao/bigbooks/internal/application/account"
	appbook "github.com/xiebiao/bigbooks/internal/application/book"
	appledger "github.com/xiebiao/bigbooks/internal/application/ledger"
	appreview "github.com/xiebiao/bigbooks/internal/application/review"
	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/book"
	"github.com/xiebiao/bigbooks/internal/domain/ledger"
	"github.com/xiebiao/bigbooks/internal/infrastructure/config"
	"github.com/xiebiao/bigbooks/internal/interface/http/handler"
	"github.com/xiebiao/bigbooks/internal/interface/http/middleware"
	"github.com/xiebiao/bigbooks/internal/interface/http/router"
	"github.com/xiebiao/bigbooks/pkg/jwt"
)

// app 组装完成的应用
type app struct {
	engine    *gin.Engine
	bootstrap *appaccount.BootstrapAdminUseCase
}

// newApp 依赖注入（手动组装）
// 依赖链：Repository ← Service ← UseCase ← Handler ← Router
func newApp(
	cfg *config.Config,
	log *zap.Logger,
	st *storage,
	c *cache,
	publisher ledger.EventPublisher,
	jwtManager *jwt.Manager,
	limiter *middleware.RateLimiter,
) *app {
	// 领域层
	accountService := account.NewService(st.accounts)
	bookService := book.NewService(st.books)

	// 应用层
	ratings := appreview.NewRatingAggregator(st.reviews, c.ratings, log)
	details := appaccount.NewGetAccountDetailsUseCase(accountService, st.entries)

	login := appaccount.NewLoginUseCase(accountService, jwtManager, c.sessions, sessionTTL(cfg), log)
	logout := appaccount.NewLogoutUseCase(c.blacklist, c.sessions, log)
	refresh := appaccount.NewRefreshUseCase(accountService, jwtManager, c.blacklist, c.sessions)

	purchase := appledger.NewPurchaseUseCase(st.tx, st.accounts, st.books, st.entries, accountService, publisher, log)
	deposit := appledger.NewDepositUseCase(st.tx, st.accounts, st.entries, accountService, publisher, log)

	// 接口层
	handlers := router.Handlers{
		Auth: handler.NewAuthHandler(login, logout, refresh),
		Account: handler.NewAccountHandler(
			details,
			appaccount.NewListAccountsUseCase(accountService, st.entries),
			appaccount.NewCreateAccountUseCase(accountService, log),
			appaccount.NewUpdateAccountUseCase(accountService, log),
			appledger.NewStatementUseCase(st.accounts, st.entries),
			appledger.NewReconcileUseCase(st.tx, st.accounts, st.entries),
		),
		Book: handler.NewBookHandler(
			appbook.NewGetBookUseCase(bookService, ratings),
			appbook.NewListBooksUseCase(bookService, ratings),
			appbook.NewListAuthorsUseCase(bookService),
			appbook.NewAddBookUseCase(bookService, log),
			appbook.NewUpdateBookUseCase(st.tx, st.books, bookService, ratings, log),
		),
		Review: handler.NewReviewHandler(
			appreview.NewAddReviewUseCase(accountService, st.books, st.reviews, ratings, log),
			appreview.NewListReviewsUseCase(accountService, st.books, st.reviews),
		),
		Transaction: handler.NewTransactionHandler(purchase, deposit, details),
	}
	auth := middleware.NewAuthMiddleware(jwtManager, c.blacklist)

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	return &app{
		engine:    router.New(log, handlers, auth, limiter),
		bootstrap: appaccount.NewBootstrapAdminUseCase(accountService, log),
	}
}
