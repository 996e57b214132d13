package main

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/xiebiao/bigbooks/internal/application"
	appaccount "github.com/xiebiao/bigbooks/internal/application/account"
	appreview "github.com/xiebiao/bigbooks/internal/application/review"
	"github.com/xiebiao/bigbooks/internal/domain/account"
	"github.com/xiebiao/bigbooks/internal/domain/book"
	"github.com/xiebiao/bigbooks/internal/domain/ledger"
	"github.com/xiebiao/bigbooks/internal/domain/review"
	"github.com/xiebiao/bigbooks/internal/infrastructure/config"
	"github.com/xiebiao/bigbooks/internal/infrastructure/mq"
	"github.com/xiebiao/bigbooks/internal/infrastructure/persistence/memory"
	"github.com/xiebiao/bigbooks/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bigbooks/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/bigbooks/internal/interface/http/middleware"
	"github.com/xiebiao/bigbooks/pkg/jwt"
	"github.com/xiebiao/bigbooks/pkg/logger"
	pkgmq "github.com/xiebiao/bigbooks/pkg/mq"
)

// =========================================
// 自定义Provider
// =========================================
// 存储、缓存、消息队列按配置二选一,Wire无法根据配置分支,
// 所以这里手写Provider,main.go和wire.go共用

// storage 存储层依赖
type storage struct {
	tx       application.Transactor
	accounts account.Repository
	books    book.Repository
	entries  ledger.Repository
	reviews  review.Repository
}

// provideLogger 从配置创建zap Logger并替换全局Logger(response包使用zap.L())
func provideLogger(cfg *config.Config) (*zap.Logger, error) {
	log, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return nil, err
	}
	zap.ReplaceGlobals(log)
	return log, nil
}

// provideStorage 按database.driver选择MySQL或内存存储
func provideStorage(cfg *config.Config, log *zap.Logger) (*storage, func(), error) {
	if cfg.Database.Driver == config.DriverMemory {
		log.Warn("使用内存存储，重启后数据丢失")
		s := memory.NewStore()
		return &storage{
			tx:       memory.NewTxManager(s),
			accounts: memory.NewAccountRepository(s),
			books:    memory.NewBookRepository(s),
			entries:  memory.NewLedgerRepository(s),
			reviews:  memory.NewReviewRepository(s),
		}, func() {}, nil
	}

	db, err := mysql.NewDB(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return &storage{
		tx:       mysql.NewTxManager(db),
		accounts: mysql.NewAccountRepository(db),
		books:    mysql.NewBookRepository(db),
		entries:  mysql.NewLedgerRepository(db),
		reviews:  mysql.NewReviewRepository(db),
	}, cleanup, nil
}

// cache Redis相关依赖
// sessions为nil表示不记录会话
type cache struct {
	blacklist appaccount.TokenBlacklist
	sessions  appaccount.SessionStore
	ratings   appreview.RatingCache
}

// provideCache 启用Redis时使用Redis黑名单、会话和评分缓存;
// 否则黑名单放在进程内存里,评分不缓存
func provideCache(ctx context.Context, cfg *config.Config, log *zap.Logger) (*cache, func(), error) {
	if !cfg.Redis.Enabled {
		log.Warn("未启用Redis，Token黑名单仅在本进程有效")
		return &cache{
			blacklist: memory.NewTokenBlacklist(),
			ratings:   appreview.NopRatingCache{},
		}, func() {}, nil
	}

	client, err := redis.NewClient(ctx, cfg.Redis, log)
	if err != nil {
		return nil, nil, err
	}
	sessions := redis.NewSessionStore(client)
	return &cache{
		blacklist: sessions,
		sessions:  sessions,
		ratings:   redis.NewRatingCache(client, cfg.Cache.RatingTTL, log),
	}, func() { _ = client.Close() }, nil
}

// providePublisher 启用MQ时发布到RabbitMQ,否则丢弃事件
func providePublisher(cfg *config.Config, log *zap.Logger) (ledger.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		return mq.NoopPublisher{}, func() {}, nil
	}

	publisher, err := pkgmq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, log)
	if err != nil {
		return nil, nil, err
	}
	return mq.NewLedgerEventPublisher(publisher, log), func() { _ = publisher.Close() }, nil
}

// provideJWTManager 从配置创建JWT管理器
func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.Issuer,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

// provideRateLimiter rate_limit.enabled=false时返回nil
func provideRateLimiter(cfg *config.Config) *middleware.RateLimiter {
	if !cfg.RateLimit.Enabled {
		return nil
	}
	return middleware.NewRateLimiter(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst)
}

// sessionTTL 会话与Refresh Token同时过期
func sessionTTL(cfg *config.Config) time.Duration {
	return cfg.JWT.RefreshTokenExpire
}

// adminWallet 配置中的初始余额保留两位小数
func adminWallet(cfg *config.Config) decimal.Decimal {
	return decimal.NewFromFloat(cfg.Bootstrap.AdminWallet).Round(2)
}
