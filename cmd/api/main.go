package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appaccount "github.com/xiebiao/bigbooks/internal/application/account"
	"github.com/xiebiao/bigbooks/internal/domain/book"
	"github.com/xiebiao/bigbooks/internal/infrastructure/config"
	"github.com/xiebiao/bigbooks/pkg/metrics"
	"github.com/xiebiao/bigbooks/pkg/tracing"
	"github.com/xiebiao/bigbooks/pkg/validator"
)

// @title           BigBooks API
// @version         1.0
// @description     图书购买与账本服务：账户、图书、评论、购买与充值
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
// @description     格式：Bearer <access_token>
func main() {
	if err := run(); err != nil {
		log.Fatalf("服务退出: %v", err)
	}
}

func run() error {
	// 1. 加载配置
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}

	logger, err := provideLogger(cfg)
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("配置加载成功",
		zap.Int("port", cfg.Server.Port),
		zap.String("mode", cfg.Server.Mode),
		zap.String("driver", cfg.Database.Driver),
		zap.Bool("redis", cfg.Redis.Enabled),
		zap.Bool("mq", cfg.MQ.Enabled),
	)

	// 2. 校验器、指标、链路追踪
	validator.SetGenres(book.GenreNames())
	if err := validator.Register(); err != nil {
		return fmt.Errorf("注册校验器失败: %w", err)
	}
	metrics.InitMetrics()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName, cfg.Tracing.CollectorURL)
		if err != nil {
			return fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. 基础设施
	st, closeStorage, err := provideStorage(cfg, logger)
	if err != nil {
		return err
	}
	defer closeStorage()

	c, closeCache, err := provideCache(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeCache()

	publisher, closePublisher, err := providePublisher(cfg, logger)
	if err != nil {
		return err
	}
	defer closePublisher()

	// 4. 组装应用
	a := newApp(cfg, logger, st, c, publisher, provideJWTManager(cfg), provideRateLimiter(cfg))

	if err := a.bootstrap.Execute(ctx, appaccount.BootstrapAdminRequest{
		Email:    cfg.Bootstrap.AdminEmail,
		Name:     cfg.Bootstrap.AdminName,
		Password: cfg.Bootstrap.AdminPassword,
		Wallet:   adminWallet(cfg),
	}); err != nil {
		return fmt.Errorf("初始化管理员失败: %w", err)
	}

	// 5. 启动服务，收到信号后优雅退出
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.engine,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("服务启动成功",
			zap.String("addr", srv.Addr),
			zap.String("swagger", fmt.Sprintf("http://localhost%s/swagger/index.html", srv.Addr)),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("启动服务失败: %w", err)
	case <-ctx.Done():
	}

	logger.Info("正在关闭服务...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("关闭服务失败: %w", err)
	}
	logger.Info("服务已关闭")
	return nil
}
