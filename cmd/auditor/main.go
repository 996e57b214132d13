// auditor 订阅账本事件，逐条核对账户余额与流水
//
// 用法：与API使用同一份配置，要求database.driver=mysql且mq.enabled=true
//
//	go run ./cmd/auditor
package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	appledger "github.com/xiebiao/bigbooks/internal/application/ledger"
	"github.com/xiebiao/bigbooks/internal/infrastructure/config"
	"github.com/xiebiao/bigbooks/internal/infrastructure/mq"
	"github.com/xiebiao/bigbooks/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/bigbooks/pkg/logger"
	pkgmq "github.com/xiebiao/bigbooks/pkg/mq"
	"github.com/xiebiao/bigbooks/pkg/tracing"
)

const auditQueue = "bigbooks.ledger.audit"

func main() {
	if err := run(); err != nil {
		log.Fatalf("auditor退出: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("加载配置失败: %w", err)
	}
	if cfg.Database.Driver != config.DriverMySQL || !cfg.MQ.Enabled {
		return errors.New("auditor需要MySQL存储并启用消息队列")
	}

	zl, err := logger.New(logger.Options{
		Level:        cfg.Log.Level,
		Format:       cfg.Log.Format,
		Output:       cfg.Log.Output,
		EnableCaller: cfg.Log.EnableCaller,
	})
	if err != nil {
		return fmt.Errorf("初始化日志失败: %w", err)
	}
	defer func() { _ = zl.Sync() }()

	if cfg.Tracing.Enabled {
		shutdown, err := tracing.InitTracer(cfg.Tracing.ServiceName+"-auditor", cfg.Tracing.CollectorURL)
		if err != nil {
			return fmt.Errorf("初始化链路追踪失败: %w", err)
		}
		defer func() { _ = shutdown(context.Background()) }()
	}

	db, err := mysql.NewDB(cfg, zl)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}

	reconcile := appledger.NewReconcileUseCase(
		mysql.NewTxManager(db),
		mysql.NewAccountRepository(db),
		mysql.NewLedgerRepository(db),
	)
	audit := appledger.NewAuditUseCase(reconcile, zl)

	consumer, err := pkgmq.NewConsumer(cfg.MQ.URL, cfg.MQ.Exchange, cfg.MQ.ExchangeType, auditQueue, []string{"ledger.#"}, zl)
	if err != nil {
		return err
	}
	defer consumer.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	zl.Info("auditor已启动", zap.String("queue", auditQueue))
	return consumer.Consume(ctx, mq.NewAuditHandler(audit))
}
