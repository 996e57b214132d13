//go:build wireinject
// +build wireinject

// Wire依赖注入配置文件
//
// 生成方式：`wire gen ./cmd/api`，生成的InitializeApp与main.go中的手动组装等价。
// 存储、缓存、消息队列的选择在providers.go中按配置完成。

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/xiebiao/bigbooks/internal/infrastructure/config"
)

// infrastructureSet 基础设施层依赖
// 包含：配置、日志、存储、Redis、消息队列
var infrastructureSet = wire.NewSet(
	config.Load,
	provideLogger,
	provideStorage,   // MySQL或内存存储
	provideCache,     // Redis或进程内黑名单
	providePublisher, // RabbitMQ或丢弃
)

// middlewareSet 中间件依赖
var middlewareSet = wire.NewSet(
	provideJWTManager,
	provideRateLimiter,
)

// InitializeApp 初始化整个应用
// 返回的cleanup按创建的逆序关闭连接
func InitializeApp(ctx context.Context) (*app, func(), error) {
	wire.Build(
		infrastructureSet,
		middlewareSet,
		newApp,
	)
	return nil, nil, nil
}
