// Package metrics 提供基于Prometheus的指标收集
//
// # 指标类型
//
//   - Counter：只增不减的累计值，如购买成功次数、拒绝次数
//   - Gauge：可增可减的瞬时值，如正在执行的资金操作数、熔断器状态
//   - Histogram：观测值分布，如资金操作耗时（可计算P50、P99）
//
// # 命名规范
//
//  1. Counter以`_total`结尾：`ledger_purchases_total`
//  2. Histogram以单位结尾：`ledger_operation_duration_seconds`
//  3. 标签只使用有限取值（operation、reason、status），不要用account_id、confirmation做标签
//
// # 使用示例
//
//	metrics.InitMetrics()
//	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
//
//	func (uc *PurchaseUseCase) Execute(ctx context.Context, req PurchaseRequest) (*PurchaseResponse, error) {
//	    done := metrics.TrackLedgerOperation(metrics.OperationPurchase)
//	    defer done()
//	    ...
//	}
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 资金操作类型（operation标签取值）
const (
	OperationPurchase = "purchase"
	OperationDeposit  = "deposit"
)

var (
	initOnce sync.Once

	// HTTP请求相关指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path（路由模板，如/api/v1/books/:id）、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// RateLimitedTotal 被限流拒绝的请求数
	RateLimitedTotal prometheus.Counter

	// 账本指标

	// LedgerPurchasesTotal 成功提交的购买次数
	LedgerPurchasesTotal prometheus.Counter

	// LedgerDepositsTotal 成功提交的充值次数
	LedgerDepositsTotal prometheus.Counter

	// LedgerRejectionsTotal 被拒绝的资金操作
	// 标签：operation（purchase/deposit）、reason（insufficient_funds、insufficient_stock等）
	LedgerRejectionsTotal *prometheus.CounterVec

	// LedgerReplaysTotal 携带已使用确认号的重试请求（幂等返回，未产生新流水）
	LedgerReplaysTotal *prometheus.CounterVec

	// LedgerOperationDuration 资金操作耗时（含事务提交）
	LedgerOperationDuration *prometheus.HistogramVec

	// LedgerOperationsInProgress 正在执行的资金操作数
	LedgerOperationsInProgress prometheus.Gauge

	// 评分缓存指标

	// RatingCacheRequests 评分缓存访问
	// 标签：result（hit/miss/stale/error/bypass）
	RatingCacheRequests *prometheus.CounterVec

	// 熔断器指标

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// 消息队列指标

	// MessagesPublishedTotal 消息发布总数
	// 标签：routing_key、result（success/failure）
	MessagesPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 使用promauto注册到默认Registry，多次调用只注册一次
func InitMetrics() {
	initOnce.Do(register)
}

func register() {
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "HTTP请求总数",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP请求耗时（秒）",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "http_requests_in_progress",
			Help: "正在处理的HTTP请求数",
		},
	)

	RateLimitedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "http_rate_limited_total",
			Help: "被限流拒绝的请求数",
		},
	)

	LedgerPurchasesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_purchases_total",
			Help: "成功提交的购买次数",
		},
	)

	LedgerDepositsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "ledger_deposits_total",
			Help: "成功提交的充值次数",
		},
	)

	LedgerRejectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_rejections_total",
			Help: "被拒绝的资金操作次数",
		},
		[]string{"operation", "reason"},
	)

	LedgerReplaysTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ledger_replays_total",
			Help: "确认号重放次数",
		},
		[]string{"operation"},
	)

	LedgerOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "ledger_operation_duration_seconds",
			Help: "资金操作耗时（秒）",
			// 单库事务，通常在几毫秒到几百毫秒之间
			Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"operation"},
	)

	LedgerOperationsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ledger_operations_in_progress",
			Help: "正在执行的资金操作数",
		},
	)

	RatingCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "rating_cache_requests_total",
			Help: "评分缓存访问次数",
		},
		[]string{"result"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "circuit_breaker_state",
			Help: "熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）",
		},
		[]string{"name"},
	)

	MessagesPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_published_total",
			Help: "消息发布总数",
		},
		[]string{"routing_key", "result"},
	)
}

// TrackLedgerOperation 记录一次资金操作的耗时和并发数
// 返回的函数在操作结束时调用（通常defer）
func TrackLedgerOperation(operation string) func() {
	InitMetrics()
	start := time.Now()
	LedgerOperationsInProgress.Inc()
	return func() {
		LedgerOperationsInProgress.Dec()
		LedgerOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	}
}

// RecordLedgerCommitted 资金操作提交成功
func RecordLedgerCommitted(operation string) {
	InitMetrics()
	switch operation {
	case OperationPurchase:
		LedgerPurchasesTotal.Inc()
	case OperationDeposit:
		LedgerDepositsTotal.Inc()
	}
}

// RecordLedgerRejected 资金操作被拒绝
func RecordLedgerRejected(operation, reason string) {
	InitMetrics()
	LedgerRejectionsTotal.WithLabelValues(operation, reason).Inc()
}

// RecordLedgerReplay 确认号重放
func RecordLedgerReplay(operation string) {
	InitMetrics()
	LedgerReplaysTotal.WithLabelValues(operation).Inc()
}

// RecordRatingCache 评分缓存访问结果
func RecordRatingCache(result string) {
	InitMetrics()
	RatingCacheRequests.WithLabelValues(result).Inc()
}

// SetCircuitBreakerState 熔断器状态变化时调用
func SetCircuitBreakerState(name string, state int) {
	InitMetrics()
	CircuitBreakerState.WithLabelValues(name).Set(float64(state))
}

// RecordMessagePublished 消息发布结果
func RecordMessagePublished(routingKey string, err error) {
	InitMetrics()
	result := "success"
	if err != nil {
		result = "failure"
	}
	MessagesPublishedTotal.WithLabelValues(routingKey, result).Inc()
}

// ObserveHTTPRequest 记录一次HTTP请求
func ObserveHTTPRequest(method, path, status string, duration time.Duration) {
	InitMetrics()
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}
