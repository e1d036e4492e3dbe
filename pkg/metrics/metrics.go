// Package metrics 提供基于Prometheus的指标收集
//
// 管理后台自身是上游API的重度调用方，核心观测点有三类：
// 1. HTTP入口流量（请求数、耗时、并发）
// 2. 上游调用（按资源/操作/结果分维度，外加熔断器状态）
// 3. 列表查询缓存（命中/未命中/失效兜底/过期响应丢弃）
//
// 指标通过promauto注册到默认Registry，由/metrics端点暴露，
// 供Prometheus抓取后在Grafana中可视化。
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// initialized 标记是否已初始化（防止重复注册panic）
	initialized bool

	// HTTP入口指标

	// HTTPRequestsTotal HTTP请求总数
	// 标签：method、path、status
	HTTPRequestsTotal *prometheus.CounterVec

	// HTTPRequestDuration HTTP请求耗时
	HTTPRequestDuration *prometheus.HistogramVec

	// HTTPRequestsInProgress 正在处理的HTTP请求数
	HTTPRequestsInProgress prometheus.Gauge

	// 上游调用指标

	// UpstreamRequestsTotal 上游API请求总数
	// 标签：resource（products/orders/...）、operation（list/create/update/delete）、result（success/api_error/network_error/rejected）
	UpstreamRequestsTotal *prometheus.CounterVec

	// UpstreamRequestDuration 上游API请求耗时
	UpstreamRequestDuration *prometheus.HistogramVec

	// CircuitBreakerState 熔断器状态（0=CLOSED, 1=OPEN, 2=HALF_OPEN）
	CircuitBreakerState *prometheus.GaugeVec

	// 列表查询缓存指标

	// ListCacheLookupsTotal 缓存查询总数
	// 标签：resource、result（hit/miss/stale_refetch/inflight_join）
	ListCacheLookupsTotal *prometheus.CounterVec

	// ListStaleServedTotal 上游失败时以旧数据兜底展示的次数
	ListStaleServedTotal *prometheus.CounterVec

	// ListSupersededTotal 因筛选条件已变化而被丢弃的过期响应数
	ListSupersededTotal *prometheus.CounterVec

	// 审计事件指标

	// AuditEventsPublishedTotal 审计事件发布总数
	// 标签：resource、action、result（success/failure）
	AuditEventsPublishedTotal *prometheus.CounterVec
)

// InitMetrics 初始化所有Prometheus指标
// 必须在程序启动时调用一次
func InitMetrics() {
	if initialized {
		return
	}
	initialized = true

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookadmin_http_requests_total",
			Help: "Total number of HTTP requests handled by the admin BFF",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookadmin_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.001, 0.01, 0.05, 0.1, 0.5, 1, 5, 10},
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInProgress = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bookadmin_http_requests_in_progress",
			Help: "Number of HTTP requests currently being served",
		},
	)

	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookadmin_upstream_requests_total",
			Help: "Total number of requests issued to the upstream bookstore API",
		},
		[]string{"resource", "operation", "result"},
	)

	UpstreamRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "bookadmin_upstream_request_duration_seconds",
			Help:    "Upstream bookstore API request latency",
			Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 3, 5, 10},
		},
		[]string{"resource", "operation"},
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bookadmin_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
		},
		[]string{"name"},
	)

	ListCacheLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookadmin_list_cache_lookups_total",
			Help: "List query cache lookups by outcome",
		},
		[]string{"resource", "result"},
	)

	ListStaleServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookadmin_list_stale_served_total",
			Help: "Times stale list data was served because a refetch failed",
		},
		[]string{"resource"},
	)

	ListSupersededTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookadmin_list_superseded_total",
			Help: "Fetch responses discarded because a newer filter key superseded them",
		},
		[]string{"resource"},
	)

	AuditEventsPublishedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bookadmin_audit_events_published_total",
			Help: "Audit events published to the message broker",
		},
		[]string{"resource", "action", "result"},
	)
}

// =========================================
// 辅助函数（nil安全，未初始化时为空操作）
// =========================================

// IncCounterVec 递增带标签的计数器
func IncCounterVec(counter *prometheus.CounterVec, labels map[string]string) {
	if counter != nil {
		counter.With(labels).Inc()
	}
}

// SetGaugeVec 设置带标签的仪表值
func SetGaugeVec(gauge *prometheus.GaugeVec, labels map[string]string, value float64) {
	if gauge != nil {
		gauge.With(labels).Set(value)
	}
}

// ObserveHistogramVec 记录带标签的直方图观测值
func ObserveHistogramVec(histogram *prometheus.HistogramVec, labels map[string]string, value float64) {
	if histogram != nil {
		histogram.With(labels).Observe(value)
	}
}
