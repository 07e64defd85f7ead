package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 数据库查询延迟（秒）
	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"operation", "table"},
	)

	// 级联更新涉及的任务数
	CascadeSize = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "task_cascade_size",
			Help:    "Number of descendant tasks touched by a completion cascade",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 to ~512
		},
	)

	// 权限拒绝计数
	PolicyDenialCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "policy_denial_count",
			Help: "Total number of policy evaluator denials",
		},
		[]string{"entity", "action"},
	)

	// 可见性缓存命中/未命中
	VisibilityCacheCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "visibility_cache_count",
			Help: "Visibility cache lookups by result",
		},
		[]string{"result"}, // result: hit, miss
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// RecordDBQueryDuration 记录数据库查询延迟
func RecordDBQueryDuration(operation, table string, duration time.Duration) {
	DBQueryDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// RecordCascadeSize 记录级联更新规模
func RecordCascadeSize(n int) {
	CascadeSize.Observe(float64(n))
}

// IncrementPolicyDenial 增加权限拒绝计数
func IncrementPolicyDenial(entity, action string) {
	PolicyDenialCount.WithLabelValues(entity, action).Inc()
}

// IncrementVisibilityCache 增加可见性缓存计数
func IncrementVisibilityCache(result string) {
	VisibilityCacheCount.WithLabelValues(result).Inc()
}
