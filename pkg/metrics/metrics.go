package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// 邮件发送计数
	MailSendCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mail_send_total",
			Help: "Total number of mail transport calls",
		},
		[]string{"host", "status"}, // status: success, failed
	)

	// HTTP 请求延迟（秒）
	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
		[]string{"method", "path", "status"},
	)

	// 表单提交结果计数
	ContactSubmissionCount = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "contact_submissions_total",
			Help: "Total number of contact form submissions by outcome",
		},
		[]string{"outcome"}, // outcome: sent, duplicate, failed, invalid
	)

	// 拉取到的数据项
	FetchedItemsCount = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "fetched_items_total",
			Help: "Total number of items fetched and rendered",
		},
	)
)

// RecordHTTPRequestDuration 记录 HTTP 请求延迟
func RecordHTTPRequestDuration(method, path, status string, duration time.Duration) {
	HTTPRequestDuration.WithLabelValues(method, path, status).Observe(duration.Seconds())
}

// IncrementMailSend 增加邮件发送计数
func IncrementMailSend(host, status string) {
	MailSendCount.WithLabelValues(host, status).Inc()
}

// IncrementContactSubmission 增加表单提交计数
func IncrementContactSubmission(outcome string) {
	ContactSubmissionCount.WithLabelValues(outcome).Inc()
}

// AddFetchedItems 累加渲染的数据项
func AddFetchedItems(n int) {
	FetchedItemsCount.Add(float64(n))
}
