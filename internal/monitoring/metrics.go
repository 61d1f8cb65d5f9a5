package monitoring

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics 监控指标
type Metrics struct {
	// HTTP 请求指标
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// 验证码指标
	CodesIssued   prometheus.Counter
	CodesRedeemed prometheus.Counter
	CodesRejected *prometheus.CounterVec

	// 用户指标
	UsersCreated prometheus.Counter
	LoginsTotal  prometheus.Counter

	// 项目指标
	ProjectsCreated prometheus.Counter
	ProjectsDeleted prometheus.Counter

	// 进度指标
	ProgressCreated prometheus.Counter

	// 意向指标
	IntentsSubmitted prometheus.Counter
	IntentsUpdated   *prometheus.CounterVec

	// 通知指标
	NotificationsCreated prometheus.Counter
	NotificationsPushed  prometheus.Counter

	// WebSocket 指标
	WebSocketConnections prometheus.Gauge

	// 错误指标
	ErrorsTotal *prometheus.CounterVec
	PanicsTotal prometheus.Counter
}

// NewMetrics 创建监控指标
func NewMetrics() *Metrics {
	return &Metrics{
		HTTPRequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garith_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status_code"},
		),

		HTTPRequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "garith_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint"},
		),

		CodesIssued: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "garith_verification_codes_issued_total",
				Help: "Total number of verification codes issued",
			},
		),

		CodesRedeemed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "garith_verification_codes_redeemed_total",
				Help: "Total number of verification codes redeemed",
			},
		),

		CodesRejected: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garith_verification_codes_rejected_total",
				Help: "Total number of rejected verification attempts",
			},
			[]string{"reason"},
		),

		UsersCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "garith_users_created_total",
				Help: "Total number of users created",
			},
		),

		LoginsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "garith_logins_total",
				Help: "Total number of successful logins",
			},
		),

		ProjectsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "garith_projects_created_total",
				Help: "Total number of projects created",
			},
		),

		ProjectsDeleted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "garith_projects_deleted_total",
				Help: "Total number of projects deleted",
			},
		),

		ProgressCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "garith_progress_created_total",
				Help: "Total number of project progress records created",
			},
		),

		IntentsSubmitted: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "garith_intents_submitted_total",
				Help: "Total number of collaboration intents submitted",
			},
		),

		IntentsUpdated: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garith_intents_updated_total",
				Help: "Total number of intent status updates",
			},
			[]string{"status"},
		),

		NotificationsCreated: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "garith_notifications_created_total",
				Help: "Total number of notifications created",
			},
		),

		NotificationsPushed: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "garith_notifications_pushed_total",
				Help: "Total number of notifications pushed over WebSocket",
			},
		),

		WebSocketConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "garith_websocket_connections",
				Help: "Number of active WebSocket connections",
			},
		),

		ErrorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "garith_errors_total",
				Help: "Total number of errors",
			},
			[]string{"type", "component"},
		),

		PanicsTotal: promauto.NewCounter(
			prometheus.CounterOpts{
				Name: "garith_panics_total",
				Help: "Total number of panics",
			},
		),
	}
}

// RecordHTTPRequest 记录 HTTP 请求指标
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCodeIssued 记录验证码下发
func (m *Metrics) RecordCodeIssued() {
	m.CodesIssued.Inc()
}

// RecordCodeRedeemed 记录验证码核销
func (m *Metrics) RecordCodeRedeemed() {
	m.CodesRedeemed.Inc()
}

// RecordCodeRejected 记录验证失败
func (m *Metrics) RecordCodeRejected(reason string) {
	m.CodesRejected.WithLabelValues(reason).Inc()
}

// RecordUserCreated 记录用户创建
func (m *Metrics) RecordUserCreated() {
	m.UsersCreated.Inc()
}

// RecordLogin 记录登录成功
func (m *Metrics) RecordLogin() {
	m.LoginsTotal.Inc()
}

// RecordProjectCreated 记录项目创建
func (m *Metrics) RecordProjectCreated() {
	m.ProjectsCreated.Inc()
}

// RecordProjectDeleted 记录项目删除
func (m *Metrics) RecordProjectDeleted() {
	m.ProjectsDeleted.Inc()
}

// RecordProgressCreated 记录进度追加
func (m *Metrics) RecordProgressCreated() {
	m.ProgressCreated.Inc()
}

// RecordIntentSubmitted 记录意向提交
func (m *Metrics) RecordIntentSubmitted() {
	m.IntentsSubmitted.Inc()
}

// RecordIntentUpdated 记录意向状态变更
func (m *Metrics) RecordIntentUpdated(status string) {
	m.IntentsUpdated.WithLabelValues(status).Inc()
}

// RecordNotificationCreated 记录通知创建
func (m *Metrics) RecordNotificationCreated() {
	m.NotificationsCreated.Inc()
}

// RecordNotificationPushed 记录通知推送
func (m *Metrics) RecordNotificationPushed() {
	m.NotificationsPushed.Inc()
}

// RecordError 记录错误
func (m *Metrics) RecordError(errorType, component string) {
	m.ErrorsTotal.WithLabelValues(errorType, component).Inc()
}

// RecordPanic 记录 panic
func (m *Metrics) RecordPanic() {
	m.PanicsTotal.Inc()
}

// HTTPHandler 返回 Prometheus HTTP 处理器
func (m *Metrics) HTTPHandler() http.Handler {
	return promhttp.Handler()
}
