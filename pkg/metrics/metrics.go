package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// API Server Metrics

	// APIRequestsTotal API请求总数
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	// Workflow Metrics

	// ApprovalActionsTotal 审批动作总数（按动作和级别）
	ApprovalActionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "approval_actions_total",
			Help: "Total number of approval actions processed",
		},
		[]string{"action", "level"},
	)

	// PendingRequests 当前审批中的申请单数量
	PendingRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pending_purchase_requests",
			Help: "Number of purchase requests currently pending approval",
		},
	)

	// Escalation Scheduler Metrics

	// EscalationsTotal 升级总数（按级别）
	EscalationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "escalations_total",
			Help: "Total number of escalations to managers",
		},
		[]string{"level"},
	)

	// AutoRejectsTotal 三级超时自动拒绝总数
	AutoRejectsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "auto_rejects_total",
			Help: "Total number of requests auto-rejected after the level-3 timeout",
		},
	)

	// SchedulerTickDuration 调度器单轮扫描耗时
	SchedulerTickDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "escalation_scheduler_tick_duration_seconds",
			Help:    "Duration of one escalation scheduler scan in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// SchedulerErrorsTotal 调度器处理单个申请单出错的次数
	SchedulerErrorsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "escalation_scheduler_errors_total",
			Help: "Total number of per-request errors during escalation scans",
		},
	)

	// NotificationsSentTotal 已发送通知邮件数量（按结果）
	NotificationsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "notifications_sent_total",
			Help: "Total number of notification emails attempted",
		},
		[]string{"result"},
	)
)
