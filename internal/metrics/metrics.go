package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymplan_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gymplan_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	RegistrationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymplan_registrations_total",
			Help: "Total number of account registrations",
		},
	)

	VerificationsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymplan_email_verifications_total",
			Help: "Total number of completed email verifications",
		},
	)

	LoginsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymplan_logins_total",
			Help: "Total number of login attempts",
		},
		[]string{"result"},
	)

	RoleDowngradesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymplan_role_downgrades_total",
			Help: "Total number of persisted subscription-expiry downgrades",
		},
	)

	EnrollmentsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymplan_enrollments_total",
			Help: "Total number of gym enrollments",
		},
	)

	WithdrawalsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymplan_withdrawals_total",
			Help: "Total number of gym withdrawals",
		},
	)

	CapacityRejectionsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gymplan_capacity_rejections_total",
			Help: "Total number of enrollments rejected by the capacity ledger",
		},
	)

	PlansCreatedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymplan_training_plans_created_total",
			Help: "Total number of training plans created",
		},
		[]string{"provenance"},
	)

	PermissionDenialsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymplan_permission_denials_total",
			Help: "Total number of denied plan operations",
		},
		[]string{"operation"},
	)

	EmailsSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gymplan_emails_sent_total",
			Help: "Total number of emails sent",
		},
		[]string{"type", "status"},
	)

	EmailQueueLength = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "gymplan_email_queue_length",
			Help: "Current length of email queue",
		},
	)
)

func RecordHTTPRequest(method, path, status string, duration float64) {
	HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, path).Observe(duration)
}

func RecordRegistration() {
	RegistrationsTotal.Inc()
}

func RecordVerification() {
	VerificationsTotal.Inc()
}

func RecordLogin(result string) {
	LoginsTotal.WithLabelValues(result).Inc()
}

func RecordRoleDowngrade() {
	RoleDowngradesTotal.Inc()
}

func RecordEnrollment() {
	EnrollmentsTotal.Inc()
}

func RecordWithdrawal() {
	WithdrawalsTotal.Inc()
}

func RecordCapacityRejection() {
	CapacityRejectionsTotal.Inc()
}

func RecordPlanCreated(provenance string) {
	PlansCreatedTotal.WithLabelValues(provenance).Inc()
}

func RecordPermissionDenial(operation string) {
	PermissionDenialsTotal.WithLabelValues(operation).Inc()
}

func RecordEmail(emailType, status string) {
	EmailsSentTotal.WithLabelValues(emailType, status).Inc()
}
