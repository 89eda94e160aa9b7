package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Pipeline outcome labels. Terminal grant states mirror the role-grant
// worker's state machine.
const (
	VerificationOK           = "ok"
	VerificationMissingCode  = "missing_code"
	VerificationExchangeFail = "exchange_failed"
	VerificationIdentityFail = "identity_failed"

	EnrollmentCreated       = "created"
	EnrollmentAlreadyMember = "already_member"
	EnrollmentFailed        = "failed"

	GrantApplied   = "role_applied"
	GrantAbandoned = "abandoned"
	GrantDropped   = "dropped"
)

// PipelineMetrics exposes Prometheus instruments for the verification
// and role-grant pipeline.
type PipelineMetrics struct {
	verifications   *prometheus.CounterVec
	enrollments     *prometheus.CounterVec
	roleGrants      *prometheus.CounterVec
	grantAttempts   prometheus.Histogram
	grantQueueDepth prometheus.Gauge
}

// NewPipelineMetrics registers pipeline metrics against the default
// registerer.
func NewPipelineMetrics() *PipelineMetrics {
	return NewPipelineMetricsWith(prometheus.DefaultRegisterer)
}

// NewPipelineMetricsWith registers pipeline metrics against the given
// registerer. Tests pass their own registry.
func NewPipelineMetricsWith(reg prometheus.Registerer) *PipelineMetrics {
	m := &PipelineMetrics{
		verifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guildgate_verifications_total",
			Help: "Verification flows by outcome.",
		}, []string{"outcome"}),
		enrollments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guildgate_enrollments_total",
			Help: "Guild membership enrollment attempts by result.",
		}, []string{"result"}),
		roleGrants: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "guildgate_role_grants_total",
			Help: "Role grant tasks by terminal state.",
		}, []string{"state"}),
		grantAttempts: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "guildgate_role_grant_attempts",
			Help:    "Member lookup attempts per finished grant task.",
			Buckets: []float64{1, 2, 3, 5, 8},
		}),
		grantQueueDepth: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "guildgate_grant_queue_depth",
			Help: "Tasks waiting in the bot runtime's grant queue.",
		}),
	}

	reg.MustRegister(
		m.verifications,
		m.enrollments,
		m.roleGrants,
		m.grantAttempts,
		m.grantQueueDepth,
	)
	return m
}

func (m *PipelineMetrics) IncVerification(outcome string) {
	if m == nil {
		return
	}
	m.verifications.WithLabelValues(outcome).Inc()
}

func (m *PipelineMetrics) IncEnrollment(result string) {
	if m == nil {
		return
	}
	m.enrollments.WithLabelValues(result).Inc()
}

func (m *PipelineMetrics) IncRoleGrant(state string) {
	if m == nil {
		return
	}
	m.roleGrants.WithLabelValues(state).Inc()
}

func (m *PipelineMetrics) ObserveGrantAttempts(attempts int) {
	if m == nil {
		return
	}
	m.grantAttempts.Observe(float64(attempts))
}

func (m *PipelineMetrics) SetGrantQueueDepth(depth int) {
	if m == nil {
		return
	}
	m.grantQueueDepth.Set(float64(depth))
}
