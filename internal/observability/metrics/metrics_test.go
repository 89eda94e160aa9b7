package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestPipelineMetricsCounters(t *testing.T) {
	m := NewPipelineMetricsWith(prometheus.NewRegistry())

	m.IncVerification(VerificationOK)
	m.IncVerification(VerificationOK)
	m.IncVerification(VerificationMissingCode)
	m.IncEnrollment(EnrollmentAlreadyMember)
	m.IncRoleGrant(GrantApplied)
	m.SetGrantQueueDepth(3)

	if got := testutil.ToFloat64(m.verifications.WithLabelValues(VerificationOK)); got != 2 {
		t.Fatalf("expected 2 ok verifications, got %v", got)
	}
	if got := testutil.ToFloat64(m.verifications.WithLabelValues(VerificationMissingCode)); got != 1 {
		t.Fatalf("expected 1 missing-code verification, got %v", got)
	}
	if got := testutil.ToFloat64(m.enrollments.WithLabelValues(EnrollmentAlreadyMember)); got != 1 {
		t.Fatalf("expected 1 already-member enrollment, got %v", got)
	}
	if got := testutil.ToFloat64(m.roleGrants.WithLabelValues(GrantApplied)); got != 1 {
		t.Fatalf("expected 1 applied grant, got %v", got)
	}
	if got := testutil.ToFloat64(m.grantQueueDepth); got != 3 {
		t.Fatalf("expected queue depth 3, got %v", got)
	}
}

func TestPipelineMetricsNilReceiver(t *testing.T) {
	var m *PipelineMetrics

	// Handlers and the bot runtime never nil-check their metrics.
	m.IncVerification(VerificationOK)
	m.IncEnrollment(EnrollmentFailed)
	m.IncRoleGrant(GrantDropped)
	m.ObserveGrantAttempts(1)
	m.SetGrantQueueDepth(0)
}
