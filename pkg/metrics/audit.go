package metrics

import "github.com/prometheus/client_golang/prometheus"

// Namespace prefixes every metric this service exports.
const Namespace = "daftar"

// AuditMetrics tracks trail writes. Audit persistence is best-effort, so the
// dropped counter is the only signal that rows are being lost.
type AuditMetrics struct {
	written *prometheus.CounterVec
	dropped *prometheus.CounterVec
}

// NewAuditMetrics registers audit trail metrics on the provided registerer.
func NewAuditMetrics(reg prometheus.Registerer) *AuditMetrics {
	if reg == nil {
		return &AuditMetrics{}
	}
	written := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "audit_entries_written",
		Help:      "Audit trail rows persisted.",
	}, []string{"action"})
	dropped := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: Namespace,
		Name:      "audit_entries_dropped",
		Help:      "Audit trail rows lost to write failures.",
	}, []string{"action"})
	reg.MustRegister(written, dropped)
	return &AuditMetrics{written: written, dropped: dropped}
}

// IncWritten increments the persisted counter for the action.
func (a *AuditMetrics) IncWritten(action string) {
	if a == nil || a.written == nil {
		return
	}
	a.written.WithLabelValues(normalizeLabel(action)).Inc()
}

// IncDropped increments the dropped counter for the action.
func (a *AuditMetrics) IncDropped(action string) {
	if a == nil || a.dropped == nil {
		return
	}
	a.dropped.WithLabelValues(normalizeLabel(action)).Inc()
}
