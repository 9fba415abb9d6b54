package metrics

import "github.com/prometheus/client_golang/prometheus"

// StockAuditMetrics records findings from the stock audit sweep.
type StockAuditMetrics struct {
	findings *prometheus.GaugeVec
}

// NewStockAuditMetrics registers the audit metrics on the provided registerer.
func NewStockAuditMetrics(reg prometheus.Registerer) *StockAuditMetrics {
	if reg == nil {
		return &StockAuditMetrics{}
	}
	findings := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "stock_audit_findings",
		Help: "Inconsistencies found by the last stock audit sweep.",
	}, []string{"finding"})
	reg.MustRegister(findings)
	return &StockAuditMetrics{findings: findings}
}

// SetFindings records how many records matched the finding in the last sweep.
func (s *StockAuditMetrics) SetFindings(finding string, count int) {
	if s == nil || s.findings == nil {
		return
	}
	s.findings.WithLabelValues(normalizeLabel(finding)).Set(float64(count))
}
