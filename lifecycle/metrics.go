package lifecycle

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// managerMetrics instruments the apply protocol. All methods are nil-safe
// so a Manager built without a registerer carries no instrumentation cost.
type managerMetrics struct {
	appliesTotal   *prometheus.CounterVec
	rollbacksTotal prometheus.Counter
	applyDuration  prometheus.Histogram
	currentVersion prometheus.Gauge
	diffSize       prometheus.Histogram
}

func newManagerMetrics(reg prometheus.Registerer) (*managerMetrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &managerMetrics{
		appliesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "brokerconf",
				Subsystem: "lifecycle",
				Name:      "applies_total",
				Help:      "Total configuration applies by result (applied, validation_failed, canceled, delegate_failed)",
			},
			[]string{"result"},
		),
		rollbacksTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "brokerconf",
				Subsystem: "lifecycle",
				Name:      "rollbacks_total",
				Help:      "Total successful rollbacks",
			},
		),
		applyDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "brokerconf",
				Subsystem: "lifecycle",
				Name:      "apply_duration_seconds",
				Help:      "Duration of the full apply protocol including the delegate call",
				Buckets:   prometheus.DefBuckets,
			},
		),
		currentVersion: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "brokerconf",
				Subsystem: "lifecycle",
				Name:      "current_version",
				Help:      "Version number of the currently active configuration",
			},
		),
		diffSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "brokerconf",
				Subsystem: "lifecycle",
				Name:      "config_changes",
				Help:      "Number of changed properties per successful apply",
				Buckets:   []float64{0, 1, 2, 5, 10, 20, 50},
			},
		),
	}

	for _, c := range []prometheus.Collector{
		m.appliesTotal, m.rollbacksTotal, m.applyDuration, m.currentVersion, m.diffSize,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}

	return m, nil
}

func (m *managerMetrics) recordApply(result string, start time.Time, diffLen, currentVersion int) {
	if m == nil {
		return
	}
	m.appliesTotal.WithLabelValues(result).Inc()
	m.applyDuration.Observe(time.Since(start).Seconds())
	if result == "applied" {
		m.diffSize.Observe(float64(diffLen))
		m.currentVersion.Set(float64(currentVersion))
	}
}

func (m *managerMetrics) recordRollback() {
	if m == nil {
		return
	}
	m.rollbacksTotal.Inc()
}
