package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Namespace prefixes every exported metric name.
const Namespace = "consent_expiry"

// Registry doubles as a prometheus.Collector. Keys are created lazily, so it
// registers as an unchecked collector and describes nothing up front.
var _ prometheus.Collector = (*Registry)(nil)

// Describe implements prometheus.Collector.
func (r *Registry) Describe(chan<- *prometheus.Desc) {}

// Collect implements prometheus.Collector. Keys ending in "_total" are
// exported as counters, everything else as gauges.
func (r *Registry) Collect(ch chan<- prometheus.Metric) {
	for name, value := range r.Snapshot() {
		valueType := prometheus.GaugeValue
		if strings.HasSuffix(name, "_total") {
			valueType = prometheus.CounterValue
		}

		desc := prometheus.NewDesc(
			prometheus.BuildFQName(Namespace, "", name),
			"consent-expiry metric "+name,
			nil, nil,
		)
		ch <- prometheus.MustNewConstMetric(desc, valueType, float64(value))
	}
}

// NewPrometheusRegistry returns a dedicated prometheus registry exporting r
// alongside the standard Go and process collectors.
func NewPrometheusRegistry(r *Registry) *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		r,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}
