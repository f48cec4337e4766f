package observability

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

const collectTimeout = 2 * time.Second

// MetricsCollector exposes the domain counters recorded through the OTel meters on a Prometheus registry.
// It is an unchecked collector because label sets follow whatever attributes the decorators record.
type MetricsCollector struct {
	instruments *Instruments
	namespace   string
}

var _ prometheus.Collector = (*MetricsCollector)(nil)

// Collector returns the Prometheus bridge for i, or nil when i has no metric reader.
func (i *Instruments) Collector() *MetricsCollector {
	if i == nil || i.metrics == nil {
		return nil
	}
	return &MetricsCollector{instruments: i, namespace: ServiceNamespace}
}

func (c *MetricsCollector) Describe(chan<- *prometheus.Desc) {}

func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	ctx, cancel := context.WithTimeout(context.Background(), collectTimeout)
	defer cancel()

	var rm metricdata.ResourceMetrics
	if err := c.instruments.metrics.Collect(ctx, &rm); err != nil {
		if c.instruments.Logger != nil {
			c.instruments.Logger.Warn("collecting domain metrics failed", "error", err)
		}
		return
	}
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				emitSum(ch, c.metricName(m.Name, data.IsMonotonic), m.Description, data)
			case metricdata.Sum[float64]:
				emitSum(ch, c.metricName(m.Name, data.IsMonotonic), m.Description, data)
			}
		}
	}
}

func emitSum[N int64 | float64](ch chan<- prometheus.Metric, name, help string, sum metricdata.Sum[N]) {
	valueType := prometheus.GaugeValue
	if sum.IsMonotonic {
		valueType = prometheus.CounterValue
	}
	for _, dp := range sum.DataPoints {
		keys, values := labelPairs(dp.Attributes)
		desc := prometheus.NewDesc(name, help, keys, nil)
		metric, err := prometheus.NewConstMetric(desc, valueType, float64(dp.Value), values...)
		if err != nil {
			continue
		}
		ch <- metric
	}
}

// metricName maps "adoptions.service.transitions" to "shelter_adoptions_service_transitions_total".
func (c *MetricsCollector) metricName(name string, counter bool) string {
	out := c.namespace + "_" + sanitize(name)
	if counter && !strings.HasSuffix(out, "_total") {
		out += "_total"
	}
	return out
}

func labelPairs(set attribute.Set) ([]string, []string) {
	keys := make([]string, 0, set.Len())
	values := make([]string, 0, set.Len())
	iter := set.Iter()
	for iter.Next() {
		kv := iter.Attribute()
		keys = append(keys, sanitize(string(kv.Key)))
		values = append(values, kv.Value.Emit())
	}
	return keys, values
}

func sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, s)
}
