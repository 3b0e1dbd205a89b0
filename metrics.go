package scuckoo

import (
	gmetrics "github.com/hashicorp/go-metrics"
)

// recordMetric emits a counter increment through github.com/hashicorp/go-metrics's
// process-global sink. Wiring is opt-in (Builder.WithMetrics) so the core
// data structure never performs ambient I/O by default.
func (s *ScalableCuckooFilter) recordMetric(name string) {
	if !s.metricsEnabled {
		return
	}
	gmetrics.IncrCounter([]string{"scuckoo", s.name, name}, 1)
	gmetrics.SetGauge([]string{"scuckoo", s.name, "filter_count"}, float32(len(s.filters)))
	gmetrics.SetGauge([]string{"scuckoo", s.name, "len"}, float32(s.Len()))
}
