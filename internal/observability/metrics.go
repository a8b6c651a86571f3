package observability

import (
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PipelineCollector bundles Prometheus metrics for the batch pipeline and
// provides a ready-made /metrics handler for long runs.
type PipelineCollector struct {
	gatherer prometheus.Gatherer

	EventsTotal   *prometheus.CounterVec
	CacheLookups  *prometheus.CounterVec
	CredibleArea  prometheus.Histogram
	EventDuration prometheus.Histogram
	LabelRecords  *prometheus.GaugeVec
}

// NewPipelineCollector registers pipeline Prometheus metrics against the
// provided registerer, defaulting to the global Prometheus registry when
// nil.
func NewPipelineCollector(reg prometheus.Registerer) (*PipelineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	events := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skycorr_events_total",
		Help: "Processed events, labeled by configuration label and outcome.",
	}, []string{"label", "outcome"})
	events, err := registerCounterVec(reg, events, "skycorr_events_total")
	if err != nil {
		return nil, err
	}

	lookups := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skycorr_cache_lookups_total",
		Help: "Interpolation cache lookups, labeled by result (hit or miss).",
	}, []string{"result"})
	lookups, err = registerCounterVec(reg, lookups, "skycorr_cache_lookups_total")
	if err != nil {
		return nil, err
	}

	area, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skycorr_credible_area_deg2",
		Help:    "68% credible-region area per event in square degrees.",
		Buckets: []float64{0.5, 1, 2, 4, 8, 16, 32, 64, 128, 256, 512, 1024},
	}), "skycorr_credible_area_deg2")
	if err != nil {
		return nil, err
	}

	duration, err := registerHistogram(reg, prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skycorr_event_duration_seconds",
		Help:    "Wall time per processed event in seconds.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
	}), "skycorr_event_duration_seconds")
	if err != nil {
		return nil, err
	}

	records := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "skycorr_label_records",
		Help: "Aggregate records accumulated per configuration label.",
	}, []string{"label"})
	records, err = registerGaugeVec(reg, records, "skycorr_label_records")
	if err != nil {
		return nil, err
	}

	return &PipelineCollector{
		gatherer:      gatherer,
		EventsTotal:   events,
		CacheLookups:  lookups,
		CredibleArea:  area,
		EventDuration: duration,
		LabelRecords:  records,
	}, nil
}

// ObserveEvent records one finished event pass.
func (c *PipelineCollector) ObserveEvent(label, outcome string, seconds float64) {
	if c == nil {
		return
	}
	if c.EventsTotal != nil {
		c.EventsTotal.WithLabelValues(label, outcome).Inc()
	}
	if c.EventDuration != nil {
		c.EventDuration.Observe(seconds)
	}
}

// ObserveCacheLookup counts a cache hit or miss.
func (c *PipelineCollector) ObserveCacheLookup(hit bool) {
	if c == nil || c.CacheLookups == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.CacheLookups.WithLabelValues(result).Inc()
}

// ObserveCredibleArea records a 68% credible area.
func (c *PipelineCollector) ObserveCredibleArea(areaDeg2 float64) {
	if c == nil || c.CredibleArea == nil {
		return
	}
	c.CredibleArea.Observe(areaDeg2)
}

// SetLabelRecords tracks the record count of one configuration label.
func (c *PipelineCollector) SetLabelRecords(label string, n int) {
	if c == nil || c.LabelRecords == nil {
		return
	}
	c.LabelRecords.WithLabelValues(label).Set(float64(n))
}

// Handler exposes a ready-to-use /metrics handler.
func (c *PipelineCollector) Handler() http.Handler {
	gatherer := c.gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogram(reg prometheus.Registerer, h prometheus.Histogram, name string) (prometheus.Histogram, error) {
	if err := reg.Register(h); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Histogram); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return h, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
