package metric

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics contains all platform-level metrics (not processor-specific)
type Metrics struct {
	EventsProcessed     *prometheus.CounterVec
	EventsDropped       *prometheus.CounterVec
	ProcessingDuration  *prometheus.HistogramVec
	ErrorsTotal         *prometheus.CounterVec
	SegmentsConstructed *prometheus.CounterVec
	DefinitionsLoaded   prometheus.Gauge
}

// NewMetrics creates a new Metrics instance with all platform metrics
func NewMetrics() *Metrics {
	return &Metrics{
		EventsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streampump",
				Subsystem: "events",
				Name:      "processed_total",
				Help:      "Total number of events that reached the end of a pipeline",
			},
			[]string{"pipeline"},
		),

		EventsDropped: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streampump",
				Subsystem: "events",
				Name:      "dropped_total",
				Help:      "Total number of events dropped by a processor",
			},
			[]string{"pipeline", "processor"},
		),

		ProcessingDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "streampump",
				Subsystem: "processing",
				Name:      "duration_seconds",
				Help:      "Event processing duration through a whole pipeline in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pipeline"},
		),

		ErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streampump",
				Subsystem: "errors",
				Name:      "total",
				Help:      "Total number of errors",
			},
			[]string{"pipeline", "type"},
		),

		SegmentsConstructed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "streampump",
				Subsystem: "segment",
				Name:      "constructed_total",
				Help:      "Total number of lookups and processors constructed from definitions",
			},
			[]string{"pipeline", "kind"},
		),

		DefinitionsLoaded: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "streampump",
				Subsystem: "segment",
				Name:      "definitions_loaded",
				Help:      "Number of definition files discovered by the last segment build",
			},
		),
	}
}

// RecordEventProcessed increments the processed event counter
func (c *Metrics) RecordEventProcessed(pipeline string) {
	c.EventsProcessed.WithLabelValues(pipeline).Inc()
}

// RecordEventDropped increments the dropped event counter
func (c *Metrics) RecordEventDropped(pipeline, processor string) {
	c.EventsDropped.WithLabelValues(pipeline, processor).Inc()
}

// RecordProcessingDuration records processing time
func (c *Metrics) RecordProcessingDuration(pipeline string, duration time.Duration) {
	c.ProcessingDuration.WithLabelValues(pipeline).Observe(duration.Seconds())
}

// RecordError increments error counter
func (c *Metrics) RecordError(pipeline, errorType string) {
	c.ErrorsTotal.WithLabelValues(pipeline, errorType).Inc()
}

// RecordSegmentConstructed increments the constructed segment counter
func (c *Metrics) RecordSegmentConstructed(pipeline, kind string) {
	c.SegmentsConstructed.WithLabelValues(pipeline, kind).Inc()
}

// RecordDefinitionsLoaded sets the number of discovered definition files
func (c *Metrics) RecordDefinitionsLoaded(count int) {
	c.DefinitionsLoaded.Set(float64(count))
}
