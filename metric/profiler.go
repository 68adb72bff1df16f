package metric

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/c360/streampump/errors"
)

// Profiler tag keys. Each key owns its own pair of gauge vectors because
// Prometheus requires a fixed label set per metric name.
const (
	ProfilerTagProcessor = "processor"
	ProfilerTagAnalyzer  = "analyzer"
)

type profilerVecs struct {
	duration *prometheus.GaugeVec
	run      *prometheus.GaugeVec
}

// ProfilerCounter accumulates the time spent in, and the number of runs of,
// one processor of one pipeline. Add is safe for concurrent use.
type ProfilerCounter struct {
	duration prometheus.Gauge
	run      prometheus.Gauge
}

// Add records a single run that took d.
func (c *ProfilerCounter) Add(d time.Duration) {
	c.duration.Add(d.Seconds())
	c.run.Inc()
}

// Reset brings both accumulators back to their initial values.
func (c *ProfilerCounter) Reset() {
	c.duration.Set(0)
	c.run.Set(0)
}

// Duration returns the accumulated duration.
func (c *ProfilerCounter) Duration() time.Duration {
	return time.Duration(gaugeValue(c.duration) * float64(time.Second))
}

// Runs returns the number of recorded runs.
func (c *ProfilerCounter) Runs() int64 {
	return int64(gaugeValue(c.run))
}

func gaugeValue(g prometheus.Gauge) float64 {
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		return 0
	}
	return m.GetGauge().GetValue()
}

// CreateProfilerCounter returns the profiler counter for (tagKey=id, pipeline=pipelineID).
// The counter starts at zero; creating it again for the same tags resets it.
func (r *MetricsRegistry) CreateProfilerCounter(tagKey, id, pipelineID string) (*ProfilerCounter, error) {
	if tagKey == "" || id == "" || pipelineID == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidConfig, "MetricsRegistry",
			"CreateProfilerCounter", "profiler tag validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	vecs, ok := r.profilers[tagKey]
	if !ok {
		vecs = &profilerVecs{
			duration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "streampump",
				Subsystem: "pipeline_profiler",
				Name:      tagKey + "_duration_seconds",
				Help:      fmt.Sprintf("Accumulated time spent in each %s since the last profiler reset", tagKey),
			}, []string{tagKey, "pipeline"}),
			run: prometheus.NewGaugeVec(prometheus.GaugeOpts{
				Namespace: "streampump",
				Subsystem: "pipeline_profiler",
				Name:      tagKey + "_runs",
				Help:      fmt.Sprintf("Number of runs of each %s since the last profiler reset", tagKey),
			}, []string{tagKey, "pipeline"}),
		}
		if err := r.registerLocked("CreateProfilerCounter", "gauge vector",
			"profiler", tagKey+"_duration", vecs.duration); err != nil {
			return nil, err
		}
		if err := r.registerLocked("CreateProfilerCounter", "gauge vector",
			"profiler", tagKey+"_runs", vecs.run); err != nil {
			return nil, err
		}
		r.profilers[tagKey] = vecs
	}

	counter := &ProfilerCounter{
		duration: vecs.duration.WithLabelValues(id, pipelineID),
		run:      vecs.run.WithLabelValues(id, pipelineID),
	}
	counter.Reset()
	return counter, nil
}
