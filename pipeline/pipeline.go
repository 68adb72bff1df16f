package pipeline

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/c360/streampump/errors"
	"github.com/c360/streampump/metric"
)

// Event is the record under transformation.
type Event = map[string]any

// Context is the per-event side channel shared by the processors of one traversal.
type Context = map[string]any

// Processor transforms one event. Returning a nil event drops it.
type Processor interface {
	ID() string
	Process(ctx Context, event Event) (Event, error)
}

// Analyzer is a processor that accumulates state across events and evaluates it
// on demand.
type Analyzer interface {
	Processor
	Analyze() error
}

// Lookup is a keyed reference dataset shared by processors.
type Lookup interface {
	ID() string
}

// analyzerCounterPrefix prefixes the profiler counter key of an analyzer's
// second counter set.
const analyzerCounterPrefix = "analyzer_"

// AnalyzerCounterKey returns the profiler counter key for the analyzer set of id.
func AnalyzerCounterKey(id string) string {
	return analyzerCounterPrefix + id
}

// Pipeline is an ordered chain of processors whose last element is the terminal
// processor, conventionally the sink.
//
// The processor chain is mutated only while the pipeline is being assembled,
// before events flow through it.
type Pipeline struct {
	id         string
	processors []Processor
	service    *Service
	metrics    *metric.MetricsRegistry
	counters   map[string]*metric.ProfilerCounter
	logger     *slog.Logger
}

// New creates a pipeline. metricsRegistry may be nil, in which case no platform
// metrics are recorded and no profiler counters can be created.
func New(id string, metricsRegistry *metric.MetricsRegistry, logger *slog.Logger, processors ...Processor) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		id:         id,
		processors: append([]Processor(nil), processors...),
		metrics:    metricsRegistry,
		counters:   make(map[string]*metric.ProfilerCounter),
		logger:     logger.With("component", "pipeline", "pipeline", id),
	}
}

// ID returns the pipeline id
func (p *Pipeline) ID() string {
	return p.id
}

// MetricsService returns the registry used to create profiler counters.
func (p *Pipeline) MetricsService() *metric.MetricsRegistry {
	return p.metrics
}

// Service returns the service the pipeline was added to, or nil.
func (p *Pipeline) Service() *Service {
	return p.service
}

// Processors returns a copy of the processor chain.
func (p *Pipeline) Processors() []Processor {
	return append([]Processor(nil), p.processors...)
}

// Terminal returns the last processor of the chain, or nil for an empty pipeline.
func (p *Pipeline) Terminal() Processor {
	if len(p.processors) == 0 {
		return nil
	}
	return p.processors[len(p.processors)-1]
}

// Append adds a processor at the end of the chain.
func (p *Pipeline) Append(processor Processor) {
	p.processors = append(p.processors, processor)
}

// PopLast removes and returns the last processor of the chain.
func (p *Pipeline) PopLast() (Processor, error) {
	if len(p.processors) == 0 {
		return nil, errors.WrapInvalid(errors.ErrNoTerminal, "Pipeline", "PopLast",
			fmt.Sprintf("pop terminal of pipeline '%s'", p.id))
	}
	last := p.processors[len(p.processors)-1]
	p.processors[len(p.processors)-1] = nil
	p.processors = p.processors[:len(p.processors)-1]
	return last, nil
}

// LocateConnection returns the connection registered under name on the
// pipeline's service.
func (p *Pipeline) LocateConnection(name string) (Connection, error) {
	if p.service == nil {
		return nil, errors.WrapInvalid(errors.ErrConnectionNotFound, "Pipeline", "LocateConnection",
			fmt.Sprintf("locate connection '%s' of detached pipeline '%s'", name, p.id))
	}
	return p.service.LocateConnection(name)
}

// SetProfilerCounter stores counter under key, replacing any previous one.
func (p *Pipeline) SetProfilerCounter(key string, counter *metric.ProfilerCounter) {
	p.counters[key] = counter
}

// ProfilerCounter returns the counter stored under key.
func (p *Pipeline) ProfilerCounter(key string) (*metric.ProfilerCounter, bool) {
	c, ok := p.counters[key]
	return c, ok
}

// ResetProfiler resets every profiler counter of the pipeline.
func (p *Pipeline) ResetProfiler() {
	for _, c := range p.counters {
		c.Reset()
	}
}

// Process runs event through the whole chain. The returned bool reports whether
// the event reached past the terminal processor. An error aborts only this event.
func (p *Pipeline) Process(event Event) (bool, error) {
	started := time.Now()
	ctx := Context{}

	for _, processor := range p.processors {
		t0 := time.Now()
		out, err := processor.Process(ctx, event)
		if c, ok := p.counters[processor.ID()]; ok {
			c.Add(time.Since(t0))
		}
		if err != nil {
			p.recordError(err)
			return false, errors.Wrap(err, "Pipeline", "Process",
				fmt.Sprintf("processor '%s'", processor.ID()))
		}
		if out == nil {
			if p.metrics != nil {
				p.metrics.CoreMetrics().RecordEventDropped(p.id, processor.ID())
			}
			p.logger.Debug("Event dropped", "processor", processor.ID())
			return false, nil
		}
		event = out
	}

	if p.metrics != nil {
		p.metrics.CoreMetrics().RecordEventProcessed(p.id)
		p.metrics.CoreMetrics().RecordProcessingDuration(p.id, time.Since(started))
	}
	return true, nil
}

// Analyze runs Analyze on every analyzer of the chain, accounting the time
// spent under the analyzer's own profiler counter.
func (p *Pipeline) Analyze() error {
	for _, processor := range p.processors {
		analyzer, ok := processor.(Analyzer)
		if !ok {
			continue
		}
		t0 := time.Now()
		err := analyzer.Analyze()
		if c, ok := p.counters[AnalyzerCounterKey(analyzer.ID())]; ok {
			c.Add(time.Since(t0))
		}
		if err != nil {
			p.recordError(err)
			return errors.Wrap(err, "Pipeline", "Analyze", fmt.Sprintf("analyzer '%s'", analyzer.ID()))
		}
	}
	return nil
}

func (p *Pipeline) recordError(err error) {
	if p.metrics != nil {
		p.metrics.CoreMetrics().RecordError(p.id, errors.Classify(err).String())
	}
}
