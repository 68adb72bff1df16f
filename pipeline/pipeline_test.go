package pipeline

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/c360/streampump/errors"
	"github.com/c360/streampump/metric"
)

type funcProcessor struct {
	id string
	fn func(ctx Context, event Event) (Event, error)
}

func (f *funcProcessor) ID() string { return f.id }

func (f *funcProcessor) Process(ctx Context, event Event) (Event, error) {
	return f.fn(ctx, event)
}

type countingAnalyzer struct {
	funcProcessor
	analyzed int
	err      error
}

func (a *countingAnalyzer) Analyze() error {
	a.analyzed++
	return a.err
}

func passThrough(id string) *funcProcessor {
	return &funcProcessor{id: id, fn: func(_ Context, e Event) (Event, error) { return e, nil }}
}

func TestPipeline_PopAppendTerminal(t *testing.T) {
	sink := NewNullSink("sink")
	p := New("main", nil, nil, passThrough("p1"), sink)

	assert.Same(t, sink, p.Terminal())

	last, err := p.PopLast()
	require.NoError(t, err)
	assert.Same(t, sink, last)
	assert.Len(t, p.Processors(), 1)

	p.Append(passThrough("new"))
	p.Append(last)

	ids := make([]string, 0)
	for _, proc := range p.Processors() {
		ids = append(ids, proc.ID())
	}
	assert.Equal(t, []string{"p1", "new", "sink"}, ids)
	assert.Same(t, sink, p.Terminal())
}

func TestPipeline_PopLastEmpty(t *testing.T) {
	p := New("empty", nil, nil)
	assert.Nil(t, p.Terminal())

	_, err := p.PopLast()
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNoTerminal))
}

func TestPipeline_ProcessChain(t *testing.T) {
	var out bytes.Buffer
	enrich := &funcProcessor{id: "enrich", fn: func(ctx Context, e Event) (Event, error) {
		ctx["seen"] = true
		e["enriched"] = true
		return e, nil
	}}
	check := &funcProcessor{id: "check", fn: func(ctx Context, e Event) (Event, error) {
		if ctx["seen"] != true {
			return nil, fmt.Errorf("context not shared")
		}
		return e, nil
	}}
	p := New("main", metric.NewMetricsRegistry(), nil, enrich, check, NewWriterSink("sink", &out))

	passed, err := p.Process(Event{"id": 1})
	require.NoError(t, err)
	assert.True(t, passed)
	assert.JSONEq(t, `{"id":1,"enriched":true}`, out.String())
}

func TestPipeline_ProcessDrop(t *testing.T) {
	var out bytes.Buffer
	drop := &funcProcessor{id: "drop", fn: func(Context, Event) (Event, error) { return nil, nil }}
	p := New("main", metric.NewMetricsRegistry(), nil, drop, NewWriterSink("sink", &out))

	passed, err := p.Process(Event{"id": 1})
	require.NoError(t, err)
	assert.False(t, passed)
	assert.Empty(t, out.String())
}

func TestPipeline_ProcessError(t *testing.T) {
	cause := stderrors.New("boom")
	failing := &funcProcessor{id: "failing", fn: func(Context, Event) (Event, error) { return nil, cause }}
	p := New("main", metric.NewMetricsRegistry(), nil, failing, NewNullSink("sink"))

	passed, err := p.Process(Event{})
	require.Error(t, err)
	assert.False(t, passed)
	assert.True(t, stderrors.Is(err, cause))
	assert.Contains(t, err.Error(), "processor 'failing'")
}

func TestPipeline_ProfilerAccounting(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	slow := &funcProcessor{id: "slow", fn: func(_ Context, e Event) (Event, error) {
		time.Sleep(time.Millisecond)
		return e, nil
	}}
	p := New("main", registry, nil, slow, NewNullSink("sink"))

	counter, err := registry.CreateProfilerCounter(metric.ProfilerTagProcessor, "slow", "main")
	require.NoError(t, err)
	p.SetProfilerCounter("slow", counter)

	for i := 0; i < 3; i++ {
		_, err := p.Process(Event{})
		require.NoError(t, err)
	}

	got, ok := p.ProfilerCounter("slow")
	require.True(t, ok)
	assert.Equal(t, int64(3), got.Runs())
	assert.GreaterOrEqual(t, got.Duration(), 3*time.Millisecond)

	p.ResetProfiler()
	assert.Equal(t, int64(0), got.Runs())
	assert.Equal(t, time.Duration(0), got.Duration())
}

func TestPipeline_Analyze(t *testing.T) {
	registry := metric.NewMetricsRegistry()
	analyzer := &countingAnalyzer{funcProcessor: *passThrough("spikes")}
	p := New("main", registry, nil, analyzer, NewNullSink("sink"))

	counter, err := registry.CreateProfilerCounter(metric.ProfilerTagAnalyzer, "spikes", "main")
	require.NoError(t, err)
	p.SetProfilerCounter(AnalyzerCounterKey("spikes"), counter)

	require.NoError(t, p.Analyze())
	assert.Equal(t, 1, analyzer.analyzed)
	assert.Equal(t, int64(1), counter.Runs())

	analyzer.err = stderrors.New("bad window")
	err = p.Analyze()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "analyzer 'spikes'")
}

func TestAnalyzerCounterKey(t *testing.T) {
	assert.Equal(t, "analyzer_spikes", AnalyzerCounterKey("spikes"))
}
