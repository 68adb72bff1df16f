package main

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/c360/streampump/errors"
	"github.com/c360/streampump/pipeline"
)

const (
	maxLineSize  = 1 << 20
	eventBacklog = 64
)

// source is one named JSON-lines input.
type source struct {
	name string
	r    io.Reader
}

// pumpStats summarizes one pump run.
type pumpStats struct {
	Read    int64
	Passed  int64
	Dropped int64
	Failed  int64
}

type pumpCounters struct {
	read, passed, dropped, failed atomic.Int64
}

func (c *pumpCounters) snapshot() pumpStats {
	return pumpStats{
		Read:    c.read.Load(),
		Passed:  c.passed.Load(),
		Dropped: c.dropped.Load(),
		Failed:  c.failed.Load(),
	}
}

// pump reads events from every source concurrently and feeds them, one at a
// time, through a single pipeline. A malformed line or a processing error
// aborts only that event.
type pump struct {
	pipeline *pipeline.Pipeline
	logger   *slog.Logger
}

func newPump(p *pipeline.Pipeline, logger *slog.Logger) *pump {
	return &pump{
		pipeline: p,
		logger:   logger.With("component", "pump", "pipeline", p.ID()),
	}
}

func (p *pump) run(ctx context.Context, sources []source) (pumpStats, error) {
	var counters pumpCounters
	events := make(chan pipeline.Event, eventBacklog)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(events)
		readers, rctx := errgroup.WithContext(gctx)
		for _, src := range sources {
			src := src
			readers.Go(func() error {
				return p.read(rctx, src, events, &counters)
			})
		}
		return readers.Wait()
	})

	g.Go(func() error {
		for event := range events {
			p.process(event, &counters)
		}
		return nil
	})

	err := g.Wait()
	return counters.snapshot(), err
}

func (p *pump) read(ctx context.Context, src source, events chan<- pipeline.Event, counters *pumpCounters) error {
	scanner := bufio.NewScanner(src.r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		data := scanner.Bytes()
		if len(bytes.TrimSpace(data)) == 0 {
			continue
		}
		counters.read.Add(1)

		var event pipeline.Event
		if err := json.Unmarshal(data, &event); err != nil || event == nil {
			counters.failed.Add(1)
			p.logger.Warn("Skipping malformed event", "source", src.name, "line", line, "error", err)
			continue
		}

		if err := ctx.Err(); err != nil {
			return err
		}
		select {
		case events <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := scanner.Err(); err != nil {
		return errors.WrapTransient(err, "Pump", "read", fmt.Sprintf("read %s", src.name))
	}
	return nil
}

func (p *pump) process(event pipeline.Event, counters *pumpCounters) {
	passed, err := p.pipeline.Process(event)
	switch {
	case err != nil:
		counters.failed.Add(1)
		p.logger.Warn("Event aborted", "error", err, "class", errors.Classify(err).String())
	case passed:
		counters.passed.Add(1)
	default:
		counters.dropped.Add(1)
	}
}

// logProfile reports the profiler counters of every processor of p.
func logProfile(p *pipeline.Pipeline, logger *slog.Logger) {
	for _, processor := range p.Processors() {
		if c, ok := p.ProfilerCounter(processor.ID()); ok {
			logger.Info("Processor profile",
				"pipeline", p.ID(),
				"processor", processor.ID(),
				"runs", c.Runs(),
				"duration", c.Duration().Round(time.Microsecond))
		}
		if c, ok := p.ProfilerCounter(pipeline.AnalyzerCounterKey(processor.ID())); ok {
			logger.Info("Analyzer profile",
				"pipeline", p.ID(),
				"analyzer", processor.ID(),
				"runs", c.Runs(),
				"duration", c.Duration().Round(time.Microsecond))
		}
	}
}
