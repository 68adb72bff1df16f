package pipeline

import (
	"encoding/json"
	"io"
	"sync"

	"github.com/c360/streampump/errors"
)

// WriterSink writes every event it receives as one JSON line.
type WriterSink struct {
	id string
	w  io.Writer
	mu sync.Mutex
}

// NewWriterSink creates a JSON-lines sink writing to w.
func NewWriterSink(id string, w io.Writer) *WriterSink {
	return &WriterSink{id: id, w: w}
}

// ID returns the sink id
func (s *WriterSink) ID() string {
	return s.id
}

// Process writes event and passes it on unchanged.
func (s *WriterSink) Process(_ Context, event Event) (Event, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, errors.WrapInvalid(err, "WriterSink", "Process", "encode event")
	}
	data = append(data, '\n')

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.w.Write(data); err != nil {
		return nil, errors.WrapTransient(err, "WriterSink", "Process", "write event")
	}
	return event, nil
}

// NullSink discards every event.
type NullSink struct {
	id string
}

// NewNullSink creates a sink that discards events.
func NewNullSink(id string) *NullSink {
	return &NullSink{id: id}
}

// ID returns the sink id
func (s *NullSink) ID() string {
	return s.id
}

// Process accepts the event without side effects.
func (s *NullSink) Process(_ Context, event Event) (Event, error) {
	return event, nil
}
