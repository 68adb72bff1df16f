package pipeline

import (
	"fmt"
	"sort"
	"sync"

	"github.com/c360/streampump/errors"
)

// Connection is a named, shared handle to an external system (broker, database,
// mail server) that processors and lookups locate by name.
type Connection interface {
	ID() string
}

// Service is the process-wide registry of running pipelines, lookups and
// connections. Lookups and connections are written at startup and read-only
// afterwards.
type Service struct {
	pipelines   map[string]*Pipeline
	lookups     map[string]Lookup
	connections map[string]Connection
	mu          sync.RWMutex
}

// NewService creates an empty service
func NewService() *Service {
	return &Service{
		pipelines:   make(map[string]*Pipeline),
		lookups:     make(map[string]Lookup),
		connections: make(map[string]Connection),
	}
}

// AddPipeline registers a pipeline under its id.
func (s *Service) AddPipeline(p *Pipeline) error {
	if p == nil || p.ID() == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Service", "AddPipeline", "pipeline validation")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.pipelines[p.ID()]; exists {
		return errors.WrapInvalid(errors.ErrAlreadyRegistered, "Service", "AddPipeline",
			fmt.Sprintf("duplicate pipeline '%s' check", p.ID()))
	}
	p.service = s
	s.pipelines[p.ID()] = p
	return nil
}

// Locate returns the pipeline registered under id.
func (s *Service) Locate(id string) (*Pipeline, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.pipelines[id]
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrPipelineNotFound, "Service", "Locate",
			fmt.Sprintf("locate pipeline '%s'", id))
	}
	return p, nil
}

// Pipelines returns all registered pipelines ordered by id.
func (s *Service) Pipelines() []*Pipeline {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Pipeline, 0, len(s.pipelines))
	for _, p := range s.pipelines {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID() < out[j].ID() })
	return out
}

// AddLookup registers a lookup under its id.
func (s *Service) AddLookup(lookup Lookup) error {
	if lookup == nil || lookup.ID() == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Service", "AddLookup", "lookup validation")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.lookups[lookup.ID()]; exists {
		return errors.WrapInvalid(errors.ErrAlreadyRegistered, "Service", "AddLookup",
			fmt.Sprintf("duplicate lookup '%s' check", lookup.ID()))
	}
	s.lookups[lookup.ID()] = lookup
	return nil
}

// LocateLookup returns the lookup registered under id.
func (s *Service) LocateLookup(id string) (Lookup, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	lookup, ok := s.lookups[id]
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrLookupNotFound, "Service", "LocateLookup",
			fmt.Sprintf("locate lookup '%s'", id))
	}
	return lookup, nil
}

// AddConnection registers a connection under its id.
func (s *Service) AddConnection(conn Connection) error {
	if conn == nil || conn.ID() == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Service", "AddConnection", "connection validation")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.connections[conn.ID()]; exists {
		return errors.WrapInvalid(errors.ErrAlreadyRegistered, "Service", "AddConnection",
			fmt.Sprintf("duplicate connection '%s' check", conn.ID()))
	}
	s.connections[conn.ID()] = conn
	return nil
}

// LocateConnection returns the connection registered under name.
func (s *Service) LocateConnection(name string) (Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.connections[name]
	if !ok {
		return nil, errors.WrapInvalid(errors.ErrConnectionNotFound, "Service", "LocateConnection",
			fmt.Sprintf("locate connection '%s'", name))
	}
	return conn, nil
}
