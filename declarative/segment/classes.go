package segment

import (
	"fmt"
	"sort"
	"sync"

	"github.com/c360/streampump/errors"
	"github.com/c360/streampump/pipeline"
)

// LookupFactory constructs a lookup from its definition.
type LookupFactory func(app App, def *Definition) (pipeline.Lookup, error)

// ProcessorFactory constructs a processor for p from its definition. A nil
// processor means the definition had only side effects and nothing is spliced.
type ProcessorFactory func(app App, p *pipeline.Pipeline, def *Definition) (pipeline.Processor, error)

// Registration holds the factory and metadata of one class. Exactly one of
// Lookup and Processor is set.
type Registration struct {
	Module      string           `json:"module"`
	Class       string           `json:"class"`
	Description string           `json:"description"`
	Lookup      LookupFactory    `json:"-"`
	Processor   ProcessorFactory `json:"-"`
}

// ClassRegistry resolves (module, class) names to factories.
type ClassRegistry struct {
	classes map[ClassRef]*Registration
	mu      sync.RWMutex
}

// NewClassRegistry creates an empty class registry
func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{classes: make(map[ClassRef]*Registration)}
}

// Register adds a class. Returns an error if the class is already registered.
func (r *ClassRegistry) Register(registration *Registration) error {
	if registration == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ClassRegistry", "Register", "registration validation")
	}
	if registration.Module == "" || registration.Class == "" {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ClassRegistry", "Register", "class name validation")
	}
	if (registration.Lookup == nil) == (registration.Processor == nil) {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "ClassRegistry", "Register", "factory function validation")
	}

	ref := ClassRef{Module: registration.Module, Class: registration.Class}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.classes[ref]; exists {
		msg := fmt.Errorf("%w: class '%s.%s'", errors.ErrAlreadyRegistered, ref.Module, ref.Class)
		return errors.WrapInvalid(msg, "ClassRegistry", "Register", "duplicate class check")
	}
	r.classes[ref] = registration
	return nil
}

// Resolve returns the registration of (module, class).
func (r *ClassRegistry) Resolve(module, class string) (*Registration, error) {
	r.mu.RLock()
	registration, ok := r.classes[ClassRef{Module: module, Class: class}]
	r.mu.RUnlock()

	if !ok {
		msg := fmt.Errorf("%w: '%s.%s'", errors.ErrUnknownClass, module, class)
		return nil, errors.WrapInvalid(msg, "ClassRegistry", "Resolve", "class lookup")
	}
	return registration, nil
}

// Classes returns the registered classes as "module.class", sorted.
func (r *ClassRegistry) Classes() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.classes))
	for ref := range r.classes {
		names = append(names, ref.Module+"."+ref.Class)
	}
	sort.Strings(names)
	return names
}
