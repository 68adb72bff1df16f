package expression

import (
	"fmt"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/c360/streampump/errors"
)

// Builder constructs an expression from its declaration node. path is the
// node's position within the document.
type Builder func(c *Compiler, node *yaml.Node, path string) (Expression, error)

// Registry maps expression names (the YAML tag without "!", or the value of a
// "function" key) to builders.
type Registry struct {
	builders map[string]Builder
	mu       sync.RWMutex
}

// NewRegistry creates an empty registry
func NewRegistry() *Registry {
	return &Registry{builders: make(map[string]Builder)}
}

var defaultRegistry = newBuiltinRegistry()

// DefaultRegistry returns the process-wide registry holding the built-in
// expressions.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// NewBuiltinRegistry creates a registry holding only the built-in expressions.
func NewBuiltinRegistry() *Registry {
	return newBuiltinRegistry()
}

func newBuiltinRegistry() *Registry {
	r := NewRegistry()
	builtins := map[string]Builder{
		"VALUE":   buildValue,
		"EVENT":   buildLeaf(func() Expression { return NewEvent() }),
		"CONTEXT": buildLeaf(func() Expression { return NewContext() }),
		"KWARGS":  buildLeaf(func() Expression { return NewKwargs() }),
		"ARG":     buildLeaf(func() Expression { return NewArg() }),
		"ITEM":    buildItem,
		"DIVIDE":  buildDivide,
		"JOIN":    buildJoin,
	}
	for op := range operators {
		builtins[string(op)] = buildCompare(op)
	}
	for name, builder := range builtins {
		r.builders[name] = builder
	}
	return r
}

// Register adds a builder under name.
func (r *Registry) Register(name string, builder Builder) error {
	if name == "" || builder == nil {
		return errors.WrapInvalid(errors.ErrInvalidConfig, "Registry", "Register", "builder validation")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.builders[name]; exists {
		return errors.WrapInvalid(errors.ErrAlreadyRegistered, "Registry", "Register",
			fmt.Sprintf("duplicate expression '%s' check", name))
	}
	r.builders[name] = builder
	return nil
}

// Lookup returns the builder registered under name.
func (r *Registry) Lookup(name string) (Builder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	builder, ok := r.builders[name]
	return builder, ok
}

// Names returns the registered expression names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.builders))
	for name := range r.builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
