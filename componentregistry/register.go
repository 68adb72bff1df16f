// Package componentregistry registers the built-in processor and lookup
// classes with a segment class registry.
package componentregistry

import (
	"errors"

	"github.com/c360/streampump/declarative"
	"github.com/c360/streampump/declarative/segment"
	pkgerrors "github.com/c360/streampump/errors"
	"github.com/c360/streampump/lookup"
)

// Register registers all built-in classes with the provided registry:
//
//   - declarative.DeclarativeProcessor (expression-driven processor)
//   - lookup.DictionaryLookup (inline keyed dataset)
func Register(registry *segment.ClassRegistry) error {
	// Nil registry is a programming error (fatal), not invalid input
	if registry == nil {
		return pkgerrors.WrapFatal(
			errors.New("registry cannot be nil"),
			"ComponentRegistry", "Register", "registry validation")
	}

	if err := declarative.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "DeclarativeProcessor class registration")
	}

	if err := lookup.Register(registry); err != nil {
		return pkgerrors.WrapInvalid(err, "ComponentRegistry", "Register", "DictionaryLookup class registration")
	}

	return nil
}
