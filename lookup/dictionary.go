// Package lookup provides keyed reference datasets constructed from
// declarative definitions.
package lookup

import (
	"fmt"
	"sort"

	"github.com/c360/streampump/declarative/segment"
	"github.com/c360/streampump/errors"
	"github.com/c360/streampump/pipeline"
)

// Class registration names
const (
	Module          = "lookup"
	DictionaryClass = "DictionaryLookup"
)

// DictionaryLookup is an in-memory keyed dataset. It is read-only after
// construction and safe for concurrent use.
type DictionaryLookup struct {
	id   string
	data map[string]any
}

// NewDictionaryLookup creates a lookup holding a copy of data.
func NewDictionaryLookup(id string, data map[string]any) *DictionaryLookup {
	copied := make(map[string]any, len(data))
	for k, v := range data {
		copied[k] = v
	}
	return &DictionaryLookup{id: id, data: copied}
}

// Construct builds a DictionaryLookup from a definition:
//
//	pipeline_id: main
//	lookup: countries
//	class: DictionaryLookup
//	module: lookup
//	data:
//	  CZ: Czechia
//	  DE: Germany
func Construct(_ segment.App, def *segment.Definition) (pipeline.Lookup, error) {
	if def.ID == "" {
		return nil, errors.WrapInvalid(errors.ErrInvalidDefinition, "DictionaryLookup", "Construct",
			fmt.Sprintf("lookup id in %s", def.File))
	}

	data := map[string]any{}
	if _, err := def.Decode("data", &data); err != nil {
		return nil, err
	}
	return NewDictionaryLookup(def.ID, data), nil
}

// Register adds the DictionaryLookup class to registry.
func Register(registry *segment.ClassRegistry) error {
	return registry.Register(&segment.Registration{
		Module:      Module,
		Class:       DictionaryClass,
		Description: "In-memory keyed dataset declared inline",
		Lookup:      Construct,
	})
}

// ID returns the lookup id
func (l *DictionaryLookup) ID() string {
	return l.id
}

// Get returns the value stored under key.
func (l *DictionaryLookup) Get(key string) (any, bool) {
	v, ok := l.data[key]
	return v, ok
}

// Len returns the number of entries.
func (l *DictionaryLookup) Len() int {
	return len(l.data)
}

// Keys returns the keys, sorted.
func (l *DictionaryLookup) Keys() []string {
	keys := make([]string, 0, len(l.data))
	for k := range l.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
