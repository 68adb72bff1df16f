package expression

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/c360/streampump/errors"
)

// pathSeparator splits a context key into a nested path.
const pathSeparator = "."

// Item indexes the container produced by With with the key produced by Key.
//
// A missing key or an out of range index evaluates Default, or yields nil when
// Default is absent. When With is a Context node and the key is a string
// containing a dot, the key is walked as a nested path.
type Item struct {
	base
	With    Expression
	Key     Expression
	Default Expression
}

// NewItem creates an item expression. def may be nil.
func NewItem(with, key, def Expression) *Item {
	return &Item{With: with, Key: key, Default: def}
}

func (i *Item) Evaluate(scope *Scope) (any, error) {
	container, err := i.With.Evaluate(scope)
	if err != nil {
		return nil, err
	}
	key, err := i.Key.Evaluate(scope)
	if err != nil {
		return nil, err
	}

	if _, ok := i.With.(*Context); ok {
		if path, ok := key.(string); ok && strings.Contains(path, pathSeparator) {
			if v, found := walkPath(container, strings.Split(path, pathSeparator)); found {
				return v, nil
			}
			return i.fallback(scope)
		}
	}

	v, found, err := index(container, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return i.fallback(scope)
	}
	return v, nil
}

func (i *Item) fallback(scope *Scope) (any, error) {
	if i.Default == nil {
		return nil, nil
	}
	return i.Default.Evaluate(scope)
}

func (i *Item) Children() []Child {
	children := []Child{{Key: "with", Expr: i.With}, {Key: "item", Expr: i.Key}}
	if i.Default != nil {
		children = append(children, Child{Key: "default", Expr: i.Default})
	}
	return children
}

// staticDefault returns the constant default of an item, if it has one.
func (i *Item) staticDefault() (any, bool) {
	switch d := i.Default.(type) {
	case nil:
		return nil, true
	case *Value:
		return d.Value, true
	default:
		return nil, false
	}
}

// constantKey returns the key of an item indexed by a constant string.
func (i *Item) constantKey() (string, bool) {
	v, ok := i.Key.(*Value)
	if !ok {
		return "", false
	}
	key, ok := v.Value.(string)
	return key, ok
}

// EventItem is the fused form of Item(With=Event, Item=constant): a single
// lookup into the event with a captured default.
type EventItem struct {
	base
	Key     string
	Default any
}

func (e *EventItem) Evaluate(scope *Scope) (any, error) {
	if v, ok := scope.Event[e.Key]; ok {
		return v, nil
	}
	return e.Default, nil
}

// ContextItem is the fused form of Item(With=Context, Item=constant without a dot).
type ContextItem struct {
	base
	Key     string
	Default any
}

func (c *ContextItem) Evaluate(scope *Scope) (any, error) {
	if v, ok := scope.Context[c.Key]; ok {
		return v, nil
	}
	return c.Default, nil
}

// ContextPath is the fused form of Item(With=Context, Item=constant dotted path).
// Numeric segments index lists; any miss along the path yields Default.
type ContextPath struct {
	base
	Path    []string
	Default any
}

func (c *ContextPath) Evaluate(scope *Scope) (any, error) {
	if v, found := walkPath(scope.Context, c.Path); found {
		return v, nil
	}
	return c.Default, nil
}

// walkPath descends through maps and slices; any type, key or index miss
// reports not found.
func walkPath(value any, path []string) (any, bool) {
	for _, segment := range path {
		rv := reflect.ValueOf(value)
		switch rv.Kind() {
		case reflect.Slice, reflect.Array:
			idx, err := strconv.Atoi(segment)
			if err != nil {
				return nil, false
			}
			elem, ok := sliceElem(rv, idx)
			if !ok {
				return nil, false
			}
			value = elem
		case reflect.Map:
			elem, ok := mapElem(rv, segment)
			if !ok {
				return nil, false
			}
			value = elem
		default:
			return nil, false
		}
	}
	return value, true
}

// index looks key up in container. found is false for a missing map key or an
// out of range index.
func index(container, key any) (v any, found bool, err error) {
	if m, ok := container.(map[string]any); ok {
		if err := checkHashable(key); err != nil {
			return nil, false, err
		}
		s, ok := key.(string)
		if !ok {
			return nil, false, nil
		}
		v, found = m[s]
		return v, found, nil
	}

	rv := reflect.ValueOf(container)
	switch rv.Kind() {
	case reflect.Map:
		if err := checkHashable(key); err != nil {
			return nil, false, err
		}
		v, found = mapElem(rv, key)
		return v, found, nil
	case reflect.Slice, reflect.Array:
		idx, inRange, err := toIndex(key)
		if err != nil || !inRange {
			return nil, false, err
		}
		v, found = sliceElem(rv, idx)
		return v, found, nil
	default:
		return nil, false, fmt.Errorf("%w: cannot index %T", errors.ErrNotIndexable, container)
	}
}

func checkHashable(key any) error {
	switch reflect.ValueOf(key).Kind() {
	case reflect.Map, reflect.Slice, reflect.Func:
		return fmt.Errorf("%w: cannot use %T as key", errors.ErrUnhashableKey, key)
	}
	return nil
}

func mapElem(m reflect.Value, key any) (any, bool) {
	if key == nil {
		return nil, false
	}
	k := reflect.ValueOf(key)
	keyType := m.Type().Key()
	if !k.Type().AssignableTo(keyType) {
		if k.Kind() != keyType.Kind() || !k.Type().ConvertibleTo(keyType) {
			return nil, false
		}
		k = k.Convert(keyType)
	}
	elem := m.MapIndex(k)
	if !elem.IsValid() {
		return nil, false
	}
	return elem.Interface(), true
}

func sliceElem(s reflect.Value, idx int) (any, bool) {
	if idx < 0 {
		idx += s.Len()
	}
	if idx < 0 || idx >= s.Len() {
		return nil, false
	}
	return s.Index(idx).Interface(), true
}

// toIndex converts a key to a list index. Integral floats are accepted.
// inRange is false for integral values no int can hold; such an index is out
// of range of every list.
func toIndex(key any) (idx int, inRange bool, err error) {
	switch k := key.(type) {
	case int:
		return k, true, nil
	case int8:
		return int(k), true, nil
	case int16:
		return int(k), true, nil
	case int32:
		return int(k), true, nil
	case int64:
		if k < math.MinInt || k > math.MaxInt {
			return 0, false, nil
		}
		return int(k), true, nil
	case uint:
		return unsignedIndex(uint64(k))
	case uint8:
		return int(k), true, nil
	case uint16:
		return int(k), true, nil
	case uint32:
		return unsignedIndex(uint64(k))
	case uint64:
		return unsignedIndex(k)
	case float32:
		return floatIndex(float64(k), key)
	case float64:
		return floatIndex(k, key)
	}
	return 0, false, invalidIndex(key)
}

func unsignedIndex(k uint64) (int, bool, error) {
	if k > math.MaxInt {
		return 0, false, nil
	}
	return int(k), true, nil
}

func floatIndex(f float64, key any) (int, bool, error) {
	if math.IsNaN(f) || f != math.Trunc(f) {
		return 0, false, invalidIndex(key)
	}
	// -MinInt64 is exactly representable; MaxInt64 is not.
	if f < math.MinInt || f >= -math.MinInt {
		return 0, false, nil
	}
	return int(f), true, nil
}

func invalidIndex(key any) error {
	return fmt.Errorf("%w: cannot use %T as list index", errors.ErrInvalidIndex, key)
}
