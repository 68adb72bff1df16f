package expression

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/c360/streampump/errors"
)

// OperatorFunc compares two adjacent items of a chained comparison.
type OperatorFunc func(a, b any) (bool, error)

// operators maps every comparison operator to its implementation.
var operators = map[Op]OperatorFunc{
	OpLT:    operatorLessThan,
	OpLE:    operatorLessThanEqual,
	OpEQ:    operatorEqual,
	OpNE:    operatorNotEqual,
	OpGE:    operatorGreaterThanEqual,
	OpGT:    operatorGreaterThan,
	OpIS:    operatorIs,
	OpISNOT: operatorIsNot,
}

func operatorLessThan(a, b any) (bool, error) {
	return ordered(a, b, func(cmp int) bool { return cmp < 0 })
}

func operatorLessThanEqual(a, b any) (bool, error) {
	return ordered(a, b, func(cmp int) bool { return cmp <= 0 })
}

func operatorGreaterThan(a, b any) (bool, error) {
	return ordered(a, b, func(cmp int) bool { return cmp > 0 })
}

func operatorGreaterThanEqual(a, b any) (bool, error) {
	return ordered(a, b, func(cmp int) bool { return cmp >= 0 })
}

func ordered(a, b any, holds func(cmp int) bool) (bool, error) {
	cmp, err := compareValues(a, b)
	if err != nil {
		return false, err
	}
	if cmp == unordered {
		return false, nil
	}
	return holds(cmp), nil
}

func operatorEqual(a, b any) (bool, error) {
	return valuesEqual(a, b), nil
}

func operatorNotEqual(a, b any) (bool, error) {
	return !valuesEqual(a, b), nil
}

func operatorIs(a, b any) (bool, error) {
	return identical(a, b), nil
}

func operatorIsNot(a, b any) (bool, error) {
	return !identical(a, b), nil
}

// compareValues orders numbers numerically and strings lexicographically.
// Any other pairing is incomparable.
func compareValues(a, b any) (int, error) {
	if cmp, ok := compareNumbers(a, b); ok {
		return cmp, nil
	}
	as, aIsStr := a.(string)
	bs, bIsStr := b.(string)
	if aIsStr && bIsStr {
		return strings.Compare(as, bs), nil
	}
	return 0, fmt.Errorf("%w: cannot order %T and %T", errors.ErrIncomparable, a, b)
}

// valuesEqual compares numbers across kinds, everything else deeply.
func valuesEqual(a, b any) bool {
	if cmp, ok := compareNumbers(a, b); ok {
		return cmp == 0
	}
	return reflect.DeepEqual(a, b)
}

// identical reports reference identity for maps and slices and value identity
// of the same dynamic type otherwise.
func identical(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	ra, rb := reflect.ValueOf(a), reflect.ValueOf(b)
	if ra.Type() != rb.Type() {
		return false
	}
	switch ra.Kind() {
	case reflect.Map, reflect.Pointer, reflect.Chan, reflect.Func, reflect.UnsafePointer:
		return ra.Pointer() == rb.Pointer()
	case reflect.Slice:
		return ra.Pointer() == rb.Pointer() && ra.Len() == rb.Len()
	}
	if !ra.Comparable() {
		return false
	}
	return a == b
}

// unordered is the comparison result involving NaN.
const unordered = 2

// compareNumbers compares two numeric values. Integer pairs compare exactly.
func compareNumbers(a, b any) (int, bool) {
	ai, aSigned, aIsInt := toInteger(a)
	bi, bSigned, bIsInt := toInteger(b)
	if aIsInt && bIsInt {
		return compareIntegers(ai, aSigned, bi, bSigned), true
	}

	af, aIsNum := toFloat64(a)
	bf, bIsNum := toFloat64(b)
	if !aIsNum || !bIsNum {
		return 0, false
	}
	switch {
	case af < bf:
		return -1, true
	case af > bf:
		return 1, true
	case af == bf:
		return 0, true
	}
	return unordered, true
}

// integer holds either an int64 (signed) or a uint64.
type integer struct {
	i int64
	u uint64
}

func toInteger(v any) (integer, bool, bool) {
	switch val := v.(type) {
	case int:
		return integer{i: int64(val)}, true, true
	case int8:
		return integer{i: int64(val)}, true, true
	case int16:
		return integer{i: int64(val)}, true, true
	case int32:
		return integer{i: int64(val)}, true, true
	case int64:
		return integer{i: val}, true, true
	case uint:
		return integer{u: uint64(val)}, false, true
	case uint8:
		return integer{u: uint64(val)}, false, true
	case uint16:
		return integer{u: uint64(val)}, false, true
	case uint32:
		return integer{u: uint64(val)}, false, true
	case uint64:
		return integer{u: val}, false, true
	default:
		return integer{}, false, false
	}
}

func compareIntegers(a integer, aSigned bool, b integer, bSigned bool) int {
	switch {
	case aSigned && bSigned:
		return cmpOrdered(a.i, b.i)
	case !aSigned && !bSigned:
		return cmpOrdered(a.u, b.u)
	case aSigned:
		if a.i < 0 {
			return -1
		}
		return cmpOrdered(uint64(a.i), b.u)
	default:
		if b.i < 0 {
			return 1
		}
		return cmpOrdered(a.u, uint64(b.i))
	}
}

func cmpOrdered[T int64 | uint64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func toFloat64(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int8:
		return float64(val), true
	case int16:
		return float64(val), true
	case int32:
		return float64(val), true
	case int64:
		return float64(val), true
	case uint:
		return float64(val), true
	case uint8:
		return float64(val), true
	case uint16:
		return float64(val), true
	case uint32:
		return float64(val), true
	case uint64:
		return float64(val), true
	default:
		return 0, false
	}
}
