package expression

import (
	"fmt"

	"github.com/c360/streampump/errors"
)

// Divide left-folds true division over its items. Arithmetic failures are
// returned as they are.
type Divide struct {
	base
	Items []Expression
}

// NewDivide creates a division over at least one item.
func NewDivide(items ...Expression) (*Divide, error) {
	if len(items) == 0 {
		return nil, errors.ErrEmptySequence
	}
	return &Divide{Items: items}, nil
}

func (d *Divide) Evaluate(scope *Scope) (any, error) {
	acc, err := d.Items[0].Evaluate(scope)
	if err != nil {
		return nil, err
	}
	if len(d.Items) == 1 {
		return acc, nil
	}

	result, ok := toFloat64(acc)
	if !ok {
		return nil, notNumeric(acc)
	}
	for _, item := range d.Items[1:] {
		v, err := item.Evaluate(scope)
		if err != nil {
			return nil, err
		}
		divisor, ok := toFloat64(v)
		if !ok {
			return nil, notNumeric(v)
		}
		if divisor == 0 {
			return nil, errors.ErrDivisionByZero
		}
		result /= divisor
	}
	return result, nil
}

func (d *Divide) Children() []Child {
	return itemChildren(d.Items)
}

func notNumeric(v any) error {
	return fmt.Errorf("%w: unsupported operand %T", errors.ErrNotNumeric, v)
}
