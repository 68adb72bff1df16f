package expression

import (
	"fmt"
	"strings"

	"github.com/c360/streampump/errors"
)

// DefaultJoinChar separates joined items when no char is declared.
const DefaultJoinChar = "-"

// Join renders its items and concatenates them with Char.
type Join struct {
	base
	Items []Expression
	Char  string
}

// NewJoin creates a join over at least one item.
func NewJoin(char string, items ...Expression) (*Join, error) {
	if len(items) == 0 {
		return nil, errors.ErrEmptySequence
	}
	return &Join{Items: items, Char: char}, nil
}

func (j *Join) Evaluate(scope *Scope) (any, error) {
	parts := make([]string, len(j.Items))
	for i, item := range j.Items {
		v, err := item.Evaluate(scope)
		if err != nil {
			return nil, err
		}
		parts[i] = render(v)
	}
	return strings.Join(parts, j.Char), nil
}

func (j *Join) OutletType() Type {
	return TypeStr
}

func (j *Join) Children() []Child {
	return itemChildren(j.Items)
}

func render(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	default:
		return fmt.Sprint(v)
	}
}
