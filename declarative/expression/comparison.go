package expression

import (
	"fmt"
)

// Op names a chained comparison operator.
type Op string

// Comparison operators
const (
	OpLT    Op = "LT"
	OpLE    Op = "LE"
	OpEQ    Op = "EQ"
	OpNE    Op = "NE"
	OpGE    Op = "GE"
	OpGT    Op = "GT"
	OpIS    Op = "IS"
	OpISNOT Op = "ISNOT"
)

// Compare is a chained comparison over its items: every adjacent pair must
// satisfy the operator, as in a < b < c. Evaluation stops at the first failing
// pair.
type Compare struct {
	base
	Op    Op
	Items []Expression
	fn    OperatorFunc
}

// NewCompare creates a chained comparison. It fails for an unknown operator or
// an empty item list.
func NewCompare(op Op, items ...Expression) (*Compare, error) {
	fn, ok := operators[op]
	if !ok {
		return nil, fmt.Errorf("unsupported comparison operator: %s", op)
	}
	if len(items) == 0 {
		return nil, fmt.Errorf("%s requires at least one item", op)
	}
	return &Compare{Op: op, Items: items, fn: fn}, nil
}

func (c *Compare) Evaluate(scope *Scope) (any, error) {
	first := c.Items[0]
	a, err := first.Evaluate(scope)
	if err != nil {
		return nil, declarationError(err, first.Location())
	}

	for _, item := range c.Items[1:] {
		b, err := item.Evaluate(scope)
		if err != nil {
			return nil, declarationError(err, item.Location())
		}
		holds, err := c.fn(a, b)
		if err != nil {
			return nil, declarationError(err, item.Location())
		}
		if !holds {
			return false, nil
		}
		a = b
	}
	return true, nil
}

func (c *Compare) OutletType() Type {
	return TypeBool
}

// ConsultInletType reports, for EQ, the first known outlet type of the items.
func (c *Compare) ConsultInletType(string, Expression) Type {
	if c.Op != OpEQ {
		return TypeUnknown
	}
	return firstKnownType(c.Items)
}

func (c *Compare) Children() []Child {
	return itemChildren(c.Items)
}

func firstKnownType(items []Expression) Type {
	for _, item := range items {
		if t := item.OutletType(); t.Known() {
			return t
		}
	}
	return TypeUnknown
}

func itemChildren(items []Expression) []Child {
	children := make([]Child, len(items))
	for i, item := range items {
		children[i] = Child{Key: fmt.Sprintf("items[%d]", i), Expr: item}
	}
	return children
}

// EventKeyEquals is the fused form of EQ(Item(With=Event, Item=constant), constant).
type EventKeyEquals struct {
	base
	Key     string
	Default any
	Want    any
}

func (e *EventKeyEquals) Evaluate(scope *Scope) (any, error) {
	v, ok := scope.Event[e.Key]
	if !ok {
		v = e.Default
	}
	return valuesEqual(v, e.Want), nil
}

func (e *EventKeyEquals) OutletType() Type {
	return TypeBool
}

// Equals is the fused form of EQ(expression, constant): the expression is
// evaluated once and compared to the constant.
type Equals struct {
	base
	Expr Expression
	Want any
}

func (e *Equals) Evaluate(scope *Scope) (any, error) {
	v, err := e.Expr.Evaluate(scope)
	if err != nil {
		return nil, declarationError(err, e.Expr.Location())
	}
	return valuesEqual(v, e.Want), nil
}

func (e *Equals) OutletType() Type {
	return TypeBool
}

func (e *Equals) ConsultInletType(string, Expression) Type {
	if t := e.Expr.OutletType(); t.Known() {
		return t
	}
	return literalType(e.Want)
}

func (e *Equals) Children() []Child {
	return []Child{{Key: "items[0]", Expr: e.Expr}}
}
