package expression

import (
	"fmt"
	"strings"
)

// Type is the symbolic outlet/inlet type tag of an expression.
type Type string

// Supported type tags
const (
	TypeUnknown Type = "^"
	TypeBool    Type = "bool"
	TypeStr     Type = "str"

	TypeSI8   Type = "si8"
	TypeSI16  Type = "si16"
	TypeSI32  Type = "si32"
	TypeSI64  Type = "si64"
	TypeSI128 Type = "si128"
	TypeSI256 Type = "si256"

	TypeUI8   Type = "ui8"
	TypeUI16  Type = "ui16"
	TypeUI32  Type = "ui32"
	TypeUI64  Type = "ui64"
	TypeUI128 Type = "ui128"
	TypeUI256 Type = "ui256"
)

// Known reports whether t carries type information.
func (t Type) Known() bool {
	return t != "" && t != TypeUnknown
}

func (t Type) String() string {
	if t == "" {
		return string(TypeUnknown)
	}
	return string(t)
}

// Scope is the evaluation input threaded by pointer through a whole tree.
type Scope struct {
	Context map[string]any
	Event   map[string]any
	Args    []any
	Kwargs  map[string]any
}

// Location is the declarative source location of an expression.
type Location struct {
	File   string
	Path   string
	Line   int
	Column int
}

// IsZero reports whether no location information was recorded.
func (l Location) IsZero() bool {
	return l == Location{}
}

func (l Location) String() string {
	if l.IsZero() {
		return "<unknown>"
	}
	var b strings.Builder
	if l.File != "" {
		b.WriteString(l.File)
	} else {
		b.WriteString("<declaration>")
	}
	if l.Line > 0 {
		fmt.Fprintf(&b, ":%d:%d", l.Line, l.Column)
	}
	if l.Path != "" {
		b.WriteString(" ")
		b.WriteString(l.Path)
	}
	return b.String()
}

// Expression is a node of a declarative rule tree.
//
// Evaluate must not mutate the node; once a tree has been optimized it is
// read-only and may be evaluated concurrently.
type Expression interface {
	Evaluate(scope *Scope) (any, error)
	OutletType() Type
	// ConsultInletType reports the type expected at the child position key.
	ConsultInletType(key string, child Expression) Type
	Location() Location
	// Children returns the direct children keyed by position name.
	Children() []Child
}

// Child is a keyed child position of an expression.
type Child struct {
	Key  string
	Expr Expression
}

// base carries the source location and the default type behaviour.
type base struct {
	loc Location
}

func (b *base) Location() Location {
	return b.loc
}

func (b *base) setLocation(loc Location) {
	b.loc = loc
}

func (b *base) OutletType() Type {
	return TypeUnknown
}

func (b *base) ConsultInletType(string, Expression) Type {
	return TypeUnknown
}

func (b *base) Children() []Child {
	return nil
}

type locatable interface {
	setLocation(Location)
}

// WithLocation sets the source location of expr and returns it.
func WithLocation(expr Expression, loc Location) Expression {
	if l, ok := expr.(locatable); ok {
		l.setLocation(loc)
	}
	return expr
}

// literalType infers the outlet type of a literal value.
func literalType(v any) Type {
	switch v.(type) {
	case bool:
		return TypeBool
	case string:
		return TypeStr
	case int8:
		return TypeSI8
	case int16:
		return TypeSI16
	case int32:
		return TypeSI32
	case int, int64:
		return TypeSI64
	case uint8:
		return TypeUI8
	case uint16:
		return TypeUI16
	case uint32:
		return TypeUI32
	case uint, uint64:
		return TypeUI64
	default:
		return TypeUnknown
	}
}
