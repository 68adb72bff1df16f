package expression

// Value is a literal baked into the tree at construction.
type Value struct {
	base
	Value any
}

// NewValue creates a literal expression
func NewValue(v any) *Value {
	return &Value{Value: v}
}

func (v *Value) Evaluate(*Scope) (any, error) {
	return v.Value, nil
}

// OutletType is inferred from the literal.
func (v *Value) OutletType() Type {
	return literalType(v.Value)
}

// Event returns the whole event.
type Event struct {
	base
}

// NewEvent creates an expression returning the event
func NewEvent() *Event {
	return &Event{}
}

func (e *Event) Evaluate(scope *Scope) (any, error) {
	return scope.Event, nil
}

// Context returns the whole per-event context.
type Context struct {
	base
}

// NewContext creates an expression returning the context
func NewContext() *Context {
	return &Context{}
}

func (c *Context) Evaluate(scope *Scope) (any, error) {
	return scope.Context, nil
}

// Kwargs returns the extra named parameters of the call.
type Kwargs struct {
	base
}

// NewKwargs creates an expression returning the named parameters
func NewKwargs() *Kwargs {
	return &Kwargs{}
}

func (k *Kwargs) Evaluate(scope *Scope) (any, error) {
	return scope.Kwargs, nil
}

// Arg returns the extra positional parameters of the call.
type Arg struct {
	base
}

// NewArg creates an expression returning the positional parameters
func NewArg() *Arg {
	return &Arg{}
}

func (a *Arg) Evaluate(scope *Scope) (any, error) {
	return scope.Args, nil
}
