package expression

import "gopkg.in/yaml.v3"

// Program is a compiled, type checked and optimized tree. A Program is
// read-only and safe for concurrent evaluation.
type Program struct {
	root Expression
}

// NewProgram type checks expr and freezes its optimized form. expr must not be
// used afterwards.
func NewProgram(expr Expression) (*Program, error) {
	if err := Check(expr); err != nil {
		return nil, err
	}
	return &Program{root: Optimize(expr)}, nil
}

// Compile compiles, checks and optimizes a declaration body.
func Compile(registry *Registry, file string, node *yaml.Node, path string) (*Program, error) {
	expr, err := NewCompiler(registry, file).CompileDeclaration(node, path)
	if err != nil {
		return nil, err
	}
	return NewProgram(expr)
}

// Root returns the optimized tree.
func (p *Program) Root() Expression {
	return p.root
}

// OutletType returns the outlet type of the tree.
func (p *Program) OutletType() Type {
	return p.root.OutletType()
}

// Eval evaluates the program for one event.
func (p *Program) Eval(ctx, event map[string]any, args []any, kwargs map[string]any) (any, error) {
	return p.root.Evaluate(&Scope{Context: ctx, Event: event, Args: args, Kwargs: kwargs})
}

// Evaluate evaluates the program against scope.
func (p *Program) Evaluate(scope *Scope) (any, error) {
	return p.root.Evaluate(scope)
}
