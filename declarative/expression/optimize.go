package expression

import "strings"

// Optimize rewrites expr bottom-up into its specialized form. Children are
// rewritten before their parent and every node gets exactly one rewrite
// attempt; fused nodes are never rewritten again. The returned tree evaluates
// identically to expr for every input.
//
// Optimize mutates expr in place and must complete before the tree is
// evaluated concurrently.
func Optimize(expr Expression) Expression {
	switch n := expr.(type) {
	case *Item:
		n.With = Optimize(n.With)
		n.Key = Optimize(n.Key)
		if n.Default != nil {
			n.Default = Optimize(n.Default)
		}
	case *Compare:
		optimizeItems(n.Items)
	case *Divide:
		optimizeItems(n.Items)
	case *Join:
		optimizeItems(n.Items)
	}

	if replacement := rewrite(expr); replacement != nil {
		return replacement
	}
	return expr
}

func optimizeItems(items []Expression) {
	for i, item := range items {
		items[i] = Optimize(item)
	}
}

// rewrite returns the specialized replacement of a node, or nil to keep it.
func rewrite(expr Expression) Expression {
	switch n := expr.(type) {
	case *Item:
		return rewriteItem(n)
	case *Compare:
		if n.Op == OpEQ {
			return rewriteEquals(n)
		}
	}
	return nil
}

func rewriteItem(item *Item) Expression {
	key, ok := item.constantKey()
	if !ok {
		return nil
	}
	def, ok := item.staticDefault()
	if !ok {
		return nil
	}

	switch item.With.(type) {
	case *Event:
		fused := &EventItem{Key: key, Default: def}
		fused.setLocation(item.Location())
		return fused
	case *Context:
		if strings.Contains(key, pathSeparator) {
			fused := &ContextPath{Path: strings.Split(key, pathSeparator), Default: def}
			fused.setLocation(item.Location())
			return fused
		}
		fused := &ContextItem{Key: key, Default: def}
		fused.setLocation(item.Location())
		return fused
	}
	return nil
}

// rewriteEquals fuses EQ(first, constant). A first item reading a dotted
// context path is left generic.
func rewriteEquals(eq *Compare) Expression {
	if len(eq.Items) != 2 {
		return nil
	}
	want, ok := eq.Items[1].(*Value)
	if !ok {
		return nil
	}

	switch first := eq.Items[0].(type) {
	case *EventItem:
		fused := &EventKeyEquals{Key: first.Key, Default: first.Default, Want: want.Value}
		fused.setLocation(eq.Location())
		return fused
	case *ContextPath:
		return nil
	case *Item:
		key, isConstant := first.constantKey()
		switch first.With.(type) {
		case *Event:
			if def, static := first.staticDefault(); isConstant && static {
				fused := &EventKeyEquals{Key: key, Default: def, Want: want.Value}
				fused.setLocation(eq.Location())
				return fused
			}
		case *Context:
			if isConstant && strings.Contains(key, pathSeparator) {
				return nil
			}
		}
	}

	fused := &Equals{Expr: eq.Items[0], Want: want.Value}
	fused.setLocation(eq.Location())
	return fused
}
