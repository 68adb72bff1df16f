package expression

import (
	"strings"

	"gopkg.in/yaml.v3"
)

func buildValue(c *Compiler, node *yaml.Node, path string) (Expression, error) {
	if c.isFunctionForm(node) {
		valueNode := mappingValue(node, "value")
		if valueNode == nil {
			return nil, c.errorf(node, path, "VALUE requires 'value'", nil)
		}
		node = valueNode
	}
	v, err := c.decodeLiteral(node, path)
	if err != nil {
		return nil, err
	}
	return NewValue(v), nil
}

func buildLeaf(create func() Expression) Builder {
	return func(c *Compiler, node *yaml.Node, path string) (Expression, error) {
		if node.Kind == yaml.ScalarNode && strings.TrimSpace(node.Value) != "" {
			return nil, c.errorf(node, path, "unexpected argument '"+node.Value+"'", nil)
		}
		return create(), nil
	}
}

// buildItem accepts the mapping form (with, item, default) and the scalar form
// "EVENT key".
func buildItem(c *Compiler, node *yaml.Node, path string) (Expression, error) {
	if node.Kind == yaml.ScalarNode {
		return c.buildScalarItem(node, path)
	}
	if node.Kind != yaml.MappingNode {
		return nil, c.errorf(node, path, "ITEM requires a mapping or 'WITH key'", nil)
	}

	withNode := mappingValue(node, "with")
	keyNode := mappingValue(node, "item")
	if withNode == nil || keyNode == nil {
		return nil, c.errorf(node, path, "ITEM requires 'with' and 'item'", nil)
	}

	with, err := c.Compile(withNode, path+".with")
	if err != nil {
		return nil, err
	}
	key, err := c.Compile(keyNode, path+".item")
	if err != nil {
		return nil, err
	}

	var def Expression
	if defNode := mappingValue(node, "default"); defNode != nil {
		if def, err = c.Compile(defNode, path+".default"); err != nil {
			return nil, err
		}
	}
	return NewItem(with, key, def), nil
}

func (c *Compiler) buildScalarItem(node *yaml.Node, path string) (Expression, error) {
	parts := strings.SplitN(strings.TrimSpace(node.Value), " ", 2)
	if len(parts) != 2 || strings.TrimSpace(parts[1]) == "" {
		return nil, c.errorf(node, path, "ITEM scalar form is 'WITH key'", nil)
	}

	var with Expression
	switch strings.ToUpper(parts[0]) {
	case "EVENT":
		with = NewEvent()
	case "CONTEXT":
		with = NewContext()
	case "KWARGS":
		with = NewKwargs()
	case "ARG":
		with = NewArg()
	default:
		return nil, c.errorf(node, path,
			"invalid item argument '"+parts[0]+"', must be EVENT, CONTEXT, KWARGS or ARG", nil)
	}

	loc := c.location(node, path)
	WithLocation(with, loc)
	key := WithLocation(NewValue(strings.TrimSpace(parts[1])), loc)
	return NewItem(with, key, nil), nil
}

func buildCompare(op Op) Builder {
	return func(c *Compiler, node *yaml.Node, path string) (Expression, error) {
		items, err := c.compileItems(node, path)
		if err != nil {
			return nil, err
		}
		cmp, err := NewCompare(op, items...)
		if err != nil {
			return nil, c.errorf(node, path, err.Error(), nil)
		}
		return cmp, nil
	}
}

func buildDivide(c *Compiler, node *yaml.Node, path string) (Expression, error) {
	items, err := c.compileItems(node, path)
	if err != nil {
		return nil, err
	}
	div, err := NewDivide(items...)
	if err != nil {
		return nil, c.errorf(node, path, "DIVIDE", err)
	}
	return div, nil
}

func buildJoin(c *Compiler, node *yaml.Node, path string) (Expression, error) {
	items, err := c.compileItems(node, path)
	if err != nil {
		return nil, err
	}

	char := DefaultJoinChar
	if node.Kind == yaml.MappingNode {
		if charNode := mappingValue(node, "char"); charNode != nil {
			if charNode.Kind != yaml.ScalarNode {
				return nil, c.errorf(charNode, path+".char", "JOIN 'char' must be a string", nil)
			}
			char = charNode.Value
		}
	}

	join, err := NewJoin(char, items...)
	if err != nil {
		return nil, c.errorf(node, path, "JOIN", err)
	}
	return join, nil
}
