package expression

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/c360/streampump/errors"
)

// Compiler builds expression trees from YAML declaration nodes.
//
// A node tagged !NAME is built by the builder registered under NAME. An
// untagged mapping with a "function: NAME" key is the JSON-friendly spelling of
// the same thing. Every other node is a literal Value.
type Compiler struct {
	registry   *Registry
	file       string
	lineOffset int
}

// NewCompiler creates a compiler resolving expressions in registry (the
// default registry when nil). file is recorded in every node's location.
func NewCompiler(registry *Registry, file string) *Compiler {
	if registry == nil {
		registry = DefaultRegistry()
	}
	return &Compiler{registry: registry, file: file}
}

// CompileDeclaration compiles a declaration body. A string body holds an
// embedded YAML document, as written with a block literal ("processor: |").
func (c *Compiler) CompileDeclaration(node *yaml.Node, path string) (Expression, error) {
	if node == nil {
		return nil, &CompileError{
			Location: Location{File: c.file, Path: path},
			Message:  "missing declaration",
			Err:      errors.ErrInvalidDefinition,
		}
	}
	if node.Kind == yaml.DocumentNode && len(node.Content) > 0 {
		node = node.Content[0]
	}
	if node.Kind == yaml.ScalarNode && node.Tag == "!!str" {
		return c.compileEmbedded(node, path)
	}
	return c.Compile(node, path)
}

// CompileSource parses src as a YAML (or JSON) document and compiles it.
func (c *Compiler) CompileSource(src []byte, path string) (Expression, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(src, &doc); err != nil {
		return nil, &CompileError{
			Location: Location{File: c.file, Path: path},
			Message:  "parse declaration",
			Err:      fmt.Errorf("%w: %v", errors.ErrParsingFailed, err),
		}
	}
	return c.CompileDeclaration(&doc, path)
}

func (c *Compiler) compileEmbedded(node *yaml.Node, path string) (Expression, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(node.Value), &doc); err != nil {
		return nil, c.errorf(node, path, "parse embedded declaration",
			fmt.Errorf("%w: %v", errors.ErrParsingFailed, err))
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return nil, c.errorf(node, path, "empty declaration", errors.ErrInvalidDefinition)
	}

	embedded := &Compiler{
		registry:   c.registry,
		file:       c.file,
		lineOffset: c.lineOffset + node.Line,
	}
	return embedded.Compile(doc.Content[0], path)
}

// Compile builds the expression for node. path is the node's position within
// the document and is recorded in its location.
func (c *Compiler) Compile(node *yaml.Node, path string) (Expression, error) {
	switch node.Kind {
	case yaml.DocumentNode:
		if len(node.Content) == 0 {
			return nil, c.errorf(node, path, "empty declaration", errors.ErrInvalidDefinition)
		}
		return c.Compile(node.Content[0], path)
	case yaml.AliasNode:
		return c.Compile(node.Alias, path)
	}

	name, ok := c.expressionName(node)
	if !ok {
		v, err := c.decodeLiteral(node, path)
		if err != nil {
			return nil, err
		}
		return WithLocation(NewValue(v), c.location(node, path)), nil
	}

	builder, ok := c.registry.Lookup(name)
	if !ok {
		return nil, c.errorf(node, path, fmt.Sprintf("unknown expression '%s'", name),
			errors.ErrUnknownExpression)
	}
	expr, err := builder(c, node, path)
	if err != nil {
		return nil, err
	}
	return WithLocation(expr, c.location(node, path)), nil
}

// expressionName returns the expression a node selects, by tag or by its
// "function" key.
func (c *Compiler) expressionName(node *yaml.Node) (string, bool) {
	if isCustomTag(node.Tag) {
		return strings.TrimPrefix(node.Tag, "!"), true
	}
	if c.isFunctionForm(node) {
		fn := mappingValue(node, "function")
		return strings.ToUpper(strings.TrimSpace(fn.Value)), true
	}
	return "", false
}

func (c *Compiler) isFunctionForm(node *yaml.Node) bool {
	if node.Kind != yaml.MappingNode || isCustomTag(node.Tag) {
		return false
	}
	fn := mappingValue(node, "function")
	return fn != nil && fn.Kind == yaml.ScalarNode
}

func isCustomTag(tag string) bool {
	return len(tag) > 1 && strings.HasPrefix(tag, "!") && !strings.HasPrefix(tag, "!!")
}

// compileItems compiles the items of a sequence operator written either as a
// sequence or as a mapping with an "items" sequence.
func (c *Compiler) compileItems(node *yaml.Node, path string) ([]Expression, error) {
	itemsNode, itemsPath := node, path
	if node.Kind == yaml.MappingNode {
		itemsNode, itemsPath = mappingValue(node, "items"), path+".items"
		if itemsNode == nil {
			return nil, c.errorf(node, path, "missing 'items'", errors.ErrInvalidDefinition)
		}
	}
	if itemsNode.Kind != yaml.SequenceNode {
		return nil, c.errorf(itemsNode, itemsPath, "items must be a sequence", errors.ErrInvalidDefinition)
	}
	if len(itemsNode.Content) == 0 {
		return nil, c.errorf(itemsNode, itemsPath, "items must not be empty", errors.ErrEmptySequence)
	}

	items := make([]Expression, 0, len(itemsNode.Content))
	for i, child := range itemsNode.Content {
		item, err := c.Compile(child, fmt.Sprintf("%s[%d]", itemsPath, i))
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// decodeLiteral decodes a node as plain data, ignoring a tag on the node itself.
func (c *Compiler) decodeLiteral(node *yaml.Node, path string) (any, error) {
	literal := *node
	if isCustomTag(literal.Tag) {
		literal.Tag = ""
	}
	var v any
	if err := literal.Decode(&v); err != nil {
		return nil, c.errorf(node, path, "decode literal", fmt.Errorf("%w: %v", errors.ErrInvalidData, err))
	}
	return v, nil
}

func (c *Compiler) location(node *yaml.Node, path string) Location {
	return Location{
		File:   c.file,
		Path:   path,
		Line:   node.Line + c.lineOffset,
		Column: node.Column,
	}
}

func (c *Compiler) errorf(node *yaml.Node, path, message string, err error) error {
	return &CompileError{Location: c.location(node, path), Message: message, Err: err}
}

// mappingValue returns the value node stored under key, or nil.
func mappingValue(node *yaml.Node, key string) *yaml.Node {
	if node == nil || node.Kind != yaml.MappingNode {
		return nil
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		if node.Content[i].Value == key {
			return node.Content[i+1]
		}
	}
	return nil
}
