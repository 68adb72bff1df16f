package expression

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/c360/streampump/errors"
)

func compileYAML(t *testing.T, src string) (Expression, error) {
	t.Helper()
	return NewCompiler(nil, "rule.yml").CompileSource([]byte(src), "processor")
}

func evalYAML(t *testing.T, src string, scope *Scope) any {
	t.Helper()
	expr, err := compileYAML(t, src)
	require.NoError(t, err)
	v, err := expr.Evaluate(scope)
	require.NoError(t, err)
	return v
}

func TestCompiler_Expressions(t *testing.T) {
	scope := &Scope{
		Event:   map[string]any{"status": "ok", "x": 5, "first": "Ada", "last": "Lovelace"},
		Context: map[string]any{"geo": map[string]any{"country": "CZ"}},
		Args:    []any{"zero", "one"},
		Kwargs:  map[string]any{"limit": 10},
	}

	tests := []struct {
		name string
		src  string
		want any
	}{
		{"literal", `42`, 42},
		{"value tag", `!VALUE 3.5`, 3.5},
		{"quoted value stays string", `!VALUE "7"`, "7"},
		{"event", `!EVENT`, scope.Event},
		{"scalar item", `!ITEM EVENT status`, "ok"},
		{"scalar item lower case source", `!ITEM event x`, 5},
		{"mapping item with default", "!ITEM\nwith: !EVENT\nitem: missing\ndefault: 0\n", 0},
		{"context path", "!ITEM\nwith: !CONTEXT\nitem: geo.country\n", "CZ"},
		{"kwargs item", `!ITEM KWARGS limit`, 10},
		{"chained lt sequence", `!LT [1, !ITEM EVENT x, 10]`, true},
		{"chained lt items mapping", "!LT\nitems:\n  - 1\n  - 5\n  - 2\n", false},
		{"eq", "!EQ\n- !ITEM EVENT status\n- ok\n", true},
		{"ne", `!NE [!ITEM EVENT status, failed]`, true},
		{"ge", `!GE [!ITEM EVENT x, 5, 1]`, true},
		{"is null", `!IS [!ITEM EVENT missing, null]`, true},
		{"isnot null", `!ISNOT [!ITEM EVENT status, null]`, true},
		{"divide", `!DIVIDE [100, 5, 2]`, 10.0},
		{"join default char", `!JOIN [a, b, c]`, "a-b-c"},
		{"join mapping with char", "!JOIN\nitems:\n  - !ITEM EVENT first\n  - !ITEM EVENT last\nchar: \" \"\n", "Ada Lovelace"},
		{"untagged mapping is literal", `{a: 1}`, map[string]any{"a": 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, evalYAML(t, tt.src, scope))
		})
	}
}

func TestCompiler_FunctionForm(t *testing.T) {
	src := `{
  "function": "EQ",
  "items": [
    {"function": "ITEM", "with": {"function": "EVENT"}, "item": "status", "default": "unknown"},
    "ok"
  ]
}`

	expr, err := compileYAML(t, src)
	require.NoError(t, err)
	require.IsType(t, &Compare{}, expr)

	v, err := expr.Evaluate(&Scope{Event: map[string]any{"status": "ok"}})
	require.NoError(t, err)
	assert.Equal(t, true, v)

	v, err = expr.Evaluate(&Scope{Event: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, false, v)
}

func TestCompiler_FunctionFormValueAndJoin(t *testing.T) {
	src := `{"function": "JOIN", "char": ".", "items": [{"function": "VALUE", "value": "a"}, "b"]}`
	assert.Equal(t, "a.b", evalYAML(t, src, &Scope{}))
}

func TestCompiler_EmbeddedDeclaration(t *testing.T) {
	src := "pipeline_id: main\nprocessor: |\n  !LT\n  - 1\n  - !ITEM EVENT x\n"

	var doc yaml.Node
	require.NoError(t, yaml.Unmarshal([]byte(src), &doc))
	body := mappingValue(doc.Content[0], "processor")
	require.NotNil(t, body)

	expr, err := NewCompiler(nil, "rule.yml").CompileDeclaration(body, "processor")
	require.NoError(t, err)
	require.IsType(t, &Compare{}, expr)

	assert.Equal(t, 3, expr.Location().Line)
	assert.Equal(t, 5, expr.(*Compare).Items[1].Location().Line)

	v, err := expr.Evaluate(&Scope{Event: map[string]any{"x": 2}})
	require.NoError(t, err)
	assert.Equal(t, true, v)
}

func TestCompiler_Locations(t *testing.T) {
	expr, err := compileYAML(t, "!EQ\n- 1\n- !ITEM\n  with: !EVENT\n  item: status\n")
	require.NoError(t, err)

	cmp := expr.(*Compare)
	assert.Equal(t, "rule.yml", cmp.Location().File)
	assert.Equal(t, "processor", cmp.Location().Path)
	assert.Equal(t, 1, cmp.Location().Line)

	item := cmp.Items[1].(*Item)
	assert.Equal(t, "processor[1]", item.Location().Path)
	assert.Equal(t, 3, item.Location().Line)
	assert.Equal(t, "processor[1].with", item.With.Location().Path)
	assert.Equal(t, 4, item.With.Location().Line)
}

func TestCompiler_Errors(t *testing.T) {
	tests := []struct {
		name   string
		src    string
		target error
		path   string
	}{
		{"unknown tag", "!EQ\n- !FOO bar\n- 1\n", errors.ErrUnknownExpression, "processor[0]"},
		{"unknown function", `{"function": "SQRT", "items": [4]}`, errors.ErrUnknownExpression, "processor"},
		{"empty sequence", `!LT []`, errors.ErrEmptySequence, "processor"},
		{"missing items", "!DIVIDE\nchar: x\n", errors.ErrInvalidDefinition, "processor"},
		{"items not a sequence", "!JOIN\nitems: abc\n", errors.ErrInvalidDefinition, "processor.items"},
		{"malformed yaml", "!EQ [1, 2", errors.ErrParsingFailed, "processor"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileYAML(t, tt.src)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, tt.target), "got %v", err)
			assert.True(t, errors.IsInvalid(err))

			var compileErr *CompileError
			require.True(t, stderrors.As(err, &compileErr))
			assert.Equal(t, "rule.yml", compileErr.Location.File)
			assert.Equal(t, tt.path, compileErr.Location.Path)
			assert.Contains(t, err.Error(), "rule.yml")
		})
	}
}

func TestCompiler_MalformedArguments(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"item without with", "!ITEM\nitem: x\n"},
		{"item bad source", "!ITEM SOMEWHERE x"},
		{"item missing key", "!ITEM EVENT"},
		{"event with argument", "!EVENT foo"},
		{"join char not scalar", "!JOIN\nitems: [a]\nchar: [x]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := compileYAML(t, tt.src)
			require.Error(t, err)

			var compileErr *CompileError
			assert.True(t, stderrors.As(err, &compileErr))
		})
	}
}

func TestCompiler_MissingDeclaration(t *testing.T) {
	_, err := NewCompiler(nil, "rule.yml").CompileDeclaration(nil, "processor")
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidDefinition))
}

func TestCompiler_CustomRegistry(t *testing.T) {
	registry := NewBuiltinRegistry()
	require.NoError(t, registry.Register("ANSWER", func(*Compiler, *yaml.Node, string) (Expression, error) {
		return NewValue(42), nil
	}))

	expr, err := NewCompiler(registry, "rule.yml").CompileSource([]byte(`!EQ [!ANSWER, 42]`), "processor")
	require.NoError(t, err)
	v, err := expr.Evaluate(&Scope{})
	require.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = NewCompiler(nil, "rule.yml").CompileSource([]byte(`!ANSWER`), "processor")
	assert.True(t, stderrors.Is(err, errors.ErrUnknownExpression), "custom builders stay local to their registry")
}

func TestRegistry(t *testing.T) {
	registry := NewBuiltinRegistry()

	for _, name := range []string{"VALUE", "EVENT", "CONTEXT", "KWARGS", "ARG", "ITEM",
		"LT", "LE", "EQ", "NE", "GE", "GT", "IS", "ISNOT", "DIVIDE", "JOIN"} {
		_, ok := registry.Lookup(name)
		assert.True(t, ok, name)
	}
	assert.Len(t, registry.Names(), 16)

	err := registry.Register("EQ", buildValue)
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrAlreadyRegistered))

	assert.Error(t, registry.Register("", buildValue))
	assert.Error(t, registry.Register("NOOP", nil))
}
