package expression

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scopes is the input corpus every fused node is checked against.
var scopes = []*Scope{
	{Event: map[string]any{}, Context: map[string]any{}},
	{Event: map[string]any{"x": 5, "status": "ok"}, Context: map[string]any{"x": "ctx"}},
	{Event: map[string]any{"status": "failed", "x": nil}, Context: map[string]any{"a": map[string]any{"b": 7}}},
	{Event: map[string]any{"status": 1}, Context: map[string]any{"a": []any{1, 2, 3}}},
	{Event: map[string]any{"status": []any{"ok"}}, Context: map[string]any{"a": "scalar", "a.b": "flat"}},
	{},
}

func TestOptimize_ItemShapes(t *testing.T) {
	tests := []struct {
		name  string
		build func() Expression
		want  any
	}{
		{
			name:  "event constant key",
			build: func() Expression { return NewItem(NewEvent(), NewValue("x"), nil) },
			want:  &EventItem{},
		},
		{
			name:  "event constant key with constant default",
			build: func() Expression { return NewItem(NewEvent(), NewValue("x"), NewValue(0)) },
			want:  &EventItem{},
		},
		{
			name:  "context flat key",
			build: func() Expression { return NewItem(NewContext(), NewValue("x"), nil) },
			want:  &ContextItem{},
		},
		{
			name:  "context dotted path",
			build: func() Expression { return NewItem(NewContext(), NewValue("a.b"), NewValue("d")) },
			want:  &ContextPath{},
		},
		{
			name: "dynamic default stays generic",
			build: func() Expression {
				return NewItem(NewEvent(), NewValue("x"), NewItem(NewEvent(), NewValue("status"), nil))
			},
			want: &Item{},
		},
		{
			name:  "dynamic key stays generic",
			build: func() Expression { return NewItem(NewEvent(), NewItem(NewEvent(), NewValue("status"), nil), nil) },
			want:  &Item{},
		},
		{
			name:  "kwargs stays generic",
			build: func() Expression { return NewItem(NewKwargs(), NewValue("x"), nil) },
			want:  &Item{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			optimized := Optimize(tt.build())
			assert.IsType(t, tt.want, optimized)
			assertEquivalent(t, tt.build(), optimized)
		})
	}
}

func TestOptimize_EqualsShapes(t *testing.T) {
	tests := []struct {
		name  string
		build func() Expression
		want  any
	}{
		{
			name: "event item and constant",
			build: func() Expression {
				return mustEQ(NewItem(NewEvent(), NewValue("status"), nil), NewValue("ok"))
			},
			want: &EventKeyEquals{},
		},
		{
			name: "event item with default and constant",
			build: func() Expression {
				return mustEQ(NewItem(NewEvent(), NewValue("status"), NewValue("ok")), NewValue("ok"))
			},
			want: &EventKeyEquals{},
		},
		{
			name: "context dotted path is left generic",
			build: func() Expression {
				return mustEQ(NewItem(NewContext(), NewValue("a.b"), nil), NewValue(7))
			},
			want: &Compare{},
		},
		{
			name: "context flat key and constant",
			build: func() Expression {
				return mustEQ(NewItem(NewContext(), NewValue("x"), nil), NewValue("ctx"))
			},
			want: &Equals{},
		},
		{
			name: "event item with dynamic default",
			build: func() Expression {
				return mustEQ(NewItem(NewEvent(), NewValue("x"), NewItem(NewEvent(), NewValue("status"), nil)), NewValue(5))
			},
			want: &Equals{},
		},
		{
			name: "any expression and constant",
			build: func() Expression {
				join, err := NewJoin("-", NewValue("a"), NewValue("b"))
				if err != nil {
					panic(err)
				}
				return mustEQ(join, NewValue("a-b"))
			},
			want: &Equals{},
		},
		{
			name: "three items",
			build: func() Expression {
				return mustEQ(NewItem(NewEvent(), NewValue("status"), nil), NewValue("ok"), NewValue("ok"))
			},
			want: &Compare{},
		},
		{
			name: "second item not constant",
			build: func() Expression {
				return mustEQ(NewValue("ok"), NewItem(NewEvent(), NewValue("status"), nil))
			},
			want: &Compare{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			optimized := Optimize(tt.build())
			assert.IsType(t, tt.want, optimized)
			assert.Equal(t, TypeBool, optimized.OutletType())
			assertEquivalent(t, tt.build(), optimized)
		})
	}
}

func TestOptimize_EqualsOnEventStatus(t *testing.T) {
	build := func() Expression {
		return mustEQ(NewItem(NewEvent(), NewValue("status"), nil), NewValue("ok"))
	}
	generic, fused := build(), Optimize(build())

	for _, event := range []map[string]any{{"status": "ok"}, {}} {
		scope := &Scope{Event: event}
		want, err := generic.Evaluate(scope)
		require.NoError(t, err)
		got, err := fused.Evaluate(scope)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}

	v, _ := fused.Evaluate(&Scope{Event: map[string]any{"status": "ok"}})
	assert.Equal(t, true, v)
	v, _ = fused.Evaluate(&Scope{Event: map[string]any{}})
	assert.Equal(t, false, v)
}

func TestOptimize_EqualsPropagatesErrorsLikeGeneric(t *testing.T) {
	loc := Location{File: "rule.yml", Path: "processor[0]"}
	build := func() Expression {
		failing := WithLocation(NewItem(NewValue(42), NewValue("x"), nil), loc)
		return mustEQ(failing, NewValue(1))
	}
	generic, fused := build(), Optimize(build())
	require.IsType(t, &Equals{}, fused)

	_, genericErr := generic.Evaluate(&Scope{})
	_, fusedErr := fused.Evaluate(&Scope{})
	require.Error(t, genericErr)
	require.Error(t, fusedErr)
	assert.Equal(t, genericErr.Error(), fusedErr.Error())
}

func TestOptimize_FusedNodesAreFixedPoints(t *testing.T) {
	fused := Optimize(mustEQ(NewItem(NewEvent(), NewValue("status"), nil), NewValue("ok")))
	assert.Same(t, fused, Optimize(fused))

	item := Optimize(NewItem(NewContext(), NewValue("a.b"), nil))
	assert.Same(t, item, Optimize(item))
}

func TestOptimize_RewritesNestedChildren(t *testing.T) {
	div, err := NewDivide(NewItem(NewEvent(), NewValue("x"), NewValue(10)), NewValue(2))
	require.NoError(t, err)

	optimized := Optimize(div)
	require.IsType(t, &Divide{}, optimized)
	assert.IsType(t, &EventItem{}, optimized.(*Divide).Items[0])

	v, err := optimized.Evaluate(&Scope{Event: map[string]any{}})
	require.NoError(t, err)
	assert.Equal(t, 5.0, v)
}

func TestOptimize_KeepsLocation(t *testing.T) {
	loc := Location{File: "rule.yml", Path: "processor", Line: 3, Column: 5}
	optimized := Optimize(WithLocation(NewItem(NewEvent(), NewValue("x"), nil), loc))
	assert.Equal(t, loc, optimized.Location())
}

func mustEQ(items ...Expression) *Compare {
	cmp, err := NewCompare(OpEQ, items...)
	if err != nil {
		panic(err)
	}
	return cmp
}

func assertEquivalent(t *testing.T, generic, optimized Expression) {
	t.Helper()
	assert.Equal(t, generic.OutletType(), optimized.OutletType())
	for i, scope := range scopes {
		want, wantErr := generic.Evaluate(scope)
		got, gotErr := optimized.Evaluate(scope)
		if wantErr != nil {
			require.Error(t, gotErr, "scope %d", i)
			assert.Equal(t, wantErr.Error(), gotErr.Error(), "scope %d", i)
			continue
		}
		require.NoError(t, gotErr, "scope %d", i)
		assert.Equal(t, want, got, "scope %d", i)
	}
}
