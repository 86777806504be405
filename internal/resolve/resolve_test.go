package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invariant-run/invariant/internal/lang"
	"github.com/invariant-run/invariant/internal/param"
	"github.com/invariant-run/invariant/internal/resolve"
	"github.com/invariant-run/invariant/internal/value"
)

func TestResolveLiteralPassesThrough(t *testing.T) {
	v, err := resolve.Resolve("v", param.Literal{V: value.NewInt(5)}, nil)
	require.NoError(t, err)
	assert.Equal(t, value.NewInt(5), v)
}

func TestResolveReference(t *testing.T) {
	env := lang.Env{"x": value.NewInt(9)}
	v, err := resolve.Resolve("v", param.Ref{Name: "x"}, env)
	require.NoError(t, err)
	assert.Equal(t, value.NewInt(9), v)
}

func TestResolveUndeclaredReferenceFails(t *testing.T) {
	_, err := resolve.Resolve("v", param.Ref{Name: "missing"}, lang.Env{})
	require.Error(t, err)
}

func TestResolveExpression(t *testing.T) {
	env := lang.Env{"x": value.NewInt(2), "y": value.NewInt(3)}
	v, err := resolve.Resolve("v", param.Expr{Source: "x + y"}, env)
	require.NoError(t, err)
	assert.Equal(t, value.NewInt(5), v)
}

func TestWholeStringInterpolationReturnsNativeType(t *testing.T) {
	env := lang.Env{"root_width": value.NewInt(144)}
	v, err := resolve.Resolve("v", param.Literal{V: value.Str("${root_width}")}, env)
	require.NoError(t, err)
	assert.Equal(t, value.NewInt(144), v)
}

func TestWholeStringInterpolationTrimsWhitespace(t *testing.T) {
	env := lang.Env{"x": value.NewInt(1)}
	v, err := resolve.Resolve("v", param.Literal{V: value.Str("   ${x}   ")}, env)
	require.NoError(t, err)
	assert.Equal(t, value.NewInt(1), v)
}

func TestPartialInterpolationConcatenatesAsString(t *testing.T) {
	env := lang.Env{"x": value.NewInt(5)}
	v, err := resolve.Resolve("v", param.Literal{V: value.Str("value: ${x} units")}, env)
	require.NoError(t, err)
	assert.Equal(t, value.Str("value: 5 units"), v)
}

func TestUnbalancedBraceIsLiteralText(t *testing.T) {
	v, err := resolve.Resolve("v", param.Literal{V: value.Str("${oops")}, lang.Env{})
	require.NoError(t, err)
	assert.Equal(t, value.Str("${oops"), v)
}

func TestResolveListAndMap(t *testing.T) {
	env := lang.Env{"x": value.NewInt(1)}
	tree := param.Map{
		"a": param.List{param.Ref{Name: "x"}, param.Literal{V: value.NewInt(2)}},
	}
	v, err := resolve.Resolve("v", tree, env)
	require.NoError(t, err)
	m, ok := v.(value.Map)
	require.True(t, ok)
	list, ok := m["a"].(value.List)
	require.True(t, ok)
	assert.Equal(t, value.NewInt(1), list[0])
	assert.Equal(t, value.NewInt(2), list[1])
}

func TestResolvePurity(t *testing.T) {
	env := lang.Env{"x": value.NewInt(1)}
	tree := param.List{param.Ref{Name: "x"}}
	v1, err := resolve.Resolve("v", tree, env)
	require.NoError(t, err)
	v2, err := resolve.Resolve("v", tree, env)
	require.NoError(t, err)
	assert.Equal(t, v1, v2)
	assert.Equal(t, value.NewInt(1), env["x"])
}
