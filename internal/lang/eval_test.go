package lang_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/invariant-run/invariant/internal/lang"
	"github.com/invariant-run/invariant/internal/value"
)

func mustEval(t *testing.T, src string, env lang.Env) value.Value {
	t.Helper()
	v, err := lang.Eval(src, env)
	require.NoError(t, err, "eval %q", src)
	return v
}

func TestArithmeticIntExact(t *testing.T) {
	v := mustEval(t, "8 / 4", nil)
	assert.Equal(t, value.NewInt(2), v)
}

func TestArithmeticIntInexactDivisionIsFatal(t *testing.T) {
	_, err := lang.Eval("3 / 4", nil)
	require.Error(t, err)
}

func TestBareFloatLiteralIsFatal(t *testing.T) {
	_, err := lang.Eval("3.14", nil)
	require.Error(t, err)
}

func TestDecimalBuiltinWrapsFraction(t *testing.T) {
	v := mustEval(t, `decimal("3.14")`, nil)
	d, ok := v.(value.Decimal)
	require.True(t, ok)
	assert.Equal(t, "3.14", d.String())
}

func TestDecimalMixedWithInt(t *testing.T) {
	v := mustEval(t, `decimal("1.5") + 2`, nil)
	d, ok := v.(value.Decimal)
	require.True(t, ok)
	assert.Equal(t, "3.5", d.String())
}

func TestTernaryAndComparison(t *testing.T) {
	v := mustEval(t, "x > 3 ? \"big\" : \"small\"", lang.Env{"x": value.NewInt(5)})
	assert.Equal(t, value.Str("big"), v)
}

func TestVariableFieldAccessOnMap(t *testing.T) {
	env := lang.Env{"m": value.Map{"a": value.NewInt(7)}}
	v := mustEval(t, "m.a", env)
	assert.Equal(t, value.NewInt(7), v)
}

func TestIndexing(t *testing.T) {
	env := lang.Env{"l": value.List{value.NewInt(1), value.NewInt(2), value.NewInt(3)}}
	v := mustEval(t, "l[1]", env)
	assert.Equal(t, value.NewInt(2), v)
}

func TestBuiltinsSizeContainsIn(t *testing.T) {
	assert.Equal(t, value.NewInt(3), mustEval(t, `size("abc")`, nil))
	assert.Equal(t, value.Bool(true), mustEval(t, `contains("abcdef", "cd")`, nil))
	// The language has no list literal; the list reaches in(...) through a
	// variable, as it would from a dependency artifact.
	env := lang.Env{"l": value.List{value.NewInt(1), value.NewInt(2), value.NewInt(3)}}
	assert.Equal(t, value.Bool(true), mustEval(t, `in(2, l)`, env))
	assert.Equal(t, value.Bool(false), mustEval(t, `in(5, l)`, env))
}

func TestBuiltinsMinMax(t *testing.T) {
	assert.Equal(t, value.NewInt(3), mustEval(t, "min(3, 7)", nil))
	assert.Equal(t, value.NewInt(7), mustEval(t, "max(3, 7)", nil))
}

func TestUndefinedVariableIsFatal(t *testing.T) {
	_, err := lang.Eval("missing + 1", nil)
	require.Error(t, err)
}

func TestTypeMismatchIsFatal(t *testing.T) {
	_, err := lang.Eval(`"a" + 1`, nil)
	require.Error(t, err)
}

func TestBooleanShortCircuit(t *testing.T) {
	env := lang.Env{"x": value.NewInt(0)}
	// x.field would fail if evaluated; short-circuit must prevent that.
	v := mustEval(t, "false && x.field == 1", env)
	assert.Equal(t, value.Bool(false), v)
}
