package lang

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/invariant-run/invariant/internal/value"
)

// callBuiltin dispatches to the fixed built-in table from spec §4.2. There
// is no user-defined function mechanism, so this switch is the entire
// surface of callable names.
func callBuiltin(name string, args []value.Value) (value.Value, error) {
	switch name {
	case "decimal":
		return builtinDecimal(args)
	case "min":
		return builtinMinMax("min", args)
	case "max":
		return builtinMinMax("max", args)
	case "size":
		return builtinSize(args)
	case "contains":
		return builtinStringPredicate("contains", args, strings.Contains)
	case "startsWith":
		return builtinStringPredicate("startsWith", args, strings.HasPrefix)
	case "endsWith":
		return builtinStringPredicate("endsWith", args, strings.HasSuffix)
	case "matches":
		return builtinMatches(args)
	case "in":
		return builtinIn(args)
	default:
		return nil, &evalError{msg: "call to unknown built-in " + quote(name)}
	}
}

func arity(name string, args []value.Value, want int) error {
	if len(args) != want {
		return &evalError{msg: quote(name) + " expects " + strconv.Itoa(want) + " argument(s), got " + strconv.Itoa(len(args))}
	}
	return nil
}

func builtinDecimal(args []value.Value) (value.Value, error) {
	if err := arity("decimal", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case value.Decimal:
		return v, nil
	case value.Int:
		return value.NewDecimalFromInt(v), nil
	case value.Str:
		d, err := value.NewDecimalFromString(string(v))
		if err != nil {
			return nil, &evalError{msg: "decimal(...): invalid decimal literal " + quote(string(v))}
		}
		return d, nil
	default:
		return nil, &evalError{msg: "decimal(...) requires an int, string, or decimal argument"}
	}
}

func builtinMinMax(which string, args []value.Value) (value.Value, error) {
	if err := arity(which, args, 2); err != nil {
		return nil, err
	}
	a, b := args[0], args[1]
	if as, ok := a.(value.Str); ok {
		bs, ok := b.(value.Str)
		if !ok {
			return nil, &evalError{msg: which + "(...) requires two operands of the same comparable type"}
		}
		cmp := stringCmp(string(as), string(bs))
		if (which == "min") == (cmp <= 0) {
			return a, nil
		}
		return b, nil
	}
	an, ok := asNumeric(a)
	if !ok {
		return nil, &evalError{msg: which + "(...) requires two numeric or two string operands"}
	}
	bn, ok := asNumeric(b)
	if !ok {
		return nil, &evalError{msg: which + "(...) requires two numeric or two string operands"}
	}
	cmp := an.Cmp(bn)
	if (which == "min") == (cmp <= 0) {
		return a, nil
	}
	return b, nil
}

func builtinSize(args []value.Value) (value.Value, error) {
	if err := arity("size", args, 1); err != nil {
		return nil, err
	}
	switch v := args[0].(type) {
	case value.Str:
		return value.NewInt(int64(len([]rune(string(v))))), nil
	case value.List:
		return value.NewInt(int64(len(v))), nil
	case value.Map:
		return value.NewInt(int64(len(v))), nil
	default:
		return nil, &evalError{msg: "size(...) requires a string, list, or map argument"}
	}
}

func builtinStringPredicate(name string, args []value.Value, fn func(s, substr string) bool) (value.Value, error) {
	if err := arity(name, args, 2); err != nil {
		return nil, err
	}
	s, ok := args[0].(value.Str)
	if !ok {
		return nil, &evalError{msg: name + "(...) requires string arguments"}
	}
	sub, ok := args[1].(value.Str)
	if !ok {
		return nil, &evalError{msg: name + "(...) requires string arguments"}
	}
	return value.Bool(fn(string(s), string(sub))), nil
}

func builtinMatches(args []value.Value) (value.Value, error) {
	if err := arity("matches", args, 2); err != nil {
		return nil, err
	}
	s, ok := args[0].(value.Str)
	if !ok {
		return nil, &evalError{msg: "matches(...) requires string arguments"}
	}
	pattern, ok := args[1].(value.Str)
	if !ok {
		return nil, &evalError{msg: "matches(...) requires string arguments"}
	}
	re, err := regexp.Compile(string(pattern))
	if err != nil {
		return nil, &evalError{msg: "matches(...): invalid regular expression: " + err.Error()}
	}
	return value.Bool(re.MatchString(string(s))), nil
}

func builtinIn(args []value.Value) (value.Value, error) {
	if err := arity("in", args, 2); err != nil {
		return nil, err
	}
	needle, haystack := args[0], args[1]
	switch h := haystack.(type) {
	case value.List:
		for _, elem := range h {
			if valuesEqual(needle, elem) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case value.Map:
		s, ok := needle.(value.Str)
		if !ok {
			return nil, &evalError{msg: "in(...) requires a string key when the right-hand side is a map"}
		}
		_, ok = h[string(s)]
		return value.Bool(ok), nil
	default:
		return nil, &evalError{msg: "in(...) requires a list or map right-hand side"}
	}
}
