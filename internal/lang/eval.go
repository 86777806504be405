// Package lang implements the embedded expression evaluator from spec §4.2:
// a small, non-Turing-complete expression language with variables, field
// access, indexing, arithmetic, comparison, boolean combinators, a
// ternary, and a fixed built-in table. It is pure, terminates on every
// input, and rejects any result that would require IEEE-754 floating
// point.
package lang

import (
	"fmt"
	"math/big"

	"github.com/invariant-run/invariant/internal/value"
)

type evalError struct {
	msg string
}

func (e *evalError) Error() string { return e.msg }

// Eval parses and evaluates source against env. It is pure: no I/O, no
// mutation of env, guaranteed to terminate since the language has no
// loops, no recursion, and no user-defined functions.
func Eval(source string, env Env) (value.Value, error) {
	e, err := parse(source)
	if err != nil {
		return nil, fmt.Errorf("lang: parse error: %w", err)
	}
	v, err := evalNode(e, env)
	if err != nil {
		return nil, fmt.Errorf("lang: %w", err)
	}
	return v, nil
}

func evalNode(n expr, env Env) (value.Value, error) {
	switch e := n.(type) {
	case identExpr:
		v, ok := env[e.name]
		if !ok {
			return nil, &evalError{msg: "undefined variable " + quote(e.name)}
		}
		return collapseBareIdent(v), nil

	case intLit:
		v, ok := value.NewIntFromString(e.text)
		if !ok {
			return nil, &evalError{msg: "invalid integer literal " + quote(e.text)}
		}
		return v, nil

	case floatLit:
		return nil, &evalError{msg: "fractional literal " + quote(e.text) + " has float type; wrap it in decimal(\"" + e.text + "\") instead"}

	case strLit:
		return value.Str(e.value), nil

	case boolLit:
		return value.Bool(e.value), nil

	case nullLit:
		return value.Null{}, nil

	case fieldAccess:
		x, err := evalNode(e.x, env)
		if err != nil {
			return nil, err
		}
		return getField(x, e.field)

	case indexExpr:
		x, err := evalNode(e.x, env)
		if err != nil {
			return nil, err
		}
		idx, err := evalNode(e.index, env)
		if err != nil {
			return nil, err
		}
		return getIndex(x, idx)

	case unaryExpr:
		return evalUnary(e, env)

	case binaryExpr:
		return evalBinary(e, env)

	case ternaryExpr:
		cond, err := evalNode(e.cond, env)
		if err != nil {
			return nil, err
		}
		b, ok := cond.(value.Bool)
		if !ok {
			return nil, &evalError{msg: "ternary condition must be a bool"}
		}
		if bool(b) {
			return evalNode(e.then, env)
		}
		return evalNode(e.els, env)

	case callExpr:
		args := make([]value.Value, len(e.args))
		for i, a := range e.args {
			v, err := evalNode(a, env)
			if err != nil {
				return nil, err
			}
			args[i] = v
		}
		return callBuiltin(e.name, args)

	default:
		return nil, &evalError{msg: fmt.Sprintf("unhandled expression node %T", n)}
	}
}

func evalUnary(e unaryExpr, env Env) (value.Value, error) {
	x, err := evalNode(e.x, env)
	if err != nil {
		return nil, err
	}
	switch e.op {
	case "!":
		b, ok := x.(value.Bool)
		if !ok {
			return nil, &evalError{msg: "! requires a bool operand"}
		}
		return value.Bool(!bool(b)), nil
	case "-":
		switch v := x.(type) {
		case value.Int:
			return value.NewIntFromBigInt(new(big.Int).Neg(v.BigInt())), nil
		case value.Decimal:
			return value.NewDecimal(v.Dec().Neg()), nil
		default:
			return nil, &evalError{msg: "unary - requires an int or decimal operand"}
		}
	default:
		return nil, &evalError{msg: "unknown unary operator " + e.op}
	}
}
