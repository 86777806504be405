package lang

import (
	"math/big"

	"github.com/invariant-run/invariant/internal/value"
)

func evalBinary(e binaryExpr, env Env) (value.Value, error) {
	// Boolean combinators short-circuit, so they evaluate their operands
	// themselves instead of going through the shared l/r evaluation below.
	switch e.op {
	case "&&":
		l, err := evalNode(e.l, env)
		if err != nil {
			return nil, err
		}
		lb, ok := l.(value.Bool)
		if !ok {
			return nil, &evalError{msg: "&& requires bool operands"}
		}
		if !bool(lb) {
			return value.Bool(false), nil
		}
		r, err := evalNode(e.r, env)
		if err != nil {
			return nil, err
		}
		rb, ok := r.(value.Bool)
		if !ok {
			return nil, &evalError{msg: "&& requires bool operands"}
		}
		return rb, nil
	case "||":
		l, err := evalNode(e.l, env)
		if err != nil {
			return nil, err
		}
		lb, ok := l.(value.Bool)
		if !ok {
			return nil, &evalError{msg: "|| requires bool operands"}
		}
		if bool(lb) {
			return value.Bool(true), nil
		}
		r, err := evalNode(e.r, env)
		if err != nil {
			return nil, err
		}
		rb, ok := r.(value.Bool)
		if !ok {
			return nil, &evalError{msg: "|| requires bool operands"}
		}
		return rb, nil
	}

	l, err := evalNode(e.l, env)
	if err != nil {
		return nil, err
	}
	r, err := evalNode(e.r, env)
	if err != nil {
		return nil, err
	}

	switch e.op {
	case "==":
		return value.Bool(valuesEqual(l, r)), nil
	case "!=":
		return value.Bool(!valuesEqual(l, r)), nil
	case "<", "<=", ">", ">=":
		return compareOp(e.op, l, r)
	case "+", "-", "*", "/", "%":
		return arithOp(e.op, l, r)
	default:
		return nil, &evalError{msg: "unknown binary operator " + e.op}
	}
}

func valuesEqual(l, r value.Value) bool {
	if l.Kind() != r.Kind() {
		// An Int and a Decimal with equal numeric value still compare
		// equal, matching the language's "T for comparable T" built-ins.
		if ln, ok := asNumeric(l); ok {
			if rn, ok := asNumeric(r); ok {
				return ln.Cmp(rn) == 0
			}
		}
		return false
	}
	return value.Equal(l, r)
}

type numeric struct {
	d value.Decimal
}

func (n numeric) Cmp(o numeric) int { return n.d.Cmp(o.d) }

func asNumeric(v value.Value) (numeric, bool) {
	switch tv := v.(type) {
	case value.Int:
		return numeric{d: value.NewDecimalFromInt(tv)}, true
	case value.Decimal:
		return numeric{d: tv}, true
	default:
		return numeric{}, false
	}
}

func compareOp(op string, l, r value.Value) (value.Value, error) {
	if ls, ok := l.(value.Str); ok {
		rs, ok := r.(value.Str)
		if !ok {
			return nil, &evalError{msg: "cannot compare string to " + r.Kind().String()}
		}
		return value.Bool(compareResult(op, stringCmp(string(ls), string(rs)))), nil
	}
	ln, ok := asNumeric(l)
	if !ok {
		return nil, &evalError{msg: op + " requires numeric or string operands, got " + l.Kind().String()}
	}
	rn, ok := asNumeric(r)
	if !ok {
		return nil, &evalError{msg: op + " requires numeric or string operands, got " + r.Kind().String()}
	}
	return value.Bool(compareResult(op, ln.Cmp(rn))), nil
}

func stringCmp(a, b string) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

func compareResult(op string, cmp int) bool {
	switch op {
	case "<":
		return cmp < 0
	case "<=":
		return cmp <= 0
	case ">":
		return cmp > 0
	case ">=":
		return cmp >= 0
	default:
		return false
	}
}

func arithOp(op string, l, r value.Value) (value.Value, error) {
	li, lInt := l.(value.Int)
	ri, rInt := r.(value.Int)

	if lInt && rInt {
		return intArith(op, li, ri)
	}

	ln, lok := asNumeric(l)
	rn, rok := asNumeric(r)
	if !lok || !rok {
		return nil, &evalError{msg: op + " requires numeric operands, got " + l.Kind().String() + " and " + r.Kind().String()}
	}
	return decimalArith(op, ln.d, rn.d)
}

func intArith(op string, l, r value.Int) (value.Value, error) {
	lb, rb := l.BigInt(), r.BigInt()
	switch op {
	case "+":
		return value.NewIntFromBigInt(new(big.Int).Add(lb, rb)), nil
	case "-":
		return value.NewIntFromBigInt(new(big.Int).Sub(lb, rb)), nil
	case "*":
		return value.NewIntFromBigInt(new(big.Int).Mul(lb, rb)), nil
	case "/":
		if rb.Sign() == 0 {
			return nil, &evalError{msg: "division by zero"}
		}
		q, rem := new(big.Int).QuoRem(lb, rb, new(big.Int))
		if rem.Sign() != 0 {
			return nil, &evalError{msg: "division of " + l.String() + " by " + r.String() + " is not exact; wrap in decimal(...) to divide as a decimal"}
		}
		return value.NewIntFromBigInt(q), nil
	case "%":
		if rb.Sign() == 0 {
			return nil, &evalError{msg: "division by zero"}
		}
		return value.NewIntFromBigInt(new(big.Int).Rem(lb, rb)), nil
	default:
		return nil, &evalError{msg: "unsupported int operator " + op}
	}
}

func decimalArith(op string, l, r value.Decimal) (value.Value, error) {
	switch op {
	case "+":
		return value.NewDecimal(l.Dec().Add(r.Dec())), nil
	case "-":
		return value.NewDecimal(l.Dec().Sub(r.Dec())), nil
	case "*":
		return value.NewDecimal(l.Dec().Mul(r.Dec())), nil
	case "/":
		if r.Dec().IsZero() {
			return nil, &evalError{msg: "division by zero"}
		}
		return value.NewDecimal(l.Dec().DivRound(r.Dec(), 16)), nil
	case "%":
		if r.Dec().IsZero() {
			return nil, &evalError{msg: "division by zero"}
		}
		return value.NewDecimal(l.Dec().Mod(r.Dec())), nil
	default:
		return nil, &evalError{msg: "unsupported decimal operator " + op}
	}
}
