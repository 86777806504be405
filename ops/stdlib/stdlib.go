// Package stdlib provides the small set of arithmetic/identity operations
// spec.md's end-to-end scenarios exercise: identity, add, min, max. They
// are registered under the "stdlib" prefix.
package stdlib

import (
	"context"
	"math/big"

	"github.com/invariant-run/invariant/internal/registry"
	"github.com/invariant-run/invariant/internal/value"
)

// Operations returns the short-name → Operation mapping for
// Registry.RegisterPackage("stdlib", stdlib.Operations()).
func Operations() map[string]*registry.Operation {
	return map[string]*registry.Operation{
		"identity": identityOp(),
		"add":      addOp(),
		"min":      minOp(),
		"max":      maxOp(),
	}
}

type identityParams struct {
	Value value.Value `mapstructure:"value"`
}

func identityOp() *registry.Operation {
	return &registry.Operation{
		Name:      "identity",
		Required:  []string{"value"},
		NewParams: func() any { return &identityParams{} },
		Run: func(_ context.Context, params any) (value.Value, error) {
			return params.(*identityParams).Value, nil
		},
	}
}

type binaryParams struct {
	A value.Value `mapstructure:"a"`
	B value.Value `mapstructure:"b"`
}

func addOp() *registry.Operation {
	return &registry.Operation{
		Name:      "add",
		Required:  []string{"a", "b"},
		NewParams: func() any { return &binaryParams{} },
		Run: func(_ context.Context, params any) (value.Value, error) {
			p := params.(*binaryParams)
			return arith(p.A, p.B, func(x, y *big.Int) *big.Int { return new(big.Int).Add(x, y) },
				func(x, y value.Decimal) value.Decimal { return value.NewDecimal(x.Dec().Add(y.Dec())) })
		},
	}
}

func minOp() *registry.Operation {
	return &registry.Operation{
		Name:      "min",
		Required:  []string{"a", "b"},
		NewParams: func() any { return &binaryParams{} },
		Run: func(_ context.Context, params any) (value.Value, error) {
			p := params.(*binaryParams)
			return pick(p.A, p.B, true)
		},
	}
}

func maxOp() *registry.Operation {
	return &registry.Operation{
		Name:      "max",
		Required:  []string{"a", "b"},
		NewParams: func() any { return &binaryParams{} },
		Run: func(_ context.Context, params any) (value.Value, error) {
			p := params.(*binaryParams)
			return pick(p.A, p.B, false)
		},
	}
}

// arith dispatches Int+Int → Int, anything else with a Decimal operand →
// Decimal, matching the evaluator's own arithmetic promotion rule
// (internal/lang/binary.go) so stdlib:add agrees with the expression
// language's "+".
func arith(a, b value.Value, intOp func(x, y *big.Int) *big.Int, decOp func(x, y value.Decimal) value.Decimal) (value.Value, error) {
	ai, aIsInt := a.(value.Int)
	bi, bIsInt := b.(value.Int)
	if aIsInt && bIsInt {
		return value.NewIntFromBigInt(intOp(ai.BigInt(), bi.BigInt())), nil
	}
	ad, err := toDecimal(a)
	if err != nil {
		return nil, err
	}
	bd, err := toDecimal(b)
	if err != nil {
		return nil, err
	}
	return decOp(ad, bd), nil
}

func toDecimal(v value.Value) (value.Decimal, error) {
	switch tv := v.(type) {
	case value.Decimal:
		return tv, nil
	case value.Int:
		return value.NewDecimalFromInt(tv), nil
	default:
		return value.Decimal{}, &typeError{v}
	}
}

type typeError struct{ v value.Value }

func (e *typeError) Error() string { return "stdlib: value is not numeric" }

// pick returns a if a <= b (wantMin) or a >= b (wantMax) by natural
// order, matching the evaluator's own comparison semantics.
func pick(a, b value.Value, wantMin bool) (value.Value, error) {
	cmp, err := compare(a, b)
	if err != nil {
		return nil, err
	}
	if wantMin {
		if cmp <= 0 {
			return a, nil
		}
		return b, nil
	}
	if cmp >= 0 {
		return a, nil
	}
	return b, nil
}

func compare(a, b value.Value) (int, error) {
	switch av := a.(type) {
	case value.Int:
		if bv, ok := b.(value.Int); ok {
			return av.Cmp(bv), nil
		}
		ad := value.NewDecimalFromInt(av)
		if bv, ok := b.(value.Decimal); ok {
			return ad.Cmp(bv), nil
		}
	case value.Decimal:
		switch bv := b.(type) {
		case value.Decimal:
			return av.Cmp(bv), nil
		case value.Int:
			return av.Cmp(value.NewDecimalFromInt(bv)), nil
		}
	case value.Str:
		if bv, ok := b.(value.Str); ok {
			if av == bv {
				return 0, nil
			}
			if av < bv {
				return -1, nil
			}
			return 1, nil
		}
	}
	return 0, &typeError{a}
}
