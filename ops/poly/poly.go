// Package poly provides a minimal single-variable polynomial operation
// library — poly:from_coefficients, poly:add, poly:multiply,
// poly:evaluate — backing spec.md §8 scenario 3's distributive-law test.
// Polynomial is a Domain artifact: it carries its own stable hash and
// stream serialization so it can flow through the store and the
// expression evaluator's field access like any other artifact.
package poly

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math/big"

	"github.com/invariant-run/invariant/internal/lang"
	"github.com/invariant-run/invariant/internal/registry"
	"github.com/invariant-run/invariant/internal/value"
)

// TypeName is Polynomial's fully-qualified type identifier, used by the
// disk store's envelope codec to find Read again.
const TypeName = "poly.Polynomial"

// Polynomial is a Domain artifact: an ordered list of integer
// coefficients, lowest degree first (Coeffs[0] is the constant term).
type Polynomial struct {
	value.DomainBase
	Coeffs []*big.Int
}

// New builds a Polynomial from plain int64 coefficients, lowest degree
// first.
func New(coeffs ...int64) Polynomial {
	out := make([]*big.Int, len(coeffs))
	for i, c := range coeffs {
		out[i] = big.NewInt(c)
	}
	return Polynomial{Coeffs: out}
}

func (p Polynomial) TypeName() string { return TypeName }

// StableHash hashes the coefficients as a value.List of Ints via the value
// hasher, so two Polynomials with equal coefficients in equal order always
// agree. The result equals the hash of the plain List of the same Ints; the
// type name is not part of it.
func (p Polynomial) StableHash() [32]byte {
	elems := make(value.List, len(p.Coeffs))
	for i, c := range p.Coeffs {
		elems[i] = value.NewIntFromBigInt(c)
	}
	return value.Hash(elems)
}

// WriteTo serializes Coeffs as a 4-byte count followed by, per
// coefficient, a 4-byte length, a sign byte (1 for negative, 0 otherwise),
// and the big-endian bytes of its magnitude.
func (p Polynomial) WriteTo(w io.Writer) error {
	if err := writeUint32(w, uint32(len(p.Coeffs))); err != nil {
		return err
	}
	for _, c := range p.Coeffs {
		b := c.Bytes()
		neg := c.Sign() < 0
		if err := writeUint32(w, uint32(len(b)+1)); err != nil {
			return err
		}
		sign := byte(0)
		if neg {
			sign = 1
		}
		if _, err := w.Write([]byte{sign}); err != nil {
			return err
		}
		if _, err := w.Write(b); err != nil {
			return err
		}
	}
	return nil
}

// Read reconstructs a Polynomial from the stream WriteTo produced.
func Read(r io.Reader) (value.Domain, error) {
	count, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	coeffs := make([]*big.Int, count)
	for i := range coeffs {
		n, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		buf := make([]byte, n)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		mag := new(big.Int).SetBytes(buf[1:])
		if buf[0] == 1 {
			mag.Neg(mag)
		}
		coeffs[i] = mag
	}
	return Polynomial{Coeffs: coeffs}, nil
}

func writeUint32(w io.Writer, n uint32) error {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], n)
	_, err := w.Write(b[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var b [4]byte
	if _, err := io.ReadFull(r, b[:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b[:]), nil
}

// Attribute lets the expression evaluator read "p.coefficients" on a
// Polynomial bound into the environment, satisfying lang.Attributed.
func (p Polynomial) Attribute(name string) (value.Value, bool) {
	if name != "coefficients" {
		return nil, false
	}
	out := make(value.List, len(p.Coeffs))
	for i, c := range p.Coeffs {
		out[i] = value.NewIntFromBigInt(c)
	}
	return out, true
}

var _ lang.Attributed = Polynomial{}

// Operations returns the short-name → Operation mapping for
// Registry.RegisterPackage("poly", poly.Operations()).
func Operations() map[string]*registry.Operation {
	return map[string]*registry.Operation{
		"from_coefficients": fromCoefficientsOp(),
		"add":               addOp(),
		"multiply":          multiplyOp(),
		"evaluate":          evaluateOp(),
	}
}

type fromCoefficientsParams struct {
	Coefficients value.List `mapstructure:"coefficients"`
}

func fromCoefficientsOp() *registry.Operation {
	return &registry.Operation{
		Name:      "from_coefficients",
		Required:  []string{"coefficients"},
		NewParams: func() any { return &fromCoefficientsParams{} },
		Run: func(_ context.Context, params any) (value.Value, error) {
			p := params.(*fromCoefficientsParams)
			coeffs := make([]*big.Int, len(p.Coefficients))
			for i, v := range p.Coefficients {
				iv, ok := v.(value.Int)
				if !ok {
					return nil, fmt.Errorf("poly:from_coefficients: coefficient %d is not an Int", i)
				}
				coeffs[i] = iv.BigInt()
			}
			return Polynomial{Coeffs: coeffs}, nil
		},
	}
}

type binaryPolyParams struct {
	A Polynomial `mapstructure:"a"`
	B Polynomial `mapstructure:"b"`
}

func addOp() *registry.Operation {
	return &registry.Operation{
		Name:      "add",
		Required:  []string{"a", "b"},
		NewParams: func() any { return &binaryPolyParams{} },
		Run: func(_ context.Context, params any) (value.Value, error) {
			p := params.(*binaryPolyParams)
			return addPolys(p.A, p.B), nil
		},
	}
}

func multiplyOp() *registry.Operation {
	return &registry.Operation{
		Name:      "multiply",
		Required:  []string{"a", "b"},
		NewParams: func() any { return &binaryPolyParams{} },
		Run: func(_ context.Context, params any) (value.Value, error) {
			p := params.(*binaryPolyParams)
			return multiplyPolys(p.A, p.B), nil
		},
	}
}

type evaluateParams struct {
	P Polynomial `mapstructure:"p"`
	X value.Int  `mapstructure:"x"`
}

func evaluateOp() *registry.Operation {
	return &registry.Operation{
		Name:      "evaluate",
		Required:  []string{"p", "x"},
		NewParams: func() any { return &evaluateParams{} },
		Run: func(_ context.Context, params any) (value.Value, error) {
			p := params.(*evaluateParams)
			return value.NewIntFromBigInt(evalAt(p.P, p.X.BigInt())), nil
		},
	}
}

func addPolys(a, b Polynomial) Polynomial {
	n := len(a.Coeffs)
	if len(b.Coeffs) > n {
		n = len(b.Coeffs)
	}
	out := make([]*big.Int, n)
	for i := range out {
		out[i] = new(big.Int)
		if i < len(a.Coeffs) {
			out[i].Add(out[i], a.Coeffs[i])
		}
		if i < len(b.Coeffs) {
			out[i].Add(out[i], b.Coeffs[i])
		}
	}
	return Polynomial{Coeffs: out}
}

func multiplyPolys(a, b Polynomial) Polynomial {
	if len(a.Coeffs) == 0 || len(b.Coeffs) == 0 {
		return Polynomial{}
	}
	out := make([]*big.Int, len(a.Coeffs)+len(b.Coeffs)-1)
	for i := range out {
		out[i] = new(big.Int)
	}
	for i, ac := range a.Coeffs {
		for j, bc := range b.Coeffs {
			term := new(big.Int).Mul(ac, bc)
			out[i+j].Add(out[i+j], term)
		}
	}
	return Polynomial{Coeffs: out}
}

// evalAt computes Horner's method: ((c_n*x + c_n-1)*x + ... )*x + c_0.
func evalAt(p Polynomial, x *big.Int) *big.Int {
	result := new(big.Int)
	for i := len(p.Coeffs) - 1; i >= 0; i-- {
		result.Mul(result, x)
		result.Add(result, p.Coeffs[i])
	}
	return result
}
