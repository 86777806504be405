package value

import "math/big"

// Int is an arbitrary-precision signed integer value.
type Int struct {
	v *big.Int
}

func (Int) Kind() Kind { return KindInt }
func (Int) sealed()    {}

// NewInt builds an Int from a native int64.
func NewInt(i int64) Int {
	return Int{v: big.NewInt(i)}
}

// NewIntFromBigInt builds an Int that owns a copy of v.
func NewIntFromBigInt(v *big.Int) Int {
	return Int{v: new(big.Int).Set(v)}
}

// NewIntFromString parses a base-10 integer literal.
func NewIntFromString(s string) (Int, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Int{}, false
	}
	return Int{v: v}, true
}

// BigInt returns a copy of the underlying arbitrary-precision integer.
func (i Int) BigInt() *big.Int {
	if i.v == nil {
		return big.NewInt(0)
	}
	return new(big.Int).Set(i.v)
}

// Int64 returns the value as an int64, and whether it fits; when it does
// not fit, the first result is 0.
func (i Int) Int64() (int64, bool) {
	if i.v == nil {
		return 0, true
	}
	if !i.v.IsInt64() {
		return 0, false
	}
	return i.v.Int64(), true
}

// String returns the canonical decimal ASCII form: no leading zeros except
// "0", a leading "-" for negative values.
func (i Int) String() string {
	if i.v == nil {
		return "0"
	}
	return i.v.String()
}

// Cmp compares two Ints by natural order.
func (i Int) Cmp(other Int) int {
	return i.BigInt().Cmp(other.BigInt())
}
