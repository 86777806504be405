package value

import (
	"github.com/shopspring/decimal"
)

// Decimal is an exact decimal value. It exists so that Invariant never has
// to carry IEEE-754 floating point through a manifest: every fractional
// number that reaches a cache key is a shopspring/decimal.Decimal underneath,
// which keeps an exact coefficient and scale instead of a binary
// approximation.
type Decimal struct {
	d decimal.Decimal
}

func (Decimal) Kind() Kind { return KindDecimal }
func (Decimal) sealed()    {}

// NewDecimal wraps an already-constructed decimal.Decimal.
func NewDecimal(d decimal.Decimal) Decimal {
	if d.IsZero() {
		return Decimal{d: decimal.Zero}
	}
	return Decimal{d: d}
}

// NewDecimalFromInt builds an exact decimal from an integer.
func NewDecimalFromInt(i Int) Decimal {
	return Decimal{d: decimal.NewFromBigInt(i.BigInt(), 0)}
}

// NewDecimalFromString parses a decimal literal such as "1.50" or "-3".
func NewDecimalFromString(s string) (Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Decimal{}, err
	}
	return NewDecimal(d), nil
}

// Dec returns the underlying shopspring decimal.
func (d Decimal) Dec() decimal.Decimal { return d.d }

// String returns the canonical decimal form used for both hashing and
// equality: the exact value with trailing fractional zeros dropped ("1.50"
// renders as "1.5"), and -0 normalised to 0.
func (d Decimal) String() string {
	return d.d.String()
}

// Equal compares two decimals by their canonical form, so values that
// differ only in trailing fractional zeros (1.50 and 1.5) are equal.
func (d Decimal) Equal(other Decimal) bool {
	return d.String() == other.String()
}

// Cmp compares two decimals by natural order, ignoring scale differences.
func (d Decimal) Cmp(other Decimal) int {
	return d.d.Cmp(other.d)
}
