package value

import "io"

// Domain is the capability set an operation-defined artifact type must
// implement to participate in the Value union: a fully-qualified type
// identifier, a deterministic stream serialization, and a stable hash
// derived from structural state. The hash must agree across processes and
// runs given the same logical content — it is what the canonical hasher
// uses in place of walking the artifact's fields itself.
type Domain interface {
	Value

	// TypeName is a fully-qualified identifier (e.g. "poly.Polynomial")
	// that a type registry uses to find this type's reader on the way back
	// out of the disk store.
	TypeName() string

	// StableHash returns the 32-byte digest the canonical hasher treats as
	// opaque for this artifact.
	StableHash() [32]byte

	// WriteTo serializes the artifact's payload. It must be deterministic:
	// equal artifacts produce byte-identical output.
	WriteTo(w io.Writer) error
}

// DomainBase is embedded by Domain implementations living outside this
// package to seal them into the Value union. The Value interface's sealed
// method is unexported, so a type in another package can only satisfy it by
// embedding DomainBase.
type DomainBase struct{}

func (DomainBase) Kind() Kind { return KindDomain }
func (DomainBase) sealed()    {}

// Reader reads a Domain value's payload back out of a byte stream. Registered
// per type name so the disk store's envelope codec can locate the right one.
type Reader func(r io.Reader) (Domain, error)
