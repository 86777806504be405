// Package envelope implements the disk store's binary wire format from
// spec §4.4/§6:
//
//	[4-byte big-endian length L][L bytes UTF-8 type-name][payload]
//
// Native Value variants use one of a small set of reserved type names;
// Domain artifacts use their own fully-qualified type identifier, looked
// up in a Registry to find the reader that can decode their payload back
// into a value.Domain.
package envelope

import (
	"encoding/binary"
	"fmt"
	"io"
	"math/big"
	"slices"

	"github.com/invariant-run/invariant/internal/value"
)

const (
	typeNull    = "invariant.null"
	typeBool    = "invariant.bool"
	typeInt     = "invariant.int"
	typeDecimal = "invariant.decimal"
	typeStr     = "invariant.str"
	typeList    = "invariant.list"
	typeMap     = "invariant.map"
)

// Registry maps a Domain artifact's fully-qualified type name to the
// reader that can reconstruct it from a stream. The disk store consults
// one on every Get so it knows which operation package's artifact type to
// hand a payload to.
type Registry struct {
	readers map[string]value.Reader
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{readers: map[string]value.Reader{}}
}

// Register associates typeName with reader. Registering the same name
// twice overwrites the previous reader.
func (r *Registry) Register(typeName string, reader value.Reader) {
	r.readers[typeName] = reader
}

func (r *Registry) reader(typeName string) (value.Reader, bool) {
	if r == nil {
		return nil, false
	}
	rd, ok := r.readers[typeName]
	return rd, ok
}

// EncodeValue writes v's envelope to w.
func EncodeValue(w io.Writer, v value.Value) error {
	switch tv := v.(type) {
	case value.Null:
		return writeHeader(w, typeNull)
	case value.Bool:
		if err := writeHeader(w, typeBool); err != nil {
			return err
		}
		b := byte(0x00)
		if tv {
			b = 0x01
		}
		_, err := w.Write([]byte{b})
		return err
	case value.Int:
		if err := writeHeader(w, typeInt); err != nil {
			return err
		}
		return writeLengthPrefixed(w, twosComplement(tv.BigInt()))
	case value.Decimal:
		if err := writeHeader(w, typeDecimal); err != nil {
			return err
		}
		return writeLengthPrefixed(w, []byte(tv.String()))
	case value.Str:
		if err := writeHeader(w, typeStr); err != nil {
			return err
		}
		return writeLengthPrefixed(w, []byte(tv))
	case value.List:
		if err := writeHeader(w, typeList); err != nil {
			return err
		}
		if err := writeUint32(w, uint32(len(tv))); err != nil {
			return err
		}
		for _, elem := range tv {
			if err := EncodeValue(w, elem); err != nil {
				return err
			}
		}
		return nil
	case value.Map:
		if err := writeHeader(w, typeMap); err != nil {
			return err
		}
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		if err := writeUint32(w, uint32(len(keys))); err != nil {
			return err
		}
		for _, k := range keys {
			if err := EncodeValue(w, value.Str(k)); err != nil {
				return err
			}
			if err := EncodeValue(w, tv[k]); err != nil {
				return err
			}
		}
		return nil
	case value.Domain:
		if err := writeHeader(w, tv.TypeName()); err != nil {
			return err
		}
		return tv.WriteTo(w)
	default:
		return fmt.Errorf("envelope: cannot encode value of kind %s", v.Kind())
	}
}

// DecodeValue reads one envelope from r.
func DecodeValue(r io.Reader, registry *Registry) (value.Value, error) {
	typeName, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	switch typeName {
	case typeNull:
		return value.Null{}, nil
	case typeBool:
		var b [1]byte
		if _, err := io.ReadFull(r, b[:]); err != nil {
			return nil, err
		}
		return value.Bool(b[0] != 0), nil
	case typeInt:
		b, err := readLengthPrefixed(r)
		if err != nil {
			return nil, err
		}
		return value.NewIntFromBigInt(fromTwosComplement(b)), nil
	case typeDecimal:
		b, err := readLengthPrefixed(r)
		if err != nil {
			return nil, err
		}
		d, err := value.NewDecimalFromString(string(b))
		if err != nil {
			return nil, fmt.Errorf("envelope: corrupt decimal payload: %w", err)
		}
		return d, nil
	case typeStr:
		b, err := readLengthPrefixed(r)
		if err != nil {
			return nil, err
		}
		return value.Str(b), nil
	case typeList:
		count, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		out := make(value.List, count)
		for i := range out {
			elem, err := DecodeValue(r, registry)
			if err != nil {
				return nil, err
			}
			out[i] = elem
		}
		return out, nil
	case typeMap:
		count, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		out := make(value.Map, count)
		for i := uint32(0); i < count; i++ {
			keyVal, err := DecodeValue(r, registry)
			if err != nil {
				return nil, err
			}
			key, ok := keyVal.(value.Str)
			if !ok {
				return nil, fmt.Errorf("envelope: corrupt map: key envelope was not a string")
			}
			v, err := DecodeValue(r, registry)
			if err != nil {
				return nil, err
			}
			out[string(key)] = v
		}
		return out, nil
	default:
		reader, ok := registry.reader(typeName)
		if !ok {
			return nil, fmt.Errorf("envelope: no registered reader for type %q", typeName)
		}
		return reader(r)
	}
}

func writeHeader(w io.Writer, typeName string) error {
	if err := writeUint32(w, uint32(len(typeName))); err != nil {
		return err
	}
	_, err := io.WriteString(w, typeName)
	return err
}

func readHeader(r io.Reader) (string, error) {
	n, err := readUint32(r)
	if err != nil {
		return "", err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
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

func writeLengthPrefixed(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readLengthPrefixed(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// twosComplement renders n as a minimal big-endian two's complement byte
// string.
func twosComplement(n *big.Int) []byte {
	if n.Sign() == 0 {
		return []byte{0}
	}
	if n.Sign() > 0 {
		b := n.Bytes()
		if b[0]&0x80 != 0 {
			b = append([]byte{0}, b...)
		}
		return b
	}
	nBytes := new(big.Int).Not(n).BitLen()/8 + 1
	mod := new(big.Int).Lsh(big.NewInt(1), uint(nBytes*8))
	twos := new(big.Int).Add(mod, n)
	b := twos.Bytes()
	for len(b) < nBytes {
		b = append([]byte{0xff}, b...)
	}
	return b
}

func fromTwosComplement(b []byte) *big.Int {
	if len(b) == 0 {
		return big.NewInt(0)
	}
	n := new(big.Int).SetBytes(b)
	if b[0]&0x80 != 0 {
		mod := new(big.Int).Lsh(big.NewInt(1), uint(len(b)*8))
		n.Sub(n, mod)
	}
	return n
}
