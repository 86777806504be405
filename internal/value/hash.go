package value

import (
	"crypto/sha256"
	"encoding/hex"
	"slices"
)

var (
	hashNullMarker  = []byte("None")
	hashTrueMarker  = []byte("true")
	hashFalseMarker = []byte("false")
)

// Hash is the canonical recursive hash described in spec §4.1: total on
// Values, identical across machines and process invocations for
// structurally equal inputs. Sorted map keys are the only source of
// canonicalisation; everything else hashes its natural form.
func Hash(v Value) [32]byte {
	switch tv := v.(type) {
	case Null:
		return sha256.Sum256(hashNullMarker)
	case Bool:
		if tv {
			return sha256.Sum256(hashTrueMarker)
		}
		return sha256.Sum256(hashFalseMarker)
	case Int:
		return sha256.Sum256([]byte(tv.String()))
	case Decimal:
		return sha256.Sum256([]byte(tv.String()))
	case Str:
		return sha256.Sum256([]byte(tv))
	case List:
		h := sha256.New()
		for _, elem := range tv {
			eh := Hash(elem)
			h.Write(eh[:])
		}
		var out [32]byte
		copy(out[:], h.Sum(nil))
		return out
	case Map:
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		h := sha256.New()
		for _, k := range keys {
			kh := Hash(Str(k))
			h.Write(kh[:])
			vh := Hash(tv[k])
			h.Write(vh[:])
		}
		var out [32]byte
		copy(out[:], h.Sum(nil))
		return out
	case Domain:
		return tv.StableHash()
	default:
		// Unreachable for a closed union, but fail loudly rather than
		// silently hashing nothing if one is ever added without a case
		// here.
		panic("value: Hash: unhandled Value variant")
	}
}

// Digest is the hex-lowercase form of a 32-byte hash, used as a cache key
// component and as a disk store path segment.
type Digest string

// HashManifest hashes a resolved manifest (a Map) and renders it as a
// Digest.
func HashManifest(m Map) Digest {
	h := Hash(m)
	return Digest(hex.EncodeToString(h[:]))
}

// String returns the 64-character lowercase hex digest.
func (d Digest) String() string { return string(d) }

// Prefix and Rest split the digest for the disk store's two-level
// directory layout: the first two hex characters become a directory
// prefix so that a store never has to hold a flat directory of millions
// of files.
func (d Digest) Prefix() string { return string(d)[:2] }
func (d Digest) Rest() string   { return string(d)[2:] }
