package value

// Equal reports whether a and b are structurally equal. Maps compare by
// content regardless of iteration order; Domain values compare by their
// stable hash, since the core has no other way to inspect their content.
func Equal(a, b Value) bool {
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Null:
		return true
	case Bool:
		return av == b.(Bool)
	case Int:
		return av.Cmp(b.(Int)) == 0
	case Decimal:
		return av.Equal(b.(Decimal))
	case Str:
		return av == b.(Str)
	case List:
		bv := b.(List)
		if len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i], bv[i]) {
				return false
			}
		}
		return true
	case Map:
		bv := b.(Map)
		if len(av) != len(bv) {
			return false
		}
		for k, v := range av {
			bvv, ok := bv[k]
			if !ok || !Equal(v, bvv) {
				return false
			}
		}
		return true
	case Domain:
		bv := b.(Domain)
		return av.StableHash() == bv.StableHash()
	default:
		return false
	}
}
