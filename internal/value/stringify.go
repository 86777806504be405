package value

import (
	"slices"
	"strings"
)

// Stringify renders v as text for string-interpolation substitution. It is
// deterministic for every Value, including composites, but is a display
// form only — it is never fed to the hasher.
func Stringify(v Value) string {
	switch tv := v.(type) {
	case Null:
		return "null"
	case Bool:
		if tv {
			return "true"
		}
		return "false"
	case Int:
		return tv.String()
	case Decimal:
		return tv.String()
	case Str:
		return string(tv)
	case List:
		parts := make([]string, len(tv))
		for i, elem := range tv {
			parts[i] = Stringify(elem)
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case Map:
		keys := make([]string, 0, len(tv))
		for k := range tv {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		parts := make([]string, len(keys))
		for i, k := range keys {
			parts[i] = k + ": " + Stringify(tv[k])
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case Domain:
		return tv.TypeName() + "(" + HashManifest(Map{"value": tv}).String() + ")"
	default:
		return ""
	}
}
