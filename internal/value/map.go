package value

// Map is a mapping from string keys to Values. Key order carries no
// semantic weight: equality and hashing both operate on the sorted key
// set, never on insertion order.
type Map map[string]Value

func (Map) Kind() Kind { return KindMap }
func (Map) sealed()    {}

// Clone returns a shallow copy of m: a new top-level map, same Value
// references. Adding, removing or replacing top-level entries of the copy
// leaves m unchanged; nested List and Map values are shared.
func (m Map) Clone() Map {
	out := make(Map, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
