package value

// List is an ordered sequence of Values.
type List []Value

func (List) Kind() Kind { return KindList }
func (List) sealed()    {}
