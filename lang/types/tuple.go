package types

import "strings"

// Tuple is an immutable, ordered sequence of values. It is the language's
// only compound value: concatenation (`add`), indexing (`idx`, out-of-range
// yields Undefined) and length (`len`) are its whole operator surface (spec
// §4.1).
type Tuple []Value

var _ Value = Tuple(nil)

func (t Tuple) Kind() Kind { return KindTuple }

func (t Tuple) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range t {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(v.String())
	}
	b.WriteByte(']')
	return b.String()
}

// Index returns the element at i, or Undefined if i is out of range. The
// caller never needs to bounds-check first.
func (t Tuple) Index(i int) Value {
	if i < 0 || i >= len(t) {
		return Undefined
	}
	return t[i]
}

// Concat returns a new tuple with the elements of t followed by those of o.
// Neither operand is mutated.
func (t Tuple) Concat(o Tuple) Tuple {
	out := make(Tuple, 0, len(t)+len(o))
	out = append(out, t...)
	out = append(out, o...)
	return out
}
