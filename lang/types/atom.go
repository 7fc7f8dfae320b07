package types

// Atom is an interned-style text value: a bare identifier-ish string used for
// symbolic tags, not for arbitrary binary text. The `add` operator
// concatenates atoms, and `len` counts their characters (spec §4.1); that is
// the whole of an atom's behavior.
type Atom string

var _ Value = Atom("")

func (a Atom) Kind() Kind { return KindAtom }

// String renders the atom surrounded by typographic quotes, matching the
// surface format: “foo”, not "foo" or 'foo'.
func (a Atom) String() string { return "“" + string(a) + "”" }
