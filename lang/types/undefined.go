package types

// undefinedType is the type of Undefined. Its only legal value is the
// Undefined constant below.
//
// Undefined's equality is deliberately left unresolved by the language: no
// evaluation path should ever compare two Undefined values (see Equal), so
// this type implements no Cmp/Equal of its own.
type undefinedType struct{}

// Undefined is the value of an out-of-scope reference (an index outside
// [0, var_count[name])) or of an operation with no defined result (e.g.
// indexing a tuple out of bounds). It is distinct from Unresolved, which is
// not a value at all but an evaluation outcome meaning "not yet known".
var Undefined Value = undefinedType{}

func (undefinedType) Kind() Kind     { return KindUndefined }
func (undefinedType) String() string { return "undefined" }
