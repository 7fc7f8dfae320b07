// Package types defines the value model of the language: the closed set of
// concrete values an expression may evaluate to, their equality, and their
// rendering. Values are immutable; the language has no in-place mutation
// operator, only history-append, history-replace and history-declare
// statements, all handled above this package, in lang/machine.
package types

// Kind identifies which of the closed set of value variants a Value is. The
// set is closed and small enough that the engine pattern-matches on Kind
// directly rather than growing a capability-interface per operation, per the
// "expression graphs as sum types" design choice: a tagged variant, not a
// dynamic-dispatch class hierarchy.
type Kind uint8

const (
	KindInteger Kind = iota
	KindBoolean
	KindAtom
	KindTuple
	KindUndefined
)

func (k Kind) String() string {
	switch k {
	case KindInteger:
		return "int"
	case KindBoolean:
		return "bool"
	case KindAtom:
		return "atom"
	case KindTuple:
		return "tuple"
	case KindUndefined:
		return "undefined"
	default:
		return "?"
	}
}

// Value is the interface implemented by every concrete value the evaluator
// may produce.
type Value interface {
	// Kind reports which variant this value is.
	Kind() Kind

	// String renders the value per the surface format: integers in base 10,
	// booleans as true/false, atoms quoted with typographic quotes, tuples
	// bracketed and comma-separated, undefined as the literal word.
	String() string
}

// Equal reports structural equality between two values. It must never be
// called with either operand equal to Undefined: Undefined's equality is
// deliberately left undefined by the language (an open question in the
// source this was distilled from) and callers must special-case it before
// reaching here.
func Equal(x, y Value) bool {
	if x.Kind() == KindUndefined || y.Kind() == KindUndefined {
		panic("types: Equal called with an Undefined operand")
	}
	if x.Kind() != y.Kind() {
		return false
	}
	switch xv := x.(type) {
	case Integer:
		return xv == y.(Integer)
	case Boolean:
		return xv == y.(Boolean)
	case Atom:
		return xv == y.(Atom)
	case Tuple:
		yv := y.(Tuple)
		if len(xv) != len(yv) {
			return false
		}
		for i, xe := range xv {
			if !Equal(xe, yv[i]) {
				return false
			}
		}
		return true
	default:
		panic("types: Equal: unhandled kind")
	}
}
