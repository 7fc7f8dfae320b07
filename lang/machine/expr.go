package machine

import (
	"fmt"
	"unicode/utf8"

	"github.com/mna/multiverse/lang/types"
)

// Op is one of the closed set of unary and binary operators the language
// supports. Expressions are a tagged variant over this set rather than a
// dynamic-dispatch hierarchy, so eval can pattern-match by Kind+Op instead of
// calling into per-type methods (design note: "expression graphs as sum
// types").
type Op uint8

const (
	OpAdd Op = iota
	OpSub
	OpMul
	OpDiv
	OpMod
	OpAnd
	OpOr
	OpNot
	OpNeg
	OpLen
	OpIdx
	OpEq
	OpNeq
	OpLt
	OpGt
	OpLeq
	OpGeq
	OpDef
)

func (o Op) String() string {
	switch o {
	case OpAdd:
		return "add"
	case OpSub:
		return "sub"
	case OpMul:
		return "mul"
	case OpDiv:
		return "div"
	case OpMod:
		return "mod"
	case OpAnd:
		return "and"
	case OpOr:
		return "or"
	case OpNot:
		return "not"
	case OpNeg:
		return "neg"
	case OpLen:
		return "len"
	case OpIdx:
		return "idx"
	case OpEq:
		return "eq"
	case OpNeq:
		return "neq"
	case OpLt:
		return "lt"
	case OpGt:
		return "gt"
	case OpLeq:
		return "leq"
	case OpGeq:
		return "geq"
	case OpDef:
		return "def"
	default:
		return "?"
	}
}

// ExprKind identifies which variant of Expr is populated.
type ExprKind uint8

const (
	ExprLit ExprKind = iota
	ExprVar
	ExprUnary
	ExprBinary
	ExprTuple
)

// Expr is the engine's own expression representation (spec §3): a tagged
// variant, populated according to Kind. It is produced by the re-indexing
// pass out of the parsed surface syntax; the engine never sees surface
// syntax directly.
type Expr struct {
	Kind ExprKind

	// ExprLit
	Lit types.Value

	// ExprVar
	VarName  string
	VarIndex int

	// ExprUnary: Op, Operand
	// ExprBinary: Op, Left, Right
	Op      Op
	Operand *Expr
	Left    *Expr
	Right   *Expr

	// ExprTuple
	Elems    []*Expr
	Concrete bool // true: Lit holds a pre-resolved types.Tuple; Elems is unused
}

// Lit builds a literal expression wrapping a concrete value.
func Lit(v types.Value) *Expr { return &Expr{Kind: ExprLit, Lit: v} }

// Var builds a reference to event name@index.
func Var(name string, index int) *Expr { return &Expr{Kind: ExprVar, VarName: name, VarIndex: index} }

// Unary builds a unary-operator expression.
func Unary(op Op, operand *Expr) *Expr { return &Expr{Kind: ExprUnary, Op: op, Operand: operand} }

// Binary builds a binary-operator expression.
func Binary(op Op, left, right *Expr) *Expr {
	return &Expr{Kind: ExprBinary, Op: op, Left: left, Right: right}
}

// TupleExpr builds a syntactic tuple expression requiring per-element
// evaluation.
func TupleExpr(elems []*Expr) *Expr { return &Expr{Kind: ExprTuple, Elems: elems} }

// ConcreteTuple builds an already-resolved tuple literal.
func ConcreteTuple(v types.Tuple) *Expr { return &Expr{Kind: ExprTuple, Concrete: true, Lit: v} }

func (e *Expr) String() string {
	if e == nil {
		return "<nil>"
	}
	switch e.Kind {
	case ExprLit:
		return e.Lit.String()
	case ExprVar:
		return fmt.Sprintf("%s@%d", e.VarName, e.VarIndex)
	case ExprUnary:
		return fmt.Sprintf("%s %s", e.Op, e.Operand)
	case ExprBinary:
		return fmt.Sprintf("(%s %s %s)", e.Left, e.Op, e.Right)
	case ExprTuple:
		if e.Concrete {
			return e.Lit.String()
		}
		s := "["
		for i, el := range e.Elems {
			if i > 0 {
				s += ", "
			}
			s += el.String()
		}
		return s + "]"
	default:
		return "<invalid expr>"
	}
}

// eval is the recursive evaluator (spec §4.2). It returns (value, true, nil)
// when the expression is resolved -- including when that value is
// types.Undefined, which is itself a resolved outcome, just one meaning
// "out of scope" -- (nil, false, nil) when the expression is Unresolved
// (not enough information in env yet; retry later), and (nil, false, err)
// when a type mismatch makes the evaluation fatal: that error must
// propagate all the way out to the universe runner, which kills the
// universe (spec §4.1, "fatal").
//
// visiting tracks variable names currently being evaluated on this call
// stack, to detect reference cycles (x@0 = y@0; y@0 = x@0): re-entering a
// name returns Unresolved rather than an error, since the cycle may be
// broken by a revision arriving from a different order later.
func eval(e *Expr, env *Environment, visiting map[string]bool) (types.Value, bool, error) {
	switch e.Kind {
	case ExprLit:
		return e.Lit, true, nil

	case ExprVar:
		return evalVar(e, env, visiting)

	case ExprUnary:
		if e.Op == OpDef {
			defined, err := varDefined(e.Operand, env)
			if err != nil {
				return nil, false, err
			}
			return types.Boolean(defined), true, nil
		}
		v, ok, err := eval(e.Operand, env, visiting)
		if err != nil || !ok {
			return nil, false, err
		}
		if v.Kind() == types.KindUndefined {
			return types.Undefined, true, nil
		}
		v, err = evalUnary(e.Op, v)
		return v, err == nil, err

	case ExprBinary:
		l, ok, err := eval(e.Left, env, visiting)
		if err != nil || !ok {
			return nil, false, err
		}
		r, ok, err := eval(e.Right, env, visiting)
		if err != nil || !ok {
			return nil, false, err
		}
		if l.Kind() == types.KindUndefined || r.Kind() == types.KindUndefined {
			return types.Undefined, true, nil
		}
		v, err := evalBinary(e.Op, l, r)
		return v, err == nil, err

	case ExprTuple:
		if e.Concrete {
			return e.Lit, true, nil
		}
		vals := make(types.Tuple, 0, len(e.Elems))
		for _, el := range e.Elems {
			v, ok, err := eval(el, env, visiting)
			if err != nil || !ok {
				return nil, false, err
			}
			if v.Kind() == types.KindUndefined {
				return types.Undefined, true, nil
			}
			vals = append(vals, v)
		}
		return vals, true, nil

	default:
		panic("machine: eval: unhandled expr kind")
	}
}

// Eval evaluates e against env with a fresh cycle-detection set, for use by
// callers outside the evaluator itself (the resolver, the universe runner).
// Purity: Eval performs no I/O and does not mutate env.
func Eval(e *Expr, env *Environment) (types.Value, bool, error) {
	return eval(e, env, map[string]bool{})
}

// varDefined implements the `def` operator: it never fails with Unresolved,
// and never propagates Unresolved -- a variable reference is either in
// scope or not, independent of whether its value is currently known.
func varDefined(e *Expr, env *Environment) (bool, error) {
	if e.Kind != ExprVar {
		// def on a non-Var operand: defined iff evaluating it doesn't yield
		// Undefined. The language only exercises `def` on Var operands, but a
		// literal is trivially defined.
		v, ok, err := Eval(e, env)
		if err != nil {
			return false, err
		}
		return ok && v.Kind() != types.KindUndefined, nil
	}
	return e.VarIndex >= 0 && e.VarIndex < env.varCount[e.VarName], nil
}

func evalVar(e *Expr, env *Environment, visiting map[string]bool) (types.Value, bool, error) {
	count, declared := env.varCount[e.VarName]
	if !declared || e.VarIndex < 0 || e.VarIndex >= count {
		return types.Undefined, true, nil
	}
	if visiting[e.VarName] {
		return nil, false, nil
	}
	hist, ok := env.history(e.VarName)
	if !ok || e.VarIndex >= len(hist) {
		return nil, false, nil
	}
	visiting[e.VarName] = true
	defer delete(visiting, e.VarName)
	return eval(hist[e.VarIndex].Expr, env, visiting)
}

func evalUnary(op Op, v types.Value) (types.Value, error) {
	switch op {
	case OpNeg:
		i, ok := v.(types.Integer)
		if !ok {
			return nil, typeError("neg", v)
		}
		return -i, nil
	case OpNot:
		b, ok := v.(types.Boolean)
		if !ok {
			return nil, typeError("not", v)
		}
		return !b, nil
	case OpLen:
		switch vv := v.(type) {
		case types.Tuple:
			return types.Integer(len(vv)), nil
		case types.Atom:
			return types.Integer(utf8.RuneCountInString(string(vv))), nil
		default:
			return nil, typeError("len", v)
		}
	default:
		panic(fmt.Sprintf("machine: evalUnary: unexpected op %s", op))
	}
}

func evalBinary(op Op, l, r types.Value) (types.Value, error) {
	if op == OpIdx {
		tup, ok := l.(types.Tuple)
		if !ok {
			return nil, typeErrorBinary("idx", l, r)
		}
		idx, ok := r.(types.Integer)
		if !ok {
			return nil, typeErrorBinary("idx", l, r)
		}
		return tup.Index(int(idx)), nil
	}
	if op == OpEq {
		return types.Boolean(types.Equal(l, r)), nil
	}
	if op == OpNeq {
		return types.Boolean(!types.Equal(l, r)), nil
	}
	if l.Kind() != r.Kind() {
		return nil, typeErrorBinary(op.String(), l, r)
	}
	switch op {
	case OpAdd:
		switch lv := l.(type) {
		case types.Integer:
			return lv + r.(types.Integer), nil
		case types.Tuple:
			return lv.Concat(r.(types.Tuple)), nil
		case types.Atom:
			return lv + r.(types.Atom), nil
		default:
			return nil, typeErrorBinary("add", l, r)
		}
	case OpSub:
		li, ri, ok := bothInt(l, r)
		if !ok {
			return nil, typeErrorBinary("sub", l, r)
		}
		return li - ri, nil
	case OpMul:
		li, ri, ok := bothInt(l, r)
		if !ok {
			return nil, typeErrorBinary("mul", l, r)
		}
		return li * ri, nil
	case OpDiv:
		li, ri, ok := bothInt(l, r)
		if !ok {
			return nil, typeErrorBinary("div", l, r)
		}
		return floorDiv(li, ri), nil
	case OpMod:
		li, ri, ok := bothInt(l, r)
		if !ok {
			return nil, typeErrorBinary("mod", l, r)
		}
		return floorMod(li, ri), nil
	case OpAnd:
		switch lv := l.(type) {
		case types.Boolean:
			return lv && r.(types.Boolean), nil
		case types.Integer:
			return minInt(lv, r.(types.Integer)), nil
		default:
			return nil, typeErrorBinary("and", l, r)
		}
	case OpOr:
		switch lv := l.(type) {
		case types.Boolean:
			return lv || r.(types.Boolean), nil
		case types.Integer:
			return maxInt(lv, r.(types.Integer)), nil
		default:
			return nil, typeErrorBinary("or", l, r)
		}
	case OpLt:
		li, ri, ok := bothInt(l, r)
		if !ok {
			return nil, typeErrorBinary("lt", l, r)
		}
		return types.Boolean(li < ri), nil
	case OpGt:
		li, ri, ok := bothInt(l, r)
		if !ok {
			return nil, typeErrorBinary("gt", l, r)
		}
		return types.Boolean(li > ri), nil
	case OpLeq:
		li, ri, ok := bothInt(l, r)
		if !ok {
			return nil, typeErrorBinary("leq", l, r)
		}
		return types.Boolean(li <= ri), nil
	case OpGeq:
		li, ri, ok := bothInt(l, r)
		if !ok {
			return nil, typeErrorBinary("geq", l, r)
		}
		return types.Boolean(li >= ri), nil
	default:
		panic(fmt.Sprintf("machine: evalBinary: unexpected op %s", op))
	}
}

func bothInt(l, r types.Value) (types.Integer, types.Integer, bool) {
	li, ok := l.(types.Integer)
	if !ok {
		return 0, 0, false
	}
	ri, ok := r.(types.Integer)
	if !ok {
		return 0, 0, false
	}
	return li, ri, true
}

func minInt(a, b types.Integer) types.Integer {
	if a < b {
		return a
	}
	return b
}

func maxInt(a, b types.Integer) types.Integer {
	if a > b {
		return a
	}
	return b
}

// floorDiv and floorMod implement Euclidean-toward-negative-infinity
// division, matching the source language's `//`-style integer division
// rather than Go's truncating `/`.
func floorDiv(a, b types.Integer) types.Integer {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

func floorMod(a, b types.Integer) types.Integer {
	m := a % b
	if m != 0 && ((a < 0) != (b < 0)) {
		m += b
	}
	return m
}

func typeError(op string, v types.Value) error {
	return &Fault{Kind: FaultTypeError, Msg: fmt.Sprintf("operator %q: unsupported operand kind %s", op, v.Kind())}
}

func typeErrorBinary(op string, l, r types.Value) error {
	return &Fault{Kind: FaultTypeError, Msg: fmt.Sprintf("operator %q: unsupported operand kinds %s, %s", op, l.Kind(), r.Kind())}
}
