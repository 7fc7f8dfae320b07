package ast

import "github.com/mna/multiverse/lang/token"

// Expr is implemented by every expression node.
type Expr interface {
	Node
	exprNode()
}

// LitKind identifies which field of LitExpr is populated.
type LitKind uint8

const (
	LitInt LitKind = iota
	LitBool
	LitAtom
)

// LitExpr is a literal integer, boolean or atom.
type LitExpr struct {
	Pos  token.Pos
	Kind LitKind
	Int  int64
	Bool bool
	Atom string
}

// VarExpr is a reference to a variable, optionally carrying an explicit
// offset suffix (`name:+n`, `name:-n`, `name:0`); a bare `name` has
// HasOffset false and means "the current latest bound event" when read, or
// "the next slot" when it is the left-hand side of a statement.
type VarExpr struct {
	NamePos   token.Pos
	Name      string
	HasOffset bool
	Offset    int // meaningful only if HasOffset
}

// UnaryExpr applies a prefix operator to a single operand.
type UnaryExpr struct {
	OpPos   token.Pos
	Op      Op
	Operand Expr
}

// BinaryExpr applies an infix operator to two operands.
type BinaryExpr struct {
	OpPos token.Pos
	Op    Op
	Left  Expr
	Right Expr
}

// TupleExpr is a bracketed, comma-separated sequence of element expressions.
type TupleExpr struct {
	Lbrack token.Pos
	Rbrack token.Pos
	Elems  []Expr
}

func (e *LitExpr) exprNode()    {}
func (e *VarExpr) exprNode()    {}
func (e *UnaryExpr) exprNode()  {}
func (e *BinaryExpr) exprNode() {}
func (e *TupleExpr) exprNode()  {}

func (e *LitExpr) Span() (token.Pos, token.Pos) { return e.Pos, e.Pos }
func (e *VarExpr) Span() (token.Pos, token.Pos) { return e.NamePos, e.NamePos }
func (e *UnaryExpr) Span() (token.Pos, token.Pos) {
	_, end := e.Operand.Span()
	return e.OpPos, end
}
func (e *BinaryExpr) Span() (token.Pos, token.Pos) {
	start, _ := e.Left.Span()
	_, end := e.Right.Span()
	return start, end
}
func (e *TupleExpr) Span() (token.Pos, token.Pos) { return e.Lbrack, e.Rbrack }
