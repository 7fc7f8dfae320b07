// Package ast defines the parsed surface tree: the three assignment forms
// (mutation, revision, prophecy — unified at this layer into a single
// assignment-statement shape, disambiguated later by lang/reindex from the
// offset on the left-hand side) and the small closed expression grammar that
// feeds lang/machine. It exists only to be reified into the engine's own
// Statement/Expr types; lang/machine never sees these node types directly.
package ast

import "github.com/mna/multiverse/lang/token"

// Op is the closed set of unary and binary operators recognised by the
// surface grammar, mirroring machine.Op one-for-one.
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

// Program is an ordered, immutable (once parsed) list of statements — the
// entire external interface the engine consumes (spec §6).
type Program struct {
	Stmts []*Stmt
}

// Node is implemented by every AST node, for position reporting.
type Node interface {
	Span() (start, end token.Pos)
}
