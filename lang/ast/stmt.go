package ast

import "github.com/mna/multiverse/lang/token"

// Stmt is the single surface-level assignment-statement shape: `left =
// right`. Whether it is a mutation, a revision or a prophecy is not decided
// here — it falls out of Left's offset during lang/reindex, exactly as the
// original engine's reindexing pass derives it: no offset is a mutation, a
// positive offset is a prophecy, a zero or negative offset is a revision.
type Stmt struct {
	Left  *VarExpr
	Eq    token.Pos
	Right Expr
}

func (s *Stmt) Span() (token.Pos, token.Pos) {
	_, end := s.Right.Span()
	return s.Left.NamePos, end
}
