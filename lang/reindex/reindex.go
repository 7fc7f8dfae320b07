// Package reindex turns a parsed ast.Program into the flat statement list
// lang/machine executes: every variable reference (read or write) is
// resolved to an absolute history index, and each statement's kind
// (mutation/revision/prophecy) is derived from the sign of its left-hand
// offset. The algorithm is a direct port of original_source/parser.py's
// reindex()/_reindex() single forward pass, expressed over this module's
// own ast/machine types instead of the original's.
package reindex

import (
	"fmt"

	"github.com/mna/multiverse/lang/ast"
	"github.com/mna/multiverse/lang/machine"
	"github.com/mna/multiverse/lang/token"
	"github.com/mna/multiverse/lang/types"
)

// Program is the reindexed form ready for machine.Supervisor: the flat
// statement list plus the declared total event count per variable (the
// count a fresh Environment should be sized for).
type Program struct {
	Statements []machine.Statement
	VarCount   map[string]int
}

// opTable maps the surface grammar's operator enum onto the engine's,
// kept explicit rather than relying on the two const blocks staying in
// lockstep.
var opTable = map[ast.Op]machine.Op{
	ast.OpAdd: machine.OpAdd,
	ast.OpSub: machine.OpSub,
	ast.OpMul: machine.OpMul,
	ast.OpDiv: machine.OpDiv,
	ast.OpMod: machine.OpMod,
	ast.OpAnd: machine.OpAnd,
	ast.OpOr:  machine.OpOr,
	ast.OpNot: machine.OpNot,
	ast.OpNeg: machine.OpNeg,
	ast.OpLen: machine.OpLen,
	ast.OpIdx: machine.OpIdx,
	ast.OpEq:  machine.OpEq,
	ast.OpNeq: machine.OpNeq,
	ast.OpLt:  machine.OpLt,
	ast.OpGt:  machine.OpGt,
	ast.OpLeq: machine.OpLeq,
	ast.OpGeq: machine.OpGeq,
	ast.OpDef: machine.OpDef,
}

// Error reports a reindexing failure tied to a source position (unknown
// variable offsets are caught later, at evaluation time; this layer can
// only fail on operators the table above doesn't recognise, which the
// parser should never produce).
type Error struct {
	Pos token.Pos
	Msg string
}

func (e *Error) Error() string { return fmt.Sprintf("%s: %s", e.Pos, e.Msg) }

// Reindex converts prog into the statement list and var-count map
// lang/machine consumes.
func Reindex(prog *ast.Program) (*Program, error) {
	count := make(map[string]int)
	stmts := make([]machine.Statement, 0, len(prog.Stmts))

	for _, s := range prog.Stmts {
		right, err := reindexExpr(s.Right, count)
		if err != nil {
			return nil, err
		}

		kind, index, err := reindexLeft(s.Left, count)
		if err != nil {
			return nil, err
		}

		line, _ := s.Left.NamePos.LineCol()
		stmts = append(stmts, machine.Statement{
			Kind:       kind,
			Left:       machine.VarRef{Name: s.Left.Name, Index: index},
			Right:      right,
			SourceLine: line,
		})
	}

	// Matches the original's trailing `count[name] += 1`: the map now holds
	// the total number of events declared for each variable, not the index
	// of the last one.
	varCount := make(map[string]int, len(count))
	for name, idx := range count {
		varCount[name] = idx + 1
	}

	return &Program{Statements: stmts, VarCount: varCount}, nil
}

// latest returns the index of the most recently mutated event for name, or
// -1 if name has never been mutated (original: count.get(name, -1)).
func latest(count map[string]int, name string) int {
	if v, ok := count[name]; ok {
		return v
	}
	return -1
}

// reindexLeft computes the statement's kind and the absolute index its
// left-hand side resolves to, per original_source/parser.py reify()+
// reindex(): no offset means a mutation appending the next event; a
// positive offset is a prophecy, zero or negative a revision, and neither
// advances `count` beyond what a mutation does.
func reindexLeft(v *ast.VarExpr, count map[string]int) (machine.StmtKind, int, error) {
	if !v.HasOffset {
		x := latest(count, v.Name) + 1
		count[v.Name] = x
		return machine.Mutation, x, nil
	}
	index := latest(count, v.Name) + v.Offset
	if v.Offset > 0 {
		return machine.Prophecy, index, nil
	}
	return machine.Revision, index, nil
}

func reindexExpr(e ast.Expr, count map[string]int) (*machine.Expr, error) {
	switch n := e.(type) {
	case *ast.LitExpr:
		switch n.Kind {
		case ast.LitInt:
			return machine.Lit(types.Integer(n.Int)), nil
		case ast.LitBool:
			return machine.Lit(types.Boolean(n.Bool)), nil
		case ast.LitAtom:
			return machine.Lit(types.Atom(n.Atom)), nil
		default:
			return nil, &Error{Pos: n.Pos, Msg: "unknown literal kind"}
		}

	case *ast.VarExpr:
		offset := 0
		if n.HasOffset {
			offset = n.Offset
		}
		index := latest(count, n.Name) + offset
		return machine.Var(n.Name, index), nil

	case *ast.UnaryExpr:
		op, ok := opTable[n.Op]
		if !ok {
			return nil, &Error{Pos: n.OpPos, Msg: "unknown unary operator"}
		}
		operand, err := reindexExpr(n.Operand, count)
		if err != nil {
			return nil, err
		}
		return machine.Unary(op, operand), nil

	case *ast.BinaryExpr:
		op, ok := opTable[n.Op]
		if !ok {
			return nil, &Error{Pos: n.OpPos, Msg: "unknown binary operator"}
		}
		left, err := reindexExpr(n.Left, count)
		if err != nil {
			return nil, err
		}
		right, err := reindexExpr(n.Right, count)
		if err != nil {
			return nil, err
		}
		return machine.Binary(op, left, right), nil

	case *ast.TupleExpr:
		elems := make([]*machine.Expr, len(n.Elems))
		for i, el := range n.Elems {
			ce, err := reindexExpr(el, count)
			if err != nil {
				return nil, err
			}
			elems[i] = ce
		}
		return machine.TupleExpr(elems), nil

	default:
		return nil, &Error{Msg: fmt.Sprintf("unhandled expression node %T", e)}
	}
}
