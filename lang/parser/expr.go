package parser

import (
	"github.com/mna/multiverse/lang/ast"
	"github.com/mna/multiverse/lang/token"
)

// binopPriority gives each binary operator's precedence (higher binds
// tighter), matching original_source/parser.py's OPERATORS table: idx
// highest, then mul/div/mod, add/sub, comparisons, and, or.
var binopPriority = map[token.Token]int{
	token.DOT:     6,
	token.STAR:    5,
	token.SLASH:   5,
	token.PERCENT: 5,
	token.PLUS:    4,
	token.MINUS:   4,
	token.EQL:     3,
	token.NEQ:     3,
	token.GE:      3,
	token.LE:      3,
	token.GT:      3,
	token.LT:      3,
	token.AND:     2,
	token.OR:      1,
}

var binopKind = map[token.Token]ast.Op{
	token.DOT:     ast.OpIdx,
	token.STAR:    ast.OpMul,
	token.SLASH:   ast.OpDiv,
	token.PERCENT: ast.OpMod,
	token.PLUS:    ast.OpAdd,
	token.MINUS:   ast.OpSub,
	token.EQL:     ast.OpEq,
	token.NEQ:     ast.OpNeq,
	token.GE:      ast.OpGeq,
	token.LE:      ast.OpLeq,
	token.GT:      ast.OpGt,
	token.LT:      ast.OpLt,
	token.AND:     ast.OpAnd,
	token.OR:      ast.OpOr,
}

// unopPriority is the precedence used when parsing a prefix operator's
// operand: just below idx, above every binary operator, matching the
// original's ('prefix', [add, sub, not, len, def]) level.
const unopPriority = 5

var unopKind = map[token.Token]ast.Op{
	token.MINUS: ast.OpNeg,
	token.NOT:   ast.OpNot,
	token.HASH:  ast.OpLen,
	token.DEF:   ast.OpDef,
}

func (p *parser) parseExpr() ast.Expr {
	return p.parseSubExpr(0)
}

// parseSubExpr parses an expression whose outermost binary operator binds
// more tightly than priority (precedence climbing).
func (p *parser) parseSubExpr(priority int) ast.Expr {
	var left ast.Expr
	if op, ok := unopKind[p.tok]; ok {
		pos := p.val.Pos
		p.advance()
		operand := p.parseSubExpr(unopPriority)
		left = &ast.UnaryExpr{OpPos: pos, Op: op, Operand: operand}
	} else {
		left = p.parsePrimary()
	}

	for {
		prec, ok := binopPriority[p.tok]
		if !ok || prec <= priority {
			break
		}
		op := binopKind[p.tok]
		pos := p.val.Pos
		p.advance()
		right := p.parseSubExpr(prec)
		left = &ast.BinaryExpr{OpPos: pos, Op: op, Left: left, Right: right}
	}
	return left
}

func (p *parser) parsePrimary() ast.Expr {
	switch p.tok {
	case token.INT:
		e := &ast.LitExpr{Pos: p.val.Pos, Kind: ast.LitInt, Int: p.val.Int}
		p.advance()
		return e
	case token.TRUE:
		e := &ast.LitExpr{Pos: p.val.Pos, Kind: ast.LitBool, Bool: true}
		p.advance()
		return e
	case token.FALSE:
		e := &ast.LitExpr{Pos: p.val.Pos, Kind: ast.LitBool, Bool: false}
		p.advance()
		return e
	case token.ATOM:
		e := &ast.LitExpr{Pos: p.val.Pos, Kind: ast.LitAtom, Atom: p.val.Atom}
		p.advance()
		return e
	case token.IDENT:
		e := &ast.VarExpr{NamePos: p.val.Pos, Name: p.val.Ident, HasOffset: p.val.HasOffset, Offset: p.val.Offset}
		p.advance()
		return e
	case token.LPAREN:
		p.advance()
		e := p.parseExpr()
		p.expect(token.RPAREN)
		return e
	case token.LBRACK:
		return p.parseTuple()
	default:
		pos := p.val.Pos
		p.errorExpected(pos, "expression")
		p.advance()
		return &ast.LitExpr{Pos: pos, Kind: ast.LitInt}
	}
}

func (p *parser) parseTuple() ast.Expr {
	lbrack := p.val.Pos
	p.advance()
	var elems []ast.Expr
	for p.tok != token.RBRACK && p.tok != token.EOF {
		elems = append(elems, p.parseExpr())
		if p.tok != token.COMMA {
			break
		}
		p.advance()
	}
	rbrack := p.expect(token.RBRACK)
	return &ast.TupleExpr{Lbrack: lbrack, Rbrack: rbrack, Elems: elems}
}
