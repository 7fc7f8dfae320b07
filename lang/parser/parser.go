// Package parser implements the Pratt expression parser and statement
// parser that turn scanned tokens into an ast.Program. Adapted from the
// teacher's lang/parser (same precedence-climbing shape, far smaller
// grammar: three assignment forms collapsed into one statement shape, a
// closed operator set, no blocks, functions or control flow).
package parser

import (
	"github.com/mna/multiverse/lang/ast"
	"github.com/mna/multiverse/lang/scanner"
	"github.com/mna/multiverse/lang/token"
)

// ParseProgram scans and parses src (named filename for error reporting)
// into a Program. The error, if non-nil, is a scanner.ErrorList (same
// guarantee as the teacher's own ParseFiles/ParseChunk).
func ParseProgram(filename string, src []byte) (*ast.Program, error) {
	var p parser
	fs := token.NewFileSet()
	p.file = fs.AddFile(filename)
	p.scanner.Init(p.file, src, p.errors.Add)
	p.advance()

	prog := p.parseProgram()
	p.errors.Sort()
	return prog, p.errors.Err()
}

type parser struct {
	scanner scanner.Scanner
	errors  scanner.ErrorList
	file    *token.File

	tok token.Token
	val scanner.Value
}

func (p *parser) advance() {
	p.tok = p.scanner.Scan(&p.val)
}

func (p *parser) error(pos token.Pos, msg string) {
	p.errors.Add(p.file.Position(pos), msg)
}

func (p *parser) errorExpected(pos token.Pos, want string) {
	msg := "expected " + want
	if lit := p.tok.Literal(); lit != "" {
		msg += ", found " + lit
	} else {
		msg += ", found " + p.tok.String()
	}
	p.error(pos, msg)
}

// expect consumes the current token if it matches tok, recording an error
// otherwise. It always advances, to keep the parser moving forward on error
// (best-effort recovery: the caller may still produce a BadStmt-shaped nil).
func (p *parser) expect(tok token.Token) token.Pos {
	pos := p.val.Pos
	if p.tok != tok {
		p.errorExpected(pos, tok.GoString())
	}
	p.advance()
	return pos
}

func (p *parser) parseProgram() *ast.Program {
	prog := &ast.Program{}
	for p.tok != token.EOF {
		if p.tok == token.SEMI {
			p.advance()
			continue
		}
		stmt := p.parseStmt()
		if stmt != nil {
			prog.Stmts = append(prog.Stmts, stmt)
		}
		if p.tok != token.EOF && p.tok != token.SEMI {
			p.errorExpected(p.val.Pos, "';' or end of input")
			// best-effort recovery: skip to the next statement separator
			for p.tok != token.EOF && p.tok != token.SEMI {
				p.advance()
			}
		}
	}
	return prog
}

func (p *parser) parseStmt() *ast.Stmt {
	if p.tok != token.IDENT {
		p.errorExpected(p.val.Pos, "identifier")
		for p.tok != token.EOF && p.tok != token.SEMI {
			p.advance()
		}
		return nil
	}
	left := &ast.VarExpr{NamePos: p.val.Pos, Name: p.val.Ident, HasOffset: p.val.HasOffset, Offset: p.val.Offset}
	p.advance()

	eqPos := p.expect(token.EQ)
	right := p.parseExpr()
	return &ast.Stmt{Left: left, Eq: eqPos, Right: right}
}
