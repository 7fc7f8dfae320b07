package maincmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/mna/mainer"

	"github.com/mna/multiverse/lang/ast"
	"github.com/mna/multiverse/lang/parser"
)

func (c *Cmd) Parse(ctx context.Context, stdio mainer.Stdio, args []string) error {
	return ParseFiles(stdio, args...)
}

// ParseFiles parses every named file and prints its statement list, one
// statement per line.
func ParseFiles(stdio mainer.Stdio, files ...string) error {
	var firstErr error
	for _, fname := range files {
		src, err := os.ReadFile(fname)
		if err != nil {
			printError(stdio, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}

		prog, perr := parser.ParseProgram(fname, src)
		if prog != nil {
			for _, s := range prog.Stmts {
				fmt.Fprintln(stdio.Stdout, formatStmt(s))
			}
		}
		if perr != nil {
			printError(stdio, perr)
			if firstErr == nil {
				firstErr = perr
			}
		}
	}
	return firstErr
}

func formatStmt(s *ast.Stmt) string {
	return fmt.Sprintf("%s = %s", formatVar(s.Left), formatExpr(s.Right))
}

func formatVar(v *ast.VarExpr) string {
	if !v.HasOffset {
		return v.Name
	}
	return fmt.Sprintf("%s:%+d", v.Name, v.Offset)
}

func formatExpr(e ast.Expr) string {
	switch n := e.(type) {
	case *ast.LitExpr:
		switch n.Kind {
		case ast.LitInt:
			return fmt.Sprintf("%d", n.Int)
		case ast.LitBool:
			return fmt.Sprintf("%t", n.Bool)
		case ast.LitAtom:
			return fmt.Sprintf("%q", n.Atom)
		}
		return "<bad-lit>"
	case *ast.VarExpr:
		return formatVar(n)
	case *ast.UnaryExpr:
		return fmt.Sprintf("%s(%s)", opName(n.Op), formatExpr(n.Operand))
	case *ast.BinaryExpr:
		return fmt.Sprintf("(%s %s %s)", formatExpr(n.Left), opName(n.Op), formatExpr(n.Right))
	case *ast.TupleExpr:
		elems := make([]string, len(n.Elems))
		for i, el := range n.Elems {
			elems[i] = formatExpr(el)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	default:
		return "<bad-expr>"
	}
}

var opNames = map[ast.Op]string{
	ast.OpAdd: "+", ast.OpSub: "-", ast.OpMul: "*", ast.OpDiv: "/", ast.OpMod: "%",
	ast.OpAnd: "and", ast.OpOr: "or", ast.OpNot: "not", ast.OpNeg: "-", ast.OpLen: "#",
	ast.OpIdx: ".", ast.OpEq: "==", ast.OpNeq: "!=", ast.OpLt: "<", ast.OpGt: ">",
	ast.OpLeq: "<=", ast.OpGeq: ">=", ast.OpDef: "def",
}

func opName(op ast.Op) string {
	if n, ok := opNames[op]; ok {
		return n
	}
	return "?"
}
