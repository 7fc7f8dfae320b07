package parser

import (
	"testing"

	"github.com/mna/multiverse/lang/ast"
)

func TestParseProgramMutationChain(t *testing.T) {
	prog, err := ParseProgram("test", []byte(`x = 1; x = x + 1; out = x:+0`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Stmts) != 3 {
		t.Fatalf("got %d statements, want 3", len(prog.Stmts))
	}
	if prog.Stmts[0].Left.Name != "x" || prog.Stmts[0].Left.HasOffset {
		t.Errorf("stmt 0 left = %+v", prog.Stmts[0].Left)
	}
	bin, ok := prog.Stmts[1].Right.(*ast.BinaryExpr)
	if !ok {
		t.Fatalf("stmt 1 right is %T, want *ast.BinaryExpr", prog.Stmts[1].Right)
	}
	if bin.Op != ast.OpAdd {
		t.Errorf("bin.Op = %v, want OpAdd", bin.Op)
	}
}

func TestParsePrecedence(t *testing.T) {
	prog, err := ParseProgram("test", []byte(`out = 1 + 2 * 3`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bin := prog.Stmts[0].Right.(*ast.BinaryExpr)
	if bin.Op != ast.OpAdd {
		t.Fatalf("top operator = %v, want OpAdd", bin.Op)
	}
	rhs, ok := bin.Right.(*ast.BinaryExpr)
	if !ok || rhs.Op != ast.OpMul {
		t.Fatalf("right operand = %+v, want a mul expression", bin.Right)
	}
}

func TestParseUnaryAndTuple(t *testing.T) {
	prog, err := ParseProgram("test", []byte(`out = #[1, 2, not true]`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	un, ok := prog.Stmts[0].Right.(*ast.UnaryExpr)
	if !ok || un.Op != ast.OpLen {
		t.Fatalf("right = %+v, want a len expression", prog.Stmts[0].Right)
	}
	tup, ok := un.Operand.(*ast.TupleExpr)
	if !ok || len(tup.Elems) != 3 {
		t.Fatalf("operand = %+v, want a 3-element tuple", un.Operand)
	}
}

func TestParseOffsetForms(t *testing.T) {
	prog, err := ParseProgram("test", []byte(`x = 1; x:+1 = 2; x = 2; x:0 = 3`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(prog.Stmts) != 4 {
		t.Fatalf("got %d statements, want 4", len(prog.Stmts))
	}
	if !prog.Stmts[1].Left.HasOffset || prog.Stmts[1].Left.Offset != 1 {
		t.Errorf("stmt 1 left = %+v", prog.Stmts[1].Left)
	}
	if !prog.Stmts[3].Left.HasOffset || prog.Stmts[3].Left.Offset != 0 {
		t.Errorf("stmt 3 left = %+v", prog.Stmts[3].Left)
	}
}

func TestParseErrorReported(t *testing.T) {
	_, err := ParseProgram("test", []byte(`x = `))
	if err == nil {
		t.Fatal("expected a parse error")
	}
}
