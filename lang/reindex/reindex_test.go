package reindex

import (
	"testing"

	"github.com/mna/multiverse/lang/machine"
	"github.com/mna/multiverse/lang/parser"
)

func mustReindex(t *testing.T, src string) *Program {
	t.Helper()
	prog, err := parser.ParseProgram("test", []byte(src))
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	out, err := Reindex(prog)
	if err != nil {
		t.Fatalf("reindex error: %v", err)
	}
	return out
}

func TestReindexMutationChain(t *testing.T) {
	out := mustReindex(t, `x = 1; x = x + 1; out = x`)
	if len(out.Statements) != 3 {
		t.Fatalf("got %d statements, want 3", len(out.Statements))
	}
	want := []machine.VarRef{{Name: "x", Index: 0}, {Name: "x", Index: 1}, {Name: "out", Index: 0}}
	for i, w := range want {
		if out.Statements[i].Left != w {
			t.Errorf("stmt %d left = %+v, want %+v", i, out.Statements[i].Left, w)
		}
	}
	if out.Statements[0].Kind != machine.Mutation || out.Statements[1].Kind != machine.Mutation {
		t.Errorf("expected plain mutations, got %v %v", out.Statements[0].Kind, out.Statements[1].Kind)
	}
	if out.VarCount["x"] != 2 || out.VarCount["out"] != 1 {
		t.Errorf("VarCount = %+v", out.VarCount)
	}
}

func TestReindexProphecyAndRevision(t *testing.T) {
	out := mustReindex(t, `x:+2 = 5; x = 2; x = 5; out = x`)
	if out.Statements[0].Kind != machine.Prophecy {
		t.Fatalf("stmt 0 kind = %v, want Prophecy", out.Statements[0].Kind)
	}
	if out.Statements[0].Left != (machine.VarRef{Name: "x", Index: 1}) {
		t.Errorf("stmt 0 left = %+v", out.Statements[0].Left)
	}

	out2 := mustReindex(t, `x = 1; x:0 = 2`)
	if out2.Statements[1].Kind != machine.Revision {
		t.Fatalf("stmt kind = %v, want Revision", out2.Statements[1].Kind)
	}
}

func TestReindexVariableReadsOffset(t *testing.T) {
	out := mustReindex(t, `x = 1; x = 2; y = x:-1`)
	bin, ok := out.Statements[2].Right, true
	_ = ok
	if bin.Kind != machine.ExprVar {
		t.Fatalf("right = %+v, want a var reference", bin)
	}
	if bin.VarName != "x" || bin.VarIndex != 0 {
		t.Errorf("var ref = %s@%d, want x@0", bin.VarName, bin.VarIndex)
	}
}

func TestReindexTupleAndUnary(t *testing.T) {
	out := mustReindex(t, `out = #[1, 2, 3]`)
	un := out.Statements[0].Right
	if un.Kind != machine.ExprUnary || un.Op != machine.OpLen {
		t.Fatalf("right = %+v, want a len expression", un)
	}
	if un.Operand.Kind != machine.ExprTuple || len(un.Operand.Elems) != 3 {
		t.Fatalf("operand = %+v, want a 3-element tuple", un.Operand)
	}
}
