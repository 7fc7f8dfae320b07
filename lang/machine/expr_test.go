package machine

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mna/multiverse/lang/types"
)

func env1(varCount map[string]int) *Environment { return NewEnvironment(varCount) }

func TestEvalLiteral(t *testing.T) {
	e := env1(map[string]int{})
	v, ok, err := Eval(Lit(types.Integer(5)), e)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Value(types.Integer(5)), v)
}

func TestEvalVarOutOfScope(t *testing.T) {
	e := env1(map[string]int{"x": 1})
	v, ok, err := Eval(Var("x", 5), e)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Undefined, v)
}

func TestEvalVarUnresolvedBeforeBound(t *testing.T) {
	e := env1(map[string]int{"x": 2})
	v, ok, err := Eval(Var("x", 0), e)
	require.NoError(t, err)
	require.False(t, ok)
	require.Nil(t, v)
}

func TestEvalVarAfterBound(t *testing.T) {
	e := env1(map[string]int{"x": 2})
	e.Append("x", VarEvent{Expr: Lit(types.Integer(7)), CodeIndex: 0})
	v, ok, err := Eval(Var("x", 0), e)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Value(types.Integer(7)), v)
}

func TestEvalCycleIsUnresolvedNotFatal(t *testing.T) {
	e := env1(map[string]int{"x": 1, "y": 1})
	e.Append("x", VarEvent{Expr: Var("y", 0), CodeIndex: 0})
	e.Append("y", VarEvent{Expr: Var("x", 0), CodeIndex: 1})

	_, ok, err := Eval(Var("x", 0), e)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestEvalBinaryArithmetic(t *testing.T) {
	e := env1(nil)
	cases := []struct {
		op   Op
		l, r int64
		want int64
	}{
		{OpAdd, 2, 3, 5},
		{OpSub, 2, 3, -1},
		{OpMul, 4, 3, 12},
		{OpDiv, 7, 2, 3},
		{OpDiv, -7, 2, -4}, // floor division
		{OpMod, 7, 2, 1},
		{OpMod, -7, 2, 1}, // floor modulo
	}
	for _, c := range cases {
		v, ok, err := Eval(Binary(c.op, Lit(types.Integer(c.l)), Lit(types.Integer(c.r))), e)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, types.Integer(c.want), v, "%s(%d,%d)", c.op, c.l, c.r)
	}
}

func TestEvalAndOrOnIntIsMinMax(t *testing.T) {
	e := env1(nil)
	v, _, err := Eval(Binary(OpAnd, Lit(types.Integer(3)), Lit(types.Integer(7))), e)
	require.NoError(t, err)
	require.Equal(t, types.Integer(3), v)

	v, _, err = Eval(Binary(OpOr, Lit(types.Integer(3)), Lit(types.Integer(7))), e)
	require.NoError(t, err)
	require.Equal(t, types.Integer(7), v)
}

func TestEvalTypeErrorIsFatal(t *testing.T) {
	e := env1(nil)
	_, ok, err := Eval(Binary(OpAdd, Lit(types.Integer(1)), Lit(types.True)), e)
	require.False(t, ok)
	require.Error(t, err)
	var fault *Fault
	require.ErrorAs(t, err, &fault)
	require.Equal(t, FaultTypeError, fault.Kind)
}

func TestEvalUndefinedPropagates(t *testing.T) {
	e := env1(map[string]int{"x": 1})
	v, ok, err := Eval(Binary(OpAdd, Var("x", 5), Lit(types.Integer(1))), e)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Undefined, v)
}

func TestEvalDefOperator(t *testing.T) {
	e := env1(map[string]int{"x": 1})
	v, ok, err := Eval(Unary(OpDef, Var("x", 0)), e)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.True, v)

	v, ok, err = Eval(Unary(OpDef, Var("x", 5)), e)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.False, v)
}

func TestEvalIdxOutOfRange(t *testing.T) {
	e := env1(nil)
	tup := ConcreteTuple(types.Tuple{types.Integer(1), types.Integer(2)})
	v, ok, err := Eval(Binary(OpIdx, tup, Lit(types.Integer(5))), e)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Undefined, v)
}

func TestEvalSyntacticTuple(t *testing.T) {
	e := env1(map[string]int{"x": 1})
	e.Append("x", VarEvent{Expr: Lit(types.Integer(9)), CodeIndex: 0})
	v, ok, err := Eval(TupleExpr([]*Expr{Lit(types.Integer(1)), Var("x", 0)}), e)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, types.Tuple{types.Integer(1), types.Integer(9)}, v)
}

func TestEvalSyntacticTupleUnresolved(t *testing.T) {
	e := env1(map[string]int{"x": 1})
	_, ok, err := Eval(TupleExpr([]*Expr{Lit(types.Integer(1)), Var("x", 0)}), e)
	require.NoError(t, err)
	require.False(t, ok)
}
