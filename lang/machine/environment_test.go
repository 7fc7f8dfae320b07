package machine

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/mna/multiverse/lang/types"
)

// snapshotHistories captures a deep copy of every name's history, for
// before/after structural comparison with go-cmp -- testify's shallow
// Equal is not enough to catch aliasing between a parent's and a fork's
// VarEvent slices (spec §8, fork isolation).
func snapshotHistories(e *Environment, names ...string) map[string][]VarEvent {
	out := make(map[string][]VarEvent, len(names))
	for _, name := range names {
		h, _ := e.history(name)
		out[name] = append([]VarEvent(nil), h...)
	}
	return out
}

func TestEnvironmentAppendGrowsHistory(t *testing.T) {
	e := NewEnvironment(map[string]int{"x": 3})
	require.Equal(t, 0, e.Len("x"))
	e.Append("x", VarEvent{Expr: Lit(types.Integer(1)), CodeIndex: 0})
	e.Append("x", VarEvent{Expr: Lit(types.Integer(2)), CodeIndex: 1})
	require.Equal(t, 2, e.Len("x"))
}

func TestEnvironmentForkUnknownVariable(t *testing.T) {
	e := NewEnvironment(map[string]int{"x": 1})
	_, _, err := e.Fork("y", 0, Lit(types.Integer(1)))
	require.Error(t, err)
	var fault *Fault
	require.ErrorAs(t, err, &fault)
	require.Equal(t, FaultInvalidReference, fault.Kind)
}

func TestEnvironmentForkFutureIndex(t *testing.T) {
	e := NewEnvironment(map[string]int{"x": 2})
	e.Append("x", VarEvent{Expr: Lit(types.Integer(1)), CodeIndex: 0})
	_, _, err := e.Fork("x", 5, Lit(types.Integer(9)))
	require.Error(t, err)
}

// TestEnvironmentForkIsolation is the central isolation guarantee (spec §8):
// forking must never let a later mutation on the parent or the child leak
// into the other's history.
func TestEnvironmentForkIsolation(t *testing.T) {
	parent := NewEnvironment(map[string]int{"x": 5, "y": 5})
	step0 := newCodeStep()
	parent.Append("x", VarEvent{Expr: Lit(types.Integer(1)), CodeIndex: 0})
	step0.Latest["x"] = 0
	parent.AppendStep(step0)

	step1 := newCodeStep()
	parent.Append("y", VarEvent{Expr: Lit(types.Integer(10)), CodeIndex: 1})
	step1.Latest["x"] = 0
	step1.Latest["y"] = 0
	parent.AppendStep(step1)

	child, codeIndex, err := parent.Fork("x", 0, Lit(types.Integer(99)))
	require.NoError(t, err)
	require.Equal(t, 0, codeIndex)

	// Parent is untouched.
	parentHist, _ := parent.history("x")
	require.Equal(t, types.Integer(1), parentHist[0].Expr.Lit)

	// Child sees the revised value...
	childHist, _ := child.history("x")
	require.Equal(t, types.Integer(99), childHist[0].Expr.Lit)
	// ...and does not see events that happened after the fork point in the
	// parent's timeline (y was only bound in step1, after the fork's step0).
	require.Equal(t, 0, child.Len("y"))

	// Mutating the child afterward must not affect the parent.
	child.Append("x", VarEvent{Expr: Lit(types.Integer(100)), CodeIndex: 2})
	require.Equal(t, 1, parent.Len("x"))
	require.Equal(t, 2, child.Len("x"))

	// Mutating the parent afterward must not affect the child.
	parent.Append("x", VarEvent{Expr: Lit(types.Integer(2)), CodeIndex: 2})
	require.Equal(t, 2, parent.Len("x"))
	require.Equal(t, 2, child.Len("x"))
}

// TestEnvironmentForkDoesNotAliasParentHistories snapshots the parent's
// full history set before forking and after mutating both parent and
// child, then diffs the two snapshots structurally: a fork must never
// share backing slices with its parent, however deep the expression trees
// involved.
func TestEnvironmentForkDoesNotAliasParentHistories(t *testing.T) {
	parent := NewEnvironment(map[string]int{"x": 5, "y": 5})
	step0 := newCodeStep()
	parent.Append("x", VarEvent{Expr: Binary(OpAdd, Lit(types.Integer(1)), Lit(types.Integer(2))), CodeIndex: 0})
	step0.Latest["x"] = 0
	parent.AppendStep(step0)

	before := snapshotHistories(parent, "x", "y")

	child, _, err := parent.Fork("x", 0, Lit(types.Integer(99)))
	require.NoError(t, err)
	child.Append("x", VarEvent{Expr: Lit(types.Integer(100)), CodeIndex: 1})
	child.Append("y", VarEvent{Expr: Lit(types.Integer(7)), CodeIndex: 1})

	after := snapshotHistories(parent, "x", "y")

	if diff := cmp.Diff(before, after); diff != "" {
		t.Errorf("forking or mutating the child perturbed the parent's histories (-before +after):\n%s", diff)
	}
}

func TestEnvironmentForkTruncatesCodeHistory(t *testing.T) {
	parent := NewEnvironment(map[string]int{"x": 5})
	for i := 0; i < 3; i++ {
		step := newCodeStep()
		parent.Append("x", VarEvent{Expr: Lit(types.Integer(i)), CodeIndex: i})
		step.Latest["x"] = i
		parent.AppendStep(step)
	}
	require.Equal(t, 3, len(parent.CodeHistory()))

	child, _, err := parent.Fork("x", 0, Lit(types.Integer(42)))
	require.NoError(t, err)
	require.Equal(t, 1, len(child.CodeHistory()))
	require.Equal(t, 3, len(parent.CodeHistory()))
}
