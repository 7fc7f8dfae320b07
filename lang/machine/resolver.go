package machine

import (
	"fmt"
	"io"

	"github.com/mna/multiverse/lang/types"
)

// readyFork is a revision whose right-hand side has just resolved and is
// ready to be forked and spawned by the universe runner.
type readyFork struct {
	Left  VarRef
	Value *Expr
}

// resolveStep implements the per-step resolver (spec §4.4). It is invoked
// twice per statement by the universe runner: once against the previous
// step before dispatching the current statement (so a fork that would
// contradict observations made by the current statement aborts before
// those observations happen), and once at universe end against the final
// step, with next == nil, to flush any remaining carry-forward work.
//
// It reads prev's carry-forward lists and, for anything not yet resolved,
// writes a refined copy into next (a no-op if next is nil: there is nowhere
// left to carry forward to). It reports any fatal fault -- a type error
// during re-evaluation, or a prophecy whose resolved value disagrees with
// the resolved value of the event it predicted.
func resolveStep(env *Environment, prev, next *CodeStep, universeLabel string, dbg io.Writer) ([]readyFork, error) {
	var forks []readyFork

	for _, p := range prev.Prophecies {
		val, ok, err := Eval(p.Expr, env)
		if err != nil {
			return nil, err
		}
		if ok {
			if hist, exists := env.history(p.Var.Name); exists && p.Var.Index < len(hist) {
				actual, ok2, err2 := Eval(hist[p.Var.Index].Expr, env)
				if err2 != nil {
					return nil, err2
				}
				if ok2 {
					if !valuesEqual(val, actual) {
						return nil, &Fault{Kind: FaultProphecyViolation, Msg: fmt.Sprintf(
							"%s predicted %s, actual %s", p.Var, val, actual)}
					}
					continue // satisfied; drop it
				}
			}
		}
		if next != nil {
			refined := p.Expr
			if ok {
				refined = Lit(val) // monotone refinement: never become less resolved
			}
			next.Prophecies = append(next.Prophecies, Prophecy{Var: p.Var, Expr: refined})
		}
	}

	for _, f := range prev.PendingForks {
		val, ok, err := Eval(f.Right, env)
		if err != nil {
			return nil, err
		}
		if ok {
			forks = append(forks, readyFork{Left: f.Left, Value: Lit(val)})
		} else if next != nil {
			next.PendingForks = append(next.PendingForks, f)
		}
	}

	for _, d := range prev.PendingDebugs {
		val, ok, err := Eval(d.Expr, env)
		if err != nil {
			return nil, err
		}
		if ok {
			fmt.Fprintf(dbg, "dbg(u:%s,l:%d): %s\n", universeLabel, d.Line, val)
		} else if next != nil {
			next.PendingDebugs = append(next.PendingDebugs, d)
		}
	}

	return forks, nil
}

// valuesEqual compares two resolved values, refusing to ever test
// Undefined == Undefined (left deliberately ill-defined by the language; see
// the design notes). Either operand being Undefined is treated as unequal,
// since no consumer of this comparison ever legitimately expects Undefined
// on both sides of a satisfied prophecy.
func valuesEqual(a, b types.Value) bool {
	if a.Kind() == types.KindUndefined || b.Kind() == types.KindUndefined {
		return false
	}
	return types.Equal(a, b)
}
