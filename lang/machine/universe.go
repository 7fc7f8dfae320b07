package machine

import (
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Config configures an execution: the reserved debug/output variable names,
// where debug prints are written, and an optional safety cap on the total
// number of universes a single run may spawn (spec §9, "spawn policy": a
// thread-per-universe model can explode with revision-heavy programs; unlike
// MaxSteps on the teacher's Thread, this is off by default because spec.md
// explicitly makes unbounded forking the user's problem, not the engine's).
type Config struct {
	// DebugName and OutputName default to "dbg" and "out" if empty.
	DebugName  string
	OutputName string

	// Stdout receives debug print lines. Defaults to os.Stdout if nil.
	Stdout io.Writer

	// MaxUniverses caps the total number of universes a run may fork; the
	// root universe is not counted. A value <= 0 means no limit.
	MaxUniverses int
}

func (c *Config) debugName() string {
	if c.DebugName == "" {
		return "dbg"
	}
	return c.DebugName
}

func (c *Config) outputName() string {
	if c.OutputName == "" {
		return "out"
	}
	return c.OutputName
}

func (c *Config) stdout() io.Writer {
	if c.Stdout == nil {
		return os.Stdout
	}
	return c.Stdout
}

// Universe is one concurrent execution: it owns an Environment and runs
// statements in program order starting at some offset (spec §4.5). Forking
// a revision spawns a child Universe on its own goroutine; a Universe joins
// all of its direct children before its own run returns, which transitively
// joins the whole subtree rooted at it.
type Universe struct {
	label   string
	env     *Environment
	cfg     *Config
	results *Results
	program []Statement
	counter *atomic.Int64 // shared across the whole run, for the MaxUniverses cap

	spawnCount int
	group      *errgroup.Group
}

func newUniverse(label string, env *Environment, cfg *Config, results *Results, program []Statement, counter *atomic.Int64) *Universe {
	return &Universe{label: label, env: env, cfg: cfg, results: results, program: program, counter: counter}
}

// run executes program[start:] statement by statement (spec §4.5), then
// returns once every universe it spawned (and everything they in turn
// spawned) has joined. A non-nil error means this universe is fatally dead;
// its descendants are still joined regardless (spec §5, "Cancellation").
func (u *Universe) run(start int) error {
	u.group = &errgroup.Group{}
	runErr := u.runStatements(start)
	// Always join spawned children, success or failure (spec §5, "Resource
	// discipline"). errgroup.Group.Go closures here never return a non-nil
	// error themselves (see spawnFork), so Wait returns nil here; its result
	// is folded into runErr only when runErr is still nil.
	if joinErr := u.group.Wait(); joinErr != nil && runErr == nil {
		runErr = joinErr
	}
	if runErr != nil {
		return runErr
	}
	return u.collectOutput()
}

func (u *Universe) runStatements(start int) error {
	for i, stmt := range u.program[start:] {
		abs := start + i
		next := newCodeStep()

		// The resolver runs against the previous step before this statement is
		// dispatched, so a fork that would contradict what this statement is
		// about to observe aborts before that observation happens.
		if hist := u.env.CodeHistory(); len(hist) != 0 {
			forks, err := resolveStep(u.env, hist[len(hist)-1], next, u.label, u.cfg.stdout())
			if err != nil {
				return err
			}
			for _, f := range forks {
				if err := u.spawnFork(f.Left, f.Value); err != nil {
					return err
				}
			}
		}

		if err := u.dispatch(stmt, abs, next); err != nil {
			return err
		}

		u.env.histories.Iter(func(name string, h []VarEvent) bool {
			next.Latest[name] = len(h) - 1
			return false
		})
		u.env.AppendStep(next)
	}

	if hist := u.env.CodeHistory(); len(hist) != 0 {
		forks, err := resolveStep(u.env, hist[len(hist)-1], nil, u.label, u.cfg.stdout())
		if err != nil {
			return err
		}
		for _, f := range forks {
			if err := u.spawnFork(f.Left, f.Value); err != nil {
				return err
			}
		}
	}
	return nil
}

func (u *Universe) dispatch(stmt Statement, abs int, next *CodeStep) error {
	switch stmt.Kind {
	case Mutation:
		return u.dispatchMutation(stmt, abs, next)
	case Revision:
		return u.dispatchRevision(stmt, next)
	case Prophecy:
		return u.dispatchProphecy(stmt, next)
	default:
		panic("machine: dispatch: invalid statement kind")
	}
}

func (u *Universe) dispatchMutation(stmt Statement, abs int, next *CodeStep) error {
	curLen := u.env.Len(stmt.Left.Name)
	if stmt.Left.Index != 0 && stmt.Left.Index != curLen {
		return &Fault{Kind: FaultBadPosition, Msg: fmt.Sprintf(
			"mutation to %s: not the next expected slot (history length %d)", stmt.Left, curLen)}
	}

	if stmt.Left.Name == u.cfg.debugName() {
		// The original prints the raw, unevaluated expression the instant the
		// dbg mutation is dispatched, then prints the resolved value too if it
		// happens to resolve immediately -- a dbg statement that resolves right
		// away produces two lines; one left unresolved produces this one now
		// and a second one later, once the resolver flushes it.
		fmt.Fprintf(u.cfg.stdout(), "dbg(u:%s,l:%d): %s\n", u.label, abs, stmt.Right)
		val, ok, err := Eval(stmt.Right, u.env)
		if err != nil {
			return err
		}
		if ok {
			fmt.Fprintf(u.cfg.stdout(), "dbg(u:%s,l:%d): %s\n", u.label, abs, val)
		} else {
			next.PendingDebugs = append(next.PendingDebugs, PendingDebug{Line: abs, Expr: stmt.Right})
		}
	}

	val, ok, err := Eval(stmt.Right, u.env)
	if err != nil {
		return err
	}
	bound := stmt.Right
	if ok {
		bound = Lit(val)
	}
	u.env.Append(stmt.Left.Name, VarEvent{Expr: bound, CodeIndex: abs})
	return nil
}

func (u *Universe) dispatchRevision(stmt Statement, next *CodeStep) error {
	if stmt.Left.Index < 0 {
		return &Fault{Kind: FaultBadPosition, Msg: fmt.Sprintf("revision to %s: before the start of time", stmt.Left)}
	}
	curLen := u.env.Len(stmt.Left.Name)
	if stmt.Left.Index >= curLen {
		return &Fault{Kind: FaultInvalidReference, Msg: fmt.Sprintf(
			"revision to %s: unknown or future event (history length %d)", stmt.Left, curLen)}
	}

	val, ok, err := Eval(stmt.Right, u.env)
	if err != nil {
		return err
	}
	if ok {
		return u.spawnFork(stmt.Left, Lit(val))
	}
	next.PendingForks = append(next.PendingForks, PendingFork{Left: stmt.Left, Right: stmt.Right})
	return nil
}

func (u *Universe) dispatchProphecy(stmt Statement, next *CodeStep) error {
	curLen := u.env.Len(stmt.Left.Name)
	if stmt.Left.Index < curLen {
		return &Fault{Kind: FaultBadPosition, Msg: fmt.Sprintf("prophecy about %s: already in the past", stmt.Left)}
	}

	val, ok, err := Eval(stmt.Right, u.env)
	if err != nil {
		return err
	}
	bound := stmt.Right
	if ok {
		bound = Lit(val)
	}
	next.Prophecies = append(next.Prophecies, Prophecy{Var: stmt.Left, Expr: bound})
	return nil
}

// spawnFork forks the environment at left.Index and spawns a child universe
// to continue execution right after it, on its own goroutine (spec §4.3,
// §5). The current universe is never affected by its own revisions: forking
// always produces a new universe, never mutates u's environment. Fatal
// errors encountered inside the child are recorded under the child's label,
// not propagated to u: a sibling's death never cancels this universe (spec
// §5, "Cancellation").
func (u *Universe) spawnFork(left VarRef, value *Expr) error {
	childEnv, codeIndex, err := u.env.Fork(left.Name, left.Index, value)
	if err != nil {
		return err
	}

	if u.cfg.MaxUniverses > 0 && u.counter.Add(1) > int64(u.cfg.MaxUniverses) {
		return &Fault{Kind: FaultBadPosition, Msg: fmt.Sprintf("universe cap of %d exceeded", u.cfg.MaxUniverses)}
	}

	childLabel := fmt.Sprintf("%s-%d", u.label, u.spawnCount)
	u.spawnCount++
	child := newUniverse(childLabel, childEnv, u.cfg, u.results, u.program, u.counter)

	u.group.Go(func() error {
		if err := child.run(codeIndex + 1); err != nil {
			u.results.Set(childLabel, Outcome{Err: err})
		}
		return nil
	})
	return nil
}

func (u *Universe) collectOutput() error {
	hist, ok := u.env.history(u.cfg.outputName())
	if !ok {
		u.results.Set(u.label, Outcome{})
		return nil
	}
	outputs := make([]string, 0, len(hist))
	for _, ev := range hist {
		val, ok, err := Eval(ev.Expr, u.env)
		if err != nil {
			return err
		}
		if !ok {
			return &Fault{Kind: FaultIndeterminateOutput, Msg: fmt.Sprintf(
				"universe %s: %s is unresolved at end of run", u.label, u.cfg.outputName())}
		}
		outputs = append(outputs, val.String())
	}
	u.results.Set(u.label, Outcome{Outputs: outputs})
	return nil
}
