package machine

import (
	"fmt"

	"github.com/dolthub/swiss"
)

// VarEvent is one binding v@k: the expression bound to one position in a
// variable's history, paired with the index of the statement that bound it
// (spec §3).
type VarEvent struct {
	Expr      *Expr
	CodeIndex int
}

// VarRef names one event, v@k.
type VarRef struct {
	Name  string
	Index int
}

func (r VarRef) String() string { return fmt.Sprintf("%s@%d", r.Name, r.Index) }

// Prophecy is an unresolved prophecy carried forward by the resolver: a
// declaration that event Var will, once bound, equal Expr.
type Prophecy struct {
	Var  VarRef
	Expr *Expr
}

// PendingFork is a revision statement whose right-hand side was not yet
// evaluable at declaration time, carried forward until it resolves.
type PendingFork struct {
	Left  VarRef
	Right *Expr
}

// PendingDebug is a debug print statement whose expression was not yet
// evaluable at declaration time.
type PendingDebug struct {
	Line int
	Expr *Expr
}

// CodeStep is the per-statement record described in spec §3: for every
// variable live at this step, the index of its most recently bound event,
// plus the carry-forward lists the resolver threads from one step to the
// next.
type CodeStep struct {
	Latest        map[string]int
	Prophecies    []Prophecy
	PendingForks  []PendingFork
	PendingDebugs []PendingDebug
}

func newCodeStep() *CodeStep {
	return &CodeStep{Latest: make(map[string]int)}
}

// Environment owns one universe's mutable state: variable histories, the
// code history, and the immutable var_count declared for the whole program.
// It is created once per universe (root or fork), mutated only by its owning
// universe, and only ever grows forward.
type Environment struct {
	histories   *swiss.Map[string, []VarEvent]
	codeHistory []*CodeStep
	varCount    map[string]int
}

// NewEnvironment creates an empty environment for a program whose variables
// are declared to eventually bind varCount[name] events each. varCount is
// never mutated after this call.
func NewEnvironment(varCount map[string]int) *Environment {
	return &Environment{
		histories: swiss.NewMap[string, []VarEvent](uint32(len(varCount))),
		varCount:  varCount,
	}
}

func (e *Environment) history(name string) ([]VarEvent, bool) {
	return e.histories.Get(name)
}

// Len returns the current length of name's history (0 if it has none yet).
func (e *Environment) Len(name string) int {
	h, ok := e.history(name)
	if !ok {
		return 0
	}
	return len(h)
}

// Append adds the next event to name's history (a mutation). The caller is
// responsible for having checked that this is a legal position (spec §7).
func (e *Environment) Append(name string, ev VarEvent) {
	h, _ := e.history(name)
	h = append(h, ev)
	e.histories.Put(name, h)
}

// CodeHistory returns the accumulated per-statement steps.
func (e *Environment) CodeHistory() []*CodeStep { return e.codeHistory }

// AppendStep appends a completed CodeStep to the code history.
func (e *Environment) AppendStep(step *CodeStep) {
	e.codeHistory = append(e.codeHistory, step)
}

// VarCount reports the declared total event count for name (0 if
// undeclared).
func (e *Environment) VarCount(name string) int { return e.varCount[name] }

// Fork implements spec §4.3: it produces a child environment for a revision
// of name@index, replacing that event's expression with newValue. The
// parent environment is left completely unmodified. The child's history
// slices and code-history slice are fresh copies; the CodeStep records and
// expressions they point to are shared with the parent, and no universe
// modifies those once they are appended (fork isolation, spec §8).
func (e *Environment) Fork(name string, index int, newValue *Expr) (*Environment, int, error) {
	hist, ok := e.history(name)
	if !ok {
		return nil, 0, &Fault{Kind: FaultInvalidReference, Msg: fmt.Sprintf("reference to %s@%d: variable never occurred", name, index)}
	}
	if index < 0 || index >= len(hist) {
		return nil, 0, &Fault{Kind: FaultInvalidReference, Msg: fmt.Sprintf("fork to future event %s@%d", name, index)}
	}
	codeIndex := hist[index].CodeIndex
	if codeIndex < 0 || codeIndex >= len(e.codeHistory) {
		return nil, 0, &Fault{Kind: FaultInvalidReference, Msg: fmt.Sprintf("%s@%d: code index %d out of range", name, index, codeIndex)}
	}

	child := NewEnvironment(e.varCount)
	child.codeHistory = append([]*CodeStep(nil), e.codeHistory[:codeIndex+1]...)

	step := e.codeHistory[codeIndex]
	for varName, latest := range step.Latest {
		srcHist, ok := e.history(varName)
		if !ok || latest >= len(srcHist) {
			continue
		}
		truncated := append([]VarEvent(nil), srcHist[:latest+1]...)
		child.histories.Put(varName, truncated)
	}

	childHist, _ := child.history(name)
	old := childHist[index]
	childHist[index] = VarEvent{Expr: newValue, CodeIndex: old.CodeIndex}
	child.histories.Put(name, childHist)

	return child, codeIndex, nil
}
