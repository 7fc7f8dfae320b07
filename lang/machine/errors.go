package machine

// FaultKind classifies an engine-fatal error (spec §7). Fatal errors kill
// only the universe that raised them; they never propagate to siblings.
type FaultKind uint8

const (
	FaultTypeError FaultKind = iota
	FaultInvalidReference
	FaultBadPosition
	FaultProphecyViolation
	FaultIndeterminateOutput
)

func (k FaultKind) String() string {
	switch k {
	case FaultTypeError:
		return "type error"
	case FaultInvalidReference:
		return "invalid reference"
	case FaultBadPosition:
		return "bad timeline position"
	case FaultProphecyViolation:
		return "prophecy violation"
	case FaultIndeterminateOutput:
		return "indeterminate output"
	default:
		return "fault"
	}
}

// Fault is the error type for engine-fatal conditions: anything that kills a
// universe (spec §7) rather than being a Go-level bug. Callers can
// distinguish a Fault from an unexpected error with errors.As, to decide
// whether to record it as a normal universe failure or treat it as a
// programming error.
type Fault struct {
	Kind FaultKind
	Msg  string
}

func (f *Fault) Error() string { return f.Kind.String() + ": " + f.Msg }
