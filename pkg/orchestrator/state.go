// pkg/orchestrator/state.go
package orchestrator

// State is a step of the health-check flow.
type State int

const (
	StateStart State = iota
	StateRunningDiagnostics
	StateGreen
	StateRed
	StateDone
)

func (s State) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateRunningDiagnostics:
		return "running_diagnostics"
	case StateGreen:
		return "green"
	case StateRed:
		return "red"
	case StateDone:
		return "done"
	default:
		return "unknown"
	}
}

// Terminal reports whether no further transition is possible.
func (s State) Terminal() bool {
	return s == StateDone
}
