package diagnostics

import (
	"fmt"

	cerr "github.com/cockroachdb/errors"
)

var (
	// ErrNoRequiredDir means neither install root has check/required.d.
	ErrNoRequiredDir = cerr.New("cannot find any required.d folder")
	// ErrRequiredFailed means a required artifact failed and the run was cut short.
	ErrRequiredFailed = cerr.New("required health-check failed, skipping remaining scripts")
)

// FailureKind is the closed set of ways an artifact run can fail.
type FailureKind int

const (
	// FailureSpawn: the process could not be started or waited for.
	FailureSpawn FailureKind = iota
	// FailureExit: the process ran and exited non-zero.
	FailureExit
	// FailureEnumerate: the tier directory could not be listed.
	FailureEnumerate
)

func (k FailureKind) String() string {
	switch k {
	case FailureSpawn:
		return "spawn"
	case FailureExit:
		return "exit"
	case FailureEnumerate:
		return "enumerate"
	default:
		return "unknown"
	}
}

// ScriptError is a failure record for one artifact (or, for
// FailureEnumerate, for the directory).
type ScriptError struct {
	Kind     FailureKind
	Tier     Tier
	Path     string
	ExitCode int
	Stdout   string
	Stderr   string
	Err      error
}

func (e *ScriptError) Error() string {
	switch e.Kind {
	case FailureExit:
		return fmt.Sprintf("%s script %s failed!\n%s\n%s", e.Tier, e.Path, e.Stdout, e.Stderr)
	case FailureEnumerate:
		return fmt.Sprintf("cannot list %s directory %s: %v", e.Tier, e.Path, e.Err)
	default:
		return fmt.Sprintf("%s script %s could not be run: %v", e.Tier, e.Path, e.Err)
	}
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}
