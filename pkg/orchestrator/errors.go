// pkg/orchestrator/errors.go
package orchestrator

import (
	"fmt"

	cerr "github.com/cockroachdb/errors"
)

// ErrHealthCheckFailed is returned after the red path has run. The
// diagnostics failure and any remediation step failures hang off it as
// secondary errors.
var ErrHealthCheckFailed = cerr.New("greenboot healthcheck failed")

// Step names a remediation step on the red path.
type Step string

const (
	StepMotd        Step = "motd"
	StepRedHooks    Step = "red_hooks"
	StepBootStatus  Step = "boot_status"
	StepBootCounter Step = "boot_counter"
	StepReboot      Step = "reboot"
)

// StepError is one failed remediation step.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// RollbackError means the rollback tool refused or failed; nothing else was
// touched.
type RollbackError struct {
	Err error
}

func (e *RollbackError) Error() string {
	return fmt.Sprintf("%v, Rollback is not initiated", e.Err)
}

func (e *RollbackError) Unwrap() error {
	return e.Err
}
