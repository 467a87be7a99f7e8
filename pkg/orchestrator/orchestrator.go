// pkg/orchestrator/orchestrator.go
//
// The two top-level flows: health-check decides whether this boot is good
// and drives the bootloader countdown when it is not; rollback switches to
// the previous deployment once the countdown has run out.

package orchestrator

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/config"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const (
	FallbackBanner = "FALLBACK BOOT DETECTED! Default bootc deployment has been rolled back.\n"
	MsgInProgress  = "Greenboot healthcheck is in progress"
	MsgPassed      = "Greenboot healthcheck passed - status is GREEN"
	MsgFailed      = "Greenboot healthcheck failed - status is RED"
)

type Diagnostics interface {
	RunDiagnostics(ctx context.Context, skip []string) ([]string, error)
	RunGreen(ctx context.Context) error
	RunRed(ctx context.Context) error
}

type MotdPublisher interface {
	Publish(ctx context.Context, message string) error
}

type Rebooter interface {
	Request(ctx context.Context, immediate bool) error
}

type RollbackInvoker interface {
	Invoke(ctx context.Context) error
}

// BootState persists the verdict and countdown for the bootloader.
type BootState interface {
	SetBootStatus(ctx context.Context, success bool) error
	SetBootCounter(ctx context.Context, maxAttempts uint16) error
	UnsetBootCounter(ctx context.Context) error
}

type RollbackChecker interface {
	PreviousBootRolledBack(ctx context.Context) (bool, error)
}

type ConfigLoader interface {
	Load(ctx context.Context) config.BootHealthConfig
}

// Orchestrator runs one flow per process; it is not safe for concurrent use.
type Orchestrator struct {
	Config      ConfigLoader
	Diagnostics Diagnostics
	Motd        MotdPublisher
	Rebooter    Rebooter
	Rollbacker  RollbackInvoker
	Boot        BootState
	Rollbacks   RollbackChecker

	state   State
	history []State
}

// State returns the current health-check state.
func (o *Orchestrator) State() State {
	return o.state
}

// History lists every state entered by the last HealthCheck call.
func (o *Orchestrator) History() []State {
	return append([]State(nil), o.history...)
}

func (o *Orchestrator) transition(ctx context.Context, next State) {
	otelzap.Ctx(ctx).Debug("Health-check state transition",
		zap.Stringer("from", o.state),
		zap.Stringer("to", next))
	o.state = next
	o.history = append(o.history, next)
}

// HealthCheck runs the diagnostics and acts on the verdict. A passing boot
// is marked successful. A failing boot runs every remediation step even if
// an earlier one fails, then returns ErrHealthCheckFailed.
func (o *Orchestrator) HealthCheck(ctx context.Context) error {
	ctx, span := telemetry.Start(ctx, "orchestrator.HealthCheck")
	defer span.End()
	logger := otelzap.Ctx(ctx)

	o.state = StateStart
	o.history = []State{StateStart}
	defer o.transition(ctx, StateDone)

	// ASSESS
	cfg := o.Config.Load(ctx)
	logger.Debug("Using config",
		zap.Uint16("max_reboot", cfg.MaxReboot),
		zap.Strings("disabled_healthchecks", cfg.DisabledHealthchecks))

	rolledBack := o.previousRollback(ctx)
	span.SetAttributes(attribute.Bool("fallback_boot", rolledBack))

	if err := o.Motd.Publish(ctx, motdMessage(MsgInProgress, rolledBack)); err != nil {
		return cerr.Wrap(err, "cannot set motd")
	}

	// INTERVENE
	o.transition(ctx, StateRunningDiagnostics)
	missing, diagErr := o.Diagnostics.RunDiagnostics(ctx, cfg.DisabledHealthchecks)

	// EVALUATE
	if diagErr != nil {
		o.transition(ctx, StateRed)
		err := o.red(ctx, cfg, rolledBack, diagErr)
		span.RecordError(err)
		return err
	}

	o.transition(ctx, StateGreen)
	if len(missing) > 0 {
		logger.Debug("Disabled health checks not present on disk", zap.Strings("missing", missing))
	}
	return o.green(ctx, rolledBack)
}

func (o *Orchestrator) green(ctx context.Context, rolledBack bool) error {
	logger := otelzap.Ctx(ctx)
	logger.Info("greenboot health-check passed.")

	if err := o.Diagnostics.RunGreen(ctx); err != nil {
		logger.Error("There is a problem with green script runner", zap.Error(err))
	}
	if err := o.Motd.Publish(ctx, motdMessage(MsgPassed, rolledBack)); err != nil {
		logger.Error("cannot set motd", zap.Error(err))
	}
	if err := o.Boot.SetBootStatus(ctx, true); err != nil {
		return cerr.Wrap(err, "cannot set boot_status")
	}
	return nil
}

// red is best effort: each step runs whatever happened to the previous one.
func (o *Orchestrator) red(ctx context.Context, cfg config.BootHealthConfig, rolledBack bool, diagErr error) error {
	logger := otelzap.Ctx(ctx)
	logger.Error("Greenboot error", zap.Error(diagErr))

	var failures *multierror.Error
	failures = multierror.Append(failures, diagErr)
	record := func(step Step, msg string, err error) {
		if err == nil {
			return
		}
		logger.Error(msg, zap.String("step", string(step)), zap.Error(err))
		failures = multierror.Append(failures, &StepError{Step: step, Err: err})
	}

	record(StepMotd, "cannot set motd", o.Motd.Publish(ctx, motdMessage(MsgFailed, rolledBack)))
	record(StepRedHooks, "There is a problem with red script runner", o.Diagnostics.RunRed(ctx))
	record(StepBootStatus, "cannot set boot_status", o.Boot.SetBootStatus(ctx, false))
	record(StepBootCounter, "cannot set boot_counter", o.Boot.SetBootCounter(ctx, cfg.MaxReboot))
	record(StepReboot, "cannot reboot", o.Rebooter.Request(ctx, false))

	return cerr.WithSecondaryError(ErrHealthCheckFailed, failures.ErrorOrNil())
}

func (o *Orchestrator) previousRollback(ctx context.Context) bool {
	logger := otelzap.Ctx(ctx)
	rolledBack, err := o.Rollbacks.PreviousBootRolledBack(ctx)
	if err != nil {
		logger.Warn("Failed to check previous rollback status, defaulting to false", zap.Error(err))
		return false
	}
	if rolledBack {
		logger.Info("FALLBACK BOOT DETECTED! Default bootc deployment has been rolled back.")
	}
	return rolledBack
}

// TriggerRollback switches to the previous deployment and reboots into it.
// The counter must be cleared before rebooting or the bootloader would
// start counting down the old deployment.
func (o *Orchestrator) TriggerRollback(ctx context.Context) error {
	ctx, span := telemetry.Start(ctx, "orchestrator.TriggerRollback")
	defer span.End()
	logger := otelzap.Ctx(ctx)

	// INTERVENE
	if err := o.Rollbacker.Invoke(ctx); err != nil {
		rerr := &RollbackError{Err: err}
		span.RecordError(rerr)
		return rerr
	}
	logger.Info("Rollback successful")

	// EVALUATE
	if err := o.Boot.UnsetBootCounter(ctx); err != nil {
		span.RecordError(err)
		return cerr.Wrap(err, "cannot unset boot_counter")
	}
	return o.Rebooter.Request(ctx, true)
}

func motdMessage(base string, rolledBack bool) string {
	if rolledBack {
		return FallbackBanner + base
	}
	return base
}
