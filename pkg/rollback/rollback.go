// pkg/rollback/rollback.go

package rollback

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_err"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ErrCounterNotExhausted means the bootloader still has attempts left, so
// the current deployment stays.
var ErrCounterNotExhausted = cerr.New("Rollback not initiated as boot_counter is either unset or not equal to 0")

// CounterReader reads the persisted boot counter.
type CounterReader interface {
	BootCounter(ctx context.Context) (int, bool, error)
}

// Deployer switches the system back to the previous deployment with bootc,
// or rpm-ostree where bootc is not installed.
type Deployer struct {
	Runner   execute.Runner
	Counter  CounterReader
	LookPath func(string) (string, error)
}

func NewDeployer(runner execute.Runner, counter CounterReader) *Deployer {
	return &Deployer{Runner: runner, Counter: counter, LookPath: execute.LookPath}
}

// Invoke rolls back once the boot counter has run out.
func (d *Deployer) Invoke(ctx context.Context) error {
	logger := otelzap.Ctx(ctx)

	// ASSESS
	counter, ok, err := d.Counter.BootCounter(ctx)
	if err != nil {
		return cerr.Wrap(err, "read boot counter")
	}
	if !ok || counter > 0 {
		return ErrCounterNotExhausted
	}

	tool, err := d.tool()
	if err != nil {
		return err
	}
	logger.Info("Greenboot will now attempt rollback", zap.String("tool", tool))

	// INTERVENE
	if _, err := execute.Run(ctx, d.Runner, execute.Options{Command: tool, Args: []string{"rollback"}}); err != nil {
		return cerr.Wrapf(err, "%s rollback", tool)
	}

	// EVALUATE
	logger.Info("Rollback successful", zap.String("tool", tool))
	return nil
}

func (d *Deployer) tool() (string, error) {
	lookPath := d.LookPath
	if lookPath == nil {
		lookPath = execute.LookPath
	}
	for _, tool := range []string{"bootc", "rpm-ostree"} {
		if _, err := lookPath(tool); err == nil {
			return tool, nil
		}
	}
	return "", gb_err.NewDependencyError("bootc or rpm-ostree", "rollback",
		"install bootc, or rpm-ostree on older ostree systems")
}
