// pkg/systemd/reboot.go

package systemd

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ErrCountdownEnded stops a non-immediate reboot once the bootloader has no
// attempts left; greenboot-rollback takes over from there.
var ErrCountdownEnded = cerr.New("countdown ended, check greenboot-rollback status")

// CounterReader reads the persisted boot counter.
type CounterReader interface {
	BootCounter(ctx context.Context) (int, bool, error)
}

// Rebooter requests a reboot through systemd.
type Rebooter struct {
	Runner  execute.Runner
	Counter CounterReader
}

func NewRebooter(runner execute.Runner, counter CounterReader) *Rebooter {
	return &Rebooter{Runner: runner, Counter: counter}
}

// Request reboots the machine. Unless immediate, the boot counter must still
// have attempts left.
func (r *Rebooter) Request(ctx context.Context, immediate bool) error {
	logger := otelzap.Ctx(ctx)

	// ASSESS
	if !immediate {
		counter, ok, err := r.Counter.BootCounter(ctx)
		if err != nil {
			return cerr.Wrap(err, "read boot counter")
		}
		if !ok || counter <= 0 {
			logger.Info("Not rebooting", zap.Bool("counter_set", ok), zap.Int("boot_counter", counter))
			return ErrCountdownEnded
		}
	}

	// INTERVENE
	logger.Info("restarting the system", zap.Bool("immediate", immediate))
	return RunSystemctl(ctx, r.Runner, "reboot")
}
