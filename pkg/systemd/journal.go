// pkg/systemd/journal.go

package systemd

import (
	"context"
	"strings"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// RollbackJournal looks for a successful greenboot-rollback run in the
// previous boot's journal.
type RollbackJournal struct {
	Runner execute.Runner
	Unit   string
	Marker string
}

func NewRollbackJournal(runner execute.Runner) *RollbackJournal {
	return &RollbackJournal{
		Runner: runner,
		Unit:   shared.RollbackServiceUnit,
		Marker: shared.RollbackMarker,
	}
}

// PreviousBootRolledBack fails only when journalctl cannot be started. A
// journalctl error exit (no previous boot, for instance) counts as no rollback.
func (p *RollbackJournal) PreviousBootRolledBack(ctx context.Context) (bool, error) {
	logger := otelzap.Ctx(ctx)
	logger.Debug("Checking journalctl for previous rollback attempts", zap.String("unit", p.Unit))

	res, err := p.Runner.Exec(ctx, execute.Options{
		Command: "journalctl",
		Args:    []string{"-b", "-1", "-u", p.Unit, "--no-pager"},
	})
	if err != nil {
		return false, cerr.Wrap(err, "failed to execute journalctl command to check rollback status")
	}
	if !res.Success() {
		logger.Warn("journalctl command failed",
			zap.Int("exit_code", res.ExitCode),
			zap.String("stderr", strings.TrimSpace(res.Stderr)))
		return false, nil
	}
	if strings.TrimSpace(res.Stdout) == "" {
		logger.Debug("No rollback service logs found in previous boot")
		return false, nil
	}

	found := strings.Contains(res.Stdout, p.Marker)
	logger.Debug("Rollback detection result", zap.Bool("rolled_back", found))
	return found, nil
}
