// pkg/systemd/systemctl.go

package systemd

import (
	"context"
	"strings"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// RunSystemctl executes a systemctl subcommand.
func RunSystemctl(ctx context.Context, runner execute.Runner, args ...string) error {
	logger := otelzap.Ctx(ctx)

	// INTERVENE
	logger.Debug("Executing systemctl command", zap.Strings("args", args))
	if _, err := execute.Run(ctx, runner, execute.Options{Command: "systemctl", Args: args}); err != nil {
		return cerr.Wrapf(err, "systemctl %s failed", strings.Join(args, " "))
	}

	// EVALUATE
	logger.Debug("Systemctl command completed successfully", zap.Strings("args", args))
	return nil
}
