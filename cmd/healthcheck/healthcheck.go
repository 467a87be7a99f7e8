// cmd/healthcheck/healthcheck.go
package healthcheck

import (
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_cli"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_err"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_io"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/orchestrator"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns 'greenboot health-check'.
func NewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "health-check",
		Short: "Run the health checks and act on the result",
		Long: `Runs check/required.d and check/wanted.d from both install roots.

On success green.d runs and grubenv records boot_success=1.
On failure red.d runs, boot_success=0 and boot_counter are written and the
system reboots while the bootloader still has attempts left.`,
		Args: cobra.NoArgs,
		RunE: gb_cli.Wrap(runHealthCheck),
	}
}

func runHealthCheck(rc *gb_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	err := orchestrator.NewSystem(shared.GreenbootConfigFile).HealthCheck(rc.Ctx)
	if cerr.Is(err, orchestrator.ErrHealthCheckFailed) {
		return gb_err.NewHealthCheckError(orchestrator.ErrHealthCheckFailed.Error(), err)
	}
	return err
}
