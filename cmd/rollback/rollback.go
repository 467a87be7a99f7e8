// cmd/rollback/rollback.go
package rollback

import (
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_cli"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_err"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_io"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/orchestrator"
	rb "github.com/CodeMonkeyCybersecurity/greenboot/pkg/rollback"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// NewCmd returns 'greenboot rollback'.
func NewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rollback",
		Short: "Roll back to the previous deployment once boot_counter reaches 0",
		Long: `Called by greenboot-rollback.service. When the bootloader has used up
every boot attempt, switches to the previous deployment with bootc (or
rpm-ostree), clears boot_counter and reboots immediately.`,
		Args: cobra.NoArgs,
		RunE: gb_cli.Wrap(runRollback),
	}
}

func runRollback(rc *gb_io.RuntimeContext, cmd *cobra.Command, args []string) error {
	return classifyRollback(orchestrator.NewSystem(shared.GreenbootConfigFile).TriggerRollback(rc.Ctx))
}

// classifyRollback treats a refusal while attempts remain as expected: the
// unit runs on every boot and nothing is wrong with the system.
func classifyRollback(err error) error {
	if cerr.Is(err, rb.ErrCounterNotExhausted) {
		return gb_err.NewExpectedError(err)
	}
	return err
}
