/* cmd/root.go */

package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/greenboot/cmd/healthcheck"
	"github.com/CodeMonkeyCybersecurity/greenboot/cmd/rollback"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/cli"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_err"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/telemetry"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

const flagLogLevel = "log-level"

// NewRootCmd builds the greenboot command tree.
func NewRootCmd() *cobra.Command {
	v := cli.NewViper()

	root := &cobra.Command{
		Use:   "greenboot",
		Short: "Generic health checking framework for systemd on image based systems",
		Long: `greenboot runs the health checks installed under /usr/lib/greenboot and
/etc/greenboot after every boot. A failing required check marks the boot as
failed, lets the bootloader count down its remaining attempts and finally
rolls the system back to the previous deployment.`,
		Version:       shared.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup(v)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	root.PersistentFlags().StringP(flagLogLevel, "l", "info",
		fmt.Sprintf("log level (%s)", strings.Join(logger.LevelNames, ", ")))
	if err := cli.BindFlagsToViper(root.PersistentFlags(), v); err != nil {
		cli.Warnf("failed to bind flags: %v", err)
	}

	root.AddCommand(healthcheck.NewCmd(), rollback.NewCmd())
	return root
}

func setup(v *viper.Viper) error {
	level := v.GetString(flagLogLevel)
	if err := cli.OneOf(flagLogLevel, level, logger.LevelNames); err != nil {
		return gb_err.NewValidationError(err.Error())
	}
	if err := logger.Init(level); err != nil {
		return gb_err.NewValidationError(err.Error())
	}
	if err := telemetry.Init("greenboot"); err != nil {
		logger.L().Warn("Telemetry disabled", zap.Error(err))
	}
	return nil
}

// Run executes the command tree with args and returns the process exit code.
func Run(ctx context.Context, args []string) int {
	root := NewRootCmd()
	root.SetArgs(args)

	err := root.ExecuteContext(ctx)

	if serr := telemetry.Shutdown(context.Background()); serr != nil {
		logger.L().Warn("Failed to flush telemetry", zap.Error(serr))
	}
	if err != nil {
		logger.L().Error("greenboot failed", zap.Error(err))
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	_ = logger.Sync()
	return gb_err.GetExitCode(err)
}

// Execute runs greenboot with the process arguments and exits.
func Execute() {
	os.Exit(Run(context.Background(), os.Args[1:]))
}
