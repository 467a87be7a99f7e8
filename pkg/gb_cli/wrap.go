// pkg/gb_cli/wrap.go

package gb_cli

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_err"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_io"
	cerr "github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
)

// Wrap gives a command body a RuntimeContext and turns panics into errors.
func Wrap(fn func(rc *gb_io.RuntimeContext, cmd *cobra.Command, args []string) error) func(cmd *cobra.Command, args []string) error {
	return func(cmd *cobra.Command, args []string) (err error) {
		parent := cmd.Context()
		if parent == nil {
			parent = context.Background()
		}
		ctx := gb_io.NewContext(parent, cmd.Name())
		defer ctx.End(&err)
		defer ctx.HandlePanic(&err)

		gb_io.LogRuntimeExecutionContext(ctx)

		err = fn(ctx, cmd, args)
		if err != nil && !gb_err.IsExpectedUserError(err) {
			err = cerr.WithStack(err)
		}
		return err
	}
}
