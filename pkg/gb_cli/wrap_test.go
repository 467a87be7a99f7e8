package gb_cli

import (
	"errors"
	"testing"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_err"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_io"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap/zaptest"
)

func TestWrap(t *testing.T) {
	sentinel := errors.New("command failed")

	tests := []struct {
		name     string
		fn       func(rc *gb_io.RuntimeContext, cmd *cobra.Command, args []string) error
		wantErr  bool
		errorMsg string
	}{
		{
			name: "successful execution",
			fn: func(rc *gb_io.RuntimeContext, cmd *cobra.Command, args []string) error {
				assert.NotNil(t, rc.Ctx)
				assert.NotNil(t, rc.Log)
				assert.Equal(t, "health-check", rc.Command)
				assert.NotEmpty(t, rc.RunID)
				return nil
			},
		},
		{
			name: "command returns error",
			fn: func(rc *gb_io.RuntimeContext, cmd *cobra.Command, args []string) error {
				return sentinel
			},
			wantErr:  true,
			errorMsg: "command failed",
		},
		{
			name: "panic recovery",
			fn: func(rc *gb_io.RuntimeContext, cmd *cobra.Command, args []string) error {
				panic("test panic")
			},
			wantErr:  true,
			errorMsg: "panic: test panic",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			otelzap.ReplaceGlobals(otelzap.New(zaptest.NewLogger(t)))
			cmd := &cobra.Command{Use: "health-check"}

			err := Wrap(tt.fn)(cmd, nil)
			if !tt.wantErr {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errorMsg)
		})
	}
}

func TestWrap_PanicIsInternalError(t *testing.T) {
	otelzap.ReplaceGlobals(otelzap.New(zaptest.NewLogger(t)))

	err := Wrap(func(*gb_io.RuntimeContext, *cobra.Command, []string) error {
		panic("boom")
	})(&cobra.Command{Use: "health-check"}, nil)
	require.Error(t, err)
	assert.Equal(t, "panic: boom", err.Error())
	assert.Equal(t, 3, gb_err.GetExitCode(err))
}

func TestWrap_KeepsErrorIdentity(t *testing.T) {
	otelzap.ReplaceGlobals(otelzap.New(zaptest.NewLogger(t)))
	sentinel := errors.New("boom")

	err := Wrap(func(*gb_io.RuntimeContext, *cobra.Command, []string) error {
		return sentinel
	})(&cobra.Command{Use: "rollback"}, nil)
	assert.ErrorIs(t, err, sentinel)
	assert.Equal(t, 1, gb_err.GetExitCode(err))
}

func TestWrap_UserErrorNotWrapped(t *testing.T) {
	otelzap.ReplaceGlobals(otelzap.New(zaptest.NewLogger(t)))
	userErr := gb_err.NewExpectedError(errors.New("bad input"))

	err := Wrap(func(*gb_io.RuntimeContext, *cobra.Command, []string) error {
		return userErr
	})(&cobra.Command{Use: "rollback"}, nil)
	assert.Same(t, userErr, err)
	assert.Equal(t, 2, gb_err.GetExitCode(err))
}
