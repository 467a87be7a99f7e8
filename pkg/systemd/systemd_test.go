package systemd

import (
	"context"
	"errors"
	"testing"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute/executetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap/zaptest"
)

type mockCounter struct {
	mock.Mock
}

func (m *mockCounter) BootCounter(ctx context.Context) (int, bool, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func setupLogger(t *testing.T) context.Context {
	t.Helper()
	otelzap.ReplaceGlobals(otelzap.New(zaptest.NewLogger(t)))
	return context.Background()
}

func TestRebooter_Request(t *testing.T) {
	tests := []struct {
		name       string
		immediate  bool
		counter    int
		counterSet bool
		counterErr error
		wantErr    error
		wantReboot bool
	}{
		{name: "attempts left", counter: 2, counterSet: true, wantReboot: true},
		{name: "countdown ended", counter: 0, counterSet: true, wantErr: ErrCountdownEnded},
		{name: "negative counter", counter: -1, counterSet: true, wantErr: ErrCountdownEnded},
		{name: "counter unset", wantErr: ErrCountdownEnded},
		{name: "immediate ignores counter", immediate: true, wantReboot: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupLogger(t)
			fake := executetest.NewFakeRunner()
			counter := &mockCounter{}
			if !tt.immediate {
				counter.On("BootCounter", mock.Anything).Return(tt.counter, tt.counterSet, tt.counterErr)
			}

			err := NewRebooter(fake, counter).Request(ctx, tt.immediate)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			} else {
				require.NoError(t, err)
			}
			if tt.wantReboot {
				assert.Equal(t, []string{"systemctl reboot"}, fake.Commands())
			} else {
				assert.Empty(t, fake.Calls)
			}
			counter.AssertExpectations(t)
		})
	}
}

func TestRebooter_CounterReadError(t *testing.T) {
	ctx := setupLogger(t)
	counter := &mockCounter{}
	counter.On("BootCounter", mock.Anything).Return(0, false, errors.New("parse boot_counter"))

	fake := executetest.NewFakeRunner()
	err := NewRebooter(fake, counter).Request(ctx, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse boot_counter")
	assert.Empty(t, fake.Calls)
}

func TestRebooter_SystemctlFails(t *testing.T) {
	ctx := setupLogger(t)
	fake := executetest.NewFakeRunner()
	fake.On(execute.Result{ExitCode: 1, Stderr: "Access denied"}, "systemctl", "reboot")

	err := NewRebooter(fake, &mockCounter{}).Request(ctx, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "systemctl reboot failed")
}

func TestRollbackJournal(t *testing.T) {
	journalArgs := []string{"-b", "-1", "-u", "greenboot-rollback.service", "--no-pager"}
	tests := []struct {
		name    string
		result  execute.Result
		spawn   error
		want    bool
		wantErr bool
	}{
		{name: "marker present", result: execute.Result{Stdout: "Oct 19 greenboot[1]: Rollback successful\n"}, want: true},
		{name: "marker absent", result: execute.Result{Stdout: "Oct 19 greenboot[1]: Rollback not initiated\n"}},
		{name: "empty output", result: execute.Result{Stdout: "  \n"}},
		{name: "no previous boot", result: execute.Result{ExitCode: 1, Stderr: "Specifying boot ID or boot offset has no effect"}},
		{name: "journalctl missing", spawn: errors.New("executable file not found"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := setupLogger(t)
			fake := executetest.NewFakeRunner()
			if tt.spawn != nil {
				fake.Fail(tt.spawn, "journalctl", journalArgs...)
			} else {
				fake.On(tt.result, "journalctl", journalArgs...)
			}

			got, err := NewRollbackJournal(fake).PreviousBootRolledBack(ctx)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
