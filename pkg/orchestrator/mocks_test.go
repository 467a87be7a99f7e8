package orchestrator

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/config"
	"github.com/stretchr/testify/mock"
)

type mockDiagnostics struct{ mock.Mock }

func (m *mockDiagnostics) RunDiagnostics(ctx context.Context, skip []string) ([]string, error) {
	args := m.Called(ctx, skip)
	missing, _ := args.Get(0).([]string)
	return missing, args.Error(1)
}

func (m *mockDiagnostics) RunGreen(ctx context.Context) error { return m.Called(ctx).Error(0) }
func (m *mockDiagnostics) RunRed(ctx context.Context) error   { return m.Called(ctx).Error(0) }

type mockMotd struct{ mock.Mock }

func (m *mockMotd) Publish(ctx context.Context, message string) error {
	return m.Called(ctx, message).Error(0)
}

type mockRebooter struct{ mock.Mock }

func (m *mockRebooter) Request(ctx context.Context, immediate bool) error {
	return m.Called(ctx, immediate).Error(0)
}

type mockRollback struct{ mock.Mock }

func (m *mockRollback) Invoke(ctx context.Context) error { return m.Called(ctx).Error(0) }

type mockBoot struct{ mock.Mock }

func (m *mockBoot) SetBootStatus(ctx context.Context, success bool) error {
	return m.Called(ctx, success).Error(0)
}

func (m *mockBoot) SetBootCounter(ctx context.Context, maxAttempts uint16) error {
	return m.Called(ctx, maxAttempts).Error(0)
}

func (m *mockBoot) UnsetBootCounter(ctx context.Context) error { return m.Called(ctx).Error(0) }

type mockRollbackChecker struct{ mock.Mock }

func (m *mockRollbackChecker) PreviousBootRolledBack(ctx context.Context) (bool, error) {
	args := m.Called(ctx)
	return args.Bool(0), args.Error(1)
}

type staticConfig config.BootHealthConfig

func (s staticConfig) Load(context.Context) config.BootHealthConfig {
	return config.BootHealthConfig(s)
}

type mocks struct {
	diag      *mockDiagnostics
	motd      *mockMotd
	reboot    *mockRebooter
	rollback  *mockRollback
	boot      *mockBoot
	rollbacks *mockRollbackChecker
}

func (m *mocks) assertExpectations(t mock.TestingT) {
	m.diag.AssertExpectations(t)
	m.motd.AssertExpectations(t)
	m.reboot.AssertExpectations(t)
	m.rollback.AssertExpectations(t)
	m.boot.AssertExpectations(t)
	m.rollbacks.AssertExpectations(t)
}

func newMocked(cfg config.BootHealthConfig) (*Orchestrator, *mocks) {
	m := &mocks{
		diag:      &mockDiagnostics{},
		motd:      &mockMotd{},
		reboot:    &mockRebooter{},
		rollback:  &mockRollback{},
		boot:      &mockBoot{},
		rollbacks: &mockRollbackChecker{},
	}
	o := &Orchestrator{
		Config:      staticConfig(cfg),
		Diagnostics: m.diag,
		Motd:        m.motd,
		Rebooter:    m.reboot,
		Rollbacker:  m.rollback,
		Boot:        m.boot,
		Rollbacks:   m.rollbacks,
	}
	return o, m
}
