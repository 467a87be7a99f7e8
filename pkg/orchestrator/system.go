// pkg/orchestrator/system.go
package orchestrator

import (
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/bootenv"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/config"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/diagnostics"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/motd"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/rollback"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/systemd"
)

// NewSystem wires the orchestrator to the real machine: child processes,
// /boot/grub2/grubenv, /etc/motd.d and systemd.
func NewSystem(configPath string) *Orchestrator {
	runner := execute.NewRunner()
	store := bootenv.NewStore()
	return &Orchestrator{
		Config:      config.NewLoader(configPath),
		Diagnostics: diagnostics.NewEngine(runner),
		Motd:        motd.NewPublisher(),
		Rebooter:    systemd.NewRebooter(runner, store),
		Rollbacker:  rollback.NewDeployer(runner, store),
		Boot:        store,
		Rollbacks:   systemd.NewRollbackJournal(runner),
	}
}
