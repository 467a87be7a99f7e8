// pkg/shared/constants.go

package shared

const (
	// GreenbootConfigFile holds GREENBOOT_MAX_BOOT_ATTEMPTS and DISABLED_HEALTHCHECKS.
	GreenbootConfigFile = "/etc/greenboot/greenboot.conf"
	GrubEnvPath         = "/boot/grub2/grubenv"
	MountInfoPath       = "/proc/mounts"
	BootMountPoint      = "/boot"
	MotdPath            = "/etc/motd.d/boot-status"

	TelemetryMarkerFile = "/etc/greenboot/telemetry_on"
	TelemetryDir        = "/var/log/greenboot"

	RollbackServiceUnit = "greenboot-rollback.service"
	RollbackMarker      = "Rollback successful"

	// ScriptInterpreter runs *.sh artifacts; -C sets noclobber.
	ScriptInterpreter     = "bash"
	ScriptInterpreterFlag = "-C"
)

const (
	DefaultMaxBootAttempts uint16 = 3

	ConfigKeyMaxBootAttempts      = "GREENBOOT_MAX_BOOT_ATTEMPTS"
	ConfigKeyDisabledHealthchecks = "DISABLED_HEALTHCHECKS"
)

const (
	DirPermStandard  = 0755
	FilePermStandard = 0644
)

// InstallRoots are searched in order for check/, red.d/ and green.d/.
var InstallRoots = []string{"/usr/lib/greenboot", "/etc/greenboot"}
