// pkg/shared/vars.go

package shared

import (
	"sync/atomic"

	"go.uber.org/zap"
)

// Version is overridden at build time with -ldflags "-X".
var Version = "0.16.0"

var syncedAlready atomic.Bool

// SafeSync flushes the global zap logger once per process.
func SafeSync() {
	if syncedAlready.Swap(true) {
		return
	}
	_ = zap.L().Sync()
}
