/* pkg/logger/config.go */

package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap/zapcore"
)

// LevelOff disables logging entirely. It sits above every zap level.
const LevelOff = zapcore.FatalLevel + 1

// LevelNames are the values accepted by --log-level, lowest first.
var LevelNames = []string{"trace", "debug", "info", "warn", "error", "off"}

// ParseLevel maps a --log-level value to a zap level.
// zap has no trace level, so trace is treated as debug.
func ParseLevel(level string) (zapcore.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug":
		return zapcore.DebugLevel, nil
	case "", "info":
		return zapcore.InfoLevel, nil
	case "warn":
		return zapcore.WarnLevel, nil
	case "error":
		return zapcore.ErrorLevel, nil
	case "off":
		return LevelOff, nil
	default:
		return zapcore.InfoLevel, fmt.Errorf("invalid log level %q, expected one of %s",
			level, strings.Join(LevelNames, ", "))
	}
}
