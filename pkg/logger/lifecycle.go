/* pkg/logger/lifecycle.go */

package logger

import (
	"github.com/google/uuid"
)

// GenerateTraceID returns a short 8-char id tagging one command run.
func GenerateTraceID() string {
	return uuid.New().String()[:8]
}
