package logger

import (
	"sync"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

var (
	mu  sync.Mutex
	log *zap.Logger
)

// Init builds the process logger for the given --log-level value and installs
// it as both the zap and otelzap global. An invalid level falls back to info
// and the parse error is returned so the caller can report it.
func Init(level string) error {
	lvl, err := ParseLevel(level)

	mu.Lock()
	defer mu.Unlock()

	log = NewConsoleLogger(lvl)
	zap.ReplaceGlobals(log)
	otelzap.ReplaceGlobals(otelzap.New(log))
	return err
}

// L returns the process logger, initialising it at info level on first use.
func L() *zap.Logger {
	mu.Lock()
	l := log
	mu.Unlock()
	if l == nil {
		_ = Init("info")
		return L()
	}
	return l
}

// Sync flushes any buffered log entries. Should be called before the application exits.
func Sync() error {
	mu.Lock()
	defer mu.Unlock()
	if log == nil {
		return nil
	}
	return log.Sync()
}
