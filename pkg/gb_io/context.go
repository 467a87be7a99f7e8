// pkg/gb_io/context.go

package gb_io

import (
	"context"
	"fmt"
	"os"
	"os/user"
	"runtime"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_err"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

type RuntimeContext struct {
	Ctx        context.Context
	Log        *zap.Logger
	Timestamp  time.Time
	Span       trace.Span
	Command    string
	Component  string
	RunID      string
	Attributes map[string]string
}

// NewContext sets up tracing and a scoped logger for one command invocation.
func NewContext(parent context.Context, cmdName string) *RuntimeContext {
	if parent == nil {
		parent = context.Background()
	}
	ctx, span := telemetry.Start(parent, cmdName)
	runID := logger.GenerateTraceID()

	comp, _ := resolveCallContext(2)
	log := otelzap.L().Logger.With(
		zap.String("component", comp),
		zap.String("command", cmdName),
		zap.String("run_id", runID),
	)

	return &RuntimeContext{
		Ctx:        ctx,
		Span:       span,
		Log:        log,
		Timestamp:  time.Now(),
		Component:  comp,
		Command:    cmdName,
		RunID:      runID,
		Attributes: make(map[string]string),
	}
}

// HandlePanic recovers panics, logs them, and converts them to an internal
// error (exit code 3). It must be deferred directly.
func (rc *RuntimeContext) HandlePanic(errPtr *error) {
	if r := recover(); r != nil {
		msg := fmt.Sprintf("panic: %v", r)
		*errPtr = gb_err.NewInternalError(msg, cerr.AssertionFailedf("%s", msg))
		rc.Log.Error("Panic recovered", zap.Any("panic", r))
	}
}

// End logs outcome, records span attributes, and flushes.
func (rc *RuntimeContext) End(errPtr *error) {
	defer rc.Span.End()

	var err error
	if errPtr != nil {
		err = *errPtr
	}
	duration := time.Since(rc.Timestamp)
	success := err == nil

	if success {
		rc.Log.Info("Command completed", zap.Duration("duration", duration))
	} else {
		rc.Log.Error("Command failed", zap.Duration("duration", duration), zap.Error(err))
	}

	attrs := []attribute.KeyValue{
		attribute.Bool("success", success),
		attribute.Int64("duration_ms", duration.Milliseconds()),
		attribute.String("os", runtime.GOOS),
		attribute.String("args", telemetry.TruncateArgs(os.Args[1:])),
		attribute.String("version", shared.Version),
		attribute.String("run_id", rc.RunID),
		attribute.String("error_type", classifyError(err)),
	}
	for k, v := range rc.Attributes {
		attrs = append(attrs, attribute.String(k, v))
	}
	rc.Span.SetAttributes(attrs...)
	if err != nil {
		rc.Span.RecordError(err)
	}

	shared.SafeSync()
}

// LogRuntimeExecutionContext records who is running greenboot; remounting
// /boot and editing grubenv need root.
func LogRuntimeExecutionContext(rc *RuntimeContext) {
	currentUser, err := user.Current()
	if err != nil {
		rc.Log.Warn("Failed to get current user", zap.Error(err))
	} else {
		rc.Log.Debug("User + UID/GID context",
			zap.String("username", currentUser.Username),
			zap.Int("effective_uid", os.Geteuid()),
			zap.Int("effective_gid", os.Getegid()),
		)
	}

	if os.Geteuid() != 0 {
		rc.Log.Warn("greenboot is not running as root; boot partition updates will likely fail")
	}

	if execPath, err := os.Executable(); err == nil {
		rc.Log.Debug("Executing binary", zap.String("path", execPath))
	}
}

func resolveCallContext(skip int) (component, action string) {
	pc, file, _, ok := runtime.Caller(skip)
	if !ok {
		return "unknown", "unknown"
	}
	parts := strings.Split(file, "/")
	if len(parts) >= 2 {
		component = parts[len(parts)-2]
	} else {
		component = strings.TrimSuffix(parts[0], ".go")
	}
	if fn := runtime.FuncForPC(pc); fn != nil {
		fields := strings.Split(fn.Name(), ".")
		action = fields[len(fields)-1]
	} else {
		action = "unknown"
	}
	return
}

func classifyError(err error) string {
	if err == nil {
		return ""
	}
	if gb_err.IsExpectedUserError(err) {
		return "user"
	}
	return "system"
}
