// pkg/execute/execute.go

package execute

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_err"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Options describes a single child process.
type Options struct {
	Command string
	Args    []string
	Dir     string
	// Timeout bounds the process; zero means it may run forever.
	Timeout time.Duration
}

// Result is what a finished process left behind. A non-zero ExitCode is not
// an error at this layer.
type Result struct {
	ExitCode int
	Stdout   string
	Stderr   string
	Duration time.Duration
}

// Success reports a zero exit status.
func (r Result) Success() bool {
	return r.ExitCode == 0
}

// Runner spawns child processes. Exec returns an error only when the process
// could not be started or waited for (missing binary, permissions, context).
type Runner interface {
	Exec(ctx context.Context, opts Options) (Result, error)
}

// OSRunner runs real processes with os/exec.
type OSRunner struct{}

// NewRunner returns the os/exec backed runner.
func NewRunner() *OSRunner {
	return &OSRunner{}
}

// Exec runs the command, capturing stdout and stderr separately.
func (OSRunner) Exec(ctx context.Context, opts Options) (Result, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	ctx, span := telemetry.Start(ctx, "execute.Exec",
		attribute.String("command", opts.Command),
		attribute.String("args", telemetry.TruncateArgs(opts.Args)),
	)
	defer span.End()

	logger := otelzap.Ctx(ctx)
	logger.Debug("Starting execution", zap.String("command", CommandLine(opts.Command, opts.Args...)))

	cmd := exec.CommandContext(ctx, opts.Command, opts.Args...)
	if opts.Dir != "" {
		cmd.Dir = opts.Dir
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
	}

	if err != nil {
		var exitErr *exec.ExitError
		if cerr.As(err, &exitErr) && ctx.Err() == nil {
			res.ExitCode = exitErr.ExitCode()
			span.SetAttributes(attribute.Int("exit_code", res.ExitCode))
			return res, nil
		}
		span.RecordError(err)
		return res, cerr.Wrapf(err, "failed to run %s", opts.Command)
	}

	span.SetAttributes(attribute.Int("exit_code", 0))
	return res, nil
}

// Run executes through runner and turns a non-zero exit into an error that
// carries a short summary of the output.
func Run(ctx context.Context, runner Runner, opts Options) (Result, error) {
	logger := otelzap.Ctx(ctx)
	cmdStr := CommandLine(opts.Command, opts.Args...)

	res, err := runner.Exec(ctx, opts)
	if err != nil {
		logger.Error("Execution failed", zap.String("command", cmdStr), zap.Error(err))
		return res, err
	}
	if !res.Success() {
		summary := gb_err.ExtractSummary(res.Stderr+"\n"+res.Stdout, 2)
		logger.Error("Execution failed",
			zap.String("command", cmdStr),
			zap.Int("exit_code", res.ExitCode),
			zap.String("summary", summary))
		return res, fmt.Errorf("%s exited with status %d: %s", cmdStr, res.ExitCode, summary)
	}

	logger.Debug("Execution succeeded", zap.String("command", cmdStr))
	return res, nil
}

// LookPath is swapped out in tests.
var LookPath = exec.LookPath

// CommandLine joins a command and its arguments for logs and error messages.
func CommandLine(command string, args ...string) string {
	if len(args) == 0 {
		return command
	}
	return command + " " + strings.Join(args, " ")
}
