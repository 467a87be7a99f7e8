package diagnostics

import (
	"context"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// TierRunner executes the artifacts of one tier directory.
type TierRunner struct {
	Catalog *Catalog
	Runner  execute.Runner
}

func NewTierRunner(runner execute.Runner) *TierRunner {
	return &TierRunner{Catalog: NewCatalog(), Runner: runner}
}

// Run executes every artifact in dir that is not in skip. Failures are
// collected; for the required tier the first failure ends the directory.
// A missing directory is an empty result.
func (tr *TierRunner) Run(ctx context.Context, tier Tier, dir string, skip SkipList) TierResult {
	logger := otelzap.Ctx(ctx).WithOptions(zap.Fields(zap.String("tier", string(tier)), zap.String("dir", dir)))
	var result TierResult

	entries, err := tr.Catalog.List(ctx, dir)
	if err != nil {
		if cerr.Is(err, ErrDirMissing) {
			logger.Debug("Tier directory not present")
			return result
		}
		logger.Error("Cannot enumerate tier directory", zap.Error(err))
		result.Errors = append(result.Errors, &ScriptError{
			Kind: FailureEnumerate,
			Tier: tier,
			Path: dir,
			Err:  err,
		})
		return result
	}

	for _, entry := range entries {
		if skip.Contains(entry.Name) {
			logger.Info("Skipping disabled script", zap.String("name", entry.Name))
			result.Skipped = append(result.Skipped, entry.Name)
			continue
		}

		if failure := tr.runEntry(ctx, tier, entry); failure != nil {
			result.Errors = append(result.Errors, failure)
			if tier.FailFast() {
				logger.Warn("Required check failed, not running the rest of this directory",
					zap.String("path", entry.Path))
				break
			}
		}
	}

	return result
}

func (tr *TierRunner) runEntry(ctx context.Context, tier Tier, entry ScriptEntry) *ScriptError {
	ctx, span := telemetry.Start(ctx, "diagnostics.runEntry",
		attribute.String("tier", string(tier)),
		attribute.String("path", entry.Path),
		attribute.String("kind", entry.Kind.String()),
	)
	defer span.End()

	logger := otelzap.Ctx(ctx)
	logger.Info("Running check",
		zap.String("tier", string(tier)),
		zap.String("path", entry.Path),
		zap.String("kind", entry.Kind.String()))

	opts := execute.Options{Command: entry.Path}
	if entry.Kind == KindScript {
		opts = execute.Options{
			Command: shared.ScriptInterpreter,
			Args:    []string{shared.ScriptInterpreterFlag, entry.Path},
		}
	}

	res, err := tr.Runner.Exec(ctx, opts)
	if err != nil {
		span.RecordError(err)
		logger.Error("Check could not be started", zap.String("path", entry.Path), zap.Error(err))
		return &ScriptError{Kind: FailureSpawn, Tier: tier, Path: entry.Path, Err: err}
	}

	if !res.Success() {
		span.SetAttributes(attribute.Int("exit_code", res.ExitCode))
		logger.Error("Check failed",
			zap.String("path", entry.Path),
			zap.Int("exit_code", res.ExitCode),
			zap.String("stdout", res.Stdout),
			zap.String("stderr", res.Stderr))
		return &ScriptError{
			Kind:     FailureExit,
			Tier:     tier,
			Path:     entry.Path,
			ExitCode: res.ExitCode,
			Stdout:   res.Stdout,
			Stderr:   res.Stderr,
		}
	}

	logger.Info("Check passed",
		zap.String("tier", string(tier)),
		zap.String("path", entry.Path),
		zap.Duration("duration", res.Duration))
	return nil
}
