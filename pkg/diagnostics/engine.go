package diagnostics

import (
	"context"
	"os"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// Engine runs the tiers over every install root and produces the verdict.
type Engine struct {
	Roots []string
	Tiers *TierRunner
}

// NewEngine uses shared.InstallRoots when roots is empty.
func NewEngine(runner execute.Runner, roots ...string) *Engine {
	if len(roots) == 0 {
		roots = shared.InstallRoots
	}
	return &Engine{Roots: roots, Tiers: NewTierRunner(runner)}
}

// RunDiagnostics runs required.d then wanted.d of every root. It returns the
// names from skip that were never found on disk.
//
// A root without required.d is skipped with a warning; if no root has one the
// run fails with ErrNoRequiredDir. The first root whose required tier
// reports a failure aborts everything with ErrRequiredFailed. Wanted
// failures are logged only.
func (e *Engine) RunDiagnostics(ctx context.Context, skip []string) ([]string, error) {
	ctx, span := telemetry.Start(ctx, "diagnostics.RunDiagnostics")
	defer span.End()

	logger := otelzap.Ctx(ctx)
	skipList := NewSkipList(skip...)
	seen := make(map[string]struct{})

	// ASSESS / INTERVENE - required tier, fail fast
	found := false
	for _, root := range e.Roots {
		dir := TierRequired.Dir(root)
		if !isDir(dir) {
			logger.Warn("Skipping root without required checks", zap.String("dir", dir))
			continue
		}
		found = true

		result := e.Tiers.Run(ctx, TierRequired, dir, skipList)
		markSeen(seen, result.Skipped)

		if len(result.Errors) > 0 {
			logger.Error("Required script error", zap.String("dir", dir), zap.Error(result.Err()))
			span.RecordError(ErrRequiredFailed)
			return nil, cerr.WithSecondaryError(ErrRequiredFailed, result.Err())
		}
	}

	if !found {
		return nil, ErrNoRequiredDir
	}

	// INTERVENE - wanted tier, never escalates
	for _, root := range e.Roots {
		dir := TierWanted.Dir(root)
		result := e.Tiers.Run(ctx, TierWanted, dir, skipList)
		markSeen(seen, result.Skipped)

		if len(result.Errors) > 0 {
			logger.Warn("Wanted script runner error", zap.String("dir", dir), zap.Error(result.Err()))
		}
	}

	// EVALUATE - report skip entries that matched nothing
	missing := missingDisabled(skip, seen)
	if len(missing) > 0 {
		logger.Warn("The following disabled scripts were not found in any directory",
			zap.Strings("missing", missing))
	}

	return missing, nil
}

// RunGreen runs green.d of every root. Every artifact runs; the returned
// error aggregates the failures.
func (e *Engine) RunGreen(ctx context.Context) error {
	return e.runHooks(ctx, TierGreen)
}

// RunRed runs red.d of every root, see RunGreen.
func (e *Engine) RunRed(ctx context.Context) error {
	return e.runHooks(ctx, TierRed)
}

func (e *Engine) runHooks(ctx context.Context, tier Tier) error {
	ctx, span := telemetry.Start(ctx, "diagnostics.runHooks")
	defer span.End()

	var result *multierror.Error
	for _, root := range e.Roots {
		r := e.Tiers.Run(ctx, tier, tier.Dir(root), nil)
		for _, failure := range r.Errors {
			result = multierror.Append(result, failure)
		}
	}
	return result.ErrorOrNil()
}

func markSeen(seen map[string]struct{}, names []string) {
	for _, n := range names {
		seen[n] = struct{}{}
	}
}

// missingDisabled keeps the caller's order and drops duplicates.
func missingDisabled(skip []string, seen map[string]struct{}) []string {
	missing := []string{}
	dup := make(map[string]struct{})
	for _, n := range skip {
		if n == "" {
			continue
		}
		if _, ok := dup[n]; ok {
			continue
		}
		dup[n] = struct{}{}
		if _, ok := seen[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
