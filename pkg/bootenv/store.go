// pkg/bootenv/store.go

package bootenv

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/gb_err"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/mountguard"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/google/renameio/v2"
	"github.com/hashicorp/go-multierror"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Remounter makes the partition holding the environment block writable.
type Remounter interface {
	RemountRW(ctx context.Context) (mountguard.Transition, error)
	RemountRO(ctx context.Context) (mountguard.Transition, error)
}

// Store persists boot status and the boot counter in grubenv.
type Store struct {
	EnvPath string
	// Guard may be nil when the block does not live on a read-only mount.
	Guard Remounter
}

// NewStore binds the store to /boot/grub2/grubenv on the /boot mount.
func NewStore() *Store {
	return &Store{
		EnvPath: shared.GrubEnvPath,
		Guard:   mountguard.New(shared.BootMountPoint),
	}
}

// SetBootStatus records the verdict for the bootloader. Success also clears
// the boot counter.
func (s *Store) SetBootStatus(ctx context.Context, success bool) error {
	return s.mutate(ctx, "set_boot_status", func(env *Env) bool {
		if success {
			changed := env.Set(KeyBootSuccess, "1")
			return env.Unset(KeyBootCounter) || changed
		}
		return env.Set(KeyBootSuccess, "0")
	})
}

// SetBootCounter starts the countdown at maxAttempts. A counter that is already set
// belongs to the bootloader and is left alone.
func (s *Store) SetBootCounter(ctx context.Context, maxAttempts uint16) error {
	return s.mutate(ctx, "set_boot_counter", func(env *Env) bool {
		if _, ok := env.Get(KeyBootCounter); ok {
			otelzap.Ctx(ctx).Info("boot_counter already set, leaving it", zap.Uint16("max", maxAttempts))
			return false
		}
		return env.Set(KeyBootCounter, strconv.FormatUint(uint64(maxAttempts), 10))
	})
}

func (s *Store) UnsetBootCounter(ctx context.Context) error {
	return s.mutate(ctx, "unset_boot_counter", func(env *Env) bool {
		return env.Unset(KeyBootCounter)
	})
}

// BootCounter returns the counter; ok is false when it is unset.
func (s *Store) BootCounter(ctx context.Context) (value int, ok bool, err error) {
	env, err := s.load()
	if err != nil {
		return 0, false, err
	}
	raw, ok := env.Get(KeyBootCounter)
	if !ok {
		return 0, false, nil
	}
	value, err = strconv.Atoi(raw)
	if err != nil {
		return 0, false, cerr.Wrapf(err, "parse %s=%q", KeyBootCounter, raw)
	}
	otelzap.Ctx(ctx).Debug("Read boot counter", zap.Int("boot_counter", value))
	return value, true, nil
}

func (s *Store) load() (*Env, error) {
	data, err := os.ReadFile(s.EnvPath)
	if os.IsNotExist(err) {
		return NewEnv(), nil
	}
	if err != nil {
		return nil, gb_err.NewFilesystemError("cannot read "+s.EnvPath, err,
			"check that the boot partition is mounted")
	}
	env, err := Parse(data)
	if err != nil {
		return nil, cerr.Wrapf(err, "parse %s", s.EnvPath)
	}
	return env, nil
}

func (s *Store) mutate(ctx context.Context, op string, edit func(*Env) bool) error {
	ctx, span := telemetry.Start(ctx, "bootenv."+op, attribute.String("path", s.EnvPath))
	defer span.End()
	logger := otelzap.Ctx(ctx)

	// ASSESS
	env, err := s.load()
	if err != nil {
		return err
	}
	if !edit(env) {
		logger.Debug("grubenv unchanged", zap.String("op", op))
		return nil
	}
	data, err := env.Encode()
	if err != nil {
		return cerr.Wrapf(err, "encode %s", s.EnvPath)
	}
	target, err := resolveWritePath(s.EnvPath)
	if err != nil {
		return cerr.Wrapf(err, "resolve %s", s.EnvPath)
	}
	if target != s.EnvPath {
		logger.Debug("grubenv is a symlink, writing through it", zap.String("target", target))
	}

	// INTERVENE
	var tr mountguard.Transition
	if s.Guard != nil {
		tr, err = s.Guard.RemountRW(ctx)
		if err != nil {
			return cerr.Wrap(err, "make boot partition writable")
		}
	}

	var result *multierror.Error
	if werr := renameio.WriteFile(target, data, shared.FilePermStandard); werr != nil {
		werr = cerr.Wrapf(werr, "write %s", target)
		if cerr.Is(werr, fs.ErrPermission) {
			werr = cerr.WithSecondaryError(
				gb_err.NewPermissionError(target, "write", "run greenboot as root"), werr)
		}
		result = multierror.Append(result, werr)
	}

	// EVALUATE - restore read-only only if we changed it
	if s.Guard != nil && tr.Changed {
		if _, rerr := s.Guard.RemountRO(ctx); rerr != nil {
			result = multierror.Append(result, cerr.Wrap(rerr, "restore boot partition read-only"))
		}
	}

	if err := result.ErrorOrNil(); err != nil {
		span.RecordError(err)
		return err
	}
	logger.Info("Updated grubenv", zap.String("op", op), zap.Strings("keys", env.Keys()))
	return nil
}

// resolveWritePath follows symlinks so the atomic rename replaces the file
// the bootloader reads (often a copy on the ESP) rather than the link. A
// dangling link resolves to its target; a missing plain file to itself.
func resolveWritePath(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err == nil {
		return resolved, nil
	}
	if !cerr.Is(err, fs.ErrNotExist) {
		return "", err
	}
	link, lerr := os.Readlink(path)
	if lerr != nil {
		return path, nil
	}
	if !filepath.IsAbs(link) {
		link = filepath.Join(filepath.Dir(path), link)
	}
	return link, nil
}
