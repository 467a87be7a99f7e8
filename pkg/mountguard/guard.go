// pkg/mountguard/guard.go

package mountguard

import (
	"context"
	"fmt"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/telemetry"
	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// ErrMountInfo means the mount state could not be determined. The state is
// never guessed.
var ErrMountInfo = cerr.New("failed to read mount info")

// RemountError is a failed remount syscall.
type RemountError struct {
	MountPoint string
	Target     Mode
	Err        error
}

func (e *RemountError) Error() string {
	return fmt.Sprintf("failed to remount %s %s: %v", e.MountPoint, e.Target, e.Err)
}

func (e *RemountError) Unwrap() error { return e.Err }

type Mode int

const (
	ReadOnly Mode = iota
	ReadWrite
)

func (m Mode) String() string {
	if m == ReadWrite {
		return "read-write"
	}
	return "read-only"
}

// Transition reports what a remount call did. Changed is false when the
// partition was already in the requested mode and no syscall was issued.
type Transition struct {
	MountPoint string
	From       Mode
	To         Mode
	Changed    bool
}

// Mounter issues the remount syscall.
type Mounter interface {
	Remount(target string, flags uintptr) error
}

// UnixMounter calls mount(2).
type UnixMounter struct{}

func (UnixMounter) Remount(target string, flags uintptr) error {
	return unix.Mount("", target, "", flags, "")
}

// Guard flips a single mount point between read-only and read-write.
type Guard struct {
	MountPoint string
	Table      TableReader
	Mounter    Mounter
}

// New returns a guard for mountPoint backed by /proc/mounts and mount(2).
func New(mountPoint string) *Guard {
	if mountPoint == "" {
		mountPoint = shared.BootMountPoint
	}
	return &Guard{
		MountPoint: mountPoint,
		Table:      NewFileTable(),
		Mounter:    UnixMounter{},
	}
}

// IsMountedRW inspects the first mount table record for the mount point.
func (g *Guard) IsMountedRW(ctx context.Context) (bool, error) {
	rc, err := g.Table.ReadTable(ctx)
	if err != nil {
		return false, cerr.Mark(cerr.Wrap(err, "open mount table"), ErrMountInfo)
	}
	defer rc.Close()

	rec, err := findRecord(rc, g.MountPoint)
	if err != nil {
		return false, err
	}
	return rec.ReadWrite(), nil
}

// RemountRO remounts read-only with MS_REMOUNT|MS_RDONLY.
func (g *Guard) RemountRO(ctx context.Context) (Transition, error) {
	return g.remount(ctx, ReadOnly, unix.MS_REMOUNT|unix.MS_RDONLY)
}

// RemountRW remounts read-write with MS_REMOUNT|MS_BIND.
func (g *Guard) RemountRW(ctx context.Context) (Transition, error) {
	return g.remount(ctx, ReadWrite, unix.MS_REMOUNT|unix.MS_BIND)
}

func (g *Guard) remount(ctx context.Context, target Mode, flags uintptr) (Transition, error) {
	ctx, span := telemetry.Start(ctx, "mountguard.remount",
		attribute.String("mount_point", g.MountPoint),
		attribute.String("target", target.String()),
	)
	defer span.End()
	logger := otelzap.Ctx(ctx)

	// ASSESS
	rw, err := g.IsMountedRW(ctx)
	if err != nil {
		span.RecordError(err)
		return Transition{}, err
	}
	current := ReadOnly
	if rw {
		current = ReadWrite
	}
	tr := Transition{MountPoint: g.MountPoint, From: current, To: target}

	if current == target {
		logger.Info("Mount point already in requested mode",
			zap.String("mount_point", g.MountPoint),
			zap.Stringer("mode", target))
		return tr, nil
	}

	// INTERVENE
	logger.Info("Remounting",
		zap.String("mount_point", g.MountPoint),
		zap.Stringer("target", target))
	if err := g.Mounter.Remount(g.MountPoint, flags); err != nil {
		logger.Warn("Remount failed",
			zap.String("mount_point", g.MountPoint),
			zap.Stringer("target", target),
			zap.Error(err))
		rerr := &RemountError{MountPoint: g.MountPoint, Target: target, Err: err}
		span.RecordError(rerr)
		return tr, rerr
	}

	// EVALUATE
	tr.Changed = true
	return tr, nil
}
