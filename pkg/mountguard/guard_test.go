package mountguard

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	cerr "github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap/zaptest"
	"golang.org/x/sys/unix"
)

type stringTable struct {
	content string
	err     error
}

func (s *stringTable) ReadTable(context.Context) (io.ReadCloser, error) {
	if s.err != nil {
		return nil, s.err
	}
	return io.NopCloser(strings.NewReader(s.content)), nil
}

type recordingMounter struct {
	calls []uintptr
	err   error
	// table is rewritten after a successful call so state follows the syscall
	table *stringTable
	after string
}

func (m *recordingMounter) Remount(_ string, flags uintptr) error {
	m.calls = append(m.calls, flags)
	if m.err != nil {
		return m.err
	}
	if m.table != nil && m.after != "" {
		m.table.content = m.after
	}
	return nil
}

const (
	bootRO = "/dev/sda2 /boot ext4 ro,relatime,seclabel 0 0\n"
	bootRW = "/dev/sda2 /boot ext4 rw,relatime,seclabel 0 0\n"
	rootFS = "/dev/mapper/root / xfs rw,relatime 0 0\n"
)

func newGuard(t *testing.T, table string) (*Guard, *stringTable, *recordingMounter) {
	t.Helper()
	otelzap.ReplaceGlobals(otelzap.New(zaptest.NewLogger(t)))
	st := &stringTable{content: table}
	m := &recordingMounter{table: st}
	return &Guard{MountPoint: "/boot", Table: st, Mounter: m}, st, m
}

func TestIsMountedRW(t *testing.T) {
	tests := []struct {
		name    string
		table   string
		want    bool
		wantErr bool
	}{
		{name: "read-write", table: rootFS + bootRW, want: true},
		{name: "read-only", table: rootFS + bootRO, want: false},
		{name: "first record wins", table: bootRO + bootRW, want: false},
		{name: "ro substring beats rw", table: "/dev/sda2 /boot ext4 rw,errors=remount-ro 0 0\n", want: false},
		{name: "no options field", table: "/dev/sda2 /boot\n", want: false},
		{name: "not mounted", table: rootFS, wantErr: true},
		{name: "empty table", table: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, _, _ := newGuard(t, tt.table)
			got, err := g.IsMountedRW(context.Background())
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, cerr.Is(err, ErrMountInfo))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestIsMountedRW_UnreadableTable(t *testing.T) {
	g, st, _ := newGuard(t, "")
	st.err = os.ErrPermission
	_, err := g.IsMountedRW(context.Background())
	require.Error(t, err)
	assert.True(t, cerr.Is(err, ErrMountInfo))
}

func TestRemountRO_AlreadyReadOnlyIsNoop(t *testing.T) {
	g, _, m := newGuard(t, bootRO)
	tr, err := g.RemountRO(context.Background())
	require.NoError(t, err)
	assert.False(t, tr.Changed)
	assert.Empty(t, m.calls)
}

func TestRemountRW_AlreadyReadWriteIsNoop(t *testing.T) {
	g, _, m := newGuard(t, bootRW)
	tr, err := g.RemountRW(context.Background())
	require.NoError(t, err)
	assert.False(t, tr.Changed)
	assert.Empty(t, m.calls)
}

func TestRemountRW_Transition(t *testing.T) {
	g, _, m := newGuard(t, bootRO)
	m.after = bootRW

	tr, err := g.RemountRW(context.Background())
	require.NoError(t, err)
	assert.True(t, tr.Changed)
	assert.Equal(t, ReadOnly, tr.From)
	assert.Equal(t, ReadWrite, tr.To)
	require.Len(t, m.calls, 1)
	assert.Equal(t, uintptr(unix.MS_REMOUNT|unix.MS_BIND), m.calls[0])

	// second call sees the new state
	tr, err = g.RemountRW(context.Background())
	require.NoError(t, err)
	assert.False(t, tr.Changed)
	assert.Len(t, m.calls, 1)
}

func TestRemountRO_Transition(t *testing.T) {
	g, _, m := newGuard(t, bootRW)
	m.after = bootRO

	tr, err := g.RemountRO(context.Background())
	require.NoError(t, err)
	assert.True(t, tr.Changed)
	require.Len(t, m.calls, 1)
	assert.Equal(t, uintptr(unix.MS_REMOUNT|unix.MS_RDONLY), m.calls[0])
}

func TestRemount_SyscallFailure(t *testing.T) {
	g, _, m := newGuard(t, bootRW)
	m.err = unix.EBUSY

	tr, err := g.RemountRO(context.Background())
	require.Error(t, err)
	assert.False(t, tr.Changed)

	var rerr *RemountError
	require.True(t, errors.As(err, &rerr))
	assert.Equal(t, "/boot", rerr.MountPoint)
	assert.Equal(t, ReadOnly, rerr.Target)
	assert.ErrorIs(t, err, unix.EBUSY)
}

func TestRemount_MissingMountPoint(t *testing.T) {
	g, _, m := newGuard(t, rootFS)
	_, err := g.RemountRW(context.Background())
	require.Error(t, err)
	assert.True(t, cerr.Is(err, ErrMountInfo))
	assert.Empty(t, m.calls)
}

func TestFileTable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mounts")
	require.NoError(t, os.WriteFile(path, []byte(rootFS+bootRW), 0o644))

	otelzap.ReplaceGlobals(otelzap.New(zaptest.NewLogger(t)))
	g := &Guard{MountPoint: "/boot", Table: &FileTable{Path: path}, Mounter: &recordingMounter{}}
	rw, err := g.IsMountedRW(context.Background())
	require.NoError(t, err)
	assert.True(t, rw)

	g.Table = &FileTable{Path: filepath.Join(t.TempDir(), "absent")}
	_, err = g.IsMountedRW(context.Background())
	assert.True(t, cerr.Is(err, ErrMountInfo))
}

func TestNew_Defaults(t *testing.T) {
	g := New("")
	assert.Equal(t, "/boot", g.MountPoint)
	assert.Equal(t, "/proc/mounts", g.Table.(*FileTable).Path)
	assert.IsType(t, UnixMounter{}, g.Mounter)
}
