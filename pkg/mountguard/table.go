// pkg/mountguard/table.go

package mountguard

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	cerr "github.com/cockroachdb/errors"
)

// TableReader yields the live mount table in /proc/mounts format.
type TableReader interface {
	ReadTable(ctx context.Context) (io.ReadCloser, error)
}

// FileTable reads the mount table from a file, normally /proc/mounts.
type FileTable struct {
	Path string
}

func NewFileTable() *FileTable {
	return &FileTable{Path: shared.MountInfoPath}
}

func (f *FileTable) ReadTable(_ context.Context) (io.ReadCloser, error) {
	return os.Open(f.Path)
}

// Record is one line of the mount table.
type Record struct {
	Device     string
	MountPoint string
	FSType     string
	Options    string
}

// ReadWrite applies the plain substring test: "rw" present and "ro" absent.
// It is not token aware; an option such as "errors=remount-ro" makes the
// record read as read-only.
func (r Record) ReadWrite() bool {
	return strings.Contains(r.Options, "rw") && !strings.Contains(r.Options, "ro")
}

// findRecord returns the first record mounted on mountPoint.
func findRecord(rd io.Reader, mountPoint string) (Record, error) {
	scanner := bufio.NewScanner(rd)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || fields[1] != mountPoint {
			continue
		}
		rec := Record{Device: fields[0], MountPoint: fields[1]}
		if len(fields) > 2 {
			rec.FSType = fields[2]
		}
		if len(fields) > 3 {
			rec.Options = fields[3]
		}
		return rec, nil
	}
	if err := scanner.Err(); err != nil {
		return Record{}, cerr.Mark(cerr.Wrap(err, "scan mount table"), ErrMountInfo)
	}
	return Record{}, cerr.Mark(cerr.Newf("%s not found in mount table", mountPoint), ErrMountInfo)
}
