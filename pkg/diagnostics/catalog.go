package diagnostics

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// ErrDirMissing is returned by Catalog.List for a tier directory that does not exist.
var ErrDirMissing = cerr.New("directory does not exist")

// Catalog discovers health-check artifacts in a tier directory.
type Catalog struct {
	// Stat is os.Stat by default; it follows symlinks.
	Stat func(name string) (fs.FileInfo, error)
}

func NewCatalog() *Catalog {
	return &Catalog{Stat: os.Stat}
}

// List returns the artifacts in dir in lexicographic file name order. An
// artifact is a regular, non-hidden file named *.sh or carrying any
// execute bit.
// A missing directory yields ErrDirMissing; any other listing problem is
// returned wrapped so the caller can decide how much it matters.
func (c *Catalog) List(ctx context.Context, dir string) ([]ScriptEntry, error) {
	logger := otelzap.Ctx(ctx)

	dirEntries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, cerr.Mark(cerr.Wrapf(err, "list %s", dir), ErrDirMissing)
		}
		return nil, cerr.Wrapf(err, "list %s", dir)
	}

	stat := c.Stat
	if stat == nil {
		stat = os.Stat
	}

	entries := make([]ScriptEntry, 0, len(dirEntries))
	for _, de := range dirEntries {
		// hidden files are never artifacts; this also keeps a bare ".sh" out
		if strings.HasPrefix(de.Name(), ".") {
			logger.Debug("Ignoring hidden entry", zap.String("name", de.Name()))
			continue
		}
		path := filepath.Join(dir, de.Name())
		info, err := stat(path)
		if err != nil {
			logger.Debug("Ignoring unreadable entry", zap.String("path", path), zap.Error(err))
			continue
		}
		if !info.Mode().IsRegular() {
			continue
		}

		isScript := filepath.Ext(de.Name()) == ".sh"
		if !isScript && info.Mode().Perm()&0o111 == 0 {
			logger.Debug("Ignoring non-executable entry", zap.String("path", path))
			continue
		}

		kind := KindBinary
		if isScript {
			kind = KindScript
		}
		entries = append(entries, ScriptEntry{Path: path, Name: de.Name(), Kind: kind})
	}

	return entries, nil
}
