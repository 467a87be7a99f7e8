package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateScript(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "check", "required.d")
	path := CreateScript(t, dir, "00_ok.sh", 0o640)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm())
	AssertFileContent(t, path, PassingScript)
}
