// Package testutil holds helpers shared by the package tests.
package testutil

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap/zaptest"
)

// PassingScript is the body written by CreateScript.
const PassingScript = "#!/bin/bash\nexit 0\n"

// Context routes the global otelzap logger to the test log.
func Context(t *testing.T) context.Context {
	t.Helper()
	otelzap.ReplaceGlobals(otelzap.New(zaptest.NewLogger(t)))
	return context.Background()
}

// CreateTestFile writes content with exactly perm, ignoring the umask.
func CreateTestFile(t *testing.T, dir, filename, content string, perm os.FileMode) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, filename)
	require.NoError(t, os.WriteFile(path, []byte(content), perm))
	require.NoError(t, os.Chmod(path, perm))
	return path
}

// CreateScript drops a passing health-check artifact into dir.
func CreateScript(t *testing.T, dir, filename string, perm os.FileMode) string {
	t.Helper()
	return CreateTestFile(t, dir, filename, PassingScript, perm)
}

// AssertFileContent verifies file content matches expected.
func AssertFileContent(t *testing.T, path, expected string) {
	t.Helper()
	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, expected, string(content))
}
