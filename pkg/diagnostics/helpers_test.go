package diagnostics

import (
	"context"
	"os"
	"testing"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute/executetest"
	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/testutil"
)

func testContext(t *testing.T) context.Context {
	return testutil.Context(t)
}

// writeArtifact creates an artifact and returns its path.
func writeArtifact(t *testing.T, dir, name string, perm os.FileMode) string {
	t.Helper()
	return testutil.CreateScript(t, dir, name, perm)
}

// scriptKey is the command line the runner sees for a *.sh artifact.
func scriptKey(path string) (string, []string) {
	return "bash", []string{"-C", path}
}

func failScript(f *executetest.FakeRunner, path string) {
	cmd, args := scriptKey(path)
	f.On(execute.Result{ExitCode: 1, Stdout: "out", Stderr: "err"}, cmd, args...)
}

func countRuns(f *executetest.FakeRunner, path string) int {
	n := 0
	for _, c := range f.Calls {
		if c.Command == path || (len(c.Args) == 2 && c.Args[1] == path) {
			n++
		}
	}
	return n
}
