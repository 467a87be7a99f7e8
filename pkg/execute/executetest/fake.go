// Package executetest provides a Runner that answers from a table, for tests
// of code that shells out through pkg/execute.
package executetest

import (
	"context"
	"sync"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/execute"
)

// Call is one recorded invocation of a FakeRunner.
type Call struct {
	Command string
	Args    []string
}

// FakeRunner answers Exec from a table instead of spawning processes. The
// key is the command line as built by execute.CommandLine. Unregistered
// command lines succeed with empty output.
type FakeRunner struct {
	mu      sync.Mutex
	Results map[string]execute.Result
	Errors  map[string]error
	Calls   []Call
}

func NewFakeRunner() *FakeRunner {
	return &FakeRunner{
		Results: make(map[string]execute.Result),
		Errors:  make(map[string]error),
	}
}

// On registers the result for a command line.
func (f *FakeRunner) On(result execute.Result, command string, args ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Results[execute.CommandLine(command, args...)] = result
	return f
}

// Fail registers a spawn failure for a command line.
func (f *FakeRunner) Fail(err error, command string, args ...string) *FakeRunner {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[execute.CommandLine(command, args...)] = err
	return f
}

func (f *FakeRunner) Exec(_ context.Context, opts execute.Options) (execute.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Calls = append(f.Calls, Call{Command: opts.Command, Args: append([]string(nil), opts.Args...)})
	key := execute.CommandLine(opts.Command, opts.Args...)
	if err, ok := f.Errors[key]; ok {
		return execute.Result{}, err
	}
	return f.Results[key], nil
}

// Commands returns every command line seen so far.
func (f *FakeRunner) Commands() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.Calls))
	for _, c := range f.Calls {
		out = append(out, execute.CommandLine(c.Command, c.Args...))
	}
	return out
}
