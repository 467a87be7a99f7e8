package diagnostics

import (
	"path/filepath"
	"sort"

	"github.com/hashicorp/go-multierror"
)

// Tier names one of the artifact directories under an install root.
type Tier string

const (
	TierRequired Tier = "required"
	TierWanted   Tier = "wanted"
	TierRed      Tier = "red"
	TierGreen    Tier = "green"
)

// Dir returns the tier directory below an install root.
func (t Tier) Dir(root string) string {
	switch t {
	case TierRequired, TierWanted:
		return filepath.Join(root, "check", string(t)+".d")
	default:
		return filepath.Join(root, string(t)+".d")
	}
}

// FailFast is true for the tier whose first failure stops the directory.
func (t Tier) FailFast() bool {
	return t == TierRequired
}

// EntryKind tells the runner how to start an artifact.
type EntryKind int

const (
	KindBinary EntryKind = iota
	KindScript
)

func (k EntryKind) String() string {
	if k == KindScript {
		return "script"
	}
	return "binary"
}

// ScriptEntry is one discovered health-check artifact.
type ScriptEntry struct {
	Path string
	Name string
	Kind EntryKind
}

// TierResult aggregates one tier run over one directory.
type TierResult struct {
	Errors  []*ScriptError
	Skipped []string
}

// Err folds the failure records into a single error, nil when there are none.
func (r TierResult) Err() error {
	var result *multierror.Error
	for _, e := range r.Errors {
		result = multierror.Append(result, e)
	}
	return result.ErrorOrNil()
}

// SkipList holds artifact file names that must never be executed.
type SkipList map[string]struct{}

// NewSkipList builds a skip list; empty names are ignored.
func NewSkipList(names ...string) SkipList {
	s := make(SkipList, len(names))
	for _, n := range names {
		if n != "" {
			s[n] = struct{}{}
		}
	}
	return s
}

// Contains is safe on a nil list.
func (s SkipList) Contains(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s[name]
	return ok
}

// Names returns the entries sorted.
func (s SkipList) Names() []string {
	out := make([]string, 0, len(s))
	for n := range s {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
