// pkg/config/shell.go

package config

import (
	"io"

	cerr "github.com/cockroachdb/errors"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/syntax"
)

// ParseShellAssignments evaluates the top-level variable assignments of a
// bash fragment without running it. Scalars map to string, arrays to
// []string. Later assignments may reference earlier ones.
func ParseShellAssignments(r io.Reader, name string) (map[string]any, error) {
	file, err := syntax.NewParser(syntax.Variant(syntax.LangBash)).Parse(r, name)
	if err != nil {
		return nil, cerr.Wrapf(err, "parse %s", name)
	}

	values := make(map[string]any)
	scalars := make(map[string]string)
	cfg := &expand.Config{Env: expand.FuncEnviron(func(key string) string {
		return scalars[key]
	})}

	assign := func(as *syntax.Assign) error {
		if as.Name == nil || as.Naked {
			return nil
		}
		key := as.Name.Value
		if as.Array != nil {
			list := make([]string, 0, len(as.Array.Elems))
			for _, elem := range as.Array.Elems {
				if elem.Value == nil {
					continue
				}
				s, err := expand.Literal(cfg, elem.Value)
				if err != nil {
					return cerr.Wrapf(err, "expand %s", key)
				}
				list = append(list, s)
			}
			values[key] = list
			return nil
		}
		s := ""
		if as.Value != nil {
			if s, err = expand.Literal(cfg, as.Value); err != nil {
				return cerr.Wrapf(err, "expand %s", key)
			}
		}
		values[key] = s
		scalars[key] = s
		return nil
	}

	for _, stmt := range file.Stmts {
		switch cmd := stmt.Cmd.(type) {
		case *syntax.CallExpr:
			// "FOO=bar cmd" scopes FOO to cmd; only bare assignments count
			if len(cmd.Args) != 0 {
				continue
			}
			for _, as := range cmd.Assigns {
				if err := assign(as); err != nil {
					return nil, err
				}
			}
		case *syntax.DeclClause:
			for _, as := range cmd.Args {
				if err := assign(as); err != nil {
					return nil, err
				}
			}
		}
	}
	return values, nil
}
