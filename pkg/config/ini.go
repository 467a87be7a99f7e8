// pkg/config/ini.go

package config

import (
	"strings"

	cerr "github.com/cockroachdb/errors"
	"github.com/go-ini/ini"
)

// ParseINIAssignments reads src as INI: ';' and '#' comments, [section]
// headers, spaces around '=' and quoted values. Sections are flattened.
// A value written as a shell array, ("a.sh" "b.sh"), becomes a []string;
// a key whose array does not parse is left out.
func ParseINIAssignments(src []byte, name string) (map[string]any, error) {
	f, err := ini.LoadSources(ini.LoadOptions{SkipUnrecognizableLines: true}, src)
	if err != nil {
		return nil, cerr.Wrapf(err, "parse %s as ini", name)
	}

	values := make(map[string]any)
	for _, section := range f.Sections() {
		for _, key := range section.Keys() {
			k := strings.TrimSpace(strings.TrimPrefix(key.Name(), "export "))
			raw := strings.TrimSpace(key.Value())
			if !strings.HasPrefix(raw, "(") {
				values[k] = raw
				continue
			}
			arr, err := ParseShellAssignments(strings.NewReader(k+"="+raw), name)
			if err != nil {
				continue
			}
			if v, ok := arr[k]; ok {
				values[k] = v
			}
		}
	}
	return values, nil
}
