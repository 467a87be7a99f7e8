// pkg/cli/cli.go
//
// Flag helpers shared by the greenboot commands. Flags are bound to a viper
// instance so every flag can also be set from a GREENBOOT_* environment
// variable, which is how systemd units usually pass options.

package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix namespaces environment overrides, e.g. GREENBOOT_LOG_LEVEL.
const EnvPrefix = "GREENBOOT"

// NewViper returns a viper instance reading GREENBOOT_* variables with
// dashes mapped to underscores.
func NewViper() *viper.Viper {
	v := viper.New()
	SetViperEnvPrefix(v, EnvPrefix)
	return v
}

// BindFlagsToViper binds every flag in the set to v.
func BindFlagsToViper(flags *pflag.FlagSet, v *viper.Viper) error {
	var result error
	flags.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			result = multierror.Append(result, err)
		}
	})
	return result
}

func SetViperEnvPrefix(v *viper.Viper, prefix string) {
	v.SetEnvPrefix(prefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
}

// OneOf checks value against the allowed set, case-insensitively.
func OneOf(name, value string, allowed []string) error {
	for _, a := range allowed {
		if strings.EqualFold(strings.TrimSpace(value), a) {
			return nil
		}
	}
	return fmt.Errorf("invalid value %q for --%s, expected one of %s", value, name, strings.Join(allowed, ", "))
}

// Warnf prints to stderr; used before the logger exists.
func Warnf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}
