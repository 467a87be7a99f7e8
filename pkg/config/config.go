// pkg/config/config.go
//
// Loads /etc/greenboot/greenboot.conf. The file is INI-style KEY=value lines
// that the legacy bash implementation also sourced, so both readings are
// accepted. Values may be overridden from the environment. Problems never
// fail the boot check; they fall back to defaults with a warning.

package config

import (
	"bytes"
	"context"
	"os"
	"strconv"
	"strings"

	"github.com/CodeMonkeyCybersecurity/greenboot/pkg/shared"
	cerr "github.com/cockroachdb/errors"
	"github.com/go-playground/validator/v10"
	"github.com/hashicorp/go-multierror"
	"github.com/spf13/viper"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.uber.org/zap"
)

// BootHealthConfig is what the health check needs from the config file.
type BootHealthConfig struct {
	MaxReboot            uint16
	DisabledHealthchecks []string
}

func Default() BootHealthConfig {
	return BootHealthConfig{
		MaxReboot:            shared.DefaultMaxBootAttempts,
		DisabledHealthchecks: []string{},
	}
}

// Loader reads the config file at Path.
type Loader struct {
	Path     string
	validate *validator.Validate
}

func NewLoader(path string) *Loader {
	if path == "" {
		path = shared.GreenbootConfigFile
	}
	return &Loader{Path: path, validate: validator.New()}
}

// Load never fails; see the package comment.
func (l *Loader) Load(ctx context.Context) BootHealthConfig {
	logger := otelzap.Ctx(ctx)
	cfg := Default()

	// ASSESS
	src, values, err := l.readFile(ctx)
	if err != nil {
		logger.Warn("config error, using default values",
			zap.String("path", l.Path),
			zap.Uint16("max_reboot", cfg.MaxReboot),
			zap.Error(err))
		values = map[string]any{}
	}
	for _, key := range []string{shared.ConfigKeyMaxBootAttempts, shared.ConfigKeyDisabledHealthchecks} {
		if _, ok := values[key]; !ok && bytes.Contains(src, []byte(key)) {
			logger.Warn("config key present but not assigned, using default value",
				zap.String("path", l.Path),
				zap.String("key", key))
		}
	}

	v := viper.New()
	v.SetDefault(shared.ConfigKeyMaxBootAttempts, strconv.Itoa(int(cfg.MaxReboot)))
	v.SetDefault(shared.ConfigKeyDisabledHealthchecks, []string{})
	if err := v.MergeConfigMap(values); err != nil {
		logger.Warn("config error, ignoring file values", zap.Error(err))
	}
	v.AutomaticEnv()

	// INTERVENE
	raw := strings.TrimSpace(v.GetString(shared.ConfigKeyMaxBootAttempts))
	if n, err := strconv.ParseUint(raw, 10, 16); err != nil {
		logger.Warn("config error, using default value",
			zap.String("key", shared.ConfigKeyMaxBootAttempts),
			zap.String("value", raw),
			zap.Uint16("default", cfg.MaxReboot),
			zap.Error(err))
	} else {
		cfg.MaxReboot = uint16(n)
	}

	for _, name := range splitList(v.GetStringSlice(shared.ConfigKeyDisabledHealthchecks)) {
		if err := l.validate.Var(name, "required,excludesall=/"); err != nil {
			logger.Warn("Ignoring invalid disabled health check entry",
				zap.String("entry", name),
				zap.Error(err))
			continue
		}
		cfg.DisabledHealthchecks = append(cfg.DisabledHealthchecks, name)
	}

	// EVALUATE
	logger.Debug("Loaded greenboot config",
		zap.Uint16("max_reboot", cfg.MaxReboot),
		zap.Strings("disabled_healthchecks", cfg.DisabledHealthchecks))
	return cfg
}

// readFile returns the raw file and its assignments. The file is read both
// as shell and as INI; a shell assignment wins over the INI reading of the
// same key, so expansions and arrays keep their shell meaning.
func (l *Loader) readFile(ctx context.Context) ([]byte, map[string]any, error) {
	src, err := os.ReadFile(l.Path)
	if err != nil {
		return nil, nil, cerr.Wrap(err, "read config")
	}

	shellValues, shellErr := ParseShellAssignments(bytes.NewReader(src), l.Path)
	iniValues, iniErr := ParseINIAssignments(src, l.Path)
	if shellErr != nil && iniErr != nil {
		return src, nil, multierror.Append(shellErr, iniErr)
	}
	if shellErr != nil {
		otelzap.Ctx(ctx).Debug("Config is not valid shell, read as INI only", zap.Error(shellErr))
	}

	values := make(map[string]any, len(iniValues)+len(shellValues))
	for k, v := range iniValues {
		values[k] = v
	}
	for k, v := range shellValues {
		values[k] = v
	}
	return src, values, nil
}

// splitList accepts array elements as well as a single comma or space
// separated string from the environment.
func splitList(items []string) []string {
	var out []string
	for _, item := range items {
		for _, part := range strings.FieldsFunc(item, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n'
		}) {
			out = append(out, part)
		}
	}
	return out
}
