package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/leapstack-labs/salesprep/internal/dataset"
	"github.com/leapstack-labs/salesprep/internal/warehouse"
	"github.com/spf13/pflag"
)

// loggerKey and configKey are used to store per-invocation values in context.
type (
	loggerKey struct{}
	configKey struct{}
)

// EnvPrefix prefixes every environment override. A double underscore
// separates nested keys: SALESPREP_GENERATE__SEED sets generate.seed.
const EnvPrefix = "SALESPREP_"

// maxUpwardSearchLevels limits how far up the directory tree to search for config files.
const maxUpwardSearchLevels = 10

// pathFlags are flags holding paths. Values given on the command line are
// resolved against the working directory rather than the project root.
var pathFlags = map[string]string{
	"raw-dir":     "raw_dir",
	"cleaned-dir": "cleaned_dir",
	"log-path":    "log_path",
	"state":       "state_path",
}

// flagKeys maps flags whose name differs from their config key.
var flagKeys = map[string]string{
	"state": "state_path",
}

// skipFlags are persistent flags that are not configuration keys.
var skipFlags = map[string]bool{
	"config":      true,
	"project-dir": true,
}

// findConfigIn returns the config file in dir, or "".
func findConfigIn(dir string) string {
	for _, name := range configFileNames {
		candidate := filepath.Join(dir, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// findProjectRootUpward searches upward from startDir for a salesprep config file.
func findProjectRootUpward(startDir string) string {
	dir := startDir
	for range maxUpwardSearchLevels {
		if findConfigIn(dir) != "" {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}

// inferProjectRoot determines the project root.
// Priority:
//  1. Explicit --project-dir flag
//  2. Directory of the --config file
//  3. Search upward from CWD for salesprep.yaml
//  4. Current working directory
func inferProjectRoot(cfgFile string, flags *pflag.FlagSet) string {
	if flags != nil && flags.Changed("project-dir") {
		if projectDir, _ := flags.GetString("project-dir"); projectDir != "" {
			return absOrClean(projectDir)
		}
	}

	if cfgFile != "" {
		return filepath.Dir(absOrClean(cfgFile))
	}

	cwd, err := os.Getwd()
	if err != nil || cwd == "" {
		return "."
	}
	if root := findProjectRootUpward(cwd); root != "" {
		return root
	}
	return cwd
}

func absOrClean(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return filepath.Clean(path)
}

// resolvePathRelativeTo resolves a path relative to baseDir if it's not absolute.
func resolvePathRelativeTo(path, baseDir string) string {
	if path == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(baseDir, path)
}

func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"raw_dir":             d.RawDir,
		"cleaned_dir":         d.CleanedDir,
		"output_file":         d.OutputFile,
		"log_path":            d.LogPath,
		"state_path":          d.StatePath,
		"verbose":             false,
		"output":              d.OutputFormat,
		"generate.customers":  d.Generate.Customers,
		"generate.orders":     d.Generate.Orders,
		"generate.email_rate": d.Generate.EmailRate,
		"generate.start_date": d.Generate.StartDate.Format(dataset.DateLayout),
		"generate.days":       d.Generate.Days,
		"generate.seed":       0,
		"target.type":         d.Target.Type,
		"serve.port":          d.Serve.Port,
		"serve.watch":         false,
	}
}

// envKey maps SALESPREP_GENERATE__EMAIL_RATE to generate.email_rate.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// dateHookFunc decodes generate.start_date from a date or RFC 3339 string.
func dateHookFunc() mapstructure.DecodeHookFuncType {
	return func(from reflect.Type, to reflect.Type, data any) (any, error) {
		if from.Kind() != reflect.String || to != reflect.TypeOf(time.Time{}) {
			return data, nil
		}
		s := strings.TrimSpace(data.(string))
		if t, err := time.Parse(dataset.DateLayout, s); err == nil {
			return t, nil
		}
		t, err := time.Parse(time.RFC3339, s)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
		}
		return t.UTC(), nil
	}
}

// Load loads configuration from defaults, the config file, environment
// variables and flags.
// Precedence (highest to lowest): flags > env vars > config file > defaults
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	projectRoot := inferProjectRoot(cfgFile, flags)

	// Path flags are relative to CWD; pin them before project-root resolution.
	flagPaths := make(map[string]string)
	if flags != nil {
		for name, key := range pathFlags {
			if flags.Lookup(name) == nil || !flags.Changed(name) {
				continue
			}
			if v, _ := flags.GetString(name); v != "" {
				flagPaths[key] = absOrClean(v)
			}
		}
	}

	// 1. Defaults
	if err := k.Load(confmap.Provider(defaults(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if cfgFile == "" {
		cfgFile = findConfigIn(projectRoot)
	}
	if cfgFile != "" {
		if err := k.Load(file.Provider(cfgFile), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", cfgFile, err)
		}
	}

	// 3. Environment variables
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags, only those explicitly set
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			if !f.Changed || skipFlags[f.Name] {
				return "", nil
			}
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			return key, posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	// 5. Unmarshal
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				dateHookFunc(),
			),
			Result:           &cfg,
			WeaklyTypedInput: true,
		},
	}); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// 6. Resolve paths against the project root
	cfg.ProjectRoot = projectRoot
	if cfgFile != "" {
		cfg.ConfigFile = absOrClean(cfgFile)
	}

	resolve := func(key string, p *string) {
		if v, ok := flagPaths[key]; ok {
			*p = v
			return
		}
		*p = resolvePathRelativeTo(*p, projectRoot)
	}
	resolve("raw_dir", &cfg.RawDir)
	resolve("cleaned_dir", &cfg.CleanedDir)
	resolve("log_path", &cfg.LogPath)
	resolve("state_path", &cfg.StatePath)

	if cfg.Target == nil {
		cfg.Target = &warehouse.Config{Type: DefaultTargetType}
	}
	warehouse.ApplyDefaults(cfg.Target)
	expandTargetEnvVars(cfg.Target)
	if cfg.Target.Path != "" && cfg.Target.Path != ":memory:" {
		cfg.Target.Path = resolvePathRelativeTo(cfg.Target.Path, projectRoot)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars expands ${VAR} patterns. Unknown variables are left as-is.
func expandEnvVars(s string) string {
	return envVarPattern.ReplaceAllStringFunc(s, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
}

// expandTargetEnvVars expands environment variables in sensitive target fields.
func expandTargetEnvVars(t *warehouse.Config) {
	if t == nil {
		return
	}
	t.Password = expandEnvVars(t.Password)
	t.Username = expandEnvVars(t.Username)
	t.Host = expandEnvVars(t.Host)
	t.Database = expandEnvVars(t.Database)
	t.Path = expandEnvVars(t.Path)
}

// WithLogger stores the command logger in ctx.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// GetLogger retrieves the logger from the command context.
func GetLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*slog.Logger); ok {
		return l
	}
	return slog.New(slog.DiscardHandler)
}

// WithConfig stores the loaded configuration in ctx.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the configuration stored by WithConfig.
func FromContext(ctx context.Context) (*Config, bool) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	return cfg, ok && cfg != nil
}
