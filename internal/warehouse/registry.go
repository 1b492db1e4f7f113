package warehouse

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"
)

// Target describes a kind of target database selected by target.type.
type Target struct {
	// Name is the target.type value, in lower case.
	Name string

	// Defaults fills the connection settings left empty in cfg.
	Defaults func(cfg *Config)

	// New creates an unconnected adapter. A nil logger is replaced by the
	// adapter with a discard logger.
	New func(logger *slog.Logger) Adapter
}

var (
	targetsMu sync.RWMutex
	targets   = make(map[string]Target)
)

// Register makes a target available to publish. Adapter packages call it
// from init(). Registering a name twice replaces the earlier target.
func Register(t Target) {
	if t.Name == "" || t.New == nil {
		panic("warehouse: Register needs a name and a constructor")
	}
	t.Name = strings.ToLower(t.Name)

	targetsMu.Lock()
	defer targetsMu.Unlock()
	targets[t.Name] = t
}

// Lookup returns the target registered under name, ignoring case.
func Lookup(name string) (Target, bool) {
	targetsMu.RLock()
	defer targetsMu.RUnlock()
	t, ok := targets[strings.ToLower(name)]
	return t, ok
}

// ApplyDefaults normalizes cfg.Type and fills the defaults of its target.
// Unknown types are left for NewAdapter to report.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	cfg.Type = strings.ToLower(strings.TrimSpace(cfg.Type))

	t, ok := Lookup(cfg.Type)
	if !ok || t.Defaults == nil {
		return
	}
	t.Defaults(cfg)
}

// NewAdapter creates an unconnected adapter for cfg.Type.
func NewAdapter(cfg Config, logger *slog.Logger) (Adapter, error) {
	if cfg.Type == "" {
		return nil, fmt.Errorf("target type not specified")
	}

	t, ok := Lookup(cfg.Type)
	if !ok {
		return nil, &UnknownAdapterError{
			Type:      cfg.Type,
			Available: ListAdapters(),
		}
	}
	return t.New(logger), nil
}

// ListAdapters returns the registered target names, sorted.
func ListAdapters() []string {
	targetsMu.RLock()
	defer targetsMu.RUnlock()
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered reports whether name is a known target type.
func IsRegistered(name string) bool {
	_, ok := Lookup(name)
	return ok
}

// FileDefaults returns a Defaults func for targets stored in a local file.
// path is used when neither Path nor Database is set.
func FileDefaults(path string) func(*Config) {
	return func(cfg *Config) {
		if cfg.Path == "" && cfg.Database == "" {
			cfg.Path = path
		}
	}
}

// UnknownAdapterError is returned when target.type names no registered target.
type UnknownAdapterError struct {
	Type      string
	Available []string
}

func (e *UnknownAdapterError) Error() string {
	return fmt.Sprintf("unknown target type %q\nAvailable targets: %v\nHint: Check target.type in salesprep.yaml", e.Type, e.Available)
}
