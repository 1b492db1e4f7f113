package postgres

import (
	"log/slog"

	"github.com/leapstack-labs/salesprep/internal/warehouse"
)

// Connection defaults.
const (
	DefaultPort   = 5432
	DefaultSchema = "public"
)

func init() {
	warehouse.Register(warehouse.Target{
		Name:     "postgres",
		Defaults: applyDefaults,
		New:      func(logger *slog.Logger) warehouse.Adapter { return New(logger) },
	})
}

// applyDefaults fills the port and schema. A server target has no file, so
// any path inherited from a file target is dropped.
func applyDefaults(cfg *warehouse.Config) {
	if cfg.Port == 0 {
		cfg.Port = DefaultPort
	}
	if cfg.Schema == "" {
		cfg.Schema = DefaultSchema
	}
	cfg.Path = ""
}
