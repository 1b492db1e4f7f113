package sqlite

import (
	"log/slog"

	"github.com/leapstack-labs/salesprep/internal/warehouse"
)

// DefaultPath is the database file used when the target names none.
const DefaultPath = "data/warehouse.sqlite"

func init() {
	warehouse.Register(warehouse.Target{
		Name:     "sqlite",
		Defaults: warehouse.FileDefaults(DefaultPath),
		New:      func(logger *slog.Logger) warehouse.Adapter { return New(logger) },
	})
}
