package warehouse

import (
	"context"
	"fmt"
	"log/slog"
	"os"
)

// DefaultTable is the table the cleaned sales file is loaded into.
const DefaultTable = "sales"

// Publish loads the CSV at path into table on the target described by cfg
// and returns the row count of the loaded table.
func Publish(ctx context.Context, cfg Config, table, path string, logger *slog.Logger) (int64, error) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if table == "" {
		table = DefaultTable
	}
	ApplyDefaults(&cfg)
	if err := ValidateTableName(table); err != nil {
		return 0, err
	}
	if _, err := os.Stat(path); err != nil {
		return 0, fmt.Errorf("cleaned data not found: %w", err)
	}

	adp, err := NewAdapter(cfg, logger)
	if err != nil {
		return 0, err
	}
	if err := adp.Connect(ctx, cfg); err != nil {
		return 0, fmt.Errorf("failed to connect to %s: %w", cfg.Type, err)
	}
	defer func() { _ = adp.Close() }()

	logger.Info("publishing cleaned data", "target", adp.DialectName(), "table", table, "path", path)

	if err := adp.LoadCSV(ctx, table, path); err != nil {
		return 0, err
	}

	n, err := adp.RowCount(ctx, table)
	if err != nil {
		return 0, err
	}

	logger.Info("published cleaned data", "table", table, "rows", n)
	return n, nil
}
