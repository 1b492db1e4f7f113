package commands

import (
	"github.com/leapstack-labs/salesprep/internal/report"
	"github.com/leapstack-labs/salesprep/internal/warehouse"
	"github.com/spf13/cobra"

	// Register warehouse adapters.
	_ "github.com/leapstack-labs/salesprep/internal/warehouse/duckdb"
	_ "github.com/leapstack-labs/salesprep/internal/warehouse/postgres"
	_ "github.com/leapstack-labs/salesprep/internal/warehouse/sqlite"
)

// NewPublishCommand creates the publish command.
func NewPublishCommand() *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "publish",
		Short: "Load the cleaned sales file into the warehouse",
		Long: `Load the merged sales file into the configured target database.

The table is replaced on every publish. Supported targets are duckdb,
postgres and sqlite; configure them under the target key of salesprep.yaml.
Credentials may reference environment variables as ${VAR}.`,
		Example: `  # Load into the default DuckDB file (data/warehouse.duckdb)
  salesprep publish

  # Load into a different table
  salesprep publish --table sales_2024`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}
			if err := cc.Cfg.ValidateTarget(); err != nil {
				return err
			}

			source := cc.Cfg.SalesPath()
			rows, err := warehouse.Publish(cmd.Context(), *cc.Cfg.Target, table, source, cc.Logger)
			if err != nil {
				return err
			}

			return cc.Renderer.Published(report.PublishResult{
				Target: cc.Cfg.Target.Type,
				Table:  table,
				Rows:   rows,
				Source: cc.Cfg.Rel(source),
			})
		},
	}

	cmd.Flags().StringVar(&table, "table", warehouse.DefaultTable, "Target table name")

	return cmd
}
