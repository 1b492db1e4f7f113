package commands

import (
	"github.com/leapstack-labs/salesprep/internal/generate"
	"github.com/spf13/cobra"
)

// NewGenerateCommand creates the generate command.
func NewGenerateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic raw sales data",
		Long: `Generate the synthetic customers, products and orders tables.

The tables are written as customers.csv, products.csv and orders.csv into
the raw directory (default: data/raw), which is created if absent. Around
10% of customers have no email, and order dates fall within the configured
window starting at generate.start_date.`,
		Example: `  # Generate the default 200 customers and 1000 orders
  salesprep generate

  # Reproducible output
  salesprep generate --seed 42

  # A smaller dataset in another directory
  salesprep generate --customers 20 --orders 100 --raw-dir /tmp/raw`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}

	cmd.Flags().Int("customers", generate.DefaultCustomers, "Number of customers")
	cmd.Flags().Int("orders", generate.DefaultOrders, "Number of orders")
	cmd.Flags().Uint64("seed", 0, "Random seed (0 for a random dataset)")

	return cmd
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cc, err := NewCommandContext(cmd)
	if err != nil {
		return err
	}

	opts := cc.Cfg.Generate.Options()
	if cmd.Flags().Changed("customers") {
		opts.Customers, _ = cmd.Flags().GetInt("customers")
	}
	if cmd.Flags().Changed("orders") {
		opts.Orders, _ = cmd.Flags().GetInt("orders")
	}
	if cmd.Flags().Changed("seed") {
		opts.Seed, _ = cmd.Flags().GetUint64("seed")
	}

	ds, err := generate.Run(cc.Cfg.RawDir, opts, cc.Logger)
	if err != nil {
		return err
	}
	return cc.Renderer.Generated(cc.Cfg.Rel(cc.Cfg.RawDir), ds)
}
