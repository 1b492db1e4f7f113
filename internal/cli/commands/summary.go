package commands

import (
	"github.com/leapstack-labs/salesprep/internal/dataset"
	"github.com/spf13/cobra"
)

// NewSummaryCommand creates the summary command.
func NewSummaryCommand() *cobra.Command {
	var f dataset.SalesFilter

	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show revenue by month from the cleaned sales file",
		Example: `  salesprep summary
  salesprep summary --state VA --category Electronics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			records, err := dataset.ReadSales(cc.Cfg.SalesPath())
			if err != nil {
				return err
			}
			return cc.Renderer.Monthly(dataset.Summarize(dataset.Select(records, f)))
		},
	}

	cmd.Flags().IntVar(&f.Year, "year", 0, "Only include orders from this year")
	cmd.Flags().StringVar(&f.State, "state", "", "Only include customers from this state")
	cmd.Flags().StringVar(&f.Category, "category", "", "Only include products in this category")

	return cmd
}
