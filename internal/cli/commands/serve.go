package commands

import (
	"fmt"

	"github.com/leapstack-labs/salesprep/internal/server"
	"github.com/leapstack-labs/salesprep/internal/state"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command.
func NewServeCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the cleaned sales data as a JSON API",
		Long: `Start a read-only HTTP API over the merged sales file and the run history.

Endpoints:
  GET /healthz        liveness probe
  GET /api/summary    totals and revenue by month
  GET /api/sales      merged rows, filtered by year, month, state, category, limit
  GET /api/runs       recent cleaning runs
  GET /api/events     server-sent "reload" events (with --watch)`,
		Example: `  # Start on the default port (8080)
  salesprep serve

  # Reload the dataset whenever clean rewrites it
  salesprep serve --port 9000 --watch`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cc, err := NewCommandContext(cmd)
			if err != nil {
				return err
			}

			port := cc.Cfg.Serve.Port
			if cmd.Flags().Changed("port") {
				port, _ = cmd.Flags().GetInt("port")
			}
			watch := cc.Cfg.Serve.Watch
			if cmd.Flags().Changed("watch") {
				watch, _ = cmd.Flags().GetBool("watch")
			}

			// run history is optional for the API
			var store state.Store
			if s, err := cc.OpenStore(); err != nil {
				cc.Logger.Warn("run history disabled", "error", err)
			} else {
				store = s
				defer func() { _ = s.Close() }()
			}

			srv, err := server.New(server.Config{
				SalesPath: cc.Cfg.SalesPath(),
				Store:     store,
				Port:      port,
				Watch:     watch,
				Logger:    cc.Logger,
			})
			if err != nil {
				return err
			}

			cc.Renderer.Success("Serving " + cc.Cfg.Rel(cc.Cfg.SalesPath()))
			cc.Renderer.Field("Address", fmt.Sprintf("http://localhost:%d", port))
			cc.Renderer.Muted("Press Ctrl+C to stop")
			return srv.Serve(cmd.Context())
		},
	}

	cmd.Flags().IntP("port", "p", 8080, "Port to listen on")
	cmd.Flags().Bool("watch", false, "Reload the dataset when the cleaned file changes")

	return cmd
}
