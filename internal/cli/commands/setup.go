package commands

import (
	"fmt"
	"log/slog"

	"github.com/leapstack-labs/salesprep/internal/cli/config"
	"github.com/leapstack-labs/salesprep/internal/report"
	"github.com/leapstack-labs/salesprep/internal/state"
	"github.com/spf13/cobra"
)

// CommandContext holds common dependencies for CLI commands.
type CommandContext struct {
	Cfg      *config.Config
	Logger   *slog.Logger
	Renderer *report.Renderer
}

// NewCommandContext builds the dependencies of a command from the values
// the root command stored in its context. A command executed on its own
// falls back to configuration loaded from defaults, files and env vars.
func NewCommandContext(cmd *cobra.Command) (*CommandContext, error) {
	cfg, ok := config.FromContext(cmd.Context())
	if !ok {
		var err error
		if cfg, err = config.Load("", nil); err != nil {
			return nil, err
		}
	}

	mode, err := report.ParseMode(cfg.OutputFormat)
	if err != nil {
		return nil, err
	}

	return &CommandContext{
		Cfg:      cfg,
		Logger:   config.GetLogger(cmd.Context()),
		Renderer: report.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode),
	}, nil
}

// OpenStore opens the run history database.
func (c *CommandContext) OpenStore() (*state.SQLiteStore, error) {
	store, err := state.Open(c.Cfg.StatePath, c.Logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open state store: %w", err)
	}
	return store, nil
}
