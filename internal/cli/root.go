// Package cli provides the command-line interface for salesprep.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/leapstack-labs/salesprep/internal/cli/commands"
	"github.com/leapstack-labs/salesprep/internal/cli/config"
	"github.com/leapstack-labs/salesprep/internal/logging"
	"github.com/spf13/cobra"
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// logCloserKey stores the function that releases the log file.
type logCloserKey struct{}

// skipConfig lists commands that run without loading configuration.
var skipConfig = map[string]bool{
	"help":       true,
	"completion": true,
	"__complete": true,
	"version":    true,
	"init":       true,
}

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "salesprep",
		Short: "salesprep - sales data preparation for BI dashboards",
		Long: `salesprep generates a synthetic sales dataset, cleans it and writes a
single merged table ready for BI tools.

  salesprep generate   write customers.csv, products.csv and orders.csv
  salesprep clean      filter, join and validate them into the merged file
  salesprep publish    load the merged file into a warehouse database
  salesprep serve      expose the merged file as a JSON API`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if skipConfig[cmd.Name()] {
				return nil
			}

			cfg, err := config.Load(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			logger, closeFn, err := logging.New(cfg.LoggingOptions(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			ctx := config.WithConfig(cmd.Context(), cfg)
			ctx = config.WithLogger(ctx, logger)
			ctx = context.WithValue(ctx, logCloserKey{}, closeFn)
			cmd.SetContext(ctx)

			if cfg.ConfigFile != "" {
				logger.Debug("using config file", "path", cfg.ConfigFile)
			}
			logger.Debug("project root", "path", cfg.ProjectRoot)
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
` + fmt.Sprintf("commit %s, built %s\n", GitCommit, BuildDate))

	// Global persistent flags
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default: ./salesprep.yaml)")
	pf.String("project-dir", "", "Project root (default: directory containing salesprep.yaml)")
	pf.String("raw-dir", "", "Directory of the raw input tables")
	pf.String("cleaned-dir", "", "Directory of the merged output")
	pf.String("log-path", "", "Cleaning log file")
	pf.String("state", "", "Path to state database")
	pf.BoolP("verbose", "v", false, "Verbose output")
	pf.StringP("output", "o", "", "Output format (auto|text|json)")

	_ = rootCmd.RegisterFlagCompletionFunc("output", func(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
		return []string{"auto", "text", "json"}, cobra.ShellCompDirectiveNoFileComp
	})

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewInitCommand())
	rootCmd.AddCommand(commands.NewGenerateCommand())
	rootCmd.AddCommand(commands.NewCleanCommand())
	rootCmd.AddCommand(commands.NewPublishCommand())
	rootCmd.AddCommand(commands.NewRunsCommand())
	rootCmd.AddCommand(commands.NewSummaryCommand())
	rootCmd.AddCommand(commands.NewServeCommand())

	return rootCmd
}

// closeLog releases the log file opened for the executed command.
func closeLog(cmd *cobra.Command) {
	if cmd == nil || cmd.Context() == nil {
		return
	}
	if fn, ok := cmd.Context().Value(logCloserKey{}).(func() error); ok {
		_ = fn()
	}
}

// ExecuteCommand runs rootCmd and releases the resources its command opened.
func ExecuteCommand(ctx context.Context, rootCmd *cobra.Command) error {
	cmd, err := rootCmd.ExecuteContextC(ctx)
	closeLog(cmd)
	return err
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	if err := ExecuteCommand(ctx, NewRootCmd()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return err
	}
	return nil
}
