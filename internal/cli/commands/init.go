package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/leapstack-labs/salesprep/internal/cli/config"
	"github.com/leapstack-labs/salesprep/internal/report"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const configHeader = `# salesprep project configuration.
# Relative paths are resolved against the directory of this file.
# Every key can be overridden with SALESPREP_<KEY> (use __ for nesting,
# e.g. SALESPREP_GENERATE__SEED=42) or with the matching CLI flag.
`

// NewInitCommand creates the init command.
func NewInitCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Initialize a new salesprep project",
		Long: `Initialize a new salesprep project with the default directory layout.

This creates:
  - salesprep.yaml configuration file with every default spelled out
  - data/raw/ directory for the generated input tables
  - data/cleaned/ directory for the merged output`,
		Example: `  # Initialize in current directory
  salesprep init

  # Initialize in a new directory
  salesprep init my-project

  # Force overwrite existing config
  salesprep init --force`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			mode := report.ModeAuto
			if f := cmd.Flags().Lookup("output"); f != nil {
				m, err := report.ParseMode(f.Value.String())
				if err != nil {
					return err
				}
				mode = m
			}
			r := report.NewRenderer(cmd.OutOrStdout(), cmd.ErrOrStderr(), mode)
			return runInit(r, dir, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Overwrite existing configuration")

	return cmd
}

// initResult is the JSON shape of an init run.
type initResult struct {
	Dir     string   `json:"dir"`
	Created []string `json:"created"`
}

func runInit(r *report.Renderer, dir string, force bool) error {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	configPath := filepath.Join(dir, "salesprep.yaml")
	if _, err := os.Stat(configPath); err == nil && !force {
		return fmt.Errorf("salesprep.yaml already exists. Use --force to overwrite")
	}

	cfg := config.Default()
	body, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode configuration: %w", err)
	}
	if err := os.WriteFile(configPath, append([]byte(configHeader), body...), 0600); err != nil {
		return fmt.Errorf("failed to write %s: %w", configPath, err)
	}

	created := []string{"salesprep.yaml"}
	for _, sub := range []string{cfg.RawDir, cfg.CleanedDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0750); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", sub, err)
		}
		created = append(created, sub+"/")
	}

	if r.EffectiveMode() == report.ModeJSON {
		return r.JSON(initResult{Dir: dir, Created: created})
	}

	for _, f := range created {
		r.Success(f)
	}
	r.Println()
	r.Success("salesprep project initialized!")
	r.Println()
	r.Println("Next steps:")
	r.Println("  1. Run 'salesprep generate' to create the raw tables")
	r.Println("  2. Run 'salesprep clean' to build the merged sales file")
	r.Println("  3. Run 'salesprep publish' to load it into the warehouse")
	return nil
}
