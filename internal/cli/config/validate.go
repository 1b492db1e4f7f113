package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/leapstack-labs/salesprep/internal/report"
	"github.com/leapstack-labs/salesprep/internal/warehouse"
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	var errs []error
	if c.RawDir == "" {
		errs = append(errs, fmt.Errorf("raw_dir is required"))
	}
	if c.CleanedDir == "" {
		errs = append(errs, fmt.Errorf("cleaned_dir is required"))
	}
	if c.OutputFile == "" {
		errs = append(errs, fmt.Errorf("output_file is required"))
	}
	if _, err := report.ParseMode(c.OutputFormat); err != nil {
		errs = append(errs, err)
	}
	if err := c.Generate.Options().Validate(); err != nil {
		errs = append(errs, fmt.Errorf("generate: %w", err))
	}
	if c.Serve.Port < 0 || c.Serve.Port > 65535 {
		errs = append(errs, fmt.Errorf("serve.port must be within [0, 65535], got %d", c.Serve.Port))
	}
	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// ValidateTarget checks the target against the registered warehouse adapters.
// Adapters register themselves on import, so this runs at publish time.
func (c *Config) ValidateTarget() error {
	if c.Target == nil || c.Target.Type == "" {
		return fmt.Errorf("target type is required")
	}
	if !warehouse.IsRegistered(c.Target.Type) {
		return &warehouse.UnknownAdapterError{
			Type:      c.Target.Type,
			Available: warehouse.ListAdapters(),
		}
	}
	return nil
}

// ValidateRawDir checks that the raw directory exists.
func (c *Config) ValidateRawDir() error {
	if _, err := os.Stat(c.RawDir); os.IsNotExist(err) {
		return fmt.Errorf("raw data directory does not exist: %s\nHint: run 'salesprep generate' or use --raw-dir to specify a different path", c.RawDir)
	}
	return nil
}
