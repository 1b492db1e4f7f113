// Package config provides configuration management for the salesprep CLI.
package config

import (
	"io"
	"path/filepath"
	"time"

	"github.com/leapstack-labs/salesprep/internal/clean"
	"github.com/leapstack-labs/salesprep/internal/dataset"
	"github.com/leapstack-labs/salesprep/internal/generate"
	"github.com/leapstack-labs/salesprep/internal/logging"
	"github.com/leapstack-labs/salesprep/internal/warehouse"
)

// Default configuration values, relative to the project root.
const (
	DefaultRawDir     = "data/raw"
	DefaultCleanedDir = "data/cleaned"
	DefaultLogPath    = "data/cleaning_log.log"
	DefaultStateFile  = "data/.salesprep/state.db"
	DefaultOutput     = "auto" // TTY=text, non-TTY=text without styling
	DefaultTargetType = "duckdb"
	DefaultServePort  = 8080
)

// Config file names, in lookup order.
var configFileNames = []string{"salesprep.yaml", "salesprep.yml"}

// Config holds all CLI configuration options.
type Config struct {
	RawDir       string            `koanf:"raw_dir" yaml:"raw_dir"`
	CleanedDir   string            `koanf:"cleaned_dir" yaml:"cleaned_dir"`
	OutputFile   string            `koanf:"output_file" yaml:"output_file"`
	LogPath      string            `koanf:"log_path" yaml:"log_path"`
	StatePath    string            `koanf:"state_path" yaml:"state_path"`
	Verbose      bool              `koanf:"verbose" yaml:"verbose"`
	OutputFormat string            `koanf:"output" yaml:"output"`
	Generate     GenerateConfig    `koanf:"generate" yaml:"generate"`
	Target       *warehouse.Config `koanf:"target" yaml:"target"`
	Serve        ServeConfig       `koanf:"serve" yaml:"serve"`

	// ProjectRoot anchors every relative path above.
	ProjectRoot string `koanf:"-" yaml:"-"`
	// ConfigFile is the file that was loaded, if any.
	ConfigFile string `koanf:"-" yaml:"-"`
}

// GenerateConfig holds the synthetic data parameters.
type GenerateConfig struct {
	Customers int       `koanf:"customers"`
	Orders    int       `koanf:"orders"`
	EmailRate float64   `koanf:"email_rate"`
	StartDate time.Time `koanf:"start_date"`
	Days      int       `koanf:"days"`
	Seed      uint64    `koanf:"seed"`
}

// MarshalYAML writes start_date in the same layout the loader reads.
func (g GenerateConfig) MarshalYAML() (any, error) {
	return struct {
		Customers int     `yaml:"customers"`
		Orders    int     `yaml:"orders"`
		EmailRate float64 `yaml:"email_rate"`
		StartDate string  `yaml:"start_date"`
		Days      int     `yaml:"days"`
		Seed      uint64  `yaml:"seed"`
	}{
		Customers: g.Customers,
		Orders:    g.Orders,
		EmailRate: g.EmailRate,
		StartDate: g.StartDate.Format(dataset.DateLayout),
		Days:      g.Days,
		Seed:      g.Seed,
	}, nil
}

// Options converts the config section into generator options.
func (g GenerateConfig) Options() generate.Options {
	return generate.Options{
		Customers: g.Customers,
		Orders:    g.Orders,
		EmailRate: g.EmailRate,
		StartDate: g.StartDate,
		Days:      g.Days,
		Seed:      g.Seed,
	}
}

// ServeConfig holds configuration for the API server.
type ServeConfig struct {
	Port  int  `koanf:"port" yaml:"port"`
	Watch bool `koanf:"watch" yaml:"watch"`
}

// Default returns the configuration used when nothing else is set.
// Paths are relative to the project root.
func Default() *Config {
	opts := generate.DefaultOptions()
	target := &warehouse.Config{Type: DefaultTargetType}
	warehouse.ApplyDefaults(target)
	return &Config{
		RawDir:       DefaultRawDir,
		CleanedDir:   DefaultCleanedDir,
		OutputFile:   dataset.SalesFile,
		LogPath:      DefaultLogPath,
		StatePath:    DefaultStateFile,
		OutputFormat: DefaultOutput,
		Generate: GenerateConfig{
			Customers: opts.Customers,
			Orders:    opts.Orders,
			EmailRate: opts.EmailRate,
			StartDate: opts.StartDate,
			Days:      opts.Days,
		},
		Target: target,
		Serve:  ServeConfig{Port: DefaultServePort},
	}
}

// CleanConfig returns the cleaner's file locations.
func (c *Config) CleanConfig() clean.Config {
	return clean.Config{
		RawDir:     c.RawDir,
		CleanedDir: c.CleanedDir,
		OutputFile: c.OutputFile,
	}
}

// SalesPath is the merged output file.
func (c *Config) SalesPath() string {
	return c.CleanConfig().OutputPath()
}

// LoggingOptions returns the logger settings for a command invocation.
func (c *Config) LoggingOptions(stderr io.Writer) logging.Options {
	return logging.Options{
		LogPath: c.LogPath,
		Verbose: c.Verbose,
		Stderr:  stderr,
	}
}

// Rel shortens path for display when it lives under the project root.
func (c *Config) Rel(path string) string {
	if c.ProjectRoot == "" {
		return path
	}
	rel, err := filepath.Rel(c.ProjectRoot, path)
	if err != nil || filepath.IsAbs(rel) || (len(rel) >= 2 && rel[:2] == "..") {
		return path
	}
	return rel
}
