// Package warehouse loads the cleaned sales table into an analytical
// database for BI tools.
//
// Concrete adapters live in subpackages and register themselves in init().
// Import them with a blank identifier:
//
//	import _ "github.com/leapstack-labs/salesprep/internal/warehouse/duckdb"
package warehouse

import (
	"context"
)

// Config describes a target database.
type Config struct {
	Type     string            `koanf:"type" json:"type" yaml:"type"`
	Path     string            `koanf:"path" json:"path,omitempty" yaml:"path,omitempty"`
	Host     string            `koanf:"host" json:"host,omitempty" yaml:"host,omitempty"`
	Port     int               `koanf:"port" json:"port,omitempty" yaml:"port,omitempty"`
	Database string            `koanf:"database" json:"database,omitempty" yaml:"database,omitempty"`
	Username string            `koanf:"user" json:"user,omitempty" yaml:"user,omitempty"`
	Password string            `koanf:"password" json:"-" yaml:"password,omitempty"`
	Schema   string            `koanf:"schema" json:"schema,omitempty" yaml:"schema,omitempty"`
	Options  map[string]string `koanf:"options" json:"options,omitempty" yaml:"options,omitempty"`
}

// Adapter is implemented by every target database.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// Exec executes a SQL statement that doesn't return rows.
	Exec(ctx context.Context, sql string) error

	// LoadCSV replaces tableName with the contents of a CSV file with a header row.
	LoadCSV(ctx context.Context, tableName string, filePath string) error

	// RowCount returns the number of rows in tableName.
	RowCount(ctx context.Context, tableName string) (int64, error)

	// DialectName returns the SQL dialect name, e.g. "duckdb".
	DialectName() string
}
