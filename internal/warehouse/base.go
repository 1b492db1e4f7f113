package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
)

// ErrNotConnected is returned by adapter methods called before Connect.
var ErrNotConnected = errors.New("database connection not established")

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

// ValidateTableName accepts plain or schema-qualified identifiers.
func ValidateTableName(name string) error {
	if !tableNamePattern.MatchString(name) {
		return fmt.Errorf("invalid table name %q", name)
	}
	return nil
}

// BaseSQLAdapter provides common database/sql functionality for adapters.
// Embed this struct in concrete adapter implementations to get standard
// Close, Exec and RowCount implementations.
type BaseSQLAdapter struct {
	DB     *sql.DB
	Cfg    Config
	Logger *slog.Logger
}

// Close closes the database connection.
func (b *BaseSQLAdapter) Close() error {
	if b.DB != nil {
		if b.Logger != nil {
			b.Logger.Debug("closing database connection")
		}
		return b.DB.Close()
	}
	return nil
}

// Exec executes a SQL statement that doesn't return rows.
func (b *BaseSQLAdapter) Exec(ctx context.Context, sqlStr string) error {
	if b.DB == nil {
		return ErrNotConnected
	}
	_, err := b.DB.ExecContext(ctx, sqlStr)
	if err != nil {
		return fmt.Errorf("failed to execute SQL: %w", err)
	}
	return nil
}

// RowCount returns the number of rows in tableName.
func (b *BaseSQLAdapter) RowCount(ctx context.Context, tableName string) (int64, error) {
	if b.DB == nil {
		return 0, ErrNotConnected
	}
	if err := ValidateTableName(tableName); err != nil {
		return 0, err
	}

	var n int64
	query := fmt.Sprintf("SELECT COUNT(*) FROM %s", tableName) //nolint:gosec // validated above
	if err := b.DB.QueryRowContext(ctx, query).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count rows in %s: %w", tableName, err)
	}
	return n, nil
}

// IsConnected returns true if the database connection is established.
func (b *BaseSQLAdapter) IsConnected() bool {
	return b.DB != nil
}

// reservedWords are quoted by SanitizeIdentifier.
var reservedWords = map[string]bool{
	"user": true, "order": true, "group": true, "table": true,
	"select": true, "from": true, "where": true, "index": true,
}

// SanitizeIdentifier makes a CSV column name safe for SQL.
func SanitizeIdentifier(name string) string {
	safe := strings.ReplaceAll(name, " ", "_")
	safe = strings.ReplaceAll(safe, "-", "_")
	if strings.ContainsAny(safe, `()[]{}."`) || reservedWords[strings.ToLower(safe)] {
		return `"` + strings.ReplaceAll(safe, `"`, `""`) + `"`
	}
	return safe
}

// TextTableSQL returns the statements that replace tableName with an empty
// table of TEXT columns.
func TextTableSQL(tableName string, columns []string) []string {
	defs := make([]string, len(columns))
	for i, col := range columns {
		defs[i] = SanitizeIdentifier(col) + " TEXT"
	}
	return []string{
		fmt.Sprintf("DROP TABLE IF EXISTS %s", tableName),
		fmt.Sprintf("CREATE TABLE %s (%s)", tableName, strings.Join(defs, ", ")),
	}
}
