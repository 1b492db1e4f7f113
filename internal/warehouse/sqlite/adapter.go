// Package sqlite provides the SQLite warehouse target.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/leapstack-labs/salesprep/internal/warehouse"

	_ "modernc.org/sqlite" // sqlite driver
)

// insertBatch is the number of rows inserted per prepared statement call.
const insertBatch = 100

// Adapter implements warehouse.Adapter for SQLite.
type Adapter struct {
	warehouse.BaseSQLAdapter
}

// New creates a new SQLite adapter instance.
// If logger is nil, a discard logger is used.
func New(logger *slog.Logger) *Adapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Adapter{
		BaseSQLAdapter: warehouse.BaseSQLAdapter{Logger: logger},
	}
}

// DialectName returns the SQL dialect for this adapter.
func (a *Adapter) DialectName() string {
	return "sqlite"
}

// Connect opens the SQLite file at cfg.Path (or cfg.Database), defaulting to
// an in-memory database.
func (a *Adapter) Connect(ctx context.Context, cfg warehouse.Config) error {
	path := cfg.Path
	if path == "" {
		path = cfg.Database
	}
	if path == "" {
		path = ":memory:"
	}

	a.Logger.Debug("connecting to sqlite", slog.String("path", path))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.DB = db
	a.Cfg = cfg
	return nil
}

// LoadCSV replaces tableName with TEXT columns taken from the CSV header and
// inserts every row inside a single transaction.
func (a *Adapter) LoadCSV(ctx context.Context, tableName string, filePath string) (err error) {
	if a.DB == nil {
		return warehouse.ErrNotConnected
	}
	if err := warehouse.ValidateTableName(tableName); err != nil {
		return err
	}

	file, err := os.Open(filePath) //nolint:gosec // path comes from configuration
	if err != nil {
		return fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer func() { _ = file.Close() }()

	reader := csv.NewReader(file)
	headers, err := reader.Read()
	if err != nil {
		return fmt.Errorf("failed to read CSV header: %w", err)
	}

	tx, err := a.DB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	for _, stmt := range warehouse.TextTableSQL(tableName, headers) {
		if _, err = tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}

	n, err := insertRows(ctx, tx, tableName, len(headers), reader)
	if err != nil {
		return fmt.Errorf("failed to insert rows: %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	a.Logger.Debug("loaded rows", slog.String("table", tableName), slog.Int("rows", n))
	return nil
}

// insertRows inserts CSV records in multi-row batches and returns the row count.
func insertRows(ctx context.Context, tx *sql.Tx, tableName string, width int, reader *csv.Reader) (int, error) {
	placeholders := "(" + strings.TrimSuffix(strings.Repeat("?, ", width), ", ") + ")"

	total := 0
	batch := make([]any, 0, insertBatch*width)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		rows := len(batch) / width
		values := strings.TrimSuffix(strings.Repeat(placeholders+", ", rows), ", ")
		query := fmt.Sprintf("INSERT INTO %s VALUES %s", tableName, values) //nolint:gosec // validated table name
		if _, err := tx.ExecContext(ctx, query, batch...); err != nil {
			return err
		}
		total += rows
		batch = batch[:0]
		return nil
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return total, err
		}
		for _, v := range record {
			batch = append(batch, v)
		}
		if len(batch) >= insertBatch*width {
			if err := flush(); err != nil {
				return total, err
			}
		}
	}
	return total, flush()
}

var _ warehouse.Adapter = (*Adapter)(nil)
