package postgres

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/leapstack-labs/salesprep/internal/warehouse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPostgresDSN(t *testing.T) {
	tests := []struct {
		name     string
		config   warehouse.Config
		expected string
	}{
		{
			name: "basic connection",
			config: warehouse.Config{
				Host:     "localhost",
				Port:     5432,
				Database: "testdb",
				Username: "user",
				Password: "pass",
			},
			expected: "host=localhost port=5432 dbname=testdb sslmode=disable user=user password=pass",
		},
		{
			name: "with custom sslmode",
			config: warehouse.Config{
				Host:     "prod.example.com",
				Port:     5432,
				Database: "proddb",
				Username: "admin",
				Options:  map[string]string{"sslmode": "require"},
			},
			expected: "host=prod.example.com port=5432 dbname=proddb sslmode=require user=admin",
		},
		{
			name:     "defaults",
			config:   warehouse.Config{Database: "mydb"},
			expected: "host=localhost port=5432 dbname=mydb sslmode=disable",
		},
		{
			name: "schema",
			config: warehouse.Config{
				Host:     "db.example.com",
				Port:     5433,
				Database: "analytics",
				Schema:   "bi",
			},
			expected: "host=db.example.com port=5433 dbname=analytics sslmode=disable search_path=bi",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, buildPostgresDSN(tt.config))
		})
	}
}

func TestAdapter_CreateTextTable(t *testing.T) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DROP TABLE IF EXISTS sales").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("CREATE TABLE sales (order_id TEXT, quantity TEXT, month_name TEXT)").
		WillReturnResult(sqlmock.NewResult(0, 0))

	adp := New(nil)
	adp.DB = db
	require.NoError(t, adp.createTextTable(context.Background(), "sales", []string{"order_id", "quantity", "month_name"}))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_LoadCSV_CreateFails(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("DROP TABLE IF EXISTS sales").WillReturnError(assert.AnError)

	path := filepath.Join(t.TempDir(), "sales.csv")
	require.NoError(t, os.WriteFile(path, []byte("order_id\n1\n"), 0o600))

	adp := New(nil)
	adp.DB = db
	err = adp.LoadCSV(context.Background(), "sales", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create table")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAdapter_NotConnected(t *testing.T) {
	ctx := context.Background()
	adp := New(nil)

	assert.ErrorIs(t, adp.LoadCSV(ctx, "sales", "sales.csv"), warehouse.ErrNotConnected)
	_, err := adp.RowCount(ctx, "sales")
	assert.ErrorIs(t, err, warehouse.ErrNotConnected)
}

func TestAdapter_DialectName(t *testing.T) {
	assert.Equal(t, "postgres", New(nil).DialectName())
	assert.True(t, warehouse.IsRegistered("postgres"))
}

func TestTargetDefaults(t *testing.T) {
	cfg := warehouse.Config{Type: "Postgres", Path: "data/warehouse.duckdb"}
	warehouse.ApplyDefaults(&cfg)
	assert.Equal(t, warehouse.Config{Type: "postgres", Port: DefaultPort, Schema: DefaultSchema}, cfg)

	cfg = warehouse.Config{Type: "postgres", Port: 6543, Schema: "sales"}
	warehouse.ApplyDefaults(&cfg)
	assert.Equal(t, warehouse.Config{Type: "postgres", Port: 6543, Schema: "sales"}, cfg)
}
