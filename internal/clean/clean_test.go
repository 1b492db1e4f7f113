package clean

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/leapstack-labs/salesprep/internal/dataset"
	"github.com/leapstack-labs/salesprep/internal/generate"
	"github.com/leapstack-labs/salesprep/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixtureConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		RawDir:     testutil.WriteRawFixtures(t, dir),
		CleanedDir: filepath.Join(dir, "data", "cleaned"),
	}
}

func TestConfig_OutputPath(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{name: "default file", cfg: Config{CleanedDir: "out"}, want: filepath.Join("out", dataset.SalesFile)},
		{name: "custom file", cfg: Config{CleanedDir: "out", OutputFile: "sales.csv"}, want: filepath.Join("out", "sales.csv")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.cfg.OutputPath())
		})
	}
}

func TestRun_Fixtures(t *testing.T) {
	cfg := fixtureConfig(t)
	logger, logs := testutil.NewCaptureLogger(t)

	res, err := New(cfg, logger).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, Shapes{
		Customers: Shape{Rows: 5, Cols: 5},
		Products:  Shape{Rows: 4, Cols: 4},
		Orders:    Shape{Rows: 9, Cols: 5},
	}, res.Raw)

	assert.Equal(t, Removed{
		Customers:      2,
		Products:       1,
		Orders:         5,
		OrdersQuantity: 1,
		OrdersCustomer: 3,
		OrdersProduct:  1,
	}, res.Removed)

	ids := make([]int, len(res.Records))
	for i, r := range res.Records {
		ids[i] = r.OrderID
	}
	assert.Equal(t, []int{1, 2, 3, 9}, ids)

	first := res.Records[0]
	assert.Equal(t, 1, first.CustomerID)
	assert.Equal(t, 101, first.ProductID)
	assert.Equal(t, "Ada", first.FirstName)
	assert.Equal(t, "Lovelace", first.LastName)
	assert.Equal(t, "ada@example.com", first.Email)
	assert.Equal(t, "VA", first.State)
	assert.Equal(t, "Laptop", first.ProductName)
	assert.Equal(t, "Electronics", first.Category)
	assert.Equal(t, 899.99, first.Price)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), first.OrderDate)
	assert.Equal(t, 2024, first.Year)
	assert.Equal(t, 1, first.Month)
	assert.Equal(t, "January", first.MonthName)

	leap := res.Records[1]
	assert.Equal(t, 2, leap.Month)
	assert.Equal(t, 29, leap.OrderDate.Day())
	assert.Equal(t, "February", leap.MonthName)
	assert.Equal(t, "Chair", leap.ProductName)

	assert.Equal(t, "December", res.Records[2].MonthName)
	assert.Equal(t, "July", res.Records[3].MonthName)

	assert.Equal(t, []string{
		"INFO - Starting data cleaning process.",
		"INFO - Raw data loaded successfully.",
		"INFO - Customers cleaned: 2 rows removed.",
		"INFO - Products cleaned: 1 rows removed.",
		"INFO - Orders cleaned: 5 rows removed.",
		"INFO - Validation checks passed.",
		"INFO - Cleaned data saved: " + res.OutputPath,
		"INFO - Data cleaning process completed successfully.",
	}, logs.Lines())

	assert.Equal(t, 4, res.Summary.Rows)
	assert.Equal(t, len(dataset.SalesColumns), res.Summary.Columns)
}

func TestRun_Properties(t *testing.T) {
	cfg := fixtureConfig(t)

	res, err := Run(context.Background(), cfg, testutil.NewTestLogger(t))
	require.NoError(t, err)

	survivingCustomers := map[int]bool{1: true, 2: true, 5: true}
	survivingProducts := map[int]bool{101: true, 102: true, 104: true}

	// at most one row per surviving order
	assert.LessOrEqual(t, len(res.Records), 9-res.Removed.Orders)

	for _, r := range res.Records {
		assert.NotEmpty(t, r.Email)
		assert.Contains(t, r.Email, "@")
		assert.Greater(t, r.Price, 0.0)
		assert.Greater(t, r.Quantity, 0)
		assert.True(t, survivingCustomers[r.CustomerID], "customer %d", r.CustomerID)
		assert.True(t, survivingProducts[r.ProductID], "product %d", r.ProductID)
		assert.Equal(t, float64(r.Quantity)*r.Price, r.TotalSales)
		assert.NotEqual(t, 3, r.CustomerID, "customer without email must be dropped")
		assert.NotEqual(t, 103, r.ProductID, "zero-priced product must be dropped")
	}
}

func TestRun_WritesMergedFile(t *testing.T) {
	cfg := fixtureConfig(t)

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 5)
	assert.Equal(t, strings.Join(dataset.SalesColumns, ","), lines[0])
	assert.Equal(t,
		"1,1,101,2,2024-01-15,Ada,Lovelace,ada@example.com,VA,Laptop,Electronics,899.99,2024,1,January,"+
			dataset.FormatFloat(float64(2)*899.99),
		lines[1])

	readBack, err := dataset.ReadSales(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, res.Records, readBack)
}

func TestRun_Idempotent(t *testing.T) {
	cfg := fixtureConfig(t)

	res, err := Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	first, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)

	res, err = Run(context.Background(), cfg, nil)
	require.NoError(t, err)
	second, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRun_LoadHook(t *testing.T) {
	cfg := fixtureConfig(t)

	var got Shapes
	calls := 0
	_, err := New(cfg, nil, WithLoadHook(func(s Shapes) {
		calls++
		got = s
	})).Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, calls)
	assert.Equal(t, Shape{Rows: 9, Cols: 5}, got.Orders)
	assert.Equal(t, "(9, 5)", got.Orders.String())
}

func TestRun_MissingRawFile(t *testing.T) {
	cfg := fixtureConfig(t)
	require.NoError(t, os.Remove(filepath.Join(cfg.RawDir, dataset.OrdersFile)))
	logger, logs := testutil.NewCaptureLogger(t)

	_, err := New(cfg, logger).Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, os.ErrNotExist)

	lines := logs.Lines()
	require.Len(t, lines, 2)
	assert.Equal(t, "INFO - Starting data cleaning process.", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ERROR - Error loading raw data: "), lines[1])

	_, statErr := os.Stat(cfg.OutputPath())
	assert.ErrorIs(t, statErr, os.ErrNotExist)
}

func TestRun_MissingColumn(t *testing.T) {
	dir := t.TempDir()
	rawDir := testutil.WriteRaw(t, filepath.Join(dir, "raw"),
		"customer_id,first_name,last_name,state\n1,Ada,Lovelace,VA\n",
		testutil.RawProducts,
		testutil.RawOrders,
	)

	_, err := Run(context.Background(), Config{RawDir: rawDir, CleanedDir: filepath.Join(dir, "out")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorIs(t, err, dataset.ErrMissingColumn)
}

func TestRun_EmptyAfterFiltering(t *testing.T) {
	dir := t.TempDir()
	rawDir := testutil.WriteRaw(t, filepath.Join(dir, "raw"),
		"customer_id,first_name,last_name,email,state\n1,Ada,Lovelace,,VA\n",
		testutil.RawProducts,
		"order_id,customer_id,product_id,quantity,order_date\n1,1,101,2,2024-01-15\n",
	)

	res, err := Run(context.Background(), Config{RawDir: rawDir, CleanedDir: filepath.Join(dir, "out")}, nil)
	require.NoError(t, err)

	assert.Empty(t, res.Records)
	assert.Equal(t, 0, res.Summary.Rows)
	assert.Zero(t, res.Summary.AverageOrderValue)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(dataset.SalesColumns, ",")+"\n", string(data))
}

func TestRun_KeepsTextCellsVerbatim(t *testing.T) {
	dir := t.TempDir()
	rawDir := testutil.WriteRaw(t, filepath.Join(dir, "raw"),
		"customer_id,first_name,last_name,email,state\n1,Ada,,a@b,\n2,NA,null,n@b,TX\n",
		"product_id,product_name,category,price\n101,L,,10.5\n",
		"order_id,customer_id,product_id,quantity,order_date\n1,1,101,2,2024-01-01\n2,2,101,1,2024-01-02\n",
	)

	res, err := Run(context.Background(), Config{RawDir: rawDir, CleanedDir: filepath.Join(dir, "out")}, nil)
	require.NoError(t, err)

	data, err := os.ReadFile(res.OutputPath)
	require.NoError(t, err)
	assert.Equal(t, strings.Join(dataset.SalesColumns, ",")+"\n"+
		"1,1,101,2,2024-01-01,Ada,,a@b,,L,,10.5,2024,1,January,21\n"+
		"2,2,101,1,2024-01-02,NA,null,n@b,TX,L,,10.5,2024,1,January,10.5\n",
		string(data))
	assert.NotContains(t, string(data), "NaN")
}

func TestRun_HeaderOnlyTable(t *testing.T) {
	header := func(body string) string {
		line, _, _ := strings.Cut(body, "\n")
		return line + "\n"
	}

	tests := []struct {
		name      string
		customers string
		products  string
		orders    string
		want      Shapes
	}{
		{
			name:      "customers",
			customers: header(testutil.RawCustomers),
			products:  testutil.RawProducts,
			orders:    testutil.RawOrders,
			want:      Shapes{Customers: Shape{0, 5}, Products: Shape{4, 4}, Orders: Shape{9, 5}},
		},
		{
			name:      "products",
			customers: testutil.RawCustomers,
			products:  header(testutil.RawProducts),
			orders:    testutil.RawOrders,
			want:      Shapes{Customers: Shape{5, 5}, Products: Shape{0, 4}, Orders: Shape{9, 5}},
		},
		{
			name:      "orders",
			customers: testutil.RawCustomers,
			products:  testutil.RawProducts,
			orders:    header(testutil.RawOrders),
			want:      Shapes{Customers: Shape{5, 5}, Products: Shape{4, 4}, Orders: Shape{0, 5}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			rawDir := testutil.WriteRaw(t, filepath.Join(dir, "raw"), tt.customers, tt.products, tt.orders)

			res, err := Run(context.Background(), Config{RawDir: rawDir, CleanedDir: filepath.Join(dir, "out")}, nil)
			require.NoError(t, err)

			assert.Equal(t, tt.want, res.Raw)
			assert.Empty(t, res.Records)

			data, err := os.ReadFile(res.OutputPath)
			require.NoError(t, err)
			assert.Equal(t, strings.Join(dataset.SalesColumns, ",")+"\n", string(data))
		})
	}
}

func TestRun_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	rawDir := testutil.WriteRaw(t, filepath.Join(dir, "raw"), testutil.RawCustomers, testutil.RawProducts, "")

	_, err := Run(context.Background(), Config{RawDir: rawDir, CleanedDir: filepath.Join(dir, "out")}, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrLoad)
	assert.ErrorContains(t, err, "no header row")
}

func TestRun_GeneratedWithoutOrders(t *testing.T) {
	dir := t.TempDir()
	rawDir := filepath.Join(dir, "raw")

	opts := generate.DefaultOptions()
	opts.Seed = 7
	opts.Orders = 0
	_, err := generate.Run(rawDir, opts, testutil.NewTestLogger(t))
	require.NoError(t, err)

	res, err := Run(context.Background(), Config{RawDir: rawDir, CleanedDir: filepath.Join(dir, "cleaned")}, testutil.NewTestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, Shape{Rows: 0, Cols: 5}, res.Raw.Orders)
	assert.Empty(t, res.Records)
	assert.Zero(t, res.Summary.AverageOrderValue)
}

func TestRun_CanceledContext(t *testing.T) {
	cfg := fixtureConfig(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Run(ctx, cfg, nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestRun_GeneratedData(t *testing.T) {
	dir := t.TempDir()
	rawDir := filepath.Join(dir, "raw")

	opts := generate.DefaultOptions()
	opts.Seed = 7
	_, err := generate.Run(rawDir, opts, testutil.NewTestLogger(t))
	require.NoError(t, err)

	res, err := Run(context.Background(), Config{RawDir: rawDir, CleanedDir: filepath.Join(dir, "cleaned")}, testutil.NewTestLogger(t))
	require.NoError(t, err)

	assert.Equal(t, Shape{Rows: 1000, Cols: 5}, res.Raw.Orders)
	assert.Equal(t, 0, res.Removed.Products)
	assert.Equal(t, 0, res.Removed.OrdersQuantity)
	assert.Greater(t, len(res.Records), 0)
	assert.Less(t, len(res.Records), 1000)
	assert.Equal(t, 1000-res.Removed.Orders, len(res.Records))
}
