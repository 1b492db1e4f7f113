package clean

// load.go - reading the raw tables into data frames

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/leapstack-labs/salesprep/internal/dataset"
	"golang.org/x/sync/errgroup"
)

// ErrLoad wraps every failure to read a raw table.
var ErrLoad = errors.New("failed to load raw data")

var (
	customerTypes = map[string]series.Type{
		"customer_id": series.Int,
		"first_name":  series.String,
		"last_name":   series.String,
		"email":       series.String,
		"state":       series.String,
	}
	productTypes = map[string]series.Type{
		"product_id":   series.Int,
		"product_name": series.String,
		"category":     series.String,
		"price":        series.Float,
	}
	orderTypes = map[string]series.Type{
		"order_id":    series.Int,
		"customer_id": series.Int,
		"product_id":  series.Int,
		"quantity":    series.Int,
		"order_date":  series.String,
	}
)

// Tables holds the three raw tables.
type Tables struct {
	Customers dataframe.DataFrame
	Products  dataframe.DataFrame
	Orders    dataframe.DataFrame
}

// Shape is the row and column count of a table.
type Shape struct {
	Rows int `json:"rows"`
	Cols int `json:"columns"`
}

func (s Shape) String() string {
	return fmt.Sprintf("(%d, %d)", s.Rows, s.Cols)
}

func shapeOf(df dataframe.DataFrame) Shape {
	return Shape{Rows: df.Nrow(), Cols: df.Ncol()}
}

// Shapes reports the size of every raw table.
type Shapes struct {
	Customers Shape `json:"customers"`
	Products  Shape `json:"products"`
	Orders    Shape `json:"orders"`
}

// Shapes returns the size of each table.
func (t *Tables) Shapes() Shapes {
	return Shapes{
		Customers: shapeOf(t.Customers),
		Products:  shapeOf(t.Products),
		Orders:    shapeOf(t.Orders),
	}
}

// LoadTables reads customers.csv, products.csv and orders.csv from rawDir.
// The files are read concurrently and the first failure cancels the rest.
func LoadTables(ctx context.Context, rawDir string) (*Tables, error) {
	var tables Tables

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		tables.Customers, err = readFrame(gctx, filepath.Join(rawDir, dataset.CustomersFile), dataset.CustomerColumns, customerTypes)
		return err
	})
	g.Go(func() (err error) {
		tables.Products, err = readFrame(gctx, filepath.Join(rawDir, dataset.ProductsFile), dataset.ProductColumns, productTypes)
		return err
	})
	g.Go(func() (err error) {
		tables.Orders, err = readFrame(gctx, filepath.Join(rawDir, dataset.OrdersFile), dataset.OrderColumns, orderTypes)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrLoad, err)
	}
	return &tables, nil
}

// loadOptions reads every cell as text except the typed columns. No text is
// mapped to missing: an empty cell stays empty, and only a typed cell that
// does not parse as a number becomes NA.
func loadOptions(types map[string]series.Type) []dataframe.LoadOption {
	return []dataframe.LoadOption{
		dataframe.HasHeader(true),
		dataframe.DetectTypes(false),
		dataframe.DefaultType(series.String),
		dataframe.WithTypes(types),
		dataframe.NaNValues(nil),
	}
}

func readFrame(ctx context.Context, path string, required []string, types map[string]series.Type) (dataframe.DataFrame, error) {
	if err := ctx.Err(); err != nil {
		return dataframe.DataFrame{}, err
	}

	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return dataframe.DataFrame{}, err
	}
	defer func() { _ = f.Close() }()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(records) == 0 {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse %s: no header row", path)
	}

	var df dataframe.DataFrame
	if len(records) == 1 {
		df = emptyFrame(records[0], types)
	} else {
		df = dataframe.LoadRecords(records, loadOptions(types)...)
	}
	if df.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to parse %s: %w", path, df.Err)
	}

	present := make(map[string]bool, df.Ncol())
	for _, name := range df.Names() {
		present[name] = true
	}
	for _, name := range required {
		if !present[name] {
			return dataframe.DataFrame{}, fmt.Errorf("%s: %w: %s", path, dataset.ErrMissingColumn, name)
		}
	}
	return df, nil
}

// emptyFrame builds a zero-row frame for a header-only file, typed the same
// way a populated file would be.
func emptyFrame(header []string, types map[string]series.Type) dataframe.DataFrame {
	cols := make([]series.Series, len(header))
	for i, name := range header {
		t, ok := types[name]
		if !ok {
			t = series.String
		}
		cols[i] = series.New([]string{}, t, name)
	}
	return dataframe.New(cols...)
}
