// Package clean loads the raw customer, product and order tables, drops
// invalid rows, joins the survivors and writes the merged sales table.
package clean

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/leapstack-labs/salesprep/internal/dataset"
)

// Config holds the cleaner's file locations.
type Config struct {
	// RawDir contains customers.csv, products.csv and orders.csv
	RawDir string
	// CleanedDir receives the merged table, created if absent
	CleanedDir string
	// OutputFile is the merged file name (defaults to dataset.SalesFile)
	OutputFile string
}

// OutputPath returns the full path of the merged file.
func (c Config) OutputPath() string {
	name := c.OutputFile
	if name == "" {
		name = dataset.SalesFile
	}
	return filepath.Join(c.CleanedDir, name)
}

// Result describes a completed cleaning run.
type Result struct {
	Raw        Shapes                `json:"raw"`
	Removed    Removed               `json:"removed"`
	Records    []dataset.SalesRecord `json:"-"`
	Summary    dataset.Summary       `json:"summary"`
	OutputPath string                `json:"output_path"`
}

// Option configures a Cleaner.
type Option func(*Cleaner)

// WithLoadHook registers fn to be called with the raw table shapes right
// after loading, before any row is dropped.
func WithLoadHook(fn func(Shapes)) Option {
	return func(c *Cleaner) {
		c.onLoad = fn
	}
}

// Cleaner runs the cleaning pipeline.
type Cleaner struct {
	cfg    Config
	logger *slog.Logger
	onLoad func(Shapes)
}

// New creates a cleaner. A nil logger discards output.
func New(cfg Config, logger *slog.Logger, opts ...Option) *Cleaner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := &Cleaner{cfg: cfg, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run executes the pipeline once: load, filter, join, derive, validate and
// write. Any error aborts the run; nothing is written on failure.
func (c *Cleaner) Run(ctx context.Context) (*Result, error) {
	c.logger.Info("Starting data cleaning process.")

	tables, err := LoadTables(ctx, c.cfg.RawDir)
	if err != nil {
		c.logger.Error(fmt.Sprintf("Error loading raw data: %v", err))
		return nil, err
	}
	c.logger.Info("Raw data loaded successfully.")

	res := &Result{Raw: tables.Shapes(), OutputPath: c.cfg.OutputPath()}
	if c.onLoad != nil {
		c.onLoad(res.Raw)
	}

	customers := FilterCustomers(tables.Customers)
	if customers.Err != nil {
		return nil, fmt.Errorf("failed to filter customers: %w", customers.Err)
	}
	res.Removed.Customers = tables.Customers.Nrow() - customers.Nrow()
	c.logger.Info(fmt.Sprintf("Customers cleaned: %d rows removed.", res.Removed.Customers))

	products := FilterProducts(tables.Products)
	if products.Err != nil {
		return nil, fmt.Errorf("failed to filter products: %w", products.Err)
	}
	res.Removed.Products = tables.Products.Nrow() - products.Nrow()
	c.logger.Info(fmt.Sprintf("Products cleaned: %d rows removed.", res.Removed.Products))

	orders, removed := FilterOrders(tables.Orders, IDSet(customers, "customer_id"), IDSet(products, "product_id"))
	if orders.Err != nil {
		return nil, fmt.Errorf("failed to filter orders: %w", orders.Err)
	}
	removed.Customers = res.Removed.Customers
	removed.Products = res.Removed.Products
	res.Removed = removed
	c.logger.Info(fmt.Sprintf("Orders cleaned: %d rows removed.", removed.Orders))
	c.logger.Debug("order filters applied",
		"quantity", removed.OrdersQuantity,
		"customer", removed.OrdersCustomer,
		"product", removed.OrdersProduct)

	merged, err := Merge(orders, customers, products)
	if err != nil {
		return nil, err
	}

	records, err := Derive(merged)
	if err != nil {
		return nil, fmt.Errorf("failed to derive columns: %w", err)
	}

	if err := Validate(records); err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			c.logger.Error(verr.Error())
		}
		return nil, err
	}
	c.logger.Info("Validation checks passed.")

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := dataset.WriteSales(res.OutputPath, records); err != nil {
		return nil, err
	}
	c.logger.Info(fmt.Sprintf("Cleaned data saved: %s", res.OutputPath))

	res.Records = records
	res.Summary = dataset.Summarize(records)
	c.logger.Info("Data cleaning process completed successfully.")
	return res, nil
}

// Run cleans the data described by cfg with a default Cleaner.
func Run(ctx context.Context, cfg Config, logger *slog.Logger) (*Result, error) {
	return New(cfg, logger).Run(ctx)
}
