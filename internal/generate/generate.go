// Package generate produces the synthetic customer, product and order tables
// consumed by the cleaner.
package generate

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/leapstack-labs/salesprep/internal/dataset"
)

// Default generation parameters.
const (
	DefaultCustomers = 200
	DefaultOrders    = 1000
	DefaultEmailRate = 0.9
	DefaultDays      = 365
)

// DefaultStartDate is the first possible order date.
var DefaultStartDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// States customers are drawn from.
var States = []string{"VA", "CA", "TX", "FL", "NY"}

// Catalog is the fixed product list.
var Catalog = []dataset.Product{
	{ID: 101, Name: "Laptop", Category: "Electronics", Price: 899.99},
	{ID: 102, Name: "Phone", Category: "Electronics", Price: 699.99},
	{ID: 103, Name: "Desk", Category: "Furniture", Price: 299.99},
	{ID: 104, Name: "Chair", Category: "Furniture", Price: 129.99},
	{ID: 105, Name: "Monitor", Category: "Electronics", Price: 199.99},
}

// Options controls the size and shape of the generated data.
type Options struct {
	Customers int
	Orders    int
	// EmailRate is the probability that a customer has an email.
	EmailRate float64
	StartDate time.Time
	// Days is the upper bound of the order date offset, inclusive.
	Days int
	// Seed makes output reproducible when non-zero.
	Seed uint64
}

// DefaultOptions returns the standard 200 customer / 1000 order setup.
func DefaultOptions() Options {
	return Options{
		Customers: DefaultCustomers,
		Orders:    DefaultOrders,
		EmailRate: DefaultEmailRate,
		StartDate: DefaultStartDate,
		Days:      DefaultDays,
	}
}

// Validate checks the options for values that cannot produce a dataset.
func (o Options) Validate() error {
	if o.Customers < 1 {
		return fmt.Errorf("customers must be at least 1, got %d", o.Customers)
	}
	if o.Orders < 0 {
		return fmt.Errorf("orders must not be negative, got %d", o.Orders)
	}
	if o.EmailRate < 0 || o.EmailRate > 1 {
		return fmt.Errorf("email_rate must be within [0, 1], got %g", o.EmailRate)
	}
	if o.Days < 0 {
		return fmt.Errorf("days must not be negative, got %d", o.Days)
	}
	if o.StartDate.IsZero() {
		return fmt.Errorf("start_date is required")
	}
	return nil
}

// Generator draws every random value from a single faker source.
type Generator struct {
	opts   Options
	faker  *gofakeit.Faker
	logger *slog.Logger
}

// New creates a generator. A nil logger discards output.
func New(opts Options, logger *slog.Logger) (*Generator, error) {
	if err := opts.Validate(); err != nil {
		return nil, fmt.Errorf("invalid generate options: %w", err)
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{
		opts:   opts,
		faker:  gofakeit.New(opts.Seed),
		logger: logger,
	}, nil
}

// Generate builds the three tables in memory.
func (g *Generator) Generate() *dataset.Dataset {
	ds := &dataset.Dataset{
		Customers: g.customers(),
		Products:  append([]dataset.Product(nil), Catalog...),
	}
	ds.Orders = g.orders()

	g.logger.Debug("generated dataset",
		"customers", len(ds.Customers),
		"products", len(ds.Products),
		"orders", len(ds.Orders))
	return ds
}

func (g *Generator) customers() []dataset.Customer {
	out := make([]dataset.Customer, 0, g.opts.Customers)
	for i := 1; i <= g.opts.Customers; i++ {
		c := dataset.Customer{
			ID:        i,
			FirstName: g.faker.FirstName(),
			LastName:  g.faker.LastName(),
		}
		if g.faker.Float64() < g.opts.EmailRate {
			c.Email = g.faker.Email()
		}
		c.State = g.faker.RandomString(States)
		out = append(out, c)
	}
	return out
}

func (g *Generator) orders() []dataset.Order {
	productIDs := make([]int, len(Catalog))
	for i, p := range Catalog {
		productIDs[i] = p.ID
	}

	out := make([]dataset.Order, 0, g.opts.Orders)
	for i := 1; i <= g.opts.Orders; i++ {
		out = append(out, dataset.Order{
			ID:         i,
			CustomerID: g.faker.IntRange(1, g.opts.Customers),
			ProductID:  g.faker.RandomInt(productIDs),
			Quantity:   g.faker.IntRange(1, 5),
			OrderDate:  g.opts.StartDate.AddDate(0, 0, g.faker.IntRange(0, g.opts.Days)),
		})
	}
	return out
}

// Write persists ds as customers.csv, products.csv and orders.csv under dir,
// creating dir if needed.
func Write(dir string, ds *dataset.Dataset) error {
	if err := dataset.WriteCustomers(filepath.Join(dir, dataset.CustomersFile), ds.Customers); err != nil {
		return err
	}
	if err := dataset.WriteProducts(filepath.Join(dir, dataset.ProductsFile), ds.Products); err != nil {
		return err
	}
	return dataset.WriteOrders(filepath.Join(dir, dataset.OrdersFile), ds.Orders)
}

// Run generates a dataset and writes it to dir.
func Run(dir string, opts Options, logger *slog.Logger) (*dataset.Dataset, error) {
	g, err := New(opts, logger)
	if err != nil {
		return nil, err
	}
	ds := g.Generate()
	if err := Write(dir, ds); err != nil {
		return nil, err
	}
	g.logger.Debug("raw data generated", "dir", dir)
	return ds, nil
}
