// Package dataset defines the customer, product, order and merged sales
// tables used by the pipeline, together with their CSV layouts.
package dataset

import (
	"errors"
	"time"
)

// File names inside the raw and cleaned directories.
const (
	CustomersFile = "customers.csv"
	ProductsFile  = "products.csv"
	OrdersFile    = "orders.csv"
	SalesFile     = "sales_cleaned_for_powerbi.csv"
)

// DateLayout is the on-disk format of order dates.
const DateLayout = "2006-01-02"

// ErrMissingColumn is returned when a CSV header lacks a required column.
var ErrMissingColumn = errors.New("missing column")

// Column headers, in file order.
var (
	CustomerColumns = []string{"customer_id", "first_name", "last_name", "email", "state"}
	ProductColumns  = []string{"product_id", "product_name", "category", "price"}
	OrderColumns    = []string{"order_id", "customer_id", "product_id", "quantity", "order_date"}
	SalesColumns    = []string{
		"order_id", "customer_id", "product_id", "quantity", "order_date",
		"first_name", "last_name", "email", "state",
		"product_name", "category", "price",
		"year", "month", "month_name", "total_sales",
	}
)

// Customer is a row of customers.csv. An empty Email means the value is absent.
type Customer struct {
	ID        int
	FirstName string
	LastName  string
	Email     string
	State     string
}

// Product is a row of products.csv.
type Product struct {
	ID       int
	Name     string
	Category string
	Price    float64
}

// Order is a row of orders.csv.
type Order struct {
	ID         int
	CustomerID int
	ProductID  int
	Quantity   int
	OrderDate  time.Time
}

// SalesRecord is one merged order with its customer, product and derived columns.
type SalesRecord struct {
	OrderID    int       `json:"order_id"`
	CustomerID int       `json:"customer_id"`
	ProductID  int       `json:"product_id"`
	Quantity   int       `json:"quantity" validate:"gt=0"`
	OrderDate  time.Time `json:"order_date"`

	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	State     string `json:"state"`

	ProductName string  `json:"product_name"`
	Category    string  `json:"category"`
	Price       float64 `json:"price" validate:"gt=0"`

	Year       int     `json:"year"`
	Month      int     `json:"month"`
	MonthName  string  `json:"month_name"`
	TotalSales float64 `json:"total_sales" validate:"gte=0"`
}

// Dataset bundles the three raw tables.
type Dataset struct {
	Customers []Customer
	Products  []Product
	Orders    []Order
}
