// Package state records cleaning runs in a SQLite database.
package state

import (
	"context"
	"time"
)

// RunStatus represents the status of a cleaning run.
type RunStatus string

// Run status constants.
const (
	RunStatusRunning RunStatus = "running"
	RunStatusSuccess RunStatus = "success"
	RunStatusFailed  RunStatus = "failed"
)

// Run is one invocation of the cleaner.
type Run struct {
	ID          string     `json:"id"`
	Status      RunStatus  `json:"status"`
	StartedAt   time.Time  `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Stats       RunStats   `json:"stats"`
	Error       string     `json:"error,omitempty"`
}

// RunStats are the counts recorded for a successful run.
type RunStats struct {
	RawCustomers     int     `json:"raw_customers"`
	RawProducts      int     `json:"raw_products"`
	RawOrders        int     `json:"raw_orders"`
	CustomersRemoved int     `json:"customers_removed"`
	ProductsRemoved  int     `json:"products_removed"`
	OrdersRemoved    int     `json:"orders_removed"`
	Rows             int     `json:"rows"`
	TotalRevenue     float64 `json:"total_revenue"`
	OutputPath       string  `json:"output_path,omitempty"`
}

// Store is the run history interface.
type Store interface {
	CreateRun(ctx context.Context) (*Run, error)
	CompleteRun(ctx context.Context, id string, stats RunStats) error
	FailRun(ctx context.Context, id string, runErr error) error
	GetRun(ctx context.Context, id string) (*Run, error)
	ListRuns(ctx context.Context, limit int) ([]*Run, error)
	Close() error
}
