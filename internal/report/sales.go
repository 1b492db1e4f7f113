package report

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/leapstack-labs/salesprep/internal/clean"
	"github.com/leapstack-labs/salesprep/internal/dataset"
	"github.com/leapstack-labs/salesprep/internal/state"
)

// BeforeCleaning prints the raw table shapes. Nothing is printed in JSON
// mode, where the shapes are part of the final result.
func (r *Renderer) BeforeCleaning(s clean.Shapes) {
	if r.EffectiveMode() == ModeJSON {
		return
	}

	r.Header("--- DATA QUALITY REPORT (BEFORE CLEANING) ---")
	t := r.newTable()
	t.AppendHeader(table.Row{"Table", "Rows", "Columns"})
	t.AppendRows([]table.Row{
		{"Customers", s.Customers.Rows, s.Customers.Cols},
		{"Products", s.Products.Rows, s.Products.Cols},
		{"Orders", s.Orders.Rows, s.Orders.Cols},
	})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	t.Render()
}

// AfterCleaning prints the final shape, revenue figures and removal counts.
func (r *Renderer) AfterCleaning(res *clean.Result) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(res)
	}

	r.Println()
	r.Header("--- DATA QUALITY REPORT (AFTER CLEANING) ---")
	r.Field("Final dataset shape", clean.Shape{Rows: res.Summary.Rows, Cols: res.Summary.Columns})
	r.Field("Total Revenue", r.Money(res.Summary.TotalRevenue))
	r.Field("Average Order Value", r.Money(res.Summary.AverageOrderValue))

	t := r.newTable()
	t.AppendHeader(table.Row{"Rule", "Rows removed"})
	t.AppendRows([]table.Row{
		{"customers: missing or invalid email", res.Removed.Customers},
		{"products: price <= 0", res.Removed.Products},
		{"orders: quantity <= 0", res.Removed.OrdersQuantity},
		{"orders: unknown customer", res.Removed.OrdersCustomer},
		{"orders: unknown product", res.Removed.OrdersProduct},
	})
	t.SetColumnConfigs([]table.ColumnConfig{{Number: 2, Align: text.AlignRight}})
	t.Render()

	r.Println()
	r.Success("Data cleaning completed successfully.")
	r.Field("Cleaned file saved to", res.OutputPath)
	return nil
}

// GenerateResult is the JSON shape of a generate run.
type GenerateResult struct {
	Dir       string `json:"dir"`
	Customers int    `json:"customers"`
	Products  int    `json:"products"`
	Orders    int    `json:"orders"`
}

// Generated prints the generated table sizes.
func (r *Renderer) Generated(dir string, ds *dataset.Dataset) error {
	res := GenerateResult{
		Dir:       dir,
		Customers: len(ds.Customers),
		Products:  len(ds.Products),
		Orders:    len(ds.Orders),
	}
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(res)
	}

	r.Success("Large dataset generated successfully.")
	t := r.newTable()
	t.AppendHeader(table.Row{"File", "Rows"})
	t.AppendRows([]table.Row{
		{dataset.CustomersFile, res.Customers},
		{dataset.ProductsFile, res.Products},
		{dataset.OrdersFile, res.Orders},
	})
	t.Render()
	r.Field("Directory", dir)
	return nil
}

// Monthly prints revenue per month.
func (r *Renderer) Monthly(s dataset.Summary) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(s)
	}

	t := r.newTable()
	t.AppendHeader(table.Row{"Month", "Orders", "Revenue"})
	for _, m := range s.Monthly {
		t.AppendRow(table.Row{fmt.Sprintf("%s %d", m.MonthName, m.Year), m.Orders, r.Money(m.Revenue)})
	}
	t.AppendFooter(table.Row{"Total", s.Rows, r.Money(s.TotalRevenue)})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight, AlignFooter: text.AlignRight},
		{Number: 3, Align: text.AlignRight, AlignFooter: text.AlignRight},
	})
	t.Render()
	return nil
}

// Runs prints the run history.
func (r *Renderer) Runs(runs []*state.Run) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(runs)
	}

	if len(runs) == 0 {
		r.Muted("No runs recorded.")
		return nil
	}

	t := r.newTable()
	t.AppendHeader(table.Row{"Run", "Status", "Started", "Duration", "Rows", "Revenue", "Error"})
	for _, run := range runs {
		duration := "-"
		if run.CompletedAt != nil {
			duration = run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond).String()
		}
		t.AppendRow(table.Row{
			shortID(run.ID),
			string(run.Status),
			run.StartedAt.Local().Format("2006-01-02 15:04:05"),
			duration,
			run.Stats.Rows,
			r.Money(run.Stats.TotalRevenue),
			run.Error,
		})
	}
	t.Render()
	r.Printf("(%d runs)\n", len(runs))
	return nil
}

// PublishResult is the JSON shape of a publish run.
type PublishResult struct {
	Target string `json:"target"`
	Table  string `json:"table"`
	Rows   int64  `json:"rows"`
	Source string `json:"source"`
}

// Published prints the outcome of a warehouse load.
func (r *Renderer) Published(res PublishResult) error {
	if r.EffectiveMode() == ModeJSON {
		return r.JSON(res)
	}
	r.Success(fmt.Sprintf("Loaded %s rows into %s (%s).", r.Count(res.Rows), res.Table, res.Target))
	r.Field("Source", res.Source)
	return nil
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
