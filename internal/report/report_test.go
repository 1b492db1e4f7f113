package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/leapstack-labs/salesprep/internal/clean"
	"github.com/leapstack-labs/salesprep/internal/dataset"
	"github.com/leapstack-labs/salesprep/internal/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRenderer(mode Mode) (*Renderer, *bytes.Buffer, *bytes.Buffer) {
	var out, errOut bytes.Buffer
	return NewRenderer(&out, &errOut, mode), &out, &errOut
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		input   string
		want    Mode
		wantErr bool
	}{
		{"", ModeAuto, false},
		{"auto", ModeAuto, false},
		{"text", ModeText, false},
		{"json", ModeJSON, false},
		{"yaml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseMode(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRenderer_NotATerminal(t *testing.T) {
	r, _, _ := newTestRenderer(ModeAuto)

	assert.False(t, r.IsTTY())
	assert.Equal(t, ModeText, r.EffectiveMode())
	assert.Equal(t, "plain", r.Styles().Header.Render("plain"))
}

func TestRenderer_Money(t *testing.T) {
	r, _, _ := newTestRenderer(ModeText)

	tests := []struct {
		in   float64
		want string
	}{
		{0, "0.00"},
		{2699.97, "2,699.97"},
		{1234567.891, "1,234,567.89"},
		{0.005, "0.01"},
		{899.99 * 3, "2,699.97"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, r.Money(tt.in), "Money(%v)", tt.in)
	}
	assert.Equal(t, "12,345", r.Count(12345))
}

func TestRenderer_BeforeCleaning(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	r.BeforeCleaning(clean.Shapes{
		Customers: clean.Shape{Rows: 200, Cols: 5},
		Products:  clean.Shape{Rows: 5, Cols: 4},
		Orders:    clean.Shape{Rows: 1000, Cols: 5},
	})

	s := out.String()
	assert.Contains(t, s, "--- DATA QUALITY REPORT (BEFORE CLEANING) ---")
	assert.Contains(t, s, "Customers")
	assert.Contains(t, s, "1000")
	assert.Contains(t, s, "┌")
}

func TestRenderer_BeforeCleaningJSONIsSilent(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON)
	r.BeforeCleaning(clean.Shapes{})
	assert.Empty(t, out.String())
}

func sampleResult() *clean.Result {
	return &clean.Result{
		Raw:     clean.Shapes{Orders: clean.Shape{Rows: 9, Cols: 5}},
		Removed: clean.Removed{Customers: 2, Products: 1, Orders: 5, OrdersQuantity: 1, OrdersCustomer: 3, OrdersProduct: 1},
		Summary: dataset.Summary{
			Rows:              4,
			Columns:           16,
			TotalRevenue:      7529.88,
			AverageOrderValue: 1882.47,
		},
		OutputPath: "data/cleaned/sales_cleaned_for_powerbi.csv",
	}
}

func TestRenderer_AfterCleaning(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	require.NoError(t, r.AfterCleaning(sampleResult()))

	s := out.String()
	assert.Contains(t, s, "--- DATA QUALITY REPORT (AFTER CLEANING) ---")
	assert.Contains(t, s, "Final dataset shape: (4, 16)")
	assert.Contains(t, s, "Total Revenue: 7,529.88")
	assert.Contains(t, s, "Average Order Value: 1,882.47")
	assert.Contains(t, s, "orders: unknown customer")
	assert.Contains(t, s, "Cleaned file saved to: data/cleaned/sales_cleaned_for_powerbi.csv")
}

func TestRenderer_AfterCleaningJSON(t *testing.T) {
	r, out, _ := newTestRenderer(ModeJSON)

	require.NoError(t, r.AfterCleaning(sampleResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "data/cleaned/sales_cleaned_for_powerbi.csv", decoded["output_path"])
	assert.NotContains(t, decoded, "Records")
	summary := decoded["summary"].(map[string]any)
	assert.InDelta(t, 4, summary["rows"], 0)
}

func TestRenderer_Generated(t *testing.T) {
	ds := &dataset.Dataset{
		Customers: make([]dataset.Customer, 200),
		Products:  make([]dataset.Product, 5),
		Orders:    make([]dataset.Order, 1000),
	}

	r, out, _ := newTestRenderer(ModeText)
	require.NoError(t, r.Generated("data/raw", ds))
	assert.Contains(t, out.String(), "orders.csv")
	assert.Contains(t, out.String(), "Directory: data/raw")

	r, out, _ = newTestRenderer(ModeJSON)
	require.NoError(t, r.Generated("data/raw", ds))
	var got GenerateResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, GenerateResult{Dir: "data/raw", Customers: 200, Products: 5, Orders: 1000}, got)
}

func TestRenderer_Monthly(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)

	require.NoError(t, r.Monthly(dataset.Summary{
		Rows:         3,
		TotalRevenue: 3000,
		Monthly: []dataset.MonthRevenue{
			{Year: 2024, Month: 1, MonthName: "January", Revenue: 1000, Orders: 1},
			{Year: 2024, Month: 2, MonthName: "February", Revenue: 2000, Orders: 2},
		},
	}))

	s := out.String()
	assert.Contains(t, s, "January 2024")
	assert.Contains(t, s, "2,000.00")
	assert.Contains(t, s, "3,000.00")
}

func TestRenderer_Runs(t *testing.T) {
	started := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	completed := started.Add(1500 * time.Millisecond)
	runs := []*state.Run{
		{
			ID:          "0123456789abcdef",
			Status:      state.RunStatusSuccess,
			StartedAt:   started,
			CompletedAt: &completed,
			Stats:       state.RunStats{Rows: 896, TotalRevenue: 1234.5},
		},
		{ID: "failed-run", Status: state.RunStatusFailed, StartedAt: started, Error: "boom"},
	}

	r, out, _ := newTestRenderer(ModeText)
	require.NoError(t, r.Runs(runs))

	s := out.String()
	assert.Contains(t, s, "01234567")
	assert.NotContains(t, s, "0123456789abcdef")
	assert.Contains(t, s, "1.5s")
	assert.Contains(t, s, "1,234.50")
	assert.Contains(t, s, "boom")
	assert.Contains(t, s, "(2 runs)")
}

func TestRenderer_RunsEmpty(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)
	require.NoError(t, r.Runs(nil))
	assert.Contains(t, out.String(), "No runs recorded.")

	r, out, _ = newTestRenderer(ModeJSON)
	require.NoError(t, r.Runs([]*state.Run{}))
	assert.JSONEq(t, "[]", out.String())
}

func TestRenderer_Published(t *testing.T) {
	r, out, _ := newTestRenderer(ModeText)
	require.NoError(t, r.Published(PublishResult{Target: "duckdb", Table: "sales", Rows: 1204, Source: "sales.csv"}))
	assert.Contains(t, out.String(), "Loaded 1,204 rows into sales (duckdb).")
}

func TestRenderer_Error(t *testing.T) {
	r, out, errOut := newTestRenderer(ModeText)
	r.Error(errors.New("bad").Error())
	assert.Empty(t, out.String())
	assert.Equal(t, "bad\n", errOut.String())
}
