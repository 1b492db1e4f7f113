package dataset

// csv.go - typed CSV encoding for raw and merged tables

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// FormatFloat renders a float in shortest round-trip form.
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseDate accepts a bare date or a date with a midnight timestamp.
func ParseDate(s string) (time.Time, error) {
	for _, layout := range []string{DateLayout, "2006-01-02 15:04:05", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid date %q", s)
}

// WriteFile creates path (and its parent directory) and streams rows produced
// by fn into it as CSV with the given header.
func WriteFile(path string, header []string, fn func(w *csv.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return fmt.Errorf("failed to create directory for %s: %w", path, err)
	}

	f, err := os.Create(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write header to %s: %w", path, err)
	}
	if err := fn(w); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to flush %s: %w", path, err)
	}
	return f.Close()
}

// WriteCustomers writes customers.csv.
func WriteCustomers(path string, customers []Customer) error {
	return WriteFile(path, CustomerColumns, func(w *csv.Writer) error {
		for _, c := range customers {
			if err := w.Write([]string{
				strconv.Itoa(c.ID), c.FirstName, c.LastName, c.Email, c.State,
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteProducts writes products.csv.
func WriteProducts(path string, products []Product) error {
	return WriteFile(path, ProductColumns, func(w *csv.Writer) error {
		for _, p := range products {
			if err := w.Write([]string{
				strconv.Itoa(p.ID), p.Name, p.Category, FormatFloat(p.Price),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteOrders writes orders.csv.
func WriteOrders(path string, orders []Order) error {
	return WriteFile(path, OrderColumns, func(w *csv.Writer) error {
		for _, o := range orders {
			if err := w.Write([]string{
				strconv.Itoa(o.ID),
				strconv.Itoa(o.CustomerID),
				strconv.Itoa(o.ProductID),
				strconv.Itoa(o.Quantity),
				o.OrderDate.Format(DateLayout),
			}); err != nil {
				return err
			}
		}
		return nil
	})
}

// WriteSales writes the merged table.
func WriteSales(path string, records []SalesRecord) error {
	return WriteFile(path, SalesColumns, func(w *csv.Writer) error {
		for i := range records {
			if err := w.Write(records[i].strings()); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *SalesRecord) strings() []string {
	return []string{
		strconv.Itoa(r.OrderID),
		strconv.Itoa(r.CustomerID),
		strconv.Itoa(r.ProductID),
		strconv.Itoa(r.Quantity),
		r.OrderDate.Format(DateLayout),
		r.FirstName,
		r.LastName,
		r.Email,
		r.State,
		r.ProductName,
		r.Category,
		FormatFloat(r.Price),
		strconv.Itoa(r.Year),
		strconv.Itoa(r.Month),
		r.MonthName,
		FormatFloat(r.TotalSales),
	}
}

// MarshalJSON renders the order date as YYYY-MM-DD.
func (r SalesRecord) MarshalJSON() ([]byte, error) {
	type plain SalesRecord
	return json.Marshal(struct {
		plain
		OrderDate string `json:"order_date"`
	}{plain: plain(r), OrderDate: r.OrderDate.Format(DateLayout)})
}

// ReadSales reads a merged sales file written by WriteSales.
func ReadSales(path string) ([]SalesRecord, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from configuration
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	records, err := DecodeSales(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}

// DecodeSales parses merged sales CSV from r. Columns are matched by header
// name so extra columns are ignored.
func DecodeSales(r io.Reader) ([]SalesRecord, error) {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	for _, name := range SalesColumns {
		if _, ok := idx[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	var out []SalesRecord
	line := 1
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
		line++

		p := rowParser{row: row, idx: idx}
		rec := SalesRecord{
			OrderID:     p.int("order_id"),
			CustomerID:  p.int("customer_id"),
			ProductID:   p.int("product_id"),
			Quantity:    p.int("quantity"),
			OrderDate:   p.date("order_date"),
			FirstName:   p.str("first_name"),
			LastName:    p.str("last_name"),
			Email:       p.str("email"),
			State:       p.str("state"),
			ProductName: p.str("product_name"),
			Category:    p.str("category"),
			Price:       p.float("price"),
			Year:        p.int("year"),
			Month:       p.int("month"),
			MonthName:   p.str("month_name"),
			TotalSales:  p.float("total_sales"),
		}
		if p.err != nil {
			return nil, fmt.Errorf("line %d: %w", line, p.err)
		}
		out = append(out, rec)
	}
	return out, nil
}

// rowParser records the first conversion error and returns zero values after it.
type rowParser struct {
	row []string
	idx map[string]int
	err error
}

func (p *rowParser) str(col string) string {
	return p.row[p.idx[col]]
}

func (p *rowParser) int(col string) int {
	if p.err != nil {
		return 0
	}
	v, err := strconv.Atoi(p.str(col))
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func (p *rowParser) float(col string) float64 {
	if p.err != nil {
		return 0
	}
	v, err := strconv.ParseFloat(p.str(col), 64)
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}

func (p *rowParser) date(col string) time.Time {
	if p.err != nil {
		return time.Time{}
	}
	v, err := ParseDate(p.str(col))
	if err != nil {
		p.err = fmt.Errorf("column %s: %w", col, err)
	}
	return v
}
