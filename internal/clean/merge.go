package clean

// merge.go - joining the filtered tables and deriving report columns

import (
	"fmt"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/leapstack-labs/salesprep/internal/dataset"
)

// Merge inner-joins orders to customers on customer_id, then to products on
// product_id. Orders without a match on either side are dropped.
func Merge(orders, customers, products dataframe.DataFrame) (dataframe.DataFrame, error) {
	merged := orders.InnerJoin(customers, "customer_id")
	if merged.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to join customers: %w", merged.Err)
	}
	merged = merged.InnerJoin(products, "product_id")
	if merged.Err != nil {
		return dataframe.DataFrame{}, fmt.Errorf("failed to join products: %w", merged.Err)
	}
	return merged, nil
}

// Derive converts a merged frame to sales records, parsing order dates and
// computing year, month, month_name and total_sales = quantity * price.
// Records keep the row order of the frame.
func Derive(merged dataframe.DataFrame) ([]dataset.SalesRecord, error) {
	cols := frameColumns{df: merged}

	orderIDs := cols.ints("order_id")
	customerIDs := cols.ints("customer_id")
	productIDs := cols.ints("product_id")
	quantities := cols.ints("quantity")
	prices := cols.floats("price")
	dates := cols.strings("order_date")
	firstNames := cols.strings("first_name")
	lastNames := cols.strings("last_name")
	emails := cols.strings("email")
	states := cols.strings("state")
	productNames := cols.strings("product_name")
	categories := cols.strings("category")
	if cols.err != nil {
		return nil, cols.err
	}

	records := make([]dataset.SalesRecord, merged.Nrow())
	for i := range records {
		date, err := dataset.ParseDate(dates[i])
		if err != nil {
			return nil, fmt.Errorf("order %d: %w", orderIDs[i], err)
		}

		records[i] = dataset.SalesRecord{
			OrderID:     orderIDs[i],
			CustomerID:  customerIDs[i],
			ProductID:   productIDs[i],
			Quantity:    quantities[i],
			OrderDate:   date,
			FirstName:   firstNames[i],
			LastName:    lastNames[i],
			Email:       emails[i],
			State:       states[i],
			ProductName: productNames[i],
			Category:    categories[i],
			Price:       prices[i],
			Year:        date.Year(),
			Month:       int(date.Month()),
			MonthName:   date.Month().String(),
			TotalSales:  float64(quantities[i]) * prices[i],
		}
	}
	return records, nil
}

// frameColumns extracts typed columns, keeping the first error.
type frameColumns struct {
	df  dataframe.DataFrame
	err error
}

func (c *frameColumns) col(name string) (series.Series, bool) {
	if c.err != nil {
		return series.Series{}, false
	}
	s := c.df.Col(name)
	if s.Err != nil {
		c.err = fmt.Errorf("%w: %s", dataset.ErrMissingColumn, name)
		return series.Series{}, false
	}
	return s, true
}

func (c *frameColumns) ints(name string) []int {
	s, ok := c.col(name)
	if !ok {
		return nil
	}
	out, err := s.Int()
	if err != nil {
		c.err = fmt.Errorf("column %s: %w", name, err)
	}
	return out
}

func (c *frameColumns) floats(name string) []float64 {
	s, ok := c.col(name)
	if !ok {
		return nil
	}
	return s.Float()
}

// strings maps missing values to "".
func (c *frameColumns) strings(name string) []string {
	s, ok := c.col(name)
	if !ok {
		return nil
	}
	out := make([]string, s.Len())
	for i := range out {
		if el := s.Elem(i); !el.IsNA() {
			out[i] = el.String()
		}
	}
	return out
}
