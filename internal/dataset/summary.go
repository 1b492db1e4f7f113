package dataset

import (
	"sort"
	"time"
)

// MonthRevenue is the revenue of one calendar month.
type MonthRevenue struct {
	Year      int     `json:"year"`
	Month     int     `json:"month"`
	MonthName string  `json:"month_name"`
	Revenue   float64 `json:"revenue"`
	Orders    int     `json:"orders"`
}

// Summary aggregates a merged sales table.
type Summary struct {
	Rows              int            `json:"rows"`
	Columns           int            `json:"columns"`
	TotalRevenue      float64        `json:"total_revenue"`
	AverageOrderValue float64        `json:"average_order_value"`
	Monthly           []MonthRevenue `json:"monthly_revenue"`
}

// Summarize computes totals over records. The average order value is 0 for
// an empty table and months are sorted chronologically.
func Summarize(records []SalesRecord) Summary {
	s := Summary{Rows: len(records), Columns: len(SalesColumns)}

	months := make(map[int]*MonthRevenue)
	for i := range records {
		r := &records[i]
		s.TotalRevenue += r.TotalSales

		key := r.Year*100 + r.Month
		m, ok := months[key]
		if !ok {
			m = &MonthRevenue{Year: r.Year, Month: r.Month, MonthName: time.Month(r.Month).String()}
			months[key] = m
		}
		m.Revenue += r.TotalSales
		m.Orders++
	}
	if s.Rows > 0 {
		s.AverageOrderValue = s.TotalRevenue / float64(s.Rows)
	}

	keys := make([]int, 0, len(months))
	for k := range months {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	s.Monthly = make([]MonthRevenue, 0, len(keys))
	for _, k := range keys {
		s.Monthly = append(s.Monthly, *months[k])
	}
	return s
}

// SalesFilter selects merged rows. Zero values match everything.
type SalesFilter struct {
	Year     int
	Month    int
	State    string
	Category string
	Limit    int
}

// Match reports whether r passes every set field of f.
func (f SalesFilter) Match(r *SalesRecord) bool {
	switch {
	case f.Year != 0 && r.Year != f.Year:
		return false
	case f.Month != 0 && r.Month != f.Month:
		return false
	case f.State != "" && r.State != f.State:
		return false
	case f.Category != "" && r.Category != f.Category:
		return false
	}
	return true
}

// Select returns the records matching f, in order, up to f.Limit when set.
func Select(records []SalesRecord, f SalesFilter) []SalesRecord {
	out := []SalesRecord{}
	for i := range records {
		if f.Limit > 0 && len(out) >= f.Limit {
			break
		}
		if f.Match(&records[i]) {
			out = append(out, records[i])
		}
	}
	return out
}
