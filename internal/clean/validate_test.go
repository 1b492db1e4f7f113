package clean

import (
	"errors"
	"math"
	"testing"

	"github.com/leapstack-labs/salesprep/internal/dataset"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRecord() dataset.SalesRecord {
	return dataset.SalesRecord{OrderID: 1, Quantity: 2, Price: 10, TotalSales: 20}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *dataset.SalesRecord)
		want   []string
	}{
		{name: "valid", mutate: func(*dataset.SalesRecord) {}},
		{name: "zero price", mutate: func(r *dataset.SalesRecord) { r.Price = 0 }, want: []string{"price > 0"}},
		{name: "negative quantity", mutate: func(r *dataset.SalesRecord) { r.Quantity = -1 }, want: []string{"quantity > 0"}},
		{name: "negative total", mutate: func(r *dataset.SalesRecord) { r.TotalSales = -0.01 }, want: []string{"total_sales >= 0"}},
		{name: "zero total is fine", mutate: func(r *dataset.SalesRecord) { r.TotalSales = 0 }},
		{name: "NaN price", mutate: func(r *dataset.SalesRecord) { r.Price = math.NaN() }, want: []string{"price > 0"}},
		{
			name: "several",
			mutate: func(r *dataset.SalesRecord) {
				r.Price = -5
				r.Quantity = 0
				r.TotalSales = -1
			},
			want: []string{"price > 0", "quantity > 0", "total_sales >= 0"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := validRecord()
			tt.mutate(&r)

			err := Validate([]dataset.SalesRecord{validRecord(), r})
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			got := make([]string, len(verr.Violations))
			for i, v := range verr.Violations {
				got[i] = v.Invariant
				assert.Equal(t, []int{1}, v.Rows)
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate_GroupsRows(t *testing.T) {
	records := []dataset.SalesRecord{validRecord(), validRecord(), validRecord(), validRecord()}
	records[0].Quantity = 0
	records[2].Quantity = -3
	records[3].Price = 0

	err := Validate(records)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	require.Len(t, verr.Violations, 2)
	assert.Equal(t, Violation{Invariant: "price > 0", Rows: []int{3}}, verr.Violations[0])
	assert.Equal(t, Violation{Invariant: "quantity > 0", Rows: []int{0, 2}}, verr.Violations[1])
	assert.Equal(t, "validation failed: price > 0 (1 rows), quantity > 0 (2 rows)", verr.Error())
}

func TestValidate_Empty(t *testing.T) {
	assert.NoError(t, Validate(nil))
}
