package clean

// filter.go - row filters applied before the join

import (
	"strings"

	roaring "github.com/RoaringBitmap/roaring/roaring64"
	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
)

// Removed counts the rows dropped by each filter.
type Removed struct {
	Customers int `json:"customers"`
	Products  int `json:"products"`
	Orders    int `json:"orders"`

	// Orders broken down by rule, in the order the rules run.
	OrdersQuantity int `json:"orders_quantity"`
	OrdersCustomer int `json:"orders_customer"`
	OrdersProduct  int `json:"orders_product"`
}

// validEmail keeps emails containing "@". Empty cells never match.
func validEmail(el series.Element) bool {
	return !el.IsNA() && strings.Contains(el.String(), "@")
}

// FilterCustomers drops customers with a missing or malformed email.
func FilterCustomers(customers dataframe.DataFrame) dataframe.DataFrame {
	return customers.Filter(dataframe.F{
		Colname:    "email",
		Comparator: series.CompFunc,
		Comparando: validEmail,
	})
}

// FilterProducts drops products priced at or below zero.
func FilterProducts(products dataframe.DataFrame) dataframe.DataFrame {
	return products.Filter(dataframe.F{
		Colname:    "price",
		Comparator: series.Greater,
		Comparando: 0.0,
	})
}

// IDSet returns the non-negative integer ids of column col as a bitmap.
func IDSet(df dataframe.DataFrame, col string) *roaring.Bitmap {
	set := roaring.New()
	s := df.Col(col)
	for i := 0; i < s.Len(); i++ {
		el := s.Elem(i)
		if el.IsNA() {
			continue
		}
		id, err := el.Int()
		if err != nil || id < 0 {
			continue
		}
		set.Add(uint64(id))
	}
	return set
}

// memberOf keeps rows whose integer key is in set.
func memberOf(set *roaring.Bitmap) func(series.Element) bool {
	return func(el series.Element) bool {
		if el.IsNA() {
			return false
		}
		id, err := el.Int()
		if err != nil || id < 0 {
			return false
		}
		return set.Contains(uint64(id))
	}
}

// FilterOrders drops orders with a non-positive quantity, then orders whose
// customer is not in customers, then orders whose product is not in
// products. Each rule only sees the rows kept by the previous one.
func FilterOrders(orders dataframe.DataFrame, customers, products *roaring.Bitmap) (dataframe.DataFrame, Removed) {
	var removed Removed

	before := orders.Nrow()
	orders = orders.Filter(dataframe.F{
		Colname:    "quantity",
		Comparator: series.Greater,
		Comparando: 0,
	})
	removed.OrdersQuantity = before - orders.Nrow()

	before = orders.Nrow()
	orders = orders.Filter(dataframe.F{
		Colname:    "customer_id",
		Comparator: series.CompFunc,
		Comparando: memberOf(customers),
	})
	removed.OrdersCustomer = before - orders.Nrow()

	before = orders.Nrow()
	orders = orders.Filter(dataframe.F{
		Colname:    "product_id",
		Comparator: series.CompFunc,
		Comparando: memberOf(products),
	})
	removed.OrdersProduct = before - orders.Nrow()

	removed.Orders = removed.OrdersQuantity + removed.OrdersCustomer + removed.OrdersProduct
	return orders, removed
}
