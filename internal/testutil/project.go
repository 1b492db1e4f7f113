package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// Raw CSV fixtures covering every cleaning rule:
//   - customer 3 has no email, customer 4 has an email without "@"
//   - product 103 is priced at 0.00
//   - order 4 has quantity 0, order 5 references unknown customer 99,
//     orders 6 and 7 reference filtered customers, order 8 references the
//     zero-priced product
const (
	RawCustomers = `customer_id,first_name,last_name,email,state
1,Ada,Lovelace,ada@example.com,VA
2,Alan,Turing,alan@example.com,NY
3,Grace,Hopper,,TX
4,Edsger,Dijkstra,edsger.example.com,CA
5,Barbara,Liskov,barbara@example.com,FL
`
	RawProducts = `product_id,product_name,category,price
101,Laptop,Electronics,899.99
102,Phone,Electronics,699.99
103,Desk,Furniture,0.00
104,Chair,Furniture,129.99
`
	RawOrders = `order_id,customer_id,product_id,quantity,order_date
1,1,101,2,2024-01-15
2,2,104,1,2024-02-29
3,5,102,5,2024-12-31
4,1,102,0,2024-03-01
5,99,101,1,2024-04-01
6,3,101,1,2024-05-01
7,4,104,3,2024-06-01
8,2,103,2,2024-07-01
9,1,104,4,2024-07-04
`
)

// WriteRawFixtures writes the raw fixtures into dir/data/raw and returns the
// raw directory.
func WriteRawFixtures(t testing.TB, dir string) string {
	t.Helper()
	return WriteRaw(t, filepath.Join(dir, "data", "raw"), RawCustomers, RawProducts, RawOrders)
}

// WriteRaw writes the given CSV bodies as customers.csv, products.csv and
// orders.csv into rawDir.
func WriteRaw(t testing.TB, rawDir, customers, products, orders string) string {
	t.Helper()

	if err := os.MkdirAll(rawDir, 0o755); err != nil {
		t.Fatalf("failed to create directory %s: %v", rawDir, err)
	}
	files := map[string]string{
		"customers.csv": customers,
		"products.csv":  products,
		"orders.csv":    orders,
	}
	for name, body := range files {
		if err := os.WriteFile(filepath.Join(rawDir, name), []byte(body), 0o644); err != nil {
			t.Fatalf("failed to create %s: %v", name, err)
		}
	}
	return rawDir
}
