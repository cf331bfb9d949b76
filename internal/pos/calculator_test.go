package pos

import (
	"testing"

	"github.com/shopspring/decimal"
)

func d(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateSaleTotals(t *testing.T) {
	tests := []struct {
		name         string
		lines        []LineInput
		taxRate      string
		discount     string
		wantSubtotal string
		wantTax      string
		wantTotal    string
	}{
		{
			name:         "single line no discount",
			lines:        []LineInput{{UnitPrice: d("100.00"), Quantity: 2}},
			taxRate:      "17.00",
			discount:     "0",
			wantSubtotal: "200.00",
			wantTax:      "34.00",
			wantTotal:    "234.00",
		},
		{
			name: "multiple lines with discount",
			lines: []LineInput{
				{UnitPrice: d("450.00"), Quantity: 1},
				{UnitPrice: d("120.50"), Quantity: 3},
			},
			taxRate:      "17.00",
			discount:     "50.00",
			wantSubtotal: "811.50",
			wantTax:      "137.955",
			wantTotal:    "899.455",
		},
		{
			name:         "zero tax rate",
			lines:        []LineInput{{UnitPrice: d("9.99"), Quantity: 5}},
			taxRate:      "0",
			discount:     "0",
			wantSubtotal: "49.95",
			wantTax:      "0",
			wantTotal:    "49.95",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			totals, err := CalculateSale(tc.lines, d(tc.taxRate), d(tc.discount))
			if err != nil {
				t.Fatalf("CalculateSale: %v", err)
			}
			mustEqual(t, totals.Subtotal, d(tc.wantSubtotal), "subtotal")
			mustEqual(t, totals.TaxTotal, d(tc.wantTax), "tax total")
			mustEqual(t, totals.Total, d(tc.wantTotal), "total")
			// total must always equal subtotal + tax - discount
			mustEqual(t, totals.Total, totals.Subtotal.Add(totals.TaxTotal).Sub(totals.Discount), "total identity")
		})
	}
}

func TestCalculateSaleRejectsNonPositiveQuantity(t *testing.T) {
	for _, qty := range []int{0, -1} {
		_, err := CalculateSale([]LineInput{{UnitPrice: d("10"), Quantity: qty}}, d("17"), decimal.Zero)
		if err != ErrInvalidQuantity {
			t.Fatalf("quantity %d: got %v, want ErrInvalidQuantity", qty, err)
		}
	}
}

func TestCalculateSaleNegativeTotalPassthrough(t *testing.T) {
	// The calculator does not validate oversized discounts; that policy
	// belongs to the coordinator.
	totals, err := CalculateSale([]LineInput{{UnitPrice: d("10.00"), Quantity: 1}}, d("17"), d("100.00"))
	if err != nil {
		t.Fatalf("CalculateSale: %v", err)
	}
	mustEqual(t, totals.Total, d("-88.30"), "negative total")
}

func TestCalculateSaleNoFloatDrift(t *testing.T) {
	// 0.10 summed 100 times must be exactly 10.00, which float64 gets wrong.
	lines := make([]LineInput, 100)
	for i := range lines {
		lines[i] = LineInput{UnitPrice: d("0.10"), Quantity: 1}
	}
	totals, err := CalculateSale(lines, d("0"), decimal.Zero)
	if err != nil {
		t.Fatalf("CalculateSale: %v", err)
	}
	mustEqual(t, totals.Subtotal, d("10.00"), "repeated aggregation")
}
