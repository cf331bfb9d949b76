package pos

import (
	"github.com/shopspring/decimal"
)

var oneHundred = decimal.NewFromInt(100)

// LineInput one basket line as priced input to the calculator.
type LineInput struct {
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal per-line amounts computed by the calculator.
type LineTotal struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Total    decimal.Decimal
}

// SaleTotals sale-level amounts. Total = Subtotal + TaxTotal - Discount.
// A discount larger than subtotal+tax yields a negative total here; the
// calculator is a pure pass-through and leaves that policy to the caller.
type SaleTotals struct {
	Lines    []LineTotal
	Subtotal decimal.Decimal
	TaxTotal decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// CalculateSale computes line and sale totals for a basket. taxRate is a
// flat percentage (17.0 means 17%). All arithmetic is decimal-exact; no
// binary floating point ever touches a currency amount.
func CalculateSale(lines []LineInput, taxRate, discount decimal.Decimal) (*SaleTotals, error) {
	totals := &SaleTotals{
		Lines:    make([]LineTotal, 0, len(lines)),
		Subtotal: decimal.Zero,
		TaxTotal: decimal.Zero,
		Discount: discount,
	}

	rate := taxRate.Div(oneHundred)

	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		qty := decimal.NewFromInt(int64(line.Quantity))
		lineSubtotal := line.UnitPrice.Mul(qty)
		lineTax := lineSubtotal.Mul(rate)
		totals.Lines = append(totals.Lines, LineTotal{
			Subtotal: lineSubtotal,
			Tax:      lineTax,
			Total:    lineSubtotal.Add(lineTax),
		})
		totals.Subtotal = totals.Subtotal.Add(lineSubtotal)
		totals.TaxTotal = totals.TaxTotal.Add(lineTax)
	}

	totals.Total = totals.Subtotal.Add(totals.TaxTotal).Sub(discount)
	return totals, nil
}
