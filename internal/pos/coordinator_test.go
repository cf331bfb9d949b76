package pos

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/restokit/restos/internal/domain"
)

func newCoordinator(db *fixture) *SaleCoordinator {
	return NewSaleCoordinator(db.db, NewRecipeResolver(), NewStockLedger(), nil)
}

func tikkaFixture(t *testing.T) (*fixture, *SaleCoordinator, *domain.MenuItem, *domain.InventoryItem) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	tikka := f.addMenuItem(t, "Chicken Tikka", "550.00")
	chicken := f.addInventoryItem(t, "Chicken", "2.0", "kg")
	f.addRecipe(t, tikka, true, ingredientSpec{item: chicken, perServe: "0.5"})
	return f, newCoordinator(f), tikka, chicken
}

func TestCreateSaleDeductsExactly(t *testing.T) {
	f, coord, tikka, chicken := tikkaFixture(t)

	// 4 servings at 0.5kg each consume the full 2kg
	result, err := coord.CreateSale(context.Background(), &SaleRequest{
		BranchId:        f.branch.ID,
		CashierId:       1,
		CustomerName:    "Ali",
		CustomerContact: "0300-1234567",
		PaymentMethod:   domain.PaymentCash,
		DiscountAmount:  decimal.Zero,
		Items:           []SaleLine{{MenuItemId: tikka.ID, Quantity: 4}},
	})
	if err != nil {
		t.Fatalf("CreateSale: %v", err)
	}

	mustEqual(t, result.Sale.Subtotal, d("2200.00"), "subtotal")
	mustEqual(t, result.Sale.TaxAmount, d("374.00"), "tax")
	mustEqual(t, result.Sale.Total, d("2574.00"), "total")
	if len(result.Sale.Items) != 1 || result.Sale.Items[0].Quantity != 4 {
		t.Fatalf("line items: %+v", result.Sale.Items)
	}
	mustEqual(t, result.Sale.Items[0].UnitPrice, d("550.00"), "price snapshot")

	if len(result.Deductions) != 1 {
		t.Fatalf("deductions: %+v", result.Deductions)
	}
	mustEqual(t, result.Deductions[0].Quantity, d("2.0"), "deducted quantity")
	mustEqual(t, f.stockOf(t, chicken.ID), d("0"), "remaining stock")

	var audit domain.InventoryTransaction
	if err := f.db.Where("sale_id = ?", result.Sale.ID).First(&audit).Error; err != nil {
		t.Fatalf("audit record: %v", err)
	}
	mustEqual(t, audit.NewQuantity, d("0"), "audit new quantity")
}

func TestCreateSaleInsufficientInventory(t *testing.T) {
	f, coord, tikka, chicken := tikkaFixture(t)

	// 5 servings need 2.5kg, only 2kg available
	_, err := coord.CreateSale(context.Background(), &SaleRequest{
		BranchId:      f.branch.ID,
		CashierId:     1,
		PaymentMethod: domain.PaymentCash,
		Items:         []SaleLine{{MenuItemId: tikka.ID, Quantity: 5}},
	})
	var invErr *InsufficientInventoryError
	if !errors.As(err, &invErr) {
		t.Fatalf("got %v, want InsufficientInventoryError", err)
	}
	if len(invErr.Items) != 1 || len(invErr.Items[0].Shortages) != 1 {
		t.Fatalf("shortage detail: %+v", invErr.Items)
	}
	s := invErr.Items[0].Shortages[0]
	mustEqual(t, s.Required, d("2.5"), "required")
	mustEqual(t, s.Available, d("2.0"), "available")
	mustEqual(t, s.Shortage, d("0.5"), "shortage")

	// request-level validation failure: nothing written anywhere
	if n := f.countRows(t, &domain.Sale{}); n != 0 {
		t.Fatalf("no sale may exist, found %d", n)
	}
	mustEqual(t, f.stockOf(t, chicken.ID), d("2.0"), "stock untouched")
}

func TestCreateSaleReportsEveryShortage(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	coord := newCoordinator(f)

	burger := f.addMenuItem(t, "Burger", "350.00")
	pasta := f.addMenuItem(t, "Pasta", "420.00")
	bun := f.addInventoryItem(t, "Bun", "1", "pcs")
	penne := f.addInventoryItem(t, "Penne", "0.1", "kg")
	f.addRecipe(t, burger, true, ingredientSpec{item: bun, perServe: "1"})
	f.addRecipe(t, pasta, true, ingredientSpec{item: penne, perServe: "0.2"})

	_, err := coord.CreateSale(context.Background(), &SaleRequest{
		BranchId:      f.branch.ID,
		CashierId:     1,
		PaymentMethod: domain.PaymentCard,
		Items: []SaleLine{
			{MenuItemId: burger.ID, Quantity: 3},
			{MenuItemId: pasta.ID, Quantity: 2},
		},
	})
	var invErr *InsufficientInventoryError
	if !errors.As(err, &invErr) {
		t.Fatalf("got %v, want InsufficientInventoryError", err)
	}
	if len(invErr.Items) != 2 {
		t.Fatalf("both offending items must be reported, got %+v", invErr.Items)
	}
}

func TestCreateSaleValidation(t *testing.T) {
	f, coord, tikka, _ := tikkaFixture(t)

	tests := []struct {
		name string
		req  *SaleRequest
	}{
		{"empty basket", &SaleRequest{BranchId: f.branch.ID, CashierId: 1, PaymentMethod: domain.PaymentCash}},
		{"zero quantity", &SaleRequest{BranchId: f.branch.ID, CashierId: 1, PaymentMethod: domain.PaymentCash,
			Items: []SaleLine{{MenuItemId: tikka.ID, Quantity: 0}}}},
		{"unknown menu item", &SaleRequest{BranchId: f.branch.ID, CashierId: 1, PaymentMethod: domain.PaymentCash,
			Items: []SaleLine{{MenuItemId: 424242, Quantity: 1}}}},
		{"unknown branch", &SaleRequest{BranchId: 424242, CashierId: 1, PaymentMethod: domain.PaymentCash,
			Items: []SaleLine{{MenuItemId: tikka.ID, Quantity: 1}}}},
		{"bad payment method", &SaleRequest{BranchId: f.branch.ID, CashierId: 1, PaymentMethod: "cheque",
			Items: []SaleLine{{MenuItemId: tikka.ID, Quantity: 1}}}},
		{"negative discount", &SaleRequest{BranchId: f.branch.ID, CashierId: 1, PaymentMethod: domain.PaymentCash,
			DiscountAmount: d("-5"), Items: []SaleLine{{MenuItemId: tikka.ID, Quantity: 1}}}},
		{"discount exceeds total", &SaleRequest{BranchId: f.branch.ID, CashierId: 1, PaymentMethod: domain.PaymentCash,
			DiscountAmount: d("10000"), Items: []SaleLine{{MenuItemId: tikka.ID, Quantity: 1}}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := coord.CreateSale(context.Background(), tc.req)
			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("got %v, want ValidationError", err)
			}
		})
	}
	if n := f.countRows(t, &domain.Sale{}); n != 0 {
		t.Fatalf("rejected requests must write nothing, found %d sales", n)
	}
}

func TestCreateSaleOfflineIdempotent(t *testing.T) {
	f, coord, tikka, chicken := tikkaFixture(t)

	req := &SaleRequest{
		BranchId:      f.branch.ID,
		CashierId:     1,
		PaymentMethod: domain.PaymentCash,
		OfflineId:     "offline-abc-1",
		Items:         []SaleLine{{MenuItemId: tikka.ID, Quantity: 2}},
	}
	first, err := coord.CreateSale(context.Background(), req)
	if err != nil {
		t.Fatalf("first CreateSale: %v", err)
	}
	if first.Replayed {
		t.Fatal("first submission must not be a replay")
	}

	second, err := coord.CreateSale(context.Background(), req)
	if err != nil {
		t.Fatalf("second CreateSale: %v", err)
	}
	if !second.Replayed {
		t.Fatal("second submission must replay the existing sale")
	}
	if second.Sale.ID != first.Sale.ID {
		t.Fatalf("replay returned a different sale: %d vs %d", second.Sale.ID, first.Sale.ID)
	}

	if n := f.countRows(t, &domain.Sale{}); n != 1 {
		t.Fatalf("exactly one sale must exist, found %d", n)
	}
	// stock deducted exactly once: 2 servings * 0.5kg
	mustEqual(t, f.stockOf(t, chicken.ID), d("1.0"), "stock after replay")
}

func TestCreateSaleAtomicRollback(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	coord := newCoordinator(f)

	tikka := f.addMenuItem(t, "Chicken Tikka", "550.00")
	naan := f.addMenuItem(t, "Naan", "40.00")
	chicken := f.addInventoryItem(t, "Chicken", "5", "kg")
	flour := f.addInventoryItem(t, "Flour", "0.1", "kg")
	f.addRecipe(t, tikka, true, ingredientSpec{item: chicken, perServe: "0.5"})
	f.addRecipe(t, naan, true, ingredientSpec{item: flour, perServe: "0.1"})

	// Skip the pre-check so the naan deduction fails at commit time, after
	// the sale, line items and the chicken deduction were already written
	// inside the transaction.
	_, err := coord.CreateSale(context.Background(), &SaleRequest{
		BranchId:           f.branch.ID,
		CashierId:          1,
		PaymentMethod:      domain.PaymentCash,
		SkipInventoryCheck: true,
		Items: []SaleLine{
			{MenuItemId: tikka.ID, Quantity: 2},
			{MenuItemId: naan.ID, Quantity: 4},
		},
	})
	var invErr *InsufficientInventoryError
	if !errors.As(err, &invErr) {
		t.Fatalf("got %v, want InsufficientInventoryError", err)
	}

	// all-or-nothing: zero rows in every affected table
	if n := f.countRows(t, &domain.Sale{}); n != 0 {
		t.Fatalf("sale rows after rollback: %d", n)
	}
	if n := f.countRows(t, &domain.SaleLineItem{}); n != 0 {
		t.Fatalf("line item rows after rollback: %d", n)
	}
	if n := f.countRows(t, &domain.InventoryTransaction{}); n != 0 {
		t.Fatalf("inventory transaction rows after rollback: %d", n)
	}
	mustEqual(t, f.stockOf(t, chicken.ID), d("5"), "chicken stock rolled back")
	mustEqual(t, f.stockOf(t, flour.ID), d("0.1"), "flour stock untouched")
}

func TestCreateSaleContendedStockWindow(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	coord := newCoordinator(f)

	steak := f.addMenuItem(t, "Steak", "1500.00")
	beef := f.addInventoryItem(t, "Beef", "2.0", "kg")
	f.addRecipe(t, steak, true, ingredientSpec{item: beef, perServe: "1.5"})

	mk := func(offline string) *SaleRequest {
		return &SaleRequest{
			BranchId:      f.branch.ID,
			CashierId:     1,
			PaymentMethod: domain.PaymentCash,
			OfflineId:     offline,
			// both requests bypass the pre-check, simulating two sales that
			// passed availability against the same narrow window
			SkipInventoryCheck: true,
			Items:              []SaleLine{{MenuItemId: steak.ID, Quantity: 1}},
		}
	}

	_, err1 := coord.CreateSale(context.Background(), mk("race-1"))
	_, err2 := coord.CreateSale(context.Background(), mk("race-2"))

	okCount := 0
	for _, err := range []error{err1, err2} {
		if err == nil {
			okCount++
			continue
		}
		var invErr *InsufficientInventoryError
		if !errors.As(err, &invErr) {
			t.Fatalf("loser must see InsufficientInventory, got %v", err)
		}
	}
	if okCount != 1 {
		t.Fatalf("exactly one sale may win, got %d", okCount)
	}
	mustEqual(t, f.stockOf(t, beef.ID), d("0.5"), "final stock")
}

func TestCreateSaleCustomerGetOrCreate(t *testing.T) {
	f, coord, tikka, _ := tikkaFixture(t)

	for i := 0; i < 2; i++ {
		_, err := coord.CreateSale(context.Background(), &SaleRequest{
			BranchId:        f.branch.ID,
			CashierId:       1,
			CustomerName:    "Sara",
			CustomerContact: "0301-7654321",
			PaymentMethod:   domain.PaymentDigital,
			Items:           []SaleLine{{MenuItemId: tikka.ID, Quantity: 1}},
		})
		if err != nil {
			t.Fatalf("CreateSale #%d: %v", i+1, err)
		}
	}
	if n := f.countRows(t, &domain.Customer{}); n != 1 {
		t.Fatalf("repeat contact must resolve to one customer, found %d", n)
	}
}
