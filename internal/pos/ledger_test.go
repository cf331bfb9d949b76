package pos

import (
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restokit/restos/internal/domain"
)

func TestDeductRecordsTransaction(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	chicken := f.addInventoryItem(t, "Chicken", "10.0", "kg")
	ledger := NewStockLedger()

	saleID := int64(12345)
	var newQty decimal.Decimal
	err := db.Transaction(func(tx *gorm.DB) error {
		var err error
		newQty, err = ledger.Deduct(tx, chicken.ID, d("2.5"), LedgerContext{SaleId: &saleID, OprId: 7, Notes: "test sale"})
		return err
	})
	if err != nil {
		t.Fatalf("Deduct: %v", err)
	}
	mustEqual(t, newQty, d("7.5"), "returned new quantity")
	mustEqual(t, f.stockOf(t, chicken.ID), d("7.5"), "persisted stock")

	var record domain.InventoryTransaction
	if err := db.Where("inventory_item_id = ?", chicken.ID).First(&record).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if record.Type != domain.InvTransactionSale {
		t.Fatalf("transaction type: got %q", record.Type)
	}
	mustEqual(t, record.PreviousQuantity, d("10.0"), "previous quantity")
	mustEqual(t, record.NewQuantity, d("7.5"), "new quantity")
	mustEqual(t, record.Quantity, d("-2.5"), "moved quantity")
	if record.SaleId == nil || *record.SaleId != saleID {
		t.Fatal("transaction must reference the originating sale")
	}
	if record.OprId != 7 {
		t.Fatalf("transaction operator: got %d", record.OprId)
	}
}

func TestDeductInsufficientStock(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	flour := f.addInventoryItem(t, "Flour", "1.0", "kg")
	ledger := NewStockLedger()

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.Deduct(tx, flour.ID, d("1.5"), LedgerContext{OprId: 1})
		return err
	})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("got %v, want ErrInsufficientStock", err)
	}
	var stockErr *StockError
	if !errors.As(err, &stockErr) {
		t.Fatal("error must carry stock detail")
	}
	mustEqual(t, stockErr.Requested, d("1.5"), "requested")
	mustEqual(t, stockErr.Available, d("1.0"), "available")

	// nothing moved, nothing logged
	mustEqual(t, f.stockOf(t, flour.ID), d("1.0"), "stock after failed deduct")
	if n := f.countRows(t, &domain.InventoryTransaction{}); n != 0 {
		t.Fatalf("failed deduct must not log, found %d transactions", n)
	}
}

func TestDeductInvalidQuantity(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	salt := f.addInventoryItem(t, "Salt", "5", "kg")
	ledger := NewStockLedger()

	for _, qty := range []string{"0", "-1"} {
		err := db.Transaction(func(tx *gorm.DB) error {
			_, err := ledger.Deduct(tx, salt.ID, d(qty), LedgerContext{OprId: 1})
			return err
		})
		if !errors.Is(err, ErrInvalidQuantity) {
			t.Fatalf("quantity %s: got %v, want ErrInvalidQuantity", qty, err)
		}
	}
}

func TestAddRestock(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	oil := f.addInventoryItem(t, "Cooking Oil", "2.0", "l")
	ledger := NewStockLedger()

	orderID := int64(99)
	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := ledger.Add(tx, oil.ID, d("8.0"), LedgerContext{InvOrderId: &orderID, OprId: 3})
		return err
	})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	mustEqual(t, f.stockOf(t, oil.ID), d("10.0"), "stock after restock")

	var record domain.InventoryTransaction
	if err := db.Where("inventory_item_id = ?", oil.ID).First(&record).Error; err != nil {
		t.Fatalf("load transaction: %v", err)
	}
	if record.Type != domain.InvTransactionRestock {
		t.Fatalf("transaction type: got %q", record.Type)
	}
	mustEqual(t, record.Quantity, d("8.0"), "moved quantity")
	if record.InvOrderId == nil || *record.InvOrderId != orderID {
		t.Fatal("transaction must reference the restock order")
	}

	var item domain.InventoryItem
	if err := db.First(&item, oil.ID).Error; err != nil {
		t.Fatalf("reload item: %v", err)
	}
	if item.LastRestockAt == nil {
		t.Fatal("restock must stamp last_restock_at")
	}
}

func TestConcurrentDeductsNeverGoNegative(t *testing.T) {
	db := newTestDB(t)
	f := seedFixture(t, db)
	sugar := f.addInventoryItem(t, "Sugar", "10", "kg")
	ledger := NewStockLedger()

	const workers = 8
	var wg sync.WaitGroup
	successes := make(chan struct{}, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := db.Transaction(func(tx *gorm.DB) error {
				_, err := ledger.Deduct(tx, sugar.ID, d("3"), LedgerContext{OprId: 1})
				return err
			})
			if err == nil {
				successes <- struct{}{}
			}
		}()
	}
	wg.Wait()
	close(successes)

	won := 0
	for range successes {
		won++
	}
	final := f.stockOf(t, sugar.ID)
	if final.IsNegative() {
		t.Fatalf("stock went negative: %s", final)
	}
	expected := d("10").Sub(d("3").Mul(decimal.NewFromInt(int64(won))))
	mustEqual(t, final, expected, "final stock must match successful deductions")
	if won > 3 {
		t.Fatalf("at most 3 deductions of 3kg fit in 10kg, got %d", won)
	}
}
