package pos

import (
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/pkg/common"
)

// StockLedger is the sole writer of InventoryItem.quantity_in_stock.
// Every mutation decrements or increments the stock row and appends an
// immutable InventoryTransaction in the same database transaction; a
// mutation that fails to log never happened.
type StockLedger struct{}

func NewStockLedger() *StockLedger {
	return &StockLedger{}
}

// LedgerContext identifies the cause of a stock movement for the audit trail.
type LedgerContext struct {
	Type       string // defaults to "sale" for Deduct, "restock" for Add
	SaleId     *int64
	InvOrderId *int64
	OprId      int64
	Notes      string
}

// Deduct removes quantity from the item's stock. The decrement is a
// conditional UPDATE guarded by quantity_in_stock >= quantity; zero affected
// rows is the authoritative insufficient-stock verdict, regardless of what
// any earlier availability pre-check said.
func (l *StockLedger) Deduct(tx *gorm.DB, itemID int64, quantity decimal.Decimal, lctx LedgerContext) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidQuantity
	}

	res := tx.Model(&domain.InventoryItem{}).
		Where("id = ? AND quantity_in_stock >= ?", itemID, quantity).
		Update("quantity_in_stock", gorm.Expr("quantity_in_stock - ?", quantity))
	if res.Error != nil {
		return decimal.Zero, errors.Wrap(res.Error, "stock deduct failed")
	}

	var item domain.InventoryItem
	if err := tx.First(&item, itemID).Error; err != nil {
		return decimal.Zero, errors.Wrapf(err, "inventory item %d not found", itemID)
	}

	if res.RowsAffected == 0 {
		return decimal.Zero, &StockError{
			InventoryItemId: itemID,
			ItemName:        item.Name,
			Requested:       quantity,
			Available:       item.QuantityInStock,
			Unit:            item.Unit,
		}
	}

	newQty := item.QuantityInStock
	if err := l.appendTransaction(tx, &item, quantity.Neg(), newQty.Add(quantity), newQty, lctx, domain.InvTransactionSale); err != nil {
		return decimal.Zero, err
	}
	return newQty, nil
}

// Add increases the item's stock, used for restocks, returns and upward
// adjustments. No upper bound. Same atomicity and logging contract as Deduct.
func (l *StockLedger) Add(tx *gorm.DB, itemID int64, quantity decimal.Decimal, lctx LedgerContext) (decimal.Decimal, error) {
	if quantity.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrInvalidQuantity
	}

	res := tx.Model(&domain.InventoryItem{}).
		Where("id = ?", itemID).
		Updates(map[string]interface{}{
			"quantity_in_stock": gorm.Expr("quantity_in_stock + ?", quantity),
			"last_restock_at":   time.Now(),
		})
	if res.Error != nil {
		return decimal.Zero, errors.Wrap(res.Error, "stock add failed")
	}
	if res.RowsAffected == 0 {
		return decimal.Zero, errors.Errorf("inventory item %d not found", itemID)
	}

	var item domain.InventoryItem
	if err := tx.First(&item, itemID).Error; err != nil {
		return decimal.Zero, errors.Wrapf(err, "inventory item %d not found", itemID)
	}

	newQty := item.QuantityInStock
	if err := l.appendTransaction(tx, &item, quantity, newQty.Sub(quantity), newQty, lctx, domain.InvTransactionRestock); err != nil {
		return decimal.Zero, err
	}
	return newQty, nil
}

func (l *StockLedger) appendTransaction(tx *gorm.DB, item *domain.InventoryItem,
	quantity, prevQty, newQty decimal.Decimal, lctx LedgerContext, defaultType string) error {
	ttype := lctx.Type
	if ttype == "" {
		ttype = defaultType
	}
	record := domain.InventoryTransaction{
		ID:               common.UUIDint64(),
		InventoryItemId:  item.ID,
		Type:             ttype,
		Quantity:         quantity,
		Unit:             item.Unit,
		PreviousQuantity: prevQty,
		NewQuantity:      newQty,
		SaleId:           lctx.SaleId,
		InvOrderId:       lctx.InvOrderId,
		OprId:            lctx.OprId,
		Notes:            lctx.Notes,
		CreatedAt:        time.Now(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return errors.Wrap(err, "failed to append inventory transaction")
	}
	return nil
}
