package pos

import (
	"context"
	"sort"
	"time"

	"github.com/asaskevich/EventBus"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/pkg/common"
)

var paymentMethods = []string{domain.PaymentCash, domain.PaymentCard, domain.PaymentDigital}

// SaleLine one basket entry as submitted by the client.
type SaleLine struct {
	MenuItemId int64 `json:"menu_item_id,string"`
	Quantity   int   `json:"quantity"`
}

// SaleRequest input to CreateSale. OfflineId is set by disconnected clients
// and makes retried submissions idempotent.
type SaleRequest struct {
	BranchId           int64
	CashierId          int64
	CustomerName       string
	CustomerContact    string
	PaymentMethod      string
	DiscountAmount     decimal.Decimal
	OfflineId          string
	SkipInventoryCheck bool
	Items              []SaleLine
}

// AppliedDeduction one committed stock deduction, returned for client
// display and audit.
type AppliedDeduction struct {
	InventoryItemId int64           `json:"inventory_item_id,string"`
	Ingredient      string          `json:"ingredient"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
	NewQuantity     decimal.Decimal `json:"new_quantity"`
}

// SaleResult committed sale plus the deductions actually applied.
// Replayed is true when an offline id matched an existing sale and nothing
// new was written.
type SaleResult struct {
	Sale       *domain.Sale       `json:"sale"`
	Deductions []AppliedDeduction `json:"deductions"`
	Replayed   bool               `json:"replayed"`
}

// SaleCoordinator orchestrates one sale: basket validation, total
// computation, sale persistence, recipe-driven stock deduction and audit
// logging, all inside a single all-or-nothing database transaction.
type SaleCoordinator struct {
	db       *gorm.DB
	resolver *RecipeResolver
	ledger   *StockLedger
	bus      EventBus.Bus
}

func NewSaleCoordinator(db *gorm.DB, resolver *RecipeResolver, ledger *StockLedger, bus EventBus.Bus) *SaleCoordinator {
	return &SaleCoordinator{db: db, resolver: resolver, ledger: ledger, bus: bus}
}

// CreateSale validates the basket, computes totals, then persists the sale,
// its line items and every inventory deduction atomically. Any failure
// inside the transaction rolls back everything. The availability pre-check
// runs before the transaction and is an optimization only: the ledger's
// conditional update at commit time is the authoritative stock check.
func (c *SaleCoordinator) CreateSale(ctx context.Context, req *SaleRequest) (*SaleResult, error) {
	if len(req.Items) == 0 {
		return nil, validationErrorf("items", "basket must not be empty")
	}
	if !common.InSlice(req.PaymentMethod, paymentMethods) {
		return nil, validationErrorf("payment_method", "must be one of cash, card, digital")
	}
	if req.DiscountAmount.IsNegative() {
		return nil, validationErrorf("discount_amount", "must not be negative")
	}
	for _, line := range req.Items {
		if line.Quantity <= 0 {
			return nil, validationErrorf("items", "quantity for item %d must be positive", line.MenuItemId)
		}
	}

	db := c.db.WithContext(ctx)

	var branch domain.Branch
	if err := db.First(&branch, req.BranchId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, validationErrorf("branch_id", "branch %d not found", req.BranchId)
		}
		return nil, errors.Wrap(err, "branch lookup failed")
	}
	var restaurant domain.Restaurant
	if err := db.First(&restaurant, branch.RestaurantId).Error; err != nil {
		return nil, errors.Wrap(err, "restaurant lookup failed")
	}

	menuItems, err := c.resolveMenuItems(db, restaurant.ID, req.Items)
	if err != nil {
		return nil, err
	}

	lines := make([]LineInput, 0, len(req.Items))
	for _, line := range req.Items {
		lines = append(lines, LineInput{UnitPrice: menuItems[line.MenuItemId].Price, Quantity: line.Quantity})
	}
	totals, err := CalculateSale(lines, restaurant.TaxRate, req.DiscountAmount)
	if err != nil {
		return nil, err
	}
	if totals.Total.IsNegative() {
		return nil, validationErrorf("discount_amount", "discount exceeds sale total")
	}

	// Idempotent replay: an already-synced offline sale is returned as-is.
	if req.OfflineId != "" {
		if existing, err := c.findByOfflineId(db, req.OfflineId); err != nil {
			return nil, err
		} else if existing != nil {
			return &SaleResult{Sale: existing, Replayed: true}, nil
		}
	}

	if !req.SkipInventoryCheck {
		if err := c.precheckAvailability(db, req.Items, menuItems); err != nil {
			return nil, err
		}
	}

	result := &SaleResult{}
	err = db.Transaction(func(tx *gorm.DB) error {
		sale, err := c.persistSale(tx, req, &branch, menuItems, totals)
		if err != nil {
			return err
		}
		deductions, err := c.applyDeductions(tx, req, sale, menuItems)
		if err != nil {
			return err
		}
		result.Sale = sale
		result.Deductions = deductions
		return nil
	})
	if err != nil {
		// A concurrent replay of the same offline sale may have won the
		// unique-index race; treat the winner's row as our result.
		if req.OfflineId != "" && errors.Is(err, gorm.ErrDuplicatedKey) {
			if existing, lerr := c.findByOfflineId(db, req.OfflineId); lerr == nil && existing != nil {
				return &SaleResult{Sale: existing, Replayed: true}, nil
			}
		}
		return nil, err
	}

	zap.L().Info("pos sale committed",
		zap.Int64("sale_id", result.Sale.ID),
		zap.Int64("branch_id", branch.ID),
		zap.String("total", result.Sale.Total.String()),
		zap.Int("items", len(req.Items)),
		zap.Int("deductions", len(result.Deductions)))

	if c.bus != nil {
		c.bus.Publish(TopicSaleCreated, &SaleCreatedEvent{
			SaleId:     result.Sale.ID,
			BranchId:   branch.ID,
			Total:      result.Sale.Total.String(),
			ItemsCount: len(req.Items),
			Offline:    req.OfflineId != "",
		})
		if len(result.Deductions) > 0 {
			c.bus.Publish(TopicStockDeducted, result.Deductions)
		}
	}
	return result, nil
}

// resolveMenuItems loads every basket item and verifies it is sellable and
// belongs to the branch's restaurant.
func (c *SaleCoordinator) resolveMenuItems(db *gorm.DB, restaurantID int64, items []SaleLine) (map[int64]*domain.MenuItem, error) {
	ids := make([]int64, 0, len(items))
	for _, line := range items {
		ids = append(ids, line.MenuItemId)
	}
	var rows []domain.MenuItem
	if err := db.Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, errors.Wrap(err, "menu item lookup failed")
	}
	byID := make(map[int64]*domain.MenuItem, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}
	for _, line := range items {
		item, ok := byID[line.MenuItemId]
		if !ok {
			return nil, validationErrorf("items", "menu item %d not found", line.MenuItemId)
		}
		if item.RestaurantId != restaurantID {
			return nil, validationErrorf("items", "menu item %d does not belong to this restaurant", line.MenuItemId)
		}
		if item.Status == domain.MenuItemDiscontinued {
			return nil, validationErrorf("items", "menu item %q is discontinued", item.Name)
		}
	}
	return byID, nil
}

// precheckAvailability collects shortages across the whole basket and fails
// with every offending item, not just the first.
func (c *SaleCoordinator) precheckAvailability(db *gorm.DB, items []SaleLine, menuItems map[int64]*domain.MenuItem) error {
	var offending []ItemShortages
	for _, line := range items {
		ok, shortages, err := c.resolver.CheckAvailability(db, line.MenuItemId, line.Quantity)
		if err != nil {
			return err
		}
		if !ok {
			offending = append(offending, ItemShortages{
				MenuItemId: line.MenuItemId,
				MenuItem:   menuItems[line.MenuItemId].Name,
				Shortages:  shortages,
			})
		}
	}
	if len(offending) > 0 {
		return &InsufficientInventoryError{Items: offending}
	}
	return nil
}

func (c *SaleCoordinator) findByOfflineId(db *gorm.DB, offlineID string) (*domain.Sale, error) {
	var sale domain.Sale
	err := db.Where("offline_id = ?", offlineID).Preload("Items").First(&sale).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "offline sale lookup failed")
	}
	return &sale, nil
}

// persistSale writes the sale header and every line item with price and tax
// snapshots, resolving or creating the customer by contact first.
func (c *SaleCoordinator) persistSale(tx *gorm.DB, req *SaleRequest, branch *domain.Branch,
	menuItems map[int64]*domain.MenuItem, totals *SaleTotals) (*domain.Sale, error) {

	var customerID *int64
	if req.CustomerContact != "" {
		customer := domain.Customer{Contact: req.CustomerContact}
		err := tx.Where(domain.Customer{Contact: req.CustomerContact}).
			Attrs(domain.Customer{ID: common.UUIDint64(), Name: req.CustomerName}).
			FirstOrCreate(&customer).Error
		if err != nil {
			return nil, errors.Wrap(err, "customer lookup failed")
		}
		customerID = &customer.ID
	}

	now := time.Now()
	sale := &domain.Sale{
		ID:             common.UUIDint64(),
		BranchId:       branch.ID,
		CustomerId:     customerID,
		CashierId:      req.CashierId,
		ReceiptNo:      common.UUID(),
		PaymentMethod:  req.PaymentMethod,
		Subtotal:       totals.Subtotal,
		TaxAmount:      totals.TaxTotal,
		DiscountAmount: totals.Discount,
		Total:          totals.Total,
		IsOfflineSale:  req.OfflineId != "",
		CreatedAt:      now,
	}
	if req.OfflineId != "" {
		sale.OfflineId = &req.OfflineId
		sale.SyncedAt = &now
	}
	if err := tx.Create(sale).Error; err != nil {
		return nil, err
	}

	for i, line := range req.Items {
		item := menuItems[line.MenuItemId]
		lineItem := domain.SaleLineItem{
			ID:         common.UUIDint64(),
			SaleId:     sale.ID,
			MenuItemId: item.ID,
			ItemName:   item.Name,
			Quantity:   line.Quantity,
			UnitPrice:  item.Price,
			TaxAmount:  totals.Lines[i].Tax,
			Total:      totals.Lines[i].Total,
			CreatedAt:  now,
		}
		if err := tx.Create(&lineItem).Error; err != nil {
			return nil, errors.Wrap(err, "failed to persist sale line")
		}
		sale.Items = append(sale.Items, lineItem)

		if err := tx.Model(&domain.MenuItem{}).Where("id = ?", item.ID).
			Update("total_sold", gorm.Expr("total_sold + ?", line.Quantity)).Error; err != nil {
			return nil, errors.Wrap(err, "failed to update sold counter")
		}
	}
	return sale, nil
}

// applyDeductions merges deduction requests across all lines per inventory
// item and applies them in ascending item-id order, so concurrent sales that
// share ingredients contend for row locks in the same sequence.
func (c *SaleCoordinator) applyDeductions(tx *gorm.DB, req *SaleRequest, sale *domain.Sale,
	menuItems map[int64]*domain.MenuItem) ([]AppliedDeduction, error) {

	merged := map[int64]*DeductionRequest{}
	lineOf := map[int64]int64{} // inventory item -> first menu item needing it
	for _, line := range req.Items {
		reqs, err := c.resolver.ResolveDeductions(tx, line.MenuItemId, line.Quantity)
		if err != nil {
			return nil, err
		}
		for _, d := range reqs {
			if cur, ok := merged[d.InventoryItemId]; ok {
				cur.Quantity = cur.Quantity.Add(d.Quantity)
			} else {
				dd := d
				merged[d.InventoryItemId] = &dd
				lineOf[d.InventoryItemId] = line.MenuItemId
			}
		}
	}

	order := make([]int64, 0, len(merged))
	for id := range merged {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	var applied []AppliedDeduction
	for _, id := range order {
		d := merged[id]
		newQty, err := c.ledger.Deduct(tx, id, d.Quantity, LedgerContext{
			SaleId: &sale.ID,
			OprId:  req.CashierId,
			Notes:  "POS sale " + sale.ReceiptNo,
		})
		if err != nil {
			var stockErr *StockError
			if errors.As(err, &stockErr) {
				menuItemID := lineOf[id]
				return nil, &InsufficientInventoryError{Items: []ItemShortages{{
					MenuItemId: menuItemID,
					MenuItem:   menuItems[menuItemID].Name,
					Shortages: []Shortage{{
						InventoryItemId: stockErr.InventoryItemId,
						Ingredient:      stockErr.ItemName,
						Required:        stockErr.Requested,
						Available:       stockErr.Available,
						Shortage:        stockErr.Requested.Sub(stockErr.Available),
						Unit:            stockErr.Unit,
					}},
				}}}
			}
			return nil, err
		}
		applied = append(applied, AppliedDeduction{
			InventoryItemId: id,
			Ingredient:      d.Ingredient,
			Quantity:        d.Quantity,
			Unit:            d.Unit,
			NewQuantity:     newQty,
		})
	}
	return applied, nil
}
