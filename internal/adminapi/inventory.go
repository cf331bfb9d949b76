package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/gocarina/gocsv"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/internal/pos"
	"github.com/restokit/restos/internal/webserver"
	"github.com/restokit/restos/pkg/common"
)

type inventoryItemPayload struct {
	RestaurantId    int64  `json:"restaurant_id,string" validate:"required"`
	SupplierId      int64  `json:"supplier_id,string"`
	Name            string `json:"name" validate:"required"`
	QuantityInStock string `json:"quantity_in_stock"`
	Unit            string `json:"unit" validate:"required"`
	ReorderLevel    string `json:"reorder_level"`
	ReorderQuantity string `json:"reorder_quantity"`
	UnitCost        string `json:"unit_cost"`
}

type restockPayload struct {
	Quantity string `json:"quantity" validate:"required"`
	Notes    string `json:"notes"`
}

type adjustStockPayload struct {
	Quantity string `json:"quantity" validate:"required"`
	Type     string `json:"type" validate:"required"`
	Notes    string `json:"notes"`
}

type supplierPayload struct {
	RestaurantId  int64  `json:"restaurant_id,string" validate:"required"`
	Name          string `json:"name" validate:"required"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Email         string `json:"email"`
	Address       string `json:"address"`
}

type inventoryOrderPayload struct {
	RestaurantId    int64  `json:"restaurant_id,string" validate:"required"`
	SupplierId      int64  `json:"supplier_id,string"`
	InventoryItemId int64  `json:"inventory_item_id,string" validate:"required"`
	QuantityOrdered string `json:"quantity_ordered" validate:"required"`
	UnitPrice       string `json:"unit_price"`
}

func registerInventoryRoutes() {
	webserver.ApiGET("/inventory/items", listInventoryItems)
	webserver.ApiPOST("/inventory/items", createInventoryItem)
	webserver.ApiPUT("/inventory/items/:id", updateInventoryItem)
	webserver.ApiDELETE("/inventory/items/:id", deleteInventoryItem)
	webserver.ApiGET("/inventory/items/low_stock", listLowStockItems)
	webserver.ApiPOST("/inventory/items/:id/restock", restockInventoryItem)
	webserver.ApiPOST("/inventory/items/:id/adjust", adjustInventoryItem)
	webserver.ApiGET("/inventory/transactions", listInventoryTransactions)
	webserver.ApiGET("/inventory/transactions/export", exportInventoryTransactions)
	webserver.ApiGET("/inventory/suppliers", listSuppliers)
	webserver.ApiPOST("/inventory/suppliers", createSupplier)
	webserver.ApiPOST("/inventory/orders", createInventoryOrder)
	webserver.ApiGET("/inventory/orders", listInventoryOrders)
	webserver.ApiPOST("/inventory/orders/:id/receive", receiveInventoryOrder)
}

func parseAmount(s, field string) (decimal.Decimal, error) {
	if s == "" {
		return decimal.Zero, nil
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &pos.ValidationError{Field: field, Reason: "not a valid amount"}
	}
	return v, nil
}

func listInventoryItems(c echo.Context) error {
	restaurantID := queryInt64(c, "restaurant_id")
	if restaurantID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "restaurant_id is required", nil)
	}
	if err := checkRestaurantAccess(c, restaurantID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	page, pageSize := parsePagination(c)
	query := GetDB(c).Model(&domain.InventoryItem{}).Where("restaurant_id = ?", restaurantID)
	if keyword := c.QueryParam("keyword"); keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}

	var total int64
	query.Count(&total)

	var items []domain.InventoryItem
	if err := query.Order("name").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list items", err.Error())
	}
	return paged(c, items, total, page, pageSize)
}

func createInventoryItem(c echo.Context) error {
	var payload inventoryItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse item", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	if err := checkRestaurantAccess(c, payload.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	stock, err := parseAmount(payload.QuantityInStock, "quantity_in_stock")
	if err != nil {
		return failSaleError(c, err)
	}
	if stock.IsNegative() {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "quantity_in_stock must not be negative", nil)
	}
	reorderLevel, err := parseAmount(payload.ReorderLevel, "reorder_level")
	if err != nil {
		return failSaleError(c, err)
	}
	reorderQty, err := parseAmount(payload.ReorderQuantity, "reorder_quantity")
	if err != nil {
		return failSaleError(c, err)
	}
	unitCost, err := parseAmount(payload.UnitCost, "unit_cost")
	if err != nil {
		return failSaleError(c, err)
	}

	item := domain.InventoryItem{
		ID:              common.UUIDint64(),
		RestaurantId:    payload.RestaurantId,
		SupplierId:      payload.SupplierId,
		Name:            payload.Name,
		QuantityInStock: stock,
		Unit:            payload.Unit,
		ReorderLevel:    reorderLevel,
		ReorderQuantity: reorderQty,
		UnitCost:        unitCost,
	}
	if err := GetDB(c).Create(&item).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create item", err.Error())
	}
	return created(c, item)
}

func updateInventoryItem(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id", nil)
	}
	var item domain.InventoryItem
	if err := GetDB(c).First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
	}
	if err := checkRestaurantAccess(c, item.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	var payload inventoryItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse item", err.Error())
	}

	// Stock level is deliberately not updatable here; restock and adjust
	// endpoints keep the audit trail intact.
	updates := map[string]interface{}{}
	if payload.Name != "" {
		updates["name"] = payload.Name
	}
	if payload.Unit != "" {
		updates["unit"] = payload.Unit
	}
	if payload.SupplierId != 0 {
		updates["supplier_id"] = payload.SupplierId
	}
	if payload.ReorderLevel != "" {
		v, err := parseAmount(payload.ReorderLevel, "reorder_level")
		if err != nil {
			return failSaleError(c, err)
		}
		updates["reorder_level"] = v
	}
	if payload.ReorderQuantity != "" {
		v, err := parseAmount(payload.ReorderQuantity, "reorder_quantity")
		if err != nil {
			return failSaleError(c, err)
		}
		updates["reorder_quantity"] = v
	}
	if payload.UnitCost != "" {
		v, err := parseAmount(payload.UnitCost, "unit_cost")
		if err != nil {
			return failSaleError(c, err)
		}
		updates["unit_cost"] = v
	}
	if len(updates) > 0 {
		if err := GetDB(c).Model(&item).Updates(updates).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update item", err.Error())
		}
	}
	GetDB(c).First(&item, id)
	return ok(c, item)
}

func deleteInventoryItem(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id", nil)
	}
	var item domain.InventoryItem
	if err := GetDB(c).First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
	}
	if err := checkRestaurantAccess(c, item.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	var used int64
	GetDB(c).Model(&domain.RecipeIngredient{}).Where("inventory_item_id = ?", id).Count(&used)
	if used > 0 {
		return fail(c, http.StatusBadRequest, "ITEM_IN_USE", "Item is referenced by recipes", nil)
	}
	if err := GetDB(c).Delete(&domain.InventoryItem{}, id).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to delete item", err.Error())
	}
	return ok(c, nil)
}

// listLowStockItems returns items at or below their reorder level.
func listLowStockItems(c echo.Context) error {
	restaurantID := queryInt64(c, "restaurant_id")
	if restaurantID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "restaurant_id is required", nil)
	}
	if err := checkRestaurantAccess(c, restaurantID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	var items []domain.InventoryItem
	if err := GetDB(c).
		Where("restaurant_id = ? AND quantity_in_stock <= reorder_level", restaurantID).
		Order("quantity_in_stock").
		Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list items", err.Error())
	}
	return ok(c, items)
}

func restockInventoryItem(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id", nil)
	}
	var item domain.InventoryItem
	if err := GetDB(c).First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
	}
	if err := checkRestaurantAccess(c, item.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	var payload restockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse restock", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	quantity, err := parseAmount(payload.Quantity, "quantity")
	if err != nil {
		return failSaleError(c, err)
	}

	ledger := pos.NewStockLedger()
	lctx := pos.LedgerContext{
		Type:  domain.InvTransactionRestock,
		OprId: GetPrincipal(c).OprId,
		Notes: payload.Notes,
	}
	var newQty decimal.Decimal
	if err := GetDB(c).Transaction(func(tx *gorm.DB) error {
		var terr error
		newQty, terr = ledger.Add(tx, id, quantity, lctx)
		return terr
	}); err != nil {
		return failSaleError(c, err)
	}
	return ok(c, map[string]interface{}{
		"inventory_item_id": fmt.Sprintf("%d", id),
		"quantity_in_stock": newQty,
	})
}

// adjustInventoryItem records waste, manual adjustments and returns. The
// quantity is always positive; waste and negative adjustments deduct.
func adjustInventoryItem(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id", nil)
	}
	var item domain.InventoryItem
	if err := GetDB(c).First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
	}
	if err := checkRestaurantAccess(c, item.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	var payload adjustStockPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse adjustment", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	if !common.InSlice(payload.Type, []string{domain.InvTransactionWaste, domain.InvTransactionAdjustment, domain.InvTransactionReturn}) {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown adjustment type", nil)
	}
	quantity, err := parseAmount(payload.Quantity, "quantity")
	if err != nil {
		return failSaleError(c, err)
	}

	ledger := pos.NewStockLedger()
	lctx := pos.LedgerContext{
		Type:  payload.Type,
		OprId: GetPrincipal(c).OprId,
		Notes: payload.Notes,
	}
	var newQty decimal.Decimal
	if err := GetDB(c).Transaction(func(tx *gorm.DB) error {
		var terr error
		if payload.Type == domain.InvTransactionReturn {
			newQty, terr = ledger.Add(tx, id, quantity, lctx)
		} else {
			newQty, terr = ledger.Deduct(tx, id, quantity, lctx)
		}
		return terr
	}); err != nil {
		return failSaleError(c, err)
	}
	return ok(c, map[string]interface{}{
		"inventory_item_id": fmt.Sprintf("%d", id),
		"quantity_in_stock": newQty,
	})
}

func listInventoryTransactions(c echo.Context) error {
	itemID := queryInt64(c, "inventory_item_id")
	restaurantID := queryInt64(c, "restaurant_id")
	if itemID == 0 && restaurantID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "inventory_item_id or restaurant_id is required", nil)
	}

	query := GetDB(c).Model(&domain.InventoryTransaction{})
	if itemID != 0 {
		var item domain.InventoryItem
		if err := GetDB(c).First(&item, itemID).Error; err != nil {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Item not found", nil)
		}
		restaurantID = item.RestaurantId
		query = query.Where("inventory_item_id = ?", itemID)
	} else {
		query = query.Where("inventory_item_id IN (?)",
			GetDB(c).Model(&domain.InventoryItem{}).Select("id").Where("restaurant_id = ?", restaurantID))
	}
	if err := checkRestaurantAccess(c, restaurantID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	if txType := c.QueryParam("type"); txType != "" {
		query = query.Where("type = ?", txType)
	}
	if start := c.QueryParam("start"); start != "" {
		if ts, err := dateparse.ParseLocal(start); err == nil {
			query = query.Where("created_at >= ?", ts)
		}
	}
	if end := c.QueryParam("end"); end != "" {
		if ts, err := dateparse.ParseLocal(end); err == nil {
			query = query.Where("created_at <= ?", ts)
		}
	}

	page, pageSize := parsePagination(c)
	var total int64
	query.Count(&total)

	var rows []domain.InventoryTransaction
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list transactions", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

type transactionCsvRow struct {
	ID               int64  `csv:"id"`
	InventoryItemId  int64  `csv:"inventory_item_id"`
	Type             string `csv:"type"`
	Quantity         string `csv:"quantity"`
	Unit             string `csv:"unit"`
	PreviousQuantity string `csv:"previous_quantity"`
	NewQuantity      string `csv:"new_quantity"`
	Notes            string `csv:"notes"`
	CreatedAt        string `csv:"created_at"`
}

// exportInventoryTransactions streams the restaurant's stock movement audit
// trail as CSV.
func exportInventoryTransactions(c echo.Context) error {
	restaurantID := queryInt64(c, "restaurant_id")
	if restaurantID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "restaurant_id is required", nil)
	}
	if err := checkRestaurantAccess(c, restaurantID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	var rows []domain.InventoryTransaction
	if err := GetDB(c).
		Where("inventory_item_id IN (?)",
			GetDB(c).Model(&domain.InventoryItem{}).Select("id").Where("restaurant_id = ?", restaurantID)).
		Order("created_at").
		Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to export transactions", err.Error())
	}

	csvRows := make([]transactionCsvRow, 0, len(rows))
	for _, row := range rows {
		csvRows = append(csvRows, transactionCsvRow{
			ID:               row.ID,
			InventoryItemId:  row.InventoryItemId,
			Type:             row.Type,
			Quantity:         row.Quantity.String(),
			Unit:             row.Unit,
			PreviousQuantity: row.PreviousQuantity.String(),
			NewQuantity:      row.NewQuantity.String(),
			Notes:            row.Notes,
			CreatedAt:        row.CreatedAt.Format(time.RFC3339),
		})
	}

	c.Response().Header().Set(echo.HeaderContentType, "text/csv")
	c.Response().Header().Set(echo.HeaderContentDisposition, `attachment; filename="inventory_transactions.csv"`)
	c.Response().WriteHeader(http.StatusOK)
	return gocsv.Marshal(&csvRows, c.Response())
}

func listSuppliers(c echo.Context) error {
	restaurantID := queryInt64(c, "restaurant_id")
	if restaurantID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "restaurant_id is required", nil)
	}
	if err := checkRestaurantAccess(c, restaurantID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	var suppliers []domain.Supplier
	if err := GetDB(c).Where("restaurant_id = ?", restaurantID).Order("name").Find(&suppliers).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list suppliers", err.Error())
	}
	return ok(c, suppliers)
}

func createSupplier(c echo.Context) error {
	var payload supplierPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse supplier", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	if err := checkRestaurantAccess(c, payload.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	supplier := domain.Supplier{
		ID:            common.UUIDint64(),
		RestaurantId:  payload.RestaurantId,
		Name:          payload.Name,
		ContactPerson: payload.ContactPerson,
		Phone:         payload.Phone,
		Email:         payload.Email,
		Address:       payload.Address,
	}
	if err := GetDB(c).Create(&supplier).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create supplier", err.Error())
	}
	return created(c, supplier)
}

func createInventoryOrder(c echo.Context) error {
	var payload inventoryOrderPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse order", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	if err := checkRestaurantAccess(c, payload.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	quantity, err := parseAmount(payload.QuantityOrdered, "quantity_ordered")
	if err != nil {
		return failSaleError(c, err)
	}
	if !quantity.IsPositive() {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "quantity_ordered must be positive", nil)
	}
	unitPrice, err := parseAmount(payload.UnitPrice, "unit_price")
	if err != nil {
		return failSaleError(c, err)
	}

	var item domain.InventoryItem
	if err := GetDB(c).Where("id = ? AND restaurant_id = ?", payload.InventoryItemId, payload.RestaurantId).
		First(&item).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Inventory item not found", nil)
	}

	order := domain.InventoryOrder{
		ID:              common.UUIDint64(),
		RestaurantId:    payload.RestaurantId,
		SupplierId:      payload.SupplierId,
		InventoryItemId: payload.InventoryItemId,
		QuantityOrdered: quantity,
		UnitPrice:       unitPrice,
		Status:          domain.InvOrderPending,
		OrderDate:       time.Now(),
	}
	if err := GetDB(c).Create(&order).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create order", err.Error())
	}
	return created(c, order)
}

func listInventoryOrders(c echo.Context) error {
	restaurantID := queryInt64(c, "restaurant_id")
	if restaurantID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "restaurant_id is required", nil)
	}
	if err := checkRestaurantAccess(c, restaurantID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	page, pageSize := parsePagination(c)
	query := GetDB(c).Model(&domain.InventoryOrder{}).Where("restaurant_id = ?", restaurantID)
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var orders []domain.InventoryOrder
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&orders).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list orders", err.Error())
	}
	return paged(c, orders, total, page, pageSize)
}

// receiveInventoryOrder marks the order received and adds the ordered
// quantity to stock through the ledger, inside one transaction.
func receiveInventoryOrder(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid order id", nil)
	}
	var order domain.InventoryOrder
	if err := GetDB(c).First(&order, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Order not found", nil)
	}
	if err := checkRestaurantAccess(c, order.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	if order.Status == domain.InvOrderReceived {
		return fail(c, http.StatusBadRequest, "ALREADY_RECEIVED", "Order was already received", nil)
	}
	if order.Status == domain.InvOrderCancelled {
		return fail(c, http.StatusBadRequest, "ORDER_CANCELLED", "Order was cancelled", nil)
	}

	ledger := pos.NewStockLedger()
	oprID := GetPrincipal(c).OprId
	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		now := time.Now()
		if err := tx.Model(&domain.InventoryOrder{}).Where("id = ?", order.ID).
			Updates(map[string]interface{}{"status": domain.InvOrderReceived, "received_at": now}).Error; err != nil {
			return err
		}
		_, err := ledger.Add(tx, order.InventoryItemId, order.QuantityOrdered, pos.LedgerContext{
			Type:       domain.InvTransactionRestock,
			InvOrderId: &order.ID,
			OprId:      oprID,
			Notes:      "inventory order received",
		})
		return err
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to receive order", err.Error())
	}

	GetDB(c).First(&order, id)
	return ok(c, order)
}
