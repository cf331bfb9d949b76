package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/internal/pos"
	"github.com/restokit/restos/internal/webserver"
)

type saleItemPayload struct {
	MenuItemId int64 `json:"menu_item_id,string" validate:"required"`
	Quantity   int   `json:"quantity" validate:"required"`
}

type createSalePayload struct {
	BranchId        int64             `json:"branch_id,string" validate:"required"`
	CustomerName    string            `json:"customer_name"`
	CustomerContact string            `json:"customer_contact"`
	PaymentMethod   string            `json:"payment_method" validate:"required"`
	DiscountAmount  string            `json:"discount_amount"`
	OfflineId       string            `json:"offline_id"`
	Items           []saleItemPayload `json:"items" validate:"required,dive"`
}

type bulkSyncPayload struct {
	Sales []createSalePayload `json:"sales" validate:"required,dive"`
}

func registerPosRoutes() {
	webserver.ApiPOST("/pos/sales", createSale)
	webserver.ApiPOST("/pos/sales/bulk_sync", bulkSyncSales)
	webserver.ApiGET("/pos/sales", listSales)
	webserver.ApiGET("/pos/sales/:id", getSale)
	webserver.ApiGET("/pos/menu", posMenu)
	webserver.ApiGET("/pos/sync_logs", listSyncLogs)
}

// toSaleRequest maps the wire payload onto the coordinator input. The
// discount string keeps clients from sending binary floats for money.
func toSaleRequest(c echo.Context, payload *createSalePayload) (*pos.SaleRequest, error) {
	discount := decimal.Zero
	if payload.DiscountAmount != "" {
		var err error
		discount, err = decimal.NewFromString(payload.DiscountAmount)
		if err != nil {
			return nil, &pos.ValidationError{Field: "discount_amount", Reason: "not a valid amount"}
		}
	}
	req := &pos.SaleRequest{
		BranchId:        payload.BranchId,
		CashierId:       GetPrincipal(c).OprId,
		CustomerName:    payload.CustomerName,
		CustomerContact: payload.CustomerContact,
		PaymentMethod:   payload.PaymentMethod,
		DiscountAmount:  discount,
		OfflineId:       payload.OfflineId,
	}
	for _, item := range payload.Items {
		req.Items = append(req.Items, pos.SaleLine{MenuItemId: item.MenuItemId, Quantity: item.Quantity})
	}
	return req, nil
}

// failSaleError maps coordinator errors onto HTTP responses. Shortage
// details ride along so the cashier screen can show exactly what ran out.
func failSaleError(c echo.Context, err error) error {
	var verr *pos.ValidationError
	if errors.As(err, &verr) {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", verr.Error(), map[string]string{"field": verr.Field})
	}
	var ierr *pos.InsufficientInventoryError
	if errors.As(err, &ierr) {
		return fail(c, http.StatusBadRequest, "INSUFFICIENT_INVENTORY", ierr.Error(), ierr.Items)
	}
	if errors.Is(err, pos.ErrAccessDenied) {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this branch", nil)
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", err.Error(), nil)
	}
	return fail(c, http.StatusInternalServerError, "SALE_ERROR", "Failed to process sale", err.Error())
}

func createSale(c echo.Context) error {
	var payload createSalePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse sale", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	if err := checkBranchAccess(c, payload.BranchId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this branch", nil)
	}

	req, err := toSaleRequest(c, &payload)
	if err != nil {
		return failSaleError(c, err)
	}

	coordinator := pos.NewSaleCoordinator(GetDB(c), pos.NewRecipeResolver(), pos.NewStockLedger(), eventBus)
	result, err := coordinator.CreateSale(c.Request().Context(), req)
	if err != nil {
		return failSaleError(c, err)
	}

	if result.Replayed {
		return ok(c, result)
	}
	return created(c, result)
}

func bulkSyncSales(c echo.Context) error {
	var payload bulkSyncPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse batch", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	if len(payload.Sales) == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Batch must not be empty", nil)
	}

	requests := make([]*pos.SaleRequest, 0, len(payload.Sales))
	for i := range payload.Sales {
		req, err := toSaleRequest(c, &payload.Sales[i])
		if err != nil {
			return failSaleError(c, err)
		}
		if req.OfflineId == "" {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Every batched sale needs an offline_id", nil)
		}
		requests = append(requests, req)
	}

	coordinator := pos.NewSaleCoordinator(GetDB(c), pos.NewRecipeResolver(), pos.NewStockLedger(), eventBus)
	syncer := pos.NewBulkSyncCoordinator(GetDB(c), coordinator, eventBus)
	result, err := syncer.SyncBatch(c.Request().Context(), GetPrincipal(c).OprId, func(branchID int64) error {
		return checkBranchAccess(c, branchID)
	}, requests)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "SYNC_ERROR", "Bulk sync failed", err.Error())
	}

	return ok(c, result)
}

func listSales(c echo.Context) error {
	branchID := queryInt64(c, "branch_id")
	if branchID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "branch_id is required", nil)
	}
	if err := checkBranchAccess(c, branchID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this branch", nil)
	}

	page, pageSize := parsePagination(c)
	query := GetDB(c).Model(&domain.Sale{}).Where("branch_id = ?", branchID)
	if method := c.QueryParam("payment_method"); method != "" {
		query = query.Where("payment_method = ?", method)
	}
	if c.QueryParam("offline") == "true" {
		query = query.Where("is_offline_sale = ?", true)
	}

	var total int64
	query.Count(&total)

	var sales []domain.Sale
	if err := query.Preload("Items").
		Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&sales).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list sales", err.Error())
	}
	return paged(c, sales, total, page, pageSize)
}

func getSale(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid sale id", nil)
	}
	var sale domain.Sale
	if err := GetDB(c).Preload("Items").First(&sale, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Sale not found", nil)
	}
	if err := checkBranchAccess(c, sale.BranchId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this branch", nil)
	}
	return ok(c, sale)
}

// posMenu returns the sellable catalog for a branch's restaurant with
// tax-inclusive prices precomputed for the cashier screen.
func posMenu(c echo.Context) error {
	branchID := queryInt64(c, "branch_id")
	if branchID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "branch_id is required", nil)
	}
	if err := checkBranchAccess(c, branchID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this branch", nil)
	}

	var branch domain.Branch
	if err := GetDB(c).First(&branch, branchID).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Branch not found", nil)
	}
	var restaurant domain.Restaurant
	if err := GetDB(c).First(&restaurant, branch.RestaurantId).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Restaurant not found", nil)
	}

	var items []domain.MenuItem
	if err := GetDB(c).
		Where("restaurant_id = ? AND status <> ?", restaurant.ID, domain.MenuItemDiscontinued).
		Order("category_id, name").
		Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to load menu", err.Error())
	}

	taxFactor := restaurant.TaxRate.Div(decimal.NewFromInt(100)).Add(decimal.NewFromInt(1))
	type menuEntry struct {
		domain.MenuItem
		PriceWithTax decimal.Decimal `json:"price_with_tax"`
	}
	entries := make([]menuEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, menuEntry{
			MenuItem:     item,
			PriceWithTax: item.Price.Mul(taxFactor).Round(2),
		})
	}
	return ok(c, map[string]interface{}{
		"tax_rate": restaurant.TaxRate,
		"currency": restaurant.Currency,
		"items":    entries,
	})
}

func listSyncLogs(c echo.Context) error {
	branchID := queryInt64(c, "branch_id")
	if branchID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "branch_id is required", nil)
	}
	if err := checkBranchAccess(c, branchID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this branch", nil)
	}

	page, pageSize := parsePagination(c)
	query := GetDB(c).Model(&domain.SyncLog{}).Where("branch_id = ?", branchID)

	var total int64
	query.Count(&total)

	var logs []domain.SyncLog
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&logs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list sync logs", err.Error())
	}
	return paged(c, logs, total, page, pageSize)
}
