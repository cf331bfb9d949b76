package adminapi

import (
	"fmt"
	"net/http"
	"time"

	"github.com/araddon/dateparse"
	"github.com/labstack/echo/v4"
	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/internal/webserver"
)

func registerFinanceRoutes() {
	webserver.ApiGET("/finance/branch_overview", branchOverview)
	webserver.ApiGET("/finance/all_branches", allBranchesOverview)
	webserver.ApiGET("/finance/daily", listDailyRollups)
	webserver.ApiGET("/finance/forecast", listForecasts)
	webserver.ApiGET("/finance/export", exportFinanceReport)
}

// periodRange resolves start/end query params, defaulting to the last 30
// days. Accepts anything dateparse understands.
func periodRange(c echo.Context) (time.Time, time.Time, error) {
	end := time.Now()
	start := end.AddDate(0, 0, -30)
	if s := c.QueryParam("start"); s != "" {
		ts, err := dateparse.ParseLocal(s)
		if err != nil {
			return start, end, fmt.Errorf("invalid start date: %s", s)
		}
		start = ts
	}
	if s := c.QueryParam("end"); s != "" {
		ts, err := dateparse.ParseLocal(s)
		if err != nil {
			return start, end, fmt.Errorf("invalid end date: %s", s)
		}
		end = ts
	}
	if end.Before(start) {
		return start, end, fmt.Errorf("end date precedes start date")
	}
	return start, end, nil
}

type branchSummary struct {
	BranchId      int64           `json:"branch_id,string"`
	BranchName    string          `json:"branch_name"`
	Revenue       decimal.Decimal `json:"revenue"`
	TaxCollected  decimal.Decimal `json:"tax_collected"`
	DiscountGiven decimal.Decimal `json:"discount_given"`
	Transactions  int64           `json:"transactions"`
	AvgTicket     decimal.Decimal `json:"avg_ticket"`
	MedianTicket  decimal.Decimal `json:"median_ticket"`
	P90Ticket     decimal.Decimal `json:"p90_ticket"`
	OfflineSales  int64           `json:"offline_sales"`
}

// summarizeBranch aggregates committed sales for one branch over [start, end].
// Ticket distribution stats come from the per-sale totals.
func summarizeBranch(c echo.Context, branch *domain.Branch, start, end time.Time) (*branchSummary, error) {
	var sales []domain.Sale
	if err := GetDB(c).
		Where("branch_id = ? AND created_at >= ? AND created_at <= ?", branch.ID, start, end).
		Find(&sales).Error; err != nil {
		return nil, err
	}

	summary := &branchSummary{
		BranchId:     branch.ID,
		BranchName:   branch.Name,
		Revenue:      decimal.Zero,
		TaxCollected: decimal.Zero,
		AvgTicket:    decimal.Zero,
		MedianTicket: decimal.Zero,
		P90Ticket:    decimal.Zero,
	}
	summary.DiscountGiven = decimal.Zero

	tickets := make([]float64, 0, len(sales))
	for _, sale := range sales {
		summary.Revenue = summary.Revenue.Add(sale.Total)
		summary.TaxCollected = summary.TaxCollected.Add(sale.TaxAmount)
		summary.DiscountGiven = summary.DiscountGiven.Add(sale.DiscountAmount)
		summary.Transactions++
		if sale.IsOfflineSale {
			summary.OfflineSales++
		}
		total, _ := sale.Total.Float64()
		tickets = append(tickets, total)
	}

	if len(tickets) > 0 {
		if mean, err := stats.Mean(tickets); err == nil {
			summary.AvgTicket = decimal.NewFromFloat(mean).Round(2)
		}
		if median, err := stats.Median(tickets); err == nil {
			summary.MedianTicket = decimal.NewFromFloat(median).Round(2)
		}
		if p90, err := stats.Percentile(tickets, 90); err == nil {
			summary.P90Ticket = decimal.NewFromFloat(p90).Round(2)
		}
	}
	return summary, nil
}

func branchOverview(c echo.Context) error {
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

	start, end, err := periodRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	}
	summary, err := summarizeBranch(c, &branch, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to summarize branch", err.Error())
	}

	// Payment method split rides along for the dashboard pie chart.
	type methodRow struct {
		PaymentMethod string `json:"payment_method"`
		Count         int64  `json:"count"`
		Revenue       string `json:"revenue"`
	}
	var methods []methodRow
	GetDB(c).Model(&domain.Sale{}).
		Select("payment_method, COUNT(*) AS count, SUM(total) AS revenue").
		Where("branch_id = ? AND created_at >= ? AND created_at <= ?", branchID, start, end).
		Group("payment_method").
		Scan(&methods)

	var daily []domain.BranchDailySales
	GetDB(c).Where("branch_id = ?", branchID).
		Order("date DESC").Limit(7).Find(&daily)

	return ok(c, map[string]interface{}{
		"summary":         summary,
		"payment_methods": methods,
		"daily":           daily,
		"period_start":    start.Format("2006-01-02"),
		"period_end":      end.Format("2006-01-02"),
	})
}

// allBranchesOverview is the owner dashboard: one summary per accessible
// branch of the restaurant.
func allBranchesOverview(c echo.Context) error {
	restaurantID := queryInt64(c, "restaurant_id")
	if restaurantID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "restaurant_id is required", nil)
	}
	if err := checkRestaurantAccess(c, restaurantID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	start, end, err := periodRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	}

	var branches []domain.Branch
	if err := GetDB(c).Where("restaurant_id = ?", restaurantID).Order("name").Find(&branches).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list branches", err.Error())
	}

	summaries := make([]*branchSummary, 0, len(branches))
	grandTotal := decimal.Zero
	for i := range branches {
		summary, err := summarizeBranch(c, &branches[i], start, end)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to summarize branch", err.Error())
		}
		grandTotal = grandTotal.Add(summary.Revenue)
		summaries = append(summaries, summary)
	}

	return ok(c, map[string]interface{}{
		"branches":     summaries,
		"total":        grandTotal,
		"period_start": start.Format("2006-01-02"),
		"period_end":   end.Format("2006-01-02"),
	})
}

func listDailyRollups(c echo.Context) error {
	branchID := queryInt64(c, "branch_id")
	if branchID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "branch_id is required", nil)
	}
	if err := checkBranchAccess(c, branchID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this branch", nil)
	}

	page, pageSize := parsePagination(c)
	query := GetDB(c).Model(&domain.BranchDailySales{}).Where("branch_id = ?", branchID)

	var total int64
	query.Count(&total)

	var rows []domain.BranchDailySales
	if err := query.Order("date DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list rollups", err.Error())
	}
	return paged(c, rows, total, page, pageSize)
}

func listForecasts(c echo.Context) error {
	branchID := queryInt64(c, "branch_id")
	if branchID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "branch_id is required", nil)
	}
	if err := checkBranchAccess(c, branchID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this branch", nil)
	}
	var rows []domain.BranchForecast
	if err := GetDB(c).Where("branch_id = ?", branchID).
		Order("forecast_date").Find(&rows).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list forecasts", err.Error())
	}
	return ok(c, rows)
}

// exportFinanceReport builds a two-sheet XLSX workbook: per-branch summary
// and the raw daily rollup rows for the period.
func exportFinanceReport(c echo.Context) error {
	restaurantID := queryInt64(c, "restaurant_id")
	if restaurantID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "restaurant_id is required", nil)
	}
	if err := checkRestaurantAccess(c, restaurantID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	start, end, err := periodRange(c)
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error(), nil)
	}

	var branches []domain.Branch
	if err := GetDB(c).Where("restaurant_id = ?", restaurantID).Order("name").Find(&branches).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list branches", err.Error())
	}

	book := excelize.NewFile()
	defer book.Close()

	const summarySheet = "Summary"
	book.SetSheetName("Sheet1", summarySheet)
	headers := []string{"Branch", "Revenue", "Tax Collected", "Discount Given", "Transactions", "Avg Ticket", "Offline Sales"}
	for i, header := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		book.SetCellValue(summarySheet, cell, header)
	}
	branchIDs := make([]int64, 0, len(branches))
	for row, branch := range branches {
		branchIDs = append(branchIDs, branch.ID)
		summary, err := summarizeBranch(c, &branches[row], start, end)
		if err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to summarize branch", err.Error())
		}
		values := []interface{}{
			summary.BranchName,
			summary.Revenue.InexactFloat64(),
			summary.TaxCollected.InexactFloat64(),
			summary.DiscountGiven.InexactFloat64(),
			summary.Transactions,
			summary.AvgTicket.InexactFloat64(),
			summary.OfflineSales,
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			book.SetCellValue(summarySheet, cell, value)
		}
	}

	const dailySheet = "Daily"
	book.NewSheet(dailySheet)
	dailyHeaders := []string{"Branch ID", "Date", "Revenue", "Transactions", "Avg Ticket", "Tax Collected", "Discount Given"}
	for i, header := range dailyHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		book.SetCellValue(dailySheet, cell, header)
	}
	var rollups []domain.BranchDailySales
	GetDB(c).Where("branch_id IN ? AND date >= ? AND date <= ?",
		branchIDs, start.Format("2006-01-02"), end.Format("2006-01-02")).
		Order("branch_id, date").
		Find(&rollups)
	for row, rollup := range rollups {
		values := []interface{}{
			fmt.Sprintf("%d", rollup.BranchId),
			rollup.Date,
			rollup.Revenue.InexactFloat64(),
			rollup.Transactions,
			rollup.AvgTicketSize.InexactFloat64(),
			rollup.TaxCollected.InexactFloat64(),
			rollup.DiscountGiven.InexactFloat64(),
		}
		for col, value := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+2)
			book.SetCellValue(dailySheet, cell, value)
		}
	}

	filename := fmt.Sprintf("finance_%s_%s.xlsx", start.Format("20060102"), end.Format("20060102"))
	c.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf(`attachment; filename=%q`, filename))
	c.Response().WriteHeader(http.StatusOK)
	return book.Write(c.Response())
}
