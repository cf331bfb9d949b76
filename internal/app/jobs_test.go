package app

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/restokit/restos/config"
	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/pkg/common"
)

func newTestApp(t *testing.T) *Application {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	db.Exec("PRAGMA busy_timeout = 5000")
	if err := db.AutoMigrate(domain.Tables...); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	a := NewApplication(config.DefaultAppConfig)
	a.OverrideDB(db)
	a.configManager = NewConfigManager(a)
	return a
}

func seedSale(t *testing.T, db *gorm.DB, branchID int64, total, tax, discount string, at time.Time) {
	t.Helper()
	sale := domain.Sale{
		ID:             common.UUIDint64(),
		BranchId:       branchID,
		ReceiptNo:      common.UUID(),
		PaymentMethod:  domain.PaymentCash,
		Subtotal:       decimal.RequireFromString(total),
		TaxAmount:      decimal.RequireFromString(tax),
		DiscountAmount: decimal.RequireFromString(discount),
		Total:          decimal.RequireFromString(total),
		CreatedAt:      at,
	}
	if err := db.Create(&sale).Error; err != nil {
		t.Fatalf("seed sale: %v", err)
	}
}

func TestDailyRollupAggregatesBranchSales(t *testing.T) {
	a := newTestApp(t)
	db := a.DB()

	branch := domain.Branch{ID: common.UUIDint64(), RestaurantId: 1, Name: "Clifton"}
	if err := db.Create(&branch).Error; err != nil {
		t.Fatalf("seed branch: %v", err)
	}

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local)
	seedSale(t, db, branch.ID, "1000.00", "170.00", "0.00", day.Add(10*time.Hour))
	seedSale(t, db, branch.ID, "500.00", "85.00", "50.00", day.Add(14*time.Hour))
	// Next day sale must stay out of the rollup.
	seedSale(t, db, branch.ID, "999.00", "100.00", "0.00", day.Add(26*time.Hour))

	if err := a.RunDailyRollupNow("2026-08-30"); err != nil {
		t.Fatalf("rollup: %v", err)
	}

	var row domain.BranchDailySales
	if err := db.Where("branch_id = ? AND date = ?", branch.ID, "2026-08-30").First(&row).Error; err != nil {
		t.Fatalf("rollup row not written: %v", err)
	}
	if !row.Revenue.Equal(decimal.RequireFromString("1500.00")) {
		t.Fatalf("revenue: got %s, want 1500.00", row.Revenue)
	}
	if row.Transactions != 2 {
		t.Fatalf("transactions: got %d, want 2", row.Transactions)
	}
	if !row.TaxCollected.Equal(decimal.RequireFromString("255.00")) {
		t.Fatalf("tax: got %s, want 255.00", row.TaxCollected)
	}
	if !row.DiscountGiven.Equal(decimal.RequireFromString("50.00")) {
		t.Fatalf("discount: got %s, want 50.00", row.DiscountGiven)
	}
	if !row.AvgTicketSize.Equal(decimal.RequireFromString("750.00")) {
		t.Fatalf("avg ticket: got %s, want 750.00", row.AvgTicketSize)
	}
}

func TestDailyRollupRerunUpdatesInPlace(t *testing.T) {
	a := newTestApp(t)
	db := a.DB()

	branch := domain.Branch{ID: common.UUIDint64(), RestaurantId: 1, Name: "Clifton"}
	if err := db.Create(&branch).Error; err != nil {
		t.Fatalf("seed branch: %v", err)
	}

	day := time.Date(2026, 8, 30, 0, 0, 0, 0, time.Local)
	seedSale(t, db, branch.ID, "100.00", "17.00", "0.00", day.Add(12*time.Hour))

	if err := a.RunDailyRollupNow("2026-08-30"); err != nil {
		t.Fatalf("first rollup: %v", err)
	}
	seedSale(t, db, branch.ID, "200.00", "34.00", "0.00", day.Add(18*time.Hour))
	if err := a.RunDailyRollupNow("2026-08-30"); err != nil {
		t.Fatalf("second rollup: %v", err)
	}

	var n int64
	db.Model(&domain.BranchDailySales{}).Where("branch_id = ?", branch.ID).Count(&n)
	if n != 1 {
		t.Fatalf("expected one rollup row, got %d", n)
	}
	var row domain.BranchDailySales
	db.Where("branch_id = ?", branch.ID).First(&row)
	if !row.Revenue.Equal(decimal.RequireFromString("300.00")) {
		t.Fatalf("revenue after rerun: got %s, want 300.00", row.Revenue)
	}
}

func TestConfigManagerSetAndConvert(t *testing.T) {
	a := newTestApp(t)
	m := a.ConfigMgr()

	if err := m.Set("pos", "DefaultTaxRate", "17.00"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Set("report", "RollupHour", "3"); err != nil {
		t.Fatalf("set: %v", err)
	}
	if err := m.Set("report", "ForecastEnabled", "true"); err != nil {
		t.Fatalf("set: %v", err)
	}

	if got := m.GetString("pos", "DefaultTaxRate"); got != "17.00" {
		t.Fatalf("GetString: got %q", got)
	}
	if got := m.GetInt64("report", "RollupHour"); got != 3 {
		t.Fatalf("GetInt64: got %d", got)
	}
	if !m.GetBool("report", "ForecastEnabled") {
		t.Fatal("GetBool: expected true")
	}

	// Overwrite invalidates the cache immediately.
	if err := m.Set("report", "RollupHour", "5"); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	if got := m.GetInt64("report", "RollupHour"); got != 5 {
		t.Fatalf("GetInt64 after overwrite: got %d", got)
	}
}

func TestConfigManagerDecode(t *testing.T) {
	a := newTestApp(t)
	m := a.ConfigMgr()

	settings := map[string]string{
		"SmtpHost": "mail.example.com",
		"SmtpPort": "2525",
	}
	for name, value := range settings {
		if err := m.Set("notify", name, value); err != nil {
			t.Fatalf("set %s: %v", name, err)
		}
	}

	var out struct {
		SmtpHost string
		SmtpPort int
	}
	if err := m.Decode("notify", &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.SmtpHost != "mail.example.com" || out.SmtpPort != 2525 {
		t.Fatalf("decoded %+v", out)
	}
}
