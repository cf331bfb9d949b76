package adminapi

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/internal/webserver"
	"github.com/restokit/restos/pkg/common"
)

type testValidator struct {
	validate *validator.Validate
}

func (v *testValidator) Validate(i interface{}) error {
	if err := v.validate.Struct(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}

func newTestDB(t *testing.T) *gorm.DB {
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
	return db
}

func newDBContext(t *testing.T, db *gorm.DB, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	e.Validator = &testValidator{validate: validator.New()}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &webserver.TokenClaims{OprId: 1, Level: LevelSuper})
	c.Set(webserver.ContextKeyPrincipal, token)
	c.Set(webserver.ContextKeyDB, db)
	return c, rec
}

func seedStockItem(t *testing.T, db *gorm.DB, stock string) *domain.InventoryItem {
	t.Helper()
	item := domain.InventoryItem{
		ID:              common.UUIDint64(),
		RestaurantId:    common.UUIDint64(),
		Name:            "Chicken",
		QuantityInStock: decimal.RequireFromString(stock),
		Unit:            "kg",
		ReorderLevel:    decimal.RequireFromString("1"),
		ReorderQuantity: decimal.RequireFromString("10"),
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("seed inventory item: %v", err)
	}
	return &item
}

func reloadStock(t *testing.T, db *gorm.DB, id int64) decimal.Decimal {
	t.Helper()
	var item domain.InventoryItem
	if err := db.First(&item, id).Error; err != nil {
		t.Fatalf("reload inventory item: %v", err)
	}
	return item.QuantityInStock
}

func TestRestockRollsBackWhenAuditAppendFails(t *testing.T) {
	db := newTestDB(t)
	item := seedStockItem(t, db, "2.0")

	// break the audit table so the ledger append must fail mid-mutation
	if err := db.Migrator().DropTable(&domain.InventoryTransaction{}); err != nil {
		t.Fatalf("drop audit table: %v", err)
	}

	c, rec := newDBContext(t, db, `{"quantity":"5","notes":"weekly delivery"}`)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(item.ID, 10))
	if err := restockInventoryItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := reloadStock(t, db, item.ID); !got.Equal(decimal.RequireFromString("2.0")) {
		t.Fatalf("stock mutated without audit record: got %s, want 2.0", got)
	}
}

func TestAdjustRollsBackWhenAuditAppendFails(t *testing.T) {
	db := newTestDB(t)
	item := seedStockItem(t, db, "2.0")

	if err := db.Migrator().DropTable(&domain.InventoryTransaction{}); err != nil {
		t.Fatalf("drop audit table: %v", err)
	}

	c, rec := newDBContext(t, db, `{"quantity":"1","type":"waste","notes":"spoiled"}`)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(item.ID, 10))
	if err := adjustInventoryItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusInternalServerError)
	}
	if got := reloadStock(t, db, item.ID); !got.Equal(decimal.RequireFromString("2.0")) {
		t.Fatalf("stock mutated without audit record: got %s, want 2.0", got)
	}
}

func TestRestockAppendsAuditRecordAtomically(t *testing.T) {
	db := newTestDB(t)
	item := seedStockItem(t, db, "2.0")

	c, rec := newDBContext(t, db, `{"quantity":"5","notes":"weekly delivery"}`)
	c.SetParamNames("id")
	c.SetParamValues(strconv.FormatInt(item.ID, 10))
	if err := restockInventoryItem(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	if got := reloadStock(t, db, item.ID); !got.Equal(decimal.RequireFromString("7.0")) {
		t.Fatalf("stock after restock: got %s, want 7.0", got)
	}
	var record domain.InventoryTransaction
	if err := db.Where("inventory_item_id = ?", item.ID).First(&record).Error; err != nil {
		t.Fatalf("audit record: %v", err)
	}
	if record.Type != domain.InvTransactionRestock || !record.Quantity.Equal(decimal.RequireFromString("5")) {
		t.Fatalf("audit record: %+v", record)
	}
}
