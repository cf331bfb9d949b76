package pos

import (
	"fmt"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/pkg/common"
)

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

type fixture struct {
	db         *gorm.DB
	restaurant domain.Restaurant
	branch     domain.Branch
}

// seedFixture creates one restaurant (17% tax) with one branch.
func seedFixture(t *testing.T, db *gorm.DB) *fixture {
	t.Helper()
	f := &fixture{db: db}
	f.restaurant = domain.Restaurant{
		ID:       common.UUIDint64(),
		Name:     "Karachi Grill",
		TaxRate:  decimal.RequireFromString("17.00"),
		Currency: "PKR",
		Status:   common.ENABLED,
	}
	if err := db.Create(&f.restaurant).Error; err != nil {
		t.Fatalf("seed restaurant: %v", err)
	}
	f.branch = domain.Branch{
		ID:           common.UUIDint64(),
		RestaurantId: f.restaurant.ID,
		Name:         "Clifton",
		City:         "Karachi",
		Status:       common.ENABLED,
	}
	if err := db.Create(&f.branch).Error; err != nil {
		t.Fatalf("seed branch: %v", err)
	}
	return f
}

func (f *fixture) addMenuItem(t *testing.T, name, price string) *domain.MenuItem {
	t.Helper()
	item := domain.MenuItem{
		ID:           common.UUIDint64(),
		RestaurantId: f.restaurant.ID,
		Name:         name,
		Price:        decimal.RequireFromString(price),
		Status:       domain.MenuItemAvailable,
	}
	if err := f.db.Create(&item).Error; err != nil {
		t.Fatalf("seed menu item %s: %v", name, err)
	}
	return &item
}

func (f *fixture) addInventoryItem(t *testing.T, name, stock, unit string) *domain.InventoryItem {
	t.Helper()
	item := domain.InventoryItem{
		ID:              common.UUIDint64(),
		RestaurantId:    f.restaurant.ID,
		Name:            name,
		QuantityInStock: decimal.RequireFromString(stock),
		Unit:            unit,
		ReorderLevel:    decimal.RequireFromString("1"),
		ReorderQuantity: decimal.RequireFromString("10"),
	}
	if err := f.db.Create(&item).Error; err != nil {
		t.Fatalf("seed inventory item %s: %v", name, err)
	}
	return &item
}

type ingredientSpec struct {
	item     *domain.InventoryItem
	perServe string
	optional bool
}

func (f *fixture) addRecipe(t *testing.T, menuItem *domain.MenuItem, active bool, ingredients ...ingredientSpec) *domain.Recipe {
	t.Helper()
	recipe := domain.Recipe{
		ID:         common.UUIDint64(),
		MenuItemId: menuItem.ID,
		Name:       menuItem.Name + " recipe",
		IsActive:   active,
	}
	if err := f.db.Create(&recipe).Error; err != nil {
		t.Fatalf("seed recipe: %v", err)
	}
	for _, spec := range ingredients {
		ing := domain.RecipeIngredient{
			ID:                 common.UUIDint64(),
			RecipeId:           recipe.ID,
			InventoryItemId:    spec.item.ID,
			QuantityPerServing: decimal.RequireFromString(spec.perServe),
			Unit:               spec.item.Unit,
			IsOptional:         spec.optional,
		}
		if err := f.db.Create(&ing).Error; err != nil {
			t.Fatalf("seed recipe ingredient: %v", err)
		}
	}
	return &recipe
}

func (f *fixture) stockOf(t *testing.T, itemID int64) decimal.Decimal {
	t.Helper()
	var item domain.InventoryItem
	if err := f.db.First(&item, itemID).Error; err != nil {
		t.Fatalf("reload inventory item: %v", err)
	}
	return item.QuantityInStock
}

func (f *fixture) countRows(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	if err := f.db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count rows: %v", err)
	}
	return n
}

func mustEqual(t *testing.T, got, want decimal.Decimal, what string) {
	t.Helper()
	if !got.Equal(want) {
		t.Fatalf("%s: got %s, want %s", what, got, want)
	}
}
