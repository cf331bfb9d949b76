package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Menu item availability states. A discontinued item stays in the catalog so
// that historical sale lines keep a valid reference; it is never deleted.
const (
	MenuItemAvailable    = "available"
	MenuItemUnavailable  = "unavailable"
	MenuItemOutOfStock   = "out_of_stock"
	MenuItemDiscontinued = "discontinued"
)

type MenuCategory struct {
	ID           int64     `json:"id,string" form:"id"`
	RestaurantId int64     `gorm:"index" json:"restaurant_id,string" form:"restaurant_id"`
	Name         string    `json:"name" form:"name"`
	Sort         int       `json:"sort" form:"sort"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName Specify table name
func (MenuCategory) TableName() string {
	return "menu_category"
}

type MenuItem struct {
	ID           int64           `json:"id,string" form:"id"`
	RestaurantId int64           `gorm:"index" json:"restaurant_id,string" form:"restaurant_id"`
	CategoryId   int64           `gorm:"index" json:"category_id,string" form:"category_id"`
	Name         string          `gorm:"index" json:"name" form:"name"`
	Description  string          `json:"description" form:"description"`
	Price        decimal.Decimal `gorm:"type:decimal(10,2)" json:"price" form:"price"`
	CostPrice    decimal.Decimal `gorm:"type:decimal(10,2)" json:"cost_price" form:"cost_price"`
	Status       string          `gorm:"size:32;index" json:"status" form:"status"`
	TotalSold    int64           `json:"total_sold" form:"total_sold"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Recipe *Recipe `gorm:"foreignKey:MenuItemId" json:"recipe,omitempty"`
}

// TableName Specify table name
func (MenuItem) TableName() string {
	return "menu_item"
}

// Recipe ingredient bill-of-materials for one menu item, per serving.
// An inactive recipe is treated as "no ingredient constraint" by the POS.
type Recipe struct {
	ID         int64     `json:"id,string" form:"id"`
	MenuItemId int64     `gorm:"uniqueIndex" json:"menu_item_id,string" form:"menu_item_id"`
	Name       string    `json:"name" form:"name"`
	IsActive   bool      `json:"is_active" form:"is_active"`
	Remark     string    `json:"remark" form:"remark"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Ingredients []RecipeIngredient `gorm:"foreignKey:RecipeId" json:"ingredients,omitempty"`
}

// TableName Specify table name
func (Recipe) TableName() string {
	return "menu_recipe"
}

// RecipeIngredient quantity of one inventory item consumed per serving.
// Optional ingredients never block availability and are never deducted.
type RecipeIngredient struct {
	ID                 int64           `json:"id,string" form:"id"`
	RecipeId           int64           `gorm:"index:idx_recipe_inventory,unique" json:"recipe_id,string" form:"recipe_id"`
	InventoryItemId    int64           `gorm:"index:idx_recipe_inventory,unique" json:"inventory_item_id,string" form:"inventory_item_id"`
	QuantityPerServing decimal.Decimal `gorm:"type:decimal(12,3)" json:"quantity_per_serving" form:"quantity_per_serving"`
	Unit               string          `gorm:"size:20" json:"unit" form:"unit"`
	IsOptional         bool            `json:"is_optional" form:"is_optional"`
	CreatedAt          time.Time       `json:"created_at"`
	UpdatedAt          time.Time       `json:"updated_at"`

	InventoryItem *InventoryItem `gorm:"foreignKey:InventoryItemId" json:"inventory_item,omitempty"`
}

// TableName Specify table name
func (RecipeIngredient) TableName() string {
	return "menu_recipe_ingredient"
}
