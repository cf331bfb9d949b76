package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Inventory transaction types
const (
	InvTransactionSale       = "sale"
	InvTransactionRestock    = "restock"
	InvTransactionAdjustment = "adjustment"
	InvTransactionWaste      = "waste"
	InvTransactionReturn     = "return"
)

// Inventory order states
const (
	InvOrderPending   = "pending"
	InvOrderOrdered   = "ordered"
	InvOrderReceived  = "received"
	InvOrderCancelled = "cancelled"
)

type Supplier struct {
	ID            int64     `json:"id,string" form:"id"`
	RestaurantId  int64     `gorm:"index" json:"restaurant_id,string" form:"restaurant_id"`
	Name          string    `json:"name" form:"name"`
	ContactPerson string    `json:"contact_person" form:"contact_person"`
	Phone         string    `json:"phone" form:"phone"`
	Email         string    `json:"email" form:"email"`
	Address       string    `json:"address" form:"address"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Supplier) TableName() string {
	return "inv_supplier"
}

// InventoryItem raw ingredient stock. QuantityInStock never goes below zero;
// all mutation goes through the stock ledger.
type InventoryItem struct {
	ID              int64           `json:"id,string" form:"id"`
	RestaurantId    int64           `gorm:"index" json:"restaurant_id,string" form:"restaurant_id"`
	SupplierId      int64           `gorm:"index" json:"supplier_id,string" form:"supplier_id"`
	Name            string          `gorm:"index" json:"name" form:"name"`
	QuantityInStock decimal.Decimal `gorm:"type:decimal(12,3)" json:"quantity_in_stock" form:"quantity_in_stock"`
	Unit            string          `gorm:"size:20" json:"unit" form:"unit"`
	ReorderLevel    decimal.Decimal `gorm:"type:decimal(12,3)" json:"reorder_level" form:"reorder_level"`
	ReorderQuantity decimal.Decimal `gorm:"type:decimal(12,3)" json:"reorder_quantity" form:"reorder_quantity"`
	UnitCost        decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_cost" form:"unit_cost"`
	LastRestockAt   *time.Time      `json:"last_restock_at" form:"last_restock_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (InventoryItem) TableName() string {
	return "inv_item"
}

// InventoryTransaction append-only stock movement audit record.
// Rows are created by the stock ledger and never updated or deleted.
type InventoryTransaction struct {
	ID               int64           `json:"id,string"`
	InventoryItemId  int64           `gorm:"index" json:"inventory_item_id,string"`
	Type             string          `gorm:"size:20;index" json:"type"`
	Quantity         decimal.Decimal `gorm:"type:decimal(12,3)" json:"quantity"`
	Unit             string          `gorm:"size:20" json:"unit"`
	PreviousQuantity decimal.Decimal `gorm:"type:decimal(12,3)" json:"previous_quantity"`
	NewQuantity      decimal.Decimal `gorm:"type:decimal(12,3)" json:"new_quantity"`
	SaleId           *int64          `gorm:"index" json:"sale_id,string,omitempty"`
	InvOrderId       *int64          `gorm:"index" json:"inv_order_id,string,omitempty"`
	OprId            int64           `json:"opr_id,string"`
	Notes            string          `json:"notes"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (InventoryTransaction) TableName() string {
	return "inv_transaction"
}

// InventoryOrder restock purchase order. Receiving an order adds stock
// through the ledger with a restock transaction.
type InventoryOrder struct {
	ID              int64           `json:"id,string" form:"id"`
	RestaurantId    int64           `gorm:"index" json:"restaurant_id,string" form:"restaurant_id"`
	SupplierId      int64           `gorm:"index" json:"supplier_id,string" form:"supplier_id"`
	InventoryItemId int64           `gorm:"index" json:"inventory_item_id,string" form:"inventory_item_id"`
	QuantityOrdered decimal.Decimal `gorm:"type:decimal(12,3)" json:"quantity_ordered" form:"quantity_ordered"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price" form:"unit_price"`
	Status          string          `gorm:"size:20;index" json:"status" form:"status"`
	OrderDate       time.Time       `json:"order_date" form:"order_date"`
	ReceivedAt      *time.Time      `json:"received_at" form:"received_at"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (InventoryOrder) TableName() string {
	return "inv_order"
}
