package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Payment methods
const (
	PaymentCash    = "cash"
	PaymentCard    = "card"
	PaymentDigital = "digital"
)

// Sync log event types
const (
	SyncEventSuccess = "sync_success"
	SyncEventFailure = "sync_failure"
)

// Sale committed POS transaction. Terminal once created: totals are derived
// at creation time and never edited, corrections happen through new
// adjustment transactions.
type Sale struct {
	ID             int64           `json:"id,string"`
	BranchId       int64           `gorm:"index:idx_sale_branch_created" json:"branch_id,string"`
	CustomerId     *int64          `gorm:"index" json:"customer_id,string,omitempty"`
	CashierId      int64           `gorm:"index" json:"cashier_id,string"`
	ReceiptNo      string          `gorm:"size:64;uniqueIndex" json:"receipt_no"`
	PaymentMethod  string          `gorm:"size:20" json:"payment_method"`
	Subtotal       decimal.Decimal `gorm:"type:decimal(12,2)" json:"subtotal"`
	TaxAmount      decimal.Decimal `gorm:"type:decimal(12,2)" json:"tax_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_amount"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2)" json:"total"`
	OfflineId      *string         `gorm:"size:100;uniqueIndex" json:"offline_id,omitempty"`
	IsOfflineSale  bool            `json:"is_offline_sale"`
	SyncedAt       *time.Time      `json:"synced_at,omitempty"`
	CreatedAt      time.Time       `gorm:"index:idx_sale_branch_created" json:"created_at"`

	Items []SaleLineItem `gorm:"foreignKey:SaleId" json:"items,omitempty"`
}

// TableName Specify table name
func (Sale) TableName() string {
	return "pos_sale"
}

// SaleLineItem one basket line with price and tax snapshotted at sale time,
// independent of later menu price changes.
type SaleLineItem struct {
	ID         int64           `json:"id,string"`
	SaleId     int64           `gorm:"index" json:"sale_id,string"`
	MenuItemId int64           `gorm:"index" json:"menu_item_id,string"`
	ItemName   string          `json:"item_name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `gorm:"type:decimal(10,2)" json:"unit_price"`
	TaxAmount  decimal.Decimal `gorm:"type:decimal(10,2)" json:"tax_amount"`
	Total      decimal.Decimal `gorm:"type:decimal(10,2)" json:"total"`
	CreatedAt  time.Time       `json:"created_at"`
}

// TableName Specify table name
func (SaleLineItem) TableName() string {
	return "pos_sale_item"
}

// SyncLog audit record of one offline bulk sync run
type SyncLog struct {
	ID          int64     `json:"id,string"`
	BranchId    int64     `gorm:"index" json:"branch_id,string"`
	OprId       int64     `json:"opr_id,string"`
	BatchId     string    `gorm:"size:64" json:"batch_id"`
	EventType   string    `gorm:"size:20" json:"event_type"`
	SalesSynced int       `json:"sales_synced"`
	SalesFailed int       `json:"sales_failed"`
	Details     string    `gorm:"type:text" json:"details"`
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
}

// TableName Specify table name
func (SyncLog) TableName() string {
	return "pos_sync_log"
}
