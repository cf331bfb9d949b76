package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Restaurant tenant: owns branches, menu catalog and inventory
type Restaurant struct {
	ID        int64           `json:"id,string" form:"id"`
	Name      string          `gorm:"index" json:"name" form:"name"`
	Location  string          `json:"location" form:"location"`
	OwnerId   int64           `gorm:"index" json:"owner_id,string" form:"owner_id"`
	TaxRate   decimal.Decimal `gorm:"type:decimal(5,2)" json:"tax_rate" form:"tax_rate"` // flat percentage, e.g. 17.00
	Currency  string          `gorm:"size:8" json:"currency" form:"currency"`
	Status    string          `json:"status" form:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (Restaurant) TableName() string {
	return "res_restaurant"
}

// Branch a physical restaurant location
type Branch struct {
	ID           int64     `json:"id,string" form:"id"`
	RestaurantId int64     `gorm:"index" json:"restaurant_id,string" form:"restaurant_id"`
	Name         string    `json:"name" form:"name"`
	City         string    `json:"city" form:"city"`
	Address      string    `json:"address" form:"address"`
	ManagerId    int64     `gorm:"index" json:"manager_id,string" form:"manager_id"`
	Phone        string    `json:"phone" form:"phone"`
	Status       string    `json:"status" form:"status"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Branch) TableName() string {
	return "res_branch"
}

// BranchStaff assignment of an operator to a branch, limits which branches
// a manager or cashier may transact against
type BranchStaff struct {
	ID        int64     `json:"id,string" form:"id"`
	BranchId  int64     `gorm:"index:idx_branch_staff,unique" json:"branch_id,string" form:"branch_id"`
	OprId     int64     `gorm:"index:idx_branch_staff,unique" json:"opr_id,string" form:"opr_id"`
	Role      string    `json:"role" form:"role"` // manager / cashier / chef / waiter
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (BranchStaff) TableName() string {
	return "res_branch_staff"
}

// Customer walk-in POS customer, identified by contact number
type Customer struct {
	ID        int64     `json:"id,string" form:"id"`
	Name      string    `json:"name" form:"name"`
	Contact   string    `gorm:"uniqueIndex" json:"contact" form:"contact"`
	Email     string    `json:"email" form:"email"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName Specify table name
func (Customer) TableName() string {
	return "res_customer"
}
