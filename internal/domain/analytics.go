package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BranchDailySales one row per branch per day, produced by the daily
// rollup job from committed sales.
type BranchDailySales struct {
	ID            int64           `json:"id,string"`
	BranchId      int64           `gorm:"index:idx_branch_daily,unique" json:"branch_id,string"`
	Date          string          `gorm:"size:10;index:idx_branch_daily,unique" json:"date"` // YYYY-MM-DD
	Revenue       decimal.Decimal `gorm:"type:decimal(12,2)" json:"revenue"`
	Transactions  int             `json:"transactions"`
	AvgTicketSize decimal.Decimal `gorm:"type:decimal(10,2)" json:"avg_ticket_size"`
	TaxCollected  decimal.Decimal `gorm:"type:decimal(12,2)" json:"tax_collected"`
	DiscountGiven decimal.Decimal `gorm:"type:decimal(12,2)" json:"discount_given"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (BranchDailySales) TableName() string {
	return "report_branch_daily"
}

// BranchForecast moving-average revenue forecast for one branch/date
type BranchForecast struct {
	ID               int64           `json:"id,string"`
	BranchId         int64           `gorm:"index:idx_branch_forecast,unique" json:"branch_id,string"`
	ForecastDate     string          `gorm:"size:10;index:idx_branch_forecast,unique" json:"forecast_date"`
	PredictedRevenue decimal.Decimal `gorm:"type:decimal(12,2)" json:"predicted_revenue"`
	PredictedGrowth  decimal.Decimal `gorm:"type:decimal(5,2)" json:"predicted_growth"`
	ConfidenceScore  int             `json:"confidence_score"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName Specify table name
func (BranchForecast) TableName() string {
	return "report_branch_forecast"
}
