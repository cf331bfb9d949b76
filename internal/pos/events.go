package pos

// Event bus topics published by the POS engine. Subscribers (metrics,
// reporting rollup, notifications) attach in internal/app.
const (
	TopicSaleCreated   = "pos:sale_created"
	TopicStockDeducted = "pos:stock_deducted"
	TopicBulkSynced    = "pos:bulk_synced"
)

// SaleCreatedEvent payload for TopicSaleCreated, published after the sale
// transaction commits.
type SaleCreatedEvent struct {
	SaleId     int64
	BranchId   int64
	Total      string
	ItemsCount int
	Offline    bool
}
