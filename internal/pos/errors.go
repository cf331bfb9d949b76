package pos

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Sentinel errors for the POS engine. Handlers map these onto HTTP statuses;
// everything else propagates as a generic storage failure.
var (
	ErrInvalidQuantity   = fmt.Errorf("quantity must be a positive integer")
	ErrInsufficientStock = fmt.Errorf("insufficient stock")
	ErrAccessDenied      = fmt.Errorf("access denied for branch")
)

// ValidationError rejects a whole sale request before any write.
type ValidationError struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

func validationErrorf(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}

// Shortage computed deficit for one ingredient during an availability check.
type Shortage struct {
	InventoryItemId int64           `json:"inventory_item_id,string"`
	Ingredient      string          `json:"ingredient"`
	Required        decimal.Decimal `json:"required"`
	Available       decimal.Decimal `json:"available"`
	Shortage        decimal.Decimal `json:"shortage"`
	Unit            string          `json:"unit"`
}

// ItemShortages all shortages for one basket line.
type ItemShortages struct {
	MenuItemId int64      `json:"menu_item_id,string"`
	MenuItem   string     `json:"menu_item"`
	Shortages  []Shortage `json:"shortages"`
}

// InsufficientInventoryError carries every offending item and its shortages,
// never just the first offender, so the cashier can fix the whole basket
// in one pass.
type InsufficientInventoryError struct {
	Items []ItemShortages `json:"items"`
}

func (e *InsufficientInventoryError) Error() string {
	var parts []string
	for _, it := range e.Items {
		for _, s := range it.Shortages {
			parts = append(parts, fmt.Sprintf("%s: need %s%s of %s, have %s%s",
				it.MenuItem, s.Required, s.Unit, s.Ingredient, s.Available, s.Unit))
		}
	}
	return "insufficient inventory: " + strings.Join(parts, "; ")
}

// StockError commit-time deduction failure for a single inventory item.
// Unwraps to ErrInsufficientStock so callers can test with errors.Is.
type StockError struct {
	InventoryItemId int64           `json:"inventory_item_id,string"`
	ItemName        string          `json:"item_name"`
	Requested       decimal.Decimal `json:"requested"`
	Available       decimal.Decimal `json:"available"`
	Unit            string          `json:"unit"`
}

func (e *StockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %s%s, available %s%s",
		e.ItemName, e.Requested, e.Unit, e.Available, e.Unit)
}

func (e *StockError) Unwrap() error {
	return ErrInsufficientStock
}
