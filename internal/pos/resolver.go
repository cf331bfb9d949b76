package pos

import (
	"errors"
	"sort"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/restokit/restos/internal/domain"
)

// RecipeResolver answers availability-for-N-servings queries and expands a
// menu item into per-ingredient deduction requests. A menu item without an
// active recipe has no inventory dependency: always available, nothing to
// deduct.
type RecipeResolver struct{}

func NewRecipeResolver() *RecipeResolver {
	return &RecipeResolver{}
}

// DeductionRequest one pending stock deduction for a sale line.
type DeductionRequest struct {
	InventoryItemId int64           `json:"inventory_item_id,string"`
	Ingredient      string          `json:"ingredient"`
	Quantity        decimal.Decimal `json:"quantity"`
	Unit            string          `json:"unit"`
}

// activeRecipe loads the item's active recipe with its ingredients and their
// inventory items. Returns nil when the item has no recipe or the recipe is
// inactive.
func (r *RecipeResolver) activeRecipe(tx *gorm.DB, menuItemID int64) (*domain.Recipe, error) {
	var recipe domain.Recipe
	err := tx.Where("menu_item_id = ?", menuItemID).
		Preload("Ingredients.InventoryItem").
		First(&recipe).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if !recipe.IsActive {
		return nil, nil
	}
	return &recipe, nil
}

// CheckAvailability reports whether servings of the given menu item can be
// made from current stock, with one Shortage per lacking ingredient.
// Optional ingredients are never checked and never block availability.
func (r *RecipeResolver) CheckAvailability(tx *gorm.DB, menuItemID int64, servings int) (bool, []Shortage, error) {
	if servings <= 0 {
		return false, nil, ErrInvalidQuantity
	}

	recipe, err := r.activeRecipe(tx, menuItemID)
	if err != nil {
		return false, nil, err
	}
	if recipe == nil {
		return true, nil, nil
	}

	n := decimal.NewFromInt(int64(servings))
	var shortages []Shortage
	for _, ing := range recipe.Ingredients {
		if ing.IsOptional || ing.InventoryItem == nil {
			continue
		}
		required := ing.QuantityPerServing.Mul(n)
		available := ing.InventoryItem.QuantityInStock
		if available.LessThan(required) {
			shortages = append(shortages, Shortage{
				InventoryItemId: ing.InventoryItemId,
				Ingredient:      ing.InventoryItem.Name,
				Required:        required,
				Available:       available,
				Shortage:        required.Sub(available),
				Unit:            ing.Unit,
			})
		}
	}
	return len(shortages) == 0, shortages, nil
}

// ResolveDeductions expands servings of the menu item into one deduction
// request per non-optional ingredient, sorted by inventory item id so that
// concurrent sales acquire row locks in the same order.
func (r *RecipeResolver) ResolveDeductions(tx *gorm.DB, menuItemID int64, servings int) ([]DeductionRequest, error) {
	if servings <= 0 {
		return nil, ErrInvalidQuantity
	}

	recipe, err := r.activeRecipe(tx, menuItemID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, nil
	}

	n := decimal.NewFromInt(int64(servings))
	var reqs []DeductionRequest
	for _, ing := range recipe.Ingredients {
		if ing.IsOptional {
			continue
		}
		name := ""
		if ing.InventoryItem != nil {
			name = ing.InventoryItem.Name
		}
		reqs = append(reqs, DeductionRequest{
			InventoryItemId: ing.InventoryItemId,
			Ingredient:      name,
			Quantity:        ing.QuantityPerServing.Mul(n),
			Unit:            ing.Unit,
		})
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].InventoryItemId < reqs[j].InventoryItemId })
	return reqs, nil
}
