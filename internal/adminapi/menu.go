package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/internal/pos"
	"github.com/restokit/restos/internal/webserver"
	"github.com/restokit/restos/pkg/common"
)

type menuCategoryPayload struct {
	RestaurantId int64  `json:"restaurant_id,string" validate:"required"`
	Name         string `json:"name" validate:"required"`
	Sort         int    `json:"sort"`
}

type menuItemPayload struct {
	RestaurantId int64  `json:"restaurant_id,string" validate:"required"`
	CategoryId   int64  `json:"category_id,string"`
	Name         string `json:"name" validate:"required"`
	Description  string `json:"description"`
	Price        string `json:"price" validate:"required"`
	CostPrice    string `json:"cost_price"`
	Status       string `json:"status"`
}

type recipeIngredientPayload struct {
	InventoryItemId    int64  `json:"inventory_item_id,string" validate:"required"`
	QuantityPerServing string `json:"quantity_per_serving" validate:"required"`
	Unit               string `json:"unit"`
	IsOptional         bool   `json:"is_optional"`
}

type recipePayload struct {
	Name        string                    `json:"name"`
	IsActive    *bool                     `json:"is_active"`
	Remark      string                    `json:"remark"`
	Ingredients []recipeIngredientPayload `json:"ingredients" validate:"dive"`
}

func registerMenuRoutes() {
	webserver.ApiGET("/menu/categories", listMenuCategories)
	webserver.ApiPOST("/menu/categories", createMenuCategory)
	webserver.ApiGET("/menu/items", listMenuItems)
	webserver.ApiPOST("/menu/items", createMenuItem)
	webserver.ApiPUT("/menu/items/:id", updateMenuItem)
	webserver.ApiDELETE("/menu/items/:id", discontinueMenuItem)
	webserver.ApiGET("/menu/items/:id/recipe", getRecipe)
	webserver.ApiPUT("/menu/items/:id/recipe", upsertRecipe)
	webserver.ApiGET("/menu/items/:id/availability", menuItemAvailability)
}

func listMenuCategories(c echo.Context) error {
	restaurantID := queryInt64(c, "restaurant_id")
	if restaurantID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "restaurant_id is required", nil)
	}
	if err := checkRestaurantAccess(c, restaurantID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	var categories []domain.MenuCategory
	if err := GetDB(c).Where("restaurant_id = ?", restaurantID).Order("sort, name").Find(&categories).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list categories", err.Error())
	}
	return ok(c, categories)
}

func createMenuCategory(c echo.Context) error {
	var payload menuCategoryPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse category", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	if err := checkRestaurantAccess(c, payload.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	category := domain.MenuCategory{
		ID:           common.UUIDint64(),
		RestaurantId: payload.RestaurantId,
		Name:         payload.Name,
		Sort:         payload.Sort,
	}
	if err := GetDB(c).Create(&category).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create category", err.Error())
	}
	return created(c, category)
}

func listMenuItems(c echo.Context) error {
	restaurantID := queryInt64(c, "restaurant_id")
	if restaurantID == 0 {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "restaurant_id is required", nil)
	}
	if err := checkRestaurantAccess(c, restaurantID); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	page, pageSize := parsePagination(c)
	query := GetDB(c).Model(&domain.MenuItem{}).Where("restaurant_id = ?", restaurantID)
	if categoryID := queryInt64(c, "category_id"); categoryID != 0 {
		query = query.Where("category_id = ?", categoryID)
	}
	if status := c.QueryParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if keyword := c.QueryParam("keyword"); keyword != "" {
		query = query.Where("name LIKE ?", "%"+keyword+"%")
	}

	var total int64
	query.Count(&total)

	var items []domain.MenuItem
	if err := query.Preload("Recipe.Ingredients").
		Order("category_id, name").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&items).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list items", err.Error())
	}
	return paged(c, items, total, page, pageSize)
}

func createMenuItem(c echo.Context) error {
	var payload menuItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse item", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	if err := checkRestaurantAccess(c, payload.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	price, err := parseAmount(payload.Price, "price")
	if err != nil {
		return failSaleError(c, err)
	}
	if price.IsNegative() {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "price must not be negative", nil)
	}
	costPrice, err := parseAmount(payload.CostPrice, "cost_price")
	if err != nil {
		return failSaleError(c, err)
	}

	status := payload.Status
	if status == "" {
		status = domain.MenuItemAvailable
	}
	item := domain.MenuItem{
		ID:           common.UUIDint64(),
		RestaurantId: payload.RestaurantId,
		CategoryId:   payload.CategoryId,
		Name:         payload.Name,
		Description:  payload.Description,
		Price:        price,
		CostPrice:    costPrice,
		Status:       status,
	}
	if err := GetDB(c).Create(&item).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create item", err.Error())
	}
	return created(c, item)
}

func updateMenuItem(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id", nil)
	}
	var item domain.MenuItem
	if err := GetDB(c).First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Menu item not found", nil)
	}
	if err := checkRestaurantAccess(c, item.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	var payload menuItemPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse item", err.Error())
	}

	updates := map[string]interface{}{}
	if payload.Name != "" {
		updates["name"] = payload.Name
	}
	if payload.Description != "" {
		updates["description"] = payload.Description
	}
	if payload.CategoryId != 0 {
		updates["category_id"] = payload.CategoryId
	}
	if payload.Price != "" {
		price, err := parseAmount(payload.Price, "price")
		if err != nil {
			return failSaleError(c, err)
		}
		updates["price"] = price
	}
	if payload.CostPrice != "" {
		costPrice, err := parseAmount(payload.CostPrice, "cost_price")
		if err != nil {
			return failSaleError(c, err)
		}
		updates["cost_price"] = costPrice
	}
	if payload.Status != "" {
		if !common.InSlice(payload.Status, []string{
			domain.MenuItemAvailable, domain.MenuItemUnavailable,
			domain.MenuItemOutOfStock, domain.MenuItemDiscontinued,
		}) {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Unknown status", nil)
		}
		updates["status"] = payload.Status
	}
	if len(updates) > 0 {
		if err := GetDB(c).Model(&item).Updates(updates).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update item", err.Error())
		}
	}
	GetDB(c).First(&item, id)
	return ok(c, item)
}

// discontinueMenuItem soft-retires the item. Sale lines keep their
// reference; the POS stops offering it.
func discontinueMenuItem(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id", nil)
	}
	var item domain.MenuItem
	if err := GetDB(c).First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Menu item not found", nil)
	}
	if err := checkRestaurantAccess(c, item.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	if err := GetDB(c).Model(&item).Update("status", domain.MenuItemDiscontinued).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to discontinue item", err.Error())
	}
	return ok(c, nil)
}

func getRecipe(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id", nil)
	}
	var item domain.MenuItem
	if err := GetDB(c).First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Menu item not found", nil)
	}
	if err := checkRestaurantAccess(c, item.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	var recipe domain.Recipe
	if err := GetDB(c).Preload("Ingredients.InventoryItem").
		Where("menu_item_id = ?", id).First(&recipe).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "No recipe for this item", nil)
	}
	return ok(c, recipe)
}

// upsertRecipe replaces the item's recipe wholesale. Ingredient lists are
// small; replacing beats diffing.
func upsertRecipe(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id", nil)
	}
	var item domain.MenuItem
	if err := GetDB(c).First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Menu item not found", nil)
	}
	if err := checkRestaurantAccess(c, item.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	var payload recipePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse recipe", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	seen := map[int64]bool{}
	ingredients := make([]domain.RecipeIngredient, 0, len(payload.Ingredients))
	for _, ing := range payload.Ingredients {
		if seen[ing.InventoryItemId] {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Duplicate ingredient in recipe", nil)
		}
		seen[ing.InventoryItemId] = true

		quantity, err := parseAmount(ing.QuantityPerServing, "quantity_per_serving")
		if err != nil {
			return failSaleError(c, err)
		}
		if !quantity.IsPositive() {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "quantity_per_serving must be positive", nil)
		}
		var invItem domain.InventoryItem
		if err := GetDB(c).Where("id = ? AND restaurant_id = ?", ing.InventoryItemId, item.RestaurantId).
			First(&invItem).Error; err != nil {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Ingredient references an unknown inventory item", nil)
		}
		unit := ing.Unit
		if unit == "" {
			unit = invItem.Unit
		}
		ingredients = append(ingredients, domain.RecipeIngredient{
			ID:                 common.UUIDint64(),
			InventoryItemId:    ing.InventoryItemId,
			QuantityPerServing: quantity,
			Unit:               unit,
			IsOptional:         ing.IsOptional,
		})
	}

	isActive := true
	if payload.IsActive != nil {
		isActive = *payload.IsActive
	}

	var recipe domain.Recipe
	err = GetDB(c).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("menu_item_id = ?", id).First(&recipe).Error; err != nil {
			recipe = domain.Recipe{ID: common.UUIDint64(), MenuItemId: id}
			if err := tx.Create(&recipe).Error; err != nil {
				return err
			}
		}
		updates := map[string]interface{}{"is_active": isActive, "remark": payload.Remark}
		if payload.Name != "" {
			updates["name"] = payload.Name
		}
		if err := tx.Model(&domain.Recipe{}).Where("id = ?", recipe.ID).Updates(updates).Error; err != nil {
			return err
		}
		if err := tx.Where("recipe_id = ?", recipe.ID).Delete(&domain.RecipeIngredient{}).Error; err != nil {
			return err
		}
		for i := range ingredients {
			ingredients[i].RecipeId = recipe.ID
		}
		if len(ingredients) > 0 {
			if err := tx.Create(&ingredients).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to save recipe", err.Error())
	}

	GetDB(c).Preload("Ingredients.InventoryItem").First(&recipe, recipe.ID)
	return ok(c, recipe)
}

// menuItemAvailability answers how many servings of the item current stock
// supports, with per-ingredient shortage detail for a requested quantity.
func menuItemAvailability(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid item id", nil)
	}
	var item domain.MenuItem
	if err := GetDB(c).First(&item, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Menu item not found", nil)
	}
	if err := checkRestaurantAccess(c, item.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}

	servings := int(queryInt64(c, "quantity"))
	if servings <= 0 {
		servings = 1
	}

	resolver := pos.NewRecipeResolver()
	available, shortages, err := resolver.CheckAvailability(GetDB(c), id, servings)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Availability check failed", err.Error())
	}
	return ok(c, map[string]interface{}{
		"menu_item_id": item.ID,
		"quantity":     servings,
		"available":    available,
		"shortages":    shortages,
	})
}
