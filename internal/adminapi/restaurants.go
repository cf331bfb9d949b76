package adminapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/internal/webserver"
	"github.com/restokit/restos/pkg/common"
)

type restaurantPayload struct {
	Name     string `json:"name" validate:"required"`
	Location string `json:"location"`
	TaxRate  string `json:"tax_rate"`
	Currency string `json:"currency"`
}

type branchPayload struct {
	RestaurantId int64  `json:"restaurant_id,string" validate:"required"`
	Name         string `json:"name" validate:"required"`
	City         string `json:"city"`
	Address      string `json:"address"`
	ManagerId    int64  `json:"manager_id,string"`
	Phone        string `json:"phone"`
}

type branchStaffPayload struct {
	OprId int64  `json:"opr_id,string" validate:"required"`
	Role  string `json:"role" validate:"required"`
}

func registerRestaurantRoutes() {
	webserver.ApiGET("/restaurants", listRestaurants)
	webserver.ApiPOST("/restaurants", createRestaurant)
	webserver.ApiPUT("/restaurants/:id", updateRestaurant)
	webserver.ApiGET("/restaurants/:id/branches", listBranches)
	webserver.ApiPOST("/branches", createBranch)
	webserver.ApiPOST("/branches/:id/staff", assignBranchStaff)
	webserver.ApiGET("/branches/:id/staff", listBranchStaff)
	webserver.ApiGET("/customers", listCustomers)
}

func listRestaurants(c echo.Context) error {
	claims := GetPrincipal(c)
	query := GetDB(c).Model(&domain.Restaurant{})
	switch claims.Level {
	case LevelSuper:
	case LevelOwner:
		query = query.Where("owner_id = ?", claims.OprId)
	default:
		query = query.Where("id IN (?)",
			GetDB(c).Model(&domain.BranchStaff{}).
				Select("res_branch.restaurant_id").
				Joins("JOIN res_branch ON res_branch.id = res_branch_staff.branch_id").
				Where("res_branch_staff.opr_id = ?", claims.OprId))
	}
	var restaurants []domain.Restaurant
	if err := query.Order("name").Find(&restaurants).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list restaurants", err.Error())
	}
	return ok(c, restaurants)
}

func createRestaurant(c echo.Context) error {
	claims := GetPrincipal(c)
	if claims.Level != LevelSuper && claims.Level != LevelOwner {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "Only owners may create restaurants", nil)
	}

	var payload restaurantPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse restaurant", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	taxRate, err := parseAmount(payload.TaxRate, "tax_rate")
	if err != nil {
		return failSaleError(c, err)
	}
	if taxRate.IsNegative() {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "tax_rate must not be negative", nil)
	}
	currency := payload.Currency
	if currency == "" {
		currency = "PKR"
	}

	restaurant := domain.Restaurant{
		ID:       common.UUIDint64(),
		Name:     payload.Name,
		Location: payload.Location,
		OwnerId:  claims.OprId,
		TaxRate:  taxRate,
		Currency: currency,
		Status:   common.ENABLED,
	}
	if err := GetDB(c).Create(&restaurant).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create restaurant", err.Error())
	}
	return created(c, restaurant)
}

func updateRestaurant(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id", nil)
	}
	if err := checkRestaurantAccess(c, id); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	claims := GetPrincipal(c)
	if claims.Level != LevelSuper && claims.Level != LevelOwner {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "Only owners may update restaurants", nil)
	}

	var payload restaurantPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse restaurant", err.Error())
	}

	updates := map[string]interface{}{}
	if payload.Name != "" {
		updates["name"] = payload.Name
	}
	if payload.Location != "" {
		updates["location"] = payload.Location
	}
	if payload.Currency != "" {
		updates["currency"] = payload.Currency
	}
	if payload.TaxRate != "" {
		taxRate, err := parseAmount(payload.TaxRate, "tax_rate")
		if err != nil {
			return failSaleError(c, err)
		}
		if taxRate.IsNegative() {
			return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "tax_rate must not be negative", nil)
		}
		updates["tax_rate"] = taxRate
	}
	if len(updates) > 0 {
		if err := GetDB(c).Model(&domain.Restaurant{}).Where("id = ?", id).Updates(updates).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update restaurant", err.Error())
		}
	}
	var restaurant domain.Restaurant
	GetDB(c).First(&restaurant, id)
	return ok(c, restaurant)
}

func listBranches(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid restaurant id", nil)
	}
	if err := checkRestaurantAccess(c, id); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	var branches []domain.Branch
	if err := GetDB(c).Where("restaurant_id = ?", id).Order("name").Find(&branches).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list branches", err.Error())
	}
	return ok(c, branches)
}

func createBranch(c echo.Context) error {
	var payload branchPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse branch", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}
	if err := checkRestaurantAccess(c, payload.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	claims := GetPrincipal(c)
	if claims.Level != LevelSuper && claims.Level != LevelOwner {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "Only owners may create branches", nil)
	}

	branch := domain.Branch{
		ID:           common.UUIDint64(),
		RestaurantId: payload.RestaurantId,
		Name:         payload.Name,
		City:         payload.City,
		Address:      payload.Address,
		ManagerId:    payload.ManagerId,
		Phone:        payload.Phone,
		Status:       common.ENABLED,
	}
	if err := GetDB(c).Create(&branch).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create branch", err.Error())
	}
	return created(c, branch)
}

func assignBranchStaff(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid branch id", nil)
	}
	var branch domain.Branch
	if err := GetDB(c).First(&branch, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Branch not found", nil)
	}
	if err := checkRestaurantAccess(c, branch.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	claims := GetPrincipal(c)
	if claims.Level != LevelSuper && claims.Level != LevelOwner && claims.Level != LevelManager {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "Only managers and above may assign staff", nil)
	}

	var payload branchStaffPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse assignment", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	var opr domain.SysOpr
	if err := GetDB(c).First(&opr, payload.OprId).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Operator not found", nil)
	}

	staff := domain.BranchStaff{
		ID:       common.UUIDint64(),
		BranchId: id,
		OprId:    payload.OprId,
		Role:     payload.Role,
	}
	if err := GetDB(c).Create(&staff).Error; err != nil {
		return fail(c, http.StatusBadRequest, "DUPLICATE_ASSIGNMENT", "Operator is already assigned to this branch", err.Error())
	}
	return created(c, staff)
}

func listBranchStaff(c echo.Context) error {
	id, err := paramInt64(c, "id")
	if err != nil {
		return fail(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid branch id", nil)
	}
	var branch domain.Branch
	if err := GetDB(c).First(&branch, id).Error; err != nil {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Branch not found", nil)
	}
	if err := checkRestaurantAccess(c, branch.RestaurantId); err != nil {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "No access to this restaurant", nil)
	}
	var staff []domain.BranchStaff
	if err := GetDB(c).Where("branch_id = ?", id).Find(&staff).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list staff", err.Error())
	}
	return ok(c, staff)
}

func listCustomers(c echo.Context) error {
	page, pageSize := parsePagination(c)
	query := GetDB(c).Model(&domain.Customer{})
	if keyword := c.QueryParam("keyword"); keyword != "" {
		query = query.Where("name LIKE ? OR contact LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}

	var total int64
	query.Count(&total)

	var customers []domain.Customer
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&customers).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list customers", err.Error())
	}
	return paged(c, customers, total, page, pageSize)
}
