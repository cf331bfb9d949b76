package adminapi

import (
	"net/http"
	"strconv"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/internal/pos"
	"github.com/restokit/restos/internal/webserver"
)

// Operator levels
const (
	LevelSuper   = "super"
	LevelOwner   = "owner"
	LevelManager = "manager"
	LevelCashier = "cashier"
)

// GetDB returns the request scoped gorm handle.
func GetDB(c echo.Context) *gorm.DB {
	return c.Get(webserver.ContextKeyDB).(*gorm.DB)
}

// GetApp returns the application context.
func GetApp(c echo.Context) webserver.AppContext {
	return c.Get(webserver.ContextKeyApp).(webserver.AppContext)
}

// GetPrincipal extracts the authenticated operator claims.
func GetPrincipal(c echo.Context) *webserver.TokenClaims {
	token, ok := c.Get(webserver.ContextKeyPrincipal).(*jwt.Token)
	if !ok {
		return nil
	}
	claims, _ := token.Claims.(*webserver.TokenClaims)
	return claims
}

// checkBranchAccess verifies the principal may transact against the branch:
// super operators always may, owners for branches of restaurants they own,
// everyone else needs a staff assignment.
func checkBranchAccess(c echo.Context, branchID int64) error {
	claims := GetPrincipal(c)
	if claims == nil {
		return pos.ErrAccessDenied
	}
	switch claims.Level {
	case LevelSuper:
		return nil
	case LevelOwner:
		var n int64
		GetDB(c).Model(&domain.Branch{}).
			Joins("JOIN res_restaurant ON res_restaurant.id = res_branch.restaurant_id").
			Where("res_branch.id = ? AND res_restaurant.owner_id = ?", branchID, claims.OprId).
			Count(&n)
		if n > 0 {
			return nil
		}
		return pos.ErrAccessDenied
	default:
		var n int64
		GetDB(c).Model(&domain.BranchStaff{}).
			Where("branch_id = ? AND opr_id = ?", branchID, claims.OprId).
			Count(&n)
		if n > 0 {
			return nil
		}
		return pos.ErrAccessDenied
	}
}

// checkRestaurantAccess is the restaurant scoped variant: owners for their
// own restaurants, staff through any branch assignment under it.
func checkRestaurantAccess(c echo.Context, restaurantID int64) error {
	claims := GetPrincipal(c)
	if claims == nil {
		return pos.ErrAccessDenied
	}
	switch claims.Level {
	case LevelSuper:
		return nil
	case LevelOwner:
		var n int64
		GetDB(c).Model(&domain.Restaurant{}).
			Where("id = ? AND owner_id = ?", restaurantID, claims.OprId).
			Count(&n)
		if n > 0 {
			return nil
		}
		return pos.ErrAccessDenied
	default:
		var n int64
		GetDB(c).Model(&domain.BranchStaff{}).
			Joins("JOIN res_branch ON res_branch.id = res_branch_staff.branch_id").
			Where("res_branch.restaurant_id = ? AND res_branch_staff.opr_id = ?", restaurantID, claims.OprId).
			Count(&n)
		if n > 0 {
			return nil
		}
		return pos.ErrAccessDenied
	}
}

func ok(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code": 0,
		"data": data,
	})
}

func created(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"code": 0,
		"data": data,
	})
}

func fail(c echo.Context, status int, code, message string, detail interface{}) error {
	return c.JSON(status, map[string]interface{}{
		"code":    code,
		"message": message,
		"detail":  detail,
	})
}

func paged(c echo.Context, rows interface{}, total int64, page, pageSize int) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"code":      0,
		"data":      rows,
		"total":     total,
		"page":      page,
		"page_size": pageSize,
	})
}

// parsePagination reads page/pageSize query params with sane bounds.
func parsePagination(c echo.Context) (page, pageSize int) {
	page = 1
	pageSize = 20
	if p, err := strconv.Atoi(c.QueryParam("page")); err == nil && p > 0 {
		page = p
	}
	if ps, err := strconv.Atoi(c.QueryParam("pageSize")); err == nil && ps > 0 && ps <= 500 {
		pageSize = ps
	}
	return page, pageSize
}

func paramInt64(c echo.Context, name string) (int64, error) {
	return strconv.ParseInt(c.Param(name), 10, 64)
}

func queryInt64(c echo.Context, name string) int64 {
	v, _ := strconv.ParseInt(c.QueryParam(name), 10, 64)
	return v
}
