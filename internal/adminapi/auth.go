package adminapi

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/internal/webserver"
	"github.com/restokit/restos/pkg/common"
)

const tokenTTL = 24 * time.Hour

type loginPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type registerPayload struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	Realname string `json:"realname"`
	Level    string `json:"level"`
}

func registerAuthRoutes() {
	webserver.PubPOST("/login", login)
	webserver.PubPOST("/register", register)
}

func login(c echo.Context) error {
	var payload loginPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse credentials", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	var opr domain.SysOpr
	if err := GetDB(c).Where("email = ?", strings.ToLower(payload.Email)).First(&opr).Error; err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}
	if opr.Status != common.ENABLED {
		return fail(c, http.StatusForbidden, "ACCOUNT_DISABLED", "Account is disabled", nil)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(opr.Password), []byte(payload.Password)); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_CREDENTIALS", "Invalid email or password", nil)
	}

	secret := GetApp(c).Config().Web.Secret
	token, err := webserver.IssueToken(secret, opr.ID, opr.Username, opr.Level, tokenTTL)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", err.Error())
	}

	GetDB(c).Model(&domain.SysOpr{}).Where("id = ?", opr.ID).Update("last_login", time.Now())
	zap.L().Info("operator login", zap.String("email", opr.Email), zap.String("level", opr.Level))

	return ok(c, map[string]interface{}{
		"token": token,
		"operator": map[string]interface{}{
			"id":       opr.ID,
			"email":    opr.Email,
			"realname": opr.Realname,
			"level":    opr.Level,
		},
	})
}

func register(c echo.Context) error {
	var payload registerPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse registration", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	level := payload.Level
	if level == "" || level == LevelSuper {
		level = LevelCashier
	}

	email := strings.ToLower(payload.Email)
	var count int64
	GetDB(c).Model(&domain.SysOpr{}).Where("email = ?", email).Count(&count)
	if count > 0 {
		return fail(c, http.StatusBadRequest, "DUPLICATE_EMAIL", "Operator already exists", nil)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(payload.Password), bcrypt.DefaultCost)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "HASH_ERROR", "Failed to hash password", nil)
	}

	opr := domain.SysOpr{
		ID:       common.UUIDint64(),
		Email:    email,
		Username: email,
		Realname: payload.Realname,
		Password: string(hash),
		Level:    level,
		Status:   common.ENABLED,
	}
	if err := GetDB(c).Create(&opr).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create operator", err.Error())
	}

	secret := GetApp(c).Config().Web.Secret
	token, err := webserver.IssueToken(secret, opr.ID, opr.Username, opr.Level, tokenTTL)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "TOKEN_ERROR", "Failed to issue token", err.Error())
	}
	return created(c, map[string]interface{}{
		"token": token,
		"operator": map[string]interface{}{
			"id":    opr.ID,
			"email": opr.Email,
			"level": opr.Level,
		},
	})
}
