package app

import (
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/pkg/common"
)

func (a *Application) checkSuper() {
	const superEmail = "admin@restos.local"
	const defaultPassword = "restos"

	hashed, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		zap.L().Error("failed to hash default password", zap.Error(err))
		return
	}

	var operator domain.SysOpr
	err = a.gormDB.Where("email = ?", superEmail).First(&operator).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := a.gormDB.Create(&domain.SysOpr{
			ID:        common.UUIDint64(),
			Realname:  "administrator",
			Mobile:    "0000",
			Email:     superEmail,
			Username:  superEmail,
			Password:  string(hashed),
			Level:     "super",
			Status:    common.ENABLED,
			Remark:    "super",
			LastLogin: time.Now(),
		}).Error; err != nil {
			zap.L().Error("failed to create default super admin", zap.Error(err))
		} else {
			zap.L().Info("initialized default super admin account", zap.String("email", superEmail))
		}
		return
	case err != nil:
		zap.L().Error("failed to query super admin", zap.Error(err))
		return
	}

	resetPassword := strings.TrimSpace(operator.Password) == ""
	resetLevel := !strings.EqualFold(operator.Level, "super")
	resetStatus := !strings.EqualFold(operator.Status, common.ENABLED)

	if !resetPassword && !resetLevel && !resetStatus {
		return
	}

	updates := map[string]interface{}{
		"updated_at": time.Now(),
	}
	if resetPassword {
		updates["password"] = string(hashed)
	}
	if resetLevel {
		updates["level"] = "super"
	}
	if resetStatus {
		updates["status"] = common.ENABLED
	}

	if err := a.gormDB.Model(&domain.SysOpr{}).Where("id = ?", operator.ID).Updates(updates).Error; err != nil {
		zap.L().Error("failed to repair super admin account", zap.Error(err))
		return
	}

	zap.L().Warn("repaired default super admin account",
		zap.String("email", superEmail),
		zap.Bool("passwordReset", resetPassword),
		zap.Bool("levelReset", resetLevel),
		zap.Bool("statusEnabled", resetStatus))
}

type settingSchema struct {
	Category    string
	Name        string
	Default     string
	Description string
}

var defaultSettings = []settingSchema{
	{"pos", "DefaultTaxRate", "17.00", "Tax rate percentage applied to new restaurants"},
	{"pos", "DefaultCurrency", "PKR", "Currency code applied to new restaurants"},
	{"pos", "ReceiptFooter", "Thank you for dining with us", "Printed at the bottom of receipts"},
	{"report", "RollupHour", "1", "Hour of day (0-23) the daily sales rollup runs"},
	{"report", "ForecastEnabled", "true", "Whether nightly forecast refresh runs"},
	{"notify", "WebhookUrl", "", "Webhook endpoint for low stock alerts"},
	{"notify", "AlertEmail", "", "Comma separated recipients for low stock mail"},
	{"notify", "SmtpHost", "", "SMTP server for alert mail"},
	{"notify", "SmtpPort", "587", "SMTP server port"},
	{"notify", "SmtpUsername", "", "SMTP auth username"},
	{"notify", "SmtpPassword", "", "SMTP auth password"},
	{"notify", "SmtpFrom", "", "From address for alert mail"},
}

// checkSettings initializes missing sys_config entries with defaults.
func (a *Application) checkSettings() {
	for sortid, schema := range defaultSettings {
		var count int64
		a.gormDB.Model(&domain.SysConfig{}).
			Where("type = ? and name = ?", schema.Category, schema.Name).
			Count(&count)

		if count == 0 {
			a.gormDB.Create(&domain.SysConfig{
				ID:     common.UUIDint64(),
				Sort:   sortid,
				Type:   schema.Category,
				Name:   schema.Name,
				Value:  schema.Default,
				Remark: schema.Description,
			})
			zap.L().Info("initialized config",
				zap.String("category", schema.Category),
				zap.String("name", schema.Name),
				zap.String("default", schema.Default))
		}
	}
}
