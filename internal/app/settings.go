package app

import (
	"sync"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/pkg/common"
)

// settingsCacheTTL how long cached sys_config values stay fresh.
const settingsCacheTTL = 30 * time.Second

// ConfigManager caches the sys_config table and converts values on access.
// Writes go straight to the database and invalidate the cache.
type ConfigManager struct {
	app      *Application
	mu       sync.RWMutex
	values   map[string]map[string]string
	loadedAt time.Time
}

func NewConfigManager(app *Application) *ConfigManager {
	return &ConfigManager{app: app}
}

func (m *ConfigManager) load() map[string]map[string]string {
	m.mu.RLock()
	if m.values != nil && time.Since(m.loadedAt) < settingsCacheTTL {
		defer m.mu.RUnlock()
		return m.values
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.values != nil && time.Since(m.loadedAt) < settingsCacheTTL {
		return m.values
	}

	var rows []domain.SysConfig
	if err := m.app.gormDB.Find(&rows).Error; err != nil {
		zap.L().Error("failed to load settings", zap.Error(err))
		if m.values != nil {
			return m.values
		}
		return map[string]map[string]string{}
	}

	values := make(map[string]map[string]string)
	for _, row := range rows {
		if values[row.Type] == nil {
			values[row.Type] = make(map[string]string)
		}
		values[row.Type][row.Name] = row.Value
	}
	m.values = values
	m.loadedAt = time.Now()
	return m.values
}

func (m *ConfigManager) invalidate() {
	m.mu.Lock()
	m.values = nil
	m.mu.Unlock()
}

func (m *ConfigManager) GetString(category, key string) string {
	return m.load()[category][key]
}

func (m *ConfigManager) GetInt(category, key string) int {
	return cast.ToInt(m.load()[category][key])
}

func (m *ConfigManager) GetInt64(category, key string) int64 {
	return cast.ToInt64(m.load()[category][key])
}

func (m *ConfigManager) GetBool(category, key string) bool {
	return cast.ToBool(m.load()[category][key])
}

func (m *ConfigManager) GetFloat64(category, key string) float64 {
	return cast.ToFloat64(m.load()[category][key])
}

// Decode maps one settings category onto a typed struct. Field names match
// setting names; use mapstructure tags to override.
func (m *ConfigManager) Decode(category string, out interface{}) error {
	source := map[string]interface{}{}
	for name, value := range m.load()[category] {
		source[name] = value
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(source)
}

// Set writes one setting, creating it when missing.
func (m *ConfigManager) Set(category, key, value string) error {
	defer m.invalidate()
	var row domain.SysConfig
	err := m.app.gormDB.Where("type = ? AND name = ?", category, key).First(&row).Error
	if err != nil {
		return m.app.gormDB.Create(&domain.SysConfig{
			ID:    common.UUIDint64(),
			Type:  category,
			Name:  key,
			Value: value,
		}).Error
	}
	return m.app.gormDB.Model(&domain.SysConfig{}).
		Where("id = ?", row.ID).Update("value", value).Error
}
