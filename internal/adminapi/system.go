package adminapi

import (
	"net/http"
	"runtime"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/internal/webserver"
	"github.com/restokit/restos/pkg/common"
	"github.com/restokit/restos/pkg/metrics"
)

type settingPayload struct {
	Type  string `json:"type" validate:"required"`
	Name  string `json:"name" validate:"required"`
	Value string `json:"value"`
}

func registerSystemRoutes() {
	webserver.ApiGET("/system/status", systemStatus)
	webserver.ApiGET("/system/settings", listSettings)
	webserver.ApiPUT("/system/settings", updateSetting)
	webserver.ApiGET("/system/metrics/:name", queryMetric)
	webserver.ApiGET("/system/operators", listOperators)
}

// systemStatus reports host and runtime health for the ops page.
func systemStatus(c echo.Context) error {
	if GetPrincipal(c).Level != LevelSuper {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "Super operator only", nil)
	}

	hostInfo, _ := host.Info()
	memInfo, _ := mem.VirtualMemory()
	loadInfo, _ := load.Avg()
	cpuPercents, _ := cpu.Percent(0, false)

	var cpuPercent float64
	if len(cpuPercents) > 0 {
		cpuPercent = cpuPercents[0]
	}

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	return ok(c, map[string]interface{}{
		"hostname":    hostInfo.Hostname,
		"os":          hostInfo.OS,
		"platform":    hostInfo.Platform,
		"uptime_sec":  hostInfo.Uptime,
		"cpu_percent": cpuPercent,
		"load1":       loadInfo.Load1,
		"mem_total":   memInfo.Total,
		"mem_used":    memInfo.Used,
		"mem_percent": memInfo.UsedPercent,
		"go_version":  runtime.Version(),
		"goroutines":  runtime.NumGoroutine(),
		"heap_alloc":  memStats.HeapAlloc,
		"server_time": time.Now().Format(time.RFC3339),
	})
}

func listSettings(c echo.Context) error {
	if GetPrincipal(c).Level != LevelSuper {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "Super operator only", nil)
	}
	var settings []domain.SysConfig
	if err := GetDB(c).Order("type, sort").Find(&settings).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list settings", err.Error())
	}
	return ok(c, settings)
}

func updateSetting(c echo.Context) error {
	if GetPrincipal(c).Level != LevelSuper {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "Super operator only", nil)
	}
	var payload settingPayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse setting", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return err
	}

	var setting domain.SysConfig
	err := GetDB(c).Where("type = ? AND name = ?", payload.Type, payload.Name).First(&setting).Error
	if err != nil {
		setting = domain.SysConfig{
			ID:    common.UUIDint64(),
			Type:  payload.Type,
			Name:  payload.Name,
			Value: payload.Value,
		}
		if err := GetDB(c).Create(&setting).Error; err != nil {
			return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to create setting", err.Error())
		}
		return created(c, setting)
	}
	if err := GetDB(c).Model(&setting).Update("value", payload.Value).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to update setting", err.Error())
	}
	setting.Value = payload.Value
	return ok(c, setting)
}

// queryMetric reads raw data points from the embedded time-series store.
func queryMetric(c echo.Context) error {
	if GetPrincipal(c).Level != LevelSuper {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "Super operator only", nil)
	}
	name := c.Param("name")
	end := time.Now().Unix()
	start := end - 86400
	if s := queryInt64(c, "start"); s > 0 {
		start = s
	}
	if e := queryInt64(c, "end"); e > 0 {
		end = e
	}
	points, err := metrics.Select(name, start, end)
	if err != nil {
		return fail(c, http.StatusInternalServerError, "METRICS_ERROR", "Failed to query metric", err.Error())
	}
	return ok(c, points)
}

func listOperators(c echo.Context) error {
	claims := GetPrincipal(c)
	if claims.Level != LevelSuper && claims.Level != LevelOwner {
		return fail(c, http.StatusForbidden, "ACCESS_DENIED", "Owner or super only", nil)
	}

	page, pageSize := parsePagination(c)
	query := GetDB(c).Model(&domain.SysOpr{})
	if keyword := c.QueryParam("keyword"); keyword != "" {
		query = query.Where("email LIKE ? OR realname LIKE ?", "%"+keyword+"%", "%"+keyword+"%")
	}
	if level := c.QueryParam("level"); level != "" {
		query = query.Where("level = ?", level)
	}

	var total int64
	query.Count(&total)

	var oprs []domain.SysOpr
	if err := query.Order("created_at DESC").
		Offset((page - 1) * pageSize).Limit(pageSize).
		Find(&oprs).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to list operators", err.Error())
	}
	return paged(c, oprs, total, page, pageSize)
}
