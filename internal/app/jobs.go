package app

import (
	"os"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/internal/notify"
	"github.com/restokit/restos/internal/pos"
	"github.com/restokit/restos/pkg/common"
	"github.com/restokit/restos/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// rollupWorkers caps concurrent per-branch rollup computations.
const rollupWorkers = 8

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	// Nightly: roll up yesterday's sales, refresh forecasts, scan stock.
	_, err = a.sched.AddFunc("@daily", func() {
		yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")
		if err := a.RunDailyRollupNow(yesterday); err != nil {
			zap.L().Error("daily rollup failed", zap.Error(err))
		}
		if a.GetSettingsBoolValue("report", "ForecastEnabled") {
			if err := a.forecaster.RefreshAll(); err != nil {
				zap.L().Error("forecast refresh failed", zap.Error(err))
			}
		}
		if err := a.RunLowStockScanNow(); err != nil {
			zap.L().Error("low stock scan failed", zap.Error(err))
		}
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	// Sync logs keep a year of history.
	_, err = a.sched.AddFunc("@daily", func() {
		a.gormDB.
			Where("created_at < ? ", time.Now().
				Add(-time.Hour*24*365)).Delete(domain.SyncLog{})
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// initSubscribers wires event bus topics to the metrics store. Subscribers
// run async so a slow metrics write never delays a sale response.
func (a *Application) initSubscribers() {
	err := a.bus.SubscribeAsync(pos.TopicSaleCreated, func(event *pos.SaleCreatedEvent) {
		metrics.RecordCount(metrics.MetricPosSaleCount, 1)
		if total, err := decimal.NewFromString(event.Total); err == nil {
			metrics.RecordValue(metrics.MetricPosSaleTotal, total.InexactFloat64())
		}
	}, false)
	if err != nil {
		zap.S().Errorf("subscribe error %s", err.Error())
	}

	err = a.bus.SubscribeAsync(pos.TopicStockDeducted, func(deductions []pos.AppliedDeduction) {
		metrics.RecordCount(metrics.MetricPosDeductionCount, len(deductions))
	}, false)
	if err != nil {
		zap.S().Errorf("subscribe error %s", err.Error())
	}

	err = a.bus.SubscribeAsync(pos.TopicBulkSynced, func(result *pos.SyncResult) {
		metrics.RecordCount(metrics.MetricPosSyncSynced, result.Synced)
		metrics.RecordCount(metrics.MetricPosSyncFailed, result.Failed)
	}, false)
	if err != nil {
		zap.S().Errorf("subscribe error %s", err.Error())
	}
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.RecordValue("system_cpuuse", _cpuuse[0])
	}

	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.RecordValue("system_memuse", float64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.RecordValue("restos_cpuuse", cpuuse)
	}

	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.RecordValue("restos_memuse", float64(meminfo.RSS/1024/1024))
	}
}

// RunDailyRollupNow computes one BranchDailySales row per branch for the
// given date (YYYY-MM-DD), fanning branches out over a worker pool.
func (a *Application) RunDailyRollupNow(date string) error {
	dayStart, err := time.ParseInLocation("2006-01-02", date, time.Local)
	if err != nil {
		return err
	}
	dayEnd := dayStart.AddDate(0, 0, 1)

	var branchIDs []int64
	if err := a.gormDB.Model(&domain.Branch{}).Pluck("id", &branchIDs).Error; err != nil {
		return err
	}

	pool, err := ants.NewPool(rollupWorkers)
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for _, branchID := range branchIDs {
		branchID := branchID
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			if err := a.rollupBranchDay(branchID, date, dayStart, dayEnd); err != nil {
				zap.L().Error("branch rollup failed",
					zap.Int64("branch_id", branchID),
					zap.String("date", date),
					zap.Error(err))
			}
		})
		if submitErr != nil {
			wg.Done()
			zap.L().Error("rollup submit failed", zap.Error(submitErr))
		}
	}
	wg.Wait()

	zap.L().Info("daily rollup finished",
		zap.String("date", date),
		zap.Int("branches", len(branchIDs)))
	return nil
}

func (a *Application) rollupBranchDay(branchID int64, date string, dayStart, dayEnd time.Time) error {
	var sales []domain.Sale
	if err := a.gormDB.
		Where("branch_id = ? AND created_at >= ? AND created_at < ?", branchID, dayStart, dayEnd).
		Find(&sales).Error; err != nil {
		return err
	}

	revenue := decimal.Zero
	tax := decimal.Zero
	discount := decimal.Zero
	for _, sale := range sales {
		revenue = revenue.Add(sale.Total)
		tax = tax.Add(sale.TaxAmount)
		discount = discount.Add(sale.DiscountAmount)
	}
	avgTicket := decimal.Zero
	if len(sales) > 0 {
		avgTicket = revenue.Div(decimal.NewFromInt(int64(len(sales)))).Round(2)
	}

	var existing domain.BranchDailySales
	err := a.gormDB.Where("branch_id = ? AND date = ?", branchID, date).First(&existing).Error
	if err == nil {
		return a.gormDB.Model(&domain.BranchDailySales{}).Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"revenue":         revenue,
				"transactions":    len(sales),
				"avg_ticket_size": avgTicket,
				"tax_collected":   tax,
				"discount_given":  discount,
			}).Error
	}
	return a.gormDB.Create(&domain.BranchDailySales{
		ID:            common.UUIDint64(),
		BranchId:      branchID,
		Date:          date,
		Revenue:       revenue,
		Transactions:  len(sales),
		AvgTicketSize: avgTicket,
		TaxCollected:  tax,
		DiscountGiven: discount,
	}).Error
}

// RunLowStockScanNow checks every restaurant for items at or below reorder
// level and sends one alert per affected restaurant.
func (a *Application) RunLowStockScanNow() error {
	var restaurants []domain.Restaurant
	if err := a.gormDB.Find(&restaurants).Error; err != nil {
		return err
	}

	for _, restaurant := range restaurants {
		var items []domain.InventoryItem
		if err := a.gormDB.
			Where("restaurant_id = ? AND quantity_in_stock <= reorder_level", restaurant.ID).
			Find(&items).Error; err != nil {
			zap.L().Error("low stock query failed",
				zap.Int64("restaurant_id", restaurant.ID), zap.Error(err))
			continue
		}
		if len(items) == 0 {
			continue
		}
		a.notifier.SendLowStockAlert(&notify.LowStockAlert{
			RestaurantId:   restaurant.ID,
			RestaurantName: restaurant.Name,
			Items:          items,
			GeneratedAt:    time.Now(),
		})
	}
	return nil
}
