package metrics

import (
	"path"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
)

// Metric names recorded by the POS engine.
const (
	MetricPosSaleTotal      = "pos_sale_total"
	MetricPosSaleCount      = "pos_sale_count"
	MetricPosDeductionCount = "pos_deduction_count"
	MetricPosSyncSynced     = "pos_sync_synced"
	MetricPosSyncFailed     = "pos_sync_failed"
)

var (
	storage tstorage.Storage
	mu      sync.RWMutex
)

// InitMetrics opens the embedded time-series store under workdir.
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(path.Join(workdir, "metrics")),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(24*time.Hour),
	)
	if err != nil {
		return err
	}
	storage = s
	return nil
}

// RecordValue appends one data point for the metric.
func RecordValue(metric string, value float64) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{{
		Metric:    metric,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
	}})
}

// RecordCount appends a counter increment of n.
func RecordCount(metric string, n int) {
	RecordValue(metric, float64(n))
}

// Select returns data points for the metric in [start, end].
func Select(metric string, start, end int64) ([]*tstorage.DataPoint, error) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return nil, nil
	}
	return storage.Select(metric, nil, start, end)
}

// Close flushes and closes the store.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}
