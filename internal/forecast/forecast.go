package forecast

import (
	"time"

	"github.com/go-gota/gota/dataframe"
	"github.com/go-gota/gota/series"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/pkg/common"
)

// window is the number of trailing daily rollups fed into one prediction.
const window = 7

// minHistory is the fewest rollup rows worth predicting from.
const minHistory = 3

// Forecaster produces next-day revenue predictions per branch from the
// daily rollup table. Moving average with a linear growth term; the point
// is a dashboard hint, not a planning system.
type Forecaster struct {
	db *gorm.DB
}

func NewForecaster(db *gorm.DB) *Forecaster {
	return &Forecaster{db: db}
}

// RefreshBranch recomputes tomorrow's forecast row for one branch.
// Branches with too little history are skipped without error.
func (f *Forecaster) RefreshBranch(branchID int64) error {
	var rollups []domain.BranchDailySales
	if err := f.db.Where("branch_id = ?", branchID).
		Order("date DESC").Limit(window * 2).
		Find(&rollups).Error; err != nil {
		return errors.Wrap(err, "failed to load daily rollups")
	}
	if len(rollups) < minHistory {
		return nil
	}

	// Oldest first for the trend calculation.
	dates := make([]string, len(rollups))
	revenues := make([]float64, len(rollups))
	for i := range rollups {
		j := len(rollups) - 1 - i
		dates[i] = rollups[j].Date
		revenues[i] = rollups[j].Revenue.InexactFloat64()
	}

	frame := dataframe.New(
		series.New(dates, series.String, "date"),
		series.New(revenues, series.Float, "revenue"),
	)

	recent := frame
	if frame.Nrow() > window {
		recent = frame.Subset(rangeInts(frame.Nrow()-window, frame.Nrow()))
	}
	recentRevenue := recent.Col("revenue").Float()

	predicted, err := stats.Mean(recentRevenue)
	if err != nil {
		return errors.Wrap(err, "failed to compute moving average")
	}

	// Growth compares the recent window mean against the full history mean.
	baseline, err := stats.Mean(frame.Col("revenue").Float())
	if err != nil {
		return errors.Wrap(err, "failed to compute baseline")
	}
	growth := 0.0
	if baseline > 0 {
		growth = (predicted - baseline) / baseline * 100
	}

	// Confidence scales with history depth and shrinks with volatility.
	confidence := 30 + len(recentRevenue)*5
	if sd, err := stats.StandardDeviation(recentRevenue); err == nil && predicted > 0 {
		volatility := sd / predicted
		confidence -= int(volatility * 50)
	}
	if confidence < 10 {
		confidence = 10
	}
	if confidence > 90 {
		confidence = 90
	}

	forecastDate := time.Now().AddDate(0, 0, 1).Format("2006-01-02")
	row := domain.BranchForecast{
		BranchId:         branchID,
		ForecastDate:     forecastDate,
		PredictedRevenue: decimal.NewFromFloat(predicted).Round(2),
		PredictedGrowth:  decimal.NewFromFloat(growth).Round(2),
		ConfidenceScore:  confidence,
	}

	var existing domain.BranchForecast
	err = f.db.Where("branch_id = ? AND forecast_date = ?", branchID, forecastDate).
		First(&existing).Error
	if err == nil {
		return f.db.Model(&domain.BranchForecast{}).Where("id = ?", existing.ID).
			Updates(map[string]interface{}{
				"predicted_revenue": row.PredictedRevenue,
				"predicted_growth":  row.PredictedGrowth,
				"confidence_score":  row.ConfidenceScore,
			}).Error
	}
	row.ID = common.UUIDint64()
	if err := f.db.Create(&row).Error; err != nil {
		return errors.Wrap(err, "failed to write forecast")
	}

	zap.L().Debug("branch forecast refreshed",
		zap.Int64("branch_id", branchID),
		zap.String("date", forecastDate),
		zap.Float64("predicted", predicted))
	return nil
}

// RefreshAll recomputes forecasts for every branch that has rollup history.
func (f *Forecaster) RefreshAll() error {
	var branchIDs []int64
	if err := f.db.Model(&domain.BranchDailySales{}).
		Distinct("branch_id").Pluck("branch_id", &branchIDs).Error; err != nil {
		return errors.Wrap(err, "failed to list branches with history")
	}
	for _, branchID := range branchIDs {
		if err := f.RefreshBranch(branchID); err != nil {
			zap.L().Error("forecast refresh failed",
				zap.Int64("branch_id", branchID), zap.Error(err))
		}
	}
	return nil
}

func rangeInts(start, end int) []int {
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	return out
}
