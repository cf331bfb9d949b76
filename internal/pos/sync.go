package pos

import (
	"context"
	"time"

	"github.com/asaskevich/EventBus"
	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/restokit/restos/internal/domain"
	"github.com/restokit/restos/pkg/common"
)

// AccessCheck answers whether the current principal may transact against
// the branch. Supplied by the HTTP layer.
type AccessCheck func(branchID int64) error

// SyncSuccess one offline sale committed (or replayed) during a batch.
type SyncSuccess struct {
	OfflineId string `json:"offline_id"`
	SaleId    int64  `json:"sale_id,string"`
	Total     string `json:"total"`
	Replayed  bool   `json:"replayed"`
}

// SyncFailure one offline sale rejected during a batch.
type SyncFailure struct {
	OfflineId string `json:"offline_id"`
	Reason    string `json:"reason"`
}

// SyncResult outcome of one bulk sync run. Partial success is the intended
// and only mode: failures never abort the rest of the batch.
type SyncResult struct {
	BatchId    string        `json:"batch_id"`
	Synced     int           `json:"synced"`
	Failed     int           `json:"failed"`
	Successful []SyncSuccess `json:"successful"`
	FailedList []SyncFailure `json:"failed_list"`
}

// BulkSyncCoordinator replays batches of offline-originated sales through
// the sale coordinator, isolating each sale's failure from the others.
type BulkSyncCoordinator struct {
	db          *gorm.DB
	coordinator *SaleCoordinator
	bus         EventBus.Bus
}

func NewBulkSyncCoordinator(db *gorm.DB, coordinator *SaleCoordinator, bus EventBus.Bus) *BulkSyncCoordinator {
	return &BulkSyncCoordinator{db: db, coordinator: coordinator, bus: bus}
}

// SyncBatch attempts every request independently, in input order. Each
// request commits (or fails) in its own transaction; a failed request is
// recorded and processing continues. A batch is scoped to the branch of its
// first request; a request for any other branch fails individually. A
// SyncLog row is written afterwards with the batch outcome.
func (b *BulkSyncCoordinator) SyncBatch(ctx context.Context, oprID int64, check AccessCheck, requests []*SaleRequest) (*SyncResult, error) {
	result := &SyncResult{
		BatchId:    common.UUID(),
		Successful: []SyncSuccess{},
		FailedList: []SyncFailure{},
	}

	var branchID int64
	for _, req := range requests {
		if branchID == 0 {
			branchID = req.BranchId
		} else if req.BranchId != branchID {
			result.Failed++
			result.FailedList = append(result.FailedList, SyncFailure{
				OfflineId: req.OfflineId,
				Reason:    "branch mismatch: all sales in a batch must target the same branch",
			})
			continue
		}
		if check != nil {
			if err := check(req.BranchId); err != nil {
				result.Failed++
				result.FailedList = append(result.FailedList, SyncFailure{OfflineId: req.OfflineId, Reason: err.Error()})
				continue
			}
		}
		saleResult, err := b.coordinator.CreateSale(ctx, req)
		if err != nil {
			result.Failed++
			result.FailedList = append(result.FailedList, SyncFailure{OfflineId: req.OfflineId, Reason: err.Error()})
			continue
		}
		result.Synced++
		result.Successful = append(result.Successful, SyncSuccess{
			OfflineId: req.OfflineId,
			SaleId:    saleResult.Sale.ID,
			Total:     saleResult.Sale.Total.String(),
			Replayed:  saleResult.Replayed,
		})
	}

	b.writeSyncLog(ctx, branchID, oprID, result)

	zap.L().Info("offline bulk sync finished",
		zap.String("batch_id", result.BatchId),
		zap.Int("synced", result.Synced),
		zap.Int("failed", result.Failed))

	if b.bus != nil {
		b.bus.Publish(TopicBulkSynced, result)
	}
	return result, nil
}

// writeSyncLog records the batch outcome. Log failures are not fatal to the
// sync itself; the sales are already committed.
func (b *BulkSyncCoordinator) writeSyncLog(ctx context.Context, branchID, oprID int64, result *SyncResult) {
	eventType := domain.SyncEventSuccess
	if result.Failed > 0 {
		eventType = domain.SyncEventFailure
	}
	details, _ := jsoniter.MarshalToString(result)
	log := domain.SyncLog{
		ID:          common.UUIDint64(),
		BranchId:    branchID,
		OprId:       oprID,
		BatchId:     result.BatchId,
		EventType:   eventType,
		SalesSynced: result.Synced,
		SalesFailed: result.Failed,
		Details:     details,
		CreatedAt:   time.Now(),
	}
	if err := b.db.WithContext(ctx).Create(&log).Error; err != nil {
		zap.L().Error("failed to write sync log", zap.Error(err))
	}
}
