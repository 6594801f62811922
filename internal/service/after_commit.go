package service

import (
	"context"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/infra"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/worker"

	"github.com/rs/zerolog/log"
)

const dashboardStatsKey = "dashboard:stats"

// AlertQueue takes low-stock alerts for asynchronous delivery.
// *worker.Dispatcher implements it.
type AlertQueue interface {
	EnqueueLowStock(ctx context.Context, alert worker.StockAlert) error
}

// afterCommit runs the best-effort work that follows a committed write.
// Nothing here can fail the operation that triggered it.
type afterCommit struct {
	alerts AlertQueue
	cache  *infra.Cache
}

func (a afterCommit) invalidateDashboard(ctx context.Context) {
	a.cache.Delete(ctx, dashboardStatsKey)
}

// stockDebited invalidates the dashboard and raises a low_stock job for each
// medicine now at or below its minimum. Only debits can cross the threshold,
// so credits call invalidateDashboard instead.
func (a afterCommit) stockDebited(ctx context.Context, meds []*model.Medicine, source string, ref uint) {
	a.invalidateDashboard(ctx)
	if a.alerts == nil {
		return
	}
	now := time.Now().UTC().Format(time.RFC3339)
	for _, m := range meds {
		if !m.IsLowStock() {
			continue
		}
		alert := worker.StockAlert{
			MedicineID:   m.ID,
			MedicineName: m.Name,
			Unit:         m.Unit,
			CurrentStock: m.CurrentStock,
			MinStock:     m.MinStock,
			Source:       source,
			ReferenceID:  ref,
			RaisedAt:     now,
		}
		if err := a.alerts.EnqueueLowStock(ctx, alert); err != nil {
			log.Warn().Err(err).Uint("medicine_id", m.ID).Msg("low stock alert not enqueued")
		}
	}
}
