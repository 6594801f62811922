package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/repository"
)

// stockLedger is the single path through which current_stock changes. It
// knows nothing about sales; callers hand it a medicine row they have already
// locked in the surrounding transaction.
type stockLedger struct {
	now func() time.Time
}

func newStockLedger() *stockLedger {
	return &stockLedger{now: func() time.Time { return time.Now().UTC() }}
}

// record appends one movement for m and moves its counter by the signed
// quantity. m must have been read FOR UPDATE through repos; its CurrentStock
// and UpdatedAt are refreshed in place so a caller can record several
// movements against the same row.
func (l *stockLedger) record(
	ctx context.Context,
	repos repository.Repositories,
	m *model.Medicine,
	dir model.StockDirection,
	qty int,
	note *string,
) (*model.StockTransaction, error) {
	if qty <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: unknown direction %q", ErrInvalidInput, dir)
	}

	delta := qty
	if dir == model.StockOut {
		if m.CurrentStock < qty {
			return nil, &InsufficientStockError{
				MedicineID:   m.ID,
				MedicineName: m.Name,
				Available:    m.CurrentStock,
				Requested:    qty,
			}
		}
		delta = -qty
	}

	at := l.now()
	if err := repos.Medicines().AdjustStock(ctx, m.ID, delta, at); err != nil {
		if errors.Is(err, repository.ErrStockUnderflow) {
			// m was stale; report the balance the guard actually saw.
			available := m.CurrentStock
			if fresh, ferr := repos.Medicines().FindByID(ctx, m.ID); ferr == nil {
				available = fresh.CurrentStock
				m.CurrentStock = fresh.CurrentStock
			}
			return nil, &InsufficientStockError{
				MedicineID:   m.ID,
				MedicineName: m.Name,
				Available:    available,
				Requested:    qty,
			}
		}
		return nil, fmt.Errorf("adjust stock of medicine %d: %w", m.ID, err)
	}

	entry := &model.StockTransaction{
		MedicineID:      m.ID,
		Type:            dir,
		Quantity:        qty,
		Notes:           note,
		TransactionDate: at,
	}
	if err := repos.StockTransactions().Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("append ledger entry for medicine %d: %w", m.ID, err)
	}

	m.CurrentStock += delta
	m.UpdatedAt = at
	entry.Medicine = m
	return entry, nil
}

// lockMedicines locks every distinct id in ascending order and returns the
// rows indexed by id. Ids that do not exist are simply absent from the map.
func lockMedicines(ctx context.Context, repos repository.Repositories, ids []uint) (map[uint]*model.Medicine, error) {
	meds, err := repos.Medicines().FindByIDsForUpdate(ctx, distinctSorted(ids))
	if err != nil {
		return nil, fmt.Errorf("lock medicines: %w", err)
	}
	byID := make(map[uint]*model.Medicine, len(meds))
	for i := range meds {
		byID[meds[i].ID] = &meds[i]
	}
	return byID, nil
}
