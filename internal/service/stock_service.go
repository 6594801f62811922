package service

import (
	"context"
	"fmt"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/infra"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/repository"

	"github.com/rs/zerolog/log"
)

// StockService exposes the stock ledger: manual movements, ledger reads and
// the ledger/counter consistency check.
type StockService interface {
	RecordMovement(ctx context.Context, req dto.RecordMovementRequest) (*dto.StockTransactionResponse, error)
	// ListMovements returns ledger entries newest first. A zero Limit returns
	// every matching entry.
	ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockTransactionListResponse, error)
	ListMovementsForMedicine(ctx context.Context, medicineID uint) ([]dto.StockTransactionResponse, error)
	// ListMovementsInRange returns entries with from <= transaction_date <= to.
	ListMovementsInRange(ctx context.Context, from, to time.Time) ([]dto.StockTransactionResponse, error)
	// VerifyLedger returns *InvariantViolationError when current_stock differs
	// from the signed ledger sum.
	VerifyLedger(ctx context.Context, medicineID uint) error
	VerifyAllLedgers(ctx context.Context) (*dto.LedgerReport, error)
}

type stockService struct {
	tx     repository.TxManager
	repos  repository.Repositories
	ledger *stockLedger
	after  afterCommit
	loc    *time.Location
}

func NewStockService(
	tx repository.TxManager,
	repos repository.Repositories,
	alerts AlertQueue,
	cache *infra.Cache,
	loc *time.Location,
) StockService {
	if loc == nil {
		loc = time.UTC
	}
	return &stockService{
		tx:     tx,
		repos:  repos,
		ledger: newStockLedger(),
		after:  afterCommit{alerts: alerts, cache: cache},
		loc:    loc,
	}
}

func (s *stockService) RecordMovement(ctx context.Context, req dto.RecordMovementRequest) (*dto.StockTransactionResponse, error) {
	dir := model.StockDirection(req.Type)
	if !dir.Valid() {
		return nil, fmt.Errorf("%w: type must be IN or OUT", ErrInvalidInput)
	}
	if req.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}

	var (
		entry *model.StockTransaction
		med   *model.Medicine
	)
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		m, err := repos.Medicines().FindByIDForUpdate(ctx, req.MedicineID)
		if err != nil {
			return medicineLookupErr(err, req.MedicineID)
		}
		entry, err = s.ledger.record(ctx, repos, m, dir, req.Quantity, req.Notes)
		med = m
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("medicine_id", med.ID).
		Str("type", string(dir)).
		Int("quantity", req.Quantity).
		Int("current_stock", med.CurrentStock).
		Msg("stock movement recorded")

	if dir == model.StockOut {
		s.after.stockDebited(ctx, []*model.Medicine{med}, "movement", entry.ID)
	} else {
		s.after.invalidateDashboard(ctx)
	}

	resp := stockTxToResponse(entry)
	return &resp, nil
}

func (s *stockService) ListMovements(ctx context.Context, filter dto.StockMovementFilter) (*dto.StockTransactionListResponse, error) {
	from, err := parseBound(filter.From, s.loc, false)
	if err != nil {
		return nil, err
	}
	to, err := parseBound(filter.To, s.loc, true)
	if err != nil {
		return nil, err
	}
	if filter.Type != "" && !model.StockDirection(filter.Type).Valid() {
		return nil, fmt.Errorf("%w: type must be IN or OUT", ErrInvalidInput)
	}

	txs, total, err := s.repos.StockTransactions().List(ctx, repository.StockTransactionFilter{
		MedicineID: filter.MedicineID,
		Type:       model.StockDirection(filter.Type),
		From:       from,
		To:         to,
		Page:       filter.Page,
		Limit:      filter.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return &dto.StockTransactionListResponse{
		Data:  stockTxsToResponse(txs),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *stockService) ListMovementsForMedicine(ctx context.Context, medicineID uint) ([]dto.StockTransactionResponse, error) {
	if _, err := s.repos.Medicines().FindByID(ctx, medicineID); err != nil {
		return nil, medicineLookupErr(err, medicineID)
	}
	txs, _, err := s.repos.StockTransactions().List(ctx, repository.StockTransactionFilter{MedicineID: &medicineID})
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return stockTxsToResponse(txs), nil
}

func (s *stockService) ListMovementsInRange(ctx context.Context, from, to time.Time) ([]dto.StockTransactionResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes range start", ErrInvalidInput)
	}
	f, t := from.UTC(), to.UTC()
	txs, _, err := s.repos.StockTransactions().List(ctx, repository.StockTransactionFilter{From: &f, To: &t})
	if err != nil {
		return nil, fmt.Errorf("list stock movements: %w", err)
	}
	return stockTxsToResponse(txs), nil
}

func (s *stockService) VerifyLedger(ctx context.Context, medicineID uint) error {
	m, err := s.repos.Medicines().FindByID(ctx, medicineID)
	if err != nil {
		return medicineLookupErr(err, medicineID)
	}
	sum, err := s.repos.StockTransactions().SignedSum(ctx, medicineID)
	if err != nil {
		return fmt.Errorf("ledger sum: %w", err)
	}
	if int64(m.CurrentStock) != sum {
		return &InvariantViolationError{MedicineID: m.ID, Stored: int64(m.CurrentStock), LedgerSum: sum}
	}
	return nil
}

func (s *stockService) VerifyAllLedgers(ctx context.Context) (*dto.LedgerReport, error) {
	meds, err := s.repos.Medicines().ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	sums, err := s.repos.StockTransactions().SignedSums(ctx)
	if err != nil {
		return nil, fmt.Errorf("ledger sums: %w", err)
	}

	report := &dto.LedgerReport{Consistent: true, Checked: len(meds), Mismatches: []dto.LedgerCheck{}}
	for _, m := range meds {
		sum := sums[m.ID]
		if int64(m.CurrentStock) == sum {
			continue
		}
		report.Consistent = false
		report.Mismatches = append(report.Mismatches, dto.LedgerCheck{
			MedicineID:   m.ID,
			MedicineName: m.Name,
			CurrentStock: int64(m.CurrentStock),
			LedgerSum:    sum,
		})
	}
	if !report.Consistent {
		log.Error().Int("mismatches", len(report.Mismatches)).Msg("stock ledger verification failed")
	}
	return report, nil
}
