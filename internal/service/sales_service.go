package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/infra"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/repository"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// CancelOutcome distinguishes why a cancellation did or did not happen.
type CancelOutcome int

const (
	CancelOK CancelOutcome = iota
	CancelNotFound
	CancelAlreadyCancelled
	// CancelFailed accompanies a storage error; nothing was changed.
	CancelFailed
)

// Cancelled reports whether the sale was flipped to CANCELLED by this call.
func (o CancelOutcome) Cancelled() bool { return o == CancelOK }

func (o CancelOutcome) String() string {
	switch o {
	case CancelOK:
		return "cancelled"
	case CancelNotFound:
		return "not_found"
	case CancelAlreadyCancelled:
		return "already_cancelled"
	case CancelFailed:
		return "failed"
	default:
		return "unknown"
	}
}

type SalesService interface {
	CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error)
	ListSales(ctx context.Context, filter dto.SalesFilter) (*dto.SaleListResponse, error)
	GetSaleByID(ctx context.Context, id uint) (*dto.SaleResponse, error)
	// ListSalesInRange returns sales with from <= transaction_date <= to,
	// newest first.
	ListSalesInRange(ctx context.Context, from, to time.Time) ([]dto.SaleResponse, error)
	// ListSalesToday uses the clinic time zone to decide what "today" is.
	ListSalesToday(ctx context.Context) ([]dto.SaleResponse, error)
	GetReceipt(ctx context.Context, id uint) (*dto.ReceiptResponse, error)
	// CancelSale never returns an error for a missing or already cancelled
	// sale; the outcome says which. Errors are storage failures only and
	// come with CancelFailed.
	CancelSale(ctx context.Context, id uint) (CancelOutcome, error)
}

type salesService struct {
	tx       repository.TxManager
	repos    repository.Repositories
	settings SettingsService
	ledger   *stockLedger
	after    afterCommit
	loc      *time.Location
}

func NewSalesService(
	tx repository.TxManager,
	repos repository.Repositories,
	settings SettingsService,
	alerts AlertQueue,
	cache *infra.Cache,
	loc *time.Location,
) SalesService {
	if loc == nil {
		loc = time.UTC
	}
	return &salesService{
		tx:       tx,
		repos:    repos,
		settings: settings,
		ledger:   newStockLedger(),
		after:    afterCommit{alerts: alerts, cache: cache},
		loc:      loc,
	}
}

// ── CreateSale ────────────────────────────────────────────────────────────────
// One transaction:
//   1. Lock every distinct medicine of the cart (ascending id)
//   2. Resolve each line in input order: unknown or inactive medicine fails
//   3. Check each line against the locked snapshot, cumulatively per medicine
//   4. Price lines from the snapshot, sum, check payment
//   5. Insert sale + items (COMPLETED), debit stock through the ledger
// Every failure rolls back the whole unit; nothing is written before step 5.

type pricedLine struct {
	med       *model.Medicine
	quantity  int
	unitPrice decimal.Decimal
	total     decimal.Decimal
}

func (s *salesService) CreateSale(ctx context.Context, req dto.CreateSaleRequest) (*dto.SaleResponse, error) {
	method := model.PaymentMethod(req.PaymentMethod)
	if !validPaymentMethod(method) {
		return nil, fmt.Errorf("%w: payment method %q", ErrInvalidInput, req.PaymentMethod)
	}
	if !req.PaymentReceived.IsPositive() {
		return nil, fmt.Errorf("%w: payment_received must be greater than 0", ErrInvalidInput)
	}
	if !req.PaymentReceived.Equal(req.PaymentReceived.Round(2)) {
		return nil, fmt.Errorf("%w: payment_received has more than 2 decimal places", ErrInvalidInput)
	}
	if len(req.Items) == 0 {
		return nil, fmt.Errorf("%w: a sale needs at least one item", ErrInvalidInput)
	}
	ids := make([]uint, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity <= 0 {
			return nil, ErrInvalidQuantity
		}
		ids = append(ids, it.MedicineID)
	}

	var (
		sale    *model.SalesTransaction
		touched []*model.Medicine
	)
	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if req.PatientID != nil {
			if _, err := repos.Patients().FindByID(ctx, *req.PatientID); err != nil {
				return notFound(err, ErrPatientNotFound)
			}
		}

		meds, err := lockMedicines(ctx, repos, ids)
		if err != nil {
			return err
		}

		lines, err := priceCart(req.Items, meds)
		if err != nil {
			return err
		}

		total := decimal.Zero
		for _, l := range lines {
			total = total.Add(l.total)
		}
		received := req.PaymentReceived
		change := received.Sub(total)
		if change.IsNegative() {
			return &InsufficientPaymentError{Total: total, Received: received}
		}

		now := s.ledger.now()
		sale = &model.SalesTransaction{
			PatientID:       req.PatientID,
			TotalAmount:     total,
			PaymentMethod:   method,
			PaymentReceived: received,
			ChangeAmount:    change,
			Status:          model.SaleCompleted,
			Notes:           req.Notes,
			TransactionDate: now,
		}
		for _, l := range lines {
			sale.Items = append(sale.Items, model.SalesTransactionItem{
				MedicineID: l.med.ID,
				Quantity:   l.quantity,
				UnitPrice:  l.unitPrice,
				TotalPrice: l.total,
			})
		}
		if err := repos.Sales().Create(ctx, sale); err != nil {
			return fmt.Errorf("insert sales transaction: %w", err)
		}

		note := fmt.Sprintf("Sales transaction #%d", sale.ID)
		for _, l := range lines {
			if _, err := s.ledger.record(ctx, repos, l.med, model.StockOut, l.quantity, &note); err != nil {
				return err
			}
		}

		for _, id := range distinctSorted(ids) {
			touched = append(touched, meds[id])
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Uint("sale_id", sale.ID).
		Str("total", sale.TotalAmount.StringFixed(2)).
		Str("payment_method", string(sale.PaymentMethod)).
		Int("items", len(sale.Items)).
		Msg("sale completed")

	s.after.stockDebited(ctx, touched, "sale", sale.ID)

	return s.GetSaleByID(ctx, sale.ID)
}

// priceCart validates and prices the cart against the locked rows. Lines are
// processed in input order, so the first offending line decides the error.
func priceCart(items []dto.SaleItemRequest, meds map[uint]*model.Medicine) ([]pricedLine, error) {
	for _, it := range items {
		m, ok := meds[it.MedicineID]
		if !ok {
			return nil, &MedicineNotFoundError{MedicineID: it.MedicineID}
		}
		if !m.Active {
			return nil, fmt.Errorf("%s: %w", m.Name, ErrMedicineInactive)
		}
	}

	requested := make(map[uint]int, len(meds))
	lines := make([]pricedLine, 0, len(items))
	for _, it := range items {
		m := meds[it.MedicineID]
		requested[m.ID] += it.Quantity
		if m.CurrentStock < requested[m.ID] {
			return nil, &InsufficientStockError{
				MedicineID:   m.ID,
				MedicineName: m.Name,
				Available:    m.CurrentStock,
				Requested:    requested[m.ID],
			}
		}
		unit := m.Price.Round(2)
		lines = append(lines, pricedLine{
			med:       m,
			quantity:  it.Quantity,
			unitPrice: unit,
			total:     unit.Mul(decimal.NewFromInt(int64(it.Quantity))).Round(2),
		})
	}
	return lines, nil
}

func validPaymentMethod(m model.PaymentMethod) bool {
	for _, pm := range model.PaymentMethods {
		if pm == m {
			return true
		}
	}
	return false
}

// ── CancelSale ────────────────────────────────────────────────────────────────
// The sale row is locked first so two concurrent cancels serialize; the loser
// sees CANCELLED and reports CancelAlreadyCancelled. Only quantities that were
// actually debited (COMPLETED sales) are credited back.

func (s *salesService) CancelSale(ctx context.Context, id uint) (CancelOutcome, error) {
	outcome := CancelOK
	credited := 0

	err := s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		sale, err := repos.Sales().FindByIDForUpdate(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				outcome = CancelNotFound
				return nil
			}
			return fmt.Errorf("lock sales transaction %d: %w", id, err)
		}
		if sale.Status == model.SaleCancelled {
			outcome = CancelAlreadyCancelled
			return nil
		}

		wasCompleted := sale.Status == model.SaleCompleted
		if err := repos.Sales().UpdateStatus(ctx, id, model.SaleCancelled); err != nil {
			return fmt.Errorf("cancel sales transaction %d: %w", id, err)
		}
		if !wasCompleted {
			return nil
		}

		ids := make([]uint, 0, len(sale.Items))
		for _, it := range sale.Items {
			ids = append(ids, it.MedicineID)
		}
		meds, err := lockMedicines(ctx, repos, ids)
		if err != nil {
			return err
		}

		note := fmt.Sprintf("Cancellation of sales transaction #%d", id)
		for _, it := range sale.Items {
			m, ok := meds[it.MedicineID]
			if !ok {
				return &MedicineNotFoundError{MedicineID: it.MedicineID}
			}
			if _, err := s.ledger.record(ctx, repos, m, model.StockIn, it.Quantity, &note); err != nil {
				return err
			}
		}
		credited = len(meds)
		return nil
	})
	if err != nil {
		return CancelFailed, err
	}

	if !outcome.Cancelled() {
		log.Info().Uint("sale_id", id).Str("outcome", outcome.String()).Msg("sale cancellation refused")
		return outcome, nil
	}

	log.Info().Uint("sale_id", id).Int("medicines", credited).Msg("sale cancelled")
	s.after.invalidateDashboard(ctx)
	return outcome, nil
}

// ── Reads ─────────────────────────────────────────────────────────────────────

func (s *salesService) GetSaleByID(ctx context.Context, id uint) (*dto.SaleResponse, error) {
	sale, err := s.repos.Sales().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSaleNotFound)
	}
	resp := saleToResponse(sale)
	return &resp, nil
}

func (s *salesService) ListSales(ctx context.Context, filter dto.SalesFilter) (*dto.SaleListResponse, error) {
	from, err := parseBound(filter.From, s.loc, false)
	if err != nil {
		return nil, err
	}
	to, err := parseBound(filter.To, s.loc, true)
	if err != nil {
		return nil, err
	}
	sales, total, err := s.repos.Sales().List(ctx, repository.SalesFilter{
		From:      from,
		To:        to,
		Status:    model.SaleStatus(filter.Status),
		PatientID: filter.PatientID,
		Page:      filter.Page,
		Limit:     filter.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return &dto.SaleListResponse{
		Data:  salesToResponse(sales),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *salesService) ListSalesInRange(ctx context.Context, from, to time.Time) ([]dto.SaleResponse, error) {
	if to.Before(from) {
		return nil, fmt.Errorf("%w: range end precedes range start", ErrInvalidInput)
	}
	f, t := from.UTC(), to.UTC()
	sales, _, err := s.repos.Sales().List(ctx, repository.SalesFilter{From: &f, To: &t})
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return salesToResponse(sales), nil
}

func (s *salesService) ListSalesToday(ctx context.Context) ([]dto.SaleResponse, error) {
	from, to := dayRange(s.ledger.now(), s.loc)
	return s.ListSalesInRange(ctx, from, to)
}

func (s *salesService) GetReceipt(ctx context.Context, id uint) (*dto.ReceiptResponse, error) {
	sale, err := s.repos.Sales().FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrSaleNotFound)
	}
	clinic, err := s.settings.ClinicInfo(ctx)
	if err != nil {
		return nil, err
	}
	receipt := &dto.ReceiptResponse{
		Clinic:      clinic,
		Transaction: saleToResponse(sale),
	}
	if sale.Patient != nil {
		p := patientToResponse(sale.Patient)
		receipt.Patient = &p
	}
	return receipt, nil
}
