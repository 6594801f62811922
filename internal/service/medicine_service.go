package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/infra"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/repository"

	"github.com/rs/zerolog/log"
)

const initialStockNote = "Initial stock"

// MedicineService manages the catalog. Stock is never written here except
// through the ledger when a medicine is created with an initial quantity.
type MedicineService interface {
	Create(ctx context.Context, req dto.CreateMedicineRequest) (*dto.MedicineResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.MedicineResponse, error)
	List(ctx context.Context, filter dto.MedicineFilter) (*dto.MedicineListResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdateMedicineRequest) (*dto.MedicineResponse, error)
	SetActive(ctx context.Context, id uint, active bool) (*dto.MedicineResponse, error)
	ListLowStock(ctx context.Context) ([]dto.MedicineResponse, error)
	// ListExpiring returns active medicines expiring within days from today.
	ListExpiring(ctx context.Context, days int) ([]dto.MedicineResponse, error)
}

type medicineService struct {
	tx          repository.TxManager
	repo        repository.MedicineRepository
	ledger      *stockLedger
	after       afterCommit
	warningDays int
}

func NewMedicineService(
	tx repository.TxManager,
	repo repository.MedicineRepository,
	cache *infra.Cache,
	expiryWarningDays int,
) MedicineService {
	if expiryWarningDays <= 0 {
		expiryWarningDays = 30
	}
	return &medicineService{
		tx:          tx,
		repo:        repo,
		ledger:      newStockLedger(),
		after:       afterCommit{cache: cache},
		warningDays: expiryWarningDays,
	}
}

func (s *medicineService) Create(ctx context.Context, req dto.CreateMedicineRequest) (*dto.MedicineResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if !req.Price.IsPositive() {
		return nil, fmt.Errorf("%w: price must be greater than 0", ErrInvalidInput)
	}
	if req.MinStock < 0 || req.InitialStock < 0 {
		return nil, fmt.Errorf("%w: stock values must not be negative", ErrInvalidInput)
	}
	expiry, err := parseDate(req.ExpiryDate)
	if err != nil {
		return nil, err
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "tablet"
	}

	m := &model.Medicine{
		Name:        name,
		GenericName: req.GenericName,
		Category:    req.Category,
		Unit:        unit,
		Price:       req.Price.Round(2),
		MinStock:    req.MinStock,
		ExpiryDate:  expiry,
		BatchNumber: req.BatchNumber,
		Supplier:    req.Supplier,
		Active:      true,
	}
	err = s.tx.WithinTx(ctx, func(repos repository.Repositories) error {
		if err := repos.Medicines().Create(ctx, m); err != nil {
			return fmt.Errorf("insert medicine: %w", err)
		}
		if req.InitialStock == 0 {
			return nil
		}
		note := initialStockNote
		_, err := s.ledger.record(ctx, repos, m, model.StockIn, req.InitialStock, &note)
		return err
	})
	if err != nil {
		return nil, err
	}

	log.Info().Uint("medicine_id", m.ID).Str("name", m.Name).Int("initial_stock", m.CurrentStock).Msg("medicine created")
	s.after.invalidateDashboard(ctx)

	resp := medicineToResponse(m)
	return &resp, nil
}

func (s *medicineService) GetByID(ctx context.Context, id uint) (*dto.MedicineResponse, error) {
	m, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, medicineLookupErr(err, id)
	}
	resp := medicineToResponse(m)
	return &resp, nil
}

func (s *medicineService) List(ctx context.Context, filter dto.MedicineFilter) (*dto.MedicineListResponse, error) {
	meds, total, err := s.repo.List(ctx, repository.MedicineFilter{
		Search:   filter.Search,
		Category: filter.Category,
		LowStock: filter.LowStock,
		Active:   filter.Active,
		Page:     filter.Page,
		Limit:    filter.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return &dto.MedicineListResponse{
		Data:  medicinesToResponse(meds),
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *medicineService) Update(ctx context.Context, id uint, req dto.UpdateMedicineRequest) (*dto.MedicineResponse, error) {
	patch, err := medicinePatchFrom(req)
	if err != nil {
		return nil, err
	}
	if !patch.IsEmpty() {
		if err := s.repo.Patch(ctx, id, patch); err != nil {
			return nil, medicineLookupErr(err, id)
		}
		s.after.invalidateDashboard(ctx)
	}
	return s.GetByID(ctx, id)
}

func medicinePatchFrom(req dto.UpdateMedicineRequest) (model.MedicinePatch, error) {
	patch := model.MedicinePatch{
		GenericName: req.GenericName,
		Category:    req.Category,
		MinStock:    req.MinStock,
		ClearExpiry: req.ClearExpiry,
		BatchNumber: req.BatchNumber,
		Supplier:    req.Supplier,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return patch, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		patch.Name = &name
	}
	if req.Unit != nil {
		unit := strings.TrimSpace(*req.Unit)
		if unit == "" {
			return patch, fmt.Errorf("%w: unit must not be empty", ErrInvalidInput)
		}
		patch.Unit = &unit
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return patch, fmt.Errorf("%w: price must be greater than 0", ErrInvalidInput)
		}
		price := req.Price.Round(2)
		patch.Price = &price
	}
	if req.MinStock != nil && *req.MinStock < 0 {
		return patch, fmt.Errorf("%w: min_stock must not be negative", ErrInvalidInput)
	}
	if !req.ClearExpiry {
		expiry, err := parseDate(req.ExpiryDate)
		if err != nil {
			return patch, err
		}
		patch.ExpiryDate = expiry
	}
	return patch, nil
}

func (s *medicineService) SetActive(ctx context.Context, id uint, active bool) (*dto.MedicineResponse, error) {
	if err := s.repo.SetActive(ctx, id, active); err != nil {
		return nil, medicineLookupErr(err, id)
	}
	s.after.invalidateDashboard(ctx)
	return s.GetByID(ctx, id)
}

func (s *medicineService) ListLowStock(ctx context.Context) ([]dto.MedicineResponse, error) {
	meds, err := s.repo.ListLowStock(ctx)
	if err != nil {
		return nil, fmt.Errorf("list low stock medicines: %w", err)
	}
	return medicinesToResponse(meds), nil
}

func (s *medicineService) ListExpiring(ctx context.Context, days int) ([]dto.MedicineResponse, error) {
	if days <= 0 {
		days = s.warningDays
	}
	today := time.Now().UTC().Truncate(24 * time.Hour)
	meds, err := s.repo.ListExpiringBefore(ctx, today.AddDate(0, 0, days))
	if err != nil {
		return nil, fmt.Errorf("list expiring medicines: %w", err)
	}
	return medicinesToResponse(meds), nil
}

func medicinesToResponse(meds []model.Medicine) []dto.MedicineResponse {
	out := make([]dto.MedicineResponse, 0, len(meds))
	for i := range meds {
		out = append(out, medicineToResponse(&meds[i]))
	}
	return out
}
