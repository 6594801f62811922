package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrNotFound is returned by every repository lookup that matches no row.
var ErrNotFound = errors.New("record not found")

// ErrStockUnderflow is returned by AdjustStock when the guarded update would
// drive current_stock below zero.
var ErrStockUnderflow = errors.New("stock would become negative")

// MedicineFilter narrows List results.
type MedicineFilter struct {
	Search   string
	Category string
	LowStock bool
	Active   string // "true" (default) | "false" | "all"
	Page     int
	Limit    int
}

// MedicineRepository defines the data access contract for medicines.
// Services depend on this interface, not on the GORM implementation.
type MedicineRepository interface {
	Create(ctx context.Context, m *model.Medicine) error
	FindByID(ctx context.Context, id uint) (*model.Medicine, error)
	// FindByIDForUpdate and FindByIDsForUpdate lock the returned rows until
	// the surrounding transaction ends. Only meaningful inside WithinTx.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.Medicine, error)
	FindByIDsForUpdate(ctx context.Context, ids []uint) ([]model.Medicine, error)
	List(ctx context.Context, filter MedicineFilter) ([]model.Medicine, int64, error)
	ListLowStock(ctx context.Context) ([]model.Medicine, error)
	ListExpiringBefore(ctx context.Context, before time.Time) ([]model.Medicine, error)
	Patch(ctx context.Context, id uint, patch model.MedicinePatch) error
	SetActive(ctx context.Context, id uint, active bool) error
	// AdjustStock adds delta to current_stock, refusing to go below zero.
	AdjustStock(ctx context.Context, id uint, delta int, at time.Time) error
	ListAll(ctx context.Context) ([]model.Medicine, error)
}

type medicineRepo struct{ db *gorm.DB }

func NewMedicineRepository(db *gorm.DB) MedicineRepository { return &medicineRepo{db: db} }

func (r *medicineRepo) Create(ctx context.Context, m *model.Medicine) error {
	return r.db.WithContext(ctx).Create(m).Error
}

func (r *medicineRepo) FindByID(ctx context.Context, id uint) (*model.Medicine, error) {
	var m model.Medicine
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

func (r *medicineRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.Medicine, error) {
	var m model.Medicine
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&m, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &m, nil
}

// FindByIDsForUpdate locks rows in ascending id order so that two carts
// touching the same medicines always acquire locks in the same sequence.
func (r *medicineRepo) FindByIDsForUpdate(ctx context.Context, ids []uint) ([]model.Medicine, error) {
	if len(ids) == 0 {
		return []model.Medicine{}, nil
	}
	var meds []model.Medicine
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&meds).Error
	return meds, err
}

func (r *medicineRepo) List(ctx context.Context, filter MedicineFilter) ([]model.Medicine, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Medicine{})

	switch filter.Active {
	case "false":
		q = q.Where("active = ?", false)
	case "all":
	default:
		q = q.Where("active = ?", true)
	}
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR LOWER(COALESCE(generic_name, '')) LIKE ?", like, like)
	}
	if filter.Category != "" {
		q = q.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		q = q.Where("current_stock <= min_stock")
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, 20, 200)
	var meds []model.Medicine
	err := q.Order("name ASC").Order("id ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&meds).Error
	return meds, total, err
}

func (r *medicineRepo) ListLowStock(ctx context.Context) ([]model.Medicine, error) {
	var meds []model.Medicine
	err := r.db.WithContext(ctx).
		Where("active = ? AND current_stock <= min_stock", true).
		Order("current_stock ASC").Order("name ASC").
		Find(&meds).Error
	return meds, err
}

func (r *medicineRepo) ListExpiringBefore(ctx context.Context, before time.Time) ([]model.Medicine, error) {
	var meds []model.Medicine
	err := r.db.WithContext(ctx).
		Where("active = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", true, before).
		Order("expiry_date ASC").Order("name ASC").
		Find(&meds).Error
	return meds, err
}

func (r *medicineRepo) Patch(ctx context.Context, id uint, patch model.MedicinePatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Medicine{ID: id}).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicineRepo) SetActive(ctx context.Context, id uint, active bool) error {
	res := r.db.WithContext(ctx).Model(&model.Medicine{ID: id}).Update("active", active)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *medicineRepo) AdjustStock(ctx context.Context, id uint, delta int, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&model.Medicine{}).
		Where("id = ? AND current_stock + ? >= 0", id, delta).
		Updates(map[string]interface{}{
			"current_stock": gorm.Expr("current_stock + ?", delta),
			"updated_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrStockUnderflow
	}
	return nil
}

func (r *medicineRepo) ListAll(ctx context.Context) ([]model.Medicine, error) {
	var meds []model.Medicine
	err := r.db.WithContext(ctx).Order("id ASC").Find(&meds).Error
	return meds, err
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func normalizePage(page, limit, def, max int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = def
	}
	if limit > max {
		limit = max
	}
	return page, limit
}
