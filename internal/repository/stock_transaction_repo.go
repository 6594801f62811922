package repository

import (
	"context"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/model"

	"gorm.io/gorm"
)

// StockTransactionFilter defines filters for listing ledger entries.
// From/To bound a closed interval on transaction_date.
type StockTransactionFilter struct {
	MedicineID *uint
	Type       model.StockDirection
	From       *time.Time
	To         *time.Time
	Page       int
	Limit      int // 0 = no limit
}

// StockTransactionRepository is append-only: there is no Update or Delete.
type StockTransactionRepository interface {
	Create(ctx context.Context, t *model.StockTransaction) error
	List(ctx context.Context, filter StockTransactionFilter) ([]model.StockTransaction, int64, error)
	// SignedSum returns SUM(IN) - SUM(OUT) for one medicine.
	SignedSum(ctx context.Context, medicineID uint) (int64, error)
	SignedSums(ctx context.Context) (map[uint]int64, error)
}

type stockTransactionRepo struct{ db *gorm.DB }

func NewStockTransactionRepository(db *gorm.DB) StockTransactionRepository {
	return &stockTransactionRepo{db: db}
}

func (r *stockTransactionRepo) Create(ctx context.Context, t *model.StockTransaction) error {
	return r.db.WithContext(ctx).Create(t).Error
}

// List returns entries newest first; ties on transaction_date fall back to
// insertion order (id), newest first as well.
func (r *stockTransactionRepo) List(ctx context.Context, filter StockTransactionFilter) ([]model.StockTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.StockTransaction{})
	if filter.MedicineID != nil {
		q = q.Where("medicine_id = ?", *filter.MedicineID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.From != nil {
		q = q.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("transaction_date <= ?", *filter.To)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Medicine").Order("transaction_date DESC").Order("id DESC")
	if filter.Limit > 0 {
		page, limit := normalizePage(filter.Page, filter.Limit, 50, 500)
		q = q.Offset((page - 1) * limit).Limit(limit)
	}

	var txs []model.StockTransaction
	err := q.Find(&txs).Error
	return txs, total, err
}

const signedQuantity = "COALESCE(SUM(CASE WHEN type = 'IN' THEN quantity ELSE -quantity END), 0)"

func (r *stockTransactionRepo) SignedSum(ctx context.Context, medicineID uint) (int64, error) {
	var sum int64
	err := r.db.WithContext(ctx).Model(&model.StockTransaction{}).
		Select(signedQuantity).
		Where("medicine_id = ?", medicineID).
		Scan(&sum).Error
	return sum, err
}

func (r *stockTransactionRepo) SignedSums(ctx context.Context) (map[uint]int64, error) {
	var rows []struct {
		MedicineID uint
		Total      int64
	}
	err := r.db.WithContext(ctx).Model(&model.StockTransaction{}).
		Select("medicine_id, " + signedQuantity + " AS total").
		Group("medicine_id").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	sums := make(map[uint]int64, len(rows))
	for _, row := range rows {
		sums[row.MedicineID] = row.Total
	}
	return sums, nil
}
