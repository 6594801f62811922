package repository

import (
	"context"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SalesFilter narrows sale listings. From/To bound a closed interval on
// transaction_date.
type SalesFilter struct {
	From      *time.Time
	To        *time.Time
	Status    model.SaleStatus
	PatientID *uint
	Page      int
	Limit     int // 0 = no limit
}

type SalesRepository interface {
	// Create inserts the transaction together with its Items.
	Create(ctx context.Context, s *model.SalesTransaction) error
	FindByID(ctx context.Context, id uint) (*model.SalesTransaction, error)
	// FindByIDForUpdate locks the sale row; items are loaded without locks.
	FindByIDForUpdate(ctx context.Context, id uint) (*model.SalesTransaction, error)
	UpdateStatus(ctx context.Context, id uint, status model.SaleStatus) error
	List(ctx context.Context, filter SalesFilter) ([]model.SalesTransaction, int64, error)
	CountByPatient(ctx context.Context, patientID uint) (int64, error)
}

type salesRepo struct{ db *gorm.DB }

func NewSalesRepository(db *gorm.DB) SalesRepository { return &salesRepo{db: db} }

func (r *salesRepo) Create(ctx context.Context, s *model.SalesTransaction) error {
	return r.db.WithContext(ctx).Create(s).Error
}

func (r *salesRepo) FindByID(ctx context.Context, id uint) (*model.SalesTransaction, error) {
	var s model.SalesTransaction
	err := r.db.WithContext(ctx).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Medicine").
		Preload("Patient").
		First(&s, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *salesRepo) FindByIDForUpdate(ctx context.Context, id uint) (*model.SalesTransaction, error) {
	var s model.SalesTransaction
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&s, id).Error
	if err != nil {
		return nil, translate(err)
	}
	if err := r.db.WithContext(ctx).
		Where("transaction_id = ?", s.ID).
		Order("id ASC").
		Find(&s.Items).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *salesRepo) UpdateStatus(ctx context.Context, id uint, status model.SaleStatus) error {
	res := r.db.WithContext(ctx).Model(&model.SalesTransaction{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns sales newest first, ties broken by insertion order.
func (r *salesRepo) List(ctx context.Context, filter SalesFilter) ([]model.SalesTransaction, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.SalesTransaction{})
	if filter.From != nil {
		q = q.Where("transaction_date >= ?", *filter.From)
	}
	if filter.To != nil {
		q = q.Where("transaction_date <= ?", *filter.To)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.PatientID != nil {
		q = q.Where("patient_id = ?", *filter.PatientID)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	q = q.Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("id ASC") }).
		Preload("Items.Medicine").
		Preload("Patient").
		Order("transaction_date DESC").Order("id DESC")
	if filter.Limit > 0 {
		page, limit := normalizePage(filter.Page, filter.Limit, 50, 200)
		q = q.Offset((page - 1) * limit).Limit(limit)
	}

	var sales []model.SalesTransaction
	err := q.Find(&sales).Error
	return sales, total, err
}

func (r *salesRepo) CountByPatient(ctx context.Context, patientID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.SalesTransaction{}).
		Where("patient_id = ?", patientID).
		Count(&n).Error
	return n, err
}
