package repository

import (
	"context"
	"strings"

	"github.com/appdotbuilder/bidan-hebat-management/internal/model"

	"gorm.io/gorm"
)

type PatientFilter struct {
	Search string // matches name or phone
	Page   int
	Limit  int
}

type PatientRepository interface {
	Create(ctx context.Context, p *model.Patient) error
	FindByID(ctx context.Context, id uint) (*model.Patient, error)
	List(ctx context.Context, filter PatientFilter) ([]model.Patient, int64, error)
	Patch(ctx context.Context, id uint, patch model.PatientPatch) error
	Delete(ctx context.Context, id uint) error
}

type patientRepo struct{ db *gorm.DB }

func NewPatientRepository(db *gorm.DB) PatientRepository { return &patientRepo{db: db} }

func (r *patientRepo) Create(ctx context.Context, p *model.Patient) error {
	return r.db.WithContext(ctx).Create(p).Error
}

func (r *patientRepo) FindByID(ctx context.Context, id uint) (*model.Patient, error) {
	var p model.Patient
	if err := r.db.WithContext(ctx).First(&p, id).Error; err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *patientRepo) List(ctx context.Context, filter PatientFilter) ([]model.Patient, int64, error) {
	q := r.db.WithContext(ctx).Model(&model.Patient{})
	if s := strings.TrimSpace(filter.Search); s != "" {
		like := "%" + strings.ToLower(s) + "%"
		q = q.Where("LOWER(name) LIKE ? OR COALESCE(phone, '') LIKE ?", like, like)
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	page, limit := normalizePage(filter.Page, filter.Limit, 20, 200)
	var patients []model.Patient
	err := q.Order("name ASC").Order("id ASC").
		Offset((page - 1) * limit).Limit(limit).
		Find(&patients).Error
	return patients, total, err
}

func (r *patientRepo) Patch(ctx context.Context, id uint, patch model.PatientPatch) error {
	cols := patch.Columns()
	if len(cols) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Patient{ID: id}).Updates(cols)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *patientRepo) Delete(ctx context.Context, id uint) error {
	res := r.db.WithContext(ctx).Delete(&model.Patient{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
