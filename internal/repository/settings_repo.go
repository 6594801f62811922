package repository

import (
	"context"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingsRepository interface {
	List(ctx context.Context) ([]model.Setting, error)
	Get(ctx context.Context, key string) (*model.Setting, error)
	// GetMany returns the settings that exist among keys, indexed by key.
	GetMany(ctx context.Context, keys ...string) (map[string]model.Setting, error)
	Upsert(ctx context.Context, s *model.Setting) error
	Delete(ctx context.Context, key string) error
}

type settingsRepo struct{ db *gorm.DB }

func NewSettingsRepository(db *gorm.DB) SettingsRepository { return &settingsRepo{db: db} }

func keyEq(key string) clause.Eq {
	return clause.Eq{Column: clause.Column{Name: "key"}, Value: key}
}

func (r *settingsRepo) List(ctx context.Context) ([]model.Setting, error) {
	var settings []model.Setting
	err := r.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&settings).Error
	return settings, err
}

func (r *settingsRepo) Get(ctx context.Context, key string) (*model.Setting, error) {
	var s model.Setting
	if err := r.db.WithContext(ctx).Where(keyEq(key)).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

func (r *settingsRepo) GetMany(ctx context.Context, keys ...string) (map[string]model.Setting, error) {
	out := make(map[string]model.Setting, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	var settings []model.Setting
	err := r.db.WithContext(ctx).
		Where(clause.IN{Column: clause.Column{Name: "key"}, Values: toInterfaces(keys)}).
		Find(&settings).Error
	if err != nil {
		return nil, err
	}
	for _, s := range settings {
		out[s.Key] = s
	}
	return out, nil
}

func (r *settingsRepo) Upsert(ctx context.Context, s *model.Setting) error {
	now := time.Now()
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now
	}
	s.UpdatedAt = now
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "description", "updated_at"}),
	}).Create(s).Error; err != nil {
		return err
	}
	// ON CONFLICT does not return the existing id on every dialect; reload.
	stored, err := r.Get(ctx, s.Key)
	if err != nil {
		return err
	}
	*s = *stored
	return nil
}

func (r *settingsRepo) Delete(ctx context.Context, key string) error {
	res := r.db.WithContext(ctx).Where(keyEq(key)).Delete(&model.Setting{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func toInterfaces(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
