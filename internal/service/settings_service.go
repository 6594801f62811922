package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/repository"
)

// DefaultClinicName is printed on receipts until clinic_name is configured.
const DefaultClinicName = "Bidan Hebat Clinic"

type SettingsService interface {
	List(ctx context.Context) ([]dto.SettingResponse, error)
	Get(ctx context.Context, key string) (*dto.SettingResponse, error)
	Upsert(ctx context.Context, key string, req dto.UpsertSettingRequest) (*dto.SettingResponse, error)
	Delete(ctx context.Context, key string) error
	// ClinicInfo reads the receipt branding, applying the fallbacks for
	// missing or empty keys.
	ClinicInfo(ctx context.Context) (dto.ClinicInfo, error)
}

type settingsService struct {
	repo repository.SettingsRepository
}

func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{repo: repo}
}

func (s *settingsService) List(ctx context.Context) ([]dto.SettingResponse, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.SettingResponse, 0, len(settings))
	for i := range settings {
		out = append(out, settingToResponse(&settings[i]))
	}
	return out, nil
}

func (s *settingsService) Get(ctx context.Context, key string) (*dto.SettingResponse, error) {
	setting, err := s.repo.Get(ctx, key)
	if err != nil {
		return nil, notFound(err, ErrSettingNotFound)
	}
	resp := settingToResponse(setting)
	return &resp, nil
}

func (s *settingsService) Upsert(ctx context.Context, key string, req dto.UpsertSettingRequest) (*dto.SettingResponse, error) {
	key = strings.TrimSpace(key)
	if key == "" || len(key) > 100 {
		return nil, fmt.Errorf("%w: setting key must be 1-100 characters", ErrInvalidInput)
	}
	setting := &model.Setting{Key: key, Value: req.Value, Description: req.Description}
	if err := s.repo.Upsert(ctx, setting); err != nil {
		return nil, fmt.Errorf("upsert setting %q: %w", key, err)
	}
	resp := settingToResponse(setting)
	return &resp, nil
}

func (s *settingsService) Delete(ctx context.Context, key string) error {
	return notFound(s.repo.Delete(ctx, key), ErrSettingNotFound)
}

func (s *settingsService) ClinicInfo(ctx context.Context) (dto.ClinicInfo, error) {
	found, err := s.repo.GetMany(ctx,
		model.SettingClinicName,
		model.SettingClinicAddress,
		model.SettingClinicPhone,
		model.SettingClinicLogo,
	)
	if err != nil {
		return dto.ClinicInfo{}, fmt.Errorf("load clinic settings: %w", err)
	}
	info := dto.ClinicInfo{
		Name:    DefaultClinicName,
		Address: settingValue(found, model.SettingClinicAddress),
		Phone:   settingValue(found, model.SettingClinicPhone),
		Logo:    settingValue(found, model.SettingClinicLogo),
	}
	if name := settingValue(found, model.SettingClinicName); name != nil {
		info.Name = *name
	}
	return info, nil
}

// settingValue returns the non-blank value stored under key, or nil.
func settingValue(found map[string]model.Setting, key string) *string {
	s, ok := found[key]
	if !ok || s.Value == nil || strings.TrimSpace(*s.Value) == "" {
		return nil
	}
	v := *s.Value
	return &v
}
