package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/repository"
)

type PatientService interface {
	Create(ctx context.Context, req dto.CreatePatientRequest) (*dto.PatientResponse, error)
	GetByID(ctx context.Context, id uint) (*dto.PatientResponse, error)
	List(ctx context.Context, filter dto.PatientFilter) (*dto.PatientListResponse, error)
	Update(ctx context.Context, id uint, req dto.UpdatePatientRequest) (*dto.PatientResponse, error)
	// Delete refuses with ErrConflict while any sale references the patient.
	Delete(ctx context.Context, id uint) error
	ListSales(ctx context.Context, id uint) ([]dto.SaleResponse, error)
}

type patientService struct {
	repo  repository.PatientRepository
	sales repository.SalesRepository
}

func NewPatientService(repo repository.PatientRepository, sales repository.SalesRepository) PatientService {
	return &patientService{repo: repo, sales: sales}
}

func (s *patientService) Create(ctx context.Context, req dto.CreatePatientRequest) (*dto.PatientResponse, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	p := &model.Patient{
		Name:         name,
		DateOfBirth:  dob,
		Gender:       req.Gender,
		Phone:        req.Phone,
		Address:      req.Address,
		MedicalNotes: req.MedicalNotes,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("insert patient: %w", err)
	}
	resp := patientToResponse(p)
	return &resp, nil
}

func (s *patientService) GetByID(ctx context.Context, id uint) (*dto.PatientResponse, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrPatientNotFound)
	}
	resp := patientToResponse(p)
	return &resp, nil
}

func (s *patientService) List(ctx context.Context, filter dto.PatientFilter) (*dto.PatientListResponse, error) {
	patients, total, err := s.repo.List(ctx, repository.PatientFilter{
		Search: filter.Search,
		Page:   filter.Page,
		Limit:  filter.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("list patients: %w", err)
	}
	data := make([]dto.PatientResponse, 0, len(patients))
	for i := range patients {
		data = append(data, patientToResponse(&patients[i]))
	}
	return &dto.PatientListResponse{Data: data, Total: total, Page: filter.Page, Limit: filter.Limit}, nil
}

func (s *patientService) Update(ctx context.Context, id uint, req dto.UpdatePatientRequest) (*dto.PatientResponse, error) {
	patch := model.PatientPatch{
		Gender:       req.Gender,
		Phone:        req.Phone,
		Address:      req.Address,
		MedicalNotes: req.MedicalNotes,
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return nil, fmt.Errorf("%w: name must not be empty", ErrInvalidInput)
		}
		patch.Name = &name
	}
	dob, err := parseDate(req.DateOfBirth)
	if err != nil {
		return nil, err
	}
	patch.DateOfBirth = dob

	if len(patch.Columns()) > 0 {
		if err := s.repo.Patch(ctx, id, patch); err != nil {
			return nil, notFound(err, ErrPatientNotFound)
		}
	}
	return s.GetByID(ctx, id)
}

func (s *patientService) Delete(ctx context.Context, id uint) error {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return notFound(err, ErrPatientNotFound)
	}
	n, err := s.sales.CountByPatient(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("%w: patient has %d sales transactions", ErrConflict, n)
	}
	return notFound(s.repo.Delete(ctx, id), ErrPatientNotFound)
}

func (s *patientService) ListSales(ctx context.Context, id uint) ([]dto.SaleResponse, error) {
	if _, err := s.repo.FindByID(ctx, id); err != nil {
		return nil, notFound(err, ErrPatientNotFound)
	}
	sales, _, err := s.sales.List(ctx, repository.SalesFilter{PatientID: &id})
	if err != nil {
		return nil, fmt.Errorf("list patient sales: %w", err)
	}
	return salesToResponse(sales), nil
}
