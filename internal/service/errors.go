package service

import (
	"errors"
	"fmt"

	"github.com/appdotbuilder/bidan-hebat-management/internal/repository"

	"github.com/shopspring/decimal"
)

// DomainError is a business rule failure surfaced to the caller as-is.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	parent  *DomainError
}

func (e *DomainError) Error() string { return e.Message }

// Is lets a specific sentinel match its family, e.g. ErrSaleNotFound is
// also ErrNotFound.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	for p := e.parent; p != nil; p = p.parent {
		if p == t {
			return true
		}
	}
	return false
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

func newChildError(parent *DomainError, code, message string) *DomainError {
	return &DomainError{Code: code, Message: message, parent: parent}
}

var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "resource not found")
	ErrMedicineNotFound    = newChildError(ErrNotFound, "MEDICINE_NOT_FOUND", "medicine not found")
	ErrSaleNotFound        = newChildError(ErrNotFound, "SALE_NOT_FOUND", "sales transaction not found")
	ErrPatientNotFound     = newChildError(ErrNotFound, "PATIENT_NOT_FOUND", "patient not found")
	ErrSettingNotFound     = newChildError(ErrNotFound, "SETTING_NOT_FOUND", "setting not found")
	ErrInvalidInput        = NewDomainError("INVALID_INPUT", "invalid input")
	ErrInvalidQuantity     = newChildError(ErrInvalidInput, "INVALID_QUANTITY", "quantity must be a positive integer")
	ErrInsufficientStock   = NewDomainError("INSUFFICIENT_STOCK", "insufficient stock")
	ErrInsufficientPayment = NewDomainError("INSUFFICIENT_PAYMENT", "payment received is less than the total amount")
	ErrMedicineInactive    = NewDomainError("MEDICINE_INACTIVE", "medicine is inactive and cannot be sold")
	ErrConflict            = NewDomainError("CONFLICT", "operation conflicts with existing data")
	ErrInvariantViolation  = NewDomainError("INVARIANT_VIOLATION", "stock ledger does not match the stock counter")
)

// InsufficientStockError reports the balance a rejected OUT movement saw.
type InsufficientStockError struct {
	MedicineID   uint
	MedicineName string
	Available    int
	Requested    int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: available %d, requested %d",
		e.MedicineName, e.Available, e.Requested)
}

func (e *InsufficientStockError) Is(target error) bool { return target == ErrInsufficientStock }

// MedicineNotFoundError names the id that could not be resolved.
type MedicineNotFoundError struct {
	MedicineID uint
}

func (e *MedicineNotFoundError) Error() string {
	return fmt.Sprintf("medicine %d not found", e.MedicineID)
}

func (e *MedicineNotFoundError) Is(target error) bool {
	return target == ErrMedicineNotFound || target == ErrNotFound
}

type InsufficientPaymentError struct {
	Total    decimal.Decimal
	Received decimal.Decimal
}

func (e *InsufficientPaymentError) Error() string {
	return fmt.Sprintf("payment received %s is less than total %s",
		e.Received.StringFixed(2), e.Total.StringFixed(2))
}

func (e *InsufficientPaymentError) Is(target error) bool { return target == ErrInsufficientPayment }

type InvariantViolationError struct {
	MedicineID uint
	Stored     int64
	LedgerSum  int64
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("medicine %d: current_stock %d does not match ledger sum %d",
		e.MedicineID, e.Stored, e.LedgerSum)
}

func (e *InvariantViolationError) Is(target error) bool { return target == ErrInvariantViolation }

// notFound maps the repository sentinel to the given domain sentinel and
// leaves every other error untouched.
func notFound(err error, sentinel *DomainError) error {
	if errors.Is(err, repository.ErrNotFound) {
		return sentinel
	}
	return err
}

func medicineLookupErr(err error, id uint) error {
	if errors.Is(err, repository.ErrNotFound) {
		return &MedicineNotFoundError{MedicineID: id}
	}
	return fmt.Errorf("load medicine %d: %w", id, err)
}
