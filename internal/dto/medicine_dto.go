package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// MedicineFilter is bound from the query string of GET /api/medicines.
type MedicineFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	LowStock bool   `form:"low_stock"`
	Active   string `form:"active,default=true" validate:"omitempty,oneof=true false all"`
	Page     int    `form:"page,default=1"      validate:"min=1"`
	Limit    int    `form:"limit,default=20"    validate:"min=1,max=200"`
}

// ExpiringFilter: Days 0 uses the configured warning window.
type ExpiringFilter struct {
	Days int `form:"days" validate:"min=0,max=3650"`
}

type MedicineListResponse struct {
	Data  []MedicineResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateMedicineRequest struct {
	Name        string          `json:"name"          validate:"required,max=200"`
	GenericName *string         `json:"generic_name"  validate:"omitempty,max=200"`
	Category    *string         `json:"category"      validate:"omitempty,max=100"`
	Unit        string          `json:"unit"          validate:"omitempty,max=30"`
	Price       decimal.Decimal `json:"price"         validate:"required,gt=0"`
	MinStock    int             `json:"min_stock"     validate:"min=0"`
	// InitialStock is recorded as an IN movement in the same transaction.
	InitialStock int     `json:"initial_stock" validate:"min=0"`
	ExpiryDate   *string `json:"expiry_date"   validate:"omitempty,datetime=2006-01-02"`
	BatchNumber  *string `json:"batch_number"  validate:"omitempty,max=100"`
	Supplier     *string `json:"supplier"      validate:"omitempty,max=200"`
}

// UpdateMedicineRequest: every field is optional; absent fields are left
// untouched. Stock is not updatable here, use a stock movement instead.
type UpdateMedicineRequest struct {
	Name        *string          `json:"name"         validate:"omitempty,min=1,max=200"`
	GenericName *string          `json:"generic_name" validate:"omitempty,max=200"`
	Category    *string          `json:"category"     validate:"omitempty,max=100"`
	Unit        *string          `json:"unit"         validate:"omitempty,min=1,max=30"`
	Price       *decimal.Decimal `json:"price"`
	MinStock    *int             `json:"min_stock"    validate:"omitempty,min=0"`
	ExpiryDate  *string          `json:"expiry_date"  validate:"omitempty,datetime=2006-01-02"`
	ClearExpiry bool             `json:"clear_expiry"`
	BatchNumber *string          `json:"batch_number" validate:"omitempty,max=100"`
	Supplier    *string          `json:"supplier"     validate:"omitempty,max=200"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type MedicineResponse struct {
	ID           uint            `json:"id"`
	Name         string          `json:"name"`
	GenericName  *string         `json:"generic_name"`
	Category     *string         `json:"category"`
	Unit         string          `json:"unit"`
	Price        decimal.Decimal `json:"price"`
	MinStock     int             `json:"min_stock"`
	CurrentStock int             `json:"current_stock"`
	IsLowStock   bool            `json:"is_low_stock"`
	ExpiryDate   *string         `json:"expiry_date"`
	BatchNumber  *string         `json:"batch_number"`
	Supplier     *string         `json:"supplier"`
	Active       bool            `json:"active"`
	CreatedAt    string          `json:"created_at"`
	UpdatedAt    string          `json:"updated_at"`
}
