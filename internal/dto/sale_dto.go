package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// SalesFilter is bound from the query string of GET /api/sales.
// From/To accept RFC 3339 timestamps or YYYY-MM-DD dates and bound a closed
// interval.
type SalesFilter struct {
	From      string `form:"from"`
	To        string `form:"to"`
	Status    string `form:"status"          validate:"omitempty,oneof=PENDING COMPLETED CANCELLED"`
	PatientID *uint  `form:"patient_id"`
	Page      int    `form:"page,default=1"  validate:"min=1"`
	Limit     int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type SaleListResponse struct {
	Data  []SaleResponse `json:"data"`
	Total int64          `json:"total"`
	Page  int            `json:"page"`
	Limit int            `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

// SaleItemRequest is one cart line. Quantity is checked by the sales engine
// so that a non-positive value surfaces as INVALID_QUANTITY.
type SaleItemRequest struct {
	MedicineID uint `json:"medicine_id" validate:"required"`
	Quantity   int  `json:"quantity"`
}

type CreateSaleRequest struct {
	PatientID       *uint             `json:"patient_id"`
	PaymentMethod   string            `json:"payment_method"   validate:"required,oneof=CASH DEBIT CREDIT TRANSFER"`
	PaymentReceived decimal.Decimal   `json:"payment_received" validate:"required,gt=0"`
	Notes           *string           `json:"notes"            validate:"omitempty,max=500"`
	Items           []SaleItemRequest `json:"items"            validate:"required,min=1,dive"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type SaleItemResponse struct {
	ID           uint            `json:"id"`
	MedicineID   uint            `json:"medicine_id"`
	MedicineName string          `json:"medicine_name"`
	Unit         string          `json:"unit"`
	Quantity     int             `json:"quantity"`
	UnitPrice    decimal.Decimal `json:"unit_price"`
	TotalPrice   decimal.Decimal `json:"total_price"`
}

type SaleResponse struct {
	ID              uint               `json:"id"`
	PatientID       *uint              `json:"patient_id"`
	PatientName     *string            `json:"patient_name"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	PaymentMethod   string             `json:"payment_method"`
	PaymentReceived decimal.Decimal    `json:"payment_received"`
	ChangeAmount    decimal.Decimal    `json:"change_amount"`
	Status          string             `json:"status"`
	Notes           *string            `json:"notes"`
	TransactionDate string             `json:"transaction_date"`
	CreatedAt       string             `json:"created_at"`
	Items           []SaleItemResponse `json:"items"`
}

// CancelSaleResponse reports the outcome of a cancellation. Reason is set
// when Cancelled is false: not_found | already_cancelled.
type CancelSaleResponse struct {
	ID        uint   `json:"id"`
	Cancelled bool   `json:"cancelled"`
	Reason    string `json:"reason,omitempty"`
}

// ClinicInfo is the branding block printed on receipts.
type ClinicInfo struct {
	Name    string  `json:"name"`
	Address *string `json:"address"`
	Phone   *string `json:"phone"`
	Logo    *string `json:"logo"`
}

// ReceiptResponse is the data a client needs to render a receipt.
type ReceiptResponse struct {
	Clinic      ClinicInfo       `json:"clinic"`
	Transaction SaleResponse     `json:"transaction"`
	Patient     *PatientResponse `json:"patient"`
}
