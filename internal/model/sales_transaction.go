package model

import (
	"time"

	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentDebit    PaymentMethod = "DEBIT"
	PaymentCredit   PaymentMethod = "CREDIT"
	PaymentTransfer PaymentMethod = "TRANSFER"
)

// PaymentMethods lists every accepted payment method in display order.
var PaymentMethods = []PaymentMethod{PaymentCash, PaymentDebit, PaymentCredit, PaymentTransfer}

// SaleStatus: PENDING -> COMPLETED -> CANCELLED. CANCELLED is terminal.
type SaleStatus string

const (
	SalePending   SaleStatus = "PENDING"
	SaleCompleted SaleStatus = "COMPLETED"
	SaleCancelled SaleStatus = "CANCELLED"
)

// SalesTransaction is one checkout. Rows are never deleted; the only
// mutation after creation is the status flip to CANCELLED.
type SalesTransaction struct {
	ID              uint            `gorm:"primaryKey"`
	PatientID       *uint           `gorm:"index"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	PaymentMethod   PaymentMethod   `gorm:"type:varchar(10);not null"`
	PaymentReceived decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ChangeAmount    decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Status          SaleStatus      `gorm:"type:varchar(10);not null;default:'PENDING';index"`
	Notes           *string
	TransactionDate time.Time `gorm:"not null;index"`
	CreatedAt       time.Time

	Patient *Patient               `gorm:"foreignKey:PatientID"`
	Items   []SalesTransactionItem `gorm:"foreignKey:TransactionID"`
}

// SalesTransactionItem is a priced cart line. UnitPrice is a copy of the
// medicine price at sale time, not a reference to it.
type SalesTransactionItem struct {
	ID            uint            `gorm:"primaryKey"`
	TransactionID uint            `gorm:"not null;index"`
	MedicineID    uint            `gorm:"not null;index"`
	Quantity      int             `gorm:"not null;check:quantity > 0"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	TotalPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Medicine *Medicine `gorm:"foreignKey:MedicineID"`
}
