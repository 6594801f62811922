package model

import (
	"time"
)

// StockDirection is the sign of a ledger movement.
type StockDirection string

const (
	StockIn  StockDirection = "IN"
	StockOut StockDirection = "OUT"
)

// Valid reports whether d is one of the known directions.
func (d StockDirection) Valid() bool {
	return d == StockIn || d == StockOut
}

// StockTransaction is an append-only ledger entry. Rows are never updated or
// deleted; a cancellation appends a compensating IN entry instead.
type StockTransaction struct {
	ID              uint           `gorm:"primaryKey"`
	MedicineID      uint           `gorm:"not null;index"`
	Type            StockDirection `gorm:"type:varchar(3);not null"`
	Quantity        int            `gorm:"not null;check:quantity > 0"`
	Notes           *string
	TransactionDate time.Time `gorm:"not null;index"`
	CreatedAt       time.Time

	Medicine *Medicine `gorm:"foreignKey:MedicineID"`
}

// Signed returns the movement's effect on the stock counter.
func (t *StockTransaction) Signed() int {
	if t.Type == StockOut {
		return -t.Quantity
	}
	return t.Quantity
}
