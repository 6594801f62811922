package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Medicine is an inventory item. CurrentStock is a projection of the stock
// ledger and is only ever changed through the stock ledger engine.
type Medicine struct {
	ID           uint            `gorm:"primaryKey"`
	Name         string          `gorm:"size:200;not null;index"`
	GenericName  *string         `gorm:"size:200"`
	Category     *string         `gorm:"size:100;index"`
	Unit         string          `gorm:"size:30;not null;default:'tablet'"`
	Price        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	MinStock     int             `gorm:"not null;default:0;check:min_stock >= 0"`
	CurrentStock int             `gorm:"not null;default:0;check:current_stock >= 0"`
	ExpiryDate   *time.Time      `gorm:"index"`
	BatchNumber  *string         `gorm:"size:100"`
	Supplier     *string         `gorm:"size:200"`
	Active       bool            `gorm:"not null;default:true"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// IsLowStock reports whether the stock is at or below the alert threshold.
func (m *Medicine) IsLowStock() bool {
	return m.CurrentStock <= m.MinStock
}

// MedicinePatch is a partial update. A nil field is left untouched; stock is
// deliberately absent because it only moves through the ledger.
type MedicinePatch struct {
	Name        *string
	GenericName *string
	Category    *string
	Unit        *string
	Price       *decimal.Decimal
	MinStock    *int
	ExpiryDate  *time.Time
	ClearExpiry bool
	BatchNumber *string
	Supplier    *string
}

// IsEmpty reports whether the patch carries no change at all.
func (p MedicinePatch) IsEmpty() bool {
	return len(p.Columns()) == 0
}

// Columns returns the column updates the patch carries.
func (p MedicinePatch) Columns() map[string]interface{} {
	cols := make(map[string]interface{})
	if p.Name != nil {
		cols["name"] = *p.Name
	}
	if p.GenericName != nil {
		cols["generic_name"] = *p.GenericName
	}
	if p.Category != nil {
		cols["category"] = *p.Category
	}
	if p.Unit != nil {
		cols["unit"] = *p.Unit
	}
	if p.Price != nil {
		cols["price"] = p.Price.Round(2)
	}
	if p.MinStock != nil {
		cols["min_stock"] = *p.MinStock
	}
	if p.ClearExpiry {
		cols["expiry_date"] = nil
	} else if p.ExpiryDate != nil {
		cols["expiry_date"] = *p.ExpiryDate
	}
	if p.BatchNumber != nil {
		cols["batch_number"] = *p.BatchNumber
	}
	if p.Supplier != nil {
		cols["supplier"] = *p.Supplier
	}
	return cols
}
