package repository

import (
	"context"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/model"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// SalesAggregate is the count and revenue of a set of sales.
type SalesAggregate struct {
	Count   int64
	Revenue decimal.Decimal
}

// MedicineSales is the quantity and revenue sold for one medicine.
type MedicineSales struct {
	MedicineID uint
	Name       string
	Unit       string
	Quantity   int64
	Revenue    decimal.Decimal
}

// ReportRepository holds read-only aggregate queries for the dashboard.
type ReportRepository interface {
	CountMedicines(ctx context.Context) (int64, error)
	CountLowStock(ctx context.Context) (int64, error)
	CountExpiringBefore(ctx context.Context, before time.Time) (int64, error)
	CountPatients(ctx context.Context) (int64, error)
	// SalesBetween aggregates sales with the given status in [from, to].
	SalesBetween(ctx context.Context, from, to time.Time, status model.SaleStatus) (SalesAggregate, error)
	RevenueByPaymentMethod(ctx context.Context, from, to time.Time) (map[model.PaymentMethod]decimal.Decimal, error)
	TopMedicines(ctx context.Context, from, to time.Time, limit int) ([]MedicineSales, error)
}

type reportRepo struct{ db *gorm.DB }

func NewReportRepository(db *gorm.DB) ReportRepository { return &reportRepo{db: db} }

func (r *reportRepo) CountMedicines(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Medicine{}).Where("active = ?", true).Count(&n).Error
	return n, err
}

func (r *reportRepo) CountLowStock(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Medicine{}).
		Where("active = ? AND current_stock <= min_stock", true).
		Count(&n).Error
	return n, err
}

func (r *reportRepo) CountExpiringBefore(ctx context.Context, before time.Time) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Medicine{}).
		Where("active = ? AND expiry_date IS NOT NULL AND expiry_date <= ?", true, before).
		Count(&n).Error
	return n, err
}

func (r *reportRepo) CountPatients(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Patient{}).Count(&n).Error
	return n, err
}

func (r *reportRepo) SalesBetween(ctx context.Context, from, to time.Time, status model.SaleStatus) (SalesAggregate, error) {
	var row struct {
		Count   int64
		Revenue decimal.NullDecimal
	}
	err := r.db.WithContext(ctx).Model(&model.SalesTransaction{}).
		Select("COUNT(*) AS count, SUM(total_amount) AS revenue").
		Where("status = ? AND transaction_date >= ? AND transaction_date <= ?", status, from, to).
		Scan(&row).Error
	if err != nil {
		return SalesAggregate{}, err
	}
	agg := SalesAggregate{Count: row.Count, Revenue: decimal.Zero}
	if row.Revenue.Valid {
		agg.Revenue = row.Revenue.Decimal.Round(2)
	}
	return agg, nil
}

func (r *reportRepo) RevenueByPaymentMethod(ctx context.Context, from, to time.Time) (map[model.PaymentMethod]decimal.Decimal, error) {
	var rows []struct {
		PaymentMethod model.PaymentMethod
		Revenue       decimal.Decimal
	}
	err := r.db.WithContext(ctx).Model(&model.SalesTransaction{}).
		Select("payment_method, SUM(total_amount) AS revenue").
		Where("status = ? AND transaction_date >= ? AND transaction_date <= ?", model.SaleCompleted, from, to).
		Group("payment_method").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[model.PaymentMethod]decimal.Decimal, len(rows))
	for _, row := range rows {
		out[row.PaymentMethod] = row.Revenue.Round(2)
	}
	return out, nil
}

func (r *reportRepo) TopMedicines(ctx context.Context, from, to time.Time, limit int) ([]MedicineSales, error) {
	if limit <= 0 {
		limit = 5
	}
	var rows []MedicineSales
	err := r.db.WithContext(ctx).Table("sales_transaction_items AS i").
		Select("i.medicine_id, m.name, m.unit, SUM(i.quantity) AS quantity, SUM(i.total_price) AS revenue").
		Joins("JOIN sales_transactions AS s ON s.id = i.transaction_id").
		Joins("JOIN medicines AS m ON m.id = i.medicine_id").
		Where("s.status = ? AND s.transaction_date >= ? AND s.transaction_date <= ?", model.SaleCompleted, from, to).
		Group("i.medicine_id, m.name, m.unit").
		Order("quantity DESC").Order("i.medicine_id ASC").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, nil
}
