package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

type DashboardStats struct {
	TotalMedicines    int64           `json:"total_medicines"`
	LowStockCount     int64           `json:"low_stock_count"`
	ExpiringSoonCount int64           `json:"expiring_soon_count"`
	TotalPatients     int64           `json:"total_patients"`
	TodaySalesCount   int64           `json:"today_sales_count"`
	TodayRevenue      decimal.Decimal `json:"today_revenue"`
	MonthRevenue      decimal.Decimal `json:"month_revenue"`
	RecentSales       []SaleResponse  `json:"recent_sales"`
	GeneratedAt       string          `json:"generated_at"`
}

// RangeFilter is a closed [from, to] interval; dates are YYYY-MM-DD or
// RFC 3339. Empty bounds default to the current month.
type RangeFilter struct {
	From  string `form:"from"`
	To    string `form:"to"`
	Limit int    `form:"limit,default=5" validate:"min=1,max=50"`
}

type SalesSummary struct {
	From            string                     `json:"from"`
	To              string                     `json:"to"`
	CompletedCount  int64                      `json:"completed_count"`
	Revenue         decimal.Decimal            `json:"revenue"`
	CancelledCount  int64                      `json:"cancelled_count"`
	ByPaymentMethod map[string]decimal.Decimal `json:"by_payment_method"`
}

type TopMedicine struct {
	MedicineID uint            `json:"medicine_id"`
	Name       string          `json:"name"`
	Unit       string          `json:"unit"`
	Quantity   int64           `json:"quantity"`
	Revenue    decimal.Decimal `json:"revenue"`
}

// TimeRange is a required closed [from, to] interval given as RFC 3339
// timestamps, used by the explicit range endpoints.
type TimeRange struct {
	From time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00" validate:"required"`
	To   time.Time `form:"to"   time_format:"2006-01-02T15:04:05Z07:00" validate:"required"`
}
