package service

import (
	"context"
	"fmt"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/infra"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/repository"

	"github.com/shopspring/decimal"
)

const recentSalesLimit = 5

// DashboardService aggregates read-only statistics. Stats are served from
// the cache when possible; every write path invalidates them.
type DashboardService interface {
	Stats(ctx context.Context) (*dto.DashboardStats, error)
	SalesSummary(ctx context.Context, filter dto.RangeFilter) (*dto.SalesSummary, error)
	TopMedicines(ctx context.Context, filter dto.RangeFilter) ([]dto.TopMedicine, error)
}

type dashboardService struct {
	reports     repository.ReportRepository
	sales       repository.SalesRepository
	cache       *infra.Cache
	loc         *time.Location
	warningDays int
	now         func() time.Time
}

func NewDashboardService(
	reports repository.ReportRepository,
	sales repository.SalesRepository,
	cache *infra.Cache,
	loc *time.Location,
	expiryWarningDays int,
) DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	if expiryWarningDays <= 0 {
		expiryWarningDays = 30
	}
	return &dashboardService{
		reports:     reports,
		sales:       sales,
		cache:       cache,
		loc:         loc,
		warningDays: expiryWarningDays,
		now:         time.Now,
	}
}

func (s *dashboardService) Stats(ctx context.Context) (*dto.DashboardStats, error) {
	var cached dto.DashboardStats
	if s.cache.GetJSON(ctx, dashboardStatsKey, &cached) {
		return &cached, nil
	}

	now := s.now()
	stats := &dto.DashboardStats{GeneratedAt: formatTime(now)}
	var err error
	if stats.TotalMedicines, err = s.reports.CountMedicines(ctx); err != nil {
		return nil, fmt.Errorf("count medicines: %w", err)
	}
	if stats.LowStockCount, err = s.reports.CountLowStock(ctx); err != nil {
		return nil, fmt.Errorf("count low stock: %w", err)
	}
	expiryLimit := now.UTC().Truncate(24*time.Hour).AddDate(0, 0, s.warningDays)
	if stats.ExpiringSoonCount, err = s.reports.CountExpiringBefore(ctx, expiryLimit); err != nil {
		return nil, fmt.Errorf("count expiring: %w", err)
	}
	if stats.TotalPatients, err = s.reports.CountPatients(ctx); err != nil {
		return nil, fmt.Errorf("count patients: %w", err)
	}

	dayFrom, dayTo := dayRange(now, s.loc)
	today, err := s.reports.SalesBetween(ctx, dayFrom, dayTo, model.SaleCompleted)
	if err != nil {
		return nil, fmt.Errorf("today's sales: %w", err)
	}
	stats.TodaySalesCount = today.Count
	stats.TodayRevenue = today.Revenue

	monthFrom, monthTo := monthRange(now, s.loc)
	month, err := s.reports.SalesBetween(ctx, monthFrom, monthTo, model.SaleCompleted)
	if err != nil {
		return nil, fmt.Errorf("month's sales: %w", err)
	}
	stats.MonthRevenue = month.Revenue

	recent, _, err := s.sales.List(ctx, repository.SalesFilter{Page: 1, Limit: recentSalesLimit})
	if err != nil {
		return nil, fmt.Errorf("recent sales: %w", err)
	}
	stats.RecentSales = salesToResponse(recent)

	s.cache.SetJSON(ctx, dashboardStatsKey, stats)
	return stats, nil
}

func (s *dashboardService) SalesSummary(ctx context.Context, filter dto.RangeFilter) (*dto.SalesSummary, error) {
	from, to, err := s.resolveRange(filter)
	if err != nil {
		return nil, err
	}
	completed, err := s.reports.SalesBetween(ctx, from, to, model.SaleCompleted)
	if err != nil {
		return nil, fmt.Errorf("completed sales: %w", err)
	}
	cancelled, err := s.reports.SalesBetween(ctx, from, to, model.SaleCancelled)
	if err != nil {
		return nil, fmt.Errorf("cancelled sales: %w", err)
	}
	byMethod, err := s.reports.RevenueByPaymentMethod(ctx, from, to)
	if err != nil {
		return nil, fmt.Errorf("revenue by payment method: %w", err)
	}

	summary := &dto.SalesSummary{
		From:            formatTime(from),
		To:              formatTime(to),
		CompletedCount:  completed.Count,
		Revenue:         completed.Revenue,
		CancelledCount:  cancelled.Count,
		ByPaymentMethod: make(map[string]decimal.Decimal, len(model.PaymentMethods)),
	}
	for _, pm := range model.PaymentMethods {
		v, ok := byMethod[pm]
		if !ok {
			v = decimal.Zero
		}
		summary.ByPaymentMethod[string(pm)] = v
	}
	return summary, nil
}

func (s *dashboardService) TopMedicines(ctx context.Context, filter dto.RangeFilter) ([]dto.TopMedicine, error) {
	from, to, err := s.resolveRange(filter)
	if err != nil {
		return nil, err
	}
	rows, err := s.reports.TopMedicines(ctx, from, to, filter.Limit)
	if err != nil {
		return nil, fmt.Errorf("top medicines: %w", err)
	}
	out := make([]dto.TopMedicine, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.TopMedicine{
			MedicineID: r.MedicineID,
			Name:       r.Name,
			Unit:       r.Unit,
			Quantity:   r.Quantity,
			Revenue:    r.Revenue,
		})
	}
	return out, nil
}

// resolveRange parses the filter bounds; missing bounds default to the
// current month up to the end of today.
func (s *dashboardService) resolveRange(filter dto.RangeFilter) (time.Time, time.Time, error) {
	defFrom, defTo := monthRange(s.now(), s.loc)
	from, err := parseBound(filter.From, s.loc, false)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err := parseBound(filter.To, s.loc, true)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if from == nil {
		from = &defFrom
	}
	if to == nil {
		to = &defTo
	}
	if to.Before(*from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: range end precedes range start", ErrInvalidInput)
	}
	return *from, *to, nil
}
