package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMedicineCreate_InitialStockGoesThroughLedger(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	m, err := f.medicines.Create(ctx, dto.CreateMedicineRequest{
		Name:         "  Metformin 500mg ",
		Price:        decimal.RequireFromString("3.456"),
		MinStock:     10,
		InitialStock: 40,
		ExpiryDate:   strPtr("2030-06-30"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Metformin 500mg", m.Name)
	assert.Equal(t, "tablet", m.Unit)
	assert.Equal(t, "3.46", m.Price.StringFixed(2))
	assert.Equal(t, 40, m.CurrentStock)
	assert.False(t, m.IsLowStock)
	require.NotNil(t, m.ExpiryDate)
	assert.Equal(t, "2030-06-30", *m.ExpiryDate)

	movements, err := f.stock.ListMovementsForMedicine(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, movements, 1)
	assert.Equal(t, "IN", movements[0].Type)
	assert.Equal(t, 40, movements[0].Quantity)
	assert.Equal(t, "Initial stock", *movements[0].Notes)
	f.requireLedgerConsistent(t)
}

func TestMedicineCreate_ZeroStockWritesNoLedgerEntry(t *testing.T) {
	f := newFixture(t)
	f.addMedicine(t, "Zinc", "1.00", 0, 0)
	assert.Zero(t, f.count(t, &model.StockTransaction{}))
}

func TestMedicineCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	tests := []struct {
		name string
		req  dto.CreateMedicineRequest
	}{
		{"blank name", dto.CreateMedicineRequest{Name: " ", Price: decimal.NewFromInt(1)}},
		{"zero price", dto.CreateMedicineRequest{Name: "A", Price: decimal.Zero}},
		{"negative min stock", dto.CreateMedicineRequest{Name: "A", Price: decimal.NewFromInt(1), MinStock: -1}},
		{"negative initial stock", dto.CreateMedicineRequest{Name: "A", Price: decimal.NewFromInt(1), InitialStock: -5}},
		{"bad expiry", dto.CreateMedicineRequest{Name: "A", Price: decimal.NewFromInt(1), ExpiryDate: strPtr("30-06-2030")}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.medicines.Create(ctx, tc.req)
			assert.True(t, errors.Is(err, service.ErrInvalidInput), "got %v", err)
		})
	}
	assert.Zero(t, f.count(t, &model.Medicine{}))
}

func TestMedicineUpdate_PatchesOnlyGivenFields(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created, err := f.medicines.Create(ctx, dto.CreateMedicineRequest{
		Name:         "Amlodipine",
		Category:     strPtr("cardio"),
		Price:        decimal.RequireFromString("8.00"),
		InitialStock: 12,
		ExpiryDate:   strPtr("2031-01-01"),
	})
	require.NoError(t, err)

	minStock := 20
	updated, err := f.medicines.Update(ctx, created.ID, dto.UpdateMedicineRequest{MinStock: &minStock})
	require.NoError(t, err)
	assert.Equal(t, "Amlodipine", updated.Name)
	assert.Equal(t, "cardio", *updated.Category)
	assert.Equal(t, 12, updated.CurrentStock)
	assert.Equal(t, 20, updated.MinStock)
	assert.True(t, updated.IsLowStock)
	require.NotNil(t, updated.ExpiryDate)

	cleared, err := f.medicines.Update(ctx, created.ID, dto.UpdateMedicineRequest{ClearExpiry: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.ExpiryDate)

	zero := decimal.Zero
	_, err = f.medicines.Update(ctx, created.ID, dto.UpdateMedicineRequest{Price: &zero})
	assert.True(t, errors.Is(err, service.ErrInvalidInput))

	_, err = f.medicines.Update(ctx, 999, dto.UpdateMedicineRequest{MinStock: &minStock})
	assert.True(t, errors.Is(err, service.ErrMedicineNotFound))
}

func TestMedicineSetActive_HidesFromDefaultListing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "A", "1.00", 1, 0)
	f.addMedicine(t, "B", "1.00", 1, 0)

	resp, err := f.medicines.SetActive(ctx, a, false)
	require.NoError(t, err)
	assert.False(t, resp.Active)

	active, err := f.medicines.List(ctx, dto.MedicineFilter{Active: "true", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), active.Total)
	assert.Equal(t, "B", active.Data[0].Name)

	all, err := f.medicines.List(ctx, dto.MedicineFilter{Active: "all", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.Total)

	_, err = f.medicines.SetActive(ctx, 999, true)
	assert.True(t, errors.Is(err, service.ErrMedicineNotFound))
}

func TestMedicineList_Search(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMedicine(t, "Paracetamol Syrup", "1.00", 1, 0)
	f.addMedicine(t, "Ibuprofen", "1.00", 1, 0)

	got, err := f.medicines.List(ctx, dto.MedicineFilter{Search: "PARA", Active: "true", Page: 1, Limit: 20})
	require.NoError(t, err)
	require.Len(t, got.Data, 1)
	assert.Equal(t, "Paracetamol Syrup", got.Data[0].Name)
}

func TestMedicineListLowStockAndExpiring(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	low := f.addMedicine(t, "Low", "1.00", 3, 5)
	f.addMedicine(t, "Plenty", "1.00", 100, 5)

	soon := time.Now().UTC().AddDate(0, 0, 10).Format("2006-01-02")
	later := time.Now().UTC().AddDate(1, 0, 0).Format("2006-01-02")
	expiring, err := f.medicines.Create(ctx, dto.CreateMedicineRequest{
		Name: "Expiring", Price: decimal.NewFromInt(1), InitialStock: 10, ExpiryDate: &soon,
	})
	require.NoError(t, err)
	_, err = f.medicines.Create(ctx, dto.CreateMedicineRequest{
		Name: "Fresh", Price: decimal.NewFromInt(1), InitialStock: 10, ExpiryDate: &later,
	})
	require.NoError(t, err)

	lows, err := f.medicines.ListLowStock(ctx)
	require.NoError(t, err)
	require.Len(t, lows, 1)
	assert.Equal(t, low, lows[0].ID)

	exp, err := f.medicines.ListExpiring(ctx, 0)
	require.NoError(t, err)
	require.Len(t, exp, 1)
	assert.Equal(t, expiring.ID, exp[0].ID)

	exp, err = f.medicines.ListExpiring(ctx, 400)
	require.NoError(t, err)
	assert.Len(t, exp, 2)
}

func TestPatientLifecycle(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	p, err := f.patients.Create(ctx, dto.CreatePatientRequest{
		Name:        "Dewi Lestari",
		DateOfBirth: strPtr("1990-04-12"),
		Gender:      strPtr("female"),
	})
	require.NoError(t, err)
	require.NotNil(t, p.DateOfBirth)
	assert.Equal(t, "1990-04-12", *p.DateOfBirth)

	phone := "0812-0000-1111"
	updated, err := f.patients.Update(ctx, p.ID, dto.UpdatePatientRequest{Phone: &phone})
	require.NoError(t, err)
	assert.Equal(t, "Dewi Lestari", updated.Name)
	assert.Equal(t, phone, *updated.Phone)

	list, err := f.patients.List(ctx, dto.PatientFilter{Search: "dewi", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	require.NoError(t, f.patients.Delete(ctx, p.ID))
	_, err = f.patients.GetByID(ctx, p.ID)
	assert.True(t, errors.Is(err, service.ErrPatientNotFound))
	assert.True(t, errors.Is(f.patients.Delete(ctx, p.ID), service.ErrPatientNotFound))
}

func TestPatientDelete_RefusedWhileSalesReferenceIt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "A", "1.00", 10, 0)
	p, err := f.patients.Create(ctx, dto.CreatePatientRequest{Name: "Rina"})
	require.NoError(t, err)

	req := sale("CASH", "5", line(a, 2))
	req.PatientID = &p.ID
	created, err := f.sales.CreateSale(ctx, req)
	require.NoError(t, err)

	err = f.patients.Delete(ctx, p.ID)
	assert.True(t, errors.Is(err, service.ErrConflict))

	history, err := f.patients.ListSales(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, created.ID, history[0].ID)
}

func TestPatientCreate_Validation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.patients.Create(ctx, dto.CreatePatientRequest{Name: "  "})
	assert.True(t, errors.Is(err, service.ErrInvalidInput))

	_, err = f.patients.Create(ctx, dto.CreatePatientRequest{Name: "X", DateOfBirth: strPtr("12/04/1990")})
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
}

func TestSettings_UpsertGetDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.settings.Get(ctx, model.SettingClinicPhone)
	assert.True(t, errors.Is(err, service.ErrSettingNotFound))

	_, err = f.settings.Upsert(ctx, model.SettingClinicPhone, dto.UpsertSettingRequest{Value: strPtr("021-555")})
	require.NoError(t, err)
	_, err = f.settings.Upsert(ctx, model.SettingClinicPhone, dto.UpsertSettingRequest{Value: strPtr("021-777")})
	require.NoError(t, err)

	got, err := f.settings.Get(ctx, model.SettingClinicPhone)
	require.NoError(t, err)
	assert.Equal(t, "021-777", *got.Value)

	all, err := f.settings.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = f.settings.Upsert(ctx, " ", dto.UpsertSettingRequest{Value: strPtr("x")})
	assert.True(t, errors.Is(err, service.ErrInvalidInput))

	require.NoError(t, f.settings.Delete(ctx, model.SettingClinicPhone))
	assert.True(t, errors.Is(f.settings.Delete(ctx, model.SettingClinicPhone), service.ErrSettingNotFound))
}

func TestClinicInfo_BlankNameFallsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.settings.Upsert(ctx, model.SettingClinicName, dto.UpsertSettingRequest{Value: strPtr("   ")})
	require.NoError(t, err)

	info, err := f.settings.ClinicInfo(ctx)
	require.NoError(t, err)
	assert.Equal(t, service.DefaultClinicName, info.Name)
	assert.Nil(t, info.Phone)
}

func TestDashboard_StatsAndSummary(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "A", "10.00", 50, 5)
	b := f.addMedicine(t, "B", "2.50", 4, 5)
	_, err := f.patients.Create(ctx, dto.CreatePatientRequest{Name: "Putri"})
	require.NoError(t, err)

	_, err = f.sales.CreateSale(ctx, sale("CASH", "100", line(a, 3)))
	require.NoError(t, err)
	_, err = f.sales.CreateSale(ctx, sale("TRANSFER", "100", line(a, 1), line(b, 2)))
	require.NoError(t, err)
	cancelled, err := f.sales.CreateSale(ctx, sale("CASH", "100", line(a, 5)))
	require.NoError(t, err)
	_, err = f.sales.CancelSale(ctx, cancelled.ID)
	require.NoError(t, err)

	stats, err := f.dashboard.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalMedicines)
	assert.Equal(t, int64(1), stats.LowStockCount)
	assert.Equal(t, int64(1), stats.TotalPatients)
	assert.Equal(t, int64(2), stats.TodaySalesCount)
	assert.Equal(t, "45.00", stats.TodayRevenue.StringFixed(2))
	assert.Equal(t, "45.00", stats.MonthRevenue.StringFixed(2))
	assert.Len(t, stats.RecentSales, 3)

	summary, err := f.dashboard.SalesSummary(ctx, dto.RangeFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), summary.CompletedCount)
	assert.Equal(t, int64(1), summary.CancelledCount)
	assert.Equal(t, "45.00", summary.Revenue.StringFixed(2))
	require.Len(t, summary.ByPaymentMethod, 4)
	assert.Equal(t, "30.00", summary.ByPaymentMethod["CASH"].StringFixed(2))
	assert.Equal(t, "15.00", summary.ByPaymentMethod["TRANSFER"].StringFixed(2))
	assert.True(t, summary.ByPaymentMethod["DEBIT"].IsZero())

	top, err := f.dashboard.TopMedicines(ctx, dto.RangeFilter{Limit: 5})
	require.NoError(t, err)
	require.Len(t, top, 2)
	assert.Equal(t, a, top[0].MedicineID)
	assert.Equal(t, int64(4), top[0].Quantity)
	assert.Equal(t, "40.00", top[0].Revenue.StringFixed(2))

	_, err = f.dashboard.SalesSummary(ctx, dto.RangeFilter{From: "2025-02-01", To: "2025-01-01"})
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
}

func TestDomainErrorFamilies(t *testing.T) {
	assert.True(t, errors.Is(service.ErrSaleNotFound, service.ErrNotFound))
	assert.True(t, errors.Is(service.ErrSettingNotFound, service.ErrNotFound))
	assert.False(t, errors.Is(service.ErrNotFound, service.ErrSaleNotFound))
	assert.False(t, errors.Is(service.ErrSaleNotFound, service.ErrPatientNotFound))
	assert.False(t, errors.Is(service.ErrInsufficientStock, service.ErrInvalidInput))

	err := &service.InsufficientStockError{MedicineID: 1, MedicineName: "A", Available: 2, Requested: 3}
	assert.True(t, errors.Is(err, service.ErrInsufficientStock))
	assert.Equal(t, "insufficient stock for A: available 2, requested 3", err.Error())
}
