package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/repository"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"
	"github.com/appdotbuilder/bidan-hebat-management/internal/testutil"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// fixture wires every service against a private in-memory database, with no
// cache and no job dispatcher.
type fixture struct {
	db        *gorm.DB
	stock     service.StockService
	sales     service.SalesService
	medicines service.MedicineService
	patients  service.PatientService
	settings  service.SettingsService
	dashboard service.DashboardService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewSQLiteDB(t)
	repos := repository.NewRepositories(db)
	tx := repository.NewTxManager(db)
	settings := service.NewSettingsService(repository.NewSettingsRepository(db))

	return &fixture{
		db:        db,
		stock:     service.NewStockService(tx, repos, nil, nil, time.UTC),
		sales:     service.NewSalesService(tx, repos, settings, nil, nil, time.UTC),
		medicines: service.NewMedicineService(tx, repos.Medicines(), nil, 30),
		patients:  service.NewPatientService(repos.Patients(), repos.Sales()),
		settings:  settings,
		dashboard: service.NewDashboardService(
			repository.NewReportRepository(db), repos.Sales(), nil, time.UTC, 30),
	}
}

// addMedicine creates an active medicine whose initial stock goes through
// the ledger.
func (f *fixture) addMedicine(t *testing.T, name, price string, stock, minStock int) uint {
	t.Helper()
	m, err := f.medicines.Create(context.Background(), dto.CreateMedicineRequest{
		Name:         name,
		Unit:         "tablet",
		Price:        decimal.RequireFromString(price),
		MinStock:     minStock,
		InitialStock: stock,
	})
	require.NoError(t, err)
	return m.ID
}

func (f *fixture) currentStock(t *testing.T, id uint) int {
	t.Helper()
	var m model.Medicine
	require.NoError(t, f.db.First(&m, id).Error)
	return m.CurrentStock
}

func (f *fixture) count(t *testing.T, table interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.Model(table).Count(&n).Error)
	return n
}

// requireLedgerConsistent asserts that every medicine's counter equals its
// signed ledger sum.
func (f *fixture) requireLedgerConsistent(t *testing.T) {
	t.Helper()
	report, err := f.stock.VerifyAllLedgers(context.Background())
	require.NoError(t, err)
	require.True(t, report.Consistent, "ledger mismatches: %+v", report.Mismatches)
}

func sale(method string, paid string, items ...dto.SaleItemRequest) dto.CreateSaleRequest {
	return dto.CreateSaleRequest{
		PaymentMethod:   method,
		PaymentReceived: decimal.RequireFromString(paid),
		Items:           items,
	}
}

func line(medicineID uint, qty int) dto.SaleItemRequest {
	return dto.SaleItemRequest{MedicineID: medicineID, Quantity: qty}
}

func strPtr(s string) *string { return &s }
