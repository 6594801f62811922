package service_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateSale_CompletesAndDebitsStock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "Paracetamol 500mg", "10.00", 50, 5)

	resp, err := f.sales.CreateSale(ctx, sale("CASH", "60", line(a, 5)))
	require.NoError(t, err)

	assert.Equal(t, "50.00", resp.TotalAmount.StringFixed(2))
	assert.Equal(t, "10.00", resp.ChangeAmount.StringFixed(2))
	assert.Equal(t, "60.00", resp.PaymentReceived.StringFixed(2))
	assert.Equal(t, string(model.SaleCompleted), resp.Status)
	require.Len(t, resp.Items, 1)
	assert.Equal(t, "Paracetamol 500mg", resp.Items[0].MedicineName)
	assert.Equal(t, "10.00", resp.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "50.00", resp.Items[0].TotalPrice.StringFixed(2))

	assert.Equal(t, 45, f.currentStock(t, a))

	movements, err := f.stock.ListMovementsForMedicine(ctx, a)
	require.NoError(t, err)
	require.Len(t, movements, 2, "initial stock IN + sale OUT")
	assert.Equal(t, "OUT", movements[0].Type)
	assert.Equal(t, 5, movements[0].Quantity)
	require.NotNil(t, movements[0].Notes)
	assert.Equal(t, fmt.Sprintf("Sales transaction #%d", resp.ID), *movements[0].Notes)

	f.requireLedgerConsistent(t)
}

func TestCreateSale_InsufficientStockWritesNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "Amoxicillin 500mg", "10.00", 20, 0)
	ledgerBefore := f.count(t, &model.StockTransaction{})

	_, err := f.sales.CreateSale(ctx, sale("CASH", "1000", line(a, 25)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInsufficientStock))

	var stockErr *service.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, a, stockErr.MedicineID)
	assert.Equal(t, 20, stockErr.Available)
	assert.Equal(t, 25, stockErr.Requested)

	assert.Equal(t, 20, f.currentStock(t, a))
	assert.Zero(t, f.count(t, &model.SalesTransaction{}))
	assert.Zero(t, f.count(t, &model.SalesTransactionItem{}))
	assert.Equal(t, ledgerBefore, f.count(t, &model.StockTransaction{}))
	f.requireLedgerConsistent(t)
}

func TestCreateSale_ShortLineAfterValidLineRollsBackEverything(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "Vitamin C", "2.50", 100, 0)
	b := f.addMedicine(t, "Ibuprofen", "4.00", 3, 0)

	_, err := f.sales.CreateSale(ctx, sale("DEBIT", "500", line(a, 10), line(b, 4)))
	var stockErr *service.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, b, stockErr.MedicineID)

	assert.Equal(t, 100, f.currentStock(t, a))
	assert.Equal(t, 3, f.currentStock(t, b))
	assert.Zero(t, f.count(t, &model.SalesTransaction{}))
	f.requireLedgerConsistent(t)
}

func TestCreateSale_FirstShortLineInInputOrderIsReported(t *testing.T) {
	f := newFixture(t)
	a := f.addMedicine(t, "A", "1.00", 5, 0)
	b := f.addMedicine(t, "B", "1.00", 5, 0)

	_, err := f.sales.CreateSale(context.Background(), sale("CASH", "100", line(b, 10), line(a, 10)))
	var stockErr *service.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, b, stockErr.MedicineID)
	assert.Equal(t, "B", stockErr.MedicineName)
}

func TestCreateSale_UnknownMedicineWinsOverShortStock(t *testing.T) {
	f := newFixture(t)
	a := f.addMedicine(t, "A", "1.00", 1, 0)

	_, err := f.sales.CreateSale(context.Background(), sale("CASH", "100", line(a, 10), line(999, 1)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrMedicineNotFound))
	assert.True(t, errors.Is(err, service.ErrNotFound))

	var nf *service.MedicineNotFoundError
	require.True(t, errors.As(err, &nf))
	assert.Equal(t, uint(999), nf.MedicineID)
	assert.Zero(t, f.count(t, &model.SalesTransaction{}))
}

func TestCreateSale_DuplicateLinesAreCheckedCumulatively(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "Antacid", "3.00", 10, 0)

	_, err := f.sales.CreateSale(ctx, sale("CASH", "100", line(a, 6), line(a, 6)))
	var stockErr *service.InsufficientStockError
	require.True(t, errors.As(err, &stockErr))
	assert.Equal(t, 10, stockErr.Available)
	assert.Equal(t, 12, stockErr.Requested)
	assert.Equal(t, 10, f.currentStock(t, a))

	resp, err := f.sales.CreateSale(ctx, sale("CASH", "30", line(a, 4), line(a, 6)))
	require.NoError(t, err)
	assert.Equal(t, "30.00", resp.TotalAmount.StringFixed(2))
	assert.Equal(t, "0.00", resp.ChangeAmount.StringFixed(2))
	assert.Equal(t, 0, f.currentStock(t, a))
	f.requireLedgerConsistent(t)
}

func TestCreateSale_PricesEachLineAndSums(t *testing.T) {
	f := newFixture(t)
	a := f.addMedicine(t, "Cough Syrup", "12.25", 10, 0)
	b := f.addMedicine(t, "Bandage", "7.50", 10, 0)

	resp, err := f.sales.CreateSale(context.Background(), sale("TRANSFER", "100", line(a, 3), line(b, 2)))
	require.NoError(t, err)

	require.Len(t, resp.Items, 2)
	assert.Equal(t, a, resp.Items[0].MedicineID, "items keep input order")
	assert.Equal(t, "36.75", resp.Items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "15.00", resp.Items[1].TotalPrice.StringFixed(2))
	assert.Equal(t, "51.75", resp.TotalAmount.StringFixed(2))
	assert.Equal(t, "48.25", resp.ChangeAmount.StringFixed(2))
	assert.Equal(t, "TRANSFER", resp.PaymentMethod)
}

func TestCreateSale_InsufficientPaymentWritesNothing(t *testing.T) {
	f := newFixture(t)
	a := f.addMedicine(t, "A", "10.00", 50, 0)

	_, err := f.sales.CreateSale(context.Background(), sale("CASH", "49.99", line(a, 5)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInsufficientPayment))

	var payErr *service.InsufficientPaymentError
	require.True(t, errors.As(err, &payErr))
	assert.Equal(t, "50.00", payErr.Total.StringFixed(2))
	assert.Equal(t, "49.99", payErr.Received.StringFixed(2))

	assert.Equal(t, 50, f.currentStock(t, a))
	assert.Zero(t, f.count(t, &model.SalesTransaction{}))
}

func TestCreateSale_SubCentPaymentIsRejected(t *testing.T) {
	f := newFixture(t)
	a := f.addMedicine(t, "A", "10.00", 50, 0)

	_, err := f.sales.CreateSale(context.Background(), sale("CASH", "49.995", line(a, 5)))
	require.Error(t, err)
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
	assert.Equal(t, 50, f.currentStock(t, a))
	assert.Zero(t, f.count(t, &model.SalesTransaction{}))

	// Trailing zeros are still two-decimal amounts.
	resp, err := f.sales.CreateSale(context.Background(), sale("CASH", "50.000", line(a, 5)))
	require.NoError(t, err)
	assert.Equal(t, "50.00", resp.PaymentReceived.StringFixed(2))
	assert.True(t, resp.ChangeAmount.IsZero())
	f.requireLedgerConsistent(t)
}

func TestCreateSale_RejectsBadInput(t *testing.T) {
	f := newFixture(t)
	a := f.addMedicine(t, "A", "10.00", 50, 0)

	tests := []struct {
		name string
		req  dto.CreateSaleRequest
		want error
	}{
		{"zero quantity", sale("CASH", "10", line(a, 0)), service.ErrInvalidQuantity},
		{"negative quantity", sale("CASH", "10", line(a, -2)), service.ErrInvalidQuantity},
		{"empty cart", sale("CASH", "10"), service.ErrInvalidInput},
		{"unknown payment method", sale("BITCOIN", "10", line(a, 1)), service.ErrInvalidInput},
		{"zero payment", sale("CASH", "0", line(a, 1)), service.ErrInvalidInput},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.sales.CreateSale(context.Background(), tc.req)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
	assert.True(t, errors.Is(service.ErrInvalidQuantity, service.ErrInvalidInput))
	assert.Equal(t, 50, f.currentStock(t, a))
	assert.Zero(t, f.count(t, &model.SalesTransaction{}))
}

func TestCreateSale_InactiveMedicineCannotBeSold(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "Discontinued", "5.00", 10, 0)
	_, err := f.medicines.SetActive(ctx, a, false)
	require.NoError(t, err)

	_, err = f.sales.CreateSale(ctx, sale("CASH", "100", line(a, 1)))
	assert.True(t, errors.Is(err, service.ErrMedicineInactive))
	assert.Equal(t, 10, f.currentStock(t, a))
}

func TestCreateSale_UnknownPatient(t *testing.T) {
	f := newFixture(t)
	a := f.addMedicine(t, "A", "10.00", 50, 0)
	req := sale("CASH", "100", line(a, 1))
	missing := uint(42)
	req.PatientID = &missing

	_, err := f.sales.CreateSale(context.Background(), req)
	assert.True(t, errors.Is(err, service.ErrPatientNotFound))
	assert.Equal(t, 50, f.currentStock(t, a))
}

func TestPricingSnapshotSurvivesPriceChange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "A", "10.00", 50, 0)

	created, err := f.sales.CreateSale(ctx, sale("CASH", "100", line(a, 2)))
	require.NoError(t, err)

	newPrice := decimal.RequireFromString("99.50")
	_, err = f.medicines.Update(ctx, a, dto.UpdateMedicineRequest{Price: &newPrice})
	require.NoError(t, err)

	got, err := f.sales.GetSaleByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "10.00", got.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "20.00", got.Items[0].TotalPrice.StringFixed(2))
	assert.Equal(t, "20.00", got.TotalAmount.StringFixed(2))
}

func TestCancelSale_RestoresStockAndIsTerminal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "A", "10.00", 50, 0)

	created, err := f.sales.CreateSale(ctx, sale("CASH", "60", line(a, 5)))
	require.NoError(t, err)
	require.Equal(t, 45, f.currentStock(t, a))

	newPrice := decimal.RequireFromString("11.00")
	_, err = f.medicines.Update(ctx, a, dto.UpdateMedicineRequest{Price: &newPrice})
	require.NoError(t, err)

	outcome, err := f.sales.CancelSale(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, service.CancelOK, outcome)
	assert.True(t, outcome.Cancelled())
	assert.Equal(t, 50, f.currentStock(t, a))

	got, err := f.sales.GetSaleByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, string(model.SaleCancelled), got.Status)

	movements, err := f.stock.ListMovementsForMedicine(ctx, a)
	require.NoError(t, err)
	require.Len(t, movements, 3)
	assert.Equal(t, "IN", movements[0].Type)
	assert.Equal(t, 5, movements[0].Quantity)
	assert.Contains(t, *movements[0].Notes, fmt.Sprintf("#%d", created.ID))
	f.requireLedgerConsistent(t)

	again, err := f.sales.CancelSale(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, service.CancelAlreadyCancelled, again)
	assert.False(t, again.Cancelled())
	assert.Equal(t, 50, f.currentStock(t, a))
	assert.Equal(t, int64(3), f.count(t, &model.StockTransaction{}))
}

func TestCancelSale_MultipleLinesCreditEachLine(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "A", "1.00", 10, 0)
	b := f.addMedicine(t, "B", "2.00", 10, 0)

	created, err := f.sales.CreateSale(ctx, sale("CREDIT", "100", line(b, 3), line(a, 2), line(b, 1)))
	require.NoError(t, err)
	assert.Equal(t, 8, f.currentStock(t, a))
	assert.Equal(t, 6, f.currentStock(t, b))

	outcome, err := f.sales.CancelSale(ctx, created.ID)
	require.NoError(t, err)
	require.True(t, outcome.Cancelled())

	assert.Equal(t, 10, f.currentStock(t, a))
	assert.Equal(t, 10, f.currentStock(t, b))

	var ins int64
	require.NoError(t, f.db.Model(&model.StockTransaction{}).
		Where("type = ? AND notes LIKE ?", "IN", "Cancellation%").Count(&ins).Error)
	assert.Equal(t, int64(3), ins, "one compensating entry per original line")
	f.requireLedgerConsistent(t)
}

func TestCancelSale_NotFound(t *testing.T) {
	f := newFixture(t)

	outcome, err := f.sales.CancelSale(context.Background(), 12345)
	require.NoError(t, err)
	assert.Equal(t, service.CancelNotFound, outcome)
	assert.False(t, outcome.Cancelled())
	assert.Equal(t, "not_found", outcome.String())
}

func TestCancelSale_StorageFailureIsNotNotFound(t *testing.T) {
	f := newFixture(t)
	sqlDB, err := f.db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	outcome, err := f.sales.CancelSale(context.Background(), 1)
	require.Error(t, err)
	assert.Equal(t, service.CancelFailed, outcome)
	assert.False(t, outcome.Cancelled())
	assert.Equal(t, "failed", outcome.String())
}

func TestCancelSale_PendingSaleCreditsNothing(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "A", "10.00", 50, 0)

	pending := &model.SalesTransaction{
		TotalAmount:     decimal.RequireFromString("10.00"),
		PaymentMethod:   model.PaymentCash,
		PaymentReceived: decimal.RequireFromString("10.00"),
		ChangeAmount:    decimal.Zero,
		Status:          model.SalePending,
		TransactionDate: time.Now().UTC(),
		Items: []model.SalesTransactionItem{{
			MedicineID: a,
			Quantity:   1,
			UnitPrice:  decimal.RequireFromString("10.00"),
			TotalPrice: decimal.RequireFromString("10.00"),
		}},
	}
	require.NoError(t, f.db.Create(pending).Error)
	ledgerBefore := f.count(t, &model.StockTransaction{})

	outcome, err := f.sales.CancelSale(ctx, pending.ID)
	require.NoError(t, err)
	assert.Equal(t, service.CancelOK, outcome)
	assert.Equal(t, 50, f.currentStock(t, a))
	assert.Equal(t, ledgerBefore, f.count(t, &model.StockTransaction{}))
}

func TestGetReceipt_UsesBrandingFallbacks(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "A", "10.00", 50, 0)
	created, err := f.sales.CreateSale(ctx, sale("CASH", "10", line(a, 1)))
	require.NoError(t, err)

	receipt, err := f.sales.GetReceipt(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, service.DefaultClinicName, receipt.Clinic.Name)
	assert.Nil(t, receipt.Clinic.Address)
	assert.Nil(t, receipt.Clinic.Logo)
	assert.Nil(t, receipt.Patient)
	assert.Equal(t, created.ID, receipt.Transaction.ID)
	assert.Equal(t, "A", receipt.Transaction.Items[0].MedicineName)
	assert.Equal(t, "tablet", receipt.Transaction.Items[0].Unit)
}

func TestGetReceipt_WithPatientAndBranding(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "A", "10.00", 50, 0)

	_, err := f.settings.Upsert(ctx, model.SettingClinicName, dto.UpsertSettingRequest{Value: strPtr("Klinik Sehat")})
	require.NoError(t, err)
	_, err = f.settings.Upsert(ctx, model.SettingClinicAddress, dto.UpsertSettingRequest{Value: strPtr("Jl. Merdeka 1")})
	require.NoError(t, err)

	p, err := f.patients.Create(ctx, dto.CreatePatientRequest{Name: "Siti Aminah"})
	require.NoError(t, err)

	req := sale("CASH", "20", line(a, 2))
	req.PatientID = &p.ID
	created, err := f.sales.CreateSale(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, created.PatientName)
	assert.Equal(t, "Siti Aminah", *created.PatientName)

	receipt, err := f.sales.GetReceipt(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "Klinik Sehat", receipt.Clinic.Name)
	require.NotNil(t, receipt.Clinic.Address)
	assert.Equal(t, "Jl. Merdeka 1", *receipt.Clinic.Address)
	require.NotNil(t, receipt.Patient)
	assert.Equal(t, p.ID, receipt.Patient.ID)
}

func TestGetReceipt_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.GetReceipt(context.Background(), 77)
	assert.True(t, errors.Is(err, service.ErrSaleNotFound))
	assert.True(t, errors.Is(err, service.ErrNotFound))
}

func TestListSales_NewestFirstAndRanges(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.addMedicine(t, "A", "1.00", 100, 0)

	first, err := f.sales.CreateSale(ctx, sale("CASH", "10", line(a, 1)))
	require.NoError(t, err)
	second, err := f.sales.CreateSale(ctx, sale("CASH", "10", line(a, 2)))
	require.NoError(t, err)

	list, err := f.sales.ListSales(ctx, dto.SalesFilter{Page: 1, Limit: 50})
	require.NoError(t, err)
	assert.Equal(t, int64(2), list.Total)
	require.Len(t, list.Data, 2)
	assert.Equal(t, second.ID, list.Data[0].ID)
	assert.Equal(t, first.ID, list.Data[1].ID)

	today, err := f.sales.ListSalesToday(ctx)
	require.NoError(t, err)
	assert.Len(t, today, 2)

	now := time.Now()
	inRange, err := f.sales.ListSalesInRange(ctx, now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Len(t, inRange, 2)

	future, err := f.sales.ListSalesInRange(ctx, now.Add(time.Hour), now.Add(2*time.Hour))
	require.NoError(t, err)
	assert.Empty(t, future)

	_, err = f.sales.ListSalesInRange(ctx, now, now.Add(-time.Hour))
	assert.True(t, errors.Is(err, service.ErrInvalidInput))

	_, err = f.sales.CancelSale(ctx, first.ID)
	require.NoError(t, err)
	cancelled, err := f.sales.ListSales(ctx, dto.SalesFilter{Status: "CANCELLED", Page: 1, Limit: 50})
	require.NoError(t, err)
	require.Len(t, cancelled.Data, 1)
	assert.Equal(t, first.ID, cancelled.Data[0].ID)

	_, err = f.sales.ListSales(ctx, dto.SalesFilter{From: "yesterday"})
	assert.True(t, errors.Is(err, service.ErrInvalidInput))
}

func TestGetSaleByID_NotFound(t *testing.T) {
	f := newFixture(t)
	_, err := f.sales.GetSaleByID(context.Background(), 1)
	assert.True(t, errors.Is(err, service.ErrSaleNotFound))
}
