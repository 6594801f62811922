package service

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
)

const dateLayout = "2006-01-02"

func distinctSorted(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// parseBound parses an RFC 3339 timestamp or a YYYY-MM-DD date in loc. A bare
// date used as an upper bound stands for the last instant of that day. The
// result is in UTC, the zone timestamps are stored in.
func parseBound(s string, loc *time.Location, upper bool) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		t = t.UTC()
		return &t, nil
	}
	d, err := time.ParseInLocation(dateLayout, s, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: %q is neither YYYY-MM-DD nor RFC 3339", ErrInvalidInput, s)
	}
	if upper {
		d = d.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	d = d.UTC()
	return &d, nil
}

// dayRange returns the closed interval covering the calendar day of t in loc.
func dayRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1).Add(-time.Nanosecond)
	return start.UTC(), end.UTC()
}

// monthRange returns the closed interval from the first of t's month to the
// end of t's day, in loc.
func monthRange(t time.Time, loc *time.Location) (time.Time, time.Time) {
	local := t.In(loc)
	start := time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)
	_, end := dayRange(t, loc)
	return start.UTC(), end
}

// parseDate parses a calendar date (expiry, date of birth) as UTC midnight.
func parseDate(s *string) (*time.Time, error) {
	if s == nil || *s == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, *s)
	if err != nil {
		return nil, fmt.Errorf("%w: date %q must be YYYY-MM-DD", ErrInvalidInput, *s)
	}
	return &d, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

func formatDate(t *time.Time) *string {
	if t == nil {
		return nil
	}
	s := t.UTC().Format(dateLayout)
	return &s
}

// ─── Mappers ─────────────────────────────────────────────────────────────────

func medicineToResponse(m *model.Medicine) dto.MedicineResponse {
	return dto.MedicineResponse{
		ID:           m.ID,
		Name:         m.Name,
		GenericName:  m.GenericName,
		Category:     m.Category,
		Unit:         m.Unit,
		Price:        m.Price.Round(2),
		MinStock:     m.MinStock,
		CurrentStock: m.CurrentStock,
		IsLowStock:   m.IsLowStock(),
		ExpiryDate:   formatDate(m.ExpiryDate),
		BatchNumber:  m.BatchNumber,
		Supplier:     m.Supplier,
		Active:       m.Active,
		CreatedAt:    formatTime(m.CreatedAt),
		UpdatedAt:    formatTime(m.UpdatedAt),
	}
}

func stockTxToResponse(t *model.StockTransaction) dto.StockTransactionResponse {
	name := ""
	if t.Medicine != nil {
		name = t.Medicine.Name
	}
	return dto.StockTransactionResponse{
		ID:              t.ID,
		MedicineID:      t.MedicineID,
		MedicineName:    name,
		Type:            string(t.Type),
		Quantity:        t.Quantity,
		Notes:           t.Notes,
		TransactionDate: formatTime(t.TransactionDate),
		CreatedAt:       formatTime(t.CreatedAt),
	}
}

func stockTxsToResponse(txs []model.StockTransaction) []dto.StockTransactionResponse {
	out := make([]dto.StockTransactionResponse, 0, len(txs))
	for i := range txs {
		out = append(out, stockTxToResponse(&txs[i]))
	}
	return out
}

func saleToResponse(s *model.SalesTransaction) dto.SaleResponse {
	items := make([]dto.SaleItemResponse, 0, len(s.Items))
	for _, it := range s.Items {
		name, unit := "", ""
		if it.Medicine != nil {
			name, unit = it.Medicine.Name, it.Medicine.Unit
		}
		items = append(items, dto.SaleItemResponse{
			ID:           it.ID,
			MedicineID:   it.MedicineID,
			MedicineName: name,
			Unit:         unit,
			Quantity:     it.Quantity,
			UnitPrice:    it.UnitPrice.Round(2),
			TotalPrice:   it.TotalPrice.Round(2),
		})
	}
	var patientName *string
	if s.Patient != nil {
		n := s.Patient.Name
		patientName = &n
	}
	return dto.SaleResponse{
		ID:              s.ID,
		PatientID:       s.PatientID,
		PatientName:     patientName,
		TotalAmount:     s.TotalAmount.Round(2),
		PaymentMethod:   string(s.PaymentMethod),
		PaymentReceived: s.PaymentReceived.Round(2),
		ChangeAmount:    s.ChangeAmount.Round(2),
		Status:          string(s.Status),
		Notes:           s.Notes,
		TransactionDate: formatTime(s.TransactionDate),
		CreatedAt:       formatTime(s.CreatedAt),
		Items:           items,
	}
}

func salesToResponse(sales []model.SalesTransaction) []dto.SaleResponse {
	out := make([]dto.SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, saleToResponse(&sales[i]))
	}
	return out
}

func patientToResponse(p *model.Patient) dto.PatientResponse {
	return dto.PatientResponse{
		ID:           p.ID,
		Name:         p.Name,
		DateOfBirth:  formatDate(p.DateOfBirth),
		Gender:       p.Gender,
		Phone:        p.Phone,
		Address:      p.Address,
		MedicalNotes: p.MedicalNotes,
		CreatedAt:    formatTime(p.CreatedAt),
		UpdatedAt:    formatTime(p.UpdatedAt),
	}
}

func settingToResponse(s *model.Setting) dto.SettingResponse {
	return dto.SettingResponse{
		ID:          s.ID,
		Key:         s.Key,
		Value:       s.Value,
		Description: s.Description,
		UpdatedAt:   formatTime(s.UpdatedAt),
	}
}
