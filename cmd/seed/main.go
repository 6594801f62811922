// cmd/seed loads default clinic settings and, optionally, a medicine catalog
// from CSV. Safe to run repeatedly: existing settings and medicines (matched
// by name) are left alone.
//
// Usage: go run ./cmd/seed -catalog medicines.csv
//
// CSV header: name,generic_name,category,unit,price,min_stock,initial_stock,expiry_date,batch_number,supplier
package main

import (
	"context"
	"encoding/csv"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/appdotbuilder/bidan-hebat-management/internal/config"
	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/infra"
	"github.com/appdotbuilder/bidan-hebat-management/internal/model"
	"github.com/appdotbuilder/bidan-hebat-management/internal/repository"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var defaultSettings = []struct{ key, value, description string }{
	{model.SettingClinicName, service.DefaultClinicName, "Printed at the top of every receipt"},
	{model.SettingClinicAddress, "", "Clinic street address"},
	{model.SettingClinicPhone, "", "Clinic phone number"},
}

func main() {
	catalog := flag.String("catalog", "", "path to a medicine catalog CSV (optional)")
	flag.Parse()

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	db, err := infra.NewDatabase(infra.DatabaseConfig{
		Driver:       cfg.DBDriver,
		DSN:          cfg.DatabaseURL,
		LogLevel:     cfg.DBLogLevel,
		MaxOpenConns: 2,
		MaxIdleConns: 1,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("db connect error")
	}
	defer infra.CloseDatabase(db)

	ctx := context.Background()
	settings := service.NewSettingsService(repository.NewSettingsRepository(db))
	if err := seedSettings(ctx, settings); err != nil {
		log.Fatal().Err(err).Msg("seeding settings")
	}

	if *catalog == "" {
		return
	}
	medicines := service.NewMedicineService(
		repository.NewTxManager(db), repository.NewRepositories(db).Medicines(), nil, cfg.ExpiryWarningDays)
	created, skipped, err := loadCatalog(ctx, medicines, *catalog)
	if err != nil {
		log.Fatal().Err(err).Str("path", *catalog).Msg("loading medicine catalog")
	}
	log.Info().Int("created", created).Int("skipped", skipped).Msg("medicine catalog seeded")
}

func seedSettings(ctx context.Context, svc service.SettingsService) error {
	for _, s := range defaultSettings {
		_, err := svc.Get(ctx, s.key)
		if err == nil {
			continue
		}
		if !errors.Is(err, service.ErrNotFound) {
			return err
		}
		value, desc := s.value, s.description
		if _, err := svc.Upsert(ctx, s.key, dto.UpsertSettingRequest{Value: &value, Description: &desc}); err != nil {
			return fmt.Errorf("setting %s: %w", s.key, err)
		}
		log.Info().Str("key", s.key).Msg("setting created")
	}
	return nil
}

// loadCatalog creates every medicine in the CSV that does not exist yet.
// Initial stock goes through MedicineService so it lands in the ledger.
// Bad rows are logged and skipped.
func loadCatalog(ctx context.Context, svc service.MedicineService, path string) (created, skipped int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	if _, err := r.Read(); err != nil {
		return 0, 0, fmt.Errorf("read header: %w", err)
	}

	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("unreadable row")
			skipped++
			continue
		}
		req, err := parseRow(record)
		if err != nil {
			log.Warn().Err(err).Int("line", line).Msg("invalid row")
			skipped++
			continue
		}
		exists, err := medicineExists(ctx, svc, req.Name)
		if err != nil {
			return created, skipped, err
		}
		if exists {
			skipped++
			continue
		}
		if _, err := svc.Create(ctx, req); err != nil {
			log.Warn().Err(err).Int("line", line).Str("name", req.Name).Msg("medicine rejected")
			skipped++
			continue
		}
		created++
	}
	return created, skipped, nil
}

func parseRow(record []string) (dto.CreateMedicineRequest, error) {
	field := func(i int) string {
		if i < len(record) {
			return strings.TrimSpace(record[i])
		}
		return ""
	}
	optional := func(i int) *string {
		if v := field(i); v != "" {
			return &v
		}
		return nil
	}
	atoi := func(i int) (int, error) {
		if v := field(i); v != "" {
			return strconv.Atoi(v)
		}
		return 0, nil
	}

	req := dto.CreateMedicineRequest{
		Name:        field(0),
		GenericName: optional(1),
		Category:    optional(2),
		Unit:        field(3),
		ExpiryDate:  optional(7),
		BatchNumber: optional(8),
		Supplier:    optional(9),
	}
	if req.Name == "" {
		return req, errors.New("name is empty")
	}
	price, err := decimal.NewFromString(field(4))
	if err != nil {
		return req, fmt.Errorf("price: %w", err)
	}
	req.Price = price
	if req.MinStock, err = atoi(5); err != nil {
		return req, fmt.Errorf("min_stock: %w", err)
	}
	if req.InitialStock, err = atoi(6); err != nil {
		return req, fmt.Errorf("initial_stock: %w", err)
	}
	return req, nil
}

func medicineExists(ctx context.Context, svc service.MedicineService, name string) (bool, error) {
	page, err := svc.List(ctx, dto.MedicineFilter{Search: name, Active: "all", Page: 1, Limit: 200})
	if err != nil {
		return false, err
	}
	for _, m := range page.Data {
		if strings.EqualFold(m.Name, name) {
			return true, nil
		}
	}
	return false, nil
}
