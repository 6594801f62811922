package infra

import (
	"fmt"
	"strings"

	"github.com/appdotbuilder/bidan-hebat-management/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DatabaseConfig selects the driver and pool limits for NewDatabase.
type DatabaseConfig struct {
	Driver       string // postgres | sqlite
	DSN          string
	LogLevel     string // silent | error | warn | info
	MaxOpenConns int
	MaxIdleConns int
}

// NewDatabase opens the GORM connection, applies the pool limits and brings
// the schema up to date (AutoMigrate followed by idempotent SQL patches).
func NewDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel(cfg.LogLevel)),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}

	if err := RunMigrations(db); err != nil {
		return nil, fmt.Errorf("migrations: %w", err)
	}
	return db, nil
}

// CloseDatabase releases the underlying connection pool.
func CloseDatabase(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dialectorFor(driver, dsn string) (gorm.Dialector, error) {
	switch strings.ToLower(driver) {
	case "", "postgres", "postgresql":
		return postgres.Open(dsn), nil
	case "sqlite", "sqlite3":
		return sqlite.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", driver)
	}
}

func gormLogLevel(level string) logger.LogLevel {
	switch strings.ToLower(level) {
	case "error":
		return logger.Error
	case "warn", "warning":
		return logger.Warn
	case "info", "debug":
		return logger.Info
	default:
		return logger.Silent
	}
}

// RunMigrations creates or updates every table and then applies the patches
// AutoMigrate cannot express. Safe to run on every start.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Medicine{},
		&model.Patient{},
		&model.Setting{},
		&model.StockTransaction{},
		&model.SalesTransaction{},
		&model.SalesTransactionItem{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	return applySchemaPatches(db)
}

// applySchemaPatches runs idempotent Postgres-only DDL: composite indexes for
// the newest-first ledger and sales scans, and a CHECK that ties the derived
// change amount to the stored totals. SQLite gets the plain AutoMigrate schema.
func applySchemaPatches(db *gorm.DB) error {
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	patches := []struct{ descr, sql string }{
		{"ledger scan index", `
CREATE INDEX IF NOT EXISTS idx_stock_transactions_medicine_date
    ON stock_transactions (medicine_id, transaction_date DESC, id DESC)`},
		{"sales scan index", `
CREATE INDEX IF NOT EXISTS idx_sales_transactions_date
    ON sales_transactions (transaction_date DESC, id DESC)`},
		{"low stock partial index", `
CREATE INDEX IF NOT EXISTS idx_medicines_low_stock
    ON medicines (current_stock)
    WHERE active = true AND current_stock <= min_stock`},
		{"change amount check", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_sales_transactions_change') THEN
    ALTER TABLE sales_transactions
      ADD CONSTRAINT chk_sales_transactions_change
      CHECK (change_amount >= 0 AND change_amount = payment_received - total_amount);
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
	}
	return nil
}
