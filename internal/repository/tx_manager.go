package repository

import (
	"context"

	"gorm.io/gorm"
)

// Repositories is the set of repositories bound to one database handle. Inside
// WithinTx every repository shares the same transaction.
type Repositories interface {
	Medicines() MedicineRepository
	StockTransactions() StockTransactionRepository
	Sales() SalesRepository
	Patients() PatientRepository
}

// TxManager runs a unit of work atomically. If fn returns an error, nothing
// it wrote is persisted.
type TxManager interface {
	WithinTx(ctx context.Context, fn func(repos Repositories) error) error
}

type gormRepositories struct{ db *gorm.DB }

// NewRepositories binds all repositories to db (outside any transaction).
func NewRepositories(db *gorm.DB) Repositories { return &gormRepositories{db: db} }

func (r *gormRepositories) Medicines() MedicineRepository { return NewMedicineRepository(r.db) }
func (r *gormRepositories) StockTransactions() StockTransactionRepository {
	return NewStockTransactionRepository(r.db)
}
func (r *gormRepositories) Sales() SalesRepository       { return NewSalesRepository(r.db) }
func (r *gormRepositories) Patients() PatientRepository { return NewPatientRepository(r.db) }

type gormTxManager struct{ db *gorm.DB }

func NewTxManager(db *gorm.DB) TxManager { return &gormTxManager{db: db} }

func (m *gormTxManager) WithinTx(ctx context.Context, fn func(repos Repositories) error) error {
	return m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{db: tx})
	})
}
