package dto

// StockMovementFilter is bound from the query string of GET /api/stock/movements.
// From/To accept RFC 3339 timestamps or YYYY-MM-DD dates (clinic time zone)
// and bound a closed interval.
type StockMovementFilter struct {
	MedicineID *uint  `form:"medicine_id"`
	Type       string `form:"type"            validate:"omitempty,oneof=IN OUT"`
	From       string `form:"from"`
	To         string `form:"to"`
	Page       int    `form:"page,default=1"  validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=500"`
}

type RecordMovementRequest struct {
	MedicineID uint    `json:"medicine_id" validate:"required"`
	Type       string  `json:"type"        validate:"required,oneof=IN OUT"`
	Quantity   int     `json:"quantity"`
	Notes      *string `json:"notes"       validate:"omitempty,max=500"`
}

type StockTransactionResponse struct {
	ID              uint    `json:"id"`
	MedicineID      uint    `json:"medicine_id"`
	MedicineName    string  `json:"medicine_name"`
	Type            string  `json:"type"`
	Quantity        int     `json:"quantity"`
	Notes           *string `json:"notes"`
	TransactionDate string  `json:"transaction_date"`
	CreatedAt       string  `json:"created_at"`
}

type StockTransactionListResponse struct {
	Data  []StockTransactionResponse `json:"data"`
	Total int64                      `json:"total"`
	Page  int                        `json:"page"`
	Limit int                        `json:"limit"`
}

// LedgerCheck is the comparison of one medicine's counter with its ledger.
type LedgerCheck struct {
	MedicineID   uint   `json:"medicine_id"`
	MedicineName string `json:"medicine_name"`
	CurrentStock int64  `json:"current_stock"`
	LedgerSum    int64  `json:"ledger_sum"`
}

type LedgerReport struct {
	Consistent bool          `json:"consistent"`
	Checked    int           `json:"checked"`
	Mismatches []LedgerCheck `json:"mismatches"`
}
