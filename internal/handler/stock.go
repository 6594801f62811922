package handler

import (
	"net/http"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"

	"github.com/gin-gonic/gin"
)

type StockHandler struct{ svc service.StockService }

func NewStockHandler(svc service.StockService) *StockHandler { return &StockHandler{svc: svc} }

// RecordMovement godoc
// @Summary      Record a stock movement
// @Description  Appends an IN or OUT ledger entry and updates the medicine's stock in one transaction. OUT never drives stock below zero.
// @Tags         stock
// @Accept       json
// @Produce      json
// @Param        body body     dto.RecordMovementRequest true "Movement"
// @Success      201  {object} dto.StockTransactionResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Router       /api/stock/movements [post]
func (h *StockHandler) RecordMovement(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.RecordMovement(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListMovements godoc
// @Summary      List ledger entries
// @Tags         stock
// @Produce      json
// @Param        medicine_id query int    false "Medicine id"
// @Param        type        query string false "IN | OUT"
// @Param        from        query string false "Range start (YYYY-MM-DD or RFC 3339)"
// @Param        to          query string false "Range end (YYYY-MM-DD or RFC 3339)"
// @Param        page        query int    false "Page (default 1)"
// @Param        limit       query int    false "Page size (default 50)"
// @Success      200 {object} dto.StockTransactionListResponse
// @Router       /api/stock/movements [get]
func (h *StockHandler) ListMovements(c *gin.Context) {
	var filter dto.StockMovementFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListMovements(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMovementsInRange godoc
// @Summary      Ledger entries in an explicit time range
// @Tags         stock
// @Produce      json
// @Param        from query string true "RFC 3339 start (inclusive)"
// @Param        to   query string true "RFC 3339 end (inclusive)"
// @Success      200 {array} dto.StockTransactionResponse
// @Router       /api/stock/movements/range [get]
func (h *StockHandler) ListMovementsInRange(c *gin.Context) {
	var q dto.TimeRange
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ListMovementsInRange(c.Request.Context(), q.From, q.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListMovementsForMedicine godoc
// @Summary      Ledger of one medicine
// @Tags         stock
// @Produce      json
// @Param        id  path     int true "Medicine id"
// @Success      200 {array}  dto.StockTransactionResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/medicines/{id}/movements [get]
func (h *StockHandler) ListMovementsForMedicine(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListMovementsForMedicine(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// VerifyLedgers godoc
// @Summary      Compare every stock counter with its ledger
// @Tags         stock
// @Produce      json
// @Success      200 {object} dto.LedgerReport
// @Router       /api/stock/verify [get]
func (h *StockHandler) VerifyLedgers(c *gin.Context) {
	report, err := h.svc.VerifyAllLedgers(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, report)
}
