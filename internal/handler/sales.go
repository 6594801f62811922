package handler

import (
	"net/http"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"

	"github.com/gin-gonic/gin"
)

type SalesHandler struct{ svc service.SalesService }

func NewSalesHandler(svc service.SalesService) *SalesHandler { return &SalesHandler{svc: svc} }

// CreateSale godoc
// @Summary      Create a sale
// @Description  Atomically prices the cart, checks stock and payment, records the sale and debits stock through the ledger.
// @Tags         sales
// @Accept       json
// @Produce      json
// @Param        body body     dto.CreateSaleRequest true "Cart and payment"
// @Success      201  {object} dto.SaleResponse
// @Failure      400  {object} apierror.APIError
// @Failure      404  {object} apierror.APIError
// @Failure      409  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /api/sales [post]
func (h *SalesHandler) CreateSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.CreateSale(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// ListSales godoc
// @Summary      List sales
// @Description  Newest first. from/to accept YYYY-MM-DD (clinic time zone) or RFC 3339 and bound a closed interval.
// @Tags         sales
// @Produce      json
// @Param        from       query string false "Range start"
// @Param        to         query string false "Range end"
// @Param        status     query string false "PENDING | COMPLETED | CANCELLED"
// @Param        patient_id query int    false "Patient id"
// @Param        page       query int    false "Page (default 1)"
// @Param        limit      query int    false "Page size (default 50)"
// @Success      200 {object} dto.SaleListResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/sales [get]
func (h *SalesHandler) ListSales(c *gin.Context) {
	var filter dto.SalesFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSalesInRange godoc
// @Summary      Sales in an explicit time range
// @Tags         sales
// @Produce      json
// @Param        from query string true "RFC 3339 start (inclusive)"
// @Param        to   query string true "RFC 3339 end (inclusive)"
// @Success      200 {array}  dto.SaleResponse
// @Failure      400 {object} apierror.APIError
// @Router       /api/sales/range [get]
func (h *SalesHandler) ListSalesInRange(c *gin.Context) {
	var q dto.TimeRange
	if !bindQuery(c, &q) {
		return
	}
	resp, err := h.svc.ListSalesInRange(c.Request.Context(), q.From, q.To)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// ListSalesToday godoc
// @Summary      Today's sales
// @Description  "Today" is the current calendar day in the clinic time zone.
// @Tags         sales
// @Produce      json
// @Success      200 {array} dto.SaleResponse
// @Router       /api/sales/today [get]
func (h *SalesHandler) ListSalesToday(c *gin.Context) {
	resp, err := h.svc.ListSalesToday(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetSale godoc
// @Summary      Get a sale
// @Tags         sales
// @Produce      json
// @Param        id  path     int true "Sale id"
// @Success      200 {object} dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/sales/{id} [get]
func (h *SalesHandler) GetSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetSaleByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// GetReceipt godoc
// @Summary      Receipt data for a sale
// @Description  Clinic branding, the sale with its lines, and the patient if any. Rendering is left to the client.
// @Tags         sales
// @Produce      json
// @Param        id  path     int true "Sale id"
// @Success      200 {object} dto.ReceiptResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/sales/{id}/receipt [get]
func (h *SalesHandler) GetReceipt(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetReceipt(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// CancelSale godoc
// @Summary      Cancel a sale
// @Description  Flips the sale to CANCELLED and credits every line back to stock. Cancelling twice is refused.
// @Tags         sales
// @Produce      json
// @Param        id  path     int true "Sale id"
// @Success      200 {object} dto.CancelSaleResponse
// @Failure      404 {object} dto.CancelSaleResponse
// @Failure      409 {object} dto.CancelSaleResponse
// @Router       /api/sales/{id}/cancel [post]
func (h *SalesHandler) CancelSale(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	outcome, err := h.svc.CancelSale(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := dto.CancelSaleResponse{ID: id, Cancelled: outcome.Cancelled()}
	switch outcome {
	case service.CancelOK:
		c.JSON(http.StatusOK, resp)
	case service.CancelNotFound:
		resp.Reason = outcome.String()
		c.JSON(http.StatusNotFound, resp)
	default:
		resp.Reason = outcome.String()
		c.JSON(http.StatusConflict, resp)
	}
}
