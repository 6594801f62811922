package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"

	"github.com/appdotbuilder/bidan-hebat-management/internal/apierror"
	"github.com/appdotbuilder/bidan-hebat-management/internal/middleware"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var validate = validator.New()

func init() {
	// Register decimal.Decimal as a numeric type so that validator tags like
	// min=0, gt=0, required work without panicking ("Bad field type decimal.Decimal").
	validate.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if v, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := v.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})

	// Money travels as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true
}

// bindAndValidate binds JSON body and runs go-playground/validator tags.
// Returns false and writes the error response if validation fails;
// the caller should return immediately without writing another response.
func bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode("INVALID_JSON", "Invalid JSON: "+err.Error()))
		return false
	}
	return runValidation(c, req)
}

// bindQuery binds and validates query-string filters.
func bindQuery(c *gin.Context, filter interface{}) bool {
	if err := c.ShouldBindQuery(filter); err != nil {
		c.JSON(http.StatusBadRequest, apierror.WithCode("INVALID_QUERY", err.Error()))
		return false
	}
	return runValidation(c, filter)
}

func runValidation(c *gin.Context, req interface{}) bool {
	err := validate.Struct(req)
	if err == nil {
		return true
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		c.JSON(http.StatusBadRequest, apierror.New(err.Error()))
		return false
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fe.Tag()
	}
	c.JSON(http.StatusUnprocessableEntity, apierror.NewValidation(fields))
	return false
}

// parseID reads a positive integer path parameter.
func parseID(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, apierror.WithCode(service.ErrInvalidInput.Code, "Invalid "+name))
		return 0, false
	}
	return uint(id), true
}

// respondError maps a service error to its HTTP status and envelope. Errors
// outside the domain taxonomy are logged and rendered as a generic 500.
func respondError(c *gin.Context, err error) {
	var (
		stockErr  *service.InsufficientStockError
		payErr    *service.InsufficientPaymentError
		medErr    *service.MedicineNotFoundError
		invariant *service.InvariantViolationError
		domainErr *service.DomainError
	)
	switch {
	case errors.As(err, &stockErr):
		c.JSON(http.StatusConflict, apierror.WithCode(service.ErrInsufficientStock.Code, stockErr.Error()).
			With("medicine_id", stockErr.MedicineID).
			With("available", stockErr.Available).
			With("requested", stockErr.Requested))
	case errors.As(err, &payErr):
		c.JSON(http.StatusConflict, apierror.WithCode(service.ErrInsufficientPayment.Code, payErr.Error()).
			With("total", payErr.Total.StringFixed(2)).
			With("received", payErr.Received.StringFixed(2)))
	case errors.As(err, &medErr):
		c.JSON(http.StatusNotFound, apierror.WithCode(service.ErrMedicineNotFound.Code, medErr.Error()).
			With("medicine_id", medErr.MedicineID))
	case errors.As(err, &invariant):
		log.Error().Err(err).Str("request_id", c.GetString(middleware.RequestIDKey)).Msg("stock invariant violated")
		c.JSON(http.StatusInternalServerError, apierror.WithCode(service.ErrInvariantViolation.Code, "Internal server error"))
	case errors.Is(err, service.ErrNotFound):
		c.JSON(http.StatusNotFound, domainEnvelope(err, service.ErrNotFound))
	case errors.Is(err, service.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, domainEnvelope(err, service.ErrInvalidInput))
	case errors.Is(err, service.ErrMedicineInactive),
		errors.Is(err, service.ErrConflict):
		c.JSON(http.StatusConflict, domainEnvelope(err, service.ErrConflict))
	case errors.As(err, &domainErr):
		c.JSON(http.StatusBadRequest, apierror.WithCode(domainErr.Code, domainErr.Message))
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, apierror.New("Internal server error"))
	}
}

// domainEnvelope uses the most specific DomainError in err's chain for the
// code, and err's full message as the detail.
func domainEnvelope(err error, fallback *service.DomainError) *apierror.APIError {
	code := fallback.Code
	var de *service.DomainError
	if errors.As(err, &de) {
		code = de.Code
	}
	return apierror.WithCode(code, err.Error())
}
