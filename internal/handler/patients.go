package handler

import (
	"net/http"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"

	"github.com/gin-gonic/gin"
)

type PatientsHandler struct{ svc service.PatientService }

func NewPatientsHandler(svc service.PatientService) *PatientsHandler {
	return &PatientsHandler{svc: svc}
}

// Create godoc
// @Summary      Register a patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Param        body body     dto.CreatePatientRequest true "Patient"
// @Success      201  {object} dto.PatientResponse
// @Failure      422  {object} apierror.ValidationError
// @Router       /api/patients [post]
func (h *PatientsHandler) Create(c *gin.Context) {
	var req dto.CreatePatientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Create(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

// List godoc
// @Summary      List patients
// @Tags         patients
// @Produce      json
// @Param        search query string false "Name or phone"
// @Param        page   query int    false "Page (default 1)"
// @Param        limit  query int    false "Page size (default 20)"
// @Success      200 {object} dto.PatientListResponse
// @Router       /api/patients [get]
func (h *PatientsHandler) List(c *gin.Context) {
	var filter dto.PatientFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a patient
// @Tags         patients
// @Produce      json
// @Param        id  path     int true "Patient id"
// @Success      200 {object} dto.PatientResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/patients/{id} [get]
func (h *PatientsHandler) Get(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.GetByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Update godoc
// @Summary      Update a patient
// @Tags         patients
// @Accept       json
// @Produce      json
// @Param        id   path     int                      true "Patient id"
// @Param        body body     dto.UpdatePatientRequest true "Fields to change"
// @Success      200  {object} dto.PatientResponse
// @Failure      404  {object} apierror.APIError
// @Router       /api/patients/{id} [put]
func (h *PatientsHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdatePatientRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Update(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a patient
// @Description  Refused with 409 while any sale references the patient.
// @Tags         patients
// @Param        id  path int true "Patient id"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Failure      409 {object} apierror.APIError
// @Router       /api/patients/{id} [delete]
func (h *PatientsHandler) Delete(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	if err := h.svc.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// ListSales godoc
// @Summary      A patient's sales
// @Tags         patients
// @Produce      json
// @Param        id  path     int true "Patient id"
// @Success      200 {array}  dto.SaleResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/patients/{id}/sales [get]
func (h *PatientsHandler) ListSales(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.ListSales(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
