package handler

import (
	"net/http"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"

	"github.com/gin-gonic/gin"
)

type MedicinesHandler struct{ svc service.MedicineService }

func NewMedicinesHandler(svc service.MedicineService) *MedicinesHandler {
	return &MedicinesHandler{svc: svc}
}

// Create godoc
// @Summary      Create a medicine
// @Description  initial_stock, when positive, is recorded as an IN ledger movement in the same transaction.
// @Tags         medicines
// @Accept       json
// @Produce      json
// @Param        body body     dto.CreateMedicineRequest true "Medicine"
// @Success      201  {object} dto.MedicineResponse
// @Failure      400  {object} apierror.APIError
// @Failure      422  {object} apierror.ValidationError
// @Router       /api/medicines [post]
func (h *MedicinesHandler) Create(c *gin.Context) {
	var req dto.CreateMedicineRequest
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
// @Summary      List medicines
// @Tags         medicines
// @Produce      json
// @Param        search    query string false "Name or generic name"
// @Param        category  query string false "Category"
// @Param        low_stock query bool   false "Only current_stock <= min_stock"
// @Param        active    query string false "true (default) | false | all"
// @Param        page      query int    false "Page (default 1)"
// @Param        limit     query int    false "Page size (default 20)"
// @Success      200 {object} dto.MedicineListResponse
// @Router       /api/medicines [get]
func (h *MedicinesHandler) List(c *gin.Context) {
	var filter dto.MedicineFilter
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
// @Summary      Get a medicine
// @Tags         medicines
// @Produce      json
// @Param        id  path     int true "Medicine id"
// @Success      200 {object} dto.MedicineResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/medicines/{id} [get]
func (h *MedicinesHandler) Get(c *gin.Context) {
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
// @Summary      Update a medicine
// @Description  Partial update; stock is changed only through stock movements.
// @Tags         medicines
// @Accept       json
// @Produce      json
// @Param        id   path     int                       true "Medicine id"
// @Param        body body     dto.UpdateMedicineRequest true "Fields to change"
// @Success      200  {object} dto.MedicineResponse
// @Failure      404  {object} apierror.APIError
// @Router       /api/medicines/{id} [put]
func (h *MedicinesHandler) Update(c *gin.Context) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	var req dto.UpdateMedicineRequest
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

// Deactivate godoc
// @Summary      Deactivate a medicine
// @Description  Soft delete: the medicine can no longer be sold.
// @Tags         medicines
// @Produce      json
// @Param        id  path     int true "Medicine id"
// @Success      200 {object} dto.MedicineResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/medicines/{id} [delete]
func (h *MedicinesHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

// Reactivate godoc
// @Summary      Reactivate a medicine
// @Tags         medicines
// @Produce      json
// @Param        id  path     int true "Medicine id"
// @Success      200 {object} dto.MedicineResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/medicines/{id}/reactivate [patch]
func (h *MedicinesHandler) Reactivate(c *gin.Context) {
	h.setActive(c, true)
}

func (h *MedicinesHandler) setActive(c *gin.Context, active bool) {
	id, ok := parseID(c, "id")
	if !ok {
		return
	}
	resp, err := h.svc.SetActive(c.Request.Context(), id, active)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// LowStock godoc
// @Summary      Medicines at or below their minimum stock
// @Tags         medicines
// @Produce      json
// @Success      200 {array} dto.MedicineResponse
// @Router       /api/medicines/low-stock [get]
func (h *MedicinesHandler) LowStock(c *gin.Context) {
	resp, err := h.svc.ListLowStock(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Expiring godoc
// @Summary      Medicines expiring soon
// @Tags         medicines
// @Produce      json
// @Param        days query int false "Window in days (default EXPIRY_WARNING_DAYS)"
// @Success      200 {array} dto.MedicineResponse
// @Router       /api/medicines/expiring [get]
func (h *MedicinesHandler) Expiring(c *gin.Context) {
	var filter dto.ExpiringFilter
	if !bindQuery(c, &filter) {
		return
	}
	resp, err := h.svc.ListExpiring(c.Request.Context(), filter.Days)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
