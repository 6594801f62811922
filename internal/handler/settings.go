package handler

import (
	"net/http"

	"github.com/appdotbuilder/bidan-hebat-management/internal/dto"
	"github.com/appdotbuilder/bidan-hebat-management/internal/service"

	"github.com/gin-gonic/gin"
)

type SettingsHandler struct{ svc service.SettingsService }

func NewSettingsHandler(svc service.SettingsService) *SettingsHandler {
	return &SettingsHandler{svc: svc}
}

// List godoc
// @Summary      List settings
// @Tags         settings
// @Produce      json
// @Success      200 {array} dto.SettingResponse
// @Router       /api/settings [get]
func (h *SettingsHandler) List(c *gin.Context) {
	resp, err := h.svc.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Clinic godoc
// @Summary      Clinic branding as printed on receipts
// @Tags         settings
// @Produce      json
// @Success      200 {object} dto.ClinicInfo
// @Router       /api/settings/clinic [get]
func (h *SettingsHandler) Clinic(c *gin.Context) {
	resp, err := h.svc.ClinicInfo(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary      Get a setting
// @Tags         settings
// @Produce      json
// @Param        key path     string true "Setting key"
// @Success      200 {object} dto.SettingResponse
// @Failure      404 {object} apierror.APIError
// @Router       /api/settings/{key} [get]
func (h *SettingsHandler) Get(c *gin.Context) {
	resp, err := h.svc.Get(c.Request.Context(), c.Param("key"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Upsert godoc
// @Summary      Create or replace a setting
// @Tags         settings
// @Accept       json
// @Produce      json
// @Param        key  path     string                   true "Setting key"
// @Param        body body     dto.UpsertSettingRequest true "Value"
// @Success      200  {object} dto.SettingResponse
// @Failure      400  {object} apierror.APIError
// @Router       /api/settings/{key} [put]
func (h *SettingsHandler) Upsert(c *gin.Context) {
	var req dto.UpsertSettingRequest
	if !bindAndValidate(c, &req) {
		return
	}
	resp, err := h.svc.Upsert(c.Request.Context(), c.Param("key"), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// Delete godoc
// @Summary      Delete a setting
// @Tags         settings
// @Param        key path string true "Setting key"
// @Success      204
// @Failure      404 {object} apierror.APIError
// @Router       /api/settings/{key} [delete]
func (h *SettingsHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("key")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
