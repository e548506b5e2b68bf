package handler

import (
	"encoding/json"
	"net/http"

	"envios-web/internal/core/notify"
	"envios-web/internal/core/web"
	"envios-web/internal/features/pricing/domain"
	"envios-web/internal/features/pricing/service"

	"github.com/gofiber/fiber/v2"
)

// ConfigHandler serves the tariff configuration panel.
type ConfigHandler struct {
	service *service.ConfigService
}

// NewConfigHandler creates a new instance of ConfigHandler.
func NewConfigHandler(s *service.ConfigService) *ConfigHandler {
	return &ConfigHandler{service: s}
}

// ConfigResponse carries the saved panel and its toast.
type ConfigResponse struct {
	Config  domain.View     `json:"config"`
	Notices []notify.Notice `json:"notices"`
}

// GetConfig returns the tariff parameters with their schema.
// @Summary Get pricing configuration
// @Produce json
// @Success 200 {object} domain.View
// @Failure 502 {object} web.ErrorResponse
// @Router /admin/config [get]
func (h *ConfigHandler) GetConfig(c *fiber.Ctx) error {
	v, err := h.service.Get(c.UserContext())
	if err != nil {
		return web.Fail(c, err, "Error al cargar la configuración")
	}
	return web.OK(c, v)
}

// UpdateConfig replaces the tariff parameters.
// @Summary Update pricing configuration
// @Accept json
// @Produce json
// @Param config body object true "Flat map of tariff parameters plus aplicableHospedaje"
// @Success 200 {object} ConfigResponse
// @Failure 422 {object} web.ErrorResponse
// @Router /admin/config [patch]
func (h *ConfigHandler) UpdateConfig(c *fiber.Ctx) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return web.Error(c, http.StatusBadRequest, "Solicitud inválida")
	}

	v, err := h.service.Update(c.UserContext(), raw)
	if err != nil {
		return web.Fail(c, err, "Error al actualizar la configuración")
	}
	return web.OK(c, ConfigResponse{Config: v, Notices: []notify.Notice{notify.Success("Configuración actualizada con éxito")}})
}
