package handler

import (
	"errors"
	"net/http"
	"strings"

	"envios-web/internal/core/notify"
	"envios-web/internal/core/validation"
	"envios-web/internal/core/web"
	"envios-web/internal/features/routing/domain"
	"envios-web/internal/features/routing/service"
	sessionhandler "envios-web/internal/features/session/handler"

	"github.com/gofiber/fiber/v2"
)

// PlannerHandler exposes the route planner of the caller's browser session.
type PlannerHandler struct {
	service *service.PlannerService
}

// NewPlannerHandler creates a new instance of PlannerHandler.
func NewPlannerHandler(s *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: s}
}

// PlanResponse wraps a planner snapshot.
type PlanResponse struct {
	Plan domain.Plan `json:"plan"`
	// Ignored is set when the selection arrived after both pins were placed.
	Ignored bool            `json:"ignored,omitempty"`
	Notices []notify.Notice `json:"notices,omitempty"`
}

// GetPlan returns the planner snapshot.
// @Summary Get route planner
// @Produce json
// @Success 200 {object} PlanResponse
// @Router /planner [get]
func (h *PlannerHandler) GetPlan(c *fiber.Ctx) error {
	return web.OK(c, PlanResponse{Plan: h.service.Plan(sessionhandler.SessionID(c))})
}

// Select places the next pin from a map click or an autocomplete pick.
// @Summary Select a location
// @Accept json
// @Produce json
// @Param selection body domain.Selection true "Map click or place id"
// @Success 200 {object} PlanResponse
// @Failure 422 {object} web.ErrorResponse
// @Failure 502 {object} web.ErrorResponse
// @Router /planner/selections [post]
func (h *PlannerHandler) Select(c *fiber.Ctx) error {
	var sel domain.Selection
	if err := c.BodyParser(&sel); err != nil {
		return web.Error(c, http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(sel); err != nil {
		return web.Fail(c, err, "Ubicación inválida")
	}

	plan, err := h.service.Select(c.UserContext(), sessionhandler.SessionID(c), sel)
	if errors.Is(err, service.ErrSelectionIgnored) {
		return web.OK(c, PlanResponse{Plan: plan, Ignored: true})
	}
	if err != nil {
		return c.Status(http.StatusBadGateway).JSON(web.ErrorResponse{
			Message: "No se pudo obtener la ubicación seleccionada",
			RayID:   web.RayID(c),
			Notices: []notify.Notice{notify.Error("No se pudo obtener la ubicación seleccionada")},
		})
	}
	return web.OK(c, PlanResponse{Plan: plan})
}

// Clear resets the planner and rotates the map key.
// @Summary Clear route
// @Produce json
// @Success 200 {object} PlanResponse
// @Router /planner [delete]
func (h *PlannerHandler) Clear(c *fiber.Ctx) error {
	return web.OK(c, PlanResponse{Plan: h.service.Clear(sessionhandler.SessionID(c))})
}

// Suggest returns autocomplete predictions.
// @Summary Address autocomplete
// @Produce json
// @Param input query string true "Partial address"
// @Success 200 {array} domain.Prediction
// @Router /planner/places [get]
func (h *PlannerHandler) Suggest(c *fiber.Ctx) error {
	input := strings.TrimSpace(c.Query("input"))
	if input == "" {
		return web.OK(c, []domain.Prediction{})
	}

	predictions, err := h.service.Suggest(c.UserContext(), sessionhandler.SessionID(c), input)
	if err != nil {
		return web.Fail(c, err, "No se pudieron obtener sugerencias")
	}
	return web.OK(c, predictions)
}
