package handler

import (
	"errors"
	"net/http"

	"envios-web/internal/core/notify"
	"envios-web/internal/core/validation"
	"envios-web/internal/core/web"
	"envios-web/internal/features/quote/domain"
	"envios-web/internal/features/quote/service"
	sessionhandler "envios-web/internal/features/session/handler"

	"github.com/gofiber/fiber/v2"
)

const (
	quoteFailedMessage  = "Error al calcular el costo de envío"
	quoteInvalidMessage = "Revisa los datos del envío"
)

// QuoteHandler handles the shipping calculator.
type QuoteHandler struct {
	service *service.QuoteService
}

// NewQuoteHandler creates a new instance of QuoteHandler.
func NewQuoteHandler(s *service.QuoteService) *QuoteHandler {
	return &QuoteHandler{service: s}
}

// QuoteResponse carries the accepted quote and its display breakdown.
type QuoteResponse struct {
	Quote       domain.Quote     `json:"quote"`
	Breakdown   domain.Breakdown `json:"breakdown"`
	Origin      string           `json:"origin"`
	Destination string           `json:"destination"`
	// CanOrder is false for anonymous visitors, who are offered registration instead.
	CanOrder bool            `json:"canOrder"`
	Notices  []notify.Notice `json:"notices,omitempty"`
}

func quoteResponse(c *fiber.Ctx, d domain.Draft) QuoteResponse {
	_, logged := sessionhandler.Current(c)
	return QuoteResponse{
		Quote:       d.Quote,
		Breakdown:   domain.NewBreakdown(d.Result),
		Origin:      d.Origin,
		Destination: d.Destination,
		CanOrder:    logged,
	}
}

// RequestQuote prices the planned route.
// @Summary Calculate shipping cost
// @Accept json
// @Produce json
// @Param quote body service.Form true "Shipment parameters"
// @Success 200 {object} QuoteResponse
// @Failure 422 {object} web.ErrorResponse
// @Failure 502 {object} web.ErrorResponse
// @Router /quotes [post]
func (h *QuoteHandler) RequestQuote(c *fiber.Ctx) error {
	var form service.Form
	if err := c.BodyParser(&form); err != nil {
		return web.Error(c, http.StatusBadRequest, "Solicitud inválida")
	}

	draft, err := h.service.Request(c.UserContext(), sessionhandler.SessionID(c), form)
	if err != nil {
		if _, ok := validation.As(err); ok {
			return web.Fail(c, err, quoteInvalidMessage)
		}
		return web.Fail(c, err, quoteFailedMessage)
	}

	resp := quoteResponse(c, draft)
	resp.Notices = []notify.Notice{notify.Success("Costo de envío calculado con éxito")}
	return web.OK(c, resp)
}

// CurrentQuote returns the accepted quote of the session.
// @Summary Current quote
// @Produce json
// @Success 200 {object} QuoteResponse
// @Failure 404 {object} web.ErrorResponse
// @Router /quotes/current [get]
func (h *QuoteHandler) CurrentQuote(c *fiber.Ctx) error {
	draft, err := h.service.Current(c.UserContext(), sessionhandler.SessionID(c))
	if errors.Is(err, service.ErrNoDraft) {
		return web.Error(c, http.StatusNotFound, "No hay un cálculo vigente")
	}
	if err != nil {
		return web.Fail(c, err, quoteFailedMessage)
	}
	return web.OK(c, quoteResponse(c, draft))
}
