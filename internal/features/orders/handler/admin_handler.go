package handler

import (
	"errors"
	"net/http"

	"envios-web/internal/core/notify"
	"envios-web/internal/core/web"
	listingdomain "envios-web/internal/features/listing/domain"
	"envios-web/internal/features/orders/domain"
	"envios-web/internal/features/orders/service"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles admin mutations of orders.
type AdminHandler struct {
	service *service.AdminService
}

// NewAdminHandler creates a new instance of AdminHandler.
func NewAdminHandler(s *service.AdminService) *AdminHandler {
	return &AdminHandler{service: s}
}

// PageResponse carries the reloaded listing.
type PageResponse struct {
	Page    *listingdomain.Page `json:"page,omitempty"`
	Notices []notify.Notice     `json:"notices"`
}

// ConfirmationResponse asks the admin to confirm a destructive action.
type ConfirmationResponse struct {
	Message string `json:"message"`
	Confirm string `json:"confirm"`
	RayID   string `json:"ray_id"`
}

// StatusUpdate is the body of a status change.
type StatusUpdate struct {
	Status domain.Status `json:"status"`
}

// listingQuery reads the page the admin is looking at from the query string.
func listingQuery(c *fiber.Ctx) listingdomain.Query {
	var q listingdomain.Query
	_ = c.QueryParser(&q)
	return q.Normalize()
}

// respond renders a mutation result. A failed reload after a successful mutation still
// reports the mutation as done.
func respond(c *fiber.Ctx, page listingdomain.Page, err error, success, failure string) error {
	if errors.Is(err, service.ErrRefreshFailed) {
		return web.OK(c, PageResponse{Notices: []notify.Notice{
			notify.Success(success),
			notify.Error("No se pudo recargar la lista"),
		}})
	}
	if err != nil {
		return web.Fail(c, err, failure)
	}
	return web.OK(c, PageResponse{Page: &page, Notices: []notify.Notice{notify.Success(success)}})
}

// UpdateStatus moves an order to a new status.
// @Summary Update order status
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param update body StatusUpdate true "New status"
// @Param page query int false "Current page"
// @Param limit query int false "Page size"
// @Param status query string false "Status filter"
// @Param trackingNumber query string false "Tracking search"
// @Success 200 {object} PageResponse
// @Failure 422 {object} web.ErrorResponse
// @Router /admin/orders/{id}/status [patch]
func (h *AdminHandler) UpdateStatus(c *fiber.Ctx) error {
	var body StatusUpdate
	if err := c.BodyParser(&body); err != nil {
		return web.Error(c, http.StatusBadRequest, "Solicitud inválida")
	}

	page, err := h.service.UpdateStatus(c.UserContext(), c.Params("id"), body.Status, listingQuery(c))
	return respond(c, page, err, "Estado actualizado correctamente", "Error al actualizar el estado de la orden")
}

// DeleteOrder removes an order after confirmation.
// @Summary Delete order
// @Produce json
// @Param id path string true "Order ID"
// @Param confirm query bool true "Explicit confirmation"
// @Success 200 {object} PageResponse
// @Failure 409 {object} ConfirmationResponse
// @Router /admin/orders/{id} [delete]
func (h *AdminHandler) DeleteOrder(c *fiber.Ctx) error {
	confirmed := c.QueryBool("confirm", false)

	page, err := h.service.Delete(c.UserContext(), c.Params("id"), confirmed, listingQuery(c))
	if errors.Is(err, service.ErrConfirmationRequired) {
		return c.Status(http.StatusConflict).JSON(ConfirmationResponse{
			Message: "Confirmación requerida",
			Confirm: service.DeleteConfirmation,
			RayID:   web.RayID(c),
		})
	}
	return respond(c, page, err, "Orden eliminada con éxito", "Error al eliminar la orden")
}
