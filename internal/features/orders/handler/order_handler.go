package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"envios-web/internal/core/imaging"
	"envios-web/internal/core/notify"
	"envios-web/internal/core/validation"
	"envios-web/internal/core/web"
	"envios-web/internal/features/orders/domain"
	"envios-web/internal/features/orders/service"
	sessionhandler "envios-web/internal/features/session/handler"

	"github.com/gofiber/fiber/v2"
)

const (
	createFailedMessage  = "Error al crear la orden de envío"
	listFailedMessage    = "Error al cargar tus envíos"
	paymentFailedMessage = "Error al reportar el pago"
	receiptFailedMessage = "Error al procesar la imagen"
)

// OrderHandler handles the customer side of the order lifecycle.
type OrderHandler struct {
	orders   *service.OrderService
	receipts *service.ReceiptService
	maxBytes int
}

// NewOrderHandler creates a new instance of OrderHandler. maxBytes is the receipt upload ceiling.
func NewOrderHandler(orders *service.OrderService, receipts *service.ReceiptService, maxBytes int) *OrderHandler {
	return &OrderHandler{orders: orders, receipts: receipts, maxBytes: maxBytes}
}

// OrderResponse carries one order.
type OrderResponse struct {
	Order   domain.View     `json:"order"`
	Notices []notify.Notice `json:"notices,omitempty"`
}

// OrderListResponse carries the orders of the user.
type OrderListResponse struct {
	Items []domain.View `json:"items"`
	Total int           `json:"total"`
}

// ReceiptResponse carries the state of an attached receipt.
type ReceiptResponse struct {
	Receipt service.ReceiptStatus `json:"receipt"`
	Notices []notify.Notice       `json:"notices,omitempty"`
}

// NoticeResponse carries only toasts.
type NoticeResponse struct {
	Notices []notify.Notice `json:"notices"`
}

// CreateOrder turns the accepted quote into an order.
// @Summary Create order from the current quote
// @Produce json
// @Success 201 {object} OrderResponse
// @Failure 401 {object} web.ErrorResponse
// @Failure 409 {object} web.ErrorResponse
// @Router /orders [post]
func (h *OrderHandler) CreateOrder(c *fiber.Ctx) error {
	view, err := h.orders.Create(c.UserContext(), sessionhandler.SessionID(c))
	if errors.Is(err, service.ErrNoDraft) {
		return web.Error(c, http.StatusConflict, "Primero calcula el costo de envío")
	}
	if err != nil {
		return web.Fail(c, err, createFailedMessage)
	}
	return c.Status(http.StatusCreated).JSON(OrderResponse{
		Order:   view,
		Notices: []notify.Notice{notify.Success("Orden de envío creada con éxito")},
	})
}

// ListOrders returns the orders of the logged-in user.
// @Summary My orders
// @Produce json
// @Success 200 {object} OrderListResponse
// @Failure 401 {object} web.ErrorResponse
// @Router /orders [get]
func (h *OrderHandler) ListOrders(c *fiber.Ctx) error {
	items, total, err := h.orders.ListMine(c.UserContext())
	if err != nil {
		return web.Fail(c, err, listFailedMessage)
	}
	return web.OK(c, OrderListResponse{Items: items, Total: total})
}

// PaymentForm returns the data of the payment modal.
// @Summary Payment form of an order
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} service.PaymentForm
// @Failure 404 {object} web.ErrorResponse
// @Router /orders/{id}/payment [get]
func (h *OrderHandler) PaymentForm(c *fiber.Ctx) error {
	form, err := h.orders.PaymentForm(c.UserContext(), sessionhandler.SessionID(c), c.Params("id"))
	if errors.Is(err, service.ErrOrderNotFound) {
		return web.Error(c, http.StatusNotFound, "Orden no encontrada")
	}
	if err != nil {
		return web.Fail(c, err, listFailedMessage)
	}
	return web.OK(c, form)
}

// ReportPayment submits the payment evidence of an order.
// @Summary Report payment
// @Accept json
// @Produce json
// @Param id path string true "Order ID"
// @Param report body domain.PaymentReport true "Transfer details"
// @Success 200 {object} NoticeResponse
// @Failure 409 {object} web.ErrorResponse
// @Failure 422 {object} web.ErrorResponse
// @Router /orders/{id}/payment [post]
func (h *OrderHandler) ReportPayment(c *fiber.Ctx) error {
	var report domain.PaymentReport
	if err := c.BodyParser(&report); err != nil {
		return web.Error(c, http.StatusBadRequest, "Solicitud inválida")
	}

	err := h.orders.ReportPayment(c.UserContext(), sessionhandler.SessionID(c), c.Params("id"), report)
	switch {
	case err == nil:
		return web.OK(c, NoticeResponse{Notices: []notify.Notice{notify.Success("Pago reportado con éxito")}})
	case errors.Is(err, service.ErrReceiptPending):
		return web.Error(c, http.StatusConflict, "La imagen aún se está procesando")
	default:
		if _, ok := validation.As(err); ok {
			return web.Fail(c, err, "Por favor completa todos los campos obligatorios")
		}
		return web.Fail(c, err, paymentFailedMessage)
	}
}

// UploadReceipt accepts a receipt image and starts compressing it.
// @Summary Attach payment receipt
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Order ID"
// @Param comprobante formData file true "Receipt image"
// @Success 202 {object} ReceiptResponse
// @Failure 413 {object} web.ErrorResponse
// @Failure 422 {object} web.ErrorResponse
// @Router /orders/{id}/receipt [post]
func (h *OrderHandler) UploadReceipt(c *fiber.Ctx) error {
	fh, err := c.FormFile("comprobante")
	if err != nil {
		return web.Error(c, http.StatusBadRequest, "Selecciona una imagen")
	}
	f, err := fh.Open()
	if err != nil {
		return web.Fail(c, err, receiptFailedMessage)
	}
	defer f.Close()

	// One byte over the ceiling is enough to reject the file.
	data, err := io.ReadAll(io.LimitReader(f, int64(h.maxBytes)+1))
	if err != nil {
		return web.Fail(c, err, receiptFailedMessage)
	}

	status, err := h.receipts.Upload(c.UserContext(), sessionhandler.SessionID(c), c.Params("id"), data)
	switch {
	case errors.Is(err, imaging.ErrTooLarge):
		return web.Error(c, http.StatusRequestEntityTooLarge, fmt.Sprintf("La imagen no debe superar los %dMB", h.maxBytes/(1024*1024)))
	case errors.Is(err, imaging.ErrNotImage):
		return web.Error(c, http.StatusUnprocessableEntity, "Por favor selecciona una imagen válida")
	case err != nil:
		return web.Fail(c, err, receiptFailedMessage)
	}

	return c.Status(http.StatusAccepted).JSON(ReceiptResponse{Receipt: status, Notices: status.Notices})
}

// ReceiptStatus reports the compression progress of the attached receipt.
// @Summary Receipt status
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} ReceiptResponse
// @Router /orders/{id}/receipt [get]
func (h *OrderHandler) ReceiptStatus(c *fiber.Ctx) error {
	status, err := h.receipts.Status(c.UserContext(), sessionhandler.SessionID(c), c.Params("id"))
	if err != nil {
		return web.Fail(c, err, receiptFailedMessage)
	}
	return web.OK(c, ReceiptResponse{Receipt: status, Notices: status.Notices})
}

// RemoveReceipt detaches the receipt.
// @Summary Remove receipt
// @Produce json
// @Param id path string true "Order ID"
// @Success 200 {object} ReceiptResponse
// @Router /orders/{id}/receipt [delete]
func (h *OrderHandler) RemoveReceipt(c *fiber.Ctx) error {
	if err := h.receipts.Remove(c.UserContext(), sessionhandler.SessionID(c), c.Params("id")); err != nil {
		return web.Fail(c, err, receiptFailedMessage)
	}
	return web.OK(c, ReceiptResponse{Receipt: service.ReceiptStatus{State: domain.ReceiptNone}})
}
