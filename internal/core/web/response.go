// Package web holds the response conventions shared by every feature handler.
package web

import (
	"errors"
	"net/http"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/core/logger"
	"envios-web/internal/core/notify"
	"envios-web/internal/core/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrUnauthorized is returned by guards when no session is bound to the request.
var ErrUnauthorized = errors.New("unauthorized")

// ErrForbidden is returned by guards when the session lacks the required role.
var ErrForbidden = errors.New("forbidden")

// ErrorResponse represents the structure of an error response.
type ErrorResponse struct {
	// Message is the error description shown to the user.
	Message string `json:"message"`
	// RayID is the unique request identifier for debugging.
	RayID string `json:"ray_id"`
	// Fields lists invalid form fields when the request failed validation.
	Fields validation.Errors `json:"fields,omitempty"`
	// Notices are the transient toasts to show.
	Notices []notify.Notice `json:"notices,omitempty"`
}

// RayID returns the request id assigned by the requestid middleware.
func RayID(c *fiber.Ctx) string {
	rayID, ok := c.Locals("requestid").(string)
	if !ok {
		return "unknown"
	}
	return rayID
}

// Error writes an ErrorResponse with a matching error toast.
func Error(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{
		Message: msg,
		RayID:   RayID(c),
		Notices: []notify.Notice{notify.Error(msg)},
	})
}

// Fail maps err onto the error taxonomy and writes the response. fallback is the
// user-facing message used when err carries no message of its own.
//
//	validation.Errors      → 422 with the field list
//	api transport failure  → 502 with fallback
//	api error response     → upstream status with the server message verbatim
//	ErrUnauthorized        → 401
//	ErrForbidden           → 403
//	anything else          → 500 with fallback
func Fail(c *fiber.Ctx, err error, fallback string) error {
	rayID := RayID(c)

	if errs, ok := validation.As(err); ok {
		return c.Status(http.StatusUnprocessableEntity).JSON(ErrorResponse{
			Message: fallback,
			RayID:   rayID,
			Fields:  errs,
			Notices: []notify.Notice{notify.Error(fallback)},
		})
	}

	status := http.StatusInternalServerError
	msg := fallback

	switch {
	case errors.Is(err, ErrUnauthorized):
		status = http.StatusUnauthorized
		msg = "Debes iniciar sesión"
	case errors.Is(err, ErrForbidden):
		status = http.StatusForbidden
		msg = "No tienes permisos para esta acción"
	default:
		if apiErr, ok := apiclient.AsError(err); ok {
			if apiErr.IsTransport() {
				status = http.StatusBadGateway
			} else {
				status = apiErr.Status
				msg = apiclient.MessageOr(err, fallback)
			}
		}
	}

	logger.Get().Error("Request failed",
		zap.String("path", c.Path()),
		zap.String("ray_id", rayID),
		zap.Int("status", status),
		zap.Error(err),
	)

	return Error(c, status, msg)
}

// OK writes payload with a 200 status.
func OK(c *fiber.Ctx, payload any) error {
	return c.Status(http.StatusOK).JSON(payload)
}
