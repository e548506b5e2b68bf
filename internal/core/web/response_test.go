package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/core/notify"
	"envios-web/internal/core/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func failWith(err error) *fiber.App {
	app := fiber.New()
	app.Use(requestid.New(requestid.Config{Header: "X-Ray-ID"}))
	app.Get("/", func(c *fiber.Ctx) error {
		return Fail(c, err, "Algo salió mal")
	})
	return app
}

func decode(t *testing.T, resp *http.Response) ErrorResponse {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var out ErrorResponse
	require.NoError(t, json.Unmarshal(body, &out))
	return out
}

func TestFail(t *testing.T) {
	var fields validation.Errors
	fields.Add("peso", "debe ser mayor que 0")

	tests := []struct {
		name    string
		err     error
		status  int
		message string
		fields  int
	}{
		{"validation", fields, http.StatusUnprocessableEntity, "Algo salió mal", 1},
		{"transport", &apiclient.Error{Message: apiclient.DefaultErrorMessage, Err: io.EOF}, http.StatusBadGateway, "Algo salió mal", 0},
		{"server message", fmt.Errorf("create order: %w", &apiclient.Error{Status: 400, Message: "Distancia inválida"}), http.StatusBadRequest, "Distancia inválida", 0},
		{"server without message", &apiclient.Error{Status: 500, Message: apiclient.DefaultErrorMessage}, http.StatusInternalServerError, "Algo salió mal", 0},
		{"unauthorized", ErrUnauthorized, http.StatusUnauthorized, "Debes iniciar sesión", 0},
		{"forbidden", ErrForbidden, http.StatusForbidden, "No tienes permisos para esta acción", 0},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "Algo salió mal", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := failWith(tt.err).Test(httptest.NewRequest(http.MethodGet, "/", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.status, resp.StatusCode)

			body := decode(t, resp)
			assert.Equal(t, tt.message, body.Message)
			assert.Len(t, body.Fields, tt.fields)
			assert.NotEmpty(t, body.RayID)
			assert.Equal(t, resp.Header.Get("X-Ray-ID"), body.RayID)
			require.Len(t, body.Notices, 1)
			assert.Equal(t, notify.LevelError, body.Notices[0].Level)
		})
	}
}

func TestRayID_Unknown(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(RayID(c)) })

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "unknown", string(body))
}
