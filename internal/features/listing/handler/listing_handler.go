package handler

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"envios-web/internal/core/clock"
	"envios-web/internal/core/logger"
	"envios-web/internal/core/web"
	"envios-web/internal/features/listing/domain"
	"envios-web/internal/features/listing/service"
	sessionhandler "envios-web/internal/features/session/handler"
	sessionservice "envios-web/internal/features/session/service"

	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

const (
	localsLiveSession = "live_session_id"
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	pingInterval      = 30 * time.Second
	writeWait         = 5 * time.Second
)

// ListingHandler serves the admin order listing over HTTP and the live socket.
type ListingHandler struct {
	service  *service.ListingService
	clock    clock.Clock
	debounce time.Duration
}

// NewListingHandler creates a new instance of ListingHandler. debounce delays live tracking searches.
func NewListingHandler(s *service.ListingService, c clock.Clock, debounce time.Duration) *ListingHandler {
	return &ListingHandler{service: s, clock: c, debounce: debounce}
}

func parseQuery(c *fiber.Ctx) domain.Query {
	var q domain.Query
	_ = c.QueryParser(&q)
	return q.Normalize()
}

// ListOrders returns one page of orders.
// @Summary List all orders
// @Description Server side paging and filtering over every customer's orders.
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size (50 or 100)"
// @Param status query string false "Status filter"
// @Param trackingNumber query string false "Tracking search"
// @Success 200 {object} domain.Page
// @Failure 502 {object} web.ErrorResponse
// @Router /admin/orders [get]
func (h *ListingHandler) ListOrders(c *fiber.Ctx) error {
	page, err := h.service.Fetch(c.UserContext(), parseQuery(c))
	if err != nil {
		return web.Fail(c, err, "Error al cargar las órdenes")
	}
	return web.OK(c, page)
}

// ExportOrders downloads the requested page as a spreadsheet.
// @Summary Export orders
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param page query int false "Page number"
// @Param limit query int false "Page size (50 or 100)"
// @Param status query string false "Status filter"
// @Param trackingNumber query string false "Tracking search"
// @Success 200 {file} file
// @Failure 502 {object} web.ErrorResponse
// @Router /admin/orders/export [get]
func (h *ListingHandler) ExportOrders(c *fiber.Ctx) error {
	data, err := h.service.Export(c.UserContext(), parseQuery(c))
	if err != nil {
		return web.Fail(c, err, "Error al exportar las órdenes")
	}

	name := fmt.Sprintf("ordenes-%s.xlsx", h.clock.Now().Format("20060102-150405"))
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="%s"`, name))
	return c.Send(data)
}

// Upgrade admits websocket handshakes and carries the session id over to the connection.
func (h *ListingHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	c.Locals(localsLiveSession, sessionhandler.SessionID(c))
	return c.Next()
}

// Live returns the live listing socket. Clients send service.Event messages and receive
// service.Snapshot messages; the first snapshot is pushed on connect.
func (h *ListingHandler) Live() fiber.Handler {
	return websocket.New(h.live)
}

func (h *ListingHandler) live(conn *websocket.Conn) {
	sid, _ := conn.Locals(localsLiveSession).(string)
	log := logger.Named("listing").With(zap.String("session", sid))
	ctx, cancel := context.WithCancel(sessionservice.WithSessionID(context.Background(), sid))
	defer cancel()

	var wmu sync.Mutex
	write := func(v any) error {
		wmu.Lock()
		defer wmu.Unlock()
		_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteJSON(v)
	}

	ctl := service.NewController(ctx, h.service, h.clock, h.debounce, func(s service.Snapshot) {
		if err := write(s); err != nil {
			log.Debug("Live snapshot dropped", zap.Error(err))
		}
	})
	defer ctl.Close()

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				wmu.Lock()
				err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait))
				wmu.Unlock()
				if err != nil {
					return
				}
			}
		}
	}()

	_ = ctl.Handle(service.Event{Type: service.EventRefresh})

	for {
		var ev service.Event
		if err := conn.ReadJSON(&ev); err != nil {
			log.Debug("Live listing closed", zap.Error(err))
			return
		}
		if err := ctl.Handle(ev); err != nil && !errors.Is(err, domain.ErrPageOutOfRange) {
			log.Warn("Live listing event rejected", zap.String("type", string(ev.Type)), zap.Error(err))
		}
	}
}
