package handler

import (
	"envios-web/internal/core/logger"
	"envios-web/internal/core/web"
	"envios-web/internal/features/session/domain"
	"envios-web/internal/features/session/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	localsSessionID = "session_id"
	localsSession   = "session"
)

// Middleware binds the browser session to the request: it issues the session cookie when
// missing, puts the session id in the user context and restores the identity, if any.
func (h *SessionHandler) Middleware(c *fiber.Ctx) error {
	sid := c.Cookies(h.cookie)
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		h.setCookie(c, sid)
	}

	Bind(c, sid, nil)

	s, ok, err := h.manager.Restore(c.UserContext(), sid)
	if err != nil {
		// Storage trouble degrades to an anonymous request.
		logger.Get().Warn("Failed to restore session",
			zap.String("ray_id", web.RayID(c)),
			zap.Error(err),
		)
	} else if ok {
		Bind(c, sid, &s)
	}

	return c.Next()
}

// Bind attaches a session id, and optionally the logged-in session, to the request.
func Bind(c *fiber.Ctx, sid string, s *domain.Session) {
	c.SetUserContext(service.WithSessionID(c.UserContext(), sid))
	c.Locals(localsSessionID, sid)
	if s != nil {
		c.Locals(localsSession, *s)
	}
}

// SessionID returns the browser session id of the request.
func SessionID(c *fiber.Ctx) string {
	sid, _ := c.Locals(localsSessionID).(string)
	return sid
}

// Current returns the logged-in session of the request.
func Current(c *fiber.Ctx) (domain.Session, bool) {
	s, ok := c.Locals(localsSession).(domain.Session)
	return s, ok
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(c *fiber.Ctx) error {
	if _, ok := Current(c); !ok {
		return web.Fail(c, web.ErrUnauthorized, "Debes iniciar sesión")
	}
	return c.Next()
}

// RequireRole rejects requests whose session does not hold role.
func RequireRole(role domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		s, ok := Current(c)
		if !ok {
			return web.Fail(c, web.ErrUnauthorized, "Debes iniciar sesión")
		}
		if s.Role != role {
			return web.Fail(c, web.ErrForbidden, "No tienes permisos para esta acción")
		}
		return c.Next()
	}
}
