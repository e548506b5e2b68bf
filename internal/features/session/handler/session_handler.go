package handler

import (
	"fmt"
	"net/http"

	"envios-web/internal/core/logger"
	"envios-web/internal/core/notify"
	"envios-web/internal/core/validation"
	"envios-web/internal/core/web"
	"envios-web/internal/features/session/domain"
	"envios-web/internal/features/session/ports"
	"envios-web/internal/features/session/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	loginFailedMessage    = "Error al iniciar sesión. Por favor, revisa tus credenciales."
	registerFailedMessage = "Error al registrar usuario"
)

// SessionHandler handles login, logout, registration and session introspection.
type SessionHandler struct {
	manager *service.Manager
	cookie  string
	secure  bool
	movers  []ports.StateMover
}

// NewSessionHandler creates a new instance of SessionHandler.
// cookie is the session cookie name; secure marks it HTTPS-only. movers carry the
// anonymous state of a browser over to the session id issued at login.
func NewSessionHandler(m *service.Manager, cookie string, secure bool, movers ...ports.StateMover) *SessionHandler {
	return &SessionHandler{
		manager: m,
		cookie:  cookie,
		secure:  secure,
		movers:  movers,
	}
}

// LoginForm is the credentials payload.
type LoginForm struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// SessionResponse describes the identity and menu of the caller.
type SessionResponse struct {
	Authenticated bool             `json:"authenticated"`
	Session       *domain.Session  `json:"session,omitempty"`
	Navigation    []domain.NavItem `json:"navigation"`
	Notices       []notify.Notice  `json:"notices,omitempty"`
	Reload        bool             `json:"reload,omitempty"`
	Redirect      string           `json:"redirect,omitempty"`
}

func sessionResponse(s *domain.Session) SessionResponse {
	return SessionResponse{
		Authenticated: s != nil,
		Session:       s,
		Navigation:    domain.Navigation(s),
	}
}

// Login handles the credentials form.
// @Summary Log in
// @Description Authenticates against the shipping API and binds the identity to a newly issued browser session.
// @Accept json
// @Produce json
// @Param credentials body LoginForm true "Credentials"
// @Success 200 {object} SessionResponse
// @Failure 401 {object} web.ErrorResponse
// @Failure 422 {object} web.ErrorResponse
// @Router /auth/login [post]
func (h *SessionHandler) Login(c *fiber.Ctx) error {
	var form LoginForm
	if err := c.BodyParser(&form); err != nil {
		return web.Error(c, http.StatusBadRequest, "Solicitud inválida")
	}
	if err := validation.Struct(form); err != nil {
		return web.Fail(c, err, loginFailedMessage)
	}

	// A fresh id on every login, so a session id planted before authentication is worthless.
	ctx := c.UserContext()
	prev, sid := SessionID(c), uuid.NewString()
	s, err := h.manager.Login(ctx, sid, form.Email, form.Password)
	if err != nil {
		return web.Fail(c, err, loginFailedMessage)
	}
	h.rotate(c, prev, sid)
	Bind(c, sid, &s)

	resp := sessionResponse(&s)
	resp.Notices = []notify.Notice{notify.Success(fmt.Sprintf("Bienvenido %s!", s.FirstName))}
	resp.Redirect = "/"
	return web.OK(c, resp)
}

// Logout ends the session and asks the browser for a full reload.
// @Summary Log out
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /auth/logout [post]
func (h *SessionHandler) Logout(c *fiber.Ctx) error {
	if err := h.manager.Logout(c.UserContext(), SessionID(c)); err != nil {
		return web.Fail(c, err, "Error al cerrar sesión")
	}
	c.ClearCookie(h.cookie)

	resp := sessionResponse(nil)
	resp.Reload = true
	resp.Notices = []notify.Notice{notify.Success("Sesión cerrada.")}
	return web.OK(c, resp)
}

// Session returns the current identity and the role-based navigation.
// @Summary Current session
// @Produce json
// @Success 200 {object} SessionResponse
// @Router /auth/session [get]
func (h *SessionHandler) Session(c *fiber.Ctx) error {
	if s, ok := Current(c); ok {
		return web.OK(c, sessionResponse(&s))
	}
	return web.OK(c, sessionResponse(nil))
}

// Register creates a customer account.
// @Summary Register
// @Accept json
// @Produce json
// @Param registration body domain.Registration true "Sign-up form"
// @Success 201 {object} SessionResponse
// @Failure 422 {object} web.ErrorResponse
// @Router /auth/register [post]
func (h *SessionHandler) Register(c *fiber.Ctx) error {
	var form domain.Registration
	if err := c.BodyParser(&form); err != nil {
		return web.Error(c, http.StatusBadRequest, "Solicitud inválida")
	}

	if err := h.manager.Register(c.UserContext(), form); err != nil {
		return web.Fail(c, err, registerFailedMessage)
	}

	resp := sessionResponse(nil)
	resp.Redirect = "/login"
	resp.Notices = []notify.Notice{notify.Success("Usuario registrado con éxito")}
	return c.Status(http.StatusCreated).JSON(resp)
}

// rotate moves the state of prev over to sid, ends any session prev still held and
// points the cookie at sid. Failures only cost the carried state.
func (h *SessionHandler) rotate(c *fiber.Ctx, prev, sid string) {
	ctx := c.UserContext()
	log := logger.Get().With(zap.String("ray_id", web.RayID(c)))

	if _, ok := Current(c); ok {
		if err := h.manager.Logout(ctx, prev); err != nil {
			log.Warn("Failed to end the previous session", zap.Error(err))
		}
	}
	for _, m := range h.movers {
		if err := m.MoveSession(ctx, prev, sid); err != nil {
			log.Warn("Failed to carry session state over", zap.Error(err))
		}
	}
	h.setCookie(c, sid)
}

func (h *SessionHandler) setCookie(c *fiber.Ctx, sid string) {
	c.Cookie(&fiber.Cookie{
		Name:     h.cookie,
		Value:    sid,
		Path:     "/",
		HTTPOnly: true,
		Secure:   h.secure,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}
