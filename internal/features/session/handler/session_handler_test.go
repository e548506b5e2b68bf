package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"envios-web/internal/core/apiclient"
	"envios-web/internal/core/clock"
	"envios-web/internal/core/web"
	"envios-web/internal/features/session/domain"
	"envios-web/internal/features/session/ports"
	"envios-web/internal/features/session/service"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cookieName = "envios_sid"

type fakeAuth struct {
	token string
	err   error
	reg   []domain.Registration
}

func (f *fakeAuth) Login(context.Context, string, string) (ports.LoginResult, error) {
	if f.err != nil {
		return ports.LoginResult{}, f.err
	}
	return ports.LoginResult{AccessToken: f.token, User: domain.Profile{FirstName: "Ana"}}, nil
}

func (f *fakeAuth) Register(_ context.Context, r domain.Registration) error {
	f.reg = append(f.reg, r)
	return f.err
}

type mapStore struct {
	mu sync.Mutex
	m  map[string]string
}

func (s *mapStore) Load(_ context.Context, sid string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.m[sid]
	return v, ok, nil
}

func (s *mapStore) Save(_ context.Context, sid, token string, _ time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[sid] = token
	return nil
}

func (s *mapStore) Delete(_ context.Context, sid string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, sid)
	return nil
}

func (s *mapStore) Ping(context.Context) error { return nil }

func signedToken(t *testing.T, role string, exp time.Time) string {
	t.Helper()
	raw, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "u-1", "role": role, "email": "ana@example.com", "exp": exp.Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)
	return raw
}

type recordingMover struct {
	mu    sync.Mutex
	moves [][2]string
}

func (r *recordingMover) MoveSession(_ context.Context, from, to string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.moves = append(r.moves, [2]string{from, to})
	return nil
}

func setupApp(auth *fakeAuth, movers ...ports.StateMover) *fiber.App {
	m := service.NewManager(auth, &mapStore{m: map[string]string{}}, clock.NewFake(time.Now()))
	h := NewSessionHandler(m, cookieName, false, movers...)

	app := fiber.New()
	app.Use(h.Middleware)
	app.Get("/auth/session", h.Session)
	app.Post("/auth/login", h.Login)
	app.Post("/auth/logout", h.Logout)
	app.Post("/auth/register", h.Register)
	app.Get("/mine", RequireAuth, func(c *fiber.Ctx) error { return c.SendString("ok") })
	app.Get("/admin", RequireRole(domain.RoleAdmin), func(c *fiber.Ctx) error { return c.SendString("ok") })
	return app
}

func request(t *testing.T, app *fiber.App, method, path, sid string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if sid != "" {
		req.AddCookie(&http.Cookie{Name: cookieName, Value: sid})
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func sessionCookie(resp *http.Response) string {
	for _, c := range resp.Cookies() {
		if c.Name == cookieName {
			return c.Value
		}
	}
	return ""
}

func decodeSession(t *testing.T, resp *http.Response) SessionResponse {
	t.Helper()
	var out SessionResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestSessionHandler_Flow(t *testing.T) {
	auth := &fakeAuth{token: signedToken(t, "BASIC", time.Now().Add(time.Hour))}
	app := setupApp(auth)

	resp := request(t, app, http.MethodGet, "/auth/session", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sid := sessionCookie(resp)
	require.NotEmpty(t, sid, "anonymous visitors get a session cookie")
	anon := decodeSession(t, resp)
	assert.False(t, anon.Authenticated)
	assert.Len(t, anon.Navigation, 3)

	resp = request(t, app, http.MethodGet, "/mine", sid, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	anonSID := sid
	resp = request(t, app, http.MethodPost, "/auth/login", anonSID, LoginForm{Email: "ana@example.com", Password: "Secreta123"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	sid = sessionCookie(resp)
	require.NotEmpty(t, sid)
	assert.NotEqual(t, anonSID, sid, "login issues a fresh session id")
	logged := decodeSession(t, resp)
	assert.True(t, logged.Authenticated)
	require.NotNil(t, logged.Session)
	assert.Equal(t, "Ana", logged.Session.FirstName)
	require.Len(t, logged.Notices, 1)
	assert.Equal(t, "Bienvenido Ana!", logged.Notices[0].Message)

	resp = request(t, app, http.MethodGet, "/mine", sid, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp = request(t, app, http.MethodGet, "/mine", anonSID, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, "the pre-login id stays anonymous")

	resp = request(t, app, http.MethodGet, "/admin", sid, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = request(t, app, http.MethodGet, "/auth/session", sid, nil)
	current := decodeSession(t, resp)
	assert.True(t, current.Authenticated)
	assert.Equal(t, domain.RoleCustomer, current.Session.Role)

	resp = request(t, app, http.MethodPost, "/auth/logout", sid, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	out := decodeSession(t, resp)
	assert.True(t, out.Reload)
	assert.False(t, out.Authenticated)

	resp = request(t, app, http.MethodGet, "/auth/session", sid, nil)
	assert.False(t, decodeSession(t, resp).Authenticated)
}

func TestSessionHandler_AdminAccess(t *testing.T) {
	auth := &fakeAuth{token: signedToken(t, "ADMIN", time.Now().Add(time.Hour))}
	app := setupApp(auth)

	anon := sessionCookie(request(t, app, http.MethodGet, "/auth/session", "", nil))
	sid := sessionCookie(request(t, app, http.MethodPost, "/auth/login", anon, LoginForm{Email: "ana@example.com", Password: "x"}))

	resp := request(t, app, http.MethodGet, "/admin", sid, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestSessionHandler_Login_RotatesSessionID(t *testing.T) {
	mover := &recordingMover{}
	app := setupApp(&fakeAuth{token: signedToken(t, "BASIC", time.Now().Add(time.Hour))}, mover)

	planted := sessionCookie(request(t, app, http.MethodGet, "/auth/session", "", nil))
	first := sessionCookie(request(t, app, http.MethodPost, "/auth/login", planted, LoginForm{Email: "ana@example.com", Password: "x"}))
	require.NotEmpty(t, first)
	assert.NotEqual(t, planted, first)
	assert.Equal(t, [][2]string{{planted, first}}, mover.moves, "planner and draft follow the new id")

	// Logging in again from an authenticated id ends the old session.
	second := sessionCookie(request(t, app, http.MethodPost, "/auth/login", first, LoginForm{Email: "ana@example.com", Password: "x"}))
	require.NotEmpty(t, second)
	assert.NotEqual(t, first, second)
	assert.False(t, decodeSession(t, request(t, app, http.MethodGet, "/auth/session", first, nil)).Authenticated)
	assert.True(t, decodeSession(t, request(t, app, http.MethodGet, "/auth/session", second, nil)).Authenticated)
}

func TestSessionHandler_Login_FailureKeepsSessionID(t *testing.T) {
	mover := &recordingMover{}
	app := setupApp(&fakeAuth{err: &apiclient.Error{Status: http.StatusUnauthorized, Message: "no"}}, mover)

	anon := sessionCookie(request(t, app, http.MethodGet, "/auth/session", "", nil))
	resp := request(t, app, http.MethodPost, "/auth/login", anon, LoginForm{Email: "ana@example.com", Password: "x"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Empty(t, sessionCookie(resp))
	assert.Empty(t, mover.moves)
}

func TestSessionHandler_Login_Failure(t *testing.T) {
	auth := &fakeAuth{err: &apiclient.Error{Status: http.StatusUnauthorized, Message: "Usuario o contraseña incorrectos"}}
	app := setupApp(auth)

	resp := request(t, app, http.MethodPost, "/auth/login", "", LoginForm{Email: "ana@example.com", Password: "bad"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var body web.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, "Usuario o contraseña incorrectos", body.Message)
}

func TestSessionHandler_Login_Invalid(t *testing.T) {
	app := setupApp(&fakeAuth{})

	resp := request(t, app, http.MethodPost, "/auth/login", "", LoginForm{Email: "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)

	var body web.ErrorResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Len(t, body.Fields, 2)
}

func TestSessionHandler_Register(t *testing.T) {
	auth := &fakeAuth{}
	app := setupApp(auth)

	resp := request(t, app, http.MethodPost, "/auth/register", "", domain.Registration{
		FirstName: "Ana", LastName: "Pérez", Email: "ana@example.com",
		Password: "Secreta123", ConfirmPassword: "Secreta123",
		DateOfBirth: "1990-05-01", Phone: "0414", Username: "anap", DocumentNumber: "123",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	out := decodeSession(t, resp)
	assert.Equal(t, "/login", out.Redirect)
	require.Len(t, auth.reg, 1)

	resp = request(t, app, http.MethodPost, "/auth/register", "", domain.Registration{Email: "ana@example.com"})
	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	assert.Len(t, auth.reg, 1)
}
