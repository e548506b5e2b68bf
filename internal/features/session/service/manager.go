package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"envios-web/internal/core/clock"
	"envios-web/internal/core/logger"
	"envios-web/internal/core/metrics"
	"envios-web/internal/features/session/domain"
	"envios-web/internal/features/session/ports"

	"go.uber.org/zap"
)

// ErrTokenExpired is returned when the API issued a token that is already expired.
var ErrTokenExpired = errors.New("access token already expired")

type entry struct {
	session domain.Session
	timer   clock.Timer
}

// Manager owns every browser session. It keeps the decoded identity in memory, the raw
// token in the TokenStore and exactly one expiry timer per session id.
type Manager struct {
	auth  ports.Authenticator
	store ports.TokenStore
	clock clock.Clock
	log   *zap.Logger

	mu       sync.Mutex
	sessions map[string]*entry
}

// NewManager creates a new Manager.
func NewManager(auth ports.Authenticator, store ports.TokenStore, c clock.Clock) *Manager {
	return &Manager{
		auth:     auth,
		store:    store,
		clock:    c,
		log:      logger.Named("session"),
		sessions: make(map[string]*entry),
	}
}

// Init verifies the token store is reachable. It is called once at startup.
func (m *Manager) Init(ctx context.Context) error {
	if err := m.store.Ping(ctx); err != nil {
		return fmt.Errorf("session store unavailable: %w", err)
	}
	return nil
}

// Close stops every expiry timer and forgets the in-memory sessions. Persisted tokens survive
// so the next process can Restore them.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for sid, e := range m.sessions {
		e.timer.Stop()
		delete(m.sessions, sid)
		metrics.ActiveSessions.Dec()
	}
}

// Login authenticates, persists the token and schedules the expiry logout for sid.
func (m *Manager) Login(ctx context.Context, sid, email, password string) (domain.Session, error) {
	res, err := m.auth.Login(ctx, email, password)
	if err != nil {
		return domain.Session{}, fmt.Errorf("login failed: %w", err)
	}

	s, err := domain.DecodeToken(res.AccessToken)
	if err != nil {
		return domain.Session{}, err
	}
	s = s.Merge(res.User)

	now := m.clock.Now()
	if s.Expired(now) {
		return domain.Session{}, ErrTokenExpired
	}

	if err := m.store.Save(ctx, sid, s.Token, s.ExpiresAt.Sub(now)); err != nil {
		return domain.Session{}, fmt.Errorf("failed to persist token: %w", err)
	}

	m.install(sid, s)
	m.log.Info("Session started",
		zap.String("user_id", s.UserID),
		zap.String("role", string(s.Role)),
		zap.Time("expires_at", s.ExpiresAt),
	)
	return s, nil
}

// Restore hydrates sid from its persisted token. ok is false when the session stays empty:
// no token, a malformed token, or a token already expired (which is logged out on the spot).
func (m *Manager) Restore(ctx context.Context, sid string) (domain.Session, bool, error) {
	if s, ok := m.Current(sid); ok {
		return s, true, nil
	}

	token, found, err := m.store.Load(ctx, sid)
	if err != nil {
		return domain.Session{}, false, fmt.Errorf("failed to load token: %w", err)
	}
	if !found {
		return domain.Session{}, false, nil
	}

	s, err := domain.DecodeToken(token)
	if err != nil {
		m.log.Warn("Discarding malformed persisted token", zap.Error(err))
		if err := m.store.Delete(ctx, sid); err != nil {
			m.log.Warn("Failed to delete malformed token", zap.Error(err))
		}
		return domain.Session{}, false, nil
	}

	if s.Expired(m.clock.Now()) {
		m.log.Info("Persisted token expired", zap.String("user_id", s.UserID))
		if err := m.logout(ctx, sid, "expired"); err != nil {
			return domain.Session{}, false, err
		}
		return domain.Session{}, false, nil
	}

	m.install(sid, s)
	return s, true, nil
}

// Logout cancels the expiry timer, deletes the persisted token and clears the session.
func (m *Manager) Logout(ctx context.Context, sid string) error {
	return m.logout(ctx, sid, "explicit")
}

// Reject implements apiclient.TokenRejecter: the API refused the token of the session bound
// to ctx, so that session falls back to logged out.
func (m *Manager) Reject(ctx context.Context) {
	sid := SessionID(ctx)
	if sid == "" {
		return
	}
	m.log.Warn("Access token rejected by the API", zap.String("session_id", sid))
	if err := m.logout(context.WithoutCancel(ctx), sid, "rejected"); err != nil {
		m.log.Warn("Failed to drop rejected token", zap.Error(err))
	}
}

// Current returns the in-memory session of sid.
func (m *Manager) Current(sid string) (domain.Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.sessions[sid]
	if !ok || e.session.Expired(m.clock.Now()) {
		return domain.Session{}, false
	}
	return e.session, true
}

// Token implements apiclient.TokenSource for the session bound to ctx.
func (m *Manager) Token(ctx context.Context) string {
	s, ok := m.Current(SessionID(ctx))
	if !ok {
		return ""
	}
	return s.Token
}

// Register creates a customer account. It does not log in.
func (m *Manager) Register(ctx context.Context, r domain.Registration) error {
	r.Normalize()
	if err := r.Validate(); err != nil {
		return err
	}
	return m.auth.Register(ctx, r)
}

// install replaces any in-memory session of sid and arms its single expiry timer.
func (m *Manager) install(sid string, s domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if prev, ok := m.sessions[sid]; ok {
		prev.timer.Stop()
	} else {
		metrics.ActiveSessions.Inc()
	}

	e := &entry{session: s}
	e.timer = m.clock.AfterFunc(s.ExpiresAt.Sub(m.clock.Now()), func() {
		m.expire(sid, e)
	})
	m.sessions[sid] = e
}

// expire is the timer callback. It only acts if e is still the live entry, so a timer that
// lost a race with Logout or a new Login is a no-op.
func (m *Manager) expire(sid string, e *entry) {
	m.mu.Lock()
	if m.sessions[sid] != e {
		m.mu.Unlock()
		return
	}
	delete(m.sessions, sid)
	metrics.ActiveSessions.Dec()
	m.mu.Unlock()

	metrics.SessionLogoutsTotal.WithLabelValues("expired").Inc()
	m.log.Info("Session expired", zap.String("user_id", e.session.UserID))
	if err := m.store.Delete(context.Background(), sid); err != nil {
		m.log.Warn("Failed to delete expired token", zap.Error(err))
	}
}

func (m *Manager) logout(ctx context.Context, sid, reason string) error {
	m.mu.Lock()
	if e, ok := m.sessions[sid]; ok {
		e.timer.Stop()
		delete(m.sessions, sid)
		metrics.ActiveSessions.Dec()
	}
	m.mu.Unlock()

	metrics.SessionLogoutsTotal.WithLabelValues(reason).Inc()
	if err := m.store.Delete(ctx, sid); err != nil {
		return fmt.Errorf("failed to delete token: %w", err)
	}
	return nil
}
