package ports

import (
	"context"
	"time"

	"envios-web/internal/features/session/domain"
)

// LoginResult is the successful answer of the authentication endpoint.
type LoginResult struct {
	AccessToken string         `json:"accessToken"`
	User        domain.Profile `json:"user"`
}

// Authenticator exchanges credentials with the remote API.
type Authenticator interface {
	// Login posts the credentials and returns the issued access token.
	Login(ctx context.Context, email, password string) (LoginResult, error)
	// Register creates a customer account.
	Register(ctx context.Context, r domain.Registration) error
}

// TokenStore persists raw access tokens per session id.
type TokenStore interface {
	// Load returns the stored token; ok is false when none exists.
	Load(ctx context.Context, sid string) (token string, ok bool, err error)
	// Save stores token for ttl.
	Save(ctx context.Context, sid, token string, ttl time.Duration) error
	// Delete removes the token. Deleting a missing token is not an error.
	Delete(ctx context.Context, sid string) error
	// Ping checks the backing store is reachable.
	Ping(ctx context.Context) error
}

// StateMover carries per-session state over to the session id issued at login.
type StateMover interface {
	MoveSession(ctx context.Context, from, to string) error
}
