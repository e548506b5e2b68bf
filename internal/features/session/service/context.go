package service

import "context"

type sidKey struct{}

// WithSessionID binds a browser session id to ctx.
func WithSessionID(ctx context.Context, sid string) context.Context {
	return context.WithValue(ctx, sidKey{}, sid)
}

// SessionID returns the session id bound to ctx, or "".
func SessionID(ctx context.Context) string {
	sid, _ := ctx.Value(sidKey{}).(string)
	return sid
}
