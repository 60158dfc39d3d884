package service

import "context"

type sessionCtxKey struct{}

// WithSession attaches s to ctx.
func WithSession(ctx context.Context, s *Session) context.Context {
	return context.WithValue(ctx, sessionCtxKey{}, s)
}

// SessionFromContext returns the session attached by the session
// middleware. A handler reaching for a session on a route without that
// middleware is a wiring bug, so this panics rather than returning an error.
func SessionFromContext(ctx context.Context) *Session {
	s, ok := ctx.Value(sessionCtxKey{}).(*Session)
	if !ok || s == nil {
		panic("service: no session in context; the route is missing the session middleware")
	}
	return s
}
