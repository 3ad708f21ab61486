package auth

import (
	"context"
	"sync/atomic"

	"github.com/pasc-cca/ccadash/internal/client"
	"github.com/pasc-cca/ccadash/internal/session"
)

type contextKey struct {
	name string
}

var requestSessionKey = contextKey{"request-session"}

// RequestSession is the session of one browser request: the shared API client bound to the request's cookies,
// and whether the backend rejected the session while the request was being handled.
type RequestSession struct {
	Client *client.Client
	Store  *session.CookieStore

	invalidated atomic.Bool
	redirected  atomic.Bool
}

// Invalidated reports whether a backend call made during this request cleared the session
func (rs *RequestSession) Invalidated() bool {
	return rs.invalidated.Load()
}

func ContextWithRequestSession(ctx context.Context, rs *RequestSession) context.Context {
	return context.WithValue(ctx, requestSessionKey, rs)
}

func ContextRequestSession(ctx context.Context) (*RequestSession, bool) {
	rs, ok := ctx.Value(requestSessionKey).(*RequestSession)
	return rs, ok
}
