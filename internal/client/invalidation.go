package client

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"
)

const DefaultAuthScreenPrefix = "/auth/"

type contextKey struct {
	name string
}

var screenKey = contextKey{"screen"}

// ContextWithScreen records the screen (UI path) the caller is on.
// 401 responses received while on an auth-flow screen do not clear the session.
func ContextWithScreen(ctx context.Context, screen string) context.Context {
	return context.WithValue(ctx, screenKey, screen)
}

func ScreenFromContext(ctx context.Context) string {
	screen, _ := ctx.Value(screenKey).(string)
	return screen
}

// SessionInvalidated is published when the backend rejects the session token
type SessionInvalidated struct {
	Screen string    // screen the caller was on
	Method string    // method of the rejected request
	Path   string    // API path of the rejected request
	At     time.Time // when the 401 was received
}

// SessionListener is called synchronously, once per rejected request, on the goroutine that made the request
type SessionListener func(ctx context.Context, ev SessionInvalidated)

type listenerRegistry struct {
	mu        sync.RWMutex
	nextID    int
	listeners map[int]SessionListener
}

// OnSessionInvalidated registers a listener and returns a function that removes it.
// Listeners are shared with clients created by WithSession.
func (c *Client) OnSessionInvalidated(fn SessionListener) (unsubscribe func()) {
	r := c.listeners
	r.mu.Lock()
	id := r.nextID
	r.nextID++
	r.listeners[id] = fn
	r.mu.Unlock()

	return func() {
		r.mu.Lock()
		delete(r.listeners, id)
		r.mu.Unlock()
	}
}

func (r *listenerRegistry) publish(ctx context.Context, ev SessionInvalidated) {
	r.mu.RLock()
	fns := make([]SessionListener, 0, len(r.listeners))
	for _, fn := range r.listeners {
		fns = append(fns, fn)
	}
	r.mu.RUnlock()

	for _, fn := range fns {
		fn(ctx, ev)
	}
}

func (c *Client) isAuthScreen(screen string) bool {
	return strings.HasPrefix(screen, c.authScreenPrefix)
}

// invalidateSession is the response interceptor for 401 responses.
// It reports whether the session was cleared.
func (c *Client) invalidateSession(ctx context.Context, method, path string) bool {
	screen := ScreenFromContext(ctx)
	if c.isAuthScreen(screen) {
		return false
	}

	if err := c.store.Clear(); err != nil {
		c.logger.Error("failed to clear session after 401",
			slog.String("component", "client.invalidateSession"),
			slog.String("error", err.Error()),
		)
	}

	c.metrics.SessionInvalidated()

	c.logger.Debug("session invalidated by backend",
		slog.String("component", "client.invalidateSession"),
		slog.String("screen", screen),
		slog.String("method", method),
		slog.String("path", path),
	)

	c.listeners.publish(ctx, SessionInvalidated{
		Screen: screen,
		Method: method,
		Path:   path,
		At:     time.Now(),
	})
	return true
}
