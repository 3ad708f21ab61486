// Package logger configures slog for the dashboard server and carries request-scoped logging through the context.
//
// Handlers log in two ways:
//   - ContextRequestLogger returns a logger tagged with the request id, for events that happen while the request is running
//     (a failed CCA API call, a session cleared by the backend).
//   - ContextWithLogAttrs adds attributes to the single "request completed" entry written by RequestLogging
//     (the role of the signed in user, the error code returned to a script).
package logger

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/lmittmann/tint"
)

type contextKey struct {
	name string
}

var (
	logAttrsKey      = contextKey{"log_attrs"}
	requestLoggerKey = contextKey{"request_logger"}
)

var levels = map[string]slog.Level{
	"debug":   slog.LevelDebug,
	"info":    slog.LevelInfo,
	"warn":    slog.LevelWarn,
	"warning": slog.LevelWarn,
	"error":   slog.LevelError,
}

// ParseLogLevel converts a LOG_LEVEL value to a slog.Level. Unknown values give debug.
func ParseLogLevel(level string) slog.Level {
	if l, ok := levels[strings.ToLower(level)]; ok {
		return l
	}
	return slog.LevelDebug
}

// InitLogger returns the server logger: colourised text on stderr in dev, JSON on stdout elsewhere
func InitLogger(logLevel slog.Level, environment string) *slog.Logger {
	if environment == "dev" {
		return slog.New(newDevHandler(os.Stderr, logLevel))
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func newDevHandler(w io.Writer, level slog.Level) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      level,
		TimeFormat: time.Kitchen,
	})
}

// ContextWithLogAttrs adds attrs to the final log entry of the request.
// It is a no-op (with a warning) outside RequestLogging.
func ContextWithLogAttrs(ctx context.Context, attrs ...slog.Attr) context.Context {
	shared, ok := ctx.Value(logAttrsKey).(*[]slog.Attr)
	if !ok {
		slog.Warn("ContextWithLogAttrs called on context without shared log attributes slice")
		return ctx
	}
	*shared = append(*shared, attrs...)
	return ctx
}

func ContextLogAttrs(ctx context.Context) []slog.Attr {
	if shared, ok := ctx.Value(logAttrsKey).(*[]slog.Attr); ok {
		return *shared
	}
	return nil
}

// ContextRequestLogger returns the logger added by RequestLogging, or slog.Default()
func ContextRequestLogger(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(requestLoggerKey).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

func ContextWithRequestLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, requestLoggerKey, logger)
}

// unlogged paths are scraped or polled and would drown the request log
func unlogged(path string) bool {
	return strings.HasPrefix(path, "/health/") || path == "/metrics"
}

var components = []struct {
	prefix string
	name   string
}{
	{"/ui-api/", "ui-api"},
	{"/static/", "static"},
	{"/auth/", "auth"},
	{"/admin/", "admin"},
}

func component(path string) string {
	for _, c := range components {
		if strings.HasPrefix(path, c.prefix) {
			return c.name
		}
	}
	return "ui"
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// RequestLogging is chi middleware that writes one entry per request once the response is complete.
// It must run after middleware.RequestID.
func RequestLogging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if unlogged(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			requestID := middleware.GetReqID(r.Context())

			shared := &[]slog.Attr{}
			ctx := context.WithValue(r.Context(), logAttrsKey, shared)
			ctx = ContextWithRequestLogger(ctx, logger.With(
				slog.String("type", "request"),
				slog.String("request_id", requestID),
			))

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			attrs := make([]slog.Attr, 0, 10+len(*shared))
			attrs = append(attrs,
				slog.String("type", "HTTP"),
				slog.Int("status", ww.Status()),
				slog.String("request_id", requestID),
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("remote_addr", r.RemoteAddr),
				slog.String("component", component(r.URL.Path)),
			)
			if r.Header.Get("HX-Request") == "true" {
				attrs = append(attrs, slog.Bool("htmx", true))
			}
			attrs = append(attrs, *shared...)
			attrs = append(attrs,
				slog.Duration("duration", time.Since(start)),
				slog.Int("bytes", ww.BytesWritten()),
			)

			logger.LogAttrs(r.Context(), statusLevel(ww.Status()), "request completed", attrs...)
		})
	}
}
