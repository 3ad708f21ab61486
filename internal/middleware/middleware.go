package middleware

import (
	"fmt"
	"html"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/jub0bs/cors"
	"golang.org/x/time/rate"

	"github.com/pasc-cca/ccadash/internal/apperrors"
	"github.com/pasc-cca/ccadash/internal/logger"
	"github.com/pasc-cca/ccadash/internal/responses"
)

const MaxRequestSizeHeader = "Ccadash-Max-Request-Size"

// limiters unused for this long are dropped
const limiterIdleTimeout = 10 * time.Minute

// CORS adapts a pre-built jub0bs/cors middleware to chi
func CORS(m *cors.Middleware) func(http.Handler) http.Handler {
	return m.Wrap
}

// SecurityHeaders sets the headers sent with every page.
// htmx is loaded from unpkg, everything else is served by the dashboard.
func SecurityHeaders(environment string) func(http.Handler) http.Handler {
	headers := map[string]string{
		"X-Content-Type-Options":  "nosniff",
		"X-Frame-Options":         "DENY",
		"Referrer-Policy":         "strict-origin-when-cross-origin",
		"Content-Security-Policy": "default-src 'self'; script-src 'self' https://unpkg.com; style-src 'self' 'unsafe-inline'; frame-ancestors 'none';",
	}
	if environment == "prod" || environment == "staging" {
		headers["Strict-Transport-Security"] = "max-age=31536000; includeSubDomains"
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			for k, v := range headers {
				w.Header().Set(k, v)
			}
			next.ServeHTTP(w, r)
		})
	}
}

// reject answers a request refused by middleware. Scripts get the JSON error body,
// htmx gets an alert fragment it can swap in, plain form posts get text.
func reject(w http.ResponseWriter, r *http.Request, status int, code apperrors.ErrorCode, message string) {
	switch {
	case strings.HasPrefix(r.URL.Path, "/ui-api/") || strings.Contains(r.Header.Get("Accept"), "application/json"):
		responses.RespondWithError(w, r, status, code, message)
	case r.Header.Get("HX-Request") == "true":
		logger.ContextWithLogAttrs(r.Context(), slog.String("error_code", string(code)))
		// htmx does not swap error responses
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `<div class="alert alert-error" role="alert">%s</div>`, html.EscapeString(message))
	default:
		logger.ContextWithLogAttrs(r.Context(), slog.String("error_code", string(code)))
		http.Error(w, message, status)
	}
}

// RequestSizeLimit rejects form posts larger than maxBytes and advertises the limit in a response header
func RequestSizeLimit(maxBytes int64) func(http.Handler) http.Handler {
	limit := strconv.FormatInt(maxBytes, 10)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set(MaxRequestSizeHeader, limit)

			if r.ContentLength > maxBytes {
				logger.ContextRequestLogger(r.Context()).Warn("Form post too large",
					slog.String("component", "middleware.RequestSizeLimit"),
					slog.Int64("content_length", r.ContentLength),
					slog.Int64("max_bytes", maxBytes),
				)
				reject(w, r, http.StatusRequestEntityTooLarge, apperrors.ErrCodeRequestTooLarge,
					fmt.Sprintf("The form is too large (limit %d bytes).", maxBytes))
				return
			}

			// bodies sent without a Content-Length fail when the form is parsed
			r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			next.ServeHTTP(w, r)
		})
	}
}

// clientLimiters holds one token bucket per client address
type clientLimiters struct {
	mu       sync.Mutex
	rps      rate.Limit
	burst    int
	limiters map[string]*clientLimiter
	lastScan time.Time
}

type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func (c *clientLimiters) allow(key string, now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if now.Sub(c.lastScan) > limiterIdleTimeout {
		for k, cl := range c.limiters {
			if now.Sub(cl.lastSeen) > limiterIdleTimeout {
				delete(c.limiters, k)
			}
		}
		c.lastScan = now
	}

	cl, ok := c.limiters[key]
	if !ok {
		cl = &clientLimiter{limiter: rate.NewLimiter(c.rps, c.burst)}
		c.limiters[key] = cl
	}
	cl.lastSeen = now
	return cl.limiter.AllowN(now, 1)
}

// clientKey is the client address without the port. RealIP must run first when the dashboard is behind a proxy.
func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimit limits the requests of each client address to requestsPerSecond with the given burst.
// It guards the login, signup and reset password posts. requestsPerSecond <= 0 disables the limit.
func RateLimit(requestsPerSecond int32, burst int32) func(http.Handler) http.Handler {
	if requestsPerSecond <= 0 {
		return func(next http.Handler) http.Handler {
			return next
		}
	}

	limiters := &clientLimiters{
		rps:      rate.Limit(requestsPerSecond),
		burst:    int(burst),
		limiters: make(map[string]*clientLimiter),
		lastScan: time.Now(),
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := clientKey(r)
			if !limiters.allow(key, time.Now()) {
				logger.ContextRequestLogger(r.Context()).Warn("Too many auth attempts",
					slog.String("component", "middleware.RateLimit"),
					slog.String("client", key),
					slog.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "1")
				reject(w, r, http.StatusTooManyRequests, apperrors.ErrCodeRateLimitExceeded,
					"Too many attempts. Please wait a moment and try again.")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
