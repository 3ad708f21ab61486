// Package client is the typed HTTP client for the CCA backend REST API.
//
// A single Client is configured at startup with the backend base URL and a fixed timeout.
// Every request passes through two interceptors:
//   - the request interceptor attaches "Authorization: Bearer <token>" using the token held in the session store at call time.
//   - the response interceptor clears the session when the backend answers 401 (unless the caller is on an auth-flow screen)
//     and publishes a SessionInvalidated event. Navigation is left to the listeners.
//
// Calls are made through the resource families exposed as fields (c.Auth, c.Events, c.Leaderboard, ...).
// Errors are returned as *ClientError, which separates the message shown to the student from the detail written to the logs (see errors.go).
package client

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/pasc-cca/ccadash/internal/metrics"
	"github.com/pasc-cca/ccadash/internal/session"
)

// Config is fixed at construction
type Config struct {
	BaseURL string
	// Timeout applies to every request, defaults to 30s
	Timeout time.Duration
	// StrictEnvelope rejects 2xx responses that do not match the {success, data} envelope
	StrictEnvelope bool
}

const defaultTimeout = 30 * time.Second

// Client handles communication with the CCA backend API
type Client struct {
	baseURL          string
	timeout          time.Duration
	strictEnvelope   bool
	authScreenPrefix string

	store      session.Store
	httpClient *http.Client
	wire       http.RoundTripper // transport chain below the request interceptor, shared by WithSession copies
	listeners  *listenerRegistry
	logger     *slog.Logger
	metrics    *metrics.Metrics

	Auth          *AuthAPI
	Events        *EventAPI
	RSVP          *RSVPAPI
	Attendance    *AttendanceAPI
	Reviews       *ReviewAPI
	Resources     *ResourceAPI
	Gallery       *GalleryAPI
	Notifications *NotificationAPI
	Announcements *AnnouncementAPI
	Leaderboard   *LeaderboardAPI
	Analytics     *AnalyticsAPI
	Calendar      *CalendarAPI
}

// Option customises the client at construction
type Option func(*options)

type options struct {
	transport        http.RoundTripper
	logger           *slog.Logger
	metrics          *metrics.Metrics
	authScreenPrefix string
}

// WithTransport replaces http.DefaultTransport as the base transport
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) { o.metrics = m }
}

// WithAuthScreenPrefix changes the path prefix that identifies auth-flow screens (default "/auth/")
func WithAuthScreenPrefix(prefix string) Option {
	return func(o *options) { o.authScreenPrefix = prefix }
}

// New creates the shared client. The store is read on every request and cleared when the backend rejects the token.
func New(cfg Config, store session.Store, opts ...Option) *Client {
	o := options{
		transport:        http.DefaultTransport,
		logger:           slog.Default(),
		authScreenPrefix: DefaultAuthScreenPrefix,
	}
	for _, opt := range opts {
		opt(&o)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}

	wire := &requestIDTransport{next: o.metrics.InstrumentRoundTripper(o.transport)}

	c := &Client{
		baseURL:          strings.TrimRight(cfg.BaseURL, "/"),
		timeout:          timeout,
		strictEnvelope:   cfg.StrictEnvelope,
		authScreenPrefix: o.authScreenPrefix,
		wire:             wire,
		listeners:        &listenerRegistry{listeners: make(map[int]SessionListener)},
		logger:           o.logger,
		metrics:          o.metrics,
	}
	c.bind(store)
	return c
}

// WithSession returns a client that shares this client's configuration, transport and listeners but reads and writes a different session store.
// The web dashboard uses this to bind the shared client to the cookies of a single browser request.
func (c *Client) WithSession(store session.Store) *Client {
	clone := &Client{
		baseURL:          c.baseURL,
		timeout:          c.timeout,
		strictEnvelope:   c.strictEnvelope,
		authScreenPrefix: c.authScreenPrefix,
		wire:             c.wire,
		listeners:        c.listeners,
		logger:           c.logger,
		metrics:          c.metrics,
	}
	clone.bind(store)
	return clone
}

// Session returns the store used by this client
func (c *Client) Session() session.Store {
	return c.store
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) bind(store session.Store) {
	c.store = store
	c.httpClient = &http.Client{
		Timeout:   c.timeout,
		Transport: &authTransport{store: store, next: c.wire},
	}

	c.Auth = &AuthAPI{c: c}
	c.Events = &EventAPI{c: c}
	c.RSVP = &RSVPAPI{c: c}
	c.Attendance = &AttendanceAPI{c: c}
	c.Reviews = &ReviewAPI{c: c}
	c.Resources = &ResourceAPI{c: c}
	c.Gallery = &GalleryAPI{c: c}
	c.Notifications = &NotificationAPI{c: c}
	c.Announcements = &AnnouncementAPI{c: c}
	c.Leaderboard = &LeaderboardAPI{c: c}
	c.Analytics = &AnalyticsAPI{c: c}
	c.Calendar = &CalendarAPI{c: c}
}
