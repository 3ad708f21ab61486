package client

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/pasc-cca/ccadash/internal/session"
)

// authTransport is the request interceptor: it adds the Authorization header using the token in the session store at the time of the request.
// Requests are passed through unchanged when there is no token.
type authTransport struct {
	store session.Store
	next  http.RoundTripper
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	token := t.store.Token()
	if token == "" {
		return t.next.RoundTrip(req)
	}

	// RoundTrippers must not modify the caller's request
	authReq := req.Clone(req.Context())
	authReq.Header.Set("Authorization", fmt.Sprintf("Bearer %s", token))

	return t.next.RoundTrip(authReq)
}

// requestIDTransport forwards the dashboard's request id to the backend so that log entries can be correlated.
// A new id is generated for requests made outside an http handler (e.g. from the CLI).
type requestIDTransport struct {
	next http.RoundTripper
}

const RequestIDHeader = "X-Request-ID"

func (t *requestIDTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Header.Get(RequestIDHeader) != "" {
		return t.next.RoundTrip(req)
	}

	requestID := middleware.GetReqID(req.Context())
	if requestID == "" {
		requestID = uuid.NewString()
	}

	idReq := req.Clone(req.Context())
	idReq.Header.Set(RequestIDHeader, requestID)

	return t.next.RoundTrip(idReq)
}
