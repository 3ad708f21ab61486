package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
)

const maxResponseSize = 10 << 20

// Response is the envelope used by every CCA backend endpoint.
// Raw holds the response body exactly as it was received.
type Response[T any] struct {
	Success bool            `json:"success"`
	Data    T               `json:"data"`
	Message string          `json:"message,omitempty"`
	Raw     json.RawMessage `json:"-"`
}

// Ack is returned by endpoints whose data is not used by the dashboard (deletes, mark-as-read, ...)
type Ack = Response[json.RawMessage]

// call sends the request and decodes the envelope
func call[T any](ctx context.Context, c *Client, method, path string, query url.Values, body any) (*Response[T], error) {
	raw, err := c.do(ctx, method, path, query, body)
	if err != nil {
		return nil, err
	}

	resp := &Response[T]{Raw: raw}
	if len(bytes.TrimSpace(raw)) == 0 {
		resp.Success = true
		return resp, nil
	}

	if err := json.Unmarshal(raw, resp); err != nil {
		return nil, NewClientInternalError(err, fmt.Sprintf("decoding %s %s response", method, path))
	}
	return resp, nil
}

func ack(ctx context.Context, c *Client, method, path string, body any) (*Ack, error) {
	return call[json.RawMessage](ctx, c, method, path, nil, body)
}

// do applies the interceptors and returns the body of a 2xx response.
// Non-2xx responses are returned as *ClientError; 401 responses go through the session guard first.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var reqBody io.Reader
	if body != nil {
		if err := validateRequest(body); err != nil {
			return nil, err
		}
		jsonData, err := json.Marshal(body)
		if err != nil {
			return nil, NewClientInternalError(err, fmt.Sprintf("marshaling %s %s request", method, path))
		}
		reqBody = bytes.NewReader(jsonData)
	}

	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, reqBody)
	if err != nil {
		return nil, NewClientInternalError(err, fmt.Sprintf("creating %s %s request", method, path))
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("cca api request failed",
			slog.String("component", "client.do"),
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", err.Error()),
		)
		return nil, NewClientConnectionError(err)
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return nil, NewClientConnectionError(err)
	}

	if res.StatusCode == http.StatusUnauthorized {
		invalidated := c.invalidateSession(ctx, method, path)
		return nil, NewClientApiError(res.StatusCode, data, path, invalidated)
	}

	if res.StatusCode < 200 || res.StatusCode > 299 {
		c.logger.Debug("cca api error response",
			slog.String("component", "client.do"),
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", res.StatusCode),
		)
		return nil, NewClientApiError(res.StatusCode, data, path, false)
	}

	if c.strictEnvelope && len(bytes.TrimSpace(data)) > 0 {
		if err := validateEnvelope(data); err != nil {
			return nil, NewClientInternalError(err, fmt.Sprintf("validating %s %s response envelope", method, path))
		}
	}

	return data, nil
}

func addString(q url.Values, key, value string) {
	if value != "" {
		q.Set(key, value)
	}
}

func addInt(q url.Values, key string, value int) {
	if value != 0 {
		q.Set(key, strconv.Itoa(value))
	}
}

func addBool(q url.Values, key string, value *bool) {
	if value != nil {
		q.Set(key, strconv.FormatBool(*value))
	}
}
