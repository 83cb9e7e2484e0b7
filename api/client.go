// Package api is the client of the Event Spot REST backend.
//
// Protected calls take their headers from an Authorizer. When the Authorizer
// refuses, the call fails with ErrUnauthenticated before any request is made.
// Responses classified as auth failures end the session and fail with
// ErrSessionEnded.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"strings"
	"time"

	c "eventspot/context"
	"eventspot/guard"
	"eventspot/logger"
)

const HeaderCorrelationID = "Correlation-Id"

type Authorizer interface {
	BuildAuthHeaders(includeJSONContentType bool) http.Header
	HandleAuthFailure(status int, p guard.Payload) bool
}

type Client struct {
	baseURL    string
	auth       Authorizer
	httpClient *http.Client
	defaultKey string
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(cl *Client) { cl.httpClient = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(cl *Client) { cl.httpClient.Timeout = d }
}

// WithDefaultKey sets the gateway public key used when an order response
// does not carry one.
func WithDefaultKey(key string) Option {
	return func(cl *Client) { cl.defaultKey = key }
}

func New(baseURL string, auth Authorizer, opts ...Option) *Client {
	cl := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		auth:       auth,
		httpClient: &http.Client{Timeout: c.DefaultHTTPTimeout},
	}
	for _, opt := range opts {
		opt(cl)
	}
	return cl
}

type request struct {
	method      string
	path        string
	body        interface{}
	raw         io.Reader
	contentType string
	protected   bool
}

type envelope struct {
	Success *bool  `json:"success"`
	Message string `json:"message"`
	Error   string `json:"error"`
	Details string `json:"details"`
}

func (cl *Client) do(ctx context.Context, r request, out interface{}) error {
	defer logger.LogExecutionTime(ctx, time.Now(), r.method+" "+r.path)

	header := http.Header{}
	if r.protected {
		if cl.auth == nil {
			return ErrUnauthenticated
		}
		header = cl.auth.BuildAuthHeaders(r.body != nil)
		if header == nil {
			return ErrUnauthenticated
		}
	} else if r.body != nil {
		header.Set(guard.HeaderContentType, "application/json")
	}

	var body io.Reader = r.raw
	if r.body != nil {
		b, err := json.Marshal(r.body)
		if err != nil {
			return fmt.Errorf("do: unable to encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, cl.baseURL+r.path, body)
	if err != nil {
		return fmt.Errorf("do: unable to build request: %w", err)
	}
	for k, v := range header {
		req.Header[k] = v
	}
	if r.contentType != "" {
		req.Header.Set(guard.HeaderContentType, r.contentType)
	}
	if id := c.CorrelationID(ctx); id != "" {
		req.Header.Set(HeaderCorrelationID, id)
	}

	logger.Debugf(ctx, "api: %s %s", r.method, r.path)
	res, err := cl.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do: %s %s: %w", r.method, r.path, err)
	}
	defer res.Body.Close()

	data, err := ioutil.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("do: unable to read response body: %w", err)
	}

	var env envelope
	decodeErr := json.Unmarshal(data, &env)
	failed := res.StatusCode < 200 || res.StatusCode >= 300
	if r.protected && (failed || (env.Success != nil && !*env.Success)) {
		p := guard.Payload{Message: env.Message, Error: env.Error, Details: env.Details}
		if cl.auth.HandleAuthFailure(res.StatusCode, p) {
			return ErrSessionEnded
		}
	}

	if failed {
		logger.Errorf(ctx, "api: %s %s returned %d: %s", r.method, r.path, res.StatusCode, string(data))
		return &APIError{Status: res.StatusCode, Message: env.Message, Err: env.Error, Details: env.Details}
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if decodeErr != nil && !isJSONArray(data) {
		return fmt.Errorf("do: %s %s: %w", r.method, r.path, ErrMalformedResponse)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("do: %s %s: %v: %w", r.method, r.path, err, ErrMalformedResponse)
	}
	return nil
}

func isJSONArray(data []byte) bool {
	trimmed := bytes.TrimSpace(data)
	return len(trimmed) > 0 && trimmed[0] == '['
}
