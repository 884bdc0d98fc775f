// Package transport issues storefront API calls: it resolves paths, attaches
// auth and tracing headers, and classifies every failure into the model error
// taxonomy.
package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"storefront-client/internal/model"
)

// DefaultAPIVersion is the API major version used when none is configured.
const DefaultAPIVersion = "v1"

// userAgent identifies this client to the backend.
const userAgent = "storefront-client/1.0"

// Credentials is the bearer token source. Clear is called on 401/403 so the
// session is torn down through a single path.
type Credentials interface {
	Token() string
	Clear()
}

// Config configures a Client.
type Config struct {
	// Origin is the backend origin, e.g. "https://shop.example.com".
	Origin string
	// BaseURL is an absolute API base that overrides Origin+"/api/"+version.
	BaseURL string
	// APIVersion is a semver major ("v1", "v2.0"); defaults to v1.
	APIVersion string
	Timeout    time.Duration
	// RoundTripper overrides the default transport (tests, Chrome TLS).
	RoundTripper http.RoundTripper

	Credentials Credentials
	// OnUnauthorized runs once per 401/403 response, after credentials are
	// cleared. The CLI prints the login hint from here.
	OnUnauthorized func(loginPath string)
	LoginPath      string

	// Agent fills the Client-Agent header; nil omits it.
	Agent   *Agent
	Metrics *Metrics
	Logger  *slog.Logger
}

// Client is a JSON-over-HTTP client for the storefront API.
type Client struct {
	httpClient     *http.Client
	origin         string
	baseURL        string
	apiBase        string
	credentials    Credentials
	onUnauthorized func(string)
	loginPath      string
	agent          *Agent
	metrics        *Metrics
	logger         *slog.Logger

	mu sync.Mutex
}

// New validates cfg and builds a Client.
func New(cfg Config) (*Client, error) {
	origin := strings.TrimSuffix(cfg.Origin, "/")
	if origin == "" && cfg.BaseURL == "" {
		return nil, fmt.Errorf("origin or base URL is required")
	}

	version := cfg.APIVersion
	if version == "" {
		version = DefaultAPIVersion
	}
	if !semver.IsValid(version) {
		return nil, fmt.Errorf("invalid API version %q", version)
	}

	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	rt := cfg.RoundTripper
	if rt == nil {
		rt = http.DefaultTransport
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	loginPath := cfg.LoginPath
	if loginPath == "" {
		loginPath = "/login"
	}

	return &Client{
		httpClient:     &http.Client{Timeout: timeout, Transport: rt},
		origin:         origin,
		baseURL:        strings.TrimSuffix(cfg.BaseURL, "/"),
		apiBase:        "/api/" + semver.Major(version),
		credentials:    cfg.Credentials,
		onUnauthorized: cfg.OnUnauthorized,
		loginPath:      loginPath,
		agent:          cfg.Agent,
		metrics:        cfg.Metrics,
		logger:         logger,
	}, nil
}

// Resolve maps a request path to an absolute URL:
//   - absolute http(s) URLs are used unchanged;
//   - raw "/api..." paths are joined to the origin unchanged;
//   - otherwise the explicit base URL override is used when configured,
//     else origin + "/api/<major>".
func (c *Client) Resolve(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if path == "/api" || strings.HasPrefix(path, "/api/") {
		return c.origin + path
	}
	if c.baseURL != "" {
		return c.baseURL + path
	}
	return c.origin + c.apiBase + path
}

// Request sends a request and returns the raw JSON body. An empty success
// body yields nil.
func (c *Client) Request(ctx context.Context, method, path string, body any) (json.RawMessage, error) {
	var bodyReader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshaling request: %w", err)
		}
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Resolve(path), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	c.setHeaders(ctx, req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(method, outcomeNetwork, start)
		c.logger.Debug("request failed", "method", method, "url", req.URL.String(), "error", err)
		return nil, model.NewNetworkError(err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(method, outcomeNetwork, start)
		return nil, model.NewNetworkError(fmt.Errorf("reading response: %w", err))
	}

	c.logger.Debug("request completed",
		"method", method,
		"url", req.URL.String(),
		"status", resp.StatusCode,
		"request_id", req.Header.Get("X-Request-ID"),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		c.observe(method, outcomeUnauthorized, start)
		c.handleUnauthorized()
		return nil, model.NewUnauthorizedError(resp.StatusCode)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		c.observe(method, outcomeFailed, start)
		return nil, parseErrorResponse(resp.StatusCode, resp.Header.Get("Content-Type"), respBody)
	}

	c.observe(method, outcomeOK, start)
	if len(bytes.TrimSpace(respBody)) == 0 {
		return nil, nil
	}
	return respBody, nil
}

// Do sends a request and decodes the JSON response into out (when non-nil).
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	raw, err := c.Request(ctx, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || raw == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return model.NewRequestFailedError(http.StatusOK, fmt.Sprintf("parsing response: %v", err))
	}
	return nil
}

func (c *Client) setHeaders(ctx context.Context, req *http.Request) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "application/json")

	if c.credentials != nil {
		if token := c.credentials.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	requestID := RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.New().String()
	}
	correlationID := CorrelationIDFromContext(ctx)
	if correlationID == "" {
		correlationID = uuid.New().String()
	}
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("X-Correlation-ID", correlationID)

	if c.agent != nil {
		if v, err := c.agent.Header(); err == nil {
			req.Header.Set(ClientAgentHeader, v)
		} else {
			c.logger.Warn("client agent header", "error", err)
		}
	}
}

// handleUnauthorized clears credentials and fires the login hook. The mutex
// keeps concurrent 401s from interleaving teardown.
func (c *Client) handleUnauthorized() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.credentials != nil {
		c.credentials.Clear()
	}
	if c.metrics != nil {
		c.metrics.unauthorized.Inc()
	}
	if c.onUnauthorized != nil {
		c.onUnauthorized(c.loginPath)
	}
}

func (c *Client) observe(method, outcome string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.requests.WithLabelValues(method, outcome).Inc()
	c.metrics.latency.WithLabelValues(method).Observe(time.Since(start).Seconds())
}

// errorEnvelope is the backend's unified error body.
type errorEnvelope struct {
	ErrorDetail *struct {
		Message string `json:"message"`
	} `json:"error_detail"`
	Error  json.RawMessage `json:"error"`
	Detail json.RawMessage `json:"detail"`
}

// parseErrorResponse extracts the human-readable message from a non-2xx
// response. JSON precedence: error_detail.message, error (string or
// {message}), detail, status text. Non-JSON bodies use the trimmed text.
func parseErrorResponse(statusCode int, contentType string, body []byte) error {
	trimmed := bytes.TrimSpace(body)
	isJSON := strings.Contains(contentType, "json") || (len(trimmed) > 0 && (trimmed[0] == '{' || trimmed[0] == '['))

	if isJSON {
		var env errorEnvelope
		if err := json.Unmarshal(trimmed, &env); err == nil {
			if env.ErrorDetail != nil && env.ErrorDetail.Message != "" {
				return model.NewRequestFailedError(statusCode, env.ErrorDetail.Message)
			}
			if msg := messageOf(env.Error); msg != "" {
				return model.NewRequestFailedError(statusCode, msg)
			}
			if msg := messageOf(env.Detail); msg != "" {
				return model.NewRequestFailedError(statusCode, msg)
			}
			return model.NewRequestFailedError(statusCode, "")
		}
	}

	return model.NewRequestFailedError(statusCode, string(trimmed))
}

// messageOf reads a string or an object carrying "message".
func messageOf(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return obj.Message
	}
	return ""
}

// IsUnauthorized reports whether err came from a 401/403.
func IsUnauthorized(err error) bool {
	return errors.Is(err, model.ErrUnauthorized)
}
