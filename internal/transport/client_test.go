package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"storefront-client/internal/model"
)

type fakeCredentials struct {
	token   string
	cleared int
}

func (f *fakeCredentials) Token() string { return f.token }
func (f *fakeCredentials) Clear()        { f.cleared++; f.token = "" }

func newTestClient(t *testing.T, srv *httptest.Server, cfg Config) *Client {
	t.Helper()
	cfg.Origin = srv.URL
	c, err := New(cfg)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return c
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		path string
		want string
	}{
		{"default base", Config{Origin: "https://shop.test"}, "/cart", "https://shop.test/api/v1/cart"},
		{"version major only", Config{Origin: "https://shop.test", APIVersion: "v2.3.1"}, "/cart", "https://shop.test/api/v2/cart"},
		{"missing slash", Config{Origin: "https://shop.test/"}, "cart", "https://shop.test/api/v1/cart"},
		{"raw api path", Config{Origin: "https://shop.test"}, "/api/login", "https://shop.test/api/login"},
		{"absolute url", Config{Origin: "https://shop.test"}, "https://other.test/x", "https://other.test/x"},
		{"base override", Config{Origin: "https://shop.test", BaseURL: "https://api.shop.test/v9/"}, "/cart", "https://api.shop.test/v9/cart"},
		{"raw api path ignores override", Config{Origin: "https://shop.test", BaseURL: "https://api.shop.test"}, "/api/login", "https://shop.test/api/login"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := New(tt.cfg)
			if err != nil {
				t.Fatalf("New() error: %v", err)
			}
			if got := c.Resolve(tt.path); got != tt.want {
				t.Errorf("Resolve(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestNew_Validation(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("New() without origin should fail")
	}
	if _, err := New(Config{Origin: "https://shop.test", APIVersion: "one"}); err == nil {
		t.Error("New() with invalid version should fail")
	}
}

func TestRequest_Headers(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok":true}`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{
		Credentials: &fakeCredentials{token: "tok-123"},
		Agent:       &Agent{App: "storefront-cli", Version: "1.0.0", Role: func() string { return "employee" }},
	})

	ctx := WithCorrelationID(context.Background(), "corr-1")
	if err := c.Do(ctx, http.MethodPost, "/cart/items", map[string]int{"quantity": 1}, nil); err != nil {
		t.Fatalf("Do() error: %v", err)
	}

	if got.Get("Authorization") != "Bearer tok-123" {
		t.Errorf("Authorization = %q", got.Get("Authorization"))
	}
	if got.Get("X-Correlation-ID") != "corr-1" {
		t.Errorf("X-Correlation-ID = %q, want corr-1", got.Get("X-Correlation-ID"))
	}
	if got.Get("X-Request-ID") == "" {
		t.Error("X-Request-ID should be generated")
	}
	if got.Get("Content-Type") != "application/json" {
		t.Errorf("Content-Type = %q", got.Get("Content-Type"))
	}

	agent, err := ParseClientAgent(got.Get(ClientAgentHeader))
	if err != nil {
		t.Fatalf("ParseClientAgent() error: %v", err)
	}
	if agent.Role != "employee" || agent.App != "storefront-cli" {
		t.Errorf("agent = %+v", agent)
	}
}

func TestRequest_DefaultContentTypeWithoutBody(t *testing.T) {
	var got http.Header
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Clone()
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	for _, method := range []string{http.MethodGet, http.MethodDelete} {
		if err := c.Do(context.Background(), method, "/cart", nil, nil); err != nil {
			t.Fatalf("Do(%s) error: %v", method, err)
		}
		if got.Get("Content-Type") != "application/json" {
			t.Errorf("%s Content-Type = %q, want application/json", method, got.Get("Content-Type"))
		}
	}
}

func TestRequest_FreshIDsPerCall(t *testing.T) {
	var ids []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ids = append(ids, r.Header.Get("X-Request-ID"))
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{})
	for i := 0; i < 2; i++ {
		if _, err := c.Request(context.Background(), http.MethodGet, "/cart", nil); err != nil {
			t.Fatal(err)
		}
	}
	if len(ids) != 2 || ids[0] == ids[1] {
		t.Errorf("request ids = %v, want two distinct", ids)
	}
}

func TestRequest_NoTokenNoAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "" {
			t.Errorf("Authorization = %q, want empty", r.Header.Get("Authorization"))
		}
	}))
	defer srv.Close()

	c := newTestClient(t, srv, Config{Credentials: &fakeCredentials{}})
	if _, err := c.Request(context.Background(), http.MethodGet, "/cart", nil); err != nil {
		t.Fatal(err)
	}
}

func TestRequest_UnauthorizedRunsTeardownOnce(t *testing.T) {
	for _, status := range []int{http.StatusUnauthorized, http.StatusForbidden} {
		t.Run(http.StatusText(status), func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(status)
			}))
			defer srv.Close()

			creds := &fakeCredentials{token: "tok"}
			var redirects int32
			var loginPath string
			c := newTestClient(t, srv, Config{
				Credentials: creds,
				LoginPath:   "/login",
				OnUnauthorized: func(path string) {
					atomic.AddInt32(&redirects, 1)
					loginPath = path
				},
			})

			_, err := c.Request(context.Background(), http.MethodGet, "/finance/issues", nil)
			if !errors.Is(err, model.ErrUnauthorized) {
				t.Fatalf("error = %v, want ErrUnauthorized", err)
			}
			if redirects != 1 {
				t.Errorf("redirect hook calls = %d, want 1", redirects)
			}
			if creds.cleared != 1 || creds.token != "" {
				t.Errorf("credentials cleared %d times, token %q", creds.cleared, creds.token)
			}
			if loginPath != "/login" {
				t.Errorf("login path = %q", loginPath)
			}
		})
	}
}

func TestRequest_ErrorMessagePrecedence(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
		status      int
		want        string
	}{
		{"error_detail wins", "application/json", `{"error_detail":{"message":"detail msg"},"error":"plain"}`, 400, "detail msg"},
		{"error string", "application/json", `{"error":"plain error"}`, 400, "plain error"},
		{"error object", "application/json", `{"error":{"message":"nested"}}`, 422, "nested"},
		{"detail field", "application/json", `{"detail":"Not allowed"}`, 409, "Not allowed"},
		{"empty envelope uses status text", "application/json", `{}`, 500, "Internal Server Error"},
		{"plain text", "text/plain", "  upstream exploded \n", 502, "upstream exploded"},
		{"empty text", "text/plain", "", 503, "Service Unavailable"},
		{"invalid json falls back to text", "application/json", "{oops", 500, "{oops"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", tt.contentType)
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c := newTestClient(t, srv, Config{})
			_, err := c.Request(context.Background(), http.MethodGet, "/cart", nil)
			if !errors.Is(err, model.ErrRequestFailed) {
				t.Fatalf("error = %v, want ErrRequestFailed", err)
			}
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatal("expected *model.APIError")
			}
			if apiErr.Message != tt.want {
				t.Errorf("Message = %q, want %q", apiErr.Message, tt.want)
			}
			if apiErr.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", apiErr.StatusCode, tt.status)
			}
		})
	}
}

func TestRequest_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	c := newTestClient(t, srv, Config{})
	srv.Close()

	_, err := c.Request(context.Background(), http.MethodGet, "/cart", nil)
	if !errors.Is(err, model.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestRequest_CanceledContextIsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	defer srv.Close()
	c := newTestClient(t, srv, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Request(ctx, http.MethodGet, "/cart", nil)
	if !errors.Is(err, model.ErrNetwork) {
		t.Errorf("error = %v, want ErrNetwork", err)
	}
}

func TestDo_DecodesAndEmptyBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		w.Write([]byte(`[{"id":1,"name":"item"}]`))
	}))
	defer srv.Close()
	c := newTestClient(t, srv, Config{})

	var out []struct {
		ID   int    `json:"id"`
		Name string `json:"name"`
	}
	if err := c.Do(context.Background(), http.MethodGet, "/cart", nil, &out); err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 || out[0].ID != 1 || out[0].Name != "item" {
		t.Errorf("out = %+v", out)
	}

	raw, err := c.Request(context.Background(), http.MethodDelete, "/cart/item/1", nil)
	if err != nil {
		t.Fatal(err)
	}
	if raw != nil {
		t.Errorf("raw = %s, want nil", raw)
	}
}

func TestMetrics(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case strings.HasSuffix(r.URL.Path, "/forbidden"):
			w.WriteHeader(http.StatusForbidden)
		case strings.HasSuffix(r.URL.Path, "/broken"):
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	defer srv.Close()

	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)
	c := newTestClient(t, srv, Config{Metrics: m})

	ctx := context.Background()
	c.Request(ctx, http.MethodGet, "/ok", nil)
	c.Request(ctx, http.MethodGet, "/broken", nil)
	c.Request(ctx, http.MethodPost, "/forbidden", nil)

	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", outcomeOK)); got != 1 {
		t.Errorf("GET ok = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.requests.WithLabelValues("GET", outcomeFailed)); got != 1 {
		t.Errorf("GET failed = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.unauthorized); got != 1 {
		t.Errorf("unauthorized = %v, want 1", got)
	}
}
