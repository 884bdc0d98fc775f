package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"

	"storefront-client/internal/guest"
	"storefront-client/internal/localstore"
	"storefront-client/internal/model"
	"storefront-client/internal/resource"
	"storefront-client/internal/session"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testHandler(deps Deps) (*Handler, *http.ServeMux) {
	if deps.Cart == nil {
		deps.Cart = &resource.MockLines{}
	}
	if deps.Wishlist == nil {
		deps.Wishlist = &resource.MockLines{}
	}
	if deps.Finance == nil {
		deps.Finance = &resource.MockFinance{}
	}
	if deps.CustomerService == nil {
		deps.CustomerService = &resource.MockCustomerService{}
	}
	if deps.Shipment == nil {
		deps.Shipment = &resource.MockShipment{}
	}
	h := New(deps, testLogger())
	mux := http.NewServeMux()
	h.RegisterRoutes(mux)
	return h, mux
}

// getErrorCode extracts the code from an {"error": {...}} body.
func getErrorCode(body []byte) (code, message string) {
	var resp errorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", ""
	}
	return resp.Error.Code, resp.Error.Message
}

func TestHandleHealth(t *testing.T) {
	sess := session.New(nil, testLogger())
	_, mux := testHandler(Deps{Session: sess})

	for _, path := range []string{"/health", "/healthz"} {
		req := httptest.NewRequest("GET", path, nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Errorf("%s: Status = %d, want %d", path, w.Code, http.StatusOK)
		}

		var resp healthResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Status != "ok" {
			t.Errorf("%s: Status = %s, want ok", path, resp.Status)
		}
		if resp.Authenticated {
			t.Errorf("%s: Authenticated = true, want false", path)
		}
		if resp.ActiveRole != "user" {
			t.Errorf("%s: ActiveRole = %q, want user", path, resp.ActiveRole)
		}
	}
}

func TestHandleHealthAuthenticated(t *testing.T) {
	sess := session.New(nil, testLogger())
	sess.Login(context.Background(), model.User{ID: "9", Email: "a@b.c", IsEmployee: true}, "tok")
	_, mux := testHandler(Deps{Session: sess})

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	var resp healthResponse
	json.NewDecoder(w.Body).Decode(&resp)
	if !resp.Authenticated {
		t.Error("Authenticated = false, want true")
	}
}

func TestHandleCartGuest(t *testing.T) {
	ctx := context.Background()
	store := guest.New(localstore.NewMemory(), guest.CartKey, testLogger())
	store.Add(ctx, model.ProductRef{ID: "p1", Name: "Mug", Price: decimal.RequireFromString("4.25")}, nil, 2)

	server := &resource.MockLines{
		FetchItemsFunc: func(ctx context.Context) ([]model.Line, error) {
			t.Error("server cart should not be read while anonymous")
			return nil, nil
		},
	}
	_, mux := testHandler(Deps{Cart: server, GuestCart: store})

	req := httptest.NewRequest("GET", "/cart", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d\nBody: %s", w.Code, http.StatusOK, w.Body.String())
	}

	var resp struct {
		Data    []model.DisplayLine `json:"data"`
		Loading bool                `json:"loading"`
	}
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if len(resp.Data) != 1 {
		t.Fatalf("len(Data) = %d, want 1", len(resp.Data))
	}
	if got := model.FormatMoney(resp.Data[0].Total); got != "8.50" {
		t.Errorf("Total = %s, want 8.50", got)
	}
	if resp.Loading {
		t.Error("Loading = true, want false")
	}
}

func TestHandleWishlistServer(t *testing.T) {
	sess := session.New(nil, testLogger())
	sess.Login(context.Background(), model.User{ID: "1", Email: "a@b.c"}, "tok")

	server := &resource.MockLines{
		FetchItemsFunc: func(ctx context.Context) ([]model.Line, error) {
			return []model.Line{{ProductID: "5", Name: "Lamp", UnitPrice: decimal.NewFromInt(3), Quantity: 1}}, nil
		},
	}
	_, mux := testHandler(Deps{Session: sess, Wishlist: server})

	req := httptest.NewRequest("GET", "/wishlist", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d\nBody: %s", w.Code, http.StatusOK, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"Lamp"`) {
		t.Errorf("Body = %s, want the server line", w.Body.String())
	}
}

func TestHandleFinanceIssues(t *testing.T) {
	finance := &resource.MockFinance{
		FetchIssuesFunc: func(ctx context.Context) ([]model.FinanceIssue, error) {
			return []model.FinanceIssue{{ID: "3", Description: "Broken till", Status: "open"}}, nil
		},
	}
	_, mux := testHandler(Deps{Finance: finance})

	req := httptest.NewRequest("GET", "/finance/issues", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}

	var resp struct {
		Data []model.FinanceIssue `json:"data"`
	}
	json.NewDecoder(w.Body).Decode(&resp)
	if len(resp.Data) != 1 || resp.Data[0].ID != "3" {
		t.Errorf("Data = %+v, want issue 3", resp.Data)
	}
}

func TestHandleFinanceIssue(t *testing.T) {
	finance := &resource.MockFinance{
		FetchIssueDetailFunc: func(ctx context.Context, id model.ID) (*model.FinanceIssue, error) {
			if id != "7" {
				return nil, model.NewNotFoundError("issue")
			}
			return &model.FinanceIssue{ID: id, Description: "Refund audit", Status: "closed"}, nil
		},
	}
	_, mux := testHandler(Deps{Finance: finance})

	t.Run("found", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/finance/issues/7", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d\nBody: %s", w.Code, http.StatusOK, w.Body.String())
		}
		if !strings.Contains(w.Body.String(), "Refund audit") {
			t.Errorf("Body = %s, want issue 7", w.Body.String())
		}
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/finance/issues/8", nil)
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)

		if w.Code != http.StatusNotFound {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
		}
		if code, _ := getErrorCode(w.Body.Bytes()); code != "NOT_FOUND" {
			t.Errorf("Code = %s, want NOT_FOUND", code)
		}
	})
}

func TestHandleRefundsAndShipments(t *testing.T) {
	cs := &resource.MockCustomerService{
		GetAllRefundRequestsFunc: func(ctx context.Context) ([]model.RefundRequest, error) {
			return []model.RefundRequest{{ID: "r1", Status: "pending"}}, nil
		},
	}
	ship := &resource.MockShipment{
		GetShipmentsFunc: func(ctx context.Context) ([]model.Shipment, error) {
			return []model.Shipment{{ID: "s1", ShipmentStatus: "in_transit", City: "Lyon"}}, nil
		},
	}
	finance := &resource.MockFinance{
		FetchReimbursementsFunc: func(ctx context.Context) ([]model.Reimbursement, error) {
			return []model.Reimbursement{{ID: "m1", Status: "submitted"}}, nil
		},
	}
	_, mux := testHandler(Deps{CustomerService: cs, Shipment: ship, Finance: finance})

	tests := []struct {
		path string
		want string
	}{
		{"/refunds", `"r1"`},
		{"/shipments", `"Lyon"`},
		{"/reimbursements", `"m1"`},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
			}
			if !strings.Contains(w.Body.String(), tt.want) {
				t.Errorf("Body = %s, want it to contain %s", w.Body.String(), tt.want)
			}
		})
	}
}

func TestHandleDecideRefund(t *testing.T) {
	var called []model.RefundDecision
	cs := &resource.MockCustomerService{
		DecideRefundFunc: func(ctx context.Context, id model.ID, decision model.RefundDecision, amount, description string) error {
			if id != "r1" {
				t.Errorf("id = %q, want r1", id)
			}
			called = append(called, decision)
			return nil
		},
	}
	_, mux := testHandler(Deps{CustomerService: cs})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest("POST", "/refunds/r1/decision", bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		mux.ServeHTTP(w, req)
		return w
	}

	t.Run("preview without confirm", func(t *testing.T) {
		w := post(`{"decision":"approved","refund_amount":"12.00"}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d\nBody: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var resp decisionResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if resp.Confirmed {
			t.Error("Confirmed = true, want false")
		}
		if resp.Banner == "" {
			t.Error("Banner is empty")
		}
		if resp.Preview != "Refund request r1 will be approved for 12.00" {
			t.Errorf("Preview = %q", resp.Preview)
		}
		if len(called) != 0 {
			t.Errorf("DecideRefund called %d times before confirm", len(called))
		}
	})

	t.Run("confirmed", func(t *testing.T) {
		w := post(`{"decision":"denied","description":"outside window","confirm":true}`)
		if w.Code != http.StatusOK {
			t.Fatalf("Status = %d, want %d\nBody: %s", w.Code, http.StatusOK, w.Body.String())
		}

		var resp decisionResponse
		json.NewDecoder(w.Body).Decode(&resp)
		if !resp.Confirmed {
			t.Error("Confirmed = false, want true")
		}
		if len(called) != 1 || called[0] != model.RefundDeny {
			t.Errorf("called = %v, want [denied]", called)
		}
	})

	t.Run("invalid decision", func(t *testing.T) {
		w := post(`{"decision":"maybe","confirm":true}`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
		if code, _ := getErrorCode(w.Body.Bytes()); code != "VALIDATION_ERROR" {
			t.Errorf("Code = %s, want VALIDATION_ERROR", code)
		}
	})

	t.Run("invalid JSON", func(t *testing.T) {
		w := post(`{not json`)
		if w.Code != http.StatusBadRequest {
			t.Errorf("Status = %d, want %d", w.Code, http.StatusBadRequest)
		}
	})
}

func TestHandleMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "storefront_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	_, mux := testHandler(Deps{Gatherer: reg})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("Status = %d, want %d", w.Code, http.StatusOK)
	}
	if !strings.Contains(w.Body.String(), "storefront_test_total 1") {
		t.Errorf("metrics body missing counter:\n%s", w.Body.String())
	}
}

func TestMetricsRouteOmittedWithoutGatherer(t *testing.T) {
	_, mux := testHandler(Deps{})

	req := httptest.NewRequest("GET", "/metrics", nil)
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestErrorResponses(t *testing.T) {
	tests := []struct {
		name        string
		mockErr     error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "request failed keeps operation message",
			mockErr:     model.WrapOperation("Failed to fetch issues", model.NewRequestFailedError(500, "boom")),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "REQUEST_FAILED",
			wantMessage: "Failed to fetch issues",
		},
		{
			name:        "backend not found",
			mockErr:     model.NewRequestFailedError(404, "no such issue"),
			wantStatus:  http.StatusNotFound,
			wantCode:    "REQUEST_FAILED",
			wantMessage: "no such issue",
		},
		{
			name:       "unauthorized",
			mockErr:    model.WrapOperation("Failed to fetch issues", model.NewUnauthorizedError(403)),
			wantStatus: http.StatusForbidden,
			wantCode:   "UNAUTHORIZED",
		},
		{
			name:       "network",
			mockErr:    model.NewNetworkError(errors.New("connection refused")),
			wantStatus: http.StatusBadGateway,
			wantCode:   "NETWORK_ERROR",
		},
		{
			name:       "unreadable success body",
			mockErr:    model.NewRequestFailedError(200, "parsing response"),
			wantStatus: http.StatusBadGateway,
			wantCode:   "REQUEST_FAILED",
		},
		{
			name:        "unclassified",
			mockErr:     errors.New("boom"),
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "INTERNAL_ERROR",
			wantMessage: "an internal error occurred",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			finance := &resource.MockFinance{
				FetchIssuesFunc: func(ctx context.Context) ([]model.FinanceIssue, error) {
					return nil, tt.mockErr
				},
			}
			_, mux := testHandler(Deps{Finance: finance})

			req := httptest.NewRequest("GET", "/finance/issues", nil)
			w := httptest.NewRecorder()
			mux.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("Status = %d, want %d", w.Code, tt.wantStatus)
			}

			code, message := getErrorCode(w.Body.Bytes())
			if code != tt.wantCode {
				t.Errorf("Code = %s, want %s\nBody: %s", code, tt.wantCode, w.Body.String())
			}
			if tt.wantMessage != "" && message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", message, tt.wantMessage)
			}
		})
	}
}
