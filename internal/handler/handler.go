// Package handler exposes the storefront view models over HTTP: an MCP tool
// server for agents, a small read-mostly REST surface, and health/metrics.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"storefront-client/internal/guest"
	"storefront-client/internal/model"
	"storefront-client/internal/resource"
	"storefront-client/internal/session"
)

// Deps are the collaborators a Handler builds its view models from.
type Deps struct {
	Session         *session.Session
	Cart            resource.CartService
	Wishlist        resource.WishlistService
	GuestCart       *guest.Store
	GuestWishlist   *guest.Store
	Finance         resource.FinanceService
	CustomerService resource.CustomerServiceService
	Shipment        resource.ShipmentService

	// Gatherer backs /metrics; nil omits the route.
	Gatherer prometheus.Gatherer
}

// Handler holds dependencies for HTTP handlers.
type Handler struct {
	deps   Deps
	logger *slog.Logger
}

// New creates a Handler. Each request builds fresh view models from deps.
func New(deps Deps, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	if deps.Session == nil {
		deps.Session = session.New(nil, logger)
	}
	if deps.GuestCart == nil {
		deps.GuestCart = guest.New(nil, guest.CartKey, logger)
	}
	if deps.GuestWishlist == nil {
		deps.GuestWishlist = guest.New(nil, guest.WishlistKey, logger)
	}
	return &Handler{deps: deps, logger: logger}
}

// RegisterRoutes registers all HTTP routes with the given ServeMux.
func (h *Handler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /cart", h.handleCart)
	mux.HandleFunc("GET /wishlist", h.handleWishlist)
	mux.HandleFunc("GET /finance/issues", h.handleFinanceIssues)
	mux.HandleFunc("GET /finance/issues/{id}", h.handleFinanceIssue)
	mux.HandleFunc("GET /reimbursements", h.handleReimbursements)
	mux.HandleFunc("GET /refunds", h.handleRefunds)
	mux.HandleFunc("POST /refunds/{id}/decision", h.handleDecideRefund)
	mux.HandleFunc("GET /shipments", h.handleShipments)

	// MCP transport - JSON-RPC endpoint using official MCP SDK
	mux.Handle("/mcp", h.NewMCPHandler())

	mux.HandleFunc("GET /health", h.handleHealth)
	mux.HandleFunc("GET /healthz", h.handleHealth)
	if h.deps.Gatherer != nil {
		mux.Handle("GET /metrics", promhttp.HandlerFor(h.deps.Gatherer, promhttp.HandlerOpts{}))
	}
}

// handleHealth reports liveness and who the process is signed in as.
// GET /health, GET /healthz
func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	snap := h.deps.Session.Snapshot()
	resp := healthResponse{
		Status:        "ok",
		Authenticated: snap.Authenticated(),
		ActiveRole:    string(snap.ActiveRole),
	}
	h.writeJSON(w, http.StatusOK, resp)
}

type healthResponse struct {
	Status        string `json:"status"`
	Authenticated bool   `json:"authenticated"`
	ActiveRole    string `json:"active_role,omitempty"`
}

// === Response Helpers ===

// writeJSON sends a JSON response with the given status code.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", slog.String("error", err.Error()))
	}
}

// writeError sends {"error": {code, message}}. The message is the operation
// literal when one wraps the cause; status and code come from the APIError
// in the chain. Anything else is an opaque 500.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status, code, message := classify(err)
	if status == http.StatusInternalServerError && code == "INTERNAL_ERROR" {
		h.logger.Error("internal error", slog.String("error", err.Error()))
	}
	h.writeJSON(w, status, errorResponse{Error: errorBody{Code: code, Message: message}})
}

func classify(err error) (status int, code, message string) {
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		return http.StatusInternalServerError, "INTERNAL_ERROR", "an internal error occurred"
	}

	status = apiErr.StatusCode
	switch {
	case errors.Is(err, model.ErrNetwork):
		status = http.StatusBadGateway
	case status < 400:
		// Backend answered 2xx with an unreadable body.
		status = http.StatusBadGateway
	}

	message = apiErr.Message
	var opErr *model.OperationError
	if errors.As(err, &opErr) {
		message = opErr.Message
	}
	return status, apiErr.Code, message
}

// errorResponse is the JSON structure for error responses.
type errorResponse struct {
	Error errorBody `json:"error"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// MaxRequestBodySize limits JSON request bodies to 1MB.
const MaxRequestBodySize = 1 << 20

// decodeJSON reads JSON from request body into v.
// Returns an APIError if decoding fails.
func decodeJSON(r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, MaxRequestBodySize)

	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewValidationError("body", "invalid JSON")
	}
	return nil
}
