// Package twin is an in-memory simulation of the storefront backend API.
// It serves the same paths, envelopes and auth rules the client expects so
// the CLI, the MCP server and end-to-end tests can run without a real shop.
package twin

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"

	"storefront-client/internal/middleware"
	"storefront-client/internal/model"
	"storefront-client/internal/transport"
)

// Options configures a Server.
type Options struct {
	// AllowedOrigins for CORS; empty allows any origin.
	AllowedOrigins []string
	// Latency is added to every API request.
	Latency time.Duration
	// Registerer receives HTTP metrics; nil disables them.
	Registerer prometheus.Registerer
	Logger     *slog.Logger
}

// Server routes twin requests to the store.
type Server struct {
	store  *MemoryStore
	faults *FaultRegistry
	opts   Options
	logger *slog.Logger

	mu        sync.Mutex
	lastAgent *transport.ClientAgent
}

// New creates a Server over store.
func New(store *MemoryStore, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	return &Server{store: store, faults: NewFaultRegistry(), opts: opts, logger: logger}
}

// Faults returns the fault registry for direct injection in tests.
func (s *Server) Faults() *FaultRegistry { return s.faults }

// LastClientAgent returns the most recent parsed Client-Agent header.
func (s *Server) LastClientAgent() (transport.ClientAgent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastAgent == nil {
		return transport.ClientAgent{}, false
	}
	return *s.lastAgent, true
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Recovery(s.logger))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging(s.logger))
	if s.opts.Registerer != nil {
		r.Use(middleware.Metrics(s.opts.Registerer))
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Correlation-ID", transport.ClientAgentHeader},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		r.Use(s.faults.Middleware)
		r.Use(s.latency)
		r.Use(s.clientAgent)

		r.Post("/login", s.login)
		r.With(s.authenticate).Post("/logout", s.logout)

		r.Route("/v1", func(r chi.Router) {
			r.Use(s.authenticate)

			s.lineRoutes(r, "/cart", CartLines)
			s.lineRoutes(r, "/wishlist", WishlistLines)

			r.Group(func(r chi.Router) {
				r.Use(requireDepartment("finance"))
				r.Get("/finance/issues", s.listFinanceIssues)
				r.Post("/finance/issues", s.createFinanceIssue)
				r.Get("/finance/issues/{id}", s.getFinanceIssue)
				r.Put("/finance/issues/{id}", s.updateFinanceIssue)
				r.Delete("/finance/issues/{id}", s.deleteFinanceIssue)
				r.Get("/finance/reimbursements", s.listReimbursements)
				r.Get("/finance/reimbursements/{id}", s.getReimbursement)
				r.Put("/finance/reimbursements/{id}", s.updateReimbursement)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireDepartment("customer_service"))
				r.Post("/get_all_customer_refund_requests", s.listRefundRequests)
				r.Post("/get_specific_refund_request", s.getRefundRequest)
				r.Post("/process_customer_complaint", s.processRefund)
				r.Post("/get_shipment_greivence_reports", s.listGrievances)
				r.Post("/get_greivence_details", s.getGrievance)
				r.Post("/process_shipment_report", s.processShipmentReport)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireDepartment("shipment"))
				r.Post("/get_orders", s.listOrders)
				r.Post("/get_order_details", s.getOrder)
				r.Post("/create_shipment_event", s.createShipmentEvent)
				r.Post("/get_shipments", s.listShipments)
				r.Post("/get_shipment", s.getShipment)
				r.Post("/get_shipment_details", s.getShipment)
				r.Post("/edit_shipment_issue", s.editShipmentIssue)
				r.Post("/delete_shipment_issue", s.deleteShipmentIssue)
				r.Post("/get_shipment_events", s.listShipmentEvents)
				r.Post("/get_shipment_event", s.getShipmentEvent)
			})

			r.Group(func(r chi.Router) {
				r.Use(requireSeller)
				r.Get("/search_products_for_seller", s.searchProducts)
				r.Get("/get_product", s.getProduct)
				r.Post("/create_product", s.createProduct)
				r.Put("/edit_product", s.editProduct)
				r.Delete("/delete_product", s.deleteProduct)
				r.Delete("/remove_variant", s.removeVariant)
				r.Get("/get_seller_payout", s.getPayouts)
			})
		})
	})

	// Admin control plane (no auth, no faults)
	r.Route("/admin", func(r chi.Router) {
		r.Get("/state", s.adminState)
		r.Post("/state", s.adminLoadState)
		r.Post("/reset", s.adminReset)
		r.Get("/faults", s.adminListFaults)
		r.Post("/faults", s.adminSetFault)
		r.Delete("/faults", s.adminClearFaults)
	})

	return r
}

// === Middleware ===

type ctxKey struct{}

func withUser(ctx context.Context, u model.User) context.Context {
	return context.WithValue(ctx, ctxKey{}, u)
}

func userFrom(ctx context.Context) model.User {
	u, _ := ctx.Value(ctxKey{}).(model.User)
	return u
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(auth, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// authenticate requires a known bearer token.
func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, ok := s.store.UserForToken(bearerToken(r))
		if !ok {
			writeJSON(w, http.StatusUnauthorized, detailBody{Detail: "Unauthorized"})
			return
		}
		next.ServeHTTP(w, r.WithContext(withUser(r.Context(), user)))
	})
}

// requireDepartment admits employees of dept and managers overseeing it.
func requireDepartment(dept string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u := userFrom(r.Context())
			allowed := (u.IsEmployee && u.Department == dept) ||
				(u.IsManager && slices.Contains(u.ManagedDepartments, dept))
			if !allowed {
				writeError(w, http.StatusForbidden, "Forbidden")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func requireSeller(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !userFrom(r.Context()).IsSeller {
			writeError(w, http.StatusForbidden, "Forbidden")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientAgent validates an optional Client-Agent header.
func (s *Server) clientAgent(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get(transport.ClientAgentHeader)
		if header == "" {
			next.ServeHTTP(w, r)
			return
		}
		ca, err := transport.ParseClientAgent(header)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		s.mu.Lock()
		s.lastAgent = &ca
		s.mu.Unlock()
		s.logger.Debug("client agent", "app", ca.App, "version", ca.Version, "role", ca.Role)
		next.ServeHTTP(w, r)
	})
}

func (s *Server) latency(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Latency > 0 {
			select {
			case <-time.After(s.opts.Latency):
			case <-r.Context().Done():
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// === Request helpers ===

// decode reads a JSON body into v, answering 400 on failure.
func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20)).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// decodeID reads {field: id} from the body. Numeric and string IDs are
// both accepted.
func decodeID(w http.ResponseWriter, r *http.Request, field string) (model.ID, bool) {
	var body map[string]json.RawMessage
	if !decode(w, r, &body) {
		return "", false
	}
	var id model.ID
	if raw, ok := body[field]; ok {
		if err := json.Unmarshal(raw, &id); err != nil {
			writeError(w, http.StatusBadRequest, "invalid "+field)
			return "", false
		}
	}
	if id.IsZero() {
		writeError(w, http.StatusBadRequest, field+" is required")
		return "", false
	}
	return id, true
}

func pathID(r *http.Request) model.ID {
	return model.ID(chi.URLParam(r, "id"))
}
