package handler

import (
	"context"
	"net/http"

	"storefront-client/internal/decision"
	"storefront-client/internal/model"
	"storefront-client/internal/transport"
	"storefront-client/internal/viewmodel"
)

// REST handlers answer with the view model's FetchState so HTTP consumers
// see exactly what the CLI and MCP tools render. A failed load is reported
// through writeError instead.

func (h *Handler) cartModel() *viewmodel.Lines {
	return viewmodel.Cart(h.deps.Session, h.deps.Cart, h.deps.GuestCart, h.logger)
}

func (h *Handler) wishlistModel() *viewmodel.Lines {
	return viewmodel.Wishlist(h.deps.Session, h.deps.Wishlist, h.deps.GuestWishlist, h.logger)
}

// serveLoader loads l and writes its state.
func serveLoader[T any](h *Handler, w http.ResponseWriter, r *http.Request, l *viewmodel.Loader[T]) {
	defer l.Close()
	if err := l.Load(r.Context()); err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, l.State())
}

// GET /cart
func (h *Handler) handleCart(w http.ResponseWriter, r *http.Request) {
	m := h.cartModel()
	defer m.Close()
	serveLoader(h, w, r, m.Loader)
}

// GET /wishlist
func (h *Handler) handleWishlist(w http.ResponseWriter, r *http.Request) {
	m := h.wishlistModel()
	defer m.Close()
	serveLoader(h, w, r, m.Loader)
}

// GET /finance/issues
func (h *Handler) handleFinanceIssues(w http.ResponseWriter, r *http.Request) {
	serveLoader(h, w, r, viewmodel.FinanceIssues(h.deps.Finance))
}

// GET /finance/issues/{id}
func (h *Handler) handleFinanceIssue(w http.ResponseWriter, r *http.Request) {
	d := viewmodel.FinanceIssueDetail(h.deps.Finance)
	defer d.Close()
	if err := d.SetID(r.Context(), model.ID(r.PathValue("id"))); err != nil {
		h.writeError(w, err)
		return
	}
	state := d.State()
	if state.Data == nil {
		h.writeError(w, model.NewNotFoundError("issue"))
		return
	}
	h.writeJSON(w, http.StatusOK, state)
}

// GET /reimbursements
func (h *Handler) handleReimbursements(w http.ResponseWriter, r *http.Request) {
	serveLoader(h, w, r, viewmodel.Reimbursements(h.deps.Finance))
}

// GET /refunds
func (h *Handler) handleRefunds(w http.ResponseWriter, r *http.Request) {
	serveLoader(h, w, r, viewmodel.RefundRequests(h.deps.CustomerService))
}

// GET /shipments
func (h *Handler) handleShipments(w http.ResponseWriter, r *http.Request) {
	serveLoader(h, w, r, viewmodel.Shipments(h.deps.Shipment))
}

// refundDecisionRequest is the body of POST /refunds/{id}/decision.
// Without confirm the decision frame is returned and nothing is sent.
type refundDecisionRequest struct {
	Decision    string `json:"decision"`
	Amount      string `json:"refund_amount,omitempty"`
	Description string `json:"description,omitempty"`
	Confirm     bool   `json:"confirm"`
}

// decisionResponse is the outcome of a gated decision.
type decisionResponse struct {
	Confirmed bool   `json:"confirmed"`
	Banner    string `json:"banner,omitempty"`
	Preview   string `json:"preview,omitempty"`
}

// POST /refunds/{id}/decision
func (h *Handler) handleDecideRefund(w http.ResponseWriter, r *http.Request) {
	var req refundDecisionRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeError(w, err)
		return
	}

	resp, err := h.decideRefund(r.Context(), model.ID(r.PathValue("id")), req)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, resp)
}

// decideRefund validates a verdict and either previews it or sends it.
func (h *Handler) decideRefund(ctx context.Context, id model.ID, req refundDecisionRequest) (decisionResponse, error) {
	verdict := model.RefundDecision(req.Decision)
	if !verdict.Valid() {
		return decisionResponse{}, model.NewValidationError("decision", "must be approved or denied")
	}
	if id.IsZero() {
		return decisionResponse{}, model.NewValidationError("refund_request_id", "required")
	}

	frame := refundFrame(id, verdict, req.Amount)
	if !req.Confirm {
		return decisionResponse{Banner: decision.DefaultBanner, Preview: frame.Preview}, nil
	}

	if err := h.deps.CustomerService.DecideRefund(ctx, id, verdict, req.Amount, req.Description); err != nil {
		return decisionResponse{}, err
	}
	h.logger.Info("refund decided",
		"refund_request_id", id.String(),
		"decision", string(verdict),
		"request_id", transport.RequestIDFromContext(ctx),
	)
	return decisionResponse{Confirmed: true}, nil
}

// refundFrame describes a refund verdict for the decision frame.
func refundFrame(id model.ID, verdict model.RefundDecision, amount string) decision.Frame {
	preview := "Refund request " + id.String() + " will be " + string(verdict)
	if amount != "" && verdict == model.RefundApprove {
		preview += " for " + amount
	}
	return decision.Frame{Body: "Customer refund decision", Preview: preview}
}
