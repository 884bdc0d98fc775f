package twin

import (
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"storefront-client/internal/model"
)

// Response shapes differ per backend area and the client accepts all of
// them: bare arrays, {"items": [...]} and {"result": ...}.

type itemsBody[T any] struct {
	Items []T `json:"items"`
}

type resultBody[T any] struct {
	Result T `json:"result"`
}

type messageBody struct {
	Message string `json:"message"`
}

func ok(w http.ResponseWriter) {
	writeJSON(w, http.StatusOK, messageBody{Message: "ok"})
}

// === Auth ===

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// POST /api/login
func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req) {
		return
	}
	token, user, found := s.store.Login(req.Email, req.Password)
	if !found {
		writeError(w, http.StatusUnauthorized, "Invalid credentials")
		return
	}
	writeJSON(w, http.StatusOK, model.LoginResponse{Token: token, User: user})
}

// POST /api/logout
func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	s.store.Logout(bearerToken(r))
	ok(w)
}

// === Cart and wishlist ===

func (s *Server) lineRoutes(r chi.Router, base string, kind LineKind) {
	r.Get(base, func(w http.ResponseWriter, r *http.Request) {
		lines := s.store.Lines(kind, userFrom(r.Context()).ID)
		writeJSON(w, http.StatusOK, itemsBody[model.Line]{Items: lines})
	})

	r.Post(base+"/items", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			ProductID model.ID `json:"product_id"`
			VariantID model.ID `json:"variant_id"`
			Quantity  int      `json:"quantity"`
		}
		if !decode(w, r, &req) {
			return
		}
		if req.ProductID.IsZero() {
			writeError(w, http.StatusBadRequest, "product_id is required")
			return
		}
		if req.Quantity < 1 {
			writeError(w, http.StatusBadRequest, "quantity must be at least 1")
			return
		}
		if err := s.store.AddLine(kind, userFrom(r.Context()).ID, req.ProductID, req.VariantID, req.Quantity); err != nil {
			writeStoreError(w, err)
			return
		}
		writeJSON(w, http.StatusCreated, messageBody{Message: "added"})
	})

	r.Put(base+"/item/{id}", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Quantity int `json:"quantity"`
		}
		if !decode(w, r, &req) {
			return
		}
		if err := s.store.SetQuantity(kind, userFrom(r.Context()).ID, pathID(r), req.Quantity); err != nil {
			writeStoreError(w, err)
			return
		}
		ok(w)
	})

	r.Delete(base+"/item/{id}", func(w http.ResponseWriter, r *http.Request) {
		if err := s.store.RemoveLine(kind, userFrom(r.Context()).ID, pathID(r)); err != nil {
			writeStoreError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
}

// === Finance ===

func (s *Server) listFinanceIssues(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.FinanceIssues())
}

func (s *Server) getFinanceIssue(w http.ResponseWriter, r *http.Request) {
	is, err := s.store.FinanceIssue(pathID(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, is)
}

func (s *Server) createFinanceIssue(w http.ResponseWriter, r *http.Request) {
	var in model.FinanceIssueInput
	if !decode(w, r, &in) {
		return
	}
	if in.Description == "" {
		writeError(w, http.StatusBadRequest, "description is required")
		return
	}
	is := s.store.CreateFinanceIssue(in, userFrom(r.Context()).Name)
	writeJSON(w, http.StatusCreated, is)
}

func (s *Server) updateFinanceIssue(w http.ResponseWriter, r *http.Request) {
	var in model.FinanceIssueInput
	if !decode(w, r, &in) {
		return
	}
	is, err := s.store.UpdateFinanceIssue(pathID(r), in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, is)
}

func (s *Server) deleteFinanceIssue(w http.ResponseWriter, r *http.Request) {
	if err := s.store.DeleteFinanceIssue(pathID(r)); err != nil {
		writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) listReimbursements(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, itemsBody[model.Reimbursement]{Items: s.store.Reimbursements()})
}

func (s *Server) getReimbursement(w http.ResponseWriter, r *http.Request) {
	rb, err := s.store.Reimbursement(pathID(r))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultBody[model.Reimbursement]{Result: rb})
}

func (s *Server) updateReimbursement(w http.ResponseWriter, r *http.Request) {
	var upd model.ReimbursementUpdate
	if !decode(w, r, &upd) {
		return
	}
	rb, err := s.store.UpdateReimbursement(pathID(r), upd)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultBody[model.Reimbursement]{Result: rb})
}

// === Customer service ===

func (s *Server) listRefundRequests(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, resultBody[[]model.RefundRequest]{Result: s.store.RefundRequests()})
}

func (s *Server) getRefundRequest(w http.ResponseWriter, r *http.Request) {
	id, valid := decodeID(w, r, "refund_request_id")
	if !valid {
		return
	}
	rr, err := s.store.RefundRequest(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultBody[model.RefundRequest]{Result: rr})
}

func (s *Server) processRefund(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RefundRequestID model.ID             `json:"refund_request_id"`
		Status          model.RefundDecision `json:"status"`
		RefundAmount    string               `json:"refund_amount"`
		Description     string               `json:"description"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.RefundRequestID.IsZero() {
		writeError(w, http.StatusBadRequest, "refund_request_id is required")
		return
	}
	err := s.store.DecideRefund(req.RefundRequestID, req.Status, req.RefundAmount, req.Description, userFrom(r.Context()).Name)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	ok(w)
}

func (s *Server) listGrievances(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, resultBody[[]model.ShipmentIssue]{Result: s.store.ShipmentIssues()})
}

func (s *Server) getGrievance(w http.ResponseWriter, r *http.Request) {
	id, valid := decodeID(w, r, "issue_id")
	if !valid {
		return
	}
	is, err := s.store.ShipmentIssue(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultBody[model.ShipmentIssue]{Result: is})
}

func (s *Server) processShipmentReport(w http.ResponseWriter, r *http.Request) {
	var req struct {
		IssueID   model.ID `json:"issue_id"`
		IssueType string   `json:"issue_type"`
	}
	if !decode(w, r, &req) {
		return
	}
	if req.IssueID.IsZero() || req.IssueType == "" {
		writeError(w, http.StatusBadRequest, "issue_id and issue_type are required")
		return
	}
	if err := s.store.ProcessShipmentReport(req.IssueID, req.IssueType, userFrom(r.Context()).Name); err != nil {
		writeStoreError(w, err)
		return
	}
	ok(w)
}

// === Shipments ===

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, resultBody[[]model.Order]{Result: s.store.Orders()})
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	id, valid := decodeID(w, r, "order_id")
	if !valid {
		return
	}
	o, err := s.store.Order(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultBody[model.Order]{Result: o})
}

func (s *Server) createShipmentEvent(w http.ResponseWriter, r *http.Request) {
	var in model.ShipmentEventInput
	if !decode(w, r, &in) {
		return
	}
	ev, err := s.store.CreateShipmentEvent(in)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, resultBody[model.ShipmentEvent]{Result: ev})
}

func (s *Server) listShipments(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Shipments())
}

func (s *Server) getShipment(w http.ResponseWriter, r *http.Request) {
	id, valid := decodeID(w, r, "shipment_id")
	if !valid {
		return
	}
	sh, err := s.store.Shipment(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultBody[model.Shipment]{Result: sh})
}

func (s *Server) editShipmentIssue(w http.ResponseWriter, r *http.Request) {
	var fields map[string]any
	if !decode(w, r, &fields) {
		return
	}
	raw, present := fields["issue_id"]
	if !present {
		writeError(w, http.StatusBadRequest, "issue_id is required")
		return
	}
	delete(fields, "issue_id")
	if err := s.store.EditShipmentIssue(model.ID(anyToString(raw)), fields); err != nil {
		writeStoreError(w, err)
		return
	}
	ok(w)
}

func (s *Server) deleteShipmentIssue(w http.ResponseWriter, r *http.Request) {
	id, valid := decodeID(w, r, "issue_id")
	if !valid {
		return
	}
	if err := s.store.DeleteShipmentIssue(id); err != nil {
		writeStoreError(w, err)
		return
	}
	ok(w)
}

func (s *Server) listShipmentEvents(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, resultBody[[]model.ShipmentEvent]{Result: s.store.ShipmentEvents()})
}

func (s *Server) getShipmentEvent(w http.ResponseWriter, r *http.Request) {
	id, valid := decodeID(w, r, "event_id")
	if !valid {
		return
	}
	ev, err := s.store.ShipmentEvent(id)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultBody[model.ShipmentEvent]{Result: ev})
}

// === Seller ===

func (s *Server) searchProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	f := ProductFilter{Keywords: q.Get("keywords")}
	for key, dst := range map[string]**decimal.Decimal{"min_price": &f.MinPrice, "max_price": &f.MaxPrice} {
		if v := q.Get(key); v != "" {
			d, err := decimal.NewFromString(v)
			if err != nil {
				writeError(w, http.StatusBadRequest, "invalid "+key)
				return
			}
			*dst = &d
		}
	}
	f.Page, _ = strconv.Atoi(q.Get("page"))
	f.PageSize, _ = strconv.Atoi(q.Get("pageSize"))
	writeJSON(w, http.StatusOK, resultBody[[]model.Product]{Result: s.store.SearchProducts(f)})
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := s.store.Product(model.ID(r.URL.Query().Get("product_id")))
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultBody[model.Product]{Result: p})
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if !decode(w, r, &p) {
		return
	}
	if p.Name == "" {
		writeError(w, http.StatusBadRequest, "name is required")
		return
	}
	writeJSON(w, http.StatusCreated, resultBody[model.Product]{Result: s.store.CreateProduct(p)})
}

func (s *Server) editProduct(w http.ResponseWriter, r *http.Request) {
	var p model.Product
	if !decode(w, r, &p) {
		return
	}
	updated, err := s.store.EditProduct(p)
	if err != nil {
		writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resultBody[model.Product]{Result: updated})
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, valid := decodeID(w, r, "product_id")
	if !valid {
		return
	}
	if err := s.store.DeleteProduct(id); err != nil {
		writeStoreError(w, err)
		return
	}
	ok(w)
}

func (s *Server) removeVariant(w http.ResponseWriter, r *http.Request) {
	id, valid := decodeID(w, r, "variant_id")
	if !valid {
		return
	}
	if err := s.store.RemoveVariant(id); err != nil {
		writeStoreError(w, err)
		return
	}
	ok(w)
}

func (s *Server) getPayouts(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(r.URL.Query().Get("year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "year is required")
		return
	}
	month := 0
	if v := r.URL.Query().Get("month"); v != "" {
		month, err = strconv.Atoi(v)
		if err != nil || month < 1 || month > 12 {
			writeError(w, http.StatusBadRequest, "month must be 1-12")
			return
		}
	}
	writeJSON(w, http.StatusOK, resultBody[[]model.Payout]{Result: s.store.Payouts(year, month)})
}

// === Admin ===

func (s *Server) adminState(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.store.Snapshot())
}

func (s *Server) adminLoadState(w http.ResponseWriter, r *http.Request) {
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, 8<<20))
	if err != nil {
		writeError(w, http.StatusBadRequest, "reading body")
		return
	}
	if err := s.store.LoadState(raw); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	ok(w)
}

func (s *Server) adminReset(w http.ResponseWriter, r *http.Request) {
	s.store.Reset()
	s.faults.Reset()
	ok(w)
}

func (s *Server) adminListFaults(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, itemsBody[Fault]{Items: s.faults.All()})
}

func (s *Server) adminSetFault(w http.ResponseWriter, r *http.Request) {
	var f Fault
	if !decode(w, r, &f) {
		return
	}
	if f.Path == "" {
		writeError(w, http.StatusBadRequest, "path is required")
		return
	}
	s.faults.Set(f)
	writeJSON(w, http.StatusCreated, f)
}

func (s *Server) adminClearFaults(w http.ResponseWriter, r *http.Request) {
	if path := r.URL.Query().Get("path"); path != "" {
		if !s.faults.Remove(path) {
			writeError(w, http.StatusNotFound, "fault not found")
			return
		}
	} else {
		s.faults.Reset()
	}
	w.WriteHeader(http.StatusNoContent)
}

func anyToString(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return ""
}
