package twin

import (
	"encoding/json"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"storefront-client/internal/model"
)

// Account is a user the twin accepts at /api/login.
type Account struct {
	Password string     `json:"password"`
	User     model.User `json:"user"`
}

// State is the full twin state. It doubles as the seed file format.
type State struct {
	Accounts       []Account             `json:"accounts"`
	Products       []model.Product       `json:"products"`
	FinanceIssues  []model.FinanceIssue  `json:"finance_issues"`
	Reimbursements []model.Reimbursement `json:"reimbursements"`
	RefundRequests []model.RefundRequest `json:"refund_requests"`
	ShipmentIssues []model.ShipmentIssue `json:"shipment_issues"`
	Orders         []model.Order         `json:"orders"`
	Shipments      []model.Shipment      `json:"shipments"`
	ShipmentEvents []model.ShipmentEvent `json:"shipment_events"`
	Payouts        []model.Payout        `json:"payouts"`

	// Carts and Wishlists are keyed by user ID.
	Carts     map[string][]model.Line `json:"carts,omitempty"`
	Wishlists map[string][]model.Line `json:"wishlists,omitempty"`
}

// LineKind selects the cart or the wishlist.
type LineKind string

const (
	CartLines     LineKind = "cart"
	WishlistLines LineKind = "wishlist"
)

// MemoryStore holds all twin state in memory.
type MemoryStore struct {
	mu     sync.RWMutex
	state  State
	tokens map[string]model.ID
	nextID int
}

// NewStore returns a store loaded with the default fixture.
func NewStore() *MemoryStore {
	s := &MemoryStore{}
	s.reset(DefaultState())
	return s
}

func (s *MemoryStore) reset(st State) {
	if st.Carts == nil {
		st.Carts = make(map[string][]model.Line)
	}
	if st.Wishlists == nil {
		st.Wishlists = make(map[string][]model.Line)
	}
	s.state = st
	s.tokens = make(map[string]model.ID)
	s.nextID = 1000
}

// LoadState replaces the state from a YAML or JSON document. Field names
// follow the JSON tags of the model types in both formats.
func (s *MemoryStore) LoadState(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("parsing seed: %w", err)
	}
	normalized, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("normalizing seed: %w", err)
	}
	var st State
	if err := json.Unmarshal(normalized, &st); err != nil {
		return fmt.Errorf("decoding seed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(st)
	return nil
}

// Reset restores the default fixture and drops every token.
func (s *MemoryStore) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reset(DefaultState())
}

// Snapshot returns a deep copy of the state.
func (s *MemoryStore) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	raw, _ := json.Marshal(s.state)
	var out State
	_ = json.Unmarshal(raw, &out)
	return out
}

func (s *MemoryStore) newID() model.ID {
	s.nextID++
	return model.ID(strconv.Itoa(s.nextID))
}

// === Auth ===

// Login checks credentials and issues a bearer token.
func (s *MemoryStore) Login(email, password string) (string, model.User, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, a := range s.state.Accounts {
		if strings.EqualFold(a.User.Email, email) && a.Password == password {
			token := uuid.New().String()
			s.tokens[token] = a.User.ID
			return token, a.User, true
		}
	}
	return "", model.User{}, false
}

// UserForToken resolves a bearer token.
func (s *MemoryStore) UserForToken(token string) (model.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.tokens[token]
	if !ok {
		return model.User{}, false
	}
	for _, a := range s.state.Accounts {
		if a.User.ID == id {
			return a.User, true
		}
	}
	return model.User{}, false
}

// Logout revokes a token.
func (s *MemoryStore) Logout(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// === Cart and wishlist ===

func (s *MemoryStore) linesOf(kind LineKind) map[string][]model.Line {
	if kind == WishlistLines {
		return s.state.Wishlists
	}
	return s.state.Carts
}

// Lines returns a user's lines. Never nil.
func (s *MemoryStore) Lines(kind LineKind, userID model.ID) []model.Line {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Line{}, s.linesOf(kind)[userID.String()]...)
}

// AddLine adds qty of a catalog product. Cart quantities accumulate; a
// product already on the wishlist is left as is.
func (s *MemoryStore) AddLine(kind LineKind, userID, productID, variantID model.ID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.product(productID)
	if p == nil {
		return errNotFound("product")
	}
	line := model.Line{
		ProductID: p.ID,
		Name:      p.Name,
		ImageURL:  p.ImageURL,
		Category:  p.CategoryName,
		UnitPrice: p.Price,
		Quantity:  qty,
		VariantID: variantID,
	}
	if !variantID.IsZero() {
		i := slices.IndexFunc(p.Variants, func(v model.Variant) bool { return v.ID == variantID })
		if i < 0 {
			return errNotFound("variant")
		}
		line.VariantName = p.Variants[i].Name
		if !p.Variants[i].Price.IsZero() {
			line.UnitPrice = p.Variants[i].Price
		}
	}

	all := s.linesOf(kind)
	lines := all[userID.String()]
	for i := range lines {
		if lines[i].DisplayID() == line.DisplayID() {
			if kind == CartLines {
				lines[i].Quantity += qty
			}
			return nil
		}
	}
	all[userID.String()] = append(lines, line)
	return nil
}

// SetQuantity updates a line; zero or less removes it.
func (s *MemoryStore) SetQuantity(kind LineKind, userID, itemID model.ID, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	all := s.linesOf(kind)
	lines := all[userID.String()]
	i := slices.IndexFunc(lines, func(l model.Line) bool { return l.DisplayID() == itemID })
	if i < 0 {
		return errNotFound("item")
	}
	if qty <= 0 {
		all[userID.String()] = slices.Delete(lines, i, i+1)
		return nil
	}
	lines[i].Quantity = qty
	return nil
}

// RemoveLine deletes a line.
func (s *MemoryStore) RemoveLine(kind LineKind, userID, itemID model.ID) error {
	return s.SetQuantity(kind, userID, itemID, 0)
}

// === Finance ===

func (s *MemoryStore) FinanceIssues() []model.FinanceIssue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.FinanceIssue{}, s.state.FinanceIssues...)
}

func (s *MemoryStore) FinanceIssue(id model.ID) (model.FinanceIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.state.FinanceIssues, func(is model.FinanceIssue) bool { return is.ID == id })
	if i < 0 {
		return model.FinanceIssue{}, errNotFound("issue")
	}
	return s.state.FinanceIssues[i], nil
}

func (s *MemoryStore) CreateFinanceIssue(in model.FinanceIssueInput, employee string) model.FinanceIssue {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := time.Now().UTC()
	status := in.Status
	if status == "" {
		status = "open"
	}
	is := model.FinanceIssue{
		ID:           s.newID(),
		Description:  in.Description,
		Cost:         in.Cost,
		Status:       status,
		EmployeeName: employee,
		CreatedAt:    &now,
	}
	s.state.FinanceIssues = append(s.state.FinanceIssues, is)
	return is
}

func (s *MemoryStore) UpdateFinanceIssue(id model.ID, in model.FinanceIssueInput) (model.FinanceIssue, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.state.FinanceIssues, func(is model.FinanceIssue) bool { return is.ID == id })
	if i < 0 {
		return model.FinanceIssue{}, errNotFound("issue")
	}
	is := &s.state.FinanceIssues[i]
	if in.Description != "" {
		is.Description = in.Description
	}
	if in.Cost != nil {
		is.Cost = in.Cost
	}
	if in.Status != "" {
		is.Status = in.Status
	}
	return *is, nil
}

func (s *MemoryStore) DeleteFinanceIssue(id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.state.FinanceIssues, func(is model.FinanceIssue) bool { return is.ID == id })
	if i < 0 {
		return errNotFound("issue")
	}
	s.state.FinanceIssues = slices.Delete(s.state.FinanceIssues, i, i+1)
	return nil
}

func (s *MemoryStore) Reimbursements() []model.Reimbursement {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Reimbursement{}, s.state.Reimbursements...)
}

func (s *MemoryStore) Reimbursement(id model.ID) (model.Reimbursement, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.state.Reimbursements, func(r model.Reimbursement) bool { return r.ID == id })
	if i < 0 {
		return model.Reimbursement{}, errNotFound("reimbursement")
	}
	return s.state.Reimbursements[i], nil
}

// UpdateReimbursement moves a pending reimbursement to approved or rejected.
func (s *MemoryStore) UpdateReimbursement(id model.ID, upd model.ReimbursementUpdate) (model.Reimbursement, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.state.Reimbursements, func(r model.Reimbursement) bool { return r.ID == id })
	if i < 0 {
		return model.Reimbursement{}, errNotFound("reimbursement")
	}
	r := &s.state.Reimbursements[i]
	if r.Status != "pending" {
		return model.Reimbursement{}, errConflict("reimbursement already " + r.Status)
	}
	if upd.Status != "approved" && upd.Status != "rejected" {
		return model.Reimbursement{}, errBadRequest("status must be approved or rejected")
	}
	r.Status = upd.Status
	return *r, nil
}

// === Customer service ===

func (s *MemoryStore) RefundRequests() []model.RefundRequest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.RefundRequest{}, s.state.RefundRequests...)
}

func (s *MemoryStore) RefundRequest(id model.ID) (model.RefundRequest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.state.RefundRequests, func(r model.RefundRequest) bool { return r.ID == id })
	if i < 0 {
		return model.RefundRequest{}, errNotFound("refund request")
	}
	return s.state.RefundRequests[i], nil
}

// DecideRefund settles a pending refund request. Decisions are final.
func (s *MemoryStore) DecideRefund(id model.ID, decision model.RefundDecision, amount, description, employee string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.state.RefundRequests, func(r model.RefundRequest) bool { return r.ID == id })
	if i < 0 {
		return errNotFound("refund request")
	}
	r := &s.state.RefundRequests[i]
	if r.Status != "pending" {
		return errConflict("refund request already " + r.Status)
	}
	if !decision.Valid() {
		return errBadRequest("status must be approved or denied")
	}
	if amount != "" {
		d, err := decimal.NewFromString(amount)
		if err != nil || d.IsNegative() {
			return errBadRequest("invalid refund_amount")
		}
		r.Amount = &d
	}
	r.Status = string(decision)
	r.EmployeeName = employee
	if description != "" {
		r.Description = description
	}
	return nil
}

func (s *MemoryStore) ShipmentIssues() []model.ShipmentIssue {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.ShipmentIssue, 0, len(s.state.ShipmentIssues))
	for _, is := range s.state.ShipmentIssues {
		if !is.Deleted {
			out = append(out, is)
		}
	}
	return out
}

func (s *MemoryStore) ShipmentIssue(id model.ID) (model.ShipmentIssue, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := s.shipmentIssueIndex(id)
	if i < 0 {
		return model.ShipmentIssue{}, errNotFound("issue")
	}
	return s.state.ShipmentIssues[i], nil
}

func (s *MemoryStore) shipmentIssueIndex(id model.ID) int {
	return slices.IndexFunc(s.state.ShipmentIssues, func(is model.ShipmentIssue) bool {
		return is.ID == id && !is.Deleted
	})
}

// ProcessShipmentReport assigns a fault type and closes the report.
func (s *MemoryStore) ProcessShipmentReport(id model.ID, issueType, employee string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.shipmentIssueIndex(id)
	if i < 0 {
		return errNotFound("issue")
	}
	is := &s.state.ShipmentIssues[i]
	is.IssueType = issueType
	is.Status = "processed"
	is.EmployeeName = employee
	return nil
}

// EditShipmentIssue applies the known editable fields.
func (s *MemoryStore) EditShipmentIssue(id model.ID, fields map[string]any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.shipmentIssueIndex(id)
	if i < 0 {
		return errNotFound("issue")
	}
	is := &s.state.ShipmentIssues[i]
	for k, v := range fields {
		str := fmt.Sprint(v)
		switch k {
		case "description":
			is.Description = str
		case "status":
			is.Status = str
		case "issue_type":
			is.IssueType = str
		case "cost":
			d, err := decimal.NewFromString(str)
			if err != nil {
				return errBadRequest("invalid cost")
			}
			is.Cost = &d
		}
	}
	return nil
}

// DeleteShipmentIssue soft-deletes an issue.
func (s *MemoryStore) DeleteShipmentIssue(id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.shipmentIssueIndex(id)
	if i < 0 {
		return errNotFound("issue")
	}
	s.state.ShipmentIssues[i].Deleted = true
	return nil
}

// === Shipments ===

func (s *MemoryStore) Orders() []model.Order {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Order{}, s.state.Orders...)
}

func (s *MemoryStore) Order(id model.ID) (model.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.state.Orders, func(o model.Order) bool { return o.ID == id })
	if i < 0 {
		return model.Order{}, errNotFound("order")
	}
	return s.state.Orders[i], nil
}

func (s *MemoryStore) Shipments() []model.Shipment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Shipment{}, s.state.Shipments...)
}

func (s *MemoryStore) Shipment(id model.ID) (model.Shipment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.state.Shipments, func(sh model.Shipment) bool { return sh.ID == id })
	if i < 0 {
		return model.Shipment{}, errNotFound("shipment")
	}
	return s.state.Shipments[i], nil
}

func (s *MemoryStore) ShipmentEvents() []model.ShipmentEvent {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.ShipmentEvent{}, s.state.ShipmentEvents...)
}

func (s *MemoryStore) ShipmentEvent(id model.ID) (model.ShipmentEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i := slices.IndexFunc(s.state.ShipmentEvents, func(e model.ShipmentEvent) bool { return e.ID == id })
	if i < 0 {
		return model.ShipmentEvent{}, errNotFound("shipment event")
	}
	return s.state.ShipmentEvents[i], nil
}

// CreateShipmentEvent records a tracking event and moves the order's
// shipment to the event status.
func (s *MemoryStore) CreateShipmentEvent(in model.ShipmentEventInput) (model.ShipmentEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	oi := slices.IndexFunc(s.state.Orders, func(o model.Order) bool { return o.ID == in.OrderID })
	if oi < 0 {
		return model.ShipmentEvent{}, errNotFound("order")
	}
	if in.Status == "" {
		return model.ShipmentEvent{}, errBadRequest("status is required")
	}

	ev := model.ShipmentEvent{
		ID:          s.newID(),
		OrderNumber: s.state.Orders[oi].OrderNumber,
		Status:      in.Status,
		Location:    in.Location,
		CreatedAt:   time.Now().UTC().Format(time.RFC3339),
	}
	for i := range s.state.Shipments {
		if s.state.Shipments[i].OrderID == in.OrderID {
			s.state.Shipments[i].ShipmentStatus = in.Status
			ev.ShipmentID = s.state.Shipments[i].ID
		}
	}
	s.state.ShipmentEvents = append(s.state.ShipmentEvents, ev)
	return ev, nil
}

// === Seller ===

func (s *MemoryStore) product(id model.ID) *model.Product {
	i := slices.IndexFunc(s.state.Products, func(p model.Product) bool { return p.ID == id })
	if i < 0 {
		return nil
	}
	return &s.state.Products[i]
}

// ProductFilter narrows SearchProducts. Zero fields match everything.
type ProductFilter struct {
	Keywords string
	MinPrice *decimal.Decimal
	MaxPrice *decimal.Decimal
	Page     int
	PageSize int
}

func (s *MemoryStore) SearchProducts(f ProductFilter) []model.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []model.Product{}
	kw := strings.ToLower(f.Keywords)
	for _, p := range s.state.Products {
		if kw != "" && !strings.Contains(strings.ToLower(p.Name+" "+p.Description), kw) {
			continue
		}
		if f.MinPrice != nil && p.Price.LessThan(*f.MinPrice) {
			continue
		}
		if f.MaxPrice != nil && p.Price.GreaterThan(*f.MaxPrice) {
			continue
		}
		out = append(out, p)
	}

	if f.PageSize > 0 {
		page := max(f.Page, 1)
		start := min((page-1)*f.PageSize, len(out))
		end := min(start+f.PageSize, len(out))
		out = out[start:end]
	}
	return out
}

func (s *MemoryStore) Product(id model.ID) (model.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p := s.product(id)
	if p == nil {
		return model.Product{}, errNotFound("product")
	}
	return *p, nil
}

func (s *MemoryStore) CreateProduct(p model.Product) model.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.ID = s.newID()
	for i := range p.Variants {
		p.Variants[i].ID = s.newID()
	}
	s.state.Products = append(s.state.Products, p)
	return p
}

func (s *MemoryStore) EditProduct(p model.Product) (model.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	existing := s.product(p.ID)
	if existing == nil {
		return model.Product{}, errNotFound("product")
	}
	if p.Variants == nil {
		p.Variants = existing.Variants
	}
	*existing = p
	return p, nil
}

func (s *MemoryStore) DeleteProduct(id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := slices.IndexFunc(s.state.Products, func(p model.Product) bool { return p.ID == id })
	if i < 0 {
		return errNotFound("product")
	}
	s.state.Products = slices.Delete(s.state.Products, i, i+1)
	return nil
}

func (s *MemoryStore) RemoveVariant(id model.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for pi := range s.state.Products {
		vs := s.state.Products[pi].Variants
		if vi := slices.IndexFunc(vs, func(v model.Variant) bool { return v.ID == id }); vi >= 0 {
			s.state.Products[pi].Variants = slices.Delete(vs, vi, vi+1)
			return nil
		}
	}
	return errNotFound("variant")
}

// Payouts filters by year and, when month > 0, by month.
func (s *MemoryStore) Payouts(year, month int) []model.Payout {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []model.Payout{}
	for _, p := range s.state.Payouts {
		if p.Year == year && (month == 0 || p.Month == month) {
			out = append(out, p)
		}
	}
	return out
}
