// Package resource provides typed clients for each storefront backend
// resource. Clients validate input shape only, never retry, and wrap every
// transport failure in a model.OperationError carrying the operation's
// user-facing message.
package resource

import (
	"context"
	"encoding/json"
	"net/url"

	"storefront-client/internal/model"
	"storefront-client/internal/transport"
)

// Requester sends one API call and returns the raw JSON body.
// *transport.Client implements it.
type Requester interface {
	Request(ctx context.Context, method, path string, body any) (json.RawMessage, error)
}

// LineService is the cart/wishlist contract shared by the server clients.
type LineService interface {
	FetchItems(ctx context.Context) ([]model.Line, error)
	AddItem(ctx context.Context, productID, variantID model.ID, qty int) error
	EditQuantity(ctx context.Context, itemID model.ID, qty int) error
	RemoveItem(ctx context.Context, itemID model.ID) error
}

type (
	CartService     = LineService
	WishlistService = LineService
)

// FinanceService covers finance issues and reimbursements.
type FinanceService interface {
	FetchIssues(ctx context.Context) ([]model.FinanceIssue, error)
	FetchIssueDetail(ctx context.Context, id model.ID) (*model.FinanceIssue, error)
	CreateIssue(ctx context.Context, in model.FinanceIssueInput) (*model.FinanceIssue, error)
	UpdateIssue(ctx context.Context, id model.ID, in model.FinanceIssueInput) (*model.FinanceIssue, error)
	DeleteIssue(ctx context.Context, id model.ID) error
	FetchReimbursements(ctx context.Context) ([]model.Reimbursement, error)
	FetchReimbursementDetail(ctx context.Context, id model.ID) (*model.Reimbursement, error)
	UpdateReimbursement(ctx context.Context, id model.ID, in model.ReimbursementUpdate) (*model.Reimbursement, error)
}

// ShipmentService is the shipment department's API.
type ShipmentService interface {
	GetOrders(ctx context.Context) ([]model.Order, error)
	GetOrderDetails(ctx context.Context, orderID model.ID) (*model.Order, error)
	CreateShipmentEvent(ctx context.Context, in model.ShipmentEventInput) error
	GetShipments(ctx context.Context) ([]model.Shipment, error)
	GetShipment(ctx context.Context, shipmentID model.ID) (*model.Shipment, error)
	GetShipmentDetails(ctx context.Context, shipmentID model.ID) (*model.Shipment, error)
	EditShipmentIssue(ctx context.Context, issueID model.ID, fields map[string]any) error
	DeleteShipmentIssue(ctx context.Context, issueID model.ID) error
	GetShipmentEvents(ctx context.Context) ([]model.ShipmentEvent, error)
	GetShipmentEvent(ctx context.Context, eventID model.ID) (*model.ShipmentEvent, error)
}

// CustomerServiceService covers refund requests and shipment grievances.
type CustomerServiceService interface {
	GetAllRefundRequests(ctx context.Context) ([]model.RefundRequest, error)
	GetRefundRequest(ctx context.Context, id model.ID) (*model.RefundRequest, error)
	DecideRefund(ctx context.Context, id model.ID, decision model.RefundDecision, amount string, description string) error
	GetShipmentGrievanceReports(ctx context.Context) ([]model.ShipmentIssue, error)
	GetGrievanceDetails(ctx context.Context, issueID model.ID) (*model.ShipmentIssue, error)
	ProcessShipmentReport(ctx context.Context, issueID model.ID, faultType string) error
}

// SellerService is the seller portal's product and payout API.
type SellerService interface {
	SearchProducts(ctx context.Context, q ProductQuery) ([]model.Product, error)
	GetProduct(ctx context.Context, productID model.ID) (*model.Product, error)
	CreateProduct(ctx context.Context, p model.Product) (*model.Product, error)
	EditProduct(ctx context.Context, p model.Product) (*model.Product, error)
	DeleteProduct(ctx context.Context, productID model.ID) error
	RemoveVariant(ctx context.Context, variantID model.ID) error
	GetPayouts(ctx context.Context, year, month int) ([]model.Payout, error)
}

// AuthService signs users in and out.
type AuthService interface {
	Login(ctx context.Context, email, password string) (*model.LoginResponse, error)
	Logout(ctx context.Context) error
}

// fetchList runs a list read. Bare arrays pass through; {items}/{result}
// envelopes unwrap; an absent list is empty.
func fetchList[T any](ctx context.Context, r Requester, method, path string, body any, failure string) ([]T, error) {
	raw, err := r.Request(ctx, method, path, body)
	if err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	items, err := transport.DecodeList[T](raw)
	if err != nil {
		return nil, model.WrapOperation(failure, model.NewRequestFailedError(200, err.Error()))
	}
	return items, nil
}

// fetchItem runs a detail read. An empty or null result is (nil, nil).
func fetchItem[T any](ctx context.Context, r Requester, method, path string, body any, failure string) (*T, error) {
	raw, err := r.Request(ctx, method, path, body)
	if err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	item, err := transport.DecodeItem[T](raw)
	if err != nil {
		return nil, model.WrapOperation(failure, model.NewRequestFailedError(200, err.Error()))
	}
	v, ok := item.Value()
	if !ok {
		return nil, nil
	}
	return &v, nil
}

// send runs a write whose response body is not needed.
func send(ctx context.Context, r Requester, method, path string, body any, failure string) error {
	_, err := r.Request(ctx, method, path, body)
	return model.WrapOperation(failure, err)
}

func requireID(field string, id model.ID) error {
	if id.IsZero() {
		return model.NewValidationError(field, "required")
	}
	return nil
}

func escape(id model.ID) string {
	return url.PathEscape(id.String())
}
