package resource

import (
	"context"

	"storefront-client/internal/model"
)

// MockLines implements LineService for tests.
// Each method can be configured via function fields.
type MockLines struct {
	FetchItemsFunc   func(ctx context.Context) ([]model.Line, error)
	AddItemFunc      func(ctx context.Context, productID, variantID model.ID, qty int) error
	EditQuantityFunc func(ctx context.Context, itemID model.ID, qty int) error
	RemoveItemFunc   func(ctx context.Context, itemID model.ID) error
}

// FetchItems calls FetchItemsFunc or returns an empty list.
func (m *MockLines) FetchItems(ctx context.Context) ([]model.Line, error) {
	if m.FetchItemsFunc != nil {
		return m.FetchItemsFunc(ctx)
	}
	return []model.Line{}, nil
}

func (m *MockLines) AddItem(ctx context.Context, productID, variantID model.ID, qty int) error {
	if m.AddItemFunc != nil {
		return m.AddItemFunc(ctx, productID, variantID, qty)
	}
	return nil
}

func (m *MockLines) EditQuantity(ctx context.Context, itemID model.ID, qty int) error {
	if m.EditQuantityFunc != nil {
		return m.EditQuantityFunc(ctx, itemID, qty)
	}
	return nil
}

func (m *MockLines) RemoveItem(ctx context.Context, itemID model.ID) error {
	if m.RemoveItemFunc != nil {
		return m.RemoveItemFunc(ctx, itemID)
	}
	return nil
}

// MockFinance implements FinanceService for tests.
type MockFinance struct {
	FetchIssuesFunc              func(ctx context.Context) ([]model.FinanceIssue, error)
	FetchIssueDetailFunc         func(ctx context.Context, id model.ID) (*model.FinanceIssue, error)
	CreateIssueFunc              func(ctx context.Context, in model.FinanceIssueInput) (*model.FinanceIssue, error)
	UpdateIssueFunc              func(ctx context.Context, id model.ID, in model.FinanceIssueInput) (*model.FinanceIssue, error)
	DeleteIssueFunc              func(ctx context.Context, id model.ID) error
	FetchReimbursementsFunc      func(ctx context.Context) ([]model.Reimbursement, error)
	FetchReimbursementDetailFunc func(ctx context.Context, id model.ID) (*model.Reimbursement, error)
	UpdateReimbursementFunc      func(ctx context.Context, id model.ID, in model.ReimbursementUpdate) (*model.Reimbursement, error)
}

func (m *MockFinance) FetchIssues(ctx context.Context) ([]model.FinanceIssue, error) {
	if m.FetchIssuesFunc != nil {
		return m.FetchIssuesFunc(ctx)
	}
	return []model.FinanceIssue{}, nil
}

func (m *MockFinance) FetchIssueDetail(ctx context.Context, id model.ID) (*model.FinanceIssue, error) {
	if m.FetchIssueDetailFunc != nil {
		return m.FetchIssueDetailFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("issue")
}

func (m *MockFinance) CreateIssue(ctx context.Context, in model.FinanceIssueInput) (*model.FinanceIssue, error) {
	if m.CreateIssueFunc != nil {
		return m.CreateIssueFunc(ctx, in)
	}
	return &model.FinanceIssue{ID: "1", Description: in.Description, Status: "open"}, nil
}

func (m *MockFinance) UpdateIssue(ctx context.Context, id model.ID, in model.FinanceIssueInput) (*model.FinanceIssue, error) {
	if m.UpdateIssueFunc != nil {
		return m.UpdateIssueFunc(ctx, id, in)
	}
	return nil, model.NewNotFoundError("issue")
}

func (m *MockFinance) DeleteIssue(ctx context.Context, id model.ID) error {
	if m.DeleteIssueFunc != nil {
		return m.DeleteIssueFunc(ctx, id)
	}
	return nil
}

func (m *MockFinance) FetchReimbursements(ctx context.Context) ([]model.Reimbursement, error) {
	if m.FetchReimbursementsFunc != nil {
		return m.FetchReimbursementsFunc(ctx)
	}
	return []model.Reimbursement{}, nil
}

func (m *MockFinance) FetchReimbursementDetail(ctx context.Context, id model.ID) (*model.Reimbursement, error) {
	if m.FetchReimbursementDetailFunc != nil {
		return m.FetchReimbursementDetailFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("reimbursement")
}

func (m *MockFinance) UpdateReimbursement(ctx context.Context, id model.ID, in model.ReimbursementUpdate) (*model.Reimbursement, error) {
	if m.UpdateReimbursementFunc != nil {
		return m.UpdateReimbursementFunc(ctx, id, in)
	}
	return nil, model.NewNotFoundError("reimbursement")
}

// MockCustomerService implements CustomerServiceService for tests.
type MockCustomerService struct {
	GetAllRefundRequestsFunc        func(ctx context.Context) ([]model.RefundRequest, error)
	GetRefundRequestFunc            func(ctx context.Context, id model.ID) (*model.RefundRequest, error)
	DecideRefundFunc                func(ctx context.Context, id model.ID, decision model.RefundDecision, amount, description string) error
	GetShipmentGrievanceReportsFunc func(ctx context.Context) ([]model.ShipmentIssue, error)
	GetGrievanceDetailsFunc         func(ctx context.Context, issueID model.ID) (*model.ShipmentIssue, error)
	ProcessShipmentReportFunc       func(ctx context.Context, issueID model.ID, faultType string) error
}

func (m *MockCustomerService) GetAllRefundRequests(ctx context.Context) ([]model.RefundRequest, error) {
	if m.GetAllRefundRequestsFunc != nil {
		return m.GetAllRefundRequestsFunc(ctx)
	}
	return []model.RefundRequest{}, nil
}

func (m *MockCustomerService) GetRefundRequest(ctx context.Context, id model.ID) (*model.RefundRequest, error) {
	if m.GetRefundRequestFunc != nil {
		return m.GetRefundRequestFunc(ctx, id)
	}
	return nil, model.NewNotFoundError("refund request")
}

func (m *MockCustomerService) DecideRefund(ctx context.Context, id model.ID, decision model.RefundDecision, amount, description string) error {
	if m.DecideRefundFunc != nil {
		return m.DecideRefundFunc(ctx, id, decision, amount, description)
	}
	return nil
}

func (m *MockCustomerService) GetShipmentGrievanceReports(ctx context.Context) ([]model.ShipmentIssue, error) {
	if m.GetShipmentGrievanceReportsFunc != nil {
		return m.GetShipmentGrievanceReportsFunc(ctx)
	}
	return []model.ShipmentIssue{}, nil
}

func (m *MockCustomerService) GetGrievanceDetails(ctx context.Context, issueID model.ID) (*model.ShipmentIssue, error) {
	if m.GetGrievanceDetailsFunc != nil {
		return m.GetGrievanceDetailsFunc(ctx, issueID)
	}
	return nil, model.NewNotFoundError("grievance report")
}

func (m *MockCustomerService) ProcessShipmentReport(ctx context.Context, issueID model.ID, faultType string) error {
	if m.ProcessShipmentReportFunc != nil {
		return m.ProcessShipmentReportFunc(ctx, issueID, faultType)
	}
	return nil
}

// MockShipment implements ShipmentService for tests. Only the list reads
// are configurable; everything else succeeds with empty results.
type MockShipment struct {
	GetOrdersFunc    func(ctx context.Context) ([]model.Order, error)
	GetShipmentsFunc func(ctx context.Context) ([]model.Shipment, error)
}

func (m *MockShipment) GetOrders(ctx context.Context) ([]model.Order, error) {
	if m.GetOrdersFunc != nil {
		return m.GetOrdersFunc(ctx)
	}
	return []model.Order{}, nil
}

func (m *MockShipment) GetOrderDetails(context.Context, model.ID) (*model.Order, error) {
	return nil, nil
}

func (m *MockShipment) CreateShipmentEvent(context.Context, model.ShipmentEventInput) error {
	return nil
}

func (m *MockShipment) GetShipments(ctx context.Context) ([]model.Shipment, error) {
	if m.GetShipmentsFunc != nil {
		return m.GetShipmentsFunc(ctx)
	}
	return []model.Shipment{}, nil
}

func (m *MockShipment) GetShipment(context.Context, model.ID) (*model.Shipment, error) {
	return nil, nil
}

func (m *MockShipment) GetShipmentDetails(context.Context, model.ID) (*model.Shipment, error) {
	return nil, nil
}

func (m *MockShipment) EditShipmentIssue(context.Context, model.ID, map[string]any) error {
	return nil
}

func (m *MockShipment) DeleteShipmentIssue(context.Context, model.ID) error {
	return nil
}

func (m *MockShipment) GetShipmentEvents(context.Context) ([]model.ShipmentEvent, error) {
	return []model.ShipmentEvent{}, nil
}

func (m *MockShipment) GetShipmentEvent(context.Context, model.ID) (*model.ShipmentEvent, error) {
	return nil, nil
}

var (
	_ LineService            = (*Lines)(nil)
	_ LineService            = (*MockLines)(nil)
	_ FinanceService         = (*Finance)(nil)
	_ FinanceService         = (*MockFinance)(nil)
	_ ShipmentService        = (*Shipment)(nil)
	_ ShipmentService        = (*MockShipment)(nil)
	_ CustomerServiceService = (*CustomerService)(nil)
	_ CustomerServiceService = (*MockCustomerService)(nil)
	_ SellerService          = (*Seller)(nil)
	_ AuthService            = (*Auth)(nil)
)
