package resource

import (
	"context"
	"net/http"

	"storefront-client/internal/model"
)

// CustomerService handles refund requests and shipment grievance reports.
type CustomerService struct {
	r Requester
}

func NewCustomerService(r Requester) *CustomerService {
	return &CustomerService{r: r}
}

func (c *CustomerService) GetAllRefundRequests(ctx context.Context) ([]model.RefundRequest, error) {
	return fetchList[model.RefundRequest](ctx, c.r, http.MethodPost, "/get_all_customer_refund_requests", nil, "Failed to fetch refund requests")
}

func (c *CustomerService) GetRefundRequest(ctx context.Context, id model.ID) (*model.RefundRequest, error) {
	const failure = "Failed to fetch refund request"
	if err := requireID("refund_request_id", id); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	body := map[string]model.ID{"refund_request_id": id}
	return fetchItem[model.RefundRequest](ctx, c.r, http.MethodPost, "/get_specific_refund_request", body, failure)
}

type refundDecisionRequest struct {
	RefundRequestID model.ID             `json:"refund_request_id"`
	Status          model.RefundDecision `json:"status"`
	RefundAmount    string               `json:"refund_amount,omitempty"`
	Description     string               `json:"description"`
}

// DecideRefund asks the server to approve or deny a refund. amount is a
// decimal string; empty leaves it to the server.
func (c *CustomerService) DecideRefund(ctx context.Context, id model.ID, decision model.RefundDecision, amount string, description string) error {
	const failure = "Failed to process refund request"
	if err := requireID("refund_request_id", id); err != nil {
		return model.WrapOperation(failure, err)
	}
	if !decision.Valid() {
		return model.WrapOperation(failure, model.NewValidationError("status", "must be approved or denied"))
	}
	if amount != "" {
		d, err := model.ParseAmount(amount)
		if err != nil {
			return model.WrapOperation(failure, err)
		}
		amount = d.String()
	}
	body := refundDecisionRequest{RefundRequestID: id, Status: decision, RefundAmount: amount, Description: description}
	return send(ctx, c.r, http.MethodPost, "/process_customer_complaint", body, failure)
}

func (c *CustomerService) GetShipmentGrievanceReports(ctx context.Context) ([]model.ShipmentIssue, error) {
	return fetchList[model.ShipmentIssue](ctx, c.r, http.MethodPost, "/get_shipment_greivence_reports", nil, "Failed to fetch grievance reports")
}

func (c *CustomerService) GetGrievanceDetails(ctx context.Context, issueID model.ID) (*model.ShipmentIssue, error) {
	const failure = "Failed to fetch grievance details"
	if err := requireID("issue_id", issueID); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	body := map[string]model.ID{"issue_id": issueID}
	return fetchItem[model.ShipmentIssue](ctx, c.r, http.MethodPost, "/get_greivence_details", body, failure)
}

// ProcessShipmentReport assigns a fault type to a grievance report.
func (c *CustomerService) ProcessShipmentReport(ctx context.Context, issueID model.ID, faultType string) error {
	const failure = "Failed to process shipment report"
	if err := requireID("issue_id", issueID); err != nil {
		return model.WrapOperation(failure, err)
	}
	if faultType == "" {
		return model.WrapOperation(failure, model.NewValidationError("issue_type", "required"))
	}
	body := map[string]any{"issue_id": issueID, "issue_type": faultType}
	return send(ctx, c.r, http.MethodPost, "/process_shipment_report", body, failure)
}
