// MCP transport handler using the official MCP Go SDK.
// Exposes the storefront view models as MCP tools.
package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/shopspring/decimal"

	"storefront-client/internal/model"
	"storefront-client/internal/viewmodel"
)

// === MCP Tool Input/Output Types ===
// Outputs are flat string-typed views: money is rendered with two decimals
// and IDs as strings so the inferred output schemas stay exact.

// ListInput is the input for list tools, which take no arguments.
type ListInput struct{}

// IDInput is the input for detail tools.
type IDInput struct {
	ID string `json:"id" jsonschema:"record ID,required"`
}

// DecideRefundInput is the input schema for decide_refund.
type DecideRefundInput struct {
	RefundRequestID string `json:"refund_request_id" jsonschema:"refund request ID,required"`
	Decision        string `json:"decision" jsonschema:"approved or denied,required"`
	RefundAmount    string `json:"refund_amount,omitempty" jsonschema:"amount to refund when approving"`
	Description     string `json:"description,omitempty" jsonschema:"note recorded with the decision"`
	Confirm         bool   `json:"confirm,omitempty" jsonschema:"set true to send the decision; otherwise only a preview is returned"`
}

type LineView struct {
	ID          string `json:"id"`
	ProductName string `json:"product_name"`
	VariantName string `json:"variant_name,omitempty"`
	Category    string `json:"category,omitempty"`
	Quantity    int    `json:"quantity"`
	Price       string `json:"price"`
	Total       string `json:"total"`
}

// LinesOutput is a cart or wishlist. Source is "server" or "guest".
type LinesOutput struct {
	Lines  []LineView `json:"lines"`
	Total  string     `json:"total"`
	Source string     `json:"source"`
}

type IssueView struct {
	ID           string `json:"id"`
	Description  string `json:"description"`
	Cost         string `json:"cost,omitempty"`
	Status       string `json:"status"`
	EmployeeName string `json:"employee_name,omitempty"`
	CreatedAt    string `json:"created_at,omitempty"`
}

type IssuesOutput struct {
	Issues []IssueView `json:"issues"`
}

type ReimbursementView struct {
	ID           string `json:"id"`
	EmployeeName string `json:"employee_name,omitempty"`
	Amount       string `json:"amount,omitempty"`
	Description  string `json:"description,omitempty"`
	Status       string `json:"status"`
	Date         string `json:"date,omitempty"`
}

type ReimbursementsOutput struct {
	Reimbursements []ReimbursementView `json:"reimbursements"`
}

type RefundView struct {
	ID            string `json:"refund_request_id"`
	OrderID       string `json:"order_id,omitempty"`
	Status        string `json:"status"`
	Description   string `json:"description,omitempty"`
	Amount        string `json:"refund_amount,omitempty"`
	DateRequested string `json:"date_of_request,omitempty"`
}

type RefundsOutput struct {
	Refunds []RefundView `json:"refunds"`
}

type ShipmentView struct {
	ID          string `json:"shipment_id"`
	OrderID     string `json:"order_id,omitempty"`
	Status      string `json:"shipment_status"`
	OrderDate   string `json:"order_date,omitempty"`
	Destination string `json:"destination,omitempty"`
}

type ShipmentsOutput struct {
	Shipments []ShipmentView `json:"shipments"`
}

// DecisionOutput reports whether a gated decision was sent.
type DecisionOutput struct {
	Confirmed bool   `json:"confirmed"`
	Banner    string `json:"banner,omitempty"`
	Preview   string `json:"preview,omitempty"`
}

// NewMCPServer creates an MCP server with the storefront tools registered.
func (h *Handler) NewMCPServer() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "storefront",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Storefront client - read carts, wishlists and back-office request queues. " +
				"decide_refund is a permanent decision: call it without confirm to preview, then with confirm=true.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_cart",
		Description: "List the cart. Reads the server cart when signed in, the guest cart otherwise.",
	}, h.mcpListCart)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_wishlist",
		Description: "List the wishlist. Reads the server wishlist when signed in, the guest wishlist otherwise.",
	}, h.mcpListWishlist)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_finance_issues",
		Description: "List finance department issues.",
	}, h.mcpListFinanceIssues)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_finance_issue",
		Description: "Get one finance issue by ID.",
	}, h.mcpGetFinanceIssue)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_reimbursements",
		Description: "List employee reimbursement requests.",
	}, h.mcpListReimbursements)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_refund_requests",
		Description: "List customer refund requests awaiting customer service.",
	}, h.mcpListRefundRequests)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "decide_refund",
		Description: "Approve or deny a customer refund request. Without confirm=true only a preview is returned.",
	}, h.mcpDecideRefund)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_shipments",
		Description: "List shipments with their status and destination.",
	}, h.mcpListShipments)

	return server
}

// NewMCPHandler returns an HTTP handler for the MCP endpoint.
// Mount this at /mcp on your mux.
func (h *Handler) NewMCPHandler() http.Handler {
	server := h.NewMCPServer()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (h *Handler) mcpListCart(ctx context.Context, req *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, LinesOutput, error) {
	m := h.cartModel()
	defer m.Close()
	return h.listLines(ctx, m)
}

func (h *Handler) mcpListWishlist(ctx context.Context, req *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, LinesOutput, error) {
	m := h.wishlistModel()
	defer m.Close()
	return h.listLines(ctx, m)
}

func (h *Handler) listLines(ctx context.Context, m *viewmodel.Lines) (*mcp.CallToolResult, LinesOutput, error) {
	if err := m.Load(ctx); err != nil {
		return nil, LinesOutput{}, h.mcpError(err)
	}

	out := LinesOutput{Lines: []LineView{}, Total: m.Total(), Source: "guest"}
	if h.deps.Session.Authenticated() {
		out.Source = "server"
	}
	for _, l := range m.State().Data {
		v := LineView{
			ID:          l.ID.String(),
			ProductName: l.Product.Name,
			Category:    l.Product.Category,
			Quantity:    l.Quantity,
			Price:       model.FormatMoney(l.Price),
			Total:       model.FormatMoney(l.Total),
		}
		if l.Variant != nil {
			v.VariantName = l.Variant.Name
		}
		out.Lines = append(out.Lines, v)
	}
	return nil, out, nil
}

func (h *Handler) mcpListFinanceIssues(ctx context.Context, req *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, IssuesOutput, error) {
	l := viewmodel.FinanceIssues(h.deps.Finance)
	defer l.Close()
	if err := l.Load(ctx); err != nil {
		return nil, IssuesOutput{}, h.mcpError(err)
	}

	out := IssuesOutput{Issues: make([]IssueView, 0, len(l.State().Data))}
	for _, is := range l.State().Data {
		out.Issues = append(out.Issues, issueView(is))
	}
	return nil, out, nil
}

func (h *Handler) mcpGetFinanceIssue(ctx context.Context, req *mcp.CallToolRequest, input IDInput) (*mcp.CallToolResult, IssueView, error) {
	if input.ID == "" {
		return nil, IssueView{}, fmt.Errorf("id is required")
	}

	d := viewmodel.FinanceIssueDetail(h.deps.Finance)
	defer d.Close()
	if err := d.SetID(ctx, model.ID(input.ID)); err != nil {
		return nil, IssueView{}, h.mcpError(err)
	}
	issue := d.State().Data
	if issue == nil {
		return nil, IssueView{}, h.mcpError(model.NewNotFoundError("issue"))
	}
	return nil, issueView(*issue), nil
}

func (h *Handler) mcpListReimbursements(ctx context.Context, req *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ReimbursementsOutput, error) {
	l := viewmodel.Reimbursements(h.deps.Finance)
	defer l.Close()
	if err := l.Load(ctx); err != nil {
		return nil, ReimbursementsOutput{}, h.mcpError(err)
	}

	out := ReimbursementsOutput{Reimbursements: make([]ReimbursementView, 0, len(l.State().Data))}
	for _, r := range l.State().Data {
		out.Reimbursements = append(out.Reimbursements, ReimbursementView{
			ID:           r.ID.String(),
			EmployeeName: r.EmployeeName,
			Amount:       formatOptional(r.Amount),
			Description:  r.Description,
			Status:       r.Status,
			Date:         r.Date,
		})
	}
	return nil, out, nil
}

func (h *Handler) mcpListRefundRequests(ctx context.Context, req *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, RefundsOutput, error) {
	l := viewmodel.RefundRequests(h.deps.CustomerService)
	defer l.Close()
	if err := l.Load(ctx); err != nil {
		return nil, RefundsOutput{}, h.mcpError(err)
	}

	out := RefundsOutput{Refunds: make([]RefundView, 0, len(l.State().Data))}
	for _, r := range l.State().Data {
		out.Refunds = append(out.Refunds, RefundView{
			ID:            r.ID.String(),
			OrderID:       r.OrderID.String(),
			Status:        r.Status,
			Description:   r.Description,
			Amount:        formatOptional(r.Amount),
			DateRequested: r.DateRequested,
		})
	}
	return nil, out, nil
}

func (h *Handler) mcpDecideRefund(ctx context.Context, req *mcp.CallToolRequest, input DecideRefundInput) (*mcp.CallToolResult, DecisionOutput, error) {
	resp, err := h.decideRefund(ctx, model.ID(input.RefundRequestID), refundDecisionRequest{
		Decision:    input.Decision,
		Amount:      input.RefundAmount,
		Description: input.Description,
		Confirm:     input.Confirm,
	})
	if err != nil {
		return nil, DecisionOutput{}, h.mcpError(err)
	}
	return nil, DecisionOutput(resp), nil
}

func (h *Handler) mcpListShipments(ctx context.Context, req *mcp.CallToolRequest, _ ListInput) (*mcp.CallToolResult, ShipmentsOutput, error) {
	l := viewmodel.Shipments(h.deps.Shipment)
	defer l.Close()
	if err := l.Load(ctx); err != nil {
		return nil, ShipmentsOutput{}, h.mcpError(err)
	}

	out := ShipmentsOutput{Shipments: make([]ShipmentView, 0, len(l.State().Data))}
	for _, s := range l.State().Data {
		out.Shipments = append(out.Shipments, ShipmentView{
			ID:          s.ID.String(),
			OrderID:     s.OrderID.String(),
			Status:      s.ShipmentStatus,
			OrderDate:   s.OrderDate,
			Destination: destination(s),
		})
	}
	return nil, out, nil
}

// mcpError converts client errors to MCP tool errors. Storefront failures
// keep their operation literal; anything else is not leaked.
func (h *Handler) mcpError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		_, code, message := classify(err)
		return fmt.Errorf("%s: %s", code, message)
	}
	h.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}

func issueView(is model.FinanceIssue) IssueView {
	v := IssueView{
		ID:           is.ID.String(),
		Description:  is.Description,
		Cost:         formatOptional(is.Cost),
		Status:       is.Status,
		EmployeeName: is.EmployeeName,
	}
	if is.CreatedAt != nil {
		v.CreatedAt = is.CreatedAt.Format("2006-01-02T15:04:05Z07:00")
	}
	return v
}

func formatOptional(d *decimal.Decimal) string {
	if d == nil {
		return ""
	}
	return model.FormatMoney(*d)
}

func destination(s model.Shipment) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{s.Address, s.City, s.Province, s.Country} {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, ", ")
}
