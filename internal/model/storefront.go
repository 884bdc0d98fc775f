// Package model defines the storefront data shapes shared by the transport,
// resource clients, guest store and view models.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// === Roles and users ===

// Role is a portal the signed-in user may act in.
type Role string

const (
	RoleUser     Role = "user"
	RoleEmployee Role = "employee"
	RoleSeller   Role = "seller"
	RoleManager  Role = "manager"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleEmployee, RoleSeller, RoleManager:
		return true
	}
	return false
}

// User is the login payload returned by POST /login.
type User struct {
	ID                 ID       `json:"id"`
	Email              string   `json:"email"`
	Name               string   `json:"name,omitempty"`
	IsEmployee         bool     `json:"isEmployee"`
	IsSeller           bool     `json:"isSeller"`
	IsManager          bool     `json:"isManager"`
	Department         string   `json:"department,omitempty"`
	Job                string   `json:"job,omitempty"`
	ManagedDepartments []string `json:"managedDepartments,omitempty"`
}

// LoginResponse is the body of a successful login.
type LoginResponse struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// === Cart and wishlist ===

// Line is one cart or wishlist entry. Server responses and persisted guest
// lines share this shape. Quantity is always >= 1.
type Line struct {
	LineID          ID              `json:"id,omitempty"`
	ProductID       ID              `json:"product_id"`
	VariantID       ID              `json:"variant_id,omitempty"`
	Name            string          `json:"product_name"`
	ImageURL        string          `json:"product_image,omitempty"`
	Category        string          `json:"category,omitempty"`
	Subcategory     string          `json:"subcategory,omitempty"`
	VariantName     string          `json:"variant_name,omitempty"`
	VariantImageURL string          `json:"variant_image,omitempty"`
	UnitPrice       decimal.Decimal `json:"price"`
	Quantity        int             `json:"quantity"`
}

// DisplayID is the identifier consumers pass back to update or remove the
// line: the explicit line ID when present, else the variant, else the product.
func (l Line) DisplayID() ID {
	switch {
	case l.LineID != "":
		return l.LineID
	case l.VariantID != "":
		return l.VariantID
	}
	return l.ProductID
}

// ProductRef is the product half of a guest add.
type ProductRef struct {
	ID          ID              `json:"id"`
	Name        string          `json:"name"`
	ImageURL    string          `json:"image_url,omitempty"`
	Category    string          `json:"category,omitempty"`
	Subcategory string          `json:"subcategory,omitempty"`
	Price       decimal.Decimal `json:"price"`
}

// VariantRef is the optional variant half of a guest add. A non-zero Price
// overrides the product price.
type VariantRef struct {
	ID       ID              `json:"id"`
	Name     string          `json:"name"`
	ImageURL string          `json:"image_url,omitempty"`
	Price    decimal.Decimal `json:"price"`
}

// DisplayLine is the render shape shared by server and guest sources.
type DisplayLine struct {
	ID       ID              `json:"id"`
	Product  DisplayProduct  `json:"product"`
	Variant  *DisplayVariant `json:"variant"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Total    decimal.Decimal `json:"total"`
}

type DisplayProduct struct {
	Name        string `json:"name"`
	ImageURL    string `json:"image_url"`
	Category    string `json:"category"`
	Subcategory string `json:"subcategory"`
}

type DisplayVariant struct {
	Name     string `json:"name"`
	ImageURL string `json:"image_url"`
}

// ToDisplay maps a line into its render shape. Total = Price * Quantity.
func (l Line) ToDisplay() DisplayLine {
	d := DisplayLine{
		ID: l.DisplayID(),
		Product: DisplayProduct{
			Name:        l.Name,
			ImageURL:    l.ImageURL,
			Category:    l.Category,
			Subcategory: l.Subcategory,
		},
		Quantity: l.Quantity,
		Price:    l.UnitPrice,
		Total:    LineTotal(l.UnitPrice, l.Quantity),
	}
	if l.VariantID != "" {
		d.Variant = &DisplayVariant{Name: l.VariantName, ImageURL: l.VariantImageURL}
	}
	return d
}

// DisplayLines maps every line. Never returns nil.
func DisplayLines(lines []Line) []DisplayLine {
	out := make([]DisplayLine, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ToDisplay())
	}
	return out
}

// === Request records ===

// FinanceIssue is a finance department issue (GET /finance/issues).
type FinanceIssue struct {
	ID           ID               `json:"id"`
	Description  string           `json:"description"`
	Cost         *decimal.Decimal `json:"cost,omitempty"`
	Status       string           `json:"status"`
	EmployeeName string           `json:"employee_name,omitempty"`
	CreatedAt    *time.Time       `json:"created_at,omitempty"`
}

// FinanceIssueInput is the body for creating or editing a finance issue.
type FinanceIssueInput struct {
	Description string           `json:"description"`
	Cost        *decimal.Decimal `json:"cost,omitempty"`
	Status      string           `json:"status,omitempty"`
}

// Reimbursement is an employee reimbursement request.
type Reimbursement struct {
	ID           ID               `json:"id"`
	EmployeeID   ID               `json:"employee_id,omitempty"`
	EmployeeName string           `json:"employee_name,omitempty"`
	Amount       *decimal.Decimal `json:"amount,omitempty"`
	Description  string           `json:"description,omitempty"`
	Status       string           `json:"status"`
	Date         string           `json:"date,omitempty"`
}

// ReimbursementUpdate requests a status transition on a reimbursement.
type ReimbursementUpdate struct {
	Status  string `json:"status"`
	Comment string `json:"comment,omitempty"`
}

// RefundDecision is the verdict customer service requests for a refund.
type RefundDecision string

const (
	RefundApprove RefundDecision = "approved"
	RefundDeny    RefundDecision = "denied"
)

// Valid reports whether d is approved or denied.
func (d RefundDecision) Valid() bool {
	return d == RefundApprove || d == RefundDeny
}

// RefundRequest is a customer refund request awaiting customer service.
type RefundRequest struct {
	ID            ID               `json:"refund_request_id"`
	OrderID       ID               `json:"order_id,omitempty"`
	Status        string           `json:"status"`
	EmployeeName  string           `json:"employee_name,omitempty"`
	Description   string           `json:"description,omitempty"`
	Amount        *decimal.Decimal `json:"refund_amount,omitempty"`
	DateRequested string           `json:"date_of_request,omitempty"`
}

// ShipmentIssue is a shipment grievance report.
type ShipmentIssue struct {
	ID             ID               `json:"issue_id"`
	ShipmentID     ID               `json:"shipment_id,omitempty"`
	IssueType      string           `json:"issue_type"`
	Description    string           `json:"description"`
	Status         string           `json:"status,omitempty"`
	ShipmentStatus string           `json:"shipment_status,omitempty"`
	EmployeeName   string           `json:"employee_name,omitempty"`
	Cost           *decimal.Decimal `json:"cost,omitempty"`
	Deleted        bool             `json:"deleted,omitempty"`
	CreatedAt      string           `json:"created_at,omitempty"`
}

// Order is an order as seen by the shipment department.
type Order struct {
	ID          ID          `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	OrderStatus string      `json:"order_status"`
	CreatedAt   string      `json:"created_at,omitempty"`
	Items       []OrderItem `json:"items,omitempty"`
}

type OrderItem struct {
	ProductName string `json:"product_name"`
	VariantName string `json:"variant_name,omitempty"`
	Quantity    int    `json:"quantity"`
	Status      string `json:"status,omitempty"`
}

// Shipment is a shipment with its destination.
type Shipment struct {
	ID             ID     `json:"shipment_id"`
	OrderID        ID     `json:"order_id,omitempty"`
	ShipmentStatus string `json:"shipment_status"`
	OrderDate      string `json:"order_date,omitempty"`
	Address        string `json:"address,omitempty"`
	City           string `json:"city,omitempty"`
	Province       string `json:"province,omitempty"`
	PostalCode     string `json:"postal_code,omitempty"`
	Country        string `json:"country,omitempty"`
}

// ShipmentEvent is a tracking event on a shipment.
type ShipmentEvent struct {
	ID          ID     `json:"event_id"`
	ShipmentID  ID     `json:"shipment_id"`
	OrderNumber string `json:"order_number,omitempty"`
	Status      string `json:"status"`
	Location    string `json:"location,omitempty"`
	CreatedAt   string `json:"created_at,omitempty"`
}

// ShipmentEventInput is the body of create_shipment_event.
type ShipmentEventInput struct {
	OrderID  ID     `json:"order_id"`
	Status   string `json:"status"`
	Location string `json:"location,omitempty"`
}

// === Seller ===

// Product is a seller-owned catalog product.
type Product struct {
	ID           ID              `json:"product_id"`
	Name         string          `json:"name"`
	Description  string          `json:"description,omitempty"`
	CategoryName string          `json:"category_name,omitempty"`
	ImageURL     string          `json:"image_url,omitempty"`
	Price        decimal.Decimal `json:"price"`
	Variants     []Variant       `json:"variants,omitempty"`
}

type Variant struct {
	ID       ID              `json:"variant_id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
}

// Payout is a seller's monthly payout summary.
type Payout struct {
	Year   int             `json:"year"`
	Month  int             `json:"month"`
	Amount decimal.Decimal `json:"amount"`
	Status string          `json:"status,omitempty"`
}
