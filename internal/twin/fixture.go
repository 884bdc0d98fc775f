package twin

import (
	"time"

	"github.com/shopspring/decimal"

	"storefront-client/internal/model"
)

// Default fixture credentials.
const (
	ShopperEmail  = "shopper@example.com"
	FinanceEmail  = "finance@example.com"
	SupportEmail  = "support@example.com"
	ShippingEmail = "shipping@example.com"
	SellerEmail   = "seller@example.com"
	ManagerEmail  = "manager@example.com"

	DefaultPassword = "password"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decp(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

// DefaultState is the fixture every fresh twin starts with: one account per
// portal, a small catalog, and a few records in each back-office queue.
func DefaultState() State {
	created := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	return State{
		Accounts: []Account{
			{Password: DefaultPassword, User: model.User{ID: "1", Email: ShopperEmail, Name: "Sam Shopper"}},
			{Password: DefaultPassword, User: model.User{ID: "2", Email: FinanceEmail, Name: "Fran Ledger", IsEmployee: true, Department: "finance", Job: "accountant"}},
			{Password: DefaultPassword, User: model.User{ID: "3", Email: SupportEmail, Name: "Cory Service", IsEmployee: true, Department: "customer_service", Job: "agent"}},
			{Password: DefaultPassword, User: model.User{ID: "4", Email: ShippingEmail, Name: "Shay Dock", IsEmployee: true, Department: "shipment", Job: "clerk"}},
			{Password: DefaultPassword, User: model.User{ID: "5", Email: SellerEmail, Name: "Sel Goods", IsSeller: true}},
			{Password: DefaultPassword, User: model.User{
				ID: "6", Email: ManagerEmail, Name: "Max Boss", IsEmployee: true, IsManager: true,
				Department: "finance", ManagedDepartments: []string{"finance", "customer_service", "shipment"},
			}},
		},
		Products: []model.Product{
			{
				ID: "10", Name: "Ceramic Mug", Description: "Stoneware mug, 350ml", CategoryName: "Kitchen",
				Price: dec("12.50"),
				Variants: []model.Variant{
					{ID: "101", Name: "Blue", Price: dec("12.50"), Quantity: 40},
					{ID: "102", Name: "Speckled", Price: dec("14.00"), Quantity: 12},
				},
			},
			{ID: "11", Name: "Desk Lamp", Description: "Adjustable LED lamp", CategoryName: "Home", Price: dec("39.99")},
			{ID: "12", Name: "Notebook", Description: "A5 dotted notebook", CategoryName: "Office", Price: dec("6.25")},
		},
		FinanceIssues: []model.FinanceIssue{
			{ID: "200", Description: "Duplicate supplier invoice", Cost: decp("420.00"), Status: "open", EmployeeName: "Fran Ledger", CreatedAt: &created},
			{ID: "201", Description: "Card terminal fees mismatch", Cost: decp("35.10"), Status: "closed", EmployeeName: "Fran Ledger", CreatedAt: &created},
		},
		Reimbursements: []model.Reimbursement{
			{ID: "300", EmployeeID: "4", EmployeeName: "Shay Dock", Amount: decp("58.20"), Description: "Pallet straps", Status: "pending", Date: "2026-03-01"},
		},
		RefundRequests: []model.RefundRequest{
			{ID: "400", OrderID: "500", Status: "pending", Description: "Mug arrived cracked", Amount: decp("12.50"), DateRequested: "2026-03-03"},
			{ID: "401", OrderID: "501", Status: "pending", Description: "Wrong lamp colour", Amount: decp("39.99"), DateRequested: "2026-03-04"},
		},
		ShipmentIssues: []model.ShipmentIssue{
			{ID: "600", ShipmentID: "700", IssueType: "damaged", Description: "Box crushed in transit", Status: "open", ShipmentStatus: "delivered", CreatedAt: "2026-03-03T10:00:00Z"},
		},
		Orders: []model.Order{
			{ID: "500", OrderNumber: "SO-500", OrderStatus: "delivered", CreatedAt: "2026-02-27T08:00:00Z",
				Items: []model.OrderItem{{ProductName: "Ceramic Mug", VariantName: "Blue", Quantity: 1, Status: "delivered"}}},
			{ID: "501", OrderNumber: "SO-501", OrderStatus: "shipped", CreatedAt: "2026-02-28T15:20:00Z",
				Items: []model.OrderItem{{ProductName: "Desk Lamp", Quantity: 1, Status: "shipped"}}},
		},
		Shipments: []model.Shipment{
			{ID: "700", OrderID: "500", ShipmentStatus: "delivered", OrderDate: "2026-02-27", Address: "12 Harbour St", City: "Halifax", Province: "NS", PostalCode: "B3H 1A1", Country: "CA"},
			{ID: "701", OrderID: "501", ShipmentStatus: "in_transit", OrderDate: "2026-02-28", Address: "4 Rue Verte", City: "Montreal", Province: "QC", PostalCode: "H2X 1Y4", Country: "CA"},
		},
		ShipmentEvents: []model.ShipmentEvent{
			{ID: "800", ShipmentID: "701", OrderNumber: "SO-501", Status: "in_transit", Location: "Toronto hub", CreatedAt: "2026-03-01T06:00:00Z"},
		},
		Payouts: []model.Payout{
			{Year: 2026, Month: 1, Amount: dec("812.40"), Status: "paid"},
			{Year: 2026, Month: 2, Amount: dec("640.00"), Status: "pending"},
		},
		Carts: map[string][]model.Line{
			"1": {{ProductID: "12", Name: "Notebook", Category: "Office", UnitPrice: dec("6.25"), Quantity: 2}},
		},
	}
}
