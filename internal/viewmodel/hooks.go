package viewmodel

import (
	"context"

	"storefront-client/internal/model"
	"storefront-client/internal/resource"
)

// FinanceIssues lists finance issues. Data starts as an empty list.
func FinanceIssues(svc resource.FinanceService) *Loader[[]model.FinanceIssue] {
	return NewLoader([]model.FinanceIssue{}, svc.FetchIssues)
}

// FinanceIssueDetail loads one issue by id.
func FinanceIssueDetail(svc resource.FinanceService) *Detail[model.FinanceIssue] {
	return NewDetail(svc.FetchIssueDetail)
}

func Reimbursements(svc resource.FinanceService) *Loader[[]model.Reimbursement] {
	return NewLoader([]model.Reimbursement{}, svc.FetchReimbursements)
}

func ReimbursementDetail(svc resource.FinanceService) *Detail[model.Reimbursement] {
	return NewDetail(svc.FetchReimbursementDetail)
}

// RefundRequests lists customer refund requests for customer service.
func RefundRequests(svc resource.CustomerServiceService) *Loader[[]model.RefundRequest] {
	return NewLoader([]model.RefundRequest{}, svc.GetAllRefundRequests)
}

func RefundRequestDetail(svc resource.CustomerServiceService) *Detail[model.RefundRequest] {
	return NewDetail(svc.GetRefundRequest)
}

func GrievanceReports(svc resource.CustomerServiceService) *Loader[[]model.ShipmentIssue] {
	return NewLoader([]model.ShipmentIssue{}, svc.GetShipmentGrievanceReports)
}

func Shipments(svc resource.ShipmentService) *Loader[[]model.Shipment] {
	return NewLoader([]model.Shipment{}, svc.GetShipments)
}

func Orders(svc resource.ShipmentService) *Loader[[]model.Order] {
	return NewLoader([]model.Order{}, svc.GetOrders)
}

func ShipmentDetail(svc resource.ShipmentService) *Detail[model.Shipment] {
	return NewDetail(svc.GetShipmentDetails)
}

// SellerProducts searches the seller's catalog with a fixed query.
func SellerProducts(svc resource.SellerService, q resource.ProductQuery) *Loader[[]model.Product] {
	return NewLoader([]model.Product{}, func(ctx context.Context) ([]model.Product, error) {
		return svc.SearchProducts(ctx, q)
	})
}

// Payouts loads one month of seller payouts.
func Payouts(svc resource.SellerService, year, month int) *Loader[[]model.Payout] {
	return NewLoader([]model.Payout{}, func(ctx context.Context) ([]model.Payout, error) {
		return svc.GetPayouts(ctx, year, month)
	})
}
