package resource

import (
	"context"
	"net/http"

	"storefront-client/internal/model"
)

// Shipment is the shipment department client. Every call is a POST whose
// response wraps the payload in {"result": ...}.
type Shipment struct {
	r Requester
}

func NewShipment(r Requester) *Shipment {
	return &Shipment{r: r}
}

func (c *Shipment) GetOrders(ctx context.Context) ([]model.Order, error) {
	return fetchList[model.Order](ctx, c.r, http.MethodPost, "/get_orders", nil, "Failed to fetch orders")
}

func (c *Shipment) GetOrderDetails(ctx context.Context, orderID model.ID) (*model.Order, error) {
	const failure = "Failed to fetch order details"
	if err := requireID("order_id", orderID); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	body := map[string]model.ID{"order_id": orderID}
	return fetchItem[model.Order](ctx, c.r, http.MethodPost, "/get_order_details", body, failure)
}

func (c *Shipment) CreateShipmentEvent(ctx context.Context, in model.ShipmentEventInput) error {
	const failure = "Failed to create shipment event"
	if err := requireID("order_id", in.OrderID); err != nil {
		return model.WrapOperation(failure, err)
	}
	return send(ctx, c.r, http.MethodPost, "/create_shipment_event", in, failure)
}

func (c *Shipment) GetShipments(ctx context.Context) ([]model.Shipment, error) {
	return fetchList[model.Shipment](ctx, c.r, http.MethodPost, "/get_shipments", nil, "Failed to fetch shipments")
}

func (c *Shipment) GetShipment(ctx context.Context, shipmentID model.ID) (*model.Shipment, error) {
	const failure = "Failed to fetch shipment"
	if err := requireID("shipment_id", shipmentID); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	body := map[string]model.ID{"shipment_id": shipmentID}
	return fetchItem[model.Shipment](ctx, c.r, http.MethodPost, "/get_shipment", body, failure)
}

func (c *Shipment) GetShipmentDetails(ctx context.Context, shipmentID model.ID) (*model.Shipment, error) {
	const failure = "Failed to fetch shipment details"
	if err := requireID("shipment_id", shipmentID); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	body := map[string]model.ID{"shipment_id": shipmentID}
	return fetchItem[model.Shipment](ctx, c.r, http.MethodPost, "/get_shipment_details", body, failure)
}

// EditShipmentIssue sends issue_id merged with the changed fields.
func (c *Shipment) EditShipmentIssue(ctx context.Context, issueID model.ID, fields map[string]any) error {
	const failure = "Failed to edit shipment issue"
	if err := requireID("issue_id", issueID); err != nil {
		return model.WrapOperation(failure, err)
	}
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["issue_id"] = issueID
	return send(ctx, c.r, http.MethodPost, "/edit_shipment_issue", body, failure)
}

func (c *Shipment) DeleteShipmentIssue(ctx context.Context, issueID model.ID) error {
	const failure = "Failed to delete shipment issue"
	if err := requireID("issue_id", issueID); err != nil {
		return model.WrapOperation(failure, err)
	}
	body := map[string]model.ID{"issue_id": issueID}
	return send(ctx, c.r, http.MethodPost, "/delete_shipment_issue", body, failure)
}

func (c *Shipment) GetShipmentEvents(ctx context.Context) ([]model.ShipmentEvent, error) {
	return fetchList[model.ShipmentEvent](ctx, c.r, http.MethodPost, "/get_shipment_events", nil, "Failed to fetch shipment events")
}

func (c *Shipment) GetShipmentEvent(ctx context.Context, eventID model.ID) (*model.ShipmentEvent, error) {
	const failure = "Failed to fetch shipment event"
	if err := requireID("event_id", eventID); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	body := map[string]model.ID{"event_id": eventID}
	return fetchItem[model.ShipmentEvent](ctx, c.r, http.MethodPost, "/get_shipment_event", body, failure)
}
