package resource

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-client/internal/model"
	"storefront-client/internal/transport"
)

type recorded struct {
	method string
	path   string
	query  string
	body   map[string]any
}

// newBackend starts a server that records the last request and replies
// with status and body.
func newBackend(t *testing.T, status int, body string) (*transport.Client, *recorded, *int32) {
	t.Helper()
	rec := &recorded{}
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.body = nil
		if raw, _ := io.ReadAll(r.Body); len(raw) > 0 {
			json.Unmarshal(raw, &rec.body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)

	c, err := transport.New(transport.Config{Origin: srv.URL})
	require.NoError(t, err)
	return c, rec, &calls
}

func TestWriteFailuresUseLiteral(t *testing.T) {
	ctx := context.Background()
	tests := []struct {
		name string
		call func(r Requester) error
		want string
	}{
		{"cart edit", func(r Requester) error { return NewCart(r).EditQuantity(ctx, "7", 2) }, "Failed to update cart item"},
		{"cart remove", func(r Requester) error { return NewCart(r).RemoveItem(ctx, "7") }, "Failed to remove cart item"},
		{"cart add", func(r Requester) error { return NewCart(r).AddItem(ctx, "P1", "", 1) }, "Failed to add cart item"},
		{"wishlist edit", func(r Requester) error { return NewWishlist(r).EditQuantity(ctx, "7", 2) }, "Failed to update wishlist item"},
		{"wishlist remove", func(r Requester) error { return NewWishlist(r).RemoveItem(ctx, "7") }, "Failed to remove wishlist item"},
		{"issue delete", func(r Requester) error { return NewFinance(r).DeleteIssue(ctx, "3") }, "Failed to delete issue"},
		{"refund decide", func(r Requester) error {
			return NewCustomerService(r).DecideRefund(ctx, "9", model.RefundApprove, "10.00", "ok")
		}, "Failed to process refund request"},
		{"shipment report", func(r Requester) error {
			return NewCustomerService(r).ProcessShipmentReport(ctx, "4", "carrier")
		}, "Failed to process shipment report"},
		{"shipment event", func(r Requester) error {
			return NewShipment(r).CreateShipmentEvent(ctx, model.ShipmentEventInput{OrderID: "1", Status: "shipped"})
		}, "Failed to create shipment event"},
		{"delete product", func(r Requester) error { return NewSeller(r).DeleteProduct(ctx, "5") }, "Failed to delete product"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _, _ := newBackend(t, http.StatusInternalServerError, `{"error":"boom"}`)
			err := tt.call(c)
			require.Error(t, err)
			assert.Equal(t, tt.want, err.Error())
			assert.ErrorIs(t, err, model.ErrRequestFailed)
		})
	}
}

func TestReadFailuresUseLiteral(t *testing.T) {
	ctx := context.Background()
	c, _, _ := newBackend(t, http.StatusInternalServerError, `{}`)

	_, err := NewFinance(c).FetchIssues(ctx)
	assert.EqualError(t, err, "Failed to fetch issues")
	_, err = NewFinance(c).FetchIssueDetail(ctx, "1")
	assert.EqualError(t, err, "Failed to fetch issue detail")
	_, err = NewFinance(c).FetchReimbursements(ctx)
	assert.EqualError(t, err, "Failed to fetch reimbursements")
	_, err = NewFinance(c).FetchReimbursementDetail(ctx, "1")
	assert.EqualError(t, err, "Failed to fetch reimbursement detail")
	_, err = NewCart(c).FetchItems(ctx)
	assert.EqualError(t, err, "Failed to fetch cart items")
	_, err = NewWishlist(c).FetchItems(ctx)
	assert.EqualError(t, err, "Failed to fetch wishlist items")
	_, err = NewShipment(c).GetOrders(ctx)
	assert.EqualError(t, err, "Failed to fetch orders")
	_, err = NewSeller(c).GetPayouts(ctx, 2024, 5)
	assert.EqualError(t, err, "Failed to fetch payouts")
}

func TestUnauthorizedStillDetectable(t *testing.T) {
	c, _, _ := newBackend(t, http.StatusForbidden, ``)
	err := NewCart(c).EditQuantity(context.Background(), "7", 2)

	assert.EqualError(t, err, "Failed to update cart item")
	assert.True(t, errors.Is(err, model.ErrUnauthorized))
}

func TestBareArrayPassThrough(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusOK, `[{"id":1,"description":"item","status":"open"}]`)
	issues, err := NewFinance(c).FetchIssues(context.Background())

	require.NoError(t, err)
	require.Len(t, issues, 1)
	assert.Equal(t, model.ID("1"), issues[0].ID)
	assert.Equal(t, "item", issues[0].Description)
	assert.Equal(t, http.MethodGet, rec.method)
	assert.Equal(t, "/api/v1/finance/issues", rec.path)
}

func TestResultWrappedReads(t *testing.T) {
	ctx := context.Background()

	c, rec, _ := newBackend(t, http.StatusOK, `{"result":[{"order_id":1,"order_number":"A-1","order_status":"paid"}]}`)
	orders, err := NewShipment(c).GetOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "A-1", orders[0].OrderNumber)
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/get_orders", rec.path)

	c, _, _ = newBackend(t, http.StatusOK, `{}`)
	orders, err = NewShipment(c).GetOrders(ctx)
	require.NoError(t, err)
	assert.NotNil(t, orders)
	assert.Empty(t, orders)
}

func TestDetailReads(t *testing.T) {
	ctx := context.Background()

	c, rec, _ := newBackend(t, http.StatusOK, `{"item":{"id":5,"description":"Detail","status":"open"}}`)
	issue, err := NewFinance(c).FetchIssueDetail(ctx, "5")
	require.NoError(t, err)
	require.NotNil(t, issue)
	assert.Equal(t, "Detail", issue.Description)
	assert.Equal(t, "/api/v1/finance/issues/5", rec.path)

	c, rec, _ = newBackend(t, http.StatusOK, `{"result":{"refund_request_id":9,"status":"pending"}}`)
	req, err := NewCustomerService(c).GetRefundRequest(ctx, "9")
	require.NoError(t, err)
	require.NotNil(t, req)
	assert.Equal(t, "pending", req.Status)
	assert.Equal(t, float64(9), rec.body["refund_request_id"])

	c, _, _ = newBackend(t, http.StatusOK, `{"result":null}`)
	ship, err := NewShipment(c).GetShipment(ctx, "3")
	require.NoError(t, err)
	assert.Nil(t, ship)
}

func TestCartRequests(t *testing.T) {
	ctx := context.Background()
	c, rec, _ := newBackend(t, http.StatusOK, `{}`)
	cart := NewCart(c)

	require.NoError(t, cart.AddItem(ctx, "12", "34", 2))
	assert.Equal(t, http.MethodPost, rec.method)
	assert.Equal(t, "/api/v1/cart/items", rec.path)
	assert.Equal(t, map[string]any{"product_id": float64(12), "variant_id": float64(34), "quantity": float64(2)}, rec.body)

	require.NoError(t, cart.EditQuantity(ctx, "7", 3))
	assert.Equal(t, http.MethodPut, rec.method)
	assert.Equal(t, "/api/v1/cart/item/7", rec.path)
	assert.Equal(t, map[string]any{"quantity": float64(3)}, rec.body)

	require.NoError(t, cart.RemoveItem(ctx, "7"))
	assert.Equal(t, http.MethodDelete, rec.method)
}

func TestValidationSkipsNetwork(t *testing.T) {
	ctx := context.Background()
	c, _, calls := newBackend(t, http.StatusOK, `{}`)

	err := NewCart(c).EditQuantity(ctx, "", 1)
	assert.EqualError(t, err, "Failed to update cart item")
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	assert.ErrorIs(t, NewCart(c).AddItem(ctx, "P1", "", 0), model.ErrInvalidRequest)
	assert.ErrorIs(t, NewCustomerService(c).DecideRefund(ctx, "1", "maybe", "", ""), model.ErrInvalidRequest)
	assert.ErrorIs(t, NewCustomerService(c).DecideRefund(ctx, "1", model.RefundDeny, "-4", ""), model.ErrInvalidRequest)
	_, err = NewSeller(c).GetPayouts(ctx, 2024, 13)
	assert.ErrorIs(t, err, model.ErrInvalidRequest)
	_, err = NewAuth(c).Login(ctx, "", "pw")
	assert.ErrorIs(t, err, model.ErrInvalidRequest)

	assert.Zero(t, atomic.LoadInt32(calls))
}

func TestDecideRefundBody(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusOK, `{"result":"ok"}`)
	err := NewCustomerService(c).DecideRefund(context.Background(), "9", model.RefundDeny, "12.50", "damaged")

	require.NoError(t, err)
	assert.Equal(t, "/api/v1/process_customer_complaint", rec.path)
	assert.Equal(t, "denied", rec.body["status"])
	assert.Equal(t, "12.5", rec.body["refund_amount"])
	assert.Equal(t, "damaged", rec.body["description"])
}

func TestEditShipmentIssueMergesFields(t *testing.T) {
	c, rec, _ := newBackend(t, http.StatusOK, `{}`)
	err := NewShipment(c).EditShipmentIssue(context.Background(), "4", map[string]any{"description": "late", "issue_id": "spoofed"})

	require.NoError(t, err)
	assert.Equal(t, float64(4), rec.body["issue_id"])
	assert.Equal(t, "late", rec.body["description"])
}

func TestSellerQueries(t *testing.T) {
	ctx := context.Background()
	c, rec, _ := newBackend(t, http.StatusOK, `{"result":[{"product_id":1,"name":"Lamp","price":"9.99"}]}`)
	seller := NewSeller(c)

	products, err := seller.SearchProducts(ctx, ProductQuery{Keywords: "lamp", Page: 2})
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "/api/v1/search_products_for_seller", rec.path)
	assert.Equal(t, "keywords=lamp&page=2", rec.query)

	_, err = seller.GetPayouts(ctx, 2024, 3)
	require.NoError(t, err)
	assert.Equal(t, "month=3&year=2024", rec.query)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()
	c, rec, _ := newBackend(t, http.StatusOK, `{"token":"tok","user":{"id":1,"email":"a@b.c","isEmployee":true}}`)

	resp, err := NewAuth(c).Login(ctx, "a@b.c", "pw")
	require.NoError(t, err)
	assert.Equal(t, "tok", resp.Token)
	assert.True(t, resp.User.IsEmployee)
	assert.Equal(t, "/api/login", rec.path)

	c, _, _ = newBackend(t, http.StatusBadRequest, `{"error":"bad password"}`)
	_, err = NewAuth(c).Login(ctx, "a@b.c", "nope")
	assert.EqualError(t, err, "Invalid credentials")

	c, _, _ = newBackend(t, http.StatusOK, `{"token":"tok","user":{"email":"a@b.c","isManager":true}}`)
	_, err = NewAuth(c).Login(ctx, "a@b.c", "pw")
	assert.EqualError(t, err, "Invalid credentials")
	assert.ErrorIs(t, err, model.ErrRequestFailed)
}
