package resource

import (
	"context"
	"net/http"

	"storefront-client/internal/model"
)

type lineMessages struct {
	fetch, add, update, remove string
}

// Lines is the server-side cart or wishlist client.
type Lines struct {
	r    Requester
	base string
	msgs lineMessages
}

// NewCart returns the /cart client.
func NewCart(r Requester) *Lines {
	return &Lines{r: r, base: "/cart", msgs: lineMessages{
		fetch:  "Failed to fetch cart items",
		add:    "Failed to add cart item",
		update: "Failed to update cart item",
		remove: "Failed to remove cart item",
	}}
}

// NewWishlist returns the /wishlist client.
func NewWishlist(r Requester) *Lines {
	return &Lines{r: r, base: "/wishlist", msgs: lineMessages{
		fetch:  "Failed to fetch wishlist items",
		add:    "Failed to add wishlist item",
		update: "Failed to update wishlist item",
		remove: "Failed to remove wishlist item",
	}}
}

// FetchItems lists the signed-in user's lines.
func (c *Lines) FetchItems(ctx context.Context) ([]model.Line, error) {
	return fetchList[model.Line](ctx, c.r, http.MethodGet, c.base, nil, c.msgs.fetch)
}

type addItemRequest struct {
	ProductID model.ID `json:"product_id"`
	VariantID model.ID `json:"variant_id,omitempty"`
	Quantity  int      `json:"quantity"`
}

// AddItem adds qty of a product (and optional variant).
func (c *Lines) AddItem(ctx context.Context, productID, variantID model.ID, qty int) error {
	if err := requireID("product_id", productID); err != nil {
		return model.WrapOperation(c.msgs.add, err)
	}
	if qty < 1 {
		return model.WrapOperation(c.msgs.add, model.NewValidationError("quantity", "must be at least 1"))
	}
	body := addItemRequest{ProductID: productID, VariantID: variantID, Quantity: qty}
	return send(ctx, c.r, http.MethodPost, c.base+"/items", body, c.msgs.add)
}

// EditQuantity sets a line's quantity. The server decides what a zero
// quantity means.
func (c *Lines) EditQuantity(ctx context.Context, itemID model.ID, qty int) error {
	if err := requireID("item_id", itemID); err != nil {
		return model.WrapOperation(c.msgs.update, err)
	}
	body := map[string]int{"quantity": qty}
	return send(ctx, c.r, http.MethodPut, c.base+"/item/"+escape(itemID), body, c.msgs.update)
}

// RemoveItem deletes a line. Calling it twice is the caller's problem.
func (c *Lines) RemoveItem(ctx context.Context, itemID model.ID) error {
	if err := requireID("item_id", itemID); err != nil {
		return model.WrapOperation(c.msgs.remove, err)
	}
	return send(ctx, c.r, http.MethodDelete, c.base+"/item/"+escape(itemID), nil, c.msgs.remove)
}
