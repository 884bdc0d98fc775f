package resource

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"storefront-client/internal/model"
)

// ProductQuery filters a seller product search. Zero fields are omitted.
type ProductQuery struct {
	Keywords      string
	CategoryID    model.ID
	SubcategoryID model.ID
	MinPrice      string
	MaxPrice      string
	Page          int
	PageSize      int
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	set := func(k, val string) {
		if val != "" {
			v.Set(k, val)
		}
	}
	set("keywords", q.Keywords)
	set("category_id", q.CategoryID.String())
	set("subcategory_id", q.SubcategoryID.String())
	set("min_price", q.MinPrice)
	set("max_price", q.MaxPrice)
	if q.Page > 0 {
		v.Set("page", strconv.Itoa(q.Page))
	}
	if q.PageSize > 0 {
		v.Set("pageSize", strconv.Itoa(q.PageSize))
	}
	return v
}

// Seller is the seller portal client.
type Seller struct {
	r Requester
}

func NewSeller(r Requester) *Seller {
	return &Seller{r: r}
}

func (c *Seller) SearchProducts(ctx context.Context, q ProductQuery) ([]model.Product, error) {
	path := "/search_products_for_seller"
	if qs := q.values().Encode(); qs != "" {
		path += "?" + qs
	}
	return fetchList[model.Product](ctx, c.r, http.MethodGet, path, nil, "Failed to fetch seller products")
}

func (c *Seller) GetProduct(ctx context.Context, productID model.ID) (*model.Product, error) {
	const failure = "Failed to fetch product"
	if err := requireID("product_id", productID); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	path := "/get_product?" + url.Values{"product_id": {productID.String()}}.Encode()
	return fetchItem[model.Product](ctx, c.r, http.MethodGet, path, nil, failure)
}

func (c *Seller) CreateProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	const failure = "Failed to create product"
	if p.Name == "" {
		return nil, model.WrapOperation(failure, model.NewValidationError("name", "required"))
	}
	return fetchItem[model.Product](ctx, c.r, http.MethodPost, "/create_product", p, failure)
}

func (c *Seller) EditProduct(ctx context.Context, p model.Product) (*model.Product, error) {
	const failure = "Failed to update product"
	if err := requireID("product_id", p.ID); err != nil {
		return nil, model.WrapOperation(failure, err)
	}
	return fetchItem[model.Product](ctx, c.r, http.MethodPut, "/edit_product", p, failure)
}

// DeleteProduct soft-deletes a product.
func (c *Seller) DeleteProduct(ctx context.Context, productID model.ID) error {
	const failure = "Failed to delete product"
	if err := requireID("product_id", productID); err != nil {
		return model.WrapOperation(failure, err)
	}
	body := map[string]model.ID{"product_id": productID}
	return send(ctx, c.r, http.MethodDelete, "/delete_product", body, failure)
}

// RemoveVariant soft-deletes one variant.
func (c *Seller) RemoveVariant(ctx context.Context, variantID model.ID) error {
	const failure = "Failed to remove variant"
	if err := requireID("variant_id", variantID); err != nil {
		return model.WrapOperation(failure, err)
	}
	body := map[string]model.ID{"variant_id": variantID}
	return send(ctx, c.r, http.MethodDelete, "/remove_variant", body, failure)
}

// GetPayouts returns payouts for a month; month 0 means the whole year.
func (c *Seller) GetPayouts(ctx context.Context, year, month int) ([]model.Payout, error) {
	const failure = "Failed to fetch payouts"
	if year < 1 {
		return nil, model.WrapOperation(failure, model.NewValidationError("year", "required"))
	}
	if month < 0 || month > 12 {
		return nil, model.WrapOperation(failure, model.NewValidationError("month", "must be 0-12"))
	}
	v := url.Values{"year": {strconv.Itoa(year)}}
	if month > 0 {
		v.Set("month", strconv.Itoa(month))
	}
	return fetchList[model.Payout](ctx, c.r, http.MethodGet, "/get_seller_payout?"+v.Encode(), nil, failure)
}
