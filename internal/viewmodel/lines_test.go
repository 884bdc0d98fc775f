package viewmodel

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-client/internal/guest"
	"storefront-client/internal/localstore"
	"storefront-client/internal/model"
	"storefront-client/internal/resource"
	"storefront-client/internal/session"
)

func serverLines() *resource.MockLines {
	return &resource.MockLines{
		FetchItemsFunc: func(context.Context) ([]model.Line, error) {
			return []model.Line{{
				ProductID: "10", VariantID: "20", Name: "Server Lamp", VariantName: "Brass",
				UnitPrice: decimal.RequireFromString("4.25"), Quantity: 2,
			}}, nil
		},
	}
}

func TestCart_GuestSource(t *testing.T) {
	sess := session.New(nil, nil)
	store := guest.New(localstore.NewMemory(), guest.CartKey, nil)
	server := &resource.MockLines{
		FetchItemsFunc: func(context.Context) ([]model.Line, error) {
			t.Error("server should not be called for a guest")
			return nil, nil
		},
	}
	cart := Cart(sess, server, store, nil)
	defer cart.Close()
	ctx := context.Background()

	p := model.ProductRef{ID: "P1", Name: "Shirt", Price: decimal.RequireFromString("10")}
	v := &model.VariantRef{ID: "V1", Name: "Blue"}
	require.NoError(t, cart.Add(ctx, p, v, 2))
	require.NoError(t, cart.Add(ctx, p, v, 1))

	data := cart.State().Data
	require.Len(t, data, 1)
	assert.Equal(t, 3, data[0].Quantity)
	assert.Equal(t, "30.00", cart.Total())

	require.NoError(t, cart.UpdateQuantity(ctx, data[0].ID, 0))
	assert.Empty(t, cart.State().Data)
}

func TestCart_ServerSourceAndSameShape(t *testing.T) {
	sess := session.New(nil, nil)
	sess.Login(context.Background(), model.User{ID: "1"}, "tok")

	cart := Cart(sess, serverLines(), guest.New(nil, guest.CartKey, nil), nil)
	defer cart.Close()
	require.NoError(t, cart.Load(context.Background()))

	data := cart.State().Data
	require.Len(t, data, 1)
	assert.Equal(t, model.ID("20"), data[0].ID)
	assert.Equal(t, "Server Lamp", data[0].Product.Name)
	require.NotNil(t, data[0].Variant)
	assert.Equal(t, "8.50", model.FormatMoney(data[0].Total))
}

func TestCart_ReloadsOnLoginAndLogout(t *testing.T) {
	sess := session.New(nil, nil)
	store := guest.New(localstore.NewMemory(), guest.CartKey, nil)
	ctx := context.Background()
	store.Add(ctx, model.ProductRef{ID: "G1", Name: "Guest Mug", Price: decimal.NewFromInt(3)}, nil, 1)

	cart := Cart(sess, serverLines(), store, nil)
	defer cart.Close()
	require.NoError(t, cart.Load(ctx))
	assert.Equal(t, "Guest Mug", cart.State().Data[0].Product.Name)

	sess.Login(ctx, model.User{ID: "1"}, "tok")
	assert.Equal(t, "Server Lamp", cart.State().Data[0].Product.Name)

	sess.Logout(ctx)
	assert.Equal(t, "Guest Mug", cart.State().Data[0].Product.Name)
}

func TestCart_ServerMutationFailure(t *testing.T) {
	sess := session.New(nil, nil)
	sess.Login(context.Background(), model.User{ID: "1"}, "tok")

	server := serverLines()
	server.EditQuantityFunc = func(context.Context, model.ID, int) error {
		return model.WrapOperation("Failed to update cart item", errors.New("boom"))
	}
	cart := Cart(sess, server, guest.New(nil, guest.CartKey, nil), nil)
	defer cart.Close()
	ctx := context.Background()
	require.NoError(t, cart.Load(ctx))

	err := cart.UpdateQuantity(ctx, "20", 5)
	assert.EqualError(t, err, "Failed to update cart item")
	assert.Equal(t, "Error: Failed to update cart item", cart.State().Error)
	assert.Len(t, cart.State().Data, 1, "data kept after failed mutation")
}

func TestCart_CloseStopsSessionReloads(t *testing.T) {
	sess := session.New(nil, nil)
	calls := 0
	server := &resource.MockLines{
		FetchItemsFunc: func(context.Context) ([]model.Line, error) {
			calls++
			return []model.Line{}, nil
		},
	}
	cart := Cart(sess, server, guest.New(nil, guest.CartKey, nil), nil)
	cart.Close()

	sess.Login(context.Background(), model.User{ID: "1"}, "tok")
	assert.Zero(t, calls)
}
