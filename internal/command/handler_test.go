package command

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/catalog"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/settings"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/infrastructure/store/mocks"
	"github.com/example/storefront/internal/logs"
	"github.com/example/storefront/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newHandlerOn(kv store.KV) (*Handler, *metrics.Registry) {
	logger := logs.Discard()
	reg := metrics.NewRegistry()

	cartSvc := cart.NewService(kv, logger, reg)
	orderSvc := order.NewService(kv, logger, reg)
	productSvc := product.NewService(kv, logger)
	settingsSvc := settings.NewService(kv, logger)

	handler := NewHandler(catalog.Default(), cartSvc, orderSvc, productSvc, settingsSvc, kv, logger, reg)
	return handler, reg
}

func newTestHandler() (*Handler, *mocks.MockKV, *metrics.Registry) {
	kv := mocks.NewMockKV()
	handler, reg := newHandlerOn(kv)
	return handler, kv, reg
}

func checkoutForm() order.CheckoutForm {
	return order.CheckoutForm{
		Customer: order.Customer{Name: "Siti Aminah", Email: "siti@example.com", Phone: "081234567890"},
		Address: order.Address{
			Address:    "Jl. Sudirman 10",
			Province:   "DKI Jakarta",
			City:       "Jakarta Selatan",
			PostalCode: "12190",
		},
		PaymentMethod: "bca",
	}
}

func storedOrders(t *testing.T, kv *mocks.MockKV) []order.Order {
	t.Helper()
	raw, ok := kv.Raw(store.KeyOrders)
	if !ok {
		return nil
	}
	var orders []order.Order
	require.NoError(t, json.Unmarshal(raw, &orders))
	return orders
}

// ============================================
// Add To Cart Tests
// ============================================

func TestHandler_AddToCart_Success(t *testing.T) {
	handler, _, _ := newTestHandler()
	ctx := context.Background()

	line, err := handler.AddToCart(ctx, AddToCart{ProductID: "f1"})

	require.NoError(t, err)
	assert.Equal(t, cart.Line{
		ProductID: "f1",
		Name:      "Casual White T-Shirt",
		Price:     159000,
		Image:     "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500",
		Quantity:  1,
	}, line)
}

func TestHandler_AddToCart_ProductNotFound(t *testing.T) {
	handler, kv, _ := newTestHandler()

	_, err := handler.AddToCart(context.Background(), AddToCart{ProductID: "x9"})

	assert.ErrorIs(t, err, apperr.ErrProductNotFound)
	assert.Empty(t, kv.ApplyCalls)
}

func TestHandler_SetShipping_Invalid(t *testing.T) {
	handler, kv, _ := newTestHandler()

	err := handler.SetShipping(context.Background(), SetShipping{Method: "same-day"})

	assert.ErrorIs(t, err, apperr.ErrInvalidShippingMethod)
	assert.Empty(t, kv.ApplyCalls)
}

func TestHandler_UpdateQuantity_RemovalFlow(t *testing.T) {
	handler, _, _ := newTestHandler()
	ctx := context.Background()
	_, err := handler.AddToCart(ctx, AddToCart{ProductID: "e4"})
	require.NoError(t, err)

	_, err = handler.UpdateQuantity(ctx, UpdateQuantity{ProductID: "e4", Delta: -1})
	require.ErrorIs(t, err, apperr.ErrRemovalRequired)

	require.NoError(t, handler.RemoveFromCart(ctx, RemoveFromCart{ProductID: "e4"}))
	c, err := handler.cartSvc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
}

// ============================================
// Place Order Tests
// ============================================

func TestHandler_PlaceOrder_Success(t *testing.T) {
	handler, kv, reg := newTestHandler()
	ctx := context.Background()

	_, err := handler.AddToCart(ctx, AddToCart{ProductID: "f1"})
	require.NoError(t, err)
	_, err = handler.AddToCart(ctx, AddToCart{ProductID: "f1"})
	require.NoError(t, err)
	kv.ApplyCalls = nil

	o, err := handler.PlaceOrder(ctx, PlaceOrder{Form: checkoutForm()})

	require.NoError(t, err)
	assert.Equal(t, 318000, o.Subtotal)
	assert.Equal(t, 15000, o.ShippingCost)
	assert.Equal(t, 333000, o.Total)
	assert.Equal(t, order.StatusPending, o.Status)
	assert.Equal(t, "Transfer Bank BCA", o.PaymentMethodName)

	// one batch: orders first, then the cart reset
	require.Len(t, kv.ApplyCalls, 1)
	batch := kv.ApplyCalls[0]
	require.Len(t, batch, 3)
	assert.Equal(t, store.KeyOrders, batch[0].Key)
	assert.Equal(t, store.KeyCart, batch[1].Key)
	assert.Equal(t, store.KeyCartShipping, batch[2].Key)
	assert.True(t, batch[2].Delete)

	orders := storedOrders(t, kv)
	require.Len(t, orders, 1)
	assert.Equal(t, o.ID, orders[0].ID)

	c, err := handler.cartSvc.Get(ctx)
	require.NoError(t, err)
	assert.True(t, c.IsEmpty())
	assert.Equal(t, cart.ShippingRegular, c.ShippingMethod)

	assert.Equal(t, 1.0, testutil.ToFloat64(reg.OrdersCommitted))
}

func TestHandler_PlaceOrder_ExpressShipping(t *testing.T) {
	handler, _, _ := newTestHandler()
	ctx := context.Background()

	_, err := handler.AddToCart(ctx, AddToCart{ProductID: "e2"})
	require.NoError(t, err)
	require.NoError(t, handler.SetShipping(ctx, SetShipping{Method: "express"}))

	o, err := handler.PlaceOrder(ctx, PlaceOrder{Form: checkoutForm()})

	require.NoError(t, err)
	assert.Equal(t, cart.ShippingExpress, o.ShippingMethod)
	assert.Equal(t, 2999000+30000, o.Total)
}

func TestHandler_PlaceOrder_EmptyCart(t *testing.T) {
	handler, kv, reg := newTestHandler()

	_, err := handler.PlaceOrder(context.Background(), PlaceOrder{Form: checkoutForm()})

	assert.ErrorIs(t, err, apperr.ErrEmptyCart)
	assert.Empty(t, kv.ApplyCalls)
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CommitFailures.WithLabelValues(string(apperr.CodeEmptyCart))))
}

func TestHandler_PlaceOrder_InvalidFormLeavesCart(t *testing.T) {
	handler, kv, _ := newTestHandler()
	ctx := context.Background()
	_, err := handler.AddToCart(ctx, AddToCart{ProductID: "s2"})
	require.NoError(t, err)
	writes := len(kv.ApplyCalls)

	form := checkoutForm()
	form.Address.PostalCode = "1219"
	_, err = handler.PlaceOrder(ctx, PlaceOrder{Form: form})

	assert.ErrorIs(t, err, apperr.ErrInvalidPostalCode)
	assert.Len(t, kv.ApplyCalls, writes)
	assert.Empty(t, storedOrders(t, kv))
}

func TestHandler_PlaceOrder_StorageFailureIsAtomic(t *testing.T) {
	handler, kv, reg := newTestHandler()
	ctx := context.Background()
	_, err := handler.AddToCart(ctx, AddToCart{ProductID: "s2"})
	require.NoError(t, err)
	cartBefore, _ := kv.Raw(store.KeyCart)

	kv.ApplyErr = errors.New("quota exceeded")
	_, err = handler.PlaceOrder(ctx, PlaceOrder{Form: checkoutForm()})

	assert.ErrorIs(t, err, apperr.ErrStorage)
	assert.Empty(t, storedOrders(t, kv))
	cartAfter, _ := kv.Raw(store.KeyCart)
	assert.Equal(t, cartBefore, cartAfter)
	assert.Equal(t, 0.0, testutil.ToFloat64(reg.OrdersCommitted))
	assert.Equal(t, 1.0, testutil.ToFloat64(reg.CommitFailures.WithLabelValues(string(apperr.CodeStorage))))
}

func TestHandler_PlaceOrder_PartialWriteKeepsOrder(t *testing.T) {
	handler, kv, _ := newTestHandler()
	ctx := context.Background()
	_, err := handler.AddToCart(ctx, AddToCart{ProductID: "s2"})
	require.NoError(t, err)

	kv.ApplyCallback = func(_ context.Context, ops []store.Op) error {
		kv.ApplyPartial(ops, 1)
		return errors.New("crashed after first write")
	}
	_, err = handler.PlaceOrder(ctx, PlaceOrder{Form: checkoutForm()})

	require.ErrorIs(t, err, apperr.ErrStorage)
	assert.Len(t, storedOrders(t, kv), 1, "the order write lands before the cart reset")
	_, ok := kv.Raw(store.KeyCart)
	assert.True(t, ok)
}

func TestHandler_PlaceOrder_OnPebble(t *testing.T) {
	kv, err := store.NewPebbleStore(t.TempDir(), true)
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	handler, _ := newHandlerOn(kv)
	ctx := context.Background()

	for _, id := range []string{"f1", "f1", "e3"} {
		_, err := handler.AddToCart(ctx, AddToCart{ProductID: id})
		require.NoError(t, err)
	}
	first, err := handler.PlaceOrder(ctx, PlaceOrder{Form: checkoutForm()})
	require.NoError(t, err)

	_, err = handler.PlaceOrder(ctx, PlaceOrder{Form: checkoutForm()})
	assert.ErrorIs(t, err, apperr.ErrEmptyCart, "cart was cleared by the commit")

	_, err = handler.AddToCart(ctx, AddToCart{ProductID: "s3"})
	require.NoError(t, err)
	second, err := handler.PlaceOrder(ctx, PlaceOrder{Form: checkoutForm()})
	require.NoError(t, err)

	orders, err := handler.orderSvc.List(ctx, order.Filter{})
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, first.ID, orders[0].ID)
	assert.Equal(t, second.ID, orders[1].ID)
	assert.Equal(t, 159000*2+899000+15000, orders[0].Total)
}

// ============================================
// Order Status / Admin Tests
// ============================================

func TestHandler_UpdateOrderStatus(t *testing.T) {
	handler, _, _ := newTestHandler()
	ctx := context.Background()
	_, err := handler.AddToCart(ctx, AddToCart{ProductID: "f2"})
	require.NoError(t, err)
	o, err := handler.PlaceOrder(ctx, PlaceOrder{Form: checkoutForm()})
	require.NoError(t, err)

	_, err = handler.UpdateOrderStatus(ctx, UpdateOrderStatus{OrderID: o.ID, Status: "completed"})
	assert.ErrorIs(t, err, apperr.ErrInvalidStatusTransition)

	updated, err := handler.UpdateOrderStatus(ctx, UpdateOrderStatus{OrderID: o.ID, Status: "processing"})
	require.NoError(t, err)
	assert.Equal(t, order.StatusProcessing, updated.Status)
}

func TestHandler_SaveAndDeleteProduct(t *testing.T) {
	handler, _, _ := newTestHandler()
	ctx := context.Background()

	p, err := handler.SaveProduct(ctx, SaveProduct{Product: product.Product{
		Name: "Kaos Polos", Category: catalog.CategoryFashion, Price: 75000,
	}})
	require.NoError(t, err)

	_, err = handler.AddToCart(ctx, AddToCart{ProductID: p.ID})
	assert.ErrorIs(t, err, apperr.ErrProductNotFound, "admin products are not in the storefront catalog")

	require.NoError(t, handler.DeleteProduct(ctx, DeleteProduct{ProductID: p.ID}))
	_, err = handler.productSvc.Get(ctx, p.ID)
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)
}

func TestHandler_SaveSettings(t *testing.T) {
	handler, _, _ := newTestHandler()

	got, err := handler.SaveSettings(context.Background(), SaveSettings{Settings: settings.Settings{
		StoreName: "Toko Zek", ThemeColor: "#222222",
	}})

	require.NoError(t, err)
	assert.Equal(t, "#222222", got.ThemeColor)
}
