package query

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

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
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestQueryHandler() (*Handler, *mocks.MockKV) {
	kv := mocks.NewMockKV()
	logger := logs.Discard()
	reg := metrics.NewRegistry()

	handler := NewHandler(
		catalog.Default(),
		cart.NewService(kv, logger, reg),
		order.NewService(kv, logger, reg),
		product.NewService(kv, logger),
		settings.NewService(kv, logger),
	)
	return handler, kv
}

func setJSON(t *testing.T, kv *mocks.MockKV, key string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	kv.SetRaw(key, data)
}

// ============================================
// Catalog Query Tests
// ============================================

func TestHandler_ListCatalog(t *testing.T) {
	handler, _ := newTestQueryHandler()

	assert.Len(t, handler.ListCatalog(catalog.CategoryAll), 14)
	assert.Len(t, handler.ListCatalog(catalog.CategoryElectronics), 4)
	assert.Empty(t, handler.ListCatalog("toys"))
}

func TestHandler_GetCatalogProduct(t *testing.T) {
	handler, _ := newTestQueryHandler()

	p, err := handler.GetCatalogProduct("s1")
	require.NoError(t, err)
	assert.Equal(t, 1299000, p.Price)

	_, err = handler.GetCatalogProduct("zz")
	assert.ErrorIs(t, err, apperr.ErrProductNotFound)
}

// ============================================
// Cart Query Tests
// ============================================

func TestHandler_GetCart(t *testing.T) {
	handler, kv := newTestQueryHandler()
	setJSON(t, kv, store.KeyCart, []cart.Line{
		{ProductID: "f1", Price: 159000, Quantity: 2},
		{ProductID: "s5", Price: 159000, Quantity: 1},
	})
	setJSON(t, kv, store.KeyCartShipping, cart.ShippingExpress)

	view, err := handler.GetCart(context.Background())

	require.NoError(t, err)
	assert.Equal(t, 3, view.TotalItems)
	assert.Equal(t, 477000, view.Subtotal)
	assert.Equal(t, 30000, view.ShippingCost)
	assert.Equal(t, 507000, view.Total)
	assert.Empty(t, kv.ApplyCalls)
}

func TestHandler_GetCart_Empty(t *testing.T) {
	handler, _ := newTestQueryHandler()

	view, err := handler.GetCart(context.Background())

	require.NoError(t, err)
	assert.NotNil(t, view.Lines)
	assert.Equal(t, 15000, view.Total)

	n, err := handler.CartCount(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestHandler_GetCart_StorageError(t *testing.T) {
	handler, kv := newTestQueryHandler()
	kv.GetErr = errors.New("io")

	_, err := handler.GetCart(context.Background())

	assert.ErrorIs(t, err, apperr.ErrStorage)
}

// ============================================
// Dashboard Tests
// ============================================

func TestHandler_Dashboard(t *testing.T) {
	handler, kv := newTestQueryHandler()
	ctx := context.Background()
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	var orders []order.Order
	statuses := []order.Status{
		order.StatusCompleted, order.StatusPending, order.StatusCompleted, order.StatusCancelled,
		order.StatusProcessing, order.StatusCompleted, order.StatusPending,
	}
	for i, st := range statuses {
		orders = append(orders, order.Order{
			ID:        string(rune('A' + i)),
			Status:    st,
			Total:     (i + 1) * 1000,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
	}
	setJSON(t, kv, store.KeyOrders, orders)
	setJSON(t, kv, store.KeyProducts, product.Samples())

	stats, err := handler.Dashboard(ctx)

	require.NoError(t, err)
	assert.Equal(t, 7, stats.TotalOrders)
	assert.Equal(t, 3, stats.TotalProducts)
	assert.Equal(t, 1000+3000+6000, stats.Revenue)
	require.Len(t, stats.RecentOrders, RecentOrderLimit)
	assert.Equal(t, "G", stats.RecentOrders[0].ID)
	assert.Equal(t, "C", stats.RecentOrders[4].ID)
}

func TestHandler_Dashboard_Empty(t *testing.T) {
	handler, _ := newTestQueryHandler()

	stats, err := handler.Dashboard(context.Background())

	require.NoError(t, err)
	assert.Zero(t, stats.TotalOrders)
	assert.Zero(t, stats.Revenue)
	assert.Empty(t, stats.RecentOrders)
}

func TestHandler_Dashboard_TiesNewestCommitFirst(t *testing.T) {
	handler, kv := newTestQueryHandler()
	at := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	setJSON(t, kv, store.KeyOrders, []order.Order{
		{ID: "first", CreatedAt: at},
		{ID: "second", CreatedAt: at},
	})

	stats, err := handler.Dashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "second", stats.RecentOrders[0].ID)
}

// ============================================
// Order / Product / Settings Query Tests
// ============================================

func TestHandler_ListOrders(t *testing.T) {
	handler, kv := newTestQueryHandler()
	setJSON(t, kv, store.KeyOrders, []order.Order{
		{ID: "A", Status: order.StatusPending},
		{ID: "B", Status: order.StatusCancelled},
	})

	cancelled, err := handler.ListOrders(context.Background(), order.Filter{Status: order.StatusCancelled})
	require.NoError(t, err)
	require.Len(t, cancelled, 1)
	assert.Equal(t, "B", cancelled[0].ID)

	_, err = handler.GetOrder(context.Background(), "C")
	assert.ErrorIs(t, err, apperr.ErrOrderNotFound)
}

func TestHandler_ProductsAndSettings(t *testing.T) {
	handler, kv := newTestQueryHandler()
	ctx := context.Background()
	setJSON(t, kv, store.KeyProducts, product.Samples())

	fashion, err := handler.ListProducts(ctx, product.Filter{Category: catalog.CategoryFashion})
	require.NoError(t, err)
	require.Len(t, fashion, 1)

	found, err := handler.ListProducts(ctx, product.Filter{Search: "headphone"})
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "prod_3", found[0].ID)

	p, err := handler.GetProduct(ctx, "prod_2")
	require.NoError(t, err)
	assert.Equal(t, "Bola Futsal", p.Name)

	s, err := handler.GetSettings(ctx)
	require.NoError(t, err)
	assert.Equal(t, settings.Defaults(), s)
}
