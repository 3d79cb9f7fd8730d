package query

import (
	"cmp"
	"context"
	"slices"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/catalog"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/settings"
)

// RecentOrderLimit is how many orders the dashboard lists.
const RecentOrderLimit = 5

type Handler struct {
	catalog     catalog.Catalog
	cartSvc     *cart.Service
	orderSvc    *order.Service
	productSvc  *product.Service
	settingsSvc *settings.Service
}

func NewHandler(
	cat catalog.Catalog,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	productSvc *product.Service,
	settingsSvc *settings.Service,
) *Handler {
	return &Handler{
		catalog:     cat,
		cartSvc:     cartSvc,
		orderSvc:    orderSvc,
		productSvc:  productSvc,
		settingsSvc: settingsSvc,
	}
}

// Catalog
func (h *Handler) ListCatalog(category catalog.Category) []catalog.Product {
	return h.catalog.List(category)
}

func (h *Handler) GetCatalogProduct(id string) (catalog.Product, error) {
	p, ok := h.catalog.Lookup(id)
	if !ok {
		return catalog.Product{}, apperr.ErrProductNotFound.WithField(id)
	}
	return p, nil
}

// Cart
func (h *Handler) GetCart(ctx context.Context) (*CartView, error) {
	c, err := h.cartSvc.Get(ctx)
	if err != nil {
		return nil, err
	}
	return newCartView(c), nil
}

// CartCount is the number of units shown on the cart badge.
func (h *Handler) CartCount(ctx context.Context) (int, error) {
	c, err := h.cartSvc.Get(ctx)
	if err != nil {
		return 0, err
	}
	return c.TotalItems(), nil
}

// Orders
func (h *Handler) GetOrder(ctx context.Context, id string) (*order.Order, error) {
	return h.orderSvc.Get(ctx, id)
}

func (h *Handler) ListOrders(ctx context.Context, f order.Filter) ([]order.Order, error) {
	return h.orderSvc.List(ctx, f)
}

// Admin products
func (h *Handler) ListProducts(ctx context.Context, f product.Filter) ([]product.Product, error) {
	return h.productSvc.List(ctx, f)
}

func (h *Handler) GetProduct(ctx context.Context, id string) (*product.Product, error) {
	return h.productSvc.Get(ctx, id)
}

func (h *Handler) GetSettings(ctx context.Context) (settings.Settings, error) {
	return h.settingsSvc.Get(ctx)
}

// Dashboard summarizes orders and admin products. Revenue counts completed
// orders only; recent orders are newest first.
func (h *Handler) Dashboard(ctx context.Context) (*DashboardStats, error) {
	orders, err := h.orderSvc.List(ctx, order.Filter{})
	if err != nil {
		return nil, err
	}
	products, err := h.productSvc.Count(ctx)
	if err != nil {
		return nil, err
	}

	stats := &DashboardStats{
		TotalOrders:   len(orders),
		TotalProducts: products,
	}
	for _, o := range orders {
		if o.Status == order.StatusCompleted {
			stats.Revenue += o.Total
		}
	}

	// newest commit first among equal timestamps
	recent := slices.Clone(orders)
	slices.Reverse(recent)
	slices.SortStableFunc(recent, func(a, b order.Order) int {
		return cmp.Compare(b.CreatedAt.UnixNano(), a.CreatedAt.UnixNano())
	})
	stats.RecentOrders = recent[:min(len(recent), RecentOrderLimit)]
	return stats, nil
}
