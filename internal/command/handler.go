package command

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/catalog"
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/settings"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/metrics"
)

type Handler struct {
	catalog     catalog.Catalog
	cartSvc     *cart.Service
	orderSvc    *order.Service
	productSvc  *product.Service
	settingsSvc *settings.Service
	kv          store.KV
	logger      *slog.Logger
	metrics     *metrics.Registry
}

func NewHandler(
	cat catalog.Catalog,
	cartSvc *cart.Service,
	orderSvc *order.Service,
	productSvc *product.Service,
	settingsSvc *settings.Service,
	kv store.KV,
	logger *slog.Logger,
	m *metrics.Registry,
) *Handler {
	return &Handler{
		catalog:     cat,
		cartSvc:     cartSvc,
		orderSvc:    orderSvc,
		productSvc:  productSvc,
		settingsSvc: settingsSvc,
		kv:          kv,
		logger:      logger.With("component", "command"),
		metrics:     m,
	}
}

// AddToCart adds one unit of a catalog product to the cart
func (h *Handler) AddToCart(ctx context.Context, cmd AddToCart) (cart.Line, error) {
	p, ok := h.catalog.Lookup(cmd.ProductID)
	if !ok {
		return cart.Line{}, apperr.ErrProductNotFound.WithField(cmd.ProductID)
	}
	return h.cartSvc.AddItem(ctx, p.ID, cart.ProductSnapshot{Name: p.Name, Price: p.Price, Image: p.Image})
}

// UpdateQuantity changes a line by one unit. RemovalRequired is returned as-is
// so the caller can confirm and follow up with RemoveFromCart.
func (h *Handler) UpdateQuantity(ctx context.Context, cmd UpdateQuantity) (cart.Line, error) {
	return h.cartSvc.UpdateQuantity(ctx, cmd.ProductID, cmd.Delta)
}

// RemoveFromCart removes an item from cart
func (h *Handler) RemoveFromCart(ctx context.Context, cmd RemoveFromCart) error {
	return h.cartSvc.RemoveItem(ctx, cmd.ProductID)
}

func (h *Handler) SetShipping(ctx context.Context, cmd SetShipping) error {
	method, err := cart.ParseShippingMethod(cmd.Method)
	if err != nil {
		return err
	}
	return h.cartSvc.SetShippingMethod(ctx, method)
}

// ClearCart clears all items from cart
func (h *Handler) ClearCart(ctx context.Context, _ ClearCart) error {
	return h.cartSvc.Clear(ctx)
}

// PlaceOrder turns the current cart into a pending order. The order append
// and the cart reset go to storage as one batch, orders first, so a backend
// that applies the batch key by key can lose the cart but never the order.
func (h *Handler) PlaceOrder(ctx context.Context, cmd PlaceOrder) (*order.Order, error) {
	c, err := h.cartSvc.Get(ctx)
	if err != nil {
		return nil, h.commitFailed(err)
	}

	o, err := h.orderSvc.Build(c, cmd.Form)
	if err != nil {
		return nil, h.commitFailed(err)
	}

	appendOp, err := h.orderSvc.AppendOp(ctx, o)
	if err != nil {
		return nil, h.commitFailed(err)
	}
	ops := append([]store.Op{appendOp}, cart.ClearOps()...)

	start := time.Now()
	err = h.kv.Apply(ctx, ops...)
	h.metrics.StorageLatencySec.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, h.commitFailed(apperr.Storage(err, "commit order"))
	}

	h.metrics.OrdersCommitted.Inc()
	h.logger.Info("order placed", "orderId", o.ID, "items", len(o.Items), "total", o.Total)
	return o, nil
}

func (h *Handler) commitFailed(err error) error {
	h.metrics.CommitFailures.WithLabelValues(string(apperr.CodeOf(err))).Inc()
	if apperr.IsKind(err, apperr.KindStorage) {
		h.logger.Error("order commit failed", "error", err)
	}
	return err
}

// UpdateOrderStatus moves an order along its lifecycle
func (h *Handler) UpdateOrderStatus(ctx context.Context, cmd UpdateOrderStatus) (*order.Order, error) {
	return h.orderSvc.Transition(ctx, cmd.OrderID, cmd.Status)
}

// SaveProduct creates or updates an admin product
func (h *Handler) SaveProduct(ctx context.Context, cmd SaveProduct) (*product.Product, error) {
	return h.productSvc.Save(ctx, cmd.Product)
}

// DeleteProduct deletes an admin product
func (h *Handler) DeleteProduct(ctx context.Context, cmd DeleteProduct) error {
	return h.productSvc.Delete(ctx, cmd.ProductID)
}

func (h *Handler) SaveSettings(ctx context.Context, cmd SaveSettings) (settings.Settings, error) {
	return h.settingsSvc.Save(ctx, cmd.Settings)
}
