package order

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/metrics"
	"github.com/google/uuid"
)

type Service struct {
	kv      store.KV
	logger  *slog.Logger
	metrics *metrics.Registry

	now   func() time.Time
	newID func() string
}

func NewService(kv store.KV, logger *slog.Logger, m *metrics.Registry) *Service {
	return &Service{
		kv:      kv,
		logger:  logger.With("component", "order"),
		metrics: m,
		now:     time.Now,
		newID:   func() string { return IDPrefix + uuid.NewString() },
	}
}

// loadAll returns the persisted orders in commit order.
func (s *Service) loadAll(ctx context.Context) ([]Order, error) {
	var orders []Order
	if _, err := store.GetJSON(ctx, s.kv, store.KeyOrders, &orders); err != nil {
		return nil, apperr.Storage(err, "load orders")
	}
	if orders == nil {
		orders = []Order{}
	}
	return orders, nil
}

// List returns the orders matching f, oldest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.ErrInvalidStatus.WithField("status").Withf("unknown status %q", f.Status)
	}
	orders, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(orders, func(o Order) bool { return !f.Match(o) }), nil
}

func (s *Service) Get(ctx context.Context, orderID string) (*Order, error) {
	orders, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(orders, orderID)
	if i < 0 {
		return nil, apperr.ErrOrderNotFound.WithField(orderID)
	}
	return &orders[i], nil
}

func indexOf(orders []Order, orderID string) int {
	return slices.IndexFunc(orders, func(o Order) bool { return o.ID == orderID })
}

// Build validates the checkout input against c and returns the pending order
// it would create. Nothing is written.
func (s *Service) Build(c *cart.Cart, form CheckoutForm) (*Order, error) {
	if c == nil || c.IsEmpty() {
		return nil, apperr.ErrEmptyCart
	}
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	payment := PaymentMethod(form.PaymentMethod)
	return &Order{
		ID:                s.newID(),
		Items:             slices.Clone(c.Lines),
		Customer:          form.Customer,
		ShippingAddress:   form.Address,
		ShippingMethod:    c.ShippingMethod,
		PaymentMethod:     payment,
		PaymentMethodName: payment.DisplayName(),
		Subtotal:          c.Subtotal(),
		ShippingCost:      c.ShippingCost(),
		Total:             c.Total(),
		Status:            StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}, nil
}

// AppendOp returns the write that adds o to the persisted order list. The
// caller applies it, usually in the same batch as other writes.
func (s *Service) AppendOp(ctx context.Context, o *Order) (store.Op, error) {
	orders, err := s.loadAll(ctx)
	if err != nil {
		return store.Op{}, err
	}
	op, err := store.PutJSON(store.KeyOrders, append(orders, *o))
	if err != nil {
		return store.Op{}, apperr.Storage(err, "encode orders")
	}
	return op, nil
}

// Transition moves an order to status following the transition table.
func (s *Service) Transition(ctx context.Context, orderID, status string) (*Order, error) {
	target, err := ParseStatus(status)
	if err != nil {
		return nil, err
	}
	orders, err := s.loadAll(ctx)
	if err != nil {
		return nil, err
	}
	i := indexOf(orders, orderID)
	if i < 0 {
		return nil, apperr.ErrOrderNotFound.WithField(orderID)
	}

	o := &orders[i]
	from := o.Status
	if !CanTransition(from, target) {
		return nil, apperr.ErrInvalidStatusTransition.WithField(orderID).
			Withf("cannot transition from %s to %s", from, target)
	}
	o.Status = target
	o.UpdatedAt = s.now().UTC()

	op, err := store.PutJSON(store.KeyOrders, orders)
	if err != nil {
		return nil, apperr.Storage(err, "encode orders")
	}
	start := time.Now()
	err = s.kv.Apply(ctx, op)
	s.metrics.StorageLatencySec.Observe(time.Since(start).Seconds())
	if err != nil {
		return nil, apperr.Storage(err, "write orders")
	}

	s.metrics.StatusTransitions.WithLabelValues(string(from), string(target)).Inc()
	s.logger.Info("order status changed", "orderId", orderID, "from", from, "to", target)
	return o, nil
}
