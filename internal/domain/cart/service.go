package cart

import (
	"context"
	"log/slog"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/example/storefront/internal/metrics"
)

// Service owns the persisted cart. Every operation reloads the cart, validates,
// and rewrites it; nothing is cached between calls.
type Service struct {
	kv      store.KV
	logger  *slog.Logger
	metrics *metrics.Registry
}

func NewService(kv store.KV, logger *slog.Logger, m *metrics.Registry) *Service {
	return &Service{
		kv:      kv,
		logger:  logger.With("component", "cart"),
		metrics: m,
	}
}

// Get returns a snapshot of the persisted cart.
func (s *Service) Get(ctx context.Context) (*Cart, error) {
	return s.load(ctx)
}

// load reads the cart lines and shipping method; absent keys mean an empty
// cart with regular shipping.
func (s *Service) load(ctx context.Context) (*Cart, error) {
	c := New()

	var lines []Line
	found, err := store.GetJSON(ctx, s.kv, store.KeyCart, &lines)
	if err != nil {
		return nil, apperr.Storage(err, "load cart")
	}
	if found && lines != nil {
		c.Lines = lines
	}

	var method ShippingMethod
	found, err = store.GetJSON(ctx, s.kv, store.KeyCartShipping, &method)
	if err != nil {
		return nil, apperr.Storage(err, "load cart shipping")
	}
	if found {
		if !method.Valid() {
			s.logger.Warn("stored shipping method is invalid, using regular", "shippingMethod", method)
			method = ShippingRegular
		}
		c.ShippingMethod = method
	}
	return c, nil
}

func (s *Service) saveLines(ctx context.Context, c *Cart) error {
	op, err := store.PutJSON(store.KeyCart, c.Lines)
	if err != nil {
		return apperr.Storage(err, "encode cart")
	}
	return s.apply(ctx, op)
}

func (s *Service) apply(ctx context.Context, ops ...store.Op) error {
	start := time.Now()
	err := s.kv.Apply(ctx, ops...)
	s.metrics.StorageLatencySec.Observe(time.Since(start).Seconds())
	if err != nil {
		return apperr.Storage(err, "write cart")
	}
	return nil
}

func (s *Service) reject(op string, err error) error {
	s.metrics.CartRejections.WithLabelValues(string(apperr.CodeOf(err))).Inc()
	s.logger.Debug("cart operation rejected", "op", op, "error", err)
	return err
}

// AddItem adds one unit of productID, snapshotting the product on first add.
// At MaxQuantity the call fails with QuantityLimitExceeded and nothing changes.
func (s *Service) AddItem(ctx context.Context, productID string, snap ProductSnapshot) (Line, error) {
	c, err := s.load(ctx)
	if err != nil {
		return Line{}, err
	}

	line, err := c.add(productID, snap)
	if err != nil {
		return Line{}, s.reject("add", err)
	}
	if err := s.saveLines(ctx, c); err != nil {
		return Line{}, err
	}

	s.metrics.CartMutations.WithLabelValues("add").Inc()
	s.logger.Debug("item added", "productId", productID, "quantity", line.Quantity)
	return line, nil
}

// UpdateQuantity moves the quantity of productID by delta (+1 or -1).
func (s *Service) UpdateQuantity(ctx context.Context, productID string, delta int) (Line, error) {
	c, err := s.load(ctx)
	if err != nil {
		return Line{}, err
	}

	line, err := c.changeQuantity(productID, delta)
	if err != nil {
		return Line{}, s.reject("update", err)
	}
	if err := s.saveLines(ctx, c); err != nil {
		return Line{}, err
	}

	s.metrics.CartMutations.WithLabelValues("update").Inc()
	s.logger.Debug("quantity updated", "productId", productID, "quantity", line.Quantity)
	return line, nil
}

// RemoveItem deletes the line for productID. Removing an absent product is a
// no-op and writes nothing.
func (s *Service) RemoveItem(ctx context.Context, productID string) error {
	c, err := s.load(ctx)
	if err != nil {
		return err
	}
	if !c.remove(productID) {
		return nil
	}
	if err := s.saveLines(ctx, c); err != nil {
		return err
	}

	s.metrics.CartMutations.WithLabelValues("remove").Inc()
	s.logger.Debug("item removed", "productId", productID)
	return nil
}

// SetShippingMethod selects regular or express shipping.
func (s *Service) SetShippingMethod(ctx context.Context, method ShippingMethod) error {
	if !method.Valid() {
		return s.reject("shipping", apperr.ErrInvalidShippingMethod.Withf("unknown shipping method %q", method))
	}
	op, err := store.PutJSON(store.KeyCartShipping, method)
	if err != nil {
		return apperr.Storage(err, "encode cart shipping")
	}
	if err := s.apply(ctx, op); err != nil {
		return err
	}

	s.metrics.CartMutations.WithLabelValues("shipping").Inc()
	return nil
}

// ClearOps returns the writes that empty the cart. They are meant to be
// batched with other writes by the caller, as checkout does.
func ClearOps() []store.Op {
	return []store.Op{
		store.Put(store.KeyCart, []byte("[]")),
		store.Del(store.KeyCartShipping),
	}
}

// Clear empties the cart.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.apply(ctx, ClearOps()...); err != nil {
		return err
	}
	s.metrics.CartMutations.WithLabelValues("clear").Inc()
	return nil
}
