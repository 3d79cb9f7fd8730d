package product

import (
	"context"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/infrastructure/store"
	"github.com/google/uuid"
)

type Service struct {
	kv     store.KV
	logger *slog.Logger
	now    func() time.Time
}

func NewService(kv store.KV, logger *slog.Logger) *Service {
	return &Service{
		kv:     kv,
		logger: logger.With("component", "product"),
		now:    time.Now,
	}
}

func (s *Service) load(ctx context.Context) ([]Product, bool, error) {
	var products []Product
	found, err := store.GetJSON(ctx, s.kv, store.KeyProducts, &products)
	if err != nil {
		return nil, false, apperr.Storage(err, "load products")
	}
	if products == nil {
		products = []Product{}
	}
	return products, found, nil
}

func (s *Service) save(ctx context.Context, products []Product) error {
	op, err := store.PutJSON(store.KeyProducts, products)
	if err != nil {
		return apperr.Storage(err, "encode products")
	}
	if err := s.kv.Apply(ctx, op); err != nil {
		return apperr.Storage(err, "write products")
	}
	return nil
}

// EnsureSeeded writes the sample products when no product list exists yet.
// An existing list, even an empty one, is left alone.
func (s *Service) EnsureSeeded(ctx context.Context) error {
	_, found, err := s.load(ctx)
	if err != nil || found {
		return err
	}
	if err := s.save(ctx, Samples()); err != nil {
		return err
	}
	s.logger.Info("seeded sample products", "count", len(samples))
	return nil
}

// List returns the stored products matching f, in stored order.
func (s *Service) List(ctx context.Context, f Filter) ([]Product, error) {
	products, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	return slices.DeleteFunc(products, func(p Product) bool { return !f.Match(p) }), nil
}

func (s *Service) Get(ctx context.Context, id string) (*Product, error) {
	products, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	i := slices.IndexFunc(products, func(p Product) bool { return p.ID == id })
	if i < 0 {
		return nil, apperr.ErrProductNotFound.WithField(id)
	}
	return &products[i], nil
}

// Save creates p when its ID is empty and replaces the stored product
// otherwise.
func (s *Service) Save(ctx context.Context, p Product) (*Product, error) {
	p.Name = strings.TrimSpace(p.Name)
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if p.Image == "" {
		p.Image = DefaultImage
	}
	now := s.now().UTC()
	p.Date = &now

	products, _, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	if p.ID == "" {
		p.ID = IDPrefix + uuid.NewString()
		products = append(products, p)
	} else {
		i := slices.IndexFunc(products, func(q Product) bool { return q.ID == p.ID })
		if i < 0 {
			return nil, apperr.ErrProductNotFound.WithField(p.ID)
		}
		products[i] = p
	}

	if err := s.save(ctx, products); err != nil {
		return nil, err
	}
	s.logger.Info("product saved", "productId", p.ID)
	return &p, nil
}

// Delete removes the product with id. Deleting an unknown id is a no-op.
func (s *Service) Delete(ctx context.Context, id string) error {
	products, _, err := s.load(ctx)
	if err != nil {
		return err
	}
	n := len(products)
	products = slices.DeleteFunc(products, func(p Product) bool { return p.ID == id })
	if len(products) == n {
		return nil
	}
	if err := s.save(ctx, products); err != nil {
		return err
	}
	s.logger.Info("product deleted", "productId", id)
	return nil
}

// Count returns the number of stored products.
func (s *Service) Count(ctx context.Context) (int, error) {
	products, _, err := s.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(products), nil
}
