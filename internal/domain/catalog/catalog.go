// Package catalog holds the read-only product catalog shown on the storefront.
package catalog

import "slices"

type Category string

const (
	CategoryFashion     Category = "fashion"
	CategorySports      Category = "sports"
	CategoryElectronics Category = "electronics"
)

// CategoryAll is the listing filter that matches every category.
const CategoryAll Category = "all"

// Categories lists the valid categories in display order.
var Categories = []Category{CategoryFashion, CategorySports, CategoryElectronics}

// Valid reports whether c is one of the product categories.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

// Product is a catalog entry. Price is in the smallest currency unit.
type Product struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Price       int      `json:"price"`
	Category    Category `json:"category"`
	Image       string   `json:"image"`
	Description string   `json:"description"`
}

// Catalog supplies products by id.
type Catalog interface {
	Lookup(id string) (Product, bool)
	List(category Category) []Product
}

// Static is an immutable in-memory catalog.
type Static struct {
	products []Product
	byID     map[string]int
}

// NewStatic builds a catalog from products; later duplicates of an id are ignored.
func NewStatic(products []Product) *Static {
	s := &Static{byID: make(map[string]int, len(products))}
	for _, p := range products {
		if _, dup := s.byID[p.ID]; dup {
			continue
		}
		s.byID[p.ID] = len(s.products)
		s.products = append(s.products, p)
	}
	return s
}

func (s *Static) Lookup(id string) (Product, bool) {
	i, ok := s.byID[id]
	if !ok {
		return Product{}, false
	}
	return s.products[i], true
}

// List returns the products of category, or all of them for CategoryAll.
// An unknown category yields an empty list.
func (s *Static) List(category Category) []Product {
	if category == CategoryAll || category == "" {
		return slices.Clone(s.products)
	}
	out := make([]Product, 0)
	for _, p := range s.products {
		if p.Category == category {
			out = append(out, p)
		}
	}
	return out
}

// Default returns the storefront's built-in catalog.
func Default() *Static {
	return NewStatic(defaultProducts)
}

var defaultProducts = []Product{
	{ID: "f1", Name: "Casual White T-Shirt", Price: 159000, Category: CategoryFashion, Image: "https://images.unsplash.com/photo-1521572163474-6864f9cf17ab?w=500"},
	{ID: "f2", Name: "Classic Denim Jeans", Price: 399000, Category: CategoryFashion, Image: "https://images.unsplash.com/photo-1542272604-787c3835535d?w=500"},
	{ID: "f3", Name: "Premium Leather Jacket", Price: 899000, Category: CategoryFashion, Image: "https://images.unsplash.com/photo-1551028719-00167b16eac5?w=500"},
	{ID: "f4", Name: "Designer Sunglasses", Price: 299000, Category: CategoryFashion, Image: "https://images.unsplash.com/photo-1572635196237-14b3f281503f?w=500"},
	{ID: "f5", Name: "Urban Backpack", Price: 459000, Category: CategoryFashion, Image: "https://images.unsplash.com/photo-1553062407-98eeb64c6a62?w=500"},
	{ID: "s1", Name: "Pro Running Shoes", Price: 1299000, Category: CategorySports, Image: "https://images.unsplash.com/photo-1542291026-7eec264c27ff?w=500"},
	{ID: "s2", Name: "Competition Basketball", Price: 299000, Category: CategorySports, Image: "https://images.unsplash.com/photo-1544450804-9e5f64cb18de?w=500"},
	{ID: "s3", Name: "Premium Yoga Mat", Price: 259000, Category: CategorySports, Image: "https://images.unsplash.com/photo-1601925260368-ae2f83cf8b7f?w=500"},
	{ID: "s4", Name: "Professional Dumbbell Set", Price: 799000, Category: CategorySports, Image: "https://images.unsplash.com/photo-1583454110551-21f2fa2afe61?w=500"},
	{ID: "s5", Name: "Sports Water Bottle", Price: 159000, Category: CategorySports, Image: "https://images.unsplash.com/photo-1550505095-81378a674395?w=500"},
	{ID: "e1", Name: "Pro Wireless Earbuds", Price: 1599000, Category: CategoryElectronics, Image: "https://images.unsplash.com/photo-1605464315542-bda3e2f4e605?w=500"},
	{ID: "e2", Name: "Smart Watch Pro", Price: 2999000, Category: CategoryElectronics, Image: "https://images.unsplash.com/photo-1546868871-7041f2a55e12?w=500"},
	{ID: "e3", Name: "Bluetooth Speaker", Price: 899000, Category: CategoryElectronics, Image: "https://images.unsplash.com/photo-1608043152269-423dbba4e7e1?w=500"},
	{ID: "e4", Name: "Gaming Mouse RGB", Price: 599000, Category: CategoryElectronics, Image: "https://images.unsplash.com/photo-1527814050087-3793815479db?w=500"},
}
