package query

import (
	"github.com/example/storefront/internal/domain/cart"
	"github.com/example/storefront/internal/domain/order"
)

// CartView is the cart page read model: lines plus derived totals
type CartView struct {
	Lines          []cart.Line         `json:"lines"`
	ShippingMethod cart.ShippingMethod `json:"shippingMethod"`
	TotalItems     int                 `json:"totalItems"`
	Subtotal       int                 `json:"subtotal"`
	ShippingCost   int                 `json:"shippingCost"`
	Total          int                 `json:"total"`
}

func newCartView(c *cart.Cart) *CartView {
	return &CartView{
		Lines:          c.Lines,
		ShippingMethod: c.ShippingMethod,
		TotalItems:     c.TotalItems(),
		Subtotal:       c.Subtotal(),
		ShippingCost:   c.ShippingCost(),
		Total:          c.Total(),
	}
}

// DashboardStats is the admin dashboard read model
type DashboardStats struct {
	TotalOrders   int           `json:"totalOrders"`
	TotalProducts int           `json:"totalProducts"`
	Revenue       int           `json:"revenue"`
	RecentOrders  []order.Order `json:"recentOrders"`
}
