package command

import (
	"github.com/example/storefront/internal/domain/order"
	"github.com/example/storefront/internal/domain/product"
	"github.com/example/storefront/internal/domain/settings"
)

// Cart Commands
type AddToCart struct {
	ProductID string `json:"productId"`
}

type UpdateQuantity struct {
	ProductID string `json:"productId"`
	Delta     int    `json:"delta"`
}

type RemoveFromCart struct {
	ProductID string `json:"productId"`
}

type SetShipping struct {
	Method string `json:"shippingMethod"`
}

type ClearCart struct{}

// Order Commands
type PlaceOrder struct {
	Form order.CheckoutForm `json:"form"`
}

type UpdateOrderStatus struct {
	OrderID string `json:"orderId"`
	Status  string `json:"status"`
}

// Admin Commands
type SaveProduct struct {
	Product product.Product `json:"product"`
}

type DeleteProduct struct {
	ProductID string `json:"productId"`
}

type SaveSettings struct {
	Settings settings.Settings `json:"settings"`
}
