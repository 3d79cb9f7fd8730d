package cart

import (
	"slices"

	"github.com/example/storefront/internal/apperr"
)

const (
	MinQuantity = 1
	MaxQuantity = 10
)

type ShippingMethod string

const (
	ShippingRegular ShippingMethod = "regular"
	ShippingExpress ShippingMethod = "express"
)

var shippingCosts = map[ShippingMethod]int{
	ShippingRegular: 15000,
	ShippingExpress: 30000,
}

// ParseShippingMethod validates s against the supported methods.
func ParseShippingMethod(s string) (ShippingMethod, error) {
	m := ShippingMethod(s)
	if !m.Valid() {
		return "", apperr.ErrInvalidShippingMethod.Withf("unknown shipping method %q", s)
	}
	return m, nil
}

func (m ShippingMethod) Valid() bool {
	_, ok := shippingCosts[m]
	return ok
}

// Cost is the fixed price of the method; zero for an unknown method.
func (m ShippingMethod) Cost() int {
	return shippingCosts[m]
}

// ProductSnapshot is the product data frozen into a line when it is added.
type ProductSnapshot struct {
	Name  string
	Price int
	Image string
}

// Line is one product's presence in the cart.
type Line struct {
	ProductID string `json:"productId"`
	Name      string `json:"name"`
	Price     int    `json:"price"`
	Image     string `json:"image"`
	Quantity  int    `json:"quantity"`
}

// LineTotal is price times quantity.
func (l Line) LineTotal() int {
	return l.Price * l.Quantity
}

// Cart is the active cart: an ordered set of lines plus a shipping method.
type Cart struct {
	Lines          []Line         `json:"lines"`
	ShippingMethod ShippingMethod `json:"shippingMethod"`
}

// New returns an empty cart with regular shipping.
func New() *Cart {
	return &Cart{Lines: []Line{}, ShippingMethod: ShippingRegular}
}

// ComputeSubtotal sums price*quantity over lines.
func ComputeSubtotal(lines []Line) int {
	var subtotal int
	for _, l := range lines {
		subtotal += l.LineTotal()
	}
	return subtotal
}

func (c *Cart) Subtotal() int { return ComputeSubtotal(c.Lines) }

func (c *Cart) ShippingCost() int { return c.ShippingMethod.Cost() }

// Total is the subtotal plus the shipping cost.
func (c *Cart) Total() int { return c.Subtotal() + c.ShippingCost() }

// TotalItems is the number of units across all lines.
func (c *Cart) TotalItems() int {
	var n int
	for _, l := range c.Lines {
		n += l.Quantity
	}
	return n
}

func (c *Cart) IsEmpty() bool { return len(c.Lines) == 0 }

// Line returns the line for productID.
func (c *Cart) Line(productID string) (Line, bool) {
	i := c.indexOf(productID)
	if i < 0 {
		return Line{}, false
	}
	return c.Lines[i], true
}

// Clone returns a deep copy, so callers never share line storage.
func (c *Cart) Clone() *Cart {
	lines := slices.Clone(c.Lines)
	if lines == nil {
		lines = []Line{}
	}
	return &Cart{Lines: lines, ShippingMethod: c.ShippingMethod}
}

func (c *Cart) indexOf(productID string) int {
	return slices.IndexFunc(c.Lines, func(l Line) bool { return l.ProductID == productID })
}

// add inserts a new line at quantity 1 or bumps an existing one.
// The cart is untouched when an error is returned.
func (c *Cart) add(productID string, snap ProductSnapshot) (Line, error) {
	if productID == "" {
		return Line{}, apperr.ErrInvalidProduct.WithField("productId")
	}
	if snap.Price < 0 {
		return Line{}, apperr.ErrInvalidProduct.WithField("price")
	}

	if i := c.indexOf(productID); i >= 0 {
		if c.Lines[i].Quantity >= MaxQuantity {
			return Line{}, apperr.ErrQuantityLimitExceeded.WithField(productID).
				Withf("quantity already at %d", MaxQuantity)
		}
		c.Lines[i].Quantity++
		return c.Lines[i], nil
	}

	line := Line{
		ProductID: productID,
		Name:      snap.Name,
		Price:     snap.Price,
		Image:     snap.Image,
		Quantity:  MinQuantity,
	}
	c.Lines = append(c.Lines, line)
	return line, nil
}

// changeQuantity applies delta (+1 or -1) to the line of productID.
// Dropping below MinQuantity is reported as RemovalRequired; the caller decides
// whether to follow up with remove.
func (c *Cart) changeQuantity(productID string, delta int) (Line, error) {
	if delta != 1 && delta != -1 {
		return Line{}, apperr.ErrInvalidQuantityDelta.Withf("delta %d", delta)
	}
	i := c.indexOf(productID)
	if i < 0 {
		return Line{}, apperr.ErrItemNotFound.WithField(productID)
	}

	next := c.Lines[i].Quantity + delta
	switch {
	case next < MinQuantity:
		return Line{}, apperr.ErrRemovalRequired.WithField(productID)
	case next > MaxQuantity:
		return Line{}, apperr.ErrQuantityLimitExceeded.WithField(productID).
			Withf("quantity already at %d", MaxQuantity)
	}
	c.Lines[i].Quantity = next
	return c.Lines[i], nil
}

// remove deletes the line of productID and reports whether one existed.
func (c *Cart) remove(productID string) bool {
	i := c.indexOf(productID)
	if i < 0 {
		return false
	}
	c.Lines = slices.Delete(c.Lines, i, i+1)
	return true
}
