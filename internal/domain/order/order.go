package order

import (
	"time"

	"github.com/example/storefront/internal/apperr"
	"github.com/example/storefront/internal/domain/cart"
)

const IDPrefix = "ORD-"

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

// Statuses lists every status in lifecycle order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusCompleted, StatusCancelled}

// validTransitions defines allowed state transitions
var validTransitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled},
	StatusProcessing: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {}, // terminal state
	StatusCancelled:  {}, // terminal state
}

// ParseStatus validates s against the known statuses.
func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", apperr.ErrInvalidStatus.WithField("status").Withf("unknown status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := validTransitions[s]
	return ok
}

// CanTransition reports whether from -> to is in the transition table.
// Self-transitions are never allowed.
func CanTransition(from, to Status) bool {
	for _, s := range validTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

type PaymentMethod string

const (
	PaymentBCA       PaymentMethod = "bca"
	PaymentMandiri   PaymentMethod = "mandiri"
	PaymentBNI       PaymentMethod = "bni"
	PaymentBRI       PaymentMethod = "bri"
	PaymentGoPay     PaymentMethod = "gopay"
	PaymentDANA      PaymentMethod = "dana"
	PaymentOVO       PaymentMethod = "ovo"
	PaymentShopeePay PaymentMethod = "shopeepay"
	PaymentQRIS      PaymentMethod = "qris"
	PaymentCOD       PaymentMethod = "cod"
)

var paymentMethodNames = map[PaymentMethod]string{
	PaymentBCA:       "Transfer Bank BCA",
	PaymentMandiri:   "Transfer Bank Mandiri",
	PaymentBNI:       "Transfer Bank BNI",
	PaymentBRI:       "Transfer Bank BRI",
	PaymentGoPay:     "GoPay",
	PaymentDANA:      "DANA",
	PaymentOVO:       "OVO",
	PaymentShopeePay: "ShopeePay",
	PaymentQRIS:      "QRIS",
	PaymentCOD:       "Cash on Delivery (COD)",
}

func (p PaymentMethod) Valid() bool {
	_, ok := paymentMethodNames[p]
	return ok
}

// DisplayName is the label the checkout page shows for p.
func (p PaymentMethod) DisplayName() string {
	return paymentMethodNames[p]
}

type Customer struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,storeemail"`
	Phone string `json:"phone" validate:"required,storephone"`
}

type Address struct {
	Address    string `json:"address" validate:"required"`
	Province   string `json:"province" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required,storepostal"`
}

// Order is a committed purchase. Only Status and UpdatedAt change after
// creation.
type Order struct {
	ID                string              `json:"orderId"`
	Items             []cart.Line         `json:"items"`
	Customer          Customer            `json:"customer"`
	ShippingAddress   Address             `json:"shippingAddress"`
	ShippingMethod    cart.ShippingMethod `json:"shippingMethod"`
	PaymentMethod     PaymentMethod       `json:"paymentMethod"`
	PaymentMethodName string              `json:"paymentMethodName"`
	Subtotal          int                 `json:"subtotal"`
	ShippingCost      int                 `json:"shippingCost"`
	Total             int                 `json:"total"`
	Status            Status              `json:"status"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// Filter narrows ListOrders. Zero values match everything; the createdAt
// window is [From, To).
type Filter struct {
	Status Status
	From   time.Time
	To     time.Time
}

func (f Filter) Match(o Order) bool {
	if f.Status != "" && o.Status != f.Status {
		return false
	}
	if !f.From.IsZero() && o.CreatedAt.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && !o.CreatedAt.Before(f.To) {
		return false
	}
	return true
}
