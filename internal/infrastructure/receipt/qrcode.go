// Package receipt renders the order reference shown after checkout as a QR code.
package receipt

import (
	"encoding/json"
	"fmt"

	"github.com/example/storefront/internal/domain/order"
	"github.com/skip2/go-qrcode"
)

const payloadType = "order-receipt"

// Payload is the JSON encoded into a receipt QR code.
type Payload struct {
	Type          string              `json:"type"`
	OrderID       string              `json:"orderId"`
	Total         int                 `json:"total"`
	PaymentMethod order.PaymentMethod `json:"paymentMethod"`
}

type Renderer struct {
	size  int
	level qrcode.RecoveryLevel
}

// NewRenderer creates a renderer producing size x size PNGs. level is one of
// L, M, Q or H; anything else means M.
func NewRenderer(size int, level string) *Renderer {
	var l qrcode.RecoveryLevel
	switch level {
	case "L":
		l = qrcode.Low
	case "Q":
		l = qrcode.High
	case "H":
		l = qrcode.Highest
	default:
		l = qrcode.Medium
	}
	if size <= 0 {
		size = 256
	}
	return &Renderer{size: size, level: l}
}

// PayloadOf returns the receipt payload of o.
func PayloadOf(o *order.Order) Payload {
	return Payload{
		Type:          payloadType,
		OrderID:       o.ID,
		Total:         o.Total,
		PaymentMethod: o.PaymentMethod,
	}
}

// Matches reports whether p still describes o.
func (p Payload) Matches(o *order.Order) bool {
	return p.OrderID == o.ID && p.Total == o.Total && p.PaymentMethod == o.PaymentMethod
}

// PNG renders the receipt QR code for o.
func (r *Renderer) PNG(o *order.Order) ([]byte, error) {
	data, err := json.Marshal(PayloadOf(o))
	if err != nil {
		return nil, fmt.Errorf("failed to marshal receipt: %w", err)
	}

	code, err := qrcode.New(string(data), r.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create QR code: %w", err)
	}
	png, err := code.PNG(r.size)
	if err != nil {
		return nil, fmt.Errorf("failed to generate PNG: %w", err)
	}
	return png, nil
}

// Parse decodes a scanned receipt payload.
func Parse(raw string) (Payload, error) {
	var p Payload
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Payload{}, fmt.Errorf("failed to unmarshal receipt: %w", err)
	}
	if p.Type != payloadType {
		return Payload{}, fmt.Errorf("invalid receipt type: %s", p.Type)
	}
	if p.OrderID == "" {
		return Payload{}, fmt.Errorf("receipt has no order id")
	}
	return p, nil
}
