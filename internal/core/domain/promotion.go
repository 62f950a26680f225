package domain

import "github.com/google/uuid"

// DiscountType is how a promotion reduces the unit price.
type DiscountType string

const (
	DiscountTypePercentage DiscountType = "PERCENTAGE"
	DiscountTypeFixed      DiscountType = "FIXED"
)

// Promotion is a discount code applied at pricing time.
type Promotion struct {
	ID           uuid.UUID    `json:"id"`
	Code         string       `json:"code"`
	DiscountType DiscountType `json:"discount_type"`
	Value        int64        `json:"value"` // percent for PERCENTAGE, amount for FIXED
	Active       bool         `json:"active"`
}

// Apply returns the discounted unit price, floored at zero.
func (p *Promotion) Apply(price int64) int64 {
	var discounted int64
	switch p.DiscountType {
	case DiscountTypePercentage:
		discounted = price - price*p.Value/100
	case DiscountTypeFixed:
		discounted = price - p.Value
	default:
		return price
	}
	if discounted < 0 {
		return 0
	}
	return discounted
}
