package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// RateProviderFallback names rates not obtained from the FX provider:
// same-currency shortcuts and the constant last-resort rate.
const RateProviderFallback = "fallback"

// ExchangeRate is a cached FX quote for a currency pair.
type ExchangeRate struct {
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Rate         decimal.Decimal `json:"rate"`
	Provider     string          `json:"provider"`
	CreatedAt    time.Time       `json:"created_at"`
}

// ResolvedRate is what the resolver hands to the pricing engine.
type ResolvedRate struct {
	Rate     decimal.Decimal `json:"rate"`
	Provider string          `json:"provider"`
	AsOf     time.Time       `json:"as_of"`
}
