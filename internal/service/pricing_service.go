package service

import (
	"context"
	"fmt"

	"digital-payment-service/internal/core/ports"
	"digital-payment-service/pkg/apperror"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// minorUnitCurrencies quote amounts in hundredths, so a converted major-unit
// value is scaled by 100 before rounding into the canonical integer amount.
var minorUnitCurrencies = map[string]struct{}{
	"USD": {},
	"EUR": {},
	"GBP": {},
}

// PricingServiceImpl implements ports.PricingEngine. All persisted amounts
// are integer smallest units; rounding happens exactly once, at the currency
// conversion step, half away from zero.
type PricingServiceImpl struct {
	promoRepo ports.PromotionRepository
	log       zerolog.Logger
}

// NewPricingService creates a new PricingServiceImpl.
func NewPricingService(promoRepo ports.PromotionRepository, log zerolog.Logger) *PricingServiceImpl {
	return &PricingServiceImpl{promoRepo: promoRepo, log: log}
}

// Price computes the charge for one quote. The promotion read goes through
// tx so the quote and the row it prices share one database snapshot.
func (s *PricingServiceImpl) Price(ctx context.Context, tx pgx.Tx, in ports.PricingInput) (ports.PriceQuote, error) {
	if in.Quantity < 1 {
		return ports.PriceQuote{}, apperror.ErrInvalidInput("quantity must be at least 1")
	}

	unit := in.BasePrice
	applied := false
	if in.PromotionCode != nil && *in.PromotionCode != "" {
		promo, err := s.promoRepo.GetByCode(ctx, tx, *in.PromotionCode)
		if err != nil {
			return ports.PriceQuote{}, fmt.Errorf("lookup promotion %q: %w", *in.PromotionCode, err)
		}
		if promo != nil && promo.Active {
			unit = promo.Apply(unit)
			applied = true
		} else {
			s.log.Debug().Str("code", *in.PromotionCode).Msg("promotion missing or inactive, ignored")
		}
	}

	converted := convertAmount(unit, in.FromCurrency, in.ToCurrency, in.Rate.Rate)
	return ports.PriceQuote{
		UnitConverted:    converted,
		Total:            converted * int64(in.Quantity),
		PromotionApplied: applied,
	}, nil
}

// convertAmount converts a smallest-unit amount between currencies. Same
// currency passes through untouched; otherwise the rate (quoted in major
// units) applies, with an extra x100 into minor-unit currencies, then one
// half-away-from-zero rounding.
func convertAmount(amount int64, from, to string, rate decimal.Decimal) int64 {
	if from == to {
		return amount
	}
	converted := decimal.NewFromInt(amount).Mul(rate)
	if _, ok := minorUnitCurrencies[to]; ok {
		converted = converted.Mul(decimal.NewFromInt(100))
	}
	return converted.Round(0).IntPart()
}
