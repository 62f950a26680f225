package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"digital-payment-service/internal/core/domain"
	"digital-payment-service/internal/core/ports"
	"digital-payment-service/internal/core/ports/mocks"
	"digital-payment-service/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func sameCurrencyRate() domain.ResolvedRate {
	return domain.ResolvedRate{
		Rate:     decimal.NewFromInt(1),
		Provider: domain.RateProviderFallback,
		AsOf:     time.Now().UTC(),
	}
}

func newPricingFixture(t *testing.T) (*PricingServiceImpl, *mocks.MockPromotionRepository) {
	ctrl := gomock.NewController(t)
	promoRepo := mocks.NewMockPromotionRepository(ctrl)
	return NewPricingService(promoRepo, zerolog.Nop()), promoRepo
}

func TestPricingService_SameCurrencyNoPromotion(t *testing.T) {
	svc, _ := newPricingFixture(t)

	quote, err := svc.Price(context.Background(), nil, ports.PricingInput{
		BasePrice:    10000,
		FromCurrency: "KRW",
		ToCurrency:   "KRW",
		Quantity:     1,
		Rate:         sameCurrencyRate(),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10000), quote.UnitConverted)
	assert.Equal(t, int64(10000), quote.Total)
	assert.False(t, quote.PromotionApplied)
}

func TestPricingService_PercentagePromotion(t *testing.T) {
	svc, promoRepo := newPricingFixture(t)
	code := "LAUNCH20"
	promoRepo.EXPECT().GetByCode(gomock.Any(), gomock.Any(), code).Return(&domain.Promotion{
		ID:           uuid.New(),
		Code:         code,
		DiscountType: domain.DiscountTypePercentage,
		Value:        20,
		Active:       true,
	}, nil)

	quote, err := svc.Price(context.Background(), nil, ports.PricingInput{
		BasePrice:     10000,
		FromCurrency:  "KRW",
		ToCurrency:    "KRW",
		Quantity:      1,
		PromotionCode: &code,
		Rate:          sameCurrencyRate(),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(8000), quote.Total)
	assert.True(t, quote.PromotionApplied)
}

func TestPricingService_InactivePromotionIgnored(t *testing.T) {
	svc, promoRepo := newPricingFixture(t)
	code := "EXPIRED"
	promoRepo.EXPECT().GetByCode(gomock.Any(), gomock.Any(), code).Return(&domain.Promotion{
		Code:         code,
		DiscountType: domain.DiscountTypePercentage,
		Value:        50,
		Active:       false,
	}, nil)

	quote, err := svc.Price(context.Background(), nil, ports.PricingInput{
		BasePrice:     10000,
		FromCurrency:  "KRW",
		ToCurrency:    "KRW",
		Quantity:      1,
		PromotionCode: &code,
		Rate:          sameCurrencyRate(),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10000), quote.Total)
	assert.False(t, quote.PromotionApplied)
}

func TestPricingService_UnknownPromotionIgnored(t *testing.T) {
	svc, promoRepo := newPricingFixture(t)
	code := "NOPE"
	promoRepo.EXPECT().GetByCode(gomock.Any(), gomock.Any(), code).Return(nil, nil)

	quote, err := svc.Price(context.Background(), nil, ports.PricingInput{
		BasePrice:     5000,
		FromCurrency:  "KRW",
		ToCurrency:    "KRW",
		Quantity:      2,
		PromotionCode: &code,
		Rate:          sameCurrencyRate(),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(10000), quote.Total)
	assert.False(t, quote.PromotionApplied)
}

func TestPricingService_FixedPromotionFloorsAtZero(t *testing.T) {
	svc, promoRepo := newPricingFixture(t)
	code := "BIGOFF"
	promoRepo.EXPECT().GetByCode(gomock.Any(), gomock.Any(), code).Return(&domain.Promotion{
		Code:         code,
		DiscountType: domain.DiscountTypeFixed,
		Value:        99999,
		Active:       true,
	}, nil)

	quote, err := svc.Price(context.Background(), nil, ports.PricingInput{
		BasePrice:     1000,
		FromCurrency:  "KRW",
		ToCurrency:    "KRW",
		Quantity:      3,
		PromotionCode: &code,
		Rate:          sameCurrencyRate(),
	})

	require.NoError(t, err)
	assert.Equal(t, int64(0), quote.UnitConverted)
	assert.Equal(t, int64(0), quote.Total)
	assert.True(t, quote.PromotionApplied)
}

func TestPricingService_MinorUnitConversion(t *testing.T) {
	svc, _ := newPricingFixture(t)

	// 10000 KRW at 0.00072 USD/KRW = 7.2 USD = 720 cents.
	quote, err := svc.Price(context.Background(), nil, ports.PricingInput{
		BasePrice:    10000,
		FromCurrency: "KRW",
		ToCurrency:   "USD",
		Quantity:     2,
		Rate: domain.ResolvedRate{
			Rate:     decimal.RequireFromString("0.00072"),
			Provider: "open-er-api",
			AsOf:     time.Now().UTC(),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(720), quote.UnitConverted)
	assert.Equal(t, int64(1440), quote.Total)
}

func TestPricingService_ConversionRoundsHalfAwayFromZero(t *testing.T) {
	svc, _ := newPricingFixture(t)

	// 625 KRW at 0.001 USD/KRW = 62.5 cents, rounds to 63.
	quote, err := svc.Price(context.Background(), nil, ports.PricingInput{
		BasePrice:    625,
		FromCurrency: "KRW",
		ToCurrency:   "USD",
		Quantity:     1,
		Rate: domain.ResolvedRate{
			Rate: decimal.RequireFromString("0.001"),
		},
	})

	require.NoError(t, err)
	assert.Equal(t, int64(63), quote.UnitConverted)
}

func TestPricingService_InvalidQuantity(t *testing.T) {
	svc, _ := newPricingFixture(t)

	_, err := svc.Price(context.Background(), nil, ports.PricingInput{
		BasePrice:    1000,
		FromCurrency: "KRW",
		ToCurrency:   "KRW",
		Quantity:     0,
		Rate:         sameCurrencyRate(),
	})

	var appErr *apperror.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "INVALID_INPUT", appErr.Code)
}

func TestPricingService_PromotionLookupFailurePropagates(t *testing.T) {
	svc, promoRepo := newPricingFixture(t)
	code := "ANY"
	promoRepo.EXPECT().GetByCode(gomock.Any(), gomock.Any(), code).Return(nil, errors.New("db down"))

	_, err := svc.Price(context.Background(), nil, ports.PricingInput{
		BasePrice:     1000,
		FromCurrency:  "KRW",
		ToCurrency:    "KRW",
		Quantity:      1,
		PromotionCode: &code,
		Rate:          sameCurrencyRate(),
	})

	require.Error(t, err)
}
