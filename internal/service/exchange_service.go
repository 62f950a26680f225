package service

import (
	"context"
	"time"

	"digital-payment-service/config"
	"digital-payment-service/internal/core/domain"
	"digital-payment-service/internal/core/ports"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ExchangeServiceImpl implements ports.ExchangeRateResolver with a layered
// lookup: redis hot cache, DB cache, live provider, stale DB rate, constant
// fallback. Resolution never fails; a degraded rate is logged and returned.
type ExchangeServiceImpl struct {
	rateRepo        ports.ExchangeRateRepository
	cache           ports.RateCache
	provider        ports.RateProvider
	refreshInterval time.Duration
	pruneAge        time.Duration
	fallbackRate    decimal.Decimal
	log             zerolog.Logger
}

// NewExchangeService creates a new ExchangeServiceImpl.
func NewExchangeService(
	rateRepo ports.ExchangeRateRepository,
	cache ports.RateCache,
	provider ports.RateProvider,
	cfg config.FXConfig,
	log zerolog.Logger,
) *ExchangeServiceImpl {
	return &ExchangeServiceImpl{
		rateRepo:        rateRepo,
		cache:           cache,
		provider:        provider,
		refreshInterval: cfg.RefreshInterval,
		pruneAge:        cfg.PruneAge,
		fallbackRate:    decimal.NewFromFloat(cfg.FallbackRate),
		log:             log,
	}
}

// Resolve returns a conversion rate for the pair. The returned snapshot ends
// up in the payment's permanent pricing record, so provider and timestamp
// always reflect where the rate actually came from.
func (s *ExchangeServiceImpl) Resolve(ctx context.Context, from, to string) domain.ResolvedRate {
	if from == to {
		return domain.ResolvedRate{
			Rate:     decimal.NewFromInt(1),
			Provider: domain.RateProviderFallback,
			AsOf:     time.Now().UTC(),
		}
	}

	// Layer 1: redis hot cache
	if cached, err := s.cache.Get(ctx, from, to); err != nil {
		s.log.Warn().Err(err).Str("pair", from+"/"+to).Msg("rate hot cache read failed, falling through to DB")
	} else if cached != nil {
		return *cached
	}

	// Layer 2: DB cache, fresh within the refresh interval
	stored, err := s.rateRepo.Latest(ctx, from, to)
	if err != nil {
		s.log.Warn().Err(err).Str("pair", from+"/"+to).Msg("rate DB cache read failed")
		stored = nil
	}
	if stored != nil && time.Since(stored.CreatedAt) < s.refreshInterval {
		resolved := domain.ResolvedRate{Rate: stored.Rate, Provider: stored.Provider, AsOf: stored.CreatedAt}
		s.cacheHot(ctx, from, to, resolved)
		return resolved
	}

	// Layer 3: live provider
	rate, err := s.provider.FetchRate(ctx, from, to)
	if err == nil {
		now := time.Now().UTC()
		resolved := domain.ResolvedRate{Rate: rate, Provider: s.provider.Name(), AsOf: now}
		s.persist(ctx, from, to, resolved)
		s.cacheHot(ctx, from, to, resolved)
		return resolved
	}
	s.log.Warn().Err(err).Str("pair", from+"/"+to).Msg("rate provider fetch failed")

	// Layer 4: stale DB rate beats a made-up one
	if stored != nil {
		s.log.Warn().
			Str("pair", from+"/"+to).
			Time("as_of", stored.CreatedAt).
			Msg("using stale cached rate")
		return domain.ResolvedRate{Rate: stored.Rate, Provider: stored.Provider, AsOf: stored.CreatedAt}
	}

	// Layer 5: constant fallback
	s.log.Error().
		Str("pair", from+"/"+to).
		Str("rate", s.fallbackRate.String()).
		Msg("no rate available, using constant fallback")
	return domain.ResolvedRate{
		Rate:     s.fallbackRate,
		Provider: domain.RateProviderFallback,
		AsOf:     time.Now().UTC(),
	}
}

// persist writes a freshly fetched rate to the DB cache and prunes old rows.
// Both are best-effort.
func (s *ExchangeServiceImpl) persist(ctx context.Context, from, to string, r domain.ResolvedRate) {
	err := s.rateRepo.Insert(ctx, &domain.ExchangeRate{
		FromCurrency: from,
		ToCurrency:   to,
		Rate:         r.Rate,
		Provider:     r.Provider,
		CreatedAt:    r.AsOf,
	})
	if err != nil {
		s.log.Warn().Err(err).Str("pair", from+"/"+to).Msg("failed to persist fetched rate")
		return
	}
	if err := s.rateRepo.PruneOlderThan(ctx, s.pruneAge); err != nil {
		s.log.Warn().Err(err).Msg("failed to prune old rates")
	}
}

func (s *ExchangeServiceImpl) cacheHot(ctx context.Context, from, to string, r domain.ResolvedRate) {
	if err := s.cache.Set(ctx, from, to, r, s.refreshInterval); err != nil {
		s.log.Warn().Err(err).Str("pair", from+"/"+to).Msg("failed to write rate hot cache")
	}
}
