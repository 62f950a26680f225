package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"digital-payment-service/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// ExchangeRateRepo implements ports.ExchangeRateRepository.
type ExchangeRateRepo struct {
	pool Pool
}

// NewExchangeRateRepo creates a new ExchangeRateRepo.
func NewExchangeRateRepo(pool Pool) *ExchangeRateRepo {
	return &ExchangeRateRepo{pool: pool}
}

// Latest fetches the most recent cached rate for a pair, or nil.
func (r *ExchangeRateRepo) Latest(ctx context.Context, from, to string) (*domain.ExchangeRate, error) {
	query := `SELECT from_currency, to_currency, rate, provider, created_at
		FROM exchange_rates WHERE from_currency = $1 AND to_currency = $2
		ORDER BY created_at DESC LIMIT 1`

	rate := &domain.ExchangeRate{}
	err := r.pool.QueryRow(ctx, query, from, to).Scan(
		&rate.FromCurrency, &rate.ToCurrency, &rate.Rate, &rate.Provider, &rate.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("latest exchange rate: %w", err)
	}
	return rate, nil
}

// Insert stores a freshly fetched rate.
func (r *ExchangeRateRepo) Insert(ctx context.Context, rate *domain.ExchangeRate) error {
	query := `INSERT INTO exchange_rates (from_currency, to_currency, rate, provider, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := r.pool.Exec(ctx, query,
		rate.FromCurrency, rate.ToCurrency, rate.Rate, rate.Provider, rate.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert exchange rate: %w", err)
	}
	return nil
}

// PruneOlderThan opportunistically deletes stale cache rows.
func (r *ExchangeRateRepo) PruneOlderThan(ctx context.Context, age time.Duration) error {
	cutoff := time.Now().UTC().Add(-age)
	_, err := r.pool.Exec(ctx, `DELETE FROM exchange_rates WHERE created_at < $1`, cutoff)
	if err != nil {
		return fmt.Errorf("prune exchange rates: %w", err)
	}
	return nil
}
