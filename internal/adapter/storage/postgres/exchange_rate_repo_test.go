package postgres

import (
	"context"
	"testing"
	"time"

	"digital-payment-service/internal/core/domain"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExchangeRateRepo_Latest(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewExchangeRateRepo(mock)
	now := time.Now().UTC().Truncate(time.Microsecond)
	rate := decimal.NewFromFloat(1342.57)

	rows := pgxmock.NewRows([]string{"from_currency", "to_currency", "rate", "provider", "created_at"}).
		AddRow("USD", "KRW", rate, "open-er-api", now)

	mock.ExpectQuery("SELECT (.+) FROM exchange_rates").
		WithArgs("USD", "KRW").
		WillReturnRows(rows)

	got, err := repo.Latest(context.Background(), "USD", "KRW")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Rate.Equal(rate))
	assert.Equal(t, "open-er-api", got.Provider)
}

func TestExchangeRateRepo_Latest_Miss(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewExchangeRateRepo(mock)

	mock.ExpectQuery("SELECT (.+) FROM exchange_rates").
		WithArgs("USD", "JPY").
		WillReturnRows(pgxmock.NewRows([]string{"from_currency", "to_currency", "rate", "provider", "created_at"}))

	got, err := repo.Latest(context.Background(), "USD", "JPY")
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestExchangeRateRepo_Insert(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewExchangeRateRepo(mock)
	rate := &domain.ExchangeRate{
		FromCurrency: "USD",
		ToCurrency:   "KRW",
		Rate:         decimal.NewFromFloat(1340.0),
		Provider:     "open-er-api",
		CreatedAt:    time.Now().UTC(),
	}

	mock.ExpectExec("INSERT INTO exchange_rates").
		WithArgs(rate.FromCurrency, rate.ToCurrency, rate.Rate, rate.Provider, rate.CreatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Insert(context.Background(), rate)
	assert.NoError(t, err)
}

func TestExchangeRateRepo_PruneOlderThan(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewExchangeRateRepo(mock)

	mock.ExpectExec("DELETE FROM exchange_rates").
		WithArgs(pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))

	err = repo.PruneOlderThan(context.Background(), 30*24*time.Hour)
	assert.NoError(t, err)
}
