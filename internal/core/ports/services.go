package ports

import (
	"context"
	"errors"
	"time"

	"digital-payment-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// --- Exchange rates ---

// ExchangeRateResolver resolves an FX rate for a currency pair. It never
// returns an error: any provider or cache failure falls back, in order, to the
// most recent cached rate and then to a fixed constant rate. Callers must be
// aware that a stale or fallback rate can end up in a payment's permanent
// pricing snapshot.
type ExchangeRateResolver interface {
	Resolve(ctx context.Context, from, to string) domain.ResolvedRate
}

// RateProvider fetches a fresh rate from the external FX API.
type RateProvider interface {
	FetchRate(ctx context.Context, from, to string) (decimal.Decimal, error)
	Name() string
}

// RateCache is the hot cache in front of the DB rate cache.
type RateCache interface {
	Get(ctx context.Context, from, to string) (*domain.ResolvedRate, error) // nil, nil on miss
	Set(ctx context.Context, from, to string, rate domain.ResolvedRate, ttl time.Duration) error
}

// --- Pricing ---

// PricingInput is everything the pricing engine needs for one quote.
type PricingInput struct {
	BasePrice     int64
	FromCurrency  string
	ToCurrency    string
	Quantity      int
	PromotionCode *string
	Rate          domain.ResolvedRate
}

// PriceQuote is the computed charge. Amounts are integer smallest units;
// rounding happened once, at the conversion step.
type PriceQuote struct {
	UnitConverted    int64
	Total            int64
	PromotionApplied bool
}

// PricingEngine combines base price, promotion and conversion into a quote.
// The promotion lookup runs on tx so the quote comes from the same database
// snapshot as the write it feeds.
type PricingEngine interface {
	Price(ctx context.Context, tx pgx.Tx, in PricingInput) (PriceQuote, error)
}

// --- Gateway client ---

// Gateway payment status vocabulary (REST API of record).
const (
	GatewayStatusPaid                 = "PAID"
	GatewayStatusCancelled            = "CANCELLED"
	GatewayStatusPartialCancelled     = "PARTIAL_CANCELLED"
	GatewayStatusFailed               = "FAILED"
	GatewayStatusVirtualAccountIssued = "VIRTUAL_ACCOUNT_ISSUED"
	GatewayStatusReady                = "READY"
	GatewayStatusPayPending           = "PAY_PENDING"
)

// ErrUpstreamPaymentNotFound is returned when the gateway has no record of the
// payment (HTTP 404). Verification maps it to a local CANCELLED.
var ErrUpstreamPaymentNotFound = errors.New("payment not found at gateway")

// GatewayAmount is the gateway's amount breakdown.
type GatewayAmount struct {
	Total     int64 `json:"total"`
	Cancelled int64 `json:"cancelled"`
}

// GatewayPayment is the gateway's authoritative record of a payment. Status
// holds the raw vocabulary value; unrecognized values are preserved as-is and
// Raw keeps the full payload for audit.
type GatewayPayment struct {
	ID        string        `json:"id"`
	Status    string        `json:"status"`
	Amount    GatewayAmount `json:"amount"`
	Code      *string       `json:"code,omitempty"`
	Message   *string       `json:"message,omitempty"`
	TxType    *string       `json:"tx_type,omitempty"`
	TxID      *string       `json:"tx_id,omitempty"`
	PgCode    *string       `json:"pg_code,omitempty"`
	PgMessage *string       `json:"pg_message,omitempty"`
	Raw       []byte        `json:"-"`
}

// GatewayClient talks to the external payment gateway.
type GatewayClient interface {
	// FetchStatus retrieves the authoritative payment record. Network errors
	// and 5xx responses are retried with bounded exponential backoff; 4xx
	// responses are returned immediately.
	FetchStatus(ctx context.Context, paymentID string) (*GatewayPayment, error)
	// Cancel cancels (part of) a payment upstream. Non-2xx responses propagate
	// as errors.
	Cancel(ctx context.Context, paymentID string, amount int64, currency, reason string) (*GatewayPayment, error)
}

// --- Payment service ---

// CreatePaymentInput is the validated input for payment creation.
type CreatePaymentInput struct {
	UserID          *uuid.UUID
	ProductTable    string
	ProductID       string
	Quantity        int
	Currency        string
	PayMethod       domain.PayMethod
	EasyPayProvider *string
	PromotionCode   *string
	RedirectURL     *string
	RequiresWallet  bool
}

// CancelPaymentInput is the input for cancellation and refund.
type CancelPaymentInput struct {
	PaymentID  uuid.UUID
	UserID     uuid.UUID
	Reason     string
	Amount     *int64           // explicit cancel amount
	Percentage *decimal.Decimal // fraction of total, 0-100
}

// PaymentService is the creation → verification → settlement pipeline.
type PaymentService interface {
	Create(ctx context.Context, in CreatePaymentInput) (*domain.Payment, error)
	Verify(ctx context.Context, paymentID, requesterID uuid.UUID, walletAddress *string) (*domain.Payment, error)
	Cancel(ctx context.Context, in CancelPaymentInput) (*domain.Payment, error)
	Refund(ctx context.Context, in CancelPaymentInput) (*domain.Payment, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error)
	ClaimUser(ctx context.Context, paymentID, userID uuid.UUID) error
}

// --- Webhook ingestion ---

// WebhookService ingests gateway webhooks. Handle re-raises processing errors
// after finalizing the audit row so the transport can answer non-2xx and let
// the gateway retry.
type WebhookService interface {
	Handle(ctx context.Context, body []byte) error
}

// --- Tokens ---

// TokenClaims holds the parsed JWT claims.
type TokenClaims struct {
	UserID uuid.UUID
}

// TokenService handles JWT token operations for user identity.
type TokenService interface {
	Generate(userID uuid.UUID) (string, time.Time, error)
	Validate(tokenString string) (*TokenClaims, error)
}
