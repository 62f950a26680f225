package ports

import (
	"context"
	"time"

	"digital-payment-service/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// DuplicateQuery is the identity tuple the Duplicate Guard matches on.
type DuplicateQuery struct {
	UserID          *uuid.UUID
	ProductTable    string
	ProductID       string
	ProductName     string
	PayMethod       domain.PayMethod
	EasyPayProvider *string
	Quantity        int
	Currency        string
	PromotionCode   *string
}

// StatusUpdate carries everything the shared status-update routine persists.
type StatusUpdate struct {
	Status          domain.PaymentStatus
	Reason          string
	Gateway         *domain.GatewayResult
	CancelledAmount *int64 // nil = leave unchanged
	At              time.Time
}

// PaymentRepository defines persistence for the payment ledger.
// Methods accepting pgx.Tx run inside an atomic scope.
type PaymentRepository interface {
	Create(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Payment, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Payment, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Payment, error)
	// FindRecentEquivalent returns a PENDING or PAID payment matching q created
	// within the cooldown window, or nil.
	FindRecentEquivalent(ctx context.Context, q DuplicateQuery, cooldown time.Duration) (*domain.Payment, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, upd StatusUpdate) error
	UpdateStatusTx(ctx context.Context, tx pgx.Tx, id uuid.UUID, upd StatusUpdate) error
	UpdateUserID(ctx context.Context, id uuid.UUID, userID uuid.UUID) error
	SetVerificationContext(ctx context.Context, tx pgx.Tx, id uuid.UUID, userID *uuid.UUID, wallet *string) error
}

// WebhookEventRepository defines persistence for webhook audit rows.
type WebhookEventRepository interface {
	Create(ctx context.Context, event *domain.WebhookEvent) error
	// Finalize rewrites description and payload exactly once at end of processing.
	Finalize(ctx context.Context, event *domain.WebhookEvent) error
	ListByPayment(ctx context.Context, paymentID uuid.UUID) ([]domain.WebhookEvent, error)
}

// ExchangeRateRepository defines persistence for the FX rate cache.
type ExchangeRateRepository interface {
	Latest(ctx context.Context, from, to string) (*domain.ExchangeRate, error)
	Insert(ctx context.Context, rate *domain.ExchangeRate) error
	PruneOlderThan(ctx context.Context, age time.Duration) error
}

// PromotionRepository looks up discount codes. A non-nil tx pins the read to
// that transaction's snapshot.
type PromotionRepository interface {
	GetByCode(ctx context.Context, tx pgx.Tx, code string) (*domain.Promotion, error)
}

// ProductResolver resolves a product's pricing view from a table tag and id.
// Implementations must return nil (not an error) for an unknown product.
// ResolveTx runs inside an atomic scope.
type ProductResolver interface {
	Resolve(ctx context.Context, table, id string) (*domain.ProductInfo, error)
	ResolveTx(ctx context.Context, tx pgx.Tx, table, id string) (*domain.ProductInfo, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
