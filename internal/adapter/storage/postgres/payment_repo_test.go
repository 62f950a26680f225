package postgres

import (
	"context"
	"testing"
	"time"

	"digital-payment-service/internal/core/domain"
	"digital-payment-service/internal/core/ports"

	"github.com/google/uuid"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func newTestPayment(userID uuid.UUID) *domain.Payment {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.Payment{
		ID:             uuid.New(),
		UserID:         &userID,
		ProductTable:   "courses",
		ProductID:      "course-42",
		ProductName:    "Intro to Go",
		StoreID:        "store-test",
		ChannelKey:     "channel-key-card",
		OriginalPrice:  10000,
		ExchangeRate:   decimal.NewFromInt(1),
		RateProvider:   domain.RateProviderFallback,
		RateTimestamp:  now,
		ConvertedPrice: 10000,
		Quantity:       1,
		TotalAmount:    10000,
		Currency:       "KRW",
		PayMethod:      domain.PayMethodCard,
		Status:         domain.PaymentStatusPending,
		StatusReason:   "Payment initiated",
		CreatedAt:      now,
	}
}

func paymentColumnNames() []string {
	return []string{
		"id", "user_id", "product_table", "product_id", "product_name", "store_id", "channel_key",
		"original_price", "exchange_rate", "rate_provider", "rate_timestamp", "converted_price",
		"quantity", "total_amount", "currency", "promotion_code", "promotion_applied",
		"pay_method", "easy_pay_provider", "status", "status_reason",
		"created_at", "paid_at", "failed_at", "cancelled_at", "refunded_at", "cancelled_amount",
		"gateway_code", "gateway_message", "pg_code", "pg_message", "gateway_tx_type", "gateway_tx_id", "gateway_raw",
		"redirect_url", "requires_wallet", "receiver_wallet",
	}
}

func paymentRow(p *domain.Payment) *pgxmock.Rows {
	return pgxmock.NewRows(paymentColumnNames()).AddRow(
		p.ID, p.UserID, p.ProductTable, p.ProductID, p.ProductName, p.StoreID, p.ChannelKey,
		p.OriginalPrice, p.ExchangeRate, p.RateProvider, p.RateTimestamp, p.ConvertedPrice,
		p.Quantity, p.TotalAmount, p.Currency, p.PromotionCode, p.PromotionApplied,
		p.PayMethod, p.EasyPayProvider, p.Status, p.StatusReason,
		p.CreatedAt, p.PaidAt, p.FailedAt, p.CancelledAt, p.RefundedAt, p.CancelledAmount,
		p.Gateway.Code, p.Gateway.Message, p.Gateway.PgCode, p.Gateway.PgMessage,
		p.Gateway.TxType, p.Gateway.TxID, p.Gateway.Raw,
		p.RedirectURL, p.RequiresWallet, p.ReceiverWallet,
	)
}

func TestPaymentRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment(uuid.New())

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO payments").
		WithArgs(
			p.ID, p.UserID, p.ProductTable, p.ProductID, p.ProductName, p.StoreID, p.ChannelKey,
			p.OriginalPrice, p.ExchangeRate, p.RateProvider, p.RateTimestamp, p.ConvertedPrice,
			p.Quantity, p.TotalAmount, p.Currency, p.PromotionCode, p.PromotionApplied,
			p.PayMethod, p.EasyPayProvider, p.Status, p.StatusReason,
			p.CreatedAt, p.PaidAt, p.FailedAt, p.CancelledAt, p.RefundedAt, p.CancelledAmount,
			p.Gateway.Code, p.Gateway.Message, p.Gateway.PgCode, p.Gateway.PgMessage,
			p.Gateway.TxType, p.Gateway.TxID, p.Gateway.Raw,
			p.RedirectURL, p.RequiresWallet, p.ReceiverWallet,
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.Create(context.Background(), dbTx, p)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_GetByID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	p := newTestPayment(uuid.New())

	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id").
		WithArgs(p.ID).
		WillReturnRows(paymentRow(p))

	got, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, p.TotalAmount, got.TotalAmount)
	assert.Equal(t, domain.PaymentStatusPending, got.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_GetByID_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	id := uuid.New()

	mock.ExpectQuery("SELECT (.+) FROM payments WHERE id").
		WithArgs(id).
		WillReturnRows(pgxmock.NewRows(paymentColumnNames()))

	got, err := repo.GetByID(context.Background(), id)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestPaymentRepo_FindRecentEquivalent(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	userID := uuid.New()
	existing := newTestPayment(userID)

	q := ports.DuplicateQuery{
		UserID:       &userID,
		ProductTable: "courses",
		ProductID:    "course-42",
		ProductName:  "Intro to Go",
		PayMethod:    domain.PayMethodCard,
		Quantity:     1,
		Currency:     "KRW",
	}

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs(
			q.UserID, q.ProductTable, q.ProductID, q.ProductName,
			q.PayMethod, q.EasyPayProvider, q.Quantity, q.Currency,
			q.PromotionCode, pgxmock.AnyArg(),
		).
		WillReturnRows(paymentRow(existing))

	got, err := repo.FindRecentEquivalent(context.Background(), q, 10*time.Second)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, existing.ID, got.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_FindRecentEquivalent_NoMatch(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)

	mock.ExpectQuery("SELECT (.+) FROM payments").
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnRows(pgxmock.NewRows(paymentColumnNames()))

	got, err := repo.FindRecentEquivalent(context.Background(), ports.DuplicateQuery{}, 10*time.Second)
	assert.NoError(t, err)
	assert.Nil(t, got)
}

func TestPaymentRepo_UpdateStatus_Paid(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	id := uuid.New()
	now := time.Now().UTC()

	gw := &domain.GatewayResult{
		Code: strPtr("OK"),
		TxID: strPtr("tx-001"),
		Raw:  []byte(`{"status":"PAID"}`),
	}

	mock.ExpectExec("UPDATE payments SET status").
		WithArgs(
			domain.PaymentStatusPaid, "Payment confirmed", now,
			gw.Code, gw.Message, gw.PgCode, gw.PgMessage, gw.TxType, gw.TxID, gw.Raw,
			id,
		).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateStatus(context.Background(), id, ports.StatusUpdate{
		Status:  domain.PaymentStatusPaid,
		Reason:  "Payment confirmed",
		Gateway: gw,
		At:      now,
	})
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_UpdateStatus_CancelledWithAmount(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	id := uuid.New()
	now := time.Now().UTC()
	amount := int64(10000)

	mock.ExpectExec("UPDATE payments SET status").
		WithArgs(domain.PaymentStatusCancelled, "User requested", now, amount, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateStatus(context.Background(), id, ports.StatusUpdate{
		Status:          domain.PaymentStatusCancelled,
		Reason:          "User requested",
		CancelledAmount: &amount,
		At:              now,
	})
	assert.NoError(t, err)
}

func TestPaymentRepo_UpdateStatus_PendingRejected(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)

	err = repo.UpdateStatus(context.Background(), uuid.New(), ports.StatusUpdate{
		Status: domain.PaymentStatusPending,
		At:     time.Now(),
	})
	assert.Error(t, err, "PENDING is never a valid update target")
}

func TestPaymentRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	id := uuid.New()

	mock.ExpectExec("UPDATE payments SET status").
		WithArgs(domain.PaymentStatusFailed, "boom", pgxmock.AnyArg(), id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = repo.UpdateStatus(context.Background(), id, ports.StatusUpdate{
		Status: domain.PaymentStatusFailed,
		Reason: "boom",
		At:     time.Now().UTC(),
	})
	assert.Error(t, err)
}

func TestPaymentRepo_SetVerificationContext(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	id := uuid.New()
	userID := uuid.New()
	wallet := strPtr("0xabc123")

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payments SET user_id = COALESCE").
		WithArgs(&userID, wallet, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	dbTx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.SetVerificationContext(context.Background(), dbTx, id, &userID, wallet)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentRepo_UpdateUserID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	id := uuid.New()
	userID := uuid.New()

	mock.ExpectExec("UPDATE payments SET user_id").
		WithArgs(userID, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err = repo.UpdateUserID(context.Background(), id, userID)
	assert.NoError(t, err)
}

func TestPaymentRepo_ListByUser(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentRepo(mock)
	userID := uuid.New()
	p1 := newTestPayment(userID)
	p2 := newTestPayment(userID)

	rows := paymentRow(p1)
	rows.AddRow(
		p2.ID, p2.UserID, p2.ProductTable, p2.ProductID, p2.ProductName, p2.StoreID, p2.ChannelKey,
		p2.OriginalPrice, p2.ExchangeRate, p2.RateProvider, p2.RateTimestamp, p2.ConvertedPrice,
		p2.Quantity, p2.TotalAmount, p2.Currency, p2.PromotionCode, p2.PromotionApplied,
		p2.PayMethod, p2.EasyPayProvider, p2.Status, p2.StatusReason,
		p2.CreatedAt, p2.PaidAt, p2.FailedAt, p2.CancelledAt, p2.RefundedAt, p2.CancelledAmount,
		p2.Gateway.Code, p2.Gateway.Message, p2.Gateway.PgCode, p2.Gateway.PgMessage,
		p2.Gateway.TxType, p2.Gateway.TxID, p2.Gateway.Raw,
		p2.RedirectURL, p2.RequiresWallet, p2.ReceiverWallet,
	)

	mock.ExpectQuery("SELECT (.+) FROM payments WHERE user_id").
		WithArgs(userID).
		WillReturnRows(rows)

	got, err := repo.ListByUser(context.Background(), userID)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}
